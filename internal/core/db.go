// Package core composes the clause builder into executable queries: the
// SQLBuilder, the SQLQuery object, parameter binding, result scanning and
// the DB handle with its prepared statement cache.
package core

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/coregx/sqlquery/internal/cache"
	"github.com/coregx/sqlquery/internal/dialects"
	"github.com/coregx/sqlquery/internal/entity"
	"github.com/coregx/sqlquery/internal/logger"
	"github.com/coregx/sqlquery/internal/tracer"
)

// ErrClosed is returned for connections requested from a closed DB.
var ErrClosed = errors.New("database is closed")

// DB wraps *sql.DB. Statements executed directly on the DB are prepared
// once and cached. DB is safe for concurrent use and is shared by the
// queries created from it.
type DB struct {
	sqlDB      *sql.DB
	driverName string
	dialect    dialects.Dialect
	stmtCache  *cache.StmtCache
	logger     logger.Logger
	sanitizer  *logger.Sanitizer
	tracer     tracer.Tracer
	provider   ConfigProvider
	resolver   entity.Resolver
	validator  QueryValidator
	health     *healthMonitor
	interval   time.Duration
	closed     atomic.Bool
}

// Option is a functional option for configuring DB.
type Option func(*DB)

// WithMaxOpenConns sets the maximum number of open connections.
func WithMaxOpenConns(n int) Option {
	return func(db *DB) {
		db.sqlDB.SetMaxOpenConns(n)
	}
}

// WithMaxIdleConns sets the maximum number of idle connections.
func WithMaxIdleConns(n int) Option {
	return func(db *DB) {
		db.sqlDB.SetMaxIdleConns(n)
	}
}

// WithStmtCacheCapacity sets the prepared statement cache capacity.
func WithStmtCacheCapacity(capacity int) Option {
	return func(db *DB) {
		db.stmtCache = cache.NewStmtCacheWithCapacity(capacity)
	}
}

// WithDialect overrides the dialect derived from the driver name, e.g. for
// the "pgx" or "sqlite3" drivers registered under other names.
func WithDialect(d dialects.Dialect) Option {
	return func(db *DB) {
		db.dialect = d
	}
}

// WithLogger sets the logger statements are traced to.
func WithLogger(l logger.Logger) Option {
	return func(db *DB) {
		db.logger = l
	}
}

// WithSensitiveFields replaces the field names whose values are masked in
// trace logs.
func WithSensitiveFields(fields ...string) Option {
	return func(db *DB) {
		db.sanitizer = logger.NewSanitizer(fields)
	}
}

// WithTracing sets the tracer of every query.
func WithTracing(t tracer.Tracer) Option {
	return func(db *DB) {
		db.tracer = t
	}
}

// WithOptionsProvider sets the provider of query options.
func WithOptionsProvider(p ConfigProvider) Option {
	return func(db *DB) {
		db.provider = p
	}
}

// WithEntityResolver sets the resolver of entity tables and columns.
func WithEntityResolver(r entity.Resolver) Option {
	return func(db *DB) {
		db.resolver = r
	}
}

// WithQueryValidator rejects statements failing v before they reach the
// database.
func WithQueryValidator(v QueryValidator) Option {
	return func(db *DB) {
		db.validator = v
	}
}

// WithHealthCheck pings the database every interval in the background.
// The result is reported by Healthy.
func WithHealthCheck(interval time.Duration) Option {
	return func(db *DB) {
		db.interval = interval
	}
}

// Open opens a database and applies opts. The dialect is looked up by
// driver name; ErrUnsupportedDialect is returned when there is none and no
// WithDialect option is given.
func Open(driverName, dsn string, opts ...Option) (*DB, error) {
	sqlDB, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}
	db, err := WrapDB(sqlDB, driverName, opts...)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// WrapDB wraps an existing *sql.DB. Closing the returned DB closes sqlDB.
func WrapDB(sqlDB *sql.DB, driverName string, opts ...Option) (*DB, error) {
	db := &DB{
		sqlDB:      sqlDB,
		driverName: driverName,
		stmtCache:  cache.NewStmtCache(),
		logger:     &logger.NoopLogger{},
		sanitizer:  logger.NewSanitizer(nil),
		tracer:     &tracer.NoopTracer{},
		resolver:   entity.NewTagResolver(),
	}
	for _, opt := range opts {
		opt(db)
	}
	if db.dialect == nil {
		d, err := dialects.Lookup(driverName)
		if err != nil {
			return nil, err
		}
		db.dialect = d
	}
	db.health = newHealthMonitor(sqlDB, db.logger, db.interval)
	if db.interval > 0 {
		db.health.start()
	}
	return db, nil
}

// Close releases cached statements and closes the database.
func (db *DB) Close() error {
	if !db.closed.CompareAndSwap(false, true) {
		return nil
	}
	if db.interval > 0 {
		db.health.shutdown()
	}
	db.stmtCache.Clear()
	return db.sqlDB.Close()
}

// Ping checks the connection now and records the result for Healthy.
func (db *DB) Ping(ctx context.Context) error {
	if db.closed.Load() {
		return ErrClosed
	}
	return db.health.check(ctx)
}

// Healthy reports the outcome of the most recent ping and when it ran.
// A DB that was never pinged is considered healthy.
func (db *DB) Healthy() (bool, time.Time) {
	return db.health.status()
}

// Dialect returns the database dialect.
func (db *DB) Dialect() dialects.Dialect { return db.dialect }

// DriverName returns the driver the database was opened with.
func (db *DB) DriverName() string { return db.driverName }

// SQLDB returns the underlying *sql.DB.
func (db *DB) SQLDB() *sql.DB { return db.sqlDB }

// StmtCacheStats returns prepared statement cache statistics.
func (db *DB) StmtCacheStats() cache.Stats { return db.stmtCache.Stats() }

// GetConnection returns db itself: statements run on the pooled handle
// through the statement cache.
func (db *DB) GetConnection(_ context.Context) (Conn, error) {
	if db.closed.Load() {
		return nil, ErrClosed
	}
	return db, nil
}

// Query returns an empty query bound to db.
func (db *DB) Query() *SQLQuery {
	return New(db.dialect,
		WithDatabase(db),
		WithConfigProvider(db.provider),
		WithTraceLogger(NewLogTrace(db.logger, db.sanitizer)),
		WithTracer(db.tracer),
		WithResolver(db.resolver),
		WithValidator(db.validator),
	)
}

// prepare returns the cached statement for query, preparing it on a miss.
func (db *DB) prepare(ctx context.Context, query string) (*sql.Stmt, error) {
	if stmt, ok := db.stmtCache.Get(query); ok {
		return stmt, nil
	}
	stmt, err := db.sqlDB.PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}
	// Another goroutine may have prepared the same statement meanwhile.
	cached, loaded := db.stmtCache.Add(query, stmt)
	if loaded {
		_ = stmt.Close()
	}
	return cached, nil
}

// stmtClosed is the database/sql error for a statement closed between
// lookup and use. The cache closes statements it evicts.
const stmtClosed = "sql: statement is closed"

// withStmt runs fn on the cached statement for query. When the statement was
// evicted and closed in the meantime, it is prepared again once.
func withStmt[T any](ctx context.Context, db *DB, query string, fn func(*sql.Stmt) (T, error)) (T, error) {
	var zero T
	for attempt := 0; ; attempt++ {
		stmt, err := db.prepare(ctx, query)
		if err != nil {
			return zero, WrapError(err, "prepare "+firstLine(query))
		}
		res, err := fn(stmt)
		if err != nil && attempt == 0 && err.Error() == stmtClosed {
			db.stmtCache.Discard(query, stmt)
			db.logger.Debug("prepared statement closed by eviction, preparing again", "sql", firstLine(query))
			continue
		}
		return res, err
	}
}

// QueryContext runs a positional statement through the statement cache.
func (db *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return withStmt(ctx, db, query, func(stmt *sql.Stmt) (*sql.Rows, error) {
		return stmt.QueryContext(ctx, args...)
	})
}

// ExecContext runs a positional statement through the statement cache.
func (db *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return withStmt(ctx, db, query, func(stmt *sql.Stmt) (sql.Result, error) {
		return stmt.ExecContext(ctx, args...)
	})
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
