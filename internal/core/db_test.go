package core

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coregx/sqlquery/internal/dialects"
	"github.com/coregx/sqlquery/internal/logger"
	"github.com/coregx/sqlquery/internal/security"
)

func TestOpen_UnsupportedDialect(t *testing.T) {
	sqlDB, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	defer func() { _ = sqlDB.Close() }()

	_, err = WrapDB(sqlDB, "oracle")
	assert.ErrorIs(t, err, ErrUnsupportedDialect)

	db, err := WrapDB(sqlDB, "oracle", WithDialect(dialects.GetDialect("generic")))
	require.NoError(t, err)
	assert.Equal(t, "generic", db.Dialect().Name())
	assert.Equal(t, "oracle", db.DriverName())
}

func TestDB_StatementCache(t *testing.T) {
	db := openTestDB(t, WithStmtCacheCapacity(8))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := All[testUser](ctx, db.Query().From("users").Where("id", "=", i), nil)
		require.NoError(t, err)
	}

	stats := db.StmtCacheStats()
	assert.Equal(t, 1, stats.Size)
	assert.Equal(t, 8, stats.Capacity)
	assert.EqualValues(t, 2, stats.Hits)
	assert.EqualValues(t, 1, stats.Misses)
}

func TestDB_PrepareError(t *testing.T) {
	db := openTestDB(t)
	_, err := db.QueryContext(context.Background(), "SELECT nope FROM nowhere\nWHERE 1=1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prepare SELECT nope FROM nowhere:")
	assert.Equal(t, 0, db.StmtCacheStats().Size)
}

func TestDB_ReplacesClosedStatement(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	query := "SELECT name FROM users WHERE id = ?"

	stale, err := db.SQLDB().PrepareContext(ctx, query)
	require.NoError(t, err)
	require.NoError(t, stale.Close())
	db.stmtCache.Set(query, stale)

	rows, err := db.QueryContext(ctx, query, 1)
	require.NoError(t, err)
	require.True(t, rows.Next())
	var name string
	require.NoError(t, rows.Scan(&name))
	require.NoError(t, rows.Close())
	assert.Equal(t, "alice", name)

	cached, ok := db.stmtCache.Get(query)
	require.True(t, ok)
	assert.NotSame(t, stale, cached)

	update := "UPDATE users SET status = ? WHERE id = ?"
	stale, err = db.SQLDB().PrepareContext(ctx, update)
	require.NoError(t, err)
	require.NoError(t, stale.Close())
	db.stmtCache.Set(update, stale)

	res, err := db.ExecContext(ctx, update, 0, 2)
	require.NoError(t, err)
	n, err := res.RowsAffected()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestDB_ExecExecutor(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	res, err := Exec(db.Dialect())(ctx, db, "UPDATE users SET status = {:status} WHERE id = {:id}", Params{"status": 0, "id": 1})
	require.NoError(t, err)
	n, err := res.RowsAffected()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = Exec(db.Dialect())(ctx, db, "DELETE FROM users WHERE id = {:id}", nil)
	assert.ErrorIs(t, err, ErrMissingParameter)
}

func TestDB_Ping(t *testing.T) {
	db := openTestDB(t)

	healthy, checked := db.Healthy()
	assert.True(t, healthy)
	assert.True(t, checked.IsZero())

	require.NoError(t, db.Ping(context.Background()))
	healthy, checked = db.Healthy()
	assert.True(t, healthy)
	assert.False(t, checked.IsZero())

	require.NoError(t, db.Close())
	assert.ErrorIs(t, db.Ping(context.Background()), ErrClosed)
}

func TestDB_HealthCheck(t *testing.T) {
	db := openTestDB(t, WithHealthCheck(20*time.Millisecond), WithLogger(&logger.NoopLogger{}))

	assert.Eventually(t, func() bool {
		_, checked := db.Healthy()
		return !checked.IsZero()
	}, time.Second, 10*time.Millisecond)

	done := make(chan struct{})
	go func() {
		_ = db.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close did not stop the health check")
	}
}

func TestDB_QueryInheritsSettings(t *testing.T) {
	provider := ConfigProviderFunc(func() (*Options, error) {
		return &Options{IsClearAfterExecution: true}, nil
	})
	db := openTestDB(t, WithOptionsProvider(provider))

	q := db.Query()
	assert.Equal(t, "sqlite", q.Dialect().Name())
	assert.True(t, q.Options().IsClearAfterExecution)

	conn, err := db.GetConnection(context.Background())
	require.NoError(t, err)
	assert.Same(t, db, conn)
}

func TestDB_QueryValidator(t *testing.T) {
	db := openTestDB(t, WithQueryValidator(security.NewValidator()))
	ctx := context.Background()

	_, err := All[testUser](ctx, db.Query().From("users").AppendWhere("name = 'x' Or 1=1"), nil)
	assert.ErrorIs(t, err, security.ErrUnsafeQuery)

	users, err := All[testUser](ctx, db.Query().From("users").Where("name", "=", "x' Or 1=1 --"), nil)
	require.NoError(t, err)
	assert.Empty(t, users)
}
