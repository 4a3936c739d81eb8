// Package sqlquery composes SELECT statements from independent clauses
// (Select, From, Join, Where, Group By/Having, Order By and paging), renders
// them for PostgreSQL, MySQL, SQLite or SQL Server and executes them with
// context-aware, generic result scanners.
//
//	db, err := sqlquery.Open("postgres", dsn)
//	q := db.Query().
//	    FromEntity(sqlquery.Table[User](), "u", "").
//	    WhereColumn(sqlquery.Column[User]("Status"), sqlquery.OpEqual, 1).
//	    OrderBy("u.name")
//	page, err := sqlquery.Page[User](ctx, q, sqlquery.NewPager(2, 20), nil)
package sqlquery

import (
	"context"

	"github.com/coregx/sqlquery/internal/clause"
	"github.com/coregx/sqlquery/internal/core"
	"github.com/coregx/sqlquery/internal/dialects"
	"github.com/coregx/sqlquery/internal/entity"
	"github.com/coregx/sqlquery/internal/logger"
	"github.com/coregx/sqlquery/internal/security"
)

type (
	// DB wraps *sql.DB with a prepared statement cache, tracing and logging.
	DB = core.DB
	// Option is a functional option for configuring DB.
	Option = core.Option
	// SQLQuery composes and runs a SELECT statement.
	SQLQuery = core.SQLQuery
	// QueryOption configures a SQLQuery.
	QueryOption = core.QueryOption
	// SQLBuilder renders the clauses of a query.
	SQLBuilder = core.SQLBuilder
	// Options controls query execution.
	Options = core.Options
	// ConfigProvider supplies query options.
	ConfigProvider = core.ConfigProvider
	// ConfigProviderFunc adapts a function to ConfigProvider.
	ConfigProviderFunc = core.ConfigProviderFunc
	// TraceLogger receives every statement before execution.
	TraceLogger = core.TraceLogger
	// TraceLoggerFunc adapts a function to TraceLogger.
	TraceLoggerFunc = core.TraceLoggerFunc
	// QueryValidator rejects unsafe statements.
	QueryValidator = core.QueryValidator
	// Database hands out connections.
	Database = core.Database
	// Conn executes statements.
	Conn = core.Conn
	// Params holds named parameter values.
	Params = core.Params

	// Dialect renders identifiers, placeholders and paging for a database.
	Dialect = dialects.Dialect
	// Pager selects one page of results.
	Pager = clause.Pager
	// Operator is a Where comparison operator.
	Operator = clause.Operator
	// JoinKind selects Join, Left Join or Right Join.
	JoinKind = clause.JoinKind
	// Expression renders a condition.
	Expression = clause.Expression
	// HashExp renders column=value pairs joined with And.
	HashExp = clause.HashExp
	// LikeExp renders an escaped Like condition.
	LikeExp = clause.LikeExp

	// Select, From, Join, Where, GroupBy and OrderBy are the standalone clauses.
	Select  = clause.Select
	From    = clause.From
	Join    = clause.Join
	Where   = clause.Where
	GroupBy = clause.GroupBy
	OrderBy = clause.OrderBy

	// TypeRef names an entity type.
	TypeRef = entity.TypeRef
	// ColumnRef names a field of an entity type.
	ColumnRef = entity.ColumnRef
	// Resolver maps entity types to tables and fields to columns.
	Resolver = entity.Resolver
	// AliasRegister records table aliases shared by the clauses of a query.
	AliasRegister = entity.AliasRegister

	// Logger is the structured logger used for statement traces.
	Logger = logger.Logger
	// Validator rejects statements matching injection patterns.
	Validator = security.Validator
)

// Executor runs a rendered statement and produces T.
type Executor[T any] = core.Executor[T]

// PagerList is one page of results.
type PagerList[T any] = core.PagerList[T]

// Where operators.
const (
	OpEqual        = clause.OpEqual
	OpNotEqual     = clause.OpNotEqual
	OpGreater      = clause.OpGreater
	OpGreaterEqual = clause.OpGreaterEqual
	OpLess         = clause.OpLess
	OpLessEqual    = clause.OpLessEqual
	OpContains     = clause.OpContains
	OpStarts       = clause.OpStarts
	OpEnds         = clause.OpEnds
	OpIn           = clause.OpIn
	OpNotIn        = clause.OpNotIn
)

// Join kinds.
const (
	InnerJoin = clause.InnerJoin
	LeftJoin  = clause.LeftJoin
	RightJoin = clause.RightJoin
)

// DefaultPageSize is used by pagers without a page size.
const DefaultPageSize = clause.DefaultPageSize

// Errors.
var (
	ErrInvalidState       = core.ErrInvalidState
	ErrConflictingAlias   = core.ErrConflictingAlias
	ErrDuplicateParameter = core.ErrDuplicateParameter
	ErrUnknownColumn      = core.ErrUnknownColumn
	ErrUnsupportedDialect = core.ErrUnsupportedDialect
	ErrMissingConnection  = core.ErrMissingConnection
	ErrMissingParameter   = core.ErrMissingParameter
	ErrNoRows             = core.ErrNoRows
	ErrClosed             = core.ErrClosed
	ErrUnsafeQuery        = security.ErrUnsafeQuery
)

var (
	Open                  = core.Open
	WrapDB                = core.WrapDB
	WithMaxOpenConns      = core.WithMaxOpenConns
	WithMaxIdleConns      = core.WithMaxIdleConns
	WithStmtCacheCapacity = core.WithStmtCacheCapacity
	WithDialect           = core.WithDialect
	WithLogger            = core.WithLogger
	WithSensitiveFields   = core.WithSensitiveFields
	WithTracing           = core.WithTracing
	WithOptionsProvider   = core.WithOptionsProvider
	WithEntityResolver    = core.WithEntityResolver
	WithQueryValidator    = core.WithQueryValidator
	WithHealthCheck       = core.WithHealthCheck
	New                   = core.New
	NewSQLBuilder         = core.NewSQLBuilder
	DefaultOptions        = core.DefaultOptions
	WithDatabase          = core.WithDatabase
	WithConfigProvider    = core.WithConfigProvider
	WithTraceLogger       = core.WithTraceLogger
	WithTracer            = core.WithTracer
	WithResolver          = core.WithResolver
	WithValidator         = core.WithValidator
	NewLogTrace           = core.NewLogTrace
	Bind                  = core.Bind
	InlineParams          = core.InlineParams
	FormatLiteral         = core.FormatLiteral
	ScanMaps              = core.ScanMaps
	Exec                  = core.Exec
	Maps                  = core.Maps
	NewPager              = clause.NewPager
	NewTagResolver        = entity.NewTagResolver
	NewAliasRegister      = entity.NewAliasRegister
	NewSlogAdapter        = logger.NewSlogAdapter
	NewZerologAdapter     = logger.NewZerologAdapter
	NewValidator          = security.NewValidator
	WithStrict            = security.WithStrict
	Lookup                = dialects.Lookup
	RegisterDialect       = dialects.RegisterDialect
	SafeName              = dialects.SafeName
	ParseOperator         = clause.ParseOperator
	Condition             = clause.Condition
	NewSelect             = clause.NewSelect
	NewFrom               = clause.NewFrom
	NewJoin               = clause.NewJoin
	NewWhere              = clause.NewWhere
	NewGroupBy            = clause.NewGroupBy
	NewOrderBy            = clause.NewOrderBy
	NewExp                = clause.NewExp
	Eq                    = clause.Eq
	NotEq                 = clause.NotEq
	GreaterThan           = clause.GreaterThan
	LessThan              = clause.LessThan
	GreaterOrEqual        = clause.GreaterOrEqual
	LessOrEqual           = clause.LessOrEqual
	EqColumn              = clause.EqColumn
	Field                 = clause.Field
	EqFields              = clause.EqFields
	In                    = clause.In
	NotIn                 = clause.NotIn
	Between               = clause.Between
	NotBetween            = clause.NotBetween
	Like                  = clause.Like
	NotLike               = clause.NotLike
	OrLike                = clause.OrLike
	And                   = clause.And
	Or                    = clause.Or
	Not                   = clause.Not
)

// Table returns the reference to entity type T.
func Table[T any]() TypeRef { return entity.Table[T]() }

// Column returns the reference to field of entity type T.
func Column[T any](field string) ColumnRef { return entity.Column[T](field) }

// ScanAll returns an executor scanning every row into T.
func ScanAll[T any](d Dialect) Executor[[]T] { return core.ScanAll[T](d) }

// ScanOne returns an executor scanning the first row into T.
func ScanOne[T any](d Dialect) Executor[T] { return core.ScanOne[T](d) }

// ScanScalar returns an executor reading the single value of the first row.
func ScanScalar[T any](d Dialect) Executor[T] { return core.ScanScalar[T](d) }

// Query renders q and runs it with fn on conn, or on a connection from the
// query database when conn is nil.
func Query[T any](ctx context.Context, q *SQLQuery, fn Executor[T], conn Conn) (T, error) {
	return core.Query(ctx, q, fn, conn)
}

// QueryPager counts and fetches one page.
func QueryPager[T any](ctx context.Context, q *SQLQuery, pager *Pager, listFn Executor[[]T], countFn Executor[int64], conn Conn) (*PagerList[T], error) {
	return core.QueryPager(ctx, q, pager, listFn, countFn, conn)
}

// QueryPage is QueryPager for a page number and size.
func QueryPage[T any](ctx context.Context, q *SQLQuery, page, pageSize int, listFn Executor[[]T], countFn Executor[int64], conn Conn) (*PagerList[T], error) {
	return core.QueryPage(ctx, q, page, pageSize, listFn, countFn, conn)
}

// PagerQuery counts through the query and fetches the page with listFn.
func PagerQuery[T any](ctx context.Context, q *SQLQuery, listFn func(ctx context.Context) ([]T, error), pager *Pager, countFn Executor[int64], conn Conn) (*PagerList[T], error) {
	return core.PagerQuery(ctx, q, listFn, pager, countFn, conn)
}

// All runs q and scans every row into T.
func All[T any](ctx context.Context, q *SQLQuery, conn Conn) ([]T, error) {
	return core.All[T](ctx, q, conn)
}

// One runs q and scans the first row into T.
func One[T any](ctx context.Context, q *SQLQuery, conn Conn) (T, error) {
	return core.One[T](ctx, q, conn)
}

// Scalar runs q and returns the single value of the first row.
func Scalar[T any](ctx context.Context, q *SQLQuery, conn Conn) (T, error) {
	return core.Scalar[T](ctx, q, conn)
}

// Page runs q as a paged query scanning rows into T.
func Page[T any](ctx context.Context, q *SQLQuery, pager *Pager, conn Conn) (*PagerList[T], error) {
	return core.Page[T](ctx, q, pager, conn)
}
