package core

import (
	"context"
	"time"

	"github.com/coregx/sqlquery/internal/clause"
	"github.com/coregx/sqlquery/internal/dialects"
	"github.com/coregx/sqlquery/internal/entity"
	"github.com/coregx/sqlquery/internal/tracer"
)

// Database hands out connections for queries that were not given one.
type Database interface {
	GetConnection(ctx context.Context) (Conn, error)
}

// QueryValidator rejects a rendered statement before it is executed.
type QueryValidator interface {
	ValidateQuery(sql string) error
}

// QueryOption configures a SQLQuery.
type QueryOption func(*SQLQuery)

// WithDatabase sets the database connections are obtained from.
func WithDatabase(db Database) QueryOption {
	return func(q *SQLQuery) { q.db = db }
}

// WithConfigProvider sets where options are loaded from when the query was
// not configured explicitly.
func WithConfigProvider(p ConfigProvider) QueryOption {
	return func(q *SQLQuery) { q.provider = p }
}

// WithTraceLogger sets the logger receiving every statement.
func WithTraceLogger(t TraceLogger) QueryOption {
	return func(q *SQLQuery) { q.trace = t }
}

// WithTracer sets the tracer opening a span around every execution.
func WithTracer(t tracer.Tracer) QueryOption {
	return func(q *SQLQuery) { q.tracer = t }
}

// WithValidator sets the validator every rendered statement must pass.
func WithValidator(v QueryValidator) QueryOption {
	return func(q *SQLQuery) { q.validator = v }
}

// WithResolver sets the entity resolver of the builder.
func WithResolver(r entity.Resolver) QueryOption {
	return func(q *SQLQuery) { q.resolver = r }
}

// SQLQuery composes a SELECT statement through fluent calls and runs it
// with an Executor. Fluent methods mutate the query and return it; Clone is
// the only way to copy.
//
//	q := db.Query().
//	    From("users", "u").
//	    Where("u.status", sqlquery.OpEqual, 1).
//	    OrderBy("u.name")
//	users, err := sqlquery.All[User](ctx, q, nil)
type SQLQuery struct {
	builder   *SQLBuilder
	db        Database
	options   *Options
	provider  ConfigProvider
	trace     TraceLogger
	tracer    tracer.Tracer
	resolver  entity.Resolver
	validator QueryValidator
}

// New creates an empty query for dialect d.
func New(d dialects.Dialect, opts ...QueryOption) *SQLQuery {
	q := &SQLQuery{}
	for _, opt := range opts {
		opt(q)
	}
	if q.trace == nil {
		q.trace = NewLogTrace(nil, nil)
	}
	if q.tracer == nil {
		q.tracer = &tracer.NoopTracer{}
	}
	q.builder = NewSQLBuilder(d, q.resolver)
	return q
}

// Clone returns an independent copy. The builder is deep-copied, options
// are copied and the database is shared.
func (q *SQLQuery) Clone() *SQLQuery {
	clone := *q
	clone.builder = q.builder.Clone()
	if q.options != nil {
		clone.options = q.options.Clone()
	}
	return &clone
}

// Config replaces the options with DefaultOptions and applies configure.
func (q *SQLQuery) Config(configure func(*Options)) *SQLQuery {
	q.options = DefaultOptions()
	if configure != nil {
		configure(q.options)
	}
	return q
}

// Options returns the effective options, loading them from the config
// provider on first use.
func (q *SQLQuery) Options() *Options {
	if q.options == nil {
		q.options = loadOptions(q.provider)
	}
	return q.options
}

// Clear resets every clause. Aliases are kept.
func (q *SQLQuery) Clear() *SQLQuery {
	q.builder.Clear()
	return q
}

// Builder returns the underlying builder.
func (q *SQLQuery) Builder() *SQLBuilder { return q.builder }

// Dialect returns the query dialect.
func (q *SQLQuery) Dialect() dialects.Dialect { return q.builder.Dialect() }

// SQL renders the statement with named placeholders.
func (q *SQLQuery) SQL() (string, error) { return q.builder.ToSQL() }

// DebugSQL renders the statement with parameters inlined. Never execute it.
func (q *SQLQuery) DebugSQL() (string, error) { return q.builder.ToDebugSQL() }

// CountSQL renders the statement counting the unpaged rows.
func (q *SQLQuery) CountSQL() (string, error) { return q.builder.ToCountSQL() }

// Params returns the bound parameters.
func (q *SQLQuery) Params() (Params, error) { return q.builder.GetParams() }

// Select adds comma-separated columns.
func (q *SQLQuery) Select(columns string, tableAlias ...string) *SQLQuery {
	q.builder.SelectClause().Select(columns, tableAlias...)
	return q
}

// SelectColumn adds an entity field, optionally aliased.
func (q *SQLQuery) SelectColumn(ref entity.ColumnRef, alias string) *SQLQuery {
	q.builder.SelectClause().SelectColumn(ref, alias)
	return q
}

// SelectAll adds "*", qualified by tableAlias when given.
func (q *SQLQuery) SelectAll(tableAlias ...string) *SQLQuery {
	q.builder.SelectClause().SelectAll(tableAlias...)
	return q
}

// Distinct toggles Select Distinct.
func (q *SQLQuery) Distinct(distinct bool) *SQLQuery {
	q.builder.SelectClause().Distinct(distinct)
	return q
}

// AppendSelect appends a raw select fragment.
func (q *SQLQuery) AppendSelect(sql string) *SQLQuery {
	q.builder.SelectClause().AppendSQL(sql)
	return q
}

// From sets the source table.
func (q *SQLQuery) From(table string, alias ...string) *SQLQuery {
	q.builder.FromClause().From(table, alias...)
	return q
}

// FromEntity sets the source to the table of an entity type.
func (q *SQLQuery) FromEntity(ref entity.TypeRef, alias, schema string) *SQLQuery {
	q.builder.FromClause().FromEntity(ref, alias, schema)
	return q
}

// AppendFrom replaces the source with a raw fragment.
func (q *SQLQuery) AppendFrom(sql string) *SQLQuery {
	q.builder.FromClause().AppendSQL(sql)
	return q
}

// Join adds an inner join.
func (q *SQLQuery) Join(table string, alias ...string) *SQLQuery {
	q.builder.JoinClause().Join(table, alias...)
	return q
}

// LeftJoin adds a left join.
func (q *SQLQuery) LeftJoin(table string, alias ...string) *SQLQuery {
	q.builder.JoinClause().LeftJoin(table, alias...)
	return q
}

// RightJoin adds a right join.
func (q *SQLQuery) RightJoin(table string, alias ...string) *SQLQuery {
	q.builder.JoinClause().RightJoin(table, alias...)
	return q
}

// JoinEntity joins the table of an entity type.
func (q *SQLQuery) JoinEntity(kind clause.JoinKind, ref entity.TypeRef, alias, schema string) *SQLQuery {
	q.builder.JoinClause().JoinEntity(kind, ref, alias, schema)
	return q
}

// On adds a column comparison to the last join.
func (q *SQLQuery) On(left string, op clause.Operator, right string) *SQLQuery {
	q.builder.JoinClause().On(left, op, right)
	return q
}

// OnColumn adds an equality between two entity fields to the last join.
func (q *SQLQuery) OnColumn(left, right entity.ColumnRef) *SQLQuery {
	q.builder.JoinClause().OnColumn(left, right)
	return q
}

// OnExp adds an expression to the last join.
func (q *SQLQuery) OnExp(exp clause.Expression) *SQLQuery {
	q.builder.JoinClause().OnExp(exp)
	return q
}

// AppendJoin appends a raw join fragment.
func (q *SQLQuery) AppendJoin(sql string) *SQLQuery {
	q.builder.JoinClause().AppendSQL(sql)
	return q
}

// Where adds "column op value".
func (q *SQLQuery) Where(column string, op clause.Operator, value interface{}) *SQLQuery {
	q.builder.WhereClause().Where(column, op, value)
	return q
}

// WhereIf adds "column op value" when cond is true.
func (q *SQLQuery) WhereIf(cond bool, column string, op clause.Operator, value interface{}) *SQLQuery {
	q.builder.WhereClause().WhereIf(cond, column, op, value)
	return q
}

// WhereColumn adds a condition on an entity field.
func (q *SQLQuery) WhereColumn(ref entity.ColumnRef, op clause.Operator, value interface{}) *SQLQuery {
	q.builder.WhereClause().WhereColumn(ref, op, value)
	return q
}

// WhereExp adds an expression.
func (q *SQLQuery) WhereExp(exp clause.Expression) *SQLQuery {
	q.builder.WhereClause().WhereExp(exp)
	return q
}

// AppendWhere appends a raw condition.
func (q *SQLQuery) AppendWhere(sql string) *SQLQuery {
	q.builder.WhereClause().AppendSQL(sql)
	return q
}

// AppendWhereWithParams appends a raw condition using named parameters.
func (q *SQLQuery) AppendWhereWithParams(sql string, params Params) *SQLQuery {
	q.builder.WhereClause().AppendSQLWithParams(sql, params)
	return q
}

// GroupBy adds grouping columns and an optional raw Having condition.
func (q *SQLQuery) GroupBy(columns string, having ...string) *SQLQuery {
	q.builder.GroupByClause().GroupBy(columns, having...)
	return q
}

// GroupByColumn adds an entity field to the grouping.
func (q *SQLQuery) GroupByColumn(ref entity.ColumnRef) *SQLQuery {
	q.builder.GroupByClause().GroupByColumn(ref)
	return q
}

// Having adds a Having condition.
func (q *SQLQuery) Having(exp clause.Expression) *SQLQuery {
	q.builder.GroupByClause().Having(exp)
	return q
}

// OrderBy adds sort keys such as "name, age desc".
func (q *SQLQuery) OrderBy(order string, tableAlias ...string) *SQLQuery {
	q.builder.OrderByClause().OrderBy(order, tableAlias...)
	return q
}

// OrderByColumn adds an entity field sort key.
func (q *SQLQuery) OrderByColumn(ref entity.ColumnRef, desc bool) *SQLQuery {
	q.builder.OrderByClause().OrderByColumn(ref, desc)
	return q
}

// AppendOrderBy appends a raw sort fragment.
func (q *SQLQuery) AppendOrderBy(sql string) *SQLQuery {
	q.builder.OrderByClause().AppendSQL(sql)
	return q
}

// Limit takes at most n rows.
func (q *SQLQuery) Limit(n int) *SQLQuery {
	q.builder.Limit(n)
	return q
}

// Offset skips n rows.
func (q *SQLQuery) Offset(n int) *SQLQuery {
	q.builder.Offset(n)
	return q
}

// Page pages the result with p.
func (q *SQLQuery) Page(p *clause.Pager) *SQLQuery {
	q.builder.Pager(p)
	return q
}

// connection returns conn, or one from the query database.
func (q *SQLQuery) connection(ctx context.Context, conn Conn) (Conn, error) {
	if conn != nil {
		return conn, nil
	}
	if q.db == nil {
		return nil, ErrMissingConnection
	}
	c, err := q.db.GetConnection(ctx)
	if err != nil {
		return nil, WrapError(err, "get connection")
	}
	if c == nil {
		return nil, ErrMissingConnection
	}
	return c, nil
}

// clearAfterExecution clears the query when the options ask for it.
func (q *SQLQuery) clearAfterExecution() {
	if q.Options().IsClearAfterExecution {
		q.Clear()
	}
}

// run validates and traces sql, then hands it to fn inside a span.
func run[T any](ctx context.Context, q *SQLQuery, conn Conn, sql string, params Params, fn Executor[T]) (T, error) {
	if q.validator != nil {
		if err := q.validator.ValidateQuery(sql); err != nil {
			var zero T
			return zero, err
		}
	}
	q.trace.Trace(ctx, sql, params, InlineParams(sql, params))

	op := tracer.DetectOperation(sql)
	ctx, span := q.tracer.StartSpan(ctx, tracer.SpanName(op))
	defer span.End()

	start := time.Now()
	result, err := fn(ctx, conn, sql, params)
	tracer.AddQueryAttributes(span, &tracer.QueryMetadata{
		SQL:         sql,
		ParamsCount: len(params),
		Duration:    time.Since(start),
		Error:       err,
		Database:    q.Dialect().Name(),
		Operation:   op,
		Table:       q.builder.FromClause().Table(),
	})
	return result, err
}

// Query renders q and runs it with fn on conn, or on a connection from the
// query database when conn is nil. The query is cleared afterwards when
// IsClearAfterExecution is set and fn succeeded.
func Query[T any](ctx context.Context, q *SQLQuery, fn Executor[T], conn Conn) (T, error) {
	var zero T
	sql, err := q.builder.ToSQL()
	if err != nil {
		return zero, err
	}
	params, err := q.builder.GetParams()
	if err != nil {
		return zero, err
	}
	c, err := q.connection(ctx, conn)
	if err != nil {
		return zero, err
	}

	result, err := run(ctx, q, c, sql, params, fn)
	if err != nil {
		return zero, err
	}
	q.clearAfterExecution()
	return result, nil
}

// PagerList is one page of results.
type PagerList[T any] struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalCount int64 `json:"total_count"`
	PageCount  int   `json:"page_count"`
	Items      []T   `json:"items"`
}

// NewPagerList wraps items with the counters of p.
func NewPagerList[T any](p *clause.Pager, items []T) *PagerList[T] {
	if items == nil {
		items = []T{}
	}
	return &PagerList[T]{
		Page:       p.Page,
		PageSize:   p.Limit(),
		TotalCount: p.TotalCount,
		PageCount:  p.PageCount(),
		Items:      items,
	}
}

// count fills pager.TotalCount through countFn unless it is already known.
func count(ctx context.Context, q *SQLQuery, pager *clause.Pager, countFn Executor[int64], conn Conn) error {
	if pager.TotalCount > 0 {
		return nil
	}
	sql, err := q.builder.ToCountSQL()
	if err != nil {
		return err
	}
	params, err := q.builder.GetParams()
	if err != nil {
		return err
	}
	total, err := run(ctx, q, conn, sql, params, countFn)
	if err != nil {
		return err
	}
	pager.TotalCount = total
	return nil
}

// preparePager normalizes pager and checks that q is ordered.
func preparePager(q *SQLQuery, pager *clause.Pager) (*clause.Pager, error) {
	if pager == nil {
		pager = &clause.Pager{}
	}
	pager.Normalize()
	if err := q.builder.OrderByClause().Validate(pager); err != nil {
		return nil, err
	}
	return pager, nil
}

// QueryPager runs the count query (unless pager.TotalCount is already set)
// and the page query, returning the page. It fails with ErrInvalidState
// when q has no Order By clause.
func QueryPager[T any](ctx context.Context, q *SQLQuery, pager *clause.Pager, listFn Executor[[]T], countFn Executor[int64], conn Conn) (*PagerList[T], error) {
	pager, err := preparePager(q, pager)
	if err != nil {
		return nil, err
	}
	c, err := q.connection(ctx, conn)
	if err != nil {
		return nil, err
	}
	if err := count(ctx, q, pager, countFn, c); err != nil {
		return nil, err
	}

	sql, params, err := q.builder.pagedSQL(pager)
	if err != nil {
		return nil, err
	}
	items, err := run(ctx, q, c, sql, params, listFn)
	if err != nil {
		return nil, err
	}

	q.clearAfterExecution()
	return NewPagerList(pager, items), nil
}

// QueryPage is QueryPager for a page number and size.
func QueryPage[T any](ctx context.Context, q *SQLQuery, page, pageSize int, listFn Executor[[]T], countFn Executor[int64], conn Conn) (*PagerList[T], error) {
	return QueryPager(ctx, q, clause.NewPager(page, pageSize), listFn, countFn, conn)
}

// PagerQuery counts through the builder like QueryPager but fetches the
// page with a caller-supplied function.
func PagerQuery[T any](ctx context.Context, q *SQLQuery, listFn func(ctx context.Context) ([]T, error), pager *clause.Pager, countFn Executor[int64], conn Conn) (*PagerList[T], error) {
	pager, err := preparePager(q, pager)
	if err != nil {
		return nil, err
	}
	c, err := q.connection(ctx, conn)
	if err != nil {
		return nil, err
	}
	if err := count(ctx, q, pager, countFn, c); err != nil {
		return nil, err
	}
	items, err := listFn(ctx)
	if err != nil {
		return nil, err
	}
	q.clearAfterExecution()
	return NewPagerList(pager, items), nil
}

// All runs q and scans every row into T.
func All[T any](ctx context.Context, q *SQLQuery, conn Conn) ([]T, error) {
	return Query(ctx, q, ScanAll[T](q.Dialect()), conn)
}

// One runs q and scans the first row into T. ErrNoRows when there is none.
func One[T any](ctx context.Context, q *SQLQuery, conn Conn) (T, error) {
	return Query(ctx, q, ScanOne[T](q.Dialect()), conn)
}

// Scalar runs q and returns the single value of the first row.
func Scalar[T any](ctx context.Context, q *SQLQuery, conn Conn) (T, error) {
	return Query(ctx, q, ScanScalar[T](q.Dialect()), conn)
}

// Maps runs q and returns every row as a column-keyed map.
func Maps(ctx context.Context, q *SQLQuery, conn Conn) ([]map[string]interface{}, error) {
	return Query(ctx, q, ScanMaps(q.Dialect()), conn)
}

// Page runs q as a paged query scanning rows into T.
func Page[T any](ctx context.Context, q *SQLQuery, pager *clause.Pager, conn Conn) (*PagerList[T], error) {
	d := q.Dialect()
	return QueryPager(ctx, q, pager, ScanAll[T](d), ScanScalar[int64](d), conn)
}
