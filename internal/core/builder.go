package core

import (
	"database/sql/driver"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/coregx/sqlquery/internal/clause"
	"github.com/coregx/sqlquery/internal/dialects"
	"github.com/coregx/sqlquery/internal/entity"
)

// Paging parameter names.
const (
	limitParam  = "_p_limit"
	offsetParam = "_p_offset"
)

// SQLBuilder owns one instance of every clause and renders them into a
// single SELECT statement. Clauses are rendered in the fixed order Select,
// From, Join, Where, Group By/Having, Order By, followed by paging, one
// clause per line.
//
// A builder is not safe for concurrent use; Clone it instead.
type SQLBuilder struct {
	dialect  dialects.Dialect
	resolver entity.Resolver
	register *entity.AliasRegister

	sel     *clause.Select
	from    *clause.From
	join    *clause.Join
	where   *clause.Where
	groupBy *clause.GroupBy
	orderBy *clause.OrderBy

	pager  *clause.Pager
	limit  int
	offset int
}

// NewSQLBuilder creates an empty builder. A nil resolver uses the db tag
// resolver.
func NewSQLBuilder(d dialects.Dialect, r entity.Resolver) *SQLBuilder {
	if r == nil {
		r = entity.NewTagResolver()
	}
	return newSQLBuilder(d, r, entity.NewAliasRegister())
}

func newSQLBuilder(d dialects.Dialect, r entity.Resolver, register *entity.AliasRegister) *SQLBuilder {
	return &SQLBuilder{
		dialect:  d,
		resolver: r,
		register: register,
		sel:      clause.NewSelect(d, r, register),
		from:     clause.NewFrom(d, r, register),
		join:     clause.NewJoin(d, r, register),
		where:    clause.NewWhere(d, r, register),
		groupBy:  clause.NewGroupBy(d, r, register),
		orderBy:  clause.NewOrderBy(d, r, register),
	}
}

// Dialect returns the builder dialect.
func (b *SQLBuilder) Dialect() dialects.Dialect { return b.dialect }

// Register returns the alias register shared by the clauses.
func (b *SQLBuilder) Register() *entity.AliasRegister { return b.register }

// SelectClause returns the Select clause.
func (b *SQLBuilder) SelectClause() *clause.Select { return b.sel }

// FromClause returns the From clause.
func (b *SQLBuilder) FromClause() *clause.From { return b.from }

// JoinClause returns the Join clause.
func (b *SQLBuilder) JoinClause() *clause.Join { return b.join }

// WhereClause returns the Where clause.
func (b *SQLBuilder) WhereClause() *clause.Where { return b.where }

// GroupByClause returns the Group By clause.
func (b *SQLBuilder) GroupByClause() *clause.GroupBy { return b.groupBy }

// OrderByClause returns the Order By clause.
func (b *SQLBuilder) OrderByClause() *clause.OrderBy { return b.orderBy }

// Pager pages the result with p. A nil pager removes paging.
func (b *SQLBuilder) Pager(p *clause.Pager) *SQLBuilder {
	if p == nil {
		b.pager, b.limit, b.offset = nil, 0, 0
		return b
	}
	b.pager = p
	b.limit = p.Limit()
	b.offset = p.Offset()
	return b
}

// Limit takes at most n rows.
func (b *SQLBuilder) Limit(n int) *SQLBuilder {
	if n < 0 {
		n = 0
	}
	b.limit = n
	return b
}

// Offset skips n rows. It needs a Limit or a Pager.
func (b *SQLBuilder) Offset(n int) *SQLBuilder {
	if n < 0 {
		n = 0
	}
	b.offset = n
	return b
}

// paging returns the pager that describes the current limit and offset, or
// nil when the query is not paged.
func (b *SQLBuilder) paging() *clause.Pager {
	if b.pager != nil {
		return b.pager
	}
	if b.limit == 0 && b.offset == 0 {
		return nil
	}
	return &clause.Pager{PageSize: b.limit}
}

// Validate checks every clause. Paging requires an Order By clause.
func (b *SQLBuilder) Validate() error {
	if err := b.validateSource(); err != nil {
		return err
	}
	if b.offset > 0 && b.limit == 0 {
		return fmt.Errorf("%w: offset requires a limit", ErrInvalidState)
	}
	return b.orderBy.Validate(b.paging())
}

func (b *SQLBuilder) validateSource() error {
	for _, validate := range []func() error{
		b.sel.Validate,
		b.from.Validate,
		b.join.Validate,
		b.where.Validate,
		b.groupBy.Validate,
		b.orderBy.Err,
	} {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

// GetParams merges the parameters of every clause and of paging.
// ErrDuplicateParameter is returned when one name carries two values.
func (b *SQLBuilder) GetParams() (Params, error) {
	var paging Params
	if b.paging() != nil {
		paging = Params{limitParam: b.limit, offsetParam: b.offset}
	}
	return clause.MergeParams(b.where.Params(), b.join.Params(), b.groupBy.Params(), paging)
}

// ToSQL validates the builder and renders the statement with named
// {:name} placeholders.
func (b *SQLBuilder) ToSQL() (string, error) {
	if err := b.Validate(); err != nil {
		return "", err
	}
	parts := b.sourceParts(b.selectSQL())
	parts = append(parts, b.orderBy.ToSQL())
	if b.paging() != nil {
		parts = append(parts, b.dialect.PagingSQL(clause.Placeholder(limitParam), clause.Placeholder(offsetParam)))
	}
	return joinLines(parts), nil
}

// pagedSQL renders the statement and parameters paged by p, leaving the
// builder's own paging untouched.
func (b *SQLBuilder) pagedSQL(p *clause.Pager) (string, Params, error) {
	pager, limit, offset := b.pager, b.limit, b.offset
	defer func() { b.pager, b.limit, b.offset = pager, limit, offset }()

	b.Pager(p)
	sql, err := b.ToSQL()
	if err != nil {
		return "", nil, err
	}
	params, err := b.GetParams()
	if err != nil {
		return "", nil, err
	}
	return sql, params, nil
}

// ToCountSQL renders a statement counting the rows ToSQL would return
// without paging. Grouped and distinct queries are counted over a derived
// table.
func (b *SQLBuilder) ToCountSQL() (string, error) {
	if err := b.validateSource(); err != nil {
		return "", err
	}
	if b.groupBy.Len() == 0 && !b.sel.IsDistinct() {
		return joinLines(b.sourceParts("Select Count(*)")), nil
	}
	inner := b.selectSQL()
	if b.sel.Len() == 0 && b.groupBy.Len() > 0 {
		inner = "Select 1"
	}
	return "Select Count(*)\nFrom (\n" + joinLines(b.sourceParts(inner)) + "\n) " +
		b.dialect.TableAliasKeyword() + " " + dialects.SafeName(b.dialect, "t"), nil
}

// ToDebugSQL renders the statement with every parameter inlined as a
// literal. The result is for logging only and must never be executed.
func (b *SQLBuilder) ToDebugSQL() (string, error) {
	sql, err := b.ToSQL()
	if err != nil {
		return "", err
	}
	params, err := b.GetParams()
	if err != nil {
		return "", err
	}
	return InlineParams(sql, params), nil
}

// selectSQL renders the Select clause, selecting every column when none
// was added.
func (b *SQLBuilder) selectSQL() string {
	if sql := b.sel.ToSQL(); sql != "" {
		return sql
	}
	if b.sel.IsDistinct() {
		return "Select Distinct *"
	}
	return "Select *"
}

func (b *SQLBuilder) sourceParts(sel string) []string {
	return []string{sel, b.from.ToSQL(), b.join.ToSQL(), b.where.ToSQL(), b.groupBy.ToSQL()}
}

func joinLines(parts []string) string {
	lines := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			lines = append(lines, p)
		}
	}
	return strings.Join(lines, "\n")
}

// Clear resets every clause and paging. The alias register is kept.
func (b *SQLBuilder) Clear() {
	b.sel.Clear()
	b.from.Clear()
	b.join.Clear()
	b.where.Clear()
	b.groupBy.Clear()
	b.orderBy.Clear()
	b.pager, b.limit, b.offset = nil, 0, 0
}

// Clone returns an independent builder with a copy of the alias register.
func (b *SQLBuilder) Clone() *SQLBuilder {
	register := b.register.Clone()
	clone := &SQLBuilder{
		dialect:  b.dialect,
		resolver: b.resolver,
		register: register,
		sel:      b.sel.Clone(register),
		from:     b.from.Clone(register),
		join:     b.join.Clone(register),
		where:    b.where.Clone(register),
		groupBy:  b.groupBy.Clone(register),
		orderBy:  b.orderBy.Clone(register),
		limit:    b.limit,
		offset:   b.offset,
	}
	if b.pager != nil {
		p := *b.pager
		clone.pager = &p
	}
	return clone
}

// InlineParams replaces every {:name} placeholder in sql with the literal
// form of its value. Unknown names are left in place.
func InlineParams(sql string, params Params) string {
	return clause.NamedPlaceholderRegex.ReplaceAllStringFunc(sql, func(match string) string {
		value, ok := params[match[2:len(match)-1]]
		if !ok {
			return match
		}
		return FormatLiteral(value)
	})
}

// FormatLiteral renders value as a SQL literal for debug output: strings
// are quoted with embedded quotes doubled, nil is Null, booleans are 1 or 0
// and times are quoted RFC 3339.
func FormatLiteral(value interface{}) string {
	if valuer, ok := value.(driver.Valuer); ok {
		v, err := valuer.Value()
		if err != nil {
			return "?"
		}
		value = v
	}
	switch v := value.(type) {
	case nil:
		return "Null"
	case string:
		return quoteLiteral(v)
	case []byte:
		return quoteLiteral(string(v))
	case bool:
		if v {
			return "1"
		}
		return "0"
	case time.Time:
		return quoteLiteral(v.Format(time.RFC3339))
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return "Null"
		}
		return FormatLiteral(rv.Elem().Interface())
	}
	if rv.Kind() == reflect.String {
		return quoteLiteral(rv.String())
	}
	return fmt.Sprint(value)
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
