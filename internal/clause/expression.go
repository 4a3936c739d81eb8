// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package clause

import (
	"sort"
	"strings"

	"github.com/coregx/sqlquery/internal/entity"
)

// Binder renders expressions for one clause: it quotes identifiers through
// the clause dialect and binds values into the clause parameter set.
//
// A replaying binder hands out the names recorded by an earlier build of the
// same expression instead of binding again.
type Binder struct {
	base   *base
	params *ParamSet
	names  []string
	replay bool
	next   int
}

// Name quotes a possibly qualified column name.
func (b *Binder) Name(column string) string {
	return b.base.name(column)
}

// Column resolves an entity field to "qualifier.column", using the alias
// registered for its entity at build time. It returns false when the field
// cannot be resolved.
func (b *Binder) Column(ref entity.ColumnRef) (string, bool) {
	return b.base.qualified(ref)
}

// Bind stores value and returns its named placeholder.
func (b *Binder) Bind(value interface{}) string {
	if b.replay && b.next < len(b.names) {
		name := b.names[b.next]
		b.next++
		return Placeholder(name)
	}
	name := b.params.Add(value)
	b.names = append(b.names, name)
	return Placeholder(name)
}

// condition is a Where, On or Having item. An expression is built once when
// added, which binds its values, and built again by a replaying binder on
// every render so entity fields pick up the aliases registered by then.
type condition struct {
	exp   Expression
	names []string
	raw   string
}

// newCondition builds exp into params. It returns false when exp renders
// nothing.
func (b *base) newCondition(params *ParamSet, exp Expression) (condition, bool) {
	binder := &Binder{base: b, params: params}
	if exp.Build(binder) == "" {
		return condition{}, false
	}
	return condition{exp: exp, names: binder.names}, true
}

func (b *base) renderCondition(params *ParamSet, c condition) string {
	if c.exp == nil {
		return c.raw
	}
	sql := c.exp.Build(&Binder{base: b, params: params, names: c.names, replay: true})
	if sql == "" {
		return ""
	}
	return group(c.exp, sql)
}

// Expression represents a predicate that can be embedded in WHERE, HAVING or
// JOIN ... ON. Build returns the SQL fragment with values already bound
// through the binder, or "" when the expression is empty.
//
// Example:
//
//	q.WhereExp(sqlquery.And(
//	    sqlquery.HashExp{"status": 1},
//	    sqlquery.GreaterThan("age", 18),
//	))
type Expression interface {
	Build(b *Binder) string
}

// RawExp represents a raw SQL expression with optional positional "?" bindings.
type RawExp struct {
	SQL  string
	Args []interface{}
}

// NewExp creates a raw SQL expression. Each "?" in sql is replaced, in order,
// by a named placeholder bound to the matching arg.
func NewExp(sql string, args ...interface{}) Expression {
	return &RawExp{SQL: sql, Args: args}
}

// Build binds the args and returns the SQL.
func (e *RawExp) Build(b *Binder) string {
	if len(e.Args) == 0 {
		return e.SQL
	}
	var sb strings.Builder
	i := 0
	for _, r := range e.SQL {
		if r == '?' && i < len(e.Args) {
			sb.WriteString(b.Bind(e.Args[i]))
			i++
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// HashExp represents a hash-based expression using a map of column-value pairs.
//
// Special value handling:
//   - nil value → "column Is Null"
//   - []interface{} → "column In (...)"
//   - Expression → nested expression in parentheses
//
// Keys are sorted for deterministic SQL; conditions are joined with And.
type HashExp map[string]interface{}

// Build converts a HashExp into a SQL fragment.
func (e HashExp) Build(b *Binder) string {
	if len(e) == 0 {
		return ""
	}

	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		var sql string
		switch v := e[key].(type) {
		case nil:
			sql = b.Name(key) + " Is Null"
		case Expression:
			if sub := v.Build(b); sub != "" {
				sql = "(" + sub + ")"
			}
		case []interface{}:
			sql = In(key, v...).Build(b)
		default:
			sql = b.Name(key) + "=" + b.Bind(v)
		}
		if sql != "" {
			parts = append(parts, sql)
		}
	}
	return strings.Join(parts, " And ")
}

// CompareExp represents a comparison expression (=, <>, >, <, >=, <=).
type CompareExp struct {
	Col      string
	Operator string
	Value    interface{}
}

// Eq generates an equality expression. A nil value renders "Is Null".
func Eq(col string, value interface{}) Expression {
	return &CompareExp{Col: col, Operator: "=", Value: value}
}

// NotEq generates an inequality expression. A nil value renders "Is Not Null".
func NotEq(col string, value interface{}) Expression {
	return &CompareExp{Col: col, Operator: "<>", Value: value}
}

// GreaterThan generates a greater-than expression (column > value).
func GreaterThan(col string, value interface{}) Expression {
	return &CompareExp{Col: col, Operator: ">", Value: value}
}

// LessThan generates a less-than expression (column < value).
func LessThan(col string, value interface{}) Expression {
	return &CompareExp{Col: col, Operator: "<", Value: value}
}

// GreaterOrEqual generates a greater-than-or-equal expression (column >= value).
func GreaterOrEqual(col string, value interface{}) Expression {
	return &CompareExp{Col: col, Operator: ">=", Value: value}
}

// LessOrEqual generates a less-than-or-equal expression (column <= value).
func LessOrEqual(col string, value interface{}) Expression {
	return &CompareExp{Col: col, Operator: "<=", Value: value}
}

// Build converts a comparison expression into a SQL fragment.
func (e *CompareExp) Build(b *Binder) string {
	col := b.Name(e.Col)

	if e.Value == nil {
		switch e.Operator {
		case "=":
			return col + " Is Null"
		case "<>":
			return col + " Is Not Null"
		}
	}

	if expr, ok := e.Value.(Expression); ok {
		return col + e.Operator + "(" + expr.Build(b) + ")"
	}

	return col + e.Operator + b.Bind(e.Value)
}

// FieldExp is "field op value" on an entity field. The field is qualified
// with the alias its entity has when the clause is rendered.
type FieldExp struct {
	Ref      entity.ColumnRef
	Operator Operator
	Value    interface{}
}

// Field generates a condition on an entity field; op follows Condition.
func Field(ref entity.ColumnRef, op Operator, value interface{}) Expression {
	return &FieldExp{Ref: ref, Operator: op, Value: value}
}

// Build resolves the field and renders it like Condition.
func (e *FieldExp) Build(b *Binder) string {
	col, ok := b.Column(e.Ref)
	if !ok {
		return ""
	}
	return Condition(col, e.Operator, e.Value).Build(b)
}

// FieldsExp compares two entity fields, as used by JOIN ... ON.
type FieldsExp struct {
	Left, Right entity.ColumnRef
	Operator    string
}

// EqFields generates "left = right" between two entity fields.
func EqFields(left, right entity.ColumnRef) Expression {
	return &FieldsExp{Left: left, Operator: "=", Right: right}
}

// Build resolves both fields.
func (e *FieldsExp) Build(b *Binder) string {
	l, ok := b.Column(e.Left)
	if !ok {
		return ""
	}
	r, ok := b.Column(e.Right)
	if !ok {
		return ""
	}
	return (&ColumnExp{Left: l, Operator: e.Operator, Right: r}).Build(b)
}

// ColumnExp compares two columns, as used by JOIN ... ON.
type ColumnExp struct {
	Left, Operator, Right string
}

// EqColumn generates "left = right" between two columns.
func EqColumn(left, right string) Expression {
	return &ColumnExp{Left: left, Operator: "=", Right: right}
}

// Build renders both sides as identifiers.
func (e *ColumnExp) Build(b *Binder) string {
	if e.Left == "" || e.Right == "" {
		return ""
	}
	return b.Name(e.Left) + e.Operator + b.Name(e.Right)
}

// InExp represents an In or Not In expression.
type InExp struct {
	Col    string
	Values []interface{}
	Not    bool
}

// In generates an In expression. No values renders "0=1"; a single value is
// rendered as an equality.
func In(col string, values ...interface{}) Expression {
	return &InExp{Col: col, Values: values}
}

// NotIn generates a Not In expression. No values renders "" (always true).
func NotIn(col string, values ...interface{}) Expression {
	return &InExp{Col: col, Values: values, Not: true}
}

// Build converts an In expression into a SQL fragment.
func (e *InExp) Build(b *Binder) string {
	if len(e.Values) == 0 {
		if e.Not {
			return ""
		}
		return "0=1"
	}

	col := b.Name(e.Col)

	if len(e.Values) == 1 {
		if e.Not {
			return (&CompareExp{Col: e.Col, Operator: "<>", Value: e.Values[0]}).Build(b)
		}
		return (&CompareExp{Col: e.Col, Operator: "=", Value: e.Values[0]}).Build(b)
	}

	placeholders := make([]string, len(e.Values))
	for i, val := range e.Values {
		if val == nil {
			placeholders[i] = "Null"
			continue
		}
		placeholders[i] = b.Bind(val)
	}

	op := " In "
	if e.Not {
		op = " Not In "
	}
	return col + op + "(" + strings.Join(placeholders, ",") + ")"
}

// BetweenExp represents a Between or Not Between expression.
type BetweenExp struct {
	Col      string
	From, To interface{}
	Not      bool
}

// Between generates "column Between from And to".
func Between(col string, from, to interface{}) Expression {
	return &BetweenExp{Col: col, From: from, To: to}
}

// NotBetween generates "column Not Between from And to".
func NotBetween(col string, from, to interface{}) Expression {
	return &BetweenExp{Col: col, From: from, To: to, Not: true}
}

// Build converts a Between expression into a SQL fragment.
func (e *BetweenExp) Build(b *Binder) string {
	op := " Between "
	if e.Not {
		op = " Not Between "
	}
	return b.Name(e.Col) + op + b.Bind(e.From) + " And " + b.Bind(e.To)
}

// LikeExp represents a Like or Not Like expression with automatic escaping.
type LikeExp struct {
	Col         string
	Values      []string
	Like        string   // "Like" or "Not Like"
	Or          bool     // true = Or, false = And
	Left, Right bool     // wildcard on left/right
	Escape      []string // special/escaped pairs
}

// DefaultLikeEscape specifies the default special character escaping for Like
// expressions. Strings at 2i are escaped to the string at 2i+1.
var DefaultLikeEscape = []string{"\\", "\\\\", "%", "\\%", "_", "\\_"}

// Like generates a Like expression matching values anywhere in the column.
func Like(col string, values ...string) *LikeExp {
	return &LikeExp{
		Col:    col,
		Values: values,
		Like:   "Like",
		Left:   true,
		Right:  true,
		Escape: DefaultLikeEscape,
	}
}

// NotLike generates a Not Like expression.
func NotLike(col string, values ...string) *LikeExp {
	exp := Like(col, values...)
	exp.Like = "Not Like"
	return exp
}

// OrLike generates a Like expression where any of the values may match.
func OrLike(col string, values ...string) *LikeExp {
	exp := Like(col, values...)
	exp.Or = true
	return exp
}

// Match sets wildcard matching on the left and/or right of the values.
func (e *LikeExp) Match(left, right bool) *LikeExp {
	e.Left, e.Right = left, right
	return e
}

// Build converts a Like expression into a SQL fragment.
func (e *LikeExp) Build(b *Binder) string {
	if len(e.Values) == 0 {
		return ""
	}

	col := b.Name(e.Col)
	parts := make([]string, 0, len(e.Values))
	for _, val := range e.Values {
		for j := 0; j+1 < len(e.Escape); j += 2 {
			val = strings.ReplaceAll(val, e.Escape[j], e.Escape[j+1])
		}
		if e.Left {
			val = "%" + val
		}
		if e.Right {
			val += "%"
		}
		parts = append(parts, col+" "+e.Like+" "+b.Bind(val))
	}

	join := " And "
	if e.Or {
		join = " Or "
	}
	return strings.Join(parts, join)
}

// AndOrExp represents an And or Or combination of expressions.
type AndOrExp struct {
	Exps []Expression
	Op   string // "And" or "Or"
}

// And joins expressions with And. Nil and empty expressions are skipped.
func And(exps ...Expression) Expression {
	return &AndOrExp{Exps: exps, Op: "And"}
}

// Or joins expressions with Or. Nil and empty expressions are skipped.
func Or(exps ...Expression) Expression {
	return &AndOrExp{Exps: exps, Op: "Or"}
}

// Build converts an And/Or expression into a SQL fragment.
func (e *AndOrExp) Build(b *Binder) string {
	parts := make([]string, 0, len(e.Exps))
	for _, exp := range e.Exps {
		if exp == nil {
			continue
		}
		if sql := exp.Build(b); sql != "" {
			parts = append(parts, sql)
		}
	}

	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	}
	return "(" + strings.Join(parts, ") "+e.Op+" (") + ")"
}

// NotExp prefixes Not to an expression.
type NotExp struct {
	Exp Expression
}

// Not generates "Not (exp)".
func Not(exp Expression) Expression {
	return &NotExp{Exp: exp}
}

// Build converts a Not expression into a SQL fragment.
func (e *NotExp) Build(b *Binder) string {
	if e.Exp == nil {
		return ""
	}
	sql := e.Exp.Build(b)
	if sql == "" {
		return ""
	}
	return "Not (" + sql + ")"
}

// group wraps the built sql of exp in parentheses when it is a disjunction,
// so that it keeps its meaning once joined with And.
func group(exp Expression, sql string) string {
	switch e := exp.(type) {
	case *AndOrExp:
		if e.Op == "Or" && strings.HasPrefix(sql, "(") {
			return "(" + sql + ")"
		}
	case *LikeExp:
		if e.Or && len(e.Values) > 1 {
			return "(" + sql + ")"
		}
	}
	return sql
}
