// Package clause implements the individual clauses of a SELECT statement.
//
// Every clause accumulates structured items in insertion order, resolves
// entity references through an entity.Resolver and an entity.AliasRegister,
// and renders to dialect-specific SQL only when ToSQL is called. Clauses are
// mutated in place by their fluent methods; Clone is the only copy path.
//
// Clauses are not safe for concurrent use.
package clause

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/coregx/sqlquery/internal/dialects"
	"github.com/coregx/sqlquery/internal/entity"
)

// ErrInvalidState is returned when a clause is not in a renderable state for
// the requested operation.
var ErrInvalidState = errors.New("invalid query state")

func errInvalidState(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, msg)
}

// base holds the collaborators shared by all clause kinds.
type base struct {
	dialect  dialects.Dialect
	resolver entity.Resolver
	register *entity.AliasRegister
	err      error
}

func newBase(d dialects.Dialect, r entity.Resolver, register *entity.AliasRegister) base {
	if r == nil {
		r = entity.NewTagResolver()
	}
	if register == nil {
		register = entity.NewAliasRegister()
	}
	return base{dialect: d, resolver: r, register: register}
}

// rebind returns a copy of b wired to register.
func (b base) rebind(register *entity.AliasRegister) base {
	b.register = register
	return b
}

// fail records the first error raised while building the clause. The error
// is reported by Validate.
func (b *base) fail(err error) {
	if err != nil && b.err == nil {
		b.err = err
	}
}

// Err returns the first error recorded while building the clause.
func (b *base) Err() error {
	return b.err
}

// name quotes a possibly qualified identifier.
func (b *base) name(s string) string {
	return dialects.SafeName(b.dialect, s)
}

// qualifier returns the alias of owner when registered, else its table name.
func (b *base) qualifier(owner reflect.Type) string {
	if owner == nil {
		return ""
	}
	return b.register.Resolve(owner, b.resolver)
}

// column resolves ref to its physical column name.
func (b *base) column(ref entity.ColumnRef) (string, bool) {
	if ref.IsZero() {
		return "", false
	}
	col, err := b.resolver.ResolveColumn(ref.Type, ref.Field)
	if err != nil {
		b.fail(err)
		return "", false
	}
	return col, true
}

// qualified resolves ref to "qualifier.column".
func (b *base) qualified(ref entity.ColumnRef) (string, bool) {
	col, ok := b.column(ref)
	if !ok {
		return "", false
	}
	return b.qualifier(ref.Type) + "." + col, true
}

// table renders "schema.table As alias" for a table source.
func (b *base) table(schema, table, alias string) string {
	name := table
	if schema != "" {
		name = schema + "." + table
	}
	sql := b.name(name)
	if alias != "" {
		sql += " " + b.dialect.TableAliasKeyword() + " " + b.name(alias)
	}
	return sql
}

// list is the ordered item storage shared by the clause kinds.
// Items are rendered in insertion order. When equal is set, a candidate equal
// to an existing item is dropped; the first insertion wins.
type list[T any] struct {
	items []T
	equal func(existing, candidate T) bool
}

// add appends item unless an equal item already exists.
func (l *list[T]) add(item T) bool {
	if l.equal != nil {
		for _, existing := range l.items {
			if l.equal(existing, item) {
				return false
			}
		}
	}
	l.items = append(l.items, item)
	return true
}

// addRaw appends item without any equality check.
func (l *list[T]) addRaw(item T) {
	l.items = append(l.items, item)
}

func (l *list[T]) len() int {
	return len(l.items)
}

func (l *list[T]) clear() {
	l.items = nil
}

// clone copies the item slice. Items are immutable values.
func (l list[T]) clone() list[T] {
	items := make([]T, len(l.items))
	copy(items, l.items)
	return list[T]{items: items, equal: l.equal}
}

// render returns keyword followed by the rendered items joined with sep, or
// "" when the list is empty.
func (l list[T]) render(keyword, sep string, fn func(T) string) string {
	if len(l.items) == 0 {
		return ""
	}
	parts := make([]string, 0, len(l.items))
	for _, item := range l.items {
		if s := fn(item); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	if keyword == "" {
		return strings.Join(parts, sep)
	}
	return keyword + " " + strings.Join(parts, sep)
}

// splitList splits a comma-separated column list, dropping blank entries.
// Commas inside parentheses do not split.
func splitList(s string) []string {
	var (
		parts []string
		depth int
		start int
	)
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = appendTrimmed(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return appendTrimmed(parts, s[start:])
}

func appendTrimmed(parts []string, s string) []string {
	if s = strings.TrimSpace(s); s != "" {
		parts = append(parts, s)
	}
	return parts
}

// splitPrefix splits "t.column" into ("t", "column"). Expressions containing
// parentheses or spaces are returned whole.
func splitPrefix(column string) (prefix, name string) {
	if strings.ContainsAny(column, "() ") {
		return "", column
	}
	idx := strings.LastIndex(column, ".")
	if idx <= 0 || idx == len(column)-1 {
		return "", column
	}
	return column[:idx], column[idx+1:]
}

func qualify(prefix, column string) string {
	if prefix == "" {
		return column
	}
	return prefix + "." + column
}
