package clause

import (
	"reflect"
	"strings"

	"github.com/coregx/sqlquery/internal/dialects"
	"github.com/coregx/sqlquery/internal/entity"
)

// columnItem is a selectable or groupable column reference.
type columnItem struct {
	name   string
	alias  string
	owner  reflect.Type
	prefix string
	raw    bool
}

func newColumn(expr, prefix string) columnItem {
	c := columnItem{name: strings.TrimSpace(expr), prefix: strings.TrimSpace(prefix)}
	if lower := strings.ToLower(c.name); strings.Contains(lower, " as ") {
		idx := strings.LastIndex(lower, " as ")
		c.alias = strings.TrimSpace(c.name[idx+4:])
		c.name = strings.TrimSpace(c.name[:idx])
	}
	if c.prefix == "" {
		c.prefix, c.name = splitPrefix(c.name)
	}
	return c
}

// sameColumn applies the OrderBy equality rule to plain columns; the alias
// has to match as well so "a as x, a as y" keeps both.
func sameColumn(existing, candidate columnItem) bool {
	if existing.raw || candidate.raw {
		return false
	}
	if !strings.EqualFold(existing.name, candidate.name) || !strings.EqualFold(existing.alias, candidate.alias) {
		return false
	}
	return candidate.prefix == "" || strings.EqualFold(existing.prefix, candidate.prefix)
}

func (c columnItem) toSQL(b *base) string {
	if c.raw {
		return c.name
	}
	prefix := c.prefix
	if prefix == "" && c.owner != nil {
		prefix = b.qualifier(c.owner)
	}
	sql := b.name(qualify(prefix, c.name))
	if c.alias != "" {
		sql += " As " + b.name(c.alias)
	}
	return sql
}

// Select is the Select clause.
type Select struct {
	base
	items    list[columnItem]
	distinct bool
}

// NewSelect creates an empty Select clause.
func NewSelect(d dialects.Dialect, r entity.Resolver, register *entity.AliasRegister) *Select {
	return &Select{
		base:  newBase(d, r, register),
		items: list[columnItem]{equal: sameColumn},
	}
}

// Clone returns a copy wired to register.
func (c *Select) Clone(register *entity.AliasRegister) *Select {
	return &Select{base: c.base.rebind(register), items: c.items.clone(), distinct: c.distinct}
}

// Select adds comma-separated columns, e.g. "id, name as n".
func (c *Select) Select(columns string, tableAlias ...string) *Select {
	if strings.TrimSpace(columns) == "" {
		return c
	}
	alias := first(tableAlias)
	for _, expr := range splitList(columns) {
		c.items.add(newColumn(expr, alias))
	}
	return c
}

// SelectColumn adds an entity field, optionally aliased.
func (c *Select) SelectColumn(ref entity.ColumnRef, alias string) *Select {
	col, ok := c.column(ref)
	if !ok {
		return c
	}
	c.items.add(columnItem{name: col, alias: strings.TrimSpace(alias), owner: ref.Type})
	return c
}

// SelectAll adds "*" qualified by tableAlias when given.
func (c *Select) SelectAll(tableAlias ...string) *Select {
	c.items.add(columnItem{name: "*", prefix: first(tableAlias)})
	return c
}

// Distinct toggles Select Distinct.
func (c *Select) Distinct(distinct bool) *Select {
	c.distinct = distinct
	return c
}

// IsDistinct reports whether Select Distinct is rendered.
func (c *Select) IsDistinct() bool {
	return c.distinct
}

// AppendSQL appends a raw select fragment verbatim.
func (c *Select) AppendSQL(sql string) *Select {
	if strings.TrimSpace(sql) == "" {
		return c
	}
	c.items.addRaw(columnItem{name: sql, raw: true})
	return c
}

// Len returns the number of selected columns.
func (c *Select) Len() int {
	return c.items.len()
}

// Clear removes all columns and the distinct flag.
func (c *Select) Clear() {
	c.items.clear()
	c.distinct = false
	c.err = nil
}

// Validate returns the first error recorded while adding columns.
func (c *Select) Validate() error {
	return c.err
}

// ToSQL renders the clause, or "" when no column was selected.
func (c *Select) ToSQL() string {
	keyword := "Select"
	if c.distinct {
		keyword = "Select Distinct"
	}
	return c.items.render(keyword, ",", func(col columnItem) string {
		return col.toSQL(&c.base)
	})
}
