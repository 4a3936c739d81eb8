package clause

import (
	"reflect"
	"strings"

	"github.com/coregx/sqlquery/internal/dialects"
	"github.com/coregx/sqlquery/internal/entity"
)

// OrderByItem is a single sort key. It is immutable once constructed.
type OrderByItem struct {
	Column string
	Desc   bool
	Owner  reflect.Type // entity the column belongs to, if typed
	Prefix string       // table alias or name
	Raw    bool
}

// NewOrderByItem parses "column [asc|desc]". When prefix is empty, a
// qualified column such as "u.name" is split into prefix and column.
func NewOrderByItem(column, prefix string) OrderByItem {
	column = strings.TrimSpace(column)
	prefix = strings.TrimSpace(prefix)

	item := OrderByItem{Column: column, Prefix: prefix}
	if fields := strings.Fields(column); len(fields) > 1 {
		switch strings.ToLower(fields[len(fields)-1]) {
		case "desc":
			item.Desc = true
			item.Column = strings.Join(fields[:len(fields)-1], " ")
		case "asc":
			item.Column = strings.Join(fields[:len(fields)-1], " ")
		}
	}
	if item.Prefix == "" {
		item.Prefix, item.Column = splitPrefix(item.Column)
	}
	return item
}

// Equal reports whether candidate duplicates i: same column ignoring case,
// and either candidate has no prefix or the prefixes match ignoring case.
// Raw items are never equal to anything.
func (i OrderByItem) Equal(candidate OrderByItem) bool {
	if i.Raw || candidate.Raw {
		return false
	}
	if !strings.EqualFold(i.Column, candidate.Column) {
		return false
	}
	return candidate.Prefix == "" || strings.EqualFold(i.Prefix, candidate.Prefix)
}

// ToSQL renders the item. qualifier maps Owner to its alias.
func (i OrderByItem) ToSQL(d dialects.Dialect, qualifier func(reflect.Type) string) string {
	if i.Raw {
		return i.Column
	}
	prefix := i.Prefix
	if prefix == "" && i.Owner != nil && qualifier != nil {
		prefix = qualifier(i.Owner)
	}
	sql := dialects.SafeName(d, qualify(prefix, i.Column))
	if i.Desc {
		sql += " DESC"
	}
	return sql
}

// OrderBy is the Order By clause.
type OrderBy struct {
	base
	items list[OrderByItem]
}

// NewOrderBy creates an empty Order By clause.
func NewOrderBy(d dialects.Dialect, r entity.Resolver, register *entity.AliasRegister) *OrderBy {
	return &OrderBy{
		base:  newBase(d, r, register),
		items: list[OrderByItem]{equal: OrderByItem.Equal},
	}
}

// Clone returns a copy wired to register. Items are copied by value.
func (c *OrderBy) Clone(register *entity.AliasRegister) *OrderBy {
	return &OrderBy{base: c.base.rebind(register), items: c.items.clone()}
}

// OrderBy adds the comma-separated sort keys in order, e.g. "name, age desc".
// tableAlias, when given, qualifies every key. Blank input is ignored and
// keys that duplicate an existing key are dropped.
func (c *OrderBy) OrderBy(order string, tableAlias ...string) *OrderBy {
	if strings.TrimSpace(order) == "" {
		return c
	}
	alias := first(tableAlias)
	for _, column := range splitList(order) {
		item := NewOrderByItem(column, alias)
		if item.Column == "" {
			continue
		}
		c.items.add(item)
	}
	return c
}

// OrderByColumn adds a sort key for an entity field.
func (c *OrderBy) OrderByColumn(ref entity.ColumnRef, desc bool) *OrderBy {
	col, ok := c.column(ref)
	if !ok {
		return c
	}
	c.items.add(OrderByItem{Column: col, Desc: desc, Owner: ref.Type})
	return c
}

// AppendSQL appends a raw sort fragment verbatim.
func (c *OrderBy) AppendSQL(order string) *OrderBy {
	if strings.TrimSpace(order) == "" {
		return c
	}
	c.items.addRaw(OrderByItem{Column: order, Raw: true})
	return c
}

// Items returns a copy of the sort keys.
func (c *OrderBy) Items() []OrderByItem {
	return c.items.clone().items
}

// Len returns the number of sort keys.
func (c *OrderBy) Len() int {
	return c.items.len()
}

// Clear removes all sort keys.
func (c *OrderBy) Clear() {
	c.items.clear()
	c.err = nil
}

// Validate fails with ErrInvalidState when a pager is given but there is no
// sort key. It never fails without a pager; errors recorded while adding
// keys are reported by Err.
func (c *OrderBy) Validate(pager *Pager) error {
	if pager == nil {
		return nil
	}
	if c.items.len() == 0 {
		return errInvalidState("paging requires an order by clause")
	}
	return nil
}

// ToSQL renders the clause, or "" when empty.
func (c *OrderBy) ToSQL() string {
	return c.items.render("Order By", ",", func(item OrderByItem) string {
		return item.ToSQL(c.dialect, c.qualifier)
	})
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}
