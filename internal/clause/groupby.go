package clause

import (
	"strings"

	"github.com/coregx/sqlquery/internal/dialects"
	"github.com/coregx/sqlquery/internal/entity"
)

// GroupBy is the Group By clause together with its Having conditions.
type GroupBy struct {
	base
	items  list[columnItem]
	having list[condition]
	params *ParamSet
}

// NewGroupBy creates an empty Group By clause.
func NewGroupBy(d dialects.Dialect, r entity.Resolver, register *entity.AliasRegister) *GroupBy {
	return &GroupBy{
		base:   newBase(d, r, register),
		items:  list[columnItem]{equal: sameColumn},
		params: NewParamSet("_p_h"),
	}
}

// Clone returns a copy wired to register.
func (c *GroupBy) Clone(register *entity.AliasRegister) *GroupBy {
	return &GroupBy{
		base:   c.base.rebind(register),
		items:  c.items.clone(),
		having: c.having.clone(),
		params: c.params.Clone(),
	}
}

// GroupBy adds comma-separated grouping columns and an optional raw Having
// condition.
func (c *GroupBy) GroupBy(columns string, having ...string) *GroupBy {
	for _, expr := range splitList(columns) {
		c.items.add(newColumn(expr, ""))
	}
	if h := first(having); h != "" {
		c.having.addRaw(condition{raw: h})
	}
	return c
}

// GroupByColumn adds an entity field.
func (c *GroupBy) GroupByColumn(ref entity.ColumnRef) *GroupBy {
	col, ok := c.column(ref)
	if !ok {
		return c
	}
	c.items.add(columnItem{name: col, owner: ref.Type})
	return c
}

// Having adds a Having condition.
func (c *GroupBy) Having(exp Expression) *GroupBy {
	if exp == nil {
		return c
	}
	if cond, ok := c.newCondition(c.params, exp); ok {
		c.having.addRaw(cond)
	}
	return c
}

// AppendSQL appends a raw grouping fragment verbatim.
func (c *GroupBy) AppendSQL(sql string) *GroupBy {
	if strings.TrimSpace(sql) == "" {
		return c
	}
	c.items.addRaw(columnItem{name: sql, raw: true})
	return c
}

// Params returns the parameters bound by Having conditions.
func (c *GroupBy) Params() Params {
	return c.params.Values()
}

// Len returns the number of grouping columns.
func (c *GroupBy) Len() int {
	return c.items.len()
}

// Clear removes grouping columns, Having conditions and parameters.
func (c *GroupBy) Clear() {
	c.items.clear()
	c.having.clear()
	c.params.Clear()
	c.err = nil
}

// Validate returns the first error recorded while adding columns.
func (c *GroupBy) Validate() error {
	return c.err
}

// ToSQL renders "Group By ..." followed by a "Having ..." line, or "" when
// empty.
func (c *GroupBy) ToSQL() string {
	group := c.items.render("Group By", ",", func(col columnItem) string {
		return col.toSQL(&c.base)
	})
	having := c.having.render("Having", " And ", func(cond condition) string {
		return c.renderCondition(c.params, cond)
	})
	switch {
	case group == "":
		return having
	case having == "":
		return group
	}
	return group + "\n" + having
}
