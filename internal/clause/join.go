package clause

import (
	"strings"

	"github.com/coregx/sqlquery/internal/dialects"
	"github.com/coregx/sqlquery/internal/entity"
)

// JoinKind is the join keyword.
type JoinKind string

// Join kinds.
const (
	InnerJoin JoinKind = "Join"
	LeftJoin  JoinKind = "Left Join"
	RightJoin JoinKind = "Right Join"
)

type joinItem struct {
	kind       JoinKind
	table      tableItem
	conditions []condition
}

func (j joinItem) toSQL(b *base, params *ParamSet) string {
	var sb strings.Builder
	if j.table.raw {
		sb.WriteString(j.table.table)
	} else {
		sb.WriteString(string(j.kind))
		sb.WriteByte(' ')
		sb.WriteString(j.table.toSQL(b))
	}
	on := make([]string, 0, len(j.conditions))
	for _, cond := range j.conditions {
		if sql := b.renderCondition(params, cond); sql != "" {
			on = append(on, sql)
		}
	}
	if len(on) > 0 {
		sb.WriteString(" On ")
		sb.WriteString(strings.Join(on, " And "))
	}
	return sb.String()
}

// Join is the Join clause. On conditions attach to the most recent join.
type Join struct {
	base
	items  list[joinItem]
	params *ParamSet
}

// NewJoin creates an empty Join clause.
func NewJoin(d dialects.Dialect, r entity.Resolver, register *entity.AliasRegister) *Join {
	return &Join{base: newBase(d, r, register), params: NewParamSet("_p_j")}
}

// Clone returns a copy wired to register.
func (c *Join) Clone(register *entity.AliasRegister) *Join {
	items := c.items.clone()
	for i := range items.items {
		items.items[i].conditions = append([]condition(nil), items.items[i].conditions...)
	}
	return &Join{base: c.base.rebind(register), items: items, params: c.params.Clone()}
}

func (c *Join) add(kind JoinKind, table string, alias []string) *Join {
	if strings.TrimSpace(table) == "" {
		return c
	}
	item := parseTable(table, first(alias))
	c.items.addRaw(joinItem{kind: kind, table: item})
	return c
}

func (c *Join) addEntity(kind JoinKind, ref entity.TypeRef, alias, schema string) *Join {
	item, ok := c.entityTable(ref, alias, schema)
	if !ok {
		return c
	}
	c.registerTable(item)
	c.items.addRaw(joinItem{kind: kind, table: item})
	return c
}

// Join adds an inner join.
func (c *Join) Join(table string, alias ...string) *Join {
	return c.add(InnerJoin, table, alias)
}

// LeftJoin adds a left join.
func (c *Join) LeftJoin(table string, alias ...string) *Join {
	return c.add(LeftJoin, table, alias)
}

// RightJoin adds a right join.
func (c *Join) RightJoin(table string, alias ...string) *Join {
	return c.add(RightJoin, table, alias)
}

// JoinEntity adds a join of kind on the table of an entity type.
func (c *Join) JoinEntity(kind JoinKind, ref entity.TypeRef, alias, schema string) *Join {
	return c.addEntity(kind, ref, alias, schema)
}

// On adds "left op right" comparing two columns to the last join.
func (c *Join) On(left string, op Operator, right string) *Join {
	if strings.TrimSpace(left) == "" || strings.TrimSpace(right) == "" {
		return c
	}
	if op == "" {
		op = OpEqual
	}
	return c.OnExp(&ColumnExp{Left: strings.TrimSpace(left), Operator: string(op), Right: strings.TrimSpace(right)})
}

// OnColumn adds "left = right" between two entity fields to the last join.
// The fields are qualified when the clause is rendered.
func (c *Join) OnColumn(left, right entity.ColumnRef) *Join {
	return c.OnExp(EqFields(left, right))
}

// OnExp adds an expression to the last join. Calling it before any join
// records ErrInvalidState.
func (c *Join) OnExp(exp Expression) *Join {
	if exp == nil {
		return c
	}
	n := c.items.len()
	if n == 0 {
		c.fail(errInvalidState("join condition without a join"))
		return c
	}
	cond, ok := c.newCondition(c.params, exp)
	if !ok {
		return c
	}
	last := &c.items.items[n-1]
	last.conditions = append(last.conditions, cond)
	return c
}

// AppendSQL appends a raw join fragment verbatim.
func (c *Join) AppendSQL(sql string) *Join {
	if strings.TrimSpace(sql) == "" {
		return c
	}
	c.items.addRaw(joinItem{table: tableItem{table: sql, raw: true}})
	return c
}

// Params returns the parameters bound by join conditions.
func (c *Join) Params() Params {
	return c.params.Values()
}

// Len returns the number of joins.
func (c *Join) Len() int {
	return c.items.len()
}

// Clear removes all joins and parameters.
func (c *Join) Clear() {
	c.items.clear()
	c.params.Clear()
	c.err = nil
}

// Validate returns the first error recorded while adding joins.
func (c *Join) Validate() error {
	return c.err
}

// ToSQL renders every join on its own line, or "" when there is none.
func (c *Join) ToSQL() string {
	return c.items.render("", "\n", func(j joinItem) string {
		return j.toSQL(&c.base, c.params)
	})
}
