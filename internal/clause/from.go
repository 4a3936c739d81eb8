package clause

import (
	"reflect"
	"strings"

	"github.com/coregx/sqlquery/internal/dialects"
	"github.com/coregx/sqlquery/internal/entity"
)

// tableItem is a table source of From or Join.
type tableItem struct {
	table  string
	alias  string
	schema string
	owner  reflect.Type
	raw    bool
}

// parseTable accepts "table", "table alias" and "table as alias". An explicit
// alias overrides the inline one.
func parseTable(table, alias string) tableItem {
	table = strings.TrimSpace(table)
	item := tableItem{table: table, alias: strings.TrimSpace(alias)}
	if strings.ContainsAny(table, "()") {
		return item
	}
	fields := strings.Fields(table)
	switch {
	case len(fields) == 3 && strings.EqualFold(fields[1], "as"):
		item.table = fields[0]
		if item.alias == "" {
			item.alias = fields[2]
		}
	case len(fields) == 2:
		item.table = fields[0]
		if item.alias == "" {
			item.alias = fields[1]
		}
	}
	return item
}

// registerTable records the alias of an entity table in the query register.
// Plain tables carry their alias themselves, so one table may appear under
// several aliases, as in a self-join.
func (b *base) registerTable(item tableItem) {
	if item.alias == "" || item.owner == nil {
		return
	}
	b.fail(b.register.Register(item.owner, item.alias))
}

func (t tableItem) toSQL(b *base) string {
	if t.raw {
		return t.table
	}
	return b.table(t.schema, t.table, t.alias)
}

// entityTable builds the table item for an entity type.
func (b *base) entityTable(ref entity.TypeRef, alias, schema string) (tableItem, bool) {
	if ref.Type == nil {
		return tableItem{}, false
	}
	if schema = strings.TrimSpace(schema); schema == "" {
		schema = b.resolver.Schema(ref.Type)
	}
	return tableItem{
		table:  b.resolver.TableName(ref.Type),
		alias:  strings.TrimSpace(alias),
		schema: schema,
		owner:  ref.Type,
	}, true
}

// From is the From clause. It holds a single table source; setting a new one
// replaces the previous source.
type From struct {
	base
	source *tableItem
}

// NewFrom creates an empty From clause.
func NewFrom(d dialects.Dialect, r entity.Resolver, register *entity.AliasRegister) *From {
	return &From{base: newBase(d, r, register)}
}

// Clone returns a copy wired to register.
func (c *From) Clone(register *entity.AliasRegister) *From {
	clone := &From{base: c.base.rebind(register)}
	if c.source != nil {
		source := *c.source
		clone.source = &source
	}
	return clone
}

// From sets the source table, e.g. From("users", "u") or From("users u").
func (c *From) From(table string, alias ...string) *From {
	if strings.TrimSpace(table) == "" {
		return c
	}
	item := parseTable(table, first(alias))
	c.source = &item
	return c
}

// FromEntity sets the source to the table of an entity type. schema, when
// empty, falls back to the entity's own schema.
func (c *From) FromEntity(ref entity.TypeRef, alias, schema string) *From {
	item, ok := c.entityTable(ref, alias, schema)
	if !ok {
		return c
	}
	c.registerTable(item)
	c.source = &item
	return c
}

// AppendSQL replaces the source with a raw fragment, e.g. a derived table.
func (c *From) AppendSQL(sql string) *From {
	if strings.TrimSpace(sql) == "" {
		return c
	}
	c.source = &tableItem{table: sql, raw: true}
	return c
}

// Table returns the source table name, or "" when unset or raw.
func (c *From) Table() string {
	if c.source == nil || c.source.raw {
		return ""
	}
	return c.source.table
}

// Len returns 1 when a source is set, else 0.
func (c *From) Len() int {
	if c.source == nil {
		return 0
	}
	return 1
}

// Clear removes the source.
func (c *From) Clear() {
	c.source = nil
	c.err = nil
}

// Validate fails with ErrInvalidState when no source is set.
func (c *From) Validate() error {
	if c.err != nil {
		return c.err
	}
	if c.source == nil {
		return errInvalidState("from clause requires a table")
	}
	return nil
}

// ToSQL renders the clause, or "" when no source is set.
func (c *From) ToSQL() string {
	if c.source == nil {
		return ""
	}
	return "From " + c.source.toSQL(&c.base)
}
