package clause

import (
	"testing"

	"github.com/coregx/sqlquery/internal/dialects"
	"github.com/coregx/sqlquery/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelect_ToSQL(t *testing.T) {
	tests := []struct {
		name  string
		build func(c *Select)
		want  string
	}{
		{"columns", func(c *Select) { c.Select("id, name") }, "Select id,name"},
		{"alias", func(c *Select) { c.Select("id, name as n") }, "Select id,name As n"},
		{"dedup", func(c *Select) { c.Select("id").Select("ID") }, "Select id"},
		{"same column different alias", func(c *Select) { c.Select("a as x, a as y") }, "Select a As x,a As y"},
		{"table alias", func(c *Select) { c.Select("id, name", "u") }, "Select u.id,u.name"},
		{"function", func(c *Select) { c.Select("Count(*) as total") }, "Select Count(*) As total"},
		{"all", func(c *Select) { c.SelectAll() }, "Select *"},
		{"all qualified", func(c *Select) { c.SelectAll("u") }, "Select u.*"},
		{"distinct", func(c *Select) { c.Select("dept").Distinct(true) }, "Select Distinct dept"},
		{"raw", func(c *Select) { c.AppendSQL("Case When a Then 1 End As flag") }, "Select Case When a Then 1 End As flag"},
		{"blank", func(c *Select) { c.Select(" ") }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewSelect(generic(), nil, nil)
			tt.build(c)
			assert.Equal(t, tt.want, c.ToSQL())
		})
	}
}

func TestSelect_Quoting(t *testing.T) {
	c := NewSelect(dialects.GetDialect("mysql"), nil, nil).Select("u.id, name as n")
	assert.Equal(t, "Select `u`.`id`,`name` As `n`", c.ToSQL())
}

func TestSelect_Column(t *testing.T) {
	reg := entity.NewAliasRegister()
	require.NoError(t, reg.Register(entity.Table[testUser](), "u"))

	c := NewSelect(generic(), nil, reg).
		SelectColumn(entity.Column[testUser]("ID"), "").
		SelectColumn(entity.Column[testUser]("Name"), "n").
		SelectColumn(entity.Column[testOrder]("Total"), "")
	assert.Equal(t, "Select u.id,u.user_name As n,orders.total", c.ToSQL())
	assert.NoError(t, c.Validate())

	c.SelectColumn(entity.Column[testUser]("Nope"), "")
	assert.ErrorIs(t, c.Validate(), entity.ErrUnknownColumn)
}

func TestSelect_Clear(t *testing.T) {
	c := NewSelect(generic(), nil, nil).Select("id").Distinct(true)
	c.Clear()
	assert.Equal(t, 0, c.Len())
	c.Select("id")
	assert.Equal(t, "Select id", c.ToSQL())
}
