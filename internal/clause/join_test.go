package clause

import (
	"testing"

	"github.com/coregx/sqlquery/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoin_ToSQL(t *testing.T) {
	c := NewJoin(generic(), nil, nil).
		Join("orders", "o").On("o.user_id", OpEqual, "u.id").
		LeftJoin("items i").On("i.order_id", "", "o.id").
		RightJoin("notes", "n")

	assert.Equal(t,
		"Join orders As o On o.user_id=u.id\n"+
			"Left Join items As i On i.order_id=o.id\n"+
			"Right Join notes As n",
		c.ToSQL())
	assert.Equal(t, 3, c.Len())
	assert.NoError(t, c.Validate())
}

func TestJoin_OnExpBindsParams(t *testing.T) {
	c := NewJoin(generic(), nil, nil).
		Join("orders", "o").
		OnExp(EqColumn("o.user_id", "u.id")).
		OnExp(Eq("o.status", "paid"))

	assert.Equal(t, "Join orders As o On o.user_id=u.id And o.status={:_p_j0}", c.ToSQL())
	assert.Equal(t, Params{"_p_j0": "paid"}, c.Params())
}

func TestJoin_OnBeforeJoin(t *testing.T) {
	c := NewJoin(generic(), nil, nil).On("a.id", OpEqual, "b.id")
	assert.ErrorIs(t, c.Validate(), ErrInvalidState)
	assert.Equal(t, "", c.ToSQL())
}

func TestJoin_Entity(t *testing.T) {
	reg := entity.NewAliasRegister()
	require.NoError(t, reg.Register(entity.Table[testUser](), "u"))

	c := NewJoin(generic(), nil, reg).
		JoinEntity(LeftJoin, entity.Table[testOrder](), "o", "").
		OnColumn(entity.Column[testOrder]("UserID"), entity.Column[testUser]("ID"))

	assert.Equal(t, "Left Join orders As o On o.user_id=u.id", c.ToSQL())

	alias, ok := reg.Lookup(entity.Table[testOrder]())
	require.True(t, ok)
	assert.Equal(t, "o", alias)
}

func TestJoin_EntityAliasResolvedOnRender(t *testing.T) {
	reg := entity.NewAliasRegister()
	c := NewJoin(generic(), nil, reg).
		JoinEntity(InnerJoin, entity.Table[testOrder](), "o", "").
		OnColumn(entity.Column[testOrder]("UserID"), entity.Column[testUser]("ID"))

	assert.Equal(t, "Join orders As o On o.user_id=users.id", c.ToSQL())

	require.NoError(t, reg.Register(entity.Table[testUser](), "u"))
	assert.Equal(t, "Join orders As o On o.user_id=u.id", c.ToSQL())

	clone := c.Clone(entity.NewAliasRegister())
	assert.Equal(t, "Join orders As o On o.user_id=users.id", clone.ToSQL(), "clone keeps its own register")
}

func TestJoin_SelfJoin(t *testing.T) {
	reg := entity.NewAliasRegister()
	c := NewJoin(generic(), nil, reg).
		LeftJoin("employees", "m").On("e.manager_id", OpEqual, "m.id").
		LeftJoin("employees", "d").On("m.manager_id", OpEqual, "d.id")

	assert.NoError(t, c.Validate())
	assert.Equal(t,
		"Left Join employees As m On e.manager_id=m.id\n"+
			"Left Join employees As d On m.manager_id=d.id",
		c.ToSQL())
	assert.Equal(t, 0, reg.Len(), "plain tables are not registered")
}

func TestJoin_RawIsNotDeduplicated(t *testing.T) {
	c := NewJoin(generic(), nil, nil).
		AppendSQL("Cross Join tags").
		AppendSQL("Cross Join tags")
	assert.Equal(t, "Cross Join tags\nCross Join tags", c.ToSQL())
}

func TestJoin_Clear(t *testing.T) {
	c := NewJoin(generic(), nil, nil).Join("orders", "o").OnExp(Eq("o.id", 1))
	c.Clear()
	assert.Equal(t, "", c.ToSQL())
	assert.Empty(t, c.Params())
}
