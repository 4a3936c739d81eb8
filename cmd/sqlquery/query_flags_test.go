package main

import (
	"bytes"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coregx/sqlquery/internal/clause"
	"github.com/coregx/sqlquery/internal/core"
	"github.com/coregx/sqlquery/internal/dialects"
)

func TestParseCondition(t *testing.T) {
	tests := []struct {
		spec   string
		column string
		op     clause.Operator
		value  interface{}
	}{
		{"status = 1", "status", clause.OpEqual, int64(1)},
		{"name starts al", "name", clause.OpStarts, "al"},
		{"name = 'Ann Lee'", "name", clause.OpEqual, "Ann Lee"},
		{"active != true", "active", clause.OpNotEqual, true},
		{"id in 1, 2,3", "id", clause.OpIn, []interface{}{int64(1), int64(2), int64(3)}},
		{"id not in 4,5", "id", clause.OpNotIn, []interface{}{int64(4), int64(5)}},
		{"code contains 42", "code", clause.OpContains, "42"},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			column, op, value, err := parseCondition(tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.column, column)
			assert.Equal(t, tt.op, op)
			assert.Equal(t, tt.value, value)
		})
	}

	for _, spec := range []string{"status", "status 1", "status ~ 1"} {
		_, _, _, err := parseCondition(spec)
		assert.Error(t, err, spec)
	}
}

func TestQueryFlags_Apply(t *testing.T) {
	f := queryFlags{
		sel:       "u.name, Count(o.id) as orders",
		from:      "users u",
		leftJoins: []string{"orders o on o.user_id = u.id and o.state <> u.state"},
		where:     []string{"u.status = 1"},
		groupBy:   "u.name",
		having:    []string{"Count(o.id) > 1"},
		orderBy:   "u.name",
	}
	q := core.New(dialects.GetDialect("generic"))
	require.NoError(t, f.apply(q))

	sql, err := q.SQL()
	require.NoError(t, err)
	assert.Equal(t, "Select u.name,Count(o.id) As orders\n"+
		"From users As u\n"+
		"Left Join orders As o On o.user_id=u.id And o.state<>u.state\n"+
		"Where u.status={:_p_w0}\n"+
		"Group By u.name\n"+
		"Having Count(o.id) > 1\n"+
		"Order By u.name", sql)
}

func TestQueryFlags_SelfJoin(t *testing.T) {
	f := queryFlags{
		from:      "employees e",
		leftJoins: []string{"employees m on e.manager_id = m.id"},
		orderBy:   "e.name",
	}
	q := core.New(dialects.GetDialect("generic"))
	require.NoError(t, f.apply(q))

	sql, err := q.SQL()
	require.NoError(t, err)
	assert.Equal(t, "Select *\n"+
		"From employees As e\n"+
		"Left Join employees As m On e.manager_id=m.id\n"+
		"Order By e.name", sql)
}

func TestQueryFlags_Errors(t *testing.T) {
	tests := []queryFlags{
		{},
		{from: "users", joins: []string{"orders o"}},
		{from: "users", joins: []string{"orders o on o.id"}},
		{from: "users", joins: []string{"orders o on a ?? b"}},
		{from: "users", where: []string{"x"}},
	}
	for _, f := range tests {
		q := core.New(dialects.GetDialect("generic"))
		assert.Error(t, f.apply(q), "%+v", f)
	}
}

func TestRender(t *testing.T) {
	f := queryFlags{from: "users", where: []string{"name = bob"}, orderBy: "id", page: 2, pageSize: 5}
	q := core.New(dialects.GetDialect("postgres"))
	require.NoError(t, f.apply(q))
	q.Page(f.pager())

	var buf bytes.Buffer
	require.NoError(t, render(&buf, q))

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "postgres", out["dialect"])
	assert.Equal(t, "Select *\nFrom \"users\"\nWhere \"name\"={:_p_w0}\nOrder By \"id\"\nLimit {:_p_limit} Offset {:_p_offset}", out["sql"])
	assert.Equal(t, "Select Count(*)\nFrom \"users\"\nWhere \"name\"={:_p_w0}", out["count_sql"])
	assert.Equal(t, "Select *\nFrom \"users\"\nWhere \"name\"='bob'\nOrder By \"id\"\nLimit 5 Offset 5", out["debug_sql"])
	assert.Equal(t, map[string]interface{}{"_p_w0": "bob", "_p_limit": float64(5), "_p_offset": float64(5)}, out["params"])
}

func TestRenderCommand(t *testing.T) {
	t.Chdir(t.TempDir())

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"render", "--dialect", "mysql", "--from", "users", "--select", "id"})
	require.NoError(t, rootCmd.Execute())

	var out rendered
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "mysql", out.Dialect)
	assert.Equal(t, "Select `id`\nFrom `users`", out.SQL)
}
