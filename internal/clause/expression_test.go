package clause

import (
	"testing"

	"github.com/coregx/sqlquery/internal/dialects"
	"github.com/stretchr/testify/assert"
)

func newTestBinder(dialect string) *Binder {
	b := newBase(dialects.GetDialect(dialect), nil, nil)
	return &Binder{base: &b, params: NewParamSet("p")}
}

func TestExpressions_Build(t *testing.T) {
	tests := []struct {
		name       string
		exp        Expression
		wantSQL    string
		wantParams Params
	}{
		{
			name:       "raw with args",
			exp:        NewExp("age > ? and status = ?", 18, "x"),
			wantSQL:    "age > {:p0} and status = {:p1}",
			wantParams: Params{"p0": 18, "p1": "x"},
		},
		{
			name:       "raw without args",
			exp:        NewExp("a = b"),
			wantSQL:    "a = b",
			wantParams: Params{},
		},
		{
			name:       "hash",
			exp:        HashExp{"b": 2, "a": nil, "c": []interface{}{1, 2}},
			wantSQL:    "a Is Null And b={:p0} And c In ({:p1},{:p2})",
			wantParams: Params{"p0": 2, "p1": 1, "p2": 2},
		},
		{
			name:       "in empty",
			exp:        In("id"),
			wantSQL:    "0=1",
			wantParams: Params{},
		},
		{
			name:       "not in empty",
			exp:        NotIn("id"),
			wantSQL:    "",
			wantParams: Params{},
		},
		{
			name:       "in single",
			exp:        In("id", 5),
			wantSQL:    "id={:p0}",
			wantParams: Params{"p0": 5},
		},
		{
			name:       "in with null",
			exp:        In("id", 1, nil, 2),
			wantSQL:    "id In ({:p0},Null,{:p1})",
			wantParams: Params{"p0": 1, "p1": 2},
		},
		{
			name:       "between",
			exp:        Between("age", 1, 9),
			wantSQL:    "age Between {:p0} And {:p1}",
			wantParams: Params{"p0": 1, "p1": 9},
		},
		{
			name:       "not like",
			exp:        NotLike("name", "a%"),
			wantSQL:    "name Not Like {:p0}",
			wantParams: Params{"p0": `%a\%%`},
		},
		{
			name:       "or like",
			exp:        OrLike("name", "a", "b").Match(false, true),
			wantSQL:    "name Like {:p0} Or name Like {:p1}",
			wantParams: Params{"p0": "a%", "p1": "b%"},
		},
		{
			name:       "and skips empty",
			exp:        And(Eq("a", 1), nil, NewExp("")),
			wantSQL:    "a={:p0}",
			wantParams: Params{"p0": 1},
		},
		{
			name:       "not",
			exp:        Not(Eq("a", nil)),
			wantSQL:    "Not (a Is Null)",
			wantParams: Params{},
		},
		{
			name:       "nested",
			exp:        And(Or(Eq("a", 1), Eq("b", 2)), NotEq("c", 3)),
			wantSQL:    "((a={:p0}) Or (b={:p1})) And (c<>{:p2})",
			wantParams: Params{"p0": 1, "p1": 2, "p2": 3},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBinder("generic")
			assert.Equal(t, tt.wantSQL, tt.exp.Build(b))
			assert.Equal(t, tt.wantParams, b.params.Values())
		})
	}
}

func TestColumnExp_Quoting(t *testing.T) {
	b := newTestBinder("postgres")
	assert.Equal(t, `"o"."user_id"="u"."id"`, EqColumn("o.user_id", "u.id").Build(b))
	assert.Equal(t, "", EqColumn("", "u.id").Build(b))
}
