package clause

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/coregx/sqlquery/internal/dialects"
	"github.com/coregx/sqlquery/internal/entity"
)

// Operator is a comparison operator of Where and Having conditions.
type Operator string

// Supported operators.
const (
	OpEqual        Operator = "="
	OpNotEqual     Operator = "<>"
	OpGreater      Operator = ">"
	OpGreaterEqual Operator = ">="
	OpLess         Operator = "<"
	OpLessEqual    Operator = "<="
	OpContains     Operator = "contains"
	OpStarts       Operator = "starts"
	OpEnds         Operator = "ends"
	OpIn           Operator = "in"
	OpNotIn        Operator = "not in"
)

// ParseOperator maps SQL spellings such as "!=", "like" or "not in" to an
// Operator. Unknown input returns false.
func ParseOperator(s string) (Operator, bool) {
	switch strings.ToLower(strings.Join(strings.Fields(s), " ")) {
	case "=", "==", "eq":
		return OpEqual, true
	case "<>", "!=", "ne":
		return OpNotEqual, true
	case ">", "gt":
		return OpGreater, true
	case ">=", "ge", "gte":
		return OpGreaterEqual, true
	case "<", "lt":
		return OpLess, true
	case "<=", "le", "lte":
		return OpLessEqual, true
	case "like", "contains":
		return OpContains, true
	case "starts":
		return OpStarts, true
	case "ends":
		return OpEnds, true
	case "in":
		return OpIn, true
	case "not in", "notin":
		return OpNotIn, true
	}
	return "", false
}

// Condition builds the expression "column op value".
func Condition(column string, op Operator, value interface{}) Expression {
	switch op {
	case OpContains:
		return Like(column, toString(value))
	case OpStarts:
		return Like(column, toString(value)).Match(false, true)
	case OpEnds:
		return Like(column, toString(value)).Match(true, false)
	case OpIn:
		return In(column, toSlice(value)...)
	case OpNotIn:
		return NotIn(column, toSlice(value)...)
	case "":
		op = OpEqual
	}
	return &CompareExp{Col: column, Operator: string(op), Value: value}
}

func toString(value interface{}) string {
	if s, ok := value.(string); ok {
		return s
	}
	if value == nil {
		return ""
	}
	return fmt.Sprint(value)
}

// toSlice expands slices and arrays, except []byte, into their elements.
func toSlice(value interface{}) []interface{} {
	if value == nil {
		return nil
	}
	if values, ok := value.([]interface{}); ok {
		return values
	}
	v := reflect.ValueOf(value)
	if (v.Kind() != reflect.Slice && v.Kind() != reflect.Array) || v.Type().Elem().Kind() == reflect.Uint8 {
		return []interface{}{value}
	}
	out := make([]interface{}, v.Len())
	for i := range out {
		out[i] = v.Index(i).Interface()
	}
	return out
}

// Where is the Where clause. Conditions bind their values into the clause
// parameter set when added and are joined with And. Entity fields are
// qualified when the clause is rendered.
type Where struct {
	base
	items  list[condition]
	params *ParamSet
}

// NewWhere creates an empty Where clause.
func NewWhere(d dialects.Dialect, r entity.Resolver, register *entity.AliasRegister) *Where {
	return &Where{base: newBase(d, r, register), params: NewParamSet("_p_w")}
}

// Clone returns a copy wired to register.
func (c *Where) Clone(register *entity.AliasRegister) *Where {
	return &Where{base: c.base.rebind(register), items: c.items.clone(), params: c.params.Clone()}
}

// Where adds "column op value". A nil value with OpEqual or OpNotEqual
// renders Is Null / Is Not Null.
func (c *Where) Where(column string, op Operator, value interface{}) *Where {
	if strings.TrimSpace(column) == "" {
		return c
	}
	return c.WhereExp(Condition(strings.TrimSpace(column), op, value))
}

// WhereIf adds the condition only when cond is true.
func (c *Where) WhereIf(cond bool, column string, op Operator, value interface{}) *Where {
	if !cond {
		return c
	}
	return c.Where(column, op, value)
}

// WhereColumn adds a condition on an entity field. The field is qualified
// with the alias its entity has when the clause is rendered.
func (c *Where) WhereColumn(ref entity.ColumnRef, op Operator, value interface{}) *Where {
	return c.WhereExp(Field(ref, op, value))
}

// WhereExp adds an expression. Nil and empty expressions are ignored.
func (c *Where) WhereExp(exp Expression) *Where {
	if exp == nil {
		return c
	}
	if cond, ok := c.newCondition(c.params, exp); ok {
		c.items.addRaw(cond)
	}
	return c
}

// AppendSQL appends a raw condition verbatim.
func (c *Where) AppendSQL(sql string) *Where {
	if strings.TrimSpace(sql) == "" {
		return c
	}
	c.items.addRaw(condition{raw: sql})
	return c
}

// AppendSQLWithParams appends a raw condition that refers to explicitly
// named {:name} parameters.
func (c *Where) AppendSQLWithParams(sql string, params Params) *Where {
	if strings.TrimSpace(sql) == "" {
		return c
	}
	for name, value := range params {
		c.fail(c.params.Set(name, value))
	}
	c.items.addRaw(condition{raw: sql})
	return c
}

// Params returns the parameters bound by the clause.
func (c *Where) Params() Params {
	return c.params.Values()
}

// Len returns the number of conditions.
func (c *Where) Len() int {
	return c.items.len()
}

// Clear removes all conditions and parameters.
func (c *Where) Clear() {
	c.items.clear()
	c.params.Clear()
	c.err = nil
}

// Validate returns the first error recorded while adding conditions.
func (c *Where) Validate() error {
	return c.err
}

// ToSQL renders the clause, or "" when there is no condition.
func (c *Where) ToSQL() string {
	return c.items.render("Where", " And ", func(cond condition) string {
		return c.renderCondition(c.params, cond)
	})
}
