package core

import (
	"fmt"

	"github.com/coregx/sqlquery/internal/clause"
	"github.com/coregx/sqlquery/internal/dialects"
)

// Params represents named parameter values for query binding.
// Named parameters are written in SQL as {:name}.
type Params = clause.Params

// Bind replaces the named placeholders {:name} in sql with the positional
// placeholders of d ($1, $2 for PostgreSQL; ?, ? for MySQL/SQLite) and
// returns the values in placeholder order. A name used twice is bound twice.
//
//	sql, args, err := Bind(postgres, "Where id={:id} Or parent={:id}", Params{"id": 1})
//	// "Where id=$1 Or parent=$2", [1 1]
func Bind(d dialects.Dialect, sql string, params Params) (string, []interface{}, error) {
	var (
		args    []interface{}
		missing string
	)
	result := clause.NamedPlaceholderRegex.ReplaceAllStringFunc(sql, func(match string) string {
		name := match[2 : len(match)-1]
		value, ok := params[name]
		if !ok && missing == "" {
			missing = name
		}
		args = append(args, value)
		return d.Placeholder(len(args))
	})
	if missing != "" {
		return "", nil, fmt.Errorf("%w: %s", ErrMissingParameter, missing)
	}
	return result, args, nil
}
