package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/coregx/sqlquery/internal/clause"
	"github.com/coregx/sqlquery/internal/core"
)

// queryFlags describes a statement on the command line.
type queryFlags struct {
	sel       string
	distinct  bool
	from      string
	joins     []string
	leftJoins []string
	where     []string
	groupBy   string
	having    []string
	orderBy   string
	page      int
	pageSize  int
	limit     int
	offset    int
}

func (f *queryFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.sel, "select", "", `columns, e.g. "u.id, u.name as n" (default *)`)
	fs.BoolVar(&f.distinct, "distinct", false, "select distinct rows")
	fs.StringVar(&f.from, "from", "", `source table with optional alias, e.g. "users u"`)
	fs.StringArrayVar(&f.joins, "join", nil, `inner join, e.g. "orders o on o.user_id = u.id" (repeatable)`)
	fs.StringArrayVar(&f.leftJoins, "left-join", nil, "left join, same form as --join (repeatable)")
	fs.StringArrayVar(&f.where, "where", nil, `condition "column op value", e.g. "name starts al" (repeatable)`)
	fs.StringVar(&f.groupBy, "group-by", "", "grouping columns")
	fs.StringArrayVar(&f.having, "having", nil, "raw having condition (repeatable)")
	fs.StringVar(&f.orderBy, "order-by", "", `sort keys, e.g. "name, age desc"`)
	fs.IntVar(&f.page, "page", 0, "page number, starting at 1")
	fs.IntVar(&f.pageSize, "page-size", clause.DefaultPageSize, "rows per page")
	fs.IntVar(&f.limit, "limit", 0, "maximum number of rows")
	fs.IntVar(&f.offset, "offset", 0, "rows to skip, needs --limit")
}

// pager returns the requested page, or nil when --page was not given.
func (f *queryFlags) pager() *clause.Pager {
	if f.page <= 0 {
		return nil
	}
	return clause.NewPager(f.page, f.pageSize)
}

// apply adds every clause to q. Paging is left to the caller.
func (f *queryFlags) apply(q *core.SQLQuery) error {
	if f.from == "" {
		return fmt.Errorf("--from is required")
	}
	q.From(f.from)
	if f.sel != "" {
		q.Select(f.sel)
	}
	q.Distinct(f.distinct)

	for _, spec := range f.joins {
		if err := applyJoin(q, clause.InnerJoin, spec); err != nil {
			return err
		}
	}
	for _, spec := range f.leftJoins {
		if err := applyJoin(q, clause.LeftJoin, spec); err != nil {
			return err
		}
	}

	for _, spec := range f.where {
		column, op, value, err := parseCondition(spec)
		if err != nil {
			return err
		}
		q.Where(column, op, value)
	}

	if f.groupBy != "" || len(f.having) > 0 {
		q.GroupBy(f.groupBy, f.having...)
	}
	if f.orderBy != "" {
		q.OrderBy(f.orderBy)
	}
	if f.limit > 0 {
		q.Limit(f.limit)
	}
	if f.offset > 0 {
		q.Offset(f.offset)
	}
	return nil
}

// applyJoin parses "table [alias] on left op right [and ...]".
func applyJoin(q *core.SQLQuery, kind clause.JoinKind, spec string) error {
	lower := strings.ToLower(spec)
	idx := strings.Index(lower, " on ")
	if idx < 0 {
		return fmt.Errorf("join %q: missing \"on\"", spec)
	}

	source := strings.Fields(spec[:idx])
	if len(source) == 0 || len(source) > 2 {
		return fmt.Errorf("join %q: expected \"table [alias]\"", spec)
	}
	switch kind {
	case clause.LeftJoin:
		q.LeftJoin(source[0], source[1:]...)
	default:
		q.Join(source[0], source[1:]...)
	}

	for _, cond := range splitAnd(spec[idx+4:]) {
		fields := strings.Fields(cond)
		if len(fields) != 3 {
			return fmt.Errorf("join %q: expected \"left op right\", got %q", spec, cond)
		}
		op, ok := clause.ParseOperator(fields[1])
		if !ok {
			return fmt.Errorf("join %q: unknown operator %q", spec, fields[1])
		}
		q.On(fields[0], op, fields[2])
	}
	return nil
}

func splitAnd(s string) []string {
	var out []string
	rest := s
	for {
		idx := strings.Index(strings.ToLower(rest), " and ")
		if idx < 0 {
			break
		}
		out = append(out, rest[:idx])
		rest = rest[idx+5:]
	}
	return append(out, rest)
}

// parseCondition parses "column op value". The operator may be two words
// ("not in"); In values are comma-separated.
func parseCondition(spec string) (string, clause.Operator, interface{}, error) {
	fields := strings.Fields(spec)
	if len(fields) < 3 {
		return "", "", nil, fmt.Errorf("where %q: expected \"column op value\"", spec)
	}

	column, rest := fields[0], fields[1:]
	op, ok := clause.ParseOperator(rest[0] + " " + rest[1])
	if ok && len(rest) > 2 {
		rest = rest[2:]
	} else if op, ok = clause.ParseOperator(rest[0]); ok {
		rest = rest[1:]
	} else {
		return "", "", nil, fmt.Errorf("where %q: unknown operator %q", spec, rest[0])
	}

	raw := strings.Join(rest, " ")
	if op == clause.OpIn || op == clause.OpNotIn {
		parts := strings.Split(raw, ",")
		values := make([]interface{}, 0, len(parts))
		for _, p := range parts {
			values = append(values, parseValue(strings.TrimSpace(p)))
		}
		return column, op, values, nil
	}
	if op == clause.OpContains || op == clause.OpStarts || op == clause.OpEnds {
		return column, op, raw, nil
	}
	return column, op, parseValue(raw), nil
}

// parseValue turns integer literals and true/false into typed values and
// unquotes 'quoted' strings.
func parseValue(s string) interface{} {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if strings.EqualFold(s, "true") || strings.EqualFold(s, "false") {
		return strings.EqualFold(s, "true")
	}
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return s[1 : len(s)-1]
	}
	return s
}
