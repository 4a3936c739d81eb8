package main

import (
	"io"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/coregx/sqlquery/internal/core"
	"github.com/coregx/sqlquery/internal/dialects"
)

var (
	renderFlags   queryFlags
	renderDialect string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a statement without executing it",
	Example: `  # Page 2 of active users for PostgreSQL
  sqlquery render --dialect postgres --from "users u" --where "u.status = 1" \
    --order-by "u.name" --page 2 --page-size 10`,
	RunE: func(cmd *cobra.Command, args []string) error {
		name := renderDialect
		if name == "" {
			name = cfg.Database.Dialect
		}
		if name == "" {
			name = cfg.Database.Driver
		}
		d, err := dialects.Lookup(name)
		if err != nil {
			return err
		}

		q := core.New(d)
		if err := renderFlags.apply(q); err != nil {
			return err
		}
		if p := renderFlags.pager(); p != nil {
			q.Page(p)
		}
		return render(cmd.OutOrStdout(), q)
	},
}

func init() {
	renderFlags.register(renderCmd.Flags())
	renderCmd.Flags().StringVar(&renderDialect, "dialect", "", "dialect name (default: from config)")
}

// rendered is the JSON document printed by render.
type rendered struct {
	Dialect  string      `json:"dialect"`
	SQL      string      `json:"sql"`
	Params   core.Params `json:"params"`
	CountSQL string      `json:"count_sql"`
	DebugSQL string      `json:"debug_sql"`
}

func render(w io.Writer, q *core.SQLQuery) error {
	sql, err := q.SQL()
	if err != nil {
		return err
	}
	params, err := q.Params()
	if err != nil {
		return err
	}
	count, err := q.CountSQL()
	if err != nil {
		return err
	}
	debug, err := q.DebugSQL()
	if err != nil {
		return err
	}
	return writeJSON(w, rendered{
		Dialect:  q.Dialect().Name(),
		SQL:      sql,
		Params:   params,
		CountSQL: count,
		DebugSQL: debug,
	})
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
