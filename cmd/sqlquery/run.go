package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/coregx/sqlquery/internal/config"
	"github.com/coregx/sqlquery/internal/core"
	"github.com/coregx/sqlquery/internal/logger"
)

var (
	runFlags   queryFlags
	runTimeout time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute a statement and print the rows as JSON",
	Example: `  # Second page of ten users from the configured database
  sqlquery run --from users --order-by id --page 2 --page-size 10`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), runTimeout)
		defer cancel()

		db, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		q := db.Query()
		if err := runFlags.apply(q); err != nil {
			return err
		}

		if p := runFlags.pager(); p != nil {
			page, err := core.QueryPager(ctx, q, p, core.ScanMaps(q.Dialect()), core.ScanScalar[int64](q.Dialect()), nil)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), page)
		}

		rows, err := core.Maps(ctx, q, nil)
		if err != nil {
			return err
		}
		log.Debug().Int("rows", len(rows)).Msg("query finished")
		return writeJSON(cmd.OutOrStdout(), rows)
	},
}

func init() {
	runFlags.register(runCmd.Flags())
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 30*time.Second, "query timeout")
}

// openDB opens the configured database with the CLI logger.
func openDB(c *config.Config) (*core.DB, error) {
	opts, err := c.DBOptions()
	if err != nil {
		return nil, err
	}
	opts = append(opts, core.WithLogger(logger.NewZerologAdapter(log)))
	return core.Open(c.Database.Driver, c.Database.DSN, opts...)
}
