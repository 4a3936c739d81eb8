// Package main provides a CLI that builds SELECT statements from flags,
// renders them for a dialect and optionally runs them.
//
// Commands:
//   - render: print the statement, its parameters, the count statement and
//     the debug SQL without touching a database
//   - run: execute the statement (paged when --page is given) and print
//     the rows as JSON
//   - ping: check the configured database
//   - version: print version information
//
// Usage:
//
//	sqlquery render --dialect postgres --from "users u" --where "u.status = 1" --order-by "u.name"
//	sqlquery run --config sqlquery.yaml --from users --page 2 --page-size 10 --order-by id
package main

import (
	"os"

	// Drivers selectable through database.driver.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
