package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/coregx/sqlquery/internal/config"
	"github.com/coregx/sqlquery/internal/logger"
)

var (
	// Set during PersistentPreRunE.
	cfg *config.Config
	log = logger.NewZerolog(os.Stderr, "info")

	// Persistent flags
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "sqlquery",
	Short: "Compose, render and run SELECT statements",
	Long: `sqlquery - composable SELECT statements

sqlquery builds a SELECT statement from independent clauses, renders it for
PostgreSQL, MySQL, SQLite or SQL Server and runs it against the configured
database. Settings come from sqlquery.yaml and SQLQUERY_* variables.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		log = logger.NewZerolog(os.Stderr, cfg.Log.Level)
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&cfgFile, "config", "", "config file (default: $SQLQUERY_CONFIG or ./sqlquery.yaml)")
	f.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(versionCmd)
}
