package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/expenseally/backend/internal/infrastructure/config"
	"github.com/expenseally/backend/internal/infrastructure/logger"
	"github.com/expenseally/backend/internal/infrastructure/persistence"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "expenseally-admin",
	Short: "Administrative tooling for the ExpenseAlly backend",
	Long: `expenseally-admin runs operational tasks against an ExpenseAlly
deployment: database seeding, CSV imports, report exports, backups,
reminder dispatch and rate refreshes.

Configuration is read the same way the server reads it: config.toml
plus EXPENSEALLY_* environment variables. A .env file in the working
directory is loaded automatically when present.`,
	Version: version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Ignore a missing .env; explicit environment still applies.
		_ = godotenv.Load()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// bootstrap loads configuration and builds a console logger for CLI runs.
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: "console",
		Output: "stderr",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("initialize logger: %w", err)
	}

	return cfg, log, nil
}

// openDatabase connects to the configured database, or to a standalone
// SQLite file when sqlitePath is set.
func openDatabase(cfg *config.Config, sqlitePath string) (*persistence.Database, error) {
	if sqlitePath != "" {
		return persistence.NewSQLiteDatabase(sqlitePath)
	}
	return persistence.NewDatabaseWithLogLevel(&cfg.Database, logger.MapGormLogLevel("warn"))
}
