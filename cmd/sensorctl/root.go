package main

import (
	"database/sql"
	"log/slog"

	"github.com/spf13/cobra"

	"sensorboard/internal/config"
	"sensorboard/internal/db"
	"sensorboard/internal/logging"
)

const appName = "sensorctl"

// Default version is "dev" if not set with -ldflags "-X main.version=..."
var version = logging.DevVersion

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Maintenance tooling for the sensorboard store",
		Long:         `Applies schema migrations and bulk-loads measurement exports into the sensorboard SQLite database.`,
		Version:      version,
		SilenceUsage: true,
	}
	root.PersistentFlags().String("sqlite-path", "", "SQLite database file (overrides SQLITE_PATH)")

	root.AddCommand(newMigrateCmd(), newImportCmd())
	return root
}

// setup loads configuration, installs the logger and opens the database.
func setup(cmd *cobra.Command) (config.Config, *sql.DB, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return config.Config{}, nil, err
	}
	if p, _ := cmd.Flags().GetString("sqlite-path"); p != "" {
		cfg.SQLitePath = p
		cfg.SQLiteDSN = ""
	}

	logger := logging.New(cmd.ErrOrStderr(), cfg, version, appName)
	slog.SetDefault(logger)

	conn, err := db.Open(cfg, logger)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, conn, nil
}

func closeDB(conn *sql.DB) {
	if err := db.Close(conn); err != nil {
		slog.Error("db close", "err", err)
	}
}
