package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"sensorboard/internal/importer"
	"sensorboard/internal/migrate"
	"sensorboard/internal/modules/measurements/repository"
)

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Bulk-load a JSON array of measurements",
		Long: `Reads a JSON array of {"timestamp", "temperature", "humidity", "windSpeed"} records
and inserts them in a single transaction, then reports the stored row total.
Pending migrations are applied first.
Timestamps without an offset are read in TIMEZONE.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, conn, err := setup(cmd)
			if err != nil {
				return err
			}
			defer closeDB(conn)

			if _, err := migrate.Run(cmd.Context(), conn, slog.Default()); err != nil {
				return err
			}
			repo := repository.NewRepository(conn)
			n, err := importer.ImportFile(cmd.Context(), args[0], repo, cfg.Location, slog.Default())
			if err != nil {
				return err
			}
			cmd.Printf("Inserted: %d\n", n)

			total, err := repo.CountMeasurements(cmd.Context())
			if err != nil {
				return err
			}
			cmd.Printf("Total stored: %d\n", total)
			return nil
		},
	}
}
