package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"sensorboard/internal/migrate"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, conn, err := setup(cmd)
			if err != nil {
				return err
			}
			defer closeDB(conn)

			applied, err := migrate.Run(cmd.Context(), conn, slog.Default())
			if err != nil {
				return err
			}
			cmd.Printf("migrations applied: %d\n", len(applied))
			return nil
		},
	}
}
