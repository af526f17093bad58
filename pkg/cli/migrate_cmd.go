package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"lakeboard/internal/db"
)

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(*configPath)
			if err != nil {
				return err
			}

			writeDB, err := db.OpenSQLite(cfg.DBPath, "write", 0)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer writeDB.Close()

			if err := db.RunMigrations(writeDB); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Migrations applied to %s\n", cfg.DBPath)
			return nil
		},
	}
}
