package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/banssharp/banssharp/internal/config"
	"github.com/banssharp/banssharp/internal/database"
	"github.com/banssharp/banssharp/pkg/log"
)

// migrateCmd creates or updates the database schema manually.
func migrateCmd() *cobra.Command {
	var downAll bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(_ *cobra.Command, _ []string) error {
			conf, errConfig := config.Read(false)
			if errConfig != nil {
				slog.Error("Failed to read config", log.ErrAttr(errConfig))
				os.Exit(1)
			}

			action := database.MigrationAction(database.MigrateUp)
			if downAll {
				action = database.MigrateDn
			}

			if errMigrate := database.Migrate(action, conf.Database.DSN); errMigrate != nil {
				slog.Error("Could not migrate schema", log.ErrAttr(errMigrate))
				os.Exit(1)
			}

			slog.Info("Migration completed successfully")

			return nil
		},
	}

	cmd.Flags().BoolVarP(&downAll, "down", "d", false, "Fully reverts all migrations")

	return cmd
}
