package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/elitetable/elitetable/app/services"
	"github.com/elitetable/elitetable/config"
	"github.com/elitetable/elitetable/database/seeders"
	"github.com/elitetable/elitetable/pkg/cache"
	"github.com/elitetable/elitetable/pkg/database"
	"github.com/elitetable/elitetable/pkg/migration"
)

// bootDB loads config and opens the database connection.
func bootDB() error {
	if err := config.Load(); err != nil {
		return err
	}
	return database.Connect()
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		defer database.Close(database.DB)
		n, err := migration.New(database.DB, cmd.OutOrStdout()).Run()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s)\n", n)
		return nil
	},
}

var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Rollback the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		defer database.Close(database.DB)
		n, err := migration.New(database.DB, cmd.OutOrStdout()).Rollback()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Rolled back %d migration(s)\n", n)
		return nil
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		defer database.Close(database.DB)
		return migration.New(database.DB, cmd.OutOrStdout()).Status()
	},
}

// elitetable seed ignores SEED_TOKEN; shell access already implies trust.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo fixtures (idempotent)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		defer database.Close(database.DB)
		if config.IsProduction() {
			return fmt.Errorf("seed: refusing to seed with APP_ENV=production")
		}
		counts, err := seeders.RunAll(cmd.Context(), database.DB, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		if err := cache.Connect(cmd.Context()); err == nil {
			_ = cache.Forget(cmd.Context(), services.GovernoratesCacheKey)
		}
		total := 0
		for _, n := range counts {
			total += n
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d row(s) across %d table(s)\n", total, len(counts))
		return nil
	},
}
