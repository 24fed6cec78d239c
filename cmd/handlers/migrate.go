package handlers

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"trendpulse/internal/config"
	"trendpulse/internal/persistence"
)

// NewMigrateCmd creates the migrate command for database migrations.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Long: `Apply all pending database schema migrations.

The migration system tracks applied migrations in the schema_migrations
table and applies new migrations in sequential order, each inside a
transaction.

Example:
  trendpulse migrate
  trendpulse migrate status`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrationManager(cmd.Context(), func(ctx context.Context, mgr *persistence.MigrationManager) error {
				return mgr.Migrate(ctx)
			})
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrationManager(cmd.Context(), func(ctx context.Context, mgr *persistence.MigrationManager) error {
				statuses, err := mgr.Status(ctx)
				if err != nil {
					return err
				}
				for _, s := range statuses {
					state := "pending"
					if s.Applied {
						state = "applied"
					}
					fmt.Printf("%03d  %-10s %s\n", s.Version, state, s.Description)
				}
				return nil
			})
		},
	})

	return cmd
}

func withMigrationManager(ctx context.Context, fn func(context.Context, *persistence.MigrationManager) error) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := persistence.NewPostgresDB(cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	return fn(ctx, persistence.NewMigrationManager(db))
}
