package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/campuskit/campusid/internal/bootstrap"
	"github.com/campuskit/campusid/internal/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(func(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, deps *bootstrap.Dependencies) error {
			return bootstrap.RunMigrations(ctx, cfg, pool, deps.Logger)
		})
	},
}
