package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/campuskit/campusid/internal/bootstrap"
	"github.com/campuskit/campusid/internal/config"
	"github.com/campuskit/campusid/internal/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with default faculties, departments and accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(func(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, deps *bootstrap.Dependencies) error {
			if err := bootstrap.RunMigrations(ctx, cfg, pool, deps.Logger); err != nil {
				return err
			}
			return seed.CreateDefaultData(ctx, pool, deps.Logger)
		})
	},
}
