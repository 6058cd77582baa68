package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/campuskit/campusid/internal/bootstrap"
	"github.com/campuskit/campusid/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "campusid",
	Short: "Campus identity and role consistency engine",
	Long: `campusid issues campus user credentials and keeps the role grant
ledger consistent with each department's authoritative HOD assignment.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withDatabase loads config, connects to the database and hands the wired
// dependencies to fn. The pool is closed when fn returns.
func withDatabase(fn func(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, deps *bootstrap.Dependencies) error) error {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger()
	if err != nil {
		return err
	}

	pool, err := bootstrap.SetupDatabase(cfg, lgr)
	if err != nil {
		return err
	}
	defer pool.Close()

	deps := bootstrap.BuildDependencies(pool, lgr)
	return fn(context.Background(), cfg, pool, deps)
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(issueCmd)
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(grantsCmd)
	rootCmd.AddCommand(setHodCmd)
}
