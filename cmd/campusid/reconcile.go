package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/campuskit/campusid/internal/app/models"
	"github.com/campuskit/campusid/internal/app/services"
	"github.com/campuskit/campusid/internal/bootstrap"
	"github.com/campuskit/campusid/internal/config"
)

var reconcilePreviousPath string

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile role grants against department HOD assignments",
	Long: `Reconcile applies the minimal set of grant insertions so the role grant
ledger matches the current department HOD authority. Safe to run repeatedly;
a run with unchanged authority is a no-op.

With --previous pointing at an earlier authority snapshot (see the snapshot
command), hod grants for assignments missing from the current snapshot are
also revoked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(func(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, deps *bootstrap.Dependencies) error {
			var report *services.SyncReport
			var err error

			if reconcilePreviousPath != "" {
				previous, readErr := readSnapshot(reconcilePreviousPath)
				if readErr != nil {
					return readErr
				}
				report, err = deps.Services.SyncService.ReconcileWithPrevious(ctx, previous)
			} else {
				report, err = deps.Services.SyncService.Reconcile(ctx)
			}
			if err != nil {
				return err
			}

			return json.NewEncoder(os.Stdout).Encode(report)
		})
	},
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Print the current department HOD authority snapshot as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(func(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, deps *bootstrap.Dependencies) error {
			assignments, err := deps.Repos.AuthorityRepository.ListActiveDepartmentsWithHod(ctx)
			if err != nil {
				return err
			}

			return json.NewEncoder(os.Stdout).Encode(assignments)
		})
	},
}

func readSnapshot(path string) ([]models.HodAssignment, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	var assignments []models.HodAssignment
	if err := json.Unmarshal(content, &assignments); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot file: %w", err)
	}

	return assignments, nil
}

func init() {
	reconcileCmd.Flags().StringVar(&reconcilePreviousPath, "previous", "", "path to a previous authority snapshot; enables stale hod grant revocation")
}
