package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/campuskit/campusid/internal/bootstrap"
	"github.com/campuskit/campusid/internal/config"
	"github.com/campuskit/campusid/internal/pkg/apperrors"
)

var (
	setHodDepartmentID int64
	setHodFacultyID    int64
	setHodClear        bool
)

var setHodCmd = &cobra.Command{
	Use:   "set-hod",
	Short: "Designate or clear a department's HOD faculty member",
	Long: `set-hod updates the authoritative HOD designation of a department.
Derived role grants are not touched here; run reconcile afterwards to bring
the ledger in line.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !setHodClear && setHodFacultyID <= 0 {
			return fmt.Errorf("either --faculty-id or --clear is required")
		}

		return withDatabase(func(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, deps *bootstrap.Dependencies) error {
			var facultyID *int64
			if !setHodClear {
				active, err := deps.Repos.FacultyRepository.IsActive(ctx, setHodFacultyID)
				if err != nil {
					return err
				}
				if !active {
					return apperrors.ErrFacultyInactive
				}
				facultyID = &setHodFacultyID
			}

			if err := deps.Repos.DepartmentRepository.SetHod(ctx, setHodDepartmentID, facultyID); err != nil {
				return err
			}

			if setHodClear {
				fmt.Printf("cleared HOD of department %d\n", setHodDepartmentID)
			} else {
				fmt.Printf("set faculty %d as HOD of department %d\n", setHodFacultyID, setHodDepartmentID)
			}
			return nil
		})
	},
}

func init() {
	setHodCmd.Flags().Int64Var(&setHodDepartmentID, "department-id", 0, "department to update (required)")
	setHodCmd.Flags().Int64Var(&setHodFacultyID, "faculty-id", 0, "faculty member to designate as HOD")
	setHodCmd.Flags().BoolVar(&setHodClear, "clear", false, "clear the HOD designation")
	_ = setHodCmd.MarkFlagRequired("department-id")
}
