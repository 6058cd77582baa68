package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/campuskit/campusid/internal/bootstrap"
	"github.com/campuskit/campusid/internal/config"
)

var grantsCmd = &cobra.Command{
	Use:   "grants <username>",
	Short: "List the role grants a user currently holds",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(func(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, deps *bootstrap.Dependencies) error {
			user, err := deps.Repos.UserRepository.GetByUsername(ctx, args[0])
			if err != nil {
				return err
			}

			grants, err := deps.Repos.RoleGrantRepository.ListForUser(ctx, user.ID)
			if err != nil {
				return err
			}

			if len(grants) == 0 {
				fmt.Printf("user %s holds no grants\n", user.Username)
				return nil
			}

			for _, grant := range grants {
				if grant.DepartmentID != nil {
					fmt.Printf("%s (department %d)\n", grant.Role, *grant.DepartmentID)
				} else {
					fmt.Println(grant.Role)
				}
			}
			return nil
		})
	},
}
