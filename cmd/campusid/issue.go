package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/campuskit/campusid/internal/app/models"
	"github.com/campuskit/campusid/internal/app/services"
	"github.com/campuskit/campusid/internal/bootstrap"
	"github.com/campuskit/campusid/internal/config"
)

var (
	issueUsername  string
	issueEmail     string
	issueSecret    string
	issueUserType  string
	issueFacultyID int64
)

var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue a new user account with its default role grant",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(func(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, deps *bootstrap.Dependencies) error {
			params := services.IssueParams{
				Username: issueUsername,
				Email:    issueEmail,
				Secret:   issueSecret,
				UserType: models.UserType(issueUserType),
			}
			if issueFacultyID > 0 {
				params.FacultyID = &issueFacultyID
			}

			userID, err := deps.Services.CredentialService.Issue(ctx, params)
			if err != nil {
				return err
			}

			fmt.Printf("issued user %d (%s)\n", userID, issueUsername)
			return nil
		})
	},
}

func init() {
	issueCmd.Flags().StringVar(&issueUsername, "username", "", "login username (required)")
	issueCmd.Flags().StringVar(&issueEmail, "email", "", "email address (required)")
	issueCmd.Flags().StringVar(&issueSecret, "secret", "", "initial secret (required)")
	issueCmd.Flags().StringVar(&issueUserType, "user-type", "student", "one of admin, faculty, hod, student, academic")
	issueCmd.Flags().Int64Var(&issueFacultyID, "faculty-id", 0, "faculty member this account belongs to")
	_ = issueCmd.MarkFlagRequired("username")
	_ = issueCmd.MarkFlagRequired("email")
	_ = issueCmd.MarkFlagRequired("secret")
}
