package seed

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appModels "github.com/campuskit/campusid/internal/app/models"
	appRepos "github.com/campuskit/campusid/internal/app/repositories"
	appServices "github.com/campuskit/campusid/internal/app/services"
	"github.com/campuskit/campusid/internal/pkg/apperrors"
	pkgAuth "github.com/campuskit/campusid/internal/pkg/auth"
)

// CreateDefaultData creates sample faculties, departments with HOD
// designations and a default admin account if they don't exist. Errors are
// collected per item so one failure does not stop the rest of the seeding.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	facultyRepo := appRepos.NewFacultyRepository(dbPool)
	departmentRepo := appRepos.NewDepartmentRepository(dbPool)
	userRepo := appRepos.NewUserRepository(dbPool)
	credentials := appServices.NewCredentialService(userRepo, facultyRepo, pkgAuth.BcryptHasher{}, lgr)

	lgr.Info().Msg("Checking/Creating default data...")
	var finalErr error

	// --- Faculty staff members --- //
	staff := []appModels.Faculty{
		{FirstName: "Ayse", LastName: "Demir", Email: "ayse.demir@campus.edu", IsActive: true},
		{FirstName: "Mehmet", LastName: "Kaya", Email: "mehmet.kaya@campus.edu", IsActive: true},
	}

	facultyIDs := make(map[string]int64)
	for i := range staff {
		member := &staff[i]
		err := facultyRepo.Create(ctx, member)
		if err != nil && !errors.Is(err, apperrors.ErrConflict) {
			lgr.Error().Err(err).Str("email", member.Email).Msg("Error creating faculty member")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		if member.ID > 0 {
			facultyIDs[member.Email] = member.ID
		}
	}

	// --- Departments with HOD designations --- //
	departments := []appModels.Department{
		{Name: "Computer Engineering", Code: "CENG", IsActive: true},
		{Name: "Mathematics", Code: "MATH", IsActive: true},
	}
	if id, ok := facultyIDs["ayse.demir@campus.edu"]; ok {
		departments[0].HodFacultyID = &id
	}
	if id, ok := facultyIDs["mehmet.kaya@campus.edu"]; ok {
		departments[1].HodFacultyID = &id
	}

	for i := range departments {
		dept := &departments[i]
		err := departmentRepo.Create(ctx, dept)
		if err != nil && !errors.Is(err, appRepos.ErrDepartmentAlreadyExists) {
			lgr.Error().Err(err).Str("code", dept.Code).Msg("Error creating department")
			finalErr = errors.Join(finalErr, err)
		}
	}

	// --- Accounts for the HOD faculty members --- //
	hodAccounts := []struct {
		username string
		email    string
	}{
		{"ayse.demir", "ayse.demir@campus.edu"},
		{"mehmet.kaya", "mehmet.kaya@campus.edu"},
	}
	for _, account := range hodAccounts {
		facultyID, ok := facultyIDs[account.email]
		if !ok {
			continue
		}
		_, err := credentials.Issue(ctx, appServices.IssueParams{
			Username:  account.username,
			Email:     account.email,
			Secret:    "Faculty123",
			UserType:  appModels.UserTypeFaculty,
			FacultyID: &facultyID,
		})
		if err != nil && !errors.Is(err, apperrors.ErrDuplicateIdentity) {
			lgr.Error().Err(err).Str("username", account.username).Msg("Error issuing faculty account")
			finalErr = errors.Join(finalErr, err)
		}
	}

	// --- Default admin account --- //
	_, err := credentials.Issue(ctx, appServices.IssueParams{
		Username: "admin",
		Email:    "admin@campus.edu",
		Secret:   "Admin123!",
		UserType: appModels.UserTypeAdmin,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicateIdentity) {
			lgr.Info().Msg("Admin account already exists, skipping creation")
		} else {
			lgr.Error().Err(err).Msg("Error creating admin account")
			finalErr = errors.Join(finalErr, err)
		}
	}

	lgr.Info().Msg("Default data check/creation finished.")
	return finalErr
}
