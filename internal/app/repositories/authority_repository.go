package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campuskit/campusid/internal/app/models"
	"github.com/campuskit/campusid/internal/pkg/apperrors"
)

// AuthorityRepository is the read-only view of the department HOD authority.
// The synchronizer consumes it as a query surface only; nothing in this core
// writes through it.
type AuthorityRepository struct {
	db *pgxpool.Pool
}

// NewAuthorityRepository creates a new authority repository
func NewAuthorityRepository(db *pgxpool.Pool) *AuthorityRepository {
	return &AuthorityRepository{
		db: db,
	}
}

// ListActiveDepartmentsWithHod returns the current authority snapshot: every
// active department with a designated HOD faculty member.
func (r *AuthorityRepository) ListActiveDepartmentsWithHod(ctx context.Context) ([]models.HodAssignment, error) {
	query := `
		SELECT id, hod_faculty_id
		FROM departments
		WHERE is_active = TRUE AND hod_faculty_id IS NOT NULL
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing departments with hod: %w", err)
	}
	defer rows.Close()

	var assignments []models.HodAssignment
	for rows.Next() {
		var assignment models.HodAssignment
		if err := rows.Scan(&assignment.DepartmentID, &assignment.FacultyID); err != nil {
			return nil, err
		}
		assignments = append(assignments, assignment)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return assignments, nil
}

// ResolveUserForFaculty maps a faculty member to their active user account.
// Returns ErrUserNotFound when no active account references the faculty id.
func (r *AuthorityRepository) ResolveUserForFaculty(ctx context.Context, facultyID int64) (int64, error) {
	query := `
		SELECT id
		FROM users
		WHERE faculty_id = $1 AND is_active = TRUE
		ORDER BY id
		LIMIT 1
	`

	var userID int64
	err := r.db.QueryRow(ctx, query, facultyID).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.ErrUserNotFound
		}
		return 0, fmt.Errorf("error resolving user for faculty: %w", err)
	}

	return userID, nil
}
