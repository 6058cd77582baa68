package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campuskit/campusid/internal/app/models"
	"github.com/campuskit/campusid/internal/pkg/apperrors"
	"github.com/campuskit/campusid/internal/pkg/dberrors"
)

// FacultyRepository handles database operations for faculty staff records.
// The identity core only needs existence and activity checks; Create exists
// for seeding and provisioning.
type FacultyRepository struct {
	db *pgxpool.Pool
}

// NewFacultyRepository creates a new faculty repository
func NewFacultyRepository(db *pgxpool.Pool) *FacultyRepository {
	return &FacultyRepository{
		db: db,
	}
}

// Create creates a new faculty staff record
func (r *FacultyRepository) Create(ctx context.Context, faculty *models.Faculty) error {
	query := `
		INSERT INTO faculties (first_name, last_name, email, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		faculty.FirstName,
		faculty.LastName,
		faculty.Email,
		faculty.IsActive,
	).Scan(&faculty.ID)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.NewConflictError("faculty member with this email already exists")
		}
		return fmt.Errorf("error creating faculty member: %w", err)
	}

	return nil
}

// GetByID retrieves a faculty member by ID
func (r *FacultyRepository) GetByID(ctx context.Context, id int64) (*models.Faculty, error) {
	query := `
		SELECT id, first_name, last_name, email, is_active, created_at
		FROM faculties
		WHERE id = $1
	`

	var faculty models.Faculty
	err := r.db.QueryRow(ctx, query, id).Scan(
		&faculty.ID,
		&faculty.FirstName,
		&faculty.LastName,
		&faculty.Email,
		&faculty.IsActive,
		&faculty.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrFacultyNotFound
		}
		return nil, fmt.Errorf("error retrieving faculty member: %w", err)
	}

	return &faculty, nil
}

// IsActive reports whether the faculty member exists and is active.
func (r *FacultyRepository) IsActive(ctx context.Context, id int64) (bool, error) {
	var active bool
	err := r.db.QueryRow(ctx, `
		SELECT is_active FROM faculties WHERE id = $1`, id).Scan(&active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, apperrors.ErrFacultyNotFound
		}
		return false, fmt.Errorf("error checking faculty activity: %w", err)
	}

	return active, nil
}
