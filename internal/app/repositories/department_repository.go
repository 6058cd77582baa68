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

// Department error types
var (
	ErrDepartmentAlreadyExists = errors.New("department with this name or code already exists")
)

// DepartmentRepository handles database operations for departments. HOD
// assignment ownership lives here, on the department-management side; the
// synchronizer only ever reads it through AuthorityRepository.
type DepartmentRepository struct {
	db *pgxpool.Pool
}

// NewDepartmentRepository creates a new department repository
func NewDepartmentRepository(db *pgxpool.Pool) *DepartmentRepository {
	return &DepartmentRepository{
		db: db,
	}
}

// Create creates a new department
func (r *DepartmentRepository) Create(ctx context.Context, department *models.Department) error {
	query := `
		INSERT INTO departments (name, code, hod_faculty_id, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		department.Name,
		department.Code,
		department.HodFacultyID,
		department.IsActive,
	).Scan(&department.ID)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return ErrDepartmentAlreadyExists
		}
		return fmt.Errorf("error creating department: %w", err)
	}

	return nil
}

// GetByID retrieves a department by ID
func (r *DepartmentRepository) GetByID(ctx context.Context, id int64) (*models.Department, error) {
	query := `
		SELECT id, name, code, hod_faculty_id, is_active
		FROM departments
		WHERE id = $1
	`

	var department models.Department
	err := r.db.QueryRow(ctx, query, id).Scan(
		&department.ID,
		&department.Name,
		&department.Code,
		&department.HodFacultyID,
		&department.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrDepartmentNotFound
		}
		return nil, fmt.Errorf("error retrieving department: %w", err)
	}

	return &department, nil
}

// GetByCode retrieves a department by its short code
func (r *DepartmentRepository) GetByCode(ctx context.Context, code string) (*models.Department, error) {
	query := `
		SELECT id, name, code, hod_faculty_id, is_active
		FROM departments
		WHERE code = $1
	`

	var department models.Department
	err := r.db.QueryRow(ctx, query, code).Scan(
		&department.ID,
		&department.Name,
		&department.Code,
		&department.HodFacultyID,
		&department.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrDepartmentNotFound
		}
		return nil, fmt.Errorf("error retrieving department: %w", err)
	}

	return &department, nil
}

// GetAll retrieves all departments
func (r *DepartmentRepository) GetAll(ctx context.Context) ([]*models.Department, error) {
	query := `
		SELECT id, name, code, hod_faculty_id, is_active
		FROM departments
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var departments []*models.Department
	for rows.Next() {
		var department models.Department
		if err := rows.Scan(
			&department.ID,
			&department.Name,
			&department.Code,
			&department.HodFacultyID,
			&department.IsActive,
		); err != nil {
			return nil, err
		}
		departments = append(departments, &department)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return departments, nil
}

// SetHod designates a faculty member as the department's HOD. Passing nil
// clears the designation. This is the authority write path; derived role
// grants catch up on the next reconciliation run.
func (r *DepartmentRepository) SetHod(ctx context.Context, departmentID int64, facultyID *int64) error {
	query := `
		UPDATE departments
		SET hod_faculty_id = $2
		WHERE id = $1
	`

	cmdTag, err := r.db.Exec(ctx, query, departmentID, facultyID)
	if err != nil {
		return fmt.Errorf("error setting department hod: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrDepartmentNotFound
	}

	return nil
}
