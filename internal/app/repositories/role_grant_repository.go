package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campuskit/campusid/internal/app/models"
)

// GrantOutcome is the result of an idempotent grant operation.
type GrantOutcome string

// RevokeOutcome is the result of an idempotent revoke operation.
type RevokeOutcome string

const (
	GrantInserted       GrantOutcome  = "inserted"
	GrantAlreadyPresent GrantOutcome  = "already_present"
	RevokeRemoved       RevokeOutcome = "removed"
	RevokeNotPresent    RevokeOutcome = "not_present"
)

// RoleGrantRepository is the ledger of (user, role, department?) grants.
// Set semantics are enforced by partial unique indexes on role_grants, so
// concurrent grants of the same triple can never produce two rows.
type RoleGrantRepository struct {
	db *pgxpool.Pool
}

// NewRoleGrantRepository creates a new role grant repository
func NewRoleGrantRepository(db *pgxpool.Pool) *RoleGrantRepository {
	return &RoleGrantRepository{
		db: db,
	}
}

// Grant records the triple if absent. Granting an existing triple is a no-op,
// not an error; the unique indexes make the check-then-insert atomic.
func (r *RoleGrantRepository) Grant(ctx context.Context, userID int64, role models.Role, departmentID *int64) (GrantOutcome, error) {
	query := `
		INSERT INTO role_grants (user_id, role, department_id)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
	`

	cmdTag, err := r.db.Exec(ctx, query, userID, role, departmentID)
	if err != nil {
		return "", fmt.Errorf("error inserting role grant: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return GrantAlreadyPresent, nil
	}

	return GrantInserted, nil
}

// Revoke removes the triple if present.
func (r *RoleGrantRepository) Revoke(ctx context.Context, userID int64, role models.Role, departmentID *int64) (RevokeOutcome, error) {
	query := `
		DELETE FROM role_grants
		WHERE user_id = $1 AND role = $2 AND department_id IS NOT DISTINCT FROM $3
	`

	cmdTag, err := r.db.Exec(ctx, query, userID, role, departmentID)
	if err != nil {
		return "", fmt.Errorf("error deleting role grant: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return RevokeNotPresent, nil
	}

	return RevokeRemoved, nil
}

// Exists reports whether the exact triple is recorded.
func (r *RoleGrantRepository) Exists(ctx context.Context, userID int64, role models.Role, departmentID *int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM role_grants
			WHERE user_id = $1 AND role = $2 AND department_id IS NOT DISTINCT FROM $3
		)`,
		userID, role, departmentID).Scan(&exists)

	if err != nil {
		return false, fmt.Errorf("error checking role grant existence: %w", err)
	}

	return exists, nil
}

// ListForDepartment returns the users holding the role scoped to a department.
func (r *RoleGrantRepository) ListForDepartment(ctx context.Context, role models.Role, departmentID int64) ([]int64, error) {
	query := `
		SELECT user_id
		FROM role_grants
		WHERE role = $1 AND department_id = $2
		ORDER BY user_id
	`

	rows, err := r.db.Query(ctx, query, role, departmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var userIDs []int64
	for rows.Next() {
		var userID int64
		if err := rows.Scan(&userID); err != nil {
			return nil, err
		}
		userIDs = append(userIDs, userID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return userIDs, nil
}

// ListForUser returns every grant a user currently holds.
func (r *RoleGrantRepository) ListForUser(ctx context.Context, userID int64) ([]models.RoleGrant, error) {
	query := `
		SELECT id, user_id, role, department_id, created_at
		FROM role_grants
		WHERE user_id = $1
		ORDER BY role, department_id
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []models.RoleGrant
	for rows.Next() {
		var grant models.RoleGrant
		if err := rows.Scan(
			&grant.ID,
			&grant.UserID,
			&grant.Role,
			&grant.DepartmentID,
			&grant.CreatedAt,
		); err != nil {
			return nil, err
		}
		grants = append(grants, grant)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return grants, nil
}
