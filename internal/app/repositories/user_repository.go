package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campuskit/campusid/internal/app/models"
	"github.com/campuskit/campusid/internal/db"
	"github.com/campuskit/campusid/internal/pkg/apperrors"
	"github.com/campuskit/campusid/internal/pkg/dberrors"
)

// UserRepository handles database operations for user accounts
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

// IdentityExists checks whether a user with the given username or email
// already exists. Race windows after this check are still closed by the
// unique constraints in CreateWithDefaultGrant.
func (r *UserRepository) IdentityExists(ctx context.Context, username, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM users WHERE username = $1 OR email = $2)`,
		username, email).Scan(&exists)

	if err != nil {
		return false, fmt.Errorf("error checking user identity: %w", err)
	}

	return exists, nil
}

// CreateWithDefaultGrant creates the user row and its default role grant in a
// single transaction: either both become visible or neither does. A unique
// violation on username or email maps to ErrDuplicateIdentity.
func (r *UserRepository) CreateWithDefaultGrant(ctx context.Context, user *models.User, grant models.RoleGrant) (int64, error) {
	var userID int64

	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		insertUser := `
			INSERT INTO users (username, email, password_hash, user_type, faculty_id, is_active)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`

		err := tx.QueryRow(ctx, insertUser,
			user.Username,
			user.Email,
			user.PasswordHash,
			user.UserType,
			user.FacultyID,
			user.IsActive,
		).Scan(&userID)
		if err != nil {
			if dberrors.IsUniqueViolation(err) {
				return apperrors.ErrDuplicateIdentity
			}
			return fmt.Errorf("error creating user: %w", err)
		}

		insertGrant := `
			INSERT INTO role_grants (user_id, role, department_id)
			VALUES ($1, $2, $3)
			ON CONFLICT DO NOTHING
		`

		if _, err := tx.Exec(ctx, insertGrant, userID, grant.Role, grant.DepartmentID); err != nil {
			return fmt.Errorf("error creating default role grant: %w", err)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	user.ID = userID
	return userID, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, `WHERE username = $1`, username)
}

func (r *UserRepository) getOne(ctx context.Context, where string, arg interface{}) (*models.User, error) {
	query := `
		SELECT id, username, email, password_hash, user_type, faculty_id, is_active, created_at, updated_at
		FROM users ` + where

	var user models.User
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.UserType,
		&user.FacultyID,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}

	return &user, nil
}

// UpdateSecretHash replaces the stored secret hash of an active user.
func (r *UserRepository) UpdateSecretHash(ctx context.Context, userID int64, secretHash string) error {
	query := `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1 AND is_active = TRUE
	`

	cmdTag, err := r.db.Exec(ctx, query, userID, secretHash)
	if err != nil {
		return fmt.Errorf("error updating secret hash: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}

	return nil
}

// SetActive flips the account's active flag. Accounts are never hard-deleted;
// deactivation keeps the row for auditability and stays reversible.
func (r *UserRepository) SetActive(ctx context.Context, userID int64, active bool) error {
	query := `
		UPDATE users
		SET is_active = $2, updated_at = NOW()
		WHERE id = $1
	`

	cmdTag, err := r.db.Exec(ctx, query, userID, active)
	if err != nil {
		return fmt.Errorf("error updating user active flag: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}

	return nil
}
