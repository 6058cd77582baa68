package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/campuskit/campusid/internal/app/models"
	"github.com/campuskit/campusid/internal/pkg/apperrors"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,4}$`)
	usernameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9._\-]{2,31}$`)
)

// AccountStore is the persistence surface the credential issuer needs.
type AccountStore interface {
	IdentityExists(ctx context.Context, username, email string) (bool, error)
	CreateWithDefaultGrant(ctx context.Context, user *models.User, grant models.RoleGrant) (int64, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateSecretHash(ctx context.Context, userID int64, secretHash string) error
	SetActive(ctx context.Context, userID int64, active bool) error
}

// FacultyDirectory exposes the faculty existence/activity lookup owned by the
// faculty-management side.
type FacultyDirectory interface {
	IsActive(ctx context.Context, id int64) (bool, error)
}

// SecretHasher is the opaque one-way hashing primitive.
type SecretHasher interface {
	Hash(secret string) (string, error)
	Verify(hash, secret string) bool
}

// IssueParams are the inputs for creating a new account.
type IssueParams struct {
	Username  string
	Email     string
	Secret    string
	UserType  models.UserType
	FacultyID *int64
}

// CredentialService issues and maintains account credentials. Account
// creation and the default role grant are transactional in the store, so an
// account is never visible without its default grant.
type CredentialService struct {
	accounts  AccountStore
	faculties FacultyDirectory
	hasher    SecretHasher
	logger    zerolog.Logger
}

// NewCredentialService creates a new CredentialService
func NewCredentialService(accounts AccountStore, faculties FacultyDirectory, hasher SecretHasher, logger zerolog.Logger) *CredentialService {
	return &CredentialService{
		accounts:  accounts,
		faculties: faculties,
		hasher:    hasher,
		logger:    logger,
	}
}

// Issue creates a new account with a hashed secret and the single default
// role grant implied by its user type. Fails with ErrDuplicateIdentity when
// the username or email is already taken.
func (s *CredentialService) Issue(ctx context.Context, params IssueParams) (int64, error) {
	if err := s.validateIssueParams(params); err != nil {
		return 0, err
	}

	if params.FacultyID != nil {
		active, err := s.faculties.IsActive(ctx, *params.FacultyID)
		if err != nil {
			return 0, err
		}
		if !active {
			return 0, apperrors.ErrFacultyInactive
		}
	}

	exists, err := s.accounts.IdentityExists(ctx, params.Username, params.Email)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, apperrors.ErrDuplicateIdentity
	}

	secretHash, err := s.hasher.Hash(params.Secret)
	if err != nil {
		return 0, fmt.Errorf("error hashing secret: %w", err)
	}

	user := &models.User{
		Username:     params.Username,
		Email:        params.Email,
		PasswordHash: secretHash,
		UserType:     params.UserType,
		FacultyID:    params.FacultyID,
		IsActive:     true,
	}

	grant := models.RoleGrant{
		Role: params.UserType.DefaultRole(),
	}

	userID, err := s.accounts.CreateWithDefaultGrant(ctx, user, grant)
	if err != nil {
		return 0, err
	}

	s.logger.Info().
		Int64("userID", userID).
		Str("userType", string(params.UserType)).
		Str("defaultRole", string(grant.Role)).
		Msg("Account issued")

	return userID, nil
}

// ReissueSecret replaces the account's secret hash. Fails with
// ErrUserNotFound when no such active account exists.
func (s *CredentialService) ReissueSecret(ctx context.Context, userID int64, secret string) error {
	if err := validateSecret(secret); err != nil {
		return err
	}

	secretHash, err := s.hasher.Hash(secret)
	if err != nil {
		return fmt.Errorf("error hashing secret: %w", err)
	}

	if err := s.accounts.UpdateSecretHash(ctx, userID, secretHash); err != nil {
		return err
	}

	s.logger.Info().Int64("userID", userID).Msg("Secret reissued")
	return nil
}

// Verify checks a credential pair against the stored hash. A missing account
// and a wrong secret are indistinguishable to the caller.
func (s *CredentialService) Verify(ctx context.Context, username, secret string) (*models.User, error) {
	user, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	if !s.hasher.Verify(user.PasswordHash, secret) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return user, nil
}

// Deactivate disables the account. The row is kept; deactivation is the only
// destruction path and stays reversible.
func (s *CredentialService) Deactivate(ctx context.Context, userID int64) error {
	if err := s.accounts.SetActive(ctx, userID, false); err != nil {
		return err
	}

	s.logger.Info().Int64("userID", userID).Msg("Account deactivated")
	return nil
}

func (s *CredentialService) validateIssueParams(params IssueParams) error {
	if !usernameRegex.MatchString(params.Username) {
		return fmt.Errorf("%w: username must be 3-32 lowercase letters, digits, '.', '_' or '-'", apperrors.ErrValidationFailed)
	}

	if err := validateEmail(params.Email); err != nil {
		return err
	}

	if err := validateSecret(params.Secret); err != nil {
		return err
	}

	if !params.UserType.Valid() {
		return apperrors.ErrInvalidUserType
	}

	return nil
}

// validateEmail validates an email address
func validateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("%w: email cannot be empty", apperrors.ErrValidationFailed)
	}

	if !emailRegex.MatchString(email) {
		return apperrors.ErrInvalidEmail
	}

	return nil
}

// validateSecret checks if the secret meets requirements
func validateSecret(secret string) error {
	if secret == "" {
		return fmt.Errorf("%w: secret cannot be empty", apperrors.ErrValidationFailed)
	}

	if len(secret) < 8 {
		return fmt.Errorf("%w: secret must be at least 8 characters long", apperrors.ErrInvalidSecret)
	}

	hasLetter := false
	hasDigit := false
	for _, char := range secret {
		if unicode.IsLetter(char) {
			hasLetter = true
		}
		if unicode.IsDigit(char) {
			hasDigit = true
		}
	}
	if !hasLetter {
		return fmt.Errorf("%w: secret must contain at least one letter", apperrors.ErrInvalidSecret)
	}
	if !hasDigit {
		return fmt.Errorf("%w: secret must contain at least one digit", apperrors.ErrInvalidSecret)
	}

	return nil
}
