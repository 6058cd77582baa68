package services

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/campusid/internal/app/models"
	"github.com/campuskit/campusid/internal/pkg/apperrors"
)

// stubHasher keeps tests fast; the real bcrypt hasher is covered in pkg/auth.
type stubHasher struct{}

func (stubHasher) Hash(secret string) (string, error) { return "hashed:" + secret, nil }
func (stubHasher) Verify(hash, secret string) bool    { return hash == "hashed:"+secret }

// fakeAccounts is an in-memory AccountStore enforcing the same uniqueness the
// users table does.
type fakeAccounts struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*models.User
	grants []models.RoleGrant
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{nextID: 1, users: make(map[int64]*models.User)}
}

func (f *fakeAccounts) IdentityExists(ctx context.Context, username, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.identityTaken(username, email), nil
}

func (f *fakeAccounts) identityTaken(username, email string) bool {
	for _, u := range f.users {
		if u.Username == username || u.Email == email {
			return true
		}
	}
	return false
}

func (f *fakeAccounts) CreateWithDefaultGrant(ctx context.Context, user *models.User, grant models.RoleGrant) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.identityTaken(user.Username, user.Email) {
		return 0, apperrors.ErrDuplicateIdentity
	}
	id := f.nextID
	f.nextID++
	stored := *user
	stored.ID = id
	f.users[id] = &stored
	grant.UserID = id
	f.grants = append(f.grants, grant)
	user.ID = id
	return id, nil
}

func (f *fakeAccounts) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (f *fakeAccounts) UpdateSecretHash(ctx context.Context, userID int64, secretHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok || !u.IsActive {
		return apperrors.ErrUserNotFound
	}
	u.PasswordHash = secretHash
	return nil
}

func (f *fakeAccounts) SetActive(ctx context.Context, userID int64, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.IsActive = active
	return nil
}

// fakeFaculties is an in-memory FacultyDirectory.
type fakeFaculties struct {
	active map[int64]bool
}

func (f *fakeFaculties) IsActive(ctx context.Context, id int64) (bool, error) {
	active, ok := f.active[id]
	if !ok {
		return false, apperrors.ErrFacultyNotFound
	}
	return active, nil
}

func newCredentialService(accounts *fakeAccounts, faculties *fakeFaculties) *CredentialService {
	if faculties == nil {
		faculties = &fakeFaculties{active: map[int64]bool{}}
	}
	return NewCredentialService(accounts, faculties, stubHasher{}, zerolog.Nop())
}

func validParams() IssueParams {
	return IssueParams{
		Username: "jdoe",
		Email:    "jdoe@campus.edu",
		Secret:   "Sup3rSecret",
		UserType: models.UserTypeFaculty,
	}
}

func TestIssueCreatesAccountWithDefaultGrant(t *testing.T) {
	accounts := newFakeAccounts()
	svc := newCredentialService(accounts, nil)

	userID, err := svc.Issue(context.Background(), validParams())
	require.NoError(t, err)
	require.Equal(t, int64(1), userID)

	user := accounts.users[userID]
	require.NotNil(t, user)
	assert.True(t, user.IsActive)
	assert.Equal(t, "hashed:Sup3rSecret", user.PasswordHash)

	require.Len(t, accounts.grants, 1)
	assert.Equal(t, models.RoleFaculty, accounts.grants[0].Role)
	assert.Nil(t, accounts.grants[0].DepartmentID)
	assert.Equal(t, userID, accounts.grants[0].UserID)
}

func TestIssueDefaultRolePerUserType(t *testing.T) {
	cases := []struct {
		userType models.UserType
		want     models.Role
	}{
		{models.UserTypeAdmin, models.RoleAdmin},
		{models.UserTypeFaculty, models.RoleFaculty},
		{models.UserTypeHod, models.RoleFaculty}, // scoped hod grants come only from reconciliation
		{models.UserTypeStudent, models.RoleStudent},
		{models.UserTypeAcademic, models.RoleAcademic},
	}

	for i, tc := range cases {
		accounts := newFakeAccounts()
		svc := newCredentialService(accounts, nil)

		params := validParams()
		params.Username = params.Username + string(rune('a'+i))
		params.Email = params.Username + "@campus.edu"
		params.UserType = tc.userType

		_, err := svc.Issue(context.Background(), params)
		require.NoError(t, err, "user type %s", tc.userType)
		require.Len(t, accounts.grants, 1)
		assert.Equal(t, tc.want, accounts.grants[0].Role, "user type %s", tc.userType)
	}
}

func TestIssueRejectsDuplicateIdentity(t *testing.T) {
	accounts := newFakeAccounts()
	svc := newCredentialService(accounts, nil)

	first, err := svc.Issue(context.Background(), validParams())
	require.NoError(t, err)

	// Same email, different username.
	params := validParams()
	params.Username = "jdoe2"
	_, err = svc.Issue(context.Background(), params)
	assert.ErrorIs(t, err, apperrors.ErrDuplicateIdentity)

	// Same username, different email.
	params = validParams()
	params.Email = "other@campus.edu"
	_, err = svc.Issue(context.Background(), params)
	assert.ErrorIs(t, err, apperrors.ErrDuplicateIdentity)

	// The first account is unaffected.
	assert.Len(t, accounts.users, 1)
	assert.True(t, accounts.users[first].IsActive)
	assert.Len(t, accounts.grants, 1)
}

func TestIssueValidation(t *testing.T) {
	svc := newCredentialService(newFakeAccounts(), nil)

	params := validParams()
	params.Email = "not-an-email"
	_, err := svc.Issue(context.Background(), params)
	assert.ErrorIs(t, err, apperrors.ErrInvalidEmail)

	params = validParams()
	params.Secret = "short1"
	_, err = svc.Issue(context.Background(), params)
	assert.ErrorIs(t, err, apperrors.ErrInvalidSecret)

	params = validParams()
	params.Secret = "lettersonly"
	_, err = svc.Issue(context.Background(), params)
	assert.ErrorIs(t, err, apperrors.ErrInvalidSecret)

	params = validParams()
	params.UserType = models.UserType("chancellor")
	_, err = svc.Issue(context.Background(), params)
	assert.ErrorIs(t, err, apperrors.ErrInvalidUserType)

	params = validParams()
	params.Username = "x"
	_, err = svc.Issue(context.Background(), params)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestIssueChecksFacultyReference(t *testing.T) {
	faculties := &fakeFaculties{active: map[int64]bool{7: true, 8: false}}
	accounts := newFakeAccounts()
	svc := newCredentialService(accounts, faculties)

	facultyID := int64(7)
	params := validParams()
	params.FacultyID = &facultyID
	_, err := svc.Issue(context.Background(), params)
	require.NoError(t, err)

	inactive := int64(8)
	params = validParams()
	params.Username = "other"
	params.Email = "other@campus.edu"
	params.FacultyID = &inactive
	_, err = svc.Issue(context.Background(), params)
	assert.ErrorIs(t, err, apperrors.ErrFacultyInactive)

	missing := int64(99)
	params.FacultyID = &missing
	_, err = svc.Issue(context.Background(), params)
	assert.ErrorIs(t, err, apperrors.ErrFacultyNotFound)
}

func TestReissueSecret(t *testing.T) {
	accounts := newFakeAccounts()
	svc := newCredentialService(accounts, nil)

	userID, err := svc.Issue(context.Background(), validParams())
	require.NoError(t, err)

	require.NoError(t, svc.ReissueSecret(context.Background(), userID, "NewSecret9"))
	assert.Equal(t, "hashed:NewSecret9", accounts.users[userID].PasswordHash)

	err = svc.ReissueSecret(context.Background(), 999, "NewSecret9")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

	// Deactivated accounts cannot have secrets reissued.
	require.NoError(t, svc.Deactivate(context.Background(), userID))
	err = svc.ReissueSecret(context.Background(), userID, "NewSecret10")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestVerify(t *testing.T) {
	accounts := newFakeAccounts()
	svc := newCredentialService(accounts, nil)

	userID, err := svc.Issue(context.Background(), validParams())
	require.NoError(t, err)

	user, err := svc.Verify(context.Background(), "jdoe", "Sup3rSecret")
	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)

	_, err = svc.Verify(context.Background(), "jdoe", "WrongSecret1")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	// Unknown account is indistinguishable from a wrong secret.
	_, err = svc.Verify(context.Background(), "nobody", "Sup3rSecret")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	require.NoError(t, svc.Deactivate(context.Background(), userID))
	_, err = svc.Verify(context.Background(), "jdoe", "Sup3rSecret")
	assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)
}
