package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/campusid/internal/app/models"
	"github.com/campuskit/campusid/internal/app/repositories"
	"github.com/campuskit/campusid/internal/pkg/apperrors"
)

// fakeAuthority is an in-memory AuthoritySource.
type fakeAuthority struct {
	assignments []models.HodAssignment
	users       map[int64]int64 // facultyID -> userID
	listErr     error
	resolveErr  error
}

func (f *fakeAuthority) ListActiveDepartmentsWithHod(ctx context.Context) ([]models.HodAssignment, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.assignments, nil
}

func (f *fakeAuthority) ResolveUserForFaculty(ctx context.Context, facultyID int64) (int64, error) {
	if f.resolveErr != nil {
		return 0, f.resolveErr
	}
	userID, ok := f.users[facultyID]
	if !ok {
		return 0, apperrors.ErrUserNotFound
	}
	return userID, nil
}

// fakeLedger is an in-memory GrantLedger with set semantics, mirroring the
// uniqueness guarantee of the role_grants indexes.
type fakeLedger struct {
	mu        sync.Mutex
	grants    map[string]struct{}
	grantErr  error
	revokeErr error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{grants: make(map[string]struct{})}
}

func grantKey(userID int64, role models.Role, departmentID *int64) string {
	if departmentID == nil {
		return fmt.Sprintf("%d|%s|global", userID, role)
	}
	return fmt.Sprintf("%d|%s|%d", userID, role, *departmentID)
}

func (f *fakeLedger) Grant(ctx context.Context, userID int64, role models.Role, departmentID *int64) (repositories.GrantOutcome, error) {
	if f.grantErr != nil {
		return "", f.grantErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := grantKey(userID, role, departmentID)
	if _, ok := f.grants[key]; ok {
		return repositories.GrantAlreadyPresent, nil
	}
	f.grants[key] = struct{}{}
	return repositories.GrantInserted, nil
}

func (f *fakeLedger) Revoke(ctx context.Context, userID int64, role models.Role, departmentID *int64) (repositories.RevokeOutcome, error) {
	if f.revokeErr != nil {
		return "", f.revokeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := grantKey(userID, role, departmentID)
	if _, ok := f.grants[key]; !ok {
		return repositories.RevokeNotPresent, nil
	}
	delete(f.grants, key)
	return repositories.RevokeRemoved, nil
}

func (f *fakeLedger) has(userID int64, role models.Role, departmentID *int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.grants[grantKey(userID, role, departmentID)]
	return ok
}

func deptID(id int64) *int64 { return &id }

func TestReconcileCreatesGrantsAndIsIdempotent(t *testing.T) {
	authority := &fakeAuthority{
		assignments: []models.HodAssignment{{DepartmentID: 1, FacultyID: 7}},
		users:       map[int64]int64{7: 42},
	}
	ledger := newFakeLedger()
	svc := NewSyncService(authority, ledger, zerolog.Nop())

	report, err := svc.Reconcile(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, report.RunID)

	require.Len(t, report.Created, 2)
	assert.Equal(t, models.GrantRef{UserID: 42, Role: models.RoleFaculty}, report.Created[0])
	assert.Equal(t, models.GrantRef{UserID: 42, Role: models.RoleHod, DepartmentID: deptID(1)}, report.Created[1])
	assert.Empty(t, report.AlreadyPresent)
	assert.Empty(t, report.Warnings)

	assert.True(t, ledger.has(42, models.RoleFaculty, nil))
	assert.True(t, ledger.has(42, models.RoleHod, deptID(1)))

	// Second run with unchanged authority must produce zero new writes.
	second, err := svc.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Empty(t, second.Created)
	require.Len(t, second.AlreadyPresent, 2)
	assert.NotEqual(t, report.RunID, second.RunID)
}

func TestReconcileEnsuresFacultyGrantForExistingHod(t *testing.T) {
	// User already holds the scoped hod grant but lost the global faculty
	// grant; reconciliation restores it.
	authority := &fakeAuthority{
		assignments: []models.HodAssignment{{DepartmentID: 3, FacultyID: 5}},
		users:       map[int64]int64{5: 11},
	}
	ledger := newFakeLedger()
	_, err := ledger.Grant(context.Background(), 11, models.RoleHod, deptID(3))
	require.NoError(t, err)

	svc := NewSyncService(authority, ledger, zerolog.Nop())
	report, err := svc.Reconcile(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Created, 1)
	assert.Equal(t, models.RoleFaculty, report.Created[0].Role)
	require.Len(t, report.AlreadyPresent, 1)
	assert.Equal(t, models.RoleHod, report.AlreadyPresent[0].Role)
}

func TestReconcileToleratesOrphanedAssignment(t *testing.T) {
	authority := &fakeAuthority{
		assignments: []models.HodAssignment{
			{DepartmentID: 2, FacultyID: 99}, // resolves to no user
			{DepartmentID: 1, FacultyID: 7},
		},
		users: map[int64]int64{7: 42},
	}
	ledger := newFakeLedger()
	svc := NewSyncService(authority, ledger, zerolog.Nop())

	report, err := svc.Reconcile(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Warnings, 1)
	assert.Equal(t, WarningOrphanedHodAssignment, report.Warnings[0].Code)
	assert.Equal(t, int64(2), report.Warnings[0].DepartmentID)
	assert.Equal(t, int64(99), report.Warnings[0].FacultyID)

	// The healthy department still reconciled.
	require.Len(t, report.Created, 2)
	assert.True(t, ledger.has(42, models.RoleHod, deptID(1)))
}

func TestReconcileAbortsWhenAuthorityUnavailable(t *testing.T) {
	authority := &fakeAuthority{listErr: errors.New("connection refused")}
	svc := NewSyncService(authority, newFakeLedger(), zerolog.Nop())

	report, err := svc.Reconcile(context.Background())
	assert.Nil(t, report)
	assert.ErrorIs(t, err, apperrors.ErrSyncUnavailable)
}

func TestReconcileAbortsWhenResolveFailsWithStoreError(t *testing.T) {
	authority := &fakeAuthority{
		assignments: []models.HodAssignment{{DepartmentID: 1, FacultyID: 7}},
		resolveErr:  errors.New("connection reset"),
	}
	svc := NewSyncService(authority, newFakeLedger(), zerolog.Nop())

	_, err := svc.Reconcile(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrSyncUnavailable)
}

func TestReconcileAbortsWhenLedgerUnavailable(t *testing.T) {
	authority := &fakeAuthority{
		assignments: []models.HodAssignment{{DepartmentID: 1, FacultyID: 7}},
		users:       map[int64]int64{7: 42},
	}
	ledger := newFakeLedger()
	ledger.grantErr = errors.New("connection refused")
	svc := NewSyncService(authority, ledger, zerolog.Nop())

	_, err := svc.Reconcile(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrSyncUnavailable)
}

func TestReconcileWithPreviousRevokesStaleHodGrant(t *testing.T) {
	// Department 1 moved from faculty 7 (user 42) to faculty 8 (user 43).
	authority := &fakeAuthority{
		assignments: []models.HodAssignment{{DepartmentID: 1, FacultyID: 8}},
		users:       map[int64]int64{7: 42, 8: 43},
	}
	ledger := newFakeLedger()
	svc := NewSyncService(authority, ledger, zerolog.Nop())

	// First run under the old assignment.
	previous := []models.HodAssignment{{DepartmentID: 1, FacultyID: 7}}
	_, err := ledger.Grant(context.Background(), 42, models.RoleFaculty, nil)
	require.NoError(t, err)
	_, err = ledger.Grant(context.Background(), 42, models.RoleHod, deptID(1))
	require.NoError(t, err)

	report, err := svc.ReconcileWithPrevious(context.Background(), previous)
	require.NoError(t, err)

	require.Len(t, report.Revoked, 1)
	assert.Equal(t, models.GrantRef{UserID: 42, Role: models.RoleHod, DepartmentID: deptID(1)}, report.Revoked[0])

	// New HOD holds both grants; old HOD keeps faculty but loses hod.
	assert.True(t, ledger.has(43, models.RoleFaculty, nil))
	assert.True(t, ledger.has(43, models.RoleHod, deptID(1)))
	assert.True(t, ledger.has(42, models.RoleFaculty, nil))
	assert.False(t, ledger.has(42, models.RoleHod, deptID(1)))
}

func TestReconcileWithPreviousSkipsUnchangedAssignments(t *testing.T) {
	authority := &fakeAuthority{
		assignments: []models.HodAssignment{{DepartmentID: 1, FacultyID: 7}},
		users:       map[int64]int64{7: 42},
	}
	ledger := newFakeLedger()
	svc := NewSyncService(authority, ledger, zerolog.Nop())

	first, err := svc.ReconcileWithPrevious(context.Background(), []models.HodAssignment{{DepartmentID: 1, FacultyID: 7}})
	require.NoError(t, err)
	assert.Empty(t, first.Revoked)
	assert.True(t, ledger.has(42, models.RoleHod, deptID(1)))
}

func TestReconcileWithPreviousWarnsOnUnresolvablePreviousHod(t *testing.T) {
	// The previous HOD's account is gone; the stale grant is reported, not
	// silently dropped.
	authority := &fakeAuthority{
		assignments: []models.HodAssignment{},
		users:       map[int64]int64{},
	}
	ledger := newFakeLedger()
	svc := NewSyncService(authority, ledger, zerolog.Nop())

	report, err := svc.ReconcileWithPrevious(context.Background(), []models.HodAssignment{{DepartmentID: 4, FacultyID: 21}})
	require.NoError(t, err)

	assert.Empty(t, report.Revoked)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, int64(4), report.Warnings[0].DepartmentID)
	assert.Equal(t, int64(21), report.Warnings[0].FacultyID)
}

func TestReconcileConcurrentRunsProduceNoDuplicates(t *testing.T) {
	authority := &fakeAuthority{
		assignments: []models.HodAssignment{
			{DepartmentID: 1, FacultyID: 7},
			{DepartmentID: 2, FacultyID: 8},
		},
		users: map[int64]int64{7: 42, 8: 43},
	}
	ledger := newFakeLedger()
	svc := NewSyncService(authority, ledger, zerolog.Nop())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Reconcile(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	ledger.mu.Lock()
	defer ledger.mu.Unlock()
	// 2 users x (faculty + hod) grants, regardless of how runs interleaved.
	assert.Len(t, ledger.grants, 4)
}
