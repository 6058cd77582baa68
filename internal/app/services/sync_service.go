package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/campuskit/campusid/internal/app/models"
	"github.com/campuskit/campusid/internal/app/repositories"
	"github.com/campuskit/campusid/internal/pkg/apperrors"
)

// WarningOrphanedHodAssignment marks a department whose HOD faculty id
// resolves to no active user account.
const WarningOrphanedHodAssignment = "orphaned_hod_assignment"

// AuthoritySource is the read-only department HOD authority view.
type AuthoritySource interface {
	ListActiveDepartmentsWithHod(ctx context.Context) ([]models.HodAssignment, error)
	ResolveUserForFaculty(ctx context.Context, facultyID int64) (int64, error)
}

// GrantLedger is the subset of the role grant store the synchronizer writes.
type GrantLedger interface {
	Grant(ctx context.Context, userID int64, role models.Role, departmentID *int64) (repositories.GrantOutcome, error)
	Revoke(ctx context.Context, userID int64, role models.Role, departmentID *int64) (repositories.RevokeOutcome, error)
}

// SyncWarning records a per-department data-integrity problem that did not
// abort the run.
type SyncWarning struct {
	Code         string `json:"code"`
	DepartmentID int64  `json:"departmentId"`
	FacultyID    int64  `json:"facultyId"`
	Message      string `json:"message"`
}

// SyncReport is the structured outcome of one reconciliation run.
type SyncReport struct {
	RunID          string            `json:"runId"`
	StartedAt      time.Time         `json:"startedAt"`
	FinishedAt     time.Time         `json:"finishedAt"`
	Created        []models.GrantRef `json:"created"`
	AlreadyPresent []models.GrantRef `json:"alreadyPresent"`
	Revoked        []models.GrantRef `json:"revoked,omitempty"`
	Warnings       []SyncWarning     `json:"warnings,omitempty"`
}

// SyncService reconciles the role grant ledger against the department HOD
// authority. Every run reads a fresh snapshot and every step is independently
// idempotent, so the service is safe to invoke concurrently with itself and
// with credential issuance; correctness rests on the ledger's atomic
// check-then-insert per triple.
type SyncService struct {
	authority AuthoritySource
	grants    GrantLedger
	logger    zerolog.Logger
}

// NewSyncService creates a new SyncService
func NewSyncService(authority AuthoritySource, grants GrantLedger, logger zerolog.Logger) *SyncService {
	return &SyncService{
		authority: authority,
		grants:    grants,
		logger:    logger,
	}
}

// Reconcile applies the minimal set of grant insertions needed so that every
// active department's HOD holds the global faculty role and the hod role
// scoped to that department. Additive only: it never revokes anything. A
// department whose HOD cannot be resolved produces a warning and does not
// block the rest of the run; a store failure aborts the whole run with
// ErrSyncUnavailable.
func (s *SyncService) Reconcile(ctx context.Context) (*SyncReport, error) {
	return s.reconcile(ctx, nil)
}

// ReconcileWithPrevious additionally revokes hod grants for assignments that
// were present in the previous authority snapshot but are gone from the
// current one. The global faculty role is left untouched: losing the HOD seat
// does not end faculty membership.
func (s *SyncService) ReconcileWithPrevious(ctx context.Context, previous []models.HodAssignment) (*SyncReport, error) {
	return s.reconcile(ctx, previous)
}

func (s *SyncService) reconcile(ctx context.Context, previous []models.HodAssignment) (*SyncReport, error) {
	report := &SyncReport{
		RunID:          uuid.NewString(),
		StartedAt:      time.Now(),
		Created:        []models.GrantRef{},
		AlreadyPresent: []models.GrantRef{},
	}

	assignments, err := s.authority.ListActiveDepartmentsWithHod(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: listing departments: %v", apperrors.ErrSyncUnavailable, err)
	}

	for _, assignment := range assignments {
		if err := s.reconcileDepartment(ctx, report, assignment); err != nil {
			return nil, err
		}
	}

	if previous != nil {
		if err := s.revokeStale(ctx, report, previous, assignments); err != nil {
			return nil, err
		}
	}

	report.FinishedAt = time.Now()

	s.logger.Info().
		Str("runID", report.RunID).
		Int("created", len(report.Created)).
		Int("alreadyPresent", len(report.AlreadyPresent)).
		Int("revoked", len(report.Revoked)).
		Int("warnings", len(report.Warnings)).
		Msg("Role reconciliation finished")

	return report, nil
}

// reconcileDepartment brings one department's HOD grants in line with
// authority. Departments have disjoint grant triples, so processing order
// only affects report ordering, never the final state.
func (s *SyncService) reconcileDepartment(ctx context.Context, report *SyncReport, assignment models.HodAssignment) error {
	userID, err := s.authority.ResolveUserForFaculty(ctx, assignment.FacultyID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			report.Warnings = append(report.Warnings, SyncWarning{
				Code:         WarningOrphanedHodAssignment,
				DepartmentID: assignment.DepartmentID,
				FacultyID:    assignment.FacultyID,
				Message:      fmt.Sprintf("department %d designates faculty %d as HOD but no active user account references that faculty", assignment.DepartmentID, assignment.FacultyID),
			})

			s.logger.Warn().
				Int64("departmentID", assignment.DepartmentID).
				Int64("facultyID", assignment.FacultyID).
				Msg("Orphaned HOD assignment, skipping department")
			return nil
		}
		return fmt.Errorf("%w: resolving user for faculty %d: %v", apperrors.ErrSyncUnavailable, assignment.FacultyID, err)
	}

	// HOD is a refinement of faculty; the global grant must exist first.
	if err := s.ensureGrant(ctx, report, userID, models.RoleFaculty, nil); err != nil {
		return err
	}

	departmentID := assignment.DepartmentID
	return s.ensureGrant(ctx, report, userID, models.RoleHod, &departmentID)
}

func (s *SyncService) ensureGrant(ctx context.Context, report *SyncReport, userID int64, role models.Role, departmentID *int64) error {
	outcome, err := s.grants.Grant(ctx, userID, role, departmentID)
	if err != nil {
		return fmt.Errorf("%w: granting %s to user %d: %v", apperrors.ErrSyncUnavailable, role, userID, err)
	}

	ref := models.GrantRef{UserID: userID, Role: role, DepartmentID: departmentID}
	switch outcome {
	case repositories.GrantInserted:
		report.Created = append(report.Created, ref)
	case repositories.GrantAlreadyPresent:
		report.AlreadyPresent = append(report.AlreadyPresent, ref)
	}

	return nil
}

// revokeStale removes hod grants for (department, faculty) pairs the new
// snapshot no longer lists. Pairs whose user cannot be resolved any more are
// reported as warnings; their grants need manual review.
func (s *SyncService) revokeStale(ctx context.Context, report *SyncReport, previous, current []models.HodAssignment) error {
	currentByDept := make(map[int64]int64, len(current))
	for _, assignment := range current {
		currentByDept[assignment.DepartmentID] = assignment.FacultyID
	}

	for _, old := range previous {
		if facultyID, ok := currentByDept[old.DepartmentID]; ok && facultyID == old.FacultyID {
			continue // assignment unchanged
		}

		userID, err := s.authority.ResolveUserForFaculty(ctx, old.FacultyID)
		if err != nil {
			if errors.Is(err, apperrors.ErrUserNotFound) {
				report.Warnings = append(report.Warnings, SyncWarning{
					Code:         WarningOrphanedHodAssignment,
					DepartmentID: old.DepartmentID,
					FacultyID:    old.FacultyID,
					Message:      fmt.Sprintf("previous HOD faculty %d of department %d resolves to no active user; stale grant left for manual review", old.FacultyID, old.DepartmentID),
				})
				continue
			}
			return fmt.Errorf("%w: resolving previous HOD user for faculty %d: %v", apperrors.ErrSyncUnavailable, old.FacultyID, err)
		}

		departmentID := old.DepartmentID
		outcome, err := s.grants.Revoke(ctx, userID, models.RoleHod, &departmentID)
		if err != nil {
			return fmt.Errorf("%w: revoking stale hod grant for user %d: %v", apperrors.ErrSyncUnavailable, userID, err)
		}

		if outcome == repositories.RevokeRemoved {
			report.Revoked = append(report.Revoked, models.GrantRef{
				UserID:       userID,
				Role:         models.RoleHod,
				DepartmentID: &departmentID,
			})
		}
	}

	return nil
}
