package services

import (
	"github.com/rs/zerolog"

	"github.com/campuskit/campusid/internal/app/repositories"
	pkgAuth "github.com/campuskit/campusid/internal/pkg/auth"
)

// Services holds the service instances of the identity core.
type Services struct {
	CredentialService *CredentialService
	SyncService       *SyncService
}

// NewServices wires the services to their pgx-backed repositories.
func NewServices(repos *repositories.Repositories, logger zerolog.Logger) *Services {
	return &Services{
		CredentialService: NewCredentialService(
			repos.UserRepository,
			repos.FacultyRepository,
			pkgAuth.BcryptHasher{},
			logger,
		),
		SyncService: NewSyncService(
			repos.AuthorityRepository,
			repos.RoleGrantRepository,
			logger,
		),
	}
}
