package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository       *UserRepository
	FacultyRepository    *FacultyRepository
	DepartmentRepository *DepartmentRepository
	AuthorityRepository  *AuthorityRepository
	RoleGrantRepository  *RoleGrantRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:       NewUserRepository(db),
		FacultyRepository:    NewFacultyRepository(db),
		DepartmentRepository: NewDepartmentRepository(db),
		AuthorityRepository:  NewAuthorityRepository(db),
		RoleGrantRepository:  NewRoleGrantRepository(db),
	}
}
