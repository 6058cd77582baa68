package models

import (
	"time"
)

// UserType is the primary classification of an account. It is distinct from
// the fine-grained entries in the role_grants ledger: a user has exactly one
// UserType but may hold any number of grants.
type UserType string

const (
	UserTypeAdmin    UserType = "admin"
	UserTypeFaculty  UserType = "faculty"
	UserTypeHod      UserType = "hod"
	UserTypeStudent  UserType = "student"
	UserTypeAcademic UserType = "academic"
)

// Valid reports whether t is one of the known user types.
func (t UserType) Valid() bool {
	switch t {
	case UserTypeAdmin, UserTypeFaculty, UserTypeHod, UserTypeStudent, UserTypeAcademic:
		return true
	}
	return false
}

// DefaultRole returns the single global role granted when an account of this
// type is issued. A hod-typed account starts with the faculty role; the
// department-scoped hod grant only ever comes from reconciliation.
func (t UserType) DefaultRole() Role {
	switch t {
	case UserTypeAdmin:
		return RoleAdmin
	case UserTypeFaculty, UserTypeHod:
		return RoleFaculty
	case UserTypeStudent:
		return RoleStudent
	case UserTypeAcademic:
		return RoleAcademic
	}
	return Role(t)
}

// User defines the user model based on the 'users' table
type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	UserType     UserType  `json:"userType" db:"user_type"`
	FacultyID    *int64    `json:"facultyId,omitempty" db:"faculty_id"` // back-reference to faculties, nullable
	IsActive     bool      `json:"isActive" db:"is_active"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}
