package models

import "time"

// Role is a fine-grained permission name recorded in the role_grants ledger.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleFaculty  Role = "faculty"
	RoleHod      Role = "hod"
	RoleStudent  Role = "student"
	RoleAcademic Role = "academic"
)

// Scoped reports whether grants of this role carry a department scope.
// Only the hod role is department-scoped; everything else is global.
func (r Role) Scoped() bool {
	return r == RoleHod
}

// RoleGrant is a fact: user holds role, optionally scoped to a department.
// The store enforces set semantics over (UserID, Role, DepartmentID).
type RoleGrant struct {
	ID           int64     `json:"id" db:"id"`
	UserID       int64     `json:"userId" db:"user_id"`
	Role         Role      `json:"role" db:"role"`
	DepartmentID *int64    `json:"departmentId,omitempty" db:"department_id"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// GrantRef identifies a grant triple in sync reports without the row id.
type GrantRef struct {
	UserID       int64  `json:"userId"`
	Role         Role   `json:"role"`
	DepartmentID *int64 `json:"departmentId,omitempty"`
}
