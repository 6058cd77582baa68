package models

// Department represents an academic department. HodFacultyID is the
// authoritative HOD designation: the synchronizer derives role grants from it
// and never writes it.
type Department struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Code         string   `json:"code"`
	HodFacultyID *int64   `json:"hodFacultyId,omitempty"`
	IsActive     bool     `json:"isActive"`
	Hod          *Faculty `json:"hod,omitempty"` // relation, no db column
}

// HodAssignment is one row of the authority snapshot: an active department
// together with its currently designated HOD faculty member.
type HodAssignment struct {
	DepartmentID int64 `json:"departmentId"`
	FacultyID    int64 `json:"facultyId"`
}
