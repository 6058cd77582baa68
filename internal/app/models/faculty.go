package models

import "time"

// Faculty represents a staff member eligible to hold roles. The record is
// owned by the faculty-management side of the application; this core only
// reads existence and activity.
type Faculty struct {
	ID        int64     `json:"id" db:"id"`
	FirstName string    `json:"firstName" db:"first_name"`
	LastName  string    `json:"lastName" db:"last_name"`
	Email     string    `json:"email" db:"email"`
	IsActive  bool      `json:"isActive" db:"is_active"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
