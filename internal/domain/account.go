package domain

import "time"

// Role enumerates dashboard account roles.
type Role string

const (
	RoleIT        Role = "it"
	RoleAdmin     Role = "admin"
	RoleDoctor    Role = "doctor"
	RoleLab       Role = "lab"
	RoleReception Role = "reception"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleIT, RoleAdmin, RoleDoctor, RoleLab, RoleReception:
		return true
	}
	return false
}

// Account is the identity record the access coordinator gates and mutates.
// Suspension (IsActive) and lockout (AccountLocked) are independent axes;
// either one blocks login.
type Account struct {
	ID                  string
	Name                string
	Email               string
	PasswordHash        string
	Role                Role
	IsActive            bool
	FailedLoginAttempts int
	AccountLocked       bool
	AccountLockedAt     *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
