package domain

import "time"

// BlockedAttempt records a login or registration attempt denied by a global
// restrictive mode. Entries are immutable once written.
type BlockedAttempt struct {
	ID          string
	Email       string
	Role        Role
	Mode        Mode
	Reason      string
	AttemptedAt time.Time
}
