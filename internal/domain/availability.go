package domain

import "time"

// Mode is the process-wide availability state.
type Mode string

const (
	ModeNormal      Mode = "NORMAL"
	ModeMaintenance Mode = "MAINTENANCE"
	ModeSystemLock  Mode = "SYSTEM_LOCK"
)

// Restrictive reports whether the mode limits login to the protected role.
func (m Mode) Restrictive() bool {
	return m == ModeMaintenance || m == ModeSystemLock
}

// AvailabilityMode is the single global mode record. EstimatedDuration is
// meaningful only under MAINTENANCE, EmergencyContact only under SYSTEM_LOCK.
type AvailabilityMode struct {
	Mode              Mode
	Reason            string
	EstimatedDuration string
	EmergencyContact  string
	ActivatedAt       time.Time
	ActivatedBy       string
}
