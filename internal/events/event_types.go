package events

import (
	"time"

	"github.com/spec-kit/access-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventMaintenanceEnabled  EventType = "maintenance_enabled"
	EventMaintenanceDisabled EventType = "maintenance_disabled"
	EventSystemLockEnabled   EventType = "system_lock_enabled"
	EventSystemLockDisabled  EventType = "system_lock_disabled"
	EventAccountLocked       EventType = "account_locked"
	EventAccountUnlocked     EventType = "account_unlocked"
	EventAttemptBlocked      EventType = "attempt_blocked"
)

// Event represents an access-control event emitted by the coordinator.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	AccountID string      `json:"account_id,omitempty"`
	ActorID   string      `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ModeChangedPayload payload.
type ModeChangedPayload struct {
	Mode              domain.Mode `json:"mode"`
	Reason            string      `json:"reason,omitempty"`
	EstimatedDuration string      `json:"estimated_duration,omitempty"`
	EmergencyContact  string      `json:"emergency_contact,omitempty"`
}

// AccountLockedPayload payload.
type AccountLockedPayload struct {
	Attempts int `json:"attempts"`
}

// AttemptBlockedPayload payload.
type AttemptBlockedPayload struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
	Mode  domain.Mode `json:"mode"`
}
