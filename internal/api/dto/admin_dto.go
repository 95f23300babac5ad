package dto

import "time"

// EnableMaintenanceRequest payload.
type EnableMaintenanceRequest struct {
	Message           string `json:"message"`
	EstimatedDuration string `json:"estimatedDuration"`
}

// MaintenanceStatusResponse describes the maintenance-mode state.
type MaintenanceStatusResponse struct {
	Enabled           bool       `json:"enabled"`
	Message           string     `json:"message,omitempty"`
	EstimatedDuration string     `json:"estimatedDuration,omitempty"`
	ActivatedAt       *time.Time `json:"activatedAt,omitempty"`
	ActivatedBy       string     `json:"activatedBy,omitempty"`
}

// EnableSystemLockRequest payload.
type EnableSystemLockRequest struct {
	Reason           string `json:"reason"`
	EmergencyContact string `json:"emergencyContact"`
}

// SystemLockStatusResponse describes the system-lock state.
type SystemLockStatusResponse struct {
	Enabled          bool       `json:"enabled"`
	Reason           string     `json:"reason,omitempty"`
	EmergencyContact string     `json:"emergencyContact,omitempty"`
	ActivatedAt      *time.Time `json:"activatedAt,omitempty"`
	ActivatedBy      string     `json:"activatedBy,omitempty"`
}

// UpdateStatusRequest payload for suspending or reactivating an account.
type UpdateStatusRequest struct {
	IsActive *bool `json:"isActive"`
}

// BlockedAttemptResponse is one audit entry.
type BlockedAttemptResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	Mode        string    `json:"mode"`
	Reason      string    `json:"reason,omitempty"`
	AttemptedAt time.Time `json:"timestamp"`
}

// BlockedAttemptsResponse wraps the audit query result.
type BlockedAttemptsResponse struct {
	BlockedAttempts []BlockedAttemptResponse `json:"blockedAttempts"`
}
