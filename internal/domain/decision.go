package domain

// DecisionReason is the closed set of outcomes an access evaluation can produce.
type DecisionReason string

const (
	ReasonAllowed          DecisionReason = "ALLOWED"
	ReasonMaintenanceMode  DecisionReason = "MAINTENANCE_MODE"
	ReasonSystemLock       DecisionReason = "SYSTEM_LOCK"
	ReasonAccountSuspended DecisionReason = "ACCOUNT_SUSPENDED"
	ReasonAccountLocked    DecisionReason = "ACCOUNT_LOCKED"
	ReasonLoginFailed      DecisionReason = "LOGIN_FAILED"
)

// Decision is the outcome of evaluating a single access attempt.
// Attempts carries the post-increment failure count when Reason is
// LOGIN_FAILED so callers can warn users approaching the lock threshold.
type Decision struct {
	Allow                bool
	Reason               DecisionReason
	Attempts             int
	BlockedAttemptLogged bool
}
