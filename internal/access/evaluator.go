package access

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/access-service/internal/domain"
	"github.com/spec-kit/access-service/internal/observability"
)

// Evaluator is the single entry point for access decisions. It combines the
// global availability mode with per-account lockout state, in that order:
// global restrictions are reported ahead of account-level ones because they
// are the more actionable reason, and protected-role accounts bypass the
// global check entirely.
type Evaluator struct {
	modes         *Coordinator
	lockout       *LockoutTracker
	audit         *AuditLog
	metrics       *observability.Metrics
	logger        *zap.Logger
	protectedRole domain.Role
}

// NewEvaluator builds the evaluator.
func NewEvaluator(modes *Coordinator, lockout *LockoutTracker, audit *AuditLog, metrics *observability.Metrics, logger *zap.Logger, protectedRole domain.Role) *Evaluator {
	if protectedRole == "" {
		protectedRole = domain.RoleIT
	}
	return &Evaluator{
		modes:         modes,
		lockout:       lockout,
		audit:         audit,
		metrics:       metrics,
		logger:        logger,
		protectedRole: protectedRole,
	}
}

// ProtectedRole returns the role exempt from global-mode denial.
func (e *Evaluator) ProtectedRole() domain.Role {
	return e.protectedRole
}

// Evaluate decides a single login attempt for a known account, given the
// outcome of the external credential check.
func (e *Evaluator) Evaluate(ctx context.Context, account *domain.Account, credentialsValid bool) (domain.Decision, error) {
	if decision, denied := e.checkMode(account.Email, account.Role); denied {
		e.record(decision)
		return decision, nil
	}

	active, locked, err := e.lockout.Status(ctx, account.ID)
	if err != nil {
		return domain.Decision{}, err
	}
	if !active {
		decision := domain.Decision{Reason: domain.ReasonAccountSuspended}
		e.record(decision)
		return decision, nil
	}
	if locked {
		decision := domain.Decision{Reason: domain.ReasonAccountLocked}
		e.record(decision)
		return decision, nil
	}

	if !credentialsValid {
		state, err := e.lockout.RecordFailedAttempt(ctx, account.ID)
		if err != nil {
			return domain.Decision{}, err
		}
		decision := domain.Decision{Reason: domain.ReasonLoginFailed, Attempts: state.Attempts}
		e.record(decision)
		return decision, nil
	}

	if err := e.lockout.RecordSuccess(ctx, account.ID); err != nil {
		return domain.Decision{}, err
	}
	decision := domain.Decision{Allow: true, Reason: domain.ReasonAllowed}
	e.record(decision)
	return decision, nil
}

// GateRegistration applies only the global-mode gate; registration attempts
// have no account state to consult yet.
func (e *Evaluator) GateRegistration(email string, role domain.Role) domain.Decision {
	if decision, denied := e.checkMode(email, role); denied {
		e.record(decision)
		return decision
	}
	return domain.Decision{Allow: true, Reason: domain.ReasonAllowed}
}

// checkMode reports a denial when a restrictive mode is active and the role
// is not protected. The blocked attempt is handed to the audit log
// fire-and-forget; its fate never changes the decision.
func (e *Evaluator) checkMode(email string, role domain.Role) (domain.Decision, bool) {
	mode := e.modes.Current()
	if !mode.Mode.Restrictive() || role == e.protectedRole {
		return domain.Decision{}, false
	}

	reason := domain.ReasonMaintenanceMode
	if mode.Mode == domain.ModeSystemLock {
		reason = domain.ReasonSystemLock
	}

	logged := e.audit.Append(domain.BlockedAttempt{
		Email:       email,
		Role:        role,
		Mode:        mode.Mode,
		Reason:      mode.Reason,
		AttemptedAt: time.Now(),
	})

	e.logger.Info("attempt blocked by availability mode",
		zap.String("email", email),
		zap.String("role", string(role)),
		zap.String("mode", string(mode.Mode)))

	return domain.Decision{Reason: reason, BlockedAttemptLogged: logged}, true
}

func (e *Evaluator) record(decision domain.Decision) {
	e.metrics.RecordDecision(string(decision.Reason), decision.Allow)
}
