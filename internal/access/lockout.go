package access

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/access-service/internal/events"
	"github.com/spec-kit/access-service/internal/repository"
	apperrors "github.com/spec-kit/access-service/pkg/util"
)

// LockoutState is the result of recording a failed attempt.
type LockoutState struct {
	Attempts int
	Locked   bool
}

// LockoutTracker owns per-account failed-attempt counters and lock flags.
// The counter mutations are delegated to single-statement repository
// operations so concurrent failures for the same account cannot lose
// increments or skip the lock transition.
type LockoutTracker struct {
	accounts   repository.AccountRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	threshold  int
}

// NewLockoutTracker builds the tracker.
func NewLockoutTracker(accounts repository.AccountRepository, dispatcher events.Dispatcher, logger *zap.Logger, threshold int) *LockoutTracker {
	if threshold < 1 {
		threshold = 4
	}
	return &LockoutTracker{
		accounts:   accounts,
		dispatcher: dispatcher,
		logger:     logger,
		threshold:  threshold,
	}
}

// Threshold returns the configured lock threshold.
func (t *LockoutTracker) Threshold() int {
	return t.threshold
}

// RecordFailedAttempt increments the failure counter and trips the lock when
// the post-increment count reaches the threshold.
func (t *LockoutTracker) RecordFailedAttempt(ctx context.Context, accountID string) (LockoutState, error) {
	attempts, locked, err := t.accounts.IncrementFailedAttempts(ctx, accountID, t.threshold)
	if err != nil {
		if err == pgx.ErrNoRows {
			return LockoutState{}, apperrors.NewAccountNotFound(accountID)
		}
		return LockoutState{}, err
	}

	// attempts equals the threshold exactly once per lock cycle, which marks
	// the unlocked-to-locked transition.
	if locked && attempts == t.threshold {
		t.logger.Warn("account locked after repeated failures",
			zap.String("account_id", accountID),
			zap.Int("attempts", attempts))
		t.publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventAccountLocked,
			AccountID: accountID,
			Timestamp: time.Now(),
			Payload:   events.AccountLockedPayload{Attempts: attempts},
		})
	}

	return LockoutState{Attempts: attempts, Locked: locked}, nil
}

// RecordSuccess resets the failure counter. It deliberately leaves the lock
// flag untouched; a locked account stays locked until an explicit unlock.
func (t *LockoutTracker) RecordSuccess(ctx context.Context, accountID string) error {
	if err := t.accounts.ResetFailedAttempts(ctx, accountID); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewAccountNotFound(accountID)
		}
		return err
	}
	return nil
}

// Unlock clears the lock flag and resets the counter. Unlocking an account
// that is not locked is treated as an idempotent success.
func (t *LockoutTracker) Unlock(ctx context.Context, accountID, byAdminID string) error {
	account, err := t.accounts.GetByID(ctx, accountID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewAccountNotFound(accountID)
		}
		return err
	}

	if !account.AccountLocked {
		t.logger.Debug("unlock requested for account that is not locked",
			zap.String("account_id", accountID))
		return nil
	}

	if err := t.accounts.Unlock(ctx, accountID); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewAccountNotFound(accountID)
		}
		return err
	}

	t.logger.Info("account unlocked",
		zap.String("account_id", accountID),
		zap.String("by_admin", byAdminID))
	t.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventAccountUnlocked,
		AccountID: accountID,
		ActorID:   byAdminID,
		Timestamp: time.Now(),
	})
	return nil
}

// IsBlocked reports whether the account may not authenticate, either because
// it is locked or administratively suspended.
func (t *LockoutTracker) IsBlocked(ctx context.Context, accountID string) (bool, error) {
	active, locked, err := t.Status(ctx, accountID)
	if err != nil {
		return false, err
	}
	return locked || !active, nil
}

// Status returns the account's suspension and lock flags from the store.
func (t *LockoutTracker) Status(ctx context.Context, accountID string) (active bool, locked bool, err error) {
	account, err := t.accounts.GetByID(ctx, accountID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return false, false, apperrors.NewAccountNotFound(accountID)
		}
		return false, false, err
	}
	return account.IsActive, account.AccountLocked, nil
}

func (t *LockoutTracker) publish(ctx context.Context, event events.Event) {
	if t.dispatcher == nil {
		return
	}
	_ = t.dispatcher.Publish(ctx, event)
}
