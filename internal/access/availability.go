package access

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/access-service/internal/domain"
	"github.com/spec-kit/access-service/internal/events"
	apperrors "github.com/spec-kit/access-service/pkg/util"
)

// ModeStore persists availability-mode snapshots across restarts.
type ModeStore interface {
	Save(ctx context.Context, mode domain.AvailabilityMode) error
	Load(ctx context.Context) (*domain.AvailabilityMode, error)
}

// Coordinator owns the single global availability mode and enforces mutual
// exclusion between MAINTENANCE and SYSTEM_LOCK. All transitions happen inside
// one critical section, so the check-then-set in the enable operations is
// atomic: of two admins racing to enable opposite modes, exactly one wins and
// the other receives a conflict error.
type Coordinator struct {
	mu      sync.Mutex
	current domain.AvailabilityMode

	store            ModeStore
	dispatcher       events.Dispatcher
	logger           *zap.Logger
	emergencyContact string
}

// NewCoordinator builds a coordinator starting in NORMAL mode. defaultContact
// is the fixed emergency contact stamped on system locks when the request
// leaves it empty.
func NewCoordinator(store ModeStore, dispatcher events.Dispatcher, logger *zap.Logger, defaultContact string) *Coordinator {
	return &Coordinator{
		current:          domain.AvailabilityMode{Mode: domain.ModeNormal},
		store:            store,
		dispatcher:       dispatcher,
		logger:           logger,
		emergencyContact: defaultContact,
	}
}

// Restore adopts a persisted restrictive mode, so a restart during
// maintenance comes back up in maintenance.
func (c *Coordinator) Restore(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	snapshot, err := c.store.Load(ctx)
	if err != nil {
		return err
	}
	if snapshot == nil || !snapshot.Mode.Restrictive() {
		return nil
	}

	c.mu.Lock()
	c.current = *snapshot
	c.mu.Unlock()

	c.logger.Warn("restored restrictive availability mode",
		zap.String("mode", string(snapshot.Mode)),
		zap.String("reason", snapshot.Reason))
	return nil
}

// Current returns the latest committed mode record.
func (c *Coordinator) Current() domain.AvailabilityMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// EnableMaintenance transitions to MAINTENANCE unless a system lock is
// active. Re-enabling while already in maintenance overwrites the metadata.
func (c *Coordinator) EnableMaintenance(ctx context.Context, reason, estimatedDuration, byAdminID string) (domain.AvailabilityMode, error) {
	c.mu.Lock()
	if c.current.Mode == domain.ModeSystemLock {
		c.mu.Unlock()
		return domain.AvailabilityMode{}, apperrors.NewConflict("system lock active", nil)
	}
	record := domain.AvailabilityMode{
		Mode:              domain.ModeMaintenance,
		Reason:            reason,
		EstimatedDuration: estimatedDuration,
		ActivatedAt:       time.Now(),
		ActivatedBy:       byAdminID,
	}
	c.current = record
	c.mu.Unlock()

	c.commit(ctx, record, events.EventMaintenanceEnabled, byAdminID)
	return record, nil
}

// DisableMaintenance returns to NORMAL only when maintenance is active;
// otherwise it is a no-op.
func (c *Coordinator) DisableMaintenance(ctx context.Context, byAdminID string) domain.AvailabilityMode {
	return c.disable(ctx, domain.ModeMaintenance, events.EventMaintenanceDisabled, byAdminID)
}

// EnableSystemLock transitions to SYSTEM_LOCK unless maintenance is active.
func (c *Coordinator) EnableSystemLock(ctx context.Context, reason, emergencyContact, byAdminID string) (domain.AvailabilityMode, error) {
	if emergencyContact == "" {
		emergencyContact = c.emergencyContact
	}

	c.mu.Lock()
	if c.current.Mode == domain.ModeMaintenance {
		c.mu.Unlock()
		return domain.AvailabilityMode{}, apperrors.NewConflict("maintenance mode active", nil)
	}
	record := domain.AvailabilityMode{
		Mode:             domain.ModeSystemLock,
		Reason:           reason,
		EmergencyContact: emergencyContact,
		ActivatedAt:      time.Now(),
		ActivatedBy:      byAdminID,
	}
	c.current = record
	c.mu.Unlock()

	c.commit(ctx, record, events.EventSystemLockEnabled, byAdminID)
	return record, nil
}

// DisableSystemLock returns to NORMAL only when the system lock is active.
func (c *Coordinator) DisableSystemLock(ctx context.Context, byAdminID string) domain.AvailabilityMode {
	return c.disable(ctx, domain.ModeSystemLock, events.EventSystemLockDisabled, byAdminID)
}

func (c *Coordinator) disable(ctx context.Context, from domain.Mode, eventType events.EventType, byAdminID string) domain.AvailabilityMode {
	c.mu.Lock()
	if c.current.Mode != from {
		record := c.current
		c.mu.Unlock()
		return record
	}
	record := domain.AvailabilityMode{Mode: domain.ModeNormal}
	c.current = record
	c.mu.Unlock()

	c.commit(ctx, record, eventType, byAdminID)
	return record
}

// commit persists the snapshot and emits the transition event. The in-memory
// record is already authoritative at this point; a snapshot failure is logged
// and does not undo the transition.
func (c *Coordinator) commit(ctx context.Context, record domain.AvailabilityMode, eventType events.EventType, byAdminID string) {
	if c.store != nil {
		if err := c.store.Save(ctx, record); err != nil {
			c.logger.Warn("failed to persist availability mode snapshot", zap.Error(err))
		}
	}

	c.logger.Info(fmt.Sprintf("availability mode is now %s", record.Mode),
		zap.String("reason", record.Reason),
		zap.String("by_admin", byAdminID))

	if c.dispatcher != nil {
		_ = c.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      eventType,
			ActorID:   byAdminID,
			Timestamp: time.Now(),
			Payload: events.ModeChangedPayload{
				Mode:              record.Mode,
				Reason:            record.Reason,
				EstimatedDuration: record.EstimatedDuration,
				EmergencyContact:  record.EmergencyContact,
			},
		})
	}
}
