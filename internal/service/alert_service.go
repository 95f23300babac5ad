package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/access-service/internal/events"
)

// AlertService surfaces access-control events on the operational log feed.
type AlertService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAlertService creates the service.
func NewAlertService(dispatcher events.Dispatcher, logger *zap.Logger) *AlertService {
	return &AlertService{dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes to events.
func (a *AlertService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventMaintenanceEnabled, a.handleModeChanged)
	a.dispatcher.Subscribe(events.EventMaintenanceDisabled, a.handleModeChanged)
	a.dispatcher.Subscribe(events.EventSystemLockEnabled, a.handleModeChanged)
	a.dispatcher.Subscribe(events.EventSystemLockDisabled, a.handleModeChanged)
	a.dispatcher.Subscribe(events.EventAccountLocked, a.handleAccountLocked)
	a.dispatcher.Subscribe(events.EventAccountUnlocked, a.handleAccountUnlocked)
}

func (a *AlertService) handleModeChanged(_ context.Context, event events.Event) error {
	a.logger.Warn("availability mode transition",
		zap.String("event", string(event.Type)),
		zap.String("actor_id", event.ActorID),
		zap.Any("payload", event.Payload))
	return nil
}

func (a *AlertService) handleAccountLocked(_ context.Context, event events.Event) error {
	a.logger.Warn("account lockout tripped",
		zap.String("account_id", event.AccountID),
		zap.Any("payload", event.Payload))
	return nil
}

func (a *AlertService) handleAccountUnlocked(_ context.Context, event events.Event) error {
	a.logger.Info("account lockout cleared",
		zap.String("account_id", event.AccountID),
		zap.String("actor_id", event.ActorID))
	return nil
}
