package access

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/access-service/internal/domain"
	"github.com/spec-kit/access-service/internal/repository"
)

const (
	auditInsertRetries = 3
	auditRetryDelay    = 100 * time.Millisecond
	auditSweepInterval = time.Hour
)

// AuditLog is the append-only record of attempts rejected by a global mode.
// Appends are decoupled from the caller through a buffered queue: a store
// failure is retried and then dropped with a log line, never surfaced to the
// access decision that triggered it.
type AuditLog struct {
	repo      repository.BlockedAttemptRepository
	logger    *zap.Logger
	queue     chan domain.BlockedAttempt
	done      chan struct{}
	closeOnce sync.Once
	retention time.Duration
}

// NewAuditLog builds the audit log. retention of zero disables purging.
func NewAuditLog(repo repository.BlockedAttemptRepository, logger *zap.Logger, queueSize int, retention time.Duration) *AuditLog {
	if queueSize < 1 {
		queueSize = 256
	}
	return &AuditLog{
		repo:      repo,
		logger:    logger,
		queue:     make(chan domain.BlockedAttempt, queueSize),
		done:      make(chan struct{}),
		retention: retention,
	}
}

// Start launches the background writer and, when retention is configured, the
// purge sweeper. ctx cancellation stops the sweeper; the writer runs until
// Close drains the queue.
func (l *AuditLog) Start(ctx context.Context) {
	go l.writeLoop()
	if l.retention > 0 {
		go l.sweepLoop(ctx)
	}
}

// Append enqueues a blocked attempt without blocking the caller. It reports
// whether the entry was accepted; a full queue drops the entry.
func (l *AuditLog) Append(attempt domain.BlockedAttempt) bool {
	if attempt.ID == "" {
		attempt.ID = uuid.NewString()
	}
	if attempt.AttemptedAt.IsZero() {
		attempt.AttemptedAt = time.Now()
	}

	select {
	case l.queue <- attempt:
		return true
	default:
		l.logger.Warn("audit queue full, dropping blocked attempt",
			zap.String("email", attempt.Email),
			zap.String("mode", string(attempt.Mode)))
		return false
	}
}

// Query returns blocked attempts for a mode within the trailing window,
// newest first, capped at limit.
func (l *AuditLog) Query(ctx context.Context, mode domain.Mode, window time.Duration, limit int) ([]domain.BlockedAttempt, error) {
	since := time.Now().Add(-window)
	return l.repo.ListByMode(ctx, mode, since, limit)
}

// Close stops accepting entries and waits for the queue to drain. Safe to
// call more than once.
func (l *AuditLog) Close() {
	l.closeOnce.Do(func() {
		close(l.queue)
	})
	<-l.done
}

func (l *AuditLog) writeLoop() {
	defer close(l.done)
	for attempt := range l.queue {
		l.insertWithRetry(attempt)
	}
}

func (l *AuditLog) insertWithRetry(attempt domain.BlockedAttempt) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var err error
	for i := 0; i < auditInsertRetries; i++ {
		if err = l.repo.Insert(ctx, &attempt); err == nil {
			return
		}
		time.Sleep(auditRetryDelay * time.Duration(i+1))
	}
	l.logger.Error("failed to persist blocked attempt, dropping entry",
		zap.String("email", attempt.Email),
		zap.String("mode", string(attempt.Mode)),
		zap.Error(err))
}

func (l *AuditLog) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(auditSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-l.retention)
			deleted, err := l.repo.DeleteOlderThan(ctx, cutoff)
			if err != nil {
				l.logger.Warn("audit retention sweep failed", zap.Error(err))
				continue
			}
			if deleted > 0 {
				l.logger.Info("purged expired blocked attempts", zap.Int64("deleted", deleted))
			}
		}
	}
}
