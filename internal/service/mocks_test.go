package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/access-service/internal/access"
	"github.com/spec-kit/access-service/internal/config"
	"github.com/spec-kit/access-service/internal/domain"
	"github.com/spec-kit/access-service/internal/events"
	"github.com/spec-kit/access-service/internal/observability"
	"github.com/spec-kit/access-service/internal/service"
)

type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
}

func newFakeAccountRepo(accounts ...*domain.Account) *fakeAccountRepo {
	repo := &fakeAccountRepo{accounts: make(map[string]*domain.Account)}
	for _, account := range accounts {
		copied := *account
		repo.accounts[account.ID] = &copied
	}
	return repo
}

func (r *fakeAccountRepo) Create(_ context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	account.ID = "acc-" + account.Email
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	copied := *account
	r.accounts[account.ID] = &copied
	return nil
}

func (r *fakeAccountRepo) GetByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *account
	return &copied, nil
}

func (r *fakeAccountRepo) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, account := range r.accounts {
		if account.Email == email {
			copied := *account
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeAccountRepo) IncrementFailedAttempts(_ context.Context, id string, threshold int) (int, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok {
		return 0, false, pgx.ErrNoRows
	}
	account.FailedLoginAttempts++
	if !account.AccountLocked && account.FailedLoginAttempts >= threshold {
		account.AccountLocked = true
		now := time.Now()
		account.AccountLockedAt = &now
	}
	return account.FailedLoginAttempts, account.AccountLocked, nil
}

func (r *fakeAccountRepo) ResetFailedAttempts(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok {
		return pgx.ErrNoRows
	}
	account.FailedLoginAttempts = 0
	return nil
}

func (r *fakeAccountRepo) Unlock(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok {
		return pgx.ErrNoRows
	}
	account.AccountLocked = false
	account.AccountLockedAt = nil
	account.FailedLoginAttempts = 0
	return nil
}

func (r *fakeAccountRepo) SetActive(_ context.Context, id string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok {
		return pgx.ErrNoRows
	}
	account.IsActive = active
	return nil
}

func (r *fakeAccountRepo) SetRole(_ context.Context, id string, role domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok {
		return pgx.ErrNoRows
	}
	account.Role = role
	return nil
}

func (r *fakeAccountRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.accounts, id)
	return nil
}

// fakeAttemptRepo records inserts and query arguments.
type fakeAttemptRepo struct {
	mu        sync.Mutex
	attempts  []domain.BlockedAttempt
	lastLimit int
	lastSince time.Time
}

func (r *fakeAttemptRepo) Insert(_ context.Context, attempt *domain.BlockedAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, *attempt)
	return nil
}

func (r *fakeAttemptRepo) ListByMode(_ context.Context, mode domain.Mode, since time.Time, limit int) ([]domain.BlockedAttempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastSince = since
	r.lastLimit = limit
	matched := make([]domain.BlockedAttempt, 0)
	for i := len(r.attempts) - 1; i >= 0 && len(matched) < limit; i-- {
		if r.attempts[i].Mode == mode {
			matched = append(matched, r.attempts[i])
		}
	}
	return matched, nil
}

func (r *fakeAttemptRepo) DeleteOlderThan(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

type fixture struct {
	repo        *fakeAccountRepo
	attemptRepo *fakeAttemptRepo
	coordinator *access.Coordinator
	auth        *service.AuthService
	admin       *service.AdminService
}

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 5,
			BcryptCost:            4,
		},
		Access: config.AccessConfig{
			LockThreshold:    4,
			ProtectedRole:    "it",
			EmergencyContact: "it-oncall@clinic.example",
			AuditQueueSize:   16,
		},
	}
}

func newFixture(t *testing.T, accounts ...*domain.Account) *fixture {
	t.Helper()

	cfg := testConfig()
	logger := zap.NewNop()
	repo := newFakeAccountRepo(accounts...)
	attemptRepo := &fakeAttemptRepo{}
	dispatcher := events.NewInMemoryDispatcher()

	coordinator := access.NewCoordinator(nil, dispatcher, logger, cfg.Access.EmergencyContact)
	tracker := access.NewLockoutTracker(repo, dispatcher, logger, cfg.Access.LockThreshold)
	audit := access.NewAuditLog(attemptRepo, logger, cfg.Access.AuditQueueSize, 0)
	audit.Start(context.Background())
	t.Cleanup(audit.Close)

	evaluator := access.NewEvaluator(coordinator, tracker, audit, observability.NewMetrics(), logger, domain.RoleIT)

	return &fixture{
		repo:        repo,
		attemptRepo: attemptRepo,
		coordinator: coordinator,
		auth: service.NewAuthService(cfg, service.AuthDependencies{
			AccountRepo: repo,
			Evaluator:   evaluator,
			Logger:      logger,
		}),
		admin: service.NewAdminService(service.AdminDependencies{
			AccountRepo: repo,
			Modes:       coordinator,
			Lockout:     tracker,
			Audit:       audit,
			Logger:      logger,
		}, domain.RoleIT),
	}
}
