package access_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/access-service/internal/domain"
	"github.com/spec-kit/access-service/internal/events"
)

var errInsertFailed = errors.New("insert failed")

// fakeAccountRepo is a mutex-guarded in-memory account store mirroring the
// atomicity of the SQL implementation.
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
	if account.ID == "" {
		account.ID = "acc-" + account.Email
	}
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

// fakeAttemptRepo stores blocked attempts in memory with optional injected
// insert failures.
type fakeAttemptRepo struct {
	mu           sync.Mutex
	attempts     []domain.BlockedAttempt
	failuresLeft int
}

func (r *fakeAttemptRepo) Insert(_ context.Context, attempt *domain.BlockedAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failuresLeft > 0 {
		r.failuresLeft--
		return errInsertFailed
	}
	r.attempts = append(r.attempts, *attempt)
	return nil
}

func (r *fakeAttemptRepo) ListByMode(_ context.Context, mode domain.Mode, since time.Time, limit int) ([]domain.BlockedAttempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := make([]domain.BlockedAttempt, 0)
	for i := len(r.attempts) - 1; i >= 0 && len(matched) < limit; i-- {
		attempt := r.attempts[i]
		if attempt.Mode == mode && !attempt.AttemptedAt.Before(since) {
			matched = append(matched, attempt)
		}
	}
	return matched, nil
}

func (r *fakeAttemptRepo) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.attempts[:0]
	var deleted int64
	for _, attempt := range r.attempts {
		if attempt.AttemptedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, attempt)
	}
	r.attempts = kept
	return deleted, nil
}

func (r *fakeAttemptRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.attempts)
}

type fakeModeStore struct {
	mu       sync.Mutex
	snapshot *domain.AvailabilityMode
	saves    int
}

func (s *fakeModeStore) Save(_ context.Context, mode domain.AvailabilityMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := mode
	s.snapshot = &copied
	s.saves++
	return nil
}

func (s *fakeModeStore) Load(_ context.Context) (*domain.AvailabilityMode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot == nil {
		return nil, nil
	}
	copied := *s.snapshot
	return &copied, nil
}

func (s *fakeModeStore) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// captureDispatcher records published events.
type captureDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *captureDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *captureDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *captureDispatcher) byType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	matched := make([]events.Event, 0)
	for _, event := range d.events {
		if event.Type == eventType {
			matched = append(matched, event)
		}
	}
	return matched
}
