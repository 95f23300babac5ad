package access_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/access-service/internal/access"
	"github.com/spec-kit/access-service/internal/domain"
	"github.com/spec-kit/access-service/internal/events"
	apperrors "github.com/spec-kit/access-service/pkg/util"
)

const lockThreshold = 4

func activeAccount(id string) *domain.Account {
	return &domain.Account{
		ID:       id,
		Email:    id + "@clinic.example",
		Role:     domain.RoleDoctor,
		IsActive: true,
	}
}

func newTracker(repo *fakeAccountRepo, dispatcher *captureDispatcher) *access.LockoutTracker {
	return access.NewLockoutTracker(repo, dispatcher, zap.NewNop(), lockThreshold)
}

func TestRecordFailedAttemptTripsLockAtThreshold(t *testing.T) {
	repo := newFakeAccountRepo(activeAccount("a1"))
	dispatcher := &captureDispatcher{}
	tracker := newTracker(repo, dispatcher)
	ctx := context.Background()

	for i := 1; i < lockThreshold; i++ {
		state, err := tracker.RecordFailedAttempt(ctx, "a1")
		require.NoError(t, err)
		assert.Equal(t, i, state.Attempts)
		assert.False(t, state.Locked, "must not lock before the threshold")
	}

	state, err := tracker.RecordFailedAttempt(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, lockThreshold, state.Attempts)
	assert.True(t, state.Locked)

	account, err := repo.GetByID(ctx, "a1")
	require.NoError(t, err)
	assert.True(t, account.AccountLocked)
	require.NotNil(t, account.AccountLockedAt)

	assert.Len(t, dispatcher.byType(events.EventAccountLocked), 1)
}

func TestConcurrentFailuresLoseNoIncrements(t *testing.T) {
	const workers = 50

	repo := newFakeAccountRepo(activeAccount("a1"))
	dispatcher := &captureDispatcher{}
	tracker := newTracker(repo, dispatcher)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := tracker.RecordFailedAttempt(context.Background(), "a1")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	account, err := repo.GetByID(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, workers, account.FailedLoginAttempts, "no increment may be lost")
	assert.True(t, account.AccountLocked)

	// exactly one unlocked-to-locked transition
	assert.Len(t, dispatcher.byType(events.EventAccountLocked), 1)
}

func TestRecordSuccessResetsCounterNotLock(t *testing.T) {
	repo := newFakeAccountRepo(activeAccount("a1"))
	tracker := newTracker(repo, &captureDispatcher{})
	ctx := context.Background()

	for i := 0; i < lockThreshold+1; i++ {
		_, err := tracker.RecordFailedAttempt(ctx, "a1")
		require.NoError(t, err)
	}

	require.NoError(t, tracker.RecordSuccess(ctx, "a1"))

	account, err := repo.GetByID(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, 0, account.FailedLoginAttempts)
	assert.True(t, account.AccountLocked, "success must not clear the lock")
}

func TestUnlockResetsStateAndIsIdempotent(t *testing.T) {
	repo := newFakeAccountRepo(activeAccount("a1"))
	dispatcher := &captureDispatcher{}
	tracker := newTracker(repo, dispatcher)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := tracker.RecordFailedAttempt(ctx, "a1")
		require.NoError(t, err)
	}

	require.NoError(t, tracker.Unlock(ctx, "a1", "admin-1"))

	account, err := repo.GetByID(ctx, "a1")
	require.NoError(t, err)
	assert.False(t, account.AccountLocked)
	assert.Nil(t, account.AccountLockedAt)
	assert.Equal(t, 0, account.FailedLoginAttempts)

	// next failure starts a fresh cycle
	state, err := tracker.RecordFailedAttempt(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, 1, state.Attempts)
	assert.False(t, state.Locked)

	// repeat unlock is a no-op success and emits no second event
	require.NoError(t, tracker.Unlock(ctx, "a1", "admin-1"))
	assert.Len(t, dispatcher.byType(events.EventAccountUnlocked), 1)
}

func TestIsBlocked(t *testing.T) {
	locked := activeAccount("locked")
	locked.AccountLocked = true
	suspended := activeAccount("suspended")
	suspended.IsActive = false

	repo := newFakeAccountRepo(activeAccount("clean"), locked, suspended)
	tracker := newTracker(repo, &captureDispatcher{})
	ctx := context.Background()

	for _, tc := range []struct {
		id      string
		blocked bool
	}{
		{"clean", false},
		{"locked", true},
		{"suspended", true},
	} {
		blocked, err := tracker.IsBlocked(ctx, tc.id)
		require.NoError(t, err)
		assert.Equal(t, tc.blocked, blocked, tc.id)
	}
}

func TestUnknownAccountErrors(t *testing.T) {
	tracker := newTracker(newFakeAccountRepo(), &captureDispatcher{})
	ctx := context.Background()

	_, err := tracker.RecordFailedAttempt(ctx, "missing")
	assertDomainCode(t, err, "ACCOUNT_NOT_FOUND")

	err = tracker.RecordSuccess(ctx, "missing")
	assertDomainCode(t, err, "ACCOUNT_NOT_FOUND")

	err = tracker.Unlock(ctx, "missing", "admin-1")
	assertDomainCode(t, err, "ACCOUNT_NOT_FOUND")

	_, err = tracker.IsBlocked(ctx, "missing")
	assertDomainCode(t, err, "ACCOUNT_NOT_FOUND")
}

func assertDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, code, domainErr.Code)
}
