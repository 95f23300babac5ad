package service_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/access-service/internal/domain"
)

func lockedAccount(t *testing.T, id, email string) *domain.Account {
	t.Helper()
	account := seedAccount(t, id, email, domain.RoleDoctor)
	account.FailedLoginAttempts = 4
	account.AccountLocked = true
	lockedAt := time.Now().Add(-time.Minute)
	account.AccountLockedAt = &lockedAt
	return account
}

func TestUnlockAccountClearsLock(t *testing.T) {
	fx := newFixture(t, lockedAccount(t, "acc-1", "doc@clinic.example"))
	ctx := context.Background()

	require.NoError(t, fx.admin.UnlockAccount(ctx, "acc-1", "admin-1"))

	stored, err := fx.repo.GetByID(ctx, "acc-1")
	require.NoError(t, err)
	assert.False(t, stored.AccountLocked)
	assert.Nil(t, stored.AccountLockedAt)
	assert.Equal(t, 0, stored.FailedLoginAttempts)
}

func TestUnlockAccountNotLockedIsNoOp(t *testing.T) {
	fx := newFixture(t, seedAccount(t, "acc-1", "doc@clinic.example", domain.RoleDoctor))

	assert.NoError(t, fx.admin.UnlockAccount(context.Background(), "acc-1", "admin-1"))
}

func TestUnlockUnknownAccount(t *testing.T) {
	fx := newFixture(t)

	err := fx.admin.UnlockAccount(context.Background(), "ghost", "admin-1")
	assertCode(t, err, "ACCOUNT_NOT_FOUND", http.StatusNotFound)
}

func TestSuspendAccount(t *testing.T) {
	fx := newFixture(t, seedAccount(t, "acc-1", "doc@clinic.example", domain.RoleDoctor))
	ctx := context.Background()

	require.NoError(t, fx.admin.SetAccountStatus(ctx, "acc-1", false, "admin-1"))

	stored, err := fx.repo.GetByID(ctx, "acc-1")
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
}

func TestSuspendProtectedRoleRejected(t *testing.T) {
	fx := newFixture(t, seedAccount(t, "acc-it", "it@clinic.example", domain.RoleIT))
	ctx := context.Background()

	err := fx.admin.SetAccountStatus(ctx, "acc-it", false, "admin-1")
	assertCode(t, err, "PROTECTED_ROLE", http.StatusForbidden)

	stored, err := fx.repo.GetByID(ctx, "acc-it")
	require.NoError(t, err)
	assert.True(t, stored.IsActive, "account untouched after the rejection")

	// reactivation is not a suspension and stays allowed
	assert.NoError(t, fx.admin.SetAccountStatus(ctx, "acc-it", true, "admin-1"))
}

func TestChangeRole(t *testing.T) {
	fx := newFixture(t, seedAccount(t, "acc-1", "doc@clinic.example", domain.RoleDoctor))
	ctx := context.Background()

	require.NoError(t, fx.admin.ChangeRole(ctx, "acc-1", domain.RoleLab, "admin-1"))

	stored, err := fx.repo.GetByID(ctx, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleLab, stored.Role)
}

func TestChangeRoleOfProtectedAccountRejected(t *testing.T) {
	fx := newFixture(t, seedAccount(t, "acc-it", "it@clinic.example", domain.RoleIT))

	err := fx.admin.ChangeRole(context.Background(), "acc-it", domain.RoleAdmin, "admin-1")
	assertCode(t, err, "PROTECTED_ROLE", http.StatusForbidden)
}

func TestChangeRoleRejectsUnknownRole(t *testing.T) {
	fx := newFixture(t, seedAccount(t, "acc-1", "doc@clinic.example", domain.RoleDoctor))

	err := fx.admin.ChangeRole(context.Background(), "acc-1", domain.Role("janitor"), "admin-1")
	assertCode(t, err, "VALIDATION_FAILED", http.StatusBadRequest)
}

func TestDeleteAccount(t *testing.T) {
	fx := newFixture(t, seedAccount(t, "acc-1", "doc@clinic.example", domain.RoleDoctor))
	ctx := context.Background()

	require.NoError(t, fx.admin.DeleteAccount(ctx, "acc-1", "admin-1"))

	_, err := fx.repo.GetByID(ctx, "acc-1")
	require.Error(t, err)
}

func TestDeleteProtectedAccountRejected(t *testing.T) {
	fx := newFixture(t, seedAccount(t, "acc-it", "it@clinic.example", domain.RoleIT))

	err := fx.admin.DeleteAccount(context.Background(), "acc-it", "admin-1")
	assertCode(t, err, "PROTECTED_ROLE", http.StatusForbidden)

	_, getErr := fx.repo.GetByID(context.Background(), "acc-it")
	assert.NoError(t, getErr, "account survives the rejected delete")
}

func TestBlockedAttemptsAppliesDefaultsAndClamps(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.admin.BlockedAttempts(ctx, domain.ModeMaintenance, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 50, fx.attemptRepo.lastLimit)
	assert.WithinDuration(t, time.Now().Add(-7*24*time.Hour), fx.attemptRepo.lastSince, time.Minute)

	_, err = fx.admin.BlockedAttempts(ctx, domain.ModeSystemLock, 1, 500)
	require.NoError(t, err)
	assert.Equal(t, 200, fx.attemptRepo.lastLimit)
	assert.WithinDuration(t, time.Now().Add(-24*time.Hour), fx.attemptRepo.lastSince, time.Minute)
}
