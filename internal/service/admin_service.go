package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/access-service/internal/access"
	"github.com/spec-kit/access-service/internal/domain"
	"github.com/spec-kit/access-service/internal/repository"
	apperrors "github.com/spec-kit/access-service/pkg/util"
)

const (
	defaultAuditWindowDays = 7
	defaultAuditLimit      = 50
	maxAuditLimit          = 200
)

// AdminService executes the dashboard's administrative commands against the
// two access-control state holders and the audit log.
type AdminService struct {
	accounts      repository.AccountRepository
	modes         *access.Coordinator
	lockout       *access.LockoutTracker
	audit         *access.AuditLog
	logger        *zap.Logger
	protectedRole domain.Role
}

// AdminDependencies encapsulates requirements for the admin service.
type AdminDependencies struct {
	AccountRepo repository.AccountRepository
	Modes       *access.Coordinator
	Lockout     *access.LockoutTracker
	Audit       *access.AuditLog
	Logger      *zap.Logger
}

// NewAdminService builds the service.
func NewAdminService(deps AdminDependencies, protectedRole domain.Role) *AdminService {
	if protectedRole == "" {
		protectedRole = domain.RoleIT
	}
	return &AdminService{
		accounts:      deps.AccountRepo,
		modes:         deps.Modes,
		lockout:       deps.Lockout,
		audit:         deps.Audit,
		logger:        deps.Logger,
		protectedRole: protectedRole,
	}
}

// CurrentMode returns the latest committed availability mode.
func (s *AdminService) CurrentMode() domain.AvailabilityMode {
	return s.modes.Current()
}

// EnableMaintenance activates maintenance mode.
func (s *AdminService) EnableMaintenance(ctx context.Context, message, estimatedDuration, byAdminID string) (domain.AvailabilityMode, error) {
	return s.modes.EnableMaintenance(ctx, message, estimatedDuration, byAdminID)
}

// DisableMaintenance returns to normal mode; a no-op when maintenance is not active.
func (s *AdminService) DisableMaintenance(ctx context.Context, byAdminID string) domain.AvailabilityMode {
	return s.modes.DisableMaintenance(ctx, byAdminID)
}

// EnableSystemLock activates the system lock.
func (s *AdminService) EnableSystemLock(ctx context.Context, reason, emergencyContact, byAdminID string) (domain.AvailabilityMode, error) {
	return s.modes.EnableSystemLock(ctx, reason, emergencyContact, byAdminID)
}

// DisableSystemLock returns to normal mode; a no-op when the lock is not active.
func (s *AdminService) DisableSystemLock(ctx context.Context, byAdminID string) domain.AvailabilityMode {
	return s.modes.DisableSystemLock(ctx, byAdminID)
}

// UnlockAccount clears a lockout. Unlocking an account that is not locked
// succeeds without effect.
func (s *AdminService) UnlockAccount(ctx context.Context, accountID, byAdminID string) error {
	return s.lockout.Unlock(ctx, accountID, byAdminID)
}

// SetAccountStatus suspends or reactivates an account. Protected-role
// accounts can never be suspended.
func (s *AdminService) SetAccountStatus(ctx context.Context, accountID string, active bool, byAdminID string) error {
	account, err := s.getAccount(ctx, accountID)
	if err != nil {
		return err
	}
	if account.Role == s.protectedRole && !active {
		return apperrors.NewProtectedRoleViolation(
			fmt.Sprintf("accounts with role %q cannot be suspended", s.protectedRole))
	}

	if err := s.accounts.SetActive(ctx, accountID, active); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewAccountNotFound(accountID)
		}
		return err
	}

	s.logger.Info("account status changed",
		zap.String("account_id", accountID),
		zap.Bool("is_active", active),
		zap.String("by_admin", byAdminID))
	return nil
}

// ChangeRole updates an account's role. The role of a protected-role account
// can never be changed.
func (s *AdminService) ChangeRole(ctx context.Context, accountID string, role domain.Role, byAdminID string) error {
	if !role.Valid() {
		return apperrors.NewValidationError("unknown role", map[string]any{"role": role})
	}

	account, err := s.getAccount(ctx, accountID)
	if err != nil {
		return err
	}
	if account.Role == s.protectedRole {
		return apperrors.NewProtectedRoleViolation(
			fmt.Sprintf("role of %q accounts cannot be changed", s.protectedRole))
	}

	if err := s.accounts.SetRole(ctx, accountID, role); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewAccountNotFound(accountID)
		}
		return err
	}

	s.logger.Info("account role changed",
		zap.String("account_id", accountID),
		zap.String("role", string(role)),
		zap.String("by_admin", byAdminID))
	return nil
}

// DeleteAccount removes an account. Protected-role accounts can never be deleted.
func (s *AdminService) DeleteAccount(ctx context.Context, accountID, byAdminID string) error {
	account, err := s.getAccount(ctx, accountID)
	if err != nil {
		return err
	}
	if account.Role == s.protectedRole {
		return apperrors.NewProtectedRoleViolation(
			fmt.Sprintf("accounts with role %q cannot be deleted", s.protectedRole))
	}

	if err := s.accounts.Delete(ctx, accountID); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewAccountNotFound(accountID)
		}
		return err
	}

	s.logger.Info("account deleted",
		zap.String("account_id", accountID),
		zap.String("by_admin", byAdminID))
	return nil
}

// BlockedAttempts queries the audit log for one mode over a trailing window
// in days, newest first. Zero or out-of-range values fall back to defaults.
func (s *AdminService) BlockedAttempts(ctx context.Context, mode domain.Mode, days, limit int) ([]domain.BlockedAttempt, error) {
	if days <= 0 {
		days = defaultAuditWindowDays
	}
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	if limit > maxAuditLimit {
		limit = maxAuditLimit
	}
	window := time.Duration(days) * 24 * time.Hour
	return s.audit.Query(ctx, mode, window, limit)
}

func (s *AdminService) getAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewAccountNotFound(accountID)
		}
		return nil, err
	}
	return account, nil
}
