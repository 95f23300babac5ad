package service

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/access-service/internal/access"
	"github.com/spec-kit/access-service/internal/auth"
	"github.com/spec-kit/access-service/internal/config"
	"github.com/spec-kit/access-service/internal/domain"
	"github.com/spec-kit/access-service/internal/repository"
	apperrors "github.com/spec-kit/access-service/pkg/util"
)

// AuthService coordinates registration and login flows. Every attempt runs
// through the access evaluator before credentials count for anything.
type AuthService struct {
	accounts   repository.AccountRepository
	evaluator  *access.Evaluator
	tokenMgr   *auth.TokenManager
	logger     *zap.Logger
	bcryptCost int
	threshold  int
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	AccountRepo repository.AccountRepository
	Evaluator   *access.Evaluator
	Logger      *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		accounts:   deps.AccountRepo,
		evaluator:  deps.Evaluator,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		logger:     deps.Logger,
		bcryptCost: cfg.Auth.BcryptCost,
		threshold:  cfg.Access.LockThreshold,
	}
}

// Register creates a new account. Registration is gated by the global
// availability mode just like login.
func (s *AuthService) Register(ctx context.Context, name, email, password string, role domain.Role) (*domain.Account, string, time.Time, error) {
	if !role.Valid() {
		return nil, "", time.Time{}, apperrors.NewValidationError("unknown role", map[string]any{"role": role})
	}

	if decision := s.evaluator.GateRegistration(email, role); !decision.Allow {
		return nil, "", time.Time{}, s.denialError(decision)
	}

	if _, err := s.accounts.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("email already registered", nil)
	} else if err != pgx.ErrNoRows {
		return nil, "", time.Time{}, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	account := &domain.Account{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, "", time.Time{}, err
	}

	token, exp, err := s.tokenMgr.GenerateToken(account.ID, account.Role)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return account, token, exp, nil
}

// Login authenticates an account through the full decision pipeline.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Account, string, time.Time, error) {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, err
	}

	credentialsValid := auth.ComparePassword(account.PasswordHash, password) == nil

	decision, err := s.evaluator.Evaluate(ctx, account, credentialsValid)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if !decision.Allow {
		return nil, "", time.Time{}, s.denialError(decision)
	}

	token, exp, err := s.tokenMgr.GenerateToken(account.ID, account.Role)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return account, token, exp, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// denialError maps a DENY decision to the error surfaced to the caller.
func (s *AuthService) denialError(decision domain.Decision) error {
	switch decision.Reason {
	case domain.ReasonMaintenanceMode:
		return apperrors.NewUnavailable("MAINTENANCE_MODE", "system is under maintenance", nil)
	case domain.ReasonSystemLock:
		return apperrors.NewUnavailable("SYSTEM_LOCK", "system is locked", nil)
	case domain.ReasonAccountSuspended:
		return apperrors.NewForbidden("account is suspended")
	case domain.ReasonAccountLocked:
		return apperrors.NewAccountLocked(nil)
	case domain.ReasonLoginFailed:
		remaining := s.threshold - decision.Attempts
		if remaining < 0 {
			remaining = 0
		}
		return apperrors.NewDomainError("LOGIN_FAILED", "invalid credentials", http.StatusUnauthorized, map[string]any{
			"attempts":           decision.Attempts,
			"attempts_remaining": remaining,
		})
	default:
		return apperrors.NewUnauthorized("access denied")
	}
}
