package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/access-service/internal/domain"
)

// AccountRepository defines persistence access for dashboard accounts,
// including the lockout counter primitives the access coordinator relies on.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)

	// IncrementFailedAttempts atomically bumps the failure counter and trips
	// the lock when the post-increment value reaches threshold. It returns the
	// new counter and lock state.
	IncrementFailedAttempts(ctx context.Context, id string, threshold int) (int, bool, error)
	ResetFailedAttempts(ctx context.Context, id string) error
	Unlock(ctx context.Context, id string) error

	SetActive(ctx context.Context, id string, active bool) error
	SetRole(ctx context.Context, id string, role domain.Role) error
	Delete(ctx context.Context, id string) error
}

type accountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository returns a Postgres-backed implementation.
func NewAccountRepository(pool *pgxpool.Pool) AccountRepository {
	return &accountRepository{pool: pool}
}

const accountColumns = `id, name, email, password_hash, role, is_active,
        failed_login_attempts, account_locked, account_locked_at, created_at, updated_at`

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	const query = `
        INSERT INTO accounts (name, email, password_hash, role, is_active)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		account.Name,
		account.Email,
		account.PasswordHash,
		account.Role,
		account.IsActive,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE id=$1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE email=$1`
	return r.scanOne(r.pool.QueryRow(ctx, query, email))
}

// The increment and lock trip happen in one statement so two concurrent
// failures for the same account serialize on the row and cannot both observe
// the pre-threshold counter.
func (r *accountRepository) IncrementFailedAttempts(ctx context.Context, id string, threshold int) (int, bool, error) {
	const query = `
        UPDATE accounts
        SET failed_login_attempts = failed_login_attempts + 1,
            account_locked = account_locked OR failed_login_attempts + 1 >= $2,
            account_locked_at = CASE
                WHEN NOT account_locked AND failed_login_attempts + 1 >= $2 THEN NOW()
                ELSE account_locked_at
            END,
            updated_at = NOW()
        WHERE id = $1
        RETURNING failed_login_attempts, account_locked`

	var attempts int
	var locked bool
	if err := r.pool.QueryRow(ctx, query, id, threshold).Scan(&attempts, &locked); err != nil {
		return 0, false, err
	}
	return attempts, locked, nil
}

func (r *accountRepository) ResetFailedAttempts(ctx context.Context, id string) error {
	const query = `
        UPDATE accounts SET failed_login_attempts = 0, updated_at = NOW() WHERE id=$1`
	return r.exec(ctx, query, id)
}

func (r *accountRepository) Unlock(ctx context.Context, id string) error {
	const query = `
        UPDATE accounts
        SET account_locked = FALSE, account_locked_at = NULL,
            failed_login_attempts = 0, updated_at = NOW()
        WHERE id=$1`
	return r.exec(ctx, query, id)
}

func (r *accountRepository) SetActive(ctx context.Context, id string, active bool) error {
	const query = `UPDATE accounts SET is_active=$2, updated_at=NOW() WHERE id=$1`
	return r.exec(ctx, query, id, active)
}

func (r *accountRepository) SetRole(ctx context.Context, id string, role domain.Role) error {
	const query = `UPDATE accounts SET role=$2, updated_at=NOW() WHERE id=$1`
	return r.exec(ctx, query, id, role)
}

func (r *accountRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM accounts WHERE id=$1`
	return r.exec(ctx, query, id)
}

func (r *accountRepository) exec(ctx context.Context, query string, args ...any) error {
	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *accountRepository) scanOne(row pgx.Row) (*domain.Account, error) {
	var account domain.Account
	if err := row.Scan(
		&account.ID,
		&account.Name,
		&account.Email,
		&account.PasswordHash,
		&account.Role,
		&account.IsActive,
		&account.FailedLoginAttempts,
		&account.AccountLocked,
		&account.AccountLockedAt,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &account, nil
}
