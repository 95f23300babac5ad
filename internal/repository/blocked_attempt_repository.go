package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/access-service/internal/domain"
)

// BlockedAttemptRepository persists the append-only record of attempts denied
// by a global restrictive mode.
type BlockedAttemptRepository interface {
	Insert(ctx context.Context, attempt *domain.BlockedAttempt) error
	ListByMode(ctx context.Context, mode domain.Mode, since time.Time, limit int) ([]domain.BlockedAttempt, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type blockedAttemptRepository struct {
	pool *pgxpool.Pool
}

// NewBlockedAttemptRepository returns a Postgres-backed implementation.
func NewBlockedAttemptRepository(pool *pgxpool.Pool) BlockedAttemptRepository {
	return &blockedAttemptRepository{pool: pool}
}

func (r *blockedAttemptRepository) Insert(ctx context.Context, attempt *domain.BlockedAttempt) error {
	const query = `
        INSERT INTO blocked_attempts (id, email, role, mode, reason, attempted_at)
        VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		attempt.ID,
		attempt.Email,
		attempt.Role,
		attempt.Mode,
		attempt.Reason,
		attempt.AttemptedAt,
	)
	return err
}

func (r *blockedAttemptRepository) ListByMode(ctx context.Context, mode domain.Mode, since time.Time, limit int) ([]domain.BlockedAttempt, error) {
	const query = `
        SELECT id, email, role, mode, reason, attempted_at
        FROM blocked_attempts
        WHERE mode=$1 AND attempted_at >= $2
        ORDER BY attempted_at DESC
        LIMIT $3`

	rows, err := r.pool.Query(ctx, query, mode, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attempts := make([]domain.BlockedAttempt, 0, limit)
	for rows.Next() {
		var attempt domain.BlockedAttempt
		if err := rows.Scan(
			&attempt.ID,
			&attempt.Email,
			&attempt.Role,
			&attempt.Mode,
			&attempt.Reason,
			&attempt.AttemptedAt,
		); err != nil {
			return nil, err
		}
		attempts = append(attempts, attempt)
	}
	return attempts, rows.Err()
}

func (r *blockedAttemptRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `DELETE FROM blocked_attempts WHERE attempted_at < $1`
	cmd, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
