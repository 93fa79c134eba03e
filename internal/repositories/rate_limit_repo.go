package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/Arihant25/isitopen/internal/database"
	"github.com/Arihant25/isitopen/internal/models"
	"github.com/jackc/pgx/v5"
)

// RateLimitRepository handles database operations for persistent
// rate-limit records
type RateLimitRepository struct {
	db *database.DB
}

// NewRateLimitRepository creates a new RateLimitRepository
func NewRateLimitRepository(db *database.DB) *RateLimitRepository {
	return &RateLimitRepository{db: db}
}

// Get returns the record for a key, or nil when none exists.
func (r *RateLimitRepository) Get(ctx context.Context, key string) (*models.RateLimitRecord, error) {
	query := `
		SELECT key, attempts, last_attempt, lockout_until
		FROM rate_limits
		WHERE key = $1
	`

	var record models.RateLimitRecord
	err := r.db.Pool.QueryRow(ctx, query, key).Scan(
		&record.Key,
		&record.Attempts,
		&record.LastAttempt,
		&record.LockoutUntil,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &record, nil
}

// Upsert writes the full record state for a key.
func (r *RateLimitRepository) Upsert(ctx context.Context, record *models.RateLimitRecord) error {
	query := `
		INSERT INTO rate_limits (key, attempts, last_attempt, lockout_until)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE
		SET attempts = EXCLUDED.attempts,
		    last_attempt = EXCLUDED.last_attempt,
		    lockout_until = EXCLUDED.lockout_until
	`

	_, err := r.db.Pool.Exec(ctx, query,
		record.Key,
		record.Attempts,
		record.LastAttempt,
		record.LockoutUntil,
	)

	return database.MapPostgresError(err)
}

// Delete removes the record for a key. Missing rows are not an error: a
// successful login clears a key whether or not failures were recorded.
func (r *RateLimitRepository) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM rate_limits WHERE key = $1`
	_, err := r.db.Pool.Exec(ctx, query, key)
	return database.MapPostgresError(err)
}

// ListWithLockouts returns every record that ever reached a lockout, for
// the admin dashboard.
func (r *RateLimitRepository) ListWithLockouts(ctx context.Context) ([]models.RateLimitRecord, error) {
	query := `
		SELECT key, attempts, last_attempt, lockout_until
		FROM rate_limits
		WHERE lockout_until IS NOT NULL
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	defer rows.Close()

	var records []models.RateLimitRecord
	for rows.Next() {
		var record models.RateLimitRecord
		if err := rows.Scan(&record.Key, &record.Attempts, &record.LastAttempt, &record.LockoutUntil); err != nil {
			return nil, database.MapPostgresError(err)
		}
		records = append(records, record)
	}

	return records, database.MapPostgresError(rows.Err())
}

// DeleteExpired removes records whose lockout has passed and whose last
// attempt is older than the reset window. Such rows can never influence a
// future decision.
func (r *RateLimitRepository) DeleteExpired(ctx context.Context, resetWindow time.Duration) (int64, error) {
	query := `
		DELETE FROM rate_limits
		WHERE (lockout_until IS NULL OR lockout_until <= NOW())
		  AND last_attempt <= NOW() - make_interval(secs => $1)
	`

	tag, err := r.db.Pool.Exec(ctx, query, resetWindow.Seconds())
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return tag.RowsAffected(), nil
}
