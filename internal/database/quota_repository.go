package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/brianlapp/local-business-health-checker-sub001/internal/domain"
)

// QuotaRepository handles quota counter rows keyed by (provider, period).
type QuotaRepository struct {
	db *sqlx.DB
}

// NewQuotaRepository creates a new quota repository.
func NewQuotaRepository(db *sqlx.DB) *QuotaRepository {
	return &QuotaRepository{db: db}
}

// TryIncrement atomically admits cost units against the counter for
// (provider, period), creating the row lazily on first use. The guard in
// the ON CONFLICT clause means the increment never pushes used past the
// limit: when it would, no row is updated and admission is denied.
func (r *QuotaRepository) TryIncrement(
	ctx context.Context,
	provider, period string,
	cost, limit int,
) (bool, error) {
	query := `
		INSERT INTO quota_counters (provider, period, used, limit_max)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (provider, period) DO UPDATE
		SET used = quota_counters.used + $3, updated_at = NOW()
		WHERE quota_counters.used + $3 <= quota_counters.limit_max
		RETURNING used
	`

	var used int
	err := r.db.QueryRowContext(ctx, query, provider, period, cost, limit).Scan(&used)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Guard rejected the update: over limit.
			return false, nil
		}
		return false, fmt.Errorf("failed to increment quota counter: %w", err)
	}

	return true, nil
}

// Get returns the counter for (provider, period). A missing row reports
// zero usage against the supplied limit.
func (r *QuotaRepository) Get(
	ctx context.Context,
	provider, period string,
	limit int,
) (*domain.QuotaCounter, error) {
	var counter domain.QuotaCounter
	query := `
		SELECT provider, period, used, limit_max, updated_at
		FROM quota_counters
		WHERE provider = $1 AND period = $2
	`

	err := r.db.GetContext(ctx, &counter, query, provider, period)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &domain.QuotaCounter{
				Provider: provider,
				Period:   period,
				Used:     0,
				Limit:    limit,
			}, nil
		}
		return nil, fmt.Errorf("failed to get quota counter: %w", err)
	}

	return &counter, nil
}

// Reset zeroes the counter for (provider, period). Administrative
// operation; normal rollover just starts a fresh period row.
func (r *QuotaRepository) Reset(ctx context.Context, provider, period string) error {
	query := `
		UPDATE quota_counters
		SET used = 0, updated_at = NOW()
		WHERE provider = $1 AND period = $2
	`

	if _, err := r.db.ExecContext(ctx, query, provider, period); err != nil {
		return fmt.Errorf("failed to reset quota counter: %w", err)
	}

	return nil
}
