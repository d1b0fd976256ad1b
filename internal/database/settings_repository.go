package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/brianlapp/local-business-health-checker-sub001/internal/domain"
)

// SettingsRepository handles the automation settings singleton row.
type SettingsRepository struct {
	db *sqlx.DB
}

// NewSettingsRepository creates a new settings repository.
func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the automation settings, seeding defaults on first read.
func (r *SettingsRepository) Get(ctx context.Context) (*domain.AutomationSettings, error) {
	var settings domain.AutomationSettings
	query := `
		SELECT enabled, frequency, hour_of_day, batch_size, retry_failed,
		       max_retries, next_scheduled_run, last_run, updated_at
		FROM automation_settings
		WHERE id = 1
	`

	err := r.db.GetContext(ctx, &settings, query)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r.seed(ctx)
		}
		return nil, fmt.Errorf("failed to get automation settings: %w", err)
	}

	return &settings, nil
}

// Update persists the settings row.
func (r *SettingsRepository) Update(ctx context.Context, settings *domain.AutomationSettings) error {
	query := `
		UPDATE automation_settings
		SET enabled = $1, frequency = $2, hour_of_day = $3, batch_size = $4,
		    retry_failed = $5, max_retries = $6, next_scheduled_run = $7,
		    last_run = $8, updated_at = NOW()
		WHERE id = 1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		settings.Enabled,
		settings.Frequency,
		settings.HourOfDay,
		settings.BatchSize,
		settings.RetryFailed,
		settings.MaxRetries,
		settings.NextScheduledRun,
		settings.LastRun,
	)
	if err != nil {
		return fmt.Errorf("failed to update automation settings: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		if _, seedErr := r.seed(ctx); seedErr != nil {
			return seedErr
		}
		return r.Update(ctx, settings)
	}

	return nil
}

// RecordRun stamps last_run and the recomputed next run in one statement.
func (r *SettingsRepository) RecordRun(ctx context.Context, lastRun, nextRun time.Time) error {
	query := `
		UPDATE automation_settings
		SET last_run = $1, next_scheduled_run = $2, updated_at = NOW()
		WHERE id = 1
	`

	if _, err := r.db.ExecContext(ctx, query, lastRun, nextRun); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	return nil
}

// seed inserts the default settings row.
func (r *SettingsRepository) seed(ctx context.Context) (*domain.AutomationSettings, error) {
	defaults := domain.DefaultSettings()
	query := `
		INSERT INTO automation_settings
			(id, enabled, frequency, hour_of_day, batch_size, retry_failed, max_retries)
		VALUES (1, $1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		defaults.Enabled,
		defaults.Frequency,
		defaults.HourOfDay,
		defaults.BatchSize,
		defaults.RetryFailed,
		defaults.MaxRetries,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to seed automation settings: %w", err)
	}

	return defaults, nil
}
