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

// BusinessRepository handles database operations for businesses.
type BusinessRepository struct {
	db *sqlx.DB
}

// NewBusinessRepository creates a new business repository.
func NewBusinessRepository(db *sqlx.DB) *BusinessRepository {
	return &BusinessRepository{db: db}
}

// GetByID retrieves a business by its ID.
func (r *BusinessRepository) GetByID(ctx context.Context, id string) (*domain.Business, error) {
	var business domain.Business
	query := `
		SELECT id, name, website, phone, scan_score, scan_report_url,
		       last_scanned_at, created_at, updated_at
		FROM businesses
		WHERE id = $1
	`

	err := r.db.GetContext(ctx, &business, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("business not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get business: %w", err)
	}

	return &business, nil
}

// ListStale returns up to limit businesses with a website whose last scan
// is older than cutoff or that have never been scanned, oldest scan first.
func (r *BusinessRepository) ListStale(
	ctx context.Context,
	cutoff time.Time,
	limit int,
) ([]*domain.Business, error) {
	var businesses []*domain.Business
	query := `
		SELECT id, name, website, phone, scan_score, scan_report_url,
		       last_scanned_at, created_at, updated_at
		FROM businesses
		WHERE website IS NOT NULL AND website != ''
		  AND (last_scanned_at IS NULL OR last_scanned_at < $1)
		ORDER BY last_scanned_at ASC NULLS FIRST
		LIMIT $2
	`

	err := r.db.SelectContext(ctx, &businesses, query, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale businesses: %w", err)
	}

	if businesses == nil {
		businesses = []*domain.Business{}
	}

	return businesses, nil
}

// UpsertScanResult writes a successful scan's fields onto the business.
// Idempotent: re-applying the same result is harmless.
func (r *BusinessRepository) UpsertScanResult(
	ctx context.Context,
	businessID string,
	result domain.ScanResult,
) error {
	query := `
		UPDATE businesses
		SET scan_score = $1, scan_report_url = $2, last_scanned_at = $3, updated_at = NOW()
		WHERE id = $4
	`

	res, err := r.db.ExecContext(ctx, query, result.Score, result.ReportURL, result.ScannedAt, businessID)
	if err != nil {
		return fmt.Errorf("failed to upsert scan result: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("business not found: %s", businessID)
	}

	return nil
}

// CountStale returns how many businesses are currently stale.
func (r *BusinessRepository) CountStale(ctx context.Context, cutoff time.Time) (int, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM businesses
		WHERE website IS NOT NULL AND website != ''
		  AND (last_scanned_at IS NULL OR last_scanned_at < $1)
	`

	err := r.db.GetContext(ctx, &count, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to count stale businesses: %w", err)
	}

	return count, nil
}
