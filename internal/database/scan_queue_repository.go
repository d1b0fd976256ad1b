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

// scanQueueColumns is the column list shared by queue queries.
const scanQueueColumns = `id, business_id, scan_type, url, priority, status,
	       created_at, started_at, completed_at, error_message, error_kind, retry_count`

// ScanQueueRepository handles database operations for scan queue items.
type ScanQueueRepository struct {
	db *sqlx.DB
}

// NewScanQueueRepository creates a new scan queue repository.
func NewScanQueueRepository(db *sqlx.DB) *ScanQueueRepository {
	return &ScanQueueRepository{db: db}
}

// Create inserts a new queue item.
func (r *ScanQueueRepository) Create(ctx context.Context, item *domain.ScanQueueItem) error {
	query := `
		INSERT INTO scan_queue (id, business_id, scan_type, url, priority, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		item.ID,
		item.BusinessID,
		item.ScanType,
		item.URL,
		item.Priority,
		item.Status,
	).Scan(&item.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create scan queue item: %w", err)
	}

	return nil
}

// GetByID retrieves a queue item by its ID.
func (r *ScanQueueRepository) GetByID(ctx context.Context, id string) (*domain.ScanQueueItem, error) {
	var item domain.ScanQueueItem
	query := `SELECT ` + scanQueueColumns + ` FROM scan_queue WHERE id = $1`

	err := r.db.GetContext(ctx, &item, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("scan queue item not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get scan queue item: %w", err)
	}

	return &item, nil
}

// List retrieves queue items with optional status and business filters.
func (r *ScanQueueRepository) List(
	ctx context.Context,
	status, businessID string,
	limit int,
) ([]*domain.ScanQueueItem, error) {
	var items []*domain.ScanQueueItem

	query := `SELECT ` + scanQueueColumns + ` FROM scan_queue WHERE 1=1`
	args := []any{}

	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if businessID != "" {
		args = append(args, businessID)
		query += fmt.Sprintf(" AND business_id = $%d", len(args))
	}

	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	err := r.db.SelectContext(ctx, &items, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list scan queue items: %w", err)
	}

	if items == nil {
		items = []*domain.ScanQueueItem{}
	}

	return items, nil
}

// HasActive reports whether the business already has a pending or
// processing item, so callers can avoid enqueueing duplicates.
func (r *ScanQueueRepository) HasActive(ctx context.Context, businessID string) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM scan_queue
			WHERE business_id = $1 AND status IN ('pending', 'processing')
		)
	`

	err := r.db.GetContext(ctx, &exists, query, businessID)
	if err != nil {
		return false, fmt.Errorf("failed to check for active scan queue item: %w", err)
	}

	return exists, nil
}

// ClaimBatch atomically transitions up to limit pending items to
// processing and returns them. Ordering is priority (high first) then
// FIFO within priority. SKIP LOCKED guarantees two concurrent callers
// never claim the same item.
func (r *ScanQueueRepository) ClaimBatch(
	ctx context.Context,
	limit int,
	now time.Time,
) ([]*domain.ScanQueueItem, error) {
	var items []*domain.ScanQueueItem
	query := `
		UPDATE scan_queue
		SET status = 'processing', started_at = $1
		WHERE id IN (
			SELECT id FROM scan_queue
			WHERE status = 'pending'
			ORDER BY CASE priority
				WHEN 'high' THEN 0
				WHEN 'medium' THEN 1
				ELSE 2
			END, created_at
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + scanQueueColumns

	err := r.db.SelectContext(ctx, &items, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to claim scan batch: %w", err)
	}

	if items == nil {
		items = []*domain.ScanQueueItem{}
	}

	return items, nil
}

// MarkCompleted transitions a processing item to completed. Returns the
// number of rows updated; 0 means the item was not in processing.
func (r *ScanQueueRepository) MarkCompleted(ctx context.Context, id string, now time.Time) (int64, error) {
	query := `
		UPDATE scan_queue
		SET status = 'completed', completed_at = $1
		WHERE id = $2 AND status = 'processing'
	`

	result, err := r.db.ExecContext(ctx, query, now, id)
	if err != nil {
		return 0, fmt.Errorf("failed to complete scan queue item: %w", err)
	}

	return result.RowsAffected()
}

// MarkFailed transitions a processing item to failed, recording the error.
func (r *ScanQueueRepository) MarkFailed(
	ctx context.Context,
	id, message string,
	kind domain.ErrorKind,
	now time.Time,
) (int64, error) {
	query := `
		UPDATE scan_queue
		SET status = 'failed', completed_at = $1, error_message = $2, error_kind = $3
		WHERE id = $4 AND status = 'processing'
	`

	result, err := r.db.ExecContext(ctx, query, now, message, kind, id)
	if err != nil {
		return 0, fmt.Errorf("failed to fail scan queue item: %w", err)
	}

	return result.RowsAffected()
}

// ResetForRetry requeues a failed item: status back to pending, error and
// timestamps cleared, retry count incremented. Returns rows updated; 0
// means the item was not in failed.
func (r *ScanQueueRepository) ResetForRetry(ctx context.Context, id string) (int64, error) {
	query := `
		UPDATE scan_queue
		SET status = 'pending', started_at = NULL, completed_at = NULL,
		    error_message = NULL, error_kind = NULL, retry_count = retry_count + 1
		WHERE id = $1 AND status = 'failed'
	`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("failed to reset scan queue item: %w", err)
	}

	return result.RowsAffected()
}

// DeletePending removes a pending item. Returns rows deleted; 0 means
// the item was already claimed or does not exist.
func (r *ScanQueueRepository) DeletePending(ctx context.Context, id string) (int64, error) {
	query := `DELETE FROM scan_queue WHERE id = $1 AND status = 'pending'`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete scan queue item: %w", err)
	}

	return result.RowsAffected()
}

// RequeueStuck moves items stuck in processing since before cutoff back
// to pending. Used by the reaper sweep to recover from crashes.
func (r *ScanQueueRepository) RequeueStuck(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		UPDATE scan_queue
		SET status = 'pending', started_at = NULL
		WHERE status = 'processing' AND started_at < $1
	`

	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to requeue stuck items: %w", err)
	}

	return result.RowsAffected()
}

// Count returns the number of queue items, optionally filtered by status.
func (r *ScanQueueRepository) Count(ctx context.Context, status string) (int, error) {
	var count int
	var query string
	var args []any

	if status != "" {
		query = `SELECT COUNT(*) FROM scan_queue WHERE status = $1`
		args = []any{status}
	} else {
		query = `SELECT COUNT(*) FROM scan_queue`
		args = []any{}
	}

	err := r.db.GetContext(ctx, &count, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to count scan queue items: %w", err)
	}

	return count, nil
}
