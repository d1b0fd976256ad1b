package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/brianlapp/local-business-health-checker-sub001/internal/database"
	"github.com/brianlapp/local-business-health-checker-sub001/internal/domain"
	"github.com/brianlapp/local-business-health-checker-sub001/internal/logger"
	"github.com/brianlapp/local-business-health-checker-sub001/internal/metrics"
)

// Service wraps the queue repository with state machine enforcement.
// It is the only component that transitions item status.
type Service struct {
	logger  logger.Interface
	repo    database.ScanQueueRepositoryInterface
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewService creates a new queue service.
func NewService(log logger.Interface, repo database.ScanQueueRepositoryInterface) *Service {
	return &Service{
		logger: log,
		repo:   repo,
		now:    time.Now,
	}
}

// SetMetrics attaches pipeline metrics.
func (s *Service) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// SetClock overrides the clock. Used in tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Enqueue creates a pending queue item for a business.
func (s *Service) Enqueue(
	ctx context.Context,
	businessID string,
	scanType domain.ScanType,
	url *string,
	priority domain.Priority,
) (*domain.ScanQueueItem, error) {
	if businessID == "" {
		return nil, fmt.Errorf("%w: business id is required", ErrValidation)
	}
	if !scanType.Valid() {
		return nil, fmt.Errorf("%w: invalid scan type %q", ErrValidation, scanType)
	}
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !priority.Valid() {
		return nil, fmt.Errorf("%w: invalid priority %q", ErrValidation, priority)
	}

	item := &domain.ScanQueueItem{
		ID:         uuid.New().String(),
		BusinessID: businessID,
		ScanType:   scanType,
		URL:        url,
		Priority:   priority,
		Status:     string(StatePending),
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Debug("Enqueued scan",
		"item_id", item.ID,
		"business_id", businessID,
		"scan_type", scanType,
		"priority", priority)

	return item, nil
}

// ClaimBatch atomically claims up to limit pending items for processing.
func (s *Service) ClaimBatch(ctx context.Context, limit int) ([]*domain.ScanQueueItem, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: claim limit must be positive, got %d", ErrValidation, limit)
	}

	items, err := s.repo.ClaimBatch(ctx, limit, s.now())
	if err != nil {
		return nil, err
	}

	if len(items) > 0 {
		s.logger.Info("Claimed scan batch", "count", len(items))
	}

	return items, nil
}

// Complete transitions a processing item to completed. A no-op when the
// item is not in processing, so double completion is harmless.
func (s *Service) Complete(ctx context.Context, id string) error {
	rows, err := s.repo.MarkCompleted(ctx, id, s.now())
	if err != nil {
		return err
	}

	if rows == 0 {
		s.logger.Debug("Complete skipped, item not in processing", "item_id", id)
	}

	return nil
}

// Fail transitions a processing item to failed with the error recorded.
func (s *Service) Fail(ctx context.Context, id, message string, kind domain.ErrorKind) error {
	rows, err := s.repo.MarkFailed(ctx, id, message, kind, s.now())
	if err != nil {
		return err
	}

	if rows == 0 {
		s.logger.Debug("Fail skipped, item not in processing", "item_id", id)
	}

	return nil
}

// Retry resets a failed item to pending, clearing its error and
// timestamps. Only valid from failed.
func (s *Service) Retry(ctx context.Context, id string) error {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !CanRetry(ItemState(item.Status)) {
		return fmt.Errorf("%w: cannot retry item %s in state %s", ErrInvalidState, id, item.Status)
	}

	rows, err := s.repo.ResetForRetry(ctx, id)
	if err != nil {
		return err
	}

	// The conditional update closes the race with a concurrent claim.
	if rows == 0 {
		return fmt.Errorf("%w: item %s is not failed", ErrInvalidState, id)
	}

	if s.metrics != nil {
		s.metrics.ItemsRequeued.Inc()
	}

	s.logger.Info("Requeued failed scan", "item_id", id)
	return nil
}

// Cancel deletes a pending item. Only valid before the item is claimed.
func (s *Service) Cancel(ctx context.Context, id string) error {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !CanCancel(ItemState(item.Status)) {
		return fmt.Errorf("%w: cannot cancel item %s in state %s", ErrInvalidState, id, item.Status)
	}

	rows, err := s.repo.DeletePending(ctx, id)
	if err != nil {
		return err
	}

	if rows == 0 {
		return fmt.Errorf("%w: item %s is not pending", ErrInvalidState, id)
	}

	if s.metrics != nil {
		s.metrics.ItemsCancelled.Inc()
	}

	s.logger.Info("Cancelled pending scan", "item_id", id)
	return nil
}

// List returns queue items with optional filters.
func (s *Service) List(
	ctx context.Context,
	status, businessID string,
	limit int,
) ([]*domain.ScanQueueItem, error) {
	return s.repo.List(ctx, status, businessID, limit)
}

// Get returns a single queue item.
func (s *Service) Get(ctx context.Context, id string) (*domain.ScanQueueItem, error) {
	return s.repo.GetByID(ctx, id)
}

// Count returns the number of items, optionally filtered by status.
func (s *Service) Count(ctx context.Context, status string) (int, error) {
	return s.repo.Count(ctx, status)
}

// HasActive reports whether a business has a pending or processing item.
func (s *Service) HasActive(ctx context.Context, businessID string) (bool, error) {
	return s.repo.HasActive(ctx, businessID)
}

// RequeueStuck recovers items stuck in processing longer than staleAge.
// Crash tolerance: a worker that died mid-scan leaves its item claimable
// again after the window passes.
func (s *Service) RequeueStuck(ctx context.Context, staleAge time.Duration) (int64, error) {
	cutoff := s.now().Add(-staleAge)

	count, err := s.repo.RequeueStuck(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	if count > 0 {
		if s.metrics != nil {
			s.metrics.ItemsRequeued.Add(float64(count))
		}
		s.logger.Warn("Requeued stuck scans", "count", count, "stale_age", staleAge.String())
	}

	return count, nil
}
