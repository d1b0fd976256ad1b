package database

import (
	"context"
	"time"

	"github.com/brianlapp/local-business-health-checker-sub001/internal/domain"
)

// ScanQueueRepositoryInterface defines the contract for queue data access.
type ScanQueueRepositoryInterface interface {
	Create(ctx context.Context, item *domain.ScanQueueItem) error
	GetByID(ctx context.Context, id string) (*domain.ScanQueueItem, error)
	List(ctx context.Context, status, businessID string, limit int) ([]*domain.ScanQueueItem, error)
	Count(ctx context.Context, status string) (int, error)
	HasActive(ctx context.Context, businessID string) (bool, error)

	// Worker operations
	ClaimBatch(ctx context.Context, limit int, now time.Time) ([]*domain.ScanQueueItem, error)
	MarkCompleted(ctx context.Context, id string, now time.Time) (int64, error)
	MarkFailed(ctx context.Context, id, message string, kind domain.ErrorKind, now time.Time) (int64, error)
	ResetForRetry(ctx context.Context, id string) (int64, error)
	DeletePending(ctx context.Context, id string) (int64, error)

	// Maintenance
	RequeueStuck(ctx context.Context, cutoff time.Time) (int64, error)
}

// BusinessRepositoryInterface defines the contract for business data access.
type BusinessRepositoryInterface interface {
	GetByID(ctx context.Context, id string) (*domain.Business, error)
	ListStale(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Business, error)
	CountStale(ctx context.Context, cutoff time.Time) (int, error)
	UpsertScanResult(ctx context.Context, businessID string, result domain.ScanResult) error
}

// SettingsRepositoryInterface defines the contract for the settings singleton.
type SettingsRepositoryInterface interface {
	Get(ctx context.Context) (*domain.AutomationSettings, error)
	Update(ctx context.Context, settings *domain.AutomationSettings) error
	RecordRun(ctx context.Context, lastRun, nextRun time.Time) error
}

// QuotaRepositoryInterface defines the contract for quota counter access.
type QuotaRepositoryInterface interface {
	TryIncrement(ctx context.Context, provider, period string, cost, limit int) (bool, error)
	Get(ctx context.Context, provider, period string, limit int) (*domain.QuotaCounter, error)
	Reset(ctx context.Context, provider, period string) error
}
