// Package quota gates metered provider calls against per-period limits.
package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brianlapp/local-business-health-checker-sub001/internal/database"
	"github.com/brianlapp/local-business-health-checker-sub001/internal/domain"
	"github.com/brianlapp/local-business-health-checker-sub001/internal/logger"
	"github.com/brianlapp/local-business-health-checker-sub001/internal/metrics"
)

// DefaultCost is the admission cost of a single provider call.
const DefaultCost = 1

var (
	// ErrQuotaExceeded is returned when admission would push usage past
	// the provider's limit for the current period.
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrUnknownProvider is returned for providers with no configured limit.
	ErrUnknownProvider = errors.New("unknown provider")
)

// Manager is the sole gate before a metered provider call. Counters are
// mutated only through TryAdmit and Reset; the repository's conditional
// increment keeps admission atomic under concurrent workers.
type Manager struct {
	logger  logger.Interface
	repo    database.QuotaRepositoryInterface
	limits  map[string]int // provider -> per-period limit
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewManager creates a new quota manager with per-provider limits.
func NewManager(log logger.Interface, repo database.QuotaRepositoryInterface, limits map[string]int) *Manager {
	return &Manager{
		logger: log,
		repo:   repo,
		limits: limits,
		now:    time.Now,
	}
}

// SetMetrics attaches pipeline metrics.
func (m *Manager) SetMetrics(metrics *metrics.Metrics) {
	m.metrics = metrics
}

// SetClock overrides the clock. Used in tests.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

// TryAdmit admits cost units for a provider in the current period.
// Returns ErrQuotaExceeded without mutating state when the call would
// exceed the limit. Period rollover is automatic: a new period starts a
// fresh zero counter.
func (m *Manager) TryAdmit(ctx context.Context, provider string, cost int) error {
	limit, ok := m.limits[provider]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}
	if cost <= 0 {
		cost = DefaultCost
	}

	period := domain.QuotaPeriod(m.now())

	admitted, err := m.repo.TryIncrement(ctx, provider, period, cost, limit)
	if err != nil {
		return err
	}

	if !admitted {
		if m.metrics != nil {
			m.metrics.QuotaDeniedTotal.WithLabelValues(provider).Inc()
		}
		m.logger.Warn("Quota admission denied",
			"provider", provider,
			"period", period,
			"limit", limit)
		return fmt.Errorf("%w: provider %s in period %s", ErrQuotaExceeded, provider, period)
	}

	return nil
}

// Commit acknowledges that an admitted call completed. Usage is counted
// at admission, so this records nothing today; it is the hook for
// providers that bill only on success.
func (m *Manager) Commit(_ context.Context, provider string) {
	m.logger.Debug("Quota commit", "provider", provider)
}

// GetUsage returns the counter for a provider in the current period.
func (m *Manager) GetUsage(ctx context.Context, provider string) (*domain.QuotaCounter, error) {
	limit, ok := m.limits[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}

	return m.repo.Get(ctx, provider, domain.QuotaPeriod(m.now()), limit)
}

// Providers returns the configured provider names.
func (m *Manager) Providers() []string {
	names := make([]string, 0, len(m.limits))
	for name := range m.limits {
		names = append(names, name)
	}
	return names
}

// ResetPeriod zeroes a provider's counter for the current period.
// Administrative escape hatch only.
func (m *Manager) ResetPeriod(ctx context.Context, provider string) error {
	if _, ok := m.limits[provider]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}

	period := domain.QuotaPeriod(m.now())
	m.logger.Warn("Resetting quota counter", "provider", provider, "period", period)

	return m.repo.Reset(ctx, provider, period)
}
