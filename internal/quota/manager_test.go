package quota

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brianlapp/local-business-health-checker-sub001/internal/domain"
	"github.com/brianlapp/local-business-health-checker-sub001/internal/logger"
)

// fakeQuotaRepo counts admissions in memory with the same guarded
// semantics as the SQL upsert. The mutex stands in for the atomicity
// of the single conditional statement.
type fakeQuotaRepo struct {
	mu       sync.Mutex
	counters map[string]*domain.QuotaCounter
}

func newFakeQuotaRepo() *fakeQuotaRepo {
	return &fakeQuotaRepo{counters: make(map[string]*domain.QuotaCounter)}
}

func (f *fakeQuotaRepo) TryIncrement(
	_ context.Context,
	provider, period string,
	cost, limit int,
) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := provider + "|" + period
	counter, ok := f.counters[key]
	if !ok {
		counter = &domain.QuotaCounter{Provider: provider, Period: period, Limit: limit}
		f.counters[key] = counter
	}

	if counter.Used+cost > counter.Limit {
		return false, nil
	}
	counter.Used += cost
	return true, nil
}

func (f *fakeQuotaRepo) Get(
	_ context.Context,
	provider, period string,
	limit int,
) (*domain.QuotaCounter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if counter, ok := f.counters[provider+"|"+period]; ok {
		return counter, nil
	}
	return &domain.QuotaCounter{Provider: provider, Period: period, Limit: limit}, nil
}

func (f *fakeQuotaRepo) Reset(_ context.Context, provider, period string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if counter, ok := f.counters[provider+"|"+period]; ok {
		counter.Used = 0
	}
	return nil
}

func newTestManager(limits map[string]int) (*Manager, *fakeQuotaRepo) {
	repo := newFakeQuotaRepo()
	mgr := NewManager(logger.NewNoOp(), repo, limits)
	mgr.SetClock(func() time.Time {
		return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	})
	return mgr, repo
}

func TestTryAdmitUnknownProvider(t *testing.T) {
	mgr, _ := newTestManager(map[string]int{"pagespeed": 10})

	err := mgr.TryAdmit(context.Background(), "nosuch", 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestTryAdmitDeniesAtLimit(t *testing.T) {
	mgr, _ := newTestManager(map[string]int{"pagespeed": 3})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, mgr.TryAdmit(ctx, "pagespeed", 1))
	}

	err := mgr.TryAdmit(ctx, "pagespeed", 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQuotaExceeded)

	// Denial must not consume quota.
	counter, err := mgr.GetUsage(ctx, "pagespeed")
	require.NoError(t, err)
	assert.Equal(t, 3, counter.Used)
	assert.Equal(t, 0, counter.Remaining())
}

func TestTryAdmitZeroCostUsesDefault(t *testing.T) {
	mgr, repo := newTestManager(map[string]int{"pagespeed": 10})

	require.NoError(t, mgr.TryAdmit(context.Background(), "pagespeed", 0))
	assert.Equal(t, 1, repo.counters["pagespeed|2024-06"].Used)
}

func TestQuotaPeriodKeyIsUTCMonth(t *testing.T) {
	mgr, repo := newTestManager(map[string]int{"pagespeed": 10})

	require.NoError(t, mgr.TryAdmit(context.Background(), "pagespeed", 1))
	_, ok := repo.counters["pagespeed|2024-06"]
	assert.True(t, ok, "counter should be keyed by UTC month")
}

func TestPeriodRolloverStartsFresh(t *testing.T) {
	mgr, _ := newTestManager(map[string]int{"pagespeed": 1})
	ctx := context.Background()

	require.NoError(t, mgr.TryAdmit(ctx, "pagespeed", 1))
	assert.ErrorIs(t, mgr.TryAdmit(ctx, "pagespeed", 1), ErrQuotaExceeded)

	// Next month: a new period key, a fresh counter.
	mgr.SetClock(func() time.Time {
		return time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	})
	assert.NoError(t, mgr.TryAdmit(ctx, "pagespeed", 1))
}

func TestGetUsageUnknownProvider(t *testing.T) {
	mgr, _ := newTestManager(map[string]int{"pagespeed": 10})

	_, err := mgr.GetUsage(context.Background(), "nosuch")
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestResetPeriodZeroesCounter(t *testing.T) {
	mgr, repo := newTestManager(map[string]int{"pagespeed": 5})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, mgr.TryAdmit(ctx, "pagespeed", 1))
	}

	require.NoError(t, mgr.ResetPeriod(ctx, "pagespeed"))
	assert.Equal(t, 0, repo.counters["pagespeed|2024-06"].Used)
}

func TestCommitDoesNotConsumeQuota(t *testing.T) {
	mgr, repo := newTestManager(map[string]int{"pagespeed": 10})
	ctx := context.Background()

	require.NoError(t, mgr.TryAdmit(ctx, "pagespeed", 1))
	mgr.Commit(ctx, "pagespeed")

	assert.Equal(t, 1, repo.counters["pagespeed|2024-06"].Used)
}

func TestConcurrentAdmissionNeverExceedsLimit(t *testing.T) {
	const (
		limit    = 50
		workers  = 20
		attempts = 10
	)

	mgr, repo := newTestManager(map[string]int{"pagespeed": limit})
	ctx := context.Background()

	var admitted atomic.Int32
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for a := 0; a < attempts; a++ {
				err := mgr.TryAdmit(ctx, "pagespeed", 1)
				if err == nil {
					admitted.Add(1)
					continue
				}
				if !errors.Is(err, ErrQuotaExceeded) {
					t.Errorf("unexpected admit error: %v", err)
				}
			}
		}()
	}
	wg.Wait()

	// 200 racing admissions against a limit of 50: exactly the limit
	// succeeds and the counter never runs past it.
	assert.Equal(t, int32(limit), admitted.Load())
	assert.Equal(t, limit, repo.counters["pagespeed|2024-06"].Used)
}
