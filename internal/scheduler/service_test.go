package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brianlapp/local-business-health-checker-sub001/internal/domain"
	"github.com/brianlapp/local-business-health-checker-sub001/internal/logger"
)

// fakeSettingsRepo is an in-memory SettingsRepositoryInterface.
type fakeSettingsRepo struct {
	settings *domain.AutomationSettings

	lastRun *time.Time
	nextRun *time.Time
	updates int
}

func (f *fakeSettingsRepo) Get(_ context.Context) (*domain.AutomationSettings, error) {
	copied := *f.settings
	return &copied, nil
}

func (f *fakeSettingsRepo) Update(_ context.Context, settings *domain.AutomationSettings) error {
	copied := *settings
	f.settings = &copied
	f.updates++
	return nil
}

func (f *fakeSettingsRepo) RecordRun(_ context.Context, lastRun, nextRun time.Time) error {
	f.lastRun = &lastRun
	f.nextRun = &nextRun
	f.settings.LastRun = &lastRun
	f.settings.NextScheduledRun = &nextRun
	return nil
}

func TestUpdateSettingsValidates(t *testing.T) {
	repo := &fakeSettingsRepo{settings: domain.DefaultSettings()}
	svc := NewService(logger.NewNoOp(), repo)

	bad := domain.DefaultSettings()
	bad.BatchSize = 100

	_, err := svc.UpdateSettings(context.Background(), bad)
	require.Error(t, err)
	assert.Zero(t, repo.updates)
}

func TestUpdateSettingsRecomputesNextRun(t *testing.T) {
	repo := &fakeSettingsRepo{settings: domain.DefaultSettings()}
	svc := NewService(logger.NewNoOp(), repo)

	fixed := time.Date(2024, 1, 1, 5, 0, 0, 0, time.UTC)
	svc.SetClock(func() time.Time { return fixed })

	updated := domain.DefaultSettings()
	updated.Enabled = true
	updated.Frequency = domain.FrequencyDaily

	result, err := svc.UpdateSettings(context.Background(), updated)
	require.NoError(t, err)
	require.NotNil(t, result.NextScheduledRun)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 0, 0, 0, time.UTC), *result.NextScheduledRun)
}

func TestUpdateSettingsDisablingClearsNextRun(t *testing.T) {
	next := time.Date(2024, 1, 2, 3, 0, 0, 0, time.UTC)
	current := domain.DefaultSettings()
	current.Enabled = true
	current.NextScheduledRun = &next

	repo := &fakeSettingsRepo{settings: current}
	svc := NewService(logger.NewNoOp(), repo)

	disabled := domain.DefaultSettings()
	disabled.Enabled = false

	result, err := svc.UpdateSettings(context.Background(), disabled)
	require.NoError(t, err)
	assert.Nil(t, result.NextScheduledRun)
}

func TestDueDisabledNeverFires(t *testing.T) {
	repo := &fakeSettingsRepo{settings: domain.DefaultSettings()}
	svc := NewService(logger.NewNoOp(), repo)

	due, settings, err := svc.Due(context.Background(), time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, due)
	assert.False(t, settings.Enabled)
}

func TestDueHealsMissingNextRun(t *testing.T) {
	enabled := domain.DefaultSettings()
	enabled.Enabled = true
	enabled.NextScheduledRun = nil

	repo := &fakeSettingsRepo{settings: enabled}
	svc := NewService(logger.NewNoOp(), repo)

	now := time.Date(2024, 1, 1, 5, 0, 0, 0, time.UTC)

	due, settings, err := svc.Due(context.Background(), now)
	require.NoError(t, err)
	// The first tick schedules, it does not fire.
	assert.False(t, due)
	require.NotNil(t, settings.NextScheduledRun)
	assert.True(t, settings.NextScheduledRun.After(now))
	assert.Equal(t, 1, repo.updates)
}

func TestDueFiresAtOrAfterNextRun(t *testing.T) {
	next := time.Date(2024, 1, 8, 3, 0, 0, 0, time.UTC)
	enabled := domain.DefaultSettings()
	enabled.Enabled = true
	enabled.NextScheduledRun = &next

	repo := &fakeSettingsRepo{settings: enabled}
	svc := NewService(logger.NewNoOp(), repo)

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"before next run", next.Add(-time.Minute), false},
		{"exactly at next run", next, true},
		{"after next run", next.Add(90 * time.Minute), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			due, _, err := svc.Due(context.Background(), tt.now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, due)
		})
	}
}

func TestRecordRunAdvancesSchedule(t *testing.T) {
	enabled := domain.DefaultSettings()
	enabled.Enabled = true
	enabled.Frequency = domain.FrequencyDaily

	repo := &fakeSettingsRepo{settings: enabled}
	svc := NewService(logger.NewNoOp(), repo)

	ranAt := time.Date(2024, 1, 1, 3, 2, 0, 0, time.UTC)
	require.NoError(t, svc.RecordRun(context.Background(), enabled, ranAt))

	require.NotNil(t, repo.lastRun)
	assert.Equal(t, ranAt, *repo.lastRun)
	require.NotNil(t, repo.nextRun)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 0, 0, 0, time.UTC), *repo.nextRun)
}

func TestRecordRunAbsorbsMissedTicks(t *testing.T) {
	// The service was down for three days; the recomputed next run is
	// relative to now, so there is no burst of catch-up batches.
	enabled := domain.DefaultSettings()
	enabled.Enabled = true
	enabled.Frequency = domain.FrequencyDaily

	repo := &fakeSettingsRepo{settings: enabled}
	svc := NewService(logger.NewNoOp(), repo)

	ranAt := time.Date(2024, 1, 4, 9, 30, 0, 0, time.UTC)
	require.NoError(t, svc.RecordRun(context.Background(), enabled, ranAt))

	require.NotNil(t, repo.nextRun)
	assert.Equal(t, time.Date(2024, 1, 5, 3, 0, 0, 0, time.UTC), *repo.nextRun)
}
