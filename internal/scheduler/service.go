package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/brianlapp/local-business-health-checker-sub001/internal/database"
	"github.com/brianlapp/local-business-health-checker-sub001/internal/domain"
	"github.com/brianlapp/local-business-health-checker-sub001/internal/logger"
)

// Service owns the automation settings singleton and the due-run
// decision. All settings writes go through it so next_scheduled_run
// stays consistent with the schedule fields.
type Service struct {
	logger logger.Interface
	repo   database.SettingsRepositoryInterface
	now    func() time.Time
}

// NewService creates a new scheduler service.
func NewService(log logger.Interface, repo database.SettingsRepositoryInterface) *Service {
	return &Service{
		logger: log,
		repo:   repo,
		now:    time.Now,
	}
}

// SetClock overrides the clock. Used in tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// GetSettings returns the current automation settings.
func (s *Service) GetSettings(ctx context.Context) (*domain.AutomationSettings, error) {
	return s.repo.Get(ctx)
}

// UpdateSettings validates and persists new settings, recomputing the
// next scheduled run from the updated schedule fields. Disabling clears
// the next run.
func (s *Service) UpdateSettings(
	ctx context.Context,
	settings *domain.AutomationSettings,
) (*domain.AutomationSettings, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid automation settings: %w", err)
	}

	current, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	settings.LastRun = current.LastRun

	if settings.Enabled {
		next := ComputeNextRun(settings, s.now())
		settings.NextScheduledRun = &next
	} else {
		settings.NextScheduledRun = nil
	}

	if err := s.repo.Update(ctx, settings); err != nil {
		return nil, err
	}

	s.logger.Info("Updated automation settings",
		"enabled", settings.Enabled,
		"frequency", settings.Frequency,
		"hour_of_day", settings.HourOfDay,
		"batch_size", settings.BatchSize)

	return settings, nil
}

// Due reports whether the automated batch should run now, returning the
// settings either way. A missing next run on enabled settings is healed
// by computing and persisting one instead of firing immediately.
func (s *Service) Due(ctx context.Context, now time.Time) (bool, *domain.AutomationSettings, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return false, nil, err
	}

	if !settings.Enabled {
		return false, settings, nil
	}

	if settings.NextScheduledRun == nil {
		next := ComputeNextRun(settings, now)
		settings.NextScheduledRun = &next
		if err := s.repo.Update(ctx, settings); err != nil {
			return false, nil, err
		}
		s.logger.Info("Initialized next scheduled run", "next_run", next)
		return false, settings, nil
	}

	return !now.Before(*settings.NextScheduledRun), settings, nil
}

// RecordRun stamps the run that just happened and advances the schedule.
// Recomputing from now rather than from the previous next run absorbs
// missed ticks without firing a burst of catch-up batches.
func (s *Service) RecordRun(ctx context.Context, settings *domain.AutomationSettings, ranAt time.Time) error {
	next := ComputeNextRun(settings, ranAt)

	if err := s.repo.RecordRun(ctx, ranAt, next); err != nil {
		return err
	}

	s.logger.Info("Recorded automated run", "ran_at", ranAt, "next_run", next)
	return nil
}
