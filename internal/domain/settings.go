package domain

import (
	"fmt"
	"time"
)

// Frequency is how often the automated batch runs.
type Frequency string

const (
	FrequencyDaily    Frequency = "daily"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
)

// Valid reports whether the frequency is one of the known values.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return true
	}
	return false
}

// Settings bounds.
const (
	MinBatchSize  = 1
	MaxBatchSize  = 50
	MinMaxRetries = 1
	MaxMaxRetries = 10
	MaxHourOfDay  = 23
)

// AutomationSettings is the singleton automation configuration row.
type AutomationSettings struct {
	Enabled          bool       `db:"enabled" json:"enabled"`
	Frequency        Frequency  `db:"frequency" json:"frequency"`
	HourOfDay        int        `db:"hour_of_day" json:"hour_of_day"`
	BatchSize        int        `db:"batch_size" json:"batch_size"`
	RetryFailed      bool       `db:"retry_failed" json:"retry_failed"`
	MaxRetries       int        `db:"max_retries" json:"max_retries"`
	NextScheduledRun *time.Time `db:"next_scheduled_run" json:"next_scheduled_run,omitempty"`
	LastRun          *time.Time `db:"last_run" json:"last_run,omitempty"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// Validate checks the settings against their allowed ranges.
func (s *AutomationSettings) Validate() error {
	if !s.Frequency.Valid() {
		return fmt.Errorf("invalid frequency: %q", s.Frequency)
	}
	if s.HourOfDay < 0 || s.HourOfDay > MaxHourOfDay {
		return fmt.Errorf("hour_of_day must be 0-%d, got %d", MaxHourOfDay, s.HourOfDay)
	}
	if s.BatchSize < MinBatchSize || s.BatchSize > MaxBatchSize {
		return fmt.Errorf("batch_size must be %d-%d, got %d", MinBatchSize, MaxBatchSize, s.BatchSize)
	}
	if s.MaxRetries < MinMaxRetries || s.MaxRetries > MaxMaxRetries {
		return fmt.Errorf("max_retries must be %d-%d, got %d", MinMaxRetries, MaxMaxRetries, s.MaxRetries)
	}
	return nil
}

// DefaultSettings returns the seed values for a fresh install: automation
// off, weekly batches of 10 at 03:00 UTC.
func DefaultSettings() *AutomationSettings {
	return &AutomationSettings{
		Enabled:     false,
		Frequency:   FrequencyWeekly,
		HourOfDay:   3,
		BatchSize:   10,
		RetryFailed: true,
		MaxRetries:  3,
	}
}
