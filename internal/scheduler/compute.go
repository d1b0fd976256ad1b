// Package scheduler owns the automation settings and decides when the
// automated scan batch runs.
package scheduler

import (
	"time"

	"github.com/brianlapp/local-business-health-checker-sub001/internal/domain"
)

const daysPerBiweekly = 14

// ComputeNextRun returns the next automatic run time strictly after now.
// The candidate is today at the configured hour; when that moment has
// passed, one whole period is advanced: daily adds a day, weekly moves
// to the next Monday, biweekly adds fourteen days, monthly moves to the
// first day of the next month. All in UTC.
func ComputeNextRun(settings *domain.AutomationSettings, now time.Time) time.Time {
	now = now.UTC()
	candidate := atHour(now, settings.HourOfDay)

	switch settings.Frequency {
	case domain.FrequencyDaily:
		if !candidate.After(now) {
			candidate = candidate.AddDate(0, 0, 1)
		}

	case domain.FrequencyWeekly:
		// Always lands on a Monday.
		for candidate.Weekday() != time.Monday || !candidate.After(now) {
			candidate = candidate.AddDate(0, 0, 1)
		}

	case domain.FrequencyBiweekly:
		if !candidate.After(now) {
			candidate = candidate.AddDate(0, 0, daysPerBiweekly)
		}

	case domain.FrequencyMonthly:
		if !candidate.After(now) {
			firstOfNext := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
			candidate = atHour(firstOfNext, settings.HourOfDay)
		}

	default:
		// Unknown frequency behaves as daily rather than never firing.
		if !candidate.After(now) {
			candidate = candidate.AddDate(0, 0, 1)
		}
	}

	return candidate
}

// atHour returns t's date at the given hour, zeroed below the hour.
func atHour(t time.Time, hour int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, 0, 0, 0, time.UTC)
}
