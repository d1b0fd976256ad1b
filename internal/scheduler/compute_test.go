package scheduler

import (
	"testing"
	"time"

	"github.com/brianlapp/local-business-health-checker-sub001/internal/domain"
)

func settingsWith(freq domain.Frequency, hour int) *domain.AutomationSettings {
	s := domain.DefaultSettings()
	s.Frequency = freq
	s.HourOfDay = hour
	return s
}

func TestComputeNextRun(t *testing.T) {
	tests := []struct {
		name string
		freq domain.Frequency
		hour int
		now  time.Time
		want time.Time
	}{
		{
			name: "daily before hour runs same day",
			freq: domain.FrequencyDaily,
			hour: 3,
			now:  time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC),
			want: time.Date(2024, 1, 1, 3, 0, 0, 0, time.UTC),
		},
		{
			name: "daily after hour rolls to next day",
			freq: domain.FrequencyDaily,
			hour: 3,
			now:  time.Date(2024, 1, 1, 5, 0, 0, 0, time.UTC),
			want: time.Date(2024, 1, 2, 3, 0, 0, 0, time.UTC),
		},
		{
			name: "daily exactly at hour rolls forward",
			freq: domain.FrequencyDaily,
			hour: 3,
			now:  time.Date(2024, 1, 1, 3, 0, 0, 0, time.UTC),
			want: time.Date(2024, 1, 2, 3, 0, 0, 0, time.UTC),
		},
		{
			name: "weekly lands on next monday",
			freq: domain.FrequencyWeekly,
			hour: 3,
			// 2024-01-03 is a Wednesday.
			now:  time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC),
			want: time.Date(2024, 1, 8, 3, 0, 0, 0, time.UTC),
		},
		{
			name: "weekly on monday before hour runs same day",
			freq: domain.FrequencyWeekly,
			hour: 3,
			// 2024-01-01 is a Monday.
			now:  time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC),
			want: time.Date(2024, 1, 1, 3, 0, 0, 0, time.UTC),
		},
		{
			name: "weekly on monday after hour rolls a full week",
			freq: domain.FrequencyWeekly,
			hour: 3,
			now:  time.Date(2024, 1, 1, 5, 0, 0, 0, time.UTC),
			want: time.Date(2024, 1, 8, 3, 0, 0, 0, time.UTC),
		},
		{
			name: "biweekly after hour adds fourteen days",
			freq: domain.FrequencyBiweekly,
			hour: 3,
			now:  time.Date(2024, 1, 1, 5, 0, 0, 0, time.UTC),
			want: time.Date(2024, 1, 15, 3, 0, 0, 0, time.UTC),
		},
		{
			name: "monthly after hour moves to first of next month",
			freq: domain.FrequencyMonthly,
			hour: 3,
			now:  time.Date(2024, 1, 15, 5, 0, 0, 0, time.UTC),
			want: time.Date(2024, 2, 1, 3, 0, 0, 0, time.UTC),
		},
		{
			name: "monthly december rolls into january",
			freq: domain.FrequencyMonthly,
			hour: 3,
			now:  time.Date(2024, 12, 31, 5, 0, 0, 0, time.UTC),
			want: time.Date(2025, 1, 1, 3, 0, 0, 0, time.UTC),
		},
		{
			name: "non-utc input is normalized",
			freq: domain.FrequencyDaily,
			hour: 3,
			now:  time.Date(2024, 1, 1, 5, 0, 0, 0, time.FixedZone("EST", -5*3600)),
			want: time.Date(2024, 1, 2, 3, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeNextRun(settingsWith(tt.freq, tt.hour), tt.now)
			if !got.Equal(tt.want) {
				t.Errorf("ComputeNextRun() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComputeNextRunAlwaysInFuture(t *testing.T) {
	frequencies := []domain.Frequency{
		domain.FrequencyDaily,
		domain.FrequencyWeekly,
		domain.FrequencyBiweekly,
		domain.FrequencyMonthly,
	}

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, freq := range frequencies {
		for hour := 0; hour <= 23; hour++ {
			for day := 0; day < 40; day++ {
				now := base.AddDate(0, 0, day).Add(time.Duration(hour) * time.Hour)
				got := ComputeNextRun(settingsWith(freq, hour), now)
				if !got.After(now) {
					t.Fatalf("ComputeNextRun(%s, hour=%d, now=%v) = %v, not after now",
						freq, hour, now, got)
				}
			}
		}
	}
}

func TestComputeNextRunWeeklyAlwaysMonday(t *testing.T) {
	settings := settingsWith(domain.FrequencyWeekly, 7)

	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for day := 0; day < 21; day++ {
		got := ComputeNextRun(settings, now.AddDate(0, 0, day))
		if got.Weekday() != time.Monday {
			t.Errorf("next run %v falls on %s, want Monday", got, got.Weekday())
		}
		if got.Hour() != 7 {
			t.Errorf("next run %v at hour %d, want 7", got, got.Hour())
		}
	}
}
