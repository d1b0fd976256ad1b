package domain

import "time"

// QuotaPeriodFormat keys quota counters by calendar month in UTC.
const QuotaPeriodFormat = "2006-01"

// QuotaCounter tracks metered usage for a provider within one period.
type QuotaCounter struct {
	Provider  string    `db:"provider" json:"provider"`
	Period    string    `db:"period" json:"period"`
	Used      int       `db:"used" json:"used"`
	Limit     int       `db:"limit_max" json:"limit"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Remaining returns the unspent quota, never negative.
func (c *QuotaCounter) Remaining() int {
	remaining := c.Limit - c.Used
	if remaining < 0 {
		return 0
	}
	return remaining
}

// QuotaPeriod returns the period key for a point in time.
func QuotaPeriod(now time.Time) string {
	return now.UTC().Format(QuotaPeriodFormat)
}
