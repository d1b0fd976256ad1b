package domain

import "time"

// Business is a lead tracked by the dashboard. Scan fields are nil until
// the first successful scan.
type Business struct {
	ID            string     `db:"id" json:"id"`
	Name          string     `db:"name" json:"name"`
	Website       *string    `db:"website" json:"website,omitempty"`
	Phone         *string    `db:"phone" json:"phone,omitempty"`
	ScanScore     *int       `db:"scan_score" json:"scan_score,omitempty"`
	ScanReportURL *string    `db:"scan_report_url" json:"scan_report_url,omitempty"`
	LastScannedAt *time.Time `db:"last_scanned_at" json:"last_scanned_at,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// ScanResult carries the fields a successful scan writes back onto the
// business.
type ScanResult struct {
	Score     int       `json:"score"`
	ReportURL string    `json:"report_url"`
	ScannedAt time.Time `json:"scanned_at"`
}
