// Package domain holds the core types shared across the service.
package domain

import "time"

// ScanType identifies what kind of scan a queue item requests.
type ScanType string

const (
	ScanTypePerformance ScanType = "performance"
	ScanTypeTechnology  ScanType = "technology"
	ScanTypeDiscovery   ScanType = "discovery"
)

// Valid reports whether the scan type is one of the known values.
func (t ScanType) Valid() bool {
	switch t {
	case ScanTypePerformance, ScanTypeTechnology, ScanTypeDiscovery:
		return true
	}
	return false
}

// Priority orders pending queue items. High drains before medium,
// medium before low.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Valid reports whether the priority is one of the known values.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// ErrorKind classifies why a queue item failed.
type ErrorKind string

const (
	ErrorKindRetryable     ErrorKind = "retryable"
	ErrorKindFatal         ErrorKind = "fatal"
	ErrorKindQuotaExceeded ErrorKind = "quota_exceeded"
)

// ScanQueueItem is a durable unit of scan work.
type ScanQueueItem struct {
	ID           string     `db:"id" json:"id"`
	BusinessID   string     `db:"business_id" json:"business_id"`
	ScanType     ScanType   `db:"scan_type" json:"scan_type"`
	URL          *string    `db:"url" json:"url,omitempty"`
	Priority     Priority   `db:"priority" json:"priority"`
	Status       string     `db:"status" json:"status"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	StartedAt    *time.Time `db:"started_at" json:"started_at,omitempty"`
	CompletedAt  *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	ErrorMessage *string    `db:"error_message" json:"error_message,omitempty"`
	ErrorKind    *ErrorKind `db:"error_kind" json:"error_kind,omitempty"`
	RetryCount   int        `db:"retry_count" json:"retry_count"`
}

// BatchSummary reports the outcome of one batch run.
type BatchSummary struct {
	Attempted int           `json:"attempted"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}
