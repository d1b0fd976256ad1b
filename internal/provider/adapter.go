// Package provider defines the uniform contract for external scan and
// data providers. Orchestration code never inspects provider payloads;
// it only distinguishes retryable from fatal failures.
package provider

import (
	"context"
	"net/http"
)

// Target describes the entity an adapter operates on.
type Target struct {
	ID  string // stable business/entity id
	URL string // resolvable address, empty for discovery queries
}

// Status tags an attempt outcome.
type Status int

const (
	// StatusSuccess means the attempt produced usable data.
	StatusSuccess Status = iota
	// StatusRetryable means a transient failure: timeout, 5xx, 429.
	StatusRetryable
	// StatusFatal means a permanent failure: bad input, non-429 4xx.
	StatusFatal
)

// Outcome is the tagged result of one adapter attempt.
type Outcome struct {
	Status Status
	Data   map[string]any // normalized payload, set on success
	Reason string         // failure reason, set otherwise
}

// Adapter is implemented once per external provider.
type Adapter interface {
	// Name identifies the provider for quota accounting and logging.
	Name() string
	// Attempt performs one call against the provider. Implementations
	// must honor ctx cancellation and classify failures themselves.
	Attempt(ctx context.Context, target Target) Outcome
}

// Succeed builds a success outcome.
func Succeed(data map[string]any) Outcome {
	return Outcome{Status: StatusSuccess, Data: data}
}

// Retry builds a retryable outcome.
func Retry(reason string) Outcome {
	return Outcome{Status: StatusRetryable, Reason: reason}
}

// Fatal builds a fatal outcome.
func Fatal(reason string) Outcome {
	return Outcome{Status: StatusFatal, Reason: reason}
}

// ClassifyHTTPStatus maps an HTTP status code to an outcome status.
// 429 and 5xx are transient; other non-2xx codes are permanent.
func ClassifyHTTPStatus(code int) Status {
	switch {
	case code >= http.StatusOK && code < http.StatusMultipleChoices:
		return StatusSuccess
	case code == http.StatusTooManyRequests || code >= http.StatusInternalServerError:
		return StatusRetryable
	default:
		return StatusFatal
	}
}
