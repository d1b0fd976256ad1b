package provider

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Retry policy defaults.
const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 500 * time.Millisecond
	DefaultMaxDelay    = 10 * time.Second
)

// RetryPolicy is a bounded exponential backoff policy shared by the
// discovery orchestrator and the batch processor, parameterized per
// call site.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryPolicy returns the standard three-attempt policy.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		MaxDelay:    DefaultMaxDelay,
	}
}

// newBackoff builds the underlying backoff for one run. Randomization
// jitters delays to avoid thundering herds against a shared provider.
func (p RetryPolicy) newBackoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.BaseDelay
	b.MaxInterval = p.MaxDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0.5
	b.MaxElapsedTime = 0 // bounded by attempt count, not wall clock
	return b
}

// Run invokes op until it returns a non-retryable outcome or attempts
// are exhausted. The final outcome is returned either way; ctx
// cancellation cuts the wait short and surfaces as retryable.
func (p RetryPolicy) Run(ctx context.Context, op func(ctx context.Context) Outcome) Outcome {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}

	b := p.newBackoff()
	var outcome Outcome

	for attempt := 0; attempt < attempts; attempt++ {
		outcome = op(ctx)
		if outcome.Status != StatusRetryable {
			return outcome
		}

		if attempt == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return Retry("cancelled: " + ctx.Err().Error())
		case <-time.After(b.NextBackOff()):
		}
	}

	return outcome
}
