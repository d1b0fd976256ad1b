package provider

import (
	"context"

	"golang.org/x/time/rate"
)

// PacedAdapter wraps an adapter with a token-bucket limiter so calls to
// one provider never burst past its polite request rate, independent of
// the monthly quota gate.
type PacedAdapter struct {
	inner   Adapter
	limiter *rate.Limiter
}

// NewPacedAdapter wraps an adapter with a per-second rate limit.
func NewPacedAdapter(inner Adapter, perSecond float64) *PacedAdapter {
	if perSecond <= 0 {
		perSecond = 1
	}
	return &PacedAdapter{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
	}
}

// Name returns the wrapped provider's name.
func (p *PacedAdapter) Name() string {
	return p.inner.Name()
}

// Attempt waits for the limiter, then delegates to the wrapped adapter.
func (p *PacedAdapter) Attempt(ctx context.Context, target Target) Outcome {
	if err := p.limiter.Wait(ctx); err != nil {
		return Retry("rate limiter wait cancelled: " + err.Error())
	}
	return p.inner.Attempt(ctx, target)
}
