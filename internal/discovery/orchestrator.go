package discovery

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/brianlapp/local-business-health-checker-sub001/internal/domain"
	"github.com/brianlapp/local-business-health-checker-sub001/internal/logger"
	"github.com/brianlapp/local-business-health-checker-sub001/internal/metrics"
	"github.com/brianlapp/local-business-health-checker-sub001/internal/provider"
)

// Orchestrator fans a location query out across discovery sources.
// Source order is priority order: on a dedup collision the record from
// the earlier source wins.
type Orchestrator struct {
	logger  logger.Interface
	sources []Source
	policy  provider.RetryPolicy
	metrics *metrics.Metrics
}

// NewOrchestrator creates a discovery orchestrator. Sources are tried
// in the order given.
func NewOrchestrator(log logger.Interface, sources []Source, policy provider.RetryPolicy) *Orchestrator {
	return &Orchestrator{
		logger:  log,
		sources: sources,
		policy:  policy,
	}
}

// SetMetrics attaches pipeline metrics.
func (o *Orchestrator) SetMetrics(m *metrics.Metrics) {
	o.metrics = m
}

// recordRun bumps the discovery run and result counters.
func (o *Orchestrator) recordRun(outcome *domain.DiscoveryOutcome) {
	if o.metrics == nil {
		return
	}

	label := "merged"
	if outcome.Synthetic {
		label = "synthetic"
	}
	o.metrics.DiscoveryRunsTotal.WithLabelValues(label).Inc()
	o.metrics.DiscoveryResultsFound.Add(float64(len(outcome.Results)))
}

// sourceResult captures one source's contribution to a discovery call.
type sourceResult struct {
	records []domain.DiscoveryResult
	err     error
}

// Discover queries every source concurrently, merges and deduplicates
// the records, and falls back to synthetic samples when all sources
// fail. Total failure is recovered locally, never returned as an error.
func (o *Orchestrator) Discover(ctx context.Context, query string) (*domain.DiscoveryOutcome, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("discovery query is required")
	}

	if len(o.sources) == 0 {
		o.logger.Warn("No discovery sources configured, returning samples", "query", query)
		return o.fallback(query, []string{"no discovery sources configured"}), nil
	}

	// Sources hit different rate-limit buckets, so they run
	// concurrently; retries within one source stay sequential.
	results := make([]sourceResult, len(o.sources))
	var wg sync.WaitGroup
	for i, src := range o.sources {
		wg.Add(1)
		go func(idx int, s Source) {
			defer wg.Done()
			results[idx] = o.runSource(ctx, s, query)
		}(i, src)
	}
	wg.Wait()

	var errs []string
	merged := newMerger()
	for i, res := range results {
		if res.err != nil {
			errs = append(errs, res.err.Error())
			continue
		}
		merged.add(res.records)
		o.logger.Debug("Discovery source succeeded",
			"source", o.sources[i].Name(),
			"records", len(res.records))
	}

	if merged.empty() && len(errs) == len(o.sources) {
		o.logger.Warn("All discovery sources failed, returning samples",
			"query", query,
			"sources", len(o.sources))
		return o.fallback(query, errs), nil
	}

	outcome := &domain.DiscoveryOutcome{
		Results:      merged.list(),
		Synthetic:    false,
		SourceErrors: errs,
	}
	o.recordRun(outcome)

	return outcome, nil
}

// runSource drives one source through its endpoint variants and retry
// budget. All variants are exhausted within each attempt; a fatal
// outcome on every variant stops further attempts early.
func (o *Orchestrator) runSource(ctx context.Context, src Source, query string) sourceResult {
	endpoints := src.Endpoints()
	if len(endpoints) == 0 {
		return sourceResult{err: fmt.Errorf("%s: no endpoints configured", src.Name())}
	}

	var records []domain.DiscoveryResult

	outcome := o.policy.Run(ctx, func(ctx context.Context) provider.Outcome {
		var last provider.Outcome
		for _, endpoint := range endpoints {
			recs, out := src.Attempt(ctx, query, endpoint)
			if out.Status == provider.StatusSuccess {
				records = recs
				return out
			}
			last = out
			o.logger.Debug("Discovery variant failed",
				"source", src.Name(),
				"endpoint", endpoint,
				"reason", out.Reason)
		}
		return last
	})

	if outcome.Status != provider.StatusSuccess {
		return sourceResult{err: fmt.Errorf("%s: %s", src.Name(), outcome.Reason)}
	}

	return sourceResult{records: records}
}

// fallback builds the clearly flagged synthetic result set.
func (o *Orchestrator) fallback(query string, errs []string) *domain.DiscoveryOutcome {
	outcome := &domain.DiscoveryOutcome{
		Results:      SampleResults(query),
		Synthetic:    true,
		SourceErrors: errs,
	}
	o.recordRun(outcome)

	return outcome
}

// merger deduplicates records by normalized (name, website) key,
// keeping the first-seen record so earlier sources win collisions.
type merger struct {
	seen  map[string]struct{}
	order []domain.DiscoveryResult
}

func newMerger() *merger {
	return &merger{seen: make(map[string]struct{})}
}

func (m *merger) add(records []domain.DiscoveryResult) {
	for _, rec := range records {
		key := dedupKey(rec.Name, rec.Website)
		if _, dup := m.seen[key]; dup {
			continue
		}
		m.seen[key] = struct{}{}
		m.order = append(m.order, rec)
	}
}

func (m *merger) empty() bool {
	return len(m.order) == 0
}

func (m *merger) list() []domain.DiscoveryResult {
	if m.order == nil {
		return []domain.DiscoveryResult{}
	}
	return m.order
}

// dedupKey normalizes a (name, website) pair for case-insensitive
// comparison. Scheme and www prefixes on websites are ignored.
func dedupKey(name, website string) string {
	return normalizeName(name) + "|" + normalizeWebsite(website)
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func normalizeWebsite(website string) string {
	w := strings.ToLower(strings.TrimSpace(website))
	w = strings.TrimPrefix(w, "https://")
	w = strings.TrimPrefix(w, "http://")
	w = strings.TrimPrefix(w, "www.")
	return strings.TrimSuffix(w, "/")
}
