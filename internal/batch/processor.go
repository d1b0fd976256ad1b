// Package batch runs scan batches: it selects stale businesses, drives
// them through the queue, and calls the scan provider under quota.
package batch

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/brianlapp/local-business-health-checker-sub001/internal/database"
	"github.com/brianlapp/local-business-health-checker-sub001/internal/domain"
	"github.com/brianlapp/local-business-health-checker-sub001/internal/logger"
	"github.com/brianlapp/local-business-health-checker-sub001/internal/metrics"
	"github.com/brianlapp/local-business-health-checker-sub001/internal/provider"
	"github.com/brianlapp/local-business-health-checker-sub001/internal/queue"
	"github.com/brianlapp/local-business-health-checker-sub001/internal/quota"
)

const (
	// DefaultCallTimeout bounds one provider call.
	DefaultCallTimeout = 30 * time.Second

	hoursPerDay = 24
)

// Options tunes a batch run independently of the automation settings.
type Options struct {
	StalenessDays int           // last scan older than this is stale
	ItemDelayMin  time.Duration // lower bound of the inter-item pause
	ItemDelayMax  time.Duration // upper bound of the inter-item pause
	CallTimeout   time.Duration // per provider call
}

// Processor runs one batch at a time. Items are processed sequentially
// with a jittered pause between them so the provider sees paced traffic.
type Processor struct {
	logger     logger.Interface
	businesses database.BusinessRepositoryInterface
	queue      *queue.Service
	quota      *quota.Manager
	adapter    provider.Adapter
	opts       Options
	metrics    *metrics.Metrics
	now        func() time.Time
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewProcessor creates a batch processor.
func NewProcessor(
	log logger.Interface,
	businesses database.BusinessRepositoryInterface,
	queueSvc *queue.Service,
	quotaMgr *quota.Manager,
	adapter provider.Adapter,
	opts Options,
) *Processor {
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = DefaultCallTimeout
	}

	return &Processor{
		logger:     log,
		businesses: businesses,
		queue:      queueSvc,
		quota:      quotaMgr,
		adapter:    adapter,
		opts:       opts,
		now:        time.Now,
		sleep:      contextSleep,
	}
}

// SetMetrics attaches pipeline metrics.
func (p *Processor) SetMetrics(m *metrics.Metrics) {
	p.metrics = m
}

// SetClock overrides the clock. Used in tests.
func (p *Processor) SetClock(now func() time.Time) {
	p.now = now
}

// SetSleep overrides the inter-item pause. Used in tests.
func (p *Processor) SetSleep(sleep func(ctx context.Context, d time.Duration) error) {
	p.sleep = sleep
}

// Run executes one batch under the given settings: stale businesses are
// enqueued, claimed, and scanned one by one. Quota denial fails the item
// without a provider call. Retryable failures go back to pending while
// the item's retry budget lasts.
func (p *Processor) Run(
	ctx context.Context,
	settings *domain.AutomationSettings,
) (*domain.BatchSummary, error) {
	startedAt := p.now()
	summary := &domain.BatchSummary{StartedAt: startedAt}

	cutoff := startedAt.Add(-time.Duration(p.opts.StalenessDays) * hoursPerDay * time.Hour)

	stale, err := p.businesses.ListStale(ctx, cutoff, settings.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to select stale businesses: %w", err)
	}

	if len(stale) == 0 {
		p.logger.Info("No stale businesses, skipping batch")
		summary.Duration = p.now().Sub(startedAt)
		return summary, nil
	}

	// A business with an item already pending or processing keeps that
	// item; enqueueing again would duplicate work and reset its retry
	// count.
	enqueued, reused := 0, 0
	for _, business := range stale {
		active, err := p.queue.HasActive(ctx, business.ID)
		if err != nil {
			p.logger.Error("Failed to check for active item",
				"business_id", business.ID,
				"error", err)
			continue
		}
		if active {
			reused++
			continue
		}

		if _, err := p.queue.Enqueue(
			ctx,
			business.ID,
			domain.ScanTypePerformance,
			business.Website,
			domain.PriorityMedium,
		); err != nil {
			p.logger.Error("Failed to enqueue business",
				"business_id", business.ID,
				"error", err)
			continue
		}
		enqueued++
	}

	if enqueued+reused == 0 {
		summary.Duration = p.now().Sub(startedAt)
		return summary, fmt.Errorf("failed to enqueue any of %d stale businesses", len(stale))
	}

	items, err := p.queue.ClaimBatch(ctx, enqueued+reused)
	if err != nil {
		return nil, err
	}

	if p.metrics != nil {
		p.metrics.BatchSizeCurrent.Set(float64(len(items)))
		defer p.metrics.BatchSizeCurrent.Set(0)
	}

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("Batch interrupted", "processed", i, "total", len(items))
			break
		}

		summary.Attempted++
		if p.processItem(ctx, item, settings) {
			summary.Succeeded++
		} else {
			summary.Failed++
		}

		if i < len(items)-1 {
			if err := p.sleep(ctx, p.itemDelay()); err != nil {
				p.logger.Warn("Batch interrupted during pause", "processed", i+1, "total", len(items))
				break
			}
		}
	}

	summary.Duration = p.now().Sub(startedAt)

	remaining, err := p.businesses.CountStale(ctx, cutoff)
	if err != nil {
		p.logger.Debug("Failed to count remaining stale businesses", "error", err)
		remaining = -1
	}

	p.logger.Info("Batch run finished",
		"attempted", summary.Attempted,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"stale_remaining", remaining,
		"duration", summary.Duration.String())

	return summary, nil
}

// processItem drives one claimed item to a terminal state. Returns true
// on success.
func (p *Processor) processItem(
	ctx context.Context,
	item *domain.ScanQueueItem,
	settings *domain.AutomationSettings,
) bool {
	if err := p.quota.TryAdmit(ctx, p.adapter.Name(), quota.DefaultCost); err != nil {
		if errors.Is(err, quota.ErrQuotaExceeded) {
			p.recordScan("quota_denied")
			p.failItem(ctx, item, err.Error(), domain.ErrorKindQuotaExceeded)
			return false
		}
		p.failItem(ctx, item, err.Error(), domain.ErrorKindRetryable)
		return false
	}

	target := provider.Target{ID: item.BusinessID}
	if item.URL != nil {
		target.URL = *item.URL
	}

	callCtx, cancel := context.WithTimeout(ctx, p.opts.CallTimeout)
	callStart := time.Now()
	outcome := p.adapter.Attempt(callCtx, target)
	cancel()

	if p.metrics != nil {
		p.metrics.ScanDurationSeconds.Observe(time.Since(callStart).Seconds())
	}

	switch outcome.Status {
	case provider.StatusSuccess:
		p.quota.Commit(ctx, p.adapter.Name())
		p.recordScan("success")
		return p.completeItem(ctx, item, outcome)

	case provider.StatusRetryable:
		p.recordScan("retryable")
		p.failItem(ctx, item, outcome.Reason, domain.ErrorKindRetryable)
		// RetryCount counts prior requeues, so this attempt is number
		// RetryCount+1. MaxRetries caps total attempts.
		if settings.RetryFailed && item.RetryCount+1 < settings.MaxRetries {
			if err := p.queue.Retry(ctx, item.ID); err != nil {
				p.logger.Error("Failed to requeue item",
					"item_id", item.ID,
					"error", err)
			}
		}
		return false

	default:
		p.recordScan("fatal")
		p.failItem(ctx, item, outcome.Reason, domain.ErrorKindFatal)
		return false
	}
}

// recordScan bumps the scan outcome counter.
func (p *Processor) recordScan(outcome string) {
	if p.metrics != nil {
		p.metrics.ScansTotal.WithLabelValues(outcome).Inc()
	}
}

// completeItem records the scan result on the business and completes the
// queue item. A result that cannot be persisted fails the item instead.
func (p *Processor) completeItem(
	ctx context.Context,
	item *domain.ScanQueueItem,
	outcome provider.Outcome,
) bool {
	result, err := extractResult(outcome.Data, p.now())
	if err != nil {
		p.failItem(ctx, item, err.Error(), domain.ErrorKindFatal)
		return false
	}

	if err := p.businesses.UpsertScanResult(ctx, item.BusinessID, result); err != nil {
		p.failItem(ctx, item, err.Error(), domain.ErrorKindRetryable)
		return false
	}

	if err := p.queue.Complete(ctx, item.ID); err != nil {
		p.logger.Error("Failed to complete item", "item_id", item.ID, "error", err)
		return false
	}

	p.logger.Debug("Scan completed",
		"item_id", item.ID,
		"business_id", item.BusinessID,
		"score", result.Score)

	return true
}

// failItem marks an item failed, logging rather than propagating errors
// so one bad item never aborts the batch.
func (p *Processor) failItem(
	ctx context.Context,
	item *domain.ScanQueueItem,
	message string,
	kind domain.ErrorKind,
) {
	if err := p.queue.Fail(ctx, item.ID, message, kind); err != nil {
		p.logger.Error("Failed to mark item failed",
			"item_id", item.ID,
			"error", err)
	}
}

// itemDelay returns a uniformly jittered pause between items.
func (p *Processor) itemDelay() time.Duration {
	minDelay, maxDelay := p.opts.ItemDelayMin, p.opts.ItemDelayMax
	if maxDelay <= minDelay {
		return minDelay
	}
	return minDelay + time.Duration(rand.Int63n(int64(maxDelay-minDelay)))
}

// extractResult pulls the normalized scan result out of an adapter
// success payload.
func extractResult(data map[string]any, scannedAt time.Time) (domain.ScanResult, error) {
	score, ok := data["score"].(int)
	if !ok {
		return domain.ScanResult{}, fmt.Errorf("provider payload missing score")
	}

	reportURL, _ := data["report_url"].(string)

	return domain.ScanResult{
		Score:     score,
		ReportURL: reportURL,
		ScannedAt: scannedAt,
	}, nil
}

// contextSleep waits for d or until ctx is done.
func contextSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
