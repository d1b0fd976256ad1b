package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/brianlapp/local-business-health-checker-sub001/internal/coordination"
	"github.com/brianlapp/local-business-health-checker-sub001/internal/domain"
	"github.com/brianlapp/local-business-health-checker-sub001/internal/logger"
	"github.com/brianlapp/local-business-health-checker-sub001/internal/metrics"
	"github.com/brianlapp/local-business-health-checker-sub001/internal/queue"
)

const (
	// tickSpec is how often the due-run check fires.
	tickSpec = "@every 1m"
	// reaperSpec is how often stuck processing items are swept.
	reaperSpec = "@every 5m"
)

// BatchRunner runs one scan batch under the given settings.
type BatchRunner interface {
	Run(ctx context.Context, settings *domain.AutomationSettings) (*domain.BatchSummary, error)
}

// Runner drives the scheduler from wall-clock ticks. Each tick asks the
// service whether a run is due, takes the Redis run lock so only one
// replica fires, runs the batch, and records the run. A reaper sweep
// requeues items stuck in processing.
type Runner struct {
	logger    logger.Interface
	scheduler *Service
	queue     *queue.Service
	batch     BatchRunner
	lock      coordination.Locker
	staleAge  time.Duration
	metrics   *metrics.Metrics
	cron      *cron.Cron
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewRunner creates a new scheduler runner. staleAge is the processing
// age after which the reaper requeues an item.
func NewRunner(
	log logger.Interface,
	sched *Service,
	queueSvc *queue.Service,
	batch BatchRunner,
	lock coordination.Locker,
	staleAge time.Duration,
) *Runner {
	ctx, cancel := context.WithCancel(context.Background())

	return &Runner{
		logger:    log,
		scheduler: sched,
		queue:     queueSvc,
		batch:     batch,
		lock:      lock,
		staleAge:  staleAge,
		cron:      cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// SetMetrics attaches pipeline metrics.
func (r *Runner) SetMetrics(m *metrics.Metrics) {
	r.metrics = m
}

// Start registers the tick and reaper entries and starts the cron loop.
func (r *Runner) Start() error {
	if _, err := r.cron.AddFunc(tickSpec, r.tick); err != nil {
		return err
	}
	if _, err := r.cron.AddFunc(reaperSpec, r.reap); err != nil {
		return err
	}

	r.cron.Start()
	r.logger.Info("Scheduler runner started", "tick", tickSpec, "reaper", reaperSpec)
	return nil
}

// Stop halts the cron loop and waits for a running entry to finish.
func (r *Runner) Stop() {
	r.cancel()
	stopCtx := r.cron.Stop()
	<-stopCtx.Done()
	r.logger.Info("Scheduler runner stopped")
}

// tick checks whether a run is due and, if so, fires one batch under the
// run lock.
func (r *Runner) tick() {
	now := time.Now().UTC()

	due, settings, err := r.scheduler.Due(r.ctx, now)
	if err != nil {
		r.logger.Error("Failed to evaluate schedule", "error", err)
		return
	}
	if !due {
		return
	}

	acquired, err := r.lock.TryAcquire(r.ctx)
	if err != nil {
		r.logger.Error("Failed to acquire run lock", "error", err)
		return
	}
	if !acquired {
		r.logger.Debug("Run lock held elsewhere, skipping tick")
		return
	}
	defer func() {
		if releaseErr := r.lock.Release(r.ctx); releaseErr != nil {
			r.logger.Warn("Failed to release run lock", "error", releaseErr)
		}
	}()

	if r.metrics != nil {
		r.metrics.BatchRunsTotal.WithLabelValues("scheduled").Inc()
	}

	r.logger.Info("Automated batch due", "scheduled_for", settings.NextScheduledRun)

	summary, runErr := r.batch.Run(r.ctx, settings)

	// The schedule advances even when the batch errored. Leaving the
	// run unrecorded would fire a retry every tick until one succeeds.
	if err := r.scheduler.RecordRun(r.ctx, settings, now); err != nil {
		r.logger.Error("Failed to record automated run", "error", err)
	}

	if runErr != nil {
		r.logger.Error("Automated batch failed", "error", runErr)
		return
	}

	r.logger.Info("Automated batch finished",
		"attempted", summary.Attempted,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"duration", summary.Duration.String())
}

// reap requeues items stuck in processing longer than staleAge.
func (r *Runner) reap() {
	if _, err := r.queue.RequeueStuck(r.ctx, r.staleAge); err != nil {
		r.logger.Error("Reaper sweep failed", "error", err)
	}
}
