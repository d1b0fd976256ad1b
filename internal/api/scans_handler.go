package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/brianlapp/local-business-health-checker-sub001/internal/coordination"
	"github.com/brianlapp/local-business-health-checker-sub001/internal/logger"
	"github.com/brianlapp/local-business-health-checker-sub001/internal/metrics"
	"github.com/brianlapp/local-business-health-checker-sub001/internal/scheduler"
)

// ScansHandler handles manual batch run requests.
type ScansHandler struct {
	logger    logger.Interface
	scheduler *scheduler.Service
	batch     scheduler.BatchRunner
	lock      coordination.Locker
	metrics   *metrics.Metrics
}

// NewScansHandler creates a new scans handler.
func NewScansHandler(
	log logger.Interface,
	sched *scheduler.Service,
	batch scheduler.BatchRunner,
	lock coordination.Locker,
) *ScansHandler {
	return &ScansHandler{
		logger:    log,
		scheduler: sched,
		batch:     batch,
		lock:      lock,
	}
}

// SetMetrics attaches pipeline metrics.
func (h *ScansHandler) SetMetrics(m *metrics.Metrics) {
	h.metrics = m
}

// RunBatch handles POST /api/v1/scans/run
//
// The batch runs synchronously under the shared run lock, so a manual
// trigger can never overlap an automated run. Manual runs do not touch
// the schedule.
func (h *ScansHandler) RunBatch(c *gin.Context) {
	ctx := c.Request.Context()

	settings, err := h.scheduler.GetSettings(ctx)
	if err != nil {
		respondInternalError(c, "Failed to load automation settings")
		return
	}

	acquired, err := h.lock.TryAcquire(ctx)
	if err != nil {
		respondInternalError(c, "Failed to acquire run lock")
		return
	}
	if !acquired {
		respondConflict(c, "A batch run is already in progress")
		return
	}
	defer func() {
		if releaseErr := h.lock.Release(ctx); releaseErr != nil {
			h.logger.Warn("Failed to release run lock", "error", releaseErr)
		}
	}()

	if h.metrics != nil {
		h.metrics.BatchRunsTotal.WithLabelValues("manual").Inc()
	}

	h.logger.Info("Manual batch run triggered")

	summary, err := h.batch.Run(ctx, settings)
	if err != nil {
		respondInternalError(c, "Batch run failed: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, summary)
}
