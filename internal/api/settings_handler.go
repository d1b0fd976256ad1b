package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/brianlapp/local-business-health-checker-sub001/internal/domain"
	"github.com/brianlapp/local-business-health-checker-sub001/internal/scheduler"
)

// SettingsHandler handles automation settings HTTP requests.
type SettingsHandler struct {
	scheduler *scheduler.Service
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(sched *scheduler.Service) *SettingsHandler {
	return &SettingsHandler{scheduler: sched}
}

// updateSettingsRequest is the PUT body. All fields are required so a
// partial update can never silently zero a setting.
type updateSettingsRequest struct {
	Enabled     bool             `json:"enabled"`
	Frequency   domain.Frequency `json:"frequency" binding:"required"`
	HourOfDay   *int             `json:"hour_of_day" binding:"required"`
	BatchSize   int              `json:"batch_size" binding:"required"`
	RetryFailed bool             `json:"retry_failed"`
	MaxRetries  int              `json:"max_retries" binding:"required"`
}

// GetSettings handles GET /api/v1/settings
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	settings, err := h.scheduler.GetSettings(c.Request.Context())
	if err != nil {
		respondInternalError(c, "Failed to load automation settings")
		return
	}

	c.JSON(http.StatusOK, settings)
}

// UpdateSettings handles PUT /api/v1/settings
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	settings := &domain.AutomationSettings{
		Enabled:     req.Enabled,
		Frequency:   req.Frequency,
		HourOfDay:   *req.HourOfDay,
		BatchSize:   req.BatchSize,
		RetryFailed: req.RetryFailed,
		MaxRetries:  req.MaxRetries,
	}

	updated, err := h.scheduler.UpdateSettings(c.Request.Context(), settings)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	c.JSON(http.StatusOK, updated)
}
