package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/brianlapp/local-business-health-checker-sub001/internal/domain"
	"github.com/brianlapp/local-business-health-checker-sub001/internal/queue"
)

const (
	defaultQueueLimit = 50
	maxQueueLimit     = 200
)

// QueueHandler handles scan queue HTTP requests.
type QueueHandler struct {
	queue *queue.Service
}

// NewQueueHandler creates a new queue handler.
func NewQueueHandler(queueSvc *queue.Service) *QueueHandler {
	return &QueueHandler{queue: queueSvc}
}

// enqueueRequest is the POST body for creating a queue item.
type enqueueRequest struct {
	BusinessID string          `json:"business_id" binding:"required"`
	ScanType   domain.ScanType `json:"scan_type" binding:"required"`
	URL        *string         `json:"url"`
	Priority   domain.Priority `json:"priority"`
}

// ListQueue handles GET /api/v1/queue
func (h *QueueHandler) ListQueue(c *gin.Context) {
	status := c.Query("status")
	businessID := c.Query("business_id")
	limit := parseLimit(c, defaultQueueLimit, maxQueueLimit)

	items, err := h.queue.List(c.Request.Context(), status, businessID, limit)
	if err != nil {
		respondInternalError(c, "Failed to list queue items")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

// GetItem handles GET /api/v1/queue/:id
func (h *QueueHandler) GetItem(c *gin.Context) {
	item, err := h.queue.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, http.StatusNotFound, "Queue item not found")
		return
	}

	c.JSON(http.StatusOK, item)
}

// Enqueue handles POST /api/v1/queue
func (h *QueueHandler) Enqueue(c *gin.Context) {
	var req enqueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	item, err := h.queue.Enqueue(c.Request.Context(), req.BusinessID, req.ScanType, req.URL, req.Priority)
	if err != nil {
		if errors.Is(err, queue.ErrValidation) {
			respondBadRequest(c, err.Error())
			return
		}
		respondInternalError(c, "Failed to enqueue scan")
		return
	}

	c.JSON(http.StatusCreated, item)
}

// RetryItem handles POST /api/v1/queue/:id/retry
func (h *QueueHandler) RetryItem(c *gin.Context) {
	id := c.Param("id")

	if err := h.queue.Retry(c.Request.Context(), id); err != nil {
		if errors.Is(err, queue.ErrInvalidState) {
			respondConflict(c, err.Error())
			return
		}
		respondInternalError(c, "Failed to retry queue item")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Queue item requeued"})
}

// CancelItem handles DELETE /api/v1/queue/:id
func (h *QueueHandler) CancelItem(c *gin.Context) {
	id := c.Param("id")

	if err := h.queue.Cancel(c.Request.Context(), id); err != nil {
		if errors.Is(err, queue.ErrInvalidState) {
			respondConflict(c, err.Error())
			return
		}
		respondInternalError(c, "Failed to cancel queue item")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Queue item cancelled"})
}
