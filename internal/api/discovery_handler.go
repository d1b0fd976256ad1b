package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/brianlapp/local-business-health-checker-sub001/internal/discovery"
)

// DiscoveryHandler handles business discovery HTTP requests.
type DiscoveryHandler struct {
	orchestrator *discovery.Orchestrator
}

// NewDiscoveryHandler creates a new discovery handler.
func NewDiscoveryHandler(orch *discovery.Orchestrator) *DiscoveryHandler {
	return &DiscoveryHandler{orchestrator: orch}
}

// discoverRequest is the POST body for a discovery run.
type discoverRequest struct {
	Query string `json:"query" binding:"required"`
}

// Discover handles POST /api/v1/discovery/run
func (h *DiscoveryHandler) Discover(c *gin.Context) {
	var req discoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	outcome, err := h.orchestrator.Discover(c.Request.Context(), req.Query)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	c.JSON(http.StatusOK, outcome)
}
