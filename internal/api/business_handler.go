package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/brianlapp/local-business-health-checker-sub001/internal/database"
)

// BusinessHandler handles business lookup HTTP requests.
type BusinessHandler struct {
	businesses database.BusinessRepositoryInterface
}

// NewBusinessHandler creates a new business handler.
func NewBusinessHandler(repo database.BusinessRepositoryInterface) *BusinessHandler {
	return &BusinessHandler{businesses: repo}
}

// GetBusiness handles GET /api/v1/businesses/:id
func (h *BusinessHandler) GetBusiness(c *gin.Context) {
	business, err := h.businesses.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, http.StatusNotFound, "Business not found")
		return
	}

	c.JSON(http.StatusOK, business)
}
