package api

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/brianlapp/local-business-health-checker-sub001/internal/domain"
	"github.com/brianlapp/local-business-health-checker-sub001/internal/quota"
)

// QuotaHandler handles quota usage HTTP requests.
type QuotaHandler struct {
	quota *quota.Manager
}

// NewQuotaHandler creates a new quota handler.
func NewQuotaHandler(quotaMgr *quota.Manager) *QuotaHandler {
	return &QuotaHandler{quota: quotaMgr}
}

// quotaUsageResponse is one provider's usage in the current period.
type quotaUsageResponse struct {
	Provider  string `json:"provider"`
	Period    string `json:"period"`
	Used      int    `json:"used"`
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`
}

// GetUsage handles GET /api/v1/quota
func (h *QuotaHandler) GetUsage(c *gin.Context) {
	providers := h.quota.Providers()
	sort.Strings(providers)

	usage := make([]quotaUsageResponse, 0, len(providers))
	for _, name := range providers {
		counter, err := h.quota.GetUsage(c.Request.Context(), name)
		if err != nil {
			respondInternalError(c, "Failed to load quota usage")
			return
		}
		usage = append(usage, toUsageResponse(counter))
	}

	c.JSON(http.StatusOK, gin.H{"providers": usage})
}

func toUsageResponse(counter *domain.QuotaCounter) quotaUsageResponse {
	return quotaUsageResponse{
		Provider:  counter.Provider,
		Period:    counter.Period,
		Used:      counter.Used,
		Limit:     counter.Limit,
		Remaining: counter.Remaining(),
	}
}
