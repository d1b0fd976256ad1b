// Package api implements the HTTP API for the health checker service.
package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// parseLimit parses the limit query param with a default and cap.
func parseLimit(c *gin.Context, defaultLimit, maxLimit int) int {
	limitStr := c.DefaultQuery("limit", strconv.Itoa(defaultLimit))
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

// respondError sends a JSON error response.
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// respondBadRequest sends a 400 with message.
func respondBadRequest(c *gin.Context, message string) {
	respondError(c, http.StatusBadRequest, message)
}

// respondConflict sends a 409 with message.
func respondConflict(c *gin.Context, message string) {
	respondError(c, http.StatusConflict, message)
}

// respondInternalError sends a 500 with message.
func respondInternalError(c *gin.Context, message string) {
	respondError(c, http.StatusInternalServerError, message)
}
