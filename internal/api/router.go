package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/brianlapp/local-business-health-checker-sub001/internal/logger"
)

// Handlers groups the route handlers the router mounts.
type Handlers struct {
	Settings   *SettingsHandler
	Queue      *QueueHandler
	Scans      *ScansHandler
	Quota      *QuotaHandler
	Discovery  *DiscoveryHandler
	Businesses *BusinessHandler
}

// SetupRouter creates and configures the Gin router with all routes.
func SetupRouter(log logger.Interface, h Handlers) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")

	v1.GET("/settings", h.Settings.GetSettings)
	v1.PUT("/settings", h.Settings.UpdateSettings)

	v1.GET("/queue", h.Queue.ListQueue)
	v1.POST("/queue", h.Queue.Enqueue)
	v1.GET("/queue/:id", h.Queue.GetItem)
	v1.POST("/queue/:id/retry", h.Queue.RetryItem)
	v1.DELETE("/queue/:id", h.Queue.CancelItem)

	v1.POST("/scans/run", h.Scans.RunBatch)

	v1.GET("/quota", h.Quota.GetUsage)

	v1.POST("/discovery/run", h.Discovery.Discover)

	v1.GET("/businesses/:id", h.Businesses.GetBusiness)

	return router
}

// loggingMiddleware logs HTTP requests through the service logger.
func loggingMiddleware(log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		log.Info("HTTP Request",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String())
	}
}

// corsMiddleware allows the dashboard frontend to call the API.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
