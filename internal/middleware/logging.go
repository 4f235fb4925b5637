package middleware

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestMetrics holds in-memory request metrics
type RequestMetrics struct {
	mu                 sync.RWMutex
	TotalRequests      uint64
	RequestsByEndpoint map[string]uint64
	ErrorResponses     uint64
}

var metrics = &RequestMetrics{
	RequestsByEndpoint: make(map[string]uint64),
}

// GetMetrics returns a copy of the current request metrics
func GetMetrics() RequestMetrics {
	metrics.mu.RLock()
	defer metrics.mu.RUnlock()

	byEndpoint := make(map[string]uint64, len(metrics.RequestsByEndpoint))
	for k, v := range metrics.RequestsByEndpoint {
		byEndpoint[k] = v
	}
	return RequestMetrics{
		TotalRequests:      metrics.TotalRequests,
		RequestsByEndpoint: byEndpoint,
		ErrorResponses:     metrics.ErrorResponses,
	}
}

// StructuredLogging provides structured request logging with latency tracking
// and feeds the in-memory request metrics
func StructuredLogging(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()

		metrics.mu.Lock()
		metrics.TotalRequests++
		metrics.RequestsByEndpoint[method+" "+path]++
		if statusCode >= 500 {
			metrics.ErrorResponses++
		}
		metrics.mu.Unlock()

		logger.Info("request completed",
			"method", method,
			"path", path,
			"query_params", c.Request.URL.Query().Encode(),
			"status_code", statusCode,
			"latency_ms", latency.Milliseconds(),
			"remote_addr", c.ClientIP(),
		)

		for _, err := range c.Errors {
			logger.Error("request error",
				"method", method,
				"path", path,
				"error", err.Error(),
			)
		}
	}
}
