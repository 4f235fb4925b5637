package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// MetricsHandler returns current request metrics
func MetricsHandler(c *gin.Context) {
	m := GetMetrics()
	c.JSON(http.StatusOK, gin.H{
		"total_requests":       m.TotalRequests,
		"requests_by_endpoint": m.RequestsByEndpoint,
		"error_responses":      m.ErrorResponses,
	})
}
