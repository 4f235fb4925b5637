package controller

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Alisjj/farmPilot-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

// DashboardController handles dashboard composition HTTP requests
type DashboardController struct {
	dashboardService service.DashboardService
	logger           *slog.Logger
}

// NewDashboardController creates a new dashboard controller
func NewDashboardController(dashboardService service.DashboardService, logger *slog.Logger) *DashboardController {
	return &DashboardController{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

// GetDashboard handles GET /v1/dashboard
// Query parameters:
//   - section (optional): farm section label; absent means farm-wide
func (c *DashboardController) GetDashboard(ctx *gin.Context) {
	startTime := time.Now()

	userID := ctx.GetHeader("X-User-ID")
	if userID == "" {
		userID = "anonymous"
	}
	section := optionalSection(ctx)

	data, err := c.dashboardService.GetDashboardData(ctx.Request.Context(), userID, section)
	if err != nil {
		latency := time.Since(startTime)
		c.logger.Error("failed to compose dashboard",
			"user_id", userID,
			"section", section,
			"error", err.Error(),
			"latency_ms", latency.Milliseconds(),
		)
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"message": "Failed to load dashboard data",
		})
		return
	}

	latency := time.Since(startTime)
	c.logger.Info("dashboard request completed",
		"user_id", userID,
		"section", section,
		"kpis", len(data.Kpis),
		"alerts", len(data.Alerts),
		"latency_ms", latency.Milliseconds(),
	)

	ctx.JSON(http.StatusOK, data)
}

// GetExecutiveSummary handles GET /v1/dashboard/summary
func (c *DashboardController) GetExecutiveSummary(ctx *gin.Context) {
	summary, err := c.dashboardService.GetExecutiveSummary(ctx.Request.Context())
	if err != nil {
		c.logger.Error("failed to compose executive summary",
			"error", err.Error(),
		)
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"message": "Failed to load executive summary",
		})
		return
	}

	ctx.JSON(http.StatusOK, summary)
}
