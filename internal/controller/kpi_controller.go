package controller

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Alisjj/farmPilot-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

// KpiController handles KPI calculation and trend HTTP requests
type KpiController struct {
	kpiService service.KpiService
	logger     *slog.Logger
}

// NewKpiController creates a new KPI controller
func NewKpiController(kpiService service.KpiService, logger *slog.Logger) *KpiController {
	return &KpiController{
		kpiService: kpiService,
		logger:     logger,
	}
}

// CalculateDailyKpis handles POST /v1/kpis/calculate
// Query parameters:
//   - date (optional): calendar date in ISO 8601 format; defaults to yesterday
//   - section (optional): farm section label; absent means farm-wide
func (c *KpiController) CalculateDailyKpis(ctx *gin.Context) {
	startTime := time.Now()

	date := time.Now().UTC().AddDate(0, 0, -1)
	if dateStr := ctx.Query("date"); dateStr != "" {
		parsed, err := parseISO8601Date(dateStr)
		if err != nil {
			c.logger.Warn("invalid date",
				"date", dateStr,
				"error", err.Error(),
			)
			ctx.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid date",
				"message": "date must be in ISO 8601 format (RFC3339 or YYYY-MM-DD)",
			})
			return
		}
		date = parsed
	}

	section := optionalSection(ctx)

	if err := c.kpiService.CalculateDailyKpis(ctx.Request.Context(), date, section); err != nil {
		latency := time.Since(startTime)
		c.logger.Error("failed to calculate daily kpis",
			"date", date.Format("2006-01-02"),
			"section", section,
			"error", err.Error(),
			"latency_ms", latency.Milliseconds(),
		)
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"message": "Failed to calculate daily KPIs",
		})
		return
	}

	latency := time.Since(startTime)
	c.logger.Info("daily kpi calculation completed",
		"date", date.Format("2006-01-02"),
		"section", section,
		"latency_ms", latency.Milliseconds(),
	)

	ctx.JSON(http.StatusAccepted, gin.H{
		"status":  "calculated",
		"date":    date.Format("2006-01-02"),
		"section": section,
	})
}

// trendRequest is the body of POST /v1/kpis/trends
type trendRequest struct {
	KpiName  string `json:"kpi_name" binding:"required"`
	Category string `json:"category"`
	Period   string `json:"period"`
}

// CalculateKpiTrends handles POST /v1/kpis/trends
func (c *KpiController) CalculateKpiTrends(ctx *gin.Context) {
	var req trendRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": "kpi_name is required",
		})
		return
	}

	if req.Period == "" {
		req.Period = "day"
	}
	if req.Period != "day" && req.Period != "week" && req.Period != "month" {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid period",
			"message": "period must be one of: day, week, month",
		})
		return
	}

	if err := c.kpiService.CalculateKpiTrends(ctx.Request.Context(), req.KpiName, req.Category, req.Period); err != nil {
		c.logger.Error("failed to calculate kpi trend",
			"kpi_name", req.KpiName,
			"period", req.Period,
			"error", err.Error(),
		)
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"message": "Failed to calculate KPI trend",
		})
		return
	}

	ctx.JSON(http.StatusAccepted, gin.H{
		"status":   "calculated",
		"kpi_name": req.KpiName,
		"period":   req.Period,
	})
}

// optionalSection reads the optional section query parameter
func optionalSection(ctx *gin.Context) *string {
	if s := ctx.Query("section"); s != "" {
		return &s
	}
	return nil
}

// parseISO8601Date parses a date string in ISO 8601 format (RFC3339 is ISO 8601 compliant)
// Supports RFC3339 timestamps and plain YYYY-MM-DD dates.
func parseISO8601Date(dateStr string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, dateStr); err == nil {
		return t, nil
	}

	if t, err := time.Parse("2006-01-02", dateStr); err == nil {
		// Set to start of day in UTC
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}

	return time.Time{}, fmt.Errorf("unable to parse ISO 8601 date: %s (expected RFC3339 or YYYY-MM-DD format)", dateStr)
}
