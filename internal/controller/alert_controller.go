package controller

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Alisjj/farmPilot-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AlertController handles alert listing/lifecycle and the explicit
// alert-evaluation trigger endpoints
type AlertController struct {
	alertService service.AlertService
	logger       *slog.Logger
}

// NewAlertController creates a new alert controller
func NewAlertController(alertService service.AlertService, logger *slog.Logger) *AlertController {
	return &AlertController{
		alertService: alertService,
		logger:       logger,
	}
}

// ListAlerts handles GET /v1/alerts
// Query parameters:
//   - unread (optional): "true" restricts to unread alerts
//   - section (optional): farm section label
func (c *AlertController) ListAlerts(ctx *gin.Context) {
	unreadOnly := ctx.Query("unread") == "true"
	section := optionalSection(ctx)

	alerts, err := c.alertService.ListAlerts(ctx.Request.Context(), unreadOnly, section)
	if err != nil {
		c.logger.Error("failed to list alerts",
			"unread_only", unreadOnly,
			"section", section,
			"error", err.Error(),
		)
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"message": "Failed to list alerts",
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"alerts": alerts, "count": len(alerts)})
}

// MarkAlertRead handles POST /v1/alerts/:id/read
func (c *AlertController) MarkAlertRead(ctx *gin.Context) {
	id, ok := parseAlertID(ctx)
	if !ok {
		return
	}

	if err := c.alertService.MarkAlertRead(ctx.Request.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{
				"error":   "Alert not found",
				"message": "No alert exists with the given id",
			})
			return
		}
		c.logger.Error("failed to mark alert read",
			"alert_id", id,
			"error", err.Error(),
		)
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"message": "Failed to mark alert read",
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "read", "id": id})
}

// DismissAlert handles DELETE /v1/alerts/:id
func (c *AlertController) DismissAlert(ctx *gin.Context) {
	id, ok := parseAlertID(ctx)
	if !ok {
		return
	}

	if err := c.alertService.DismissAlert(ctx.Request.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{
				"error":   "Alert not found",
				"message": "No alert exists with the given id",
			})
			return
		}
		c.logger.Error("failed to dismiss alert",
			"alert_id", id,
			"error", err.Error(),
		)
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"message": "Failed to dismiss alert",
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "dismissed", "id": id})
}

// EvaluateThresholds handles POST /v1/alerts/evaluate
// Query parameters:
//   - date (optional): calendar date in ISO 8601 format; defaults to yesterday
//   - section (optional): farm section label
func (c *AlertController) EvaluateThresholds(ctx *gin.Context) {
	date := time.Now().UTC().AddDate(0, 0, -1)
	if dateStr := ctx.Query("date"); dateStr != "" {
		parsed, err := parseISO8601Date(dateStr)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid date",
				"message": "date must be in ISO 8601 format (RFC3339 or YYYY-MM-DD)",
			})
			return
		}
		date = parsed
	}
	section := optionalSection(ctx)

	created, err := c.alertService.EvaluateThresholds(ctx.Request.Context(), date, section)
	if err != nil {
		c.logger.Error("failed to evaluate thresholds",
			"date", date.Format("2006-01-02"),
			"section", section,
			"error", err.Error(),
		)
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"message": "Failed to evaluate thresholds",
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"alerts_created": created})
}

// ListInventory handles GET /v1/inventory. Listing never evaluates alerts;
// the check is its own explicit endpoint.
func (c *AlertController) ListInventory(ctx *gin.Context) {
	items, err := c.alertService.ListInventory(ctx.Request.Context())
	if err != nil {
		c.logger.Error("failed to list inventory",
			"error", err.Error(),
		)
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"message": "Failed to list inventory",
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

// CheckInventory handles POST /v1/inventory/check
func (c *AlertController) CheckInventory(ctx *gin.Context) {
	created, err := c.alertService.EvaluateInventoryAlerts(ctx.Request.Context())
	if err != nil {
		c.logger.Error("failed to evaluate inventory alerts",
			"error", err.Error(),
		)
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"message": "Failed to evaluate inventory levels",
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"alerts_created": created})
}

// parseAlertID parses the :id path parameter, writing the 400 response itself
// when invalid
func parseAlertID(ctx *gin.Context) (uint, bool) {
	idStr := ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid id",
			"message": "id must be a valid unsigned integer",
		})
		return 0, false
	}
	return uint(id), true
}
