package router

import (
	"log/slog"
	"net/http"

	"github.com/Alisjj/farmPilot-sub001/internal/controller"
	"github.com/Alisjj/farmPilot-sub001/internal/middleware"

	"github.com/gin-gonic/gin"
)

// New assembles the gin engine with all route groups and middleware
func New(kpis *controller.KpiController, dashboard *controller.DashboardController, alerts *controller.AlertController, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.StructuredLogging(logger))

	v1 := r.Group("/v1")
	{
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
		v1.GET("/metrics", middleware.MetricsHandler)

		kpiGroup := v1.Group("/kpis")
		{
			kpiGroup.POST("/calculate", kpis.CalculateDailyKpis)
			kpiGroup.POST("/trends", kpis.CalculateKpiTrends)
		}

		v1.GET("/dashboard", dashboard.GetDashboard)
		v1.GET("/dashboard/summary", dashboard.GetExecutiveSummary)

		alertGroup := v1.Group("/alerts")
		{
			alertGroup.GET("", alerts.ListAlerts)
			alertGroup.POST("/evaluate", alerts.EvaluateThresholds)
			alertGroup.POST("/:id/read", alerts.MarkAlertRead)
			alertGroup.DELETE("/:id", alerts.DismissAlert)
		}

		inventoryGroup := v1.Group("/inventory")
		{
			inventoryGroup.GET("", alerts.ListInventory)
			inventoryGroup.POST("/check", alerts.CheckInventory)
		}
	}

	return r
}
