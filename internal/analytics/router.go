package analytics

import (
	"taplist/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupAnalyticsRoutes(rg *gin.RouterGroup, controller Controller) {
	adminAnalytics := rg.Group("/admin/analytics")
	adminAnalytics.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		adminAnalytics.GET("/overview", controller.GetOverview)      // GET /api/v1/admin/analytics/overview
		adminAnalytics.GET("/batches", controller.GetBatchAnalytics) // GET /api/v1/admin/analytics/batches
		adminAnalytics.GET("/tags", controller.GetTagAnalytics)      // GET /api/v1/admin/analytics/tags?batch_id=
		adminAnalytics.GET("/devices", controller.GetDeviceBreakdown)
		adminAnalytics.GET("/daily", controller.GetDailyStats) // GET /api/v1/admin/analytics/daily?days=30
	}
}
