package batches

import (
	"taplist/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupBatchRoutes(rg *gin.RouterGroup, controller Controller) {
	adminBatches := rg.Group("/admin/batches")
	adminBatches.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		adminBatches.POST("", controller.CreateBatch)          // POST /api/v1/admin/batches - Create batch
		adminBatches.GET("", controller.GetAllBatches)         // GET /api/v1/admin/batches - List batches
		adminBatches.GET("/:batchId", controller.GetBatch)     // GET /api/v1/admin/batches/:batchId
		adminBatches.PUT("/:batchId", controller.UpdateBatch)  // PUT /api/v1/admin/batches/:batchId
	}
}
