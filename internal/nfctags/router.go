package nfctags

import (
	"taplist/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// Tag link/unlink lives with the identity router since linking a user to a
// tag also relinks that tag's historical tap events.
func SetupTagRoutes(rg *gin.RouterGroup, controller Controller) {
	adminTags := rg.Group("/admin/tags")
	adminTags.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		adminTags.POST("", controller.CreateTags)        // POST /api/v1/admin/tags - Create tags (batch)
		adminTags.GET("", controller.GetAllTags)         // GET /api/v1/admin/tags - List tags
		adminTags.GET("/:tagId", controller.GetTag)      // GET /api/v1/admin/tags/:tagId
		adminTags.PUT("/:tagId", controller.UpdateTag)   // PUT /api/v1/admin/tags/:tagId
	}
}
