package identity

import (
	"taplist/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupIdentityRoutes(rg *gin.RouterGroup, controller Controller) {
	identityGroup := rg.Group("/identity")
	{
		identityGroup.POST("/claim", middleware.JWTAuth(), controller.Claim) // POST /api/v1/identity/claim
		identityGroup.POST("/attach", controller.Attach)                     // POST /api/v1/identity/attach - public, time-boxed
	}

	adminTags := rg.Group("/admin/tags")
	adminTags.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		adminTags.POST("/:tagId/link", controller.LinkTag) // POST /api/v1/admin/tags/:tagId/link
	}
}
