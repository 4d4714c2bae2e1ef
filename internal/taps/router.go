package taps

import (
	"taplist/internal/shared/config"
	"taplist/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupTapRoutes mounts the public scan endpoint at the root (the URL is
// baked into physical tags and has to stay short) and the identify endpoint
// under the API prefix.
func SetupTapRoutes(root gin.IRouter, api *gin.RouterGroup, controller Controller, cfg *config.Config) {
	// Session lookup is best-effort: an invalid token never blocks a tap.
	root.GET("/t/:batchSlug/:tagUuid", middleware.OptionalAuthWithConfig(cfg), controller.Tap)

	tapsGroup := api.Group("/taps")
	{
		tapsGroup.POST("/identify", controller.Identify) // POST /api/v1/taps/identify
	}
}
