package visitors

import (
	"github.com/gin-gonic/gin"
)

func SetupVisitorRoutes(rg *gin.RouterGroup, controller Controller) {
	identity := rg.Group("/identity")
	{
		identity.POST("/ping", controller.Ping) // POST /api/v1/identity/ping - Refresh visitor presence
	}
}
