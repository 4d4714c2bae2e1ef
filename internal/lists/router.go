package lists

import (
	"taplist/internal/shared/config"
	"taplist/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupListRoutes(rg *gin.RouterGroup, controller Controller, cfg *config.Config) {
	myList := rg.Group("/lists/mine")
	myList.Use(middleware.OptionalAuthWithConfig(cfg))
	{
		myList.GET("", controller.GetMyList)                   // GET /api/v1/lists/mine
		myList.POST("/items", controller.AddItem)              // POST /api/v1/lists/mine/items
		myList.PUT("/items/:itemId", controller.UpdateItem)    // PUT /api/v1/lists/mine/items/:itemId
		myList.DELETE("/items/:itemId", controller.DeleteItem) // DELETE /api/v1/lists/mine/items/:itemId
		myList.POST("/pin", controller.SharePin)               // POST /api/v1/lists/mine/pin
	}

	rg.POST("/lists/pin", controller.AccessByPin) // POST /api/v1/lists/pin - Shared list lookup
}
