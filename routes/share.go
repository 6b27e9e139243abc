package routes

import (
	"drivebox/controllers"
	"drivebox/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterShareRoutes(rg *gin.RouterGroup, shareController *controllers.ShareController, jwtSecret string) {
	share := rg.Group("/share")
	share.Use(middleware.AuthMiddleware(jwtSecret))
	{
		share.POST("", shareController.Share)                        // POST /share (single grant)
		share.POST("/bulk", shareController.ShareBulk)               // POST /share/bulk (one grant, many items)
		share.GET("/:type/:id", shareController.ListGrants)          // GET /share/file/42 (owner only)
		share.DELETE("/:type/:id/:userId", shareController.Revoke)   // DELETE /share/folder/7/3
	}
}
