package routes

import (
	"drivebox/controllers"
	"drivebox/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterTrashRoutes(rg *gin.RouterGroup, trashController *controllers.TrashController, jwtSecret string) {
	trash := rg.Group("/trash")
	trash.Use(middleware.AuthMiddleware(jwtSecret))
	{
		trash.GET("", trashController.ListTrash)                  // GET /trash
		trash.POST("/:type/:id/restore", trashController.Restore) // POST /trash/file/42/restore
		trash.DELETE("/:type/:id", trashController.Purge)         // DELETE /trash/folder/7 (permanent)
		trash.DELETE("", trashController.EmptyTrash)              // DELETE /trash (empty all)
	}
}
