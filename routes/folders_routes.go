package routes

import (
	"drivebox/controllers"
	"drivebox/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterFolderRoutes(rg *gin.RouterGroup, folderController *controllers.FolderController, jwtSecret string) {
	folders := rg.Group("/folders")
	folders.Use(middleware.AuthMiddleware(jwtSecret))
	{
		folders.POST("", folderController.CreateFolder)  // POST /folders
		folders.GET("", folderController.ListRoot)       // GET /folders (root listing incl. shared items)
		folders.GET("/:id", folderController.GetFolderContents) // GET /folders/:id (contents + breadcrumbs)

		folders.PATCH("/:id/rename", folderController.RenameFolder) // PATCH /folders/:id/rename
		folders.PATCH("/:id/move", folderController.MoveFolder)     // PATCH /folders/:id/move
		folders.DELETE("/:id", folderController.DeleteFolder)       // DELETE /folders/:id (move to trash)

		folders.GET("/:id/size", folderController.FolderSize)         // GET /folders/:id/size
		folders.GET("/:id/download", folderController.DownloadFolder) // GET /folders/:id/download (ZIP)
	}
}
