package routes

import (
	"drivebox/controllers"
	"drivebox/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterFileRoutes(rg *gin.RouterGroup, fileController *controllers.FileController, jwtSecret string) {
	files := rg.Group("/files")
	files.Use(middleware.AuthMiddleware(jwtSecret))
	{
		// Uploads
		files.POST("/upload", fileController.UploadFiles)           // POST /files/upload (multi-file, folder trees via relativePaths)
		files.POST("/upload-archive", fileController.UploadArchive) // POST /files/upload-archive (recursive ZIP ingestion)

		// Collections. Registered before /:id so gin does not shadow them.
		files.GET("/recent", fileController.ListRecent)        // GET /files/recent
		files.GET("/starred", fileController.ListStarred)      // GET /files/starred
		files.POST("/bulk-download", fileController.BulkDownload) // POST /files/bulk-download (mixed selection -> ZIP)

		// File access
		files.GET("/:id/view", fileController.ViewFile)         // GET /files/:id/view (inline)
		files.GET("/:id/download", fileController.DownloadFile) // GET /files/:id/download (attachment)

		// File operations
		files.PATCH("/:id/rename", fileController.RenameFile) // PATCH /files/:id/rename
		files.PATCH("/:id/move", fileController.MoveFile)     // PATCH /files/:id/move
		files.POST("/:id/star", fileController.StarFile)      // POST /files/:id/star
		files.DELETE("/:id/star", fileController.UnstarFile)  // DELETE /files/:id/star
		files.DELETE("/:id", fileController.DeleteFile)       // DELETE /files/:id (move to trash)
	}

	search := rg.Group("/search")
	search.Use(middleware.AuthMiddleware(jwtSecret))
	{
		search.GET("", fileController.Search) // GET /search?q= (accessible files and folders)
	}
}
