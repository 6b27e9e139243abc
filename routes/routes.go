// routes/routes.go
package routes

import (
	"drivebox/config"
	"drivebox/controllers"
	"drivebox/repositories"
	"drivebox/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRoutes wires repositories, services and controllers and mounts
// every API route group. Called from main.go after global middleware is
// already in place.
func SetupRoutes(api *gin.RouterGroup, db *gorm.DB, cfg *config.Config) error {
	storageService, err := services.NewStorageService(cfg.StoragePath)
	if err != nil {
		return err
	}

	userRepo := repositories.NewUserRepository(db)
	folderRepo := repositories.NewFolderRepository(db)
	fileRepo := repositories.NewFileRepository(db)
	permissionRepo := repositories.NewPermissionRepository(db)
	auditRepo := repositories.NewAuditRepository(db)

	auditService := services.NewAuditService(auditRepo)
	permissionService := services.NewPermissionService(fileRepo, folderRepo, permissionRepo, userRepo)
	folderService := services.NewFolderService(folderRepo, fileRepo, permissionService)
	fileService := services.NewFileService(fileRepo, folderRepo, folderService, permissionService, storageService)
	trashService := services.NewTrashService(fileRepo, folderRepo, permissionRepo, permissionService, storageService)
	archiveService := services.NewArchiveService(fileRepo, folderRepo, permissionService, storageService, auditService)
	authService := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiration)

	authController := controllers.NewAuthController(authService)
	folderController := controllers.NewFolderController(folderService, trashService, archiveService, auditService)
	fileController := controllers.NewFileController(fileService, trashService, archiveService, auditService)
	trashController := controllers.NewTrashController(trashService, auditService)
	shareController := controllers.NewShareController(permissionService, auditService)
	adminController := controllers.NewAdminController(authService, auditService)

	RegisterAuthRoutes(api, authController, cfg.JWTSecret)
	RegisterFolderRoutes(api, folderController, cfg.JWTSecret)
	RegisterFileRoutes(api, fileController, cfg.JWTSecret)
	RegisterTrashRoutes(api, trashController, cfg.JWTSecret)
	RegisterShareRoutes(api, shareController, cfg.JWTSecret)
	RegisterAdminRoutes(api, adminController, cfg.JWTSecret)

	return nil
}
