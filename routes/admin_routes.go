package routes

import (
	"drivebox/controllers"
	"drivebox/middleware"
	"drivebox/models"

	"github.com/gin-gonic/gin"
)

func RegisterAdminRoutes(rg *gin.RouterGroup, adminController *controllers.AdminController, jwtSecret string) {
	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(jwtSecret))
	admin.Use(middleware.RequireRole(models.RoleAdmin, models.RoleSuperadmin))
	{
		admin.GET("/users", adminController.ListUsers) // GET /admin/users
		admin.GET("/audit", adminController.ListAuditLogs) // GET /admin/audit?limit=&offset=
	}
}
