package controllers

import (
	"strconv"

	"drivebox/services"
	"drivebox/utils"

	"github.com/gin-gonic/gin"
)

type AdminController struct {
	authService  *services.AuthService
	auditService *services.AuditService
}

func NewAdminController(authService *services.AuthService, auditService *services.AuditService) *AdminController {
	return &AdminController{authService: authService, auditService: auditService}
}

func (ac *AdminController) ListUsers(c *gin.Context) {
	users, err := ac.authService.ListUsers()
	if err != nil {
		handleError(c, err, "Failed to list users")
		return
	}

	utils.SuccessResponse(c, "Users listed", users)
}

func (ac *AdminController) ListAuditLogs(c *gin.Context) {
	limit := 50
	offset := 0
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 500 {
			limit = v
		}
	}
	if raw := c.Query("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			offset = v
		}
	}

	logs, err := ac.auditService.List(limit, offset)
	if err != nil {
		handleError(c, err, "Failed to list audit logs")
		return
	}

	utils.SuccessResponse(c, "Audit logs listed", logs)
}
