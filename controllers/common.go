package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"drivebox/services"
	"drivebox/utils"

	"github.com/gin-gonic/gin"
)

// getUserID extracts the authenticated subject set by the auth
// middleware.
func getUserID(c *gin.Context) (uint, error) {
	userID, exists := c.Get("userId")
	if !exists {
		return 0, errors.New("user not authenticated")
	}

	id, ok := userID.(uint)
	if !ok {
		return 0, errors.New("invalid user ID in context")
	}
	return id, nil
}

// requestMeta captures the per-request fields attached to audit entries.
func requestMeta(c *gin.Context) services.RequestMeta {
	return services.RequestMeta{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

// parseIDParam reads a numeric path parameter. A non-numeric id is a
// validation error, rejected before any mutation.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		utils.BadRequestResponse(c, "Invalid "+name+" parameter", nil)
		return 0, false
	}
	return uint(id), true
}

// handleError maps service-layer sentinels onto HTTP statuses.
// Not-found and forbidden stay distinct so the client can tell "this
// was deleted" from "request access".
func handleError(c *gin.Context, err error, defaultMessage string) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Not found", "error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Insufficient permissions", "error": err.Error()})
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request data", "error": err.Error()})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Already exists", "error": err.Error()})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid username or password"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": defaultMessage, "error": err.Error()})
	}
}
