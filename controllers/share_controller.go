package controllers

import (
	"fmt"

	"drivebox/services"
	"drivebox/utils"

	"github.com/gin-gonic/gin"
)

type ShareController struct {
	permissionService *services.PermissionService
	auditService      *services.AuditService
}

func NewShareController(permissionService *services.PermissionService, auditService *services.AuditService) *ShareController {
	return &ShareController{permissionService: permissionService, auditService: auditService}
}

func (sc *ShareController) Share(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		utils.UnauthorizedResponse(c, err.Error())
		return
	}

	var req struct {
		ItemType    string `json:"itemType" binding:"required"`
		ItemID      uint   `json:"itemId" binding:"required"`
		UserID      uint   `json:"userId" binding:"required"`
		AccessLevel string `json:"accessLevel" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request data", err.Error())
		return
	}

	grant, err := sc.permissionService.Share(req.ItemType, req.ItemID, req.UserID, req.AccessLevel, userID)
	if err != nil {
		handleError(c, err, "Failed to share item")
		return
	}

	sc.auditService.Record(userID, services.AuditActionShare, req.ItemType, &req.ItemID,
		fmt.Sprintf("granted %s to user %d", req.AccessLevel, req.UserID), requestMeta(c))
	utils.CreatedResponse(c, "Item shared successfully", grant)
}

// ShareBulk applies one grant across many items. Failures on
// individual items do not abort the batch; each result carries its
// own outcome.
func (sc *ShareController) ShareBulk(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		utils.UnauthorizedResponse(c, err.Error())
		return
	}

	var req struct {
		Items       []services.ItemRef `json:"items" binding:"required,min=1"`
		UserID      uint               `json:"userId" binding:"required"`
		AccessLevel string             `json:"accessLevel" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request data", err.Error())
		return
	}

	results := sc.permissionService.ShareBulk(req.Items, req.UserID, req.AccessLevel, userID)

	granted := 0
	for _, r := range results {
		if r.Success {
			granted++
		}
	}
	sc.auditService.Record(userID, services.AuditActionShare, "selection", nil,
		fmt.Sprintf("granted %s to user %d on %d/%d item(s)", req.AccessLevel, req.UserID, granted, len(req.Items)), requestMeta(c))

	utils.SuccessResponse(c, fmt.Sprintf("%d/%d item(s) shared", granted, len(results)), results)
}

func (sc *ShareController) ListGrants(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		utils.UnauthorizedResponse(c, err.Error())
		return
	}

	itemType, ok := itemTypeParam(c)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	grants, err := sc.permissionService.ListGrants(itemType, itemID, userID)
	if err != nil {
		handleError(c, err, "Failed to list grants")
		return
	}

	utils.SuccessResponse(c, "Grants listed", grants)
}

func (sc *ShareController) Revoke(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		utils.UnauthorizedResponse(c, err.Error())
		return
	}

	itemType, ok := itemTypeParam(c)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	granteeID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	if err := sc.permissionService.Revoke(itemType, itemID, granteeID, userID); err != nil {
		handleError(c, err, "Failed to revoke grant")
		return
	}

	sc.auditService.Record(userID, services.AuditActionRevoke, itemType, &itemID,
		fmt.Sprintf("revoked access for user %d", granteeID), requestMeta(c))
	utils.SuccessResponse(c, "Grant revoked", nil)
}
