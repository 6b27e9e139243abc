package controllers

import (
	"fmt"

	"drivebox/models"
	"drivebox/services"
	"drivebox/utils"

	"github.com/gin-gonic/gin"
)

type TrashController struct {
	trashService *services.TrashService
	auditService *services.AuditService
}

func NewTrashController(trashService *services.TrashService, auditService *services.AuditService) *TrashController {
	return &TrashController{trashService: trashService, auditService: auditService}
}

func itemTypeParam(c *gin.Context) (string, bool) {
	itemType := c.Param("type")
	if itemType != models.ItemTypeFile && itemType != models.ItemTypeFolder {
		utils.BadRequestResponse(c, "Item type must be 'file' or 'folder'", nil)
		return "", false
	}
	return itemType, true
}

func (tc *TrashController) ListTrash(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		utils.UnauthorizedResponse(c, err.Error())
		return
	}

	items, err := tc.trashService.ListTrash(userID)
	if err != nil {
		handleError(c, err, "Failed to list trash")
		return
	}

	utils.SuccessResponse(c, "Trash listed", items)
}

func (tc *TrashController) Restore(c *gin.Context) {
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

	if itemType == models.ItemTypeFile {
		err = tc.trashService.RestoreFile(itemID, userID)
	} else {
		err = tc.trashService.RestoreFolder(itemID, userID)
	}
	if err != nil {
		handleError(c, err, "Failed to restore item")
		return
	}

	tc.auditService.Record(userID, services.AuditActionRestore, itemType, &itemID, "restored from trash", requestMeta(c))
	utils.SuccessResponse(c, "Item restored", nil)
}

func (tc *TrashController) Purge(c *gin.Context) {
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

	details := "permanently deleted"
	if itemType == models.ItemTypeFile {
		err = tc.trashService.PurgeFile(itemID, userID)
	} else {
		var purged int
		purged, err = tc.trashService.PurgeFolder(itemID, userID)
		if err == nil {
			details = fmt.Sprintf("permanently deleted, %d file(s) removed", purged)
		}
	}
	if err != nil {
		handleError(c, err, "Failed to delete item permanently")
		return
	}

	tc.auditService.Record(userID, services.AuditActionPurge, itemType, &itemID, details, requestMeta(c))
	utils.SuccessResponse(c, "Item permanently deleted", nil)
}

func (tc *TrashController) EmptyTrash(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		utils.UnauthorizedResponse(c, err.Error())
		return
	}

	purged, err := tc.trashService.EmptyTrash(userID)
	if err != nil {
		handleError(c, err, "Failed to empty trash")
		return
	}

	tc.auditService.Record(userID, services.AuditActionPurge, "trash", nil, fmt.Sprintf("%d item(s) purged", purged), requestMeta(c))
	utils.SuccessResponse(c, fmt.Sprintf("Trash emptied, %d item(s) removed", purged), nil)
}
