package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"drivebox/services"
	"drivebox/utils"

	"github.com/gin-gonic/gin"
)

type FolderController struct {
	folderService  *services.FolderService
	trashService   *services.TrashService
	archiveService *services.ArchiveService
	auditService   *services.AuditService
}

func NewFolderController(folderService *services.FolderService, trashService *services.TrashService, archiveService *services.ArchiveService, auditService *services.AuditService) *FolderController {
	return &FolderController{
		folderService:  folderService,
		trashService:   trashService,
		archiveService: archiveService,
		auditService:   auditService,
	}
}

func (fc *FolderController) CreateFolder(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		utils.UnauthorizedResponse(c, err.Error())
		return
	}

	var req struct {
		Name     string `json:"name" binding:"required"`
		ParentID *uint  `json:"parentId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request data", err.Error())
		return
	}

	folder, err := fc.folderService.CreateFolder(req.Name, req.ParentID, userID)
	if err != nil {
		handleError(c, err, "Failed to create folder")
		return
	}

	utils.CreatedResponse(c, "Folder created successfully", folder)
}

func (fc *FolderController) ListRoot(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		utils.UnauthorizedResponse(c, err.Error())
		return
	}

	// Expand freshly uploaded archives at the top level before listing.
	fc.archiveService.AutoExtract(nil, userID, requestMeta(c))

	contents, err := fc.folderService.ListRoot(userID)
	if err != nil {
		handleError(c, err, "Failed to list root folder")
		return
	}

	utils.SuccessResponse(c, "Root folder listed", contents)
}

func (fc *FolderController) GetFolderContents(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		utils.UnauthorizedResponse(c, err.Error())
		return
	}

	folderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	fc.archiveService.AutoExtract(&folderID, userID, requestMeta(c))

	contents, err := fc.folderService.ListFolder(folderID, userID)
	if err != nil {
		handleError(c, err, "Failed to list folder")
		return
	}

	utils.SuccessResponse(c, "Folder listed", contents)
}

func (fc *FolderController) RenameFolder(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		utils.UnauthorizedResponse(c, err.Error())
		return
	}

	folderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request data", err.Error())
		return
	}

	if err := fc.folderService.RenameFolder(folderID, req.Name, userID); err != nil {
		handleError(c, err, "Failed to rename folder")
		return
	}

	utils.SuccessResponse(c, "Folder renamed successfully", nil)
}

func (fc *FolderController) MoveFolder(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		utils.UnauthorizedResponse(c, err.Error())
		return
	}

	folderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		ParentID *uint `json:"parentId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request data", err.Error())
		return
	}

	if err := fc.folderService.MoveFolder(folderID, req.ParentID, userID); err != nil {
		handleError(c, err, "Failed to move folder")
		return
	}

	utils.SuccessResponse(c, "Folder moved successfully", nil)
}

func (fc *FolderController) DeleteFolder(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		utils.UnauthorizedResponse(c, err.Error())
		return
	}

	folderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := fc.trashService.SoftDeleteFolder(folderID, userID); err != nil {
		handleError(c, err, "Failed to delete folder")
		return
	}

	fc.auditService.Record(userID, services.AuditActionDelete, "folder", &folderID, "moved to trash", requestMeta(c))
	utils.SuccessResponse(c, "Folder moved to trash", nil)
}

func (fc *FolderController) FolderSize(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		utils.UnauthorizedResponse(c, err.Error())
		return
	}

	folderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	size, err := fc.folderService.FolderSize(folderID, userID)
	if err != nil {
		handleError(c, err, "Failed to compute folder size")
		return
	}

	utils.SuccessResponse(c, "Folder size computed", gin.H{"folderId": folderID, "size": size})
}

func (fc *FolderController) DownloadFolder(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		utils.UnauthorizedResponse(c, err.Error())
		return
	}

	folderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	// Access is checked before any response bytes go out so a denied
	// subject gets a real 403 instead of an empty 200 stream.
	folder, err := fc.folderService.GetFolder(folderID, userID)
	if err != nil {
		handleError(c, err, "Failed to load folder")
		return
	}

	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", strconv.Quote(folder.Name+".zip")))
	c.Status(http.StatusOK)

	if err := fc.archiveService.ExportFolder(c.Request.Context(), c.Writer, folderID, userID); err != nil {
		// Headers are already out, so the best we can do is log and abort.
		utils.LogError(fmt.Sprintf("Folder download for folder %d failed", folderID), err)
		c.Abort()
		return
	}

	fc.auditService.Record(userID, services.AuditActionBulkDownload, "folder", &folderID, folder.Name+".zip", requestMeta(c))
}
