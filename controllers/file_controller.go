package controllers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"drivebox/models"
	"drivebox/services"
	"drivebox/utils"

	"github.com/gin-gonic/gin"
)

type FileController struct {
	fileService    *services.FileService
	trashService   *services.TrashService
	archiveService *services.ArchiveService
	auditService   *services.AuditService
}

func NewFileController(fileService *services.FileService, trashService *services.TrashService, archiveService *services.ArchiveService, auditService *services.AuditService) *FileController {
	return &FileController{
		fileService:    fileService,
		trashService:   trashService,
		archiveService: archiveService,
		auditService:   auditService,
	}
}

// UploadFiles accepts a multipart batch under the "files" field. An
// optional "relativePaths" field per file carries the client-side
// folder path, which is materialized under the destination folder.
func (fc *FileController) UploadFiles(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		utils.UnauthorizedResponse(c, err.Error())
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		utils.BadRequestResponse(c, "Invalid multipart form", err.Error())
		return
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		utils.BadRequestResponse(c, "No files provided", nil)
		return
	}

	var parentID *uint
	if raw := c.PostForm("folderId"); raw != "" {
		id, convErr := strconv.ParseUint(raw, 10, 32)
		if convErr != nil {
			utils.BadRequestResponse(c, "Invalid folderId", nil)
			return
		}
		v := uint(id)
		parentID = &v
	}

	created, err := fc.fileService.UploadFiles(userID, parentID, headers, form.Value["relativePaths"])
	if err != nil {
		handleError(c, err, "Failed to upload files")
		return
	}

	meta := requestMeta(c)
	for i := range created {
		fc.auditService.Record(userID, services.AuditActionUpload, "file", &created[i].ID, created[i].Name, meta)
	}

	utils.CreatedResponse(c, fmt.Sprintf("%d file(s) uploaded", len(created)), created)
}

// UploadArchive ingests a ZIP archive, recreating its folder tree and
// expanding nested archives. The archive itself is never stored.
func (fc *FileController) UploadArchive(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		utils.UnauthorizedResponse(c, err.Error())
		return
	}

	header, err := c.FormFile("archive")
	if err != nil {
		utils.BadRequestResponse(c, "No archive provided", err.Error())
		return
	}

	var parentID *uint
	if raw := c.PostForm("folderId"); raw != "" {
		id, convErr := strconv.ParseUint(raw, 10, 32)
		if convErr != nil {
			utils.BadRequestResponse(c, "Invalid folderId", nil)
			return
		}
		v := uint(id)
		parentID = &v
	}

	count, err := fc.archiveService.UploadArchive(userID, parentID, header, requestMeta(c))
	if err != nil {
		handleError(c, err, "Failed to ingest archive")
		return
	}

	utils.CreatedResponse(c, fmt.Sprintf("Archive ingested, %d file(s) created", count), gin.H{"filesCreated": count})
}

func (fc *FileController) ViewFile(c *gin.Context) {
	fc.serveFile(c, "inline")
}

func (fc *FileController) DownloadFile(c *gin.Context) {
	fc.serveFile(c, "attachment")
}

func (fc *FileController) serveFile(c *gin.Context, disposition string) {
	userID, err := getUserID(c)
	if err != nil {
		utils.UnauthorizedResponse(c, err.Error())
		return
	}

	fileID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	capability := models.AccessView
	if disposition == "attachment" {
		capability = models.AccessDownload
	}

	file, reader, err := fc.fileService.Open(fileID, userID, capability)
	if err != nil {
		handleError(c, err, "Failed to open file")
		return
	}
	defer reader.Close()

	c.Header("Content-Type", file.MimeType)
	c.Header("Content-Length", strconv.FormatInt(file.Size, 10))
	c.Header("Content-Disposition", fmt.Sprintf("%s; filename=%s", disposition, strconv.Quote(file.Name)))
	c.Status(http.StatusOK)

	if _, copyErr := io.Copy(c.Writer, reader); copyErr != nil {
		utils.LogError(fmt.Sprintf("Streaming file %d failed", fileID), copyErr)
		c.Abort()
	}
}

func (fc *FileController) RenameFile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		utils.UnauthorizedResponse(c, err.Error())
		return
	}

	fileID, ok := parseIDParam(c, "id")
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

	if err := fc.fileService.RenameFile(fileID, req.Name, userID); err != nil {
		handleError(c, err, "Failed to rename file")
		return
	}

	utils.SuccessResponse(c, "File renamed successfully", nil)
}

func (fc *FileController) MoveFile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		utils.UnauthorizedResponse(c, err.Error())
		return
	}

	fileID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		FolderID *uint `json:"folderId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request data", err.Error())
		return
	}

	if err := fc.fileService.MoveFile(fileID, req.FolderID, userID); err != nil {
		handleError(c, err, "Failed to move file")
		return
	}

	utils.SuccessResponse(c, "File moved successfully", nil)
}

func (fc *FileController) StarFile(c *gin.Context) {
	fc.setStar(c, true)
}

func (fc *FileController) UnstarFile(c *gin.Context) {
	fc.setStar(c, false)
}

func (fc *FileController) setStar(c *gin.Context, starred bool) {
	userID, err := getUserID(c)
	if err != nil {
		utils.UnauthorizedResponse(c, err.Error())
		return
	}

	fileID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := fc.fileService.SetStarred(fileID, userID, starred); err != nil {
		handleError(c, err, "Failed to update star")
		return
	}

	message := "File starred"
	if !starred {
		message = "File unstarred"
	}
	utils.SuccessResponse(c, message, nil)
}

func (fc *FileController) ListRecent(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		utils.UnauthorizedResponse(c, err.Error())
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if v, convErr := strconv.Atoi(raw); convErr == nil && v > 0 && v <= 100 {
			limit = v
		}
	}

	files, err := fc.fileService.ListRecent(userID, limit)
	if err != nil {
		handleError(c, err, "Failed to list recent files")
		return
	}

	utils.SuccessResponse(c, "Recent files listed", files)
}

func (fc *FileController) ListStarred(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		utils.UnauthorizedResponse(c, err.Error())
		return
	}

	files, err := fc.fileService.ListStarred(userID)
	if err != nil {
		handleError(c, err, "Failed to list starred files")
		return
	}

	utils.SuccessResponse(c, "Starred files listed", files)
}

func (fc *FileController) DeleteFile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		utils.UnauthorizedResponse(c, err.Error())
		return
	}

	fileID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := fc.trashService.SoftDeleteFile(fileID, userID); err != nil {
		handleError(c, err, "Failed to delete file")
		return
	}

	fc.auditService.Record(userID, services.AuditActionDelete, "file", &fileID, "moved to trash", requestMeta(c))
	utils.SuccessResponse(c, "File moved to trash", nil)
}

// BulkDownload streams a ZIP of an arbitrary selection of files and
// folders. Items the caller cannot download are silently skipped.
func (fc *FileController) BulkDownload(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		utils.UnauthorizedResponse(c, err.Error())
		return
	}

	var req struct {
		Items []services.ItemRef `json:"items" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request data", err.Error())
		return
	}

	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", `attachment; filename="download.zip"`)
	c.Status(http.StatusOK)

	if err := fc.archiveService.ExportSelection(c.Request.Context(), c.Writer, req.Items, userID); err != nil {
		utils.LogError("Bulk download failed", err)
		c.Abort()
		return
	}

	fc.auditService.Record(userID, services.AuditActionBulkDownload, "selection", nil, fmt.Sprintf("%d item(s)", len(req.Items)), requestMeta(c))
}

func (fc *FileController) Search(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		utils.UnauthorizedResponse(c, err.Error())
		return
	}

	query := c.Query("q")
	if query == "" {
		utils.BadRequestResponse(c, "Query parameter q is required", nil)
		return
	}

	result, err := fc.fileService.Search(userID, query)
	if err != nil {
		handleError(c, err, "Failed to search")
		return
	}

	utils.SuccessResponse(c, "Search completed", result)
}
