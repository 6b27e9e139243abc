package services

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"
	"time"

	"drivebox/config"
	"drivebox/models"
	"drivebox/repositories"
	"drivebox/utils"

	"gorm.io/gorm"
)

type FileService struct {
	fileRepo          *repositories.FileRepository
	folderRepo        *repositories.FolderRepository
	folderService     *FolderService
	permissionService *PermissionService
	storage           *StorageService
}

func NewFileService(fileRepo *repositories.FileRepository, folderRepo *repositories.FolderRepository, folderService *FolderService, permissionService *PermissionService, storage *StorageService) *FileService {
	return &FileService{
		fileRepo:          fileRepo,
		folderRepo:        folderRepo,
		folderService:     folderService,
		permissionService: permissionService,
		storage:           storage,
	}
}

// UploadFiles stores a batch of uploaded files under parentID. When the
// client supplies per-file relative paths (a folder-tree upload), the
// intermediate folders are materialized on the way. A per-file failure
// aborts the batch; already-stored files from the batch are kept.
func (s *FileService) UploadFiles(userID uint, parentID *uint, headers []*multipart.FileHeader, relativePaths []string) ([]models.File, error) {
	if len(headers) == 0 {
		return nil, fmt.Errorf("%w: no files to upload", ErrValidation)
	}
	if len(relativePaths) > 0 && len(relativePaths) != len(headers) {
		return nil, fmt.Errorf("%w: relative path count does not match file count", ErrValidation)
	}

	if parentID != nil {
		parent, err := s.folderRepo.GetByID(*parentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("destination folder: %w", ErrNotFound)
			}
			return nil, err
		}
		if parent.IsDeleted {
			return nil, fmt.Errorf("destination folder: %w", ErrNotFound)
		}
		if !s.permissionService.CheckAccess(*parentID, models.ItemTypeFolder, userID, models.AccessEdit) {
			return nil, ErrForbidden
		}
	}

	maxFileSize := int64(100 * 1024 * 1024)
	if config.AppConfig != nil {
		maxFileSize = config.AppConfig.MaxFileSize
	}
	for _, header := range headers {
		if header.Size > maxFileSize {
			return nil, fmt.Errorf("%w: file %s exceeds maximum size of %d bytes", ErrValidation, header.Filename, maxFileSize)
		}
	}

	var uploaded []models.File
	for i, header := range headers {
		folderID := parentID
		name := header.Filename

		if len(relativePaths) > 0 && relativePaths[i] != "" {
			relPath := relativePaths[i]
			dir := path.Dir(strings.ReplaceAll(relPath, "\\", "/"))
			if dir != "." && dir != "/" {
				resolved, err := s.folderService.GetOrCreateFolderPath(dir, parentID, userID)
				if err != nil {
					return uploaded, err
				}
				folderID = resolved
			}
			name = path.Base(strings.ReplaceAll(relPath, "\\", "/"))
		}

		file, err := s.storeOne(userID, folderID, name, header)
		if err != nil {
			return uploaded, err
		}
		uploaded = append(uploaded, *file)
	}

	return uploaded, nil
}

func (s *FileService) storeOne(userID uint, folderID *uint, name string, header *multipart.FileHeader) (*models.File, error) {
	src, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file %s: %w", name, err)
	}
	defer src.Close()

	locator, size, err := s.storage.Put(src, name)
	if err != nil {
		return nil, err
	}

	file := &models.File{
		Name:        name,
		FolderID:    folderID,
		Size:        size,
		MimeType:    MimeTypeByExtension(name),
		StoragePath: locator,
		CreatedBy:   userID,
	}
	if err := s.fileRepo.Create(file); err != nil {
		// Keep the store consistent with the rows that exist.
		if delErr := s.storage.Delete(locator); delErr != nil {
			return nil, delErr
		}
		return nil, err
	}
	return file, nil
}

// Open returns the file's metadata and a reader over its content.
// capability is "view" for inline display and "download" for
// attachments. The caller must close the reader on every exit path.
func (s *FileService) Open(fileID, userID uint, capability string) (*models.File, io.ReadCloser, error) {
	file, err := s.fileRepo.GetByID(fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	if file.IsDeleted {
		return nil, nil, ErrNotFound
	}
	if !s.permissionService.CheckAccess(fileID, models.ItemTypeFile, userID, capability) {
		return nil, nil, ErrForbidden
	}

	rc, err := s.storage.Get(file.StoragePath)
	if err != nil {
		return nil, nil, err
	}

	s.touchAccess(file.ID)
	return file, rc, nil
}

// touchAccess stamps lastAccessedAt for the recent-files listing.
// Best effort.
func (s *FileService) touchAccess(fileID uint) {
	now := time.Now()
	_ = s.fileRepo.Update(fileID, map[string]interface{}{"last_accessed_at": &now})
}

func (s *FileService) RenameFile(fileID uint, newName string, userID uint) error {
	if err := utils.ValidateItemName(newName); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	file, err := s.fileRepo.GetByID(fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if file.IsDeleted {
		return ErrNotFound
	}
	if !s.permissionService.CheckAccess(fileID, models.ItemTypeFile, userID, models.AccessEdit) {
		return ErrForbidden
	}

	return s.fileRepo.Update(fileID, map[string]interface{}{
		"name":      newName,
		"mime_type": MimeTypeByExtension(newName),
	})
}

// MoveFile reparents a file to another folder (nil = root).
func (s *FileService) MoveFile(fileID uint, newFolderID *uint, userID uint) error {
	file, err := s.fileRepo.GetByID(fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if file.IsDeleted {
		return ErrNotFound
	}
	if !s.permissionService.CheckAccess(fileID, models.ItemTypeFile, userID, models.AccessEdit) {
		return ErrForbidden
	}

	if newFolderID != nil {
		folder, err := s.folderRepo.GetByID(*newFolderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("destination folder: %w", ErrNotFound)
			}
			return err
		}
		if folder.IsDeleted {
			return fmt.Errorf("destination folder: %w", ErrNotFound)
		}
		if !s.permissionService.CheckAccess(*newFolderID, models.ItemTypeFolder, userID, models.AccessEdit) {
			return ErrForbidden
		}
	}

	return s.fileRepo.Update(fileID, map[string]interface{}{"folder_id": newFolderID})
}

// SetStarred flips the star flag. Owner only.
func (s *FileService) SetStarred(fileID, userID uint, starred bool) error {
	file, err := s.fileRepo.GetByID(fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if file.IsDeleted {
		return ErrNotFound
	}
	if file.CreatedBy != userID {
		return ErrForbidden
	}

	return s.fileRepo.Update(fileID, map[string]interface{}{"is_starred": starred})
}

func (s *FileService) ListRecent(userID uint, limit int) ([]models.File, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.fileRepo.ListRecent(userID, limit)
}

func (s *FileService) ListStarred(userID uint) ([]models.File, error) {
	return s.fileRepo.ListStarred(userID)
}

// SearchResult groups name matches over the caller's own items.
type SearchResult struct {
	Folders []models.Folder `json:"folders"`
	Files   []models.File   `json:"files"`
}

func (s *FileService) Search(userID uint, query string) (*SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: search query cannot be empty", ErrValidation)
	}

	folders, err := s.folderRepo.SearchByName(userID, query)
	if err != nil {
		return nil, err
	}
	files, err := s.fileRepo.SearchByName(userID, query)
	if err != nil {
		return nil, err
	}
	result := &SearchResult{Folders: folders, Files: files}

	// Items shared with the user match too, wherever they live.
	grants, err := s.permissionService.ListSharedWithUser(userID)
	if err != nil {
		return nil, err
	}
	lowered := strings.ToLower(query)
	for _, g := range grants {
		switch {
		case g.FileID != nil:
			file, err := s.fileRepo.GetByID(*g.FileID)
			if err != nil || file.IsDeleted || file.CreatedBy == userID {
				continue
			}
			if strings.Contains(strings.ToLower(file.Name), lowered) {
				result.Files = append(result.Files, *file)
			}
		case g.FolderID != nil:
			folder, err := s.folderRepo.GetByID(*g.FolderID)
			if err != nil || folder.IsDeleted || folder.OwnerID == userID {
				continue
			}
			if strings.Contains(strings.ToLower(folder.Name), lowered) {
				result.Folders = append(result.Folders, *folder)
			}
		}
	}

	return result, nil
}

// MimeTypeByExtension maps a file name to a MIME type by extension
// lookup, falling back to application/octet-stream.
func MimeTypeByExtension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".svg":
		return "image/svg+xml"
	case ".pdf":
		return "application/pdf"
	case ".txt":
		return "text/plain"
	case ".md":
		return "text/markdown"
	case ".html", ".htm":
		return "text/html"
	case ".css":
		return "text/css"
	case ".js":
		return "text/javascript"
	case ".json":
		return "application/json"
	case ".csv":
		return "text/csv"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".xls":
		return "application/vnd.ms-excel"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".ppt":
		return "application/vnd.ms-powerpoint"
	case ".pptx":
		return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	case ".zip":
		return "application/zip"
	case ".tar":
		return "application/x-tar"
	case ".gz":
		return "application/gzip"
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	default:
		return "application/octet-stream"
	}
}
