package services

import (
	"errors"
	"fmt"
	"time"

	"drivebox/config"
	"drivebox/models"
	"drivebox/repositories"
	"drivebox/utils"

	"gorm.io/gorm"
)

type TrashService struct {
	fileRepo          *repositories.FileRepository
	folderRepo        *repositories.FolderRepository
	permRepo          *repositories.PermissionRepository
	permissionService *PermissionService
	storage           *StorageService
}

func NewTrashService(fileRepo *repositories.FileRepository, folderRepo *repositories.FolderRepository, permRepo *repositories.PermissionRepository, permissionService *PermissionService, storage *StorageService) *TrashService {
	return &TrashService{
		fileRepo:          fileRepo,
		folderRepo:        folderRepo,
		permRepo:          permRepo,
		permissionService: permissionService,
		storage:           storage,
	}
}

// SoftDeleteFile flags the file as deleted, recording when and by whom.
// Reversible; the backing content object is untouched.
func (s *TrashService) SoftDeleteFile(fileID, userID uint) error {
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

	now := time.Now()
	return s.fileRepo.Update(fileID, map[string]interface{}{
		"is_deleted": true,
		"deleted_at": &now,
		"deleted_by": &userID,
	})
}

// SoftDeleteFolder flags the folder row only. Descendants are not
// marked: the listing layer simply refuses to descend into a deleted
// parent, so restoring the parent implicitly restores their visibility.
// The RECURSIVE_DELETE flag switches on the deep variant.
func (s *TrashService) SoftDeleteFolder(folderID, userID uint) error {
	folder, err := s.folderRepo.GetByID(folderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if folder.IsDeleted {
		return ErrNotFound
	}
	if !s.permissionService.CheckAccess(folderID, models.ItemTypeFolder, userID, models.AccessEdit) {
		return ErrForbidden
	}

	now := time.Now()
	fields := map[string]interface{}{
		"is_deleted": true,
		"deleted_at": &now,
		"deleted_by": &userID,
	}
	if err := s.folderRepo.Update(folderID, fields); err != nil {
		return err
	}

	if config.AppConfig != nil && config.AppConfig.RecursiveDeleteEnabled {
		return s.softDeleteDescendants(folderID, userID, now)
	}
	return nil
}

func (s *TrashService) softDeleteDescendants(folderID, userID uint, now time.Time) error {
	fields := map[string]interface{}{
		"is_deleted": true,
		"deleted_at": &now,
		"deleted_by": &userID,
	}

	files, err := s.fileRepo.ListByFolder(&folderID)
	if err != nil {
		return err
	}
	for _, file := range files {
		if err := s.fileRepo.Update(file.ID, fields); err != nil {
			return err
		}
	}

	children, err := s.folderRepo.ListChildren(&folderID)
	if err != nil {
		return err
	}
	for _, child := range children {
		if err := s.folderRepo.Update(child.ID, fields); err != nil {
			return err
		}
		if err := s.softDeleteDescendants(child.ID, userID, now); err != nil {
			return err
		}
	}
	return nil
}

// RestoreFile clears the deletion flags. The file must be in the
// caller's trash.
func (s *TrashService) RestoreFile(fileID, userID uint) error {
	file, err := s.fileRepo.GetByID(fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if !s.inUserTrash(file.IsDeleted, file.DeletedBy, file.CreatedBy, userID) {
		return ErrNotFound
	}

	return s.fileRepo.Update(fileID, map[string]interface{}{
		"is_deleted": false,
		"deleted_at": nil,
		"deleted_by": nil,
	})
}

// RestoreFolder clears the deletion flags on the folder row. Descendants
// that were never individually marked become visible again for free.
func (s *TrashService) RestoreFolder(folderID, userID uint) error {
	folder, err := s.folderRepo.GetByID(folderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if !s.inUserTrash(folder.IsDeleted, folder.DeletedBy, folder.OwnerID, userID) {
		return ErrNotFound
	}

	return s.folderRepo.Update(folderID, map[string]interface{}{
		"is_deleted": false,
		"deleted_at": nil,
		"deleted_by": nil,
	})
}

// PurgeFile irreversibly removes the file: DB row first, then the
// backing object, which may already be absent (logged, not fatal).
func (s *TrashService) PurgeFile(fileID, userID uint) error {
	file, err := s.fileRepo.GetByID(fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if !s.inUserTrash(file.IsDeleted, file.DeletedBy, file.CreatedBy, userID) {
		return ErrNotFound
	}

	if err := s.fileRepo.Delete(fileID); err != nil {
		return err
	}
	if err := s.permRepo.DeleteByItem(models.ItemTypeFile, fileID); err != nil {
		utils.LogError("failed to drop grants for purged file", err)
	}
	if err := s.storage.Delete(file.StoragePath); err != nil {
		utils.LogError(fmt.Sprintf("failed to delete content for purged file %d", fileID), err)
	}
	return nil
}

// PurgeFolder irreversibly removes the folder and its entire subtree,
// depth-first with children before self. Every file row found at any
// level is collected, deleted, and its backing object removed
// afterwards.
func (s *TrashService) PurgeFolder(folderID, userID uint) (int, error) {
	folder, err := s.folderRepo.GetByID(folderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	if !s.inUserTrash(folder.IsDeleted, folder.DeletedBy, folder.OwnerID, userID) {
		return 0, ErrNotFound
	}

	files, err := s.purgeFolderRows(folderID)
	if err != nil {
		return 0, err
	}

	for _, file := range files {
		if err := s.storage.Delete(file.StoragePath); err != nil {
			utils.LogError(fmt.Sprintf("failed to delete content for purged file %d", file.ID), err)
		}
	}
	return len(files), nil
}

// purgeFolderRows deletes the subtree's rows and returns the flat list
// of every file that existed anywhere in it. This is the one lifecycle
// operation that is truly recursive.
func (s *TrashService) purgeFolderRows(folderID uint) ([]models.File, error) {
	var collected []models.File

	children, err := s.folderRepo.ListChildrenAny(folderID)
	if err != nil {
		return nil, err
	}
	for _, child := range children {
		childFiles, err := s.purgeFolderRows(child.ID)
		if err != nil {
			return nil, err
		}
		collected = append(collected, childFiles...)
	}

	files, err := s.fileRepo.ListByFolderAny(folderID)
	if err != nil {
		return nil, err
	}
	collected = append(collected, files...)

	for _, file := range files {
		if err := s.permRepo.DeleteByItem(models.ItemTypeFile, file.ID); err != nil {
			utils.LogError("failed to drop grants for purged file", err)
		}
	}
	if err := s.fileRepo.DeleteByFolder(folderID); err != nil {
		return nil, err
	}
	if err := s.permRepo.DeleteByItem(models.ItemTypeFolder, folderID); err != nil {
		utils.LogError("failed to drop grants for purged folder", err)
	}
	if err := s.folderRepo.Delete(folderID); err != nil {
		return nil, err
	}

	return collected, nil
}

// ListTrash enumerates the caller's trash: items they deleted, plus
// legacy deleted rows with no recorded actor that they own.
func (s *TrashService) ListTrash(userID uint) ([]models.TrashItem, error) {
	retention := 30 * 24 * time.Hour
	if config.AppConfig != nil {
		retention = config.AppConfig.TrashRetention
	}

	var items []models.TrashItem

	files, err := s.fileRepo.ListDeleted(userID)
	if err != nil {
		return nil, err
	}
	for _, file := range files {
		var deletedAt time.Time
		if file.DeletedAt != nil {
			deletedAt = *file.DeletedAt
		}
		items = append(items, models.TrashItem{
			ItemID:      file.ID,
			ItemType:    models.ItemTypeFile,
			Name:        file.Name,
			OwnerID:     file.CreatedBy,
			Size:        file.Size,
			DeletedAt:   deletedAt,
			AutoPurgeAt: deletedAt.Add(retention),
		})
	}

	folders, err := s.folderRepo.ListDeleted(userID)
	if err != nil {
		return nil, err
	}
	for _, folder := range folders {
		var deletedAt time.Time
		if folder.DeletedAt != nil {
			deletedAt = *folder.DeletedAt
		}
		items = append(items, models.TrashItem{
			ItemID:      folder.ID,
			ItemType:    models.ItemTypeFolder,
			Name:        folder.Name,
			OwnerID:     folder.OwnerID,
			DeletedAt:   deletedAt,
			AutoPurgeAt: deletedAt.Add(retention),
		})
	}

	return items, nil
}

// EmptyTrash permanently purges everything in the caller's trash.
// Per-item failures are logged and do not abort the sweep.
func (s *TrashService) EmptyTrash(userID uint) (int, error) {
	items, err := s.ListTrash(userID)
	if err != nil {
		return 0, err
	}

	purged := 0
	for _, item := range items {
		switch item.ItemType {
		case models.ItemTypeFile:
			if err := s.PurgeFile(item.ItemID, userID); err != nil {
				if !errors.Is(err, ErrNotFound) {
					utils.LogError(fmt.Sprintf("failed to purge file %d from trash", item.ItemID), err)
				}
				continue
			}
			purged++
		case models.ItemTypeFolder:
			if _, err := s.PurgeFolder(item.ItemID, userID); err != nil {
				if !errors.Is(err, ErrNotFound) {
					utils.LogError(fmt.Sprintf("failed to purge folder %d from trash", item.ItemID), err)
				}
				continue
			}
			purged++
		}
	}
	return purged, nil
}

// inUserTrash applies the trash visibility rule: the item's own
// deletedBy matches the user, or a legacy row with no recorded actor is
// owned by them.
func (s *TrashService) inUserTrash(isDeleted bool, deletedBy *uint, ownerID, userID uint) bool {
	if !isDeleted {
		return false
	}
	if deletedBy != nil {
		return *deletedBy == userID
	}
	return ownerID == userID
}
