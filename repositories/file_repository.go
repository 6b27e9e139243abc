package repositories

import (
	"drivebox/models"

	"gorm.io/gorm"
)

type FileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{db: db}
}

func (r *FileRepository) Create(file *models.File) error {
	return r.db.Create(file).Error
}

// GetByID returns the file regardless of its deletion flag.
func (r *FileRepository) GetByID(id uint) (*models.File, error) {
	var file models.File
	if err := r.db.First(&file, id).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *FileRepository) Update(id uint, fields map[string]interface{}) error {
	return r.db.Model(&models.File{}).Where("id = ?", id).Updates(fields).Error
}

func (r *FileRepository) Delete(id uint) error {
	return r.db.Delete(&models.File{}, id).Error
}

// ListByFolder returns non-deleted files directly under folderID
// (nil = root level).
func (r *FileRepository) ListByFolder(folderID *uint) ([]models.File, error) {
	var files []models.File
	q := r.db.Where("is_deleted = ?", false).Order("name")
	if folderID == nil {
		q = q.Where("folder_id IS NULL")
	} else {
		q = q.Where("folder_id = ?", *folderID)
	}
	if err := q.Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

// ListByFolderOwned returns the subject's own non-deleted files
// directly under folderID (nil = root level).
func (r *FileRepository) ListByFolderOwned(folderID *uint, ownerID uint) ([]models.File, error) {
	var files []models.File
	q := r.db.Where("created_by = ? AND is_deleted = ?", ownerID, false).Order("name")
	if folderID == nil {
		q = q.Where("folder_id IS NULL")
	} else {
		q = q.Where("folder_id = ?", *folderID)
	}
	if err := q.Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

// ListRootOwned returns the subject's own non-deleted top-level files.
func (r *FileRepository) ListRootOwned(ownerID uint) ([]models.File, error) {
	var files []models.File
	err := r.db.
		Where("created_by = ? AND folder_id IS NULL AND is_deleted = ?", ownerID, false).
		Order("name").
		Find(&files).Error
	if err != nil {
		return nil, err
	}
	return files, nil
}

// ListByFolderAny returns every file row under folderID, deleted or not.
// Used by the permanent purge, which must sweep the whole subtree.
func (r *FileRepository) ListByFolderAny(folderID uint) ([]models.File, error) {
	var files []models.File
	if err := r.db.Where("folder_id = ?", folderID).Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

// DeleteByFolder removes every file row scoped to folderID.
func (r *FileRepository) DeleteByFolder(folderID uint) error {
	return r.db.Where("folder_id = ?", folderID).Delete(&models.File{}).Error
}

func (r *FileRepository) FindChildByName(folderID *uint, name string) (*models.File, error) {
	var file models.File
	q := r.db.Where("name = ? AND is_deleted = ?", name, false)
	if folderID == nil {
		q = q.Where("folder_id IS NULL")
	} else {
		q = q.Where("folder_id = ?", *folderID)
	}
	if err := q.First(&file).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *FileRepository) ListRecent(userID uint, limit int) ([]models.File, error) {
	var files []models.File
	err := r.db.
		Where("created_by = ? AND is_deleted = ? AND last_accessed_at IS NOT NULL", userID, false).
		Order("last_accessed_at DESC").
		Limit(limit).
		Find(&files).Error
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (r *FileRepository) ListStarred(userID uint) ([]models.File, error) {
	var files []models.File
	err := r.db.
		Where("created_by = ? AND is_deleted = ? AND is_starred = ?", userID, false, true).
		Order("name").
		Find(&files).Error
	if err != nil {
		return nil, err
	}
	return files, nil
}

// ListDeleted returns trash candidates with the same actor-or-legacy-owner
// rule as FolderRepository.ListDeleted.
func (r *FileRepository) ListDeleted(userID uint) ([]models.File, error) {
	var files []models.File
	err := r.db.
		Where("is_deleted = ?", true).
		Where("deleted_by = ? OR (deleted_by IS NULL AND created_by = ?)", userID, userID).
		Order("deleted_at DESC").
		Find(&files).Error
	if err != nil {
		return nil, err
	}
	return files, nil
}

// SumSizeByFolder totals the sizes of non-deleted files directly in the
// folder. Deliberately shallow; recursion is the caller's concern.
func (r *FileRepository) SumSizeByFolder(folderID *uint) (int64, error) {
	var total int64
	q := r.db.Model(&models.File{}).Where("is_deleted = ?", false)
	if folderID == nil {
		q = q.Where("folder_id IS NULL")
	} else {
		q = q.Where("folder_id = ?", *folderID)
	}
	if err := q.Select("COALESCE(SUM(size), 0)").Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *FileRepository) SearchByName(ownerID uint, query string) ([]models.File, error) {
	var files []models.File
	err := r.db.
		Where("created_by = ? AND is_deleted = ? AND name LIKE ?", ownerID, false, "%"+query+"%").
		Order("name").
		Find(&files).Error
	if err != nil {
		return nil, err
	}
	return files, nil
}
