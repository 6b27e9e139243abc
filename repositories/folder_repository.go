package repositories

import (
	"drivebox/models"

	"gorm.io/gorm"
)

type FolderRepository struct {
	db *gorm.DB
}

func NewFolderRepository(db *gorm.DB) *FolderRepository {
	return &FolderRepository{db: db}
}

func (r *FolderRepository) Create(folder *models.Folder) error {
	return r.db.Create(folder).Error
}

// GetByID returns the folder regardless of its deletion flag; callers
// decide whether a soft-deleted row counts.
func (r *FolderRepository) GetByID(id uint) (*models.Folder, error) {
	var folder models.Folder
	if err := r.db.First(&folder, id).Error; err != nil {
		return nil, err
	}
	return &folder, nil
}

func (r *FolderRepository) Update(id uint, fields map[string]interface{}) error {
	return r.db.Model(&models.Folder{}).Where("id = ?", id).Updates(fields).Error
}

func (r *FolderRepository) Delete(id uint) error {
	return r.db.Delete(&models.Folder{}, id).Error
}

// ListChildren returns the non-deleted structural children of parentID
// (nil = root level).
func (r *FolderRepository) ListChildren(parentID *uint) ([]models.Folder, error) {
	var folders []models.Folder
	q := r.db.Where("is_deleted = ?", false).Order("name")
	if parentID == nil {
		q = q.Where("parent_id IS NULL")
	} else {
		q = q.Where("parent_id = ?", *parentID)
	}
	if err := q.Find(&folders).Error; err != nil {
		return nil, err
	}
	return folders, nil
}

// ListChildrenAny returns every child row, deleted or not. Used by the
// permanent purge, which must sweep the whole subtree.
func (r *FolderRepository) ListChildrenAny(parentID uint) ([]models.Folder, error) {
	var folders []models.Folder
	if err := r.db.Where("parent_id = ?", parentID).Find(&folders).Error; err != nil {
		return nil, err
	}
	return folders, nil
}

// ListRootOwned returns the subject's own non-deleted top-level folders.
func (r *FolderRepository) ListRootOwned(ownerID uint) ([]models.Folder, error) {
	var folders []models.Folder
	err := r.db.
		Where("owner_id = ? AND parent_id IS NULL AND is_deleted = ?", ownerID, false).
		Order("name").
		Find(&folders).Error
	if err != nil {
		return nil, err
	}
	return folders, nil
}

// FindChildByName looks up a non-deleted child folder by exact name.
func (r *FolderRepository) FindChildByName(parentID *uint, name string) (*models.Folder, error) {
	var folder models.Folder
	q := r.db.Where("name = ? AND is_deleted = ?", name, false)
	if parentID == nil {
		q = q.Where("parent_id IS NULL")
	} else {
		q = q.Where("parent_id = ?", *parentID)
	}
	if err := q.First(&folder).Error; err != nil {
		return nil, err
	}
	return &folder, nil
}

// ListDeleted returns trash candidates: folders the user deleted, plus
// legacy rows flagged deleted with no recorded actor that the user owns.
func (r *FolderRepository) ListDeleted(userID uint) ([]models.Folder, error) {
	var folders []models.Folder
	err := r.db.
		Where("is_deleted = ?", true).
		Where("deleted_by = ? OR (deleted_by IS NULL AND owner_id = ?)", userID, userID).
		Order("deleted_at DESC").
		Find(&folders).Error
	if err != nil {
		return nil, err
	}
	return folders, nil
}

func (r *FolderRepository) SearchByName(ownerID uint, query string) ([]models.Folder, error) {
	var folders []models.Folder
	err := r.db.
		Where("owner_id = ? AND is_deleted = ? AND name LIKE ?", ownerID, false, "%"+query+"%").
		Order("name").
		Find(&folders).Error
	if err != nil {
		return nil, err
	}
	return folders, nil
}
