package repositories

import (
	"drivebox/models"

	"gorm.io/gorm"
)

type PermissionRepository struct {
	db *gorm.DB
}

func NewPermissionRepository(db *gorm.DB) *PermissionRepository {
	return &PermissionRepository{db: db}
}

func (r *PermissionRepository) Create(perm *models.Permission) error {
	return r.db.Create(perm).Error
}

func itemColumn(itemType string) string {
	if itemType == models.ItemTypeFile {
		return "file_id"
	}
	return "folder_id"
}

// ListForItem returns every grant on one file or folder.
func (r *PermissionRepository) ListForItem(itemType string, itemID uint) ([]models.Permission, error) {
	var perms []models.Permission
	err := r.db.Where(itemColumn(itemType)+" = ?", itemID).Find(&perms).Error
	if err != nil {
		return nil, err
	}
	return perms, nil
}

// ListForUserItem returns the grants one user holds on one item.
// Duplicate grants are possible and all apply.
func (r *PermissionRepository) ListForUserItem(itemType string, itemID, userID uint) ([]models.Permission, error) {
	var perms []models.Permission
	err := r.db.
		Where(itemColumn(itemType)+" = ? AND user_id = ?", itemID, userID).
		Find(&perms).Error
	if err != nil {
		return nil, err
	}
	return perms, nil
}

// ListForUser returns every grant held by the user, across all items.
func (r *PermissionRepository) ListForUser(userID uint) ([]models.Permission, error) {
	var perms []models.Permission
	if err := r.db.Where("user_id = ?", userID).Find(&perms).Error; err != nil {
		return nil, err
	}
	return perms, nil
}

func (r *PermissionRepository) DeleteForUserItem(itemType string, itemID, userID uint) error {
	return r.db.
		Where(itemColumn(itemType)+" = ? AND user_id = ?", itemID, userID).
		Delete(&models.Permission{}).Error
}

// DeleteByItem removes every grant on an item; used when the item is purged.
func (r *PermissionRepository) DeleteByItem(itemType string, itemID uint) error {
	return r.db.Where(itemColumn(itemType)+" = ?", itemID).Delete(&models.Permission{}).Error
}
