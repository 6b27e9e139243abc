package services

import (
	"errors"
	"fmt"

	"drivebox/models"
	"drivebox/repositories"

	"gorm.io/gorm"
)

type PermissionService struct {
	fileRepo   *repositories.FileRepository
	folderRepo *repositories.FolderRepository
	permRepo   *repositories.PermissionRepository
	userRepo   *repositories.UserRepository
}

func NewPermissionService(fileRepo *repositories.FileRepository, folderRepo *repositories.FolderRepository, permRepo *repositories.PermissionRepository, userRepo *repositories.UserRepository) *PermissionService {
	return &PermissionService{
		fileRepo:   fileRepo,
		folderRepo: folderRepo,
		permRepo:   permRepo,
		userRepo:   userRepo,
	}
}

// ItemRef identifies one file or folder in mixed-item requests.
type ItemRef struct {
	ID   uint   `json:"id" binding:"required"`
	Type string `json:"type" binding:"required"`
}

// GrantResult reports the per-item outcome of a bulk share.
type GrantResult struct {
	ID      uint   `json:"id"`
	Type    string `json:"type"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// CheckAccess decides whether the subject may exercise the capability on
// the item. Pure read, fail-closed: a missing item is a deny, never an
// error.
//
// The capability rules are intentionally not a linear hierarchy:
//   - the owner passes every capability with no grant rows at all;
//   - "view" passes on any grant regardless of its stored level;
//   - anything else passes only when some stored level matches exactly.
//
// Duplicate grants on the same (item, user) pair are tolerated; the
// rows combine as an OR.
func (s *PermissionService) CheckAccess(itemID uint, itemType string, userID uint, capability string) bool {
	ownerID, ok := s.itemOwner(itemType, itemID)
	if !ok {
		return false
	}
	if ownerID == userID {
		return true
	}

	grants, err := s.permRepo.ListForUserItem(itemType, itemID, userID)
	if err != nil || len(grants) == 0 {
		return false
	}

	if capability == models.AccessView {
		return true
	}
	for _, g := range grants {
		if g.AccessLevel == capability {
			return true
		}
	}
	return false
}

// AnnotationLevel derives the access label shown on listings: "owner"
// for owned items, otherwise the most specific stored grant level
// (edit > download > view), defaulting to "view" when a grant exists
// with no stronger level recorded. Empty string means no access at all.
func (s *PermissionService) AnnotationLevel(itemType string, itemID, ownerID, userID uint) string {
	if ownerID == userID {
		return models.AccessOwner
	}

	grants, err := s.permRepo.ListForUserItem(itemType, itemID, userID)
	if err != nil || len(grants) == 0 {
		return ""
	}

	level := models.AccessView
	for _, g := range grants {
		switch g.AccessLevel {
		case models.AccessEdit:
			return models.AccessEdit
		case models.AccessDownload:
			level = models.AccessDownload
		}
	}
	return level
}

// Share grants one user a capability tier on one item. Only the item's
// owner may share it. An existing grant for the same (item, user) pair
// is updated in place rather than duplicated.
func (s *PermissionService) Share(itemType string, itemID, granteeID uint, level string, grantedBy uint) (*models.Permission, error) {
	if !models.ValidAccessLevel(level) {
		return nil, fmt.Errorf("%w: access level %q", ErrValidation, level)
	}
	if itemType != models.ItemTypeFile && itemType != models.ItemTypeFolder {
		return nil, fmt.Errorf("%w: item type %q", ErrValidation, itemType)
	}

	ownerID, ok := s.itemOwner(itemType, itemID)
	if !ok {
		return nil, ErrNotFound
	}
	if ownerID != grantedBy {
		return nil, ErrForbidden
	}
	if granteeID == grantedBy {
		return nil, fmt.Errorf("%w: cannot share with yourself", ErrValidation)
	}

	// Referencing a non-existent grantee is a caller error.
	if _, err := s.userRepo.GetByID(granteeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, granteeID)
		}
		return nil, err
	}

	existing, err := s.permRepo.ListForUserItem(itemType, itemID, granteeID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		if err := s.permRepo.DeleteForUserItem(itemType, itemID, granteeID); err != nil {
			return nil, err
		}
	}

	perm := &models.Permission{
		UserID:      granteeID,
		GrantedBy:   grantedBy,
		AccessLevel: level,
	}
	if itemType == models.ItemTypeFile {
		perm.FileID = &itemID
	} else {
		perm.FolderID = &itemID
	}
	if err := s.permRepo.Create(perm); err != nil {
		return nil, err
	}
	return perm, nil
}

// ShareBulk applies one grant across multiple items. Per-item failures
// are reported, not fatal.
func (s *PermissionService) ShareBulk(items []ItemRef, granteeID uint, level string, grantedBy uint) []GrantResult {
	results := make([]GrantResult, 0, len(items))
	for _, item := range items {
		result := GrantResult{ID: item.ID, Type: item.Type}
		if _, err := s.Share(item.Type, item.ID, granteeID, level, grantedBy); err != nil {
			result.Error = err.Error()
		} else {
			result.Success = true
		}
		results = append(results, result)
	}
	return results
}

// ListGrants returns every grant on an item. Owner only.
func (s *PermissionService) ListGrants(itemType string, itemID, requesterID uint) ([]models.Permission, error) {
	ownerID, ok := s.itemOwner(itemType, itemID)
	if !ok {
		return nil, ErrNotFound
	}
	if ownerID != requesterID {
		return nil, ErrForbidden
	}
	return s.permRepo.ListForItem(itemType, itemID)
}

// Revoke removes every grant a user holds on an item. Owner only; the
// owner's own access is not a grant and cannot be revoked.
func (s *PermissionService) Revoke(itemType string, itemID, granteeID, requesterID uint) error {
	ownerID, ok := s.itemOwner(itemType, itemID)
	if !ok {
		return ErrNotFound
	}
	if ownerID != requesterID {
		return ErrForbidden
	}
	if granteeID == ownerID {
		return fmt.Errorf("%w: cannot revoke the owner's access", ErrValidation)
	}
	return s.permRepo.DeleteForUserItem(itemType, itemID, granteeID)
}

// ListSharedWithUser returns every grant the user holds; the root
// listing unions these items in regardless of their structural parent.
func (s *PermissionService) ListSharedWithUser(userID uint) ([]models.Permission, error) {
	return s.permRepo.ListForUser(userID)
}

// itemOwner resolves the owner of a live item. Soft-deleted and missing
// items both report not-ok so access checks fail closed.
func (s *PermissionService) itemOwner(itemType string, itemID uint) (uint, bool) {
	switch itemType {
	case models.ItemTypeFile:
		file, err := s.fileRepo.GetByID(itemID)
		if err != nil || file.IsDeleted {
			return 0, false
		}
		return file.CreatedBy, true
	case models.ItemTypeFolder:
		folder, err := s.folderRepo.GetByID(itemID)
		if err != nil || folder.IsDeleted {
			return 0, false
		}
		return folder.OwnerID, true
	}
	return 0, false
}
