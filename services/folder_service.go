package services

import (
	"errors"
	"fmt"

	"drivebox/config"
	"drivebox/models"
	"drivebox/repositories"
	"drivebox/utils"

	"gorm.io/gorm"
)

// FolderEntry is a listed subfolder annotated with the subject's
// derived access level.
type FolderEntry struct {
	models.Folder
	AccessLevel string `json:"access_level"`
}

// FileEntry is a listed file annotated the same way.
type FileEntry struct {
	models.File
	AccessLevel string `json:"access_level"`
}

// Crumb is one step of the breadcrumb trail from the root down to the
// listed folder.
type Crumb struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// FolderContents is the directory listing response.
type FolderContents struct {
	Folder      *models.Folder `json:"folder,omitempty"` // nil for the root listing
	Breadcrumbs []Crumb        `json:"breadcrumbs"`
	Folders     []FolderEntry  `json:"folders"`
	Files       []FileEntry    `json:"files"`
}

type FolderService struct {
	folderRepo        *repositories.FolderRepository
	fileRepo          *repositories.FileRepository
	permissionService *PermissionService
}

func NewFolderService(folderRepo *repositories.FolderRepository, fileRepo *repositories.FileRepository, permissionService *PermissionService) *FolderService {
	return &FolderService{
		folderRepo:        folderRepo,
		fileRepo:          fileRepo,
		permissionService: permissionService,
	}
}

// CreateFolder creates a folder under parentID (nil = root). Creating
// inside another user's folder requires an edit grant on it.
func (s *FolderService) CreateFolder(name string, parentID *uint, ownerID uint) (*models.Folder, error) {
	if err := utils.ValidateItemName(name); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if parentID != nil {
		parent, err := s.folderRepo.GetByID(*parentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("parent folder: %w", ErrNotFound)
			}
			return nil, err
		}
		if parent.IsDeleted {
			return nil, fmt.Errorf("parent folder: %w", ErrNotFound)
		}
		if !s.permissionService.CheckAccess(*parentID, models.ItemTypeFolder, ownerID, models.AccessEdit) {
			return nil, ErrForbidden
		}
	}

	folder := &models.Folder{
		Name:     name,
		ParentID: parentID,
		OwnerID:  ownerID,
	}
	if err := s.folderRepo.Create(folder); err != nil {
		return nil, err
	}
	return folder, nil
}

// ListRoot returns the subject's top-level view: items they own at the
// root, unioned with every item they hold any grant on, whatever its
// structural parent.
func (s *FolderService) ListRoot(userID uint) (*FolderContents, error) {
	ownedFolders, err := s.folderRepo.ListRootOwned(userID)
	if err != nil {
		return nil, err
	}
	ownedFiles, err := s.fileRepo.ListRootOwned(userID)
	if err != nil {
		return nil, err
	}

	contents := &FolderContents{
		Breadcrumbs: []Crumb{},
		Folders:     make([]FolderEntry, 0, len(ownedFolders)),
		Files:       make([]FileEntry, 0, len(ownedFiles)),
	}
	for _, f := range ownedFolders {
		contents.Folders = append(contents.Folders, FolderEntry{Folder: f, AccessLevel: models.AccessOwner})
	}
	for _, f := range ownedFiles {
		contents.Files = append(contents.Files, FileEntry{File: f, AccessLevel: models.AccessOwner})
	}

	// Shared items join the root view no matter where they live.
	grants, err := s.permissionService.ListSharedWithUser(userID)
	if err != nil {
		return nil, err
	}
	seenFolders := map[uint]bool{}
	seenFiles := map[uint]bool{}
	for _, g := range grants {
		switch {
		case g.FolderID != nil && !seenFolders[*g.FolderID]:
			seenFolders[*g.FolderID] = true
			folder, err := s.folderRepo.GetByID(*g.FolderID)
			if err != nil || folder.IsDeleted || folder.OwnerID == userID {
				continue
			}
			level := s.permissionService.AnnotationLevel(models.ItemTypeFolder, folder.ID, folder.OwnerID, userID)
			contents.Folders = append(contents.Folders, FolderEntry{Folder: *folder, AccessLevel: level})
		case g.FileID != nil && !seenFiles[*g.FileID]:
			seenFiles[*g.FileID] = true
			file, err := s.fileRepo.GetByID(*g.FileID)
			if err != nil || file.IsDeleted || file.CreatedBy == userID {
				continue
			}
			level := s.permissionService.AnnotationLevel(models.ItemTypeFile, file.ID, file.CreatedBy, userID)
			contents.Files = append(contents.Files, FileEntry{File: *file, AccessLevel: level})
		}
	}

	return contents, nil
}

// GetFolder returns a live folder the subject can at least view;
// soft-deleted folders are not found.
func (s *FolderService) GetFolder(folderID, userID uint) (*models.Folder, error) {
	folder, err := s.folderRepo.GetByID(folderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if folder.IsDeleted {
		return nil, ErrNotFound
	}
	if !s.permissionService.CheckAccess(folderID, models.ItemTypeFolder, userID, models.AccessView) {
		return nil, ErrForbidden
	}
	return folder, nil
}

// ListFolder returns a folder's structural children, soft-delete
// filtered, with access annotations and the breadcrumb trail. Requires
// view on the folder itself; a deleted folder is not found.
func (s *FolderService) ListFolder(folderID, userID uint) (*FolderContents, error) {
	folder, err := s.folderRepo.GetByID(folderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if folder.IsDeleted {
		return nil, ErrNotFound
	}
	if !s.permissionService.CheckAccess(folderID, models.ItemTypeFolder, userID, models.AccessView) {
		return nil, ErrForbidden
	}

	childFolders, err := s.folderRepo.ListChildren(&folderID)
	if err != nil {
		return nil, err
	}
	childFiles, err := s.fileRepo.ListByFolder(&folderID)
	if err != nil {
		return nil, err
	}

	// The level shown on a child the subject neither owns nor holds a
	// grant on falls back to the level they hold on the listed folder.
	parentLevel := s.permissionService.AnnotationLevel(models.ItemTypeFolder, folder.ID, folder.OwnerID, userID)

	contents := &FolderContents{
		Folder:  folder,
		Folders: make([]FolderEntry, 0, len(childFolders)),
		Files:   make([]FileEntry, 0, len(childFiles)),
	}
	for _, f := range childFolders {
		level := s.permissionService.AnnotationLevel(models.ItemTypeFolder, f.ID, f.OwnerID, userID)
		if level == "" {
			level = parentLevel
		}
		contents.Folders = append(contents.Folders, FolderEntry{Folder: f, AccessLevel: level})
	}
	for _, f := range childFiles {
		level := s.permissionService.AnnotationLevel(models.ItemTypeFile, f.ID, f.CreatedBy, userID)
		if level == "" {
			level = parentLevel
		}
		contents.Files = append(contents.Files, FileEntry{File: f, AccessLevel: level})
	}

	crumbs, err := s.Breadcrumbs(folderID)
	if err != nil {
		return nil, err
	}
	contents.Breadcrumbs = crumbs

	return contents, nil
}

// Breadcrumbs walks the parent chain up to the root and returns it
// top-down. The trail stops below the first trashed ancestor.
func (s *FolderService) Breadcrumbs(folderID uint) ([]Crumb, error) {
	var crumbs []Crumb
	current := &folderID
	for current != nil {
		folder, err := s.folderRepo.GetByID(*current)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				break
			}
			return nil, err
		}
		if folder.IsDeleted {
			break
		}
		crumbs = append([]Crumb{{ID: folder.ID, Name: folder.Name}}, crumbs...)
		current = folder.ParentID
	}
	return crumbs, nil
}

// RenameFolder updates the display name. Sibling duplicates are
// tolerated.
func (s *FolderService) RenameFolder(folderID uint, newName string, userID uint) error {
	if err := utils.ValidateItemName(newName); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

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

	return s.folderRepo.Update(folderID, map[string]interface{}{"name": newName})
}

// MoveFolder reparents a folder. A folder can never become its own
// ancestor: the trivial self-parent case and the full
// ancestor-of-ancestor case are both rejected.
func (s *FolderService) MoveFolder(folderID uint, newParentID *uint, userID uint) error {
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

	if newParentID != nil {
		if *newParentID == folderID {
			return fmt.Errorf("%w: cannot move a folder into itself", ErrValidation)
		}

		parent, err := s.folderRepo.GetByID(*newParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("destination folder: %w", ErrNotFound)
			}
			return err
		}
		if parent.IsDeleted {
			return fmt.Errorf("destination folder: %w", ErrNotFound)
		}
		if !s.permissionService.CheckAccess(*newParentID, models.ItemTypeFolder, userID, models.AccessEdit) {
			return ErrForbidden
		}

		// Walk the destination's ancestor chain; finding the moved
		// folder there would create a cycle.
		cycle, err := s.isAncestor(folderID, *newParentID)
		if err != nil {
			return err
		}
		if cycle {
			return fmt.Errorf("%w: cannot move a folder into its own descendant", ErrValidation)
		}
	}

	return s.folderRepo.Update(folderID, map[string]interface{}{"parent_id": newParentID})
}

// isAncestor reports whether candidate is on descendant's parent chain
// (inclusive of descendant itself).
func (s *FolderService) isAncestor(candidate, descendant uint) (bool, error) {
	current := &descendant
	for current != nil {
		if *current == candidate {
			return true, nil
		}
		folder, err := s.folderRepo.GetByID(*current)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, nil
			}
			return false, err
		}
		current = folder.ParentID
	}
	return false, nil
}

// FolderSize sums the sizes of the folder's non-deleted direct-child
// files. Recursive aggregation only when the RECURSIVE_SIZE flag is on.
func (s *FolderService) FolderSize(folderID, userID uint) (int64, error) {
	folder, err := s.folderRepo.GetByID(folderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	if folder.IsDeleted {
		return 0, ErrNotFound
	}
	if !s.permissionService.CheckAccess(folderID, models.ItemTypeFolder, userID, models.AccessView) {
		return 0, ErrForbidden
	}

	if config.AppConfig != nil && config.AppConfig.RecursiveSizeEnabled {
		return s.recursiveSize(folderID)
	}
	return s.fileRepo.SumSizeByFolder(&folderID)
}

func (s *FolderService) recursiveSize(folderID uint) (int64, error) {
	total, err := s.fileRepo.SumSizeByFolder(&folderID)
	if err != nil {
		return 0, err
	}
	children, err := s.folderRepo.ListChildren(&folderID)
	if err != nil {
		return 0, err
	}
	for _, child := range children {
		sub, err := s.recursiveSize(child.ID)
		if err != nil {
			return 0, err
		}
		total += sub
	}
	return total, nil
}

// GetOrCreateFolderPath resolves a slash-separated relative path under
// baseParent, creating any missing segment owned by ownerID. Used when
// a client uploads a folder tree with per-file relative paths.
func (s *FolderService) GetOrCreateFolderPath(relPath string, baseParent *uint, ownerID uint) (*uint, error) {
	segments := splitPathSegments(relPath)
	current := baseParent
	for _, segment := range segments {
		existing, err := s.folderRepo.FindChildByName(current, segment)
		if err == nil {
			current = &existing.ID
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		folder := &models.Folder{Name: segment, ParentID: current, OwnerID: ownerID}
		if err := s.folderRepo.Create(folder); err != nil {
			return nil, fmt.Errorf("failed to create folder %q: %w", segment, err)
		}
		current = &folder.ID
	}
	return current, nil
}
