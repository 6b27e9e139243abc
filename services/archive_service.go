package services

import (
	"archive/zip"
	"bytes"
	"compress/flate"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"strings"

	"drivebox/config"
	"drivebox/models"
	"drivebox/repositories"
	"drivebox/utils"

	"gorm.io/gorm"
)

type ArchiveService struct {
	fileRepo          *repositories.FileRepository
	folderRepo        *repositories.FolderRepository
	permissionService *PermissionService
	storage           *StorageService
	audit             *AuditService
}

func NewArchiveService(fileRepo *repositories.FileRepository, folderRepo *repositories.FolderRepository, permissionService *PermissionService, storage *StorageService, audit *AuditService) *ArchiveService {
	return &ArchiveService{
		fileRepo:          fileRepo,
		folderRepo:        folderRepo,
		permissionService: permissionService,
		storage:           storage,
		audit:             audit,
	}
}

// ingestPass carries the state of one archive walk: the acting user and
// a path→folder-id cache seeded with the destination parent. The cache
// lives for exactly one pass and is never shared across requests.
type ingestPass struct {
	actorID uint
	cache   map[string]*uint
	created int
}

// UploadArchive expands an uploaded ZIP into destParent. The archive
// itself is never persisted; only its expanded contents are.
func (s *ArchiveService) UploadArchive(userID uint, destParent *uint, header *multipart.FileHeader, meta RequestMeta) (int, error) {
	if destParent != nil {
		parent, err := s.folderRepo.GetByID(*destParent)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, fmt.Errorf("destination folder: %w", ErrNotFound)
			}
			return 0, err
		}
		if parent.IsDeleted {
			return 0, fmt.Errorf("destination folder: %w", ErrNotFound)
		}
		if !s.permissionService.CheckAccess(*destParent, models.ItemTypeFolder, userID, models.AccessEdit) {
			return 0, ErrForbidden
		}
	}

	src, err := header.Open()
	if err != nil {
		return 0, fmt.Errorf("failed to open uploaded archive: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return 0, fmt.Errorf("failed to read uploaded archive: %w", err)
	}

	created, err := s.Ingest(data, destParent, userID)
	if err != nil {
		return 0, err
	}

	s.audit.Record(userID, AuditActionUpload, "archive", destParent, fmt.Sprintf("extracted %s (%d files)", header.Filename, created), meta)
	return created, nil
}

// Ingest materializes a ZIP byte stream as Folder and File rows under
// destParent. Entries are processed in the order the container exposes
// them; nested .zip members are expanded recursively into a folder
// named after their stem and never stored as files themselves.
func (s *ArchiveService) Ingest(data []byte, destParent *uint, actorID uint) (int, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("%w: not a readable zip archive", ErrValidation)
	}

	pass := &ingestPass{
		actorID: actorID,
		cache:   map[string]*uint{"": destParent},
	}
	if err := s.ingestReader(zr, pass); err != nil {
		return pass.created, err
	}
	return pass.created, nil
}

func (s *ArchiveService) ingestReader(zr *zip.Reader, pass *ingestPass) error {
	for _, entry := range zr.File {
		name := normalizeArchivePath(entry.Name)
		if name == "" {
			continue
		}

		if entry.FileInfo().IsDir() {
			if _, err := s.resolveDir(pass, name); err != nil {
				return err
			}
			continue
		}

		dir := path.Dir(name)
		if dir == "." {
			dir = ""
		}
		parentID, err := s.resolveDir(pass, dir)
		if err != nil {
			return err
		}

		base := path.Base(name)
		if strings.HasSuffix(strings.ToLower(base), ".zip") {
			if err := s.ingestNested(entry, base, dir, parentID, pass); err != nil {
				return err
			}
			continue
		}

		if err := s.storeEntry(entry, base, parentID, pass); err != nil {
			return err
		}
	}
	return nil
}

// ingestNested expands a .zip member found inside the archive. A corrupt
// nested archive never aborts the parent pass: depending on
// ARCHIVE_CORRUPT_FALLBACK it is kept as an opaque file (default) or
// skipped.
func (s *ArchiveService) ingestNested(entry *zip.File, base, dir string, parentID *uint, pass *ingestPass) error {
	rc, err := entry.Open()
	if err != nil {
		return s.corruptFallback(entry, base, parentID, pass, err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return s.corruptFallback(entry, base, parentID, pass, err)
	}

	nested, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return s.corruptFallback(entry, base, parentID, pass, err)
	}

	stem := strings.TrimSuffix(base, path.Ext(base))
	folderID, err := s.findOrCreateFolder(parentID, stem, pass.actorID)
	if err != nil {
		return err
	}

	// Recurse with a fresh cache rooted at the stem folder: the nested
	// archive's paths are relative to it, not to the outer archive.
	nestedPass := &ingestPass{
		actorID: pass.actorID,
		cache:   map[string]*uint{"": &folderID},
	}
	if err := s.ingestReader(nested, nestedPass); err != nil {
		return err
	}
	pass.created += nestedPass.created

	// Cache the stem folder so sibling entries resolving through it
	// reuse the id.
	key := stem
	if dir != "" {
		key = dir + "/" + stem
	}
	pass.cache[key] = &folderID
	return nil
}

func (s *ArchiveService) corruptFallback(entry *zip.File, base string, parentID *uint, pass *ingestPass, cause error) error {
	utils.LogError(fmt.Sprintf("corrupt nested archive %s", entry.Name), cause)
	fallback := "store"
	if config.AppConfig != nil {
		fallback = config.AppConfig.ArchiveCorruptFallback
	}
	if fallback == "skip" {
		return nil
	}
	return s.storeEntry(entry, base, parentID, pass)
}

// storeEntry writes one leaf member to the content store and creates its
// File row, sized to the declared uncompressed size.
func (s *ArchiveService) storeEntry(entry *zip.File, base string, parentID *uint, pass *ingestPass) error {
	rc, err := entry.Open()
	if err != nil {
		return fmt.Errorf("failed to open archive entry %s: %w", entry.Name, err)
	}
	defer rc.Close()

	locator, _, err := s.storage.Put(rc, base)
	if err != nil {
		return err
	}

	file := &models.File{
		Name:        base,
		FolderID:    parentID,
		Size:        int64(entry.UncompressedSize64),
		MimeType:    MimeTypeByExtension(base),
		StoragePath: locator,
		CreatedBy:   pass.actorID,
	}
	if err := s.fileRepo.Create(file); err != nil {
		if delErr := s.storage.Delete(locator); delErr != nil {
			return delErr
		}
		return err
	}
	pass.created++
	return nil
}

// resolveDir maps a normalized directory path to a folder id, creating
// any missing segment. It walks from the nearest cached ancestor so a
// directory listed many times in the archive is only resolved once.
func (s *ArchiveService) resolveDir(pass *ingestPass, dirPath string) (*uint, error) {
	if cached, ok := pass.cache[dirPath]; ok {
		return cached, nil
	}

	segments := splitPathSegments(dirPath)
	current := pass.cache[""]
	key := ""
	for _, segment := range segments {
		if key == "" {
			key = segment
		} else {
			key = key + "/" + segment
		}
		if cached, ok := pass.cache[key]; ok {
			current = cached
			continue
		}

		folderID, err := s.findOrCreateFolder(current, segment, pass.actorID)
		if err != nil {
			return nil, err
		}
		id := folderID
		pass.cache[key] = &id
		current = &id
	}
	return current, nil
}

// findOrCreateFolder reuses an existing non-deleted child by exact name
// or creates it owned by the acting user.
func (s *ArchiveService) findOrCreateFolder(parentID *uint, name string, ownerID uint) (uint, error) {
	existing, err := s.folderRepo.FindChildByName(parentID, name)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	folder := &models.Folder{Name: name, ParentID: parentID, OwnerID: ownerID}
	if err := s.folderRepo.Create(folder); err != nil {
		return 0, fmt.Errorf("failed to create folder %q: %w", name, err)
	}
	return folder.ID, nil
}

// AutoExtract scans the listed level for .zip files with no sibling
// folder matching their stem and expands them in place. The original
// zip row and its backing object are removed on success. Any single
// failure is logged and the scan continues; the listing must never be
// aborted by a bad archive.
func (s *ArchiveService) AutoExtract(parentID *uint, userID uint, meta RequestMeta) {
	// Only the uploader's own archives are expanded implicitly, so the
	// scan is scoped to the subject's files up front.
	files, err := s.fileRepo.ListByFolderOwned(parentID, userID)
	if err != nil {
		utils.LogError("auto-extract: failed to list files", err)
		return
	}

	for _, file := range files {
		if !strings.HasSuffix(strings.ToLower(file.Name), ".zip") {
			continue
		}
		stem := strings.TrimSuffix(file.Name, path.Ext(file.Name))
		if _, err := s.folderRepo.FindChildByName(parentID, stem); err == nil {
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			utils.LogError("auto-extract: sibling lookup failed", err)
			continue
		}

		if err := s.extractExisting(&file, stem, parentID, userID, meta); err != nil {
			utils.LogError(fmt.Sprintf("auto-extract: failed to expand %s", file.Name), err)
		}
	}
}

func (s *ArchiveService) extractExisting(file *models.File, stem string, parentID *uint, userID uint, meta RequestMeta) error {
	rc, err := s.storage.Get(file.StoragePath)
	if err != nil {
		return err
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return err
	}

	folderID, err := s.findOrCreateFolder(parentID, stem, userID)
	if err != nil {
		return err
	}
	created, err := s.Ingest(data, &folderID, userID)
	if err != nil {
		return err
	}

	// The expanded contents replace the archive entirely.
	if err := s.fileRepo.Delete(file.ID); err != nil {
		return err
	}
	if err := s.storage.Delete(file.StoragePath); err != nil {
		utils.LogError("auto-extract: failed to delete original archive object", err)
	}

	fileID := file.ID
	s.audit.Record(userID, AuditActionAutoExtract, models.ItemTypeFile, &fileID, fmt.Sprintf("expanded %s (%d files)", file.Name, created), meta)
	return nil
}

// ExportFolder streams the folder's subtree as a ZIP at maximum deflate
// compression. Every included file is checked for download access
// individually; denied files and files whose backing object is missing
// are skipped silently. Bytes start flowing before the archive is
// complete.
func (s *ArchiveService) ExportFolder(ctx context.Context, w io.Writer, folderID, userID uint) error {
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
	if !s.permissionService.CheckAccess(folderID, models.ItemTypeFolder, userID, models.AccessView) {
		return ErrForbidden
	}

	zw := newZipWriter(w)
	defer zw.Close()

	return s.addFolderToZip(ctx, zw, folderID, userID, "")
}

// ExportSelection streams an arbitrary mixed selection of files and
// folders as one ZIP. Inaccessible items are skipped, never an error.
func (s *ArchiveService) ExportSelection(ctx context.Context, w io.Writer, items []ItemRef, userID uint) error {
	zw := newZipWriter(w)
	defer zw.Close()

	for _, item := range items {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		switch item.Type {
		case models.ItemTypeFile:
			file, err := s.fileRepo.GetByID(item.ID)
			if err != nil || file.IsDeleted {
				continue
			}
			s.addFileToZip(zw, file, userID, "")

		case models.ItemTypeFolder:
			folder, err := s.folderRepo.GetByID(item.ID)
			if err != nil || folder.IsDeleted {
				continue
			}
			if err := s.addFolderToZip(ctx, zw, folder.ID, userID, folder.Name); err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				utils.LogError(fmt.Sprintf("export: failed to add folder %d", folder.ID), err)
			}
		}
	}
	return nil
}

// addFolderToZip walks the subtree depth-first, joining archive paths
// from ancestor folder names.
func (s *ArchiveService) addFolderToZip(ctx context.Context, zw *zip.Writer, folderID, userID uint, prefix string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	files, err := s.fileRepo.ListByFolder(&folderID)
	if err != nil {
		return err
	}
	for _, file := range files {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		s.addFileToZip(zw, &file, userID, prefix)
	}

	subfolders, err := s.folderRepo.ListChildren(&folderID)
	if err != nil {
		return err
	}
	for _, sub := range subfolders {
		subPath := path.Join(prefix, sub.Name)
		// A directory entry keeps empty folders present in the archive.
		if _, err := zw.Create(subPath + "/"); err != nil {
			utils.LogWarning(fmt.Sprintf("export: failed to create folder entry %s", subPath))
		}
		if err := s.addFolderToZip(ctx, zw, sub.ID, userID, subPath); err != nil {
			return err
		}
	}
	return nil
}

// addFileToZip appends one file if the subject may download it and its
// content is still present. A denied or missing file is skipped so the
// export delivers what it can.
func (s *ArchiveService) addFileToZip(zw *zip.Writer, file *models.File, userID uint, prefix string) {
	if !s.permissionService.CheckAccess(file.ID, models.ItemTypeFile, userID, models.AccessDownload) {
		return
	}

	rc, err := s.storage.Get(file.StoragePath)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			utils.LogError(fmt.Sprintf("export: failed to open content for file %d", file.ID), err)
		}
		return
	}
	defer rc.Close()

	entry, err := zw.Create(path.Join(prefix, file.Name))
	if err != nil {
		utils.LogError(fmt.Sprintf("export: failed to create zip entry for %s", file.Name), err)
		return
	}
	if _, err := io.Copy(entry, rc); err != nil {
		// Streaming already started; nothing to re-signal to the client.
		utils.LogError(fmt.Sprintf("export: failed to stream file %d", file.ID), err)
	}
}

// newZipWriter returns a zip writer deflating at the maximum level.
func newZipWriter(w io.Writer) *zip.Writer {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})
	return zw
}

// normalizeArchivePath converts an archive member name to a clean
// slash-separated relative path. Unsafe entries are rejected by
// returning "".
func normalizeArchivePath(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.Trim(name, "/")
	if name == "" || name == "." {
		return ""
	}
	for _, segment := range strings.Split(name, "/") {
		if segment == ".." {
			return ""
		}
	}
	return name
}

// splitPathSegments breaks a relative path into its non-empty segments,
// dropping "." and ".." entries.
func splitPathSegments(p string) []string {
	p = strings.ReplaceAll(p, "\\", "/")
	var segments []string
	for _, segment := range strings.Split(p, "/") {
		if segment == "" || segment == "." || segment == ".." {
			continue
		}
		segments = append(segments, segment)
	}
	return segments
}
