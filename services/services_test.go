package services

import (
	"strings"
	"testing"
	"time"

	"drivebox/config"
	"drivebox/models"
	"drivebox/repositories"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// testEnv wires the full service stack against an in-memory database
// and a throwaway content store directory.
type testEnv struct {
	db *gorm.DB

	users   *repositories.UserRepository
	folders *repositories.FolderRepository
	files   *repositories.FileRepository
	perms   *repositories.PermissionRepository

	storage    *StorageService
	audit      *AuditService
	permission *PermissionService
	folder     *FolderService
	file       *FileService
	trash      *TrashService
	archive    *ArchiveService
	auth       *AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	config.AppConfig = &config.Config{
		MaxFileSize:            64 << 20,
		TrashRetention:         30 * 24 * time.Hour,
		ArchiveCorruptFallback: "store",
	}
	t.Cleanup(func() { config.AppConfig = nil })

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Folder{},
		&models.File{},
		&models.Permission{},
		&models.AuditLog{},
	))

	storage, err := NewStorageService(t.TempDir())
	require.NoError(t, err)

	env := &testEnv{
		db:      db,
		users:   repositories.NewUserRepository(db),
		folders: repositories.NewFolderRepository(db),
		files:   repositories.NewFileRepository(db),
		perms:   repositories.NewPermissionRepository(db),
		storage: storage,
	}
	env.audit = NewAuditService(repositories.NewAuditRepository(db))
	env.permission = NewPermissionService(env.files, env.folders, env.perms, env.users)
	env.folder = NewFolderService(env.folders, env.files, env.permission)
	env.file = NewFileService(env.files, env.folders, env.folder, env.permission, storage)
	env.trash = NewTrashService(env.files, env.folders, env.perms, env.permission, storage)
	env.archive = NewArchiveService(env.files, env.folders, env.permission, storage, env.audit)
	env.auth = NewAuthService(env.users, "test-secret", time.Hour)
	return env
}

func (e *testEnv) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, PasswordHash: "x", Role: models.RoleEmployee, Status: models.UserStatusActive}
	require.NoError(t, e.users.Create(user))
	return user
}

func (e *testEnv) createFolder(t *testing.T, name string, parentID *uint, ownerID uint) *models.Folder {
	t.Helper()
	folder := &models.Folder{Name: name, ParentID: parentID, OwnerID: ownerID}
	require.NoError(t, e.folders.Create(folder))
	return folder
}

func (e *testEnv) createFile(t *testing.T, name string, folderID *uint, ownerID uint, content string) *models.File {
	t.Helper()
	locator, size, err := e.storage.Put(strings.NewReader(content), name)
	require.NoError(t, err)
	file := &models.File{
		Name:        name,
		FolderID:    folderID,
		Size:        size,
		MimeType:    MimeTypeByExtension(name),
		StoragePath: locator,
		CreatedBy:   ownerID,
	}
	require.NoError(t, e.files.Create(file))
	return file
}

func (e *testEnv) grant(t *testing.T, itemType string, itemID, granteeID uint, level string, grantedBy uint) {
	t.Helper()
	_, err := e.permission.Share(itemType, itemID, granteeID, level, grantedBy)
	require.NoError(t, err)
}
