package routes

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"drivebox/config"
	"drivebox/models"
	"drivebox/repositories"
	"drivebox/utils"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestRouter mounts the full API surface over an in-memory database
// and a throwaway content store directory.
func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Folder{},
		&models.File{},
		&models.Permission{},
		&models.AuditLog{},
	))

	cfg := &config.Config{
		StoragePath:            t.TempDir(),
		JWTSecret:              "test-secret",
		JWTExpiration:          time.Hour,
		MaxFileSize:            64 << 20,
		TrashRetention:         30 * 24 * time.Hour,
		ArchiveCorruptFallback: "store",
	}
	config.AppConfig = cfg
	t.Cleanup(func() { config.AppConfig = nil })

	router := gin.New()
	api := router.Group("/api")
	require.NoError(t, SetupRoutes(api, db, cfg))
	return router, db
}

func createRouterUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, PasswordHash: "x", Role: models.RoleEmployee, Status: models.UserStatusActive}
	require.NoError(t, repositories.NewUserRepository(db).Create(user))
	return user
}

func bearerFor(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := utils.GenerateJWTTokenWithSecret(user, "test-secret", time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestDownloadFolderWithoutGrantIsForbidden(t *testing.T) {
	router, db := newTestRouter(t)
	owner := createRouterUser(t, db, "alice")
	stranger := createRouterUser(t, db, "bob")

	folder := &models.Folder{Name: "private", OwnerID: owner.ID}
	require.NoError(t, repositories.NewFolderRepository(db).Create(folder))

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/folders/%d/download", folder.ID), nil)
	req.Header.Set("Authorization", bearerFor(t, stranger))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NotEqual(t, "application/zip", w.Header().Get("Content-Type"))
	assert.Empty(t, w.Header().Get("Content-Disposition"))
}

func TestDownloadFolderByOwnerStreamsZip(t *testing.T) {
	router, db := newTestRouter(t)
	owner := createRouterUser(t, db, "alice")

	folder := &models.Folder{Name: "docs", OwnerID: owner.ID}
	require.NoError(t, repositories.NewFolderRepository(db).Create(folder))

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/folders/%d/download", folder.ID), nil)
	req.Header.Set("Authorization", bearerFor(t, owner))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/zip", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "docs.zip")
	assert.NotZero(t, w.Body.Len())
}
