package services

import (
	"testing"

	"drivebox/config"
	"drivebox/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSoftDeleteAndRestoreFileRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	file := env.createFile(t, "doc.txt", nil, owner.ID, "content")

	require.NoError(t, env.trash.SoftDeleteFile(file.ID, owner.ID))

	stored, err := env.files.GetByID(file.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsDeleted)
	require.NotNil(t, stored.DeletedBy)
	assert.Equal(t, owner.ID, *stored.DeletedBy)

	// Content survives a soft delete.
	rc, err := env.storage.Get(file.StoragePath)
	require.NoError(t, err)
	rc.Close()

	require.NoError(t, env.trash.RestoreFile(file.ID, owner.ID))
	stored, err = env.files.GetByID(file.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsDeleted)
	assert.Nil(t, stored.DeletedAt)
	assert.Nil(t, stored.DeletedBy)
}

func TestSoftDeleteFileRequiresEdit(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	viewer := env.createUser(t, "bob")
	file := env.createFile(t, "doc.txt", nil, owner.ID, "content")
	env.grant(t, models.ItemTypeFile, file.ID, viewer.ID, models.AccessView, owner.ID)

	err := env.trash.SoftDeleteFile(file.ID, viewer.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestSoftDeleteFolderIsShallowByDefault(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	folder := env.createFolder(t, "parent", nil, owner.ID)
	file := env.createFile(t, "inside.txt", &folder.ID, owner.ID, "x")

	require.NoError(t, env.trash.SoftDeleteFolder(folder.ID, owner.ID))

	// Only the folder row is flagged; the child file row is untouched.
	storedFolder, err := env.folders.GetByID(folder.ID)
	require.NoError(t, err)
	assert.True(t, storedFolder.IsDeleted)

	storedFile, err := env.files.GetByID(file.ID)
	require.NoError(t, err)
	assert.False(t, storedFile.IsDeleted)

	// Restoring brings the subtree back into view as a unit.
	require.NoError(t, env.trash.RestoreFolder(folder.ID, owner.ID))
	contents, err := env.folder.ListFolder(folder.ID, owner.ID)
	require.NoError(t, err)
	assert.Len(t, contents.Files, 1)
}

func TestSoftDeleteFolderRecursiveWhenEnabled(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	folder := env.createFolder(t, "parent", nil, owner.ID)
	child := env.createFolder(t, "child", &folder.ID, owner.ID)
	file := env.createFile(t, "deep.txt", &child.ID, owner.ID, "x")

	config.AppConfig.RecursiveDeleteEnabled = true
	require.NoError(t, env.trash.SoftDeleteFolder(folder.ID, owner.ID))

	storedChild, err := env.folders.GetByID(child.ID)
	require.NoError(t, err)
	assert.True(t, storedChild.IsDeleted)

	storedFile, err := env.files.GetByID(file.ID)
	require.NoError(t, err)
	assert.True(t, storedFile.IsDeleted)
}

func TestRestoreRequiresDeleterOrLegacyOwner(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	editor := env.createUser(t, "bob")
	file := env.createFile(t, "doc.txt", nil, owner.ID, "content")
	env.grant(t, models.ItemTypeFile, file.ID, editor.ID, models.AccessEdit, owner.ID)

	// The editor deleted it, so it sits in the editor's trash, not the owner's.
	require.NoError(t, env.trash.SoftDeleteFile(file.ID, editor.ID))
	assert.ErrorIs(t, env.trash.RestoreFile(file.ID, owner.ID), ErrNotFound)
	require.NoError(t, env.trash.RestoreFile(file.ID, editor.ID))

	// A legacy deleted row with no recorded actor belongs to the owner's trash.
	require.NoError(t, env.files.Update(file.ID, map[string]interface{}{
		"is_deleted": true,
		"deleted_by": nil,
	}))
	assert.ErrorIs(t, env.trash.RestoreFile(file.ID, editor.ID), ErrNotFound)
	require.NoError(t, env.trash.RestoreFile(file.ID, owner.ID))
}

func TestPurgeFileRemovesRowGrantsAndContent(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	grantee := env.createUser(t, "bob")
	file := env.createFile(t, "doc.txt", nil, owner.ID, "content")
	env.grant(t, models.ItemTypeFile, file.ID, grantee.ID, models.AccessView, owner.ID)

	require.NoError(t, env.trash.SoftDeleteFile(file.ID, owner.ID))
	require.NoError(t, env.trash.PurgeFile(file.ID, owner.ID))

	_, err := env.files.GetByID(file.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	grants, err := env.perms.ListForUserItem(models.ItemTypeFile, file.ID, grantee.ID)
	require.NoError(t, err)
	assert.Empty(t, grants)

	_, err = env.storage.Get(file.StoragePath)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPurgeFileNotInTrashIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	file := env.createFile(t, "doc.txt", nil, owner.ID, "content")

	assert.ErrorIs(t, env.trash.PurgeFile(file.ID, owner.ID), ErrNotFound)
}

func TestPurgeFolderRemovesEntireSubtree(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	root := env.createFolder(t, "root", nil, owner.ID)
	sub := env.createFolder(t, "sub", &root.ID, owner.ID)
	subsub := env.createFolder(t, "subsub", &sub.ID, owner.ID)
	f1 := env.createFile(t, "a.txt", &root.ID, owner.ID, "a")
	f2 := env.createFile(t, "b.txt", &sub.ID, owner.ID, "b")
	f3 := env.createFile(t, "c.txt", &subsub.ID, owner.ID, "c")

	require.NoError(t, env.trash.SoftDeleteFolder(root.ID, owner.ID))
	purged, err := env.trash.PurgeFolder(root.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, purged)

	for _, id := range []uint{root.ID, sub.ID, subsub.ID} {
		_, err := env.folders.GetByID(id)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	}
	for _, file := range []*models.File{f1, f2, f3} {
		_, err := env.files.GetByID(file.ID)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
		_, err = env.storage.Get(file.StoragePath)
		assert.ErrorIs(t, err, ErrNotFound)
	}
}

func TestListTrashAdvertisesAutoPurge(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	file := env.createFile(t, "doc.txt", nil, owner.ID, "content")
	folder := env.createFolder(t, "stuff", nil, owner.ID)

	require.NoError(t, env.trash.SoftDeleteFile(file.ID, owner.ID))
	require.NoError(t, env.trash.SoftDeleteFolder(folder.ID, owner.ID))

	items, err := env.trash.ListTrash(owner.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, item := range items {
		assert.Equal(t, item.DeletedAt.Add(config.AppConfig.TrashRetention), item.AutoPurgeAt)
	}
}

func TestEmptyTrashPurgesOnlyCallersItems(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	mine := env.createFile(t, "mine.txt", nil, alice.ID, "a")
	theirs := env.createFile(t, "theirs.txt", nil, bob.ID, "b")

	require.NoError(t, env.trash.SoftDeleteFile(mine.ID, alice.ID))
	require.NoError(t, env.trash.SoftDeleteFile(theirs.ID, bob.ID))

	purged, err := env.trash.EmptyTrash(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, purged)

	_, err = env.files.GetByID(mine.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	still, err := env.files.GetByID(theirs.ID)
	require.NoError(t, err)
	assert.True(t, still.IsDeleted)
}
