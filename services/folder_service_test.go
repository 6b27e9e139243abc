package services

import (
	"testing"

	"drivebox/config"
	"drivebox/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateFolderInOtherUsersFolderRequiresEdit(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	guest := env.createUser(t, "bob")
	parent := env.createFolder(t, "team", nil, owner.ID)

	_, err := env.folder.CreateFolder("drafts", &parent.ID, guest.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	env.grant(t, models.ItemTypeFolder, parent.ID, guest.ID, models.AccessEdit, owner.ID)
	folder, err := env.folder.CreateFolder("drafts", &parent.ID, guest.ID)
	require.NoError(t, err)
	assert.Equal(t, guest.ID, folder.OwnerID)
}

func TestListFolderRequiresView(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	guest := env.createUser(t, "bob")
	folder := env.createFolder(t, "team", nil, owner.ID)
	env.createFile(t, "notes.txt", &folder.ID, owner.ID, "notes")

	_, err := env.folder.ListFolder(folder.ID, guest.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	env.grant(t, models.ItemTypeFolder, folder.ID, guest.ID, models.AccessView, owner.ID)
	contents, err := env.folder.ListFolder(folder.ID, guest.ID)
	require.NoError(t, err)
	require.Len(t, contents.Files, 1)
	// Ungranted children inherit the level held on the listed folder.
	assert.Equal(t, models.AccessView, contents.Files[0].AccessLevel)
}

func TestListFolderFiltersDeletedChildren(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	folder := env.createFolder(t, "team", nil, owner.ID)
	keep := env.createFile(t, "keep.txt", &folder.ID, owner.ID, "a")
	gone := env.createFile(t, "gone.txt", &folder.ID, owner.ID, "b")
	require.NoError(t, env.trash.SoftDeleteFile(gone.ID, owner.ID))

	contents, err := env.folder.ListFolder(folder.ID, owner.ID)
	require.NoError(t, err)
	require.Len(t, contents.Files, 1)
	assert.Equal(t, keep.ID, contents.Files[0].ID)
}

func TestListRootUnionsSharedItems(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	guest := env.createUser(t, "bob")
	env.createFolder(t, "mine", nil, guest.ID)
	theirs := env.createFolder(t, "projects", nil, owner.ID)
	nested := env.createFolder(t, "deep", &theirs.ID, owner.ID)
	env.grant(t, models.ItemTypeFolder, nested.ID, guest.ID, models.AccessDownload, owner.ID)

	contents, err := env.folder.ListRoot(guest.ID)
	require.NoError(t, err)

	var names []string
	var levels = map[string]string{}
	for _, f := range contents.Folders {
		names = append(names, f.Name)
		levels[f.Name] = f.AccessLevel
	}
	assert.ElementsMatch(t, []string{"mine", "deep"}, names)
	assert.Equal(t, models.AccessOwner, levels["mine"])
	assert.Equal(t, models.AccessDownload, levels["deep"])
}

func TestBreadcrumbsWalkToRoot(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	a := env.createFolder(t, "a", nil, owner.ID)
	b := env.createFolder(t, "b", &a.ID, owner.ID)
	c := env.createFolder(t, "c", &b.ID, owner.ID)

	contents, err := env.folder.ListFolder(c.ID, owner.ID)
	require.NoError(t, err)
	require.Len(t, contents.Breadcrumbs, 3)
	assert.Equal(t, "a", contents.Breadcrumbs[0].Name)
	assert.Equal(t, "c", contents.Breadcrumbs[2].Name)
}

func TestBreadcrumbsStopBelowTrashedAncestor(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	a := env.createFolder(t, "a", nil, owner.ID)
	b := env.createFolder(t, "b", &a.ID, owner.ID)
	c := env.createFolder(t, "c", &b.ID, owner.ID)

	// Shallow delete trashes only a; its live subtree must not render
	// the trashed folder's name in the trail.
	require.NoError(t, env.trash.SoftDeleteFolder(a.ID, owner.ID))

	crumbs, err := env.folder.Breadcrumbs(c.ID)
	require.NoError(t, err)
	require.Len(t, crumbs, 2)
	assert.Equal(t, "b", crumbs[0].Name)
	assert.Equal(t, "c", crumbs[1].Name)
}

func TestRenameFolderRequiresEdit(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	viewer := env.createUser(t, "bob")
	folder := env.createFolder(t, "old", nil, owner.ID)
	env.grant(t, models.ItemTypeFolder, folder.ID, viewer.ID, models.AccessView, owner.ID)

	err := env.folder.RenameFolder(folder.ID, "new", viewer.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, env.folder.RenameFolder(folder.ID, "new", owner.ID))
	updated, err := env.folder.GetFolder(folder.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Name)
}

func TestGetFolderRequiresView(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	stranger := env.createUser(t, "bob")
	viewer := env.createUser(t, "carol")
	folder := env.createFolder(t, "private", nil, owner.ID)
	env.grant(t, models.ItemTypeFolder, folder.ID, viewer.ID, models.AccessView, owner.ID)

	_, err := env.folder.GetFolder(folder.ID, stranger.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := env.folder.GetFolder(folder.ID, viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, "private", got.Name)
}

func TestMoveFolderRejectsSelfParent(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	folder := env.createFolder(t, "loop", nil, owner.ID)

	err := env.folder.MoveFolder(folder.ID, &folder.ID, owner.ID)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestMoveFolderRejectsDescendantCycle(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	a := env.createFolder(t, "a", nil, owner.ID)
	b := env.createFolder(t, "b", &a.ID, owner.ID)
	c := env.createFolder(t, "c", &b.ID, owner.ID)

	err := env.folder.MoveFolder(a.ID, &c.ID, owner.ID)
	assert.ErrorIs(t, err, ErrValidation)

	// Moving a leaf somewhere legal still works.
	require.NoError(t, env.folder.MoveFolder(c.ID, &a.ID, owner.ID))
	moved, err := env.folder.GetFolder(c.ID, owner.ID)
	require.NoError(t, err)
	require.NotNil(t, moved.ParentID)
	assert.Equal(t, a.ID, *moved.ParentID)
}

func TestFolderSizeIsShallowByDefault(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	parent := env.createFolder(t, "parent", nil, owner.ID)
	child := env.createFolder(t, "child", &parent.ID, owner.ID)
	env.createFile(t, "top.txt", &parent.ID, owner.ID, "12345")
	env.createFile(t, "deep.txt", &child.ID, owner.ID, "1234567890")

	size, err := env.folder.FolderSize(parent.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), size)
}

func TestFolderSizeRecursiveWhenEnabled(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	parent := env.createFolder(t, "parent", nil, owner.ID)
	child := env.createFolder(t, "child", &parent.ID, owner.ID)
	env.createFile(t, "top.txt", &parent.ID, owner.ID, "12345")
	env.createFile(t, "deep.txt", &child.ID, owner.ID, "1234567890")

	config.AppConfig.RecursiveSizeEnabled = true
	size, err := env.folder.FolderSize(parent.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(15), size)
}

func TestGetOrCreateFolderPathReusesSegments(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")

	first, err := env.folder.GetOrCreateFolderPath("a/b", nil, owner.ID)
	require.NoError(t, err)
	second, err := env.folder.GetOrCreateFolderPath("a/b/c", nil, owner.ID)
	require.NoError(t, err)

	parentOfC, err := env.folder.GetFolder(*second, owner.ID)
	require.NoError(t, err)
	require.NotNil(t, parentOfC.ParentID)
	assert.Equal(t, *first, *parentOfC.ParentID)
}
