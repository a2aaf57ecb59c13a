package repository

import (
	"testing"
	"time"

	"github.com/filecab/filecab/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFolderByIDForUserCollapsesForeignAndMissing(t *testing.T) {
	database := newTestDB(t)
	users := NewUserRepository(database)
	folders := NewFolderRepository(database)

	alice := newUser("alice@example.com")
	require.NoError(t, users.Create(alice))
	bob := newUser("bob@example.com")
	require.NoError(t, users.Create(bob))

	folder := &model.Folder{Name: "Receipts", UserID: alice.ID, CreatedAt: time.Now()}
	require.NoError(t, folders.Create(folder))

	got, err := folders.ByIDForUser(folder.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Receipts", got.Name)

	_, foreignErr := folders.ByIDForUser(folder.ID, bob.ID)
	_, missingErr := folders.ByIDForUser(99999, alice.ID)
	assert.ErrorIs(t, foreignErr, ErrFolderNotFound)
	assert.ErrorIs(t, missingErr, ErrFolderNotFound)
}

func TestDeleteWithFilesLeavesOtherRowsAlone(t *testing.T) {
	database := newTestDB(t)
	users := NewUserRepository(database)
	folders := NewFolderRepository(database)
	files := NewFileRepository(database)

	alice := newUser("alice@example.com")
	require.NoError(t, users.Create(alice))

	receipts := &model.Folder{Name: "Receipts", UserID: alice.ID, CreatedAt: time.Now()}
	require.NoError(t, folders.Create(receipts))
	photos := &model.Folder{Name: "Photos", UserID: alice.ID, CreatedAt: time.Now()}
	require.NoError(t, folders.Create(photos))

	inReceipts := &model.File{Name: "a.pdf", Size: 1, URL: "u1", UserID: alice.ID, FolderID: &receipts.ID, UploadedAt: time.Now()}
	require.NoError(t, files.Create(inReceipts))
	inPhotos := &model.File{Name: "p.png", Size: 1, URL: "u2", UserID: alice.ID, FolderID: &photos.ID, UploadedAt: time.Now()}
	require.NoError(t, files.Create(inPhotos))

	affected, err := folders.DeleteWithFiles(receipts.ID, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	remaining, err := files.ByUser(alice.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "p.png", remaining[0].Name)

	left, err := folders.ByUser(alice.ID)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "Photos", left[0].Name)
}
