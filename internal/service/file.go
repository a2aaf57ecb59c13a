package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/filecab/filecab/internal/model"
	"github.com/filecab/filecab/internal/repository"
)

var (
	ErrFolderNameRequired = errors.New("folder name is required")
	ErrFileNameRequired   = errors.New("file name is required")
	ErrInvalidFileSize    = errors.New("file size must not be negative")
)

// FileService implements the ownership-scoped folder and file operations.
// Every method takes the resolved principal's id as its scoping argument;
// callers must never pass a client-supplied user id.
type FileService struct {
	folders repository.FolderRepository
	files   repository.FileRepository
}

func NewFileService(folders repository.FolderRepository, files repository.FileRepository) *FileService {
	return &FileService{
		folders: folders,
		files:   files,
	}
}

func (s *FileService) CreateFolder(userID int64, name string) (*model.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrFolderNameRequired
	}

	folder := &model.Folder{
		Name:      name,
		UserID:    userID,
		CreatedAt: time.Now(),
	}

	err := s.folders.Create(folder)
	if err != nil {
		return nil, fmt.Errorf("failed to create folder: %w", err)
	}

	return folder, nil
}

// RenameFolder updates the folder name and returns the number of rows
// affected. Zero means the folder does not exist or belongs to someone else;
// the caller cannot tell which.
func (s *FileService) RenameFolder(folderID, userID int64, newName string) (int64, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return 0, ErrFolderNameRequired
	}

	return s.folders.Rename(folderID, userID, newName)
}

// DeleteFolder removes the folder and its files atomically and returns the
// number of folder rows affected, zero on ownership mismatch or missing row.
func (s *FileService) DeleteFolder(folderID, userID int64) (int64, error) {
	return s.folders.DeleteWithFiles(folderID, userID)
}

// FileMeta describes a successfully uploaded file as reported by the upload
// adapter, plus the owner and optional target folder.
type FileMeta struct {
	Name     string
	Size     int64
	URL      string
	UserID   int64
	FolderID *int64
}

// CreateFile records an uploaded file. When a folder id is given it must
// resolve under the owner's scope; a foreign or missing folder is rejected
// with ErrFolderNotFound so the caller learns nothing about other users'
// folder ids.
func (s *FileService) CreateFile(meta FileMeta) (*model.File, error) {
	name := strings.TrimSpace(meta.Name)
	if name == "" {
		return nil, ErrFileNameRequired
	}
	if meta.Size < 0 {
		return nil, ErrInvalidFileSize
	}

	if meta.FolderID != nil {
		_, err := s.folders.ByIDForUser(*meta.FolderID, meta.UserID)
		if err != nil {
			return nil, err
		}
	}

	file := &model.File{
		Name:       name,
		Size:       meta.Size,
		URL:        meta.URL,
		UserID:     meta.UserID,
		FolderID:   meta.FolderID,
		UploadedAt: time.Now(),
	}

	err := s.files.Create(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create file record: %w", err)
	}

	return file, nil
}

// FoldersWithFiles returns all of a user's folders with their files nested.
func (s *FileService) FoldersWithFiles(userID int64) ([]*model.Folder, error) {
	folders, err := s.folders.ByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}

	for _, folder := range folders {
		files, err := s.files.InFolder(folder.ID, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to list folder files: %w", err)
		}
		folder.Files = files
	}

	return folders, nil
}

// Folders returns a user's folders without their nested files.
func (s *FileService) Folders(userID int64) ([]*model.Folder, error) {
	return s.folders.ByUser(userID)
}

// Files returns every file a user owns, most recent upload first.
func (s *FileService) Files(userID int64) ([]*model.File, error) {
	return s.files.ByUser(userID)
}

func (s *FileService) FilesInFolder(folderID, userID int64) ([]*model.File, error) {
	return s.files.InFolder(folderID, userID)
}

// StandaloneFiles returns the files from allFiles that do not appear in any
// folder's nested file list, preserving the order of allFiles. Pure function:
// no I/O, deterministic, idempotent.
func StandaloneFiles(folders []*model.Folder, allFiles []*model.File) []*model.File {
	inFolder := make(map[int64]struct{})
	for _, folder := range folders {
		for _, file := range folder.Files {
			inFolder[file.ID] = struct{}{}
		}
	}

	standalone := make([]*model.File, 0, len(allFiles))
	for _, file := range allFiles {
		_, ok := inFolder[file.ID]
		if !ok {
			standalone = append(standalone, file)
		}
	}

	return standalone
}
