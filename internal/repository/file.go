package repository

import (
	"errors"

	"github.com/filecab/filecab/internal/model"
	"github.com/jmoiron/sqlx"
)

var (
	ErrFileNotFound = errors.New("file not found")
)

type FileRepository interface {
	Create(file *model.File) error
	ByUser(userID int64) ([]*model.File, error)
	InFolder(folderID, userID int64) ([]*model.File, error)
}

type fileRepository struct {
	db *sqlx.DB
}

func NewFileRepository(db *sqlx.DB) FileRepository {
	return &fileRepository{db: db}
}

func (r *fileRepository) Create(file *model.File) error {
	query := `INSERT INTO files (name, size, url, user_id, folder_id, uploaded_at)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`

	return r.db.QueryRow(query,
		file.Name,
		file.Size,
		file.URL,
		file.UserID,
		file.FolderID,
		file.UploadedAt,
	).Scan(&file.ID)
}

// ByUser returns all of a user's files, most recent upload first. Files that
// share an upload timestamp keep their insertion order.
func (r *fileRepository) ByUser(userID int64) ([]*model.File, error) {
	var files []*model.File
	query := `SELECT * FROM files WHERE user_id = $1 ORDER BY uploaded_at DESC, id ASC`

	err := r.db.Select(&files, query, userID)
	if err != nil {
		return nil, err
	}

	return files, nil
}

func (r *fileRepository) InFolder(folderID, userID int64) ([]*model.File, error) {
	var files []*model.File
	query := `SELECT * FROM files WHERE folder_id = $1 AND user_id = $2 ORDER BY uploaded_at DESC, id ASC`

	err := r.db.Select(&files, query, folderID, userID)
	if err != nil {
		return nil, err
	}

	return files, nil
}
