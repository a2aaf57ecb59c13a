package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/filecab/filecab/internal/model"
	"github.com/jmoiron/sqlx"
)

var (
	ErrFolderNotFound = errors.New("folder not found")
)

type FolderRepository interface {
	Create(folder *model.Folder) error
	ByIDForUser(id, userID int64) (*model.Folder, error)
	ByUser(userID int64) ([]*model.Folder, error)
	Rename(id, userID int64, name string) (int64, error)
	DeleteWithFiles(id, userID int64) (int64, error)
}

type folderRepository struct {
	db *sqlx.DB
}

func NewFolderRepository(db *sqlx.DB) FolderRepository {
	return &folderRepository{db: db}
}

func (r *folderRepository) Create(folder *model.Folder) error {
	query := `INSERT INTO folders (name, user_id, created_at) VALUES ($1, $2, $3) RETURNING id`

	return r.db.QueryRow(query, folder.Name, folder.UserID, folder.CreatedAt).Scan(&folder.ID)
}

// ByIDForUser loads a folder only if it belongs to the given user. A folder
// owned by someone else is reported as ErrFolderNotFound, same as a missing row.
func (r *folderRepository) ByIDForUser(id, userID int64) (*model.Folder, error) {
	folder := &model.Folder{}
	query := `SELECT * FROM folders WHERE id = $1 AND user_id = $2`

	err := r.db.Get(folder, query, id, userID)
	if err == sql.ErrNoRows {
		return nil, ErrFolderNotFound
	}

	return folder, err
}

func (r *folderRepository) ByUser(userID int64) ([]*model.Folder, error) {
	var folders []*model.Folder
	query := `SELECT * FROM folders WHERE user_id = $1 ORDER BY created_at ASC, id ASC`

	err := r.db.Select(&folders, query, userID)
	if err != nil {
		return nil, err
	}

	return folders, nil
}

// Rename updates the folder name with the ownership check built into the
// predicate. Returns the number of rows affected: 0 means the folder does not
// exist or is not owned by userID, and the two cases are indistinguishable.
func (r *folderRepository) Rename(id, userID int64, name string) (int64, error) {
	query := `UPDATE folders SET name = $1 WHERE id = $2 AND user_id = $3`

	result, err := r.db.Exec(query, name, id, userID)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// DeleteWithFiles removes the folder and every file inside it in a single
// transaction. Both deletes carry the same ownership predicate so a guessed
// folder id can never touch another user's rows.
func (r *folderRepository) DeleteWithFiles(id, userID int64) (int64, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`DELETE FROM files WHERE folder_id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete folder files: %w", err)
	}

	result, err := tx.Exec(`DELETE FROM folders WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete folder: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	err = tx.Commit()
	if err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return affected, nil
}
