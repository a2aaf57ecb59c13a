package model

import (
	"time"
)

type File struct {
	ID         int64     `db:"id"`
	Name       string    `db:"name"`
	Size       int64     `db:"size"`
	URL        string    `db:"url"`
	UserID     int64     `db:"user_id"`
	FolderID   *int64    `db:"folder_id"` // nil = standalone file
	UploadedAt time.Time `db:"uploaded_at"`
}

// InFolder reports whether the file is attached to a folder.
func (f *File) InFolder() bool {
	return f.FolderID != nil
}
