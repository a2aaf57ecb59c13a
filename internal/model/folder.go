package model

import (
	"time"
)

type Folder struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	UserID    int64     `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`

	// Populated by FoldersWithFiles, not a database column
	Files []*File `db:"-"`
}
