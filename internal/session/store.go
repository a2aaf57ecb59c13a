package session

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var (
	ErrSessionNotFound = errors.New("session not found")
)

// Record is a persisted session row. Data is an opaque blob owned by the
// session package; the store never inspects it.
type Record struct {
	Token     string    `db:"token"`
	Data      string    `db:"data"`
	ExpiresAt time.Time `db:"expires_at"`
}

// Store persists session records keyed by token. Implementations must treat
// an expired row the same as a missing one: the sweep may remove it at any
// time, so callers can never rely on expired rows being present.
type Store interface {
	Get(token string) (*Record, error)
	Set(token, data string, expiresAt time.Time) error
	Delete(token string) error
	DeleteExpired() (int64, error)
}

type sqlStore struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) Store {
	return &sqlStore{db: db}
}

func (s *sqlStore) Get(token string) (*Record, error) {
	rec := &Record{}
	query := `SELECT * FROM sessions WHERE token = $1`

	err := s.db.Get(rec, query, token)
	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	// An expired row is reported as missing; the sweep removes it eventually.
	if !rec.ExpiresAt.After(time.Now()) {
		return nil, ErrSessionNotFound
	}

	return rec, nil
}

func (s *sqlStore) Set(token, data string, expiresAt time.Time) error {
	query := `INSERT INTO sessions (token, data, expires_at) VALUES ($1, $2, $3)
	          ON CONFLICT (token) DO UPDATE SET data = excluded.data, expires_at = excluded.expires_at`

	_, err := s.db.Exec(query, token, data, expiresAt)
	return err
}

func (s *sqlStore) Delete(token string) error {
	query := `DELETE FROM sessions WHERE token = $1`

	_, err := s.db.Exec(query, token)
	return err
}

func (s *sqlStore) DeleteExpired() (int64, error) {
	query := `DELETE FROM sessions WHERE expires_at <= $1`

	result, err := s.db.Exec(query, time.Now())
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
