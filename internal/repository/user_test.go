package repository

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/filecab/filecab/internal/db"
	"github.com/filecab/filecab/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := db.Init("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	require.NoError(t, db.RunMigrations(database.DB, "sqlite"))
	return database
}

func newUser(email string) *model.User {
	return &model.User{
		Name:         "Test User",
		Email:        email,
		PasswordHash: "$2a$10$irrelevant",
		CreatedAt:    time.Now(),
	}
}

func TestUserCreateAssignsID(t *testing.T) {
	users := NewUserRepository(newTestDB(t))

	alice := newUser("alice@example.com")
	require.NoError(t, users.Create(alice))
	assert.NotZero(t, alice.ID)

	bob := newUser("bob@example.com")
	require.NoError(t, users.Create(bob))
	assert.NotEqual(t, alice.ID, bob.ID)
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	users := NewUserRepository(newTestDB(t))

	require.NoError(t, users.Create(newUser("alice@example.com")))

	err := users.Create(newUser("alice@example.com"))
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestUserByID(t *testing.T) {
	users := NewUserRepository(newTestDB(t))

	alice := newUser("alice@example.com")
	require.NoError(t, users.Create(alice))

	got, err := users.ByID(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.Email, got.Email)
	assert.Equal(t, alice.Name, got.Name)

	_, err = users.ByID(99999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserByEmail(t *testing.T) {
	users := NewUserRepository(newTestDB(t))

	alice := newUser("alice@example.com")
	require.NoError(t, users.Create(alice))

	got, err := users.ByEmail("alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	_, err = users.ByEmail("nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
