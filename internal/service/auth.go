package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/filecab/filecab/internal/model"
	"github.com/filecab/filecab/internal/repository"
	"github.com/filecab/filecab/internal/session"
	"github.com/filecab/filecab/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrNameRequired       = errors.New("name is required")
)

// dummyHash keeps credential verification cost uniform when the email does
// not resolve to a user, so lookup miss and password mismatch are
// indistinguishable to the caller in both shape and timing.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("filecab.no.such.user"), bcrypt.DefaultCost)

type AuthService struct {
	users    repository.UserRepository
	sessions *session.Manager
}

func NewAuthService(users repository.UserRepository, sessions *session.Manager) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
	}
}

// Register creates a new user with a bcrypt password digest.
func (s *AuthService) Register(name, email, password string) (*model.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))

	err := validation.ValidateName(name)
	if err != nil {
		return nil, fmt.Errorf("invalid name: %w", ErrNameRequired)
	}

	err = validation.ValidateEmail(email)
	if err != nil {
		return nil, err
	}

	err = validation.ValidatePassword(password)
	if err != nil {
		return nil, err
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}

	err = s.users.Create(user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, fmt.Errorf("duplicate email: %w", ErrEmailAlreadyExists)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user registered", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// VerifyCredentials checks an email/password pair. An unknown email and a
// wrong password both return ErrInvalidCredentials, never revealing which
// part was wrong.
func (s *AuthService) VerifyCredentials(email, password string) (*model.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.users.ByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Burn a compare so the miss costs the same as a mismatch.
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, fmt.Errorf("invalid credentials: %w", ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	err = s.ComparePassword(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", ErrInvalidCredentials)
	}

	return user, nil
}

// Login writes the principal reference into the session. The session token is
// rotated first so a token issued before authentication never names an
// authenticated session.
func (s *AuthService) Login(sess *session.Session, user *model.User) error {
	err := s.sessions.RenewToken(sess)
	if err != nil {
		return fmt.Errorf("failed to renew session token: %w", err)
	}

	sess.SetPrincipal(user.ID)
	slog.Info("user logged in", "user_id", user.ID)
	return nil
}

// Logout removes the principal reference from the session. Safe to call on a
// session that is already logged out.
func (s *AuthService) Logout(sess *session.Session) {
	sess.ClearPrincipal()
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func (s *AuthService) ComparePassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
