package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Session is the live per-request handle for server-side session state. It
// carries at most a principal reference (the user id written at login), never
// a cached user record. All mutations flip the dirty flag so the manager
// knows to persist the session and set the cookie at the end of the request.
type Session struct {
	token        string
	principalRef *int64
	expiresAt    time.Time
	isNew        bool
	dirty        bool
}

// sessionData is the shape of the opaque blob stored in the sessions table.
type sessionData struct {
	PrincipalRef *int64 `json:"principalRef,omitempty"`
}

func newSession(token string, ttl time.Duration) *Session {
	return &Session{
		token:     token,
		expiresAt: time.Now().Add(ttl),
		isNew:     true,
	}
}

func fromRecord(rec *Record) (*Session, error) {
	var data sessionData
	err := json.Unmarshal([]byte(rec.Data), &data)
	if err != nil {
		return nil, err
	}

	return &Session{
		token:        rec.Token,
		principalRef: data.PrincipalRef,
		expiresAt:    rec.ExpiresAt,
	}, nil
}

func (s *Session) encode() (string, error) {
	data, err := json.Marshal(sessionData{PrincipalRef: s.principalRef})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s *Session) Token() string {
	return s.token
}

func (s *Session) ExpiresAt() time.Time {
	return s.expiresAt
}

// IsNew reports whether the session was created during this request and has
// never been persisted.
func (s *Session) IsNew() bool {
	return s.isNew
}

// Dirty reports whether the session was mutated and needs to be persisted.
func (s *Session) Dirty() bool {
	return s.dirty
}

// Principal returns the principal reference stored in the session, if any.
func (s *Session) Principal() (int64, bool) {
	if s.principalRef == nil {
		return 0, false
	}
	return *s.principalRef, true
}

// SetPrincipal writes the principal reference into the session. This is the
// only path that associates an identity with a session.
func (s *Session) SetPrincipal(userID int64) {
	s.principalRef = &userID
	s.dirty = true
}

// ClearPrincipal removes the principal reference. Calling it on a session
// without a principal is a no-op, so logout is idempotent.
func (s *Session) ClearPrincipal() {
	if s.principalRef == nil {
		return
	}
	s.principalRef = nil
	s.dirty = true
}

// generateToken returns a 64-character hex token from a CSPRNG.
func generateToken() (string, error) {
	bytes := make([]byte, 32)
	_, err := rand.Read(bytes)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

type contextKey string

const sessionKey contextKey = "session"

// NewContext returns a context carrying the session handle.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// FromContext returns the session handle attached by the manager middleware,
// or nil outside of it.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey).(*Session)
	return s
}
