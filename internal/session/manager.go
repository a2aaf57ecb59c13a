package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/filecab/filecab/internal/ctxkeys"
	"github.com/filecab/filecab/internal/model"
	"github.com/filecab/filecab/internal/repository"
)

// UserResolver resolves a principal reference to a full user record.
// repository.UserRepository satisfies it.
type UserResolver interface {
	ByID(id int64) (*model.User, error)
}

// Config holds the tunables for the session lifecycle.
type Config struct {
	TTL           time.Duration
	SweepInterval time.Duration
	CookieName    string
	Secure        bool
}

// Manager drives the per-request session lifecycle: it resolves the incoming
// cookie to a session handle, resolves the principal reference to a user, and
// persists the session (and sets the cookie) at the end of the request if the
// session was created or mutated. Untouched sessions are never rewritten.
type Manager struct {
	store         Store
	users         UserResolver
	ttl           time.Duration
	sweepInterval time.Duration
	cookieName    string
	secure        bool
}

func NewManager(store Store, users UserResolver, cfg Config) *Manager {
	return &Manager{
		store:         store,
		users:         users,
		ttl:           cfg.TTL,
		sweepInterval: cfg.SweepInterval,
		cookieName:    cfg.CookieName,
		secure:        cfg.Secure,
	}
}

// Middleware loads or creates the request's session, resolves the current
// user, and exposes both downstream via the request context.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := m.load(r)
		if err != nil {
			slog.Error("failed to load session", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		user, err := m.resolvePrincipal(sess)
		if err != nil {
			slog.Error("failed to resolve session principal", "error", err, "token", sess.token)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		ctx := NewContext(r.Context(), sess)
		if user != nil {
			ctx = ctxkeys.WithUser(ctx, user)
		}

		cw := &commitWriter{ResponseWriter: w, manager: m, session: sess}
		next.ServeHTTP(cw, r.WithContext(ctx))

		// Handlers that produced no output still get their session persisted.
		cw.commit()
	})
}

// load turns the transport-level cookie into a session handle. A missing
// cookie, an unknown token, an expired row, or a corrupt data blob all yield
// a fresh session, which is not persisted until something mutates it.
func (m *Manager) load(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return m.create()
	}

	rec, err := m.store.Get(cookie.Value)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return m.create()
		}
		return nil, err
	}

	sess, err := fromRecord(rec)
	if err != nil {
		slog.Warn("discarding session with undecodable data", "token", rec.Token, "error", err)
		return m.create()
	}

	return sess, nil
}

func (m *Manager) create() (*Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}
	return newSession(token, m.ttl), nil
}

// resolvePrincipal turns the session's principal reference into a full user.
// A reference that no longer resolves (deleted account) is cleared and the
// request proceeds anonymously rather than failing.
func (m *Manager) resolvePrincipal(sess *Session) (*model.User, error) {
	id, ok := sess.Principal()
	if !ok {
		return nil, nil
	}

	user, err := m.users.ByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			slog.Warn("session references missing user, clearing principal", "user_id", id)
			sess.ClearPrincipal()
			return nil, nil
		}
		return nil, err
	}

	// Never expose the password hash to downstream handlers.
	user.PasswordHash = ""

	return user, nil
}

// RenewToken swaps the session token for a freshly generated one and drops
// the old persisted row. Called at login so a token handed out before
// authentication can never name an authenticated session.
func (m *Manager) RenewToken(sess *Session) error {
	token, err := generateToken()
	if err != nil {
		return err
	}

	if !sess.isNew {
		err = m.store.Delete(sess.token)
		if err != nil {
			return err
		}
	}

	sess.token = token
	sess.isNew = true
	sess.dirty = true
	return nil
}

// Sweep periodically removes expired session rows until ctx is canceled.
func (m *Manager) Sweep(ctx context.Context) {
	ticker := time.NewTicker(m.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := m.store.DeleteExpired()
			if err != nil {
				slog.Error("session sweep failed", "error", err)
				continue
			}
			if count > 0 {
				slog.Debug("session sweep removed expired sessions", "count", count)
			}
		}
	}
}

// commit persists a dirty session and instructs the client to carry the
// (possibly new) token. Runs before the first response byte so the Set-Cookie
// header can still be written.
func (m *Manager) commit(w http.ResponseWriter, sess *Session) {
	if !sess.dirty {
		return
	}

	sess.expiresAt = time.Now().Add(m.ttl)

	data, err := sess.encode()
	if err != nil {
		slog.Error("failed to encode session data", "error", err, "token", sess.token)
		return
	}

	err = m.store.Set(sess.token, data, sess.expiresAt)
	if err != nil {
		slog.Error("failed to persist session", "error", err, "token", sess.token)
		return
	}

	sess.dirty = false
	sess.isNew = false

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    sess.token,
		Expires:  sess.expiresAt,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// commitWriter defers session persistence until the response is about to be
// written, so only sessions that were actually mutated hit the store.
type commitWriter struct {
	http.ResponseWriter
	manager   *Manager
	session   *Session
	committed bool
}

func (cw *commitWriter) WriteHeader(code int) {
	cw.commit()
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *commitWriter) Write(b []byte) (int, error) {
	cw.commit()
	return cw.ResponseWriter.Write(b)
}

func (cw *commitWriter) commit() {
	if cw.committed {
		return
	}
	cw.committed = true
	cw.manager.commit(cw.ResponseWriter, cw.session)
}
