package middleware

import (
	"net/http"

	"github.com/filecab/filecab/internal/ctxkeys"
)

// RequireAuth gates protected routes: the request continues only when the
// session middleware resolved a principal, otherwise the client is redirected
// to the login entry point. Never mutates the session.
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := ctxkeys.User(r.Context())
		if user == nil {
			http.Redirect(w, r, "/auth?mode=login", http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r)
	}
}

// RequireGuest keeps already-authenticated users off the login/register pages.
func RequireGuest(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := ctxkeys.User(r.Context())
		if user != nil {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r)
	}
}
