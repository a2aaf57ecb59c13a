package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/filecab/filecab/internal/service"
	"github.com/filecab/filecab/internal/session"
	"github.com/filecab/filecab/internal/ui"
	"github.com/filecab/filecab/internal/validation"
)

type authHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *authHandler {
	return &authHandler{authService: authService}
}

// AuthPage renders the combined login/register page based on ?mode.
func (h *authHandler) AuthPage(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("mode")
	if mode != "register" {
		mode = "login"
	}

	title := "Login"
	if mode == "register" {
		title = "Register"
	}

	ui.Render(w, "auth.html", map[string]any{
		"Title": title,
		"Mode":  mode,
	})
}

func (h *authHandler) Register(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.FormValue("name"))
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	if msg := registrationError(name, email, password); msg != "" {
		w.WriteHeader(http.StatusBadRequest)
		ui.Render(w, "auth.html", map[string]any{
			"Title": "Register",
			"Mode":  "register",
			"Error": msg,
		})
		return
	}

	_, err := h.authService.Register(name, email, password)
	if err != nil {
		if errors.Is(err, service.ErrEmailAlreadyExists) {
			w.WriteHeader(http.StatusBadRequest)
			ui.Render(w, "auth.html", map[string]any{
				"Title": "Register",
				"Mode":  "register",
				"Error": "Email is already registered",
			})
			return
		}
		slog.Error("registration failed", "error", err)
		ui.RenderError(w, http.StatusInternalServerError, "Error creating account")
		return
	}

	http.Redirect(w, r, "/auth?mode=login", http.StatusSeeOther)
}

func registrationError(name, email, password string) string {
	if err := validation.ValidateName(name); err != nil {
		return err.Error()
	}
	if err := validation.ValidateEmail(email); err != nil {
		return err.Error()
	}
	if err := validation.ValidatePassword(password); err != nil {
		return err.Error()
	}
	return ""
}

func (h *authHandler) Login(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	user, err := h.authService.VerifyCredentials(email, password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			http.Redirect(w, r, "/auth?mode=login", http.StatusSeeOther)
			return
		}
		slog.Error("credential verification failed", "error", err)
		ui.RenderError(w, http.StatusInternalServerError, "Error logging in")
		return
	}

	sess := session.FromContext(r.Context())
	err = h.authService.Login(sess, user)
	if err != nil {
		slog.Error("login failed", "error", err, "user_id", user.ID)
		ui.RenderError(w, http.StatusInternalServerError, "Error logging in")
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// Logout clears the principal from the session. Idempotent: logging out while
// already logged out just redirects.
func (h *authHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	h.authService.Logout(sess)
	http.Redirect(w, r, "/auth?mode=login", http.StatusSeeOther)
}
