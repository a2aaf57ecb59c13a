package ui

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

// Render writes the named page with the given data. Render failures after
// the first byte can only be logged, not surfaced.
func Render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := templates.ExecuteTemplate(w, name, data)
	if err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
	}
}

// RenderError writes the generic failure page without leaking internals.
func RenderError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	err := templates.ExecuteTemplate(w, "error.html", map[string]any{
		"Title":   "Error",
		"Message": message,
	})
	if err != nil {
		slog.Error("failed to render error template", "error", err)
	}
}
