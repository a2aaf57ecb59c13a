package handler

import (
	"log/slog"
	"net/http"

	"github.com/filecab/filecab/internal/ctxkeys"
	"github.com/filecab/filecab/internal/service"
	"github.com/filecab/filecab/internal/ui"
)

type pageHandler struct {
	fileService *service.FileService
	appName     string
}

func NewPageHandler(fileService *service.FileService, appName string) *pageHandler {
	return &pageHandler{fileService: fileService, appName: appName}
}

func (h *pageHandler) HomePage(w http.ResponseWriter, r *http.Request) {
	ui.Render(w, "index.html", map[string]any{"Title": h.appName})
}

// Dashboard shows the user's folders with their files plus standalone files.
func (h *pageHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	folders, err := h.fileService.FoldersWithFiles(user.ID)
	if err != nil {
		slog.Error("failed to load folders", "error", err, "user_id", user.ID)
		ui.RenderError(w, http.StatusInternalServerError, "Error loading dashboard")
		return
	}

	files, err := h.fileService.Files(user.ID)
	if err != nil {
		slog.Error("failed to load files", "error", err, "user_id", user.ID)
		ui.RenderError(w, http.StatusInternalServerError, "Error loading dashboard")
		return
	}

	ui.Render(w, "dashboard.html", map[string]any{
		"Title":   "Dashboard",
		"User":    user,
		"Folders": folders,
		"Files":   service.StandaloneFiles(folders, files),
	})
}

// UploadPage renders the upload form with the user's folders to choose from.
func (h *pageHandler) UploadPage(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	folders, err := h.fileService.Folders(user.ID)
	if err != nil {
		slog.Error("failed to load folders", "error", err, "user_id", user.ID)
		ui.RenderError(w, http.StatusInternalServerError, "Failed to load upload view")
		return
	}

	ui.Render(w, "upload.html", map[string]any{
		"Title":   "Upload File",
		"Folders": folders,
	})
}
