package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/filecab/filecab/internal/ctxkeys"
	"github.com/filecab/filecab/internal/repository"
	"github.com/filecab/filecab/internal/service"
	"github.com/filecab/filecab/internal/storage"
	"github.com/filecab/filecab/internal/ui"
)

const maxUploadMemory = 32 << 20 // 32 MB held in memory, rest spools to disk

type fileHandler struct {
	fileService *service.FileService
	uploader    storage.Uploader
}

func NewFileHandler(fileService *service.FileService, uploader storage.Uploader) *fileHandler {
	return &fileHandler{
		fileService: fileService,
		uploader:    uploader,
	}
}

func (h *fileHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	name := strings.TrimSpace(r.FormValue("folderName"))

	_, err := h.fileService.CreateFolder(user.ID, name)
	if err != nil {
		if errors.Is(err, service.ErrFolderNameRequired) {
			http.Error(w, "Folder name is required", http.StatusBadRequest)
			return
		}
		slog.Error("failed to create folder", "error", err, "user_id", user.ID)
		ui.RenderError(w, http.StatusInternalServerError, "Error creating folder")
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// Upload hands the uploaded bytes to the storage adapter and records the
// returned metadata, optionally attaching the file to one of the user's
// folders.
func (h *fileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	err := r.ParseMultipartForm(maxUploadMemory)
	if err != nil {
		http.Error(w, "Invalid upload", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "No file uploaded", http.StatusBadRequest)
		return
	}
	defer file.Close()

	var folderID *int64
	if v := r.FormValue("folderId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			http.Error(w, "Invalid folder id", http.StatusBadRequest)
			return
		}
		folderID = &id
	}

	upload, err := h.uploader.Upload(header.Filename, header.Size, file)
	if err != nil {
		slog.Error("file upload failed", "error", err, "user_id", user.ID)
		ui.RenderError(w, http.StatusInternalServerError, "File upload failed")
		return
	}

	_, err = h.fileService.CreateFile(service.FileMeta{
		Name:     upload.Name,
		Size:     upload.Size,
		URL:      upload.URL,
		UserID:   user.ID,
		FolderID: folderID,
	})
	if err != nil {
		if errors.Is(err, repository.ErrFolderNotFound) {
			http.Error(w, "Folder not found", http.StatusNotFound)
			return
		}
		slog.Error("failed to record file", "error", err, "user_id", user.ID)
		ui.RenderError(w, http.StatusInternalServerError, "File upload failed")
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// FilesPage lists all of the user's files, most recent first.
func (h *fileHandler) FilesPage(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	files, err := h.fileService.Files(user.ID)
	if err != nil {
		slog.Error("failed to list files", "error", err, "user_id", user.ID)
		ui.RenderError(w, http.StatusInternalServerError, "Failed to retrieve files")
		return
	}

	ui.Render(w, "files.html", map[string]any{
		"Title": "My Files",
		"Files": files,
	})
}

func (h *fileHandler) UpdateFolder(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	folderID, err := strconv.ParseInt(r.PathValue("folderId"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid folder id", http.StatusBadRequest)
		return
	}

	newName := strings.TrimSpace(r.FormValue("newName"))

	_, err = h.fileService.RenameFolder(folderID, user.ID, newName)
	if err != nil {
		if errors.Is(err, service.ErrFolderNameRequired) {
			http.Error(w, "Folder name is required", http.StatusBadRequest)
			return
		}
		slog.Error("failed to rename folder", "error", err, "user_id", user.ID, "folder_id", folderID)
		ui.RenderError(w, http.StatusInternalServerError, "Error updating folder")
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *fileHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	folderID, err := strconv.ParseInt(r.PathValue("folderId"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid folder id", http.StatusBadRequest)
		return
	}

	_, err = h.fileService.DeleteFolder(folderID, user.ID)
	if err != nil {
		slog.Error("failed to delete folder", "error", err, "user_id", user.ID, "folder_id", folderID)
		ui.RenderError(w, http.StatusInternalServerError, "Error deleting folder")
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}
