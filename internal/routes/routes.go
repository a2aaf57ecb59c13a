package routes

import (
	"net/http"

	"github.com/filecab/filecab/internal/app"
	"github.com/filecab/filecab/internal/handler"
	"github.com/filecab/filecab/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	auth := handler.NewAuthHandler(app.AuthService)
	page := handler.NewPageHandler(app.FileService, app.Cfg.AppName)
	file := handler.NewFileHandler(app.FileService, app.Uploader)

	mux := http.NewServeMux()

	// Public pages
	mux.HandleFunc("GET /{$}", page.HomePage)
	mux.HandleFunc("GET /auth", middleware.RequireGuest(auth.AuthPage))

	// Auth actions
	mux.HandleFunc("POST /auth/register", middleware.RequireGuest(auth.Register))
	mux.HandleFunc("POST /auth/login", middleware.RequireGuest(auth.Login))
	mux.HandleFunc("GET /auth/logout", auth.Logout)

	// Protected pages
	mux.HandleFunc("GET /dashboard", middleware.RequireAuth(page.Dashboard))
	mux.HandleFunc("GET /files/upload", middleware.RequireAuth(page.UploadPage))
	mux.HandleFunc("GET /files", middleware.RequireAuth(file.FilesPage))

	// Folder and file actions
	mux.HandleFunc("POST /files/folder", middleware.RequireAuth(file.CreateFolder))
	mux.HandleFunc("POST /files/upload", middleware.RequireAuth(file.Upload))
	mux.HandleFunc("POST /files/folder/update/{folderId}", middleware.RequireAuth(file.UpdateFolder))
	mux.HandleFunc("POST /files/folder/delete/{folderId}", middleware.RequireAuth(file.DeleteFolder))

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.RequestLogging,
		app.Sessions.Middleware, // resolves session + current user for every request
	)

	return handler
}
