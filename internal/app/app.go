package app

import (
	"fmt"

	"github.com/filecab/filecab/internal/config"
	"github.com/filecab/filecab/internal/db"
	"github.com/filecab/filecab/internal/repository"
	"github.com/filecab/filecab/internal/service"
	"github.com/filecab/filecab/internal/session"
	"github.com/filecab/filecab/internal/storage"
	"github.com/jmoiron/sqlx"
)

type App struct {
	Cfg         *config.Config
	DB          *sqlx.DB
	Sessions    *session.Manager
	AuthService *service.AuthService
	FileService *service.FileService
	Uploader    storage.Uploader
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	folderRepository := repository.NewFolderRepository(database)
	fileRepository := repository.NewFileRepository(database)

	// Sessions
	sessionStore := session.NewStore(database)
	sessions := session.NewManager(sessionStore, userRepository, session.Config{
		TTL:           cfg.SessionTTL,
		SweepInterval: cfg.SessionSweepInterval,
		CookieName:    cfg.SessionCookieName,
		Secure:        cfg.IsProduction(),
	})

	// Storage
	uploader, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %v", err)
	}

	// Services
	authService := service.NewAuthService(userRepository, sessions)
	fileService := service.NewFileService(folderRepository, fileRepository)

	return &App{
		Cfg:         cfg,
		DB:          database,
		Sessions:    sessions,
		AuthService: authService,
		FileService: fileService,
		Uploader:    uploader,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
