package main

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/filecab/filecab/internal/app"
	"github.com/filecab/filecab/internal/config"
	"github.com/filecab/filecab/internal/logger"
	"github.com/filecab/filecab/internal/routes"
)

func main() {
	cfg := config.Load()

	logger.Init(cfg.IsDevelopment(), cfg.SentryDSN)

	app, err := app.New(cfg)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		panic(err)
	}
	defer func() {
		closeErr := app.Close()
		if closeErr != nil {
			slog.Error("failed to close app", "error", closeErr)
		}
	}()

	// Background sweep of expired sessions
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go app.Sessions.Sweep(ctx)

	handler := routes.SetupRoutes(app)
	slog.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv, "url", "http://localhost:"+cfg.Port)

	err = http.ListenAndServe(":"+cfg.Port, handler)
	if err != nil {
		slog.Error("server failed", "error", err)
		panic(err)
	}
}
