package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/pietro-fantini/vibe-growth/internal/app"
	"github.com/pietro-fantini/vibe-growth/internal/config"
	"github.com/pietro-fantini/vibe-growth/internal/logger"
	"github.com/pietro-fantini/vibe-growth/internal/routes"
)

func main() {
	cfg := config.Load()

	logger.Init(cfg.IsDevelopment(), cfg.SentryDSN)

	app, err := app.New(cfg)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		os.Exit(1)
	}
	defer func() {
		closeErr := app.Close()
		if closeErr != nil {
			slog.Error("failed to close app", "error", closeErr)
		}
	}()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.SetupRoutes(app),
		ReadHeaderTimeout: 5 * time.Second,
	}

	slog.Info("server starting",
		"app", cfg.AppName,
		"port", cfg.Port,
		"env", cfg.AppEnv,
		"db_driver", cfg.DBDriver,
		"rollover_endpoint_guarded", cfg.RolloverToken != "",
	)

	err = srv.ListenAndServe()
	if err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
