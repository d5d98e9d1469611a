package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/strideapp/stride/internal/app"
	"github.com/strideapp/stride/internal/config"
	"github.com/strideapp/stride/internal/logger"
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

	// The engine is a library; the web handler layer mounts it. Running the
	// binary directly just brings the store up, applies migrations, and waits.
	slog.Info("engine ready", "env", cfg.AppEnv, "db_driver", cfg.DBDriver)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	slog.Info("shutting down")
}
