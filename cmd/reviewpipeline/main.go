package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"ReviewPipeline/internal/app"
	"ReviewPipeline/internal/config"
	"ReviewPipeline/internal/logging"
	"ReviewPipeline/internal/usecase"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	if err := application.Run(ctx); err != nil {
		if errors.Is(err, usecase.ErrNoRecentGames) {
			logger.Info("nothing to ingest", "reason", err)
			return
		}
		logger.Error("pipeline stopped", "error", err)
		os.Exit(1)
	}
}
