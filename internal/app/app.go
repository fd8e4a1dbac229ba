package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"ReviewPipeline/internal/cache"
	"ReviewPipeline/internal/config"
	"ReviewPipeline/internal/infrastructure/scheduler"
	"ReviewPipeline/internal/infrastructure/storage"
	"ReviewPipeline/internal/infrastructure/storeapi"
	"ReviewPipeline/internal/infrastructure/telegram"
	"ReviewPipeline/internal/normalize"
	"ReviewPipeline/internal/ports"
	"ReviewPipeline/internal/sentiment"
	"ReviewPipeline/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pool     *pgxpool.Pool
	pipeline *usecase.Pipeline
}

// New connects the database and builds the full pipeline.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Application, error) {
	pool, err := storage.Connect(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	directory := storage.NewGameDirectory(pool)
	games := cache.NewGames(directory)

	client := storeapi.NewClient(cfg.Store.BaseURL, cfg.Store.PageSize, cfg.Store.Timeout())
	paginator := storeapi.NewPaginator(client, logger.With("component", "paginator"))
	source := storeapi.NewSource(paginator, cfg.Pipeline.Concurrency, logger.With("component", "source"))

	var notifier ports.Notifier
	if tg := cfg.Notifications.Telegram; tg.BotToken != "" && tg.ChatID != "" {
		notifier = telegram.NewNotifier(tg.BotToken, tg.ChatID)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Directory:  directory,
		Source:     source,
		Normalizer: normalize.New(games, logger.With("component", "normalizer")),
		Scorer:     sentiment.NewScorer(logger.With("component", "sentiment")),
		Loader:     usecase.NewLoader(games, storage.NewReviewStore(pool), logger.With("component", "loader")),
		Notifier:   notifier,
		Lookback:   cfg.Pipeline.Lookback(),
		Logger:     logger.With("component", "pipeline"),
	})

	return &Application{cfg: cfg, logger: logger, pool: pool, pipeline: pipeline}, nil
}

// Run performs a single ingest, or keeps re-running it on an interval
// when the scheduler is enabled.
func (a *Application) Run(ctx context.Context) error {
	if a.cfg.Database.Migrate {
		migration := filepath.Join("migrations", "0001_review.sql")
		if err := storage.RunMigration(ctx, a.pool, migration); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
		a.logger.Info("migration applied", "path", migration)
	}

	if !a.cfg.Scheduler.Enabled {
		_, err := a.pipeline.Run(ctx, time.Now().UTC())
		return err
	}

	driver := scheduler.NewIntervalScheduler(a.cfg.Scheduler.Interval())
	runner := usecase.NewScheduler(driver, a.pipeline)
	if err := runner.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	<-ctx.Done()
	if err := runner.Stop(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("stop scheduler: %w", err)
	}
	if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Close releases the database pool.
func (a *Application) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}
