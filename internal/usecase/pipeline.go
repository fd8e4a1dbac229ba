package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ReviewPipeline/internal/normalize"
	"ReviewPipeline/internal/ports"
	"ReviewPipeline/internal/sentiment"
)

// ErrNoRecentGames reports that the catalog holds no games released
// inside the lookback window. This is an expected, terminal outcome of a
// run, not a failure of the pipeline itself.
var ErrNoRecentGames = errors.New("no recently released games to ingest")

// PipelineDeps wires all collaborators into the ingest workflow.
type PipelineDeps struct {
	Directory  ports.GameDirectory
	Source     ports.ReviewSource
	Normalizer *normalize.Normalizer
	Scorer     *sentiment.Scorer
	Loader     *Loader
	Notifier   ports.Notifier
	Lookback   time.Duration
	Logger     *slog.Logger
}

// Pipeline implements the review-ingestion batch job: fetch, normalize,
// score, load.
type Pipeline struct {
	directory  ports.GameDirectory
	source     ports.ReviewSource
	normalizer *normalize.Normalizer
	scorer     *sentiment.Scorer
	loader     *Loader
	notifier   ports.Notifier
	lookback   time.Duration
	logger     *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		directory:  deps.Directory,
		source:     deps.Source,
		normalizer: deps.Normalizer,
		scorer:     deps.Scorer,
		loader:     deps.Loader,
		notifier:   deps.Notifier,
		lookback:   deps.Lookback,
		logger:     deps.Logger,
	}
}

// Run executes one full ingest for games released in the lookback window
// ending at now. It returns the number of review rows persisted, or
// ErrNoRecentGames when the window is empty.
func (p *Pipeline) Run(ctx context.Context, now time.Time) (int64, error) {
	started := time.Now()

	refs, err := p.directory.RecentGames(ctx, now.Add(-p.lookback), now)
	if err != nil {
		p.notify(ctx, "review ingest failed: catalog connection error")
		return 0, fmt.Errorf("list recent games: %w", err)
	}
	if len(refs) == 0 {
		p.notify(ctx, fmt.Sprintf("review ingest: no games released in the last %s", p.lookback))
		return 0, ErrNoRecentGames
	}

	p.logger.Info("extracting", "games", len(refs))
	raws := p.source.FetchAll(ctx, refs)
	p.logger.Info("extract done", "reviews", len(raws), "elapsed", time.Since(started))

	reviews, err := p.normalizer.Apply(ctx, raws)
	if err != nil {
		p.notify(ctx, "review ingest failed: catalog connection error")
		return 0, fmt.Errorf("normalize reviews: %w", err)
	}

	scored := p.scorer.Score(reviews)

	inserted, err := p.loader.Load(ctx, scored)
	if err != nil {
		p.notify(ctx, "review ingest failed: review store error")
		return 0, err
	}

	p.logger.Info("ingest complete", "inserted", inserted, "elapsed", time.Since(started))
	p.notify(ctx, fmt.Sprintf("review ingest complete: %d rows persisted", inserted))
	return inserted, nil
}

func (p *Pipeline) notify(ctx context.Context, report string) {
	if p.notifier == nil {
		return
	}
	if err := p.notifier.PublishReport(ctx, report); err != nil {
		p.logger.Warn("publish report failed", "error", err)
	}
}
