package storeapi

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"ReviewPipeline/internal/domain"
	"ReviewPipeline/internal/ports"
)

// Source fans a Paginator out across many games and merges the results.
// Games are independent: one game's failure contributes zero reviews and
// never affects the others.
type Source struct {
	paginator *Paginator
	workers   int
	logger    *slog.Logger
}

var _ ports.ReviewSource = (*Source)(nil)

// NewSource builds the concurrent fetch source; workers <= 0 means one
// worker per available CPU.
func NewSource(paginator *Paginator, workers int, logger *slog.Logger) *Source {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Source{paginator: paginator, workers: workers, logger: logger}
}

// FetchAll retrieves reviews for every game concurrently. Cross-game
// ordering is unspecified; within one game the paginator's page order is
// preserved because each worker delivers its game's reviews as a unit.
func (s *Source) FetchAll(ctx context.Context, refs []domain.GameRef) []domain.RawReview {
	jobs := make(chan int64)
	results := make(chan []domain.RawReview)

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for appID := range jobs {
				results <- s.paginator.GameReviews(ctx, appID)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, ref := range refs {
			select {
			case jobs <- ref.AppID:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var merged []domain.RawReview
	for batch := range results {
		merged = append(merged, batch...)
	}

	if s.logger != nil {
		s.logger.Info("fetch complete", "games", len(refs), "reviews", len(merged))
	}
	return merged
}
