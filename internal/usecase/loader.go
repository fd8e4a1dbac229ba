package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ReviewPipeline/internal/domain"
	"ReviewPipeline/internal/ports"
)

// Loader resolves storefront IDs to catalog foreign keys and performs
// the idempotent batch insert.
type Loader struct {
	games  ports.GameLookup
	store  ports.ReviewStore
	logger *slog.Logger
}

// NewLoader wires the (typically cache-wrapped) directory and the review
// store.
func NewLoader(games ports.GameLookup, store ports.ReviewStore, logger *slog.Logger) *Loader {
	return &Loader{games: games, store: store, logger: logger}
}

// Load resolves each review's game and writes the batch in a single
// conflict-tolerant insert. A game missing from the catalog excludes its
// rows (logged, not fatal); a catalog connection failure aborts the
// batch. Returns the number of rows actually inserted.
func (l *Loader) Load(ctx context.Context, reviews []domain.ScoredReview) (int64, error) {
	if len(reviews) == 0 {
		return 0, nil
	}

	resolved := make([]domain.PersistedReview, 0, len(reviews))
	excluded := 0
	for _, review := range reviews {
		game, err := l.games.Lookup(ctx, review.AppID)
		if err != nil {
			if errors.Is(err, domain.ErrGameNotFound) {
				l.logger.Warn("game missing from catalog, review excluded", "app_id", review.AppID)
				excluded++
				continue
			}
			return 0, fmt.Errorf("resolve game %d: %w", review.AppID, err)
		}

		resolved = append(resolved, domain.PersistedReview{
			GameID:         game.GameID,
			Text:           review.Text,
			UpvoteCount:    review.UpvoteCount,
			CreatedAt:      review.CreatedAt,
			PlaytimeRecent: review.PlaytimeRecent,
			Sentiment:      review.Sentiment,
		})
	}

	inserted, err := l.store.InsertBatch(ctx, resolved)
	if err != nil {
		return 0, fmt.Errorf("insert reviews: %w", err)
	}

	l.logger.Info("reviews loaded", "inserted", inserted, "resolved", len(resolved), "excluded", excluded)
	return inserted, nil
}
