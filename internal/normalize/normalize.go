package normalize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"ReviewPipeline/internal/domain"
	"ReviewPipeline/internal/ports"
)

// Normalizer turns raw review rows into a clean, deduplicated,
// internally consistent set. Rows are dropped, never defaulted: a value
// that fails to parse would otherwise hide corrupt source data.
type Normalizer struct {
	games  ports.GameLookup
	logger *slog.Logger
	now    func() time.Time
}

// New builds a normalizer backed by a (typically cache-wrapped) game
// directory.
func New(games ports.GameLookup, logger *slog.Logger) *Normalizer {
	return &Normalizer{games: games, logger: logger, now: time.Now}
}

type dedupKey struct {
	text     string
	appID    int64
	playtime int
}

// Apply validates each row, collapses duplicates on (text, game,
// playtime), and drops rows whose recent playtime exceeds the hours the
// game has existed. An empty result is a valid outcome. Catalog
// connection failures abort the batch; an unknown game only drops its
// rows.
func (n *Normalizer) Apply(ctx context.Context, raws []domain.RawReview) ([]domain.Review, error) {
	out := make([]domain.Review, 0, len(raws))
	seen := make(map[dedupKey]struct{}, len(raws))
	now := n.now().UTC()
	dropped := 0

	for _, raw := range raws {
		review, ok := coerce(raw)
		if !ok {
			dropped++
			continue
		}

		key := dedupKey{text: review.Text, appID: review.AppID, playtime: review.PlaytimeRecent}
		if _, dup := seen[key]; dup {
			dropped++
			continue
		}

		game, err := n.games.Lookup(ctx, review.AppID)
		if err != nil {
			if errors.Is(err, domain.ErrGameNotFound) {
				n.logger.Debug("review for unknown game dropped", "app_id", review.AppID)
				dropped++
				continue
			}
			return nil, fmt.Errorf("lookup game %d: %w", review.AppID, err)
		}

		// A reviewer cannot have played longer than the game has existed.
		if float64(review.PlaytimeRecent) > now.Sub(game.ReleaseDate).Hours() {
			dropped++
			continue
		}

		seen[key] = struct{}{}
		out = append(out, review)
	}

	n.logger.Info("reviews normalized", "kept", len(out), "dropped", dropped)
	return out, nil
}

// coerce type-checks one raw row. All required fields must be present
// and parseable; counts must be non-negative and playtime at least one
// hour (a review with no recorded playtime is noise).
func coerce(raw domain.RawReview) (domain.Review, bool) {
	if raw.AppID == 0 || raw.Text == "" || raw.UpvoteCount == "" ||
		raw.CreatedAt == "" || raw.PlaytimeRecent == "" {
		return domain.Review{}, false
	}

	upvotes, err := strconv.Atoi(raw.UpvoteCount)
	if err != nil || upvotes < 0 {
		return domain.Review{}, false
	}

	playtime, err := strconv.Atoi(raw.PlaytimeRecent)
	if err != nil || playtime < 1 {
		return domain.Review{}, false
	}

	createdAt, err := time.Parse(domain.TimeLayout, raw.CreatedAt)
	if err != nil {
		return domain.Review{}, false
	}

	return domain.Review{
		AppID:          raw.AppID,
		Text:           raw.Text,
		UpvoteCount:    upvotes,
		CreatedAt:      createdAt,
		PlaytimeRecent: playtime,
	}, true
}
