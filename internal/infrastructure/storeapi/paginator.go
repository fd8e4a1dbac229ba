package storeapi

import (
	"context"
	"log/slog"

	"ReviewPipeline/internal/domain"
)

// startCursor is the sentinel the storefront expects for the first page.
const startCursor = "*"

// Paginator walks one game's paginated review sequence to exhaustion.
type Paginator struct {
	client *Client
	logger *slog.Logger
}

// NewPaginator wires the page client.
func NewPaginator(client *Client, logger *slog.Logger) *Paginator {
	return &Paginator{client: client, logger: logger}
}

// GameReviews fetches every review page for a game. The sequence stops on
// an empty page, on a cursor already seen (a source that refuses to
// advance must not loop forever), or on a transport error; whatever was
// collected before the stop is returned. A zero review count
// short-circuits without paging at all.
func (p *Paginator) GameReviews(ctx context.Context, appID int64) []domain.RawReview {
	total := p.client.ReviewCount(ctx, appID)
	if total == 0 {
		p.debug("no reviews to fetch", "app_id", appID)
		return nil
	}

	seen := map[string]struct{}{startCursor: {}}
	cursor := startCursor
	var collected []domain.RawReview

	for {
		page, next, err := p.client.ReviewPage(ctx, appID, cursor)
		if err != nil {
			p.warn("review page failed", "app_id", appID, "cursor", cursor, "error", err)
			return collected
		}
		if len(page) == 0 {
			return collected
		}
		if _, repeated := seen[next]; repeated {
			p.debug("cursor repeated, stopping", "app_id", appID, "cursor", next)
			return collected
		}

		collected = append(collected, page...)
		seen[next] = struct{}{}
		cursor = next
	}
}

func (p *Paginator) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

func (p *Paginator) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
