package ports

import (
	"context"
	"time"

	"ReviewPipeline/internal/domain"
)

// ReviewSource pulls raw reviews for a batch of games from the storefront.
type ReviewSource interface {
	FetchAll(ctx context.Context, refs []domain.GameRef) []domain.RawReview
}

// GameLookup resolves a single catalog entry by its storefront app ID.
// Implementations return domain.ErrGameNotFound for unknown IDs.
type GameLookup interface {
	Lookup(ctx context.Context, appID int64) (domain.Game, error)
}

// GameDirectory is the read-only view of the game catalog.
type GameDirectory interface {
	GameLookup
	RecentGames(ctx context.Context, from, to time.Time) ([]domain.GameRef, error)
}

// ReviewStore persists resolved review rows; inserts are conflict-tolerant
// so repeated loads of the same batch are idempotent.
type ReviewStore interface {
	InsertBatch(ctx context.Context, rows []domain.PersistedReview) (int64, error)
}

// Notifier delivers job outcome reports to an operator channel.
type Notifier interface {
	PublishReport(ctx context.Context, report string) error
}

// Scheduler controls when the pipeline executes.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
