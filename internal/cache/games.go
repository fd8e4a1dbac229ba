package cache

import (
	"context"
	"sync"

	"ReviewPipeline/internal/domain"
	"ReviewPipeline/internal/ports"
)

// Games memoizes catalog lookups for the duration of one pipeline run so
// that repeated reviews for the same game hit the directory once. Negative
// results are not cached. Instances are owned by the caller; there is no
// package-level singleton.
type Games struct {
	directory ports.GameLookup

	mu      sync.RWMutex
	entries map[int64]domain.Game
}

var _ ports.GameLookup = (*Games)(nil)

// NewGames wraps a directory with an empty lookup-or-populate cache.
func NewGames(directory ports.GameLookup) *Games {
	return &Games{
		directory: directory,
		entries:   make(map[int64]domain.Game),
	}
}

// Lookup returns the cached catalog entry or populates it from the
// wrapped directory.
func (c *Games) Lookup(ctx context.Context, appID int64) (domain.Game, error) {
	c.mu.RLock()
	game, ok := c.entries[appID]
	c.mu.RUnlock()
	if ok {
		return game, nil
	}

	game, err := c.directory.Lookup(ctx, appID)
	if err != nil {
		return domain.Game{}, err
	}

	c.mu.Lock()
	c.entries[appID] = game
	c.mu.Unlock()
	return game, nil
}
