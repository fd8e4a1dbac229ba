package domain

import (
	"errors"
	"time"
)

// TimeLayout is the canonical timestamp representation carried through the
// pipeline and stored in the review table.
const TimeLayout = "2006-01-02 15:04:05"

// ErrGameNotFound signals that the catalog has no entry for a storefront ID.
var ErrGameNotFound = errors.New("game not found in catalog")

// GameRef identifies a catalog game by its storefront app ID.
type GameRef struct {
	AppID int64
}

// Game is a catalog row owned by the games pipeline; read-only here.
type Game struct {
	GameID      int64
	AppID       int64
	ReleaseDate time.Time
}

// RawReview is a review as extracted from a storefront page. Numeric and
// timestamp fields stay strings so that validity is decided by the
// normalizer, not by the transport.
type RawReview struct {
	AppID          int64
	Text           string
	UpvoteCount    string
	CreatedAt      string
	PlaytimeRecent string
}

// Review is a raw review that survived type coercion and validation.
// PlaytimeRecent is the reviewer's recent (trailing two weeks) playtime in
// whole hours.
type Review struct {
	AppID          int64
	Text           string
	UpvoteCount    int
	CreatedAt      time.Time
	PlaytimeRecent int
}

// ScoredReview carries a sentiment value in [0, 5].
type ScoredReview struct {
	Review
	Sentiment float64
}

// PersistedReview is the unit written to the review table, with the
// storefront app ID resolved to the catalog game ID.
type PersistedReview struct {
	GameID         int64
	Text           string
	UpvoteCount    int
	CreatedAt      time.Time
	PlaytimeRecent int
	Sentiment      float64
}
