package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"ReviewPipeline/internal/cache"
	"ReviewPipeline/internal/domain"
	"ReviewPipeline/internal/normalize"
	"ReviewPipeline/internal/ports"
	"ReviewPipeline/internal/sentiment"
)

type fakeDirectory struct {
	refs  []domain.GameRef
	games map[int64]domain.Game
	err   error
}

func (d *fakeDirectory) RecentGames(_ context.Context, _, _ time.Time) ([]domain.GameRef, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.refs, nil
}

func (d *fakeDirectory) Lookup(_ context.Context, appID int64) (domain.Game, error) {
	if d.err != nil {
		return domain.Game{}, d.err
	}
	game, ok := d.games[appID]
	if !ok {
		return domain.Game{}, domain.ErrGameNotFound
	}
	return game, nil
}

type fakeSource struct {
	reviews []domain.RawReview
}

func (s *fakeSource) FetchAll(_ context.Context, _ []domain.GameRef) []domain.RawReview {
	return s.reviews
}

// memoryStore mimics the conflict-tolerant review table: rows identical
// on the natural key insert once.
type memoryStore struct {
	rows map[string]domain.PersistedReview
	err  error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{rows: map[string]domain.PersistedReview{}}
}

func (s *memoryStore) InsertBatch(_ context.Context, rows []domain.PersistedReview) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	var inserted int64
	for _, row := range rows {
		key := fmt.Sprintf("%d|%s|%d", row.GameID, row.Text, row.PlaytimeRecent)
		if _, exists := s.rows[key]; exists {
			continue
		}
		s.rows[key] = row
		inserted++
	}
	return inserted, nil
}

type recordingNotifier struct {
	reports []string
}

func (n *recordingNotifier) PublishReport(_ context.Context, report string) error {
	n.reports = append(n.reports, report)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestPipeline(directory *fakeDirectory, source *fakeSource, store *memoryStore, notifier *recordingNotifier) *Pipeline {
	logger := discardLogger()
	games := cache.NewGames(directory)
	// Avoid wrapping a nil *recordingNotifier in a non-nil interface.
	var port ports.Notifier
	if notifier != nil {
		port = notifier
	}
	return NewPipeline(PipelineDeps{
		Directory:  directory,
		Source:     source,
		Normalizer: normalize.New(games, logger),
		Scorer:     sentiment.NewScorer(logger),
		Loader:     NewLoader(games, store, logger),
		Notifier:   port,
		Lookback:   14 * 24 * time.Hour,
		Logger:     logger,
	})
}

func rawReview(appID int64, text, playtime string) domain.RawReview {
	return domain.RawReview{
		AppID:          appID,
		Text:           text,
		UpvoteCount:    "2",
		CreatedAt:      "2023-06-01 10:00:00",
		PlaytimeRecent: playtime,
	}
}

func TestRunNoRecentGames(t *testing.T) {
	t.Parallel()

	directory := &fakeDirectory{}
	notifier := &recordingNotifier{}
	pipeline := newTestPipeline(directory, &fakeSource{}, newMemoryStore(), notifier)

	_, err := pipeline.Run(context.Background(), time.Now().UTC())
	if !errors.Is(err, ErrNoRecentGames) {
		t.Fatalf("expected ErrNoRecentGames, got %v", err)
	}
	if len(notifier.reports) != 1 {
		t.Fatalf("expected a single report, got %d", len(notifier.reports))
	}
}

func TestRunHappyPath(t *testing.T) {
	t.Parallel()

	release := time.Date(2023, time.May, 1, 0, 0, 0, 0, time.UTC)
	directory := &fakeDirectory{
		refs:  []domain.GameRef{{AppID: 10}},
		games: map[int64]domain.Game{10: {GameID: 1, AppID: 10, ReleaseDate: release}},
	}
	source := &fakeSource{reviews: []domain.RawReview{
		rawReview(10, "great fun worth price", "5"),
		rawReview(10, "great fun worth price", "5"), // duplicate
		rawReview(10, "boring and broken", "0"),     // no playtime, dropped
	}}
	store := newMemoryStore()
	notifier := &recordingNotifier{}
	pipeline := newTestPipeline(directory, source, store, notifier)

	inserted, err := pipeline.Run(context.Background(), time.Date(2023, time.July, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if inserted != 1 {
		t.Fatalf("expected 1 row persisted, got %d", inserted)
	}
	if len(store.rows) != 1 {
		t.Fatalf("expected 1 row in store, got %d", len(store.rows))
	}
	for _, row := range store.rows {
		if row.GameID != 1 {
			t.Fatalf("foreign key not resolved: %+v", row)
		}
		if row.Sentiment < 0 || row.Sentiment > 5 {
			t.Fatalf("sentiment out of range: %v", row.Sentiment)
		}
	}
	if len(notifier.reports) != 1 {
		t.Fatalf("expected a completion report, got %d", len(notifier.reports))
	}
}

func TestRunIdempotentAcrossRepeats(t *testing.T) {
	t.Parallel()

	release := time.Date(2023, time.May, 1, 0, 0, 0, 0, time.UTC)
	directory := &fakeDirectory{
		refs:  []domain.GameRef{{AppID: 10}},
		games: map[int64]domain.Game{10: {GameID: 1, AppID: 10, ReleaseDate: release}},
	}
	source := &fakeSource{reviews: []domain.RawReview{rawReview(10, "solid game", "3")}}
	store := newMemoryStore()
	pipeline := newTestPipeline(directory, source, store, nil)

	now := time.Date(2023, time.July, 1, 0, 0, 0, 0, time.UTC)
	first, err := pipeline.Run(context.Background(), now)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := pipeline.Run(context.Background(), now)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if first != 1 || second != 0 {
		t.Fatalf("expected (1, 0) inserts across runs, got (%d, %d)", first, second)
	}
	if len(store.rows) != 1 {
		t.Fatalf("expected 1 stored row after repeated loads, got %d", len(store.rows))
	}
}

func TestRunDirectoryFailureIsFatal(t *testing.T) {
	t.Parallel()

	directory := &fakeDirectory{err: errors.New("connection refused")}
	pipeline := newTestPipeline(directory, &fakeSource{}, newMemoryStore(), nil)

	if _, err := pipeline.Run(context.Background(), time.Now().UTC()); err == nil {
		t.Fatal("expected error on directory failure")
	}
}

func TestLoaderExcludesUnknownGames(t *testing.T) {
	t.Parallel()

	directory := &fakeDirectory{games: map[int64]domain.Game{
		10: {GameID: 1, AppID: 10},
	}}
	store := newMemoryStore()
	loader := NewLoader(cache.NewGames(directory), store, discardLogger())

	scored := []domain.ScoredReview{
		{Review: domain.Review{AppID: 10, Text: "known", PlaytimeRecent: 2}, Sentiment: 4.5},
		{Review: domain.Review{AppID: 99, Text: "unknown", PlaytimeRecent: 2}, Sentiment: 1.0},
	}

	inserted, err := loader.Load(context.Background(), scored)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if inserted != 1 {
		t.Fatalf("expected 1 insert, got %d", inserted)
	}
	if len(store.rows) != 1 {
		t.Fatalf("unknown game's row leaked into the store: %d rows", len(store.rows))
	}
}

func TestLoaderStoreFailure(t *testing.T) {
	t.Parallel()

	directory := &fakeDirectory{games: map[int64]domain.Game{10: {GameID: 1, AppID: 10}}}
	store := newMemoryStore()
	store.err = errors.New("deadlock detected")
	loader := NewLoader(cache.NewGames(directory), store, discardLogger())

	scored := []domain.ScoredReview{{Review: domain.Review{AppID: 10, Text: "x", PlaytimeRecent: 1}}}
	if _, err := loader.Load(context.Background(), scored); err == nil {
		t.Fatal("expected store failure to surface")
	}
}
