package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"ReviewPipeline/internal/domain"
	"ReviewPipeline/internal/ports"
)

// ReviewStore persists review rows into Postgres.
type ReviewStore struct {
	pool *pgxpool.Pool
}

var _ ports.ReviewStore = (*ReviewStore)(nil)

// NewReviewStore wires a pgx pool.
func NewReviewStore(pool *pgxpool.Pool) *ReviewStore {
	return &ReviewStore{pool: pool}
}

// InsertBatch writes all rows in one transaction with a conflict-tolerant
// insert: rows already present under the natural uniqueness key are
// silently skipped. The whole batch commits or rolls back together.
// Returns the number of rows actually inserted.
func (s *ReviewStore) InsertBatch(ctx context.Context, rows []domain.PersistedReview) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	builder := psql.
		Insert("review").
		Columns("game_id", "review_text", "review_score", "reviewed_at", "playtime_last_2_weeks", "sentiment")
	for _, row := range rows {
		builder = builder.Values(row.GameID, row.Text, row.UpvoteCount, row.CreatedAt, row.PlaytimeRecent, row.Sentiment)
	}

	query, args, err := builder.Suffix("ON CONFLICT DO NOTHING").ToSql()
	if err != nil {
		return 0, fmt.Errorf("build review insert: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert reviews: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit reviews: %w", err)
	}
	return tag.RowsAffected(), nil
}
