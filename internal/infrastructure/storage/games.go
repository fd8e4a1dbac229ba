package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ReviewPipeline/internal/domain"
	"ReviewPipeline/internal/ports"
)

// GameDirectory reads the game catalog maintained by the games pipeline.
type GameDirectory struct {
	pool *pgxpool.Pool
}

var _ ports.GameDirectory = (*GameDirectory)(nil)

// NewGameDirectory wires a pgx pool.
func NewGameDirectory(pool *pgxpool.Pool) *GameDirectory {
	return &GameDirectory{pool: pool}
}

// RecentGames returns the storefront IDs of games released inside the
// window.
func (d *GameDirectory) RecentGames(ctx context.Context, from, to time.Time) ([]domain.GameRef, error) {
	query, args, err := psql.
		Select("app_id").
		From("game").
		Where(sq.And{
			sq.GtOrEq{"release_date": from},
			sq.LtOrEq{"release_date": to},
		}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build recent games query: %w", err)
	}

	rows, err := d.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recent games: %w", err)
	}
	defer rows.Close()

	var refs []domain.GameRef
	for rows.Next() {
		var ref domain.GameRef
		if err := rows.Scan(&ref.AppID); err != nil {
			return nil, fmt.Errorf("scan app id: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return refs, nil
}

// Lookup resolves one catalog entry by storefront app ID.
func (d *GameDirectory) Lookup(ctx context.Context, appID int64) (domain.Game, error) {
	query, args, err := psql.
		Select("game_id", "release_date").
		From("game").
		Where(sq.Eq{"app_id": appID}).
		ToSql()
	if err != nil {
		return domain.Game{}, fmt.Errorf("build game lookup: %w", err)
	}

	game := domain.Game{AppID: appID}
	err = d.pool.QueryRow(ctx, query, args...).Scan(&game.GameID, &game.ReleaseDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Game{}, domain.ErrGameNotFound
	}
	if err != nil {
		return domain.Game{}, fmt.Errorf("lookup game %d: %w", appID, err)
	}

	return game, nil
}
