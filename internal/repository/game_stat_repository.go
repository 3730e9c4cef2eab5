package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/props-edge/internal/database"
	"github.com/yourusername/props-edge/internal/models"
)

const gameStatColumns = `id, player_id, provider_game_key, season, game_date,
	points, rebounds, assists, steals, blocks, threes_made, fetched_at`

// PostgresGameStatRepository implements GameStatRepository for PostgreSQL
type PostgresGameStatRepository struct {
	db *database.DB
}

// NewPostgresGameStatRepository creates a new game stat repository
func NewPostgresGameStatRepository(db *database.DB) GameStatRepository {
	return &PostgresGameStatRepository{db: db}
}

// Upsert inserts or overwrites a box-score row keyed by (player, provider
// game key). Keying by provider game key rather than date matters because
// two providers can assign different identifiers to the same calendar game.
func (r *PostgresGameStatRepository) Upsert(ctx context.Context, row *models.GameStatRow) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	query := `
		INSERT INTO player_game_stats (` + gameStatColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (player_id, provider_game_key)
		DO UPDATE SET season = EXCLUDED.season, game_date = EXCLUDED.game_date,
			points = EXCLUDED.points, rebounds = EXCLUDED.rebounds,
			assists = EXCLUDED.assists, steals = EXCLUDED.steals,
			blocks = EXCLUDED.blocks, threes_made = EXCLUDED.threes_made,
			fetched_at = EXCLUDED.fetched_at
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		row.ID, row.PlayerID, row.ProviderGameKey, row.Season, row.GameDate,
		row.Points, row.Rebounds, row.Assists, row.Steals, row.Blocks,
		row.ThreesMade, row.FetchedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert game stat row: %w", err)
	}

	return nil
}

// ListByPlayerSeason retrieves all rows for a player's season, newest first
func (r *PostgresGameStatRepository) ListByPlayerSeason(ctx context.Context, playerID uuid.UUID, season string) ([]*models.GameStatRow, error) {
	query := `
		SELECT ` + gameStatColumns + `
		FROM player_game_stats
		WHERE player_id = $1 AND season = $2
		ORDER BY game_date DESC
	`

	rows, err := r.db.GetPool().Query(ctx, query, playerID, season)
	if err != nil {
		return nil, fmt.Errorf("failed to query game stats: %w", err)
	}
	defer rows.Close()

	var result []*models.GameStatRow
	for rows.Next() {
		row, err := scanGameStatRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, row)
	}

	return result, rows.Err()
}

// GetByPlayerAndDateRange returns the row whose game date falls in [from, to)
func (r *PostgresGameStatRepository) GetByPlayerAndDateRange(ctx context.Context, playerID uuid.UUID, from, to time.Time) (*models.GameStatRow, error) {
	query := `
		SELECT ` + gameStatColumns + `
		FROM player_game_stats
		WHERE player_id = $1 AND game_date >= $2 AND game_date < $3
		ORDER BY game_date
		LIMIT 1
	`

	rows, err := r.db.GetPool().Query(ctx, query, playerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query game stat by date: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to query game stat by date: %w", err)
		}
		return nil, models.ErrNotFound
	}

	return scanGameStatRow(rows)
}

// CountByPlayer returns the total number of stat rows stored for a player
func (r *PostgresGameStatRepository) CountByPlayer(ctx context.Context, playerID uuid.UUID) (int, error) {
	var count int
	err := r.db.GetPool().QueryRow(ctx,
		`SELECT COUNT(*) FROM player_game_stats WHERE player_id = $1`, playerID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count game stats: %w", err)
	}
	return count, nil
}

// LastFetchedAt returns when the player's season rows were last refreshed,
// nil when no rows exist
func (r *PostgresGameStatRepository) LastFetchedAt(ctx context.Context, playerID uuid.UUID, season string) (*time.Time, error) {
	var fetchedAt *time.Time
	err := r.db.GetPool().QueryRow(ctx,
		`SELECT MAX(fetched_at) FROM player_game_stats WHERE player_id = $1 AND season = $2`,
		playerID, season,
	).Scan(&fetchedAt)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to query last fetch time: %w", err)
	}
	return fetchedAt, nil
}

func scanGameStatRow(rows pgx.Rows) (*models.GameStatRow, error) {
	row := &models.GameStatRow{}
	err := rows.Scan(
		&row.ID, &row.PlayerID, &row.ProviderGameKey, &row.Season, &row.GameDate,
		&row.Points, &row.Rebounds, &row.Assists, &row.Steals, &row.Blocks,
		&row.ThreesMade, &row.FetchedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan game stat row: %w", err)
	}
	return row, nil
}
