package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yourusername/props-edge/internal/database"
	"github.com/yourusername/props-edge/internal/models"
)

const propLineColumns = `id, player_id, player_name, stat_type, line_value,
	over_odds, under_odds, bookmaker, event_key, game_time, fetched_at, is_current`

// PostgresPropLineRepository implements PropLineRepository for PostgreSQL
type PostgresPropLineRepository struct {
	db *database.DB
}

// NewPostgresPropLineRepository creates a new prop line repository
func NewPostgresPropLineRepository(db *database.DB) PropLineRepository {
	return &PostgresPropLineRepository{db: db}
}

// MarkAllStale flips every current line off ahead of a refresh cycle
func (r *PostgresPropLineRepository) MarkAllStale(ctx context.Context) error {
	_, err := r.db.GetPool().Exec(ctx, `UPDATE prop_lines SET is_current = FALSE WHERE is_current`)
	if err != nil {
		return fmt.Errorf("failed to mark prop lines stale: %w", err)
	}
	return nil
}

// Insert stores a freshly fetched line candidate
func (r *PostgresPropLineRepository) Insert(ctx context.Context, line *models.LineCandidate) error {
	if line.ID == uuid.Nil {
		line.ID = uuid.New()
	}
	query := `
		INSERT INTO prop_lines (` + propLineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		line.ID, line.PlayerID, line.PlayerName, line.StatType, line.LineValue,
		line.OverOdds, line.UnderOdds, line.Bookmaker, line.EventKey,
		line.GameTime, line.FetchedAt, line.IsCurrent,
	)
	if err != nil {
		return fmt.Errorf("failed to insert prop line: %w", err)
	}

	return nil
}

// ListCurrent retrieves all lines from the latest refresh cycle
func (r *PostgresPropLineRepository) ListCurrent(ctx context.Context) ([]*models.LineCandidate, error) {
	query := `
		SELECT ` + propLineColumns + `
		FROM prop_lines
		WHERE is_current
		ORDER BY player_name, stat_type
	`

	rows, err := r.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query current prop lines: %w", err)
	}
	defer rows.Close()

	var lines []*models.LineCandidate
	for rows.Next() {
		line := &models.LineCandidate{}
		err := rows.Scan(
			&line.ID, &line.PlayerID, &line.PlayerName, &line.StatType, &line.LineValue,
			&line.OverOdds, &line.UnderOdds, &line.Bookmaker, &line.EventKey,
			&line.GameTime, &line.FetchedAt, &line.IsCurrent,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prop line: %w", err)
		}
		lines = append(lines, line)
	}

	return lines, rows.Err()
}

// ListCurrentPlayerIDs returns the distinct players with current lines
func (r *PostgresPropLineRepository) ListCurrentPlayerIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.GetPool().Query(ctx, `SELECT DISTINCT player_id FROM prop_lines WHERE is_current`)
	if err != nil {
		return nil, fmt.Errorf("failed to query current line players: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan player id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
