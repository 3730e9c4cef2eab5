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

// PostgresPlayerRepository implements PlayerRepository for PostgreSQL
type PostgresPlayerRepository struct {
	db *database.DB
}

// NewPostgresPlayerRepository creates a new player repository
func NewPostgresPlayerRepository(db *database.DB) PlayerRepository {
	return &PostgresPlayerRepository{db: db}
}

// Upsert inserts a player or updates name/team by external ID
func (r *PostgresPlayerRepository) Upsert(ctx context.Context, player *models.Player) error {
	if player.ID == uuid.Nil {
		player.ID = uuid.New()
	}
	query := `
		INSERT INTO players (id, external_id, full_name, team_abbr, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		ON CONFLICT (external_id)
		DO UPDATE SET full_name = EXCLUDED.full_name, team_abbr = EXCLUDED.team_abbr, updated_at = now()
		RETURNING id, created_at, updated_at
	`

	err := r.db.GetPool().QueryRow(ctx, query,
		player.ID, player.ExternalID, player.FullName, player.TeamAbbr,
	).Scan(&player.ID, &player.CreatedAt, &player.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert player: %w", err)
	}

	return nil
}

// GetByID retrieves a player by ID
func (r *PostgresPlayerRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

// GetByExternalID retrieves a player by the stats provider's ID
func (r *PostgresPlayerRepository) GetByExternalID(ctx context.Context, externalID int64) (*models.Player, error) {
	return r.getOne(ctx, `WHERE external_id = $1`, externalID)
}

// GetByName retrieves a player by normalized full name
func (r *PostgresPlayerRepository) GetByName(ctx context.Context, fullName string) (*models.Player, error) {
	return r.getOne(ctx, `WHERE lower(full_name) = lower($1)`, fullName)
}

// ListAll retrieves every tracked player
func (r *PostgresPlayerRepository) ListAll(ctx context.Context) ([]*models.Player, error) {
	query := `
		SELECT id, external_id, full_name, team_abbr, created_at, updated_at
		FROM players
		ORDER BY full_name
	`

	rows, err := r.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	var players []*models.Player
	for rows.Next() {
		player := &models.Player{}
		if err := rows.Scan(
			&player.ID, &player.ExternalID, &player.FullName, &player.TeamAbbr,
			&player.CreatedAt, &player.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, player)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate players: %w", err)
	}

	return players, nil
}

func (r *PostgresPlayerRepository) getOne(ctx context.Context, where string, arg interface{}) (*models.Player, error) {
	query := `
		SELECT id, external_id, full_name, team_abbr, created_at, updated_at
		FROM players ` + where

	player := &models.Player{}
	var createdAt, updatedAt time.Time
	err := r.db.GetPool().QueryRow(ctx, query, arg).Scan(
		&player.ID, &player.ExternalID, &player.FullName, &player.TeamAbbr, &createdAt, &updatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	player.CreatedAt = createdAt
	player.UpdatedAt = updatedAt

	return player, nil
}
