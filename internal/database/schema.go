package database

import (
	"context"
	"fmt"
)

// schemaStatements creates the tables the engine depends on. Uniqueness and
// immutability invariants live here as constraints, not just application
// logic: one stat row per (player, provider game key), and at most one
// ungraded bet per (player, stat, model) via a partial unique index.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS players (
		id UUID PRIMARY KEY,
		external_id BIGINT NOT NULL UNIQUE,
		full_name TEXT NOT NULL,
		team_abbr TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS player_game_stats (
		id UUID PRIMARY KEY,
		player_id UUID NOT NULL REFERENCES players(id),
		provider_game_key TEXT NOT NULL,
		season TEXT NOT NULL,
		game_date TIMESTAMPTZ NOT NULL,
		points DOUBLE PRECISION,
		rebounds DOUBLE PRECISION,
		assists DOUBLE PRECISION,
		steals DOUBLE PRECISION,
		blocks DOUBLE PRECISION,
		threes_made DOUBLE PRECISION,
		fetched_at TIMESTAMPTZ NOT NULL,
		UNIQUE (player_id, provider_game_key)
	)`,
	`CREATE TABLE IF NOT EXISTS prop_lines (
		id UUID PRIMARY KEY,
		player_id UUID NOT NULL REFERENCES players(id),
		player_name TEXT NOT NULL,
		stat_type TEXT NOT NULL,
		line_value DOUBLE PRECISION NOT NULL,
		over_odds INTEGER,
		under_odds INTEGER,
		bookmaker TEXT NOT NULL,
		event_key TEXT NOT NULL,
		game_time TIMESTAMPTZ NOT NULL,
		fetched_at TIMESTAMPTZ NOT NULL,
		is_current BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_prop_lines_current ON prop_lines (player_id, stat_type) WHERE is_current`,
	`CREATE TABLE IF NOT EXISTS bets (
		id UUID PRIMARY KEY,
		player_id UUID NOT NULL REFERENCES players(id),
		player_name TEXT NOT NULL,
		stat_type TEXT NOT NULL,
		line_value DOUBLE PRECISION NOT NULL,
		recommendation TEXT NOT NULL,
		confidence TEXT NOT NULL,
		stake NUMERIC(12,2) NOT NULL,
		model_id TEXT NOT NULL,
		odds INTEGER,
		reason TEXT NOT NULL DEFAULT '',
		z_score DOUBLE PRECISION NOT NULL DEFAULT 0,
		game_time TIMESTAMPTZ NOT NULL,
		state TEXT NOT NULL DEFAULT 'OPEN',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		locked_at TIMESTAMPTZ,
		actual_value DOUBLE PRECISION,
		won BOOLEAN,
		graded_at TIMESTAMPTZ
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_bets_ungraded
		ON bets (player_id, stat_type, model_id) WHERE state <> 'GRADED'`,
	`CREATE INDEX IF NOT EXISTS idx_bets_gradable ON bets (game_time) WHERE state = 'LOCKED' AND graded_at IS NULL`,
}

// InitSchema applies the schema. Safe to run repeatedly.
func InitSchema(ctx context.Context, db *DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
