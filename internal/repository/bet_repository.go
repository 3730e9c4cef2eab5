package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/yourusername/props-edge/internal/database"
	"github.com/yourusername/props-edge/internal/models"
)

const betColumns = `id, player_id, player_name, stat_type, line_value, recommendation,
	confidence, stake, model_id, odds, reason, z_score, game_time, state,
	created_at, locked_at, actual_value, won, graded_at`

// PostgresBetRepository implements BetRepository for PostgreSQL
type PostgresBetRepository struct {
	db *database.DB
}

// NewPostgresBetRepository creates a new bet repository
func NewPostgresBetRepository(db *database.DB) BetRepository {
	return &PostgresBetRepository{db: db}
}

// UpsertPending inserts a bet, replacing an existing ungraded OPEN bet for
// the same (player, stat, model). The conflict target is the partial unique
// index on ungraded bets; the update predicate refuses to touch LOCKED rows
// so overlapping runs cannot rewrite frozen economic fields.
func (r *PostgresBetRepository) UpsertPending(ctx context.Context, bet *models.Bet) error {
	if bet.ID == uuid.Nil {
		bet.ID = uuid.New()
	}
	query := `
		INSERT INTO bets (id, player_id, player_name, stat_type, line_value, recommendation,
		                  confidence, stake, model_id, odds, reason, z_score, game_time, state, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, 'OPEN', $14)
		ON CONFLICT (player_id, stat_type, model_id) WHERE state <> 'GRADED'
		DO UPDATE SET line_value = EXCLUDED.line_value,
			recommendation = EXCLUDED.recommendation,
			confidence = EXCLUDED.confidence,
			stake = EXCLUDED.stake,
			odds = EXCLUDED.odds,
			reason = EXCLUDED.reason,
			z_score = EXCLUDED.z_score,
			game_time = EXCLUDED.game_time,
			created_at = EXCLUDED.created_at
		WHERE bets.state = 'OPEN'
	`

	tag, err := r.db.GetPool().Exec(ctx, query,
		bet.ID, bet.PlayerID, bet.PlayerName, bet.StatType, bet.LineValue,
		bet.Recommendation, bet.Confidence, bet.Stake, bet.ModelID, bet.Odds,
		bet.Reason, bet.ZScore, bet.GameTime, bet.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.ErrDuplicateUngradedBet
		}
		return fmt.Errorf("failed to upsert bet: %w", err)
	}

	// Conflict hit a LOCKED row: the update predicate skipped it
	if tag.RowsAffected() == 0 {
		return models.ErrBetLocked
	}

	return nil
}

// LockStarted freezes OPEN bets whose game has started
func (r *PostgresBetRepository) LockStarted(ctx context.Context, now time.Time) (int, error) {
	tag, err := r.db.GetPool().Exec(ctx, `
		UPDATE bets SET state = 'LOCKED', locked_at = $1
		WHERE state = 'OPEN' AND game_time <= $1
	`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to lock started bets: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// ListGradable returns LOCKED ungraded bets whose game started before cutoff
func (r *PostgresBetRepository) ListGradable(ctx context.Context, cutoff time.Time) ([]*models.Bet, error) {
	query := `
		SELECT ` + betColumns + `
		FROM bets
		WHERE state = 'LOCKED' AND graded_at IS NULL AND game_time <= $1
		ORDER BY game_time
	`
	return r.list(ctx, query, cutoff)
}

// Grade settles a bet with compare-and-swap semantics: only a LOCKED,
// ungraded row transitions, so re-running grading is a no-op.
func (r *PostgresBetRepository) Grade(ctx context.Context, id uuid.UUID, actual float64, won bool, gradedAt time.Time) (bool, error) {
	tag, err := r.db.GetPool().Exec(ctx, `
		UPDATE bets SET actual_value = $2, won = $3, graded_at = $4, state = 'GRADED'
		WHERE id = $1 AND state = 'LOCKED' AND graded_at IS NULL
	`, id, actual, won, gradedAt)
	if err != nil {
		return false, fmt.Errorf("failed to grade bet: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListGraded returns all settled bets ordered by grading time
func (r *PostgresBetRepository) ListGraded(ctx context.Context) ([]*models.Bet, error) {
	query := `
		SELECT ` + betColumns + `
		FROM bets
		WHERE state = 'GRADED'
		ORDER BY graded_at
	`
	return r.list(ctx, query)
}

func (r *PostgresBetRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.Bet, error) {
	rows, err := r.db.GetPool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bets: %w", err)
	}
	defer rows.Close()

	var bets []*models.Bet
	for rows.Next() {
		bet, err := scanBet(rows)
		if err != nil {
			return nil, err
		}
		bets = append(bets, bet)
	}

	return bets, rows.Err()
}

func scanBet(rows pgx.Rows) (*models.Bet, error) {
	bet := &models.Bet{}
	err := rows.Scan(
		&bet.ID, &bet.PlayerID, &bet.PlayerName, &bet.StatType, &bet.LineValue,
		&bet.Recommendation, &bet.Confidence, &bet.Stake, &bet.ModelID, &bet.Odds,
		&bet.Reason, &bet.ZScore, &bet.GameTime, &bet.State,
		&bet.CreatedAt, &bet.LockedAt, &bet.ActualValue, &bet.Won, &bet.GradedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan bet: %w", err)
	}
	return bet, nil
}
