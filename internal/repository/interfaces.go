package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/props-edge/internal/models"
)

// PlayerRepository manages tracked players
type PlayerRepository interface {
	Upsert(ctx context.Context, player *models.Player) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Player, error)
	GetByExternalID(ctx context.Context, externalID int64) (*models.Player, error)
	GetByName(ctx context.Context, fullName string) (*models.Player, error)
	ListAll(ctx context.Context) ([]*models.Player, error)
}

// GameStatRepository manages per-player per-game box-score rows
type GameStatRepository interface {
	// Upsert overwrites by (player, provider game key), never by date
	Upsert(ctx context.Context, row *models.GameStatRow) error
	ListByPlayerSeason(ctx context.Context, playerID uuid.UUID, season string) ([]*models.GameStatRow, error)
	// GetByPlayerAndDateRange returns the single row whose game date falls
	// in [from, to), or models.ErrNotFound
	GetByPlayerAndDateRange(ctx context.Context, playerID uuid.UUID, from, to time.Time) (*models.GameStatRow, error)
	CountByPlayer(ctx context.Context, playerID uuid.UUID) (int, error)
	LastFetchedAt(ctx context.Context, playerID uuid.UUID, season string) (*time.Time, error)
}

// PropLineRepository manages sportsbook line candidates
type PropLineRepository interface {
	// MarkAllStale flips is_current off for every row; run at the start of
	// a refresh cycle so superseded lines stay for audit
	MarkAllStale(ctx context.Context) error
	Insert(ctx context.Context, line *models.LineCandidate) error
	ListCurrent(ctx context.Context) ([]*models.LineCandidate, error)
	ListCurrentPlayerIDs(ctx context.Context) ([]uuid.UUID, error)
}

// BetRepository manages persisted model bets
type BetRepository interface {
	// UpsertPending inserts a bet or replaces the existing ungraded OPEN bet
	// for the same (player, stat, model). Returns models.ErrBetLocked when
	// the existing ungraded bet is LOCKED.
	UpsertPending(ctx context.Context, bet *models.Bet) error
	// LockStarted transitions OPEN bets whose game has started to LOCKED
	LockStarted(ctx context.Context, now time.Time) (int, error)
	// ListGradable returns LOCKED ungraded bets whose game started before cutoff
	ListGradable(ctx context.Context, cutoff time.Time) ([]*models.Bet, error)
	// Grade atomically settles a bet; returns false when the bet was already
	// graded or not LOCKED (compare-and-swap semantics)
	Grade(ctx context.Context, id uuid.UUID, actual float64, won bool, gradedAt time.Time) (bool, error)
	ListGraded(ctx context.Context) ([]*models.Bet, error)
}

// Repositories holds all repository implementations
type Repositories struct {
	Player   PlayerRepository
	GameStat GameStatRepository
	PropLine PropLineRepository
	Bet      BetRepository
}
