package models

import (
	"time"

	"github.com/google/uuid"
)

// LineCandidate is a single bookmaker's posted line for one player/stat/game.
// Odds are in American format: -110 risks 110 to win 100, +150 risks 100 to
// win 150. Superseded rows keep IsCurrent=false for audit and are excluded
// from new analysis.
type LineCandidate struct {
	ID         uuid.UUID `db:"id" json:"id"`
	PlayerID   uuid.UUID `db:"player_id" json:"player_id"`
	PlayerName string    `db:"player_name" json:"player_name"`
	StatType   StatType  `db:"stat_type" json:"stat_type"`
	LineValue  float64   `db:"line_value" json:"line_value"`
	OverOdds   *int      `db:"over_odds" json:"over_odds"`
	UnderOdds  *int      `db:"under_odds" json:"under_odds"`
	Bookmaker  string    `db:"bookmaker" json:"bookmaker"`
	EventKey   string    `db:"event_key" json:"event_key"` // odds provider event ID
	GameTime   time.Time `db:"game_time" json:"game_time"`
	FetchedAt  time.Time `db:"fetched_at" json:"fetched_at"`
	IsCurrent  bool      `db:"is_current" json:"is_current"`
}

// OddsFor returns the price for the given side of the line
func (l *LineCandidate) OddsFor(rec Recommendation) *int {
	switch rec {
	case RecommendationOver:
		return l.OverOdds
	case RecommendationUnder:
		return l.UnderOdds
	default:
		return nil
	}
}
