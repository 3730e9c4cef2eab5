package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Recommendation is the directional call produced by the signal engine
type Recommendation string

const (
	RecommendationOver   Recommendation = "OVER"
	RecommendationUnder  Recommendation = "UNDER"
	RecommendationNoPlay Recommendation = "NO_PLAY"
)

// Invert flips OVER to UNDER and vice versa; NO_PLAY is unchanged
func (r Recommendation) Invert() Recommendation {
	switch r {
	case RecommendationOver:
		return RecommendationUnder
	case RecommendationUnder:
		return RecommendationOver
	default:
		return r
	}
}

// Confidence is the discrete tier assigned to a signal
type Confidence string

const (
	ConfidenceNone   Confidence = "NONE"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceHigh   Confidence = "HIGH"
)

// BetState tracks a bet through its lifecycle
type BetState string

const (
	BetStateOpen   BetState = "OPEN"   // analysis recorded, game not started
	BetStateLocked BetState = "LOCKED" // game started, economic fields frozen
	BetStateGraded BetState = "GRADED" // outcome settled, row immutable
)

// Bet is one model's decision to act on a signal. At most one ungraded Bet
// exists per (player, stat type, model) at a time; a later analysis run
// replaces the ungraded entry. Once LOCKED the line, recommendation and
// stake never change; only grading fields may be written afterwards.
type Bet struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	PlayerID       uuid.UUID       `db:"player_id" json:"player_id"`
	PlayerName     string          `db:"player_name" json:"player_name"`
	StatType       StatType        `db:"stat_type" json:"stat_type"`
	LineValue      float64         `db:"line_value" json:"line_value"`
	Recommendation Recommendation  `db:"recommendation" json:"recommendation"`
	Confidence     Confidence      `db:"confidence" json:"confidence"`
	Stake          decimal.Decimal `db:"stake" json:"stake"`
	ModelID        string          `db:"model_id" json:"model_id"`
	Odds           *int            `db:"odds" json:"odds"`
	Reason         string          `db:"reason" json:"reason"`
	ZScore         float64         `db:"z_score" json:"z_score"`
	GameTime       time.Time       `db:"game_time" json:"game_time"`
	State          BetState        `db:"state" json:"state"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	LockedAt       *time.Time      `db:"locked_at" json:"locked_at"`
	ActualValue    *float64        `db:"actual_value" json:"actual_value"`
	Won            *bool           `db:"won" json:"won"`
	GradedAt       *time.Time      `db:"graded_at" json:"graded_at"`
}

// IsGraded reports whether the bet has a settled outcome
func (b *Bet) IsGraded() bool {
	return b.State == BetStateGraded && b.GradedAt != nil
}

// ModelConfig is the static description of a named strategy. Loaded at
// process start, never edited at runtime. Rule changes ship as new IDs so
// historical bets keep the rules they were created under.
type ModelConfig struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Active      bool   `json:"active"`
}
