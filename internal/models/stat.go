package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StatType identifies a tracked box-score statistic
type StatType string

const (
	StatPoints   StatType = "PTS"
	StatRebounds StatType = "REB"
	StatAssists  StatType = "AST"
	StatSteals   StatType = "STL"
	StatBlocks   StatType = "BLK"
	StatThrees   StatType = "FG3M"
)

// AllStatTypes lists every stat type the engine tracks
var AllStatTypes = []StatType{StatPoints, StatRebounds, StatAssists, StatSteals, StatBlocks, StatThrees}

// ParseStatType normalizes a provider stat label into a StatType
func ParseStatType(s string) (StatType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PTS", "POINTS":
		return StatPoints, nil
	case "REB", "REBOUNDS":
		return StatRebounds, nil
	case "AST", "ASSISTS":
		return StatAssists, nil
	case "STL", "STEALS":
		return StatSteals, nil
	case "BLK", "BLOCKS":
		return StatBlocks, nil
	case "FG3M", "THREES":
		return StatThrees, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStatType, s)
	}
}

// Player represents a tracked player
type Player struct {
	ID         uuid.UUID `db:"id" json:"id"`
	ExternalID int64     `db:"external_id" json:"external_id"` // stats provider player ID
	FullName   string    `db:"full_name" json:"full_name"`
	TeamAbbr   *string   `db:"team_abbr" json:"team_abbr"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// GameStatRow is one player's box-score line for one game. Stat fields are
// nullable: a nil value means the player did not play or the stat was not
// tracked, and it is excluded from averages rather than counted as zero.
type GameStatRow struct {
	ID              uuid.UUID `db:"id" json:"id"`
	PlayerID        uuid.UUID `db:"player_id" json:"player_id"`
	ProviderGameKey string    `db:"provider_game_key" json:"provider_game_key"`
	Season          string    `db:"season" json:"season"`
	GameDate        time.Time `db:"game_date" json:"game_date"`
	Points          *float64  `db:"points" json:"points"`
	Rebounds        *float64  `db:"rebounds" json:"rebounds"`
	Assists         *float64  `db:"assists" json:"assists"`
	Steals          *float64  `db:"steals" json:"steals"`
	Blocks          *float64  `db:"blocks" json:"blocks"`
	ThreesMade      *float64  `db:"threes_made" json:"threes_made"`
	FetchedAt       time.Time `db:"fetched_at" json:"fetched_at"`
}

// Stat returns the value for the given stat type, nil if absent
func (r *GameStatRow) Stat(t StatType) *float64 {
	switch t {
	case StatPoints:
		return r.Points
	case StatRebounds:
		return r.Rebounds
	case StatAssists:
		return r.Assists
	case StatSteals:
		return r.Steals
	case StatBlocks:
		return r.Blocks
	case StatThrees:
		return r.ThreesMade
	default:
		return nil
	}
}

// SetStat stores a value for the given stat type
func (r *GameStatRow) SetStat(t StatType, v *float64) {
	switch t {
	case StatPoints:
		r.Points = v
	case StatRebounds:
		r.Rebounds = v
	case StatAssists:
		r.Assists = v
	case StatSteals:
		r.Steals = v
	case StatBlocks:
		r.Blocks = v
	case StatThrees:
		r.ThreesMade = v
	}
}
