package provider

import (
	"context"
	"errors"
	"time"

	"github.com/yourusername/props-edge/internal/models"
)

// StatsProvider fetches per-game box-score rows from the external stats feed
type StatsProvider interface {
	// FetchGameLog retrieves a player's game log for a season. An empty
	// slice means no games played yet, not a failure.
	FetchGameLog(ctx context.Context, playerExternalID int64, season string) ([]GameLogRow, error)
	// FetchPlayerIndex retrieves the league-wide roster for a season, used
	// to map free-text odds-feed names to provider player IDs.
	FetchPlayerIndex(ctx context.Context, season string) ([]PlayerIndexEntry, error)
	Name() string
}

// PlayerIndexEntry is one roster row from the stats feed
type PlayerIndexEntry struct {
	ExternalID int64
	FullName   string
	TeamAbbr   *string
}

// OddsProvider fetches current prop lines from the sportsbook feed
type OddsProvider interface {
	// FetchCurrentLines retrieves today's posted player prop lines. Player
	// names are free text from the feed and need normalization.
	FetchCurrentLines(ctx context.Context, date time.Time) ([]PropQuote, error)
	Name() string
}

// GameLogRow is one raw box-score line from the stats feed
type GameLogRow struct {
	ProviderGameKey string
	GameDate        time.Time
	Points          *float64
	Rebounds        *float64
	Assists         *float64
	Steals          *float64
	Blocks          *float64
	ThreesMade      *float64
}

// PropQuote is one raw prop line from the odds feed
type PropQuote struct {
	PlayerName string
	StatType   models.StatType
	LineValue  float64
	OverOdds   *int
	UnderOdds  *int
	Bookmaker  string
	EventKey   string
	HomeTeam   string
	AwayTeam   string
	GameTime   time.Time
}

// ProviderError represents errors from provider operations
type ProviderError struct {
	Source  string // provider name
	Code    string // error code (e.g., "rate_limit_exceeded")
	Message string
	Err     error
}

func (e ProviderError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e ProviderError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded = "rate_limit_exceeded"
	ErrCodeNotFound          = "not_found"
	ErrCodeInvalidData       = "invalid_data"
	ErrCodeNetworkError      = "network_error"
	ErrCodeServerError       = "server_error"
)

// Sentinel errors
var (
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrNotFound          = errors.New("data not found")
	ErrInvalidData       = errors.New("invalid data format")
	ErrNetworkError      = errors.New("network error")
)

// NewProviderError creates a new provider error
func NewProviderError(source, code, message string, err error) ProviderError {
	return ProviderError{Source: source, Code: code, Message: message, Err: err}
}
