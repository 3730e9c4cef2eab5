package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/props-edge/internal/config"
)

// statsHeaders mimic browser requests; the stats host blocks many cloud
// provider IPs otherwise.
var statsHeaders = map[string]string{
	"User-Agent":         "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:109.0) Gecko/20100101 Firefox/121.0",
	"Accept":             "application/json, text/plain, */*",
	"Accept-Language":    "en-US,en;q=0.5",
	"x-nba-stats-origin": "stats",
	"x-nba-stats-token":  "true",
	"Referer":            "https://stats.nba.com/",
	"Origin":             "https://stats.nba.com",
}

// gameDateLayout is the stats feed's date format ("NOV 25, 2025")
const gameDateLayout = "Jan 2, 2006"

// StatsClient fetches player game logs from the league stats API
type StatsClient struct {
	baseURL string
	http    *RateLimitedHTTPClient
	logger  *logrus.Logger
}

// NewStatsClient creates a stats feed client from configuration
func NewStatsClient(cfg *config.StatsProviderConfig, logger *logrus.Logger) *StatsClient {
	httpCfg := DefaultHTTPClientConfig()
	httpCfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	httpCfg.MaxRetries = cfg.MaxRetries
	httpCfg.RateLimit = cfg.RequestsPerSecond

	return &StatsClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    NewRateLimitedHTTPClient(httpCfg, logger),
		logger:  logger,
	}
}

// Name returns the provider name
func (c *StatsClient) Name() string {
	return "league_stats"
}

// gameLogResponse is the stats API's tabular envelope
type gameLogResponse struct {
	ResultSets []struct {
		Name    string            `json:"name"`
		Headers []string          `json:"headers"`
		RowSet  [][]json.RawMessage `json:"rowSet"`
	} `json:"resultSets"`
}

// FetchGameLog retrieves a player's per-game box scores for a season. An
// empty slice means the player has not played; it is not an error.
func (c *StatsClient) FetchGameLog(ctx context.Context, playerExternalID int64, season string) ([]GameLogRow, error) {
	endpoint := fmt.Sprintf("%s/playergamelog", c.baseURL)
	params := url.Values{}
	params.Set("PlayerID", fmt.Sprintf("%d", playerExternalID))
	params.Set("Season", season)
	params.Set("SeasonType", "Regular Season")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build game log request: %w", err)
	}
	for k, v := range statsHeaders {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, NewProviderError(c.Name(), ErrCodeNetworkError, "game log request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, NewProviderError(c.Name(), ErrCodeServerError,
			fmt.Sprintf("game log request returned status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewProviderError(c.Name(), ErrCodeNetworkError, "failed to read game log response", err)
	}

	var parsed gameLogResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, NewProviderError(c.Name(), ErrCodeInvalidData, "malformed game log response", err)
	}

	return c.parseRows(parsed, playerExternalID)
}

// FetchPlayerIndex retrieves the league-wide roster for the season. Only
// currently rostered players are returned.
func (c *StatsClient) FetchPlayerIndex(ctx context.Context, season string) ([]PlayerIndexEntry, error) {
	endpoint := fmt.Sprintf("%s/commonallplayers", c.baseURL)
	params := url.Values{}
	params.Set("LeagueID", "00")
	params.Set("Season", season)
	params.Set("IsOnlyCurrentSeason", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build player index request: %w", err)
	}
	for k, v := range statsHeaders {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, NewProviderError(c.Name(), ErrCodeNetworkError, "player index request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, NewProviderError(c.Name(), ErrCodeServerError,
			fmt.Sprintf("player index request returned status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewProviderError(c.Name(), ErrCodeNetworkError, "failed to read player index response", err)
	}

	var parsed gameLogResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, NewProviderError(c.Name(), ErrCodeInvalidData, "malformed player index response", err)
	}
	if len(parsed.ResultSets) == 0 {
		return nil, nil
	}

	set := parsed.ResultSets[0]
	idx := make(map[string]int, len(set.Headers))
	for i, h := range set.Headers {
		idx[h] = i
	}
	for _, required := range []string{"PERSON_ID", "DISPLAY_FIRST_LAST"} {
		if _, ok := idx[required]; !ok {
			return nil, NewProviderError(c.Name(), ErrCodeInvalidData,
				fmt.Sprintf("player index response missing %s column", required), nil)
		}
	}

	entries := make([]PlayerIndexEntry, 0, len(set.RowSet))
	for _, raw := range set.RowSet {
		id := cellFloat(raw, idx, "PERSON_ID")
		name, err := cellString(raw, idx["DISPLAY_FIRST_LAST"])
		if id == nil || err != nil || name == "" {
			c.logger.Warn("Skipping malformed player index row")
			continue
		}

		entry := PlayerIndexEntry{ExternalID: int64(*id), FullName: name}
		if team, err := cellString(raw, idx["TEAM_ABBREVIATION"]); err == nil && team != "" {
			entry.TeamAbbr = &team
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func (c *StatsClient) parseRows(parsed gameLogResponse, playerExternalID int64) ([]GameLogRow, error) {
	if len(parsed.ResultSets) == 0 {
		return nil, nil
	}

	set := parsed.ResultSets[0]
	idx := make(map[string]int, len(set.Headers))
	for i, h := range set.Headers {
		idx[h] = i
	}
	for _, required := range []string{"Game_ID", "GAME_DATE"} {
		if _, ok := idx[required]; !ok {
			return nil, NewProviderError(c.Name(), ErrCodeInvalidData,
				fmt.Sprintf("game log response missing %s column", required), nil)
		}
	}

	rows := make([]GameLogRow, 0, len(set.RowSet))
	for _, raw := range set.RowSet {
		row, err := parseGameLogRow(raw, idx)
		if err != nil {
			c.logger.WithField("player_id", playerExternalID).Warnf("Skipping malformed game log row: %v", err)
			continue
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func parseGameLogRow(raw []json.RawMessage, idx map[string]int) (GameLogRow, error) {
	var row GameLogRow

	gameKey, err := cellString(raw, idx["Game_ID"])
	if err != nil {
		return row, fmt.Errorf("game id: %w", err)
	}
	dateStr, err := cellString(raw, idx["GAME_DATE"])
	if err != nil {
		return row, fmt.Errorf("game date: %w", err)
	}
	gameDate, err := time.Parse(gameDateLayout, titleCase(dateStr))
	if err != nil {
		return row, fmt.Errorf("game date %q: %w", dateStr, err)
	}

	row.ProviderGameKey = gameKey
	row.GameDate = gameDate
	row.Points = cellFloat(raw, idx, "PTS")
	row.Rebounds = cellFloat(raw, idx, "REB")
	row.Assists = cellFloat(raw, idx, "AST")
	row.Steals = cellFloat(raw, idx, "STL")
	row.Blocks = cellFloat(raw, idx, "BLK")
	row.ThreesMade = cellFloat(raw, idx, "FG3M")

	return row, nil
}

func cellString(raw []json.RawMessage, i int) (string, error) {
	if i < 0 || i >= len(raw) {
		return "", fmt.Errorf("column index %d out of range", i)
	}
	var s string
	if err := json.Unmarshal(raw[i], &s); err != nil {
		return "", err
	}
	return s, nil
}

// cellFloat returns nil for missing columns or null cells so absent stats
// stay out of the sample instead of counting as zero
func cellFloat(raw []json.RawMessage, idx map[string]int, column string) *float64 {
	i, ok := idx[column]
	if !ok || i >= len(raw) {
		return nil
	}
	var v *float64
	if err := json.Unmarshal(raw[i], &v); err != nil {
		return nil
	}
	return v
}

// titleCase normalizes the feed's upper-cased month ("NOV 25, 2025") for parsing
func titleCase(date string) string {
	if len(date) < 3 {
		return date
	}
	return strings.ToUpper(date[:1]) + strings.ToLower(date[1:2]) + strings.ToLower(date[2:3]) + date[3:]
}
