package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/props-edge/internal/config"
	"github.com/yourusername/props-edge/internal/models"
)

// marketStatTypes maps odds-feed market keys to stat types
var marketStatTypes = map[string]models.StatType{
	"player_points":   models.StatPoints,
	"player_rebounds": models.StatRebounds,
	"player_assists":  models.StatAssists,
	"player_steals":   models.StatSteals,
	"player_blocks":   models.StatBlocks,
	"player_threes":   models.StatThrees,
}

// OddsClient fetches player prop lines from the odds aggregator API
type OddsClient struct {
	baseURL string
	apiKey  string
	regions string
	http    *RateLimitedHTTPClient
	logger  *logrus.Logger
}

// NewOddsClient creates an odds feed client from configuration
func NewOddsClient(cfg *config.OddsProviderConfig, logger *logrus.Logger) *OddsClient {
	httpCfg := DefaultHTTPClientConfig()
	httpCfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	httpCfg.MaxRetries = cfg.MaxRetries
	httpCfg.RateLimit = cfg.RequestsPerSecond

	return &OddsClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		regions: cfg.Regions,
		http:    NewRateLimitedHTTPClient(httpCfg, logger),
		logger:  logger,
	}
}

// Name returns the provider name
func (c *OddsClient) Name() string {
	return "odds_api"
}

type oddsEvent struct {
	ID           string    `json:"id"`
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`
	CommenceTime time.Time `json:"commence_time"`
}

type eventOddsResponse struct {
	ID         string `json:"id"`
	Bookmakers []struct {
		Key     string `json:"key"`
		Markets []struct {
			Key      string `json:"key"`
			Outcomes []struct {
				Name        string   `json:"name"`
				Description string   `json:"description"`
				Point       *float64 `json:"point"`
				Price       *int     `json:"price"`
			} `json:"outcomes"`
		} `json:"markets"`
	} `json:"bookmakers"`
}

// FetchCurrentLines retrieves every posted player prop for the day's games
func (c *OddsClient) FetchCurrentLines(ctx context.Context, date time.Time) ([]PropQuote, error) {
	events, err := c.fetchEvents(ctx)
	if err != nil {
		return nil, err
	}

	var quotes []PropQuote
	for _, event := range events {
		eventQuotes, err := c.fetchEventProps(ctx, event)
		if err != nil {
			// One game's props failing should not sink the whole cycle
			c.logger.WithField("event", event.ID).Warnf("Failed to fetch props: %v", err)
			continue
		}
		quotes = append(quotes, eventQuotes...)
	}

	c.logger.Infof("Collected %d prop quotes across %d events", len(quotes), len(events))
	return quotes, nil
}

func (c *OddsClient) fetchEvents(ctx context.Context) ([]oddsEvent, error) {
	params := url.Values{}
	params.Set("apiKey", c.apiKey)
	params.Set("regions", c.regions)
	params.Set("markets", "h2h")
	params.Set("oddsFormat", "american")

	body, err := c.get(ctx, fmt.Sprintf("%s/sports/basketball_nba/odds?%s", c.baseURL, params.Encode()))
	if err != nil {
		return nil, err
	}

	var events []oddsEvent
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, NewProviderError(c.Name(), ErrCodeInvalidData, "malformed events response", err)
	}

	return events, nil
}

func (c *OddsClient) fetchEventProps(ctx context.Context, event oddsEvent) ([]PropQuote, error) {
	params := url.Values{}
	params.Set("apiKey", c.apiKey)
	params.Set("regions", c.regions)
	params.Set("markets", strings.Join(marketKeys(), ","))
	params.Set("oddsFormat", "american")

	body, err := c.get(ctx, fmt.Sprintf("%s/sports/basketball_nba/events/%s/odds?%s",
		c.baseURL, event.ID, params.Encode()))
	if err != nil {
		return nil, err
	}

	var parsed eventOddsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, NewProviderError(c.Name(), ErrCodeInvalidData, "malformed event odds response", err)
	}

	return parseEventQuotes(parsed, event), nil
}

// parseEventQuotes flattens bookmaker/market/outcome triples into quotes,
// pairing each Over outcome with its Under counterpart by player name.
func parseEventQuotes(parsed eventOddsResponse, event oddsEvent) []PropQuote {
	var quotes []PropQuote

	for _, bookmaker := range parsed.Bookmakers {
		for _, market := range bookmaker.Markets {
			statType, ok := marketStatTypes[market.Key]
			if !ok {
				continue
			}

			for _, outcome := range market.Outcomes {
				if outcome.Name != "Over" || outcome.Point == nil {
					continue
				}

				var underOdds *int
				for _, under := range market.Outcomes {
					if under.Name == "Under" && under.Description == outcome.Description {
						underOdds = under.Price
						break
					}
				}

				quotes = append(quotes, PropQuote{
					PlayerName: outcome.Description,
					StatType:   statType,
					LineValue:  *outcome.Point,
					OverOdds:   outcome.Price,
					UnderOdds:  underOdds,
					Bookmaker:  bookmaker.Key,
					EventKey:   event.ID,
					HomeTeam:   event.HomeTeam,
					AwayTeam:   event.AwayTeam,
					GameTime:   event.CommenceTime,
				})
			}
		}
	}

	return quotes
}

func (c *OddsClient) get(ctx context.Context, fullURL string) ([]byte, error) {
	resp, err := c.http.Get(ctx, fullURL)
	if err != nil {
		return nil, NewProviderError(c.Name(), ErrCodeNetworkError, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, NewProviderError(c.Name(), ErrCodeRateLimitExceeded, "quota exhausted", ErrRateLimitExceeded)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, NewProviderError(c.Name(), ErrCodeServerError,
			fmt.Sprintf("request returned status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewProviderError(c.Name(), ErrCodeNetworkError, "failed to read response", err)
	}

	return body, nil
}

func marketKeys() []string {
	keys := make([]string, 0, len(marketStatTypes))
	for k := range marketStatTypes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
