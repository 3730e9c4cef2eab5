// Package statscache serves season and trailing-window box-score averages
// with memoized retrieval and a freshness-gated sync from the stats feed.
package statscache

import (
	"context"
	"fmt"
	"math"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/props-edge/internal/models"
	"github.com/yourusername/props-edge/internal/provider"
	"github.com/yourusername/props-edge/internal/repository"
)

// Window selects the sample for an average computation
type Window struct {
	Trailing int // 0 means full season
}

// Season is the full-season window
var Season = Window{}

// Trailing returns a window over the most recent n games
func Trailing(n int) Window {
	return Window{Trailing: n}
}

func (w Window) key() string {
	if w.Trailing <= 0 {
		return "season"
	}
	return fmt.Sprintf("last%d", w.Trailing)
}

// StatSummary holds the computed aggregate for one stat
type StatSummary struct {
	Mean   float64
	StdDev float64 // population standard deviation
	Games  int     // non-null sample size for this stat
}

// Result is the full aggregate for one player and window
type Result struct {
	Stats map[models.StatType]StatSummary
	Games int // total rows in the window regardless of nulls
}

// Summary returns the aggregate for a stat, zeroed when untracked
func (r Result) Summary(t models.StatType) StatSummary {
	return r.Stats[t]
}

// Cache computes averages over stored stat rows, syncing from the provider
// when the stored rows are stale
type Cache struct {
	stats     repository.GameStatRepository
	provider  provider.StatsProvider
	memo      *gocache.Cache
	season    string
	freshness time.Duration
	logger    *logrus.Logger
	now       func() time.Time
}

// New creates a stats cache. The clock is injectable for deterministic tests.
func New(stats repository.GameStatRepository, statsProvider provider.StatsProvider, season string, freshness time.Duration, logger *logrus.Logger) *Cache {
	return &Cache{
		stats:     stats,
		provider:  statsProvider,
		memo:      gocache.New(30*time.Minute, time.Hour),
		season:    season,
		freshness: freshness,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock overrides the cache's clock
func (c *Cache) WithClock(now func() time.Time) *Cache {
	c.now = now
	return c
}

// Averages computes per-stat mean and population standard deviation for the
// player over the window. Null stat values stay out of the sample rather
// than counting as zero. Zero stored rows yields an empty result, not an
// error.
func (c *Cache) Averages(ctx context.Context, player *models.Player, w Window) (Result, error) {
	memoKey := fmt.Sprintf("avg:%s:%s", player.ID, w.key())
	if cached, found := c.memo.Get(memoKey); found {
		if result, ok := cached.(Result); ok {
			return result, nil
		}
	}

	rows, err := c.stats.ListByPlayerSeason(ctx, player.ID, c.season)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load stat rows: %w", err)
	}

	// Rows arrive newest first; trim to the trailing window
	if w.Trailing > 0 && len(rows) > w.Trailing {
		rows = rows[:w.Trailing]
	}

	result := computeResult(rows)
	c.memo.Set(memoKey, result, gocache.DefaultExpiration)

	return result, nil
}

// Sync refreshes the player's stored rows from the provider. The fetch is
// skipped when the stored rows were refreshed within the freshness window,
// unless forced. A fetch returning zero rows writes nothing: synthesizing
// placeholder rows would blur "no game" and "no data yet".
func (c *Cache) Sync(ctx context.Context, player *models.Player, force bool) (int, error) {
	if !force {
		fresh, err := c.isFresh(ctx, player)
		if err != nil {
			return 0, err
		}
		if fresh {
			return 0, nil
		}
	}

	rows, err := c.provider.FetchGameLog(ctx, player.ExternalID, c.season)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch game log for %s: %w", player.FullName, err)
	}

	fetchedAt := c.now()
	for _, raw := range rows {
		row := &models.GameStatRow{
			PlayerID:        player.ID,
			ProviderGameKey: raw.ProviderGameKey,
			Season:          c.season,
			GameDate:        raw.GameDate,
			Points:          raw.Points,
			Rebounds:        raw.Rebounds,
			Assists:         raw.Assists,
			Steals:          raw.Steals,
			Blocks:          raw.Blocks,
			ThreesMade:      raw.ThreesMade,
			FetchedAt:       fetchedAt,
		}
		if err := c.stats.Upsert(ctx, row); err != nil {
			return 0, fmt.Errorf("failed to store stat row: %w", err)
		}
	}

	// Remember the attempt even when the player has no games yet, so the
	// freshness window still applies
	c.memo.Set(c.syncMarkerKey(player), fetchedAt, c.freshness)
	c.invalidatePlayer(player)

	if len(rows) == 0 {
		c.logger.WithField("player", player.FullName).Debug("Game log fetch returned no rows")
	}

	return len(rows), nil
}

func (c *Cache) isFresh(ctx context.Context, player *models.Player) (bool, error) {
	if _, found := c.memo.Get(c.syncMarkerKey(player)); found {
		return true, nil
	}

	lastFetched, err := c.stats.LastFetchedAt(ctx, player.ID, c.season)
	if err != nil {
		return false, fmt.Errorf("failed to check stat freshness: %w", err)
	}
	if lastFetched == nil {
		return false, nil
	}

	return c.now().Sub(*lastFetched) < c.freshness, nil
}

func (c *Cache) syncMarkerKey(player *models.Player) string {
	return fmt.Sprintf("sync:%s", player.ID)
}

func (c *Cache) invalidatePlayer(player *models.Player) {
	c.memo.Delete(fmt.Sprintf("avg:%s:season", player.ID))
	for n := 1; n <= 20; n++ {
		c.memo.Delete(fmt.Sprintf("avg:%s:last%d", player.ID, n))
	}
}

func computeResult(rows []*models.GameStatRow) Result {
	result := Result{
		Stats: make(map[models.StatType]StatSummary, len(models.AllStatTypes)),
		Games: len(rows),
	}

	for _, statType := range models.AllStatTypes {
		var values []float64
		for _, row := range rows {
			if v := row.Stat(statType); v != nil {
				values = append(values, *v)
			}
		}
		result.Stats[statType] = summarize(values)
	}

	return result
}

func summarize(values []float64) StatSummary {
	if len(values) == 0 {
		return StatSummary{}
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))

	return StatSummary{
		Mean:   mean,
		StdDev: math.Sqrt(variance),
		Games:  len(values),
	}
}
