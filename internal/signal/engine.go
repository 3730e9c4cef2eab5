// Package signal computes model-implied fair values for posted prop lines
// and classifies how far each line deviates from them.
package signal

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/yourusername/props-edge/internal/models"
	"github.com/yourusername/props-edge/internal/statscache"
)

// StatsSource provides player averages; satisfied by statscache.Cache
type StatsSource interface {
	Averages(ctx context.Context, player *models.Player, w statscache.Window) (statscache.Result, error)
}

// Signal is the computed output for one line candidate. Signals are never
// persisted standalone; models consume them immediately.
type Signal struct {
	PlayerID       uuid.UUID
	PlayerName     string
	StatType       models.StatType
	LineValue      float64
	SeasonAvg      float64
	RecentAvg      float64
	Expected       float64
	StdDev         float64
	Deviation      float64
	ZScore         float64
	GamesPlayed    int
	Recommendation models.Recommendation
	Confidence     models.Confidence
}

// Engine scores (player, stat, line) triples against stored averages
type Engine struct {
	stats         StatsSource
	trailingGames int
}

// NewEngine creates a signal engine. trailingGames sets the recent-form
// window blended against the season average.
func NewEngine(stats StatsSource, trailingGames int) *Engine {
	if trailingGames <= 0 {
		trailingGames = 5
	}
	return &Engine{stats: stats, trailingGames: trailingGames}
}

// Evaluate computes the fair value for a line and classifies the deviation.
//
// The expected value is an equal blend of season and recent form. An
// opponent-defense term used to carry 20% weight here, but no reliable
// per-player opponent-adjusted statistic was obtainable from the feed, so
// the blend has exactly two inputs.
func (e *Engine) Evaluate(ctx context.Context, player *models.Player, statType models.StatType, lineValue float64) (Signal, error) {
	season, err := e.stats.Averages(ctx, player, statscache.Season)
	if err != nil {
		return Signal{}, fmt.Errorf("failed to load season averages: %w", err)
	}
	recent, err := e.stats.Averages(ctx, player, statscache.Trailing(e.trailingGames))
	if err != nil {
		return Signal{}, fmt.Errorf("failed to load recent averages: %w", err)
	}

	seasonStat := season.Summary(statType)
	recentStat := recent.Summary(statType)

	sig := Signal{
		PlayerID:    player.ID,
		PlayerName:  player.FullName,
		StatType:    statType,
		LineValue:   lineValue,
		SeasonAvg:   seasonStat.Mean,
		RecentAvg:   recentStat.Mean,
		Expected:    0.5*seasonStat.Mean + 0.5*recentStat.Mean,
		StdDev:      seasonStat.StdDev,
		GamesPlayed: season.Games,
	}
	sig.Deviation = lineValue - sig.Expected

	// Guard the division: a constant performer (or untracked stat) has no
	// meaningful standardized deviation
	if sig.StdDev > 0 {
		sig.ZScore = sig.Deviation / sig.StdDev
	}

	sig.Recommendation, sig.Confidence = classify(sig.ZScore, sig.Deviation)
	sig.Recommendation, sig.Confidence = downgradeForSampleSize(sig.Recommendation, sig.Confidence, sig.GamesPlayed)

	return sig, nil
}

// classify maps a z-score to a directional call and confidence tier. The
// line being far from the model's fair value is read as the book knowing
// something: follow the deviation.
func classify(zScore, deviation float64) (models.Recommendation, models.Confidence) {
	absZ := math.Abs(zScore)

	switch {
	case absZ < 0.5:
		return models.RecommendationNoPlay, models.ConfidenceNone
	case absZ < 1.0:
		return direction(deviation), models.ConfidenceMedium
	default:
		return direction(deviation), models.ConfidenceHigh
	}
}

func direction(deviation float64) models.Recommendation {
	if deviation < 0 {
		return models.RecommendationUnder
	}
	return models.RecommendationOver
}

// downgradeForSampleSize guards against high-confidence signals built on a
// near-empty sample. Below 3 games the downgrade cascades: HIGH steps to
// MEDIUM and any MEDIUM steps to no play, so a raw HIGH lands on NO_PLAY.
// Between 3 and 5 games only HIGH steps down.
func downgradeForSampleSize(rec models.Recommendation, conf models.Confidence, games int) (models.Recommendation, models.Confidence) {
	if games <= 0 || conf == models.ConfidenceNone {
		return rec, conf
	}

	if games < 3 {
		if conf == models.ConfidenceHigh {
			conf = models.ConfidenceMedium
		}
		if conf == models.ConfidenceMedium {
			return models.RecommendationNoPlay, models.ConfidenceNone
		}
		return rec, conf
	}

	if games < 5 && conf == models.ConfidenceHigh {
		conf = models.ConfidenceMedium
	}

	return rec, conf
}
