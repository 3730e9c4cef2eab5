package signal

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/props-edge/internal/models"
	"github.com/yourusername/props-edge/internal/statscache"
)

// stubStats serves fixed season and trailing aggregates
type stubStats struct {
	season statscache.Result
	recent statscache.Result
}

func (s stubStats) Averages(_ context.Context, _ *models.Player, w statscache.Window) (statscache.Result, error) {
	if w.Trailing > 0 {
		return s.recent, nil
	}
	return s.season, nil
}

func makeResult(mean, stdDev float64, games int) statscache.Result {
	return statscache.Result{
		Stats: map[models.StatType]statscache.StatSummary{
			models.StatPoints: {Mean: mean, StdDev: stdDev, Games: games},
		},
		Games: games,
	}
}

func testPlayer() *models.Player {
	return &models.Player{ID: uuid.New(), FullName: "Test Player"}
}

func TestEvaluateBlendsSeasonAndRecent(t *testing.T) {
	engine := NewEngine(stubStats{
		season: makeResult(20.0, 4.0, 20),
		recent: makeResult(24.0, 3.0, 5),
	}, 5)

	sig, err := engine.Evaluate(context.Background(), testPlayer(), models.StatPoints, 25.5)
	require.NoError(t, err)

	assert.InDelta(t, 22.0, sig.Expected, 1e-9)
	assert.InDelta(t, 3.5, sig.Deviation, 1e-9)
	assert.InDelta(t, 0.875, sig.ZScore, 1e-9)
	assert.Equal(t, models.RecommendationOver, sig.Recommendation)
	assert.Equal(t, models.ConfidenceMedium, sig.Confidence)
}

func TestEvaluateZeroStdDevIsNoPlay(t *testing.T) {
	engine := NewEngine(stubStats{
		season: makeResult(15.0, 0.0, 10),
		recent: makeResult(18.0, 2.0, 5),
	}, 5)

	sig, err := engine.Evaluate(context.Background(), testPlayer(), models.StatPoints, 30.0)
	require.NoError(t, err)

	assert.Zero(t, sig.ZScore)
	assert.Equal(t, models.RecommendationNoPlay, sig.Recommendation)
	assert.Equal(t, models.ConfidenceNone, sig.Confidence)
}

func TestEvaluateTierBoundaries(t *testing.T) {
	// Season and recent means agree at 20, std 2, so line = 20 + z*2
	stats := stubStats{
		season: makeResult(20.0, 2.0, 20),
		recent: makeResult(20.0, 2.0, 5),
	}
	engine := NewEngine(stats, 5)

	tests := []struct {
		name       string
		line       float64
		rec        models.Recommendation
		confidence models.Confidence
	}{
		{"just under medium threshold", 20 + 0.4999*2, models.RecommendationNoPlay, models.ConfidenceNone},
		{"exactly medium threshold", 20 + 0.5*2, models.RecommendationOver, models.ConfidenceMedium},
		{"just under high threshold", 20 + 0.9999*2, models.RecommendationOver, models.ConfidenceMedium},
		{"exactly high threshold", 20 + 1.0*2, models.RecommendationOver, models.ConfidenceHigh},
		{"negative deviation is under", 20 - 0.75*2, models.RecommendationUnder, models.ConfidenceMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, err := engine.Evaluate(context.Background(), testPlayer(), models.StatPoints, tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.rec, sig.Recommendation)
			assert.Equal(t, tt.confidence, sig.Confidence)
		})
	}
}

func TestEvaluateSampleSizeDowngrade(t *testing.T) {
	tests := []struct {
		name       string
		games      int
		line       float64 // against mean 20, std 2
		rec        models.Recommendation
		confidence models.Confidence
	}{
		// Below 3 games the downgrade cascades all the way to no play
		{"high at 2 games cascades to no play", 2, 24.0, models.RecommendationNoPlay, models.ConfidenceNone},
		{"medium at 2 games drops to no play", 2, 21.5, models.RecommendationNoPlay, models.ConfidenceNone},
		{"high at 4 games drops to medium", 4, 24.0, models.RecommendationOver, models.ConfidenceMedium},
		{"medium at 4 games survives", 4, 21.5, models.RecommendationOver, models.ConfidenceMedium},
		{"high at 5 games survives", 5, 24.0, models.RecommendationOver, models.ConfidenceHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine(stubStats{
				season: makeResult(20.0, 2.0, tt.games),
				recent: makeResult(20.0, 2.0, tt.games),
			}, 5)

			sig, err := engine.Evaluate(context.Background(), testPlayer(), models.StatPoints, tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.rec, sig.Recommendation)
			assert.Equal(t, tt.confidence, sig.Confidence)
		})
	}
}

func TestEvaluateUntrackedStatIsNoPlay(t *testing.T) {
	engine := NewEngine(stubStats{
		season: makeResult(20.0, 2.0, 10),
		recent: makeResult(20.0, 2.0, 5),
	}, 5)

	// Rebounds were never tracked for this stub; zero mean and std
	sig, err := engine.Evaluate(context.Background(), testPlayer(), models.StatRebounds, 8.5)
	require.NoError(t, err)
	assert.Equal(t, models.RecommendationNoPlay, sig.Recommendation)
}
