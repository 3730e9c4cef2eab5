package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/props-edge/internal/config"
	"github.com/yourusername/props-edge/internal/models"
	"github.com/yourusername/props-edge/internal/signal"
)

func makeSignal(rec models.Recommendation, conf models.Confidence, z float64, statType models.StatType) signal.Signal {
	return signal.Signal{
		StatType:       statType,
		ZScore:         z,
		Recommendation: rec,
		Confidence:     conf,
	}
}

func sentinelConfig() config.SentinelConfig {
	return config.SentinelConfig{
		Active:            true,
		BaseStake:         10,
		MidStake:          15,
		HighStake:         20,
		MidPctThreshold:   75,
		HighPctThreshold:  80,
		UnderFloorPct:     75,
		StatUnderFloorPct: map[string]float64{"PTS": 70, "REB": 70},
	}
}

func maverickConfig() config.MaverickConfig {
	return config.MaverickConfig{
		Active:     true,
		BandLow:    0.75,
		BandHigh:   1.25,
		BaseStake:  10,
		BoostStake: 15,
	}
}

func TestConfidencePct(t *testing.T) {
	assert.InDelta(t, 50.0, ConfidencePct(0), 1e-9)
	assert.InDelta(t, 70.0, ConfidencePct(1.0), 1e-9)
	assert.InDelta(t, 70.0, ConfidencePct(-1.0), 1e-9)
	assert.InDelta(t, 99.0, ConfidencePct(2.5), 1e-9, "capped at 99")
}

func TestPulsarTakesAnyDirectionalSignal(t *testing.T) {
	model := NewPulsarModel(10)

	decision := model.Decide(makeSignal(models.RecommendationOver, models.ConfidenceMedium, 0.6, models.StatPoints))
	assert.True(t, decision.Take)
	assert.Equal(t, "10", decision.Stake.String())
	assert.Equal(t, models.RecommendationOver, decision.Recommendation)
}

func TestPulsarDeclinesNoPlay(t *testing.T) {
	model := NewPulsarModel(10)

	decision := model.Decide(makeSignal(models.RecommendationNoPlay, models.ConfidenceNone, 0.2, models.StatPoints))
	assert.False(t, decision.Take)
	assert.True(t, decision.Stake.IsZero())
}

func TestSentinelStakeTiers(t *testing.T) {
	model := NewSentinelModel(sentinelConfig())

	tests := []struct {
		name  string
		z     float64 // pct = 50 + 20|z|
		stake string
	}{
		{"base stake below mid threshold", 0.6, "10"},  // 62%
		{"mid stake at 75 percent", 1.25, "15"},        // 75%
		{"high stake at 80 percent", 1.5, "20"},        // 80%
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := model.Decide(makeSignal(models.RecommendationOver, models.ConfidenceMedium, tt.z, models.StatAssists))
			require.True(t, decision.Take)
			assert.Equal(t, tt.stake, decision.Stake.String())
		})
	}
}

func TestSentinelUnderFloor(t *testing.T) {
	model := NewSentinelModel(sentinelConfig())

	// 62% confidence UNDER falls below the 75% floor
	decision := model.Decide(makeSignal(models.RecommendationUnder, models.ConfidenceMedium, -0.6, models.StatAssists))
	assert.False(t, decision.Take)
	assert.Contains(t, decision.Reason, "UNDER below")

	// 76% clears both the general floor and the PTS floor
	decision = model.Decide(makeSignal(models.RecommendationUnder, models.ConfidenceHigh, -1.3, models.StatPoints))
	assert.True(t, decision.Take)

	// Overs at the same confidence are unaffected by the floors
	decision = model.Decide(makeSignal(models.RecommendationOver, models.ConfidenceMedium, 0.6, models.StatPoints))
	assert.True(t, decision.Take)
}

func TestMaverickFadesMidBand(t *testing.T) {
	model := NewMaverickModel(maverickConfig())

	// |z| inside [0.75, 1.25) inverts the call at base stake
	decision := model.Decide(makeSignal(models.RecommendationOver, models.ConfidenceMedium, 1.0, models.StatPoints))
	require.True(t, decision.Take)
	assert.Equal(t, models.RecommendationUnder, decision.Recommendation)
	assert.Equal(t, "10", decision.Stake.String())
}

func TestMaverickFollowsOutsideBand(t *testing.T) {
	model := NewMaverickModel(maverickConfig())

	tests := []struct {
		name string
		z    float64
	}{
		{"below band", 0.6},
		{"at band high", 1.25},
		{"far above band", 2.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := model.Decide(makeSignal(models.RecommendationOver, models.ConfidenceMedium, tt.z, models.StatPoints))
			require.True(t, decision.Take)
			assert.Equal(t, models.RecommendationOver, decision.Recommendation)
			assert.Equal(t, "15", decision.Stake.String())
		})
	}
}

func TestMaverickBandBoundaries(t *testing.T) {
	model := NewMaverickModel(maverickConfig())

	// Exactly band_low is inside the band
	decision := model.Decide(makeSignal(models.RecommendationUnder, models.ConfidenceMedium, -0.75, models.StatRebounds))
	require.True(t, decision.Take)
	assert.Equal(t, models.RecommendationOver, decision.Recommendation)
}

func TestRegistryBuildsActiveModels(t *testing.T) {
	registry := NewRegistry(config.ModelsConfig{
		Pulsar:   config.PulsarConfig{Active: true, Stake: 10},
		Sentinel: sentinelConfig(),
		Maverick: config.MaverickConfig{Active: false},
	})

	active := registry.Active()
	require.Len(t, active, 2)
	assert.Equal(t, "pulsar_v1", active[0].ID())
	assert.Equal(t, "sentinel_v1", active[1].ID())
}

func TestRegistryUnknownModel(t *testing.T) {
	registry := NewRegistry(config.ModelsConfig{
		Pulsar: config.PulsarConfig{Active: true, Stake: 10},
	})

	_, err := registry.Get("nonexistent_v9")
	assert.ErrorIs(t, err, models.ErrUnknownModel)

	_, err = registry.Filter([]string{"pulsar_v1", "nonexistent_v9"})
	assert.ErrorIs(t, err, models.ErrUnknownModel)
}

func TestRegistryFilterEmptyReturnsAll(t *testing.T) {
	registry := NewRegistry(config.ModelsConfig{
		Pulsar:   config.PulsarConfig{Active: true, Stake: 10},
		Maverick: maverickConfig(),
	})

	selected, err := registry.Filter(nil)
	require.NoError(t, err)
	assert.Len(t, selected, 2)
}
