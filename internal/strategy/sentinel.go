package strategy

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/yourusername/props-edge/internal/config"
	"github.com/yourusername/props-edge/internal/models"
	"github.com/yourusername/props-edge/internal/signal"
)

// SentinelModel is the conservative variant: variable stake by mapped
// confidence, with stricter floors on UNDER recommendations. Unders on
// certain counting stats graded out less reliable than overs, hence the
// per-stat floors.
type SentinelModel struct {
	id             string
	baseStake      decimal.Decimal
	midStake       decimal.Decimal
	highStake      decimal.Decimal
	midThreshold   float64
	highThreshold  float64
	underFloor     float64
	statUnderFloor map[models.StatType]float64
}

// NewSentinelModel creates the conservative model from configuration
func NewSentinelModel(cfg config.SentinelConfig) *SentinelModel {
	statFloors := make(map[models.StatType]float64, len(cfg.StatUnderFloorPct))
	for stat, floor := range cfg.StatUnderFloorPct {
		statType, err := models.ParseStatType(stat)
		if err != nil {
			continue // config validation rejects unknown keys before this
		}
		statFloors[statType] = floor
	}

	return &SentinelModel{
		id:             "sentinel_v1",
		baseStake:      decimal.NewFromFloat(cfg.BaseStake),
		midStake:       decimal.NewFromFloat(cfg.MidStake),
		highStake:      decimal.NewFromFloat(cfg.HighStake),
		midThreshold:   cfg.MidPctThreshold,
		highThreshold:  cfg.HighPctThreshold,
		underFloor:     cfg.UnderFloorPct,
		statUnderFloor: statFloors,
	}
}

// ID returns the versioned model identifier
func (m *SentinelModel) ID() string {
	return m.id
}

// DisplayName returns the human-readable model name
func (m *SentinelModel) DisplayName() string {
	return "Sentinel 1.0"
}

// Decide applies the UNDER confidence floors, then sizes the stake by the
// mapped confidence percentage. The returned reason strings are persisted
// for audit.
func (m *SentinelModel) Decide(sig signal.Signal) Decision {
	if sig.Recommendation == models.RecommendationNoPlay || sig.Confidence == models.ConfidenceNone {
		return pass("no directional signal")
	}

	pct := ConfidencePct(sig.ZScore)

	if sig.Recommendation == models.RecommendationUnder {
		if pct < m.underFloor {
			return pass(fmt.Sprintf("UNDER below %.0f%% confidence (%.0f%%)", m.underFloor, pct))
		}
		if floor, ok := m.statUnderFloor[sig.StatType]; ok && pct < floor {
			return pass(fmt.Sprintf("%s UNDER below %.0f%% confidence (%.0f%%)", sig.StatType, floor, pct))
		}
	}

	var stake decimal.Decimal
	var reason string
	switch {
	case pct >= m.highThreshold:
		stake = m.highStake
		reason = fmt.Sprintf("high confidence (%.0f%%)", pct)
	case pct >= m.midThreshold:
		stake = m.midStake
		reason = fmt.Sprintf("medium-high confidence (%.0f%%)", pct)
	default:
		stake = m.baseStake
		reason = fmt.Sprintf("standard confidence (%.0f%%)", pct)
	}

	return Decision{
		Take:           true,
		Stake:          stake,
		Recommendation: sig.Recommendation,
		Confidence:     sig.Confidence,
		Reason:         reason,
	}
}
