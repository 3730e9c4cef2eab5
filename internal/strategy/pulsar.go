package strategy

import (
	"github.com/shopspring/decimal"

	"github.com/yourusername/props-edge/internal/models"
	"github.com/yourusername/props-edge/internal/signal"
)

// PulsarModel is the original baseline: flat stake on any signal that
// clears the z-score threshold, no further filtering.
type PulsarModel struct {
	id    string
	stake decimal.Decimal
}

// NewPulsarModel creates the baseline flat-stake model
func NewPulsarModel(stake float64) *PulsarModel {
	return &PulsarModel{
		id:    "pulsar_v1",
		stake: decimal.NewFromFloat(stake),
	}
}

// ID returns the versioned model identifier
func (m *PulsarModel) ID() string {
	return m.id
}

// DisplayName returns the human-readable model name
func (m *PulsarModel) DisplayName() string {
	return "Pulsar 1.0"
}

// Decide takes every signal with a directional call at the flat stake
func (m *PulsarModel) Decide(sig signal.Signal) Decision {
	if sig.Recommendation == models.RecommendationNoPlay || sig.Confidence == models.ConfidenceNone {
		return pass("no directional signal")
	}

	return Decision{
		Take:           true,
		Stake:          m.stake,
		Recommendation: sig.Recommendation,
		Confidence:     sig.Confidence,
		Reason:         "standard play",
	}
}
