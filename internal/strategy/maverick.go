package strategy

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/yourusername/props-edge/internal/config"
	"github.com/yourusername/props-edge/internal/models"
	"github.com/yourusername/props-edge/internal/signal"
)

// MaverickModel is the contrarian barbell: moderate deviations graded out
// less reliable than either small or extreme ones, so signals with |z|
// inside the middle band are faded at base stake, while signals outside
// the band follow the raw call at a boosted stake. Band bounds come from
// configuration; they are retuned from observed performance.
type MaverickModel struct {
	id         string
	bandLow    float64
	bandHigh   float64
	baseStake  decimal.Decimal
	boostStake decimal.Decimal
}

// NewMaverickModel creates the contrarian model from configuration
func NewMaverickModel(cfg config.MaverickConfig) *MaverickModel {
	return &MaverickModel{
		id:         "maverick_v1",
		bandLow:    cfg.BandLow,
		bandHigh:   cfg.BandHigh,
		baseStake:  decimal.NewFromFloat(cfg.BaseStake),
		boostStake: decimal.NewFromFloat(cfg.BoostStake),
	}
}

// ID returns the versioned model identifier
func (m *MaverickModel) ID() string {
	return m.id
}

// DisplayName returns the human-readable model name
func (m *MaverickModel) DisplayName() string {
	return "Maverick 1.0"
}

// Decide fades signals inside the band and boosts those outside it
func (m *MaverickModel) Decide(sig signal.Signal) Decision {
	if sig.Recommendation == models.RecommendationNoPlay || sig.Confidence == models.ConfidenceNone {
		return pass("no directional signal")
	}

	absZ := math.Abs(sig.ZScore)

	if absZ >= m.bandLow && absZ < m.bandHigh {
		return Decision{
			Take:           true,
			Stake:          m.baseStake,
			Recommendation: sig.Recommendation.Invert(),
			Confidence:     sig.Confidence,
			Reason:         fmt.Sprintf("fading mid-band deviation (|z|=%.2f in [%.2f, %.2f))", absZ, m.bandLow, m.bandHigh),
		}
	}

	return Decision{
		Take:           true,
		Stake:          m.boostStake,
		Recommendation: sig.Recommendation,
		Confidence:     sig.Confidence,
		Reason:         fmt.Sprintf("following deviation outside mid band (|z|=%.2f)", absZ),
	}
}
