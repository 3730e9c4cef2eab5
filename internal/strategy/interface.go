// Package strategy holds the betting models that decide whether to act on
// a computed signal, at what stake, and in which direction.
package strategy

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/yourusername/props-edge/internal/models"
	"github.com/yourusername/props-edge/internal/signal"
)

// Decision is a model's verdict on a signal
type Decision struct {
	Take           bool
	Stake          decimal.Decimal
	Recommendation models.Recommendation
	Confidence     models.Confidence
	Reason         string
}

// Model defines the interface for betting models. Implementations carry a
// versioned identifier; rule changes ship as new IDs so historical bets
// keep the rules they were created under.
type Model interface {
	ID() string
	DisplayName() string
	Decide(sig signal.Signal) Decision
}

// pass builds a declined decision with the given rationale
func pass(reason string) Decision {
	return Decision{Take: false, Stake: decimal.Zero, Recommendation: models.RecommendationNoPlay, Confidence: models.ConfidenceNone, Reason: reason}
}

// ConfidencePct maps a z-score onto a 0-100 confidence percentage:
// 50% base plus 20 points per z-score unit, capped at 99.
func ConfidencePct(zScore float64) float64 {
	pct := 50 + math.Abs(zScore)*20
	return math.Min(pct, 99)
}
