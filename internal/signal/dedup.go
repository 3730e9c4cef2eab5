package signal

import (
	"math"

	"github.com/yourusername/props-edge/internal/models"
)

// ScoredCandidate pairs a posted line with its computed signal
type ScoredCandidate struct {
	Line   *models.LineCandidate
	Signal Signal
}

// Deduplicate collapses simultaneous lines for the same player+stat into
// the single strongest signal by |z-score|, independent of input order.
// Different bookmakers post slightly different lines for the same prop;
// keeping the first-seen or lowest-odds line would discard the strongest
// deviation. Runs after scoring and before bet persistence.
func Deduplicate(candidates []ScoredCandidate) []ScoredCandidate {
	type key struct {
		player   string
		statType models.StatType
	}

	strongest := make(map[key]int, len(candidates))
	var order []key

	for i, candidate := range candidates {
		k := key{player: candidate.Signal.PlayerID.String(), statType: candidate.Signal.StatType}
		best, seen := strongest[k]
		if !seen {
			strongest[k] = i
			order = append(order, k)
			continue
		}
		if math.Abs(candidate.Signal.ZScore) > math.Abs(candidates[best].Signal.ZScore) {
			strongest[k] = i
		}
	}

	result := make([]ScoredCandidate, 0, len(order))
	for _, k := range order {
		result = append(result, candidates[strongest[k]])
	}

	return result
}
