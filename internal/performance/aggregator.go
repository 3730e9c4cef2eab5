// Package performance aggregates graded bets into win-rate, profit and
// streak reports, overall and segmented.
package performance

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/yourusername/props-edge/internal/grading"
	"github.com/yourusername/props-edge/internal/models"
	"github.com/yourusername/props-edge/internal/repository"
)

// Segment is the aggregate for one slice of graded bets
type Segment struct {
	Label   string
	Bets    int
	Wins    int
	WinRate float64
	Staked  decimal.Decimal
	Profit  decimal.Decimal
	ROI     float64 // profit / staked, as a fraction
}

// Report is the full performance picture over all graded bets
type Report struct {
	Overall Segment

	// CurrentStreak is signed: positive for consecutive wins ending at the
	// most recent graded bet, negative for consecutive losses
	CurrentStreak    int
	LongestWinStreak int

	// MaxDrawdown is the largest peak-to-trough drop of cumulative profit
	// in grading order, reported as a non-negative amount
	MaxDrawdown decimal.Decimal

	ByModel          []Segment
	ByConfidence     []Segment
	ByStatType       []Segment
	ByRecommendation []Segment
}

// Aggregator computes performance reports from the bet store
type Aggregator struct {
	bets repository.BetRepository
}

// NewAggregator creates a performance aggregator
func NewAggregator(bets repository.BetRepository) *Aggregator {
	return &Aggregator{bets: bets}
}

// Report builds the full report over every graded bet, in grading order
func (a *Aggregator) Report(ctx context.Context) (*Report, error) {
	graded, err := a.bets.ListGraded(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list graded bets: %w", err)
	}

	// The repository orders by graded_at already; re-sort defensively since
	// streaks and drawdown depend on it
	sort.SliceStable(graded, func(i, j int) bool {
		return graded[i].GradedAt.Before(*graded[j].GradedAt)
	})

	report := &Report{
		Overall:     summarize("overall", graded),
		MaxDrawdown: decimal.Zero,
	}

	report.CurrentStreak, report.LongestWinStreak = streaks(graded)
	report.MaxDrawdown = maxDrawdown(graded)

	report.ByModel = segmentBy(graded, func(b *models.Bet) string { return b.ModelID })
	report.ByConfidence = segmentBy(graded, func(b *models.Bet) string { return string(b.Confidence) })
	report.ByStatType = segmentBy(graded, func(b *models.Bet) string { return string(b.StatType) })
	report.ByRecommendation = segmentBy(graded, func(b *models.Bet) string { return string(b.Recommendation) })

	return report, nil
}

func summarize(label string, bets []*models.Bet) Segment {
	seg := Segment{
		Label:  label,
		Bets:   len(bets),
		Staked: decimal.Zero,
		Profit: decimal.Zero,
	}

	for _, bet := range bets {
		won := bet.Won != nil && *bet.Won
		if won {
			seg.Wins++
		}
		seg.Staked = seg.Staked.Add(bet.Stake)
		seg.Profit = seg.Profit.Add(grading.Profit(bet.Stake, bet.Odds, won))
	}

	if seg.Bets > 0 {
		seg.WinRate = float64(seg.Wins) / float64(seg.Bets)
	}
	if seg.Staked.IsPositive() {
		roi, _ := seg.Profit.Div(seg.Staked).Float64()
		seg.ROI = roi
	}

	return seg
}

func segmentBy(bets []*models.Bet, keyFn func(*models.Bet) string) []Segment {
	groups := make(map[string][]*models.Bet)
	var order []string

	for _, bet := range bets {
		k := keyFn(bet)
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], bet)
	}
	sort.Strings(order)

	segments := make([]Segment, 0, len(order))
	for _, k := range order {
		segments = append(segments, summarize(k, groups[k]))
	}
	return segments
}

func streaks(bets []*models.Bet) (current, longestWin int) {
	var run int
	for _, bet := range bets {
		won := bet.Won != nil && *bet.Won
		if won {
			if run < 0 {
				run = 0
			}
			run++
			if run > longestWin {
				longestWin = run
			}
		} else {
			if run > 0 {
				run = 0
			}
			run--
		}
	}
	return run, longestWin
}

func maxDrawdown(bets []*models.Bet) decimal.Decimal {
	cumulative := decimal.Zero
	peak := decimal.Zero
	worst := decimal.Zero

	for _, bet := range bets {
		won := bet.Won != nil && *bet.Won
		cumulative = cumulative.Add(grading.Profit(bet.Stake, bet.Odds, won))
		if cumulative.GreaterThan(peak) {
			peak = cumulative
		}
		if dd := peak.Sub(cumulative); dd.GreaterThan(worst) {
			worst = dd
		}
	}
	return worst
}
