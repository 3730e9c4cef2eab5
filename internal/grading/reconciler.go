package grading

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/props-edge/internal/metrics"
	"github.com/yourusername/props-edge/internal/models"
	"github.com/yourusername/props-edge/internal/repository"
	"github.com/yourusername/props-edge/internal/statscache"
)

// Summary reports the outcome of one grading pass
type Summary struct {
	Locked   int // OPEN bets transitioned to LOCKED
	Graded   int
	NotReady int // no stat rows stored yet, retried next pass
	Skipped  int // player has rows but none on the game date (did not play)
	Errored  int
}

// String renders the summary for log output
func (s Summary) String() string {
	return fmt.Sprintf("locked=%d graded=%d not_ready=%d skipped=%d errored=%d",
		s.Locked, s.Graded, s.NotReady, s.Skipped, s.Errored)
}

// Reconciler settles locked bets once the settlement delay has elapsed.
// Grading matches the stored box-score row by the game's local calendar
// date, never by provider game key, because the odds feed and the stats
// feed do not share identifiers.
type Reconciler struct {
	bets        repository.BetRepository
	stats       repository.GameStatRepository
	players     repository.PlayerRepository
	cache       *statscache.Cache
	location    *time.Location
	settleDelay time.Duration
	logger      *logrus.Logger
	now         func() time.Time
}

// NewReconciler creates a grading reconciler
func NewReconciler(
	repos *repository.Repositories,
	cache *statscache.Cache,
	location *time.Location,
	settleDelay time.Duration,
	logger *logrus.Logger,
) *Reconciler {
	return &Reconciler{
		bets:        repos.Bet,
		stats:       repos.GameStat,
		players:     repos.Player,
		cache:       cache,
		location:    location,
		settleDelay: settleDelay,
		logger:      logger,
		now:         time.Now,
	}
}

// WithClock overrides the reconciler's clock
func (r *Reconciler) WithClock(now func() time.Time) *Reconciler {
	r.now = now
	return r
}

// GradePending locks started bets, then settles every locked bet whose
// game started at least the settlement delay ago. Each bet is handled
// independently; a failure on one never blocks the rest. Re-running is
// safe: already-graded bets are excluded by the gradable query and the
// grade update is compare-and-swap.
func (r *Reconciler) GradePending(ctx context.Context) (Summary, error) {
	var summary Summary

	now := r.now()

	locked, err := r.bets.LockStarted(ctx, now)
	if err != nil {
		return summary, fmt.Errorf("failed to lock started bets: %w", err)
	}
	summary.Locked = locked

	cutoff := now.Add(-r.settleDelay)
	gradable, err := r.bets.ListGradable(ctx, cutoff)
	if err != nil {
		return summary, fmt.Errorf("failed to list gradable bets: %w", err)
	}

	for _, bet := range gradable {
		switch outcome, err := r.gradeBet(ctx, bet); {
		case err != nil:
			summary.Errored++
			r.logger.WithError(err).WithFields(logrus.Fields{
				"bet_id": bet.ID,
				"player": bet.PlayerName,
				"stat":   bet.StatType,
			}).Warn("Failed to grade bet")
		case outcome == outcomeGraded:
			summary.Graded++
		case outcome == outcomeNotReady:
			summary.NotReady++
		case outcome == outcomeSkipped:
			summary.Skipped++
		}
	}

	return summary, nil
}

type gradeOutcome int

const (
	outcomeGraded gradeOutcome = iota
	outcomeNotReady
	outcomeSkipped
)

func (r *Reconciler) gradeBet(ctx context.Context, bet *models.Bet) (gradeOutcome, error) {
	player, err := r.players.GetByID(ctx, bet.PlayerID)
	if err != nil {
		return 0, fmt.Errorf("failed to load player: %w", err)
	}

	row, err := r.findGameRow(ctx, player, bet.GameTime)
	if errors.Is(err, models.ErrNotFound) {
		count, countErr := r.stats.CountByPlayer(ctx, player.ID)
		if countErr != nil {
			return 0, fmt.Errorf("failed to count stat rows: %w", countErr)
		}
		if count == 0 {
			// Box score not published yet; the next pass retries
			return outcomeNotReady, nil
		}
		// The player has rows for other dates but none for this game,
		// which means they did not play. Leave the bet for manual review.
		r.logger.WithFields(logrus.Fields{
			"bet_id": bet.ID,
			"player": bet.PlayerName,
		}).Info("No box score for game date, treating as did-not-play")
		return outcomeSkipped, nil
	}
	if err != nil {
		return 0, err
	}

	actual := row.Stat(bet.StatType)
	if actual == nil {
		return outcomeSkipped, nil
	}

	won := r.settle(bet.Recommendation, *actual, bet.LineValue)

	applied, err := r.bets.Grade(ctx, bet.ID, *actual, won, r.now())
	if err != nil {
		return 0, fmt.Errorf("failed to persist grade: %w", err)
	}
	if !applied {
		// Another pass settled it first
		return outcomeSkipped, nil
	}

	metrics.RecordBetGraded(won)
	r.logger.WithFields(logrus.Fields{
		"bet_id": bet.ID,
		"player": bet.PlayerName,
		"stat":   bet.StatType,
		"line":   bet.LineValue,
		"actual": *actual,
		"won":    won,
	}).Info("Graded bet")

	return outcomeGraded, nil
}

// findGameRow looks up the box-score row by the game's local calendar
// date. A freshness-gated sync runs first; when the dated row is still
// missing a forced sync retries once, because the settlement delay is
// shorter than the freshness window.
func (r *Reconciler) findGameRow(ctx context.Context, player *models.Player, gameTime time.Time) (*models.GameStatRow, error) {
	from, to := r.localDateRange(gameTime)

	if _, err := r.cache.Sync(ctx, player, false); err != nil {
		r.logger.WithError(err).WithField("player", player.FullName).Warn("Stats sync failed before grading, using stored rows")
	}

	row, err := r.stats.GetByPlayerAndDateRange(ctx, player.ID, from, to)
	if err == nil {
		return row, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up game row: %w", err)
	}

	if _, err := r.cache.Sync(ctx, player, true); err != nil {
		return nil, fmt.Errorf("failed to force stats sync: %w", err)
	}

	row, err = r.stats.GetByPlayerAndDateRange(ctx, player.ID, from, to)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up game row: %w", err)
	}
	return row, nil
}

func (r *Reconciler) localDateRange(gameTime time.Time) (time.Time, time.Time) {
	local := gameTime.In(r.location)
	from := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, r.location)
	return from, from.AddDate(0, 0, 1)
}

// settle decides the outcome. A push (actual exactly on the line) loses
// for both directions; posted props are half-point lines almost always,
// so the case is rare and the pessimistic reading keeps reported
// performance honest.
func (r *Reconciler) settle(rec models.Recommendation, actual, line float64) bool {
	switch rec {
	case models.RecommendationOver:
		return actual > line
	case models.RecommendationUnder:
		return actual < line
	default:
		return false
	}
}
