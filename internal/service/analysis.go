package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/props-edge/internal/metrics"
	"github.com/yourusername/props-edge/internal/models"
	"github.com/yourusername/props-edge/internal/provider"
	"github.com/yourusername/props-edge/internal/repository"
	"github.com/yourusername/props-edge/internal/signal"
	"github.com/yourusername/props-edge/internal/statscache"
	"github.com/yourusername/props-edge/internal/strategy"
)

// AnalysisService runs the full line-to-bet pipeline: fetch current prop
// lines, score each against stored averages, deduplicate, apply the active
// models, and persist the resulting bets.
type AnalysisService struct {
	odds     provider.OddsProvider
	repos    *repository.Repositories
	cache    *statscache.Cache
	engine   *signal.Engine
	registry *strategy.Registry
	logger   *logrus.Logger
	now      func() time.Time
}

// NewAnalysisService creates the analysis service
func NewAnalysisService(
	odds provider.OddsProvider,
	repos *repository.Repositories,
	cache *statscache.Cache,
	engine *signal.Engine,
	registry *strategy.Registry,
	logger *logrus.Logger,
) *AnalysisService {
	return &AnalysisService{
		odds:     odds,
		repos:    repos,
		cache:    cache,
		engine:   engine,
		registry: registry,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the service's clock
func (s *AnalysisService) WithClock(now func() time.Time) *AnalysisService {
	s.now = now
	return s
}

// RunAnalysis executes one analysis pass. An empty modelIDs slice runs
// every active model. Re-running replaces each model's ungraded OPEN bet
// for a prop; LOCKED bets are never touched.
func (s *AnalysisService) RunAnalysis(ctx context.Context, modelIDs []string) (JobSummary, error) {
	var summary JobSummary
	start := s.now()
	defer func() {
		metrics.AnalysisDuration.Observe(s.now().Sub(start).Seconds())
	}()

	activeModels, err := s.registry.Filter(modelIDs)
	if err != nil {
		return summary, err
	}
	if len(activeModels) == 0 {
		return summary, errors.New("no active models")
	}

	quotes, err := s.odds.FetchCurrentLines(ctx, start)
	if err != nil {
		metrics.RecordProviderError(s.odds.Name())
		return summary, fmt.Errorf("failed to fetch current lines: %w", err)
	}
	metrics.LinesFetchedTotal.Add(float64(len(quotes)))
	s.logger.WithField("quotes", len(quotes)).Info("Fetched current prop lines")

	resolver, err := s.buildResolver(ctx)
	if err != nil {
		return summary, err
	}

	// Superseded lines stay stored with is_current off for audit
	if err := s.repos.PropLine.MarkAllStale(ctx); err != nil {
		return summary, fmt.Errorf("failed to mark stale lines: %w", err)
	}

	candidates := s.scoreQuotes(ctx, quotes, resolver, &summary)
	candidates = signal.Deduplicate(candidates)

	metrics.TrackedPlayers.Set(float64(countPlayers(candidates)))

	for _, candidate := range candidates {
		for _, model := range activeModels {
			s.recordDecision(ctx, candidate, model, &summary)
		}
	}

	locked, err := s.repos.Bet.LockStarted(ctx, s.now())
	if err != nil {
		return summary, fmt.Errorf("failed to lock started bets: %w", err)
	}
	if locked > 0 {
		s.logger.WithField("locked", locked).Info("Locked bets past game start")
	}

	s.logger.WithField("summary", summary.String()).Info("Analysis run complete")
	return summary, nil
}

// buildResolver loads the roster once and keys it by accent-folded name,
// so "Nikola Jokic" from the odds feed finds "Nikola Jokić" without a
// per-quote query.
func (s *AnalysisService) buildResolver(ctx context.Context) (map[string]*models.Player, error) {
	players, err := s.repos.Player.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}

	resolver := make(map[string]*models.Player, len(players))
	for _, p := range players {
		resolver[provider.FoldName(p.FullName)] = p
	}
	return resolver, nil
}

func (s *AnalysisService) resolvePlayer(resolver map[string]*models.Player, name string) *models.Player {
	return resolver[provider.FoldName(provider.NormalizePlayerName(name))]
}

func (s *AnalysisService) scoreQuotes(
	ctx context.Context,
	quotes []provider.PropQuote,
	resolver map[string]*models.Player,
	summary *JobSummary,
) []signal.ScoredCandidate {
	var candidates []signal.ScoredCandidate

	for i := range quotes {
		quote := &quotes[i]

		player := s.resolvePlayer(resolver, quote.PlayerName)
		if player == nil {
			summary.Skipped++
			s.logger.WithField("player", quote.PlayerName).Warn("Unknown player in odds feed, roster sync may be pending")
			continue
		}

		line := &models.LineCandidate{
			ID:         uuid.New(),
			PlayerID:   player.ID,
			PlayerName: player.FullName,
			StatType:   quote.StatType,
			LineValue:  quote.LineValue,
			OverOdds:   quote.OverOdds,
			UnderOdds:  quote.UnderOdds,
			Bookmaker:  quote.Bookmaker,
			EventKey:   quote.EventKey,
			GameTime:   quote.GameTime,
			FetchedAt:  s.now(),
			IsCurrent:  true,
		}
		if err := s.repos.PropLine.Insert(ctx, line); err != nil {
			summary.Errored++
			s.logger.WithError(err).WithField("player", player.FullName).Warn("Failed to store prop line")
			continue
		}

		if _, err := s.cache.Sync(ctx, player, false); err != nil {
			summary.Errored++
			s.logger.WithError(err).WithField("player", player.FullName).Warn("Stats sync failed, skipping line")
			continue
		}

		sig, err := s.engine.Evaluate(ctx, player, quote.StatType, quote.LineValue)
		if err != nil {
			summary.Errored++
			s.logger.WithError(err).WithField("player", player.FullName).Warn("Failed to score line")
			continue
		}
		metrics.SignalsComputedTotal.Inc()

		candidates = append(candidates, signal.ScoredCandidate{Line: line, Signal: sig})
	}

	return candidates
}

func (s *AnalysisService) recordDecision(
	ctx context.Context,
	candidate signal.ScoredCandidate,
	model strategy.Model,
	summary *JobSummary,
) {
	decision := model.Decide(candidate.Signal)
	if !decision.Take {
		summary.Skipped++
		return
	}

	bet := &models.Bet{
		ID:             uuid.New(),
		PlayerID:       candidate.Signal.PlayerID,
		PlayerName:     candidate.Signal.PlayerName,
		StatType:       candidate.Signal.StatType,
		LineValue:      candidate.Signal.LineValue,
		Recommendation: decision.Recommendation,
		Confidence:     decision.Confidence,
		Stake:          decision.Stake,
		ModelID:        model.ID(),
		Odds:           candidate.Line.OddsFor(decision.Recommendation),
		Reason:         decision.Reason,
		ZScore:         candidate.Signal.ZScore,
		GameTime:       candidate.Line.GameTime,
		State:          models.BetStateOpen,
		CreatedAt:      s.now(),
	}

	err := s.repos.Bet.UpsertPending(ctx, bet)
	switch {
	case errors.Is(err, models.ErrBetLocked):
		// The game already started; the locked bet keeps its terms
		summary.Skipped++
	case err != nil:
		summary.Errored++
		s.logger.WithError(err).WithFields(logrus.Fields{
			"player": bet.PlayerName,
			"stat":   bet.StatType,
			"model":  bet.ModelID,
		}).Warn("Failed to record bet")
	default:
		summary.Succeeded++
		metrics.RecordBetRecorded(model.ID())
		s.logger.WithFields(logrus.Fields{
			"player": bet.PlayerName,
			"stat":   bet.StatType,
			"rec":    bet.Recommendation,
			"stake":  bet.Stake,
			"model":  bet.ModelID,
			"reason": bet.Reason,
		}).Info("Recorded bet")
	}
}

func countPlayers(candidates []signal.ScoredCandidate) int {
	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		seen[c.Signal.PlayerID.String()] = struct{}{}
	}
	return len(seen)
}
