package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/props-edge/internal/metrics"
	"github.com/yourusername/props-edge/internal/models"
	"github.com/yourusername/props-edge/internal/provider"
	"github.com/yourusername/props-edge/internal/repository"
	"github.com/yourusername/props-edge/internal/statscache"
)

// StatsSyncService keeps the roster and stored game logs current
type StatsSyncService struct {
	stats  provider.StatsProvider
	repos  *repository.Repositories
	cache  *statscache.Cache
	season string
	logger *logrus.Logger
	now    func() time.Time
}

// NewStatsSyncService creates the stats sync service
func NewStatsSyncService(
	stats provider.StatsProvider,
	repos *repository.Repositories,
	cache *statscache.Cache,
	season string,
	logger *logrus.Logger,
) *StatsSyncService {
	return &StatsSyncService{
		stats:  stats,
		repos:  repos,
		cache:  cache,
		season: season,
		logger: logger,
		now:    time.Now,
	}
}

// SyncRoster upserts the league roster from the stats feed. Analysis only
// acts on players present here; new call-ups appear after the next run.
func (s *StatsSyncService) SyncRoster(ctx context.Context) (JobSummary, error) {
	var summary JobSummary

	entries, err := s.stats.FetchPlayerIndex(ctx, s.season)
	if err != nil {
		metrics.RecordProviderError(s.stats.Name())
		return summary, fmt.Errorf("failed to fetch player index: %w", err)
	}

	for _, entry := range entries {
		player := &models.Player{
			ExternalID: entry.ExternalID,
			FullName:   entry.FullName,
			TeamAbbr:   entry.TeamAbbr,
		}
		if err := s.repos.Player.Upsert(ctx, player); err != nil {
			summary.Errored++
			s.logger.WithError(err).WithField("player", entry.FullName).Warn("Failed to upsert player")
			continue
		}
		summary.Succeeded++
	}

	s.logger.WithField("summary", summary.String()).Info("Roster sync complete")
	return summary, nil
}

// RefreshStats syncs game logs for every player with a current posted
// line. The per-player freshness window suppresses redundant fetches
// unless forced.
func (s *StatsSyncService) RefreshStats(ctx context.Context, force bool) (JobSummary, error) {
	var summary JobSummary
	start := s.now()
	defer func() {
		metrics.StatsSyncDuration.Observe(s.now().Sub(start).Seconds())
	}()

	playerIDs, err := s.repos.PropLine.ListCurrentPlayerIDs(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to list players with current lines: %w", err)
	}

	for _, id := range playerIDs {
		player, err := s.repos.Player.GetByID(ctx, id)
		if err != nil {
			summary.Errored++
			s.logger.WithError(err).WithField("player_id", id).Warn("Failed to load player for sync")
			continue
		}

		fetched, err := s.cache.Sync(ctx, player, force)
		if err != nil {
			summary.Errored++
			metrics.RecordProviderError(s.stats.Name())
			s.logger.WithError(err).WithField("player", player.FullName).Warn("Failed to sync game log")
			continue
		}
		if fetched == 0 && !force {
			summary.Skipped++
			continue
		}
		summary.Succeeded++
	}

	s.logger.WithField("summary", summary.String()).Info("Stats refresh complete")
	return summary, nil
}
