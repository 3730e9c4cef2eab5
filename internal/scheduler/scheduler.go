// Package scheduler runs the sync, analysis and grading jobs on cron
// schedules.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/props-edge/internal/config"
	"github.com/yourusername/props-edge/internal/service"
)

const jobTimeout = 30 * time.Minute

// Scheduler manages the recurring batch jobs
type Scheduler struct {
	cron      *cron.Cron
	statsSync *service.StatsSyncService
	analysis  *service.AnalysisService
	grading   *service.GradingService
	logger    *logrus.Logger
	mu        sync.RWMutex
	isRunning bool
	jobIDs    []cron.EntryID
}

// NewScheduler creates a scheduler over the three batch services
func NewScheduler(
	statsSync *service.StatsSyncService,
	analysis *service.AnalysisService,
	grading *service.GradingService,
	logger *logrus.Logger,
) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithLocation(time.UTC)),
		statsSync: statsSync,
		analysis:  analysis,
		grading:   grading,
		logger:    logger,
	}
}

// ScheduleAll registers the three jobs from configuration. The jobs are
// idempotent and safe to run out of order, so overlapping schedules only
// cost redundant work.
func (s *Scheduler) ScheduleAll(cfg config.ScheduleConfig) error {
	if err := s.schedule("stats_sync", cfg.StatsSync, func(ctx context.Context) (service.JobSummary, error) {
		if _, err := s.statsSync.SyncRoster(ctx); err != nil {
			s.logger.WithError(err).Warn("Roster sync failed, continuing with stored roster")
		}
		return s.statsSync.RefreshStats(ctx, false)
	}); err != nil {
		return err
	}

	if err := s.schedule("analysis", cfg.Analysis, func(ctx context.Context) (service.JobSummary, error) {
		return s.analysis.RunAnalysis(ctx, nil)
	}); err != nil {
		return err
	}

	return s.schedule("grading", cfg.Grading, func(ctx context.Context) (service.JobSummary, error) {
		return s.grading.RunGrading(ctx)
	})
}

func (s *Scheduler) schedule(name, expression string, job func(context.Context) (service.JobSummary, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	entryID, err := s.cron.AddFunc(expression, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		s.logger.WithField("job", name).Info("Starting scheduled job")
		summary, err := job(ctx)
		if err != nil {
			s.logger.WithError(err).WithField("job", name).Error("Scheduled job failed")
			return
		}
		s.logger.WithFields(logrus.Fields{
			"job":     name,
			"summary": summary.String(),
		}).Info("Scheduled job complete")
	})
	if err != nil {
		return fmt.Errorf("failed to schedule %s job: %w", name, err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithFields(logrus.Fields{
		"job":  name,
		"cron": expression,
	}).Info("Scheduled job")

	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()
	s.isRunning = false
	s.logger.Info("Scheduler stopped")
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns the earliest next scheduled job time
func (s *Scheduler) NextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var next time.Time
	for _, id := range s.jobIDs {
		entry := s.cron.Entry(id)
		if entry.Valid() && (next.IsZero() || entry.Next.Before(next)) {
			next = entry.Next
		}
	}
	return next
}
