package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/props-edge/internal/grading"
	"github.com/yourusername/props-edge/internal/metrics"
	"github.com/yourusername/props-edge/internal/performance"
)

// GradingService wraps the reconciler for scheduled runs and keeps the
// profit gauge current after each pass.
type GradingService struct {
	reconciler *grading.Reconciler
	aggregator *performance.Aggregator
	logger     *logrus.Logger
}

// NewGradingService creates the grading service
func NewGradingService(reconciler *grading.Reconciler, aggregator *performance.Aggregator, logger *logrus.Logger) *GradingService {
	return &GradingService{
		reconciler: reconciler,
		aggregator: aggregator,
		logger:     logger,
	}
}

// RunGrading settles every gradable bet and refreshes cumulative profit
func (s *GradingService) RunGrading(ctx context.Context) (JobSummary, error) {
	result, err := s.reconciler.GradePending(ctx)
	if err != nil {
		return JobSummary{}, fmt.Errorf("grading pass failed: %w", err)
	}

	summary := JobSummary{
		Succeeded: result.Graded,
		Skipped:   result.Skipped + result.NotReady,
		Errored:   result.Errored,
	}

	s.logger.WithField("summary", result.String()).Info("Grading run complete")

	if result.Graded > 0 {
		report, err := s.aggregator.Report(ctx)
		if err != nil {
			s.logger.WithError(err).Warn("Failed to refresh performance report")
			return summary, nil
		}
		profit, _ := report.Overall.Profit.Float64()
		metrics.CumulativeProfit.Set(profit)
	}

	return summary, nil
}
