// Package main provides the entry point for the props engine.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/props-edge/internal/config"
	"github.com/yourusername/props-edge/internal/database"
	"github.com/yourusername/props-edge/internal/grading"
	"github.com/yourusername/props-edge/internal/health"
	"github.com/yourusername/props-edge/internal/logger"
	"github.com/yourusername/props-edge/internal/metrics"
	"github.com/yourusername/props-edge/internal/performance"
	"github.com/yourusername/props-edge/internal/provider"
	"github.com/yourusername/props-edge/internal/repository"
	"github.com/yourusername/props-edge/internal/scheduler"
	"github.com/yourusername/props-edge/internal/service"
	signalengine "github.com/yourusername/props-edge/internal/signal"
	"github.com/yourusername/props-edge/internal/statscache"
	"github.com/yourusername/props-edge/internal/strategy"
)

var version = "dev"

// app bundles the wired components behind the subcommands
type app struct {
	cfg        *config.Config
	log        *logrus.Logger
	db         *database.DB
	repos      *repository.Repositories
	cache      *statscache.Cache
	statsSync  *service.StatsSyncService
	analysis   *service.AnalysisService
	grading    *service.GradingService
	aggregator *performance.Aggregator
}

func main() {
	var configPath string

	root := &cobra.Command{
		Use:           "props-edge",
		Short:         "NBA player-prop signal and grading engine",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config/config.yaml", "path to config file")

	root.AddCommand(
		newSyncCmd(&configPath),
		newAnalyzeCmd(&configPath),
		newGradeCmd(&configPath),
		newReportCmd(&configPath),
		newRunCmd(&configPath),
	)

	if err := root.Execute(); err != nil {
		log.Fatalf("props-edge: %v", err)
	}
}

func newSyncCmd(configPath *string) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync the roster and game logs for players with current lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), *configPath, func(ctx context.Context, a *app) error {
				if _, err := a.statsSync.SyncRoster(ctx); err != nil {
					return err
				}
				_, err := a.statsSync.RefreshStats(ctx, force)
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "bypass the freshness window")

	return cmd
}

func newAnalyzeCmd(configPath *string) *cobra.Command {
	var modelIDs []string

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Fetch current lines, score them and record bets",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), *configPath, func(ctx context.Context, a *app) error {
				_, err := a.analysis.RunAnalysis(ctx, modelIDs)
				return err
			})
		},
	}
	cmd.Flags().StringSliceVar(&modelIDs, "models", nil, "restrict to specific model IDs")

	return cmd
}

func newGradeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "grade",
		Short: "Settle locked bets against recorded box scores",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), *configPath, func(ctx context.Context, a *app) error {
				_, err := a.grading.RunGrading(ctx)
				return err
			})
		},
	}
}

func newReportCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print the performance report over graded bets",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), *configPath, func(ctx context.Context, a *app) error {
				report, err := a.aggregator.Report(ctx)
				if err != nil {
					return err
				}
				printReport(cmd, report)
				return nil
			})
		},
	}
}

func newRunCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the scheduler with the health and metrics servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), *configPath, func(ctx context.Context, a *app) error {
				return runDaemon(ctx, a)
			})
		},
	}
}

// withApp boots the full dependency graph, runs fn, and tears down
func withApp(ctx context.Context, configPath string, fn func(context.Context, *app) error) error {
	a, err := bootstrap(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.db.Close()

	return fn(ctx, a)
}

func bootstrap(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return nil, fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return nil, fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	appLog := logger.NewLogger(cfg.App.LogLevel)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"version":     version,
	}).Info("Props Edge starting")

	location, err := time.LoadLocation(cfg.Analysis.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Analysis.Timezone, err)
	}

	db, err := database.NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.InitSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	repos, err := repository.NewRepositories(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	statsClient := provider.NewStatsClient(&cfg.StatsProvider, appLog)
	oddsClient := provider.NewOddsClient(&cfg.OddsProvider, appLog)

	cache := statscache.New(repos.GameStat, statsClient, cfg.StatsProvider.Season, cfg.Analysis.Freshness(), appLog)
	engine := signalengine.NewEngine(cache, cfg.Analysis.TrailingGames)
	registry := strategy.NewRegistry(cfg.Models)
	aggregator := performance.NewAggregator(repos.Bet)
	reconciler := grading.NewReconciler(repos, cache, location, cfg.Grading.SettlementDelay(), appLog)

	return &app{
		cfg:        cfg,
		log:        appLog,
		db:         db,
		repos:      repos,
		cache:      cache,
		statsSync:  service.NewStatsSyncService(statsClient, repos, cache, cfg.StatsProvider.Season, appLog),
		analysis:   service.NewAnalysisService(oddsClient, repos, cache, engine, registry, appLog),
		grading:    service.NewGradingService(reconciler, aggregator, appLog),
		aggregator: aggregator,
	}, nil
}

// runDaemon runs the scheduler until SIGINT/SIGTERM
func runDaemon(ctx context.Context, a *app) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	healthServer := health.NewServer(a.cfg.App.Name, version, a.cfg.Health.Port, a.db, a.log)
	if err := healthServer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start health server: %w", err)
	}

	var metricsServer *http.Server
	if a.cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(a.cfg.Metrics.Path, metrics.Handler())
		metricsServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", a.cfg.Metrics.Port),
			Handler: mux,
		}
		go func() {
			a.log.WithField("port", a.cfg.Metrics.Port).Info("Metrics server starting")
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				a.log.WithError(err).Error("Metrics server error")
			}
		}()
	}

	sched := scheduler.NewScheduler(a.statsSync, a.analysis, a.grading, a.log)
	if err := sched.ScheduleAll(a.cfg.Schedule); err != nil {
		return err
	}
	if err := sched.Start(); err != nil {
		return err
	}
	healthServer.SetReady(true)

	a.log.WithField("next_run", sched.NextRun().Format(time.RFC3339)).Info("Props Edge running")

	<-ctx.Done()
	a.log.Info("Shutdown signal received")

	healthServer.SetReady(false)
	sched.Stop()
	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		metricsServer.Shutdown(shutdownCtx)
	}

	return nil
}

func printReport(cmd *cobra.Command, report *performance.Report) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Graded bets:       %d\n", report.Overall.Bets)
	fmt.Fprintf(out, "Win rate:          %.1f%%\n", report.Overall.WinRate*100)
	fmt.Fprintf(out, "Total staked:      %s\n", report.Overall.Staked.StringFixed(2))
	fmt.Fprintf(out, "Profit:            %s\n", report.Overall.Profit.StringFixed(2))
	fmt.Fprintf(out, "ROI:               %.1f%%\n", report.Overall.ROI*100)
	fmt.Fprintf(out, "Current streak:    %+d\n", report.CurrentStreak)
	fmt.Fprintf(out, "Longest win run:   %d\n", report.LongestWinStreak)
	fmt.Fprintf(out, "Max drawdown:      %s\n", report.MaxDrawdown.StringFixed(2))

	sections := []struct {
		title    string
		segments []performance.Segment
	}{
		{"By model", report.ByModel},
		{"By confidence", report.ByConfidence},
		{"By stat type", report.ByStatType},
		{"By recommendation", report.ByRecommendation},
	}
	for _, section := range sections {
		if len(section.segments) == 0 {
			continue
		}
		fmt.Fprintf(out, "\n%s:\n", section.title)
		for _, seg := range section.segments {
			fmt.Fprintf(out, "  %-12s bets=%-4d win=%.1f%% profit=%s\n",
				seg.Label, seg.Bets, seg.WinRate*100, seg.Profit.StringFixed(2))
		}
	}
}
