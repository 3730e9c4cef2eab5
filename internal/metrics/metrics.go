// Package metrics provides the centralized Prometheus registry for the
// props engine.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	LinesFetchedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "props_edge",
		Name:      "lines_fetched_total",
		Help:      "Total number of prop lines fetched from the odds feed",
	})
	SignalsComputedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "props_edge",
		Name:      "signals_computed_total",
		Help:      "Total number of signals computed",
	})
	BetsRecordedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "props_edge",
		Name:      "bets_recorded_total",
		Help:      "Total number of bets recorded, by model",
	}, []string{"model_id"})
	BetsGradedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "props_edge",
		Name:      "bets_graded_total",
		Help:      "Total number of bets graded, by result",
	}, []string{"result"})
	ProviderErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "props_edge",
		Name:      "provider_errors_total",
		Help:      "Total number of provider fetch errors, by source",
	}, []string{"source"})
	CircuitBreakerTripsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "props_edge",
		Name:      "circuit_breaker_trips_total",
		Help:      "Total number of provider circuit breaker trips",
	})
)

// Gauge metrics
var (
	CumulativeProfit = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "props_edge",
		Name:      "cumulative_profit",
		Help:      "Cumulative profit over all graded bets in currency units",
	})
	TrackedPlayers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "props_edge",
		Name:      "tracked_players",
		Help:      "Number of players with current posted lines",
	})
)

// Histogram metrics
var (
	AnalysisDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "props_edge",
		Name:      "analysis_duration_seconds",
		Help:      "Duration of full analysis runs in seconds",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
	})
	StatsSyncDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "props_edge",
		Name:      "stats_sync_duration_seconds",
		Help:      "Duration of stats sync runs in seconds",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(LinesFetchedTotal)
		registry.MustRegister(SignalsComputedTotal)
		registry.MustRegister(BetsRecordedTotal)
		registry.MustRegister(BetsGradedTotal)
		registry.MustRegister(ProviderErrorsTotal)
		registry.MustRegister(CircuitBreakerTripsTotal)

		registry.MustRegister(CumulativeProfit)
		registry.MustRegister(TrackedPlayers)

		registry.MustRegister(AnalysisDuration)
		registry.MustRegister(StatsSyncDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordBetRecorded records a persisted bet for a model.
func RecordBetRecorded(modelID string) {
	BetsRecordedTotal.WithLabelValues(modelID).Inc()
}

// RecordBetGraded records a settled bet outcome.
func RecordBetGraded(won bool) {
	result := "loss"
	if won {
		result = "win"
	}
	BetsGradedTotal.WithLabelValues(result).Inc()
}

// RecordProviderError records a provider fetch failure.
func RecordProviderError(source string) {
	ProviderErrorsTotal.WithLabelValues(source).Inc()
}

// RecordCircuitBreakerTrip records a circuit breaker trip event.
func RecordCircuitBreakerTrip() {
	CircuitBreakerTripsTotal.Inc()
}
