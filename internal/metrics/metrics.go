// Package metrics provides centralized Prometheus metrics registry for the forecasting service.
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
	PredictionsServedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blaze_forecast",
		Name:      "predictions_served_total",
		Help:      "Total number of game predictions served",
	}, []string{"sport"})
	PredictionsRecordedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "blaze_forecast",
		Name:      "predictions_recorded_total",
		Help:      "Total number of prediction records created for calibration tracking",
	})
	OutcomesReconciledTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "blaze_forecast",
		Name:      "outcomes_reconciled_total",
		Help:      "Total number of prediction records reconciled against realized outcomes",
	})
	StreamUpdatesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "blaze_forecast",
		Name:      "stream_updates_total",
		Help:      "Total number of live prediction stream update cycles",
	})
	TrainingRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blaze_forecast",
		Name:      "training_runs_total",
		Help:      "Total number of model training runs by terminal status",
	}, []string{"status"})
	SimulationRunsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "blaze_forecast",
		Name:      "simulation_runs_total",
		Help:      "Total number of season simulation batches",
	})
	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "blaze_forecast",
		Name:      "cache_hits_total",
		Help:      "Total number of key-value cache hits",
	})
	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "blaze_forecast",
		Name:      "cache_misses_total",
		Help:      "Total number of key-value cache misses",
	})
	CacheReadFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "blaze_forecast",
		Name:      "cache_read_failures_total",
		Help:      "Total number of cache reads that failed and degraded to a miss",
	})
	ProviderFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blaze_forecast",
		Name:      "provider_failures_total",
		Help:      "Total number of failed outbound provider calls",
	}, []string{"provider"})
)

// Gauge metrics
var (
	ActiveStreams = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "blaze_forecast",
		Name:      "active_streams",
		Help:      "Number of live prediction streams currently active",
	})
	ActiveModels = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "blaze_forecast",
		Name:      "active_models",
		Help:      "Number of active registered models",
	}, []string{"sport", "model_type"})
	LastBrierScore = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "blaze_forecast",
		Name:      "last_brier_score",
		Help:      "Brier score of the most recently reconciled prediction",
	}, []string{"sport"})
)

// Histogram metrics
var (
	TrainingDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "blaze_forecast",
		Name:      "training_duration_seconds",
		Help:      "Duration of model training runs in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 1800},
	})
	SimulationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "blaze_forecast",
		Name:      "simulation_duration_seconds",
		Help:      "Duration of season simulation batches in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	StreamUpdateDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "blaze_forecast",
		Name:      "stream_update_duration_seconds",
		Help:      "Duration of one live stream update cycle in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(PredictionsServedTotal)
		registry.MustRegister(PredictionsRecordedTotal)
		registry.MustRegister(OutcomesReconciledTotal)
		registry.MustRegister(StreamUpdatesTotal)
		registry.MustRegister(TrainingRunsTotal)
		registry.MustRegister(SimulationRunsTotal)
		registry.MustRegister(CacheHitsTotal)
		registry.MustRegister(CacheMissesTotal)
		registry.MustRegister(CacheReadFailuresTotal)
		registry.MustRegister(ProviderFailuresTotal)

		registry.MustRegister(ActiveStreams)
		registry.MustRegister(ActiveModels)
		registry.MustRegister(LastBrierScore)

		registry.MustRegister(TrainingDuration)
		registry.MustRegister(SimulationDuration)
		registry.MustRegister(StreamUpdateDuration)
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
