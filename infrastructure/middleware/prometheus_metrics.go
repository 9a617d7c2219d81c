// Package middleware provides cross-cutting concerns for the scoring service:
// Prometheus metrics and OpenTelemetry instrumentation of analyses.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/ports"
)

// Metric names routed to dedicated collectors. Anything else falls back to
// the generic operation collectors.
const (
	MetricAnalysesTotal      = "analyses_total"
	MetricAnalysesInFlight   = "analyses_in_flight"
	MetricTotalScore         = "cleanliness_total_score"
	MetricCategoryScore      = "cleanliness_category_score"
	MetricDetectorLatency    = "detector_latency_seconds"
	MetricDetectorRequests   = "detector_requests_total"
	MetricDetectionsPerImage = "detector_detections_per_image"
	MetricCircuitState       = "detector_circuit_state"
	MetricCircuitEventsTotal = "detector_circuit_events_total"
	MetricOperationDuration  = "operation_duration_seconds"
	MetricOperationsTotal    = "operations_total"
	MetricServiceState       = "service_state"
)

// PrometheusMetrics implements ports.MetricsCollector using Prometheus. It
// tracks analysis outcomes, the distribution of scores, and the health of
// the detection backend.
type PrometheusMetrics struct {
	analysesTotal      *prometheus.CounterVec
	totalScore         prometheus.Histogram
	categoryScore      *prometheus.HistogramVec
	detectorLatency    *prometheus.HistogramVec
	detectorRequests   *prometheus.CounterVec
	detectionsPerImage *prometheus.HistogramVec
	circuitEvents      *prometheus.CounterVec
	operationLatency   *prometheus.HistogramVec
	operationCounter   *prometheus.CounterVec
	systemGauges       *prometheus.GaugeVec
}

// NewPrometheusMetrics creates the collectors and registers them with reg.
// A nil reg registers with the global Prometheus registry. Registering twice
// with the same registry panics.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		analysesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricAnalysesTotal,
				Help: "Image analyses by outcome.",
			},
			[]string{"status"},
		),
		totalScore: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    MetricTotalScore,
				Help:    "Distribution of total cleanliness scores (0-50).",
				Buckets: prometheus.LinearBuckets(5, 5, 10),
			},
		),
		categoryScore: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricCategoryScore,
				Help:    "Distribution of per-category cleanliness scores (0-10).",
				Buckets: prometheus.LinearBuckets(1, 1, 10),
			},
			[]string{"category"},
		),
		detectorLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricDetectorLatency,
				Help:    "Latency of object detection requests.",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60, 90},
			},
			[]string{"backend", "status"},
		),
		detectorRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricDetectorRequests,
				Help: "Object detection requests by outcome.",
			},
			[]string{"backend", "status"},
		),
		detectionsPerImage: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricDetectionsPerImage,
				Help:    "Number of objects detected per analyzed image.",
				Buckets: prometheus.ExponentialBuckets(1, 2, 9),
			},
			[]string{"backend"},
		),
		circuitEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricCircuitEventsTotal,
				Help: "Detector circuit breaker outcomes.",
			},
			[]string{"event"},
		),
		operationLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricOperationDuration,
				Help:    "Execution time of service operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		operationCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricOperationsTotal,
				Help: "Counters without a dedicated collector.",
			},
			[]string{"metric"},
		),
		systemGauges: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: MetricServiceState,
				Help: "Current state values of the service, such as in-flight analyses and circuit state.",
			},
			[]string{"metric"},
		),
	}
}

// RecordLatency records the execution time of an operation.
func (pm *PrometheusMetrics) RecordLatency(operation string, duration time.Duration, _ map[string]string) {
	pm.operationLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordCounter increments the counter named by metric.
func (pm *PrometheusMetrics) RecordCounter(metric string, value float64, labels map[string]string) {
	switch metric {
	case MetricAnalysesTotal:
		pm.analysesTotal.WithLabelValues(label(labels, "status")).Add(value)
	case MetricDetectorRequests:
		pm.detectorRequests.WithLabelValues(label(labels, "backend"), label(labels, "status")).Add(value)
	case MetricCircuitEventsTotal:
		pm.circuitEvents.WithLabelValues(label(labels, "event")).Add(value)
	default:
		pm.operationCounter.WithLabelValues(metric).Add(value)
	}
}

// RecordGauge sets the gauge named by metric.
func (pm *PrometheusMetrics) RecordGauge(metric string, value float64, _ map[string]string) {
	pm.systemGauges.WithLabelValues(metric).Set(value)
}

// RecordHistogram observes value in the histogram named by metric.
// Unknown names are recorded as operation latencies.
func (pm *PrometheusMetrics) RecordHistogram(metric string, value float64, labels map[string]string) {
	switch metric {
	case MetricTotalScore:
		pm.totalScore.Observe(value)
	case MetricCategoryScore:
		pm.categoryScore.WithLabelValues(label(labels, "category")).Observe(value)
	case MetricDetectorLatency:
		pm.detectorLatency.WithLabelValues(label(labels, "backend"), label(labels, "status")).Observe(value)
	case MetricDetectionsPerImage:
		pm.detectionsPerImage.WithLabelValues(label(labels, "backend")).Observe(value)
	default:
		pm.operationLatency.WithLabelValues(metric).Observe(value)
	}
}

const unknownLabel = "unknown"

func label(labels map[string]string, key string) string {
	if v := labels[key]; v != "" {
		return v
	}
	return unknownLabel
}

var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)
