package middleware

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/ports"
)

func newTestMetrics(t *testing.T) (*PrometheusMetrics, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewPrometheusMetrics(reg), reg
}

func TestNewPrometheusMetrics(t *testing.T) {
	pm, reg := newTestMetrics(t)
	require.NotNil(t, pm)
	var _ ports.MetricsCollector = pm

	assert.Panics(t, func() { NewPrometheusMetrics(reg) }, "duplicate registration must panic")
}

func TestPrometheusMetrics_RecordCounter(t *testing.T) {
	pm, _ := newTestMetrics(t)

	pm.RecordCounter(MetricAnalysesTotal, 1, map[string]string{"status": "success"})
	pm.RecordCounter(MetricAnalysesTotal, 2, map[string]string{"status": "success"})
	pm.RecordCounter(MetricAnalysesTotal, 1, nil)
	pm.RecordCounter(MetricDetectorRequests, 1, map[string]string{"backend": "vision", "status": "timeout"})
	pm.RecordCounter(MetricCircuitEventsTotal, 1, map[string]string{"event": "rejected"})
	pm.RecordCounter("cache_misses", 4, nil)

	assert.Equal(t, 3.0, testutil.ToFloat64(pm.analysesTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pm.analysesTotal.WithLabelValues("unknown")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pm.detectorRequests.WithLabelValues("vision", "timeout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pm.circuitEvents.WithLabelValues("rejected")))
	assert.Equal(t, 4.0, testutil.ToFloat64(pm.operationCounter.WithLabelValues("cache_misses")))
}

func TestPrometheusMetrics_RecordGauge(t *testing.T) {
	pm, _ := newTestMetrics(t)

	pm.RecordGauge(MetricAnalysesInFlight, 3, nil)
	pm.RecordGauge(MetricAnalysesInFlight, 1, nil)
	pm.RecordGauge(MetricCircuitState, 2, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(pm.systemGauges.WithLabelValues(MetricAnalysesInFlight)))
	assert.Equal(t, 2.0, testutil.ToFloat64(pm.systemGauges.WithLabelValues(MetricCircuitState)))
}

func TestPrometheusMetrics_Histograms(t *testing.T) {
	pm, reg := newTestMetrics(t)

	pm.RecordHistogram(MetricTotalScore, 42, nil)
	pm.RecordHistogram(MetricCategoryScore, 9.5, map[string]string{"category": "floor"})
	pm.RecordHistogram(MetricDetectorLatency, 1.2, map[string]string{"backend": "vision", "status": "success"})
	pm.RecordHistogram(MetricDetectionsPerImage, 12, map[string]string{"backend": "vision"})
	pm.RecordHistogram("custom_thing", 0.3, nil)
	pm.RecordLatency("leaderboard", 15*time.Millisecond, nil)

	assert.Equal(t, 1, testutil.CollectAndCount(pm.totalScore))
	assert.Equal(t, 1, testutil.CollectAndCount(pm.categoryScore))
	assert.Equal(t, 1, testutil.CollectAndCount(pm.detectorLatency))
	assert.Equal(t, 1, testutil.CollectAndCount(pm.detectionsPerImage))
	assert.Equal(t, 2, testutil.CollectAndCount(pm.operationLatency), "custom_thing and leaderboard")

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{MetricTotalScore, MetricCategoryScore, MetricDetectorLatency, MetricOperationDuration} {
		assert.True(t, names[want], "missing metric family %s", want)
	}
}
