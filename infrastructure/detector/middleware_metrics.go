package detector

import (
	"context"
	"errors"
	"time"

	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/ports"
)

// Metric names reported by MetricsMiddleware.
const (
	MetricDetectorLatency    = "detector_latency_seconds"
	MetricDetectorRequests   = "detector_requests_total"
	MetricDetectionsPerImage = "detector_detections_per_image"
)

type metricsDetector struct {
	next      CoreDetector
	collector ports.MetricsCollector
}

// MetricsMiddleware creates middleware that records latency, outcome and
// detection counts for every request.
func MetricsMiddleware(collector ports.MetricsCollector) Middleware {
	return func(next CoreDetector) CoreDetector {
		return &metricsDetector{
			next:      next,
			collector: collector,
		}
	}
}

// Detect executes the request while collecting metrics.
func (m *metricsDetector) Detect(ctx context.Context, req ports.DetectRequest) (*ports.DetectResult, error) {
	start := time.Now()
	result, err := m.next.Detect(ctx, req)

	if m.collector == nil {
		return result, err
	}

	labels := map[string]string{
		"backend": m.next.GetModel(),
		"status":  requestStatus(ctx, err),
	}
	m.collector.RecordHistogram(MetricDetectorLatency, time.Since(start).Seconds(), labels)
	m.collector.RecordCounter(MetricDetectorRequests, 1, labels)

	if err == nil && result != nil {
		m.collector.RecordHistogram(MetricDetectionsPerImage, float64(len(result.Detections)),
			map[string]string{"backend": labels["backend"]})
	}

	return result, err
}

// GetModel returns the backend identifier from the wrapped implementation.
func (m *metricsDetector) GetModel() string { return m.next.GetModel() }

func requestStatus(ctx context.Context, err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrCircuitOpen):
		return "circuit_open"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, ports.ErrTimeout),
		errors.Is(ctx.Err(), context.DeadlineExceeded):
		return "timeout"
	default:
		return "error"
	}
}
