package middleware

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/domain"
	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/ports"
)

var _ ports.AnalysisObserver = (*OTelAnalysisObserver)(nil)

const observerTracerName = "github.com/coffeescripttech-maker/classroom-cleanliness/analysis"

// Analysis outcome labels recorded on MetricAnalysesTotal.
const (
	StatusSuccess       = "success"
	StatusForbidden     = "forbidden"
	StatusInvalid       = "invalid"
	StatusDetectorError = "detector_error"
	StatusStoreError    = "store_error"
	StatusCanceled      = "canceled"
	StatusError         = "error"
)

// OTelAnalysisObserver traces every analysis with an OpenTelemetry span and
// reports outcome, score distribution and latency through a
// ports.MetricsCollector. It is safe for concurrent use.
type OTelAnalysisObserver struct {
	metrics  ports.MetricsCollector
	tracer   trace.Tracer
	inFlight atomic.Int64
}

// NewOTelAnalysisObserver creates an observer that uses the global tracer
// provider. metrics may be nil.
func NewOTelAnalysisObserver(metrics ports.MetricsCollector) *OTelAnalysisObserver {
	return NewOTelAnalysisObserverWithProvider(metrics, otel.GetTracerProvider())
}

// NewOTelAnalysisObserverWithProvider creates an observer with an explicit
// tracer provider.
func NewOTelAnalysisObserverWithProvider(metrics ports.MetricsCollector, tp trace.TracerProvider) *OTelAnalysisObserver {
	return &OTelAnalysisObserver{
		metrics: metrics,
		tracer:  tp.Tracer(observerTracerName),
	}
}

// PreAnalysis starts the "AnalysisService.Analyze" span and bumps the
// in-flight gauge.
func (o *OTelAnalysisObserver) PreAnalysis(ctx context.Context, ev ports.AnalysisEvent) context.Context {
	ctx, _ = o.tracer.Start(ctx, "AnalysisService.Analyze",
		trace.WithAttributes(
			attribute.String("image.id", ev.ImageID),
			attribute.String("classroom.id", string(ev.ClassroomID)),
			attribute.String("user.id", ev.UserID),
			attribute.Bool("analysis.batch", ev.Batch),
		),
	)

	n := o.inFlight.Add(1)
	if o.metrics != nil {
		o.metrics.RecordGauge(MetricAnalysesInFlight, float64(n), nil)
	}
	return ctx
}

// PostAnalysis finishes the span started by PreAnalysis and records the
// outcome.
func (o *OTelAnalysisObserver) PostAnalysis(
	ctx context.Context,
	ev ports.AnalysisEvent,
	score *domain.CleanlinessScore,
	elapsed time.Duration,
	err error,
) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	n := o.inFlight.Add(-1)
	status := AnalysisStatus(err)

	if o.metrics != nil {
		o.metrics.RecordGauge(MetricAnalysesInFlight, float64(n), nil)
		o.metrics.RecordCounter(MetricAnalysesTotal, 1, map[string]string{"status": status})
		o.metrics.RecordLatency("analysis", elapsed, nil)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String("analysis.status", status))
		return
	}
	if score == nil {
		span.SetStatus(codes.Ok, "")
		return
	}

	span.SetAttributes(
		attribute.String("analysis.status", status),
		attribute.String("score.id", score.ID),
		attribute.Float64("score.total", score.Total),
		attribute.String("score.rating", string(score.Rating)),
		attribute.Int("detections.count", len(score.Detections)),
	)
	span.AddEvent("score.computed", trace.WithAttributes(
		attribute.Float64("score.floor", score.Breakdown.Floor),
		attribute.Float64("score.furniture", score.Breakdown.Furniture),
		attribute.Float64("score.trash", score.Breakdown.Trash),
		attribute.Float64("score.wall", score.Breakdown.Wall),
		attribute.Float64("score.clutter", score.Breakdown.Clutter),
	))
	if score.Rating == domain.RatingPoor {
		span.AddEvent("score.rating.poor", trace.WithAttributes(
			attribute.String("classroom.id", string(score.ClassroomID)),
		))
	}
	span.SetStatus(codes.Ok, "")

	if o.metrics != nil {
		o.metrics.RecordHistogram(MetricTotalScore, score.Total, nil)
		for _, c := range domain.ScoreCategories {
			v, _ := score.Breakdown.Get(c)
			o.metrics.RecordHistogram(MetricCategoryScore, v, map[string]string{"category": string(c)})
		}
	}
}

// AnalysisStatus maps an analysis error onto the status label used by
// MetricAnalysesTotal.
func AnalysisStatus(err error) string {
	var detectorErr *ports.DetectorError
	var storeErr *ports.StoreError

	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, context.Canceled):
		return StatusCanceled
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrUnauthenticated):
		return StatusForbidden
	case errors.Is(err, domain.ErrInvalidInput):
		return StatusInvalid
	case errors.As(err, &detectorErr):
		return StatusDetectorError
	case errors.As(err, &storeErr):
		return StatusStoreError
	default:
		return StatusError
	}
}
