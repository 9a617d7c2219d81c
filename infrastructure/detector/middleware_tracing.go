package detector

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/ports"
)

const tracerName = "github.com/coffeescripttech-maker/classroom-cleanliness/infrastructure/detector"

type tracedDetector struct {
	next        CoreDetector
	serviceName string
	tracer      trace.Tracer
}

// TracingMiddleware creates middleware that wraps every request in an
// OpenTelemetry span. The tracer is taken from the global provider when the
// middleware is built.
func TracingMiddleware(serviceName string) Middleware {
	return TracingMiddlewareWithProvider(serviceName, otel.GetTracerProvider())
}

// TracingMiddlewareWithProvider is TracingMiddleware with an explicit
// tracer provider.
func TracingMiddlewareWithProvider(serviceName string, tp trace.TracerProvider) Middleware {
	tracer := tp.Tracer(tracerName)
	return func(next CoreDetector) CoreDetector {
		return &tracedDetector{
			next:        next,
			serviceName: serviceName,
			tracer:      tracer,
		}
	}
}

// Detect executes the request within a "detector.detect" span.
func (t *tracedDetector) Detect(ctx context.Context, req ports.DetectRequest) (*ports.DetectResult, error) {
	ctx, span := t.tracer.Start(ctx, "detector.detect",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("service.name", t.serviceName),
			attribute.String("detector.backend", t.next.GetModel()),
			attribute.String("classroom.id", string(req.ClassroomID)),
			attribute.Bool("detector.open_vocabulary", req.UseOpenVocabulary),
		),
	)
	defer span.End()

	result, err := t.next.Detect(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return result, err
	}

	if result != nil {
		span.SetAttributes(attribute.Int("detector.detections", len(result.Detections)))
	}
	span.SetStatus(codes.Ok, "")
	return result, nil
}

// GetModel returns the backend identifier from the wrapped implementation.
func (t *tracedDetector) GetModel() string { return t.next.GetModel() }
