package detector

import (
	"context"
	"time"

	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/ports"
)

type timeoutDetector struct {
	next    CoreDetector
	timeout time.Duration
}

// TimeoutMiddleware creates middleware that bounds every attempt by timeout.
// Placed inside RetryMiddleware it limits each attempt rather than the
// whole call.
func TimeoutMiddleware(timeout time.Duration) Middleware {
	return func(next CoreDetector) CoreDetector {
		return &timeoutDetector{
			next:    next,
			timeout: timeout,
		}
	}
}

// Detect executes the request with a deadline.
func (t *timeoutDetector) Detect(ctx context.Context, req ports.DetectRequest) (*ports.DetectResult, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Detect(ctx, req)
}

// GetModel returns the backend identifier from the wrapped implementation.
func (t *timeoutDetector) GetModel() string { return t.next.GetModel() }
