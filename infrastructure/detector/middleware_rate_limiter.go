package detector

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/ports"
)

// rateLimitedDetector paces requests with a token bucket so that a batch
// analysis cannot flood the vision service, which processes one image at a
// time.
type rateLimitedDetector struct {
	next    CoreDetector
	limiter *rate.Limiter
}

// RateLimitMiddleware creates middleware that allows limit requests per
// second with bursts of up to burst requests. A burst below one is raised
// to one.
func RateLimitMiddleware(limit float64, burst int) Middleware {
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(limit), burst)

	return func(next CoreDetector) CoreDetector {
		return &rateLimitedDetector{
			next:    next,
			limiter: limiter,
		}
	}
}

// Detect waits for a token before forwarding the request.
func (r *rateLimitedDetector) Detect(ctx context.Context, req ports.DetectRequest) (*ports.DetectResult, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	return r.next.Detect(ctx, req)
}

// GetModel returns the backend identifier from the wrapped implementation.
func (r *rateLimitedDetector) GetModel() string { return r.next.GetModel() }
