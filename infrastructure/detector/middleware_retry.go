package detector

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/ports"
)

type retryDetector struct {
	next       CoreDetector
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// RetryMiddleware resends a failed detection up to maxRetries times. The
// wait doubles from baseDelay with ±25% jitter, never exceeds maxDelay and
// never undercuts a Retry-After the vision service sent. Permanent failures
// such as a missing image, an open circuit or a cancelled context are
// returned after the first attempt.
func RetryMiddleware(maxRetries int, baseDelay, maxDelay time.Duration) Middleware {
	return func(next CoreDetector) CoreDetector {
		return &retryDetector{
			next:       next,
			maxRetries: maxRetries,
			baseDelay:  baseDelay,
			maxDelay:   maxDelay,
		}
	}
}

func (r *retryDetector) Detect(ctx context.Context, req ports.DetectRequest) (*ports.DetectResult, error) {
	var err error
	attempts := 0
	for attempts <= r.maxRetries {
		var res *ports.DetectResult
		res, err = r.next.Detect(ctx, req)
		attempts++
		if err == nil {
			return res, nil
		}
		if attempts > r.maxRetries || ctx.Err() != nil || !retryable(err) {
			break
		}

		timer := time.NewTimer(r.wait(attempts-1, err))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return nil, fmt.Errorf("request failed after %d attempts: %w", attempts, err)
}

// wait picks the pause before the next attempt.
func (r *retryDetector) wait(attempt int, err error) time.Duration {
	d := r.backoff(attempt)
	var pe *ProviderError
	if errors.As(err, &pe) && pe.RetryAfter > d {
		d = min(pe.RetryAfter, r.maxDelay)
	}
	return d
}

func (r *retryDetector) backoff(attempt int) time.Duration {
	nominal := float64(r.baseDelay) * math.Exp2(float64(max(attempt, 0)))
	if nominal >= float64(r.maxDelay) {
		return r.maxDelay
	}
	// #nosec G404 -- jitter only
	d := time.Duration(nominal * (0.75 + rand.Float64()*0.5))
	return min(d, r.maxDelay)
}

func (r *retryDetector) GetModel() string { return r.next.GetModel() }

// retryable treats unclassified errors as transient.
func retryable(err error) bool {
	if errors.Is(err, ErrCircuitOpen) {
		return false
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.IsRetryable()
	}
	return true
}
