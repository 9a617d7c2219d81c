package detector

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/ports"
)

// ErrCircuitOpen indicates that the circuit breaker rejected a request
// without contacting the vision service. It matches
// ports.ErrServiceUnavailable.
var ErrCircuitOpen = fmt.Errorf("circuit breaker is open: %w", ports.ErrServiceUnavailable)

// CircuitBreakerState is exported as the detector_circuit_state gauge.
type CircuitBreakerState int

const (
	StateClosed CircuitBreakerState = iota
	// StateOpen fails every analysis fast until the cooldown ends.
	StateOpen
	// StateHalfOpen lets exactly one image through as a probe.
	StateHalfOpen
)

func (s CircuitBreakerState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// CircuitBreakerMetrics receives breaker activity. RecordTrip counts
// requests rejected while open, not transitions.
type CircuitBreakerMetrics interface {
	RecordState(state CircuitBreakerState)
	RecordTrip()
	RecordSuccess()
	RecordFailure()
}

// CircuitBreaker opens after maxFailures consecutive failures and stays open
// for the cooldown before letting one probe through. The lock is held only
// while deciding and recording, so concurrent requests reach the backend in
// parallel while the circuit is closed.
type CircuitBreaker struct {
	mu               sync.Mutex
	state            CircuitBreakerState
	failureCount     int
	maxFailures      int
	cooldownDuration time.Duration
	lastFailure      time.Time
	probing          bool
	now              func() time.Time
}

// NewCircuitBreaker creates a closed circuit breaker.
func NewCircuitBreaker(maxFailures int, cooldownDuration time.Duration) *CircuitBreaker {
	if maxFailures < 1 {
		maxFailures = 1
	}
	return &CircuitBreaker{
		state:            StateClosed,
		maxFailures:      maxFailures,
		cooldownDuration: cooldownDuration,
		now:              time.Now,
	}
}

// Call executes fn through the circuit breaker. If the circuit is open, or
// a half-open probe is already in flight, it returns ErrCircuitOpen without
// calling fn. Only errors for which countsAsFailure returns true move the
// breaker toward open.
func (cb *CircuitBreaker) Call(fn func() error) error {
	probe, err := cb.allow()
	if err != nil {
		return err
	}

	err = fn()
	cb.record(probe, err)
	return err
}

func (cb *CircuitBreaker) allow() (probe bool, err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if cb.now().Sub(cb.lastFailure) < cb.cooldownDuration {
			return false, ErrCircuitOpen
		}
		cb.state = StateHalfOpen
		cb.probing = true
		return true, nil
	case StateHalfOpen:
		if cb.probing {
			return false, ErrCircuitOpen
		}
		cb.probing = true
		return true, nil
	default:
		return false, nil
	}
}

func (cb *CircuitBreaker) record(probe bool, err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if probe {
		cb.probing = false
	}

	if !countsAsFailure(err) {
		cb.failureCount = 0
		cb.state = StateClosed
		return
	}

	cb.failureCount++
	cb.lastFailure = cb.now()
	if probe || cb.failureCount >= cb.maxFailures {
		cb.state = StateOpen
	}
}

func (cb *CircuitBreaker) GetState() CircuitBreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// countsAsFailure reports whether err says something about the health of
// the vision service. Caller cancellations and permanent request errors,
// such as a missing image, do not.
func countsAsFailure(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	return retryable(err)
}

type circuitBreakerDetector struct {
	next    CoreDetector
	cb      *CircuitBreaker
	metrics CircuitBreakerMetrics
}

// CircuitBreakerMiddleware creates middleware that fails fast while the
// vision service is unhealthy.
func CircuitBreakerMiddleware(maxFailures int, cooldown time.Duration) Middleware {
	return CircuitBreakerMiddlewareWithMetrics(maxFailures, cooldown, nil)
}

// CircuitBreakerMiddlewareWithMetrics is CircuitBreakerMiddleware with
// metrics reporting. A nil metrics disables reporting.
func CircuitBreakerMiddlewareWithMetrics(maxFailures int, cooldown time.Duration, metrics CircuitBreakerMetrics) Middleware {
	cb := NewCircuitBreaker(maxFailures, cooldown)

	return func(next CoreDetector) CoreDetector {
		return &circuitBreakerDetector{
			next:    next,
			cb:      cb,
			metrics: metrics,
		}
	}
}

func (c *circuitBreakerDetector) Detect(ctx context.Context, req ports.DetectRequest) (*ports.DetectResult, error) {
	var result *ports.DetectResult

	err := c.cb.Call(func() error {
		var err error
		result, err = c.next.Detect(ctx, req)
		return err
	})

	if c.metrics != nil {
		switch {
		case err == nil:
			c.metrics.RecordSuccess()
		case errors.Is(err, ErrCircuitOpen):
			c.metrics.RecordTrip()
		default:
			c.metrics.RecordFailure()
		}
		c.metrics.RecordState(c.cb.GetState())
	}

	return result, err
}

func (c *circuitBreakerDetector) GetModel() string { return c.next.GetModel() }

// collectorBreakerMetrics reports breaker activity through a
// ports.MetricsCollector.
type collectorBreakerMetrics struct {
	collector ports.MetricsCollector
}

// NewCollectorBreakerMetrics adapts a MetricsCollector to
// CircuitBreakerMetrics. The state gauge is 0 for closed, 1 for open and 2
// for half-open.
func NewCollectorBreakerMetrics(collector ports.MetricsCollector) CircuitBreakerMetrics {
	return &collectorBreakerMetrics{collector: collector}
}

func (m *collectorBreakerMetrics) RecordState(state CircuitBreakerState) {
	m.collector.RecordGauge("detector_circuit_state", float64(state), nil)
}

func (m *collectorBreakerMetrics) RecordTrip() {
	m.collector.RecordCounter("detector_circuit_events_total", 1, map[string]string{"event": "rejected"})
}

func (m *collectorBreakerMetrics) RecordSuccess() {
	m.collector.RecordCounter("detector_circuit_events_total", 1, map[string]string{"event": "success"})
}

func (m *collectorBreakerMetrics) RecordFailure() {
	m.collector.RecordCounter("detector_circuit_events_total", 1, map[string]string{"event": "failure"})
}
