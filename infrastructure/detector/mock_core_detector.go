package detector

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/domain"
	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/ports"
)

// errSimulated is returned by MockCoreDetector when it is told to fail
// without a specific error.
var errSimulated = errors.New("simulated failure")

// MockCoreDetector is a configurable CoreDetector for middleware tests.
type MockCoreDetector struct {
	mu sync.Mutex

	Result        *ports.DetectResult
	Error         error
	Model         string
	ResponseDelay time.Duration
	HealthErr     error

	// FailUntilAttempt makes the first N calls fail.
	FailUntilAttempt int

	CallCount   int
	LastContext context.Context
	Contexts    []context.Context
}

// NewMockCoreDetector creates a mock that reports two detections.
func NewMockCoreDetector() *MockCoreDetector {
	return &MockCoreDetector{
		Result: &ports.DetectResult{
			Detections: []domain.Detection{
				{Class: "chair", Confidence: 0.9, BBox: domain.BBox{10, 10, 60, 80}},
				{Class: "paper", Confidence: 0.7, BBox: domain.BBox{100, 300, 120, 320}},
			},
		},
		Model: "test-detector",
	}
}

// Detect implements CoreDetector.
func (m *MockCoreDetector) Detect(ctx context.Context, _ ports.DetectRequest) (*ports.DetectResult, error) {
	m.mu.Lock()
	m.CallCount++
	call := m.CallCount
	m.LastContext = ctx
	m.Contexts = append(m.Contexts, ctx)
	delay := m.ResponseDelay
	failUntil := m.FailUntilAttempt
	configured := m.Error
	result := m.Result
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	failure := configured
	if failure == nil {
		failure = errSimulated
	}
	if failUntil > 0 && call <= failUntil {
		return nil, failure
	}
	if configured != nil {
		return nil, configured
	}
	return result, nil
}

// Health implements HealthChecker.
func (m *MockCoreDetector) Health(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.HealthErr
}

// GetModel returns the configured model name.
func (m *MockCoreDetector) GetModel() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Model
}

// SetError replaces the configured error.
func (m *MockCoreDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Error = err
}

// GetCallCount returns the number of Detect calls.
func (m *MockCoreDetector) GetCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CallCount
}
