// Package testutils provides deterministic fakes of the service's ports
// for tests and local development.
package testutils

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/domain"
	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/ports"
)

var _ ports.Detector = (*MockDetector)(nil)

// MockDetector implements ports.Detector with canned detections chosen by
// matching the request's image path against registered patterns.
// Unmatched paths produce no detections, which scores a perfect 50.
type MockDetector struct {
	mu        sync.Mutex
	model     string
	responses []MockDetection
	calls     []ports.DetectRequest
	// Delay is applied before every response. The context is honored while
	// waiting.
	Delay time.Duration
}

// MockDetection pairs an image path pattern with the detector's answer.
type MockDetection struct {
	// Pattern is matched as a substring of DetectRequest.ImagePath.
	Pattern string
	// Detections are returned for matching requests.
	Detections []domain.Detection
	// Err, when set, is returned instead of detections.
	Err error
	// AnnotatedImagePath is echoed in the result.
	AnnotatedImagePath string
}

// NewMockDetector creates a mock with no registered responses.
func NewMockDetector(model string) *MockDetector {
	return &MockDetector{model: model}
}

// AddResponse registers a response. Later registrations win when several
// patterns match.
func (m *MockDetector) AddResponse(r MockDetection) *MockDetector {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, r)
	return m
}

// Detect returns the detections registered for the image path.
func (m *MockDetector) Detect(ctx context.Context, req ports.DetectRequest) (*ports.DetectResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	delay := m.Delay
	var match *MockDetection
	for i := len(m.responses) - 1; i >= 0; i-- {
		if strings.Contains(req.ImagePath, m.responses[i].Pattern) {
			r := m.responses[i]
			match = &r
			break
		}
	}
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if match == nil {
		return &ports.DetectResult{Detections: []domain.Detection{}}, nil
	}
	if match.Err != nil {
		return nil, match.Err
	}
	return &ports.DetectResult{
		Detections:         append([]domain.Detection(nil), match.Detections...),
		AnnotatedImagePath: match.AnnotatedImagePath,
	}, nil
}

// GetModel returns the configured model name.
func (m *MockDetector) GetModel() string { return m.model }

// Calls returns a copy of every request received.
func (m *MockDetector) Calls() []ports.DetectRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ports.DetectRequest(nil), m.calls...)
}

// CallCount returns the number of Detect calls.
func (m *MockDetector) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
