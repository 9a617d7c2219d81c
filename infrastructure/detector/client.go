// Package detector provides the client for the external object-detection
// service with built-in support for retries, rate limiting, circuit
// breaking, metrics, and tracing.
//
// The transport is abstracted behind the CoreDetector interface and the
// cross-cutting concerns are layered on through a middleware chain, so the
// scoring service can swap backends or add operational features without
// changing how it asks for detections.
//
// Basic usage:
//
//	client, err := detector.NewClient("http", detector.ClientConfig{
//	    BaseURL: os.Getenv("PYTHON_API_URL"),
//	})
//	result, err := client.Detect(ctx, ports.DetectRequest{ImagePath: "uploads/7a.jpg"})
//
// With middleware:
//
//	client, err := detector.NewClient("http", detector.ClientConfig{
//	    BaseURL: "http://localhost:5000",
//	    Middleware: []detector.Middleware{
//	        detector.TracingMiddleware("cleanliness"),
//	        detector.MetricsMiddleware(collector),
//	        detector.RetryMiddleware(2, 500*time.Millisecond, 5*time.Second),
//	        detector.CircuitBreakerMiddleware(5, 30*time.Second),
//	        detector.RateLimitMiddleware(2, 4),
//	        detector.TimeoutMiddleware(90 * time.Second),
//	    },
//	})
package detector

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/ports"
)

// CoreDetector defines the minimal interface that detection backends must
// implement. Middleware wraps any conforming implementation.
type CoreDetector interface {
	// Detect runs object detection for one image.
	Detect(ctx context.Context, req ports.DetectRequest) (*ports.DetectResult, error)

	// GetModel returns the identifier of the backend.
	GetModel() string
}

// HealthChecker is implemented by backends that can report readiness.
type HealthChecker interface {
	// Health returns nil when the backend is ready to accept requests.
	Health(ctx context.Context) error
}

// ClientConfig holds all configuration options for creating a detector client.
type ClientConfig struct {
	// BaseURL is the root of the detection service, e.g. http://localhost:5000.
	BaseURL string

	// Timeout sets the HTTP client timeout. Zero means no client-level
	// timeout; use TimeoutMiddleware for per-request deadlines.
	Timeout time.Duration

	// HTTPClient overrides the HTTP client used by the transport. Tests use
	// it to install a mock transport.
	HTTPClient *http.Client

	// Middleware is applied in order, so the first entry is the outermost.
	Middleware []Middleware
}

// Middleware wraps a CoreDetector implementation to add cross-cutting
// functionality.
type Middleware func(CoreDetector) CoreDetector

// Verify interface compliance at compile time.
var _ ports.Detector = (*Client)(nil)

// Client implements ports.Detector on top of a middleware-wrapped backend.
type Client struct {
	core CoreDetector
	raw  CoreDetector
}

// NewClient creates a detector client for the named provider type and
// assembles its middleware chain.
func NewClient(providerType string, config ClientConfig) (*Client, error) {
	factory, ok := GetProviderFactory(providerType)
	if !ok {
		return nil, fmt.Errorf("unknown detector provider: %s", providerType)
	}

	raw, err := factory(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create detector provider: %w", err)
	}

	return NewClientWithCore(raw, config.Middleware...), nil
}

// NewClientWithCore wraps an existing backend with middleware.
func NewClientWithCore(core CoreDetector, middleware ...Middleware) *Client {
	wrapped := core
	// Apply middleware in reverse order so the first middleware is the outermost.
	for i := len(middleware) - 1; i >= 0; i-- {
		wrapped = middleware[i](wrapped)
	}
	return &Client{core: wrapped, raw: core}
}

// Detect runs detection through the middleware chain.
func (c *Client) Detect(ctx context.Context, req ports.DetectRequest) (*ports.DetectResult, error) {
	return c.core.Detect(ctx, req)
}

// GetModel returns the backend identifier.
func (c *Client) GetModel() string { return c.core.GetModel() }

// Health reports whether the backend is ready. Backends that cannot report
// readiness are assumed healthy. Health checks bypass the middleware chain
// so that they neither consume rate limit tokens nor trip the breaker.
func (c *Client) Health(ctx context.Context) error {
	if hc, ok := c.raw.(HealthChecker); ok {
		return hc.Health(ctx)
	}
	return nil
}

// ProviderFactory creates a CoreDetector implementation from configuration.
type ProviderFactory func(ClientConfig) (CoreDetector, error)

var (
	providerMu        sync.RWMutex
	providerFactories = map[string]ProviderFactory{}
)

// RegisterProviderFactory registers a detector backend under a type name.
func RegisterProviderFactory(providerType string, factory ProviderFactory) {
	providerMu.Lock()
	defer providerMu.Unlock()
	providerFactories[providerType] = factory
}

// GetProviderFactory retrieves a registered provider factory.
func GetProviderFactory(providerType string) (ProviderFactory, bool) {
	providerMu.RLock()
	defer providerMu.RUnlock()
	factory, ok := providerFactories[providerType]
	return factory, ok
}

// ResilienceConfig collects the settings of the standard middleware chain.
type ResilienceConfig struct {
	ServiceName        string
	Timeout            time.Duration
	MaxRetries         int
	RetryBaseDelay     time.Duration
	RetryMaxDelay      time.Duration
	RateLimit          float64
	Burst              int
	BreakerMaxFailures int
	BreakerCooldown    time.Duration
}

// StandardMiddleware returns the production chain: tracing, metrics, retry,
// circuit breaker, rate limit and per-attempt timeout, outermost first.
// Stages whose settings are zero are left out. A nil collector disables
// metrics.
func StandardMiddleware(cfg ResilienceConfig, collector ports.MetricsCollector) []Middleware {
	chain := []Middleware{TracingMiddleware(cfg.ServiceName)}
	if collector != nil {
		chain = append(chain, MetricsMiddleware(collector))
	}
	if cfg.MaxRetries > 0 {
		chain = append(chain, RetryMiddleware(cfg.MaxRetries, cfg.RetryBaseDelay, cfg.RetryMaxDelay))
	}
	if cfg.BreakerMaxFailures > 0 {
		var metrics CircuitBreakerMetrics
		if collector != nil {
			metrics = NewCollectorBreakerMetrics(collector)
		}
		chain = append(chain, CircuitBreakerMiddlewareWithMetrics(cfg.BreakerMaxFailures, cfg.BreakerCooldown, metrics))
	}
	if cfg.RateLimit > 0 {
		chain = append(chain, RateLimitMiddleware(cfg.RateLimit, cfg.Burst))
	}
	if cfg.Timeout > 0 {
		chain = append(chain, TimeoutMiddleware(cfg.Timeout))
	}
	return chain
}
