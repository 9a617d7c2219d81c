package application

import (
	"github.com/coffeescripttech-maker/classroom-cleanliness/infrastructure/detector"
	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/ports"
)

// TracingServiceName is the service.name attribute on detector spans.
const TracingServiceName = "classroom-cleanliness"

// NewDetectorClient builds the HTTP detector client with the standard
// resilience chain configured from cfg. collector may be nil.
func NewDetectorClient(cfg DetectorConfig, collector ports.MetricsCollector) (*detector.Client, error) {
	return detector.NewClient(detector.HTTPProviderType, detector.ClientConfig{
		BaseURL: cfg.BaseURL,
		Middleware: detector.StandardMiddleware(detector.ResilienceConfig{
			ServiceName:        TracingServiceName,
			Timeout:            cfg.Timeout,
			MaxRetries:         cfg.MaxRetries,
			RetryBaseDelay:     cfg.RetryBaseDelay,
			RetryMaxDelay:      cfg.RetryMaxDelay,
			RateLimit:          cfg.RateLimit,
			Burst:              cfg.Burst,
			BreakerMaxFailures: cfg.BreakerMaxFailures,
			BreakerCooldown:    cfg.BreakerCooldown,
		}, collector),
	})
}
