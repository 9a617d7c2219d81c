package application

import (
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig is the complete configuration of the cleanliness service and
// serves as the primary configuration entry point for the system.
// It is loaded from YAML and environment variables by ViperConfigLoader.
type AppConfig struct {
	// Server configures the HTTP listener.
	Server ServerConfig `yaml:"server" validate:"required"`
	// Database selects the storage driver and connection.
	Database DatabaseConfig `yaml:"database" validate:"required"`
	// Detector configures the client for the external vision service.
	Detector DetectorConfig `yaml:"detector" validate:"required"`
	// Scoring configures the scoring engine.
	Scoring ScoringConfig `yaml:"scoring"`
	// Leaderboard sets leaderboard defaults.
	Leaderboard LeaderboardConfig `yaml:"leaderboard"`
	// Auth configures token issuance.
	Auth AuthConfig `yaml:"auth" validate:"required"`
	// Logging selects the log encoder.
	Logging LoggingConfig `yaml:"logging"`
	// Tracing configures span export.
	Tracing TracingConfig `yaml:"tracing"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `yaml:"addr" validate:"required"`
	// ReadTimeout bounds reading a full request.
	ReadTimeout time.Duration `yaml:"read_timeout" validate:"min=0"`
	// WriteTimeout bounds writing a response. Analysis calls the detector
	// synchronously, so this must exceed the detector timeout.
	WriteTimeout time.Duration `yaml:"write_timeout" validate:"min=0"`
	// AllowedOrigins lists CORS origins. Empty disables CORS.
	AllowedOrigins []string `yaml:"allowed_origins" validate:"max=20,dive,min=1"`
	// MetricsPath exposes Prometheus metrics when non-empty.
	MetricsPath string `yaml:"metrics_path" validate:"omitempty,startswith=/"`
}

// DatabaseConfig selects the storage backend.
type DatabaseConfig struct {
	// Driver is one of mysql, postgres or sqlite.
	Driver string `yaml:"driver" validate:"required,oneof=mysql postgres sqlite"`
	// DSN is the driver-specific data source name.
	DSN string `yaml:"dsn" validate:"required"`
	// AutoMigrate creates or updates tables on startup.
	AutoMigrate bool `yaml:"auto_migrate"`
	// MaxOpenConns caps the connection pool. Zero leaves the driver default.
	MaxOpenConns int `yaml:"max_open_conns" validate:"min=0,max=1000"`
}

// DetectorConfig configures the HTTP detector client and its middleware.
type DetectorConfig struct {
	// BaseURL is the root of the vision service, e.g. http://localhost:5000.
	BaseURL string `yaml:"base_url" validate:"required,url"`
	// Timeout bounds a single detection request.
	Timeout time.Duration `yaml:"timeout" validate:"min=0"`
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int `yaml:"max_retries" validate:"min=0,max=10"`
	// RetryBaseDelay is the first backoff delay.
	RetryBaseDelay time.Duration `yaml:"retry_base_delay" validate:"min=0"`
	// RetryMaxDelay caps the backoff delay.
	RetryMaxDelay time.Duration `yaml:"retry_max_delay" validate:"min=0"`
	// RateLimit is the sustained request rate per second. Zero disables
	// rate limiting.
	RateLimit float64 `yaml:"rate_limit" validate:"min=0"`
	// Burst is the token bucket size used with RateLimit.
	Burst int `yaml:"burst" validate:"min=0"`
	// BreakerMaxFailures opens the circuit after this many consecutive
	// failures. Zero disables the breaker.
	BreakerMaxFailures int `yaml:"breaker_max_failures" validate:"min=0,max=100"`
	// BreakerCooldown is how long the circuit stays open.
	BreakerCooldown time.Duration `yaml:"breaker_cooldown" validate:"min=0"`
	// UseOpenVocabulary asks the service to run its open-vocabulary model.
	UseOpenVocabulary bool `yaml:"use_open_vocabulary"`
	// MaxConcurrency bounds parallel detector calls during batch analysis.
	MaxConcurrency int `yaml:"max_concurrency" validate:"min=1,max=64"`
}

// ScoringConfig configures the scoring engine.
type ScoringConfig struct {
	// MinConfidence drops detections below this confidence before scoring.
	MinConfidence float64 `yaml:"min_confidence" validate:"min=0,max=1"`
	// MaxLabelDistance is the edit distance for fuzzy label matching.
	// -1 disables fuzzy matching.
	MaxLabelDistance int `yaml:"max_label_distance" validate:"min=-1,max=5"`
	// Labels adds or overrides label to category mappings.
	Labels map[string]string `yaml:"labels" validate:"max=500,dive,keys,min=1,endkeys,category"`
	// Scorers overrides the parameters of individual category scorers.
	// Categories without an entry use the built-in defaults.
	Scorers []ScorerConfig `yaml:"scorers" validate:"max=5,dive"`
}

// ScorerConfig overrides one category scorer.
type ScorerConfig struct {
	// Type is the scorer type and equals the score category it fills.
	Type string `yaml:"type" validate:"required,oneof=floor furniture trash wall clutter"`
	// ID names the scorer instance in logs.
	ID string `yaml:"id" validate:"omitempty,min=1,max=100"`
	// Parameters contains type-specific configuration as flexible YAML
	// that will be validated according to the scorer type.
	Parameters yaml.Node `yaml:"parameters"`
}

// LeaderboardConfig sets leaderboard defaults.
type LeaderboardConfig struct {
	// DefaultPeriod is used when a request names no period.
	DefaultPeriod string `yaml:"default_period" validate:"omitempty,period"`
	// MinSamples excludes classrooms with fewer in-window scores.
	MinSamples int `yaml:"min_samples" validate:"min=1,max=1000"`
	// DefaultLimit caps returned standings. Zero returns all.
	DefaultLimit int `yaml:"default_limit" validate:"min=0,max=1000"`
}

// AuthConfig configures JWT issuance.
type AuthConfig struct {
	// JWTSecret signs access tokens with HS256.
	JWTSecret string `yaml:"jwt_secret" validate:"required,min=16"`
	// TokenTTL is the lifetime of an access token.
	TokenTTL time.Duration `yaml:"token_ttl" validate:"min=0"`
	// Issuer is written to the iss claim.
	Issuer string `yaml:"issuer"`
}

// LoggingConfig selects the logger mode.
type LoggingConfig struct {
	// Mode is "development" or "production".
	Mode string `yaml:"mode" validate:"omitempty,oneof=development production"`
}

// TracingConfig configures OpenTelemetry span export.
type TracingConfig struct {
	Enabled bool `yaml:"enabled"`
	// Endpoint is an OTLP/HTTP collector address such as
	// "otel-collector:4318". Empty exports spans to stdout.
	Endpoint string `yaml:"endpoint" validate:"omitempty,hostname_port"`
	Insecure bool   `yaml:"insecure"`
	// SampleRatio is the fraction of root spans kept. Zero keeps all.
	SampleRatio float64 `yaml:"sample_ratio" validate:"min=0,max=1"`
	Environment string  `yaml:"environment"`
}

// DefaultAppConfig returns a configuration suitable for local development:
// a SQLite database file and the vision service on localhost:5000.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 120 * time.Second,
			MetricsPath:  "/metrics",
		},
		Database: DatabaseConfig{
			Driver:      "sqlite",
			DSN:         "cleanliness.db",
			AutoMigrate: true,
		},
		Detector: DetectorConfig{
			BaseURL:            "http://localhost:5000",
			Timeout:            90 * time.Second,
			MaxRetries:         2,
			RetryBaseDelay:     500 * time.Millisecond,
			RetryMaxDelay:      5 * time.Second,
			RateLimit:          2,
			Burst:              4,
			BreakerMaxFailures: 5,
			BreakerCooldown:    30 * time.Second,
			UseOpenVocabulary:  true,
			MaxConcurrency:     4,
		},
		Scoring: ScoringConfig{
			MinConfidence:    0,
			MaxLabelDistance: 2,
		},
		Leaderboard: LeaderboardConfig{
			DefaultPeriod: "all",
			MinSamples:    1,
		},
		Auth: AuthConfig{
			TokenTTL: 8 * time.Hour,
			Issuer:   "classroom-cleanliness",
		},
		Logging: LoggingConfig{
			Mode: "development",
		},
		Tracing: TracingConfig{
			SampleRatio: 0.1,
		},
	}
}
