package ports

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels shared by the detector and storage adapters. Adapters wrap or
// map onto these so callers never import an adapter to classify a failure.
var (
	ErrRateLimited        = errors.New("rate limited")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timed out")

	// ErrInvalidResponse means the vision service answered with a body that
	// could not be decoded into detections.
	ErrInvalidResponse = errors.New("invalid response")

	// ErrAuthenticationFailed means the vision service rejected our API key.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrDuplicateRecord means an insert hit a unique key, such as a second
	// score for the same image.
	ErrDuplicateRecord = errors.New("duplicate record")

	ErrConfigNotFound = errors.New("configuration not found")
)

// DetectorError is returned by the analysis pipeline when the vision service
// could not produce detections for an image.
type DetectorError struct {
	Detector  string
	Operation string
	// ImageID is set when the failure belongs to a single uploaded image.
	ImageID string
	Err     error
}

func (e *DetectorError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", e.Detector, e.Operation)
	if e.ImageID != "" {
		fmt.Fprintf(&b, " image %s", e.ImageID)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *DetectorError) Unwrap() error { return e.Err }

// IsRetryable reports whether sending the same image again may succeed.
func (e *DetectorError) IsRetryable() bool {
	return errors.Is(e.Err, ErrRateLimited) ||
		errors.Is(e.Err, ErrServiceUnavailable) ||
		errors.Is(e.Err, ErrTimeout)
}

// NewDetectorError wraps err with the detector name and operation.
func NewDetectorError(detector, operation string, err error) *DetectorError {
	return &DetectorError{Detector: detector, Operation: operation, Err: err}
}

// StoreError wraps a repository failure with the entity it touched,
// e.g. "cleanliness_score" or "classroom".
type StoreError struct {
	Entity    string
	Operation string
	Err       error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Entity, e.Operation, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func NewStoreError(entity, operation string, err error) *StoreError {
	return &StoreError{Entity: entity, Operation: operation, Err: err}
}

// ConfigError names the configuration key or file that failed to load.
type ConfigError struct {
	Key string
	Err error
}

func (e *ConfigError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("config: %v", e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Key, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

func NewConfigError(key string, err error) *ConfigError {
	return &ConfigError{Key: key, Err: err}
}
