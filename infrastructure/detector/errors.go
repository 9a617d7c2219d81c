package detector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/ports"
)

// Common errors returned by detector backends.
var (
	// ErrEmptyBaseURL indicates that the service URL was not configured.
	ErrEmptyBaseURL = errors.New("detector base URL cannot be empty")
	// ErrEmptyImagePath indicates a request without an image path.
	ErrEmptyImagePath = errors.New("image path cannot be empty")
	// ErrAnalysisFailed indicates the service answered but reported failure.
	ErrAnalysisFailed = errors.New("analysis reported failure")
)

// ErrorType is the failure category a backend assigns. It decides whether
// the retry middleware tries again and which ports sentinel the error
// matches.
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeAuthentication
	ErrorTypeRateLimit
	ErrorTypeBadRequest
	// ErrorTypeNotFound means the service could not open the image path.
	ErrorTypeNotFound
	// ErrorTypeServerError includes a 503 while the models are loading.
	ErrorTypeServerError
	ErrorTypeInvalidResponse
	ErrorTypeNetwork
	ErrorTypeTimeout
)

// ProviderError is what every backend returns on failure.
type ProviderError struct {
	Type       ErrorType
	Provider   string
	StatusCode int
	// Message is the "error" field of the service's JSON body, or the
	// truncated raw body when that is missing.
	Message      string
	WrappedError error
	// RetryAfter is the wait the service asked for on a 429 or 503.
	RetryAfter time.Duration
}

func (e *ProviderError) Error() string {
	base := fmt.Sprintf("%s error", e.Provider)
	if e.StatusCode > 0 {
		base += fmt.Sprintf(" (HTTP %d)", e.StatusCode)
	}

	if typeStr := e.typeString(); typeStr != "" {
		base += fmt.Sprintf(" [%s]", typeStr)
	}

	if e.Message != "" {
		base += ": " + e.Message
	}

	if e.WrappedError != nil {
		base += fmt.Sprintf(": %v", e.WrappedError)
	}

	return base
}

func (e *ProviderError) Unwrap() error {
	return e.WrappedError
}

// Is maps the error type onto the infrastructure sentinels in ports, so
// callers can test errors.Is(err, ports.ErrRateLimited) without knowing
// about this package.
func (e *ProviderError) Is(target error) bool {
	switch target {
	case ports.ErrRateLimited:
		return e.Type == ErrorTypeRateLimit
	case ports.ErrServiceUnavailable:
		return e.Type == ErrorTypeServerError || e.Type == ErrorTypeNetwork
	case ports.ErrTimeout:
		return e.Type == ErrorTypeTimeout
	case ports.ErrAuthenticationFailed:
		return e.Type == ErrorTypeAuthentication
	case ports.ErrInvalidResponse:
		return e.Type == ErrorTypeInvalidResponse
	}
	return false
}

// IsRetryable reports whether the request may succeed if sent again.
func (e *ProviderError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeRateLimit, ErrorTypeServerError, ErrorTypeNetwork, ErrorTypeTimeout:
		return true
	default:
		return false
	}
}

func (e *ProviderError) typeString() string {
	switch e.Type {
	case ErrorTypeAuthentication:
		return "authentication"
	case ErrorTypeRateLimit:
		return "rate_limit"
	case ErrorTypeBadRequest:
		return "bad_request"
	case ErrorTypeNotFound:
		return "not_found"
	case ErrorTypeServerError:
		return "server_error"
	case ErrorTypeInvalidResponse:
		return "invalid_response"
	case ErrorTypeNetwork:
		return "network"
	case ErrorTypeTimeout:
		return "timeout"
	default:
		return ""
	}
}

// NewProviderError creates a new ProviderError.
func NewProviderError(provider string, errType ErrorType, statusCode int, message string, wrapped error) *ProviderError {
	return &ProviderError{
		Type:         errType,
		Provider:     provider,
		StatusCode:   statusCode,
		Message:      message,
		WrappedError: wrapped,
	}
}

// ErrorClassifier standardizes transport failures into ProviderError
// instances.
type ErrorClassifier struct {
	// Provider is the backend name recorded on every error.
	Provider string
}

// ClassifyHTTPError classifies a failed response by its status code.
func (ec *ErrorClassifier) ClassifyHTTPError(statusCode int, message string, err error) *ProviderError {
	var errType ErrorType

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		errType = ErrorTypeAuthentication
		if message == "" {
			message = fmt.Sprintf("%s authentication failed", ec.Provider)
		}
	case http.StatusTooManyRequests:
		errType = ErrorTypeRateLimit
		if message == "" {
			message = fmt.Sprintf("%s rate limit exceeded", ec.Provider)
		}
	case http.StatusBadRequest:
		errType = ErrorTypeBadRequest
	case http.StatusNotFound:
		errType = ErrorTypeNotFound
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		errType = ErrorTypeTimeout
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		errType = ErrorTypeServerError
	default:
		switch {
		case statusCode >= 400 && statusCode < 500:
			errType = ErrorTypeBadRequest
		case statusCode >= 500:
			errType = ErrorTypeServerError
		default:
			errType = ErrorTypeUnknown
		}
	}

	return NewProviderError(ec.Provider, errType, statusCode, message, err)
}

// ClassifyContextError classifies context.DeadlineExceeded and
// context.Canceled. Other errors are treated as network failures.
func (ec *ErrorClassifier) ClassifyContextError(err error) *ProviderError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return NewProviderError(ec.Provider, ErrorTypeTimeout, 0, "context deadline exceeded", err)
	case errors.Is(err, context.Canceled):
		return NewProviderError(ec.Provider, ErrorTypeUnknown, 0, "request canceled", err)
	default:
		return NewProviderError(ec.Provider, ErrorTypeNetwork, 0, "", err)
	}
}

// parseRetryAfter reads a Retry-After header given in seconds or as an
// HTTP date. Missing or malformed values yield zero.
func parseRetryAfter(h string, now time.Time) time.Duration {
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(h); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(h); err == nil && at.After(now) {
		return at.Sub(now)
	}
	return 0
}
