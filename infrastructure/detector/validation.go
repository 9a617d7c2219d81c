package detector

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Client-level timeout bounds. Open-vocabulary detection on a CPU-only
// vision host can take over a minute per image.
const (
	MinTimeout = time.Second
	MaxTimeout = 10 * time.Minute
)

// ValidateBaseURL checks that baseURL is an absolute http(s) URL and returns
// it without a trailing slash, ready for analyzePath to be appended.
func ValidateBaseURL(baseURL string) (string, error) {
	if baseURL == "" {
		return "", ErrEmptyBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("detector base URL %q: %w", baseURL, err)
	}
	switch {
	case u.Scheme != "http" && u.Scheme != "https":
		return "", fmt.Errorf("detector base URL %q: scheme must be http or https", baseURL)
	case u.Host == "":
		return "", fmt.Errorf("detector base URL %q: missing host", baseURL)
	}
	return strings.TrimRight(u.String(), "/"), nil
}

// ValidateTimeout clamps timeout into [MinTimeout, MaxTimeout]. Zero or
// negative means no client-level timeout and is returned as zero.
func ValidateTimeout(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return 0
	}
	return min(max(timeout, MinTimeout), MaxTimeout)
}
