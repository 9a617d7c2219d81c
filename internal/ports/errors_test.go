package ports

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectorError(t *testing.T) {
	tests := []struct {
		name      string
		err       *DetectorError
		wantMsg   string
		retryable bool
	}{
		{
			name:    "bad body",
			err:     NewDetectorError("yolov8", "detect", ErrInvalidResponse),
			wantMsg: "yolov8 detect: invalid response",
		},
		{
			name:      "rate limited image",
			err:       &DetectorError{Detector: "yolov8", Operation: "detect", ImageID: "img-7", Err: ErrRateLimited},
			wantMsg:   "yolov8 detect image img-7: rate limited",
			retryable: true,
		},
		{
			name:      "service down",
			err:       NewDetectorError("yolov8", "detect", ErrServiceUnavailable),
			wantMsg:   "yolov8 detect: service unavailable",
			retryable: true,
		},
		{
			name:      "timeout",
			err:       NewDetectorError("yolov8", "detect", ErrTimeout),
			wantMsg:   "yolov8 detect: operation timed out",
			retryable: true,
		},
		{
			name:    "bad api key",
			err:     NewDetectorError("yolov8", "detect", ErrAuthenticationFailed),
			wantMsg: "yolov8 detect: authentication failed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
			assert.Equal(t, tt.retryable, tt.err.IsRetryable())
			assert.ErrorIs(t, tt.err, tt.err.Err)
		})
	}
}

func TestStoreError(t *testing.T) {
	err := NewStoreError("cleanliness_score", "save", ErrDuplicateRecord)
	assert.Equal(t, "cleanliness_score save: duplicate record", err.Error())
	assert.ErrorIs(t, err, ErrDuplicateRecord)

	err = NewStoreError("classroom", "list", errors.New("connection reset"))
	assert.Equal(t, "classroom list: connection reset", err.Error())
}

func TestConfigError(t *testing.T) {
	err := NewConfigError("detector.base_url", ErrConfigNotFound)
	assert.Equal(t, "config detector.base_url: configuration not found", err.Error())
	assert.ErrorIs(t, err, ErrConfigNotFound)

	assert.Equal(t, "config: configuration not found", NewConfigError("", ErrConfigNotFound).Error())
}

func TestErrorUnwrapping(t *testing.T) {
	wrapped := fmt.Errorf("analyze image 12: %w", NewDetectorError("yolov8", "detect", ErrServiceUnavailable))

	var detErr *DetectorError
	assert.ErrorAs(t, wrapped, &detErr)
	assert.True(t, detErr.IsRetryable())
	assert.ErrorIs(t, wrapped, ErrServiceUnavailable)
}
