package detector

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/ports"
)

func TestTimeoutMiddleware(t *testing.T) {
	tests := []struct {
		name    string
		delay   time.Duration
		timeout time.Duration
		wantErr error
	}{
		{name: "fast response", delay: 0, timeout: time.Second},
		{name: "slow response", delay: time.Second, timeout: 20 * time.Millisecond, wantErr: context.DeadlineExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockCoreDetector()
			mock.ResponseDelay = tt.delay
			wrapped := TimeoutMiddleware(tt.timeout)(mock)

			_, err := wrapped.Detect(context.Background(), ports.DetectRequest{ImagePath: "a.jpg"})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestTimeoutMiddleware_SetsDeadline(t *testing.T) {
	mock := NewMockCoreDetector()
	wrapped := TimeoutMiddleware(time.Minute)(mock)

	_, err := wrapped.Detect(context.Background(), ports.DetectRequest{ImagePath: "a.jpg"})
	require.NoError(t, err)

	deadline, ok := mock.LastContext.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
}

func TestTimeoutMiddleware_PerAttemptUnderRetry(t *testing.T) {
	mock := NewMockCoreDetector()
	mock.ResponseDelay = 30 * time.Millisecond
	mock.FailUntilAttempt = 1

	// Each attempt gets a fresh deadline, so the retry after a failure can
	// still succeed.
	wrapped := RetryMiddleware(1, time.Millisecond, time.Millisecond)(TimeoutMiddleware(time.Second)(mock))
	_, err := wrapped.Detect(context.Background(), ports.DetectRequest{ImagePath: "a.jpg"})
	require.NoError(t, err)
	assert.Equal(t, 2, mock.GetCallCount())

	d0, _ := mock.Contexts[0].Deadline()
	d1, _ := mock.Contexts[1].Deadline()
	assert.True(t, d1.After(d0))
}
