package detector

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/ports"
)

// orderRecorder records the order in which middleware layers see a request.
type orderRecorder struct {
	mu    sync.Mutex
	order []string
}

func (o *orderRecorder) layer(name string) Middleware {
	return func(next CoreDetector) CoreDetector {
		return &namedLayer{name: name, next: next, rec: o}
	}
}

type namedLayer struct {
	name string
	next CoreDetector
	rec  *orderRecorder
}

func (l *namedLayer) Detect(ctx context.Context, req ports.DetectRequest) (*ports.DetectResult, error) {
	l.rec.mu.Lock()
	l.rec.order = append(l.rec.order, l.name)
	l.rec.mu.Unlock()
	return l.next.Detect(ctx, req)
}

func (l *namedLayer) GetModel() string { return l.next.GetModel() }

func TestNewClientWithCore_MiddlewareOrder(t *testing.T) {
	rec := &orderRecorder{}
	mock := NewMockCoreDetector()
	client := NewClientWithCore(mock, rec.layer("outer"), rec.layer("middle"), rec.layer("inner"))

	result, err := client.Detect(context.Background(), ports.DetectRequest{ImagePath: "a.jpg"})
	require.NoError(t, err)
	assert.Len(t, result.Detections, 2)
	assert.Equal(t, []string{"outer", "middle", "inner"}, rec.order)
	assert.Equal(t, "test-detector", client.GetModel())
}

func TestNewClient_UnknownProvider(t *testing.T) {
	_, err := NewClient("carrier-pigeon", ClientConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown detector provider")
}

func TestNewClient_ProviderError(t *testing.T) {
	_, err := NewClient(HTTPProviderType, ClientConfig{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyBaseURL)
}

func TestNewClient_HTTPEndToEnd(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder(http.MethodPost, testBaseURL+"/api/analyze",
		httpmock.NewStringResponder(http.StatusOK,
			`{"success":true,"detections":[{"class":"bin","confidence":0.8,"bbox":[0,0,10,10]}]}`))

	client, err := NewClient(HTTPProviderType, ClientConfig{
		BaseURL:    testBaseURL,
		HTTPClient: &http.Client{Transport: transport},
		Middleware: []Middleware{TimeoutMiddleware(time.Second)},
	})
	require.NoError(t, err)

	result, err := client.Detect(context.Background(), ports.DetectRequest{ImagePath: "a.jpg"})
	require.NoError(t, err)
	require.Len(t, result.Detections, 1)
	assert.Equal(t, "bin", result.Detections[0].Class)
}

func TestClient_HealthBypassesMiddleware(t *testing.T) {
	mock := NewMockCoreDetector()
	mock.HealthErr = errors.New("loading")

	client := NewClientWithCore(mock, CircuitBreakerMiddleware(1, time.Hour))
	mock.SetError(ports.ErrServiceUnavailable)
	_, err := client.Detect(context.Background(), ports.DetectRequest{ImagePath: "a.jpg"})
	require.Error(t, err)

	// The breaker is now open but health still reaches the backend.
	assert.EqualError(t, client.Health(context.Background()), "loading")
	mock.HealthErr = nil
	assert.NoError(t, client.Health(context.Background()))
}

func TestClient_HealthWithoutChecker(t *testing.T) {
	client := NewClientWithCore(&namedLayer{name: "bare", next: NewMockCoreDetector(), rec: &orderRecorder{}})
	assert.NoError(t, client.Health(context.Background()))
}

func TestRegisterProviderFactory(t *testing.T) {
	mock := NewMockCoreDetector()
	RegisterProviderFactory("test-mock", func(ClientConfig) (CoreDetector, error) { return mock, nil })

	factory, ok := GetProviderFactory("test-mock")
	require.True(t, ok)
	core, err := factory(ClientConfig{})
	require.NoError(t, err)
	assert.Same(t, mock, core)

	_, ok = GetProviderFactory(HTTPProviderType)
	assert.True(t, ok, "http provider registers itself")
}

func TestStandardMiddleware(t *testing.T) {
	t.Run("all stages", func(t *testing.T) {
		chain := StandardMiddleware(ResilienceConfig{
			ServiceName:        "cleanliness",
			Timeout:            time.Second,
			MaxRetries:         2,
			RetryBaseDelay:     time.Millisecond,
			RetryMaxDelay:      5 * time.Millisecond,
			RateLimit:          100,
			Burst:              10,
			BreakerMaxFailures: 5,
			BreakerCooldown:    time.Second,
		}, &recordingCollector{})
		assert.Len(t, chain, 6)
	})

	t.Run("zero settings keep tracing only", func(t *testing.T) {
		assert.Len(t, StandardMiddleware(ResilienceConfig{}, nil), 1)
	})

	t.Run("retries transient failures through the chain", func(t *testing.T) {
		collector := &recordingCollector{}
		mock := NewMockCoreDetector()
		mock.FailUntilAttempt = 2

		client := NewClientWithCore(mock, StandardMiddleware(ResilienceConfig{
			ServiceName:        "cleanliness",
			Timeout:            time.Second,
			MaxRetries:         3,
			RetryBaseDelay:     time.Millisecond,
			RetryMaxDelay:      2 * time.Millisecond,
			BreakerMaxFailures: 10,
			BreakerCooldown:    time.Second,
		}, collector)...)

		_, err := client.Detect(context.Background(), ports.DetectRequest{ImagePath: "a.jpg"})
		require.NoError(t, err)
		assert.Equal(t, 3, mock.GetCallCount())

		requests := collector.counter(MetricDetectorRequests)
		require.Len(t, requests, 1)
		assert.Equal(t, "success", requests[0].labels["status"])
		assert.NotEmpty(t, collector.gauge("detector_circuit_state"))
	})
}
