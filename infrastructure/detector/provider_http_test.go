package detector

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/domain"
	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/ports"
)

const testBaseURL = "http://vision.test:5000"

func newMockedProvider(t *testing.T) (CoreDetector, *httpmock.MockTransport) {
	t.Helper()
	transport := httpmock.NewMockTransport()
	provider, err := newHTTPProvider(ClientConfig{
		BaseURL:    testBaseURL + "/",
		HTTPClient: &http.Client{Transport: transport},
	})
	require.NoError(t, err)
	return provider, transport
}

func TestHTTPProvider_Detect_Success(t *testing.T) {
	provider, transport := newMockedProvider(t)

	var received analyzeRequest
	transport.RegisterResponder(http.MethodPost, testBaseURL+"/api/analyze",
		func(req *http.Request) (*http.Response, error) {
			body, err := io.ReadAll(req.Body)
			if err != nil {
				return nil, err
			}
			if err := json.Unmarshal(body, &received); err != nil {
				return nil, err
			}
			return httpmock.NewJsonResponse(http.StatusOK, map[string]any{
				"success": true,
				"detections": []map[string]any{
					{"class": "chair", "confidence": 0.91, "bbox": []float64{1, 2, 30, 40}, "center": []float64{15.5, 21}},
					{"class": "paper", "confidence": 0.42, "bbox": []float64{100, 400, 120, 420}},
				},
				"scores":               map[string]float64{"floor": 9.5},
				"total_score":          44.5,
				"rating":               "Excellent",
				"annotated_image_path": "uploads/annotated/7a.jpg",
			})
		})

	result, err := provider.Detect(context.Background(), ports.DetectRequest{
		ImagePath:         "uploads/7a.jpg",
		ClassroomID:       "7A",
		UseOpenVocabulary: true,
	})
	require.NoError(t, err)

	assert.Equal(t, analyzeRequest{ImagePath: "uploads/7a.jpg", ClassroomID: "7A", UseOWLViT: true}, received)
	assert.Equal(t, []domain.Detection{
		{Class: "chair", Confidence: 0.91, BBox: domain.BBox{1, 2, 30, 40}},
		{Class: "paper", Confidence: 0.42, BBox: domain.BBox{100, 400, 120, 420}},
	}, result.Detections)
	assert.Equal(t, "uploads/annotated/7a.jpg", result.AnnotatedImagePath)
	require.NotNil(t, result.UpstreamTotal)
	assert.Equal(t, 44.5, *result.UpstreamTotal)
	assert.Equal(t, "Excellent", result.UpstreamRating)
	assert.Equal(t, 1, transport.GetTotalCallCount())
}

func TestHTTPProvider_Detect_Errors(t *testing.T) {
	tests := []struct {
		name       string
		responder  httpmock.Responder
		wantType   ErrorType
		wantStatus int
		wantIs     error
		retryable  bool
	}{
		{
			name:       "image not found",
			responder:  httpmock.NewStringResponder(http.StatusNotFound, `{"success":false,"error":"Image not found: x.jpg"}`),
			wantType:   ErrorTypeNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "missing fields",
			responder:  httpmock.NewStringResponder(http.StatusBadRequest, `{"success":false,"error":"Missing image_path"}`),
			wantType:   ErrorTypeBadRequest,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "models not loaded",
			responder:  httpmock.NewStringResponder(http.StatusServiceUnavailable, `{"success":false,"error":"AI system not initialized"}`),
			wantType:   ErrorTypeServerError,
			wantStatus: http.StatusServiceUnavailable,
			wantIs:     ports.ErrServiceUnavailable,
			retryable:  true,
		},
		{
			name:       "rate limited",
			responder:  httpmock.NewStringResponder(http.StatusTooManyRequests, "slow down"),
			wantType:   ErrorTypeRateLimit,
			wantStatus: http.StatusTooManyRequests,
			wantIs:     ports.ErrRateLimited,
			retryable:  true,
		},
		{
			name:       "malformed body",
			responder:  httpmock.NewStringResponder(http.StatusOK, `{"success": tru`),
			wantType:   ErrorTypeInvalidResponse,
			wantStatus: http.StatusOK,
			wantIs:     ports.ErrInvalidResponse,
		},
		{
			name:       "success false",
			responder:  httpmock.NewStringResponder(http.StatusOK, `{"success":false,"error":"cannot decode image"}`),
			wantType:   ErrorTypeUnknown,
			wantStatus: http.StatusOK,
			wantIs:     ErrAnalysisFailed,
		},
		{
			name:       "short bbox",
			responder:  httpmock.NewStringResponder(http.StatusOK, `{"success":true,"detections":[{"class":"chair","confidence":0.5,"bbox":[1,2]}]}`),
			wantType:   ErrorTypeInvalidResponse,
			wantStatus: http.StatusOK,
		},
		{
			name:      "network failure",
			responder: httpmock.NewErrorResponder(errors.New("connection refused")),
			wantType:  ErrorTypeNetwork,
			wantIs:    ports.ErrServiceUnavailable,
			retryable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, transport := newMockedProvider(t)
			transport.RegisterResponder(http.MethodPost, testBaseURL+"/api/analyze", tt.responder)

			result, err := provider.Detect(context.Background(), ports.DetectRequest{ImagePath: "x.jpg"})
			require.Error(t, err)
			assert.Nil(t, result)

			var pe *ProviderError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.wantType, pe.Type)
			assert.Equal(t, tt.wantStatus, pe.StatusCode)
			assert.Equal(t, "vision", pe.Provider)
			assert.Equal(t, tt.retryable, pe.IsRetryable())
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
		})
	}
}

func TestHTTPProvider_Detect_ErrorMessageFromBody(t *testing.T) {
	provider, transport := newMockedProvider(t)
	transport.RegisterResponder(http.MethodPost, testBaseURL+"/api/analyze",
		httpmock.NewStringResponder(http.StatusNotFound, `{"success":false,"error":"Image not found: x.jpg"}`))

	_, err := provider.Detect(context.Background(), ports.DetectRequest{ImagePath: "x.jpg"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Image not found: x.jpg")
	assert.Contains(t, err.Error(), "HTTP 404")
}

func TestHTTPProvider_Detect_RequiresImagePath(t *testing.T) {
	provider, transport := newMockedProvider(t)

	_, err := provider.Detect(context.Background(), ports.DetectRequest{ClassroomID: "7A"})
	assert.ErrorIs(t, err, ErrEmptyImagePath)
	assert.Zero(t, transport.GetTotalCallCount())
}

func TestHTTPProvider_Detect_CanceledContext(t *testing.T) {
	provider, transport := newMockedProvider(t)
	transport.RegisterResponder(http.MethodPost, testBaseURL+"/api/analyze",
		httpmock.NewErrorResponder(context.Canceled))

	_, err := provider.Detect(context.Background(), ports.DetectRequest{ImagePath: "x.jpg"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.False(t, pe.IsRetryable())
}

func TestHTTPProvider_Health(t *testing.T) {
	tests := []struct {
		name      string
		responder httpmock.Responder
		wantErr   error
	}{
		{
			name: "ready",
			responder: httpmock.NewStringResponder(http.StatusOK,
				`{"status":"healthy","message":"ok","ai_system_ready":true,"owlvit_enabled":false}`),
		},
		{
			name: "models still loading",
			responder: httpmock.NewStringResponder(http.StatusOK,
				`{"status":"healthy","ai_system_ready":false}`),
			wantErr: ports.ErrServiceUnavailable,
		},
		{
			name:      "server error",
			responder: httpmock.NewStringResponder(http.StatusInternalServerError, "boom"),
			wantErr:   ports.ErrServiceUnavailable,
		},
		{
			name:      "garbage",
			responder: httpmock.NewStringResponder(http.StatusOK, "<html>"),
			wantErr:   ports.ErrInvalidResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, transport := newMockedProvider(t)
			transport.RegisterResponder(http.MethodGet, testBaseURL+"/api/health", tt.responder)

			err := provider.(HealthChecker).Health(context.Background())
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewHTTPProvider_Validation(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		wantErr bool
	}{
		{name: "empty", baseURL: "", wantErr: true},
		{name: "no scheme", baseURL: "localhost:5000", wantErr: true},
		{name: "ftp", baseURL: "ftp://vision.test", wantErr: true},
		{name: "no host", baseURL: "http://", wantErr: true},
		{name: "valid", baseURL: "http://localhost:5000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := newHTTPProvider(ClientConfig{BaseURL: tt.baseURL})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "vision@http://localhost:5000", p.GetModel())
		})
	}
}

func TestValidateTimeout(t *testing.T) {
	assert.Zero(t, ValidateTimeout(0))
	assert.Zero(t, ValidateTimeout(-5))
	assert.Equal(t, MinTimeout, ValidateTimeout(1))
	assert.Equal(t, MaxTimeout, ValidateTimeout(MaxTimeout*2))
	assert.Equal(t, 90*time.Second, ValidateTimeout(90*time.Second))
}

func TestHTTPProvider_Detect_RetryAfter(t *testing.T) {
	provider, transport := newMockedProvider(t)
	transport.RegisterResponder(http.MethodPost, testBaseURL+"/api/analyze",
		func(*http.Request) (*http.Response, error) {
			resp := httpmock.NewStringResponse(http.StatusTooManyRequests, "slow down")
			if resp.Header == nil {
				resp.Header = http.Header{}
			}
			resp.Header.Set("Retry-After", "3")
			return resp, nil
		})

	_, err := provider.Detect(context.Background(), ports.DetectRequest{ImagePath: "x.jpg"})
	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 3*time.Second, pe.RetryAfter)
	assert.ErrorIs(t, err, ports.ErrRateLimited)
}
