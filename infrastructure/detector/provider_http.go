package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/domain"
	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/ports"
)

const (
	// HTTPProviderType is the registry name of the vision service backend.
	HTTPProviderType = "http"

	analyzePath = "/api/analyze"
	healthPath  = "/api/health"

	// maxErrorBody caps how much of a failed response is kept in the error.
	maxErrorBody = 4 << 10
)

func init() {
	RegisterProviderFactory(HTTPProviderType, newHTTPProvider)
}

// httpProvider implements CoreDetector against the vision service's JSON
// API. The service runs YOLO and, optionally, an open-vocabulary model on an
// image it can read from its own disk.
type httpProvider struct {
	baseURL         string
	client          *http.Client
	errorClassifier *ErrorClassifier
}

func newHTTPProvider(config ClientConfig) (CoreDetector, error) {
	baseURL, err := ValidateBaseURL(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid BaseURL: %w", err)
	}

	client := config.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: ValidateTimeout(config.Timeout)}
	}

	return &httpProvider{
		baseURL:         baseURL,
		client:          client,
		errorClassifier: &ErrorClassifier{Provider: "vision"},
	}, nil
}

type analyzeRequest struct {
	ImagePath   string `json:"image_path"`
	ClassroomID string `json:"classroom_id,omitempty"`
	UseOWLViT   bool   `json:"use_owlvit"`
}

type wireDetection struct {
	Class      string    `json:"class"`
	Confidence float64   `json:"confidence"`
	BBox       []float64 `json:"bbox"`
}

type analyzeResponse struct {
	Success            bool            `json:"success"`
	Detections         []wireDetection `json:"detections"`
	TotalScore         *float64        `json:"total_score"`
	Rating             string          `json:"rating"`
	AnnotatedImagePath string          `json:"annotated_image_path"`
	Error              string          `json:"error"`
}

type healthResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	AIReady      bool   `json:"ai_system_ready"`
	OWLViTLoaded bool   `json:"owlvit_enabled"`
}

// Detect posts the image reference to the analyze endpoint and converts the
// reported detections.
func (p *httpProvider) Detect(ctx context.Context, req ports.DetectRequest) (*ports.DetectResult, error) {
	if req.ImagePath == "" {
		return nil, ErrEmptyImagePath
	}

	body, err := json.Marshal(analyzeRequest{
		ImagePath:   req.ImagePath,
		ClassroomID: string(req.ClassroomID),
		UseOWLViT:   req.UseOpenVocabulary,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode analyze request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+analyzePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build analyze request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, p.errorClassifier.ClassifyContextError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, p.errorClassifier.ClassifyContextError(err)
	}

	var decoded analyzeResponse
	decodeErr := json.Unmarshal(raw, &decoded)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := decoded.Error
		if decodeErr != nil || msg == "" {
			msg = truncate(string(raw), maxErrorBody)
		}
		pe := p.errorClassifier.ClassifyHTTPError(resp.StatusCode, msg, nil)
		pe.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"), time.Now())
		return nil, pe
	}
	if decodeErr != nil {
		return nil, NewProviderError(p.errorClassifier.Provider, ErrorTypeInvalidResponse, resp.StatusCode,
			"malformed analyze response", decodeErr)
	}
	if !decoded.Success {
		return nil, NewProviderError(p.errorClassifier.Provider, ErrorTypeUnknown, resp.StatusCode,
			decoded.Error, ErrAnalysisFailed)
	}

	detections, err := convertDetections(decoded.Detections)
	if err != nil {
		return nil, NewProviderError(p.errorClassifier.Provider, ErrorTypeInvalidResponse, resp.StatusCode,
			"malformed detection", err)
	}

	return &ports.DetectResult{
		Detections:         detections,
		AnnotatedImagePath: decoded.AnnotatedImagePath,
		UpstreamTotal:      decoded.TotalScore,
		UpstreamRating:     decoded.Rating,
	}, nil
}

// Health queries the health endpoint. The service reports itself healthy
// before the models finish loading, so ai_system_ready is checked too.
func (p *httpProvider) Health(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+healthPath, nil)
	if err != nil {
		return fmt.Errorf("failed to build health request: %w", err)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return p.errorClassifier.ClassifyContextError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return p.errorClassifier.ClassifyHTTPError(resp.StatusCode, "health check failed", nil)
	}

	var health healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return NewProviderError(p.errorClassifier.Provider, ErrorTypeInvalidResponse, resp.StatusCode,
			"malformed health response", err)
	}
	if !health.AIReady {
		return NewProviderError(p.errorClassifier.Provider, ErrorTypeServerError, resp.StatusCode,
			"detection models not loaded", nil)
	}
	return nil
}

// GetModel returns the backend identifier.
func (p *httpProvider) GetModel() string { return "vision@" + p.baseURL }

func convertDetections(in []wireDetection) ([]domain.Detection, error) {
	out := make([]domain.Detection, 0, len(in))
	for i, d := range in {
		if len(d.BBox) != 4 {
			return nil, fmt.Errorf("detection %d: bbox has %d coordinates, want 4", i, len(d.BBox))
		}
		out = append(out, domain.Detection{
			Class:      d.Class,
			Confidence: d.Confidence,
			BBox:       domain.BBox{d.BBox[0], d.BBox[1], d.BBox[2], d.BBox[3]},
		})
	}
	return out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
