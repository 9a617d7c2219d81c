package application

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/domain"
	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/platform/logger"
	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/ports"
)

// MaxBatchSize caps the number of images in one batch analysis.
const MaxBatchSize = 50

// AnalyzeRequest asks for one image of a classroom to be scored.
type AnalyzeRequest struct {
	// ImageID identifies the upload. A new UUID is assigned when empty.
	ImageID     string             `json:"image_id"`
	ImagePath   string             `json:"image_path"`
	ClassroomID domain.ClassroomID `json:"classroom_id"`
}

// BatchItem is the outcome of one image of a batch.
type BatchItem struct {
	Index   int                      `json:"index"`
	ImageID string                   `json:"image_id"`
	Score   *domain.CleanlinessScore `json:"score,omitempty"`
	Error   string                   `json:"error,omitempty"`
	Err     error                    `json:"-"`
}

// BatchResult holds per-image outcomes in request order.
type BatchResult struct {
	Results   []BatchItem `json:"results"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
}

// AnalysisDeps are the collaborators of an AnalysisService. Observer and
// Logger are optional.
type AnalysisDeps struct {
	Engine            *Engine
	Detector          ports.Detector
	Scores            ports.ScoreRepository
	Classrooms        ports.ClassroomRepository
	Observer          ports.AnalysisObserver
	Logger            *logger.Logger
	UseOpenVocabulary bool
	MaxConcurrency    int
}

// AnalysisService runs the analysis pipeline: detect, score, persist.
// Concurrent analyses of the same image share one detector call.
type AnalysisService struct {
	engine            *Engine
	detector          ports.Detector
	scores            ports.ScoreRepository
	classrooms        ports.ClassroomRepository
	observer          ports.AnalysisObserver
	log               *logger.Logger
	useOpenVocabulary bool
	maxConcurrency    int
	inflight          singleflight.Group
}

// NewAnalysisService validates deps and builds the service.
func NewAnalysisService(deps AnalysisDeps) (*AnalysisService, error) {
	switch {
	case deps.Engine == nil:
		return nil, fmt.Errorf("%w: analysis service requires an engine", domain.ErrInvalidConfiguration)
	case deps.Detector == nil:
		return nil, fmt.Errorf("%w: analysis service requires a detector", domain.ErrInvalidConfiguration)
	case deps.Scores == nil || deps.Classrooms == nil:
		return nil, fmt.Errorf("%w: analysis service requires repositories", domain.ErrInvalidConfiguration)
	}

	s := &AnalysisService{
		engine:            deps.Engine,
		detector:          deps.Detector,
		scores:            deps.Scores,
		classrooms:        deps.Classrooms,
		observer:          deps.Observer,
		log:               deps.Logger,
		useOpenVocabulary: deps.UseOpenVocabulary,
		maxConcurrency:    deps.MaxConcurrency,
	}
	if s.observer == nil {
		s.observer = ports.NoopAnalysisObserver{}
	}
	if s.log == nil {
		s.log = logger.NewNop()
	}
	if s.maxConcurrency < 1 {
		s.maxConcurrency = 1
	}
	s.log = s.log.With("service", "AnalysisService")
	return s, nil
}

// Analyze scores one image and stores the result. The caller must be an
// admin or belong to the classroom.
func (s *AnalysisService) Analyze(ctx context.Context, auth domain.AuthContext, req AnalyzeRequest) (*domain.CleanlinessScore, error) {
	return s.analyze(ctx, auth, req, false)
}

// BatchAnalyze scores several images with at most MaxConcurrency detector
// calls in flight. A failing image does not stop the others; the returned
// error is reserved for requests that cannot be attempted at all.
func (s *AnalysisService) BatchAnalyze(ctx context.Context, auth domain.AuthContext, reqs []AnalyzeRequest) (*BatchResult, error) {
	if err := auth.RequireAuthenticated(); err != nil {
		return nil, err
	}
	if len(reqs) == 0 || len(reqs) > MaxBatchSize {
		verr := domain.NewValidationError("batch")
		verr.AddError(fmt.Sprintf("batch must contain between 1 and %d images, got %d", MaxBatchSize, len(reqs)))
		return nil, verr
	}

	results := make([]BatchItem, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrency)

	for i, req := range reqs {
		g.Go(func() error {
			score, err := s.analyze(gctx, auth, req, true)
			item := BatchItem{Index: i, ImageID: req.ImageID, Score: score, Err: err}
			if score != nil {
				item.ImageID = score.ImageID
			}
			if err != nil {
				item.Error = err.Error()
			}
			results[i] = item
			return nil
		})
	}
	_ = g.Wait()

	out := &BatchResult{Results: results}
	for _, r := range results {
		if r.Err != nil {
			out.Failed++
		} else {
			out.Succeeded++
		}
	}
	s.log.Info("batch analysis finished",
		"user_id", auth.UserID,
		"images", len(reqs),
		"succeeded", out.Succeeded,
		"failed", out.Failed,
	)
	return out, nil
}

func (s *AnalysisService) analyze(
	ctx context.Context,
	auth domain.AuthContext,
	req AnalyzeRequest,
	batch bool,
) (*domain.CleanlinessScore, error) {
	if req.ImageID == "" {
		req.ImageID = uuid.NewString()
	}
	ev := ports.AnalysisEvent{ImageID: req.ImageID, ClassroomID: req.ClassroomID, UserID: auth.UserID, Batch: batch}

	start := time.Now()
	ctx = s.observer.PreAnalysis(ctx, ev)
	score, err := s.run(ctx, auth, req)
	s.observer.PostAnalysis(ctx, ev, score, time.Since(start), err)

	if err != nil {
		s.log.Warn("analysis failed",
			"image_id", req.ImageID,
			"classroom_id", req.ClassroomID,
			"user_id", auth.UserID,
			"error", err,
		)
		return nil, err
	}
	s.log.Info("analysis stored",
		"score_id", score.ID,
		"image_id", score.ImageID,
		"classroom_id", score.ClassroomID,
		"total", score.Total,
		"rating", score.Rating,
		"detections", len(score.Detections),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return score, nil
}

func (s *AnalysisService) run(ctx context.Context, auth domain.AuthContext, req AnalyzeRequest) (*domain.CleanlinessScore, error) {
	if err := validateAnalyzeRequest(req); err != nil {
		return nil, err
	}
	if err := auth.RequireAuthenticated(); err != nil {
		return nil, err
	}
	if err := auth.RequireClassroom(req.ClassroomID); err != nil {
		return nil, err
	}
	if _, err := s.classrooms.Get(ctx, req.ClassroomID); err != nil {
		return nil, err
	}

	key := string(req.ClassroomID) + "/" + req.ImageID
	v, err, shared := s.inflight.Do(key, func() (any, error) {
		return s.detectScoreSave(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.log.Debug("analysis shared with concurrent request", "image_id", req.ImageID)
	}
	score := *v.(*domain.CleanlinessScore)
	return &score, nil
}

func (s *AnalysisService) detectScoreSave(ctx context.Context, req AnalyzeRequest) (*domain.CleanlinessScore, error) {
	result, err := s.detector.Detect(ctx, ports.DetectRequest{
		ImageID:           req.ImageID,
		ImagePath:         req.ImagePath,
		ClassroomID:       req.ClassroomID,
		UseOpenVocabulary: s.useOpenVocabulary,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		detErr := ports.NewDetectorError(s.detector.GetModel(), "detect", err)
		detErr.ImageID = req.ImageID
		return nil, detErr
	}

	score := s.engine.ComputeScore(result.Detections)
	score.ImageID = req.ImageID
	score.ClassroomID = req.ClassroomID
	score.AnnotatedImagePath = result.AnnotatedImagePath

	if result.UpstreamTotal != nil && math.Abs(*result.UpstreamTotal-score.Total) > 0.05 {
		s.log.Debug("score differs from vision service",
			"image_id", req.ImageID,
			"total", score.Total,
			"upstream_total", *result.UpstreamTotal,
			"upstream_rating", result.UpstreamRating,
		)
	}

	if err := s.scores.Save(ctx, score); err != nil {
		return nil, err
	}
	return &score, nil
}

func validateAnalyzeRequest(req AnalyzeRequest) error {
	verr := domain.NewValidationError("analysis request")
	if strings.TrimSpace(req.ImagePath) == "" {
		verr.AddError("image_path is required")
	}
	if strings.TrimSpace(string(req.ClassroomID)) == "" {
		verr.AddError("classroom_id is required")
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}
