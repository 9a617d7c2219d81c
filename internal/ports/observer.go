package ports

import (
	"context"
	"time"

	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/domain"
)

// AnalysisEvent describes one image analysis for observers.
type AnalysisEvent struct {
	ImageID     string
	ClassroomID domain.ClassroomID
	UserID      string
	// Batch is true when the analysis is part of a batch request.
	Batch bool
}

// AnalysisObserver receives lifecycle callbacks around every analysis.
// Implementations must be safe for concurrent use; state belonging to one
// analysis travels in the context returned by PreAnalysis.
type AnalysisObserver interface {
	// PreAnalysis is called before the detector is invoked. The returned
	// context is used for the rest of the analysis.
	PreAnalysis(ctx context.Context, ev AnalysisEvent) context.Context

	// PostAnalysis is called once the analysis finished. score is nil when
	// err is non-nil.
	PostAnalysis(ctx context.Context, ev AnalysisEvent, score *domain.CleanlinessScore, elapsed time.Duration, err error)
}

// NoopAnalysisObserver ignores every callback.
type NoopAnalysisObserver struct{}

// PreAnalysis returns ctx unchanged.
func (NoopAnalysisObserver) PreAnalysis(ctx context.Context, _ AnalysisEvent) context.Context {
	return ctx
}

// PostAnalysis does nothing.
func (NoopAnalysisObserver) PostAnalysis(context.Context, AnalysisEvent, *domain.CleanlinessScore, time.Duration, error) {
}
