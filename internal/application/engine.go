package application

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/domain"
	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/ports"
)

// Engine turns a set of detections into a CleanlinessScore. It holds one
// scorer per score category and is immutable after construction, so a
// single Engine can be shared by every request.
type Engine struct {
	taxonomy      *domain.Taxonomy
	scorers       map[domain.ScoreCategory]ports.CategoryScorer
	minConfidence float64
	now           func() time.Time
	newID         func() string
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithTaxonomy replaces the default label taxonomy.
func WithTaxonomy(t *domain.Taxonomy) EngineOption {
	return func(e *Engine) { e.taxonomy = t }
}

// WithMinConfidence ignores detections whose normalized confidence is below c.
func WithMinConfidence(c float64) EngineOption {
	return func(e *Engine) { e.minConfidence = c }
}

// WithClock sets the time source used for AnalyzedAt.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator sets the function that assigns score IDs.
func WithIDGenerator(newID func() string) EngineOption {
	return func(e *Engine) { e.newID = newID }
}

// NewEngine builds an engine from exactly one scorer per score category.
func NewEngine(scorers []ports.CategoryScorer, opts ...EngineOption) (*Engine, error) {
	e := &Engine{
		taxonomy: domain.DefaultTaxonomy(),
		scorers:  make(map[domain.ScoreCategory]ports.CategoryScorer, len(scorers)),
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}

	for _, s := range scorers {
		if s == nil {
			return nil, fmt.Errorf("%w: nil scorer", domain.ErrInvalidConfiguration)
		}
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("scorer %s: %w", s.Name(), err)
		}
		cat := s.Category()
		if !slices.Contains(domain.ScoreCategories, cat) {
			return nil, fmt.Errorf("%w: scorer %s has unknown category %q",
				domain.ErrInvalidConfiguration, s.Name(), cat)
		}
		if existing, dup := e.scorers[cat]; dup {
			return nil, fmt.Errorf("%w: scorers %s and %s both score %s",
				domain.ErrInvalidConfiguration, existing.Name(), s.Name(), cat)
		}
		e.scorers[cat] = s
	}
	for _, cat := range domain.ScoreCategories {
		if _, ok := e.scorers[cat]; !ok {
			return nil, fmt.Errorf("%w: no scorer for %s", domain.ErrInvalidConfiguration, cat)
		}
	}

	for _, opt := range opts {
		opt(e)
	}
	if e.taxonomy == nil {
		return nil, fmt.Errorf("%w: nil taxonomy", domain.ErrInvalidConfiguration)
	}
	return e, nil
}

// NewEngineFromConfig builds the scorers named in cfg through the registry
// and applies the label overrides and confidence floor.
func NewEngineFromConfig(cfg ScoringConfig, registry ports.ScorerRegistry, opts ...EngineOption) (*Engine, error) {
	scorers, err := BuildScorers(registry, cfg.Scorers)
	if err != nil {
		return nil, err
	}

	labels := make(map[string]domain.DetectionCategory, len(domain.DefaultLabelCategories)+len(cfg.Labels))
	for k, v := range domain.DefaultLabelCategories {
		labels[k] = v
	}
	for label, name := range cfg.Labels {
		cat, ok := domain.ParseDetectionCategory(name)
		if !ok || cat == domain.CategoryUnknown {
			return nil, fmt.Errorf("%w: label %q maps to unknown category %q",
				domain.ErrInvalidConfiguration, label, name)
		}
		labels[label] = cat
	}

	base := []EngineOption{
		WithTaxonomy(domain.NewTaxonomy(labels, cfg.MaxLabelDistance)),
		WithMinConfidence(cfg.MinConfidence),
	}
	return NewEngine(scorers, append(base, opts...)...)
}

// Breakdown scores the detections without building a record. Confidence is
// clamped first, detections under the confidence floor are dropped and the
// rest are grouped by category before each scorer runs.
func (e *Engine) Breakdown(detections []domain.Detection) domain.ScoreBreakdown {
	normalized := domain.NormalizeDetections(detections)
	kept := normalized[:0]
	for _, d := range normalized {
		if d.Confidence >= e.minConfidence {
			kept = append(kept, d)
		}
	}
	groups := e.taxonomy.Group(kept)

	var b domain.ScoreBreakdown
	for cat, scorer := range e.scorers {
		v := scorer.Score(groups)
		switch cat {
		case domain.ScoreFloor:
			b.Floor = v
		case domain.ScoreFurniture:
			b.Furniture = v
		case domain.ScoreTrash:
			b.Trash = v
		case domain.ScoreWall:
			b.Wall = v
		case domain.ScoreClutter:
			b.Clutter = v
		}
	}
	return b
}

// ComputeScore scores the detections and returns a new record. The record
// keeps the normalized detections, including ones below the confidence
// floor, so a stored score can be recomputed later.
func (e *Engine) ComputeScore(detections []domain.Detection) domain.CleanlinessScore {
	b := e.Breakdown(detections)
	total := b.Total()
	return domain.CleanlinessScore{
		ID:         e.newID(),
		Breakdown:  b,
		Total:      total,
		Rating:     domain.RatingFor(total),
		Detections: domain.NormalizeDetections(detections),
		AnalyzedAt: e.now(),
	}
}

// Taxonomy returns the label taxonomy the engine groups detections with.
func (e *Engine) Taxonomy() *domain.Taxonomy { return e.taxonomy }
