// Package ports defines the core interfaces that form the contract between
// the domain/application layers and the infrastructure layer.
// These interfaces enable dependency inversion and make the system testable.
package ports

import (
	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/domain"
)

// CategoryScorer computes one cleanliness dimension from a set of
// detections. Scorers are the building blocks of the scoring engine; the
// engine runs one scorer per domain.ScoreCategory and sums the results.
//
// Scorers must be pure: the same detections always produce the same score,
// no state is kept between calls, and concurrent calls are safe.
type CategoryScorer interface {
	// Name returns a unique identifier for this scorer instance.
	Name() string

	// Category returns the dimension this scorer fills in.
	Category() domain.ScoreCategory

	// Score returns a value in [0, 10]. The detections have already been
	// normalized and grouped by the taxonomy; scorers read only the groups
	// they care about. An empty grouping must score 10.
	Score(groups map[domain.DetectionCategory][]domain.Detection) float64

	// Validate checks that the scorer's parameters are usable.
	Validate() error
}

// ScorerFactory builds a CategoryScorer from an untyped parameter map, as
// decoded from YAML or JSON configuration.
type ScorerFactory func(id string, config map[string]any) (CategoryScorer, error)

// ScorerRegistry creates scorers by type name.
type ScorerRegistry interface {
	// CreateScorer instantiates a scorer of the given type.
	CreateScorer(scorerType string, id string, config map[string]any) (CategoryScorer, error)

	// RegisterScorerFactory adds or replaces the factory for a type.
	RegisterScorerFactory(scorerType string, factory ScorerFactory) error

	// GetSupportedTypes lists the registered type names.
	GetSupportedTypes() []string
}
