package application

import (
	"fmt"
	"sort"
	"sync"

	"github.com/coffeescripttech-maker/classroom-cleanliness/infrastructure/scorers"
	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/domain"
	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/ports"
)

var _ ports.ScorerRegistry = (*DefaultScorerRegistry)(nil)

// DefaultScorerRegistry implements the ScorerRegistry interface providing
// a factory for creating category scorers based on type and configuration.
// It supports dynamic registration of scorer factories so alternative
// heuristics can replace the built-in ones.
type DefaultScorerRegistry struct {
	// factories maps scorer type strings to their factory functions.
	factories map[string]ports.ScorerFactory
	// mu protects concurrent access to the factories map.
	mu sync.RWMutex
}

// NewDefaultScorerRegistry creates a new scorer registry with the five
// built-in scorer types pre-registered.
func NewDefaultScorerRegistry() *DefaultScorerRegistry {
	return &DefaultScorerRegistry{
		factories: map[string]ports.ScorerFactory{
			string(domain.ScoreFloor):     scorers.CreateFloorScorer,
			string(domain.ScoreFurniture): scorers.CreateFurnitureScorer,
			string(domain.ScoreTrash):     scorers.CreateTrashScorer,
			string(domain.ScoreWall):      scorers.CreateWallScorer,
			string(domain.ScoreClutter):   scorers.CreateClutterScorer,
		},
	}
}

// CreateScorer creates a new scorer instance based on the provided type,
// identifier, and configuration.
func (r *DefaultScorerRegistry) CreateScorer(
	scorerType string,
	id string,
	config map[string]any,
) (ports.CategoryScorer, error) {
	r.mu.RLock()
	factory, exists := r.factories[scorerType]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("unsupported scorer type: %s", scorerType)
	}

	if id == "" {
		return nil, fmt.Errorf("scorer ID cannot be empty")
	}

	if config == nil {
		config = make(map[string]any)
	}

	scorer, err := factory(id, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create scorer %s of type %s: %w", id, scorerType, err)
	}

	return scorer, nil
}

// RegisterScorerFactory registers a new factory function for a specific
// scorer type, replacing any existing one.
func (r *DefaultScorerRegistry) RegisterScorerFactory(
	scorerType string,
	factory ports.ScorerFactory,
) error {
	if scorerType == "" {
		return fmt.Errorf("scorer type cannot be empty")
	}

	if factory == nil {
		return fmt.Errorf("factory function cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[scorerType] = factory
	return nil
}

// GetSupportedTypes returns all registered scorer types in sorted order.
func (r *DefaultScorerRegistry) GetSupportedTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.factories))
	for scorerType := range r.factories {
		types = append(types, scorerType)
	}
	sort.Strings(types)

	return types
}

// BuildScorers creates one scorer per score category. Categories listed in
// overrides use their configured parameters; the rest use defaults.
func BuildScorers(registry ports.ScorerRegistry, overrides []ScorerConfig) ([]ports.CategoryScorer, error) {
	byType := make(map[string]ScorerConfig, len(overrides))
	for _, o := range overrides {
		byType[o.Type] = o
	}

	out := make([]ports.CategoryScorer, 0, len(domain.ScoreCategories))
	for _, cat := range domain.ScoreCategories {
		scorerType := string(cat)
		id := scorerType
		params := map[string]any{}

		if o, ok := byType[scorerType]; ok {
			if o.ID != "" {
				id = o.ID
			}
			if o.Parameters.Kind != 0 {
				if err := o.Parameters.Decode(&params); err != nil {
					return nil, fmt.Errorf("decode %s parameters: %w", scorerType, err)
				}
			}
		}

		s, err := registry.CreateScorer(scorerType, id, params)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
