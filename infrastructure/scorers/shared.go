// Package scorers provides the per-category cleanliness scorers that
// implement the ports.CategoryScorer interface for the scoring engine.
package scorers

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/domain"
)

// Common errors returned by scorer constructors.
var (
	// ErrEmptyScorerName is returned when attempting to create a scorer with an empty name.
	ErrEmptyScorerName = errors.New("scorer name cannot be empty")
)

// Package-level validator instance for configuration validation.
// Uses go-playground/validator v10 for struct tag-based validation.
var validate = validator.New()

// clamp bounds a raw score to [0, MaxCategoryScore].
func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(domain.MaxCategoryScore, v))
}

// cappedPenalty returns min(cap, per*count).
func cappedPenalty(per float64, count int, limit float64) float64 {
	return math.Min(limit, per*float64(count))
}

// insideAny reports whether the center of d lies within any of boxes after
// expanding each by margin.
func insideAny(d domain.Detection, boxes []domain.Detection, margin float64) bool {
	x, y := d.Center()
	for _, b := range boxes {
		if b.BBox.Expand(margin).Contains(x, y) {
			return true
		}
	}
	return false
}

// decodeConfig overlays a parameter map onto defaults via a YAML round trip
// and validates the result.
func decodeConfig[T any](config map[string]any, defaults T) (T, error) {
	data, err := yaml.Marshal(config)
	if err != nil {
		return defaults, fmt.Errorf("marshal config: %w", err)
	}

	// Start with defaults, then overlay user config.
	cfg := defaults
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return defaults, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// decodeParameters strictly decodes a YAML node into a fresh config.
func decodeParameters[T any](params yaml.Node, defaults T) (T, error) {
	cfg := defaults
	if err := params.Decode(&cfg); err != nil {
		return defaults, fmt.Errorf("failed to decode parameters: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return defaults, fmt.Errorf("parameter validation failed: %w", err)
	}
	return cfg, nil
}
