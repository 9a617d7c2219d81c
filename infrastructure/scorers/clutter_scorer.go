package scorers

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/domain"
	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/ports"
)

var _ ports.CategoryScorer = (*ClutterScorer)(nil)

// ClutterScorer rates personal belongings left around the room. Each bag,
// bottle, book and miscellaneous item carries its own fixed penalty; the sum
// is subtracted from 10 and clamped.
type ClutterScorer struct {
	name   string
	config ClutterConfig
}

// ClutterConfig holds the per-item clutter penalties.
type ClutterConfig struct {
	BagPenalty    float64 `yaml:"bag_penalty" json:"bag_penalty" validate:"min=0,max=10"`
	BottlePenalty float64 `yaml:"bottle_penalty" json:"bottle_penalty" validate:"min=0,max=10"`
	BookPenalty   float64 `yaml:"book_penalty" json:"book_penalty" validate:"min=0,max=10"`
	MiscPenalty   float64 `yaml:"misc_penalty" json:"misc_penalty" validate:"min=0,max=10"`
}

// NewClutterScorer creates a ClutterScorer with validated configuration.
func NewClutterScorer(name string, config ClutterConfig) (*ClutterScorer, error) {
	if name == "" {
		return nil, ErrEmptyScorerName
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &ClutterScorer{name: name, config: config}, nil
}

// Name returns the unique identifier for this scorer instance.
func (s *ClutterScorer) Name() string { return s.name }

// Category returns domain.ScoreClutter.
func (s *ClutterScorer) Category() domain.ScoreCategory { return domain.ScoreClutter }

// Score sums the per-item penalties.
func (s *ClutterScorer) Score(groups map[domain.DetectionCategory][]domain.Detection) float64 {
	penalty := s.config.BagPenalty*float64(len(groups[domain.CategoryBag])) +
		s.config.BottlePenalty*float64(len(groups[domain.CategoryBottle])) +
		s.config.BookPenalty*float64(len(groups[domain.CategoryBook])) +
		s.config.MiscPenalty*float64(len(groups[domain.CategoryMisc]))
	return clamp(domain.MaxCategoryScore - penalty)
}

// Validate verifies the scorer configuration.
func (s *ClutterScorer) Validate() error {
	if err := validate.Struct(s.config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// UnmarshalParameters replaces the configuration from a YAML node.
func (s *ClutterScorer) UnmarshalParameters(params yaml.Node) error {
	cfg, err := decodeParameters(params, DefaultClutterConfig())
	if err != nil {
		return err
	}
	s.config = cfg
	return nil
}

// DefaultClutterConfig returns 1.0 per bag, 0.5 per bottle, 0.3 per book
// and 0.5 per miscellaneous item.
func DefaultClutterConfig() ClutterConfig {
	return ClutterConfig{
		BagPenalty:    1.0,
		BottlePenalty: 0.5,
		BookPenalty:   0.3,
		MiscPenalty:   0.5,
	}
}

// CreateClutterScorer creates a ClutterScorer from a configuration map.
func CreateClutterScorer(id string, config map[string]any) (ports.CategoryScorer, error) {
	cfg, err := decodeConfig(config, DefaultClutterConfig())
	if err != nil {
		return nil, err
	}
	return NewClutterScorer(id, cfg)
}
