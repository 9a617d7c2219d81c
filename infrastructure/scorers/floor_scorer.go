package scorers

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/domain"
	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/ports"
)

var _ ports.CategoryScorer = (*FloorScorer)(nil)

// FloorScorer rates floor cleanliness from loose paper and trash.
//
// Algorithm: 10 − PaperPenalty·papers − TrashPenalty·trash, clamped to
// [0, 10]. Every additional paper or trash detection lowers the score by a
// fixed amount until it reaches zero, so the score is monotone in the amount
// of floor waste.
//
// Concurrency: Stateless and thread-safe for concurrent execution.
type FloorScorer struct {
	// name is the unique identifier for this scorer instance.
	name string
	// config contains the validated configuration parameters.
	config FloorConfig
}

// FloorConfig holds the per-item penalties of the floor scorer.
type FloorConfig struct {
	// PaperPenalty is subtracted per paper detection.
	PaperPenalty float64 `yaml:"paper_penalty" json:"paper_penalty" validate:"min=0,max=10"`

	// TrashPenalty is subtracted per trash detection.
	TrashPenalty float64 `yaml:"trash_penalty" json:"trash_penalty" validate:"min=0,max=10"`
}

// NewFloorScorer creates a FloorScorer with validated configuration.
// Returns ErrEmptyScorerName if name is empty.
func NewFloorScorer(name string, config FloorConfig) (*FloorScorer, error) {
	if name == "" {
		return nil, ErrEmptyScorerName
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &FloorScorer{name: name, config: config}, nil
}

// Name returns the unique identifier for this scorer instance.
func (s *FloorScorer) Name() string { return s.name }

// Category returns domain.ScoreFloor.
func (s *FloorScorer) Category() domain.ScoreCategory { return domain.ScoreFloor }

// Score applies the per-item floor penalties.
func (s *FloorScorer) Score(groups map[domain.DetectionCategory][]domain.Detection) float64 {
	papers := len(groups[domain.CategoryPaper])
	trash := len(groups[domain.CategoryTrash])
	return clamp(domain.MaxCategoryScore -
		s.config.PaperPenalty*float64(papers) -
		s.config.TrashPenalty*float64(trash))
}

// Validate verifies the scorer configuration.
func (s *FloorScorer) Validate() error {
	if err := validate.Struct(s.config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// UnmarshalParameters replaces the configuration from a YAML node. The
// configuration is unchanged on error.
func (s *FloorScorer) UnmarshalParameters(params yaml.Node) error {
	cfg, err := decodeParameters(params, DefaultFloorConfig())
	if err != nil {
		return err
	}
	s.config = cfg
	return nil
}

// DefaultFloorConfig returns the published floor constants: 0.3 per paper
// and 0.5 per trash item.
func DefaultFloorConfig() FloorConfig {
	return FloorConfig{
		PaperPenalty: 0.3,
		TrashPenalty: 0.5,
	}
}

// CreateFloorScorer creates a FloorScorer from a configuration map.
// This is the boundary adapter for YAML/JSON configuration.
func CreateFloorScorer(id string, config map[string]any) (ports.CategoryScorer, error) {
	cfg, err := decodeConfig(config, DefaultFloorConfig())
	if err != nil {
		return nil, err
	}
	return NewFloorScorer(id, cfg)
}
