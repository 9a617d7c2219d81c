package scorers

import (
	"fmt"
	"math"

	"gopkg.in/yaml.v3"

	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/domain"
	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/ports"
)

var _ ports.CategoryScorer = (*WallScorer)(nil)

// obstructions are the categories that can cover a board.
var obstructions = []domain.DetectionCategory{
	domain.CategoryPoster,
	domain.CategoryPaper,
	domain.CategoryTrash,
	domain.CategoryBag,
	domain.CategoryBottle,
	domain.CategoryBook,
	domain.CategoryMisc,
}

// WallScorer rates walls and boards.
//
// Wall marks cost MarkPenalty each, capped at MarkCap. For every board the
// share of its area covered by obstructing detections is computed (capped
// at 1 per board); the summed coverage times ObstructionWeight is
// subtracted, capped at ObstructionCap. A room with no marks and no
// obstructed boards scores 10.
type WallScorer struct {
	name   string
	config WallConfig
}

// WallConfig holds the wall scorer's penalties.
type WallConfig struct {
	MarkPenalty       float64 `yaml:"mark_penalty" json:"mark_penalty" validate:"min=0,max=10"`
	MarkCap           float64 `yaml:"mark_cap" json:"mark_cap" validate:"min=0,max=10"`
	ObstructionWeight float64 `yaml:"obstruction_weight" json:"obstruction_weight" validate:"min=0,max=10"`
	ObstructionCap    float64 `yaml:"obstruction_cap" json:"obstruction_cap" validate:"min=0,max=10"`
}

// NewWallScorer creates a WallScorer with validated configuration.
func NewWallScorer(name string, config WallConfig) (*WallScorer, error) {
	if name == "" {
		return nil, ErrEmptyScorerName
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &WallScorer{name: name, config: config}, nil
}

// Name returns the unique identifier for this scorer instance.
func (s *WallScorer) Name() string { return s.name }

// Category returns domain.ScoreWall.
func (s *WallScorer) Category() domain.ScoreCategory { return domain.ScoreWall }

// Score subtracts wall mark and board obstruction penalties.
func (s *WallScorer) Score(groups map[domain.DetectionCategory][]domain.Detection) float64 {
	penalty := math.Min(s.config.MarkCap,
		s.config.MarkPenalty*float64(len(groups[domain.CategoryWallMark])))

	var coverage float64
	for _, board := range groups[domain.CategoryBoard] {
		area := board.BBox.Area()
		if area == 0 {
			continue
		}
		var covered float64
		for _, cat := range obstructions {
			for _, d := range groups[cat] {
				covered += board.BBox.IntersectionArea(d.BBox)
			}
		}
		coverage += math.Min(1, covered/area)
	}
	penalty += math.Min(s.config.ObstructionCap, coverage*s.config.ObstructionWeight)

	return clamp(domain.MaxCategoryScore - penalty)
}

// Validate verifies the scorer configuration.
func (s *WallScorer) Validate() error {
	if err := validate.Struct(s.config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// UnmarshalParameters replaces the configuration from a YAML node.
func (s *WallScorer) UnmarshalParameters(params yaml.Node) error {
	cfg, err := decodeParameters(params, DefaultWallConfig())
	if err != nil {
		return err
	}
	s.config = cfg
	return nil
}

// DefaultWallConfig returns the calibrated wall constants.
func DefaultWallConfig() WallConfig {
	return WallConfig{
		MarkPenalty:       2,
		MarkCap:           4,
		ObstructionWeight: 3,
		ObstructionCap:    3,
	}
}

// CreateWallScorer creates a WallScorer from a configuration map.
func CreateWallScorer(id string, config map[string]any) (ports.CategoryScorer, error) {
	cfg, err := decodeConfig(config, DefaultWallConfig())
	if err != nil {
		return nil, err
	}
	return NewWallScorer(id, cfg)
}
