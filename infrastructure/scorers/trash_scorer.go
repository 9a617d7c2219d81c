package scorers

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/domain"
	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/ports"
)

var _ ports.CategoryScorer = (*TrashScorer)(nil)

// TrashScorer rates waste management: whether bins exist and whether waste
// ends up in them.
//
// A waste item counts as overflow when its center lies within BinProximity
// pixels of a bin, and as stray otherwise.
//
//   - No bins and no waste: 10.
//   - No bins with waste: 10 − MissingBinPenalty − min(StrayCap, StrayPenalty·waste).
//   - Bins present: 10 − min(StrayCap, StrayPenalty·stray) − min(OverflowCap, OverflowPenalty·overflow).
//
// Bins alone never cost anything.
type TrashScorer struct {
	name   string
	config TrashConfig
}

// TrashConfig holds the trash scorer's penalties.
type TrashConfig struct {
	MissingBinPenalty float64 `yaml:"missing_bin_penalty" json:"missing_bin_penalty" validate:"min=0,max=10"`
	StrayPenalty      float64 `yaml:"stray_penalty" json:"stray_penalty" validate:"min=0,max=10"`
	StrayCap          float64 `yaml:"stray_cap" json:"stray_cap" validate:"min=0,max=10"`
	OverflowPenalty   float64 `yaml:"overflow_penalty" json:"overflow_penalty" validate:"min=0,max=10"`
	OverflowCap       float64 `yaml:"overflow_cap" json:"overflow_cap" validate:"min=0,max=10"`
	BinProximity      float64 `yaml:"bin_proximity" json:"bin_proximity" validate:"min=0"`
}

// NewTrashScorer creates a TrashScorer with validated configuration.
func NewTrashScorer(name string, config TrashConfig) (*TrashScorer, error) {
	if name == "" {
		return nil, ErrEmptyScorerName
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &TrashScorer{name: name, config: config}, nil
}

// Name returns the unique identifier for this scorer instance.
func (s *TrashScorer) Name() string { return s.name }

// Category returns domain.ScoreTrash.
func (s *TrashScorer) Category() domain.ScoreCategory { return domain.ScoreTrash }

// Score evaluates bin presence, stray waste and overflow.
func (s *TrashScorer) Score(groups map[domain.DetectionCategory][]domain.Detection) float64 {
	bins := groups[domain.CategoryBin]
	waste := groups[domain.CategoryTrash]

	if len(waste) == 0 {
		return domain.MaxCategoryScore
	}

	if len(bins) == 0 {
		return clamp(domain.MaxCategoryScore -
			s.config.MissingBinPenalty -
			cappedPenalty(s.config.StrayPenalty, len(waste), s.config.StrayCap))
	}

	var stray, overflow int
	for _, w := range waste {
		if insideAny(w, bins, s.config.BinProximity) {
			overflow++
		} else {
			stray++
		}
	}

	return clamp(domain.MaxCategoryScore -
		cappedPenalty(s.config.StrayPenalty, stray, s.config.StrayCap) -
		cappedPenalty(s.config.OverflowPenalty, overflow, s.config.OverflowCap))
}

// Validate verifies the scorer configuration.
func (s *TrashScorer) Validate() error {
	if err := validate.Struct(s.config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// UnmarshalParameters replaces the configuration from a YAML node.
func (s *TrashScorer) UnmarshalParameters(params yaml.Node) error {
	cfg, err := decodeParameters(params, DefaultTrashConfig())
	if err != nil {
		return err
	}
	s.config = cfg
	return nil
}

// DefaultTrashConfig returns the calibrated trash constants.
func DefaultTrashConfig() TrashConfig {
	return TrashConfig{
		MissingBinPenalty: 3,
		StrayPenalty:      2,
		StrayCap:          4,
		OverflowPenalty:   1.5,
		OverflowCap:       3,
		BinProximity:      80,
	}
}

// CreateTrashScorer creates a TrashScorer from a configuration map.
func CreateTrashScorer(id string, config map[string]any) (ports.CategoryScorer, error) {
	cfg, err := decodeConfig(config, DefaultTrashConfig())
	if err != nil {
		return nil, err
	}
	return NewTrashScorer(id, cfg)
}
