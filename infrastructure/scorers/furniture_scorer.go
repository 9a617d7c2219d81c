package scorers

import (
	"fmt"
	"math"

	"gopkg.in/yaml.v3"

	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/domain"
	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/ports"
)

var _ ports.CategoryScorer = (*FurnitureScorer)(nil)

// surfaceItems are the categories that count as clutter when they sit on a
// desk.
var surfaceItems = []domain.DetectionCategory{
	domain.CategoryPaper,
	domain.CategoryTrash,
	domain.CategoryBag,
	domain.CategoryBottle,
	domain.CategoryBook,
	domain.CategoryMisc,
}

// FurnitureScorer rates how orderly the chairs and desks are.
//
// Three independent penalties are subtracted from 10:
//
//   - Alignment: when both chairs and desks are visible, the share of chairs
//     whose center lies within AlignmentMargin pixels of some desk. The
//     penalty is (1 − share)·AlignmentWeight.
//   - Arrangement: with at least ArrangementMinItems pieces of furniture, the
//     population variance of their centers is computed on both axes. Rows
//     and columns keep one axis tight, so the smaller variance is used:
//     quality = max(0, 1 − min(var_x, var_y)/VarianceScale) and the penalty
//     is (1 − quality)·ArrangementWeight.
//   - Surface clutter: every loose item whose center lies on a desk costs
//     SurfaceItemPenalty, capped at SurfaceItemCap.
//
// With no chairs or desks every penalty is zero and the score is 10.
type FurnitureScorer struct {
	name   string
	config FurnitureConfig
}

// FurnitureConfig holds the furniture heuristics' weights.
type FurnitureConfig struct {
	AlignmentWeight     float64 `yaml:"alignment_weight" json:"alignment_weight" validate:"min=0,max=10"`
	AlignmentMargin     float64 `yaml:"alignment_margin" json:"alignment_margin" validate:"min=0"`
	ArrangementWeight   float64 `yaml:"arrangement_weight" json:"arrangement_weight" validate:"min=0,max=10"`
	ArrangementMinItems int     `yaml:"arrangement_min_items" json:"arrangement_min_items" validate:"min=2"`
	VarianceScale       float64 `yaml:"variance_scale" json:"variance_scale" validate:"gt=0"`
	SurfaceItemPenalty  float64 `yaml:"surface_item_penalty" json:"surface_item_penalty" validate:"min=0,max=10"`
	SurfaceItemCap      float64 `yaml:"surface_item_cap" json:"surface_item_cap" validate:"min=0,max=10"`
}

// NewFurnitureScorer creates a FurnitureScorer with validated configuration.
func NewFurnitureScorer(name string, config FurnitureConfig) (*FurnitureScorer, error) {
	if name == "" {
		return nil, ErrEmptyScorerName
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &FurnitureScorer{name: name, config: config}, nil
}

// Name returns the unique identifier for this scorer instance.
func (s *FurnitureScorer) Name() string { return s.name }

// Category returns domain.ScoreFurniture.
func (s *FurnitureScorer) Category() domain.ScoreCategory { return domain.ScoreFurniture }

// Score applies the alignment, arrangement and surface clutter penalties.
func (s *FurnitureScorer) Score(groups map[domain.DetectionCategory][]domain.Detection) float64 {
	chairs := groups[domain.CategoryChair]
	desks := groups[domain.CategoryDesk]

	penalty := s.alignmentPenalty(chairs, desks)

	furniture := make([]domain.Detection, 0, len(chairs)+len(desks))
	furniture = append(furniture, chairs...)
	furniture = append(furniture, desks...)
	penalty += s.arrangementPenalty(furniture)

	if len(desks) > 0 {
		onDesk := 0
		for _, cat := range surfaceItems {
			for _, d := range groups[cat] {
				if insideAny(d, desks, 0) {
					onDesk++
				}
			}
		}
		penalty += cappedPenalty(s.config.SurfaceItemPenalty, onDesk, s.config.SurfaceItemCap)
	}

	return clamp(domain.MaxCategoryScore - penalty)
}

func (s *FurnitureScorer) alignmentPenalty(chairs, desks []domain.Detection) float64 {
	if len(chairs) == 0 || len(desks) == 0 {
		return 0
	}
	near := 0
	for _, c := range chairs {
		if insideAny(c, desks, s.config.AlignmentMargin) {
			near++
		}
	}
	ratio := float64(near) / float64(len(chairs))
	return (1 - ratio) * s.config.AlignmentWeight
}

func (s *FurnitureScorer) arrangementPenalty(furniture []domain.Detection) float64 {
	if len(furniture) < s.config.ArrangementMinItems {
		return 0
	}
	var sumX, sumY float64
	for _, f := range furniture {
		x, y := f.Center()
		sumX += x
		sumY += y
	}
	n := float64(len(furniture))
	meanX, meanY := sumX/n, sumY/n

	var varX, varY float64
	for _, f := range furniture {
		x, y := f.Center()
		varX += (x - meanX) * (x - meanX)
		varY += (y - meanY) * (y - meanY)
	}
	varX /= n
	varY /= n

	quality := math.Max(0, 1-math.Min(varX, varY)/s.config.VarianceScale)
	return (1 - quality) * s.config.ArrangementWeight
}

// Validate verifies the scorer configuration.
func (s *FurnitureScorer) Validate() error {
	if err := validate.Struct(s.config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// UnmarshalParameters replaces the configuration from a YAML node.
func (s *FurnitureScorer) UnmarshalParameters(params yaml.Node) error {
	cfg, err := decodeParameters(params, DefaultFurnitureConfig())
	if err != nil {
		return err
	}
	s.config = cfg
	return nil
}

// DefaultFurnitureConfig returns the calibrated furniture constants.
func DefaultFurnitureConfig() FurnitureConfig {
	return FurnitureConfig{
		AlignmentWeight:     4,
		AlignmentMargin:     100,
		ArrangementWeight:   3,
		ArrangementMinItems: 3,
		VarianceScale:       10000,
		SurfaceItemPenalty:  0.5,
		SurfaceItemCap:      3,
	}
}

// CreateFurnitureScorer creates a FurnitureScorer from a configuration map.
func CreateFurnitureScorer(id string, config map[string]any) (ports.CategoryScorer, error) {
	cfg, err := decodeConfig(config, DefaultFurnitureConfig())
	if err != nil {
		return nil, err
	}
	return NewFurnitureScorer(id, cfg)
}
