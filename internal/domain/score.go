package domain

import (
	"fmt"
	"time"
)

// ClassroomID identifies a classroom across the store and the leaderboard.
type ClassroomID string

// ScoreCategory names one of the five cleanliness dimensions.
type ScoreCategory string

// The five scored dimensions, in breakdown order.
const (
	ScoreFloor     ScoreCategory = "floor"
	ScoreFurniture ScoreCategory = "furniture"
	ScoreTrash     ScoreCategory = "trash"
	ScoreWall      ScoreCategory = "wall"
	ScoreClutter   ScoreCategory = "clutter"
)

// ScoreCategories lists every dimension in breakdown order.
var ScoreCategories = []ScoreCategory{ScoreFloor, ScoreFurniture, ScoreTrash, ScoreWall, ScoreClutter}

// Score bounds.
const (
	MaxCategoryScore = 10.0
	MaxTotalScore    = 50.0
)

// ScoreBreakdown holds the five sub-scores of one analysis, each in [0, 10].
type ScoreBreakdown struct {
	Floor     float64 `json:"floor"`
	Furniture float64 `json:"furniture"`
	Trash     float64 `json:"trash"`
	Wall      float64 `json:"wall"`
	Clutter   float64 `json:"clutter"`
}

// PerfectBreakdown returns a breakdown with every category at the maximum.
func PerfectBreakdown() ScoreBreakdown {
	return ScoreBreakdown{
		Floor:     MaxCategoryScore,
		Furniture: MaxCategoryScore,
		Trash:     MaxCategoryScore,
		Wall:      MaxCategoryScore,
		Clutter:   MaxCategoryScore,
	}
}

// Total returns the sum of the five sub-scores.
func (b ScoreBreakdown) Total() float64 {
	return b.Floor + b.Furniture + b.Trash + b.Wall + b.Clutter
}

// Get returns the sub-score for a category.
func (b ScoreBreakdown) Get(c ScoreCategory) (float64, error) {
	switch c {
	case ScoreFloor:
		return b.Floor, nil
	case ScoreFurniture:
		return b.Furniture, nil
	case ScoreTrash:
		return b.Trash, nil
	case ScoreWall:
		return b.Wall, nil
	case ScoreClutter:
		return b.Clutter, nil
	}
	return 0, fmt.Errorf("%w: unknown score category %q", ErrInvalidConfiguration, c)
}

// With returns a copy of b with the category set to v.
func (b ScoreBreakdown) With(c ScoreCategory, v float64) (ScoreBreakdown, error) {
	switch c {
	case ScoreFloor:
		b.Floor = v
	case ScoreFurniture:
		b.Furniture = v
	case ScoreTrash:
		b.Trash = v
	case ScoreWall:
		b.Wall = v
	case ScoreClutter:
		b.Clutter = v
	default:
		return b, fmt.Errorf("%w: unknown score category %q", ErrInvalidConfiguration, c)
	}
	return b, nil
}

// Rating is the qualitative label attached to a total score.
type Rating string

// Ratings from best to worst.
const (
	RatingExcellent Rating = "Excellent"
	RatingGood      Rating = "Good"
	RatingFair      Rating = "Fair"
	RatingPoor      Rating = "Poor"
)

// Rating thresholds on the 0-50 total. A total exactly on a threshold gets
// the higher rating.
const (
	ExcellentThreshold = 45.0
	GoodThreshold      = 35.0
	FairThreshold      = 25.0
)

// RatingFor maps a total score to its rating. No rounding is applied, so
// 44.999 is Good.
func RatingFor(total float64) Rating {
	switch {
	case total >= ExcellentThreshold:
		return RatingExcellent
	case total >= GoodThreshold:
		return RatingGood
	case total >= FairThreshold:
		return RatingFair
	default:
		return RatingPoor
	}
}

// CleanlinessScore is the immutable result of analyzing one image. A new
// analysis of the same classroom appends a new record; existing records are
// never updated.
type CleanlinessScore struct {
	ID          string         `json:"id"`
	ImageID     string         `json:"image_id"`
	ClassroomID ClassroomID    `json:"classroom_id"`
	Breakdown   ScoreBreakdown `json:"scores"`
	Total       float64        `json:"total_score"`
	Rating      Rating         `json:"rating"`
	Detections  []Detection    `json:"detections"`
	AnalyzedAt  time.Time      `json:"analyzed_at"`
	// AnnotatedImagePath points at the copy of the image with detection
	// boxes drawn, when the vision service produced one.
	AnnotatedImagePath string `json:"annotated_image_path,omitempty"`
}
