package testutils

import (
	"time"

	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/domain"
)

// Detection builds a detection with a 20x20 box whose top-left corner is
// at (x, y).
func Detection(class string, confidence, x, y float64) domain.Detection {
	return domain.Detection{Class: class, Confidence: confidence, BBox: domain.BBox{x, y, x + 20, y + 20}}
}

// Repeat returns n copies of class spread horizontally along row y.
func Repeat(class string, n int, y float64) []domain.Detection {
	out := make([]domain.Detection, n)
	for i := range out {
		out[i] = Detection(class, 0.8, float64(i*40), y)
	}
	return out
}

// MessyRoom is a classroom with litter on the floor, an overflowing bin and
// clutter on the desks.
func MessyRoom() []domain.Detection {
	dets := []domain.Detection{
		{Class: "trash_bin", Confidence: 0.88, BBox: domain.BBox{600, 500, 660, 600}},
		{Class: "chair", Confidence: 0.93, BBox: domain.BBox{100, 300, 180, 420}},
		{Class: "chair", Confidence: 0.91, BBox: domain.BBox{140, 310, 220, 430}},
		{Class: "desk", Confidence: 0.9, BBox: domain.BBox{80, 250, 300, 350}},
		{Class: "poster", Confidence: 0.7, BBox: domain.BBox{50, 20, 150, 120}},
	}
	dets = append(dets, Repeat("paper", 4, 600)...)
	dets = append(dets, Repeat("bottle", 2, 640)...)
	dets = append(dets, Repeat("book", 5, 260)...)
	return dets
}

// Classrooms returns three classrooms in grades 7 and 8.
func Classrooms() []domain.Classroom {
	return []domain.Classroom{
		{ID: "7A", Name: "Grade 7 - Sampaguita", GradeLevel: "7", Section: "Sampaguita"},
		{ID: "7B", Name: "Grade 7 - Rosal", GradeLevel: "7", Section: "Rosal"},
		{ID: "8A", Name: "Grade 8 - Narra", GradeLevel: "8", Section: "Narra"},
	}
}

// Score builds a stored score for classroom with the given total spread
// evenly over the five categories.
func Score(id string, classroom domain.ClassroomID, at time.Time, total float64) domain.CleanlinessScore {
	part := total / 5
	return domain.CleanlinessScore{
		ID:          id,
		ImageID:     "img-" + id,
		ClassroomID: classroom,
		Breakdown:   domain.ScoreBreakdown{Floor: part, Furniture: part, Trash: part, Wall: part, Clutter: part},
		Total:       total,
		Rating:      domain.RatingFor(total),
		Detections:  []domain.Detection{},
		AnalyzedAt:  at,
	}
}
