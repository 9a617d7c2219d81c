package scorers

import (
	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/domain"
)

var testTaxonomy = domain.DefaultTaxonomy()

// det builds a detection centered at (cx, cy) with the given half size.
func det(class string, cx, cy, half float64) domain.Detection {
	return domain.Detection{
		Class:      class,
		Confidence: 0.9,
		BBox:       domain.BBox{cx - half, cy - half, cx + half, cy + half},
	}
}

// box builds a detection with an explicit bounding box.
func box(class string, x1, y1, x2, y2 float64) domain.Detection {
	return domain.Detection{Class: class, Confidence: 0.9, BBox: domain.BBox{x1, y1, x2, y2}}
}

// repeat returns n copies of d.
func repeat(d domain.Detection, n int) []domain.Detection {
	out := make([]domain.Detection, n)
	for i := range out {
		out[i] = d
	}
	return out
}

func group(dets ...[]domain.Detection) map[domain.DetectionCategory][]domain.Detection {
	var all []domain.Detection
	for _, d := range dets {
		all = append(all, d...)
	}
	return testTaxonomy.Group(all)
}
