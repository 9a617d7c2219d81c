// Package domain contains the core types of the cleanliness scoring service:
// detections reported by the vision pipeline, the category taxonomy that
// gives them meaning, the immutable score records derived from them, and the
// leaderboard standings computed from score history.
//
// Nothing in this package performs I/O or holds global mutable state, so all
// of it is safe for concurrent use.
package domain

import "math"

// BBox is an axis-aligned bounding box in pixel coordinates laid out as
// [x1, y1, x2, y2]. Boxes are not validated; a box whose corners are swapped
// has zero width or height and therefore zero area.
type BBox [4]float64

// Width returns the horizontal extent of the box, never negative.
func (b BBox) Width() float64 { return math.Max(0, b[2]-b[0]) }

// Height returns the vertical extent of the box, never negative.
func (b BBox) Height() float64 { return math.Max(0, b[3]-b[1]) }

// Area returns Width()*Height().
func (b BBox) Area() float64 { return b.Width() * b.Height() }

// Center returns the midpoint of the box.
func (b BBox) Center() (x, y float64) {
	return (b[0] + b[2]) / 2, (b[1] + b[3]) / 2
}

// Expand grows the box by margin pixels on every side.
func (b BBox) Expand(margin float64) BBox {
	return BBox{b[0] - margin, b[1] - margin, b[2] + margin, b[3] + margin}
}

// Contains reports whether the point lies inside the box, edges included.
func (b BBox) Contains(x, y float64) bool {
	return x >= b[0] && x <= b[2] && y >= b[1] && y <= b[3]
}

// IntersectionArea returns the area shared by b and o.
func (b BBox) IntersectionArea(o BBox) float64 {
	w := math.Min(b[2], o[2]) - math.Max(b[0], o[0])
	h := math.Min(b[3], o[3]) - math.Max(b[1], o[1])
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Detection is a single object reported by the detector for one image.
// Detections are values and are never modified after normalization.
type Detection struct {
	// Class is the raw label emitted by the detector, e.g. "trash_bin".
	Class string `json:"class"`
	// Confidence is the detector's certainty in [0, 1].
	Confidence float64 `json:"confidence"`
	// BBox locates the object in the analyzed image.
	BBox BBox `json:"bbox"`
}

// Center returns the center of the detection's bounding box.
func (d Detection) Center() (x, y float64) { return d.BBox.Center() }

// NormalizeDetections returns a copy of in with every confidence clamped to
// [0, 1]. NaN confidences become 0. Bounding boxes and labels pass through
// untouched; unknown labels are handled by the taxonomy.
func NormalizeDetections(in []Detection) []Detection {
	out := make([]Detection, len(in))
	for i, d := range in {
		switch {
		case math.IsNaN(d.Confidence) || d.Confidence < 0:
			d.Confidence = 0
		case d.Confidence > 1:
			d.Confidence = 1
		}
		out[i] = d
	}
	return out
}
