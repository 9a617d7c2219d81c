package scorers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/domain"
)

// TestWallScorer_Score covers wall marks and board obstruction.
func TestWallScorer_Score(t *testing.T) {
	scorer, err := NewWallScorer("wall", DefaultWallConfig())
	require.NoError(t, err)

	board := box("whiteboard", 0, 0, 100, 100)

	tests := []struct {
		name string
		dets []domain.Detection
		want float64
	}{
		{name: "bare wall", dets: nil, want: 10},
		{name: "clean board", dets: []domain.Detection{board}, want: 10},
		{name: "one wall mark", dets: []domain.Detection{det("wall stain", 500, 500, 10)}, want: 8},
		{name: "wall marks are capped", dets: repeat(det("graffiti", 500, 500, 10), 3), want: 6},
		{name: "half covered board", dets: []domain.Detection{board, box("poster", 0, 0, 50, 100)}, want: 8.5},
		{name: "fully covered board", dets: []domain.Detection{board, box("poster", -10, -10, 110, 110)}, want: 7},
		{name: "chair in front of board is not an obstruction", dets: []domain.Detection{board, box("chair", 0, 0, 100, 100)}, want: 10},
		{
			name: "marks and obstruction together",
			dets: []domain.Detection{board, box("backpack", 0, 0, 100, 100), det("wall mark", 500, 500, 10)},
			want: 5,
		},
		{name: "degenerate board is ignored", dets: []domain.Detection{box("blackboard", 10, 10, 10, 10), box("poster", 0, 0, 50, 50)}, want: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, scorer.Score(group(tt.dets)), 1e-9)
		})
	}
}

func TestWallScorer_Config(t *testing.T) {
	_, err := NewWallScorer("", DefaultWallConfig())
	assert.ErrorIs(t, err, ErrEmptyScorerName)

	s, err := CreateWallScorer("wall", map[string]any{"mark_penalty": 5, "mark_cap": 10})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, s.Score(group(repeat(det("wall mark", 0, 0, 1), 3))), 1e-9)
}
