package scorers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/domain"
)

// TestFloorScorer_Score verifies the per-item floor penalties and clamping.
func TestFloorScorer_Score(t *testing.T) {
	scorer, err := NewFloorScorer("floor", DefaultFloorConfig())
	require.NoError(t, err)

	tests := []struct {
		name string
		dets []domain.Detection
		want float64
	}{
		{name: "no detections", dets: nil, want: 10},
		{name: "irrelevant detections only", dets: []domain.Detection{det("chair", 0, 0, 5), det("whiteboard", 50, 50, 20)}, want: 10},
		{name: "three papers", dets: repeat(det("papers on floor", 10, 10, 5), 3), want: 9.1},
		{
			name: "papers and trash",
			dets: append(repeat(det("paper", 10, 10, 5), 3), repeat(det("trash", 40, 40, 5), 2)...),
			want: 8.1,
		},
		{name: "hundred trash items clamp at zero", dets: repeat(det("trash", 10, 10, 5), 100), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, scorer.Score(group(tt.dets)), 1e-9)
		})
	}
}

// TestFloorScorer_Monotone appends floor waste one item at a time and checks
// that the score never rises.
func TestFloorScorer_Monotone(t *testing.T) {
	scorer, err := NewFloorScorer("floor", DefaultFloorConfig())
	require.NoError(t, err)

	var dets []domain.Detection
	prev := scorer.Score(group(dets))
	for i := 0; i < 40; i++ {
		class := "trash"
		if i%2 == 0 {
			class = "paper"
		}
		dets = append(dets, det(class, float64(i*10), 10, 5))
		cur := scorer.Score(group(dets))
		assert.LessOrEqual(t, cur, prev, "score rose after item %d", i)
		assert.GreaterOrEqual(t, cur, 0.0)
		prev = cur
	}
}

func TestFloorScorer_Config(t *testing.T) {
	t.Run("empty name", func(t *testing.T) {
		_, err := NewFloorScorer("", DefaultFloorConfig())
		assert.ErrorIs(t, err, ErrEmptyScorerName)
	})

	t.Run("negative penalty rejected", func(t *testing.T) {
		_, err := NewFloorScorer("floor", FloorConfig{PaperPenalty: -1})
		assert.Error(t, err)
	})

	t.Run("map overlays defaults", func(t *testing.T) {
		scorer, err := CreateFloorScorer("floor", map[string]any{"paper_penalty": 1.0})
		require.NoError(t, err)
		assert.Equal(t, "floor", scorer.Name())
		assert.Equal(t, domain.ScoreFloor, scorer.Category())

		dets := append(repeat(det("paper", 0, 0, 1), 3), det("trash", 0, 0, 1))
		assert.InDelta(t, 6.5, scorer.Score(group(dets)), 1e-9)
	})

	t.Run("yaml parameters", func(t *testing.T) {
		scorer, err := NewFloorScorer("floor", DefaultFloorConfig())
		require.NoError(t, err)

		var node yaml.Node
		require.NoError(t, yaml.Unmarshal([]byte("trash_penalty: 2\n"), &node))
		require.NoError(t, scorer.UnmarshalParameters(node))
		assert.InDelta(t, 8.0, scorer.Score(group([]domain.Detection{det("trash", 0, 0, 1)})), 1e-9)
		assert.NoError(t, scorer.Validate())
	})

	t.Run("invalid yaml parameters keep old config", func(t *testing.T) {
		scorer, err := NewFloorScorer("floor", DefaultFloorConfig())
		require.NoError(t, err)

		var node yaml.Node
		require.NoError(t, yaml.Unmarshal([]byte("trash_penalty: 50\n"), &node))
		assert.Error(t, scorer.UnmarshalParameters(node))
		assert.InDelta(t, 9.5, scorer.Score(group([]domain.Detection{det("trash", 0, 0, 1)})), 1e-9)
	})
}
