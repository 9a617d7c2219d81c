package scorers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/domain"
)

// TestFurnitureScorer_Score covers each of the three furniture penalties in
// isolation and the zero-evidence baseline.
func TestFurnitureScorer_Score(t *testing.T) {
	scorer, err := NewFurnitureScorer("furniture", DefaultFurnitureConfig())
	require.NoError(t, err)

	// A tidy row: three desks with a chair tucked under each one.
	tidyRow := []domain.Detection{
		det("desk", 100, 100, 25), det("desk", 300, 100, 25), det("desk", 500, 100, 25),
		det("chair", 100, 155, 15), det("chair", 300, 155, 15), det("chair", 500, 155, 15),
	}

	tests := []struct {
		name string
		dets []domain.Detection
		want float64
	}{
		{name: "no furniture", dets: nil, want: 10},
		{name: "two chairs without desks", dets: []domain.Detection{det("chair", 0, 0, 10), det("chair", 900, 900, 10)}, want: 10},
		{
			// var_y = 27.5^2 = 756.25, so the arrangement penalty is
			// 756.25/10000*3 = 0.226875.
			name: "tidy row",
			dets: tidyRow,
			want: 10 - 0.226875,
		},
		{
			name: "chair far from the only desk",
			dets: []domain.Detection{det("desk", 100, 100, 25), det("chair", 1000, 1000, 15)},
			want: 6,
		},
		{
			name: "items on desk are capped",
			dets: append([]domain.Detection{box("desk", 0, 0, 200, 100)}, repeat(det("bottle", 50, 50, 5), 8)...),
			want: 7,
		},
		{
			name: "items beside the desk are ignored",
			dets: append([]domain.Detection{box("desk", 0, 0, 200, 100)}, repeat(det("bottle", 500, 500, 5), 8)...),
			want: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scorer.Score(group(tt.dets))
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 10.0)
		})
	}
}

// TestFurnitureScorer_ScatteredFurnitureClamps checks that widely scattered
// furniture saturates the arrangement penalty instead of going negative.
func TestFurnitureScorer_ScatteredFurnitureClamps(t *testing.T) {
	scorer, err := NewFurnitureScorer("furniture", DefaultFurnitureConfig())
	require.NoError(t, err)

	dets := []domain.Detection{
		det("desk", 0, 0, 25),
		det("desk", 2000, 2000, 25),
		det("chair", 4000, 0, 15),
		det("chair", 0, 4000, 15),
	}
	got := scorer.Score(group(dets))

	// Alignment: no chair near a desk, penalty 4. Arrangement saturates at 3.
	assert.InDelta(t, 3.0, got, 1e-9)
}

func TestFurnitureScorer_Config(t *testing.T) {
	_, err := NewFurnitureScorer("", DefaultFurnitureConfig())
	assert.ErrorIs(t, err, ErrEmptyScorerName)

	_, err = CreateFurnitureScorer("furniture", map[string]any{"variance_scale": 0})
	assert.Error(t, err, "zero variance scale must be rejected")

	s, err := CreateFurnitureScorer("furniture", map[string]any{"surface_item_cap": 1})
	require.NoError(t, err)
	dets := append([]domain.Detection{box("desk", 0, 0, 200, 100)}, repeat(det("book", 50, 50, 5), 8)...)
	assert.InDelta(t, 9.0, s.Score(group(dets)), 1e-9)
	assert.NoError(t, s.Validate())
}
