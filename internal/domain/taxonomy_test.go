package domain

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestTaxonomy_Categorize verifies exact, normalized and fuzzy label lookups
// against the default label table.
func TestTaxonomy_Categorize(t *testing.T) {
	tax := DefaultTaxonomy()

	tests := []struct {
		name  string
		label string
		want  DetectionCategory
	}{
		{name: "exact coco label", label: "chair", want: CategoryChair},
		{name: "owlvit phrase", label: "papers on floor", want: CategoryPaper},
		{name: "underscore separated", label: "trash_bin", want: CategoryBin},
		{name: "mixed case and hyphen", label: "Garbage-Can", want: CategoryBin},
		{name: "extra whitespace", label: "  water   bottle ", want: CategoryBottle},
		{name: "plural", label: "chairs", want: CategoryChair},
		{name: "plural inside a phrase", label: "Water_Bottles", want: CategoryBottle},
		{name: "es plural", label: "trash bins", want: CategoryBin},
		{name: "plural of a word ending in e", label: "suitcases", want: CategoryBag},
		{name: "swapped letters", label: "bottel", want: CategoryBottle},
		{name: "long misspelling", label: "backpak", want: CategoryBag},
		{name: "short label is not fuzzy matched", label: "cap", want: CategoryUnknown},
		{name: "bare bin", label: "bin", want: CategoryBin},
		{name: "waste bin", label: "waste_bin", want: CategoryBin},
		{name: "bare waste", label: "waste", want: CategoryTrash},
		{name: "bare board", label: "board", want: CategoryBoard},
		{name: "cable is not a table", label: "cable", want: CategoryUnknown},
		{name: "disk is not a desk", label: "disk", want: CategoryUnknown},
		{name: "tablet is not a table", label: "tablet", want: CategoryUnknown},
		{name: "unrelated label", label: "elephant", want: CategoryUnknown},
		{name: "empty label", label: "", want: CategoryUnknown},
		{name: "dining table counts as desk", label: "dining table", want: CategoryDesk},
		{name: "bulletin board is a poster not a board", label: "bulletin board", want: CategoryPoster},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tax.Categorize(tt.label))
		})
	}
}

// TestTaxonomy_TrashBinIsOnlyABin guards against a bin being counted as
// trash because its label contains the word "trash".
func TestTaxonomy_TrashBinIsOnlyABin(t *testing.T) {
	tax := DefaultTaxonomy()
	groups := tax.Group([]Detection{{Class: "trash_bin", Confidence: 0.9}})

	assert.Len(t, groups[CategoryBin], 1)
	assert.Empty(t, groups[CategoryTrash])
}

// TestTaxonomy_FuzzyDisabled verifies that a negative distance turns off
// plural and edit-distance matching.
func TestTaxonomy_FuzzyDisabled(t *testing.T) {
	tax := NewTaxonomy(map[string]DetectionCategory{"chair": CategoryChair}, -1)

	assert.Equal(t, CategoryChair, tax.Categorize("CHAIR"))
	assert.Equal(t, CategoryUnknown, tax.Categorize("chairs"))
}

// TestTaxonomy_Group drops unknown labels and keeps input order per group.
func TestTaxonomy_Group(t *testing.T) {
	tax := DefaultTaxonomy()
	dets := []Detection{
		{Class: "paper", Confidence: 0.5},
		{Class: "spaceship", Confidence: 0.9},
		{Class: "papers", Confidence: 0.7},
		{Class: "desk", Confidence: 0.8},
	}

	groups := tax.Group(dets)

	assert.Len(t, groups, 2)
	assert.Equal(t, []Detection{dets[0], dets[2]}, groups[CategoryPaper])
	assert.Equal(t, []Detection{dets[3]}, groups[CategoryDesk])
}

// TestTaxonomy_ConcurrentUse exercises Categorize from many goroutines.
func TestTaxonomy_ConcurrentUse(t *testing.T) {
	tax := DefaultTaxonomy()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, CategoryBin, tax.Categorize("Trash_Bin"))
			assert.Equal(t, CategoryChair, tax.Categorize("chairs"))
		}()
	}
	wg.Wait()
}

func TestDetectionCategory_String(t *testing.T) {
	assert.Equal(t, "wall_mark", CategoryWallMark.String())
	assert.Equal(t, "unknown", DetectionCategory(99).String())

	c, ok := ParseDetectionCategory("bottle")
	assert.True(t, ok)
	assert.Equal(t, CategoryBottle, c)

	_, ok = ParseDetectionCategory("nope")
	assert.False(t, ok)

	for c := CategoryUnknown; c <= CategoryMisc; c++ {
		got, ok := ParseDetectionCategory(c.String())
		assert.True(t, ok, c.String())
		assert.Equal(t, c, got)
	}
}

func TestSingularize(t *testing.T) {
	tests := map[string]string{
		"chairs":          "chair",
		"boxes":           "box",
		"benches":         "bench",
		"glasses":         "glass",
		"bodies":          "body",
		"papers on floor": "paper on floor",
		"glass":           "glass",
		"bus":             "bus",
	}
	for in, want := range tests {
		assert.Equal(t, want, singularize(in), in)
	}
}

func TestEditDistance_AdjacentSwap(t *testing.T) {
	assert.Equal(t, 1, editDistance("bottel", "bottle"))
	assert.Equal(t, 1, editDistance("hcair", "chair"))
	assert.Equal(t, 2, editDistance("bettlo", "bottle"))
	assert.Equal(t, 0, editDistance("desk", "desk"))
}
