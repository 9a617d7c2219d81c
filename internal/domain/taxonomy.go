package domain

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
)

// DetectionCategory is the semantic bucket a detection label belongs to.
// Every label maps to exactly one category.
type DetectionCategory int

// Supported detection categories.
const (
	CategoryUnknown DetectionCategory = iota
	CategoryPaper
	CategoryTrash
	CategoryBin
	CategoryChair
	CategoryDesk
	CategoryBoard
	CategoryPoster
	CategoryWallMark
	CategoryBag
	CategoryBottle
	CategoryBook
	CategoryMisc
)

var categoryNames = map[DetectionCategory]string{
	CategoryUnknown:  "unknown",
	CategoryPaper:    "paper",
	CategoryTrash:    "trash",
	CategoryBin:      "bin",
	CategoryChair:    "chair",
	CategoryDesk:     "desk",
	CategoryBoard:    "board",
	CategoryPoster:   "poster",
	CategoryWallMark: "wall_mark",
	CategoryBag:      "bag",
	CategoryBottle:   "bottle",
	CategoryBook:     "book",
	CategoryMisc:     "misc",
}

// String returns the snake_case name of the category.
func (c DetectionCategory) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "unknown"
}

var categoriesByName = func() map[string]DetectionCategory {
	m := make(map[string]DetectionCategory, len(categoryNames))
	for c, n := range categoryNames {
		m[n] = c
	}
	return m
}()

// ParseDetectionCategory maps a category name back to its value.
func ParseDetectionCategory(name string) (DetectionCategory, bool) {
	c, ok := categoriesByName[name]
	return c, ok
}

// DefaultLabelCategories is the label table used when no override is
// configured. Labels cover the COCO classes emitted by YOLO and the
// open-vocabulary phrases queried through OWL-ViT.
var DefaultLabelCategories = map[string]DetectionCategory{
	"paper":                    CategoryPaper,
	"papers":                   CategoryPaper,
	"paper on floor":           CategoryPaper,
	"papers on floor":          CategoryPaper,
	"trash":                    CategoryTrash,
	"trash on floor":           CategoryTrash,
	"garbage":                  CategoryTrash,
	"litter":                   CategoryTrash,
	"plastic wrapper":          CategoryTrash,
	"plastic wrapper on floor": CategoryTrash,
	"wrapper":                  CategoryTrash,
	"dirt on floor":            CategoryTrash,
	"debris on floor":          CategoryTrash,
	"waste":                    CategoryTrash,
	"rubbish":                  CategoryTrash,
	"bin":                      CategoryBin,
	"trash bin":                CategoryBin,
	"waste bin":                CategoryBin,
	"garbage bin":              CategoryBin,
	"rubbish bin":              CategoryBin,
	"trash can":                CategoryBin,
	"garbage can":              CategoryBin,
	"waste basket":             CategoryBin,
	"wastebasket":              CategoryBin,
	"recycling bin":            CategoryBin,
	"chair":                    CategoryChair,
	"desk":                     CategoryDesk,
	"table":                    CategoryDesk,
	"dining table":             CategoryDesk,
	"board":                    CategoryBoard,
	"whiteboard":               CategoryBoard,
	"white board":              CategoryBoard,
	"blackboard":               CategoryBoard,
	"chalkboard":               CategoryBoard,
	"poster":                   CategoryPoster,
	"poster on wall":           CategoryPoster,
	"bulletin board":           CategoryPoster,
	"wall mark":                CategoryWallMark,
	"wall stain":               CategoryWallMark,
	"stain on wall":            CategoryWallMark,
	"writing on wall":          CategoryWallMark,
	"graffiti":                 CategoryWallMark,
	"backpack":                 CategoryBag,
	"backpack on floor":        CategoryBag,
	"bag":                      CategoryBag,
	"bags on floor":            CategoryBag,
	"bag on desk":              CategoryBag,
	"handbag":                  CategoryBag,
	"suitcase":                 CategoryBag,
	"bottle":                   CategoryBottle,
	"water bottle":             CategoryBottle,
	"bottle on desk":           CategoryBottle,
	"cup":                      CategoryBottle,
	"book":                     CategoryBook,
	"notebook":                 CategoryBook,
	"notebook on desk":         CategoryBook,
	"folder":                   CategoryBook,
	"folder on desk":           CategoryBook,
	"papers on desk":           CategoryBook,
	"cell phone":               CategoryMisc,
	"umbrella":                 CategoryMisc,
	"lunch box":                CategoryMisc,
	"jacket on chair":          CategoryMisc,
	"coat hanging":             CategoryMisc,
	"ballpen on desk":          CategoryMisc,
	"ballpen":                  CategoryMisc,
}

// DefaultMaxLabelDistance is the largest edit distance at which an unlisted
// label is still matched to a table entry.
const DefaultMaxLabelDistance = 2

// minFuzzyLabelLen is the shortest label that is matched by edit distance.
// Below it one edit too often lands on a different object: "cable" and
// "disk" are one edit from "table" and "desk".
const minFuzzyLabelLen = 6

// Taxonomy resolves detector labels to categories. Lookup order:
//
//  1. the normalized label exactly
//  2. the label with every word singularized, against singularized keys
//  3. the closest key within maxDistance edits, for labels of at least
//     minFuzzyLabelLen runes that are not a prefix extension of the key
//
// Labels that match nothing are CategoryUnknown. A Taxonomy is immutable
// after construction and safe for concurrent use.
type Taxonomy struct {
	labels      map[string]DetectionCategory
	singular    map[string]DetectionCategory
	keys        []string
	maxDistance int
}

// NewTaxonomy builds a taxonomy from a label table. Keys are normalized the
// same way lookups are, so "Trash_Bin" and "trash bin" are one entry.
// A negative maxDistance disables everything but exact matching.
func NewTaxonomy(labels map[string]DetectionCategory, maxDistance int) *Taxonomy {
	t := &Taxonomy{
		labels:      make(map[string]DetectionCategory, len(labels)),
		singular:    make(map[string]DetectionCategory, len(labels)),
		maxDistance: maxDistance,
	}
	for label, cat := range labels {
		t.labels[NormalizeLabel(label)] = cat
	}
	t.keys = make([]string, 0, len(t.labels))
	for k := range t.labels {
		t.keys = append(t.keys, k)
	}
	sort.Strings(t.keys)
	for _, k := range t.keys {
		if _, ok := t.singular[singularize(k)]; !ok {
			t.singular[singularize(k)] = t.labels[k]
		}
	}
	return t
}

// DefaultTaxonomy returns a taxonomy over DefaultLabelCategories.
func DefaultTaxonomy() *Taxonomy {
	return NewTaxonomy(DefaultLabelCategories, DefaultMaxLabelDistance)
}

// Categorize returns the category for a raw detector label.
func (t *Taxonomy) Categorize(label string) DetectionCategory {
	norm := NormalizeLabel(label)
	if norm == "" {
		return CategoryUnknown
	}
	if cat, ok := t.labels[norm]; ok {
		return cat
	}
	if t.maxDistance < 0 {
		return CategoryUnknown
	}
	if cat, ok := t.singular[singularize(norm)]; ok {
		return cat
	}
	if utf8.RuneCountInString(norm) < minFuzzyLabelLen {
		return CategoryUnknown
	}

	best, bestDist := "", t.maxDistance+1
	for _, key := range t.keys {
		if strings.HasPrefix(norm, key) || strings.HasPrefix(key, norm) {
			continue
		}
		if d := editDistance(norm, key); d < bestDist {
			best, bestDist = key, d
		}
	}
	if best == "" {
		return CategoryUnknown
	}
	return t.labels[best]
}

// editDistance is the Levenshtein distance, except that a single swap of
// adjacent runes ("bottel") counts as one edit.
func editDistance(a, b string) int {
	d := levenshtein.ComputeDistance(a, b)
	if d != 2 {
		return d
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) != len(rb) {
		return d
	}
	for i := 0; i+1 < len(ra); i++ {
		if ra[i] == rb[i] {
			continue
		}
		if ra[i] == rb[i+1] && ra[i+1] == rb[i] && string(ra[i+2:]) == string(rb[i+2:]) {
			return 1
		}
		return d
	}
	return d
}

// singularize strips English plural endings from every word of a
// normalized label: "chairs" becomes "chair", "boxes" "box" and
// "bodies" "body". Keys go through it too, so an imperfect stem still
// matches.
func singularize(label string) string {
	words := strings.Fields(label)
	for i, w := range words {
		switch {
		case len(w) > 4 && strings.HasSuffix(w, "ies"):
			words[i] = w[:len(w)-3] + "y"
		case len(w) > 3 && (strings.HasSuffix(w, "sses") || strings.HasSuffix(w, "xes") ||
			strings.HasSuffix(w, "ches") || strings.HasSuffix(w, "shes")):
			words[i] = w[:len(w)-2]
		case len(w) > 3 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss"):
			words[i] = w[:len(w)-1]
		}
	}
	return strings.Join(words, " ")
}

// Group partitions detections by category, preserving input order inside
// each group. Unknown detections are dropped.
func (t *Taxonomy) Group(detections []Detection) map[DetectionCategory][]Detection {
	groups := make(map[DetectionCategory][]Detection)
	for _, d := range detections {
		cat := t.Categorize(d.Class)
		if cat == CategoryUnknown {
			continue
		}
		groups[cat] = append(groups[cat], d)
	}
	return groups
}

// NormalizeLabel case-folds a label, turns underscores and hyphens into
// spaces and collapses runs of whitespace.
func NormalizeLabel(label string) string {
	s := cases.Fold().String(label)
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
