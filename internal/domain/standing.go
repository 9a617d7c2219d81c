package domain

import "strings"

// Trend describes the direction of the latest score relative to the one
// before it.
type Trend string

// Possible trends.
const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// TrendBetween compares latest with previous. A nil previous is stable.
func TrendBetween(latest float64, previous *float64) Trend {
	switch {
	case previous == nil:
		return TrendStable
	case latest > *previous:
		return TrendUp
	case latest < *previous:
		return TrendDown
	default:
		return TrendStable
	}
}

// Classroom is the descriptive data shown next to a standing.
type Classroom struct {
	ID          ClassroomID `json:"id"`
	Name        string      `json:"name"`
	GradeLevel  string      `json:"grade_level"`
	Section     string      `json:"section"`
	Description string      `json:"description,omitempty"`
}

// GradeFilter turns a requested grade into a repository filter. Blank and
// "all" (any case) mean every grade and yield "".
func GradeFilter(grade string) string {
	grade = strings.TrimSpace(grade)
	if strings.EqualFold(grade, "all") {
		return ""
	}
	return grade
}

// ClassroomStanding is one row of the leaderboard. Standings are derived on
// demand from score history and are never stored.
type ClassroomStanding struct {
	ClassroomID   ClassroomID `json:"classroom_id"`
	ClassroomName string      `json:"classroom_name,omitempty"`
	GradeLevel    string      `json:"grade_level,omitempty"`
	Section       string      `json:"section,omitempty"`
	AverageScore  float64     `json:"average_score"`
	LatestScore   float64     `json:"latest_score"`
	// PreviousScore is nil when only one score falls in the window.
	PreviousScore *float64 `json:"previous_score"`
	LatestRating  Rating   `json:"latest_rating"`
	AnalysisCount int      `json:"total_analyses"`
	Rank          int      `json:"rank"`
	Trend         Trend    `json:"trend"`
	Improvement   float64  `json:"improvement"`
}

// WithClassroom copies descriptive fields from c onto the standing.
func (s ClassroomStanding) WithClassroom(c Classroom) ClassroomStanding {
	s.ClassroomName = c.Name
	s.GradeLevel = c.GradeLevel
	s.Section = c.Section
	return s
}
