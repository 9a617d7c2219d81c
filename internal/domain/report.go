package domain

// Statistics summarizes every analysis in a window.
type Statistics struct {
	TotalAnalyses      int                `json:"total_analyses"`
	TotalClassrooms    int                `json:"total_classrooms"`
	AverageScore       float64            `json:"average_score"`
	MedianScore        float64            `json:"median_score"`
	CategoryAverages   ScoreBreakdown     `json:"category_averages"`
	RatingDistribution map[Rating]int     `json:"rating_distribution"`
	TopClassroom       *ClassroomStanding `json:"top_classroom"`
	// ImprovementRate compares the mean total of the later half of the
	// window with the earlier half, as a percentage of the earlier half.
	ImprovementRate float64 `json:"improvement_rate"`
}

// TrendPoint is the mean of all analyses recorded on one calendar day.
type TrendPoint struct {
	Date      string         `json:"date"`
	Average   float64        `json:"average_score"`
	Breakdown ScoreBreakdown `json:"category_averages"`
	Count     int            `json:"analysis_count"`
}

// Improvement compares a classroom's first week of analyses with its most
// recent week. The last-week fields are nil when nothing was analyzed in the
// last seven days.
type Improvement struct {
	ClassroomID       ClassroomID `json:"classroom_id"`
	ClassroomName     string      `json:"classroom_name,omitempty"`
	FirstWeekAverage  float64     `json:"first_week_average"`
	LastWeekAverage   *float64    `json:"last_week_average"`
	OverallAverage    float64     `json:"overall_average"`
	ImprovementPoints *float64    `json:"improvement_points"`
	// ImprovementPercent is also nil when the first week averaged zero.
	ImprovementPercent *float64 `json:"improvement_percent"`
	TotalAnalyses      int      `json:"total_analyses"`
}

// Comparison is one classroom's summary over a window, used to compare
// classrooms side by side.
type Comparison struct {
	ClassroomID      ClassroomID    `json:"classroom_id"`
	ClassroomName    string         `json:"classroom_name,omitempty"`
	GradeLevel       string         `json:"grade_level,omitempty"`
	AverageScore     float64        `json:"average_score"`
	CategoryAverages ScoreBreakdown `json:"category_averages"`
	BestScore        float64        `json:"best_score"`
	WorstScore       float64        `json:"worst_score"`
	AnalysisCount    int            `json:"analysis_count"`
}
