package aggregators

import (
	"cmp"
	"slices"
	"time"

	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/domain"
)

// week is the span compared by Improvements.
const week = 7 * 24 * time.Hour

// Statistics summarizes every score inside window.
//
// ImprovementRate splits the window at its midpoint and compares the mean
// total of the later half with the earlier half, in percent. An unbounded
// side of the window is replaced by the oldest or newest score. The rate is
// zero when either half is empty or the earlier half averaged zero.
func Statistics(scores []domain.CleanlinessScore, window domain.TimeWindow) domain.Statistics {
	inWindow := chronological(filterWindow(scores, window))

	stats := domain.Statistics{
		RatingDistribution: map[domain.Rating]int{
			domain.RatingExcellent: 0,
			domain.RatingGood:      0,
			domain.RatingFair:      0,
			domain.RatingPoor:      0,
		},
	}
	if len(inWindow) == 0 {
		return stats
	}

	totals := make([]float64, len(inWindow))
	for i, s := range inWindow {
		totals[i] = s.Total
		stats.RatingDistribution[s.Rating]++
	}

	history := GroupByClassroom(inWindow)
	stats.TotalAnalyses = len(inWindow)
	stats.TotalClassrooms = len(history)
	stats.AverageScore = mean(totals)
	stats.MedianScore = median(totals)
	stats.CategoryAverages = averageBreakdown(inWindow)

	if board := BuildLeaderboard(history, domain.Unbounded(), DefaultMinSamples); len(board) > 0 {
		top := board[0]
		stats.TopClassroom = &top
	}

	start, end := window.Start, window.End
	if start.IsZero() {
		start = inWindow[0].AnalyzedAt
	}
	if end.IsZero() {
		end = inWindow[len(inWindow)-1].AnalyzedAt
	}
	mid := start.Add(end.Sub(start) / 2)

	var earlier, recent []float64
	for _, s := range inWindow {
		if s.AnalyzedAt.Before(mid) {
			earlier = append(earlier, s.Total)
		} else {
			recent = append(recent, s.Total)
		}
	}
	if len(earlier) > 0 && len(recent) > 0 {
		if base := mean(earlier); base != 0 {
			stats.ImprovementRate = (mean(recent) - base) / base * 100
		}
	}
	return stats
}

// Trends returns one point per calendar day in loc that has at least one
// score inside window, oldest day first.
func Trends(scores []domain.CleanlinessScore, window domain.TimeWindow, loc *time.Location) []domain.TrendPoint {
	if loc == nil {
		loc = time.UTC
	}

	byDay := make(map[string][]domain.CleanlinessScore)
	for _, s := range filterWindow(scores, window) {
		day := s.AnalyzedAt.In(loc).Format(time.DateOnly)
		byDay[day] = append(byDay[day], s)
	}

	points := make([]domain.TrendPoint, 0, len(byDay))
	for day, dayScores := range byDay {
		totals := make([]float64, len(dayScores))
		for i, s := range dayScores {
			totals[i] = s.Total
		}
		points = append(points, domain.TrendPoint{
			Date:      day,
			Average:   mean(totals),
			Breakdown: averageBreakdown(dayScores),
			Count:     len(dayScores),
		})
	}
	slices.SortFunc(points, func(a, b domain.TrendPoint) int { return cmp.Compare(a.Date, b.Date) })
	return points
}

// Improvements compares, for every classroom in history, the mean total of
// the seven days starting at its first score with the mean total of the
// seven days ending at now. Results are ordered by classroom ID.
func Improvements(history map[domain.ClassroomID][]domain.CleanlinessScore, now time.Time) []domain.Improvement {
	out := make([]domain.Improvement, 0, len(history))
	for id, scores := range history {
		if len(scores) == 0 {
			continue
		}
		ordered := chronological(slices.Clone(scores))
		first := ordered[0].AnalyzedAt

		var all, firstWeek, lastWeek []float64
		for _, s := range ordered {
			all = append(all, s.Total)
			if s.AnalyzedAt.Before(first.Add(week)) {
				firstWeek = append(firstWeek, s.Total)
			}
			if !s.AnalyzedAt.Before(now.Add(-week)) && !s.AnalyzedAt.After(now) {
				lastWeek = append(lastWeek, s.Total)
			}
		}

		imp := domain.Improvement{
			ClassroomID:      id,
			FirstWeekAverage: mean(firstWeek),
			OverallAverage:   mean(all),
			TotalAnalyses:    len(ordered),
		}
		if len(lastWeek) > 0 {
			last := mean(lastWeek)
			points := last - imp.FirstWeekAverage
			imp.LastWeekAverage = &last
			imp.ImprovementPoints = &points
			if imp.FirstWeekAverage != 0 {
				pct := points / imp.FirstWeekAverage * 100
				imp.ImprovementPercent = &pct
			}
		}
		out = append(out, imp)
	}
	slices.SortFunc(out, func(a, b domain.Improvement) int { return cmp.Compare(a.ClassroomID, b.ClassroomID) })
	return out
}

// Compare summarizes each classroom's scores inside window. Classrooms with
// no scores in the window are omitted. Results are ordered like the
// leaderboard: average descending, then count descending, then ID.
func Compare(history map[domain.ClassroomID][]domain.CleanlinessScore, window domain.TimeWindow) []domain.Comparison {
	out := make([]domain.Comparison, 0, len(history))
	for id, scores := range history {
		inWindow := filterWindow(scores, window)
		if len(inWindow) == 0 {
			continue
		}
		totals := make([]float64, len(inWindow))
		for i, s := range inWindow {
			totals[i] = s.Total
		}
		out = append(out, domain.Comparison{
			ClassroomID:      id,
			AverageScore:     mean(totals),
			CategoryAverages: averageBreakdown(inWindow),
			BestScore:        slices.Max(totals),
			WorstScore:       slices.Min(totals),
			AnalysisCount:    len(inWindow),
		})
	}
	slices.SortFunc(out, func(a, b domain.Comparison) int {
		if c := cmp.Compare(b.AverageScore, a.AverageScore); c != 0 {
			return c
		}
		if c := cmp.Compare(b.AnalysisCount, a.AnalysisCount); c != 0 {
			return c
		}
		return cmp.Compare(a.ClassroomID, b.ClassroomID)
	})
	return out
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func averageBreakdown(scores []domain.CleanlinessScore) domain.ScoreBreakdown {
	var b domain.ScoreBreakdown
	if len(scores) == 0 {
		return b
	}
	for _, s := range scores {
		b.Floor += s.Breakdown.Floor
		b.Furniture += s.Breakdown.Furniture
		b.Trash += s.Breakdown.Trash
		b.Wall += s.Breakdown.Wall
		b.Clutter += s.Breakdown.Clutter
	}
	n := float64(len(scores))
	b.Floor /= n
	b.Furniture /= n
	b.Trash /= n
	b.Wall /= n
	b.Clutter /= n
	return b
}
