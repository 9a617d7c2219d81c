// Package aggregators derives leaderboards and reports from score history.
// Every function here is pure: it reads the history it is given, never
// modifies it, and returns the same output for the same input regardless of
// map iteration order.
package aggregators

import (
	"cmp"
	"slices"

	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/domain"
)

// DefaultMinSamples is the smallest number of in-window scores a classroom
// needs to appear on the leaderboard.
const DefaultMinSamples = 1

// GroupByClassroom splits a flat list of scores into per-classroom histories.
func GroupByClassroom(scores []domain.CleanlinessScore) map[domain.ClassroomID][]domain.CleanlinessScore {
	history := make(map[domain.ClassroomID][]domain.CleanlinessScore)
	for _, s := range scores {
		history[s.ClassroomID] = append(history[s.ClassroomID], s)
	}
	return history
}

// BuildLeaderboard ranks classrooms by their average total inside window.
//
// Scores outside the window are ignored before anything is computed.
// Classrooms with fewer than minSamples remaining scores are left out; a
// minSamples below 1 is treated as 1. Standings are ordered by average
// descending, then analysis count descending, then classroom ID ascending,
// and ranked 1..n in that order with no shared ranks.
func BuildLeaderboard(
	history map[domain.ClassroomID][]domain.CleanlinessScore,
	window domain.TimeWindow,
	minSamples int,
) []domain.ClassroomStanding {
	if minSamples < DefaultMinSamples {
		minSamples = DefaultMinSamples
	}

	standings := make([]domain.ClassroomStanding, 0, len(history))
	for id, scores := range history {
		inWindow := chronological(filterWindow(scores, window))
		if len(inWindow) < minSamples {
			continue
		}
		standings = append(standings, standingFor(id, inWindow))
	}

	slices.SortFunc(standings, compareStandings)
	for i := range standings {
		standings[i].Rank = i + 1
	}
	return standings
}

// standingFor summarizes a non-empty, chronologically ordered history.
func standingFor(id domain.ClassroomID, scores []domain.CleanlinessScore) domain.ClassroomStanding {
	var sum float64
	for _, s := range scores {
		sum += s.Total
	}

	latest := scores[len(scores)-1]
	st := domain.ClassroomStanding{
		ClassroomID:   id,
		AverageScore:  sum / float64(len(scores)),
		LatestScore:   latest.Total,
		LatestRating:  latest.Rating,
		AnalysisCount: len(scores),
	}
	if len(scores) > 1 {
		prev := scores[len(scores)-2].Total
		st.PreviousScore = &prev
		st.Improvement = latest.Total - prev
	}
	st.Trend = domain.TrendBetween(st.LatestScore, st.PreviousScore)
	return st
}

func compareStandings(a, b domain.ClassroomStanding) int {
	if c := cmp.Compare(b.AverageScore, a.AverageScore); c != 0 {
		return c
	}
	if c := cmp.Compare(b.AnalysisCount, a.AnalysisCount); c != 0 {
		return c
	}
	return cmp.Compare(a.ClassroomID, b.ClassroomID)
}

// filterWindow returns the scores whose AnalyzedAt lies in window.
func filterWindow(scores []domain.CleanlinessScore, window domain.TimeWindow) []domain.CleanlinessScore {
	out := make([]domain.CleanlinessScore, 0, len(scores))
	for _, s := range scores {
		if window.Contains(s.AnalyzedAt) {
			out = append(out, s)
		}
	}
	return out
}

// chronological sorts scores oldest first in place and returns them. Equal
// timestamps are ordered by score ID.
func chronological(scores []domain.CleanlinessScore) []domain.CleanlinessScore {
	slices.SortStableFunc(scores, func(a, b domain.CleanlinessScore) int {
		if c := a.AnalyzedAt.Compare(b.AnalyzedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return scores
}
