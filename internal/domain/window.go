package domain

import (
	"fmt"
	"strings"
	"time"
)

// Period is a named, relative time range for leaderboards and reports.
type Period string

// Supported periods.
const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
	PeriodAll   Period = "all"
)

// ParsePeriod validates a period name. The empty string means PeriodAll.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PeriodAll, nil
	case PeriodToday, PeriodWeek, PeriodMonth, PeriodYear, PeriodAll:
		return p, nil
	default:
		return "", fmt.Errorf("%w: unknown period %q", ErrInvalidInput, s)
	}
}

// TimeWindow is a closed time interval. A zero Start or End leaves that side
// unbounded.
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Unbounded returns a window that contains every instant.
func Unbounded() TimeWindow { return TimeWindow{} }

// Contains reports whether t lies inside the window, bounds included.
func (w TimeWindow) Contains(t time.Time) bool {
	if !w.Start.IsZero() && t.Before(w.Start) {
		return false
	}
	if !w.End.IsZero() && t.After(w.End) {
		return false
	}
	return true
}

// Window resolves the period relative to now. "today" starts at local
// midnight; "week", "month" and "year" reach back 7, 30 and 365 days.
func (p Period) Window(now time.Time) TimeWindow {
	switch p {
	case PeriodToday:
		y, m, d := now.Date()
		return TimeWindow{Start: time.Date(y, m, d, 0, 0, 0, 0, now.Location()), End: now}
	case PeriodWeek:
		return TimeWindow{Start: now.AddDate(0, 0, -7), End: now}
	case PeriodMonth:
		return TimeWindow{Start: now.AddDate(0, 0, -30), End: now}
	case PeriodYear:
		return TimeWindow{Start: now.AddDate(-1, 0, 0), End: now}
	default:
		return Unbounded()
	}
}
