package application

import (
	"context"
	"fmt"
	"time"

	"github.com/coffeescripttech-maker/classroom-cleanliness/infrastructure/aggregators"
	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/domain"
	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/ports"
)

// Trend query bounds in days.
const (
	DefaultTrendDays = 30
	MaxTrendDays     = 365
)

// ReportService computes statistics over stored score history.
type ReportService struct {
	scores     ports.ScoreRepository
	classrooms ports.ClassroomRepository
	now        func() time.Time
	loc        *time.Location
}

// NewReportService creates the service. Trends are bucketed by calendar day
// in loc; nil means UTC.
func NewReportService(
	scores ports.ScoreRepository,
	classrooms ports.ClassroomRepository,
	now func() time.Time,
	loc *time.Location,
) *ReportService {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &ReportService{scores: scores, classrooms: classrooms, now: now, loc: loc}
}

// Statistics summarizes every analysis in the named time range.
func (s *ReportService) Statistics(ctx context.Context, auth domain.AuthContext, timeRange string) (*domain.Statistics, error) {
	if err := auth.RequireAuthenticated(); err != nil {
		return nil, err
	}
	period, err := domain.ParsePeriod(timeRange)
	if err != nil {
		return nil, err
	}

	scores, err := s.scores.Find(ctx, ports.ScoreQuery{})
	if err != nil {
		return nil, err
	}
	stats := aggregators.Statistics(scores, period.Window(s.now()))

	if stats.TopClassroom != nil {
		c, err := s.classrooms.Get(ctx, stats.TopClassroom.ClassroomID)
		if err == nil {
			top := stats.TopClassroom.WithClassroom(c)
			stats.TopClassroom = &top
		}
	}
	return &stats, nil
}

// Trends returns daily means over the last days days, optionally for one
// classroom. days of zero means DefaultTrendDays.
func (s *ReportService) Trends(
	ctx context.Context,
	auth domain.AuthContext,
	days int,
	classroomID domain.ClassroomID,
) ([]domain.TrendPoint, error) {
	if err := auth.RequireAuthenticated(); err != nil {
		return nil, err
	}
	if days == 0 {
		days = DefaultTrendDays
	}
	if days < 0 || days > MaxTrendDays {
		return nil, fmt.Errorf("%w: days must be between 1 and %d", domain.ErrInvalidInput, MaxTrendDays)
	}

	now := s.now()
	window := domain.TimeWindow{Start: now.AddDate(0, 0, -days), End: now}
	scores, err := s.scores.Find(ctx, ports.ScoreQuery{ClassroomID: classroomID})
	if err != nil {
		return nil, err
	}
	return aggregators.Trends(scores, window, s.loc), nil
}

// Improvements compares first and last week averages for every classroom,
// or for one classroom when classroomID is set.
func (s *ReportService) Improvements(
	ctx context.Context,
	auth domain.AuthContext,
	classroomID domain.ClassroomID,
) ([]domain.Improvement, error) {
	if err := auth.RequireAuthenticated(); err != nil {
		return nil, err
	}

	scores, err := s.scores.Find(ctx, ports.ScoreQuery{ClassroomID: classroomID})
	if err != nil {
		return nil, err
	}
	out := aggregators.Improvements(aggregators.GroupByClassroom(scores), s.now())

	names, err := classroomIndex(ctx, s.classrooms, "")
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].ClassroomName = names[out[i].ClassroomID].Name
	}
	return out, nil
}

// Compare summarizes the given classrooms side by side over the period.
// An empty ids compares every classroom.
func (s *ReportService) Compare(
	ctx context.Context,
	auth domain.AuthContext,
	timeRange string,
	ids []domain.ClassroomID,
) ([]domain.Comparison, error) {
	if err := auth.RequireAuthenticated(); err != nil {
		return nil, err
	}
	period, err := domain.ParsePeriod(timeRange)
	if err != nil {
		return nil, err
	}

	scores, err := s.scores.Find(ctx, ports.ScoreQuery{})
	if err != nil {
		return nil, err
	}
	history := aggregators.GroupByClassroom(scores)
	if len(ids) > 0 {
		wanted := make(map[domain.ClassroomID][]domain.CleanlinessScore, len(ids))
		for _, id := range ids {
			wanted[id] = history[id]
		}
		history = wanted
	}
	out := aggregators.Compare(history, period.Window(s.now()))

	classrooms, err := classroomIndex(ctx, s.classrooms, "")
	if err != nil {
		return nil, err
	}
	for i := range out {
		c := classrooms[out[i].ClassroomID]
		out[i].ClassroomName = c.Name
		out[i].GradeLevel = c.GradeLevel
	}
	return out, nil
}

// ClassroomHistory returns a classroom's scores, newest first. A limit of
// zero returns every score.
func (s *ReportService) ClassroomHistory(
	ctx context.Context,
	auth domain.AuthContext,
	classroomID domain.ClassroomID,
	limit int,
) ([]domain.CleanlinessScore, error) {
	if err := auth.RequireAuthenticated(); err != nil {
		return nil, err
	}
	if limit < 0 {
		return nil, fmt.Errorf("%w: negative limit %d", domain.ErrInvalidInput, limit)
	}
	if _, err := s.classrooms.Get(ctx, classroomID); err != nil {
		return nil, err
	}
	return s.scores.Find(ctx, ports.ScoreQuery{ClassroomID: classroomID, Limit: limit})
}
