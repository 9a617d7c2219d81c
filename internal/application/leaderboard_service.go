package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/coffeescripttech-maker/classroom-cleanliness/infrastructure/aggregators"
	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/domain"
	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/ports"
)

// LeaderboardQuery selects a leaderboard. Empty fields fall back to the
// configured defaults.
type LeaderboardQuery struct {
	Period     string
	GradeLevel string
	Limit      int
}

// Leaderboard is a ranked list of classrooms for one period.
type Leaderboard struct {
	Period      domain.Period              `json:"period"`
	GradeLevel  string                     `json:"grade_level,omitempty"`
	Window      domain.TimeWindow          `json:"window"`
	Standings   []domain.ClassroomStanding `json:"leaderboard"`
	GeneratedAt time.Time                  `json:"generated_at"`
}

// LeaderboardService ranks classrooms from stored score history.
type LeaderboardService struct {
	scores     ports.ScoreRepository
	classrooms ports.ClassroomRepository
	now        func() time.Time

	mu  sync.RWMutex
	cfg LeaderboardConfig
}

// NewLeaderboardService creates the service. now defaults to time.Now.
func NewLeaderboardService(
	scores ports.ScoreRepository,
	classrooms ports.ClassroomRepository,
	cfg LeaderboardConfig,
	now func() time.Time,
) *LeaderboardService {
	if now == nil {
		now = time.Now
	}
	return &LeaderboardService{scores: scores, classrooms: classrooms, cfg: cfg, now: now}
}

// SetConfig replaces the leaderboard defaults. It is safe to call while
// requests are being served.
func (s *LeaderboardService) SetConfig(cfg LeaderboardConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
}

func (s *LeaderboardService) config() LeaderboardConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Leaderboard ranks every classroom with enough scores in the period.
// Standings carry the classroom's name, grade and section when the
// classroom is known.
func (s *LeaderboardService) Leaderboard(ctx context.Context, auth domain.AuthContext, q LeaderboardQuery) (*Leaderboard, error) {
	if err := auth.RequireAuthenticated(); err != nil {
		return nil, err
	}
	cfg := s.config()
	grade := domain.GradeFilter(q.GradeLevel)

	periodName := q.Period
	if periodName == "" {
		periodName = cfg.DefaultPeriod
	}
	period, err := domain.ParsePeriod(periodName)
	if err != nil {
		return nil, err
	}
	limit := q.Limit
	if limit < 0 {
		return nil, fmt.Errorf("%w: negative limit %d", domain.ErrInvalidInput, limit)
	}
	if limit == 0 {
		limit = cfg.DefaultLimit
	}

	now := s.now()
	window := period.Window(now)

	// The window is applied in memory so trends see the whole period.
	scores, err := s.scores.Find(ctx, ports.ScoreQuery{GradeLevel: grade})
	if err != nil {
		return nil, err
	}
	standings := aggregators.BuildLeaderboard(aggregators.GroupByClassroom(scores), window, cfg.MinSamples)

	classrooms, err := classroomIndex(ctx, s.classrooms, grade)
	if err != nil {
		return nil, err
	}
	for i, st := range standings {
		if c, ok := classrooms[st.ClassroomID]; ok {
			standings[i] = st.WithClassroom(c)
		}
	}
	if limit > 0 && len(standings) > limit {
		standings = standings[:limit]
	}

	return &Leaderboard{
		Period:      period,
		GradeLevel:  grade,
		Window:      window,
		Standings:   standings,
		GeneratedAt: now,
	}, nil
}

func classroomIndex(ctx context.Context, repo ports.ClassroomRepository, gradeLevel string) (map[domain.ClassroomID]domain.Classroom, error) {
	list, err := repo.List(ctx, gradeLevel)
	if err != nil {
		return nil, err
	}
	index := make(map[domain.ClassroomID]domain.Classroom, len(list))
	for _, c := range list {
		index[c.ID] = c
	}
	return index, nil
}
