package testutils

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/domain"
	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/ports"
)

var (
	_ ports.ScoreRepository     = (*MemoryStore)(nil)
	_ ports.ClassroomRepository = (*MemoryClassrooms)(nil)
	_ ports.UserRepository      = (*MemoryUsers)(nil)
)

// MemoryStore is an in-memory ports.ScoreRepository. Grade filtering needs
// the classroom table, so it reads from Classrooms when set.
type MemoryStore struct {
	mu         sync.Mutex
	scores     []domain.CleanlinessScore
	Classrooms *MemoryClassrooms
	// SaveErr and FindErr, when set, are returned by Save and Find.
	SaveErr error
	FindErr error
}

// NewMemoryStore creates an empty store reading grades from classrooms.
func NewMemoryStore(classrooms *MemoryClassrooms) *MemoryStore {
	return &MemoryStore{Classrooms: classrooms}
}

func (s *MemoryStore) Save(_ context.Context, score domain.CleanlinessScore) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	for _, existing := range s.scores {
		if existing.ID == score.ID {
			return ports.NewStoreError("cleanliness_score", "save",
				fmt.Errorf("%w: score %s", ports.ErrDuplicateRecord, score.ID))
		}
	}
	s.scores = append(s.scores, score)
	return nil
}

func (s *MemoryStore) Find(ctx context.Context, q ports.ScoreQuery) ([]domain.CleanlinessScore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FindErr != nil {
		return nil, s.FindErr
	}

	var grades map[domain.ClassroomID]string
	if q.GradeLevel != "" && s.Classrooms != nil {
		grades = s.Classrooms.grades()
	}

	out := make([]domain.CleanlinessScore, 0, len(s.scores))
	for _, sc := range s.scores {
		if q.ClassroomID != "" && sc.ClassroomID != q.ClassroomID {
			continue
		}
		if q.GradeLevel != "" && grades[sc.ClassroomID] != q.GradeLevel {
			continue
		}
		if !q.Window.Contains(sc.AnalyzedAt) {
			continue
		}
		out = append(out, sc)
	}
	slices.SortFunc(out, func(a, b domain.CleanlinessScore) int {
		if c := b.AnalyzedAt.Compare(a.AnalyzedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// Len returns the number of stored scores.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.scores)
}

// MemoryClassrooms is an in-memory ports.ClassroomRepository.
type MemoryClassrooms struct {
	mu   sync.Mutex
	byID map[domain.ClassroomID]domain.Classroom
}

// NewMemoryClassrooms creates a repository holding classrooms.
func NewMemoryClassrooms(classrooms ...domain.Classroom) *MemoryClassrooms {
	r := &MemoryClassrooms{byID: make(map[domain.ClassroomID]domain.Classroom)}
	for _, c := range classrooms {
		r.byID[c.ID] = c
	}
	return r
}

func (r *MemoryClassrooms) Get(_ context.Context, id domain.ClassroomID) (domain.Classroom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return domain.Classroom{}, ports.NewStoreError("classroom", "get",
			fmt.Errorf("%w: classroom %s", domain.ErrNotFound, id))
	}
	return c, nil
}

func (r *MemoryClassrooms) List(_ context.Context, gradeLevel string) ([]domain.Classroom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Classroom, 0, len(r.byID))
	for _, c := range r.byID {
		if gradeLevel == "" || c.GradeLevel == gradeLevel {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b domain.Classroom) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (r *MemoryClassrooms) Create(_ context.Context, c domain.Classroom) (domain.Classroom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == "" {
		c.ID = domain.ClassroomID(uuid.NewString())
	}
	if _, dup := r.byID[c.ID]; dup {
		return domain.Classroom{}, ports.NewStoreError("classroom", "create",
			fmt.Errorf("%w: classroom %s", ports.ErrDuplicateRecord, c.ID))
	}
	r.byID[c.ID] = c
	return c, nil
}

func (r *MemoryClassrooms) grades() map[domain.ClassroomID]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[domain.ClassroomID]string, len(r.byID))
	for id, c := range r.byID {
		out[id] = c.GradeLevel
	}
	return out
}

// MemoryUsers is an in-memory ports.UserRepository.
type MemoryUsers struct {
	mu         sync.Mutex
	byUsername map[string]domain.User
}

// NewMemoryUsers creates an empty repository.
func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{byUsername: make(map[string]domain.User)}
}

func (r *MemoryUsers) FindByUsername(_ context.Context, username string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byUsername[username]
	if !ok {
		return domain.User{}, ports.NewStoreError("user", "find_by_username",
			fmt.Errorf("%w: user %s", domain.ErrNotFound, username))
	}
	return u, nil
}

func (r *MemoryUsers) Create(_ context.Context, u domain.User) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.byUsername[u.Username]; dup {
		return domain.User{}, ports.NewStoreError("user", "create",
			fmt.Errorf("%w: user %s", ports.ErrDuplicateRecord, u.Username))
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	r.byUsername[u.Username] = u
	return u, nil
}
