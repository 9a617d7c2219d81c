package application

import (
	"context"

	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/domain"
	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/ports"
)

// NewClassroom describes a classroom to create.
type NewClassroom struct {
	ID          domain.ClassroomID `json:"id" validate:"max=64"`
	Name        string             `json:"name" validate:"required,max=100"`
	GradeLevel  string             `json:"grade_level" validate:"required,max=20"`
	Section     string             `json:"section" validate:"max=50"`
	Description string             `json:"description" validate:"max=1000"`
}

// ClassroomService manages classrooms.
type ClassroomService struct {
	classrooms ports.ClassroomRepository
}

// NewClassroomService creates the service.
func NewClassroomService(classrooms ports.ClassroomRepository) *ClassroomService {
	return &ClassroomService{classrooms: classrooms}
}

// List returns classrooms, optionally of one grade.
func (s *ClassroomService) List(ctx context.Context, auth domain.AuthContext, gradeLevel string) ([]domain.Classroom, error) {
	if err := auth.RequireAuthenticated(); err != nil {
		return nil, err
	}
	return s.classrooms.List(ctx, domain.GradeFilter(gradeLevel))
}

// Get returns one classroom.
func (s *ClassroomService) Get(ctx context.Context, auth domain.AuthContext, id domain.ClassroomID) (domain.Classroom, error) {
	if err := auth.RequireAuthenticated(); err != nil {
		return domain.Classroom{}, err
	}
	return s.classrooms.Get(ctx, id)
}

// Create adds a classroom. Only admins may create classrooms.
func (s *ClassroomService) Create(ctx context.Context, auth domain.AuthContext, in NewClassroom) (domain.Classroom, error) {
	if err := auth.RequireAdmin("classrooms"); err != nil {
		return domain.Classroom{}, err
	}
	if err := validateInput("classroom", in); err != nil {
		return domain.Classroom{}, err
	}
	return s.classrooms.Create(ctx, domain.Classroom{
		ID:          in.ID,
		Name:        in.Name,
		GradeLevel:  in.GradeLevel,
		Section:     in.Section,
		Description: in.Description,
	})
}
