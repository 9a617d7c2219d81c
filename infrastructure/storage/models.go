package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/domain"
)

// ClassroomRecord is the classrooms table.
type ClassroomRecord struct {
	ID          string `gorm:"primaryKey;size:64"`
	Name        string `gorm:"size:100;not null"`
	GradeLevel  string `gorm:"size:20;index"`
	Section     string `gorm:"size:50"`
	Description string `gorm:"type:text"`
	CreatedAt   time.Time
}

// TableName overrides the gorm default.
func (ClassroomRecord) TableName() string { return "classrooms" }

func (r ClassroomRecord) toDomain() domain.Classroom {
	return domain.Classroom{
		ID:          domain.ClassroomID(r.ID),
		Name:        r.Name,
		GradeLevel:  r.GradeLevel,
		Section:     r.Section,
		Description: r.Description,
	}
}

func classroomRecordFrom(c domain.Classroom) ClassroomRecord {
	return ClassroomRecord{
		ID:          string(c.ID),
		Name:        c.Name,
		GradeLevel:  c.GradeLevel,
		Section:     c.Section,
		Description: c.Description,
	}
}

// UserRecord is the users table.
type UserRecord struct {
	ID           string `gorm:"primaryKey;size:64"`
	Username     string `gorm:"size:50;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	FullName     string `gorm:"size:100"`
	Role         string `gorm:"size:20;not null"`
	ClassroomID  string `gorm:"size:64;index"`
	CreatedAt    time.Time
}

// TableName overrides the gorm default.
func (UserRecord) TableName() string { return "users" }

func (r UserRecord) toDomain() domain.User {
	return domain.User{
		ID:           r.ID,
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		FullName:     r.FullName,
		Role:         domain.Role(r.Role),
		ClassroomID:  domain.ClassroomID(r.ClassroomID),
	}
}

func userRecordFrom(u domain.User) UserRecord {
	return UserRecord{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		FullName:     u.FullName,
		Role:         string(u.Role),
		ClassroomID:  string(u.ClassroomID),
	}
}

// ScoreRecord is one row of cleanliness_scores. Rows are only ever inserted.
type ScoreRecord struct {
	ID                 string  `gorm:"primaryKey;size:64"`
	ImageID            string  `gorm:"size:64;index"`
	ClassroomID        string  `gorm:"size:64;not null;index:idx_scores_classroom_time,priority:1"`
	FloorScore         float64 `gorm:"not null"`
	FurnitureScore     float64 `gorm:"not null"`
	TrashScore         float64 `gorm:"not null"`
	WallScore          float64 `gorm:"not null"`
	ClutterScore       float64 `gorm:"not null"`
	TotalScore         float64 `gorm:"not null"`
	Rating             string  `gorm:"size:20;not null"`
	Detections         datatypes.JSON
	AnnotatedImagePath string    `gorm:"size:255"`
	AnalyzedAt         time.Time `gorm:"not null;index;index:idx_scores_classroom_time,priority:2"`
}

// TableName overrides the gorm default.
func (ScoreRecord) TableName() string { return "cleanliness_scores" }

func scoreRecordFrom(s domain.CleanlinessScore) (ScoreRecord, error) {
	detections := s.Detections
	if detections == nil {
		detections = []domain.Detection{}
	}
	raw, err := json.Marshal(detections)
	if err != nil {
		return ScoreRecord{}, fmt.Errorf("encode detections: %w", err)
	}
	return ScoreRecord{
		ID:                 s.ID,
		ImageID:            s.ImageID,
		ClassroomID:        string(s.ClassroomID),
		FloorScore:         s.Breakdown.Floor,
		FurnitureScore:     s.Breakdown.Furniture,
		TrashScore:         s.Breakdown.Trash,
		WallScore:          s.Breakdown.Wall,
		ClutterScore:       s.Breakdown.Clutter,
		TotalScore:         s.Total,
		Rating:             string(s.Rating),
		Detections:         datatypes.JSON(raw),
		AnnotatedImagePath: s.AnnotatedImagePath,
		AnalyzedAt:         s.AnalyzedAt.UTC(),
	}, nil
}

func (r ScoreRecord) toDomain() (domain.CleanlinessScore, error) {
	var detections []domain.Detection
	if len(r.Detections) > 0 {
		if err := json.Unmarshal(r.Detections, &detections); err != nil {
			return domain.CleanlinessScore{}, fmt.Errorf("decode detections of score %s: %w", r.ID, err)
		}
	}
	return domain.CleanlinessScore{
		ID:          r.ID,
		ImageID:     r.ImageID,
		ClassroomID: domain.ClassroomID(r.ClassroomID),
		Breakdown: domain.ScoreBreakdown{
			Floor:     r.FloorScore,
			Furniture: r.FurnitureScore,
			Trash:     r.TrashScore,
			Wall:      r.WallScore,
			Clutter:   r.ClutterScore,
		},
		Total:              r.TotalScore,
		Rating:             domain.Rating(r.Rating),
		Detections:         detections,
		AnalyzedAt:         r.AnalyzedAt.UTC(),
		AnnotatedImagePath: r.AnnotatedImagePath,
	}, nil
}
