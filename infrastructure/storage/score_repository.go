package storage

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/domain"
	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/ports"
)

const entityScore = "cleanliness_score"

var _ ports.ScoreRepository = (*ScoreRepository)(nil)

// ScoreRepository stores cleanliness scores in the cleanliness_scores table.
type ScoreRepository struct {
	db *gorm.DB
}

// NewScoreRepository creates a repository on db.
func NewScoreRepository(db *gorm.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// Save inserts score. A score whose ID is already stored is rejected with
// ports.ErrDuplicateRecord; existing rows are never updated.
func (r *ScoreRepository) Save(ctx context.Context, score domain.CleanlinessScore) error {
	if score.ID == "" || score.ClassroomID == "" {
		return ports.NewStoreError(entityScore, "save",
			fmt.Errorf("%w: score id and classroom id are required", domain.ErrInvalidInput))
	}
	rec, err := scoreRecordFrom(score)
	if err != nil {
		return ports.NewStoreError(entityScore, "save", err)
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&ScoreRecord{}).Where("id = ?", rec.ID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: score %s", ports.ErrDuplicateRecord, rec.ID)
		}
		return tx.Create(&rec).Error
	})
	if err != nil {
		return storeError(entityScore, "save", err)
	}
	return nil
}

// Find returns the scores matching q, newest first. Ties on AnalyzedAt are
// broken by ID so the order is stable.
func (r *ScoreRepository) Find(ctx context.Context, q ports.ScoreQuery) ([]domain.CleanlinessScore, error) {
	tx := r.db.WithContext(ctx).
		Model(&ScoreRecord{}).
		Select("cleanliness_scores.*")

	if q.GradeLevel != "" {
		tx = tx.Joins("JOIN classrooms ON classrooms.id = cleanliness_scores.classroom_id").
			Where("classrooms.grade_level = ?", q.GradeLevel)
	}
	if q.ClassroomID != "" {
		tx = tx.Where("cleanliness_scores.classroom_id = ?", string(q.ClassroomID))
	}
	if !q.Window.Start.IsZero() {
		tx = tx.Where("cleanliness_scores.analyzed_at >= ?", q.Window.Start.UTC())
	}
	if !q.Window.End.IsZero() {
		tx = tx.Where("cleanliness_scores.analyzed_at <= ?", q.Window.End.UTC())
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var records []ScoreRecord
	if err := tx.Order("cleanliness_scores.analyzed_at DESC, cleanliness_scores.id ASC").Find(&records).Error; err != nil {
		return nil, storeError(entityScore, "find", err)
	}

	scores := make([]domain.CleanlinessScore, 0, len(records))
	for _, rec := range records {
		s, err := rec.toDomain()
		if err != nil {
			return nil, ports.NewStoreError(entityScore, "find", err)
		}
		scores = append(scores, s)
	}
	return scores, nil
}
