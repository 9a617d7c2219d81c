package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/domain"
	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/ports"
)

const (
	entityClassroom = "classroom"
	entityUser      = "user"
)

var (
	_ ports.ClassroomRepository = (*ClassroomRepository)(nil)
	_ ports.UserRepository      = (*UserRepository)(nil)
)

// ClassroomRepository stores classrooms.
type ClassroomRepository struct {
	db *gorm.DB
}

// NewClassroomRepository creates a repository on db.
func NewClassroomRepository(db *gorm.DB) *ClassroomRepository {
	return &ClassroomRepository{db: db}
}

func (r *ClassroomRepository) Get(ctx context.Context, id domain.ClassroomID) (domain.Classroom, error) {
	var rec ClassroomRecord
	if err := r.db.WithContext(ctx).Where("id = ?", string(id)).First(&rec).Error; err != nil {
		return domain.Classroom{}, storeError(entityClassroom, "get", err)
	}
	return rec.toDomain(), nil
}

func (r *ClassroomRepository) List(ctx context.Context, gradeLevel string) ([]domain.Classroom, error) {
	tx := r.db.WithContext(ctx).Order("id ASC")
	if gradeLevel != "" {
		tx = tx.Where("grade_level = ?", gradeLevel)
	}

	var records []ClassroomRecord
	if err := tx.Find(&records).Error; err != nil {
		return nil, storeError(entityClassroom, "list", err)
	}
	out := make([]domain.Classroom, len(records))
	for i, rec := range records {
		out[i] = rec.toDomain()
	}
	return out, nil
}

// Create inserts c. An empty ID is replaced by a new UUID.
func (r *ClassroomRepository) Create(ctx context.Context, c domain.Classroom) (domain.Classroom, error) {
	if c.ID == "" {
		c.ID = domain.ClassroomID(uuid.NewString())
	}
	rec := classroomRecordFrom(c)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&ClassroomRecord{}).Where("id = ?", rec.ID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: classroom %s", ports.ErrDuplicateRecord, rec.ID)
		}
		return tx.Create(&rec).Error
	})
	if err != nil {
		return domain.Classroom{}, storeError(entityClassroom, "create", err)
	}
	return rec.toDomain(), nil
}

// UserRepository stores portal accounts.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a repository on db.
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	var rec UserRecord
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&rec).Error; err != nil {
		return domain.User{}, storeError(entityUser, "find_by_username", err)
	}
	return rec.toDomain(), nil
}

// Create inserts u. An empty ID is replaced by a new UUID. Usernames are
// unique.
func (r *UserRepository) Create(ctx context.Context, u domain.User) (domain.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	rec := userRecordFrom(u)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&UserRecord{}).
			Where("id = ? OR username = ?", rec.ID, rec.Username).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: user %s", ports.ErrDuplicateRecord, rec.Username)
		}
		return tx.Create(&rec).Error
	})
	if err != nil {
		return domain.User{}, storeError(entityUser, "create", err)
	}
	return rec.toDomain(), nil
}
