package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hybridlms/backend/internal/logger"
	"github.com/hybridlms/backend/internal/types"
)

type CourseFilter struct {
	CategoryID      *uuid.UUID
	DifficultyLevel string
	PublishedOnly   bool
	Limit           int
	Offset          int
}

type CourseRepo interface {
	Create(ctx context.Context, tx *gorm.DB, courses []*types.Course) ([]*types.Course, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Course, error)
	List(ctx context.Context, tx *gorm.DB, filter CourseFilter) ([]*types.Course, int64, error)
	ListPublished(ctx context.Context, tx *gorm.DB) ([]*types.Course, error)
	IncrementEnrollment(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) error
	RefreshRatingAggregates(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) error
	RefreshRecentEnrollment(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, since time.Time) error
}

type courseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	repoLog := baseLog.With("repo", "CourseRepo")
	return &courseRepo{db: db, log: repoLog}
}

func (r *courseRepo) Create(ctx context.Context, tx *gorm.DB, courses []*types.Course) ([]*types.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(courses) == 0 {
		return []*types.Course{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Course
	if len(ids) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Preload("Category").
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *courseRepo) List(ctx context.Context, tx *gorm.DB, filter CourseFilter) ([]*types.Course, int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	query := transaction.WithContext(ctx).Model(&types.Course{})
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.DifficultyLevel != "" {
		query = query.Where("difficulty_level = ?", filter.DifficultyLevel)
	}
	if filter.PublishedOnly {
		query = query.Where("is_published = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var results []*types.Course
	if err := query.
		Preload("Category").
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *courseRepo) ListPublished(ctx context.Context, tx *gorm.DB) ([]*types.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Course
	if err := transaction.WithContext(ctx).
		Where("is_published = ?", true).
		Order("id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *courseRepo) IncrementEnrollment(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Course{}).
		Where("id = ?", courseID).
		Updates(map[string]interface{}{
			"enrollment_count":        gorm.Expr("enrollment_count + 1"),
			"recent_enrollment_count": gorm.Expr("recent_enrollment_count + 1"),
		}).Error
}

// RefreshRatingAggregates recomputes average_rating/rating_count from the
// rated interaction rows for the course.
func (r *courseRepo) RefreshRatingAggregates(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var agg struct {
		Avg   float64
		Count int64
	}
	if err := transaction.WithContext(ctx).
		Model(&types.Interaction{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(rating) AS count").
		Where("course_id = ? AND type = ? AND rating IS NOT NULL", courseID, types.InteractionRated).
		Scan(&agg).Error; err != nil {
		return err
	}
	return transaction.WithContext(ctx).
		Model(&types.Course{}).
		Where("id = ?", courseID).
		Updates(map[string]interface{}{
			"average_rating": agg.Avg,
			"rating_count":   agg.Count,
		}).Error
}

// RefreshRecentEnrollment recounts enrollments inside the trending window.
func (r *courseRepo) RefreshRecentEnrollment(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, since time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Enrollment{}).
		Where("course_id = ? AND enrolled_at >= ?", courseID, since).
		Count(&count).Error; err != nil {
		return err
	}
	return transaction.WithContext(ctx).
		Model(&types.Course{}).
		Where("id = ?", courseID).
		Update("recent_enrollment_count", count).Error
}
