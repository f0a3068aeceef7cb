package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hybridlms/backend/internal/apperr"
	"github.com/hybridlms/backend/internal/logger"
	"github.com/hybridlms/backend/internal/repos"
	"github.com/hybridlms/backend/internal/types"
)

// Window for the recent enrollment counter used by the trending rule.
const recentEnrollmentWindow = 30 * 24 * time.Hour

type CourseService interface {
	CreateCategory(ctx context.Context, category *types.Category) (*types.Category, error)
	ListCategories(ctx context.Context) ([]*types.Category, error)

	CreateCourse(ctx context.Context, course *types.Course) (*types.Course, error)
	GetCourse(ctx context.Context, courseID uuid.UUID) (*types.Course, error)
	ListCourses(ctx context.Context, filter repos.CourseFilter) ([]*types.Course, int64, error)

	// Enroll creates the enrollment, bumps the course counters and records
	// the enrolled interaction in one transaction.
	Enroll(ctx context.Context, userID, courseID uuid.UUID) (*types.Enrollment, error)
	// Complete marks an active enrollment completed and records the
	// completed interaction.
	Complete(ctx context.Context, userID, courseID uuid.UUID) (*types.Enrollment, error)
	ListEnrollments(ctx context.Context, userID uuid.UUID) ([]*types.Enrollment, error)
}

type courseService struct {
	db             *gorm.DB
	log            *logger.Logger
	categoryRepo   repos.CategoryRepo
	courseRepo     repos.CourseRepo
	enrollmentRepo repos.EnrollmentRepo
	interactions   InteractionService
}

func NewCourseService(
	db *gorm.DB,
	log *logger.Logger,
	categoryRepo repos.CategoryRepo,
	courseRepo repos.CourseRepo,
	enrollmentRepo repos.EnrollmentRepo,
	interactions InteractionService,
) CourseService {
	serviceLog := log.With("service", "CourseService")
	return &courseService{
		db:             db,
		log:            serviceLog,
		categoryRepo:   categoryRepo,
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		interactions:   interactions,
	}
}

func (cs *courseService) CreateCategory(ctx context.Context, category *types.Category) (*types.Category, error) {
	if category.Name == "" {
		return nil, fmt.Errorf("%w: category name is required", apperr.ErrInvalidState)
	}
	if category.Slug == "" {
		category.Slug = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(category.Name), " ", "-"))
	}
	category.ID = uuid.New()
	if _, err := cs.categoryRepo.Create(ctx, nil, []*types.Category{category}); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

func (cs *courseService) ListCategories(ctx context.Context) ([]*types.Category, error) {
	return cs.categoryRepo.List(ctx, nil)
}

func (cs *courseService) CreateCourse(ctx context.Context, course *types.Course) (*types.Course, error) {
	if course.Title == "" {
		return nil, fmt.Errorf("%w: course title is required", apperr.ErrInvalidState)
	}
	if course.DifficultyLevel == "" {
		course.DifficultyLevel = types.DifficultyBeginner
	}
	if course.LearningStyle == "" {
		course.LearningStyle = types.StyleMixed
	}
	if course.CategoryID != nil {
		categories, err := cs.categoryRepo.GetByIDs(ctx, nil, []uuid.UUID{*course.CategoryID})
		if err != nil {
			return nil, fmt.Errorf("failed to check category: %w", err)
		}
		if len(categories) == 0 {
			return nil, fmt.Errorf("%w: category %s", apperr.ErrNotFound, *course.CategoryID)
		}
	}
	course.ID = uuid.New()
	if _, err := cs.courseRepo.Create(ctx, nil, []*types.Course{course}); err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}
	return course, nil
}

func (cs *courseService) GetCourse(ctx context.Context, courseID uuid.UUID) (*types.Course, error) {
	courses, err := cs.courseRepo.GetByIDs(ctx, nil, []uuid.UUID{courseID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch course: %w", err)
	}
	if len(courses) == 0 {
		return nil, fmt.Errorf("%w: course %s", apperr.ErrNotFound, courseID)
	}
	return courses[0], nil
}

func (cs *courseService) ListCourses(ctx context.Context, filter repos.CourseFilter) ([]*types.Course, int64, error) {
	return cs.courseRepo.List(ctx, nil, filter)
}

func (cs *courseService) Enroll(ctx context.Context, userID, courseID uuid.UUID) (*types.Enrollment, error) {
	course, err := cs.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !course.IsPublished {
		return nil, fmt.Errorf("%w: course %s is not published", apperr.ErrInvalidState, courseID)
	}

	existing, err := cs.enrollmentRepo.GetByUserAndCourse(ctx, nil, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: already enrolled", apperr.ErrInvalidState)
	}

	now := time.Now()
	enrollment := &types.Enrollment{
		ID:         uuid.New(),
		UserID:     userID,
		CourseID:   courseID,
		Status:     types.EnrollmentActive,
		EnrolledAt: now,
	}
	err = cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := cs.enrollmentRepo.Create(ctx, tx, []*types.Enrollment{enrollment}); err != nil {
			return fmt.Errorf("failed to create enrollment: %w", err)
		}
		if err := cs.courseRepo.IncrementEnrollment(ctx, tx, courseID); err != nil {
			return fmt.Errorf("failed to bump enrollment counters: %w", err)
		}
		if err := cs.courseRepo.RefreshRecentEnrollment(ctx, tx, courseID, now.Add(-recentEnrollmentWindow)); err != nil {
			return fmt.Errorf("failed to refresh recent enrollment counter: %w", err)
		}
		_, err := cs.interactions.Record(ctx, tx, RecordInteractionInput{
			UserID:     userID,
			CourseID:   courseID,
			Type:       types.InteractionEnrolled,
			OccurredAt: now,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return enrollment, nil
}

func (cs *courseService) Complete(ctx context.Context, userID, courseID uuid.UUID) (*types.Enrollment, error) {
	enrollment, err := cs.enrollmentRepo.GetByUserAndCourse(ctx, nil, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}
	if enrollment == nil {
		return nil, fmt.Errorf("%w: not enrolled in course %s", apperr.ErrNotFound, courseID)
	}
	if enrollment.Status == types.EnrollmentCompleted {
		return nil, fmt.Errorf("%w: enrollment already completed", apperr.ErrInvalidState)
	}

	now := time.Now()
	err = cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := cs.enrollmentRepo.MarkCompleted(ctx, tx, enrollment.ID, now); err != nil {
			return fmt.Errorf("failed to mark enrollment completed: %w", err)
		}
		_, err := cs.interactions.Record(ctx, tx, RecordInteractionInput{
			UserID:     userID,
			CourseID:   courseID,
			Type:       types.InteractionCompleted,
			OccurredAt: now,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	enrollment.Status = types.EnrollmentCompleted
	enrollment.CompletedAt = &now
	return enrollment, nil
}

func (cs *courseService) ListEnrollments(ctx context.Context, userID uuid.UUID) ([]*types.Enrollment, error) {
	return cs.enrollmentRepo.GetByUserID(ctx, nil, userID)
}
