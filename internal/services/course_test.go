package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hybridlms/backend/internal/apperr"
	"github.com/hybridlms/backend/internal/types"
)

func TestEnrollRecordsInteractionAndCounters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	instructor := env.createUser(t, "instructor@test.dev")
	learner := env.createUser(t, "learner@test.dev")
	category := env.createCategory(t, "Math")
	course := env.createCourse(t, category, instructor, "Algebra", types.DifficultyBeginner, types.StyleVideo)

	enrollment, err := env.courses.Enroll(ctx, learner.ID, course.ID)
	if err != nil {
		t.Fatalf("enroll failed: %v", err)
	}
	if enrollment.Status != types.EnrollmentActive {
		t.Fatalf("expected active enrollment, got %s", enrollment.Status)
	}

	var updated types.Course
	if err := env.db.First(&updated, "id = ?", course.ID).Error; err != nil {
		t.Fatalf("failed to reload course: %v", err)
	}
	if updated.EnrollmentCount != 1 || updated.RecentEnrollmentCount != 1 {
		t.Fatalf("counters not bumped: %d / %d", updated.EnrollmentCount, updated.RecentEnrollmentCount)
	}

	interactions, err := env.interactions.ListByUser(ctx, learner.ID, time.Time{}, 0)
	if err != nil {
		t.Fatalf("list interactions failed: %v", err)
	}
	if len(interactions) != 1 || interactions[0].Type != types.InteractionEnrolled {
		t.Fatalf("expected one enrolled interaction, got %v", interactions)
	}

	if _, err := env.courses.Enroll(ctx, learner.ID, course.ID); !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("double enroll should be invalid state, got %v", err)
	}
}

func TestEnrollUnpublishedCourse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	instructor := env.createUser(t, "instructor@test.dev")
	learner := env.createUser(t, "learner@test.dev")
	course := env.createCourse(t, nil, instructor, "Draft", types.DifficultyBeginner, types.StyleVideo)
	if err := env.db.Model(course).Update("is_published", false).Error; err != nil {
		t.Fatalf("failed to unpublish: %v", err)
	}

	if _, err := env.courses.Enroll(ctx, learner.ID, course.ID); !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("enrolling in unpublished course should be invalid state, got %v", err)
	}
}

func TestCompleteEnrollment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	instructor := env.createUser(t, "instructor@test.dev")
	learner := env.createUser(t, "learner@test.dev")
	course := env.createCourse(t, nil, instructor, "Course", types.DifficultyBeginner, types.StyleVideo)

	if _, err := env.courses.Complete(ctx, learner.ID, course.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("completing without enrollment should be not found, got %v", err)
	}

	if _, err := env.courses.Enroll(ctx, learner.ID, course.ID); err != nil {
		t.Fatalf("enroll failed: %v", err)
	}
	completed, err := env.courses.Complete(ctx, learner.ID, course.ID)
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if completed.Status != types.EnrollmentCompleted || completed.CompletedAt == nil {
		t.Fatalf("enrollment not marked completed: %+v", completed)
	}

	if _, err := env.courses.Complete(ctx, learner.ID, course.ID); !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("double completion should be invalid state, got %v", err)
	}

	interactions, err := env.interactions.ListByUser(ctx, learner.ID, time.Time{}, 0)
	if err != nil {
		t.Fatalf("list interactions failed: %v", err)
	}
	seen := map[string]bool{}
	for _, it := range interactions {
		seen[it.Type] = true
	}
	if !seen[types.InteractionEnrolled] || !seen[types.InteractionCompleted] {
		t.Fatalf("expected enrolled and completed interactions, got %v", seen)
	}
}

func TestCreateCourseValidatesCategory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	instructor := env.createUser(t, "instructor@test.dev")
	missing := testUUID()
	_, err := env.courses.CreateCourse(ctx, &types.Course{
		Title:        "Ghost Category",
		InstructorID: instructor.ID,
		CategoryID:   &missing,
	})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("unknown category should be not found, got %v", err)
	}
}
