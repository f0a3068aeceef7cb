package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hybridlms/backend/internal/apperr"
	"github.com/hybridlms/backend/internal/types"
)

func TestRecordInteractionUpsertsSingleRow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	instructor := env.createUser(t, "instructor@test.dev")
	learner := env.createUser(t, "learner@test.dev")
	course := env.createCourse(t, nil, instructor, "Course", types.DifficultyBeginner, types.StyleVideo)

	env.record(t, learner.ID, course.ID, types.InteractionViewed, nil)
	env.record(t, learner.ID, course.ID, types.InteractionViewed, nil)

	rows, err := env.interactions.ListByUser(ctx, learner.ID, time.Time{}, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("repeat view must update the row, got %d rows", len(rows))
	}
}

func TestRecordRepeatDoesNotAwardPointsAgain(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	instructor := env.createUser(t, "instructor@test.dev")
	learner := env.createUser(t, "learner@test.dev")
	course := env.createCourse(t, nil, instructor, "Course", types.DifficultyBeginner, types.StyleVideo)

	env.record(t, learner.ID, course.ID, types.InteractionCompleted, nil)
	env.record(t, learner.ID, course.ID, types.InteractionCompleted, nil)
	env.record(t, learner.ID, course.ID, types.InteractionCompleted, nil)

	stats, err := env.gamification.GetStats(ctx, learner.ID)
	if err != nil {
		t.Fatalf("failed to load stats: %v", err)
	}
	if stats.TotalPoints != 100 {
		t.Fatalf("repeat completions must award once, got %d points", stats.TotalPoints)
	}
	if stats.CoursesCompleted != 1 {
		t.Fatalf("expected one completed course, got %d", stats.CoursesCompleted)
	}

	transactions, err := env.gamification.ListTransactions(ctx, learner.ID, 0)
	if err != nil {
		t.Fatalf("failed to list transactions: %v", err)
	}
	if len(transactions) != 1 {
		t.Fatalf("expected a single points transaction, got %d", len(transactions))
	}
}

func TestRecordInteractionValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	instructor := env.createUser(t, "instructor@test.dev")
	learner := env.createUser(t, "learner@test.dev")
	course := env.createCourse(t, nil, instructor, "Course", types.DifficultyBeginner, types.StyleVideo)

	cases := []struct {
		name  string
		input RecordInteractionInput
	}{
		{"unknown type", RecordInteractionInput{UserID: learner.ID, CourseID: course.ID, Type: "bookmarked"}},
		{"rating on viewed", RecordInteractionInput{UserID: learner.ID, CourseID: course.ID, Type: types.InteractionViewed, Rating: intPtr(4)}},
		{"rated without rating", RecordInteractionInput{UserID: learner.ID, CourseID: course.ID, Type: types.InteractionRated}},
		{"rating out of range", RecordInteractionInput{UserID: learner.ID, CourseID: course.ID, Type: types.InteractionRated, Rating: intPtr(6)}},
		{"negative time", RecordInteractionInput{UserID: learner.ID, CourseID: course.ID, Type: types.InteractionViewed, TimeSpentMinutes: -1}},
	}
	for _, tc := range cases {
		if _, err := env.interactions.Record(ctx, nil, tc.input); !errors.Is(err, apperr.ErrInvalidState) {
			t.Fatalf("%s: expected invalid state, got %v", tc.name, err)
		}
	}

	input := RecordInteractionInput{UserID: learner.ID, CourseID: testUUID(), Type: types.InteractionViewed}
	if _, err := env.interactions.Record(ctx, nil, input); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("unknown course should be not found, got %v", err)
	}
}

func TestRatedInteractionRefreshesCourseAggregates(t *testing.T) {
	env := newTestEnv(t)

	instructor := env.createUser(t, "instructor@test.dev")
	alice := env.createUser(t, "alice@test.dev")
	bob := env.createUser(t, "bob@test.dev")
	course := env.createCourse(t, nil, instructor, "Course", types.DifficultyBeginner, types.StyleVideo)

	env.record(t, alice.ID, course.ID, types.InteractionRated, intPtr(5))
	env.record(t, bob.ID, course.ID, types.InteractionRated, intPtr(3))

	var updated types.Course
	if err := env.db.First(&updated, "id = ?", course.ID).Error; err != nil {
		t.Fatalf("failed to reload course: %v", err)
	}
	if updated.RatingCount != 2 {
		t.Fatalf("expected 2 ratings, got %d", updated.RatingCount)
	}
	if updated.AverageRating != 4.0 {
		t.Fatalf("expected average 4.0, got %f", updated.AverageRating)
	}

	// Re-rating overwrites and the aggregates follow.
	env.record(t, bob.ID, course.ID, types.InteractionRated, intPtr(5))
	if err := env.db.First(&updated, "id = ?", course.ID).Error; err != nil {
		t.Fatalf("failed to reload course: %v", err)
	}
	if updated.RatingCount != 2 || updated.AverageRating != 5.0 {
		t.Fatalf("expected 2 ratings averaging 5.0, got %d / %f", updated.RatingCount, updated.AverageRating)
	}
}
