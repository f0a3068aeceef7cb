package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	"github.com/hybridlms/backend/internal/types"
)

func TestRebuildProfilePersistsPreferences(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	instructor := env.createUser(t, "instructor@test.dev")
	learner := env.createUser(t, "learner@test.dev")
	category := env.createCategory(t, "Programming")
	beginner := env.createCourse(t, category, instructor, "Basics", types.DifficultyBeginner, types.StyleVideo)

	env.record(t, learner.ID, beginner.ID, types.InteractionCompleted, nil)
	env.record(t, learner.ID, beginner.ID, types.InteractionRated, intPtr(5))

	profile, features, err := env.profiles.Rebuild(ctx, nil, learner.ID)
	if err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}
	if features.TotalLearningMinutes != profile.TotalLearningMinutes {
		t.Fatal("profile and features disagree on learning minutes")
	}

	var categories []uuid.UUID
	if err := json.Unmarshal(profile.PreferredCategoryIDs, &categories); err != nil {
		t.Fatalf("failed to decode preferred categories: %v", err)
	}
	if len(categories) != 1 || categories[0] != category.ID {
		t.Fatalf("expected preferred category %s, got %v", category.ID, categories)
	}

	var completed []uuid.UUID
	if err := json.Unmarshal(profile.CompletedCourseIDs, &completed); err != nil {
		t.Fatalf("failed to decode completed courses: %v", err)
	}
	if len(completed) != 1 || completed[0] != beginner.ID {
		t.Fatalf("expected completed course %s, got %v", beginner.ID, completed)
	}

	// A second rebuild updates the same row.
	if _, _, err := env.profiles.Rebuild(ctx, nil, learner.ID); err != nil {
		t.Fatalf("second rebuild failed: %v", err)
	}
	var count int64
	if err := env.db.Model(&types.RecommendationProfile{}).
		Where("user_id = ?", learner.ID).Count(&count).Error; err != nil {
		t.Fatalf("failed to count profiles: %v", err)
	}
	if count != 1 {
		t.Fatalf("rebuild must upsert a single profile row, got %d", count)
	}
}
