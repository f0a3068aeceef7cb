package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hybridlms/backend/internal/apperr"
	"github.com/hybridlms/backend/internal/repos"
	"github.com/hybridlms/backend/internal/types"
)

func TestGenerateProducesRankedActiveSet(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	instructor := env.createUser(t, "instructor@test.dev")
	learner := env.createUser(t, "learner@test.dev")
	peer := env.createUser(t, "peer@test.dev")
	category := env.createCategory(t, "Programming")

	beginner := env.createCourse(t, category, instructor, "Go Basics", types.DifficultyBeginner, types.StyleVideo)
	intermediate := env.createCourse(t, category, instructor, "Go Services", types.DifficultyIntermediate, types.StyleVideo)
	advanced := env.createCourse(t, category, instructor, "Go Internals", types.DifficultyAdvanced, types.StyleVideo)

	env.record(t, learner.ID, beginner.ID, types.InteractionCompleted, nil)
	env.record(t, peer.ID, beginner.ID, types.InteractionCompleted, nil)
	env.record(t, peer.ID, intermediate.ID, types.InteractionCompleted, nil)
	env.record(t, peer.ID, advanced.ID, types.InteractionRated, intPtr(4))

	recs, err := env.recommendations.Generate(ctx, learner.ID)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if len(recs) == 0 {
		t.Fatal("expected recommendations for an active user")
	}
	for i := 1; i < len(recs); i++ {
		if recs[i].Score > recs[i-1].Score {
			t.Fatalf("recommendations out of order at %d: %f > %f", i, recs[i].Score, recs[i-1].Score)
		}
	}
	for _, rec := range recs {
		if rec.CourseID != nil && *rec.CourseID == beginner.ID {
			t.Fatal("completed course must not be recommended")
		}
		if rec.AlgorithmUsed != types.AlgorithmHybrid {
			t.Fatalf("expected hybrid algorithm tag, got %s", rec.AlgorithmUsed)
		}
		if !rec.Active(time.Now()) {
			t.Fatal("freshly generated recommendation should be active")
		}
	}
}

func TestGenerateReplacesPreviousSetAtomically(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	instructor := env.createUser(t, "instructor@test.dev")
	learner := env.createUser(t, "learner@test.dev")
	category := env.createCategory(t, "Data")
	course := env.createCourse(t, category, instructor, "SQL Basics", types.DifficultyBeginner, types.StyleVideo)
	course.EnrollmentCount = 10
	course.AverageRating = 4.0
	course.RatingCount = 3
	if err := env.db.Save(course).Error; err != nil {
		t.Fatalf("failed to update course: %v", err)
	}

	first, err := env.recommendations.Generate(ctx, learner.ID)
	if err != nil {
		t.Fatalf("first generate failed: %v", err)
	}
	if len(first) == 0 {
		t.Fatal("expected popularity to serve a cold-start user")
	}

	second, err := env.recommendations.Generate(ctx, learner.ID)
	if err != nil {
		t.Fatalf("second generate failed: %v", err)
	}

	active, total, err := env.recommendations.List(ctx, learner.ID, repos.RecommendationFilter{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if int(total) != len(second) {
		t.Fatalf("expected %d active recommendations, got %d", len(second), total)
	}
	for _, rec := range active {
		for _, old := range first {
			if rec.ID == old.ID {
				t.Fatal("recommendation from the replaced set is still active")
			}
		}
	}

	var expired int64
	if err := env.db.Model(&types.Recommendation{}).
		Where("user_id = ? AND is_expired = ?", learner.ID, true).
		Count(&expired).Error; err != nil {
		t.Fatalf("failed to count expired rows: %v", err)
	}
	if int(expired) != len(first) {
		t.Fatalf("expected %d expired rows, got %d", len(first), expired)
	}
}

func TestGenerateEmptyCatalogIsColdStart(t *testing.T) {
	env := newTestEnv(t)
	learner := env.createUser(t, "learner@test.dev")

	_, err := env.recommendations.Generate(context.Background(), learner.ID)
	if !errors.Is(err, apperr.ErrColdStart) {
		t.Fatalf("expected cold start error for empty catalog, got %v", err)
	}
}

func TestGenerateUnknownUser(t *testing.T) {
	env := newTestEnv(t)
	instructor := env.createUser(t, "instructor@test.dev")
	env.createCourse(t, nil, instructor, "Orphan Course", types.DifficultyBeginner, types.StyleVideo)

	_, err := env.recommendations.Generate(context.Background(), testUUID())
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found for unknown user, got %v", err)
	}
}

func TestClickAndDismissTransitions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	instructor := env.createUser(t, "instructor@test.dev")
	learner := env.createUser(t, "learner@test.dev")
	category := env.createCategory(t, "Design")
	course := env.createCourse(t, category, instructor, "UX Basics", types.DifficultyBeginner, types.StyleVideo)
	course.EnrollmentCount = 5
	course.AverageRating = 4.5
	course.RatingCount = 2
	if err := env.db.Save(course).Error; err != nil {
		t.Fatalf("failed to update course: %v", err)
	}

	recs, err := env.recommendations.Generate(ctx, learner.ID)
	if err != nil || len(recs) == 0 {
		t.Fatalf("generate failed: %v (%d recs)", err, len(recs))
	}
	rec := recs[0]

	clicked, err := env.recommendations.RecordClick(ctx, learner.ID, rec.ID)
	if err != nil {
		t.Fatalf("click failed: %v", err)
	}
	if !clicked.IsClicked || clicked.ClickedAt == nil {
		t.Fatal("click did not mark the recommendation")
	}

	dismissed, err := env.recommendations.RecordDismiss(ctx, learner.ID, rec.ID)
	if err != nil {
		t.Fatalf("dismiss failed: %v", err)
	}
	if !dismissed.IsDismissed {
		t.Fatal("dismiss did not mark the recommendation")
	}

	if _, err := env.recommendations.RecordDismiss(ctx, learner.ID, rec.ID); !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("second dismiss should be invalid state, got %v", err)
	}
	if _, err := env.recommendations.RecordClick(ctx, learner.ID, rec.ID); !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("click after dismiss should be invalid state, got %v", err)
	}

	// Dismissed recommendations drop out of the default listing.
	active, _, err := env.recommendations.List(ctx, learner.ID, repos.RecommendationFilter{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	for _, a := range active {
		if a.ID == rec.ID {
			t.Fatal("dismissed recommendation still listed as active")
		}
	}
}

func TestFeedbackUpsertsSingleRow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	instructor := env.createUser(t, "instructor@test.dev")
	learner := env.createUser(t, "learner@test.dev")
	course := env.createCourse(t, nil, instructor, "Course", types.DifficultyBeginner, types.StyleVideo)
	course.EnrollmentCount = 3
	course.AverageRating = 4.0
	course.RatingCount = 1
	if err := env.db.Save(course).Error; err != nil {
		t.Fatalf("failed to update course: %v", err)
	}

	recs, err := env.recommendations.Generate(ctx, learner.ID)
	if err != nil || len(recs) == 0 {
		t.Fatalf("generate failed: %v (%d recs)", err, len(recs))
	}
	rec := recs[0]

	if _, err := env.recommendations.RecordFeedback(ctx, learner.ID, rec.ID, types.FeedbackHelpful, "nice"); err != nil {
		t.Fatalf("first feedback failed: %v", err)
	}
	if _, err := env.recommendations.RecordFeedback(ctx, learner.ID, rec.ID, types.FeedbackIrrelevant, "changed my mind"); err != nil {
		t.Fatalf("second feedback failed: %v", err)
	}

	all, err := env.recommendations.ListFeedback(ctx, learner.ID)
	if err != nil {
		t.Fatalf("list feedback failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("repeat feedback should update the row, got %d rows", len(all))
	}
	if all[0].FeedbackType != types.FeedbackIrrelevant {
		t.Fatalf("expected the latest feedback type, got %s", all[0].FeedbackType)
	}

	if _, err := env.recommendations.RecordFeedback(ctx, learner.ID, rec.ID, "meh", ""); !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("unknown feedback type should be invalid state, got %v", err)
	}
}

func TestUpdateSettingsValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	settings, err := env.recommendations.GetSettings(ctx)
	if err != nil {
		t.Fatalf("get settings failed: %v", err)
	}
	if settings.ID != 1 {
		t.Fatalf("settings must be the singleton row, got id %d", settings.ID)
	}

	settings.CollaborativeWeight = 0.9
	if _, err := env.recommendations.UpdateSettings(ctx, settings); !errors.Is(err, apperr.ErrConfiguration) {
		t.Fatalf("weights not summing to 1.0 should be a configuration error, got %v", err)
	}

	settings.CollaborativeWeight = 0.35
	settings.MaxRecommendationsPerUser = 0
	if _, err := env.recommendations.UpdateSettings(ctx, settings); !errors.Is(err, apperr.ErrConfiguration) {
		t.Fatalf("non-positive limit should be a configuration error, got %v", err)
	}

	settings.MaxRecommendationsPerUser = 5
	updated, err := env.recommendations.UpdateSettings(ctx, settings)
	if err != nil {
		t.Fatalf("valid settings update failed: %v", err)
	}
	if updated.MaxRecommendationsPerUser != 5 {
		t.Fatalf("expected updated limit 5, got %d", updated.MaxRecommendationsPerUser)
	}
}

func TestRegenerateAllSkipsFreshUsers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	instructor := env.createUser(t, "instructor@test.dev")
	learner := env.createUser(t, "learner@test.dev")
	course := env.createCourse(t, nil, instructor, "Course", types.DifficultyBeginner, types.StyleVideo)
	course.EnrollmentCount = 2
	course.AverageRating = 3.5
	course.RatingCount = 1
	if err := env.db.Save(course).Error; err != nil {
		t.Fatalf("failed to update course: %v", err)
	}

	if _, err := env.recommendations.Generate(ctx, learner.ID); err != nil {
		t.Fatalf("seed generate failed: %v", err)
	}

	summary, err := env.recommendations.RegenerateAll(ctx, false)
	if err != nil {
		t.Fatalf("regenerate all failed: %v", err)
	}
	if summary.Total != 2 {
		t.Fatalf("expected two users in scope, got %d", summary.Total)
	}
	// learner was just generated so only the instructor is stale.
	if summary.Skipped != 1 || summary.Generated != 1 {
		t.Fatalf("expected 1 generated / 1 skipped, got %+v", summary)
	}

	forced, err := env.recommendations.RegenerateAll(ctx, true)
	if err != nil {
		t.Fatalf("forced regenerate all failed: %v", err)
	}
	if forced.Skipped != 0 || forced.Generated != 2 {
		t.Fatalf("force must refresh everyone, got %+v", forced)
	}
}
