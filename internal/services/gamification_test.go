package services

import (
	"context"
	"testing"
	"time"

	"github.com/hybridlms/backend/internal/types"
)

func TestInteractionPointsAndLevels(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	instructor := env.createUser(t, "instructor@test.dev")
	learner := env.createUser(t, "learner@test.dev")
	course := env.createCourse(t, nil, instructor, "Course", types.DifficultyBeginner, types.StyleVideo)

	env.record(t, learner.ID, course.ID, types.InteractionViewed, nil)
	env.record(t, learner.ID, course.ID, types.InteractionCompleted, nil)

	stats, err := env.gamification.GetStats(ctx, learner.ID)
	if err != nil {
		t.Fatalf("get stats failed: %v", err)
	}
	if stats.TotalPoints != 102 {
		t.Fatalf("expected 2 + 100 = 102 points, got %d", stats.TotalPoints)
	}
	if stats.CurrentLevel != types.LevelForPoints(102) {
		t.Fatalf("level out of sync with points: %d", stats.CurrentLevel)
	}
	if stats.CoursesCompleted != 1 || stats.LessonsViewed != 1 {
		t.Fatalf("counters out of sync: %+v", stats)
	}

	transactions, err := env.gamification.ListTransactions(ctx, learner.ID, 0)
	if err != nil {
		t.Fatalf("list transactions failed: %v", err)
	}
	if len(transactions) != 2 {
		t.Fatalf("expected 2 points transactions, got %d", len(transactions))
	}
}

func TestLevelThresholds(t *testing.T) {
	cases := []struct {
		points int
		level  int
	}{
		{0, 1}, {99, 1}, {100, 2}, {250, 3}, {999, 4}, {1000, 5}, {16000, 10}, {50000, 10},
	}
	for _, tc := range cases {
		if got := types.LevelForPoints(tc.points); got != tc.level {
			t.Fatalf("points %d: expected level %d, got %d", tc.points, tc.level, got)
		}
	}
}

func TestLeaderboardOrderAndRank(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice@test.dev")
	bob := env.createUser(t, "bob@test.dev")
	carol := env.createUser(t, "carol@test.dev")

	if _, err := env.gamification.AddPoints(ctx, nil, alice.ID, 300, "bonus", "seed"); err != nil {
		t.Fatalf("add points failed: %v", err)
	}
	if _, err := env.gamification.AddPoints(ctx, nil, bob.ID, 500, "bonus", "seed"); err != nil {
		t.Fatalf("add points failed: %v", err)
	}
	if _, err := env.gamification.AddPoints(ctx, nil, carol.ID, 300, "bonus", "seed"); err != nil {
		t.Fatalf("add points failed: %v", err)
	}

	// Pin the activity timestamps so the tie between alice and carol is
	// deterministic.
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	if err := env.db.Model(&types.UserStats{}).Where("user_id = ?", alice.ID).
		Update("last_activity_at", base).Error; err != nil {
		t.Fatalf("failed to pin timestamp: %v", err)
	}
	if err := env.db.Model(&types.UserStats{}).Where("user_id = ?", carol.ID).
		Update("last_activity_at", base.Add(time.Minute)).Error; err != nil {
		t.Fatalf("failed to pin timestamp: %v", err)
	}

	entries, err := env.gamification.Leaderboard(ctx, 10)
	if err != nil {
		t.Fatalf("leaderboard failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].UserID != bob.ID {
		t.Fatalf("expected bob first with 500 points, got %s", entries[0].UserID)
	}
	// Alice earned her 300 before carol, so the earlier activity wins the
	// tie.
	if entries[1].UserID != alice.ID || entries[2].UserID != carol.ID {
		t.Fatalf("tie not broken by earlier activity: %v then %v", entries[1].UserID, entries[2].UserID)
	}

	rank, err := env.gamification.GetRank(ctx, bob.ID)
	if err != nil {
		t.Fatalf("rank failed: %v", err)
	}
	if rank != 1 {
		t.Fatalf("expected rank 1 for bob, got %d", rank)
	}

	rank, err = env.gamification.GetRank(ctx, carol.ID)
	if err != nil {
		t.Fatalf("rank failed: %v", err)
	}
	if rank != 3 {
		t.Fatalf("expected rank 3 for carol, got %d", rank)
	}
}
