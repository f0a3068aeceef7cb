package recommender

import (
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/hybridlms/backend/internal/types"
)

func testID(n byte) uuid.UUID {
	var id uuid.UUID
	id[15] = n
	return id
}

func testCourse(n byte, categoryID uuid.UUID, difficulty, style string) *types.Course {
	return &types.Course{
		ID:              testID(n),
		Title:           "Course " + string('A'+rune(n)),
		CategoryID:      &categoryID,
		DifficultyLevel: difficulty,
		LearningStyle:   style,
		IsPublished:     true,
	}
}

func TestCollaborativeColdStartReturnsNothing(t *testing.T) {
	algo := NewCollaborativeAlgorithm()
	features := BuildFeatures(testID(100), nil, nil)
	catalog := &Catalog{
		Others: []UserInteractions{
			{UserID: testID(101), Scores: map[uuid.UUID]float64{testID(1): 1.0}},
		},
	}
	if got := algo.Score(features, catalog); len(got) != 0 {
		t.Fatalf("expected no candidates for user without interactions, got %d", len(got))
	}
}

func TestCollaborativeScoresFromNeighborOverlap(t *testing.T) {
	category := testID(50)
	shared := testCourse(1, category, types.DifficultyBeginner, types.StyleVideo)
	suggested := testCourse(2, category, types.DifficultyBeginner, types.StyleVideo)

	userID := testID(100)
	interactions := []*types.Interaction{
		{UserID: userID, CourseID: shared.ID, Type: types.InteractionCompleted},
	}
	features := BuildFeatures(userID, interactions, []*types.Course{shared, suggested})

	catalog := &Catalog{
		Courses: []*types.Course{shared, suggested},
		Others: []UserInteractions{
			{UserID: testID(101), Scores: map[uuid.UUID]float64{shared.ID: 1.0, suggested.ID: 1.0}},
		},
	}

	got := algoCandidates(t, NewCollaborativeAlgorithm(), features, catalog, 1)
	if got[0].CourseID != suggested.ID {
		t.Fatalf("expected neighbor's other course, got %s", got[0].CourseID)
	}
	if got[0].Score != 1.0 {
		t.Fatalf("similarity-weighted mean of a single 1.0 signal should be 1.0, got %f", got[0].Score)
	}
	if got[0].Contributors != 1 {
		t.Fatalf("expected one contributing neighbor, got %d", got[0].Contributors)
	}
}

func TestCollaborativeSkipsInteractedCourses(t *testing.T) {
	category := testID(50)
	courseA := testCourse(1, category, types.DifficultyBeginner, types.StyleVideo)
	courseB := testCourse(2, category, types.DifficultyBeginner, types.StyleVideo)

	userID := testID(100)
	interactions := []*types.Interaction{
		{UserID: userID, CourseID: courseA.ID, Type: types.InteractionCompleted},
		{UserID: userID, CourseID: courseB.ID, Type: types.InteractionViewed},
	}
	features := BuildFeatures(userID, interactions, []*types.Course{courseA, courseB})

	catalog := &Catalog{
		Courses: []*types.Course{courseA, courseB},
		Others: []UserInteractions{
			{UserID: testID(101), Scores: map[uuid.UUID]float64{courseA.ID: 1.0, courseB.ID: 1.0}},
		},
	}
	if got := NewCollaborativeAlgorithm().Score(features, catalog); len(got) != 0 {
		t.Fatalf("already-interacted courses must never be recommended, got %d candidates", len(got))
	}
}

func TestContentBasedRequiresCategoryMatch(t *testing.T) {
	liked := testID(50)
	other := testID(51)
	seen := testCourse(1, liked, types.DifficultyBeginner, types.StyleVideo)
	inCategory := testCourse(2, liked, types.DifficultyBeginner, types.StyleVideo)
	outOfCategory := testCourse(3, other, types.DifficultyBeginner, types.StyleVideo)

	userID := testID(100)
	interactions := []*types.Interaction{
		{UserID: userID, CourseID: seen.ID, Type: types.InteractionCompleted},
	}
	catalog := &Catalog{Courses: []*types.Course{seen, inCategory, outOfCategory}}
	features := BuildFeatures(userID, interactions, catalog.Courses)

	got := algoCandidates(t, NewContentBasedAlgorithm(), features, catalog, 1)
	if got[0].CourseID != inCategory.ID {
		t.Fatalf("expected only the in-category course, got %s", got[0].CourseID)
	}
}

func TestContentBasedFullMatchNeutralQuality(t *testing.T) {
	category := testID(50)
	seen := testCourse(1, category, types.DifficultyBeginner, types.StyleVideo)
	match := testCourse(2, category, types.DifficultyBeginner, types.StyleVideo)

	userID := testID(100)
	interactions := []*types.Interaction{
		{UserID: userID, CourseID: seen.ID, Type: types.InteractionCompleted},
	}
	catalog := &Catalog{Courses: []*types.Course{seen, match}}
	features := BuildFeatures(userID, interactions, catalog.Courses)

	got := algoCandidates(t, NewContentBasedAlgorithm(), features, catalog, 1)
	// Three of three dimensions matched, unrated course gets the 0.5
	// neutral quality factor.
	if math.Abs(got[0].Score-0.5) > 1e-9 {
		t.Fatalf("expected 1.0 * 0.5 = 0.5, got %f", got[0].Score)
	}
}

func TestPopularityWorksWithoutProfile(t *testing.T) {
	category := testID(50)
	popular := testCourse(1, category, types.DifficultyBeginner, types.StyleVideo)
	popular.EnrollmentCount = 100
	popular.AverageRating = 4.0
	popular.RatingCount = 10
	quiet := testCourse(2, category, types.DifficultyBeginner, types.StyleVideo)
	quiet.EnrollmentCount = 10
	quiet.AverageRating = 3.0
	quiet.RatingCount = 2

	features := BuildFeatures(testID(100), nil, nil)
	catalog := &Catalog{Courses: []*types.Course{popular, quiet}, MaxEnrollment: 100}

	got := algoCandidates(t, NewPopularityAlgorithm(), features, catalog, 2)
	if got[0].CourseID != popular.ID {
		t.Fatalf("expected most popular course first, got %s", got[0].CourseID)
	}
	want := 0.6*1.0 + 0.4*(4.0/5.0)
	if math.Abs(got[0].Score-want) > 1e-9 {
		t.Fatalf("expected blended popularity %f, got %f", want, got[0].Score)
	}
}

func TestKnowledgeProgressionAfterCompletion(t *testing.T) {
	category := testID(50)
	beginner := testCourse(1, category, types.DifficultyBeginner, types.StyleVideo)
	intermediate := testCourse(2, category, types.DifficultyIntermediate, types.StyleVideo)
	advanced := testCourse(3, category, types.DifficultyAdvanced, types.StyleVideo)

	userID := testID(100)
	interactions := []*types.Interaction{
		{UserID: userID, CourseID: beginner.ID, Type: types.InteractionCompleted},
	}
	catalog := &Catalog{Courses: []*types.Course{beginner, intermediate, advanced}}
	features := BuildFeatures(userID, interactions, catalog.Courses)

	got := algoCandidates(t, NewKnowledgeBasedAlgorithm(), features, catalog, 1)
	if got[0].CourseID != intermediate.ID {
		t.Fatalf("completing a beginner course should suggest the intermediate one, got %s", got[0].CourseID)
	}
	if got[0].Score != 0.9 {
		t.Fatalf("progression rule should score 0.9, got %f", got[0].Score)
	}
}

func TestKnowledgeTrendingKeepsHigherScoreOnOverlap(t *testing.T) {
	category := testID(50)
	beginner := testCourse(1, category, types.DifficultyBeginner, types.StyleVideo)
	intermediate := testCourse(2, category, types.DifficultyIntermediate, types.StyleVideo)
	intermediate.RecentEnrollmentCount = 5

	userID := testID(100)
	interactions := []*types.Interaction{
		{UserID: userID, CourseID: beginner.ID, Type: types.InteractionCompleted},
	}
	catalog := &Catalog{
		Courses:             []*types.Course{beginner, intermediate},
		MaxRecentEnrollment: 5,
	}
	features := BuildFeatures(userID, interactions, catalog.Courses)

	got := algoCandidates(t, NewKnowledgeBasedAlgorithm(), features, catalog, 1)
	// Both the progression rule (0.9) and the trending rule
	// (0.6 + 0.3 * 1.0 = 0.9) hit; a single candidate with the higher
	// score must remain.
	if got[0].CourseID != intermediate.ID || got[0].Score != 0.9 {
		t.Fatalf("expected one candidate at 0.9, got %s at %f", got[0].CourseID, got[0].Score)
	}
}

func TestBuildFeaturesDerivesPreferences(t *testing.T) {
	category := testID(50)
	beginner := testCourse(1, category, types.DifficultyBeginner, types.StyleVideo)
	rating := 5
	userID := testID(100)
	interactions := []*types.Interaction{
		{UserID: userID, CourseID: beginner.ID, Type: types.InteractionCompleted, TimeSpentMinutes: 90},
		{UserID: userID, CourseID: beginner.ID, Type: types.InteractionRated, Rating: &rating},
	}

	features := BuildFeatures(userID, interactions, []*types.Course{beginner})
	if !features.PreferredCategorySet[category] {
		t.Fatalf("expected category %s to be preferred", category)
	}
	if !features.PreferredDifficultySet[types.DifficultyBeginner] {
		t.Fatal("expected beginner difficulty to be preferred")
	}
	if !features.Completed[beginner.ID] {
		t.Fatal("expected completed set to include the completed course")
	}
	if features.TotalLearningMinutes != 90 {
		t.Fatalf("expected 90 learning minutes, got %d", features.TotalLearningMinutes)
	}
	if len(features.FeatureVector) != 3 {
		t.Fatalf("one category should yield a 3-slot vector, got %d", len(features.FeatureVector))
	}
	// completed 1.0 + rated 0.8 land in the (category, beginner) bucket.
	if math.Abs(features.FeatureVector[0]-1.8) > 1e-9 {
		t.Fatalf("expected beginner bucket weight 1.8, got %f", features.FeatureVector[0])
	}
}

func algoCandidates(t *testing.T, algo Algorithm, features *UserFeatures, catalog *Catalog, want int) []Candidate {
	t.Helper()
	got := algo.Score(features, catalog)
	if len(got) != want {
		t.Fatalf("%s: expected %d candidates, got %d", algo.Name(), want, len(got))
	}
	return got
}
