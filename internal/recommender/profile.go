package recommender

import (
	"sort"

	"github.com/google/uuid"

	"github.com/hybridlms/backend/internal/types"
)

// Interaction-type weights for preference derivation. Stronger commitment
// weighs more: completed > rated > enrolled > wishlisted > viewed > searched.
var interactionWeights = map[string]float64{
	types.InteractionCompleted:  1.0,
	types.InteractionRated:      0.8,
	types.InteractionEnrolled:   0.6,
	types.InteractionWishlisted: 0.4,
	types.InteractionViewed:     0.3,
	types.InteractionSearched:   0.1,
}

func InteractionWeight(interactionType string) float64 {
	return interactionWeights[interactionType]
}

// A preference dimension counts as preferred when its accumulated weight is
// at least this fraction of the strongest dimension's weight.
const preferenceCutoff = 0.25

const maxPreferredCategories = 5

var difficultyOrder = []string{
	types.DifficultyBeginner,
	types.DifficultyIntermediate,
	types.DifficultyAdvanced,
}

// BuildFeatures derives UserFeatures from a user's interaction window and
// the course catalog. The feature vector has one slot per
// (category x difficulty) pair, categories in ascending id order, holding
// the summed interaction weight for that bucket.
func BuildFeatures(userID uuid.UUID, interactions []*types.Interaction, courses []*types.Course) *UserFeatures {
	f := &UserFeatures{
		UserID:                 userID,
		PreferredCategorySet:   map[uuid.UUID]bool{},
		PreferredDifficultySet: map[string]bool{},
		PreferredStyleSet:      map[string]bool{},
		Completed:              map[uuid.UUID]bool{},
		Interacted:             map[uuid.UUID]bool{},
	}

	courseByID := make(map[uuid.UUID]*types.Course, len(courses))
	for _, c := range courses {
		courseByID[c.ID] = c
	}

	categoryWeights := map[uuid.UUID]float64{}
	difficultyWeights := map[string]float64{}
	styleWeights := map[string]float64{}
	bucketWeights := map[uuid.UUID]map[string]float64{}

	for _, it := range interactions {
		w := InteractionWeight(it.Type)
		f.Interacted[it.CourseID] = true
		f.TotalLearningMinutes += it.TimeSpentMinutes
		if it.Type == types.InteractionCompleted {
			if !f.Completed[it.CourseID] {
				f.Completed[it.CourseID] = true
				f.CompletedCourseIDs = append(f.CompletedCourseIDs, it.CourseID)
			}
		}
		if it.Type == types.InteractionViewed {
			f.ViewedCourseIDs = append(f.ViewedCourseIDs, it.CourseID)
		}

		course := courseByID[it.CourseID]
		if course == nil {
			continue
		}
		difficultyWeights[course.DifficultyLevel] += w
		styleWeights[course.LearningStyle] += w
		if course.CategoryID != nil {
			catID := *course.CategoryID
			categoryWeights[catID] += w
			if bucketWeights[catID] == nil {
				bucketWeights[catID] = map[string]float64{}
			}
			bucketWeights[catID][course.DifficultyLevel] += w
		}
	}

	f.PreferredCategoryIDs = topCategories(categoryWeights)
	for _, id := range f.PreferredCategoryIDs {
		f.PreferredCategorySet[id] = true
	}
	f.PreferredDifficulties = topStrings(difficultyWeights)
	for _, d := range f.PreferredDifficulties {
		f.PreferredDifficultySet[d] = true
	}
	f.PreferredStyles = topStrings(styleWeights)
	for _, s := range f.PreferredStyles {
		f.PreferredStyleSet[s] = true
	}

	f.FeatureVector = buildVector(categoryWeights, bucketWeights)

	sort.Slice(f.CompletedCourseIDs, func(i, j int) bool {
		return lessUUID(f.CompletedCourseIDs[i], f.CompletedCourseIDs[j])
	})
	sort.Slice(f.ViewedCourseIDs, func(i, j int) bool {
		return lessUUID(f.ViewedCourseIDs[i], f.ViewedCourseIDs[j])
	})

	return f
}

func topCategories(weights map[uuid.UUID]float64) []uuid.UUID {
	if len(weights) == 0 {
		return nil
	}
	type entry struct {
		id     uuid.UUID
		weight float64
	}
	entries := make([]entry, 0, len(weights))
	top := 0.0
	for id, w := range weights {
		entries = append(entries, entry{id, w})
		if w > top {
			top = w
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].weight != entries[j].weight {
			return entries[i].weight > entries[j].weight
		}
		return lessUUID(entries[i].id, entries[j].id)
	})
	var out []uuid.UUID
	for _, e := range entries {
		if e.weight < top*preferenceCutoff {
			break
		}
		out = append(out, e.id)
		if len(out) == maxPreferredCategories {
			break
		}
	}
	return out
}

func topStrings(weights map[string]float64) []string {
	if len(weights) == 0 {
		return nil
	}
	type entry struct {
		key    string
		weight float64
	}
	entries := make([]entry, 0, len(weights))
	top := 0.0
	for k, w := range weights {
		entries = append(entries, entry{k, w})
		if w > top {
			top = w
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].weight != entries[j].weight {
			return entries[i].weight > entries[j].weight
		}
		return entries[i].key < entries[j].key
	})
	var out []string
	for _, e := range entries {
		if e.weight < top*preferenceCutoff {
			break
		}
		out = append(out, e.key)
	}
	return out
}

func buildVector(categoryWeights map[uuid.UUID]float64, bucketWeights map[uuid.UUID]map[string]float64) []float64 {
	if len(categoryWeights) == 0 {
		return nil
	}
	catIDs := make([]uuid.UUID, 0, len(categoryWeights))
	for id := range categoryWeights {
		catIDs = append(catIDs, id)
	}
	sort.Slice(catIDs, func(i, j int) bool { return lessUUID(catIDs[i], catIDs[j]) })

	vector := make([]float64, 0, len(catIDs)*len(difficultyOrder))
	for _, id := range catIDs {
		for _, level := range difficultyOrder {
			vector = append(vector, bucketWeights[id][level])
		}
	}
	return vector
}
