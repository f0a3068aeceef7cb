package recommender

import (
	"fmt"

	"github.com/hybridlms/backend/internal/types"
)

const contentMatchDimensions = 3

// ContentBasedAlgorithm matches catalog courses against the user's derived
// preferences. A course must fall in a preferred category to be considered;
// difficulty and learning style matches strengthen it, and the course's
// rating scales the final score. Courses with no ratings get a neutral 0.5
// quality factor so new content is not buried.
type ContentBasedAlgorithm struct{}

func NewContentBasedAlgorithm() *ContentBasedAlgorithm {
	return &ContentBasedAlgorithm{}
}

func (a *ContentBasedAlgorithm) Name() string { return types.AlgorithmContentBased }

func (a *ContentBasedAlgorithm) Score(features *UserFeatures, catalog *Catalog) []Candidate {
	if len(features.PreferredCategorySet) == 0 {
		return nil
	}

	var candidates []Candidate
	for _, course := range catalog.Courses {
		if features.Interacted[course.ID] {
			continue
		}
		if course.CategoryID == nil || !features.PreferredCategorySet[*course.CategoryID] {
			continue
		}
		matched := 1
		if features.PreferredDifficultySet[course.DifficultyLevel] {
			matched++
		}
		if features.PreferredStyleSet[course.LearningStyle] {
			matched++
		}
		strength := float64(matched) / contentMatchDimensions

		quality := 0.5
		if course.RatingCount > 0 {
			quality = course.AverageRating / 5.0
		}

		candidates = append(candidates, Candidate{
			CourseID: course.ID,
			Score:    strength * quality,
			Reason:   fmt.Sprintf("Matches your interests on %d of %d dimensions", matched, contentMatchDimensions),
			ReasonData: map[string]interface{}{
				"matched_dimensions": matched,
				"category_match":     true,
				"difficulty_match":   features.PreferredDifficultySet[course.DifficultyLevel],
				"style_match":        features.PreferredStyleSet[course.LearningStyle],
			},
			Contributors: 1,
		})
	}
	sortCandidates(candidates)
	return candidates
}
