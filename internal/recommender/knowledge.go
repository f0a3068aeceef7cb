package recommender

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/hybridlms/backend/internal/types"
)

// KnowledgeBasedAlgorithm applies two curated rules. Progression: after
// completing a course, the next difficulty level in the same category is a
// strong suggestion. Trending: courses with high recent enrollment velocity
// get a boost. When both rules hit the same course the higher score wins.
type KnowledgeBasedAlgorithm struct {
	ProgressionScore float64
	TrendingBase     float64
	TrendingSpan     float64
}

func NewKnowledgeBasedAlgorithm() *KnowledgeBasedAlgorithm {
	return &KnowledgeBasedAlgorithm{
		ProgressionScore: 0.9,
		TrendingBase:     0.6,
		TrendingSpan:     0.3,
	}
}

func (a *KnowledgeBasedAlgorithm) Name() string { return types.AlgorithmKnowledgeBased }

func (a *KnowledgeBasedAlgorithm) Score(features *UserFeatures, catalog *Catalog) []Candidate {
	byID := make(map[uuid.UUID]*types.Course, len(catalog.Courses))
	for _, course := range catalog.Courses {
		byID[course.ID] = course
	}

	best := map[uuid.UUID]Candidate{}
	keep := func(c Candidate) {
		existing, ok := best[c.CourseID]
		if !ok || c.Score > existing.Score {
			best[c.CourseID] = c
		}
	}

	for _, completedID := range features.CompletedCourseIDs {
		completed := byID[completedID]
		if completed == nil || completed.CategoryID == nil {
			continue
		}
		next := types.NextDifficulty(completed.DifficultyLevel)
		if next == "" {
			continue
		}
		for _, course := range catalog.Courses {
			if features.Interacted[course.ID] {
				continue
			}
			if course.CategoryID == nil || *course.CategoryID != *completed.CategoryID {
				continue
			}
			if course.DifficultyLevel != next {
				continue
			}
			keep(Candidate{
				CourseID: course.ID,
				Score:    a.ProgressionScore,
				Reason:   fmt.Sprintf("Natural next step after completing %s", completed.Title),
				ReasonData: map[string]interface{}{
					"rule":       "progression",
					"based_on":   completedID.String(),
					"difficulty": next,
				},
				Contributors: 1,
			})
		}
	}

	if catalog.MaxRecentEnrollment > 0 {
		for _, course := range catalog.Courses {
			if features.Interacted[course.ID] || course.RecentEnrollmentCount <= 0 {
				continue
			}
			velocity := float64(course.RecentEnrollmentCount) / float64(catalog.MaxRecentEnrollment)
			keep(Candidate{
				CourseID: course.ID,
				Score:    a.TrendingBase + a.TrendingSpan*velocity,
				Reason:   fmt.Sprintf("Trending now with %d recent enrollments", course.RecentEnrollmentCount),
				ReasonData: map[string]interface{}{
					"rule":               "trending",
					"recent_enrollments": course.RecentEnrollmentCount,
				},
				Contributors: 1,
			})
		}
	}

	candidates := make([]Candidate, 0, len(best))
	for _, c := range best {
		candidates = append(candidates, c)
	}
	sortCandidates(candidates)
	return candidates
}
