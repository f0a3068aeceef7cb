package recommender

import (
	"fmt"

	"github.com/hybridlms/backend/internal/types"
)

// PopularityAlgorithm blends normalized enrollment volume with average
// rating. It needs no profile, so it is the fallback that keeps cold-start
// users from getting an empty list.
type PopularityAlgorithm struct {
	EnrollmentWeight float64
	RatingWeight     float64
}

func NewPopularityAlgorithm() *PopularityAlgorithm {
	return &PopularityAlgorithm{EnrollmentWeight: 0.6, RatingWeight: 0.4}
}

func (a *PopularityAlgorithm) Name() string { return types.AlgorithmPopularity }

func (a *PopularityAlgorithm) Score(features *UserFeatures, catalog *Catalog) []Candidate {
	var candidates []Candidate
	for _, course := range catalog.Courses {
		if features.Interacted[course.ID] {
			continue
		}
		normEnrollment := 0.0
		if catalog.MaxEnrollment > 0 {
			normEnrollment = float64(course.EnrollmentCount) / float64(catalog.MaxEnrollment)
		}
		normRating := course.AverageRating / 5.0

		score := a.EnrollmentWeight*normEnrollment + a.RatingWeight*normRating
		if score <= 0 {
			continue
		}
		candidates = append(candidates, Candidate{
			CourseID: course.ID,
			Score:    score,
			Reason:   fmt.Sprintf("Popular with %d enrollments and a %.1f average rating", course.EnrollmentCount, course.AverageRating),
			ReasonData: map[string]interface{}{
				"enrollment_count": course.EnrollmentCount,
				"average_rating":   course.AverageRating,
			},
			Contributors: 1,
		})
	}
	sortCandidates(candidates)
	return candidates
}
