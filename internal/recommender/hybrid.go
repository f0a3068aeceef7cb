package recommender

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/hybridlms/backend/internal/logger"
)

// Exclusions filters blended results after scoring, so exclusion settings
// never change relative ordering of the courses that remain.
type Exclusions struct {
	ExcludeCompleted bool
	ExcludeEnrolled  bool
	Completed        map[uuid.UUID]bool
	Enrolled         map[uuid.UUID]bool
}

func (e Exclusions) excluded(courseID uuid.UUID) bool {
	if e.ExcludeCompleted && e.Completed[courseID] {
		return true
	}
	if e.ExcludeEnrolled && e.Enrolled[courseID] {
		return true
	}
	return false
}

// Ranked is one blended recommendation: the weighted sum of every
// algorithm's contribution plus the provenance needed for explanations.
type Ranked struct {
	CourseID   uuid.UUID
	Score      float64
	Algorithms []string
	Reason     string
	ReasonData map[string]interface{}
}

// Combiner runs the closed set of algorithms and blends their candidates
// additively. A panicking algorithm contributes nothing; the run only fails
// if nothing downstream can be persisted.
type Combiner struct {
	algorithms []Algorithm
	weights    Weights
	log        *logger.Logger
}

func NewCombiner(weights Weights, baseLog *logger.Logger) *Combiner {
	return &Combiner{
		algorithms: []Algorithm{
			NewCollaborativeAlgorithm(),
			NewContentBasedAlgorithm(),
			NewPopularityAlgorithm(),
			NewKnowledgeBasedAlgorithm(),
		},
		weights: weights,
		log:     baseLog.With("component", "Combiner"),
	}
}

func (c *Combiner) Weights() Weights { return c.weights }

func (c *Combiner) Combine(features *UserFeatures, catalog *Catalog, exclusions Exclusions, max int) []Ranked {
	type blend struct {
		score      float64
		algorithms []string
		reasons    []string
		reasonData map[string]interface{}
	}
	blends := map[uuid.UUID]*blend{}

	for _, algorithm := range c.algorithms {
		weight := c.weights.For(algorithm.Name())
		if weight <= 0 {
			continue
		}
		candidates := c.run(algorithm, features, catalog)
		seen := map[uuid.UUID]bool{}
		for _, cand := range candidates {
			if seen[cand.CourseID] {
				continue
			}
			seen[cand.CourseID] = true

			entry := blends[cand.CourseID]
			if entry == nil {
				entry = &blend{reasonData: map[string]interface{}{}}
				blends[cand.CourseID] = entry
			}
			entry.score += weight * cand.Score
			entry.algorithms = append(entry.algorithms, algorithm.Name())
			entry.reasons = append(entry.reasons, cand.Reason)
			entry.reasonData[algorithm.Name()] = cand.ReasonData
		}
	}

	ranked := make([]Ranked, 0, len(blends))
	for courseID, entry := range blends {
		if exclusions.excluded(courseID) {
			continue
		}
		ranked = append(ranked, Ranked{
			CourseID:   courseID,
			Score:      entry.score,
			Algorithms: entry.algorithms,
			Reason:     strings.Join(entry.reasons, "; "),
			ReasonData: entry.reasonData,
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		if len(ranked[i].Algorithms) != len(ranked[j].Algorithms) {
			return len(ranked[i].Algorithms) > len(ranked[j].Algorithms)
		}
		return lessUUID(ranked[i].CourseID, ranked[j].CourseID)
	})

	if max > 0 && len(ranked) > max {
		ranked = ranked[:max]
	}
	return ranked
}

// run isolates one algorithm so a panic degrades to zero candidates instead
// of killing the whole generation run.
func (c *Combiner) run(algorithm Algorithm, features *UserFeatures, catalog *Catalog) (candidates []Candidate) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("algorithm panicked, skipping its candidates", "algorithm", algorithm.Name(), "panic", r)
			candidates = nil
		}
	}()
	return algorithm.Score(features, catalog)
}
