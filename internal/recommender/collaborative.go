package recommender

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/hybridlms/backend/internal/types"
)

const defaultTopK = 20

// CollaborativeAlgorithm scores courses by what the target user's nearest
// neighbors engaged with. Similarity is the Jaccard index of interacted
// course sets; only the top K neighbors contribute.
type CollaborativeAlgorithm struct {
	TopK int
}

func NewCollaborativeAlgorithm() *CollaborativeAlgorithm {
	return &CollaborativeAlgorithm{TopK: defaultTopK}
}

func (a *CollaborativeAlgorithm) Name() string { return types.AlgorithmCollaborative }

type neighbor struct {
	userID     uuid.UUID
	similarity float64
	scores     map[uuid.UUID]float64
}

func (a *CollaborativeAlgorithm) Score(features *UserFeatures, catalog *Catalog) []Candidate {
	if len(features.Interacted) == 0 {
		return nil
	}

	neighbors := make([]neighbor, 0, len(catalog.Others))
	for _, other := range catalog.Others {
		if other.UserID == features.UserID || len(other.Scores) == 0 {
			continue
		}
		sim := jaccard(features.Interacted, other.Scores)
		if sim <= 0 {
			continue
		}
		neighbors = append(neighbors, neighbor{other.UserID, sim, other.Scores})
	}
	if len(neighbors) == 0 {
		return nil
	}

	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].similarity != neighbors[j].similarity {
			return neighbors[i].similarity > neighbors[j].similarity
		}
		return lessUUID(neighbors[i].userID, neighbors[j].userID)
	})
	topK := a.TopK
	if topK <= 0 {
		topK = defaultTopK
	}
	if len(neighbors) > topK {
		neighbors = neighbors[:topK]
	}

	type acc struct {
		weighted     float64
		simSum       float64
		contributors int
		topSim       float64
	}
	accs := map[uuid.UUID]*acc{}
	for _, n := range neighbors {
		for courseID, score := range n.scores {
			if score <= 0 || features.Interacted[courseID] {
				continue
			}
			entry := accs[courseID]
			if entry == nil {
				entry = &acc{}
				accs[courseID] = entry
			}
			entry.weighted += n.similarity * score
			entry.simSum += n.similarity
			entry.contributors++
			if n.similarity > entry.topSim {
				entry.topSim = n.similarity
			}
		}
	}

	candidates := make([]Candidate, 0, len(accs))
	for courseID, entry := range accs {
		candidates = append(candidates, Candidate{
			CourseID:     courseID,
			Score:        entry.weighted / entry.simSum,
			Reason:       fmt.Sprintf("Learners with similar activity engaged with this course (%d of them)", entry.contributors),
			ReasonData:   map[string]interface{}{"neighbors": entry.contributors, "top_similarity": entry.topSim},
			Contributors: entry.contributors,
		})
	}
	sortCandidates(candidates)
	return candidates
}

func jaccard(a map[uuid.UUID]bool, b map[uuid.UUID]float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for id := range a {
		if _, ok := b[id]; ok {
			intersection++
		}
	}
	if intersection == 0 {
		return 0
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}
