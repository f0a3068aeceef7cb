package recommender

import (
	"bytes"
	"sort"

	"github.com/google/uuid"

	"github.com/hybridlms/backend/internal/types"
)

// UserInteractions is one other user's course set, used by the
// collaborative algorithm. Scores holds the implicit positive signal per
// course (completed 1.0, enrolled 0.8, rated r/5 when r >= 3); courses the
// user touched without a positive signal are present with score 0 so the
// full set still feeds the Jaccard overlap.
type UserInteractions struct {
	UserID uuid.UUID
	Scores map[uuid.UUID]float64
}

// Catalog is the read-only snapshot a generation run scores against:
// published courses plus every other user's interaction set and the
// normalization maxima. It is assembled once per run and never mutated.
type Catalog struct {
	Courses             []*types.Course
	Others              []UserInteractions
	MaxEnrollment       int
	MaxRecentEnrollment int
}

// UserFeatures is the Profile Builder output consumed by the algorithms.
// A user with no interactions yields the zero-ish value (empty sets), which
// every algorithm except popularity treats as cold start.
type UserFeatures struct {
	UserID uuid.UUID

	PreferredCategoryIDs  []uuid.UUID
	PreferredDifficulties []string
	PreferredStyles       []string
	CompletedCourseIDs    []uuid.UUID
	ViewedCourseIDs       []uuid.UUID

	PreferredCategorySet   map[uuid.UUID]bool
	PreferredDifficultySet map[string]bool
	PreferredStyleSet      map[string]bool
	Completed              map[uuid.UUID]bool
	Interacted             map[uuid.UUID]bool

	TotalLearningMinutes int
	FeatureVector        []float64
}

// Candidate is one algorithm's scored suggestion before hybrid blending.
type Candidate struct {
	CourseID     uuid.UUID
	Score        float64
	Reason       string
	ReasonData   map[string]interface{}
	Contributors int
}

// Algorithm is the closed scoring interface. Implementations must be pure
// over their inputs so that two runs against the same snapshot produce
// identical output.
type Algorithm interface {
	Name() string
	Score(features *UserFeatures, catalog *Catalog) []Candidate
}

func lessUUID(a, b uuid.UUID) bool {
	return bytes.Compare(a[:], b[:]) < 0
}

// sortCandidates orders by score descending, then contributor count
// descending, then course id ascending.
func sortCandidates(cands []Candidate) {
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].Score != cands[j].Score {
			return cands[i].Score > cands[j].Score
		}
		if cands[i].Contributors != cands[j].Contributors {
			return cands[i].Contributors > cands[j].Contributors
		}
		return lessUUID(cands[i].CourseID, cands[j].CourseID)
	})
}
