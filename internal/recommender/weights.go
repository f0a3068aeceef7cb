package recommender

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hybridlms/backend/internal/apperr"
	"github.com/hybridlms/backend/internal/types"
)

const weightSumTolerance = 1e-6

// Weights controls how much each algorithm contributes to the blended
// score. They must be non-negative and sum to 1.0.
type Weights struct {
	Collaborative  float64 `yaml:"collaborative" json:"collaborative"`
	ContentBased   float64 `yaml:"content_based" json:"content_based"`
	Popularity     float64 `yaml:"popularity" json:"popularity"`
	KnowledgeBased float64 `yaml:"knowledge_based" json:"knowledge_based"`
}

func DefaultWeights() Weights {
	return Weights{
		Collaborative:  0.35,
		ContentBased:   0.25,
		Popularity:     0.15,
		KnowledgeBased: 0.25,
	}
}

func (w Weights) Validate() error {
	for name, value := range map[string]float64{
		types.AlgorithmCollaborative:  w.Collaborative,
		types.AlgorithmContentBased:   w.ContentBased,
		types.AlgorithmPopularity:     w.Popularity,
		types.AlgorithmKnowledgeBased: w.KnowledgeBased,
	} {
		if value < 0 {
			return fmt.Errorf("%w: %s weight %.4f is negative", apperr.ErrConfiguration, name, value)
		}
	}
	sum := w.Collaborative + w.ContentBased + w.Popularity + w.KnowledgeBased
	if math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("%w: algorithm weights sum to %.6f, want 1.0", apperr.ErrConfiguration, sum)
	}
	return nil
}

// For returns the weight assigned to the named algorithm, 0 for unknown
// names.
func (w Weights) For(name string) float64 {
	switch name {
	case types.AlgorithmCollaborative:
		return w.Collaborative
	case types.AlgorithmContentBased:
		return w.ContentBased
	case types.AlgorithmPopularity:
		return w.Popularity
	case types.AlgorithmKnowledgeBased:
		return w.KnowledgeBased
	}
	return 0
}

// LoadWeightsFile reads algorithm weights from a YAML file, used to seed
// non-default weights at deploy time.
func LoadWeightsFile(path string) (Weights, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Weights{}, fmt.Errorf("read weights file: %w", err)
	}
	weights := DefaultWeights()
	if err := yaml.Unmarshal(raw, &weights); err != nil {
		return Weights{}, fmt.Errorf("parse weights file: %w", err)
	}
	if err := weights.Validate(); err != nil {
		return Weights{}, err
	}
	return weights, nil
}
