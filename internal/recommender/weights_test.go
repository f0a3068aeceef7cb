package recommender

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hybridlms/backend/internal/apperr"
)

func TestLoadWeightsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.yaml")
	content := "collaborative: 0.4\ncontent_based: 0.3\npopularity: 0.1\nknowledge_based: 0.2\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write weights file: %v", err)
	}

	weights, err := LoadWeightsFile(path)
	if err != nil {
		t.Fatalf("expected valid weights file to load: %v", err)
	}
	if weights.Collaborative != 0.4 || weights.KnowledgeBased != 0.2 {
		t.Fatalf("loaded weights do not match file: %+v", weights)
	}
}

func TestLoadWeightsFileRejectsBadSum(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.yaml")
	content := "collaborative: 0.9\ncontent_based: 0.9\npopularity: 0.0\nknowledge_based: 0.0\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write weights file: %v", err)
	}

	if _, err := LoadWeightsFile(path); !errors.Is(err, apperr.ErrConfiguration) {
		t.Fatalf("weights summing to 1.8 should be a configuration error, got %v", err)
	}
}

func TestLoadWeightsFileMissing(t *testing.T) {
	if _, err := LoadWeightsFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected an error for a missing weights file")
	}
}
