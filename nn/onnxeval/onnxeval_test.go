package onnxeval

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewRejectsUnconfiguredWeights(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatal("expected error for empty weights path")
	}
	if _, err := New("<autodiscover>"); err == nil {
		t.Fatal("expected error for unresolved autodiscover placeholder")
	}
}

func TestNewRejectsMissingFile(t *testing.T) {
	if _, err := New("/nonexistent/weights.onnx"); err == nil {
		t.Fatal("expected error for missing weights file")
	}
}

// Compute with zero inputs never touches the on-disk weights file, so this
// exercises the no-op path without needing a real ONNX graph.
func TestComputeIsNoopWithNoInputs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.onnx")
	if err := os.WriteFile(path, []byte("not a real graph"), 0o644); err != nil {
		t.Fatalf("write temp weights: %v", err)
	}

	e, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c := e.NewComputation()
	if err := c.Compute(); err != nil {
		t.Fatalf("Compute with no inputs should be a no-op: %v", err)
	}
}
