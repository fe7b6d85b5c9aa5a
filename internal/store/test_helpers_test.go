package store

import (
	"path/filepath"
	"testing"

	"github.com/pipecut/pipecut/internal/graph"
	"github.com/pipecut/pipecut/internal/pipe"
	"github.com/pipecut/pipecut/internal/split"
	"github.com/pipecut/pipecut/internal/testutil"
)

// createTestStore creates a store in a temp directory with deterministic
// run ids.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	s.SetIDSource(testutil.NewFixedIDSource("run"))
	t.Cleanup(func() { s.Close() })
	return s
}

// buildRun partitions a small two-stage program named name.
func buildRun(t *testing.T, name string, cfg split.Config) (*graph.Graph, *pipe.IR) {
	t.Helper()
	g := testutil.NewGraph(name).
		Input("x").
		Call("a", "f", "%x").
		Split("s0").
		Call("b", "g", "%a").
		Output("out", "%b").
		Build()
	ir, err := split.Split(g, cfg)
	if err != nil {
		t.Fatalf("Split() failed: %v", err)
	}
	return g, ir
}
