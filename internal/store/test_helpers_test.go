package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/pir/internal/builder"
	"github.com/roach88/pir/internal/model"
)

// createTestStore creates a file-backed store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// timestamp parses an RFC 3339 instant.
func timestamp(t *testing.T, s string) time.Time {
	t.Helper()
	at, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("bad timestamp %q: %v", s, err)
	}
	return at
}

// createTestModel builds a small valid process named name.
func createTestModel(t *testing.T, name string) *model.Model {
	t.Helper()

	b := builder.New()
	nodes := []builder.NodeSpec{
		{ID: "start", Kind: "start-event"},
		{ID: "work", Kind: "task", Name: "Work"},
		{ID: "done", Kind: "end-event"},
	}
	for _, spec := range nodes {
		if err := b.AddNode(spec); err != nil {
			t.Fatalf("AddNode(%s) failed: %v", spec.ID, err)
		}
	}
	edges := []builder.EdgeSpec{
		{Source: "start", Target: "work"},
		{Source: "work", Target: "done"},
	}
	for _, spec := range edges {
		if err := b.AddEdge(spec); err != nil {
			t.Fatalf("AddEdge(%s->%s) failed: %v", spec.Source, spec.Target, err)
		}
	}
	if err := b.SetMetadata("process_name", name); err != nil {
		t.Fatalf("SetMetadata failed: %v", err)
	}
	if err := b.AttachRepresentation("flow+yaml", "process: "+name+"\n"); err != nil {
		t.Fatalf("AttachRepresentation failed: %v", err)
	}
	return b.Build()
}
