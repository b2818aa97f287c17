package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/netmut/internal/netlist"
)

// createTestStore creates a new store in a temp directory for testing.
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

// testSnapshot builds a small connected design: A.Q drives B.D.
func testSnapshot() netlist.Snapshot {
	d := netlist.NewDesign()
	d.MustAddCell("A", "LUT4")
	d.MustAddPort("A", "Q", netlist.PortOut)
	d.MustAddCell("B", "DFF")
	d.MustAddPort("B", "D", netlist.PortIn)
	d.ConnectPorts("A", "Q", "B", "D")
	return d.Snapshot()
}

// createTestRun writes the test snapshot and a run referencing it.
func createTestRun(t *testing.T, s *Store, id string, seq int64) string {
	t.Helper()
	ctx := context.Background()
	hash, err := s.WriteSnapshot(ctx, testSnapshot())
	if err != nil {
		t.Fatalf("WriteSnapshot() failed: %v", err)
	}
	if err := s.WriteRun(ctx, Run{ID: id, Seq: seq, InitialHash: hash}); err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}
	return hash
}

func createTestMutation(runID string, seq int64, kind string) Mutation {
	return Mutation{
		RunID:       runID,
		Seq:         seq,
		Kind:        kind,
		Args:        map[string]any{"from": "a", "to": "b"},
		OpHash:      "op-hash",
		Fingerprint: "fp",
		Status:      MutationApplied,
	}
}
