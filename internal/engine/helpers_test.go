package engine

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/netmut/internal/netlist"
	"github.com/roach88/netmut/internal/store"
)

// setupTestStore opens a store in a temp directory.
func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// abDesign is A.Q (out), B.D (in), C with an IN port D; nothing connected.
func abDesign() *netlist.Design {
	d := netlist.NewDesign()
	d.MustAddCell("A", "LUT4")
	d.MustAddPort("A", "Q", netlist.PortOut)
	d.MustAddCell("B", "DFF")
	d.MustAddPort("B", "D", netlist.PortIn)
	d.MustAddCell("C", "DFF")
	d.MustAddPort("C", "D", netlist.PortIn)
	return d
}

func ref(cell, port string) netlist.PortRef {
	return netlist.PortRef{Cell: cell, Port: port}
}
