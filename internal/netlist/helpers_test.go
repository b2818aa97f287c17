package netlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requireFatal runs fn and asserts it panicked with an *InvariantError of
// the given code.
func requireFatal(t *testing.T, code InvariantCode, fn func()) *InvariantError {
	t.Helper()
	err := Guard(fn)
	require.Error(t, err, "expected a %s violation", code)
	var ie *InvariantError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, code, ie.Code)
	return ie
}

// requireValid asserts the design satisfies every invariant.
func requireValid(t *testing.T, d *Design) {
	t.Helper()
	require.Empty(t, d.Check(), "design should satisfy all invariants")
}

// abcDesign builds the three-cell fixture used across tests:
// A.Q (out), B.D (in), C with no ports. Nothing is connected.
func abcDesign() *Design {
	d := NewDesign()
	d.MustAddCell("A", "LUT4")
	d.MustAddPort("A", "Q", PortOut)
	d.MustAddCell("B", "DFF")
	d.MustAddPort("B", "D", PortIn)
	d.MustAddCell("C", "DFF")
	return d
}

func ref(cell, port string) PortRef {
	return PortRef{Cell: cell, Port: port}
}
