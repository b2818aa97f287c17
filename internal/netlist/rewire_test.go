package netlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRewire_ConcreteScenario walks connect_ports, rename_port and
// replace_port over the A/B/C fixture.
func TestRewire_ConcreteScenario(t *testing.T) {
	d := abcDesign()

	d.ConnectPorts("A", "Q", "B", "D")
	n := d.Net("A$conn$Q")
	require.NotNil(t, n)
	assert.Equal(t, ref("A", "Q"), n.Driver)
	assert.Equal(t, []PortRef{ref("B", "D")}, n.Users)

	d.RenamePort("B", "D", "D2")
	n = d.Net("A$conn$Q")
	assert.Equal(t, []PortRef{ref("B", "D2")}, n.Users)
	assert.False(t, d.Cell("B").HasPort("D"))
	assert.Equal(t, "A$conn$Q", d.Cell("B").Port("D2").Net)

	d.ReplacePort("B", "D2", "C", "D3")
	n = d.Net("A$conn$Q")
	assert.Equal(t, ref("A", "Q"), n.Driver)
	assert.Equal(t, []PortRef{ref("C", "D3")}, n.Users)
	assert.False(t, d.Cell("B").HasPort("D2"))
	require.True(t, d.Cell("C").HasPort("D3"))
	assert.Equal(t, PortIn, d.Cell("C").Port("D3").Type)
	assert.Equal(t, "A$conn$Q", d.Cell("C").Port("D3").Net)
	requireValid(t, d)
}

func TestRenamePort_PreservesUserPosition(t *testing.T) {
	d := NewDesign()
	d.MustAddCell("drv", "LUT4")
	d.MustAddPort("drv", "O", PortOut)
	d.MustAddNet("n")
	d.Connect("n", "drv", "O")
	for _, c := range []string{"u0", "u1", "u2"} {
		d.MustAddCell(c, "DFF")
		d.MustAddPort(c, "D", PortIn)
		d.Connect("n", c, "D")
	}

	d.RenamePort("u1", "D", "DIN")

	assert.Equal(t, []PortRef{ref("u0", "D"), ref("u1", "DIN"), ref("u2", "D")}, d.Net("n").Users)
	requireValid(t, d)
}

func TestRenamePort_Driver(t *testing.T) {
	d := abcDesign()
	d.ConnectPorts("A", "Q", "B", "D")

	d.RenamePort("A", "Q", "O")

	n := d.Net("A$conn$Q")
	assert.Equal(t, ref("A", "O"), n.Driver)
	assert.Equal(t, PortOut, d.Cell("A").Port("O").Type)
	requireValid(t, d)
}

func TestRenamePort_IsomorphicUpToName(t *testing.T) {
	d := abcDesign()
	d.ConnectPorts("A", "Q", "B", "D")
	want := d.Clone()

	d.RenamePort("B", "D", "D2")
	d.RenamePort("B", "D2", "D")

	assert.Equal(t, MustFingerprint(want), MustFingerprint(d))
}

func TestRenamePort_NoOps(t *testing.T) {
	d := abcDesign()
	before := MustFingerprint(d)

	d.RenamePort("Z", "D", "D2")
	d.RenamePort("B", "nope", "D2")
	d.RenamePort("B", "D", "D")

	assert.Equal(t, before, MustFingerprint(d))
}

func TestRenamePort_OntoExistingPortIsFatal(t *testing.T) {
	d := abcDesign()
	d.MustAddPort("B", "E", PortIn)

	requireFatal(t, ErrCodePortExists, func() { d.RenamePort("B", "D", "E") })
	assert.True(t, d.Cell("B").HasPort("D"))
}

func TestReplacePort_Driver(t *testing.T) {
	d := abcDesign()
	d.ConnectPorts("A", "Q", "B", "D")

	d.ReplacePort("A", "Q", "C", "O")

	n := d.Net("A$conn$Q")
	assert.Equal(t, ref("C", "O"), n.Driver)
	assert.Equal(t, PortOut, d.Cell("C").Port("O").Type)
	assert.False(t, d.Cell("A").HasPort("Q"))
	requireValid(t, d)
}

func TestReplacePort_RewritesUsersInPlace(t *testing.T) {
	d := NewDesign()
	d.MustAddCell("drv", "LUT4")
	d.MustAddPort("drv", "O", PortOut)
	d.MustAddNet("n")
	d.Connect("n", "drv", "O")
	for _, c := range []string{"u0", "u1", "u2"} {
		d.MustAddCell(c, "DFF")
		d.MustAddPort(c, "D", PortIn)
		d.Connect("n", c, "D")
	}
	d.MustAddCell("r", "DFF")

	d.ReplacePort("u1", "D", "r", "D")

	assert.Equal(t, []PortRef{ref("u0", "D"), ref("r", "D"), ref("u2", "D")}, d.Net("n").Users)
	requireValid(t, d)
}

func TestReplacePort_ExistingPortOfSameType(t *testing.T) {
	d := abcDesign()
	d.MustAddPort("C", "D", PortIn)
	d.ConnectPorts("A", "Q", "B", "D")

	d.ReplacePort("B", "D", "C", "D")

	assert.Equal(t, []PortRef{ref("C", "D")}, d.Net("A$conn$Q").Users)
	requireValid(t, d)
}

func TestReplacePort_UnconnectedMovesDeclaration(t *testing.T) {
	d := abcDesign()

	d.ReplacePort("B", "D", "C", "D")

	assert.False(t, d.Cell("B").HasPort("D"))
	require.True(t, d.Cell("C").HasPort("D"))
	assert.False(t, d.Cell("C").Port("D").Connected())
	requireValid(t, d)
}

func TestReplacePort_SameCellNewName(t *testing.T) {
	d := abcDesign()
	d.ConnectPorts("A", "Q", "B", "D")

	d.ReplacePort("B", "D", "B", "DX")

	assert.False(t, d.Cell("B").HasPort("D"))
	assert.Equal(t, []PortRef{ref("B", "DX")}, d.Net("A$conn$Q").Users)
	requireValid(t, d)
}

func TestReplacePort_NoOps(t *testing.T) {
	d := abcDesign()
	d.ConnectPorts("A", "Q", "B", "D")
	before := MustFingerprint(d)

	d.ReplacePort("Z", "D", "C", "D")
	d.ReplacePort("B", "nope", "C", "D")
	d.ReplacePort("B", "D", "B", "D")

	assert.Equal(t, before, MustFingerprint(d))
}

func TestReplacePort_TypeMismatchIsFatal(t *testing.T) {
	d := abcDesign()
	d.MustAddPort("C", "D", PortOut)

	requireFatal(t, ErrCodeTypeMismatch, func() { d.ReplacePort("B", "D", "C", "D") })
	assert.True(t, d.Cell("B").HasPort("D"))
}

func TestReplacePort_InoutIsFatal(t *testing.T) {
	d := abcDesign()
	d.MustAddPort("B", "IO", PortInout)

	requireFatal(t, ErrCodeInvalidPortType, func() { d.ReplacePort("B", "IO", "C", "IO") })
	assert.False(t, d.Cell("C").HasPort("IO"))
}

func TestReplacePort_ConnectedTargetIsFatal(t *testing.T) {
	d := abcDesign()
	d.MustAddPort("C", "D", PortIn)
	d.MustAddNet("other")
	d.Connect("other", "C", "D")
	d.ConnectPorts("A", "Q", "B", "D")

	requireFatal(t, ErrCodePortConnected, func() { d.ReplacePort("B", "D", "C", "D") })
	requireValid(t, d)
}

func TestReplacePort_MissingNewCellIsFatal(t *testing.T) {
	d := abcDesign()

	requireFatal(t, ErrCodeMissingCell, func() { d.ReplacePort("B", "D", "Z", "D") })
}

func TestRenameNet_MovesSlotAndBackReferences(t *testing.T) {
	d := abcDesign()
	d.ConnectPorts("A", "Q", "B", "D")

	d.RenameNet("A$conn$Q", "data")

	assert.False(t, d.HasNet("A$conn$Q"))
	n := d.Net("data")
	require.NotNil(t, n)
	assert.Equal(t, "data", n.Name)
	assert.Equal(t, "data", d.Cell("A").Port("Q").Net)
	assert.Equal(t, "data", d.Cell("B").Port("D").Net)
	requireValid(t, d)
}

func TestRenameNet_AbsentIsNoOp(t *testing.T) {
	d := abcDesign()

	assert.NotPanics(t, func() {
		d.RenameNet("missing", "x")
		d.RenameNet("", "x")
	})
	assert.Equal(t, 0, d.NetCount())
}

func TestRenameNet_ExistingNameIsFatal(t *testing.T) {
	d := abcDesign()
	d.MustAddNet("a")
	d.MustAddNet("b")

	requireFatal(t, ErrCodeNetExists, func() { d.RenameNet("a", "b") })
	requireFatal(t, ErrCodeNetExists, func() { d.RenameNet("a", "a") })
	requireFatal(t, ErrCodeInvalidName, func() { d.RenameNet("a", "") })
	assert.True(t, d.HasNet("a"))
}
