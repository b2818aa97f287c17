package netlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect_OutBecomesDriver(t *testing.T) {
	d := abcDesign()
	d.MustAddNet("n1")

	d.Connect("n1", "A", "Q")

	n := d.Net("n1")
	assert.Equal(t, ref("A", "Q"), n.Driver)
	assert.Empty(t, n.Users)
	assert.Equal(t, "n1", d.Cell("A").Port("Q").Net)
	requireValid(t, d)
}

func TestConnect_InAndInoutAppendUsers(t *testing.T) {
	d := abcDesign()
	d.MustAddPort("C", "IO", PortInout)
	d.MustAddNet("n1")

	d.Connect("n1", "B", "D")
	d.Connect("n1", "C", "IO")

	n := d.Net("n1")
	assert.False(t, n.HasDriver())
	assert.Equal(t, []PortRef{ref("B", "D"), ref("C", "IO")}, n.Users)
	requireValid(t, d)
}

func TestConnect_AbsentNetIsNoOp(t *testing.T) {
	d := abcDesign()

	d.Connect("", "A", "Q")
	d.Connect("missing", "A", "Q")

	assert.False(t, d.Cell("A").Port("Q").Connected())
	assert.Equal(t, 0, d.NetCount())
}

func TestConnect_SingleDriver(t *testing.T) {
	d := abcDesign()
	d.MustAddPort("C", "Q", PortOut)
	d.MustAddNet("n1")

	d.Connect("n1", "A", "Q")
	ie := requireFatal(t, ErrCodeNetHasDriver, func() {
		d.Connect("n1", "C", "Q")
	})
	assert.Equal(t, "n1", ie.Net)

	// The rejected port is left untouched.
	assert.False(t, d.Cell("C").Port("Q").Connected())
	assert.Equal(t, ref("A", "Q"), d.Net("n1").Driver)
	requireValid(t, d)
}

func TestConnect_OneDriverManyUsers(t *testing.T) {
	d := NewDesign()
	d.MustAddCell("drv", "LUT4")
	d.MustAddPort("drv", "O", PortOut)
	d.MustAddNet("fan")
	d.Connect("fan", "drv", "O")

	for _, name := range []string{"u0", "u1", "u2", "u3"} {
		d.MustAddCell(name, "DFF")
		d.MustAddPort(name, "D", PortIn)
		d.MustAddPort(name, "IO", PortInout)
		d.Connect("fan", name, "D")
		d.Connect("fan", name, "IO")
	}

	assert.Len(t, d.Net("fan").Users, 8)
	requireValid(t, d)
}

func TestConnect_AlreadyConnectedPortIsFatal(t *testing.T) {
	d := abcDesign()
	d.MustAddNet("n1")
	d.MustAddNet("n2")
	d.Connect("n1", "B", "D")

	requireFatal(t, ErrCodePortConnected, func() {
		d.Connect("n2", "B", "D")
	})
	assert.Empty(t, d.Net("n2").Users)
}

func TestConnect_MissingCellOrPortIsFatal(t *testing.T) {
	d := abcDesign()
	d.MustAddNet("n1")

	requireFatal(t, ErrCodeMissingCell, func() { d.Connect("n1", "Z", "Q") })
	requireFatal(t, ErrCodeMissingPort, func() { d.Connect("n1", "A", "nope") })
}

func TestConnect_InvalidPortTypeIsFatal(t *testing.T) {
	d := abcDesign()
	d.MustAddNet("n1")
	d.Cell("B").Ports["X"] = &Port{Name: "X", Type: PortType(9)}

	requireFatal(t, ErrCodeInvalidPortType, func() { d.Connect("n1", "B", "X") })
}

func TestDisconnect_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		cell string
		port string
	}{
		{"driver", "A", "Q"},
		{"user", "B", "D"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := abcDesign()
			d.MustAddNet("n1")
			before := MustFingerprint(d)

			d.Connect("n1", tt.cell, tt.port)
			d.Disconnect(tt.cell, tt.port)

			assert.False(t, d.Cell(tt.cell).Port(tt.port).Connected())
			n := d.Net("n1")
			assert.False(t, n.HasDriver())
			assert.Empty(t, n.Users)
			assert.Equal(t, before, MustFingerprint(d))
			requireValid(t, d)
		})
	}
}

func TestDisconnect_Idempotent(t *testing.T) {
	d := abcDesign()
	d.MustAddNet("n1")
	d.Connect("n1", "A", "Q")
	d.Connect("n1", "B", "D")

	d.Disconnect("B", "D")
	d.Disconnect("B", "D")

	assert.Equal(t, ref("A", "Q"), d.Net("n1").Driver)
	assert.Empty(t, d.Net("n1").Users)
	requireValid(t, d)
}

func TestDisconnect_MissingTargetsAreNoOps(t *testing.T) {
	d := abcDesign()

	assert.NotPanics(t, func() {
		d.Disconnect("Z", "Q")
		d.Disconnect("A", "nope")
		d.Disconnect("A", "Q")
	})
}

func TestDisconnect_LeavesOrphanNet(t *testing.T) {
	d := abcDesign()
	d.MustAddNet("n1")
	d.Connect("n1", "A", "Q")

	d.Disconnect("A", "Q")

	assert.True(t, d.HasNet("n1"))
	assert.Equal(t, []string{"n1"}, d.Orphans())
}

func TestConnectPorts_CreatesSyntheticNet(t *testing.T) {
	d := abcDesign()

	d.ConnectPorts("A", "Q", "B", "D")

	n := d.Net("A$conn$Q")
	require.NotNil(t, n)
	assert.Equal(t, ref("A", "Q"), n.Driver)
	assert.Equal(t, []PortRef{ref("B", "D")}, n.Users)
	assert.Equal(t, "A$conn$Q", d.Cell("B").Port("D").Net)
	requireValid(t, d)
}

func TestConnectPorts_ReusesExistingNet(t *testing.T) {
	d := abcDesign()
	d.MustAddPort("C", "D", PortIn)
	d.MustAddNet("clk")
	d.Connect("clk", "A", "Q")

	d.ConnectPorts("A", "Q", "B", "D")
	d.ConnectPorts("A", "Q", "C", "D")

	assert.Equal(t, 1, d.NetCount())
	assert.Equal(t, []PortRef{ref("B", "D"), ref("C", "D")}, d.Net("clk").Users)
	requireValid(t, d)
}

func TestConnectPorts_NameCollisionIsFatal(t *testing.T) {
	d := abcDesign()
	d.MustAddCell("A$conn$Q", "BUF")

	requireFatal(t, ErrCodeNameCollision, func() {
		d.ConnectPorts("A", "Q", "B", "D")
	})
	assert.False(t, d.Cell("A").Port("Q").Connected())
	assert.False(t, d.HasNet("A$conn$Q"))
}

func TestConnectPorts_CollisionWithNetIsFatal(t *testing.T) {
	d := abcDesign()
	d.MustAddNet("A$conn$Q")

	requireFatal(t, ErrCodeNameCollision, func() {
		d.ConnectPorts("A", "Q", "B", "D")
	})
}

func TestConnectPorts_MissingFirstPortIsFatal(t *testing.T) {
	d := abcDesign()

	requireFatal(t, ErrCodeMissingPort, func() {
		d.ConnectPorts("A", "nope", "B", "D")
	})
}
