package netlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codes(vs []Violation) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.Code
	}
	return out
}

func TestCheck_ValidDesign(t *testing.T) {
	d := abcDesign()
	d.ConnectPorts("A", "Q", "B", "D")

	assert.Empty(t, d.Check())
	assert.NoError(t, d.Validate())
}

func TestCheck_DetectsCorruption(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(d *Design)
		want    []string
	}{
		{
			name: "driver missing",
			corrupt: func(d *Design) {
				d.Net("A$conn$Q").Driver = ref("Z", "Q")
			},
			want: []string{ErrDriverMissing, ErrPortNotListed},
		},
		{
			name: "driver cannot drive",
			corrupt: func(d *Design) {
				d.Cell("A").Port("Q").Type = PortIn
			},
			want: []string{ErrDriverType, ErrPortNotListed},
		},
		{
			name: "user back reference",
			corrupt: func(d *Design) {
				d.MustAddNet("other")
				d.Cell("B").Port("D").Net = "other"
			},
			want: []string{ErrUserBackRef, ErrPortNotListed},
		},
		{
			name: "user missing",
			corrupt: func(d *Design) {
				n := d.Net("A$conn$Q")
				n.Users = append(n.Users, ref("C", "nope"))
			},
			want: []string{ErrUserMissing},
		},
		{
			name: "duplicate user",
			corrupt: func(d *Design) {
				n := d.Net("A$conn$Q")
				n.Users = append(n.Users, ref("B", "D"))
			},
			want: []string{ErrDuplicateUser},
		},
		{
			name: "port points at missing net",
			corrupt: func(d *Design) {
				d.MustAddPort("C", "X", PortIn)
				d.Cell("C").Port("X").Net = "ghost"
			},
			want: []string{ErrPortNetMissing},
		},
		{
			name: "net key mismatch",
			corrupt: func(d *Design) {
				d.Net("A$conn$Q").Name = "renamed"
			},
			want: []string{ErrKeyMismatch},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := abcDesign()
			d.ConnectPorts("A", "Q", "B", "D")
			tt.corrupt(d)

			assert.ElementsMatch(t, tt.want, codes(d.Check()))

			err := d.Validate()
			require.Error(t, err)
			assert.True(t, IsCheckError(err))
		})
	}
}

func TestCheck_InoutDriverIsValid(t *testing.T) {
	d := NewDesign()
	d.MustAddCell("P", "IOB")
	d.MustAddPort("P", "PAD", PortInout)
	d.MustAddCell("B", "DFF")
	d.MustAddPort("B", "D", PortIn)
	n := d.MustAddNet("pad")
	n.Driver = ref("P", "PAD")
	d.Cell("P").Port("PAD").Net = "pad"
	d.Connect("pad", "B", "D")

	assert.Empty(t, d.Check())
}
