package netlist

import "strconv"

// Bus addresses a family of ports on one cell that share a base name and
// consecutive indices.
//
// With Brackets set, index i names the port "base[Offset+i]"; otherwise the
// index is appended directly, "base<Offset+i>" (DATA0, DATA1, ...).
type Bus struct {
	Cell     string `json:"cell" mapstructure:"cell"`
	Base     string `json:"base" mapstructure:"base"`
	Offset   int    `json:"offset" mapstructure:"offset"`
	Brackets bool   `json:"brackets" mapstructure:"brackets"`
}

// PortName returns the name of the i-th port of the bus, counting from 0.
func (b Bus) PortName(i int) string {
	return BusPortName(b.Base, b.Offset+i, b.Brackets)
}

// BusPortName formats one bit of a bus.
func BusPortName(base string, index int, brackets bool) string {
	if brackets {
		return base + "[" + strconv.Itoa(index) + "]"
	}
	return base + strconv.Itoa(index)
}

// ReplaceBus applies ReplacePort to each of width bus bits, in ascending
// order. It is not transactional: a violation on bit k leaves bits 0..k-1
// replaced.
func (d *Design) ReplaceBus(old, rep Bus, width int) {
	for i := 0; i < width; i++ {
		d.ReplacePort(old.Cell, old.PortName(i), rep.Cell, rep.PortName(i))
	}
}

// CopyBus applies CopyPort to each of width bus bits, in ascending order.
// It is not transactional.
func (d *Design) CopyBus(old, dup Bus, width int) {
	for i := 0; i < width; i++ {
		d.CopyPort(old.Cell, old.PortName(i), dup.Cell, dup.PortName(i))
	}
}
