package netlist

import "fmt"

// CopyPort declares newName on newCell with the type of oldName on oldCell
// and attaches it to the same net, leaving the source untouched.
//
// A missing source cell or port is a no-op. If newCell already declares
// newName the types must match. The attach goes through Connect, so copying
// a connected out port fails with ErrCodeNetHasDriver and copying onto a
// port that is already connected fails with ErrCodePortConnected.
func (d *Design) CopyPort(oldCell, oldName, newCell, newName string) {
	const op = "copy_port"
	oc := d.cells[oldCell]
	if oc == nil {
		return
	}
	src := oc.Ports[oldName]
	if src == nil {
		return
	}
	requireName(op, newCell, newName)
	nc := d.requireCell(op, newCell)

	if dst := nc.Ports[newName]; dst != nil {
		if dst.Type != src.Type {
			fail(&InvariantError{
				Code:    ErrCodeTypeMismatch,
				Op:      op,
				Message: fmt.Sprintf("copy target is %s, source is %s", dst.Type, src.Type),
				Cell:    newCell,
				Port:    newName,
			})
		}
	} else {
		nc.Ports[newName] = &Port{Name: newName, Type: src.Type}
	}

	if n := d.Net(src.Net); n != nil {
		d.connect(op, n, newCell, newName)
	}
}
