package netlist

import "fmt"

// ReplacePort moves the connectivity of oldPort on oldCell to newPort on
// newCell.
//
// A missing old cell or port is a no-op. The new port is created with the
// old port's type if newCell does not declare it; if it does, the types
// must match and the new port must be unconnected. The driver or user
// entries naming the old port are rewritten in place, so user order is kept,
// and the old port is removed from its cell. Only out and in ports can be
// replaced.
func (d *Design) ReplacePort(oldCell, oldPort, newCell, newPort string) {
	const op = "replace_port"
	oc := d.cells[oldCell]
	if oc == nil {
		return
	}
	old := oc.Ports[oldPort]
	if old == nil {
		return
	}
	if oldCell == newCell && oldPort == newPort {
		return
	}
	requireName(op, newCell, newPort)
	nc := d.requireCell(op, newCell)

	if old.Type != PortOut && old.Type != PortIn {
		fail(&InvariantError{
			Code:    ErrCodeInvalidPortType,
			Op:      op,
			Message: fmt.Sprintf("cannot replace a port of type %s", old.Type),
			Cell:    oldCell,
			Port:    oldPort,
		})
	}

	rep := nc.Ports[newPort]
	if rep == nil {
		rep = &Port{Name: newPort, Type: old.Type}
	} else {
		if rep.Type != old.Type {
			fail(&InvariantError{
				Code:    ErrCodeTypeMismatch,
				Op:      op,
				Message: fmt.Sprintf("replacement port is %s, original is %s", rep.Type, old.Type),
				Cell:    newCell,
				Port:    newPort,
			})
		}
		if rep.Connected() {
			fail(&InvariantError{
				Code:    ErrCodePortConnected,
				Op:      op,
				Message: fmt.Sprintf("replacement port is already connected to net %q", rep.Net),
				Cell:    newCell,
				Port:    newPort,
				Net:     rep.Net,
			})
		}
	}

	if n := d.Net(old.Net); n != nil {
		n.retarget(PortRef{Cell: oldCell, Port: oldPort}, PortRef{Cell: newCell, Port: newPort})
	}
	rep.Net = old.Net
	old.Net = ""
	nc.Ports[newPort] = rep
	delete(oc.Ports, oldPort)
}

// RenamePort relabels a port on a cell, keeping its connectivity.
//
// A missing cell or port is a no-op. Driver and user entries naming the old
// port are rewritten in place. Renaming onto another existing port is fatal.
func (d *Design) RenamePort(cell, oldName, newName string) {
	const op = "rename_port"
	c := d.cells[cell]
	if c == nil {
		return
	}
	p := c.Ports[oldName]
	if p == nil || oldName == newName {
		return
	}
	requireName(op, cell, newName)
	if c.HasPort(newName) {
		fail(&InvariantError{
			Code:    ErrCodePortExists,
			Op:      op,
			Message: fmt.Sprintf("cannot rename %q: target name is taken", oldName),
			Cell:    cell,
			Port:    newName,
		})
	}

	if n := d.Net(p.Net); n != nil {
		n.retarget(PortRef{Cell: cell, Port: oldName}, PortRef{Cell: cell, Port: newName})
	}
	delete(c.Ports, oldName)
	p.Name = newName
	c.Ports[newName] = p
}

// RenameNet moves a net to a new name and updates every attached port.
//
// An empty or unknown net name is a no-op. The new name must be free.
func (d *Design) RenameNet(net, newName string) {
	const op = "rename_net"
	n := d.Net(net)
	if n == nil {
		return
	}
	if newName == "" {
		fail(&InvariantError{
			Code:    ErrCodeInvalidName,
			Op:      op,
			Message: "new net name is empty",
			Net:     net,
		})
	}
	if d.HasNet(newName) {
		fail(&InvariantError{
			Code:    ErrCodeNetExists,
			Op:      op,
			Message: fmt.Sprintf("cannot rename %q: net %q already exists", net, newName),
			Net:     newName,
		})
	}
	d.moveNet(n, newName)
}

func requireName(op, cell, port string) {
	if cell == "" || port == "" {
		fail(&InvariantError{
			Code:    ErrCodeInvalidName,
			Op:      op,
			Message: "cell and port names must be non-empty",
			Cell:    cell,
			Port:    port,
		})
	}
}
