package netlist

import "fmt"

// Connect attaches port on cell to the named net.
//
// An empty or unknown net name is a no-op. The cell and port must exist and
// the port must be unconnected. An out port becomes the net's driver and
// requires the net to have none; an in or inout port is appended to the
// users. Violations panic with *InvariantError.
func (d *Design) Connect(net, cell, port string) {
	n := d.Net(net)
	if n == nil {
		return
	}
	d.connect("connect", n, cell, port)
}

func (d *Design) connect(op string, n *Net, cell, port string) {
	p := d.requirePort(op, cell, port)
	if p.Connected() {
		fail(&InvariantError{
			Code:    ErrCodePortConnected,
			Op:      op,
			Message: fmt.Sprintf("port is already connected to net %q", p.Net),
			Cell:    cell,
			Port:    port,
			Net:     n.Name,
		})
	}

	ref := PortRef{Cell: cell, Port: port}
	switch p.Type {
	case PortOut:
		if n.HasDriver() {
			fail(&InvariantError{
				Code:    ErrCodeNetHasDriver,
				Op:      op,
				Message: fmt.Sprintf("net is already driven by %s", n.Driver),
				Cell:    cell,
				Port:    port,
				Net:     n.Name,
			})
		}
		n.setDriver(ref)
	case PortIn, PortInout:
		n.appendUser(ref)
	default:
		fail(&InvariantError{
			Code:    ErrCodeInvalidPortType,
			Op:      op,
			Message: fmt.Sprintf("invalid port type %s", p.Type),
			Cell:    cell,
			Port:    port,
			Net:     n.Name,
		})
	}
	p.Net = n.Name
}

// Disconnect detaches port on cell from its net.
//
// A missing cell or port is a no-op, and so is an unconnected port. Every
// user entry naming the port is removed and the driver is cleared if it is
// the port. The net itself stays in the design, possibly as an orphan.
func (d *Design) Disconnect(cell, port string) {
	c := d.cells[cell]
	if c == nil {
		return
	}
	p := c.Ports[port]
	if p == nil || !p.Connected() {
		return
	}
	if n := d.nets[p.Net]; n != nil {
		n.detach(PortRef{Cell: cell, Port: port})
	}
	p.Net = ""
}

// ConnectPorts wires port1 on cell1 to port2 on cell2.
//
// If port1 is unconnected a net named cell1$conn$port1 is created for it
// first; a collision of that name with an existing cell or net is fatal.
// port2 is then connected to port1's net.
func (d *Design) ConnectPorts(cell1, port1, cell2, port2 string) {
	const op = "connect_ports"
	p1 := d.requirePort(op, cell1, port1)
	if !p1.Connected() {
		name := d.internNetName(op, cell1, port1)
		n := &Net{Name: name}
		d.connect(op, n, cell1, port1)
		d.nets[name] = n
	}
	if n := d.nets[p1.Net]; n != nil {
		d.connect(op, n, cell2, port2)
	}
}

func (d *Design) requireCell(op, cell string) *Cell {
	c := d.cells[cell]
	if c == nil {
		fail(&InvariantError{
			Code:    ErrCodeMissingCell,
			Op:      op,
			Message: "cell does not exist",
			Cell:    cell,
		})
	}
	return c
}

func (d *Design) requirePort(op, cell, port string) *Port {
	c := d.requireCell(op, cell)
	p := c.Ports[port]
	if p == nil {
		fail(&InvariantError{
			Code:    ErrCodeMissingPort,
			Op:      op,
			Message: "port does not exist",
			Cell:    cell,
			Port:    port,
		})
	}
	return p
}
