package netlist

import (
	"fmt"
	"sort"
)

// SyntheticNetSep joins a cell name and a port name into the name of a net
// created by ConnectPorts.
const SyntheticNetSep = "$conn$"

// Design is the graph store: the owning collection of cells and nets.
//
// A Design is not safe for concurrent use. Holders of a net name must
// re-resolve it after any mutation that may rename the net.
type Design struct {
	cells map[string]*Cell
	nets  map[string]*Net
}

// NewDesign creates an empty design.
func NewDesign() *Design {
	return &Design{
		cells: make(map[string]*Cell),
		nets:  make(map[string]*Net),
	}
}

// Cell returns the named cell, or nil.
func (d *Design) Cell(name string) *Cell {
	return d.cells[name]
}

// Net returns the named net, or nil.
func (d *Design) Net(name string) *Net {
	if name == "" {
		return nil
	}
	return d.nets[name]
}

// Port returns the port addressed by ref, or nil.
func (d *Design) Port(ref PortRef) *Port {
	c := d.cells[ref.Cell]
	if c == nil {
		return nil
	}
	return c.Ports[ref.Port]
}

// HasCell reports whether a cell with this name exists.
func (d *Design) HasCell(name string) bool {
	_, ok := d.cells[name]
	return ok
}

// HasNet reports whether a net with this name exists.
func (d *Design) HasNet(name string) bool {
	_, ok := d.nets[name]
	return ok
}

// CellNames returns all cell names in sorted order.
func (d *Design) CellNames() []string {
	return sortedKeys(d.cells)
}

// NetNames returns all net names in sorted order.
func (d *Design) NetNames() []string {
	return sortedKeys(d.nets)
}

// CellCount returns the number of cells.
func (d *Design) CellCount() int {
	return len(d.cells)
}

// NetCount returns the number of nets.
func (d *Design) NetCount() int {
	return len(d.nets)
}

// Orphans returns the names of nets with neither driver nor users, sorted.
// Removing them is the job of a separate compaction pass.
func (d *Design) Orphans() []string {
	var out []string
	for _, name := range d.NetNames() {
		if d.nets[name].Orphan() {
			out = append(out, name)
		}
	}
	return out
}

// AddCell creates an empty cell.
func (d *Design) AddCell(name, cellType string) (*Cell, error) {
	if name == "" {
		return nil, fmt.Errorf("add cell: empty name")
	}
	if _, exists := d.cells[name]; exists {
		return nil, fmt.Errorf("add cell: cell %q already exists", name)
	}
	c := &Cell{
		Name:  name,
		Type:  cellType,
		Ports: make(map[string]*Port),
		Attrs: make(map[string]string),
	}
	d.cells[name] = c
	return c, nil
}

// AddPort declares an unconnected port on an existing cell.
func (d *Design) AddPort(cell, name string, t PortType) (*Port, error) {
	c := d.cells[cell]
	if c == nil {
		return nil, fmt.Errorf("add port: cell %q not found", cell)
	}
	if name == "" {
		return nil, fmt.Errorf("add port: empty port name on cell %q", cell)
	}
	if !t.Valid() {
		return nil, fmt.Errorf("add port: %s.%s: invalid port type %s", cell, name, t)
	}
	if _, exists := c.Ports[name]; exists {
		return nil, fmt.Errorf("add port: port %s.%s already exists", cell, name)
	}
	p := &Port{Name: name, Type: t}
	c.Ports[name] = p
	return p, nil
}

// AddNet creates a net with no driver and no users.
func (d *Design) AddNet(name string) (*Net, error) {
	if name == "" {
		return nil, fmt.Errorf("add net: empty name")
	}
	if _, exists := d.nets[name]; exists {
		return nil, fmt.Errorf("add net: net %q already exists", name)
	}
	n := &Net{Name: name}
	d.nets[name] = n
	return n, nil
}

// MustAddCell is like AddCell but panics on error.
// Use only in tests or when inputs are known to be valid.
func (d *Design) MustAddCell(name, cellType string) *Cell {
	c, err := d.AddCell(name, cellType)
	if err != nil {
		panic(err)
	}
	return c
}

// MustAddPort is like AddPort but panics on error.
// Use only in tests or when inputs are known to be valid.
func (d *Design) MustAddPort(cell, name string, t PortType) *Port {
	p, err := d.AddPort(cell, name, t)
	if err != nil {
		panic(err)
	}
	return p
}

// MustAddNet is like AddNet but panics on error.
// Use only in tests or when inputs are known to be valid.
func (d *Design) MustAddNet(name string) *Net {
	n, err := d.AddNet(name)
	if err != nil {
		panic(err)
	}
	return n
}

// SyntheticNetName derives the name ConnectPorts gives a net it creates.
func SyntheticNetName(cell, port string) string {
	return cell + SyntheticNetSep + port
}

// internNetName derives a synthetic net name and fails if it is already
// taken by a cell or a net.
func (d *Design) internNetName(op, cell, port string) string {
	name := SyntheticNetName(cell, port)
	if d.HasCell(name) || d.HasNet(name) {
		fail(&InvariantError{
			Code:    ErrCodeNameCollision,
			Op:      op,
			Message: fmt.Sprintf("synthetic net name %q is already in use", name),
			Cell:    cell,
			Port:    port,
			Net:     name,
		})
	}
	return name
}

// moveNet re-keys a net and rewrites the back-reference of every attached
// port. The caller has checked that to is free.
func (d *Design) moveNet(n *Net, to string) {
	delete(d.nets, n.Name)
	n.Name = to
	d.nets[to] = n
	if n.HasDriver() {
		if p := d.Port(n.Driver); p != nil {
			p.Net = to
		}
	}
	for _, u := range n.Users {
		if p := d.Port(u); p != nil {
			p.Net = to
		}
	}
}

// Net internals. Only the graph store touches the driver and user fields;
// primitives go through these helpers.

func (n *Net) setDriver(ref PortRef) {
	n.Driver = ref
}

func (n *Net) appendUser(ref PortRef) {
	n.Users = append(n.Users, ref)
}

// detach drops every trace of ref from the net.
func (n *Net) detach(ref PortRef) {
	kept := n.Users[:0]
	for _, u := range n.Users {
		if u != ref {
			kept = append(kept, u)
		}
	}
	// Clear the tail so dropped refs do not linger in the backing array.
	for i := len(kept); i < len(n.Users); i++ {
		n.Users[i] = PortRef{}
	}
	n.Users = kept
	if n.Driver == ref {
		n.Driver = PortRef{}
	}
}

// retarget rewrites every mention of from (driver or user) to to, in place.
func (n *Net) retarget(from, to PortRef) {
	if n.Driver == from {
		n.Driver = to
	}
	for i := range n.Users {
		if n.Users[i] == from {
			n.Users[i] = to
		}
	}
}

// Clone returns a deep copy of the design.
func (d *Design) Clone() *Design {
	clone := NewDesign()
	for name, c := range d.cells {
		cc := &Cell{
			Name:  c.Name,
			Type:  c.Type,
			Ports: make(map[string]*Port, len(c.Ports)),
			Attrs: make(map[string]string, len(c.Attrs)),
		}
		for pn, p := range c.Ports {
			pc := *p
			cc.Ports[pn] = &pc
		}
		for k, v := range c.Attrs {
			cc.Attrs[k] = v
		}
		clone.cells[name] = cc
	}
	for name, n := range d.nets {
		nc := &Net{Name: n.Name, Driver: n.Driver}
		if n.Users != nil {
			nc.Users = make([]PortRef, len(n.Users))
			copy(nc.Users, n.Users)
		}
		clone.nets[name] = nc
	}
	return clone
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
