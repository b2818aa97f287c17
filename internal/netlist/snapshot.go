package netlist

import "fmt"

// Snapshot is a plain, deterministic picture of a design.
// Cells, ports and nets are sorted by name; users keep their net order.
type Snapshot struct {
	Cells []CellSnapshot `json:"cells" yaml:"cells"`
	Nets  []NetSnapshot  `json:"nets" yaml:"nets"`
}

// CellSnapshot is one cell of a Snapshot.
type CellSnapshot struct {
	Name  string            `json:"name" yaml:"name"`
	Type  string            `json:"type" yaml:"type"`
	Attrs map[string]string `json:"attrs,omitempty" yaml:"attrs,omitempty"`
	Ports []PortSnapshot    `json:"ports" yaml:"ports"`
}

// PortSnapshot is one port of a CellSnapshot.
type PortSnapshot struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
	Net  string `json:"net,omitempty" yaml:"net,omitempty"`
}

// NetSnapshot is one net of a Snapshot.
type NetSnapshot struct {
	Name   string    `json:"name" yaml:"name"`
	Driver *PortRef  `json:"driver,omitempty" yaml:"driver,omitempty"`
	Users  []PortRef `json:"users" yaml:"users"`
}

// Snapshot captures the current state of the design.
func (d *Design) Snapshot() Snapshot {
	s := Snapshot{
		Cells: make([]CellSnapshot, 0, len(d.cells)),
		Nets:  make([]NetSnapshot, 0, len(d.nets)),
	}
	for _, cname := range d.CellNames() {
		c := d.cells[cname]
		cs := CellSnapshot{
			Name:  cname,
			Type:  c.Type,
			Ports: make([]PortSnapshot, 0, len(c.Ports)),
		}
		if len(c.Attrs) > 0 {
			cs.Attrs = make(map[string]string, len(c.Attrs))
			for k, v := range c.Attrs {
				cs.Attrs[k] = v
			}
		}
		for _, pname := range c.PortNames() {
			p := c.Ports[pname]
			cs.Ports = append(cs.Ports, PortSnapshot{Name: pname, Type: p.Type.String(), Net: p.Net})
		}
		s.Cells = append(s.Cells, cs)
	}
	for _, nname := range d.NetNames() {
		n := d.nets[nname]
		ns := NetSnapshot{Name: nname, Users: make([]PortRef, len(n.Users))}
		copy(ns.Users, n.Users)
		if n.HasDriver() {
			drv := n.Driver
			ns.Driver = &drv
		}
		s.Nets = append(s.Nets, ns)
	}
	return s
}

// FromSnapshot rebuilds a design from a snapshot and validates it.
//
// Port net fields are taken from the nets: a port listed by a net is
// attached to it. A PortSnapshot.Net that disagrees is reported by the
// validation.
func FromSnapshot(s Snapshot) (*Design, error) {
	d := NewDesign()
	declared := make(map[PortRef]string)
	for _, cs := range s.Cells {
		c, err := d.AddCell(cs.Name, cs.Type)
		if err != nil {
			return nil, fmt.Errorf("from snapshot: %w", err)
		}
		for k, v := range cs.Attrs {
			c.Attrs[k] = v
		}
		for _, ps := range cs.Ports {
			t, err := ParsePortType(ps.Type)
			if err != nil {
				return nil, fmt.Errorf("from snapshot: port %s.%s: %w", cs.Name, ps.Name, err)
			}
			if _, err := d.AddPort(cs.Name, ps.Name, t); err != nil {
				return nil, fmt.Errorf("from snapshot: %w", err)
			}
			if ps.Net != "" {
				declared[PortRef{Cell: cs.Name, Port: ps.Name}] = ps.Net
			}
		}
	}

	for _, ns := range s.Nets {
		n, err := d.AddNet(ns.Name)
		if err != nil {
			return nil, fmt.Errorf("from snapshot: %w", err)
		}
		if ns.Driver != nil && !ns.Driver.IsZero() {
			n.setDriver(*ns.Driver)
			attach(d, *ns.Driver, ns.Name)
		}
		for _, u := range ns.Users {
			n.appendUser(u)
			attach(d, u, ns.Name)
		}
	}

	for ref, net := range declared {
		if p := d.Port(ref); p != nil && p.Net == "" {
			p.Net = net
		}
	}

	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("from snapshot: %w", err)
	}
	return d, nil
}

// attach sets the back-reference of ref, unless it already points at
// another net; Validate reports the conflict in that case.
func attach(d *Design, ref PortRef, net string) {
	if p := d.Port(ref); p != nil && p.Net == "" {
		p.Net = net
	}
}

// CanonicalMap converts the snapshot into the generic form accepted by
// MarshalCanonical.
func (s Snapshot) CanonicalMap() map[string]any {
	cells := make([]any, len(s.Cells))
	for i, c := range s.Cells {
		ports := make([]any, len(c.Ports))
		for j, p := range c.Ports {
			pm := map[string]any{"name": p.Name, "type": p.Type}
			if p.Net != "" {
				pm["net"] = p.Net
			}
			ports[j] = pm
		}
		cm := map[string]any{"name": c.Name, "type": c.Type, "ports": ports}
		if len(c.Attrs) > 0 {
			cm["attrs"] = c.Attrs
		}
		cells[i] = cm
	}

	nets := make([]any, len(s.Nets))
	for i, n := range s.Nets {
		users := make([]any, len(n.Users))
		for j, u := range n.Users {
			users[j] = map[string]any{"cell": u.Cell, "port": u.Port}
		}
		nm := map[string]any{"name": n.Name, "users": users}
		if n.Driver != nil {
			nm["driver"] = map[string]any{"cell": n.Driver.Cell, "port": n.Driver.Port}
		}
		nets[i] = nm
	}

	return map[string]any{"cells": cells, "nets": nets}
}

// MarshalCanonical serializes the snapshot as canonical JSON.
func (s Snapshot) MarshalCanonical() ([]byte, error) {
	return MarshalCanonical(s.CanonicalMap())
}
