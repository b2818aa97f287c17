package netlist

import (
	"fmt"
	"strings"
)

// PortType is the direction of a port.
// The zero value is not a valid direction.
type PortType uint8

const (
	PortOut PortType = iota + 1
	PortIn
	PortInout
)

// String returns the lower-case text form used in design and script files.
func (t PortType) String() string {
	switch t {
	case PortOut:
		return "out"
	case PortIn:
		return "in"
	case PortInout:
		return "inout"
	default:
		return fmt.Sprintf("PortType(%d)", uint8(t))
	}
}

// Valid reports whether t is one of out, in, inout.
func (t PortType) Valid() bool {
	return t == PortOut || t == PortIn || t == PortInout
}

// CanDrive reports whether a port of this type may be a net's driver.
func (t PortType) CanDrive() bool {
	return t == PortOut || t == PortInout
}

// CanUse reports whether a port of this type may be a net's user.
func (t PortType) CanUse() bool {
	return t == PortIn || t == PortInout
}

// ParsePortType parses "out", "in" or "inout" (case-insensitive).
func ParsePortType(s string) (PortType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "out", "output":
		return PortOut, nil
	case "in", "input":
		return PortIn, nil
	case "inout":
		return PortInout, nil
	default:
		return 0, fmt.Errorf("invalid port type %q: must be one of out, in, inout", s)
	}
}

// PortRef is a (cell, port) lookup key. It never owns anything.
// The zero value means "no port", used for a net without a driver.
type PortRef struct {
	Cell string `json:"cell"`
	Port string `json:"port"`
}

// IsZero reports whether r refers to nothing.
func (r PortRef) IsZero() bool {
	return r.Cell == "" && r.Port == ""
}

// String returns "cell.port".
func (r PortRef) String() string {
	return r.Cell + "." + r.Port
}

// ParsePortRef splits "cell.port" at the last dot.
func ParsePortRef(s string) (PortRef, error) {
	i := strings.LastIndexByte(s, '.')
	if i <= 0 || i == len(s)-1 {
		return PortRef{}, fmt.Errorf("invalid port reference %q: want cell.port", s)
	}
	return PortRef{Cell: s[:i], Port: s[i+1:]}, nil
}

// Port is a named, directional connection point on a cell.
type Port struct {
	Name string
	Type PortType
	Net  string // attached net name, "" when unconnected
}

// Connected reports whether the port is attached to a net.
func (p *Port) Connected() bool {
	return p.Net != ""
}

// Cell is a logic element instance.
type Cell struct {
	Name  string
	Type  string
	Ports map[string]*Port
	Attrs map[string]string
}

// Port returns the named port, or nil.
func (c *Cell) Port(name string) *Port {
	return c.Ports[name]
}

// HasPort reports whether the cell declares the named port.
func (c *Cell) HasPort(name string) bool {
	_, ok := c.Ports[name]
	return ok
}

// PortNames returns the port names in sorted order.
func (c *Cell) PortNames() []string {
	return sortedKeys(c.Ports)
}

// Net joins at most one driver to any number of users.
// Users keep insertion order.
type Net struct {
	Name   string
	Driver PortRef
	Users  []PortRef
}

// HasDriver reports whether the net has a driver.
func (n *Net) HasDriver() bool {
	return !n.Driver.IsZero()
}

// Orphan reports whether the net has neither driver nor users.
func (n *Net) Orphan() bool {
	return !n.HasDriver() && len(n.Users) == 0
}

// HasUser reports whether ref appears in the user list.
func (n *Net) HasUser(ref PortRef) bool {
	for _, u := range n.Users {
		if u == ref {
			return true
		}
	}
	return false
}
