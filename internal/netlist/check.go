package netlist

import (
	"errors"
	"fmt"
	"strings"
)

// Violation codes reported by Check (N001-N099).
const (
	ErrDriverMissing   = "N001" // driver names a cell or port that does not exist
	ErrDriverType      = "N002" // driver port cannot drive
	ErrDriverBackRef   = "N003" // driver port does not point back at the net
	ErrUserMissing     = "N004" // user names a cell or port that does not exist
	ErrUserType        = "N005" // user port cannot be a user
	ErrUserBackRef     = "N006" // user port does not point back at the net
	ErrPortNetMissing  = "N007" // port names a net that does not exist
	ErrPortNotListed   = "N008" // port names a net that does not list it
	ErrKeyMismatch     = "N009" // arena key differs from the entity's own name
	ErrInvalidPortType = "N010" // port direction outside out/in/inout
	ErrDuplicateUser   = "N011" // the same port is listed twice as a user
)

// Violation is one broken invariant found by Check.
type Violation struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Cell    string `json:"cell,omitempty"`
	Port    string `json:"port,omitempty"`
	Net     string `json:"net,omitempty"`
}

// Error implements the error interface.
func (v Violation) Error() string {
	return fmt.Sprintf("[%s] %s", v.Code, v.Message)
}

// CheckError collects the violations found by Validate.
type CheckError struct {
	Violations []Violation
}

// Error implements the error interface.
func (e *CheckError) Error() string {
	if len(e.Violations) == 1 {
		return "design check failed: " + e.Violations[0].Error()
	}
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Error()
	}
	return fmt.Sprintf("design check failed with %d violations: %s", len(e.Violations), strings.Join(msgs, "; "))
}

// IsCheckError reports whether err wraps a *CheckError.
func IsCheckError(err error) bool {
	var ce *CheckError
	return errors.As(err, &ce)
}

// Check verifies every graph invariant and returns all violations found,
// in a deterministic order. It does not stop at the first one.
func (d *Design) Check() []Violation {
	var out []Violation
	add := func(code, cell, port, net, format string, args ...any) {
		out = append(out, Violation{
			Code:    code,
			Message: fmt.Sprintf(format, args...),
			Cell:    cell,
			Port:    port,
			Net:     net,
		})
	}

	for _, name := range d.NetNames() {
		n := d.nets[name]
		if n.Name != name {
			add(ErrKeyMismatch, "", "", name, "net stored under %q is named %q", name, n.Name)
		}

		if n.HasDriver() {
			p := d.Port(n.Driver)
			switch {
			case p == nil:
				add(ErrDriverMissing, n.Driver.Cell, n.Driver.Port, name,
					"net %q is driven by missing port %s", name, n.Driver)
			case !p.Type.CanDrive():
				add(ErrDriverType, n.Driver.Cell, n.Driver.Port, name,
					"net %q is driven by %s port %s", name, p.Type, n.Driver)
			case p.Net != name:
				add(ErrDriverBackRef, n.Driver.Cell, n.Driver.Port, name,
					"driver %s of net %q points at net %q", n.Driver, name, p.Net)
			}
		}

		seen := make(map[PortRef]bool, len(n.Users))
		for _, u := range n.Users {
			if seen[u] {
				add(ErrDuplicateUser, u.Cell, u.Port, name, "net %q lists user %s twice", name, u)
				continue
			}
			seen[u] = true
			p := d.Port(u)
			switch {
			case p == nil:
				add(ErrUserMissing, u.Cell, u.Port, name, "net %q lists missing user %s", name, u)
			case !p.Type.CanUse():
				add(ErrUserType, u.Cell, u.Port, name, "net %q lists %s port %s as a user", name, p.Type, u)
			case p.Net != name:
				add(ErrUserBackRef, u.Cell, u.Port, name, "user %s of net %q points at net %q", u, name, p.Net)
			}
		}
	}

	for _, cname := range d.CellNames() {
		c := d.cells[cname]
		if c.Name != cname {
			add(ErrKeyMismatch, cname, "", "", "cell stored under %q is named %q", cname, c.Name)
		}
		for _, pname := range c.PortNames() {
			p := c.Ports[pname]
			ref := PortRef{Cell: cname, Port: pname}
			if p.Name != pname {
				add(ErrKeyMismatch, cname, pname, "", "port stored under %s is named %q", ref, p.Name)
			}
			if !p.Type.Valid() {
				add(ErrInvalidPortType, cname, pname, "", "port %s has invalid type %s", ref, p.Type)
				continue
			}
			if !p.Connected() {
				continue
			}
			n := d.nets[p.Net]
			if n == nil {
				add(ErrPortNetMissing, cname, pname, p.Net, "port %s points at missing net %q", ref, p.Net)
				continue
			}
			listed := (p.Type.CanDrive() && n.Driver == ref) || (p.Type.CanUse() && n.HasUser(ref))
			if !listed {
				add(ErrPortNotListed, cname, pname, p.Net, "port %s points at net %q which does not list it", ref, p.Net)
			}
		}
	}

	return out
}

// Validate runs Check and returns a *CheckError if anything is wrong.
func (d *Design) Validate() error {
	if vs := d.Check(); len(vs) > 0 {
		return &CheckError{Violations: vs}
	}
	return nil
}
