package netlist

import (
	"errors"
	"fmt"
)

// InvariantCode categorizes fatal contract violations.
type InvariantCode string

const (
	// ErrCodePortConnected: attaching a port that is already attached.
	ErrCodePortConnected InvariantCode = "PORT_CONNECTED"

	// ErrCodeNetHasDriver: a second driver on a net.
	ErrCodeNetHasDriver InvariantCode = "NET_HAS_DRIVER"

	// ErrCodeTypeMismatch: port directions disagree.
	ErrCodeTypeMismatch InvariantCode = "TYPE_MISMATCH"

	// ErrCodeNetExists: a net name is already taken.
	ErrCodeNetExists InvariantCode = "NET_EXISTS"

	// ErrCodeNameCollision: a synthetic net name collides with a cell or net.
	ErrCodeNameCollision InvariantCode = "NAME_COLLISION"

	// ErrCodeInvalidPortType: a port direction outside out/in/inout, or one a
	// primitive does not handle.
	ErrCodeInvalidPortType InvariantCode = "INVALID_PORT_TYPE"

	// ErrCodeMissingCell: a required cell does not exist.
	ErrCodeMissingCell InvariantCode = "MISSING_CELL"

	// ErrCodeMissingPort: a required port does not exist.
	ErrCodeMissingPort InvariantCode = "MISSING_PORT"

	// ErrCodePortExists: a port name is already taken on a cell.
	ErrCodePortExists InvariantCode = "PORT_EXISTS"

	// ErrCodeInvalidName: an empty name where one is required.
	ErrCodeInvalidName InvariantCode = "INVALID_NAME"
)

// InvariantError describes a violated graph contract.
//
// Primitives panic with *InvariantError; they never return it. Guard recovers
// it into an ordinary error.
type InvariantError struct {
	Code    InvariantCode
	Op      string // primitive that detected the violation, e.g. "connect"
	Message string
	Cell    string
	Port    string
	Net     string
}

// Error implements the error interface.
func (e *InvariantError) Error() string {
	var where string
	switch {
	case e.Cell != "" && e.Port != "" && e.Net != "":
		where = fmt.Sprintf(" (cell=%s, port=%s, net=%s)", e.Cell, e.Port, e.Net)
	case e.Cell != "" && e.Port != "":
		where = fmt.Sprintf(" (cell=%s, port=%s)", e.Cell, e.Port)
	case e.Cell != "":
		where = fmt.Sprintf(" (cell=%s)", e.Cell)
	case e.Net != "":
		where = fmt.Sprintf(" (net=%s)", e.Net)
	}
	return fmt.Sprintf("%s: %s: %s%s", e.Code, e.Op, e.Message, where)
}

// fail aborts the current primitive.
func fail(e *InvariantError) {
	panic(e)
}

// Guard runs fn and converts an *InvariantError panic into a returned error.
// Any other panic propagates unchanged.
//
// Guard is meant for pass boundaries (the engine, the harness, tests). The
// graph is not rolled back: whatever fn mutated before the violation stays.
func Guard(fn func()) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if ie, ok := r.(*InvariantError); ok {
			err = ie
			return
		}
		panic(r)
	}()
	fn()
	return nil
}

// IsInvariantError reports whether err wraps an *InvariantError.
func IsInvariantError(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}

// InvariantCodeOf returns the code of the *InvariantError wrapped by err, or
// the empty code.
func InvariantCodeOf(err error) InvariantCode {
	var ie *InvariantError
	if errors.As(err, &ie) {
		return ie.Code
	}
	return ""
}
