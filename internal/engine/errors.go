package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/netmut/internal/netlist"
)

// RuntimeError represents a run stopped by a failing op.
//
// Runs are not transactional: the ops before the failing one stay applied,
// and so does any partial change the failing op made. Applied reports how
// many ops completed.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// RunID identifies the affected run.
	RunID string

	// Seq and Kind identify the failing op.
	Seq  int64
	Kind string

	// Applied is the number of ops that completed before the failure.
	Applied int

	// Err is the underlying cause: a *netlist.InvariantError,
	// a *netlist.CheckError or a context error.
	Err error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeInvariantViolation indicates an op hit a fatal invariant violation.
	ErrCodeInvariantViolation RuntimeErrorCode = "INVARIANT_VIOLATION"

	// ErrCodeCheckFailed indicates the design failed Check after an op.
	ErrCodeCheckFailed RuntimeErrorCode = "CHECK_FAILED"

	// ErrCodeCancelled indicates the context was done before all ops ran.
	ErrCodeCancelled RuntimeErrorCode = "CANCELLED"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("%s: %s (run=%s, seq=%d, op=%s)", e.Code, e.Message, e.RunID, e.Seq, e.Kind)
	}
	if e.RunID != "" {
		return fmt.Sprintf("%s: %s (run=%s)", e.Code, e.Message, e.RunID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// IsInvariantViolation returns true if err is a run stopped by a fatal
// invariant violation. Uses errors.As to handle wrapped errors.
func IsInvariantViolation(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeInvariantViolation
	}
	return false
}

// IsCheckFailed returns true if err is a run stopped by a failed Check.
func IsCheckFailed(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeCheckFailed
	}
	return false
}

// ErrorCode returns the most specific code carried by err: the invariant
// code for a violation, the runtime code otherwise, or "" when err carries
// none.
func ErrorCode(err error) string {
	if code := netlist.InvariantCodeOf(err); code != "" {
		return string(code)
	}
	var re *RuntimeError
	if errors.As(err, &re) {
		return string(re.Code)
	}
	return ""
}

// newOpError classifies the failure of one op.
func newOpError(runID string, seq int64, kind string, applied int, err error) *RuntimeError {
	code := ErrCodeInvariantViolation
	switch {
	case netlist.IsCheckError(err):
		code = ErrCodeCheckFailed
	case errors.Is(err, errCancelled):
		code = ErrCodeCancelled
	}
	return &RuntimeError{
		Code:    code,
		Message: err.Error(),
		RunID:   runID,
		Seq:     seq,
		Kind:    kind,
		Applied: applied,
		Err:     err,
	}
}

var errCancelled = errors.New("run cancelled")
