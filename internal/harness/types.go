package harness

import (
	"github.com/roach88/netmut/internal/engine"
	"github.com/roach88/netmut/internal/netlist"
)

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success: the run ended as expected, its
	// journal replays and every assertion holds.
	Pass bool `json:"pass"`

	// Trace contains every op that ran, in seq order, including a failing
	// one.
	Trace []engine.Step `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// ErrorCode is the code the run stopped with, or "" if it completed.
	ErrorCode string `json:"error_code,omitempty"`

	// InitialHash and FinalHash fingerprint the design before and after.
	InitialHash string `json:"initial_hash"`
	FinalHash   string `json:"final_hash"`

	// Final is the design after the run.
	Final netlist.Snapshot `json:"final"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []engine.Step{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
