// Package testutil holds deterministic helpers shared by tests and the
// scenario harness.
package testutil

import "github.com/roach88/netmut/internal/engine"

// FixedRunIDGenerator generates the same run ID every time.
//
// A scenario journaled with a fixed ID produces byte-identical journals on
// every run, which golden comparison relies on.
//
// Unlike engine.FixedGenerator, which hands out a list of IDs once each,
// this generator never runs out.
//
// Thread-safety: FixedRunIDGenerator is stateless and safe for concurrent use.
type FixedRunIDGenerator struct {
	id string
}

var _ engine.RunIDGenerator = (*FixedRunIDGenerator)(nil)

// NewFixedRunIDGenerator creates a fixed run ID generator.
//
// If id is empty, Generate() returns "test-run-default".
func NewFixedRunIDGenerator(id string) *FixedRunIDGenerator {
	if id == "" {
		id = "test-run-default"
	}
	return &FixedRunIDGenerator{id: id}
}

// Generate returns the fixed run ID.
func (g *FixedRunIDGenerator) Generate() string {
	return g.id
}
