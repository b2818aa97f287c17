// Package engine applies mutation scripts to a design and journals them.
//
// ARCHITECTURE:
//
// Single-Writer Runs:
// Apply runs every op on the calling goroutine, in script order. Each op
// is stamped with a seq from the logical Clock, executed under
// netlist.Guard, and fingerprinted. With a store configured, the initial
// snapshot, every journal entry and the final snapshot are written.
//
// Failure Model:
// A fatal invariant violation stops the run immediately. Nothing is rolled
// back; the returned *RuntimeError reports how many ops were applied and
// wraps the *netlist.InvariantError. WithCheckEachOp additionally runs the
// full invariant check after each op.
//
// CRITICAL PATTERNS:
//
// Logical Clock:
// Journal entries are ordered by seq from Clock.Next(), never by wall time.
//
// Deterministic Replay:
// Replay rebuilds the initial snapshot, decodes every journal entry back
// into an op and re-applies it. Primitives are deterministic, so every
// fingerprint must match. A mismatch is reported as a Divergence.
package engine
