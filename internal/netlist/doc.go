// Package netlist provides the design graph and its mutation primitives.
//
// A Design owns two arenas, cells and nets, keyed by unique names. All
// cross-references are names resolved through the Design: a port stores the
// name of its net, a net stores PortRef pairs for its driver and users. No
// entity holds a pointer to another entity, so renaming or replacing one never
// leaves a dangling reference behind.
//
// This package imports nothing internal. Every other internal package builds
// on it.
//
// # Invariants
//
// The following hold before and after every primitive:
//   - A net has at most one driver.
//   - Every user of a net is an in or inout port whose Net names that net.
//   - The driver of a net is an out or inout port whose Net names that net.
//   - A port's Net is empty or names a net that lists the port back.
//   - Cell names and net names are unique within the Design.
//
// # Failure model
//
// Primitives split outcomes in two classes. Absent targets ("old" cells,
// ports and nets that do not exist) are benign no-ops. Contract violations
// (connecting a connected port, a second driver, a type mismatch, a name
// collision) panic with an *InvariantError. They are programming errors in
// the calling pass and are never tolerated silently. Use Guard at a pass
// boundary to turn such a panic into an error.
//
// The package performs no locking. Callers serialize all mutations of a
// Design; composite operations such as ReplaceBus are not transactional.
package netlist
