// Package script defines mutation operations and the two formats they are
// written in.
//
// An Op names one netlist primitive and its arguments. Ops are decoded from
// a generic argument map with mapstructure, so the YAML front end, the text
// front end and the engine journal all share one decoding path:
//
//	ops, err := script.ParseYAML(data)   // - op: connect ...
//	ops, err := script.ParseText(src)    // connect n1 A.Q
//	op, err := script.Decode(kind, args) // journal replay
//
// Port references are either "cell.port" strings (split at the last dot)
// or {cell, port} maps. Args always emits the map form so journaled ops
// decode back unambiguously.
package script
