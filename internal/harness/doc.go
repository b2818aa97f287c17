// Package harness runs mutation scenarios against the engine.
//
// A scenario is a YAML file naming a starting design (a CUE directory or
// inline cells and nets), an op list and assertions on the result:
//
//	name: reroute_user
//	description: move B.D from n1 to a new net driven by C.Q
//	cells:
//	  A: {type: LUT4, ports: {Q: out}}
//	  B: {type: DFF, ports: {D: in}}
//	nets:
//	  n1: {driver: A.Q, users: [B.D]}
//	ops:
//	  - op: disconnect
//	    port: B.D
//	assertions:
//	  - type: net_users
//	    net: n1
//	    users: []
//
// Each run uses a fresh in-memory journal and a fixed run ID. After the run
// the journal is replayed and must reproduce every recorded fingerprint, so
// every scenario also exercises determinism. RunWithGolden compares the
// trace and the final design with a golden file.
package harness
