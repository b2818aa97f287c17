// Package store provides SQLite-backed durable storage for mutation runs.
//
// The store is an append-mostly journal with:
//   - Snapshots: canonical design bodies keyed by fingerprint
//   - Runs: one row per Engine.Apply call, with initial and final fingerprints
//   - Mutations: one row per applied op, with its canonical args and the
//     design fingerprint after it ran
//
// # Ordering
//
// All ordering uses seq INTEGER (logical clock), never timestamps. Every
// journal query ends with ORDER BY seq ASC, kind ASC, run_id ASC so reads
// are identical across replays.
//
// # Idempotency
//
// Snapshots are content addressed and mutations are UNIQUE(run_id, seq);
// writes use ON CONFLICT DO NOTHING, so re-writing a record is a no-op.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
