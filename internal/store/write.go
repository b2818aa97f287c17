package store

import (
	"context"
	"fmt"

	"github.com/roach88/netmut/internal/netlist"
)

// WriteSnapshot stores a snapshot under its fingerprint and returns the
// fingerprint. Uses ON CONFLICT(hash) DO NOTHING: identical snapshots are
// stored once.
func (s *Store) WriteSnapshot(ctx context.Context, snap netlist.Snapshot) (string, error) {
	body, err := snap.MarshalCanonical()
	if err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	hash, err := snap.Fingerprint()
	if err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (hash, body)
		VALUES (?, ?)
		ON CONFLICT(hash) DO NOTHING
	`, hash, string(body))
	if err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return hash, nil
}

// WriteRun inserts a run record. Duplicate IDs are silently ignored.
//
// Note: The snapshot referenced by InitialHash must exist (foreign key constraint).
func (s *Store) WriteRun(ctx context.Context, run Run) error {
	status := run.Status
	if status == "" {
		status = RunRunning
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, seq, initial_hash, final_hash, status, error_code, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Seq,
		run.InitialHash,
		run.FinalHash,
		status,
		run.ErrorCode,
		run.Error,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// FinishRun records the outcome of a run.
func (s *Store) FinishRun(ctx context.Context, id, finalHash, status, errCode, errMsg string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE runs
		SET final_hash = ?, status = ?, error_code = ?, error = ?
		WHERE id = ?
	`, finalHash, status, errCode, errMsg, id)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish run: run %q not found", id)
	}
	return nil
}

// WriteMutation appends a journal entry. Uses ON CONFLICT(run_id, seq) DO
// NOTHING for idempotency.
//
// Note: The run referenced by RunID must exist (foreign key constraint).
func (s *Store) WriteMutation(ctx context.Context, m Mutation) error {
	argsJSON, err := marshalArgs(m.Args)
	if err != nil {
		return fmt.Errorf("write mutation: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO mutations
		(run_id, seq, kind, args, op_hash, fingerprint, status, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, seq) DO NOTHING
	`,
		m.RunID,
		m.Seq,
		m.Kind,
		argsJSON,
		m.OpHash,
		m.Fingerprint,
		m.Status,
		m.Error,
	)
	if err != nil {
		return fmt.Errorf("write mutation: %w", err)
	}
	return nil
}
