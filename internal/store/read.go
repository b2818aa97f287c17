package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/netmut/internal/netlist"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ReadSnapshot retrieves a snapshot by fingerprint.
// Returns an error wrapping ErrNotFound if it does not exist.
func (s *Store) ReadSnapshot(ctx context.Context, hash string) (netlist.Snapshot, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `
		SELECT body FROM snapshots WHERE hash = ?
	`, hash).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return netlist.Snapshot{}, fmt.Errorf("read snapshot %s: %w", hash, ErrNotFound)
	}
	if err != nil {
		return netlist.Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}
	return unmarshalSnapshot(body)
}

// ReadRun retrieves a run by ID.
// Returns an error wrapping ErrNotFound if it does not exist.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seq, initial_hash, final_hash, status, error_code, error
		FROM runs
		WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("read run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run: %w", err)
	}
	return run, nil
}

// ListRuns returns every run, ordered by seq ASC, id ASC COLLATE BINARY.
// Returns an empty slice (not nil) if there are none.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, initial_hash, final_hash, status, error_code, error
		FROM runs
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadMutations returns the journal entries matching f in stable order.
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) ReadMutations(ctx context.Context, f MutationFilter) ([]Mutation, error) {
	query, params, err := compileMutationFilter(f)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query mutations: %w", err)
	}
	defer rows.Close()

	muts := []Mutation{}
	for rows.Next() {
		m, err := scanMutation(rows)
		if err != nil {
			return nil, err
		}
		muts = append(muts, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mutations: %w", err)
	}
	return muts, nil
}

// ReadRunMutations returns the journal of one run in seq order.
func (s *Store) ReadRunMutations(ctx context.Context, runID string) ([]Mutation, error) {
	return s.ReadMutations(ctx, MutationFilter{RunID: runID})
}

// MaxSeq returns the highest seq in the journal, or 0 if it is empty.
// A new run continues numbering after it.
func (s *Store) MaxSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) FROM mutations
	`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("max seq: %w", err)
	}
	return seq, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var run Run
	err := row.Scan(
		&run.ID,
		&run.Seq,
		&run.InitialHash,
		&run.FinalHash,
		&run.Status,
		&run.ErrorCode,
		&run.Error,
	)
	return run, err
}

func scanMutation(row scanner) (Mutation, error) {
	var m Mutation
	var argsJSON string
	if err := row.Scan(
		&m.RunID,
		&m.Seq,
		&m.Kind,
		&argsJSON,
		&m.OpHash,
		&m.Fingerprint,
		&m.Status,
		&m.Error,
	); err != nil {
		return Mutation{}, fmt.Errorf("scan mutation: %w", err)
	}
	args, err := unmarshalArgs(argsJSON)
	if err != nil {
		return Mutation{}, err
	}
	m.Args = args
	return m, nil
}
