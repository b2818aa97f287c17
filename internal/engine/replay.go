package engine

import (
	"context"
	"fmt"

	"github.com/roach88/netmut/internal/netlist"
	"github.com/roach88/netmut/internal/script"
	"github.com/roach88/netmut/internal/store"
)

// Divergence is a journal entry whose replay did not reproduce it.
type Divergence struct {
	Seq        int64  `json:"seq"`
	Kind       string `json:"kind"`
	Want       string `json:"want"`
	Got        string `json:"got"`
	WantStatus string `json:"want_status"`
	GotStatus  string `json:"got_status"`
}

// ReplayResult reports whether a journaled run is reproducible.
type ReplayResult struct {
	RunID       string       `json:"run_id"`
	Replayed    int          `json:"replayed"`
	FinalHash   string       `json:"final_hash"`
	Matched     bool         `json:"matched"`
	Divergences []Divergence `json:"divergences"`

	// Design is the design after replay.
	Design *netlist.Design `json:"-"`
}

// Replay rebuilds the initial design of a journaled run, re-applies every
// journal entry in seq order and compares each fingerprint and status with
// what was recorded.
//
// A run that stopped on a fatal violation replays up to and including the
// failing op; the same violation is expected again.
func Replay(ctx context.Context, st *store.Store, runID string) (*ReplayResult, error) {
	run, err := st.ReadRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	snap, err := st.ReadSnapshot(ctx, run.InitialHash)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	d, err := netlist.FromSnapshot(snap)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	muts, err := st.ReadRunMutations(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}

	res := &ReplayResult{RunID: runID, Divergences: []Divergence{}, Design: d}
	for _, m := range muts {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("replay: %w", err)
		}
		op, err := script.Decode(m.Kind, m.Args)
		if err != nil {
			return nil, fmt.Errorf("replay: seq %d: %w", m.Seq, err)
		}

		status := store.MutationApplied
		if opErr := netlist.Guard(func() { op.Apply(d) }); opErr != nil {
			status = store.MutationFailed
		}
		fp, err := netlist.Fingerprint(d)
		if err != nil {
			return nil, fmt.Errorf("replay: %w", err)
		}
		res.Replayed++

		// A CHECK_FAILED entry applied cleanly under Guard; only its
		// fingerprint is comparable.
		wantStatus := m.Status
		if wantStatus == store.MutationFailed && run.ErrorCode == string(ErrCodeCheckFailed) {
			wantStatus = store.MutationApplied
		}
		if fp != m.Fingerprint || status != wantStatus {
			res.Divergences = append(res.Divergences, Divergence{
				Seq:        m.Seq,
				Kind:       m.Kind,
				Want:       m.Fingerprint,
				Got:        fp,
				WantStatus: wantStatus,
				GotStatus:  status,
			})
		}
	}

	final, err := netlist.Fingerprint(d)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	res.FinalHash = final
	res.Matched = len(res.Divergences) == 0 && (run.FinalHash == "" || run.FinalHash == final)
	return res, nil
}
