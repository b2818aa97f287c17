package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/netmut/internal/engine"
	"github.com/roach88/netmut/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	RunID    string // optional - specific run only
}

// ReplayRunResult holds the replay result for a single run.
type ReplayRunResult struct {
	RunID         string              `json:"run_id"`
	Status        string              `json:"status"`
	Replayed      int                 `json:"replayed"`
	FinalHash     string              `json:"final_hash"`
	Deterministic bool                `json:"deterministic"`
	Divergences   []engine.Divergence `json:"divergences"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Runs             []ReplayRunResult `json:"runs"`
	TotalRuns        int               `json:"total_runs"`
	AllDeterministic bool              `json:"all_deterministic"`
}

func (r ReplayResult) String() string {
	if r.TotalRuns == 0 {
		return "No runs found in database."
	}
	var b strings.Builder
	for _, run := range r.Runs {
		mark := "✓"
		if !run.Deterministic {
			mark = "✗"
		}
		fmt.Fprintf(&b, "%s %s (%s): %d op(s) replayed, final %s\n", mark, run.RunID, run.Status, run.Replayed, run.FinalHash)
		for _, d := range run.Divergences {
			fmt.Fprintf(&b, "    seq %d %s: want %s %s, got %s %s\n", d.Seq, d.Kind, d.WantStatus, d.Want, d.GotStatus, d.Got)
		}
	}
	if r.AllDeterministic {
		fmt.Fprintf(&b, "All %d run(s) replay deterministically", r.TotalRuns)
	} else {
		fmt.Fprintf(&b, "Determinism check failed")
	}
	return b.String()
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay journaled runs and verify determinism",
		Long: `Replay journaled runs from their initial snapshot and verify that every
op reproduces the fingerprint and status that was recorded.

Exit codes:
  0 - All runs are deterministic
  1 - Determinism verification failed (differences detected)
  2 - Command error (database not found, unknown run, etc.)

Examples:
  netmut replay --db ./netmut.db
  netmut replay --db ./netmut.db --run 0190b5f2-8a4e-7c3d-9f1a-2b3c4d5e6f70
  netmut replay --db ./netmut.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "replay specific run only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	ctx := commandContext(cmd)

	if _, err := os.Stat(opts.Database); err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "failed to open database", err)
	}
	st, err := store.Open(opts.Database)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "failed to open database", err)
	}
	defer st.Close()

	var runIDs []string
	if opts.RunID != "" {
		runIDs = []string{opts.RunID}
	} else {
		runs, err := st.ListRuns(ctx)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeStore, "failed to list runs", err)
		}
		for _, r := range runs {
			runIDs = append(runIDs, r.ID)
		}
	}

	result := ReplayResult{
		Runs:             make([]ReplayRunResult, 0, len(runIDs)),
		TotalRuns:        len(runIDs),
		AllDeterministic: true,
	}

	for _, id := range runIDs {
		run, err := st.ReadRun(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return f.Fail(ExitCommandError, ErrCodeStore, fmt.Sprintf("run %s not found", id), nil)
		}
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeStore, fmt.Sprintf("failed to read run %s", id), err)
		}
		rep, err := engine.Replay(ctx, st, id)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeStore, fmt.Sprintf("failed to replay run %s", id), err)
		}
		f.VerboseLog("replayed %s: %d op(s)", id, rep.Replayed)

		result.Runs = append(result.Runs, ReplayRunResult{
			RunID:         id,
			Status:        run.Status,
			Replayed:      rep.Replayed,
			FinalHash:     rep.FinalHash,
			Deterministic: rep.Matched,
			Divergences:   rep.Divergences,
		})
		if !rep.Matched {
			result.AllDeterministic = false
		}
	}

	if result.AllDeterministic {
		return f.Success(result)
	}
	if f.Format == "json" {
		if err := f.RunFailed(ErrCodeReplay, "replay diverged from the journal", result, ""); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(f.Writer, result)
	}
	return NewExitError(ExitFailure, "determinism verification failed")
}
