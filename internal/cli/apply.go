package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/roach88/netmut/internal/engine"
	"github.com/roach88/netmut/internal/loader"
	"github.com/roach88/netmut/internal/script"
	"github.com/roach88/netmut/internal/store"
)

// ApplyOptions holds flags for the apply command.
type ApplyOptions struct {
	*RootOptions
	Script     string
	Database   string
	CheckEach  bool
	Out        string
	MetricsOut string

	// RunIDs allows overriding the run ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs engine.RunIDGenerator
}

// ApplyResult is the payload of a run.
type ApplyResult struct {
	*engine.Result
	Total int `json:"total"`
}

func (r ApplyResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Applied %d/%d ops (run %s)\n", r.Applied, r.Total, r.RunID)
	fmt.Fprintf(&b, "  initial: %s\n", r.InitialHash)
	fmt.Fprintf(&b, "  final:   %s", r.FinalHash)
	return b.String()
}

// NewApplyCommand creates the apply command.
func NewApplyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ApplyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "apply <design-dir>",
		Short: "Apply a mutation script to a design",
		Long: `Load a CUE design, apply every op of a mutation script in order and
report the fingerprint of the result.

The first failing op stops the run. Ops before it stay applied; nothing is
rolled back. With --db the run is journaled and can be replayed later.

Exit codes:
  0 - All ops applied
  1 - An op hit a fatal violation or the per-op check failed
  2 - Command error (design or script unreadable, database error, etc.)

Examples:
  netmut apply ./design --script rewire.yaml
  netmut apply ./design --script rewire.nmut --db ./netmut.db --check-each
  netmut apply ./design --script rewire.yaml --out final.json --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Script, "script", "s", "", "mutation script, YAML (.yaml/.yml) or text (required)")
	_ = cmd.MarkFlagRequired("script")
	cmd.Flags().StringVar(&opts.Database, "db", "", "journal the run to this SQLite database")
	cmd.Flags().BoolVar(&opts.CheckEach, "check-each", false, "run the full invariant check after every op")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "write the final design as canonical JSON")
	cmd.Flags().StringVar(&opts.MetricsOut, "metrics-out", "", "write op counters in Prometheus text format")

	return cmd
}

func runApply(opts *ApplyOptions, designDir string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	logger := f.Logger()

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	design, err := loader.LoadDesign(designDir)
	if err != nil {
		return f.Fail(ExitCommandError, errorCode(err, loader.ErrCodeGeneric), "failed to load design", err)
	}
	ops, err := script.ParseFile(opts.Script)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeScript, "failed to parse script", err)
	}
	logger.Debug("loaded", "design", designDir, "cells", design.CellCount(), "nets", design.NetCount(), "ops", len(ops))

	engineOpts := []engine.Option{engine.WithLogger(logger)}
	if opts.RunIDs != nil {
		engineOpts = append(engineOpts, engine.WithRunIDGenerator(opts.RunIDs))
	}
	if opts.CheckEach {
		engineOpts = append(engineOpts, engine.WithCheckEachOp())
	}

	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeStore, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()
		maxSeq, err := st.MaxSeq(ctx)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeStore, "failed to read journal", err)
		}
		engineOpts = append(engineOpts, engine.WithStore(st), engine.WithClock(engine.NewClockAt(maxSeq)))
	}

	var reg *prometheus.Registry
	if opts.MetricsOut != "" {
		reg = prometheus.NewRegistry()
		engineOpts = append(engineOpts, engine.WithMetrics(engine.NewMetrics(reg)))
	}

	eng := engine.New(design, engineOpts...)
	res, runErr := eng.Apply(ctx, ops)

	if reg != nil {
		if err := prometheus.WriteToTextfile(opts.MetricsOut, reg); err != nil {
			return f.Fail(ExitCommandError, ErrCodeOutput, "failed to write metrics", err)
		}
	}

	var rerr *engine.RuntimeError
	if runErr != nil && !errors.As(runErr, &rerr) {
		// Journal failure: the run state is unknown.
		return f.Fail(ExitCommandError, ErrCodeStore, "failed to journal run", runErr)
	}

	out := ApplyResult{Result: res, Total: len(ops)}
	if rerr != nil {
		if f.Format != "json" {
			fmt.Fprintln(f.Writer, out)
			printSteps(f, res.Steps)
		}
		if err := f.RunFailed(errorCode(rerr, ErrCodeRunFail), rerr.Error(), out, res.RunID); err != nil {
			return err
		}
		return WrapExitError(ExitFailure, "run failed", rerr)
	}

	if opts.Out != "" {
		if err := writeSnapshot(opts.Out, design.Snapshot()); err != nil {
			return f.Fail(ExitCommandError, ErrCodeOutput, "failed to write design", err)
		}
	}

	if err := f.Success(out); err != nil {
		return err
	}
	if f.Format != "json" && f.Verbose {
		printSteps(f, res.Steps)
	}
	return nil
}

func printSteps(f *OutputFormatter, steps []engine.Step) {
	for _, s := range steps {
		line := fmt.Sprintf("  [%d] %s %s", s.Seq, s.Kind, s.Status)
		if s.Error != "" {
			line += ": " + s.Error
		}
		fmt.Fprintln(f.Writer, line)
	}
}

// commandContext is cmd.Context(), or Background for a command that was
// not started through Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
