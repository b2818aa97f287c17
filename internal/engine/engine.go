package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/netmut/internal/netlist"
	"github.com/roach88/netmut/internal/script"
	"github.com/roach88/netmut/internal/store"
)

// Engine applies mutation ops to one design.
//
// The engine is single-writer: Apply runs every op on the calling
// goroutine, in order, and must not be called concurrently. Callers that
// share a design serialize their runs.
type Engine struct {
	design      *netlist.Design
	store       *store.Store
	clock       *Clock
	runGen      RunIDGenerator
	logger      *slog.Logger
	metrics     *Metrics
	checkEachOp bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithStore journals every run to s.
func WithStore(s *store.Store) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithMetrics records op and run counters in m.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithCheckEachOp runs the full invariant check after every op and stops
// the run with CHECK_FAILED if it finds anything.
func WithCheckEachOp() Option {
	return func(e *Engine) {
		e.checkEachOp = true
	}
}

// WithRunIDGenerator sets the run ID source. Default: UUIDv7Generator.
func WithRunIDGenerator(g RunIDGenerator) Option {
	return func(e *Engine) {
		e.runGen = g
	}
}

// WithClock sets the logical clock, e.g. NewClockAt to continue numbering.
func WithClock(c *Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// New creates an Engine that mutates d in place.
func New(d *netlist.Design, opts ...Option) *Engine {
	e := &Engine{
		design: d,
		clock:  NewClock(),
		runGen: UUIDv7Generator{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Design returns the design the engine mutates.
func (e *Engine) Design() *netlist.Design {
	return e.design
}

// Clock returns the engine's logical clock.
func (e *Engine) Clock() *Clock {
	return e.clock
}

// Step is the record of one op of a run.
type Step struct {
	Seq         int64          `json:"seq"`
	Kind        string         `json:"kind"`
	Args        map[string]any `json:"args"`
	Fingerprint string         `json:"fingerprint"`
	Status      string         `json:"status"`
	Error       string         `json:"error,omitempty"`
}

// Result describes a run. It is returned even when the run fails, with
// Steps covering every op that ran, including the failing one.
type Result struct {
	RunID       string `json:"run_id"`
	InitialHash string `json:"initial_hash"`
	FinalHash   string `json:"final_hash"`
	Applied     int    `json:"applied"`
	Steps       []Step `json:"steps"`
}

// Apply runs ops against the design in order.
//
// The first failing op stops the run. The returned error is a
// *RuntimeError wrapping the cause; nothing is rolled back. Context
// cancellation is checked between ops.
func (e *Engine) Apply(ctx context.Context, ops []script.Op) (*Result, error) {
	runID := e.runGen.Generate()
	log := e.logger.With("run", runID)

	initial, err := netlist.Fingerprint(e.design)
	if err != nil {
		return nil, fmt.Errorf("apply: %w", err)
	}
	res := &Result{RunID: runID, InitialHash: initial, Steps: []Step{}}

	if e.store != nil {
		if _, err := e.store.WriteSnapshot(ctx, e.design.Snapshot()); err != nil {
			return nil, fmt.Errorf("apply: %w", err)
		}
		run := store.Run{ID: runID, Seq: e.clock.Current(), InitialHash: initial, Status: store.RunRunning}
		if err := e.store.WriteRun(ctx, run); err != nil {
			return nil, fmt.Errorf("apply: %w", err)
		}
	}

	log.Info("run starting", "ops", len(ops), "fingerprint", initial)

	for i, op := range ops {
		if ctxErr := ctx.Err(); ctxErr != nil {
			rerr := newOpError(runID, e.clock.Current(), "", i, fmt.Errorf("%w: %w", errCancelled, ctxErr))
			return res, e.finish(context.WithoutCancel(ctx), log, res, rerr)
		}

		step, opErr := e.applyOne(op)
		if err := e.journal(ctx, runID, step); err != nil {
			return res, fmt.Errorf("apply: %w", err)
		}
		res.Steps = append(res.Steps, step)

		if opErr != nil {
			e.metrics.op(step.Kind, outcomeOf(opErr))
			log.Warn("op failed", "seq", step.Seq, "op", step.Kind, "error", opErr)
			return res, e.finish(ctx, log, res, newOpError(runID, step.Seq, step.Kind, i, opErr))
		}
		e.metrics.op(step.Kind, OutcomeApplied)
		log.Debug("op applied", "seq", step.Seq, "op", step.Kind, "fingerprint", step.Fingerprint)
		res.Applied++
	}

	return res, e.finish(ctx, log, res, nil)
}

// applyOne stamps op with the next seq and runs it under Guard.
func (e *Engine) applyOne(op script.Op) (Step, error) {
	step := Step{
		Seq:    e.clock.Next(),
		Kind:   op.Kind(),
		Args:   op.Args(),
		Status: store.MutationApplied,
	}

	opErr := netlist.Guard(func() { op.Apply(e.design) })
	if opErr == nil && e.checkEachOp {
		opErr = e.design.Validate()
	}

	fp, err := netlist.Fingerprint(e.design)
	if err != nil {
		// The design no longer serializes; report it with the op.
		if opErr == nil {
			opErr = err
		}
	}
	step.Fingerprint = fp

	if opErr != nil {
		step.Status = store.MutationFailed
		step.Error = opErr.Error()
	}
	return step, opErr
}

func (e *Engine) journal(ctx context.Context, runID string, step Step) error {
	if e.store == nil {
		return nil
	}
	opHash, err := netlist.OpHash(step.Kind, step.Args)
	if err != nil {
		return err
	}
	return e.store.WriteMutation(ctx, store.Mutation{
		RunID:       runID,
		Seq:         step.Seq,
		Kind:        step.Kind,
		Args:        step.Args,
		OpHash:      opHash,
		Fingerprint: step.Fingerprint,
		Status:      step.Status,
		Error:       step.Error,
	})
}

// finish records the final state of a run and returns runErr (or a store
// error if recording failed).
func (e *Engine) finish(ctx context.Context, log *slog.Logger, res *Result, runErr *RuntimeError) error {
	final, err := netlist.Fingerprint(e.design)
	if err != nil {
		return fmt.Errorf("apply: %w", err)
	}
	res.FinalHash = final

	status, code, msg := store.RunCompleted, "", ""
	if runErr != nil {
		status, code, msg = store.RunFailed, string(runErr.Code), runErr.Message
	}
	e.metrics.run(status)

	if e.store != nil {
		if _, err := e.store.WriteSnapshot(ctx, e.design.Snapshot()); err != nil {
			return fmt.Errorf("apply: %w", err)
		}
		if err := e.store.FinishRun(ctx, res.RunID, final, status, code, msg); err != nil {
			return fmt.Errorf("apply: %w", err)
		}
	}

	if runErr != nil {
		log.Error("run failed", "code", runErr.Code, "applied", res.Applied, "fingerprint", final)
		return runErr
	}
	log.Info("run completed", "applied", res.Applied, "fingerprint", final)
	return nil
}

func outcomeOf(err error) string {
	if netlist.IsCheckError(err) {
		return OutcomeCheckFailed
	}
	return OutcomeViolation
}
