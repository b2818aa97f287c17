package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/netmut/internal/engine"
	"github.com/roach88/netmut/internal/loader"
	"github.com/roach88/netmut/internal/netlist"
	"github.com/roach88/netmut/internal/store"
	"github.com/roach88/netmut/internal/testutil"
)

// Run executes a test scenario and returns the result.
//
// Each scenario runs against a fresh in-memory journal with a fixed run ID,
// so the same scenario always produces the same trace.
//
// Execution flow:
// 1. Load the starting design
// 2. Apply the ops through the engine
// 3. Compare the outcome with expect_fatal
// 4. Replay the journal and compare fingerprints
// 5. Evaluate assertions on the final design
//
// The returned error reports a scenario that could not be executed at all;
// a scenario that ran but failed its checks has Pass false.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	if scenario.ops == nil {
		if err := validateScenario(scenario); err != nil {
			return nil, fmt.Errorf("invalid scenario: %w", err)
		}
	}

	design, err := scenario.startingDesign()
	if err != nil {
		return nil, fmt.Errorf("failed to load design: %w", err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	runID := scenario.RunID
	if runID == "" {
		runID = defaultRunID
	}
	opts := []engine.Option{
		engine.WithStore(st),
		engine.WithRunIDGenerator(testutil.NewFixedRunIDGenerator(runID)),
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))), // Suppress logs in tests
	}
	if scenario.CheckEach {
		opts = append(opts, engine.WithCheckEachOp())
	}
	eng := engine.New(design, opts...)

	result := NewResult()
	res, runErr := eng.Apply(ctx, scenario.ops)
	if res == nil {
		return nil, fmt.Errorf("failed to apply ops: %w", runErr)
	}
	result.Trace = res.Steps
	result.InitialHash = res.InitialHash
	result.FinalHash = res.FinalHash
	result.Final = design.Snapshot()
	result.ErrorCode = engine.ErrorCode(runErr)

	checkOutcome(result, scenario.ExpectFatal, runErr)

	rep, err := engine.Replay(ctx, st, res.RunID)
	if err != nil {
		return nil, fmt.Errorf("failed to replay journal: %w", err)
	}
	if !rep.Matched {
		for _, div := range rep.Divergences {
			result.AddError(fmt.Sprintf("replay diverged at seq %d (%s): want %s/%s, got %s/%s",
				div.Seq, div.Kind, div.WantStatus, div.Want, div.GotStatus, div.Got))
		}
		if len(rep.Divergences) == 0 {
			result.AddError(fmt.Sprintf("replay final fingerprint %s differs from %s", rep.FinalHash, res.FinalHash))
		}
	}

	actx := &AssertionContext{Design: design, InitialHash: res.InitialHash}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}

	return result, nil
}

// checkOutcome compares how the run ended with expect_fatal.
func checkOutcome(result *Result, expect string, runErr error) {
	switch {
	case runErr == nil && expect != "":
		result.AddError(fmt.Sprintf("expected run to stop with %s, but it completed", expect))
	case runErr != nil && expect == "":
		result.AddError(fmt.Sprintf("unexpected error: %v", runErr))
	case runErr != nil && !matchesCode(runErr, expect):
		result.AddError(fmt.Sprintf("expected %s, got %v", expect, runErr))
	}
}

// matchesCode accepts either the invariant code or the run-level code.
func matchesCode(err error, code string) bool {
	if string(netlist.InvariantCodeOf(err)) == code {
		return true
	}
	var re *engine.RuntimeError
	if errors.As(err, &re) {
		return string(re.Code) == code
	}
	return false
}

func (s *Scenario) startingDesign() (*netlist.Design, error) {
	if s.Design != "" {
		return loader.LoadDesign(s.Design)
	}
	snap, err := s.inlineSnapshot()
	if err != nil {
		return nil, err
	}
	return netlist.FromSnapshot(snap)
}
