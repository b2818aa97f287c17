package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/netmut/internal/engine"
	"github.com/roach88/netmut/internal/netlist"
)

// TraceSnapshot captures the outcome of a scenario for golden comparison.
// Fingerprints are left out: they are a function of the final design,
// which is recorded in full.
type TraceSnapshot struct {
	ScenarioName string           `json:"scenario_name"`
	ErrorCode    string           `json:"error_code,omitempty"`
	Trace        []engine.Step    `json:"trace"`
	Final        netlist.Snapshot `json:"final"`
}

// toCanonicalMap converts a TraceSnapshot to the generic form accepted by
// netlist.MarshalCanonical.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, step := range s.Trace {
		traceList[i] = map[string]any{
			"seq":    step.Seq,
			"kind":   step.Kind,
			"args":   step.Args,
			"status": step.Status,
		}
	}

	result := map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         traceList,
		"final":         s.Final.CanonicalMap(),
	}
	if s.ErrorCode != "" {
		result["error_code"] = s.ErrorCode
	}
	return result
}

// RunWithGolden executes a scenario and compares its trace and final
// design against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the output doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	return result, AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := GoldenBytes(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}

// GoldenBytes renders a result in the golden file format: canonical JSON
// of the scenario name, error code, trace and final design.
func GoldenBytes(scenarioName string, result *Result) ([]byte, error) {
	snapshot := TraceSnapshot{
		ScenarioName: scenarioName,
		ErrorCode:    result.ErrorCode,
		Trace:        result.Trace,
		Final:        result.Final,
	}
	return netlist.MarshalCanonical(snapshot.toCanonicalMap())
}
