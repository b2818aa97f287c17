package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/netmut/internal/netlist"
	"github.com/roach88/netmut/internal/store"
	"github.com/roach88/netmut/internal/testutil"
)

const counterDesign = "testdata/counter"

// applyWithRunID runs apply with a fixed run ID and returns its output.
func applyWithRunID(t *testing.T, opts *ApplyOptions, runID string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	if opts.RootOptions == nil {
		opts.RootOptions = &RootOptions{Format: "text"}
	}
	opts.RunIDs = testutil.NewFixedRunIDGenerator(runID)
	err := runApply(opts, counterDesign, cmd)
	return buf.String(), err
}

func TestApplyMissingScriptFlag(t *testing.T) {
	_, err := executeRoot(t, "apply", counterDesign)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestApplyTextScript(t *testing.T) {
	out, err := applyWithRunID(t, &ApplyOptions{Script: "testdata/reroute.nmut"}, "run-text")
	require.NoError(t, err)
	assert.Contains(t, out, "Applied 3/3 ops (run run-text)")
	assert.Contains(t, out, "initial: ")
	assert.Contains(t, out, "final: ")
}

func TestApplyJSON(t *testing.T) {
	opts := &ApplyOptions{RootOptions: &RootOptions{Format: "json"}, Script: "testdata/reroute.nmut"}
	out, err := applyWithRunID(t, opts, "run-json")
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   ApplyResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "run-json", resp.Data.RunID)
	assert.Equal(t, 3, resp.Data.Applied)
	assert.Equal(t, 3, resp.Data.Total)
	require.Len(t, resp.Data.Steps, 3)
	assert.Equal(t, "disconnect", resp.Data.Steps[0].Kind)
	assert.Equal(t, "rename_net", resp.Data.Steps[2].Kind)
	assert.NotEqual(t, resp.Data.InitialHash, resp.Data.FinalHash)
}

func TestApplyFatalViolation(t *testing.T) {
	out, err := applyWithRunID(t, &ApplyOptions{Script: "testdata/double_driver.yaml"}, "run-fatal")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Applied 1/2 ops")
	assert.Contains(t, out, "[2] connect failed")
	assert.Contains(t, out, "Error [NET_HAS_DRIVER]")
}

func TestApplyFatalViolationJSON(t *testing.T) {
	opts := &ApplyOptions{RootOptions: &RootOptions{Format: "json"}, Script: "testdata/double_driver.yaml"}
	out, err := applyWithRunID(t, opts, "run-fatal-json")
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "run-fatal-json", resp.RunID)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NET_HAS_DRIVER", resp.Error.Code)
	assert.NotNil(t, resp.Data)
}

func TestApplyBadScript(t *testing.T) {
	out, err := applyWithRunID(t, &ApplyOptions{Script: "testdata/broken.nmut"}, "run-bad")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E101]")
}

func TestApplyMissingDesign(t *testing.T) {
	out, err := executeRoot(t, "apply", "/nonexistent/design", "--script", "testdata/reroute.nmut")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "failed to load design")
}

func TestApplyWritesDesign(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "final.json")
	_, err := applyWithRunID(t, &ApplyOptions{Script: "testdata/reroute.nmut", Out: outPath}, "run-out")
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)

	var snap netlist.Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	d, err := netlist.FromSnapshot(snap)
	require.NoError(t, err)
	assert.Nil(t, d.Net("sum"))
	require.NotNil(t, d.Net("lut_out"))
	assert.Equal(t, "lut0.Q", d.Net("lut_out").Driver.String())
}

func TestApplyJournalsRun(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "netmut.db")

	_, err := applyWithRunID(t, &ApplyOptions{Script: "testdata/reroute.nmut", Database: dbPath}, "run-a")
	require.NoError(t, err)
	_, err = applyWithRunID(t, &ApplyOptions{Script: "testdata/double_driver.yaml", Database: dbPath}, "run-b")
	require.Error(t, err)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()
	ctx := context.Background()

	runA, err := st.ReadRun(ctx, "run-a")
	require.NoError(t, err)
	assert.Equal(t, store.RunCompleted, runA.Status)

	runB, err := st.ReadRun(ctx, "run-b")
	require.NoError(t, err)
	assert.Equal(t, store.RunFailed, runB.Status)
	assert.Equal(t, "INVARIANT_VIOLATION", runB.ErrorCode)

	// The second run continues the clock of the first.
	mutsB, err := st.ReadRunMutations(ctx, "run-b")
	require.NoError(t, err)
	require.Len(t, mutsB, 2)
	assert.Equal(t, int64(4), mutsB[0].Seq)
	assert.Equal(t, store.MutationFailed, mutsB[1].Status)
}

func TestApplyWritesMetrics(t *testing.T) {
	metricsPath := filepath.Join(t.TempDir(), "netmut.prom")
	_, err := applyWithRunID(t, &ApplyOptions{Script: "testdata/double_driver.yaml", MetricsOut: metricsPath}, "run-metrics")
	require.Error(t, err)

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "netmut_ops_total")
	assert.Contains(t, text, `kind="disconnect"`)
	assert.Contains(t, text, `outcome="violation"`)
}
