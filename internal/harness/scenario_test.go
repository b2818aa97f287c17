package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/netmut/internal/script"
)

const inlineScenario = `
name: inline
description: connect a user to an existing net
cells:
  A: {type: LUT4, ports: {Q: out}}
  B: {type: DFF, ports: {D: in}}
nets:
  n1: {driver: A.Q}
ops:
  - op: connect
    net: n1
    port: B.D
assertions:
  - type: net_users
    net: n1
    users: [B.D]
`

func writeScenario(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_InlineDesign(t *testing.T) {
	path := writeScenario(t, t.TempDir(), inlineScenario)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "inline", scenario.Name)
	assert.Len(t, scenario.Cells, 2)
	assert.Equal(t, map[string]string{"Q": "out"}, scenario.Cells["A"].Ports)
	assert.Equal(t, "A.Q", scenario.Nets["n1"].Driver)
	require.Len(t, scenario.ops, 1)
	assert.Equal(t, script.KindConnect, scenario.ops[0].Kind())
	assert.Len(t, scenario.Assertions, 1)
}

func TestLoadScenario_DesignResolvedRelative(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "reroute_counter.yaml"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("testdata", "designs", "counter"), scenario.Design)
	assert.Len(t, scenario.ops, 3)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing name",
			content: "description: d\ncells: {A: {type: X}}\nops: [{op: rename_net, from: a, to: b}]\nassertions: [{type: net_absent, net: a}]\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			content: "name: n\ncells: {A: {type: X}}\nops: [{op: rename_net, from: a, to: b}]\nassertions: [{type: net_absent, net: a}]\n",
			wantErr: "description is required",
		},
		{
			name:    "no design",
			content: "name: n\ndescription: d\nops: [{op: rename_net, from: a, to: b}]\nassertions: [{type: net_absent, net: a}]\n",
			wantErr: "design directory or inline cells are required",
		},
		{
			name:    "both designs",
			content: "name: n\ndescription: d\ndesign: x\ncells: {A: {type: X}}\nops: [{op: rename_net, from: a, to: b}]\nassertions: [{type: net_absent, net: a}]\n",
			wantErr: "mutually exclusive",
		},
		{
			name:    "missing design dir",
			content: "name: n\ndescription: d\ndesign: does-not-exist\nops: [{op: rename_net, from: a, to: b}]\nassertions: [{type: net_absent, net: a}]\n",
			wantErr: "design directory not found",
		},
		{
			name:    "no ops",
			content: "name: n\ndescription: d\ncells: {A: {type: X}}\nassertions: [{type: net_absent, net: a}]\n",
			wantErr: "ops list is required",
		},
		{
			name:    "bad op",
			content: "name: n\ndescription: d\ncells: {A: {type: X}}\nops: [{op: explode}]\nassertions: [{type: net_absent, net: a}]\n",
			wantErr: "ops:",
		},
		{
			name:    "no assertions",
			content: "name: n\ndescription: d\ncells: {A: {type: X}}\nops: [{op: rename_net, from: a, to: b}]\n",
			wantErr: "assertions list is required",
		},
		{
			name:    "unknown assertion",
			content: "name: n\ndescription: d\ncells: {A: {type: X}}\nops: [{op: rename_net, from: a, to: b}]\nassertions: [{type: trace_contains}]\n",
			wantErr: `unknown assertion type "trace_contains"`,
		},
		{
			name:    "assertion missing net",
			content: "name: n\ndescription: d\ncells: {A: {type: X}}\nops: [{op: rename_net, from: a, to: b}]\nassertions: [{type: net_driver}]\n",
			wantErr: "net is required for net_driver",
		},
		{
			name:    "assertion bad port",
			content: "name: n\ndescription: d\ncells: {A: {type: X}}\nops: [{op: rename_net, from: a, to: b}]\nassertions: [{type: port_absent, port: nodot}]\n",
			wantErr: "invalid port reference",
		},
		{
			name:    "unknown field",
			content: "name: n\ndescription: d\ncells: {A: {type: X}}\nops: [{op: rename_net, from: a, to: b}]\nassertion: []\n",
			wantErr: "failed to parse YAML",
		},
		{
			name:    "malformed",
			content: "name: [unclosed\n",
			wantErr: "failed to parse YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.content), t.TempDir())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseScenario_ExpectFatalNeedsNoAssertions(t *testing.T) {
	content := "name: n\ndescription: d\ncells: {A: {type: X}}\nops: [{op: rename_net, from: a, to: b}]\nexpect_fatal: NET_EXISTS\n"
	scenario, err := ParseScenario([]byte(content), "")
	require.NoError(t, err)
	assert.Equal(t, "NET_EXISTS", scenario.ExpectFatal)
}

func TestLoadScenarios_SortedByFile(t *testing.T) {
	scenarios, err := LoadScenarios(filepath.Join("testdata", "scenarios"))
	require.NoError(t, err)

	names := make([]string, len(scenarios))
	for i, s := range scenarios {
		names[i] = s.Name
	}
	assert.Equal(t, []string{"copy_address_bus", "double_driver", "reroute_counter"}, names)
}

func TestLoadScenarios_ReportsFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("name: x\n"), 0644))

	_, err := LoadScenarios(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.yaml")
}

func TestInlineSnapshot_Sorted(t *testing.T) {
	scenario, err := ParseScenario([]byte(inlineScenario), "")
	require.NoError(t, err)

	snap, err := scenario.inlineSnapshot()
	require.NoError(t, err)
	require.Len(t, snap.Cells, 2)
	assert.Equal(t, "A", snap.Cells[0].Name)
	assert.Equal(t, "B", snap.Cells[1].Name)
	require.Len(t, snap.Nets, 1)
	require.NotNil(t, snap.Nets[0].Driver)
	assert.Equal(t, "A.Q", snap.Nets[0].Driver.String())
}
