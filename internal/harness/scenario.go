package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/netmut/internal/netlist"
	"github.com/roach88/netmut/internal/script"
)

// Scenario defines a mutation test: a starting design, a list of ops and
// the checks to run on the result.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Design is a directory of CUE files holding the starting design.
	// Relative paths are resolved against the scenario file location.
	Design string `yaml:"design,omitempty"`

	// Cells and Nets declare the starting design inline. Used when Design
	// is empty.
	Cells map[string]CellDecl `yaml:"cells,omitempty"`
	Nets  map[string]NetDecl  `yaml:"nets,omitempty"`

	// Ops is the op list, in the same YAML form as script files.
	Ops []yaml.Node `yaml:"ops"`

	// CheckEach runs the full invariant check after every op.
	CheckEach bool `yaml:"check_each,omitempty"`

	// ExpectFatal is the error code the run must stop with, e.g.
	// PORT_CONNECTED or CHECK_FAILED. Empty means the run must complete.
	ExpectFatal string `yaml:"expect_fatal,omitempty"`

	// Assertions validate the final design.
	Assertions []Assertion `yaml:"assertions"`

	// RunID fixes the run ID recorded in the journal.
	// Defaults to "scenario-run".
	RunID string `yaml:"run_id,omitempty"`

	ops []script.Op
}

// CellDecl declares a cell of an inline design.
type CellDecl struct {
	Type  string            `yaml:"type"`
	Ports map[string]string `yaml:"ports,omitempty"`
	Attrs map[string]string `yaml:"attrs,omitempty"`
}

// NetDecl declares a net of an inline design. Port references are
// "cell.port".
type NetDecl struct {
	Driver string   `yaml:"driver,omitempty"`
	Users  []string `yaml:"users,omitempty"`
}

// Assertion validates the final design.
type Assertion struct {
	// Type specifies the assertion type:
	// - "net_driver": Net is driven by Driver ("" for undriven)
	// - "net_users": Net has exactly Users, in order
	// - "port_net": Port is attached to Net ("" for unconnected)
	// - "port_absent": Port does not exist
	// - "net_absent": Net does not exist
	// - "fingerprint_equal": final fingerprint equals Fingerprint, or the
	//   initial fingerprint when Fingerprint is "initial"
	Type string `yaml:"type"`

	Net         string   `yaml:"net,omitempty"`
	Port        string   `yaml:"port,omitempty"`
	Driver      string   `yaml:"driver,omitempty"`
	Users       []string `yaml:"users,omitempty"`
	Fingerprint string   `yaml:"fingerprint,omitempty"`
}

// Assertion type constants.
const (
	AssertNetDriver        = "net_driver"
	AssertNetUsers         = "net_users"
	AssertPortNet          = "port_net"
	AssertPortAbsent       = "port_absent"
	AssertNetAbsent        = "net_absent"
	AssertFingerprintEqual = "fingerprint_equal"
)

// FingerprintInitial makes fingerprint_equal compare against the design
// before the run.
const FingerprintInitial = "initial"

const defaultRunID = "scenario-run"

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data, filepath.Dir(path))
}

// ParseScenario parses scenario YAML. A relative design directory is
// resolved against baseDir.
func ParseScenario(data []byte, baseDir string) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Design != "" && !filepath.IsAbs(scenario.Design) && baseDir != "" {
		scenario.Design = filepath.Join(baseDir, scenario.Design)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarios loads every .yaml file in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	scenarios := make([]*Scenario, 0, len(matches))
	for _, path := range matches {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid, and
// decodes the op list.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Design != "" && (len(s.Cells) > 0 || len(s.Nets) > 0) {
		return fmt.Errorf("design and inline cells/nets are mutually exclusive")
	}
	if s.Design == "" && len(s.Cells) == 0 {
		return fmt.Errorf("design directory or inline cells are required")
	}
	if s.Design != "" {
		if _, err := os.Stat(s.Design); os.IsNotExist(err) {
			return fmt.Errorf("design directory not found: %s", s.Design)
		}
	}

	if len(s.Ops) == 0 {
		return fmt.Errorf("ops list is required and must be non-empty")
	}
	ops, err := script.DecodeNodes(s.Ops)
	if err != nil {
		return fmt.Errorf("ops: %w", err)
	}
	s.ops = ops

	if s.ExpectFatal == "" && len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required unless expect_fatal is set")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertNetDriver, AssertNetUsers, AssertNetAbsent:
		if a.Net == "" {
			return fmt.Errorf("assertions[%d]: net is required for %s", index, a.Type)
		}
	case AssertPortNet, AssertPortAbsent:
		if _, err := netlist.ParsePortRef(a.Port); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	case AssertFingerprintEqual:
		if a.Fingerprint == "" {
			return fmt.Errorf("assertions[%d]: fingerprint is required for %s", index, a.Type)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	if a.Driver != "" {
		if _, err := netlist.ParsePortRef(a.Driver); err != nil {
			return fmt.Errorf("assertions[%d]: driver: %w", index, err)
		}
	}
	for j, u := range a.Users {
		if _, err := netlist.ParsePortRef(u); err != nil {
			return fmt.Errorf("assertions[%d]: users[%d]: %w", index, j, err)
		}
	}
	return nil
}

// inlineSnapshot turns the inline declarations into a snapshot.
func (s *Scenario) inlineSnapshot() (netlist.Snapshot, error) {
	var snap netlist.Snapshot
	for _, cname := range sortedKeys(s.Cells) {
		decl := s.Cells[cname]
		cs := netlist.CellSnapshot{Name: cname, Type: decl.Type, Attrs: decl.Attrs, Ports: []netlist.PortSnapshot{}}
		for _, pname := range sortedKeys(decl.Ports) {
			cs.Ports = append(cs.Ports, netlist.PortSnapshot{Name: pname, Type: decl.Ports[pname]})
		}
		snap.Cells = append(snap.Cells, cs)
	}
	for _, nname := range sortedKeys(s.Nets) {
		decl := s.Nets[nname]
		ns := netlist.NetSnapshot{Name: nname, Users: []netlist.PortRef{}}
		if decl.Driver != "" {
			ref, err := netlist.ParsePortRef(decl.Driver)
			if err != nil {
				return snap, fmt.Errorf("net %s: driver: %w", nname, err)
			}
			ns.Driver = &ref
		}
		for _, u := range decl.Users {
			ref, err := netlist.ParsePortRef(u)
			if err != nil {
				return snap, fmt.Errorf("net %s: user: %w", nname, err)
			}
			ns.Users = append(ns.Users, ref)
		}
		snap.Nets = append(snap.Nets, ns)
	}
	return snap, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
