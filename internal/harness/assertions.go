package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/netmut/internal/engine"
	"github.com/roach88/netmut/internal/netlist"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string        // Assertion type for categorization
	Expected string        // Human-readable expected outcome
	Actual   string        // Human-readable actual outcome
	Trace    []engine.Step // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, step := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %v %s\n", step.Seq, step.Kind, step.Args, step.Status)
		}
	}

	return buf.String()
}

// AssertionContext provides the final design for assertions.
type AssertionContext struct {
	Design      *netlist.Design
	InitialHash string
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string

	for i, assertion := range assertions {
		var err error
		if actx == nil || actx.Design == nil {
			err = fmt.Errorf("assertion[%d]: no design to check", i)
		} else {
			err = evaluate(result, assertion, actx)
		}
		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	return errs
}

func evaluate(result *Result, a Assertion, actx *AssertionContext) error {
	d := actx.Design
	fail := func(expected, actual string) error {
		return &AssertionError{Type: a.Type, Expected: expected, Actual: actual, Trace: result.Trace}
	}

	switch a.Type {
	case AssertNetDriver:
		n := d.Net(a.Net)
		if n == nil {
			return fail(fmt.Sprintf("net %s driven by %q", a.Net, a.Driver), "net does not exist")
		}
		got := ""
		if n.HasDriver() {
			got = n.Driver.String()
		}
		if got != a.Driver {
			return fail(fmt.Sprintf("net %s driven by %q", a.Net, a.Driver), fmt.Sprintf("driven by %q", got))
		}

	case AssertNetUsers:
		n := d.Net(a.Net)
		if n == nil {
			return fail(fmt.Sprintf("net %s users %v", a.Net, a.Users), "net does not exist")
		}
		got := make([]string, len(n.Users))
		for i, u := range n.Users {
			got[i] = u.String()
		}
		if !equalStrings(got, a.Users) {
			return fail(fmt.Sprintf("net %s users %v", a.Net, a.Users), fmt.Sprintf("users %v", got))
		}

	case AssertPortNet:
		ref, err := netlist.ParsePortRef(a.Port)
		if err != nil {
			return err
		}
		p := d.Port(ref)
		if p == nil {
			return fail(fmt.Sprintf("port %s on net %q", a.Port, a.Net), "port does not exist")
		}
		if p.Net != a.Net {
			return fail(fmt.Sprintf("port %s on net %q", a.Port, a.Net), fmt.Sprintf("on net %q", p.Net))
		}

	case AssertPortAbsent:
		ref, err := netlist.ParsePortRef(a.Port)
		if err != nil {
			return err
		}
		if p := d.Port(ref); p != nil {
			return fail(fmt.Sprintf("no port %s", a.Port), fmt.Sprintf("port exists (%s, net %q)", p.Type, p.Net))
		}

	case AssertNetAbsent:
		if d.HasNet(a.Net) {
			return fail(fmt.Sprintf("no net %s", a.Net), "net exists")
		}

	case AssertFingerprintEqual:
		want := a.Fingerprint
		if want == FingerprintInitial {
			want = actx.InitialHash
		}
		if result.FinalHash != want {
			return fail(fmt.Sprintf("fingerprint %s", want), fmt.Sprintf("fingerprint %s", result.FinalHash))
		}

	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
