package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/netmut/internal/loader"
	"github.com/roach88/netmut/internal/netlist"
)

// CheckResult lists the invariant violations of a design.
type CheckResult struct {
	Valid      bool                `json:"valid"`
	Violations []netlist.Violation `json:"violations"`
	Orphans    []string            `json:"orphans"`
}

func (r CheckResult) String() string {
	var b strings.Builder
	if r.Valid {
		b.WriteString("✓ design is valid")
	} else {
		fmt.Fprintf(&b, "✗ %d violation(s)", len(r.Violations))
		for _, v := range r.Violations {
			fmt.Fprintf(&b, "\n  %s", v.Error())
		}
	}
	if len(r.Orphans) > 0 {
		fmt.Fprintf(&b, "\n  orphan nets: %s", strings.Join(r.Orphans, ", "))
	}
	return b.String()
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <design-dir>",
		Short: "Check a design against the netlist invariants",
		Long: `Load a CUE design and verify every netlist invariant: drivers and users
exist and point back at their net, port directions fit their role and no
port is listed twice.

Nets without a driver or users (orphans) are reported but are not
violations.

Exit codes:
  0 - Design is valid
  1 - Invariant violations found
  2 - Command error (design unreadable, CUE errors, etc.)

Examples:
  netmut check ./design
  netmut check ./design --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runCheck(opts *RootOptions, designDir string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	result := CheckResult{Violations: []netlist.Violation{}, Orphans: []string{}}

	design, err := loader.LoadDesign(designDir)
	var ce *netlist.CheckError
	switch {
	case errors.As(err, &ce):
		result.Violations = ce.Violations
	case err != nil:
		return f.Fail(ExitCommandError, errorCode(err, loader.ErrCodeGeneric), "failed to load design", err)
	default:
		result.Violations = append(result.Violations, design.Check()...)
		result.Orphans = append(result.Orphans, design.Orphans()...)
	}
	result.Valid = len(result.Violations) == 0

	if result.Valid {
		return f.Success(result)
	}
	if f.Format == "json" {
		if err := f.RunFailed(loader.ErrCodeInvalidDesign, fmt.Sprintf("%d violation(s)", len(result.Violations)), result, ""); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(f.Writer, result)
	}
	return NewExitError(ExitFailure, fmt.Sprintf("%d violation(s)", len(result.Violations)))
}
