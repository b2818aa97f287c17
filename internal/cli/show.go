package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/netmut/internal/loader"
	"github.com/roach88/netmut/internal/netlist"
)

// ShowResult is the canonical form of a design and its fingerprint.
type ShowResult struct {
	Fingerprint string          `json:"fingerprint"`
	Cells       int             `json:"cells"`
	Nets        int             `json:"nets"`
	Design      json.RawMessage `json:"design"`
}

func (r ShowResult) String() string {
	return fmt.Sprintf("%s\nfingerprint: %s (%d cells, %d nets)", r.Design, r.Fingerprint, r.Cells, r.Nets)
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <design-dir>",
		Short: "Print a design as canonical JSON with its fingerprint",
		Long: `Load a CUE design and print its canonical snapshot and fingerprint.

Two designs have the same fingerprint exactly when their snapshots are
identical, including the order of every net's users.

Examples:
  netmut show ./design
  netmut show ./design --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runShow(opts *RootOptions, designDir string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	design, err := loader.LoadDesign(designDir)
	if err != nil {
		return f.Fail(ExitCommandError, errorCode(err, loader.ErrCodeGeneric), "failed to load design", err)
	}

	snap := design.Snapshot()
	data, err := snap.MarshalCanonical()
	if err != nil {
		return f.Fail(ExitCommandError, loader.ErrCodeGeneric, "failed to serialize design", err)
	}
	fp, err := snap.Fingerprint()
	if err != nil {
		return f.Fail(ExitCommandError, loader.ErrCodeGeneric, "failed to fingerprint design", err)
	}

	return f.Success(ShowResult{
		Fingerprint: fp,
		Cells:       design.CellCount(),
		Nets:        design.NetCount(),
		Design:      data,
	})
}

// writeSnapshot writes snap as canonical JSON.
func writeSnapshot(path string, snap netlist.Snapshot) error {
	data, err := snap.MarshalCanonical()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
