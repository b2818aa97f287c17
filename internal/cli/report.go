package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/netmut/internal/loader"
	"github.com/roach88/netmut/internal/report"
)

// ReportOptions holds flags for the report command.
type ReportOptions struct {
	*RootOptions
	Device string
}

// ReportResult is the utilisation of a device by a design.
type ReportResult struct {
	Device       string       `json:"device,omitempty"`
	Rows         []report.Row `json:"rows"`
	Unclassified []string     `json:"unclassified"`
}

func (r ReportResult) String() string {
	var b strings.Builder
	_ = report.WriteText(&b, r.Rows)
	if len(r.Unclassified) > 0 {
		fmt.Fprintf(&b, "unclassified cell types: %s\n", strings.Join(r.Unclassified, ", "))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// NewReportCommand creates the report command.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "report <design-dir>",
		Short: "Report device utilisation of a design",
		Long: `Count the cells of a design per resource bucket and compare with what
the device offers.

The device file maps cell types to buckets and gives the number of
resources in each bucket. Cell types without a bucket are listed
separately.

Examples:
  netmut report ./design --device device.yaml
  netmut report ./design --device device.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Device, "device", "d", "", "device resources file (required)")
	_ = cmd.MarkFlagRequired("device")

	return cmd
}

func runReport(opts *ReportOptions, designDir string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	design, err := loader.LoadDesign(designDir)
	if err != nil {
		return f.Fail(ExitCommandError, errorCode(err, loader.ErrCodeGeneric), "failed to load design", err)
	}
	device, err := report.LoadDevice(opts.Device)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeDevice, "failed to load device", err)
	}

	unclassified := report.Unclassified(design, device)
	if unclassified == nil {
		unclassified = []string{}
	}
	return f.Success(ReportResult{
		Device:       device.Name,
		Rows:         report.Utilisation(design, device, device.Buckets),
		Unclassified: unclassified,
	})
}
