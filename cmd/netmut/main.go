// Command netmut applies mutation scripts to netlist designs.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/netmut/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
