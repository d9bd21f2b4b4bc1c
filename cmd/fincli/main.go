// fincli is the command line companion to the CorpFin backend. It evaluates
// scenario files with the same three-statement projection engine the HTTP API
// serves, so a scenario that runs cleanly here produces identical statements
// when submitted to a server.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd assembles the fincli command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "fincli",
		Short: "Corporate finance projection toolkit",
		Long: `fincli runs linked three-statement projections (income statement, balance
sheet, cash flow) from local scenario files. Scenarios are YAML documents
mirroring the HTTP request format; see examples/scenarios for starting points.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		NewRunCmd(),
		NewValidateCmd(),
		NewTokenCmd(),
		NewVersionCmd(),
	)

	return root
}
