package commands

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"union-generator/internal/diagnostic"
	"union-generator/internal/gen"
)

var inspectUnits bool

// InspectCmd dumps the extracted models.
var InspectCmd = &cobra.Command{
	Use:   "inspect [packages]",
	Short: "Dump the extracted union target models",
	Long: `Extract every union target and print its structural model. Nothing is
written to disk.

Examples:
  union-generator inspect ./shapes
  union-generator inspect --units ./shapes   # Also print the rendered source`,
	RunE: runInspect,
}

func init() {
	InspectCmd.Flags().BoolVar(&inspectUnits, "units", false, "Also print the rendered units")
}

var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

func runInspect(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	diags := &diagnostic.Diagnostics{}

	s, err := newSession(ctx, cmd, args, diags)
	if err != nil {
		return err
	}

	out, err := s.run(ctx, diags)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	targets := s.engine.Targets()

	fmt.Fprintf(w, "options: ")
	dumper.Fdump(w, s.opts)
	fmt.Fprintf(w, "arities: %v\n", gen.CollectArities(targets))

	for _, target := range targets {
		fmt.Fprintf(w, "\n%s:\n", target.ID())
		dumper.Fdump(w, target)
	}

	if inspectUnits {
		for _, u := range out.Units {
			fmt.Fprintf(w, "\n// ---- %s (%s) ----\n%s", u.Path(), u.Kind, u.Content)
		}
	}

	return reportDiagnostics(cmd, diags)
}
