package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"union-generator/internal/diagnostic"
	"union-generator/internal/errors"
	"union-generator/internal/gen"
)

// CheckCmd verifies generated files are up to date without writing anything.
var CheckCmd = &cobra.Command{
	Use:   "check [packages]",
	Short: "Check that generated union code is up to date",
	Long: `Run a generation pass in memory and compare the result with the files on
disk. Exits non-zero when a file is missing, differs or is stale.

Examples:
  union-generator check          # Suitable for CI
  union-generator check ./...`,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
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

	outdated, err := gen.OutOfDate(out.Units)
	if err != nil {
		return err
	}

	stale, err := gen.StaleFiles(s.outputDirs(), out.Units)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	for _, path := range outdated {
		fmt.Fprintf(w, "✗ Out of date: %s\n", path)
	}
	for _, path := range stale {
		fmt.Fprintf(w, "✗ Stale: %s\n", path)
	}

	if err := reportDiagnostics(cmd, diags); err != nil {
		return err
	}

	if len(outdated)+len(stale) > 0 {
		return errors.WithHint(errors.ErrOutOfDate, "run union-generator generate")
	}

	fmt.Fprintf(w, "✓ %d generated file(s) up to date\n", len(out.Units))

	return nil
}
