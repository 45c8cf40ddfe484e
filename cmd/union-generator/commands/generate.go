package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"union-generator/internal/diagnostic"
	"union-generator/internal/gen"
)

// GenerateCmd runs one pass and writes the generated files.
var GenerateCmd = &cobra.Command{
	Use:   "generate [packages]",
	Short: "Generate union dispatch code",
	Long: `Generate sealing, conversion and exhaustive Match/Switch functions for
every interface type marked with //union:target, plus one shared scaffold
file per distinct variant count.

Generated files that no longer correspond to a target are removed.

Examples:
  union-generator generate                 # All packages below the working directory
  union-generator generate ./shapes        # One package
  union-generator generate --async ./...   # Async dispatch for every target`,
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
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

	written, err := gen.WriteUnits(out.Units)
	if err != nil {
		return err
	}

	if err := writeUnformatted(cmd.OutOrStdout(), out.Unformatted); err != nil {
		return err
	}

	removed, err := gen.PruneStale(s.outputDirs(), out.Units)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	for _, path := range written {
		fmt.Fprintf(w, "✓ Generated %s\n", path)
	}
	for _, path := range removed {
		fmt.Fprintf(w, "✗ Removed %s\n", path)
	}

	return reportDiagnostics(cmd, diags)
}

// writeUnformatted saves the source of targets gofmt rejected next to their
// intended output.
func writeUnformatted(w io.Writer, failures []*gen.FormatError) error {
	for _, fe := range failures {
		path, err := gen.WriteUnformatted(fe)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "! Unformatted source saved to %s\n", path)
	}

	return nil
}
