// Package main provides the CLI entrypoint for union-generator.
//
// union-generator gives Go closed tagged unions:
//   - Finds interface types marked with //union:target
//   - Treats the struct types declared in the same type group as variants
//   - Generates sealing, conversions and exhaustive Match/Switch functions
//   - Shares one dispatch scaffold per variant count across the module
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"union-generator/cmd/union-generator/commands"
	"union-generator/internal/errors"
	"union-generator/internal/logger"
)

var jsonLogs bool

var rootCmd = &cobra.Command{
	Use:   "union-generator",
	Short: "Closed tagged unions for Go",
	Long: `union-generator - closed tagged unions for Go.

Mark an interface type and declare its variants in the same type group:

  //union:target
  type (
  	Shape interface{ isShape() }

  	Circle struct{ Radius float64 }
  	Square struct{ Side float64 }
  )

and run union-generator generate (typically from a //go:generate directive).

Available commands:
  generate - Write generated files and prune stale ones
  check    - Fail when generated files are out of date
  watch    - Regenerate incrementally as sources change
  inspect  - Dump extracted models`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, err := cmd.Flags().GetCount("verbose")
		if err != nil {
			return err
		}
		if err := logger.Initialize(jsonLogs, verbosity); err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Emit logs as JSON")
	commands.RegisterFlags(rootCmd)

	rootCmd.AddCommand(commands.GenerateCmd)
	rootCmd.AddCommand(commands.CheckCmd)
	rootCmd.AddCommand(commands.WatchCmd)
	rootCmd.AddCommand(commands.InspectCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if hint := errors.FlattenHints(err); hint != "" {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		stop()
		os.Exit(1)
	}
}
