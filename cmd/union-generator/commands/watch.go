package commands

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"union-generator/internal/diagnostic"
	"union-generator/internal/gen"
	"union-generator/internal/logger"
	"union-generator/internal/pipeline"
	"union-generator/internal/watch"
)

var watchDebounce time.Duration

// WatchCmd keeps generated files up to date while sources change.
var WatchCmd = &cobra.Command{
	Use:   "watch [packages]",
	Short: "Regenerate union code as sources change",
	Long: `Run a full generation pass, then watch the package directories and the
configuration file. Each settled batch of changes re-parses only the affected
packages; targets whose model did not change are not re-rendered.

Examples:
  union-generator watch
  union-generator watch --debounce 500ms ./...`,
	RunE: runWatch,
}

func init() {
	WatchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "Time to let file changes settle")
}

func runWatch(cmd *cobra.Command, args []string) error {
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
	if err := s.publish(cmd, out.Units, nil, out.Unformatted); err != nil {
		return err
	}
	if _, err := gen.PruneStale(s.outputDirs(), out.Units); err != nil {
		return err
	}
	diagnostic.Print(cmd.ErrOrStderr(), diags)

	w, err := watch.New(slices.Sorted(maps.Keys(s.packages)), s.configPath, watchDebounce, s.log)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Watching %d package(s), press Ctrl+C to stop\n", len(s.packages))

	return w.Run(ctx, func(ctx context.Context, batch watch.Batch) error {
		return s.onBatch(ctx, cmd, batch)
	})
}

// onBatch re-parses the changed packages and publishes the resulting units.
// Failures of a single batch are reported and do not stop the watcher.
func (s *session) onBatch(ctx context.Context, cmd *cobra.Command, batch watch.Batch) error {
	diags := &diagnostic.Diagnostics{}

	if batch.Config {
		if err := s.resolveOptions(cmd, diags); err != nil {
			s.log.Errorw("reloading configuration failed", "error", err)
		} else {
			s.engine.SetOptions(s.opts)
		}
	}

	var changes []pipeline.Change
	for _, dir := range batch.Dirs {
		known, ok := s.packages[dir]
		if !ok {
			continue
		}

		pkg, err := s.loader.ParseDir(known.PackageMeta)
		if err != nil {
			s.log.Warnw("re-parsing package failed", logger.FieldPackage, known.PkgPath, "error", err)
			continue
		}
		pkg.Module = known.Module
		s.packages[dir] = pkg

		changes = append(changes, pipeline.ChangeFromPackage(pkg, diags))
	}

	out, err := s.engine.Apply(ctx, changes...)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		s.log.Errorw("generation pass failed", "error", err)
		return nil
	}
	diags.Merge(out.Diagnostics)

	if err := s.publish(cmd, out.Changed, out.Removed, out.Unformatted); err != nil {
		s.log.Errorw("publishing generated files failed", "error", err)
	}
	diagnostic.Print(cmd.ErrOrStderr(), diags)

	return nil
}

// publish writes units and unformatted sources, and removes the files of
// removed units.
func (s *session) publish(cmd *cobra.Command, units, removed []gen.Unit, unformatted []*gen.FormatError) error {
	written, err := gen.WriteUnits(units)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	for _, path := range written {
		fmt.Fprintf(w, "✓ Generated %s\n", path)
	}

	if err := writeUnformatted(w, unformatted); err != nil {
		return err
	}

	for _, u := range removed {
		ok, err := gen.RemoveFile(u.Path())
		if err != nil {
			return err
		}
		if ok {
			fmt.Fprintf(w, "✗ Removed %s\n", u.Path())
		}
	}

	return nil
}
