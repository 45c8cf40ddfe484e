package commands

import (
	"context"
	"maps"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"union-generator/internal/analyze"
	"union-generator/internal/config"
	"union-generator/internal/diagnostic"
	"union-generator/internal/errors"
	"union-generator/internal/logger"
	"union-generator/internal/model"
	"union-generator/internal/pipeline"
)

var (
	configFlag         string
	asyncFlag          bool
	scaffoldPkgFlag    string
	scaffoldImportFlag string
	scaffoldDirFlag    string
	jobsFlag           int
)

// RegisterFlags adds the generator flags shared by every command.
func RegisterFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVar(&configFlag, "config", "", "Path to "+config.FileName+" (default: searched upwards from the working directory)")
	f.BoolVar(&asyncFlag, "async", false, "Generate async dispatch for every target")
	f.StringVar(&scaffoldPkgFlag, "scaffold-pkg", "", "Scaffold package name (default: "+model.DefaultScaffoldName+")")
	f.StringVar(&scaffoldImportFlag, "scaffold-import", "", "Scaffold import path (default: <module>/internal/<scaffold-pkg>)")
	f.StringVar(&scaffoldDirFlag, "scaffold-dir", "", "Scaffold output directory (default: <module dir>/internal/<scaffold-pkg>)")
	f.IntVar(&jobsFlag, "jobs", 0, "Concurrent extraction and composition jobs (default: GOMAXPROCS)")
}

// session is one CLI invocation: the loaded packages, the resolved options
// and the engine holding the incremental state.
type session struct {
	log        *zap.SugaredLogger
	loader     *analyze.Loader
	engine     *pipeline.Engine
	packages   map[string]*analyze.Package // by directory
	module     *analyze.Module
	configPath string
	opts       model.Options
}

func newSession(ctx context.Context, cmd *cobra.Command, patterns []string, diags *diagnostic.Diagnostics) (*session, error) {
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	log := logger.Named("cli")
	s := &session{
		log:      log,
		loader:   analyze.NewLoader(log),
		packages: make(map[string]*analyze.Package),
	}

	pkgs, err := s.loader.Load(ctx, patterns...)
	if err != nil {
		return nil, err
	}
	for _, pkg := range pkgs {
		s.packages[pkg.Dir] = pkg
		if s.module == nil && pkg.Module != nil {
			s.module = pkg.Module
		}
	}

	if err := s.resolveOptions(cmd, diags); err != nil {
		return nil, err
	}
	s.engine = pipeline.NewEngine(s.opts, log)

	log.Infow("session ready",
		logger.FieldCount, len(s.packages),
		"config", s.configPath,
		"scaffold", s.opts.Scaffold.ImportPath)

	return s, nil
}

// resolveOptions reads the configuration file and applies flag overrides.
// Only flags the user set override the file.
func (s *session) resolveOptions(cmd *cobra.Command, diags *diagnostic.Diagnostics) error {
	path := configFlag
	if path == "" {
		found, err := config.Find(".")
		if err != nil {
			return err
		}
		path = found
	}

	var f *config.File
	if path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return err
		}
		f = loaded
	}

	o := config.Overrides{
		ScaffoldPackage:    scaffoldPkgFlag,
		ScaffoldImportPath: scaffoldImportFlag,
		ScaffoldDir:        scaffoldDirFlag,
	}
	if cmd.Flags().Changed("async") {
		o.Async = &asyncFlag
	}
	if cmd.Flags().Changed("jobs") {
		o.Jobs = &jobsFlag
	}

	s.configPath = path
	s.opts = config.Resolve(f, path, o, s.module, diags)

	if s.opts.Scaffold.ImportPath == "" {
		return errors.WithHint(errors.New("cannot determine the scaffold import path"),
			"run inside a Go module or set --scaffold-import")
	}

	return nil
}

// changes returns one change per loaded package, ordered by directory.
func (s *session) changes(sink diagnostic.Sink) []pipeline.Change {
	dirs := slices.Sorted(maps.Keys(s.packages))
	changes := make([]pipeline.Change, 0, len(dirs))
	for _, dir := range dirs {
		changes = append(changes, pipeline.ChangeFromPackage(s.packages[dir], sink))
	}

	return changes
}

// run applies a full pass over every loaded package.
func (s *session) run(ctx context.Context, diags *diagnostic.Diagnostics) (*pipeline.Output, error) {
	out, err := s.engine.Apply(ctx, s.changes(diags)...)
	if err != nil {
		return nil, err
	}
	diags.Merge(out.Diagnostics)

	return out, nil
}

// outputDirs lists every directory generated files may live in.
func (s *session) outputDirs() []string {
	dirs := slices.Collect(maps.Keys(s.packages))
	if s.opts.Scaffold.Dir != "" {
		dirs = append(dirs, s.opts.Scaffold.Dir)
	}

	return dirs
}

// reportDiagnostics prints diags and fails when any target was dropped.
func reportDiagnostics(cmd *cobra.Command, diags *diagnostic.Diagnostics) error {
	diagnostic.Print(cmd.ErrOrStderr(), diags)

	if diags.HasErrors() {
		return errors.Newf("%d union target(s) could not be generated", diags.ErrorCount())
	}

	return nil
}
