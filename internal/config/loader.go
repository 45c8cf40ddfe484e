package config

import (
	"go/token"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"union-generator/internal/analyze"
	"union-generator/internal/diagnostic"
	"union-generator/internal/errors"
	"union-generator/internal/model"
)

// Find looks for FileName in dir and its parents and returns its path, or ""
// when there is none.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.Wrapf(err, "resolving %s", dir)
	}

	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", errors.Wrapf(err, "checking %s", candidate)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// LoadFile loads and parses a configuration file.
func LoadFile(filename string) (*File, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", filename)
	}

	f, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "in %s", filename)
	}

	return f, nil
}

// Parse parses YAML data into a File. Only malformed YAML is an error;
// unparseable values are kept and reported by Resolve.
func Parse(data []byte) (*File, error) {
	var f File

	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "failed to parse config YAML")
	}

	return &f, nil
}

// Marshal serializes a File to YAML.
func Marshal(f *File) ([]byte, error) {
	return yaml.Marshal(f)
}

// Overrides are command-line values that take precedence over the file.
// Nil and empty fields leave the file value in place.
type Overrides struct {
	Async              *bool
	Jobs               *int
	ScaffoldPackage    string
	ScaffoldImportPath string
	ScaffoldDir        string
}

// Resolve merges defaults, the file loaded from filename (f may be nil) and the
// overrides into generator options. When the scaffold location is not
// configured it defaults to <module>/internal/<package>. Invalid values fall
// back to their defaults and are reported to sink.
func Resolve(f *File, filename string, o Overrides, mod *analyze.Module, sink diagnostic.Sink) model.Options {
	opts := model.DefaultOptions()
	if f == nil {
		f = &File{}
	}

	warn := func(line int, format string, args ...any) {
		sink.Report(diagnostic.Warningf(diagnostic.CodeInvalidOption, "", token.Position{Filename: filename, Line: line},
			format, args...))
	}

	switch {
	case f.Async.Invalid:
		warn(f.Async.Line, "async: cannot parse %q as a boolean, using %t", f.Async.Raw, opts.Async)
	case f.Async.Set:
		opts.Async = f.Async.Value
	}

	switch {
	case f.Jobs.Invalid:
		warn(f.Jobs.Line, "jobs: cannot parse %q as an integer, using %d", f.Jobs.Raw, opts.Jobs)
	case f.Jobs.Set && f.Jobs.Value < 1:
		warn(f.Jobs.Line, "jobs: %d is not positive, using %d", f.Jobs.Value, opts.Jobs)
	case f.Jobs.Set:
		opts.Jobs = f.Jobs.Value
	}

	if o.Async != nil {
		opts.Async = *o.Async
	}
	if o.Jobs != nil && *o.Jobs > 0 {
		opts.Jobs = *o.Jobs
	}

	baseDir := ""
	if filename != "" {
		baseDir = filepath.Dir(filename)
	}

	scaffold := f.Scaffold
	if scaffold.Dir != "" && !filepath.IsAbs(scaffold.Dir) && baseDir != "" {
		scaffold.Dir = filepath.Join(baseDir, scaffold.Dir)
	}
	if o.ScaffoldPackage != "" {
		scaffold.Package = o.ScaffoldPackage
	}
	if o.ScaffoldImportPath != "" {
		scaffold.ImportPath = o.ScaffoldImportPath
	}
	if o.ScaffoldDir != "" {
		scaffold.Dir = o.ScaffoldDir
	}

	opts.Scaffold = resolveScaffold(scaffold, mod)

	return opts
}

func resolveScaffold(s Scaffold, mod *analyze.Module) model.ScaffoldPackage {
	pkg := model.ScaffoldPackage{
		Name:       s.Package,
		ImportPath: s.ImportPath,
		Dir:        s.Dir,
	}

	if pkg.Name == "" {
		pkg.Name = model.DefaultScaffoldName
		if pkg.ImportPath != "" {
			pkg.Name = path.Base(pkg.ImportPath)
		}
	}

	if mod == nil {
		return pkg
	}

	if pkg.ImportPath == "" && pkg.Dir == "" {
		pkg.ImportPath = path.Join(mod.Path, "internal", pkg.Name)
		pkg.Dir = filepath.Join(mod.Dir, "internal", pkg.Name)
		return pkg
	}

	// Derive the missing half from the module layout.
	if pkg.Dir == "" {
		if rel, ok := strings.CutPrefix(pkg.ImportPath, mod.Path+"/"); ok {
			pkg.Dir = filepath.Join(mod.Dir, filepath.FromSlash(rel))
		}
	}
	if pkg.ImportPath == "" {
		if rel, err := filepath.Rel(mod.Dir, pkg.Dir); err == nil && !strings.HasPrefix(rel, "..") {
			pkg.ImportPath = path.Join(mod.Path, filepath.ToSlash(rel))
		}
	}

	return pkg
}
