package model

import (
	"runtime"
	"strconv"
)

// ScaffoldPackage locates the shared package holding per-arity dispatch.
type ScaffoldPackage struct {
	// Name is the package clause of scaffold units.
	Name string
	// ImportPath is how augmentation units import the scaffold package.
	ImportPath string
	// Dir is where scaffold units are written.
	Dir string
}

// Options are the process-wide generator options, read once per pass.
type Options struct {
	// Async emits the context-aware dispatch counterparts for every target.
	Async    bool
	Scaffold ScaffoldPackage
	// Jobs bounds concurrent extraction and composition within a pass.
	Jobs int
}

// DefaultScaffoldName is the package name used when none is configured.
const DefaultScaffoldName = "unions"

// DefaultOptions returns the documented safe defaults.
func DefaultOptions() Options {
	return Options{
		Async: false,
		Scaffold: ScaffoldPackage{
			Name: DefaultScaffoldName,
		},
		Jobs: runtime.GOMAXPROCS(0),
	}
}

// Fingerprint returns the option fields that influence rendered output.
// Jobs is excluded: it changes scheduling, never content.
func (o Options) Fingerprint() string {
	return strconv.FormatBool(o.Async) + "\x00" + o.Scaffold.Name + "\x00" + o.Scaffold.ImportPath + "\x00" + o.Scaffold.Dir
}
