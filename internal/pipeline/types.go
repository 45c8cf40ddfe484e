package pipeline

import (
	"union-generator/internal/analyze"
	"union-generator/internal/diagnostic"
	"union-generator/internal/gen"
	"union-generator/internal/model"
)

// Change replaces the candidate declarations of one package. A change with no
// declarations removes every target the package had.
type Change struct {
	Package      analyze.PackageMeta
	Declarations []analyze.Declaration
	Symbols      *analyze.SymbolIndex
}

// ChangeFromPackage collects the candidate declarations of pkg. Marked
// declarations that are not extensible are reported to sink.
func ChangeFromPackage(pkg *analyze.Package, sink diagnostic.Sink) Change {
	return Change{
		Package:      pkg.PackageMeta,
		Declarations: pkg.Declarations(sink),
		Symbols:      pkg.Symbols,
	}
}

// Output is the result of one committed pass.
type Output struct {
	// Units holds every current unit, ordered by path.
	Units []gen.Unit
	// Changed holds the units rendered this pass whose content is new.
	Changed []gen.Unit
	// Removed holds the last published version of units that no longer exist.
	Removed []gen.Unit
	// Unformatted holds the targets gofmt rejected this pass, with their raw
	// source. Composition never writes it; publishing may.
	Unformatted []*gen.FormatError
	Diagnostics *diagnostic.Diagnostics
}

// RemovedIDs returns the IDs of removed units.
func (o *Output) RemovedIDs() []string {
	ids := make([]string, len(o.Removed))
	for i, u := range o.Removed {
		ids[i] = u.ID
	}

	return ids
}

// Stats counts the work committed passes performed.
type Stats struct {
	Passes          int
	Extractions     int
	TargetRenders   int
	ScaffoldRenders int
}

// entry is a committed target with its rendered unit.
type entry struct {
	target *model.UnionTarget
	unit   gen.Unit
}
