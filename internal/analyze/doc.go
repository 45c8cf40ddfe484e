// Package analyze loads Go packages and turns them into the host-side inputs
// of a pass.
//
// It uses golang.org/x/tools/go/packages to resolve patterns to package
// directories and go/parser to read every file of a package, including files
// excluded by the current build context, so that targets behind build
// constraints are generated with those constraints carried forward.
//
// Key types:
//   - Package: one loaded package with its files and symbol index
//   - Declaration: a marked candidate type spec with its container chain
//   - SymbolIndex: functions and methods declared outside our generated files
package analyze
