package analyze

import (
	"context"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/tools/go/packages"

	"union-generator/internal/common"
	"union-generator/internal/diagnostic"
	"union-generator/internal/errors"
	"union-generator/internal/model"
	"union-generator/internal/scan"
)

// LoadMode specifies what information to load from packages. Files are parsed
// by the Loader itself, so no type information is requested: stale generated
// files must not be able to break a pass.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedModule

// Loader resolves package patterns and parses their files.
type Loader struct {
	// Dir is the directory patterns are resolved from; empty means the
	// current directory.
	Dir string

	fset *token.FileSet
	log  *zap.SugaredLogger
}

// NewLoader creates a new Loader.
func NewLoader(log *zap.SugaredLogger) *Loader {
	return &Loader{
		fset: token.NewFileSet(),
		log:  log,
	}
}

// Fset returns the file set positions are reported against.
func (l *Loader) Fset() *token.FileSet {
	return l.fset
}

// Load loads the packages matching patterns (e.g. "./...", "example.com/m/shapes").
func (l *Loader) Load(ctx context.Context, patterns ...string) ([]*Package, error) {
	cfg := &packages.Config{
		Mode:    LoadMode,
		Context: ctx,
		Dir:     l.Dir,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load packages")
	}

	var errs []string
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = append(errs, e.Error())
		}
	}
	if len(errs) > 0 {
		return nil, errors.Newf("package errors: %s", strings.Join(errs, "; "))
	}
	if len(pkgs) == 0 {
		return nil, errors.WithHintf(errors.ErrNoPackages, "patterns: %s", strings.Join(patterns, " "))
	}

	result := make([]*Package, 0, len(pkgs))
	for _, pkg := range pkgs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		files := append(append([]string{}, pkg.GoFiles...), pkg.IgnoredFiles...)
		if len(files) == 0 {
			continue
		}

		meta := PackageMeta{
			Name:    pkg.Name,
			PkgPath: pkg.PkgPath,
			Dir:     filepath.Dir(files[0]),
		}

		loaded, err := l.parse(meta, files)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to process package %s", pkg.PkgPath)
		}

		if pkg.Module != nil {
			loaded.Module = &Module{Path: pkg.Module.Path, Dir: pkg.Module.Dir}
		}

		l.log.Debugw("Loaded package", "package", pkg.PkgPath, "files", len(loaded.Files))
		result = append(result, loaded)
	}

	return result, nil
}

// ParseDir parses the non-test Go files of dir as the package meta describes.
// The watcher uses it to refresh a single package without going through the
// go command. An empty meta.Name takes the name of the first parsed file.
func (l *Loader) ParseDir(meta PackageMeta) (*Package, error) {
	entries, err := os.ReadDir(meta.Dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", meta.Dir)
	}

	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		files = append(files, filepath.Join(meta.Dir, name))
	}

	return l.parse(meta, files)
}

func (l *Loader) parse(meta PackageMeta, paths []string) (*Package, error) {
	sort.Strings(paths)

	pkg := &Package{
		PackageMeta: meta,
		Symbols:     NewSymbolIndex(),
		Fset:        l.fset,
	}

	for _, path := range paths {
		syntax, err := parser.ParseFile(l.fset, path, nil, parser.ParseComments)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse %s", path)
		}

		if pkg.Name == "" {
			pkg.Name = syntax.Name.Name
		}
		if syntax.Name.Name != pkg.Name {
			// e.g. a "//go:build ignore" program living next to the package
			continue
		}

		file := &File{
			Name:            filepath.Base(path),
			Path:            path,
			Syntax:          syntax,
			BuildConstraint: fileConstraint(filepath.Base(path), syntax),
			Generated:       ast.IsGenerated(syntax),
			Ours:            isOurs(syntax),
			Imports:         fileImports(syntax),
		}
		pkg.Files = append(pkg.Files, file)

		if !file.Ours {
			pkg.Symbols.addFile(syntax)
		}
	}

	return pkg, nil
}

// Declarations returns the candidate declarations of the package in source
// order. Marked declarations that are not extensible are reported to sink.
// Files this tool generated are skipped.
func (p *Package) Declarations(sink diagnostic.Sink) []Declaration {
	var decls []Declaration

	for _, file := range p.Files {
		if file.Ours {
			continue
		}

		fileChain := []model.Parent{
			{Kind: model.ContainerPackage, Name: p.Name},
			{Kind: model.ContainerFile, Name: file.Name, Constraints: file.BuildConstraint},
		}

		for _, decl := range file.Syntax.Decls {
			switch d := decl.(type) {
			case *ast.GenDecl:
				decls = p.collect(decls, sink, file, d, fileChain)

			case *ast.FuncDecl:
				if d.Body == nil {
					continue
				}

				funcChain := append(append([]model.Parent{}, fileChain...),
					model.Parent{Kind: model.ContainerFunc, Name: d.Name.Name})

				ast.Inspect(d.Body, func(n ast.Node) bool {
					if stmt, ok := n.(*ast.DeclStmt); ok {
						if gd, ok := stmt.Decl.(*ast.GenDecl); ok {
							decls = p.collect(decls, sink, file, gd, funcChain)
						}
					}
					return true
				})
			}
		}
	}

	return decls
}

func (p *Package) collect(decls []Declaration, sink diagnostic.Sink, file *File, group *ast.GenDecl, chain []model.Parent) []Declaration {
	if group.Tok != token.TYPE {
		return decls
	}

	for _, s := range group.Specs {
		spec, ok := s.(*ast.TypeSpec)
		if !ok {
			continue
		}

		pos := p.Fset.Position(spec.Pos())

		if !scan.IsCandidate(spec, group) {
			if scan.HasMarker(spec, group) {
				sink.Report(diagnostic.Warningf(diagnostic.CodeNotExtensible,
					p.PkgPath+"."+spec.Name.Name, pos,
					"%s is marked as a union target but is not a defined interface type usable as a value", spec.Name.Name))
			}
			continue
		}

		decls = append(decls, Declaration{
			Pkg:     p.PackageMeta,
			Spec:    spec,
			Group:   group,
			File:    file,
			Parent:  model.Chain(chain...),
			Pos:     pos,
			Symbols: p.Symbols,
		})
	}

	return decls
}

// isOurs reports whether f starts with this tool's generated header.
func isOurs(f *ast.File) bool {
	for _, group := range f.Comments {
		if group.Pos() >= f.Package {
			break
		}
		for _, c := range group.List {
			if c.Text == model.GeneratedHeader {
				return true
			}
		}
	}

	return false
}

// fileImports returns the named imports of f. Blank and dot imports are
// skipped: generated files can neither use the former nor rely on the latter.
func fileImports(f *ast.File) []model.Import {
	var imports []model.Import

	for _, spec := range f.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}

		name := common.PkgAlias(path)
		if spec.Name != nil {
			if spec.Name.Name == "_" || spec.Name.Name == "." {
				continue
			}
			name = spec.Name.Name
		}

		imports = append(imports, model.Import{Name: name, Path: path})
	}

	return imports
}
