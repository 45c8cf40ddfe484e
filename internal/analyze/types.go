package analyze

import (
	"go/ast"
	"go/token"

	"union-generator/internal/model"
)

// Module describes the module a package belongs to.
type Module struct {
	Path string
	Dir  string
}

// PackageMeta identifies a package.
type PackageMeta struct {
	Name    string
	PkgPath string
	Dir     string
}

// Package is one loaded package.
type Package struct {
	PackageMeta
	Module  *Module
	Files   []*File
	Symbols *SymbolIndex
	Fset    *token.FileSet
}

// File is one parsed source file of a package.
type File struct {
	Name   string // base name, e.g. "result.go"
	Path   string
	Syntax *ast.File
	// BuildConstraint is the file's effective build constraint expression,
	// combining its //go:build line and its GOOS/GOARCH file name suffix.
	BuildConstraint string
	// Generated is true for files carrying a "Code generated" header.
	Generated bool
	// Ours is true for files this tool generated.
	Ours    bool
	Imports []model.Import
}

// Declaration is a candidate union target: a marked type spec together with
// its declaration group, its file and its enclosing container chain.
type Declaration struct {
	Pkg     PackageMeta
	Spec    *ast.TypeSpec
	Group   *ast.GenDecl
	File    *File
	Parent  *model.Parent
	Pos     token.Position
	Symbols *SymbolIndex
}

// Name returns the declared type name.
func (d Declaration) Name() string {
	return d.Spec.Name.Name
}

// ID returns the identity the target would have once extracted.
func (d Declaration) ID() string {
	return d.Pkg.PkgPath + "." + d.Name()
}

// SymbolIndex records the package-level functions and the methods declared
// by the user, i.e. in every file of the package except the ones this tool
// generated.
type SymbolIndex struct {
	Funcs map[string]bool
	// Methods maps a receiver base type name to its method names.
	Methods map[string]map[string]bool
}

// NewSymbolIndex creates an empty index.
func NewSymbolIndex() *SymbolIndex {
	return &SymbolIndex{
		Funcs:   make(map[string]bool),
		Methods: make(map[string]map[string]bool),
	}
}

// HasFunc reports whether the package declares a function named name.
func (s *SymbolIndex) HasFunc(name string) bool {
	return s != nil && s.Funcs[name]
}

// HasMethod reports whether typeName declares a method named method.
func (s *SymbolIndex) HasMethod(typeName, method string) bool {
	return s != nil && s.Methods[typeName][method]
}

func (s *SymbolIndex) addFile(f *ast.File) {
	for _, decl := range f.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok {
			continue
		}

		if fn.Recv == nil || len(fn.Recv.List) == 0 {
			s.Funcs[fn.Name.Name] = true
			continue
		}

		recv := receiverTypeName(fn.Recv.List[0].Type)
		if recv == "" {
			continue
		}

		if s.Methods[recv] == nil {
			s.Methods[recv] = make(map[string]bool)
		}
		s.Methods[recv][fn.Name.Name] = true
	}
}

// receiverTypeName strips pointers and type arguments from a receiver type.
func receiverTypeName(expr ast.Expr) string {
	for {
		switch t := expr.(type) {
		case *ast.StarExpr:
			expr = t.X
		case *ast.ParenExpr:
			expr = t.X
		case *ast.IndexExpr:
			expr = t.X
		case *ast.IndexListExpr:
			expr = t.X
		case *ast.Ident:
			return t.Name
		default:
			return ""
		}
	}
}
