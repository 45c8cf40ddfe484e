package extract

import (
	"fmt"
	"go/ast"
	"go/types"
	"maps"
	"slices"
	"sort"
	"strings"

	"union-generator/internal/analyze"
	"union-generator/internal/diagnostic"
	"union-generator/internal/match"
	"union-generator/internal/model"
	"union-generator/internal/scan"
)

// Reserved value names used by the generated dispatch functions.
const (
	valueParam   = "u"
	contextParam = "ctx"
)

// Extract builds the model of decl. It returns nil when decl cannot become a
// target: its container chain cannot host methods, its generics are
// inconsistent or collide with generated names, or no variant is eligible.
// Each of those cases is reported to sink.
func Extract(decl analyze.Declaration, symbols *analyze.SymbolIndex, opts model.Options, sink diagnostic.Sink) *model.UnionTarget {
	x := &extractor{
		decl:    decl,
		symbols: symbols,
		sink:    sink,
		id:      decl.ID(),
	}

	return x.extract(opts)
}

type extractor struct {
	decl    analyze.Declaration
	symbols *analyze.SymbolIndex
	sink    diagnostic.Sink
	id      string
	quals   map[string]bool
}

func (x *extractor) errorf(code, format string, args ...any) {
	x.sink.Report(diagnostic.Errorf(code, x.id, x.decl.Pos, format, args...))
}

func (x *extractor) extract(opts model.Options) *model.UnionTarget {
	if !x.decl.Parent.CanHostMethods() {
		where := "outside a package file"
		if fn := x.decl.Parent.Find(model.ContainerFunc); fn != nil {
			where = "inside func " + fn.Name
		}
		x.errorf(diagnostic.CodeLocalType, "%s is declared %s and cannot receive generated methods", x.decl.Name(), where)
		return nil
	}

	target := &model.UnionTarget{
		Package:    x.decl.Pkg.Name,
		PkgPath:    x.decl.Pkg.PkgPath,
		Dir:        x.decl.Pkg.Dir,
		Name:       x.decl.Name(),
		Visibility: model.VisibilityOf(x.decl.Name()),
		Async:      x.async(opts),
		Parent:     x.decl.Parent,
	}

	x.quals = make(map[string]bool)
	target.TypeParams = x.typeParams(x.decl.Spec.TypeParams)

	variants, ok := x.variants(target)
	if !ok {
		return nil
	}
	if len(variants) == 0 {
		x.errorf(diagnostic.CodeNoVariants,
			"%s has no eligible variants; declare exported struct types in its type ( ... ) group", target.Name)
		return nil
	}
	target.Variants = variants

	if !x.checkCollisions(target, opts) {
		return nil
	}

	imports, ok := x.imports()
	if !ok {
		return nil
	}
	target.Imports = imports

	return target
}

// async resolves the marker's async option against the process default.
func (x *extractor) async(opts model.Options) bool {
	directive, _ := scan.ParseDirective(x.decl.Spec, x.decl.Group)
	for _, invalid := range directive.Invalid {
		x.sink.Report(diagnostic.Warningf(diagnostic.CodeInvalidOption, x.id, x.decl.Pos,
			"%s", invalidOptionMessage(invalid)))
	}

	if directive.AsyncSet {
		return directive.Async
	}

	return opts.Async
}

func invalidOptionMessage(opt string) string {
	key, _, _ := strings.Cut(opt, "=")
	if key == scan.OptionAsync {
		return fmt.Sprintf("ignoring unparseable marker option %q", opt)
	}

	if near, ok := match.Suggest(key, scan.OptionAsync); ok {
		return fmt.Sprintf("ignoring unknown marker option %q, did you mean %q?", key, near)
	}

	return fmt.Sprintf("ignoring unknown marker option %q", key)
}

func (x *extractor) typeParams(list *ast.FieldList) []model.TypeParam {
	if list == nil {
		return nil
	}

	var params []model.TypeParam
	for _, field := range list.List {
		constraint := types.ExprString(field.Type)
		quals := qualifiers(field.Type)
		for _, q := range quals {
			x.quals[q] = true
		}

		for _, name := range field.Names {
			params = append(params, model.TypeParam{
				Name:       name.Name,
				Constraint: constraint,
				Qualifiers: quals,
			})
		}
	}

	return params
}

// variants collects the eligible variants in declaration order. The second
// result is false when a variant makes the whole target invalid.
func (x *extractor) variants(target *model.UnionTarget) ([]model.Variant, bool) {
	var variants []model.Variant
	seen := make(map[string]bool)

	for _, s := range x.decl.Group.Specs {
		spec, ok := s.(*ast.TypeSpec)
		if !ok || spec == x.decl.Spec {
			continue
		}

		// Aliases cannot receive methods, and only structs carry a payload.
		if spec.Assign.IsValid() {
			continue
		}
		st, ok := spec.Type.(*ast.StructType)
		if !ok {
			continue
		}

		name := spec.Name.Name
		visibility := model.VisibilityOf(name)
		if visibility < target.Visibility {
			continue
		}

		generic, eligible, consistent := x.variantGenerics(target, spec)
		if !consistent {
			return nil, false
		}
		if !eligible {
			continue
		}

		if seen[name] {
			x.errorf(diagnostic.CodeDuplicateVariant, "variant %s is declared twice", name)
			return nil, false
		}
		seen[name] = true

		ctor := x.constructor(st)

		for _, member := range []string{model.WidenMethod, target.SealMethod()} {
			if x.symbols.HasMethod(name, member) || hasField(ctor, member) {
				x.errorf(diagnostic.CodeMemberCollision,
					"variant %s already declares %s, which the generator provides", name, member)
				return nil, false
			}
		}

		v := model.Variant{
			Name:        name,
			Owner:       target.FullName(),
			Generic:     generic,
			Constructor: ctor,
			Closed: model.Closure{
				SealMethod: target.SealMethod(),
				Visibility: visibility,
			},
		}
		v.UserWrap = x.symbols.HasFunc(v.WrapFunc())
		v.UserUnwrap = x.symbols.HasMethod(name, model.UnwrapMethod) || hasField(ctor, model.UnwrapMethod)

		// Only a single-field payload is ever spelled out in generated code.
		if p, ok := ctor.Single(); ok && !(v.UserWrap && v.UserUnwrap) {
			for _, q := range p.Qualifiers {
				x.quals[q] = true
			}
		}

		variants = append(variants, v)
	}

	return variants, true
}

// variantGenerics classifies a variant's type parameters. A variant must
// repeat the target's parameter list, so variants of a plain target have none;
// repeating the names with different constraints is inconsistent and reported;
// any other parameter list is the variant's own and makes it ineligible.
func (x *extractor) variantGenerics(target *model.UnionTarget, spec *ast.TypeSpec) (generic, eligible, consistent bool) {
	if spec.TypeParams == nil || len(spec.TypeParams.List) == 0 {
		// Methods of a plain type cannot mention the target's parameters.
		return false, len(target.TypeParams) == 0, true
	}

	var own []model.TypeParam
	for _, field := range spec.TypeParams.List {
		for _, name := range field.Names {
			own = append(own, model.TypeParam{Name: name.Name, Constraint: types.ExprString(field.Type)})
		}
	}

	if len(own) != len(target.TypeParams) {
		return false, false, true
	}
	for i := range own {
		if own[i].Name != target.TypeParams[i].Name {
			return false, false, true
		}
	}

	for i := range own {
		if own[i].Constraint != target.TypeParams[i].Constraint {
			x.errorf(diagnostic.CodeInconsistentGenerics,
				"variant %s constrains %s by %s but %s constrains it by %s",
				spec.Name.Name, own[i].Name, own[i].Constraint, target.Name, target.TypeParams[i].Constraint)
			return false, false, false
		}
	}

	return true, true, true
}

// constructor captures the struct fields verbatim, in order. Embedded fields
// are named after their type.
func (x *extractor) constructor(st *ast.StructType) *model.Constructor {
	if st.Fields == nil || len(st.Fields.List) == 0 {
		return nil
	}

	ctor := &model.Constructor{}
	for _, field := range st.Fields.List {
		typ := types.ExprString(field.Type)
		quals := qualifiers(field.Type)

		if len(field.Names) == 0 {
			ctor.Params = append(ctor.Params, model.Param{Type: typ, Name: embeddedName(field.Type), Qualifiers: quals})
			continue
		}

		for _, name := range field.Names {
			ctor.Params = append(ctor.Params, model.Param{Type: typ, Name: name.Name, Qualifiers: quals})
		}
	}

	return ctor
}

// checkCollisions rejects targets whose generated functions or type parameter
// names clash with declarations already in scope.
func (x *extractor) checkCollisions(target *model.UnionTarget, opts model.Options) bool {
	funcs := target.GeneratedFuncs()
	if !target.Async {
		funcs = funcs[:2]
	}

	for _, fn := range funcs {
		if x.symbols.HasFunc(fn) {
			x.errorf(diagnostic.CodeMemberCollision, "the package already declares %s, which the generator provides", fn)
			return false
		}
	}

	reserved := map[string]bool{
		model.ResultTypeParam: true,
		model.Receiver:        true,
		valueParam:            true,
		contextParam:          true,
		target.Name:           true,
	}
	if opts.Scaffold.Name != "" {
		reserved[opts.Scaffold.Name] = true
	}
	for _, v := range target.Variants {
		reserved[v.Name] = true
		reserved[v.Handler()] = true
		if p, ok := v.Constructor.Single(); ok && !v.UserWrap {
			reserved[p.ArgName()] = true
		}
	}

	for _, tp := range target.TypeParams {
		if reserved[tp.Name] {
			x.errorf(diagnostic.CodeReservedTypeParam,
				"type parameter %s of %s collides with a name the generated code uses", tp.Name, target.Name)
			return false
		}
	}

	return true
}

// imports keeps the file imports referenced by emitted type expressions. A
// qualifier no import provides is reported, since the generated file could
// not compile.
func (x *extractor) imports() ([]model.Import, bool) {
	var imports []model.Import
	provided := make(map[string]bool, len(x.quals))
	for _, imp := range x.decl.File.Imports {
		if x.quals[imp.Name] && !provided[imp.Name] {
			imports = append(imports, imp)
			provided[imp.Name] = true
		}
	}

	for _, q := range slices.Sorted(maps.Keys(x.quals)) {
		if !provided[q] {
			x.errorf(diagnostic.CodeUnresolvedImport,
				"%s refers to package %s, but no import of %s is known by that name; name the import explicitly",
				x.decl.Name(), q, x.decl.File.Name)
			return nil, false
		}
	}

	return imports, true
}

// qualifiers returns the sorted package names referenced by a type expression.
func qualifiers(expr ast.Expr) []string {
	seen := make(map[string]bool)
	ast.Inspect(expr, func(n ast.Node) bool {
		if sel, ok := n.(*ast.SelectorExpr); ok {
			if id, ok := sel.X.(*ast.Ident); ok {
				seen[id.Name] = true
			}
		}
		return true
	})

	if len(seen) == 0 {
		return nil
	}

	quals := make([]string, 0, len(seen))
	for q := range seen {
		quals = append(quals, q)
	}
	sort.Strings(quals)

	return quals
}

// embeddedName returns the field name Go gives an embedded field.
func embeddedName(expr ast.Expr) string {
	for {
		switch t := expr.(type) {
		case *ast.StarExpr:
			expr = t.X
		case *ast.SelectorExpr:
			return t.Sel.Name
		case *ast.IndexExpr:
			expr = t.X
		case *ast.IndexListExpr:
			expr = t.X
		case *ast.Ident:
			return t.Name
		default:
			return types.ExprString(expr)
		}
	}
}

func hasField(ctor *model.Constructor, name string) bool {
	if ctor == nil {
		return false
	}

	for _, p := range ctor.Params {
		if p.Name == name {
			return true
		}
	}

	return false
}
