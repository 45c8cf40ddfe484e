package gen

import (
	"slices"
	"strings"
	"text/template"

	"union-generator/internal/common"
	"union-generator/internal/errors"
	"union-generator/internal/model"
)

// TargetFilename returns the file name of the augmentation unit of target.
func TargetFilename(target *model.UnionTarget) string {
	return strings.ToLower(target.Name) + "_union.go"
}

type importLine struct {
	Alias string
	Path  string
}

type conversion struct {
	Func  string
	Param string
	Type  string
	Field string
}

type variantData struct {
	Name    string
	Ref     string
	Seal    string
	Handler string
	Wrap    *conversion
	Unwrap  *conversion
}

type targetData struct {
	Header     string
	Receiver   string
	Constraint string
	Package    string
	Imports    []importLine
	// Scaffold qualifies scaffold helpers, e.g. "unions.", or is empty when
	// the target lives in the scaffold package itself.
	Scaffold string
	Async    bool

	Name string
	Ref  string
	// TypeParams is the bracketed declaration, e.g. "[T any, E error]".
	TypeParams string
	// ResultParams prepends the result parameter, e.g. "[TOut any, T any, E error]".
	ResultParams string
	MatchFunc    string
	SwitchFunc   string
	Arity        int
	// VariantRefs is the comma-separated instantiated variant list.
	VariantRefs string
	Handlers    string
	Variants    []variantData
}

// ComposeTarget renders the augmentation of one target: per-variant sealing,
// widening and conversions, and the Match/Switch functions delegating to the
// scaffold helpers of the target's arity. The declaring file's build
// constraint is carried over.
func ComposeTarget(target *model.UnionTarget, opts model.Options) (Unit, error) {
	if target == nil || target.Arity() == 0 {
		return Unit{}, errors.AssertionFailedf("composing a target without variants")
	}

	data, err := buildTargetData(target, opts)
	if err != nil {
		return Unit{}, errors.Wrapf(err, "composing %s", target.ID())
	}

	filename := TargetFilename(target)

	content, err := render(targetTemplate, data, target.Dir, filename)
	if err != nil {
		return Unit{}, errors.Wrapf(err, "composing %s", target.ID())
	}

	return newUnit(TargetID(target), UnitTarget, target.Dir, filename, content), nil
}

func buildTargetData(target *model.UnionTarget, opts model.Options) (*targetData, error) {
	data := &targetData{
		Header:     model.GeneratedHeader,
		Receiver:   model.Receiver,
		Constraint: target.BuildConstraint(),
		Package:    target.Package,
		Async:      target.Async,
		Name:       target.Name,
		Ref:        target.Ref(),
		MatchFunc:  target.MatchFunc(),
		SwitchFunc: target.SwitchFunc(),
		Arity:      target.Arity(),
	}

	resultParams := []string{model.ResultTypeParam + " any"}
	if len(target.TypeParams) > 0 {
		data.TypeParams = "[" + target.TypeParamList() + "]"
		resultParams = append(resultParams, target.TypeParamList())
	}
	data.ResultParams = "[" + strings.Join(resultParams, ", ") + "]"

	if err := data.resolveImports(target, opts.Scaffold); err != nil {
		return nil, err
	}

	refs := make([]string, 0, target.Arity())
	handlers := make([]string, 0, target.Arity())
	for _, v := range target.Variants {
		vd := variantData{
			Name:    v.Name,
			Ref:     target.VariantRef(v),
			Seal:    v.Closed.SealMethod,
			Handler: v.Handler(),
		}

		if p, ok := v.Constructor.Single(); ok {
			if !v.UserWrap {
				vd.Wrap = &conversion{
					Func:  v.WrapFunc(),
					Param: p.ArgName(),
					Type:  p.Type,
					Field: p.Name,
				}
			}
			if !v.UserUnwrap {
				vd.Unwrap = &conversion{
					Func:  model.UnwrapMethod,
					Type:  p.Type,
					Field: p.Name,
				}
			}
		}

		refs = append(refs, vd.Ref)
		handlers = append(handlers, vd.Handler)
		data.Variants = append(data.Variants, vd)
	}
	data.VariantRefs = strings.Join(refs, ", ")
	data.Handlers = strings.Join(handlers, ", ")

	return data, nil
}

// resolveImports keeps the declaring file's imports the target references and
// adds the scaffold package, aliased when its name is taken.
func (d *targetData) resolveImports(target *model.UnionTarget, scaffold model.ScaffoldPackage) error {
	if scaffold.ImportPath == "" {
		return errors.WithHint(errors.New("scaffold import path is not configured"),
			"set scaffold.import_path in union-generator.yaml or run inside a module")
	}

	taken := make(map[string]bool, len(target.Imports))
	for _, imp := range target.Imports {
		taken[imp.Name] = true

		line := importLine{Path: imp.Path}
		if imp.Name != common.PkgAlias(imp.Path) {
			line.Alias = imp.Name
		}
		d.Imports = append(d.Imports, line)
	}

	if target.PkgPath != scaffold.ImportPath {
		name := scaffold.Name
		line := importLine{Path: scaffold.ImportPath}
		if taken[name] {
			name += "gen"
			line.Alias = name
		} else if name != common.PkgAlias(scaffold.ImportPath) {
			line.Alias = name
		}
		d.Scaffold = name + "."
		d.Imports = append(d.Imports, line)
	}

	if target.Async {
		d.Imports = append(d.Imports, importLine{Path: "context"})
	}

	slices.SortFunc(d.Imports, func(a, b importLine) int {
		return strings.Compare(a.Path, b.Path)
	})

	return nil
}

var targetTemplate = template.Must(template.New("target").Parse(`{{.Header}}

{{if .Constraint}}//go:build {{.Constraint}}

{{end}}package {{.Package}}
{{if .Imports}}
import (
{{range .Imports}}	{{if .Alias}}{{.Alias}} {{end}}"{{.Path}}"
{{end}})
{{end}}
{{- range .Variants}}{{$v := .}}
func ({{.Ref}}) {{.Seal}}() {}

// Union returns {{$.Receiver}} as a {{$.Name}}.
func ({{$.Receiver}} {{.Ref}}) Union() {{$.Ref}} {
	return {{$.Receiver}}
}
{{with .Wrap}}
// {{.Func}} returns a {{$.Name}} variant holding {{.Param}}.
func {{.Func}}{{$.TypeParams}}({{.Param}} {{.Type}}) {{$v.Ref}} {
	return {{$v.Ref}}{ {{- .Field}}: {{.Param -}} }
}
{{end}}
{{- with .Unwrap}}
// Payload returns the value held by {{$.Receiver}}.
func ({{$.Receiver}} {{$v.Ref}}) Payload() {{.Type}} {
	return {{$.Receiver}}.{{.Field}}
}
{{end}}
{{- end}}
// {{.MatchFunc}} calls the handler for the variant u holds and returns its result.
// It panics if u is nil.
func {{.MatchFunc}}{{.ResultParams}}(u {{.Ref}}{{range .Variants}}, {{.Handler}} func({{.Ref}}) TOut{{end}}) TOut {
	return {{.Scaffold}}Match{{.Arity}}[TOut, {{.Ref}}, {{.VariantRefs}}](u, {{.Handlers}})
}

// {{.SwitchFunc}} calls the handler for the variant u holds.
// It panics if u is nil.
func {{.SwitchFunc}}{{.TypeParams}}(u {{.Ref}}{{range .Variants}}, {{.Handler}} func({{.Ref}}){{end}}) {
	{{.Scaffold}}Switch{{.Arity}}[{{.Ref}}, {{.VariantRefs}}](u, {{.Handlers}})
}
{{- if .Async}}

// {{.MatchFunc}}Async calls the handler for the variant u holds and returns its
// result and error unchanged. It panics if u is nil.
func {{.MatchFunc}}Async{{.ResultParams}}(ctx context.Context, u {{.Ref}}{{range .Variants}}, {{.Handler}} func(context.Context, {{.Ref}}) (TOut, error){{end}}) (TOut, error) {
	return {{.Scaffold}}MatchAsync{{.Arity}}[TOut, {{.Ref}}, {{.VariantRefs}}](ctx, u, {{.Handlers}})
}

// {{.SwitchFunc}}Async calls the handler for the variant u holds and returns its
// error unchanged. It panics if u is nil.
func {{.SwitchFunc}}Async{{.TypeParams}}(ctx context.Context, u {{.Ref}}{{range .Variants}}, {{.Handler}} func(context.Context, {{.Ref}}) error{{end}}) error {
	return {{.Scaffold}}SwitchAsync{{.Arity}}[{{.Ref}}, {{.VariantRefs}}](ctx, u, {{.Handlers}})
}
{{- end}}
`))
