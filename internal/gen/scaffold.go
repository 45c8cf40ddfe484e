package gen

import (
	"strconv"
	"text/template"

	"union-generator/internal/errors"
	"union-generator/internal/model"
)

// ScaffoldFilename returns the file name of the scaffold unit for arity.
func ScaffoldFilename(arity int) string {
	return "union" + strconv.Itoa(arity) + ".go"
}

type scaffoldData struct {
	Header  string
	Package string
	Arity   int
	// Indexes runs 1..Arity.
	Indexes []int
}

// ComposeScaffold renders the shared dispatch helpers for one arity: MatchN,
// SwitchN and their async counterparts. Each dispatches by type switch over
// V1..VN in order, follows non-nil pointers to a variant, and panics when the
// value matches none of them.
func ComposeScaffold(arity int, pkg model.ScaffoldPackage) (Unit, error) {
	if arity < 1 {
		return Unit{}, errors.AssertionFailedf("scaffold arity must be positive, got %d", arity)
	}
	if pkg.Name == "" {
		return Unit{}, errors.New("scaffold package name is not configured")
	}

	data := scaffoldData{
		Header:  model.GeneratedHeader,
		Package: pkg.Name,
		Arity:   arity,
		Indexes: make([]int, arity),
	}
	for i := range data.Indexes {
		data.Indexes[i] = i + 1
	}

	filename := ScaffoldFilename(arity)

	content, err := render(scaffoldTemplate, data, pkg.Dir, filename)
	if err != nil {
		return Unit{}, errors.Wrapf(err, "composing scaffold for arity %d", arity)
	}

	return newUnit(ScaffoldID(arity), UnitScaffold, pkg.Dir, filename, content), nil
}

var scaffoldTemplate = template.Must(template.New("scaffold").Parse(`{{.Header}}

package {{.Package}}

import (
	"context"
	"fmt"
)
{{$n := .Arity}}
// Match{{$n}} calls the handler for the variant u holds and returns its result.
// It panics if u holds none of V1..V{{$n}}. A pointer to a variant
// dispatches as the variant itself; a nil pointer matches nothing.
func Match{{$n}}[R any, U any{{range .Indexes}}, V{{.}} interface{ Union() U }{{end}}](u U{{range .Indexes}}, on{{.}} func(V{{.}}) R{{end}}) R {
	switch v := any(u).(type) {
{{- range .Indexes}}
	case V{{.}}:
		return on{{.}}(v)
	case *V{{.}}:
		if v != nil {
			return on{{.}}(*v)
		}
{{- end}}
	}

	panic(fmt.Sprintf("unions: unmatched variant %T", u))
}

// Switch{{$n}} calls the handler for the variant u holds.
// It panics if u holds none of V1..V{{$n}}. A pointer to a variant
// dispatches as the variant itself; a nil pointer matches nothing.
func Switch{{$n}}[U any{{range .Indexes}}, V{{.}} interface{ Union() U }{{end}}](u U{{range .Indexes}}, on{{.}} func(V{{.}}){{end}}) {
	switch v := any(u).(type) {
{{- range .Indexes}}
	case V{{.}}:
		on{{.}}(v)
		return
	case *V{{.}}:
		if v != nil {
			on{{.}}(*v)
			return
		}
{{- end}}
	}

	panic(fmt.Sprintf("unions: unmatched variant %T", u))
}

// MatchAsync{{$n}} calls the handler for the variant u holds and returns its
// result and error unchanged. It panics if u holds none of V1..V{{$n}}.
// A pointer to a variant dispatches as the variant itself; a nil pointer
// matches nothing.
func MatchAsync{{$n}}[R any, U any{{range .Indexes}}, V{{.}} interface{ Union() U }{{end}}](ctx context.Context, u U{{range .Indexes}}, on{{.}} func(context.Context, V{{.}}) (R, error){{end}}) (R, error) {
	switch v := any(u).(type) {
{{- range .Indexes}}
	case V{{.}}:
		return on{{.}}(ctx, v)
	case *V{{.}}:
		if v != nil {
			return on{{.}}(ctx, *v)
		}
{{- end}}
	}

	panic(fmt.Sprintf("unions: unmatched variant %T", u))
}

// SwitchAsync{{$n}} calls the handler for the variant u holds and returns its
// error unchanged. It panics if u holds none of V1..V{{$n}}.
// A pointer to a variant dispatches as the variant itself; a nil pointer
// matches nothing.
func SwitchAsync{{$n}}[U any{{range .Indexes}}, V{{.}} interface{ Union() U }{{end}}](ctx context.Context, u U{{range .Indexes}}, on{{.}} func(context.Context, V{{.}}) error{{end}}) error {
	switch v := any(u).(type) {
{{- range .Indexes}}
	case V{{.}}:
		return on{{.}}(ctx, v)
	case *V{{.}}:
		if v != nil {
			return on{{.}}(ctx, *v)
		}
{{- end}}
	}

	panic(fmt.Sprintf("unions: unmatched variant %T", u))
}
`))
