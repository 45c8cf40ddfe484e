package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"union-generator/internal/analyze"
	"union-generator/internal/diagnostic"
	"union-generator/internal/model"
)

// extractSrc parses src as the only file of package "demo" and extracts every
// candidate it declares.
func extractSrc(t *testing.T, src string, opts model.Options) ([]*model.UnionTarget, *diagnostic.Diagnostics) {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "demo.go"), []byte(src), 0o644))

	pkg, err := analyze.NewLoader(zaptest.NewLogger(t).Sugar()).ParseDir(analyze.PackageMeta{
		Name:    "demo",
		PkgPath: "example.com/demo",
		Dir:     dir,
	})
	require.NoError(t, err)

	diags := &diagnostic.Diagnostics{}
	var targets []*model.UnionTarget
	for _, decl := range pkg.Declarations(diags) {
		if target := Extract(decl, pkg.Symbols, opts, diags); target != nil {
			targets = append(targets, target)
		}
	}

	return targets, diags
}

func variantNames(target *model.UnionTarget) []string {
	names := make([]string, len(target.Variants))
	for i, v := range target.Variants {
		names[i] = v.Name
	}

	return names
}

func TestExtract_GenericResult(t *testing.T) {
	src := `package demo

import "time"

//union:target
type (
	Result[T any, E error] interface{ isResult() }

	Ok[T any, E error]  struct{ Value T }
	Err[T any, E error] struct{ Error E }
	Timeout             struct{ After time.Duration }
)
`
	targets, diags := extractSrc(t, src, model.DefaultOptions())
	require.Empty(t, diags.All())
	require.Len(t, targets, 1)

	target := targets[0]
	assert.Equal(t, "Result", target.Name)
	assert.Equal(t, "demo", target.Package)
	assert.Equal(t, model.Exported, target.Visibility)
	assert.Equal(t, "T any, E error", target.TypeParamList())
	// Timeout cannot be widened to every Result[T, E].
	assert.Equal(t, []string{"Ok", "Err"}, variantNames(target))
	assert.Equal(t, 2, target.Arity())
	assert.False(t, target.Async)

	ok := target.Variants[0]
	assert.True(t, ok.Generic)
	assert.Equal(t, "example.com/demo.Result[T, E]", ok.Owner)
	assert.Equal(t, model.Closure{SealMethod: "isResult", Visibility: model.Exported}, ok.Closed)
	param, single := ok.Constructor.Single()
	require.True(t, single)
	assert.Equal(t, model.Param{Type: "T", Name: "Value"}, param)

	assert.Equal(t, "Err[T, E]", target.VariantRef(target.Variants[1]))
	assert.Empty(t, target.Imports)
}

func TestExtract_SkipsIneligibleVariantsSilently(t *testing.T) {
	src := `package demo

//union:target
type (
	Event interface{ isEvent() }

	Started  struct{}
	stopped  struct{}
	Alias    = Started
	Named    int
	Nested   interface{ Foo() }
	Boxed[X any] struct{ Value X }
	Finished struct{ Code int }
)
`
	targets, diags := extractSrc(t, src, model.DefaultOptions())
	require.Empty(t, diags.All())
	require.Len(t, targets, 1)

	assert.Equal(t, []string{"Started", "Finished"}, variantNames(targets[0]))
	assert.Nil(t, targets[0].Variants[0].Constructor)
}

func TestExtract_UnexportedTargetAcceptsUnexportedVariants(t *testing.T) {
	src := `package demo

//union:target
type (
	token interface{ isToken() }

	word   struct{ text string }
	Number struct{ Value float64 }
)
`
	targets, diags := extractSrc(t, src, model.DefaultOptions())
	require.Empty(t, diags.All())
	require.Len(t, targets, 1)

	target := targets[0]
	assert.Equal(t, []string{"word", "Number"}, variantNames(target))
	assert.Equal(t, model.Unexported, target.Variants[0].Closed.Visibility)
	assert.Equal(t, model.Exported, target.Variants[1].Closed.Visibility)
	assert.Equal(t, "matchToken", target.MatchFunc())
}

func TestExtract_Diagnostics(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code string
	}{
		{
			name: "no variants",
			src: `package demo

//union:target
type (
	Empty interface{ isEmpty() }

	hidden struct{}
)
`,
			code: diagnostic.CodeNoVariants,
		},
		{
			name: "local type",
			src: `package demo

func build() {
	//union:target
	type (
		Local interface{ isLocal() }
		A     struct{}
	)
}
`,
			code: diagnostic.CodeLocalType,
		},
		{
			name: "reserved type parameter",
			src: `package demo

//union:target
type (
	Box[TOut any] interface{ isBox() }

	Full[TOut any] struct{ Value TOut }
)
`,
			code: diagnostic.CodeReservedTypeParam,
		},
		{
			name: "type parameter shadows a dispatch parameter",
			src: `package demo

//union:target
type (
	Pair[u any] interface{ isPair() }

	Left[u any] struct{ Value u }
)
`,
			code: diagnostic.CodeReservedTypeParam,
		},
		{
			name: "type parameter shadows the receiver",
			src: `package demo

//union:target
type (
	Box[v any] interface{ isBox() }

	Full[v any] struct{ Value v }
)
`,
			code: diagnostic.CodeReservedTypeParam,
		},
		{
			name: "type parameter shadows a wrap parameter",
			src: `package demo

//union:target
type (
	Box[value any] interface{ isBox() }

	Full[value any] struct{ Value value }
)
`,
			code: diagnostic.CodeReservedTypeParam,
		},
		{
			name: "payload qualifier without import",
			src: `package demo

import "example.com/lib/shapes-go"

//union:target
type (
	Figure interface{ isFigure() }

	Dot struct{ At shapes.Point }
)
`,
			code: diagnostic.CodeUnresolvedImport,
		},
		{
			name: "inconsistent generics",
			src: `package demo

//union:target
type (
	Result[T any] interface{ isResult() }

	Ok[T comparable] struct{ Value T }
)
`,
			code: diagnostic.CodeInconsistentGenerics,
		},
		{
			name: "variant declares widening method",
			src: `package demo

//union:target
type (
	Shape interface{ isShape() }

	Circle struct{}
)

func (Circle) Union() Shape { return Circle{} }
`,
			code: diagnostic.CodeMemberCollision,
		},
		{
			name: "variant declares seal method",
			src: `package demo

//union:target
type (
	Shape interface{ isShape() }

	Circle struct{}
)

func (*Circle) isShape() {}
`,
			code: diagnostic.CodeMemberCollision,
		},
		{
			name: "variant field named Union",
			src: `package demo

//union:target
type (
	Shape interface{ isShape() }

	Circle struct{ Union int }
)
`,
			code: diagnostic.CodeMemberCollision,
		},
		{
			name: "package declares match function",
			src: `package demo

//union:target
type (
	Shape interface{ isShape() }

	Circle struct{}
)

func MatchShape() {}
`,
			code: diagnostic.CodeMemberCollision,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			targets, diags := extractSrc(t, tt.src, model.DefaultOptions())
			assert.Empty(t, targets)
			assert.True(t, diags.HasErrors())
			assert.Equal(t, []string{tt.code}, diags.Codes())
		})
	}
}

func TestExtract_AsyncFunctionsOnlyCollideWhenAsync(t *testing.T) {
	src := `package demo

//union:target
type (
	Shape interface{ isShape() }

	Circle struct{}
)

func MatchShapeAsync() {}
`
	targets, diags := extractSrc(t, src, model.DefaultOptions())
	require.Empty(t, diags.All())
	require.Len(t, targets, 1)

	opts := model.DefaultOptions()
	opts.Async = true
	targets, diags = extractSrc(t, src, opts)
	assert.Empty(t, targets)
	assert.Equal(t, []string{diagnostic.CodeMemberCollision}, diags.Codes())
}

func TestExtract_AsyncResolution(t *testing.T) {
	tests := []struct {
		name      string
		marker    string
		global    bool
		wantAsync bool
		wantCodes []string
	}{
		{name: "default", marker: "//union:target", wantAsync: false},
		{name: "global", marker: "//union:target", global: true, wantAsync: true},
		{name: "marker", marker: "//union:target async", wantAsync: true},
		{name: "marker opts out", marker: "//union:target async=false", global: true, wantAsync: false},
		{
			name:      "invalid value falls back",
			marker:    "//union:target async=maybe",
			wantAsync: false,
			wantCodes: []string{diagnostic.CodeInvalidOption},
		},
		{
			name:      "misspelled option ignored",
			marker:    "//union:target asnyc",
			global:    true,
			wantAsync: true,
			wantCodes: []string{diagnostic.CodeInvalidOption},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "package demo\n\n" + tt.marker + `
type (
	Shape interface{ isShape() }

	Circle struct{}
)
`
			opts := model.DefaultOptions()
			opts.Async = tt.global

			targets, diags := extractSrc(t, src, opts)
			require.Len(t, targets, 1)
			assert.Equal(t, tt.wantAsync, targets[0].Async)
			assert.False(t, diags.HasErrors())
			assert.Equal(t, tt.wantCodes, diags.Codes())
		})
	}
}

func TestExtract_UserDeclaredConversions(t *testing.T) {
	src := `package demo

//union:target
type (
	Value interface{ isValue() }

	Text    struct{ S string }
	Number  struct{ N float64 }
	Wrapped struct{ Payload []byte }
)

func NewText(s string) Text { return Text{S: s} }

func (n Number) Payload() float64 { return n.N }
`
	targets, diags := extractSrc(t, src, model.DefaultOptions())
	require.Empty(t, diags.All())
	require.Len(t, targets, 1)

	variants := targets[0].Variants
	assert.True(t, variants[0].UserWrap)
	assert.False(t, variants[0].UserUnwrap)

	assert.False(t, variants[1].UserWrap)
	assert.True(t, variants[1].UserUnwrap)

	assert.False(t, variants[2].UserWrap)
	assert.True(t, variants[2].UserUnwrap)
}

func TestExtract_ImportsFollowQualifiers(t *testing.T) {
	src := `package demo

import (
	"io"
	"net/http"
	"time"

	sq "strings"
)

var _ = sq.ToUpper

//union:target
type (
	Response[R io.Reader] interface{ isResponse() }

	Body[R io.Reader]   struct{ Reader R }
	Status[R io.Reader] struct{ Header http.Header }
	Timing[R io.Reader] struct {
		Start time.Time
		End   time.Time
	}
)
`
	targets, diags := extractSrc(t, src, model.DefaultOptions())
	require.Empty(t, diags.All())
	require.Len(t, targets, 1)

	target := targets[0]
	assert.Equal(t, []string{"io"}, target.TypeParams[0].Qualifiers)
	// Multi-field payloads are never spelled out, so time is not needed.
	assert.Equal(t, []model.Import{
		{Name: "io", Path: "io"},
		{Name: "http", Path: "net/http"},
	}, target.Imports)
}

func TestExtract_VersionedImportPath(t *testing.T) {
	src := `package demo

import "gopkg.in/yaml.v3"

//union:target
type (
	Doc interface{ isDoc() }

	Node struct{ N yaml.Node }
	Raw  struct{ Bytes []byte }
)
`
	targets, diags := extractSrc(t, src, model.DefaultOptions())
	require.Empty(t, diags.All())
	require.Len(t, targets, 1)

	assert.Equal(t, []model.Import{{Name: "yaml", Path: "gopkg.in/yaml.v3"}}, targets[0].Imports)
}

func TestExtract_UserConversionsNeedNoImport(t *testing.T) {
	src := `package demo

//union:target
type (
	Doc interface{ isDoc() }

	Node struct{ N yaml.Node }
)

func NewNode(n yaml.Node) Node { return Node{N: n} }

func (n Node) Payload() yaml.Node { return n.N }
`
	targets, diags := extractSrc(t, src, model.DefaultOptions())
	require.Empty(t, diags.All())
	require.Len(t, targets, 1)
	assert.Empty(t, targets[0].Imports)
}

func TestExtract_EmbeddedFieldNames(t *testing.T) {
	src := `package demo

import "bytes"

//union:target
type (
	Sink interface{ isSink() }

	Buffered struct{ *bytes.Buffer }
)
`
	targets, diags := extractSrc(t, src, model.DefaultOptions())
	require.Empty(t, diags.All())
	require.Len(t, targets, 1)

	param, ok := targets[0].Variants[0].Constructor.Single()
	require.True(t, ok)
	assert.Equal(t, "Buffer", param.Name)
	assert.Equal(t, "*bytes.Buffer", param.Type)
	assert.Equal(t, []string{"bytes"}, param.Qualifiers)
}

func TestExtract_BuildConstraintCarried(t *testing.T) {
	src := `//go:build linux || darwin

package demo

//union:target
type (
	Signal interface{ isSignal() }

	Hangup struct{}
)
`
	targets, diags := extractSrc(t, src, model.DefaultOptions())
	require.Empty(t, diags.All())
	require.Len(t, targets, 1)

	assert.Equal(t, "linux || darwin", targets[0].BuildConstraint())
}

func TestExtract_Deterministic(t *testing.T) {
	src := `package demo

//union:target
type (
	Shape interface{ isShape() }

	Circle struct{ Radius float64 }
	Square struct{ Side float64 }
)
`
	first, _ := extractSrc(t, src, model.DefaultOptions())
	second, _ := extractSrc(t, src, model.DefaultOptions())
	require.Len(t, first, 1)
	require.Len(t, second, 1)

	// Different temp dirs make Dir differ; everything else must match.
	second[0].Dir = first[0].Dir
	assert.True(t, first[0].Equal(second[0]))
	assert.Equal(t, first[0].Hash(), second[0].Hash())
}

func TestInvalidOptionMessage(t *testing.T) {
	assert.Equal(t, `ignoring unparseable marker option "async=maybe"`, invalidOptionMessage("async=maybe"))
	assert.Equal(t, `ignoring unknown marker option "asnyc", did you mean "async"?`, invalidOptionMessage("asnyc=true"))
	assert.Equal(t, `ignoring unknown marker option "exhaustive"`, invalidOptionMessage("exhaustive"))
}
