package scan

import (
	"go/ast"
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parseSpecs parses src and returns every type spec with its group, in order.
func parseSpecs(t *testing.T, src string) ([]*ast.TypeSpec, []*ast.GenDecl) {
	t.Helper()

	f, err := parser.ParseFile(token.NewFileSet(), "x.go", src, parser.ParseComments)
	require.NoError(t, err)

	var specs []*ast.TypeSpec
	var groups []*ast.GenDecl
	for _, decl := range f.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}
		for _, s := range gd.Specs {
			specs = append(specs, s.(*ast.TypeSpec))
			groups = append(groups, gd)
		}
	}

	return specs, groups
}

func TestIsCandidate(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []bool
	}{
		{
			name: "marked group targets its first spec",
			src: `package p
//union:target
type (
	Shape interface{ isShape() }
	Circle struct{ R float64 }
)`,
			want: []bool{true, false},
		},
		{
			name: "marker on a spec inside a group",
			src: `package p
type (
	Other struct{}
	//union:target async
	Shape interface{}
	Circle struct{}
)`,
			want: []bool{false, true, false},
		},
		{
			name: "single declaration",
			src: `package p
//union:target
type Shape interface{}`,
			want: []bool{true},
		},
		{
			name: "unmarked interface",
			src: `package p
// Shape is a shape.
type Shape interface{}`,
			want: []bool{false},
		},
		{
			name: "marked struct is not extensible",
			src: `package p
//union:target
type Shape struct{}`,
			want: []bool{false},
		},
		{
			name: "marked alias is not extensible",
			src: `package p
//union:target
type Shape = interface{}`,
			want: []bool{false},
		},
		{
			name: "constraint interface is not a value type",
			src: `package p
//union:target
type Number interface{ ~int | ~float64 }`,
			want: []bool{false},
		},
		{
			name: "marker prefix must be the whole directive",
			src: `package p
//union:targets
type Shape interface{}`,
			want: []bool{false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			specs, groups := parseSpecs(t, tt.src)
			require.Len(t, specs, len(tt.want))

			for i := range specs {
				assert.Equal(t, tt.want[i], IsCandidate(specs[i], groups[i]), "spec %s", specs[i].Name.Name)
			}
		})
	}
}

func TestHasMarker_NotExtensible(t *testing.T) {
	specs, groups := parseSpecs(t, `package p
//union:target
type Shape struct{}`)

	assert.True(t, HasMarker(specs[0], groups[0]))
	assert.False(t, IsCandidate(specs[0], groups[0]))
	assert.False(t, HasMarker(nil, nil))
}

func TestParseDirective(t *testing.T) {
	tests := []struct {
		name    string
		marker  string
		want    Directive
		present bool
	}{
		{name: "no options", marker: "//union:target", want: Directive{}, present: true},
		{name: "async flag", marker: "//union:target async", want: Directive{Async: true, AsyncSet: true}, present: true},
		{name: "async false", marker: "//union:target async=false", want: Directive{AsyncSet: true}, present: true},
		{name: "async true", marker: "//union:target async=1", want: Directive{Async: true, AsyncSet: true}, present: true},
		{
			name:    "unparseable value falls back",
			marker:  "//union:target async=maybe",
			want:    Directive{Invalid: []string{"async=maybe"}},
			present: true,
		},
		{
			name:    "unknown option",
			marker:  "//union:target fast",
			want:    Directive{Invalid: []string{"fast"}},
			present: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			specs, groups := parseSpecs(t, "package p\n"+tt.marker+"\ntype Shape interface{}\n")

			got, ok := ParseDirective(specs[0], groups[0])
			assert.Equal(t, tt.present, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	specs, groups := parseSpecs(t, "package p\ntype Shape interface{}\n")
	_, ok := ParseDirective(specs[0], groups[0])
	assert.False(t, ok)
}
