package model

import (
	"bytes"
	"go/token"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"union-generator/internal/common"
)

// GeneratedHeader opens every file this tool writes.
const GeneratedHeader = "// Code generated by union-generator. DO NOT EDIT."

// Names of generated members shared by every target.
const (
	// WidenMethod converts a variant to its union; scaffold constraints use it.
	WidenMethod = "Union"
	// UnwrapMethod returns the payload of a single-field variant.
	UnwrapMethod = "Payload"
	// ResultTypeParam is the type parameter Match functions return.
	ResultTypeParam = "TOut"
	// Receiver names the receiver of every generated method.
	Receiver = "v"
)

// Visibility is the Go rendition of a declaration's access modifiers.
type Visibility int

const (
	Unexported Visibility = iota
	Exported
)

// String returns "exported" or "unexported".
func (v Visibility) String() string {
	if v == Exported {
		return "exported"
	}

	return "unexported"
}

// VisibilityOf returns the visibility of a Go identifier.
func VisibilityOf(name string) Visibility {
	if token.IsExported(name) {
		return Exported
	}

	return Unexported
}

// TypeParam is one declared type parameter with its constraint kept verbatim.
type TypeParam struct {
	Name       string
	Constraint string
	// Qualifiers lists the package names referenced by Constraint.
	Qualifiers []string
}

// Param is one constructor parameter, taken from a struct field.
type Param struct {
	Type string
	Name string
	// Qualifiers lists the package names referenced by Type.
	Qualifiers []string
}

// ArgName returns the parameter name the generated wrap function uses for p.
func (p Param) ArgName() string {
	return common.SafeIdent(common.LowerFirst(p.Name))
}

// Constructor is the ordered parameter list of a variant.
type Constructor struct {
	Params []Param
}

// Single returns the only parameter and true when the constructor has exactly one.
func (c *Constructor) Single() (Param, bool) {
	if c == nil || len(c.Params) != 1 {
		return Param{}, false
	}

	return c.Params[0], true
}

// Closure is the closed modifier set the composer applies to a variant: the
// seal method tying it to its target and the visibility it is exposed with.
type Closure struct {
	SealMethod string
	Visibility Visibility
}

// Variant is one closed case of a union target.
type Variant struct {
	Name string
	// Owner is the fully-qualified owner name, e.g. "example.com/r.Result[T, E]".
	Owner string
	// Generic is true when the variant is instantiated with the owner's type
	// parameters.
	Generic     bool
	Constructor *Constructor
	Closed      Closure
	// UserWrap and UserUnwrap record conversions the user already declared.
	UserWrap   bool
	UserUnwrap bool
}

// WrapFunc returns the name of the payload-to-variant constructor.
func (v Variant) WrapFunc() string {
	if VisibilityOf(v.Name) == Exported {
		return "New" + v.Name
	}

	return "new" + common.UpperFirst(v.Name)
}

// Handler returns the parameter name dispatch functions use for v's handler.
func (v Variant) Handler() string {
	return "on" + common.UpperFirst(v.Name)
}

// Import is one import of the declaring file.
type Import struct {
	// Name is the package name the file refers to the import by.
	Name string
	Path string
}

// UnionTarget is the structural model of one type requesting union behavior.
type UnionTarget struct {
	// Package is the Go package name (the namespace the target is reopened in).
	Package    string
	PkgPath    string
	Dir        string
	Name       string
	Visibility Visibility
	TypeParams []TypeParam
	Variants   []Variant
	// Async requests the context-aware dispatch counterparts.
	Async   bool
	Imports []Import
	Parent  *Parent
}

// ID returns the stable identity of the target: its package path and name.
func (t *UnionTarget) ID() string {
	return t.PkgPath + "." + t.Name
}

// Arity returns the number of eligible variants.
func (t *UnionTarget) Arity() int {
	return len(t.Variants)
}

// TypeArgs returns the type argument list, e.g. "[T, E]", or "".
func (t *UnionTarget) TypeArgs() string {
	if len(t.TypeParams) == 0 {
		return ""
	}

	names := make([]string, len(t.TypeParams))
	for i, tp := range t.TypeParams {
		names[i] = tp.Name
	}

	return "[" + strings.Join(names, ", ") + "]"
}

// TypeParamList returns the declared parameters with constraints, e.g.
// "T any, E error", without brackets.
func (t *UnionTarget) TypeParamList() string {
	parts := make([]string, len(t.TypeParams))
	for i, tp := range t.TypeParams {
		parts[i] = tp.Name + " " + tp.Constraint
	}

	return strings.Join(parts, ", ")
}

// Ref returns the instantiated target type, e.g. "Result[T, E]".
func (t *UnionTarget) Ref() string {
	return t.Name + t.TypeArgs()
}

// FullName returns the fully-qualified instantiated name.
func (t *UnionTarget) FullName() string {
	return t.PkgPath + "." + t.Ref()
}

// VariantRef returns the instantiated variant type, e.g. "Ok[T, E]".
func (t *UnionTarget) VariantRef(v Variant) string {
	if v.Generic {
		return v.Name + t.TypeArgs()
	}

	return v.Name
}

// SealMethod returns the unexported method closing the variant set.
func (t *UnionTarget) SealMethod() string {
	return "is" + common.UpperFirst(t.Name)
}

// MatchFunc returns the name of the value-returning dispatch function.
func (t *UnionTarget) MatchFunc() string {
	return t.prefixed("match")
}

// SwitchFunc returns the name of the side-effecting dispatch function.
func (t *UnionTarget) SwitchFunc() string {
	return t.prefixed("switch")
}

// GeneratedFuncs lists every package-level function name the composer may emit
// for the target's dispatch.
func (t *UnionTarget) GeneratedFuncs() []string {
	return []string{
		t.MatchFunc(), t.SwitchFunc(),
		t.MatchFunc() + "Async", t.SwitchFunc() + "Async",
	}
}

func (t *UnionTarget) prefixed(verb string) string {
	if t.Visibility == Exported {
		verb = common.UpperFirst(verb)
	}

	return verb + common.UpperFirst(t.Name)
}

// BuildConstraint returns the build constraint of the declaring file, or "".
func (t *UnionTarget) BuildConstraint() string {
	if file := t.Parent.Find(ContainerFile); file != nil {
		return file.Constraints
	}

	return ""
}

// Equal reports whether two targets are structurally identical.
func (t *UnionTarget) Equal(other *UnionTarget) bool {
	if t == nil || other == nil {
		return t == other
	}

	return bytes.Equal(t.canonical(), other.canonical())
}

// Hash returns the xxhash digest of the target's canonical encoding.
func (t *UnionTarget) Hash() uint64 {
	return xxhash.Sum64(t.canonical())
}

// canonical encodes every field in declaration order. Fields are separated by
// NUL and records by 0x1e, neither of which appears in Go identifiers or type
// expressions.
func (t *UnionTarget) canonical() []byte {
	var e encoder

	e.field(t.Package, t.PkgPath, t.Dir, t.Name, t.Visibility.String(), strconv.FormatBool(t.Async))
	e.record()

	for _, tp := range t.TypeParams {
		e.field("tp", tp.Name, tp.Constraint)
		e.field(tp.Qualifiers...)
		e.record()
	}

	for _, v := range t.Variants {
		e.field("v", v.Name, v.Owner, strconv.FormatBool(v.Generic),
			v.Closed.SealMethod, v.Closed.Visibility.String(),
			strconv.FormatBool(v.UserWrap), strconv.FormatBool(v.UserUnwrap))
		if v.Constructor != nil {
			e.field("ctor", strconv.Itoa(len(v.Constructor.Params)))
			for _, p := range v.Constructor.Params {
				e.field(p.Type, p.Name)
				e.field(p.Qualifiers...)
			}
		}
		e.record()
	}

	for _, imp := range t.Imports {
		e.field("imp", imp.Name, imp.Path)
		e.record()
	}

	for _, link := range t.Parent.Links() {
		e.field("parent", link.Kind.String(), link.Name, link.Constraints)
		e.record()
	}

	return e.buf.Bytes()
}

type encoder struct {
	buf bytes.Buffer
}

func (e *encoder) field(values ...string) {
	for _, v := range values {
		e.buf.WriteString(v)
		e.buf.WriteByte(0)
	}
}

func (e *encoder) record() {
	e.buf.WriteByte(0x1e)
}
