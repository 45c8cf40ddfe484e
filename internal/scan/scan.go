// Package scan decides, from syntax alone, whether a type declaration is
// worth handing to the extractor.
package scan

import (
	"go/ast"
	"go/token"
	"strconv"
	"strings"
)

// Marker is the directive that turns an interface type into a union target.
const Marker = "//union:target"

// OptionAsync requests the context-aware dispatch counterparts.
const OptionAsync = "async"

// Directive holds the options parsed from a marker comment.
type Directive struct {
	Async bool
	// AsyncSet is true when the marker mentioned the async option at all.
	AsyncSet bool
	// Invalid lists options that could not be parsed; they fall back to
	// their defaults.
	Invalid []string
}

// marker returns the marker comment that applies to spec. A marker on a
// declaration group applies to the group's first spec.
func marker(spec *ast.TypeSpec, group *ast.GenDecl) *ast.Comment {
	if spec == nil {
		return nil
	}

	if c := findMarker(spec.Doc); c != nil {
		return c
	}

	if group != nil && len(group.Specs) > 0 && group.Specs[0] == spec {
		return findMarker(group.Doc)
	}

	return nil
}

func findMarker(doc *ast.CommentGroup) *ast.Comment {
	if doc == nil {
		return nil
	}

	for _, c := range doc.List {
		if c.Text == Marker || strings.HasPrefix(c.Text, Marker+" ") || strings.HasPrefix(c.Text, Marker+"\t") {
			return c
		}
	}

	return nil
}

// HasMarker reports whether spec carries the union marker, extensible or not.
func HasMarker(spec *ast.TypeSpec, group *ast.GenDecl) bool {
	return marker(spec, group) != nil
}

// IsCandidate reports whether spec carries the union marker and is open for
// augmentation: a defined (non-alias) interface type that can be used as a
// value, i.e. not a constraint-only type-set interface. It never fails.
func IsCandidate(spec *ast.TypeSpec, group *ast.GenDecl) bool {
	if !HasMarker(spec, group) || spec.Assign.IsValid() {
		return false
	}

	iface, ok := spec.Type.(*ast.InterfaceType)
	if !ok {
		return false
	}

	return !IsConstraintInterface(iface)
}

// IsConstraintInterface reports whether iface embeds a union or an
// approximation term, which makes it usable only as a type constraint.
func IsConstraintInterface(iface *ast.InterfaceType) bool {
	if iface.Methods == nil {
		return false
	}

	for _, field := range iface.Methods.List {
		if len(field.Names) > 0 {
			continue
		}

		switch t := field.Type.(type) {
		case *ast.BinaryExpr:
			if t.Op == token.OR {
				return true
			}
		case *ast.UnaryExpr:
			if t.Op == token.TILDE {
				return true
			}
		}
	}

	return false
}

// ParseDirective parses the options of the marker that applies to spec.
// The second result is false when spec carries no marker.
//
// Options are space separated: "async" alone enables async dispatch,
// "async=<bool>" sets it explicitly. Unknown options and unparseable values
// are collected in Invalid and leave the defaults in place.
func ParseDirective(spec *ast.TypeSpec, group *ast.GenDecl) (Directive, bool) {
	c := marker(spec, group)
	if c == nil {
		return Directive{}, false
	}

	var d Directive
	for _, opt := range strings.Fields(strings.TrimPrefix(c.Text, Marker)) {
		key, value, hasValue := strings.Cut(opt, "=")
		if key != OptionAsync {
			d.Invalid = append(d.Invalid, opt)
			continue
		}

		if !hasValue {
			d.Async, d.AsyncSet = true, true
			continue
		}

		b, err := strconv.ParseBool(value)
		if err != nil {
			d.Invalid = append(d.Invalid, opt)
			continue
		}
		d.Async, d.AsyncSet = b, true
	}

	return d, true
}
