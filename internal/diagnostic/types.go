package diagnostic

import (
	"errors"
	"fmt"
	"go/token"
	"strings"
	"sync"

	"union-generator/internal/common"
)

// Diagnostic codes.
const (
	// CodeNotExtensible marks a declaration that carries the marker but is not
	// a defined, non-constraint interface type.
	CodeNotExtensible = "not-extensible"
	// CodeLocalType marks a target declared inside a function body.
	CodeLocalType = "local-type"
	// CodeNoVariants marks a target whose eligible variant set is empty.
	CodeNoVariants = "no-variants"
	// CodeReservedTypeParam marks a target declaring a reserved type parameter name.
	CodeReservedTypeParam = "reserved-type-param"
	// CodeInconsistentGenerics marks a variant reusing the target's type
	// parameter names with different constraints.
	CodeInconsistentGenerics = "inconsistent-generics"
	// CodeMemberCollision marks a user declaration that clashes with a
	// generated member.
	CodeMemberCollision = "member-collision"
	// CodeDuplicateVariant marks two variants with the same name.
	CodeDuplicateVariant = "duplicate-variant"
	// CodeDuplicateTarget marks a target declared in several files of one
	// package, e.g. under different build constraints.
	CodeDuplicateTarget = "duplicate-target"
	// CodeInvalidOption marks an unparseable option value.
	CodeInvalidOption = "invalid-option"
	// CodeCompose marks a failure rendering a unit.
	CodeCompose = "compose"
	// CodeUnresolvedImport marks a qualifier in an emitted type expression
	// that no import of the declaring file provides.
	CodeUnresolvedImport = "unresolved-import"
	// CodeOutputClash marks targets of one package whose generated files
	// would share a name.
	CodeOutputClash = "output-clash"
)

// Sink receives diagnostics. Implementations must be safe for concurrent use.
type Sink interface {
	Report(d Diagnostic)
}

// Discard is a Sink that drops everything.
var Discard Sink = discard{}

type discard struct{}

func (discard) Report(Diagnostic) {}

// Diagnostics holds all diagnostic information from a pass.
type Diagnostics struct {
	mu       sync.Mutex
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity DiagnosticSeverity
	// Code is a unique identifier for this type of diagnostic.
	Code string
	// Message is the human-readable description.
	Message string
	// Target identifies the union target this relates to (if any).
	Target string
	// Pos is the source position of the offending declaration (if known).
	Pos token.Position
}

// DiagnosticSeverity represents the severity level of a diagnostic.
type DiagnosticSeverity int

const (
	DiagnosticInfo DiagnosticSeverity = iota
	DiagnosticWarning
	DiagnosticError
)

// String returns a human-readable severity name.
func (s DiagnosticSeverity) String() string {
	switch s {
	case DiagnosticInfo:
		return "info"
	case DiagnosticWarning:
		return "warning"
	case DiagnosticError:
		return "error"
	default:
		return common.UnknownStr
	}
}

// Errorf builds an error diagnostic.
func Errorf(code, target string, pos token.Position, format string, args ...any) Diagnostic {
	return Diagnostic{
		Severity: DiagnosticError,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Target:   target,
		Pos:      pos,
	}
}

// Warningf builds a warning diagnostic.
func Warningf(code, target string, pos token.Position, format string, args ...any) Diagnostic {
	return Diagnostic{
		Severity: DiagnosticWarning,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Target:   target,
		Pos:      pos,
	}
}

// Report implements Sink.
func (d *Diagnostics) Report(diag Diagnostic) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch diag.Severity {
	case DiagnosticError:
		d.Errors = append(d.Errors, diag)
	case DiagnosticWarning:
		d.Warnings = append(d.Warnings, diag)
	default:
		d.Infos = append(d.Infos, diag)
	}
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(code, message, target string) {
	d.Report(Diagnostic{Severity: DiagnosticError, Code: code, Message: message, Target: target})
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(code, message, target string) {
	d.Report(Diagnostic{Severity: DiagnosticWarning, Code: code, Message: message, Target: target})
}

// AddInfo adds an info diagnostic.
func (d *Diagnostics) AddInfo(code, message, target string) {
	d.Report(Diagnostic{Severity: DiagnosticInfo, Code: code, Message: message, Target: target})
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.Errors) > 0
}

// ErrorCount returns the number of error diagnostics.
func (d *Diagnostics) ErrorCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.Errors)
}

// Merge merges another Diagnostics instance into this one.
func (d *Diagnostics) Merge(other *Diagnostics) {
	if other == nil || other == d {
		return
	}

	for _, diag := range other.All() {
		d.Report(diag)
	}
}

// All returns every diagnostic, errors first.
func (d *Diagnostics) All() []Diagnostic {
	d.mu.Lock()
	defer d.mu.Unlock()

	all := make([]Diagnostic, 0, len(d.Errors)+len(d.Warnings)+len(d.Infos))
	all = append(all, d.Errors...)
	all = append(all, d.Warnings...)
	all = append(all, d.Infos...)

	return all
}

// Codes returns the codes of all diagnostics, errors first.
func (d *Diagnostics) Codes() []string {
	var codes []string
	for _, diag := range d.All() {
		codes = append(codes, diag.Code)
	}

	return codes
}

// Error returns a combined error from all error diagnostics, or nil if valid.
func (d *Diagnostics) Error() error {
	if !d.HasErrors() {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	var parts []string
	for _, e := range d.Errors {
		parts = append(parts, e.String())
	}

	return errors.New(strings.Join(parts, "; "))
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	var prefix []string
	if d.Pos.IsValid() {
		prefix = append(prefix, d.Pos.String())
	}

	if d.Target != "" {
		prefix = append(prefix, "["+d.Target+"]")
	}

	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if len(prefix) > 0 {
		return strings.Join(prefix, " ") + ": " + msg
	}

	return msg
}
