package diagnostic

import (
	"bytes"
	"go/token"
	"sync"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnostics_ReportBySeverity(t *testing.T) {
	var d Diagnostics

	d.Report(Errorf(CodeNoVariants, "shapes.Shape", token.Position{}, "no eligible variants"))
	d.Report(Warningf(CodeInvalidOption, "shapes.Shape", token.Position{}, "bad value %q", "maybe"))
	d.AddInfo("note", "hello", "")

	assert.Len(t, d.Errors, 1)
	assert.Len(t, d.Warnings, 1)
	assert.Len(t, d.Infos, 1)
	assert.True(t, d.HasErrors())
	assert.Equal(t, []string{CodeNoVariants, CodeInvalidOption, "note"}, d.Codes())
}

func TestDiagnostics_ConcurrentReport(t *testing.T) {
	var d Diagnostics
	var wg sync.WaitGroup

	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.AddWarning(CodeInvalidOption, "x", "t")
		}()
	}
	wg.Wait()

	assert.Len(t, d.Warnings, 50)
}

func TestDiagnostics_ErrorCountWhileReporting(t *testing.T) {
	var d Diagnostics
	var wg sync.WaitGroup

	for range 20 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			d.AddError(CodeCompose, "boom", "t")
		}()
		go func() {
			defer wg.Done()
			_ = d.ErrorCount()
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, d.ErrorCount())
}

func TestDiagnostics_MergeAndError(t *testing.T) {
	var a, b Diagnostics
	b.AddError(CodeLocalType, "declared in a function", "main.Shape")

	a.Merge(&b)
	a.Merge(&a)
	a.Merge(nil)

	require.Error(t, a.Error())
	assert.Contains(t, a.Error().Error(), "[local-type] declared in a function")

	var empty Diagnostics
	assert.NoError(t, empty.Error())
}

func TestDiagnostic_String(t *testing.T) {
	d := Diagnostic{
		Code:    CodeNoVariants,
		Message: "no eligible variants",
		Target:  "shapes.Shape",
		Pos:     token.Position{Filename: "shape.go", Line: 3, Column: 1},
	}
	assert.Equal(t, "shape.go:3:1 [shapes.Shape]: [no-variants] no eligible variants", d.String())

	assert.Equal(t, "plain", Diagnostic{Message: "plain"}.String())
}

func TestDiagnosticSeverity_String(t *testing.T) {
	assert.Equal(t, "info", DiagnosticInfo.String())
	assert.Equal(t, "warning", DiagnosticWarning.String())
	assert.Equal(t, "error", DiagnosticError.String())
	assert.Equal(t, "unknown", DiagnosticSeverity(42).String())
}

func TestPrint(t *testing.T) {
	color.NoColor = true

	var d Diagnostics
	d.AddError(CodeNoVariants, "no eligible variants", "shapes.Shape")

	var buf bytes.Buffer
	Print(&buf, &d)
	assert.Equal(t, "error: [shapes.Shape]: [no-variants] no eligible variants\n", buf.String())
}
