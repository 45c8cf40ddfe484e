package diagnostic

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
)

// Print writes every diagnostic to w, one per line, with a colored severity.
func Print(w io.Writer, d *Diagnostics) {
	for _, diag := range d.All() {
		label := infoColor
		switch diag.Severity {
		case DiagnosticError:
			label = errorColor
		case DiagnosticWarning:
			label = warningColor
		}

		fmt.Fprintf(w, "%s: %s\n", label.Sprint(diag.Severity), diag)
	}
}
