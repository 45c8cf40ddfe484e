package gen

import (
	"bytes"
	"go/format"
	"path/filepath"
	"text/template"

	"union-generator/internal/errors"
)

// FormatError reports generated source that gofmt rejected. Source keeps the
// unformatted text so the host can save it for inspection.
type FormatError struct {
	Dir      string
	Filename string
	Source   []byte
	Err      error
}

func (e *FormatError) Error() string {
	return "formatting " + e.Filename + ": " + e.Err.Error()
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// SidecarPath returns where WriteUnformatted saves the source.
func (e *FormatError) SidecarPath() string {
	return filepath.Join(e.Dir, debugFilename(e.Filename))
}

// render executes tmpl and gofmts the result. It has no side effects: a
// formatting failure is returned as a *FormatError.
func render(tmpl *template.Template, data any, dir, filename string) ([]byte, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, errors.Wrapf(err, "executing %s template", tmpl.Name())
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, &FormatError{Dir: dir, Filename: filename, Source: buf.Bytes(), Err: err}
	}

	return formatted, nil
}

func joinPath(dir, filename string) string {
	return filepath.Join(dir, filename)
}
