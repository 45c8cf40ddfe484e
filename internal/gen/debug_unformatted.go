package gen

import (
	"os"

	"union-generator/internal/errors"
)

// WriteUnformatted saves the source of a formatting failure next to the
// intended output and returns the path it wrote.
func WriteUnformatted(e *FormatError) (string, error) {
	if e == nil || e.Dir == "" || e.Filename == "" {
		return "", nil
	}

	if err := os.MkdirAll(e.Dir, dirPerm); err != nil {
		return "", errors.Wrapf(err, "creating directory %s", e.Dir)
	}

	path := e.SidecarPath()
	if err := os.WriteFile(path, e.Source, filePerm); err != nil {
		return "", errors.Wrapf(err, "writing %s", path)
	}

	return path, nil
}

// debugFilename keeps the sidecar out of the package: it is not a .go file.
func debugFilename(filename string) string {
	return filename + ".unformatted"
}
