package gen

import (
	"bufio"
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"union-generator/internal/errors"
	"union-generator/internal/model"
)

// File permission constants.
const (
	dirPerm  = 0o755
	filePerm = 0o644
)

var scaffoldName = regexp.MustCompile(`^union[0-9]+\.go$`)

// ErrNotGenerated is returned when a unit would overwrite a file this tool
// did not generate.
var ErrNotGenerated = errors.New("file was not generated by union-generator")

// WriteUnits publishes units to disk, creating directories as needed. Files
// whose content is already up to date are left untouched, and existing files
// without the generated header are never overwritten. It returns the paths it
// wrote.
func WriteUnits(units []Unit) ([]string, error) {
	var written []string

	for _, u := range units {
		path := u.Path()

		current, err := os.ReadFile(path)
		switch {
		case err == nil && bytes.Equal(current, u.Content):
			continue
		case err == nil && !hasHeader(current):
			return written, errors.WithHint(errors.Wrapf(ErrNotGenerated, "refusing to overwrite %s", path),
				"rename the file or the union target so the generated file gets another name")
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return written, errors.Wrapf(err, "reading %s", path)
		}

		if err := os.MkdirAll(u.Dir, dirPerm); err != nil {
			return written, errors.Wrapf(err, "creating directory %s", u.Dir)
		}

		if err := os.WriteFile(path, u.Content, filePerm); err != nil {
			return written, errors.Wrapf(err, "writing %s", path)
		}

		written = append(written, path)
	}

	return written, nil
}

// RemoveFile deletes a file this tool generated. Missing files and files
// without the generated header are left alone.
func RemoveFile(path string) (bool, error) {
	ours, err := IsGeneratedFile(path)
	if err != nil || !ours {
		return false, err
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, errors.Wrapf(err, "removing %s", path)
	}

	return true, nil
}

// StaleFiles returns the generated files in dirs that no unit accounts for.
// Only files named like our output and starting with our header count.
func StaleFiles(dirs []string, units []Unit) ([]string, error) {
	keep := make(map[string]bool, len(units))
	for _, u := range units {
		keep[filepath.Clean(u.Path())] = true
	}

	var stale []string
	for _, dir := range dedupDirs(dirs) {
		entries, err := os.ReadDir(dir)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", dir)
		}

		for _, e := range entries {
			if e.IsDir() || !IsOutputName(e.Name()) {
				continue
			}

			path := filepath.Join(dir, e.Name())
			if keep[path] {
				continue
			}

			ours, err := IsGeneratedFile(path)
			if err != nil {
				return nil, err
			}
			if ours {
				stale = append(stale, path)
			}
		}
	}

	return stale, nil
}

// PruneStale removes the files StaleFiles reports and returns their paths.
func PruneStale(dirs []string, units []Unit) ([]string, error) {
	stale, err := StaleFiles(dirs, units)
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, path := range stale {
		ok, err := RemoveFile(path)
		if err != nil {
			return removed, err
		}
		if ok {
			removed = append(removed, path)
		}
	}

	return removed, nil
}

// OutOfDate returns the paths of units whose file is missing or differs from
// the unit content.
func OutOfDate(units []Unit) ([]string, error) {
	var stale []string

	for _, u := range units {
		current, err := os.ReadFile(u.Path())
		if errors.Is(err, fs.ErrNotExist) {
			stale = append(stale, u.Path())
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", u.Path())
		}

		if !bytes.Equal(current, u.Content) {
			stale = append(stale, u.Path())
		}
	}

	return stale, nil
}

// IsOutputName reports whether a file name follows the naming of scaffold or
// augmentation units.
func IsOutputName(name string) bool {
	return strings.HasSuffix(name, "_union.go") || scaffoldName.MatchString(name)
}

// IsGeneratedFile reports whether the first line of path is our header.
func IsGeneratedFile(path string) (bool, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && line == "" {
		return false, nil
	}

	return hasHeader([]byte(line)), nil
}

// hasHeader reports whether content starts with our header line.
func hasHeader(content []byte) bool {
	line, _, _ := bytes.Cut(content, []byte("\n"))

	return string(bytes.TrimRight(line, "\r")) == model.GeneratedHeader
}

func dedupDirs(dirs []string) []string {
	out := make([]string, 0, len(dirs))
	for _, d := range dirs {
		out = append(out, filepath.Clean(d))
	}
	slices.Sort(out)

	return slices.Compact(out)
}
