package common

import (
	"path"
	"regexp"
	"strings"
)

var majorVersionSuffix = regexp.MustCompile(`^v[0-9]+$`)

// PkgAlias returns the conventional package name for an import path: its last
// element, skipping a trailing major-version element ("/v2"), trimming a
// gopkg.in version suffix ("yaml.v3") and a "go-" prefix. Returns empty string
// if pkgPath is empty.
func PkgAlias(pkgPath string) string {
	if pkgPath == "" {
		return ""
	}

	base := path.Base(pkgPath)
	if majorVersionSuffix.MatchString(base) {
		if dir := path.Dir(pkgPath); dir != "." {
			base = path.Base(dir)
		}
	}

	if i := strings.LastIndex(base, "."); i > 0 && majorVersionSuffix.MatchString(base[i+1:]) {
		base = base[:i]
	}

	base = strings.TrimPrefix(base, "go-")

	return strings.ReplaceAll(base, "-", "_")
}
