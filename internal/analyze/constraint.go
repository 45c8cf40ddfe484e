package analyze

import (
	"go/ast"
	"go/build/constraint"
	"strings"
)

// Known GOOS and GOARCH values, as recognized in file name suffixes.
var (
	knownOS = map[string]bool{
		"aix": true, "android": true, "darwin": true, "dragonfly": true, "freebsd": true,
		"hurd": true, "illumos": true, "ios": true, "js": true, "linux": true, "nacl": true,
		"netbsd": true, "openbsd": true, "plan9": true, "solaris": true, "wasip1": true,
		"windows": true, "zos": true,
	}
	knownArch = map[string]bool{
		"386": true, "amd64": true, "amd64p32": true, "arm": true, "armbe": true, "arm64": true,
		"arm64be": true, "loong64": true, "mips": true, "mipsle": true, "mips64": true,
		"mips64le": true, "mips64p32": true, "mips64p32le": true, "ppc": true, "ppc64": true,
		"ppc64le": true, "riscv": true, "riscv64": true, "s390": true, "s390x": true,
		"sparc": true, "sparc64": true, "wasm": true,
	}
)

// fileConstraint returns the effective build constraint of a file: its
// //go:build expression, verbatim, and-ed with the terms implied by a
// GOOS/GOARCH file name suffix. Generated files live under a different name,
// so the suffix terms have to be spelled out.
func fileConstraint(name string, f *ast.File) string {
	var exprs []string

	if line := goBuildLine(f); line != "" {
		exprs = append(exprs, line)
	}

	if suffix := suffixConstraint(name); suffix != "" {
		exprs = append(exprs, suffix)
	}

	switch len(exprs) {
	case 0:
		return ""
	case 1:
		return exprs[0]
	default:
		return "(" + exprs[0] + ") && " + exprs[1]
	}
}

// goBuildLine returns the expression of the first //go:build line above the
// package clause.
func goBuildLine(f *ast.File) string {
	for _, group := range f.Comments {
		if group.Pos() >= f.Package {
			break
		}
		for _, c := range group.List {
			if constraint.IsGoBuild(c.Text) {
				if _, err := constraint.Parse(c.Text); err != nil {
					continue
				}
				return strings.TrimSpace(strings.TrimPrefix(c.Text, "//go:build"))
			}
		}
	}

	return ""
}

// suffixConstraint mirrors the go command's *_GOOS, *_GOARCH and
// *_GOOS_GOARCH file name rules.
func suffixConstraint(name string) string {
	name = strings.TrimSuffix(name, ".go")
	name = strings.TrimSuffix(name, "_test")

	i := strings.Index(name, "_")
	if i < 0 {
		return ""
	}

	parts := strings.Split(name[i:], "_")
	n := len(parts)

	if n >= 2 && knownOS[parts[n-2]] && knownArch[parts[n-1]] {
		return parts[n-2] + " && " + parts[n-1]
	}
	if n >= 1 && knownOS[parts[n-1]] {
		return parts[n-1]
	}
	if n >= 1 && knownArch[parts[n-1]] {
		return parts[n-1]
	}

	return ""
}
