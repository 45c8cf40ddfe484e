package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"union-generator/internal/errors"
	"union-generator/internal/gen"
	"union-generator/internal/model"
)

const shapeSource = `package shape

//union:target
type (
	Shape interface{ isShape() }

	Circle struct{ Radius float64 }
	Square struct{ Side float64 }
)
`

// tempModule creates a module with one target package and makes it the
// working directory.
func tempModule(t *testing.T) string {
	t.Helper()

	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/tmp\n\ngo 1.24\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "shape"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "shape", "shape.go"), []byte(shapeSource), 0o644))

	t.Chdir(root)

	return root
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := &cobra.Command{Use: "union-generator", SilenceUsage: true, SilenceErrors: true}
	RegisterFlags(root)
	root.AddCommand(GenerateCmd, CheckCmd, InspectCmd)

	// The subcommands are package globals; cobra keeps a context once set,
	// so clear it to inherit this test's context instead of a prior one.
	for _, sub := range root.Commands() {
		sub.SetContext(nil) //nolint:staticcheck // nil makes cobra inherit the root context
	}

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.ExecuteContext(t.Context())

	return out.String(), err
}

func TestGenerateThenCheck(t *testing.T) {
	root := tempModule(t)

	out, err := execute(t, "generate", "./...")
	require.NoError(t, err, out)

	target := filepath.Join(root, "shape", "shape_union.go")
	scaffold := filepath.Join(root, "internal", "unions", "union2.go")
	assert.Contains(t, out, "✓ Generated "+target)
	assert.Contains(t, out, "✓ Generated "+scaffold)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), model.GeneratedHeader))
	assert.Contains(t, string(content), `"example.com/tmp/internal/unions"`)

	out, err = execute(t, "check", "./...")
	require.NoError(t, err, out)
	assert.Contains(t, out, "up to date")

	require.NoError(t, os.WriteFile(target, append(content, []byte("// edited\n")...), 0o644))
	out, err = execute(t, "check", "./...")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrOutOfDate))
	assert.Contains(t, out, "Out of date: "+target)
}

func TestGeneratePrunesRemovedTargets(t *testing.T) {
	root := tempModule(t)

	_, err := execute(t, "generate", "./...")
	require.NoError(t, err)

	source := filepath.Join(root, "shape", "shape.go")
	require.NoError(t, os.WriteFile(source, []byte(strings.Replace(shapeSource, "//union:target\n", "", 1)), 0o644))

	out, err := execute(t, "generate", "./...")
	require.NoError(t, err, out)

	assert.NoFileExists(t, filepath.Join(root, "shape", "shape_union.go"))
	assert.NoFileExists(t, filepath.Join(root, "internal", "unions", "union2.go"))
	assert.Contains(t, out, "✗ Removed")
}

func TestGenerateKeepsHandWrittenFile(t *testing.T) {
	root := tempModule(t)

	handWritten := []byte("package shape\n\nfunc Hand() {}\n")
	path := filepath.Join(root, "shape", "shape_union.go")
	require.NoError(t, os.WriteFile(path, handWritten, 0o644))

	out, err := execute(t, "generate", "./...")
	require.Error(t, err, out)
	assert.ErrorIs(t, err, gen.ErrNotGenerated)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, handWritten, got)
}

func TestGenerateReportsDroppedTargets(t *testing.T) {
	root := tempModule(t)

	broken := `package broken

//union:target
type (
	Empty interface{ isEmpty() }
)
`
	require.NoError(t, os.MkdirAll(filepath.Join(root, "broken"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "broken", "broken.go"), []byte(broken), 0o644))

	out, err := execute(t, "generate", "./...")
	require.Error(t, err)
	assert.Contains(t, out, "[no-variants]")
	// The valid target is still generated.
	assert.FileExists(t, filepath.Join(root, "shape", "shape_union.go"))
}

func TestInspect(t *testing.T) {
	tempModule(t)

	out, err := execute(t, "inspect", "./...")
	require.NoError(t, err, out)

	assert.Contains(t, out, "example.com/tmp/shape.Shape:")
	assert.Contains(t, out, "arities: [2]")
	assert.Contains(t, out, `Name: (string) (len=6) "Circle"`)
}
