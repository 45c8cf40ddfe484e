package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"union-generator/internal/analyze"
	"union-generator/internal/diagnostic"
	"union-generator/internal/model"
)

var testModule = &analyze.Module{Path: "example.com/app", Dir: "/src/app"}

func TestParse(t *testing.T) {
	f, err := Parse([]byte(`
async: true
jobs: 3
scaffold:
  package: sums
  import_path: example.com/app/pkg/sums
  dir: pkg/sums
`))
	require.NoError(t, err)

	assert.True(t, f.Async.Set)
	assert.True(t, f.Async.Value)
	assert.False(t, f.Async.Invalid)
	assert.Equal(t, 3, f.Jobs.Value)
	assert.Equal(t, Scaffold{Package: "sums", ImportPath: "example.com/app/pkg/sums", Dir: "pkg/sums"}, f.Scaffold)
}

func TestParse_Lenient(t *testing.T) {
	tests := []struct {
		name        string
		yaml        string
		wantAsync   Bool
		wantJobsBad bool
	}{
		{
			name:      "yaml 1.1 boolean",
			yaml:      "async: yes\n",
			wantAsync: Bool{Value: true, Set: true, Raw: "yes", Line: 1},
		},
		{
			name:      "garbage boolean",
			yaml:      "async: sometimes\n",
			wantAsync: Bool{Set: true, Invalid: true, Raw: "sometimes", Line: 1},
		},
		{
			name:        "garbage jobs",
			yaml:        "jobs: many\n",
			wantJobsBad: true,
		},
		{
			name:        "jobs as a list",
			yaml:        "jobs: [1, 2]\n",
			wantJobsBad: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse([]byte(tt.yaml))
			require.NoError(t, err)
			assert.Equal(t, tt.wantAsync, f.Async)
			assert.Equal(t, tt.wantJobsBad, f.Jobs.Invalid)
		})
	}
}

func TestParse_MalformedYAML(t *testing.T) {
	_, err := Parse([]byte("async: [\n"))
	require.Error(t, err)
}

func TestResolve_Defaults(t *testing.T) {
	diags := &diagnostic.Diagnostics{}
	opts := Resolve(nil, "", Overrides{}, testModule, diags)

	assert.False(t, opts.Async)
	assert.Equal(t, runtime.GOMAXPROCS(0), opts.Jobs)
	assert.Equal(t, model.ScaffoldPackage{
		Name:       "unions",
		ImportPath: "example.com/app/internal/unions",
		Dir:        filepath.Join("/src/app", "internal", "unions"),
	}, opts.Scaffold)
	assert.Empty(t, diags.All())
}

func TestResolve_InvalidValuesFallBack(t *testing.T) {
	f, err := Parse([]byte("async: maybe\njobs: 0\n"))
	require.NoError(t, err)

	diags := &diagnostic.Diagnostics{}
	opts := Resolve(f, "/src/app/union-generator.yaml", Overrides{}, testModule, diags)

	assert.False(t, opts.Async)
	assert.Equal(t, runtime.GOMAXPROCS(0), opts.Jobs)
	assert.False(t, diags.HasErrors())
	assert.Equal(t, []string{diagnostic.CodeInvalidOption, diagnostic.CodeInvalidOption}, diags.Codes())

	warnings := diags.All()
	assert.Equal(t, "/src/app/union-generator.yaml", warnings[0].Pos.Filename)
	assert.Equal(t, 1, warnings[0].Pos.Line)
	assert.Equal(t, 2, warnings[1].Pos.Line)
}

func TestResolve_OverridesWin(t *testing.T) {
	f, err := Parse([]byte("async: true\njobs: 2\nscaffold:\n  package: sums\n"))
	require.NoError(t, err)

	async := false
	jobs := 7
	opts := Resolve(f, "", Overrides{Async: &async, Jobs: &jobs, ScaffoldDir: "/elsewhere/sums"}, testModule, diagnostic.Discard)

	assert.False(t, opts.Async)
	assert.Equal(t, 7, opts.Jobs)
	assert.Equal(t, "sums", opts.Scaffold.Name)
	assert.Equal(t, "/elsewhere/sums", opts.Scaffold.Dir)
	// Outside the module, the import path cannot be derived.
	assert.Empty(t, opts.Scaffold.ImportPath)
}

func TestResolve_ScaffoldHalvesDerivedFromModule(t *testing.T) {
	byImport := Resolve(&File{Scaffold: Scaffold{ImportPath: "example.com/app/pkg/sums"}}, "", Overrides{}, testModule, diagnostic.Discard)
	assert.Equal(t, model.ScaffoldPackage{
		Name:       "sums",
		ImportPath: "example.com/app/pkg/sums",
		Dir:        filepath.Join("/src/app", "pkg", "sums"),
	}, byImport.Scaffold)

	byDir := Resolve(&File{Scaffold: Scaffold{Dir: "gen/unions"}}, "/src/app/union-generator.yaml", Overrides{}, testModule, diagnostic.Discard)
	assert.Equal(t, model.ScaffoldPackage{
		Name:       "unions",
		ImportPath: "example.com/app/gen/unions",
		Dir:        filepath.Join("/src/app", "gen", "unions"),
	}, byDir.Scaffold)
}

func TestFindAndLoadFile(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	found, err := Find(nested)
	require.NoError(t, err)
	if found != "" {
		// A config above the temp dir would make the lookup below ambiguous.
		t.Skipf("unexpected %s above the temp dir", found)
	}

	cfg := filepath.Join(root, FileName)
	require.NoError(t, os.WriteFile(cfg, []byte("async: on\n"), 0o644))

	found, err = Find(nested)
	require.NoError(t, err)
	assert.Equal(t, cfg, found)

	f, err := LoadFile(found)
	require.NoError(t, err)
	assert.True(t, f.Async.Value)

	_, err = LoadFile(filepath.Join(root, "missing.yaml"))
	require.Error(t, err)
}

func TestMarshal(t *testing.T) {
	f := &File{Async: Bool{Value: true, Set: true}, Scaffold: Scaffold{Package: "sums"}}
	data, err := Marshal(f)
	require.NoError(t, err)

	assert.Equal(t, "async: true\nscaffold:\n    package: sums\n", string(data))
}
