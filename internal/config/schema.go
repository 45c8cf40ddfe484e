package config

// FileName is the name of the configuration file looked up by Find.
const FileName = "union-generator.yaml"

// File is the on-disk configuration.
type File struct {
	Async    Bool     `yaml:"async,omitempty"`
	Jobs     Int      `yaml:"jobs,omitempty"`
	Scaffold Scaffold `yaml:"scaffold,omitempty"`
}

// Scaffold locates the shared scaffold package.
type Scaffold struct {
	Package    string `yaml:"package,omitempty"`
	ImportPath string `yaml:"import_path,omitempty"`
	// Dir is relative to the directory holding the configuration file.
	Dir string `yaml:"dir,omitempty"`
}

// Bool is a boolean option that accepts any scalar and remembers whether it
// was set and whether it parsed.
type Bool struct {
	Value   bool
	Set     bool
	Invalid bool
	Raw     string
	Line    int
}

// Int is the integer counterpart of Bool.
type Int struct {
	Value   int
	Set     bool
	Invalid bool
	Raw     string
	Line    int
}
