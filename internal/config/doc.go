// Package config loads union-generator.yaml and resolves it, together with
// command-line overrides, into the process-wide generator options.
//
// Values are decoded leniently: a value that cannot be parsed falls back to
// its default and is reported as an invalid-option warning instead of failing
// the load.
package config
