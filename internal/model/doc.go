// Package model holds the immutable structural models extracted from union
// targets: UnionTarget, Variant, the enclosing container chain (Parent) and
// the process-wide generator Options.
//
// Models are values. Two models with equal fields are identical for caching
// purposes: Equal compares their canonical encodings and Hash digests the same
// encoding with xxhash. Nothing mutates a model after extraction.
package model
