// Package match suggests the closest known name for a misspelled one, so
// diagnostics about unknown marker options can say what was probably meant.
//
// Key functions:
//   - Distance: edit distance between two strings
//   - Suggest: the nearest plausible candidate for a typo
package match
