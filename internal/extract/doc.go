// Package extract builds immutable UnionTarget models from candidate
// declarations and the symbol context of their package.
//
// Extraction is pure: the same declaration and symbols always yield an equal
// model, and every reason for dropping a target goes to the diagnostics sink
// instead of an error return, so one broken target never aborts a pass.
package extract
