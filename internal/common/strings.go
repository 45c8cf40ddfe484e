package common

import (
	"go/token"
	"go/types"
	"unicode"
	"unicode/utf8"
)

// UnknownStr is returned by String methods for out-of-range enum values.
const UnknownStr = "unknown"

// UpperFirst returns s with its first rune upper-cased.
func UpperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}

	return string(unicode.ToUpper(r)) + s[size:]
}

// LowerFirst returns s with its first rune lower-cased.
func LowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}

	return string(unicode.ToLower(r)) + s[size:]
}

// SafeIdent returns name, suffixed with "_" when it is a Go keyword or a
// predeclared identifier.
func SafeIdent(name string) string {
	if token.IsKeyword(name) || types.Universe.Lookup(name) != nil {
		return name + "_"
	}

	return name
}
