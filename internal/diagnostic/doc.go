// Package diagnostic provides structured warnings and errors reported while
// matching, extracting and composing union targets.
//
// Key capabilities:
//   - A Sink interface the core reports into, safe for concurrent use
//   - Stable diagnostic codes per failure class
//   - Terminal rendering for the CLI
package diagnostic
