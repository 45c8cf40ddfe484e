// Package gen composes Go source units from union target models.
//
// Generation approach uses text/template + go/format for readable,
// deterministic Go code.
//
// Units:
//   - Scaffold: one file per distinct arity in the shared scaffold package,
//     holding MatchN, SwitchN, MatchAsyncN and SwitchAsyncN
//   - Target: one file per target in the target's package, holding sealing,
//     widening, conversions and the Match/Switch functions
//
// Publishing units to disk (write, compare, prune) lives in writer.go.
package gen
