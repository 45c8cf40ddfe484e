// Package pipeline is the incremental orchestrator: it turns host
// notifications about changed packages into extraction and composition work,
// caches models and units between passes, and publishes the units that
// changed.
//
// A target is re-rendered only when its model differs by value from the last
// committed pass or the rendering options changed. Scaffold units are
// refcounted by arity, so a pass re-renders scaffolds only when the set of
// distinct arities changes.
package pipeline
