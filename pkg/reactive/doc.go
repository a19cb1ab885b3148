// Package reactive provides the state container and dependency-tracked
// evaluator underneath the filament reconciler.
//
// # Scopes
//
// A Scope is the unit of re-run. Running a scope pushes it onto the runtime's
// explicit scope stack; every tracked read performed while it is on top
// registers an edge from the read cell to the scope. Each run starts from an
// empty dependency set, so a scope only ever depends on what its last run read.
//
//	rt := reactive.NewRuntime()
//	state := rt.NewStore(map[string]any{"count": 0})
//	stop := rt.Effect(func() {
//	    fmt.Println("count is", state.Get("count"))
//	})
//	defer stop()
//
// # Scheduling
//
// Writes take effect immediately for later reads, but dependent scopes are
// queued rather than run inline. Batch models one synchronous task: every
// write inside it collapses into a single flush when the outermost Batch
// returns. Outside a batch, call Flush (or install OnSchedule to have the
// host loop do it).
//
//	rt.Batch(func() {
//	    state.Set("count", 1)
//	    state.Set("count", 2) // the effect runs once, seeing 2
//	})
//
// # Stores
//
// Stores wrap nested maps and slices. Child stores are created lazily the
// first time a nested value is read, so the dependency graph mirrors only the
// paths that were observed.
//
// The runtime is single-threaded: scopes, stores and memos must only be used
// from the goroutine driving the host event loop.
package reactive
