// Package core turns descriptors into host nodes and keeps them in sync with
// reactive state.
//
// A Descriptor is an immutable plan built with E:
//
//	core.E("button", core.Attrs{
//	    "class":   "primary",
//	    "onclick": func() { count.Set("value", count.Get("value").(int)+1) },
//	}, "Clicked ", func() any { return count.Get("value") }, " times")
//
// Mount realizes a descriptor tree into a dom.Element. Component functions,
// dynamic children and dynamic attributes each run in their own reactive
// scope, so a store write re-runs only the evaluations that read the changed
// path. There is no tree diff: the reconciler only touches the node whose
// scope re-ran.
//
// # Children
//
// Children may be descriptors, strings, numbers, slices of them, or
// zero-argument functions producing them. Lists reconcile by key when
// descriptors carry one (the "key" attribute or WithKey) and by position
// otherwise; survivors are moved only when out of place.
//
// # Lifecycle and refs
//
// OnMount hooks run when the node and everything it owns is attached,
// children first. OnUnmount hooks run before detach, children first. A Ref
// is bound exactly while its node is attached.
//
// # Error boundaries
//
// ErrorBoundary (or Errb) catches render failures of its content, shows the
// result of onError, and retries the content once something the failed
// render read changes. Without a boundary a failing update keeps the previous
// content and a failing mount renders nothing.
//
// # Threading
//
// A tree and its runtime belong to one goroutine. Use a Loop to hand work
// over from other goroutines.
package core
