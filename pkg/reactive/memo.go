package reactive

type settler interface {
	settle()
}

// Memo caches a derived value. It re-evaluates lazily after one of its
// dependencies changes and notifies its own dependents only when the result
// differs from the cached one.
type Memo[T any] struct {
	rt     *Runtime
	scope  *Scope
	fn     func() T
	equal  func(a, b T) bool
	value  T
	next   T
	init   bool
	stale  bool
	output dependency
}

// NewMemo creates a memo compared with ==.
func NewMemo[T comparable](rt *Runtime, fn func() T) *Memo[T] {
	return NewMemoFunc(rt, fn, func(a, b T) bool { return a == b })
}

// NewMemoFunc creates a memo compared with equal.
func NewMemoFunc[T any](rt *Runtime, fn func() T, equal func(a, b T) bool) *Memo[T] {
	m := &Memo[T]{rt: rt, fn: fn, equal: equal}
	m.scope = rt.NewScope(0, func() {
		m.next = m.fn()
	})
	m.scope.onInvalidate = func() {
		m.stale = true
		rt.markStale(m)
	}
	return m
}

// Get returns the cached value, recomputing it first if it is stale.
// Inside a scope the read registers a dependency on the memo's output.
func (m *Memo[T]) Get() T {
	if !m.init || m.stale {
		m.recompute()
	}
	m.rt.track(&m.output)
	return m.value
}

// Dispose stops tracking upstream values.
func (m *Memo[T]) Dispose() {
	m.scope.Dispose()
}

func (m *Memo[T]) settle() {
	if m.stale {
		m.recompute()
	}
}

func (m *Memo[T]) recompute() {
	m.stale = false
	m.scope.Run()
	if !m.init {
		m.init = true
		m.value = m.next
		return
	}
	if m.equal(m.value, m.next) {
		return
	}
	m.value = m.next
	m.rt.trigger(&m.output)
}
