package reactive

import (
	"slices"
	"time"

	"github.com/go-drift/filament/pkg/errors"
)

// DefaultMaxPasses bounds how many times a single flush may loop before giving up.
const DefaultMaxPasses = 100

// Observer receives scheduling events for instrumentation.
type Observer interface {
	// ScopeRan is called each time a scope body is about to run.
	ScopeRan()
	// Flushed is called after a flush that ran at least one scope.
	Flushed(runs int, elapsed time.Duration)
}

// Runtime owns the scope stack and the dirty queue.
type Runtime struct {
	stack     []*Scope
	queue     []*Scope
	stale     []settler
	batch     int
	flushing  bool
	maxPasses int
	observer  Observer
	nextID    uint64

	// OnSchedule is called when work is queued while the runtime is idle,
	// signalling the host loop that a flush should be performed.
	OnSchedule func()
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithMaxPasses sets the flush pass limit. Values below 1 are ignored.
func WithMaxPasses(n int) Option {
	return func(rt *Runtime) {
		if n > 0 {
			rt.maxPasses = n
		}
	}
}

// WithObserver installs an instrumentation hook.
func WithObserver(o Observer) Option {
	return func(rt *Runtime) {
		rt.observer = o
	}
}

// NewRuntime creates an isolated runtime.
func NewRuntime(opts ...Option) *Runtime {
	rt := &Runtime{maxPasses: DefaultMaxPasses}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

var defaultRuntime = NewRuntime()

// Default returns the process-wide runtime.
func Default() *Runtime {
	return defaultRuntime
}

// SetObserver replaces the instrumentation hook.
func (rt *Runtime) SetObserver(o Observer) {
	rt.observer = o
}

// current returns the scope reads should register against, or nil.
func (rt *Runtime) current() *Scope {
	if len(rt.stack) == 0 {
		return nil
	}
	return rt.stack[len(rt.stack)-1]
}

// Tracking reports whether a read performed now would register a dependency.
func (rt *Runtime) Tracking() bool {
	return rt.current() != nil
}

func (rt *Runtime) push(s *Scope) {
	rt.stack = append(rt.stack, s)
}

func (rt *Runtime) pop() {
	rt.stack = rt.stack[:len(rt.stack)-1]
}

// Untracked runs fn with dependency tracking suspended.
func (rt *Runtime) Untracked(fn func()) {
	rt.push(nil)
	defer rt.pop()
	fn()
}

// Untrack evaluates fn without tracking and returns its result.
func Untrack[T any](rt *Runtime, fn func() T) T {
	var v T
	rt.Untracked(func() {
		v = fn()
	})
	return v
}

// track registers the current scope as a subscriber of d.
func (rt *Runtime) track(d *dependency) {
	s := rt.current()
	if s == nil || s.disposed {
		return
	}
	if d.subs == nil {
		d.subs = make(map[*Scope]struct{})
	}
	d.subs[s] = struct{}{}
	s.deps[d] = struct{}{}
}

// trigger invalidates every subscriber of d.
func (rt *Runtime) trigger(d *dependency) {
	for s := range d.subs {
		s.invalidate()
	}
}

func (rt *Runtime) schedule(s *Scope) {
	rt.queue = append(rt.queue, s)
	if len(rt.queue)+len(rt.stale) == 1 && !rt.flushing && rt.batch == 0 && rt.OnSchedule != nil {
		rt.OnSchedule()
	}
}

func (rt *Runtime) markStale(m settler) {
	rt.stale = append(rt.stale, m)
	if len(rt.queue)+len(rt.stale) == 1 && !rt.flushing && rt.batch == 0 && rt.OnSchedule != nil {
		rt.OnSchedule()
	}
}

// Pending returns the number of queued scopes awaiting a flush.
func (rt *Runtime) Pending() int {
	return len(rt.queue) + len(rt.stale)
}

// Batch runs fn as one synchronous task. Writes inside it are flushed once,
// when the outermost Batch returns, even if fn panics.
func (rt *Runtime) Batch(fn func()) (err error) {
	rt.batch++
	defer func() {
		rt.batch--
		if rt.batch == 0 {
			err = rt.Flush()
		}
	}()
	fn()
	return nil
}

// Flush re-runs every dirty scope. Memos settle first, then scopes run in
// ascending depth order. Scopes dirtied during a pass run in the next pass.
// Calling Flush inside a batch or during another flush is a no-op.
func (rt *Runtime) Flush() error {
	if rt.flushing || rt.batch > 0 {
		return nil
	}
	rt.flushing = true
	defer func() {
		rt.flushing = false
	}()

	start := time.Now()
	runs := 0
	for pass := 0; len(rt.queue) > 0 || len(rt.stale) > 0; pass++ {
		if pass >= rt.maxPasses {
			rt.drop()
			err := &errors.RuntimeError{
				Op:         "reactive.Flush",
				Kind:       errors.KindScheduler,
				Err:        errors.ErrFlushLimit,
				StackTrace: errors.CaptureStack(),
			}
			errors.Report(err)
			return err
		}

		rt.settle()

		queue := rt.queue
		rt.queue = nil
		slices.SortStableFunc(queue, func(a, b *Scope) int {
			if a.depth != b.depth {
				return a.depth - b.depth
			}
			return compareID(a.id, b.id)
		})
		for _, s := range queue {
			if !s.dirty || s.disposed {
				continue
			}
			rt.runQueued(s)
			runs++
		}
	}
	if runs > 0 && rt.observer != nil {
		rt.observer.Flushed(runs, time.Since(start))
	}
	return nil
}

func (rt *Runtime) runQueued(s *Scope) {
	defer errors.Recover("reactive.Flush")
	s.Run()
}

// settle re-evaluates stale memos until none remain.
func (rt *Runtime) settle() {
	for len(rt.stale) > 0 {
		m := rt.stale[0]
		rt.stale = rt.stale[1:]
		func() {
			defer errors.Recover("reactive.Memo")
			m.settle()
		}()
	}
}

func (rt *Runtime) drop() {
	for _, s := range rt.queue {
		s.dirty = false
	}
	rt.queue = nil
	rt.stale = nil
}

func compareID(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
