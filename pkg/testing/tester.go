package testing

import (
	"errors"
	"testing"

	"github.com/go-drift/filament/pkg/core"
	"github.com/go-drift/filament/pkg/dom"
	"github.com/go-drift/filament/pkg/dom/memdom"
	"github.com/go-drift/filament/pkg/reactive"
)

// DefaultSettleRounds bounds how many RunPending rounds Settle performs.
const DefaultSettleRounds = 100

// ErrSettleTimeout is returned when Settle exceeds its round limit.
var ErrSettleTimeout = errors.New("Settle timed out: runtime did not go idle")

// ErrNotMounted is returned by operations that need a mounted tree.
var ErrNotMounted = errors.New("tester: nothing mounted")

// Tester mounts component trees into an in-memory document on an isolated
// runtime and drives them the way a host event loop would.
type Tester struct {
	rt        *reactive.Runtime
	loop      *core.Loop
	doc       *memdom.Document
	container *memdom.Element
	root      *core.Root
	observer  core.Observer
	mountErr  error
}

// Option configures a Tester.
type Option func(*Tester)

// WithRuntime runs the tester on rt instead of a fresh runtime.
func WithRuntime(rt *reactive.Runtime) Option {
	return func(t *Tester) {
		if rt != nil {
			t.rt = rt
		}
	}
}

// WithObserver installs a tree observer for every Mount.
func WithObserver(obs core.Observer) Option {
	return func(t *Tester) {
		t.observer = obs
	}
}

// NewTester creates a tester with a fresh runtime and document.
// Call Cleanup() when done, or use NewTesterWithT() instead.
func NewTester(opts ...Option) *Tester {
	t := &Tester{rt: reactive.NewRuntime(), doc: memdom.NewDocument()}
	for _, opt := range opts {
		opt(t)
	}
	t.loop = core.NewLoop(t.rt)
	t.container = t.doc.Container("div")
	return t
}

// NewTesterWithT creates a tester that auto-cleans up via t.Cleanup().
// This is the recommended constructor for tests.
func NewTesterWithT(tb testing.TB, opts ...Option) *Tester {
	tester := NewTester(opts...)
	tb.Cleanup(tester.Cleanup)
	return tester
}

// Cleanup unmounts the current tree.
func (t *Tester) Cleanup() {
	if t.root != nil {
		t.root.Unmount()
		t.root = nil
	}
}

// Runtime returns the runtime the tester drives.
func (t *Tester) Runtime() *reactive.Runtime {
	return t.rt
}

// Loop returns the event loop used by Dispatch and Flush.
func (t *Tester) Loop() *core.Loop {
	return t.loop
}

// Container returns the host element the tree is mounted into.
func (t *Tester) Container() *memdom.Element {
	return t.container
}

// Root returns the mounted root, or nil.
func (t *Tester) Root() *core.Root {
	return t.root
}

// Mount unmounts any previous tree and mounts root. Uncaptured render
// failures are returned joined; the tree is mounted regardless.
func (t *Tester) Mount(root any) error {
	t.Cleanup()
	opts := []core.MountOption{core.WithRuntime(t.rt)}
	if t.observer != nil {
		opts = append(opts, core.WithObserver(t.observer))
	}
	r, err := core.Mount(root, t.container, opts...)
	t.root = r
	t.mountErr = err
	return err
}

// MountError returns the error reported by the last Mount.
func (t *Tester) MountError() error {
	return t.mountErr
}

// Flush runs dispatched callbacks and re-runs every dirty scope.
func (t *Tester) Flush() error {
	return t.loop.RunPending()
}

// Settle flushes until no work remains. Returns ErrSettleTimeout if work is
// still pending after DefaultSettleRounds rounds.
func (t *Tester) Settle() error {
	for range DefaultSettleRounds {
		if err := t.Flush(); err != nil {
			return err
		}
		if !t.loop.NeedsWork() {
			return nil
		}
	}
	return ErrSettleTimeout
}

// Dispatch queues a callback for the next Flush, mirroring Loop.Dispatch.
func (t *Tester) Dispatch(fn func()) {
	t.loop.Dispatch(fn)
}

// Batch runs fn as one task and flushes its writes.
func (t *Tester) Batch(fn func()) error {
	return t.rt.Batch(fn)
}

// HTML returns the serialized content of the container.
func (t *Tester) HTML() string {
	return memdom.InnerHTML(t.container)
}

// Find evaluates a finder against the mounted host tree.
func (t *Tester) Find(finder Finder) FinderResult {
	return FinderResult{
		elements: finder.Evaluate(t.container),
		finder:   finder,
	}
}

// NodeCount returns the number of live tree nodes, or 0 when unmounted.
func (t *Tester) NodeCount() int {
	if t.root == nil {
		return 0
	}
	return t.root.NodeCount()
}

// first resolves finder to one element for the event helpers.
func (t *Tester) first(op string, finder Finder) (dom.Element, error) {
	if t.root == nil {
		return nil, ErrNotMounted
	}
	result := t.Find(finder)
	if !result.Exists() {
		return nil, &FinderError{Op: op, Finder: finder}
	}
	return result.First(), nil
}
