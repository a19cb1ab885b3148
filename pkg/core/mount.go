package core

import (
	stderrors "errors"

	"github.com/go-drift/filament/pkg/dom"
	"github.com/go-drift/filament/pkg/reactive"
)

var errNilContainer = stderrors.New("core.Mount: nil container")

type mountOptions struct {
	rt       *reactive.Runtime
	observer Observer
}

// MountOption configures Mount.
type MountOption func(*mountOptions)

// WithRuntime mounts against rt instead of reactive.Default().
func WithRuntime(rt *reactive.Runtime) MountOption {
	return func(o *mountOptions) {
		if rt != nil {
			o.rt = rt
		}
	}
}

// WithObserver installs a reconciler instrumentation hook.
func WithObserver(obs Observer) MountOption {
	return func(o *mountOptions) {
		o.observer = obs
	}
}

// Root is a mounted tree.
type Root struct {
	t *tree
}

// Mount realizes root into container and attaches it. root may be anything
// a component can return. The returned error joins the render errors of the
// initial pass that no boundary captured; the Root is usable regardless and
// keeps reacting to store writes.
func Mount(root any, container dom.Element, opts ...MountOption) (*Root, error) {
	if container == nil {
		return nil, errNilContainer
	}
	o := mountOptions{rt: reactive.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	t := newTree(o.rt, container, o.observer)
	t.root = t.alloc(nodeRoot, noNode)
	t.nodes[t.root].realized = true
	t.nodes[t.root].mounted = true

	kids := normalizeChildren("core.Mount", []any{root})
	t.collecting = true
	flushErr := t.rt.Batch(func() {
		t.operation(func() {
			t.reconcileChildren(t.root, kids)
		})
	})
	t.collecting = false

	errs := t.errs
	t.errs = nil
	if flushErr != nil {
		errs = append(errs, flushErr)
	}
	return &Root{t: t}, stderrors.Join(errs...)
}

// Unmount tears the whole tree down, running unmount hooks and clearing
// refs. Calling it again is a no-op.
func (r *Root) Unmount() {
	t := r.t
	if t.root == noNode {
		return
	}
	t.operation(func() {
		t.clearChildren(t.root)
	})
	t.release(t.root)
	t.root = noNode
}

// Runtime returns the runtime the tree reacts on.
func (r *Root) Runtime() *reactive.Runtime {
	return r.t.rt
}

// Container returns the host element the tree is attached to.
func (r *Root) Container() dom.Element {
	return r.t.container
}

// NodeCount returns the number of mounted nodes, the root excluded.
func (r *Root) NodeCount() int {
	if r.t.root == noNode {
		return 0
	}
	return r.t.live - 1
}

// Mounted reports whether Unmount has not been called yet.
func (r *Root) Mounted() bool {
	return r.t.root != noNode
}

// Batch runs fn as one task on the tree's runtime and flushes once.
func (r *Root) Batch(fn func()) error {
	return r.t.rt.Batch(fn)
}

// Flush drains the runtime's pending work.
func (r *Root) Flush() error {
	return r.t.rt.Flush()
}
