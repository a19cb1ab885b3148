package showcase

import (
	"fmt"

	"github.com/go-drift/filament/pkg/core"
	"github.com/go-drift/filament/pkg/dom/memdom"
	"github.com/go-drift/filament/pkg/reactive"
)

// Session is one demo mounted into a fresh in-memory document.
type Session struct {
	demo      Demo
	rt        *reactive.Runtime
	container *memdom.Element
	root      *core.Root
	next      int
}

type sessionOptions struct {
	runtime  []reactive.Option
	observer core.Observer
}

// Option configures Start.
type Option func(*sessionOptions)

// WithRuntimeOptions passes options to the session's runtime.
func WithRuntimeOptions(opts ...reactive.Option) Option {
	return func(o *sessionOptions) {
		o.runtime = append(o.runtime, opts...)
	}
}

// WithObserver installs a tree observer.
func WithObserver(obs core.Observer) Option {
	return func(o *sessionOptions) {
		o.observer = obs
	}
}

// Start mounts d into a <main> container on a new runtime. Uncaptured render
// errors of the initial pass are returned together with a usable session.
func Start(d Demo, opts ...Option) (*Session, error) {
	var o sessionOptions
	for _, opt := range opts {
		opt(&o)
	}
	rt := reactive.NewRuntime(o.runtime...)
	container := memdom.NewDocument().Container("main")
	mopts := []core.MountOption{core.WithRuntime(rt)}
	if o.observer != nil {
		mopts = append(mopts, core.WithObserver(o.observer))
	}
	root, err := core.Mount(d.Build(rt), container, mopts...)
	return &Session{demo: d, rt: rt, container: container, root: root}, err
}

// Demo returns the scenario being run.
func (s *Session) Demo() Demo {
	return s.demo
}

// Runtime returns the session's runtime.
func (s *Session) Runtime() *reactive.Runtime {
	return s.rt
}

// Container returns the element the demo is mounted into.
func (s *Session) Container() *memdom.Element {
	return s.container
}

// Root returns the mounted tree.
func (s *Session) Root() *core.Root {
	return s.root
}

// Remaining returns the number of scripted steps not yet run.
func (s *Session) Remaining() int {
	return len(s.demo.Steps) - s.next
}

// Step runs the next scripted step. ok is false when none remain.
func (s *Session) Step() (step Step, ok bool, err error) {
	if s.next >= len(s.demo.Steps) {
		return Step{}, false, nil
	}
	step = s.demo.Steps[s.next]
	s.next++
	if err := step.Run(s); err != nil {
		return step, true, fmt.Errorf("showcase %s: step %q: %w", s.demo.Name, step.Name, err)
	}
	if err := s.rt.Flush(); err != nil {
		return step, true, err
	}
	return step, true, nil
}

// RunSteps runs up to n remaining steps, or all of them when n is negative.
// It stops at the first failing step.
func (s *Session) RunSteps(n int) error {
	for i := 0; n < 0 || i < n; i++ {
		_, ok, err := s.Step()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
	return nil
}

// HTML returns the serialized content of the container.
func (s *Session) HTML() string {
	return memdom.InnerHTML(s.container)
}

// Close unmounts the demo.
func (s *Session) Close() {
	if s.root != nil {
		s.root.Unmount()
	}
}
