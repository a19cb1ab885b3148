package reactive

// dependency is one observable cell: a store path, a store shape, or a memo output.
type dependency struct {
	subs map[*Scope]struct{}
}

// Scope is a dependency-tracked unit of re-computation.
type Scope struct {
	rt       *Runtime
	id       uint64
	depth    int
	fn       func()
	deps     map[*dependency]struct{}
	dirty    bool
	running  bool
	disposed bool

	// onInvalidate replaces scheduling; memos use it to mark themselves stale.
	onInvalidate func()
}

// NewScope creates a scope that runs fn. The scope does not run until Run is
// called. Depth orders queued scopes within a flush: lower depths run first.
func (rt *Runtime) NewScope(depth int, fn func()) *Scope {
	rt.nextID++
	return &Scope{
		rt:    rt,
		id:    rt.nextID,
		depth: depth,
		fn:    fn,
		deps:  make(map[*dependency]struct{}),
	}
}

// Run evaluates the scope body with fresh dependency tracking.
// Runs of disposed scopes and re-entrant runs are ignored.
func (s *Scope) Run() {
	if s.disposed || s.running {
		return
	}
	s.dirty = false
	s.clearDeps()
	s.running = true
	s.rt.push(s)
	defer func() {
		s.rt.pop()
		s.running = false
	}()
	if obs := s.rt.observer; obs != nil {
		obs.ScopeRan()
	}
	s.fn()
}

// Dispose prunes every dependency registration. Later writes to cells the
// scope used to read are silent no-ops for it.
func (s *Scope) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	s.dirty = false
	s.clearDeps()
}

// Disposed reports whether Dispose has been called.
func (s *Scope) Disposed() bool {
	return s.disposed
}

// Dirty reports whether the scope is waiting to re-run.
func (s *Scope) Dirty() bool {
	return s.dirty
}

// DependencyCount returns the number of cells read during the last run.
func (s *Scope) DependencyCount() int {
	return len(s.deps)
}

// Adopt subscribes s to everything other currently depends on. The adopted
// edges last until s next runs.
func (s *Scope) Adopt(other *Scope) {
	if s.disposed || other == nil || other == s {
		return
	}
	for d := range other.deps {
		if d.subs == nil {
			d.subs = make(map[*Scope]struct{})
		}
		d.subs[s] = struct{}{}
		s.deps[d] = struct{}{}
	}
}

func (s *Scope) clearDeps() {
	for d := range s.deps {
		delete(d.subs, s)
	}
	clear(s.deps)
}

func (s *Scope) invalidate() {
	if s.disposed || s.dirty {
		return
	}
	s.dirty = true
	if s.onInvalidate != nil {
		s.onInvalidate()
		return
	}
	s.rt.schedule(s)
}

// Effect runs fn immediately in a new scope and re-runs it on every flush
// after one of its reads changes. The returned function disposes it.
func (rt *Runtime) Effect(fn func()) func() {
	s := rt.NewScope(0, fn)
	s.Run()
	return s.Dispose
}
