package core

// operation runs fn as one reconciler operation. Nested operations share the
// outermost one; when it completes, the mount hooks of everything it realized
// fire.
func (t *tree) operation(fn func()) {
	t.op++
	defer func() {
		t.op--
		if t.op == 0 {
			t.attachPending()
		}
	}()
	fn()
}

// attachPending marks realized nodes mounted, binds their refs and runs their
// mount hooks. Children were queued before their parents, so hooks run
// bottom-up once the whole operation is attached.
func (t *tree) attachPending() {
	for len(t.pending) > 0 {
		batch := t.pending
		t.pending = nil
		for _, p := range batch {
			if !t.alive(p.id, p.gen) {
				continue
			}
			n := t.nodes[p.id]
			if !n.realized || n.mounted || n.failed {
				continue
			}
			n.mounted = true
			if n.ref != nil && n.host != nil {
				n.ref.bind(t, p.id, n.host)
			}
			// The concrete element of a dynamic tag carries its hooks.
			if n.kind == nodeDynamicTag || n.desc == nil {
				continue
			}
			for _, fn := range n.desc.onMount {
				if !t.alive(p.id, p.gen) {
					break
				}
				hook("core.OnMount", fn)
			}
		}
	}
}

// unmount tears down id and its subtree, detaches its host nodes and frees
// its slots.
func (t *tree) unmount(id nodeID) {
	t.teardown(id)
	for _, h := range t.topHosts(id) {
		detach(h)
	}
	t.release(id)
}

// teardown disposes scopes and listeners, unbinds refs and runs unmount
// hooks, children first. Hosts are still attached while hooks run.
func (t *tree) teardown(id nodeID) {
	n := t.nodes[id]
	for _, c := range n.children {
		t.teardown(c)
	}
	if n.scope != nil {
		n.scope.Dispose()
	}
	if n.attrs != nil {
		n.attrs.dispose()
	}
	if n.ref != nil {
		n.ref.unbind(t, id, n.gen)
	}
	if !n.mounted {
		return
	}
	n.mounted = false
	if n.kind == nodeDynamicTag || n.desc == nil {
		return
	}
	for _, fn := range n.desc.onUnmount {
		hook("core.OnUnmount", fn)
	}
}
