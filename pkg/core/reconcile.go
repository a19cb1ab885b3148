package core

import (
	"fmt"
	"strings"

	"github.com/go-drift/filament/pkg/dom"
	"github.com/go-drift/filament/pkg/errors"
	"github.com/go-drift/filament/pkg/reactive"
)

func kindFor(c child) nodeKind {
	switch c.kind {
	case childText:
		return nodeText
	case childDynamic:
		return nodeDynamic
	}
	switch c.desc.kind {
	case KindElement:
		return nodeElement
	case KindDynamicTag:
		return nodeDynamicTag
	case KindComponent:
		return nodeComponent
	case KindText:
		return nodeTextMarker
	case KindBoundary:
		return nodeBoundary
	}
	return nodeInvalid
}

func (t *tree) allocChild(pid nodeID, c child) nodeID {
	id := t.alloc(kindFor(c), pid)
	n := t.nodes[id]
	n.desc, n.text, n.fn = c.desc, c.text, c.fn
	return id
}

func (n *mountedNode) key() any {
	if n.desc != nil && n.kind != nodeFree {
		return n.desc.key
	}
	return nil
}

// canPatch reports whether the node at id can absorb c in place. Host tags
// must match and components must be the same function; dynamic nodes always
// patch by re-running their scope.
func (t *tree) canPatch(id nodeID, c child) bool {
	n := t.nodes[id]
	if n.failed || kindFor(c) != n.kind {
		return false
	}
	switch n.kind {
	case nodeElement:
		return n.desc.tag == c.desc.tag
	case nodeComponent:
		return sameFunc(n.desc.ident, c.desc.ident)
	case nodeInvalid:
		return false
	}
	return true
}

// reconcileChildren makes next the children of pid. Old children are matched
// by key when they have one and by position among the unkeyed otherwise.
// Survivors are moved only if out of order. New children are realized first,
// then survivors are patched, and unmatched old children are unmounted last.
// When pid is already on screen and the pass panics, the new children are
// dropped and the old order restored before the panic continues.
func (t *tree) reconcileChildren(pid nodeID, next []child) {
	p := t.nodes[pid]
	pgen := p.gen
	old := p.children

	var keyed map[any]nodeID
	var unkeyed []nodeID
	for _, id := range old {
		k := t.nodes[id].key()
		if k == nil {
			unkeyed = append(unkeyed, id)
			continue
		}
		if keyed == nil {
			keyed = make(map[any]nodeID)
		}
		// A duplicate key is never matched and gets unmounted.
		if _, dup := keyed[k]; !dup {
			keyed[k] = id
		}
	}

	used := make(map[nodeID]bool, len(old))
	final := make([]nodeID, len(next))
	ui := 0
	for i, c := range next {
		final[i] = noNode
		if k := c.key(); k != nil {
			if id, ok := keyed[k]; ok && !used[id] {
				final[i] = id
				used[id] = true
			}
			continue
		}
		if ui < len(unkeyed) {
			final[i] = unkeyed[ui]
			used[unkeyed[ui]] = true
			ui++
		}
	}

	for i, c := range next {
		if id := final[i]; id != noNode && !t.canPatch(id, c) {
			used[id] = false
			final[i] = noNode
		}
	}
	var stale []nodeID
	for _, id := range old {
		if !used[id] {
			stale = append(stale, id)
		}
	}

	fresh := make([]bool, len(next))
	gens := make([]uint32, len(next))
	for i, c := range next {
		if final[i] == noNode {
			final[i] = t.allocChild(pid, c)
			fresh[i] = true
			gens[i] = t.nodes[final[i]].gen
		}
	}
	p.children = final

	if p.realized {
		defer func() {
			if r := recover(); r != nil {
				if t.alive(pid, pgen) {
					t.rollback(pid, old, final, gens, fresh)
				} else {
					for _, id := range stale {
						t.unmount(id)
					}
				}
				panic(r)
			}
		}()
	}

	t.placeSurvivors(pid, old, final, fresh)

	for i, id := range final {
		if fresh[i] && t.alive(pid, pgen) {
			t.realize(id)
		}
	}
	for i, id := range final {
		if !fresh[i] && t.alive(pid, pgen) {
			t.patch(id, next[i])
		}
	}
	for _, id := range stale {
		t.unmount(id)
	}
}

// rollback undoes an aborted reconcileChildren: the new children are
// unmounted and old becomes the child list again, in its old host order.
func (t *tree) rollback(pid nodeID, old, final []nodeID, gens []uint32, fresh []bool) {
	p := t.nodes[pid]
	p.children = old
	for i, id := range final {
		if fresh[i] && t.alive(id, gens[i]) {
			t.unmount(id)
		}
	}
	var after dom.Node
	if p.isVirtual() && p.kind != nodeRoot {
		after = t.hostAfter(pid)
	}
	var parent dom.Element
	for j := len(old) - 1; j >= 0; j-- {
		hosts := t.topHosts(old[j])
		if len(hosts) == 0 {
			continue
		}
		if parent == nil {
			parent = t.hostParent(old[j])
		}
		for _, h := range hosts {
			parent.InsertBefore(h, after)
		}
		after = hosts[0]
	}
}

// placeSurvivors moves the survivors that are out of order. Survivors on a
// longest run that kept its old relative order stay put; the others are
// inserted before their successor, walking the final order backwards.
func (t *tree) placeSurvivors(pid nodeID, old, final []nodeID, fresh []bool) {
	oldIndex := make(map[nodeID]int, len(old))
	for i, id := range old {
		oldIndex[id] = i
	}
	var seq []int
	var pos []int
	for i, id := range final {
		if !fresh[i] {
			seq = append(seq, oldIndex[id])
			pos = append(pos, i)
		}
	}
	if len(seq) == 0 {
		return
	}
	keep := stableRun(seq)
	moves := false
	for _, k := range keep {
		if !k {
			moves = true
			break
		}
	}
	if !moves {
		return
	}

	var after dom.Node
	if p := t.nodes[pid]; p.isVirtual() && p.kind != nodeRoot {
		after = t.hostAfter(pid)
	}
	var parent dom.Element
	for j := len(pos) - 1; j >= 0; j-- {
		id := final[pos[j]]
		hosts := t.topHosts(id)
		if len(hosts) == 0 {
			continue
		}
		if !keep[j] {
			if parent == nil {
				parent = t.hostParent(id)
			}
			for _, h := range hosts {
				parent.InsertBefore(h, after)
			}
		}
		after = hosts[0]
	}
}

// stableRun marks one longest strictly increasing subsequence of seq.
func stableRun(seq []int) []bool {
	prev := make([]int, len(seq))
	var tails []int // indices into seq
	for i, v := range seq {
		lo, hi := 0, len(tails)
		for lo < hi {
			mid := (lo + hi) / 2
			if seq[tails[mid]] < v {
				lo = mid + 1
			} else {
				hi = mid
			}
		}
		if lo > 0 {
			prev[i] = tails[lo-1]
		} else {
			prev[i] = -1
		}
		if lo == len(tails) {
			tails = append(tails, i)
		} else {
			tails[lo] = i
		}
	}
	keep := make([]bool, len(seq))
	for i := tails[len(tails)-1]; i >= 0; i = prev[i] {
		keep[i] = true
	}
	return keep
}

// realize builds id inside a guarded mount frame. A node that fails without
// a boundary while its tree is first mounted renders nothing at its position;
// during an update the whole pass is aborted instead.
func (t *tree) realize(id nodeID) {
	gen := t.nodes[id].gen
	out := t.guard(frame{id: id, phase: errors.PhaseMount, realize: true}, func() {
		t.build(id)
	})
	if !t.alive(id, gen) {
		return
	}
	n := t.nodes[id]
	n.realized = true
	if t.observer != nil {
		t.observer.NodeMounted()
	}
	if out == outcomeFailed {
		n.failed = true
		return
	}
	t.pending = append(t.pending, pendingAttach{id: id, gen: gen})
}

func (t *tree) build(id nodeID) {
	n := t.nodes[id]
	switch n.kind {
	case nodeText:
		n.host = t.doc.CreateTextNode(n.text)
		t.insert(id, n.host)
	case nodeElement:
		t.buildElement(id)
	case nodeTextMarker:
		n.host = t.doc.CreateTextNode("")
		n.ref = n.desc.ref
		t.insert(id, n.host)
		n.scope = t.nodeScope(id, func() { t.renderText(id) })
		n.scope.Run()
	case nodeComponent:
		warnRef(n.desc)
		n.scope = t.nodeScope(id, func() { t.renderOutput(id, t.nodes[id].desc.component()) })
		n.scope.Run()
	case nodeDynamic:
		n.scope = t.nodeScope(id, func() { t.renderOutput(id, t.nodes[id].fn()) })
		n.scope.Run()
	case nodeDynamicTag:
		n.scope = t.nodeScope(id, func() { t.renderDynamicTag(id) })
		n.scope.Run()
	case nodeBoundary:
		warnRef(n.desc)
		n.scope = t.nodeScope(id, func() { t.renderBoundary(id) })
		n.scope.Run()
	default:
		panic(fmt.Errorf("%w: %s", errors.ErrInvalidType, n.desc.describe()))
	}
}

func (t *tree) buildElement(id nodeID) {
	n := t.nodes[id]
	gen := n.gen
	d := n.desc
	el := t.doc.CreateElement(d.tag)
	n.host = el
	n.ref = d.ref
	t.patchAttrs(id, nil, d)
	t.reconcileChildren(id, d.children)
	if t.alive(id, gen) {
		t.insert(id, el)
	}
}

// patch brings a surviving node in line with c.
func (t *tree) patch(id nodeID, c child) {
	n := t.nodes[id]
	switch n.kind {
	case nodeText:
		if n.text != c.text {
			n.text = c.text
			n.host.(dom.Text).SetData(c.text)
		}
	case nodeElement:
		t.patchElement(id, c.desc)
	case nodeDynamic:
		n.fn = c.fn
		n.scope.Run()
	case nodeTextMarker:
		n.desc = c.desc
		t.swapRef(id, c.desc.ref)
		n.scope.Run()
	case nodeComponent, nodeBoundary:
		if c.desc.ref != n.desc.ref {
			warnRef(c.desc)
		}
		n.desc = c.desc
		n.scope.Run()
	case nodeDynamicTag:
		n.desc = c.desc
		n.scope.Run()
	}
}

func (t *tree) patchElement(id nodeID, d *Descriptor) {
	n := t.nodes[id]
	gen := n.gen
	old := n.desc
	n.desc = d
	t.patchAttrs(id, old, d)
	t.swapRef(id, d.ref)
	if t.alive(id, gen) {
		t.reconcileChildren(id, d.children)
	}
}

// warnRef reports a ref on a descriptor without a host node of its own.
func warnRef(d *Descriptor) {
	if d.ref != nil {
		errors.Warn("core ref", d.describe(), "only elements, dynamic tags and text can bind a ref")
	}
}

// swapRef moves the binding of a retained node to r without a gap: r is
// bound before the previous handle is cleared.
func (t *tree) swapRef(id nodeID, r *Ref) {
	n := t.nodes[id]
	prev := n.ref
	if prev == r {
		return
	}
	n.ref = r
	if !n.mounted || n.host == nil {
		return
	}
	if r != nil {
		r.bind(t, id, n.host)
	}
	if prev != nil {
		prev.unbind(t, id, n.gen)
	}
}

// nodeScope creates the scope of a component, dynamic slot, dynamic tag,
// text marker or boundary. The first run happens inside the node's mount
// frame; later runs are guarded update passes.
func (t *tree) nodeScope(id nodeID, body func()) *reactive.Scope {
	n := t.nodes[id]
	gen := n.gen
	var s *reactive.Scope
	s = t.rt.NewScope(n.depth, func() {
		if !t.alive(id, gen) {
			return
		}
		if !t.nodes[id].realized {
			body()
			return
		}
		t.operation(func() {
			out := t.guard(frame{id: id, phase: errors.PhaseUpdate, scope: s}, body)
			if out == outcomeOK && t.alive(id, gen) && t.nodes[id].failed {
				t.nodes[id].failed = false
				t.pending = append(t.pending, pendingAttach{id: id, gen: gen})
			}
		})
	})
	return s
}

// renderOutput normalizes a producer's result and reconciles it untracked.
func (t *tree) renderOutput(id nodeID, out any) {
	kids := normalizeChildren("core "+t.describe(id), []any{out})
	t.rt.Untracked(func() {
		t.reconcileChildren(id, kids)
	})
}

func (t *tree) renderDynamicTag(id nodeID) {
	d := t.nodes[id].desc
	tag := strings.ToLower(d.tagFn())
	if !validTag(tag) {
		panic(fmt.Errorf("%w: dynamic tag %q", errors.ErrInvalidType, tag))
	}
	t.rt.Untracked(func() {
		t.reconcileChildren(id, []child{{kind: childDescriptor, desc: d.concrete(tag)}})
	})
}

func (t *tree) renderText(id nodeID) {
	var sb strings.Builder
	for _, c := range t.nodes[id].desc.children {
		switch c.kind {
		case childText:
			sb.WriteString(c.text)
		case childDynamic:
			sb.WriteString(textOf(c.fn()))
		case childDescriptor:
			errors.Warn("core text", c.desc.describe(), "text nodes cannot hold descriptors")
		}
	}
	s := sb.String()
	t.rt.Untracked(func() {
		if tx := t.nodes[id].host.(dom.Text); tx.Data() != s {
			tx.SetData(s)
		}
	})
}

func textOf(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return ""
	case fmt.Stringer:
		return x.String()
	}
	if s, ok := formatNumber(v); ok {
		return s
	}
	errors.Warn("core text", v, "not a string or number")
	return ""
}

// clearChildren unmounts every child of id.
func (t *tree) clearChildren(id nodeID) {
	kids := t.nodes[id].children
	t.nodes[id].children = nil
	for _, c := range kids {
		t.unmount(c)
	}
}
