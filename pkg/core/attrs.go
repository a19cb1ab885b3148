package core

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/go-drift/filament/pkg/dom"
	"github.com/go-drift/filament/pkg/errors"
	"github.com/go-drift/filament/pkg/reactive"
)

// namedAttr is one normalized attribute. Descriptors keep them sorted by
// name so host attribute order is deterministic.
type namedAttr struct {
	name string
	attrValue
}

// attrState is the per-element bookkeeping for attributes that need more
// than a one-shot write.
type attrState struct {
	el       dom.Element
	dynamic  map[string]*attrSlot
	events   map[string]*eventSlot
	whole    *reactive.Scope
	wholeFn  func() Attrs
	wholeSet map[string]struct{}
}

// attrSlot is a dynamic attribute: its own scope re-runs only that write.
type attrSlot struct {
	fn    func() any
	scope *reactive.Scope
}

// eventSlot holds the current handler behind a listener registered once.
type eventSlot struct {
	handler func(dom.Event)
	remove  func()
}

func sortAttrs(m map[string]attrValue) []namedAttr {
	out := make([]namedAttr, 0, len(m))
	for name, v := range m {
		out = append(out, namedAttr{name: name, attrValue: v})
	}
	slices.SortFunc(out, func(a, b namedAttr) int {
		switch {
		case a.name < b.name:
			return -1
		case a.name > b.name:
			return 1
		}
		return 0
	})
	return out
}

func hasAttr(attrs []namedAttr, name string) bool {
	for _, a := range attrs {
		if a.name == name {
			return true
		}
	}
	return false
}

// patchAttrs brings the element's attributes from old (nil on first build)
// to d.
func (t *tree) patchAttrs(id nodeID, old, d *Descriptor) {
	n := t.nodes[id]
	st := n.attrs
	if st == nil {
		st = &attrState{
			el:      n.host.(dom.Element),
			dynamic: make(map[string]*attrSlot),
			events:  make(map[string]*eventSlot),
		}
		n.attrs = st
	}

	if d.attrsFn != nil {
		if old != nil && old.attrsFn == nil {
			for _, a := range old.attrs {
				t.clearAttr(st, a.name)
			}
		}
		st.wholeFn = d.attrsFn
		if st.whole == nil {
			st.whole = t.attrScope(id, func() { t.applyWhole(st) })
		}
		st.whole.Run()
		return
	}

	if st.whole != nil {
		st.whole.Dispose()
		st.whole, st.wholeFn = nil, nil
		for name := range st.wholeSet {
			t.clearAttr(st, name)
		}
		st.wholeSet = nil
	}
	for _, a := range d.attrs {
		t.setAttr(id, st, a)
	}
	if old != nil {
		for _, a := range old.attrs {
			if !hasAttr(d.attrs, a.name) {
				t.clearAttr(st, a.name)
			}
		}
	}
}

func (t *tree) setAttr(id nodeID, st *attrState, a namedAttr) {
	switch {
	case a.event:
		st.dropDynamic(a.name)
		st.setHandler(t.rt, a.name, a.handler)
	case a.fn != nil:
		st.dropHandler(a.name)
		if slot, ok := st.dynamic[a.name]; ok {
			slot.fn = a.fn
			slot.scope.Run()
			return
		}
		slot := &attrSlot{fn: a.fn}
		st.dynamic[a.name] = slot
		name := a.name
		slot.scope = t.attrScope(id, func() {
			v := slot.fn()
			t.rt.Untracked(func() { st.write(name, v) })
		})
		slot.scope.Run()
	default:
		st.dropDynamic(a.name)
		st.dropHandler(a.name)
		st.write(a.name, a.literal)
	}
}

// applyWhole evaluates a func() Attrs and diffs the names it produced
// against the previous run.
func (t *tree) applyWhole(st *attrState) {
	attrs := st.wholeFn()
	next := make(map[string]attrValue, len(attrs))
	values := make(map[string]any, len(attrs))
	for name, v := range attrs {
		if name == "key" || name == "ref" {
			errors.Warn("core attrs func", name, "key and ref must be static")
			continue
		}
		if !validAttrName(name) {
			errors.Warn("core attrs func", name, "not a usable attribute name")
			continue
		}
		av := normalizeAttr(name, v)
		next[name] = av
		if av.fn != nil {
			values[name] = av.fn()
		}
	}
	t.rt.Untracked(func() {
		for name := range st.wholeSet {
			if _, ok := next[name]; !ok {
				t.clearAttr(st, name)
			}
		}
		set := make(map[string]struct{}, len(next))
		for _, a := range sortAttrs(next) {
			set[a.name] = struct{}{}
			switch {
			case a.event:
				st.setHandler(t.rt, a.name, a.handler)
			case a.fn != nil:
				st.dropHandler(a.name)
				st.write(a.name, values[a.name])
			default:
				st.dropHandler(a.name)
				st.write(a.name, a.literal)
			}
		}
		st.wholeSet = set
	})
}

// attrScope creates a scope for an attribute of element id. Failures are
// reported against the element but never discard it.
func (t *tree) attrScope(id nodeID, body func()) *reactive.Scope {
	n := t.nodes[id]
	gen := n.gen
	var s *reactive.Scope
	s = t.rt.NewScope(n.depth, func() {
		if !t.alive(id, gen) {
			return
		}
		phase := errors.PhaseUpdate
		if !t.nodes[id].realized {
			phase = errors.PhaseMount
		}
		t.operation(func() {
			t.guard(frame{id: id, phase: phase, scope: s}, body)
		})
	})
	return s
}

func (t *tree) clearAttr(st *attrState, name string) {
	if isEventName(name) {
		if _, ok := st.events[eventType(name)]; ok {
			st.dropHandler(name)
			return
		}
	}
	st.dropDynamic(name)
	st.write(name, nil)
}

func (st *attrState) dropDynamic(name string) {
	if slot, ok := st.dynamic[name]; ok {
		slot.scope.Dispose()
		delete(st.dynamic, name)
	}
}

func (st *attrState) dropHandler(name string) {
	if !isEventName(name) {
		return
	}
	evt := eventType(name)
	if slot, ok := st.events[evt]; ok {
		slot.remove()
		delete(st.events, evt)
	}
}

// setHandler swaps the handler behind the event's trampoline listener. The
// listener is registered on first use and removed when h is nil. Handlers
// run as one batch, so their writes are flushed when they return.
func (st *attrState) setHandler(rt *reactive.Runtime, name string, h func(dom.Event)) {
	evt := eventType(name)
	slot, ok := st.events[evt]
	if h == nil {
		if ok {
			slot.remove()
			delete(st.events, evt)
		}
		return
	}
	if !ok {
		slot = &eventSlot{}
		slot.remove = st.el.AddEventListener(evt, func(ev dom.Event) {
			if h := slot.handler; h != nil {
				rt.Batch(func() { h(ev) })
			}
		})
		st.events[evt] = slot
	}
	slot.handler = h
}

func (st *attrState) dispose() {
	if st.whole != nil {
		st.whole.Dispose()
	}
	for _, slot := range st.dynamic {
		slot.scope.Dispose()
	}
	for _, slot := range st.events {
		slot.remove()
	}
	clear(st.dynamic)
	clear(st.events)
}

// write applies one resolved value by attribute class.
func (st *attrState) write(name string, v any) {
	if isLiveProp(st.el, name) {
		writeProp(st.el, name, v)
		return
	}
	s, ok := attrString(name, v)
	if !ok {
		st.el.RemoveAttribute(name)
		return
	}
	if cur, present := st.el.Attribute(name); present && cur == s {
		return
	}
	st.el.SetAttribute(name, s)
}

// attrString formats a string attribute value. ok is false when the
// attribute should be removed.
func attrString(name string, v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case bool:
		return "", x
	case string:
		return x, true
	case fmt.Stringer:
		return x.String(), true
	}
	if s, ok := formatNumber(v); ok {
		return s, true
	}
	if k := reflect.ValueOf(v).Kind(); k == reflect.Func || k == reflect.Chan {
		errors.Warn("core attrs", v, "attribute "+name+" cannot hold a "+k.String())
		return "", false
	}
	return fmt.Sprint(v), true
}

func isLiveProp(el dom.Element, name string) bool {
	switch name {
	case "value", "checked", "selected":
		return true
	case "type":
		return el.TagName() == "input"
	}
	return false
}

// writeProp sets a live property, skipping the write when the element
// already holds the value (user input included).
func writeProp(el dom.Element, name string, v any) {
	var want any
	switch name {
	case "checked", "selected":
		want = truthy(v)
	default:
		s, _ := attrString(name, v)
		want = s
	}
	if cur, ok := el.Property(name); ok && reactive.Same(cur, want) {
		return
	}
	el.SetProperty(name, want)
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	}
	if s, ok := formatNumber(v); ok {
		return s != "0"
	}
	return true
}
