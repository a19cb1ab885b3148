package core

import "github.com/go-drift/filament/pkg/dom"

// Ref is a read-only observation point for the host node a descriptor
// produced. It is bound while its owning node is attached and unbound
// otherwise. At most one node owns a ref at a time; binding a second owner
// unbinds the first.
type Ref struct {
	node  dom.Node
	owner refOwner
}

type refOwner struct {
	t   *tree
	id  nodeID
	gen uint32
}

// NewRef creates an unbound ref.
func NewRef() *Ref {
	return &Ref{}
}

// Current returns the bound host node, or nil when unbound.
func (r *Ref) Current() dom.Node {
	if r == nil {
		return nil
	}
	return r.node
}

// Element returns the bound node as an element, or nil.
func (r *Ref) Element() dom.Element {
	el, _ := r.Current().(dom.Element)
	return el
}

// Bound reports whether a node is currently bound.
func (r *Ref) Bound() bool {
	return r.Current() != nil
}

func (r *Ref) bind(t *tree, id nodeID, node dom.Node) {
	if prev := r.owner; prev.t != nil && (prev.t != t || prev.id != id || prev.gen != t.nodes[id].gen) {
		prev.t.dropRef(prev.id, prev.gen, r)
	}
	r.node = node
	r.owner = refOwner{t: t, id: id, gen: t.nodes[id].gen}
}

// unbind clears the ref if it is still owned by the given node.
func (r *Ref) unbind(t *tree, id nodeID, gen uint32) {
	if r.owner.t != t || r.owner.id != id || r.owner.gen != gen {
		return
	}
	r.node = nil
	r.owner = refOwner{}
}
