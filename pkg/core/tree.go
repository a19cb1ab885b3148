package core

import (
	"github.com/go-drift/filament/pkg/dom"
	"github.com/go-drift/filament/pkg/errors"
	"github.com/go-drift/filament/pkg/reactive"
)

type nodeID int32

const noNode nodeID = -1

type nodeKind uint8

const (
	nodeFree nodeKind = iota
	nodeRoot
	nodeElement
	nodeText
	nodeComponent
	nodeDynamic
	nodeDynamicTag
	nodeTextMarker
	nodeBoundary
	nodeInvalid
)

// mountedNode is the realized counterpart of one child position. Nodes live
// in the tree's arena; parents own their children by id.
type mountedNode struct {
	gen      uint32
	kind     nodeKind
	parent   nodeID
	children []nodeID
	depth    int

	desc *Descriptor
	text string     // static text nodes
	fn   func() any // dynamic slots

	host  dom.Node // elements, text nodes and text markers
	scope *reactive.Scope
	attrs *attrState
	ref   *Ref

	realized bool // host nodes inserted (or rendering nothing)
	mounted  bool // mount hooks fired
	failed   bool // last render failed without a boundary

	// boundaries
	showingFallback  bool
	mountingFallback bool
}

func (n *mountedNode) isVirtual() bool {
	return n.host == nil
}

// tree owns every mounted node of one Root.
type tree struct {
	rt        *reactive.Runtime
	doc       dom.Document
	container dom.Element
	observer  Observer

	nodes []*mountedNode
	free  []nodeID
	root  nodeID
	live  int

	op      int
	pending []pendingAttach
	frames  []frame
	failing []*reactive.Scope

	// collecting gathers unhandled render errors of the initial mount.
	collecting bool
	errs       []error
}

type pendingAttach struct {
	id  nodeID
	gen uint32
}

func newTree(rt *reactive.Runtime, container dom.Element, obs Observer) *tree {
	return &tree{
		rt:        rt,
		doc:       container.OwnerDocument(),
		container: container,
		observer:  obs,
		root:      noNode,
	}
}

func (t *tree) alloc(kind nodeKind, parent nodeID) nodeID {
	var id nodeID
	if k := len(t.free); k > 0 {
		id = t.free[k-1]
		t.free = t.free[:k-1]
	} else {
		id = nodeID(len(t.nodes))
		t.nodes = append(t.nodes, &mountedNode{})
	}
	n := t.nodes[id]
	gen := n.gen
	*n = mountedNode{gen: gen, kind: kind, parent: parent}
	if parent != noNode {
		n.depth = t.nodes[parent].depth + 1
	}
	t.live++
	return id
}

// release returns id and its subtree to the free list. Generations are bumped
// so stale (id, gen) pairs held by closures, refs and pending hooks miss.
func (t *tree) release(id nodeID) {
	n := t.nodes[id]
	for _, c := range n.children {
		t.release(c)
	}
	if n.realized && t.observer != nil && n.kind != nodeRoot {
		t.observer.NodeUnmounted()
	}
	gen := n.gen + 1
	*n = mountedNode{gen: gen, kind: nodeFree, parent: noNode}
	t.free = append(t.free, id)
	t.live--
}

// alive reports whether id still refers to the node generation gen.
func (t *tree) alive(id nodeID, gen uint32) bool {
	return id >= 0 && int(id) < len(t.nodes) && t.nodes[id].gen == gen && t.nodes[id].kind != nodeFree
}

// insideOf reports whether id is anc or one of its descendants.
func (t *tree) insideOf(id, anc nodeID) bool {
	for cur := id; cur != noNode; cur = t.nodes[cur].parent {
		if cur == anc {
			return true
		}
	}
	return false
}

// hostParent returns the element host children of id are inserted into.
func (t *tree) hostParent(id nodeID) dom.Element {
	for p := t.nodes[id].parent; p != noNode; p = t.nodes[p].parent {
		pn := t.nodes[p]
		switch pn.kind {
		case nodeRoot:
			return t.container
		case nodeElement:
			return pn.host.(dom.Element)
		}
	}
	return t.container
}

// hostAfter returns the host node that must follow id's host nodes: the first
// host node of a later realized sibling, climbing through virtual parents.
func (t *tree) hostAfter(id nodeID) dom.Node {
	for cur := id; ; {
		n := t.nodes[cur]
		p := n.parent
		if p == noNode {
			return nil
		}
		pn := t.nodes[p]
		i := indexOf(pn.children, cur)
		for _, sib := range pn.children[i+1:] {
			if h := t.firstHost(sib); h != nil {
				return h
			}
		}
		if !pn.isVirtual() || pn.kind == nodeRoot {
			return nil
		}
		cur = p
	}
}

// firstHost returns the first inserted host node of id's subtree.
func (t *tree) firstHost(id nodeID) dom.Node {
	n := t.nodes[id]
	if !n.realized {
		return nil
	}
	if n.host != nil {
		return n.host
	}
	for _, c := range n.children {
		if h := t.firstHost(c); h != nil {
			return h
		}
	}
	return nil
}

// topHosts returns the host nodes id contributes to its host parent, in order.
func (t *tree) topHosts(id nodeID) []dom.Node {
	var out []dom.Node
	var walk func(nodeID)
	walk = func(id nodeID) {
		n := t.nodes[id]
		if n.host != nil {
			out = append(out, n.host)
			return
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(id)
	return out
}

// insert places a freshly built host node at id's position.
func (t *tree) insert(id nodeID, host dom.Node) {
	t.hostParent(id).InsertBefore(host, t.hostAfter(id))
}

func detach(host dom.Node) {
	if p := host.ParentNode(); p != nil {
		p.RemoveChild(host)
	}
}

func indexOf(ids []nodeID, id nodeID) int {
	for i, c := range ids {
		if c == id {
			return i
		}
	}
	return -1
}

// describe names a node in error messages.
func (t *tree) describe(id nodeID) string {
	n := t.nodes[id]
	switch n.kind {
	case nodeText:
		return "text"
	case nodeDynamic:
		return "dynamic slot"
	case nodeRoot:
		return "root"
	}
	if n.desc != nil {
		return n.desc.describe()
	}
	return "node"
}

func (t *tree) dropRef(id nodeID, gen uint32, r *Ref) {
	if t.alive(id, gen) && t.nodes[id].ref == r {
		t.nodes[id].ref = nil
	}
}

// hook runs a lifecycle callback, reporting a panic instead of propagating it.
func hook(op string, fn func()) {
	defer errors.Recover(op)
	fn()
}
