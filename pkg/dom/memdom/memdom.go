// Package memdom is an in-memory implementation of the dom interfaces backed
// by golang.org/x/net/html nodes. It supports bubbling event dispatch, live
// properties and HTML serialization, which is everything the reconciler and
// its tests need.
package memdom

import (
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/go-drift/filament/pkg/dom"
)

// Document creates nodes. It keeps no reference to them: a detached subtree
// nobody holds is collected with its wrappers.
type Document struct {
	created int
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{}
}

// CreateElement creates a detached element. The tag is lower-cased.
func (d *Document) CreateElement(tag string) dom.Element {
	tag = strings.ToLower(tag)
	d.created++
	n := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	return &Element{doc: d, n: n}
}

// CreateTextNode creates a detached text node.
func (d *Document) CreateTextNode(data string) dom.Text {
	d.created++
	return &Text{doc: d, n: &html.Node{Type: html.TextNode, Data: data}}
}

// Created returns the number of nodes the document has created.
func (d *Document) Created() int {
	return d.created
}

// Container creates a detached element to mount into.
func (d *Document) Container(tag string) *Element {
	return d.CreateElement(tag).(*Element)
}

// link is a wrapper's place in the tree. It mirrors the html node's own
// links so navigation never has to map an html node back to its wrapper.
type link struct {
	parent     *Element
	prev, next dom.Node
}

func linkOf(n dom.Node) *link {
	switch t := n.(type) {
	case *Element:
		if t != nil {
			return &t.link
		}
	case *Text:
		if t != nil {
			return &t.link
		}
	}
	return nil
}

// Element is an in-memory element.
type Element struct {
	link
	doc         *Document
	n           *html.Node
	first, last dom.Node
	props       map[string]any
	listeners   map[string][]*listener
}

type listener struct {
	fn func(dom.Event)
}

var _ dom.Element = (*Element)(nil)

func (e *Element) ParentNode() dom.Element {
	if e.parent == nil {
		return nil
	}
	return e.parent
}

func (e *Element) NextSibling() dom.Node { return e.next }

func (e *Element) OwnerDocument() dom.Document { return e.doc }

func (e *Element) TagName() string { return e.n.Data }

func (e *Element) SetAttribute(name, value string) {
	for i := range e.n.Attr {
		if e.n.Attr[i].Key == name {
			e.n.Attr[i].Val = value
			return
		}
	}
	e.n.Attr = append(e.n.Attr, html.Attribute{Key: name, Val: value})
}

func (e *Element) RemoveAttribute(name string) {
	e.n.Attr = slices.DeleteFunc(e.n.Attr, func(a html.Attribute) bool {
		return a.Key == name
	})
}

func (e *Element) Attribute(name string) (string, bool) {
	for _, a := range e.n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// Attributes returns a copy of the attribute list in insertion order.
func (e *Element) Attributes() []html.Attribute {
	return slices.Clone(e.n.Attr)
}

// SetProperty writes a live property. The type property is reflected to
// the attribute; the others are not, matching browser behavior.
func (e *Element) SetProperty(name string, value any) {
	if e.props == nil {
		e.props = make(map[string]any)
	}
	e.props[name] = value
	if name == "type" {
		if s, ok := value.(string); ok {
			e.SetAttribute("type", s)
		}
	}
}

// Property reads a live property. When it was never written, value falls
// back to the value attribute and checked and selected to attribute presence.
func (e *Element) Property(name string) (any, bool) {
	if v, ok := e.props[name]; ok {
		return v, true
	}
	switch name {
	case "value", "type":
		if v, ok := e.Attribute(name); ok {
			return v, true
		}
	case "checked", "selected", "disabled":
		_, ok := e.Attribute(name)
		return ok, true
	}
	return nil, false
}

func (e *Element) AddEventListener(event string, fn func(dom.Event)) func() {
	if e.listeners == nil {
		e.listeners = make(map[string][]*listener)
	}
	l := &listener{fn: fn}
	e.listeners[event] = append(e.listeners[event], l)
	return func() {
		e.listeners[event] = slices.DeleteFunc(e.listeners[event], func(x *listener) bool {
			return x == l
		})
	}
}

// ListenerCount returns how many listeners are registered for event.
func (e *Element) ListenerCount(event string) int {
	return len(e.listeners[event])
}

func (e *Element) InsertBefore(child, before dom.Node) {
	l := linkOf(child)
	if l == nil || l == linkOf(before) {
		return
	}
	if l.parent != nil {
		l.parent.RemoveChild(child)
	}
	l.parent = e
	bl := linkOf(before)
	if bl == nil || bl.parent != e {
		e.n.AppendChild(nodeOf(child))
		l.prev = e.last
		if e.last != nil {
			linkOf(e.last).next = child
		} else {
			e.first = child
		}
		e.last = child
		return
	}
	e.n.InsertBefore(nodeOf(child), nodeOf(before))
	l.prev, l.next = bl.prev, before
	if bl.prev != nil {
		linkOf(bl.prev).next = child
	} else {
		e.first = child
	}
	bl.prev = child
}

func (e *Element) RemoveChild(child dom.Node) {
	l := linkOf(child)
	if l == nil || l.parent != e {
		return
	}
	e.n.RemoveChild(nodeOf(child))
	if l.prev != nil {
		linkOf(l.prev).next = l.next
	} else {
		e.first = l.next
	}
	if l.next != nil {
		linkOf(l.next).prev = l.prev
	} else {
		e.last = l.prev
	}
	l.parent, l.prev, l.next = nil, nil, nil
}

func (e *Element) FirstChild() dom.Node { return e.first }

// Children returns the child nodes in order.
func (e *Element) Children() []dom.Node {
	var out []dom.Node
	for c := e.first; c != nil; c = c.NextSibling() {
		out = append(out, c)
	}
	return out
}

// Node exposes the underlying html node.
func (e *Element) Node() *html.Node { return e.n }

func (e *Element) String() string {
	return "<" + e.n.Data + ">"
}

// Text is an in-memory text node.
type Text struct {
	link
	doc *Document
	n   *html.Node
}

var _ dom.Text = (*Text)(nil)

func (t *Text) ParentNode() dom.Element {
	if t.parent == nil {
		return nil
	}
	return t.parent
}

func (t *Text) NextSibling() dom.Node { return t.next }

func (t *Text) OwnerDocument() dom.Document { return t.doc }

func (t *Text) Data() string { return t.n.Data }

func (t *Text) SetData(data string) { t.n.Data = data }

func (t *Text) String() string { return "#text " + t.n.Data }

func nodeOf(n dom.Node) *html.Node {
	switch t := n.(type) {
	case *Element:
		if t != nil {
			return t.n
		}
	case *Text:
		if t != nil {
			return t.n
		}
	}
	return nil
}
