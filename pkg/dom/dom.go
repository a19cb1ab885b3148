// Package dom defines the host document interfaces the reconciler drives.
//
// The reconciler never inspects host nodes beyond these methods. Package
// memdom implements them in memory.
package dom

// Node is any node in the host document tree.
type Node interface {
	// ParentNode returns the containing element, or nil when detached.
	ParentNode() Element
	// NextSibling returns the following sibling, or nil.
	NextSibling() Node
	// OwnerDocument returns the document that created the node.
	OwnerDocument() Document
}

// Element is a host element.
type Element interface {
	Node

	// TagName returns the lower-case tag name.
	TagName() string

	SetAttribute(name, value string)
	RemoveAttribute(name string)
	// Attribute returns the attribute value and whether it is present.
	Attribute(name string) (string, bool)

	// SetProperty writes a live property such as value or checked. Live
	// properties can diverge from the matching attribute after user input.
	SetProperty(name string, value any)
	// Property reads a live property; ok is false when it has no value.
	Property(name string) (value any, ok bool)

	// AddEventListener registers fn for events of the given type and
	// returns a function that removes it.
	AddEventListener(event string, fn func(Event)) (remove func())

	// InsertBefore inserts child before the reference node. A nil reference
	// appends. A child that is already attached is moved.
	InsertBefore(child, before Node)
	// RemoveChild detaches child. Removing a node that is not a child is a no-op.
	RemoveChild(child Node)
	// FirstChild returns the first child node, or nil.
	FirstChild() Node
}

// Text is a host text node.
type Text interface {
	Node
	Data() string
	SetData(data string)
}

// Document creates host nodes.
type Document interface {
	CreateElement(tag string) Element
	CreateTextNode(data string) Text
}

// Event is a dispatched host event.
type Event interface {
	// Type returns the event type, such as "click" or "input".
	Type() string
	// Target returns the element the event was dispatched to.
	Target() Element
	// StopPropagation prevents the event from bubbling further.
	StopPropagation()
}
