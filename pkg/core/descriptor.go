package core

import (
	"fmt"
	"reflect"
	"runtime"
	"strconv"
	"strings"

	"github.com/go-drift/filament/pkg/dom"
	"github.com/go-drift/filament/pkg/errors"
)

// Kind identifies the variant of a Descriptor.
type Kind uint8

const (
	// KindInvalid is a descriptor built from an unusable type value. Mounting
	// it raises a RenderError.
	KindInvalid Kind = iota
	// KindElement is a host element with a literal tag.
	KindElement
	// KindDynamicTag is a host element whose tag is computed by a function.
	KindDynamicTag
	// KindComponent is a component function evaluated in its own scope.
	KindComponent
	// KindText is a host text node whose data is built from the children.
	KindText
	// KindBoundary is an error boundary.
	KindBoundary
)

func (k Kind) String() string {
	switch k {
	case KindElement:
		return "element"
	case KindDynamicTag:
		return "dynamic tag"
	case KindComponent:
		return "component"
	case KindText:
		return "text"
	case KindBoundary:
		return "boundary"
	default:
		return "invalid"
	}
}

// Tag is a literal host tag name.
type Tag string

// DynamicTag computes a host tag name. When its result changes the element is
// replaced.
type DynamicTag func() string

// Component produces renderable content: a *Descriptor, a string, a number, a
// slice of them, a function producing one, or nil for nothing.
type Component func() any

type textMarker struct{}

// TextMarker as the type argument of E creates a text node from the children.
var TextMarker = textMarker{}

// Attrs maps attribute names to values. The keys "key" and "ref" are reserved
// for identity and ref binding.
type Attrs map[string]any

// attrValue is one normalized attribute: a literal, a dynamic producer or an
// event handler.
type attrValue struct {
	literal any
	fn      func() any
	handler func(dom.Event)
	event   bool
}

type childKind uint8

const (
	childDescriptor childKind = iota + 1
	childText
	childDynamic
)

// child is one normalized entry of a children sequence.
type child struct {
	kind childKind
	desc *Descriptor
	text string
	fn   func() any
}

func (c child) key() any {
	if c.kind == childDescriptor {
		return c.desc.key
	}
	return nil
}

// Descriptor is an immutable plan for one node. Descriptors are cheap and are
// rebuilt on every render; decorators return modified copies.
type Descriptor struct {
	kind      Kind
	tag       string
	tagFn     func() string
	component Component
	// ident is the function the caller passed for a component. Components
	// match by its code, so closures built from one literal are the same
	// component; distinct keys force a replacement.
	ident     any
	attrs     []namedAttr
	attrsFn   func() Attrs
	children  []child
	key       any
	ref       *Ref
	onMount   []func()
	onUnmount []func()

	// boundary
	content []child
	onError func(error) any

	// invalid holds the rejected type value for error messages.
	invalid any
}

// E builds a descriptor. typ is a Tag or tag string, a DynamicTag or
// func() string, a Component or func() any / func() *Descriptor, or
// TextMarker. attrs is nil, Attrs, map[string]any or func() Attrs. Children
// may be descriptors, strings, numbers, slices of them, or zero-argument
// functions producing them; nil and false render nothing and every other
// value is ignored with a warning.
func E(typ any, attrs any, children ...any) *Descriptor {
	d := &Descriptor{}
	switch t := typ.(type) {
	case Tag:
		d.kind, d.tag = KindElement, strings.ToLower(string(t))
	case string:
		d.kind, d.tag = KindElement, strings.ToLower(t)
	case DynamicTag:
		d.kind, d.tagFn = KindDynamicTag, t
	case func() string:
		d.kind, d.tagFn = KindDynamicTag, t
	case Component:
		d.kind, d.component, d.ident = KindComponent, t, t
	case func() any:
		d.kind, d.component, d.ident = KindComponent, t, t
	case func() *Descriptor:
		d.kind, d.ident = KindComponent, t
		if t != nil {
			d.component = func() any { return t() }
		}
	case textMarker:
		d.kind = KindText
	default:
		d.kind, d.invalid = KindInvalid, typ
	}
	if d.kind == KindElement && !validTag(d.tag) {
		d.kind, d.invalid = KindInvalid, typ
	}
	if (d.kind == KindDynamicTag && d.tagFn == nil) || (d.kind == KindComponent && d.component == nil) {
		d.kind, d.invalid = KindInvalid, typ
	}
	d.setAttrs(attrs)
	d.children = normalizeChildren("core.E children", children)
	return d
}

// ErrorBoundary wraps content in a failure scope. When mounting or
// re-rendering content fails, the partially built subtree is discarded and the
// result of onError is shown instead until the next time something the failed
// render read changes.
func ErrorBoundary(content any, onError func(error) any) *Descriptor {
	return &Descriptor{
		kind:    KindBoundary,
		content: normalizeChildren("core.ErrorBoundary content", []any{content}),
		onError: onError,
	}
}

// Errb is shorthand for ErrorBoundary.
func Errb(content any, onError func(error) any) *Descriptor {
	return ErrorBoundary(content, onError)
}

func (d *Descriptor) setAttrs(attrs any) {
	switch a := attrs.(type) {
	case nil:
	case Attrs:
		d.attrs = d.normalizeAttrs(a)
	case map[string]any:
		d.attrs = d.normalizeAttrs(a)
	case func() Attrs:
		d.attrsFn = a
	case func() map[string]any:
		d.attrsFn = func() Attrs { return a() }
	default:
		errors.Warn("core.E attrs", attrs, "attributes must be Attrs or func() Attrs")
	}
}

func (d *Descriptor) normalizeAttrs(in map[string]any) []namedAttr {
	out := make(map[string]attrValue, len(in))
	for name, v := range in {
		switch name {
		case "key":
			d.key = usableKey(v)
			continue
		case "ref":
			if r, ok := v.(*Ref); ok {
				d.ref = r
			} else if v != nil {
				errors.Warn("core.E ref", v, "ref must be a *core.Ref")
			}
			continue
		}
		if !validAttrName(name) {
			errors.Warn("core.E attrs", name, "not a usable attribute name")
			continue
		}
		out[name] = normalizeAttr(name, v)
	}
	return sortAttrs(out)
}

// usableKey drops keys that cannot index a map.
func usableKey(k any) any {
	if k == nil {
		return nil
	}
	if !reflect.TypeOf(k).Comparable() {
		errors.Warn("core key", k, "keys must be comparable")
		return nil
	}
	return k
}

func normalizeAttr(name string, v any) attrValue {
	if isEventName(name) {
		switch h := v.(type) {
		case func(dom.Event):
			return attrValue{event: true, handler: h}
		case func():
			if h == nil {
				return attrValue{event: true}
			}
			return attrValue{event: true, handler: func(dom.Event) { h() }}
		case nil:
			return attrValue{event: true}
		}
	}
	if fn := dynamicFunc(v); fn != nil {
		return attrValue{fn: fn}
	}
	return attrValue{literal: v}
}

// dynamicFunc normalizes the zero-argument producer shapes to func() any.
func dynamicFunc(v any) func() any {
	switch f := v.(type) {
	case func() any:
		return f
	case Component:
		return f
	case func() string:
		return func() any { return f() }
	case func() bool:
		return func() any { return f() }
	case func() int:
		return func() any { return f() }
	case func() float64:
		return func() any { return f() }
	case func() *Descriptor:
		return func() any { return f() }
	case func() []any:
		return func() any { return f() }
	case func() []*Descriptor:
		return func() any { return f() }
	}
	return nil
}

// normalizeChildren resolves a children sequence once into descriptors, text
// and dynamic producers. Nested slices flatten.
func normalizeChildren(op string, values []any) []child {
	var out []child
	for _, v := range values {
		out = appendChild(op, out, v)
	}
	return out
}

func appendChild(op string, out []child, v any) []child {
	switch c := v.(type) {
	case nil:
		return out
	case bool:
		if c {
			errors.Warn(op, v, "booleans render nothing")
		}
		return out
	case *Descriptor:
		if c == nil {
			return out
		}
		return append(out, child{kind: childDescriptor, desc: c})
	case string:
		return append(out, child{kind: childText, text: c})
	case []any:
		for _, e := range c {
			out = appendChild(op, out, e)
		}
		return out
	case []*Descriptor:
		for _, e := range c {
			out = appendChild(op, out, e)
		}
		return out
	case []string:
		for _, e := range c {
			out = appendChild(op, out, e)
		}
		return out
	}
	if s, ok := formatNumber(v); ok {
		return append(out, child{kind: childText, text: s})
	}
	if fn := dynamicFunc(v); fn != nil {
		return append(out, child{kind: childDynamic, fn: fn})
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		for i := range rv.Len() {
			out = appendChild(op, out, rv.Index(i).Interface())
		}
		return out
	}
	errors.Warn(op, v, "not a descriptor, string or number")
	return out
}

func formatNumber(v any) (string, bool) {
	switch n := v.(type) {
	case int:
		return strconv.Itoa(n), true
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, uintptr:
		return fmt.Sprint(n), true
	case float32:
		return strconv.FormatFloat(float64(n), 'g', -1, 32), true
	case float64:
		return strconv.FormatFloat(n, 'g', -1, 64), true
	}
	return "", false
}

func isEventName(name string) bool {
	return len(name) > 2 && strings.HasPrefix(strings.ToLower(name), "on")
}

func eventType(name string) string {
	return strings.ToLower(name[2:])
}

// validAttrName accepts the names a host element can carry: a letter,
// underscore or colon followed by letters, digits, '-', '_', ':' or '.'.
func validAttrName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_', r == ':':
		case i > 0 && (r >= '0' && r <= '9' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return true
}

func validTag(tag string) bool {
	if tag == "" {
		return false
	}
	for i, r := range tag {
		switch {
		case r >= 'a' && r <= 'z':
		case i > 0 && (r >= '0' && r <= '9' || r == '-'):
		default:
			return false
		}
	}
	return true
}

func (d *Descriptor) clone() *Descriptor {
	c := *d
	c.onMount = append([]func(){}, d.onMount...)
	c.onUnmount = append([]func(){}, d.onUnmount...)
	return &c
}

// WithKey returns a copy of d carrying the identity key.
func (d *Descriptor) WithKey(key any) *Descriptor {
	c := d.clone()
	c.key = usableKey(key)
	return c
}

// WithRef returns a copy of d bound to r.
func (d *Descriptor) WithRef(r *Ref) *Descriptor {
	c := d.clone()
	c.ref = r
	return c
}

// OnMount returns a copy of d that runs fn once the node and everything it
// owns is attached.
func (d *Descriptor) OnMount(fn func()) *Descriptor {
	c := d.clone()
	if fn != nil {
		c.onMount = append(c.onMount, fn)
	}
	return c
}

// OnUnmount returns a copy of d that runs fn before the node is detached,
// after the hooks of everything it owns.
func (d *Descriptor) OnUnmount(fn func()) *Descriptor {
	c := d.clone()
	if fn != nil {
		c.onUnmount = append(c.onUnmount, fn)
	}
	return c
}

// Lifecycle attaches mount and unmount hooks to d. Either may be nil.
func Lifecycle(d *Descriptor, onMount, onUnmount func()) *Descriptor {
	return d.OnMount(onMount).OnUnmount(onUnmount)
}

// Kind returns the descriptor variant.
func (d *Descriptor) Kind() Kind { return d.kind }

// Tag returns the literal tag of an element descriptor.
func (d *Descriptor) Tag() string { return d.tag }

// Key returns the identity key, or nil.
func (d *Descriptor) Key() any { return d.key }

// Ref returns the bound ref handle, or nil.
func (d *Descriptor) Ref() *Ref { return d.ref }

// ChildCount returns the number of normalized children.
func (d *Descriptor) ChildCount() int { return len(d.children) }

// describe names the descriptor in error messages.
func (d *Descriptor) describe() string {
	switch d.kind {
	case KindElement:
		return "<" + d.tag + ">"
	case KindDynamicTag:
		return "dynamic tag"
	case KindComponent:
		return "component " + funcName(d.ident)
	case KindText:
		return "text"
	case KindBoundary:
		return "error boundary"
	default:
		return fmt.Sprintf("descriptor of type %T", d.invalid)
	}
}

func funcName(fn any) string {
	if fn == nil {
		return "<nil>"
	}
	pc := reflect.ValueOf(fn).Pointer()
	if f := runtime.FuncForPC(pc); f != nil {
		return f.Name()
	}
	return "<unknown>"
}

// sameFunc compares two component functions by type and code.
func sameFunc(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	return va.Type() == vb.Type() && va.Pointer() == vb.Pointer()
}

// concrete returns the element a dynamic tag descriptor currently renders.
// The key stays on the dynamic tag node.
func (d *Descriptor) concrete(tag string) *Descriptor {
	c := d.clone()
	c.kind, c.tag, c.tagFn, c.key = KindElement, strings.ToLower(tag), nil, nil
	return c
}
