package memdom

import (
	"slices"
	"time"

	"github.com/go-drift/filament/pkg/dom"
	"github.com/go-drift/filament/pkg/errors"
)

// Event is a synthetic event dispatched through the in-memory tree.
type Event struct {
	typ     string
	target  dom.Element
	stopped bool
}

// NewEvent creates an event of the given type aimed at target.
func NewEvent(typ string, target dom.Element) *Event {
	return &Event{typ: typ, target: target}
}

func (e *Event) Type() string { return e.typ }

func (e *Event) Target() dom.Element { return e.target }

func (e *Event) StopPropagation() { e.stopped = true }

// Stopped reports whether a listener stopped propagation.
func (e *Event) Stopped() bool { return e.stopped }

// Dispatch delivers ev to its target and then to each ancestor until a
// listener stops propagation. A panicking listener is reported as an
// EventHandlerError and does not prevent the remaining listeners from
// running; the first such error is returned.
func Dispatch(ev *Event) error {
	var first error
	for cur := ev.target; cur != nil && !ev.stopped; cur = cur.ParentNode() {
		el, ok := cur.(*Element)
		if !ok {
			break
		}
		// Listeners added or removed during delivery take effect next event.
		for _, l := range slices.Clone(el.listeners[ev.typ]) {
			if err := invoke(l, ev, el); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}

func invoke(l *listener, ev *Event, current *Element) (err error) {
	defer func() {
		if r := recover(); r != nil {
			herr := &errors.EventHandlerError{
				Event:      ev.typ,
				Target:     current.String(),
				Recovered:  r,
				StackTrace: errors.CaptureStack(),
				Timestamp:  time.Now(),
			}
			errors.ReportEventError(herr)
			err = herr
		}
	}()
	l.fn(ev)
	return nil
}

// Click dispatches a click event at el.
func Click(el dom.Element) error {
	return Dispatch(NewEvent("click", el))
}

// SetValue writes the live value property and dispatches an input event, as
// a user typing into the field would.
func SetValue(el dom.Element, value string) error {
	el.SetProperty("value", value)
	return Dispatch(NewEvent("input", el))
}

// Toggle flips the live checked property and dispatches a change event.
func Toggle(el dom.Element) error {
	checked, _ := el.Property("checked")
	on, _ := checked.(bool)
	el.SetProperty("checked", !on)
	return Dispatch(NewEvent("change", el))
}
