package testing

import (
	"github.com/go-drift/filament/pkg/dom/memdom"
)

// Click dispatches a click on the first element matched by finder. The
// handler's writes are flushed before Click returns; a panicking handler is
// returned as an *errors.EventHandlerError.
func (t *Tester) Click(finder Finder) error {
	el, err := t.first("Click", finder)
	if err != nil {
		return err
	}
	return memdom.Click(el)
}

// Input sets the live value of the first element matched by finder and
// dispatches an input event, as typing would.
func (t *Tester) Input(finder Finder, value string) error {
	el, err := t.first("Input", finder)
	if err != nil {
		return err
	}
	return memdom.SetValue(el, value)
}

// Toggle flips the checked property of the first element matched by finder
// and dispatches a change event.
func (t *Tester) Toggle(finder Finder) error {
	el, err := t.first("Toggle", finder)
	if err != nil {
		return err
	}
	return memdom.Toggle(el)
}

// Fire sends an event of the given type to the first element matched by
// finder.
func (t *Tester) Fire(finder Finder, event string) error {
	el, err := t.first("Fire", finder)
	if err != nil {
		return err
	}
	return memdom.Dispatch(memdom.NewEvent(event, el))
}
