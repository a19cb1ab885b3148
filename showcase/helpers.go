package showcase

import (
	stderrors "errors"
	"fmt"

	"github.com/go-drift/filament/pkg/core"
	"github.com/go-drift/filament/pkg/dom"
	"github.com/go-drift/filament/pkg/dom/memdom"
	"github.com/go-drift/filament/pkg/errors"
)

// Step is one scripted interaction with a mounted demo.
type Step struct {
	Name string
	Run  func(s *Session) error
}

// demoPage wraps demo content in a titled section.
func demoPage(title string, children ...any) *core.Descriptor {
	return core.E("section", core.Attrs{"class": "demo"}, core.E("h1", nil, title), children)
}

// find resolves the element with the given id or fails the step.
func find(s *Session, id string) (dom.Element, error) {
	el := memdom.Query(s.container, memdom.ByID(id))
	if el == nil {
		return nil, fmt.Errorf("no element with id %q", id)
	}
	return el, nil
}

// click returns a step that clicks the element with the given id.
func click(name, id string) Step {
	return Step{Name: name, Run: func(s *Session) error {
		el, err := find(s, id)
		if err != nil {
			return err
		}
		return memdom.Click(el)
	}}
}

// typeInto returns a step that types value into the input with the given id.
func typeInto(name, id, value string) Step {
	return Step{Name: name, Run: func(s *Session) error {
		el, err := find(s, id)
		if err != nil {
			return err
		}
		return memdom.SetValue(el, value)
	}}
}

// toggle returns a step that flips the checkbox with the given id.
func toggle(name, id string) Step {
	return Step{Name: name, Run: func(s *Session) error {
		el, err := find(s, id)
		if err != nil {
			return err
		}
		return memdom.Toggle(el)
	}}
}

// messageOf extracts the bare failure message from a boundary error.
func messageOf(err error) string {
	var rerr *errors.RenderError
	if stderrors.As(err, &rerr) {
		return rerr.Message()
	}
	return err.Error()
}
