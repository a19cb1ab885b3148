package showcase

import (
	stderrors "errors"

	"github.com/go-drift/filament/pkg/core"
	"github.com/go-drift/filament/pkg/reactive"
)

// ErrIntentional is the failure the boundaries demo injects.
var ErrIntentional = stderrors.New("Intentional error in component")

var boundariesSteps = []Step{
	click("break the first widget", "break-first"),
	click("break the second widget", "break-second"),
	click("heal the first widget", "break-first"),
}

// buildBoundaries renders two widgets behind their own boundaries. Breaking
// one shows its fallback and leaves the other alone; healing it restores the
// normal content.
func buildBoundaries(rt *reactive.Runtime) any {
	state := rt.NewStore(map[string]any{"first": false, "second": false})

	widget := func(name string) core.Component {
		return func() any {
			if state.Get(name) == true {
				panic(ErrIntentional)
			}
			return core.E("p", core.Attrs{"class": "ok"}, name+" is healthy")
		}
	}
	fallback := func(err error) any {
		return core.E("p", core.Attrs{"class": "fallback", "role": "alert"}, "Caught: ", messageOf(err))
	}
	section := func(name string) *core.Descriptor {
		return core.E("div", core.Attrs{"id": name},
			core.Errb(core.E(widget(name), nil), fallback),
			core.E("button", core.Attrs{
				"id":      "break-" + name,
				"onclick": func() { state.Set(name, state.Get(name) != true) },
			}, "Toggle "+name),
		)
	}

	return demoPage("Error Boundaries", section("first"), section("second"))
}
