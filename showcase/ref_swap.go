package showcase

import (
	"fmt"

	"github.com/go-drift/filament/pkg/core"
	"github.com/go-drift/filament/pkg/dom"
	"github.com/go-drift/filament/pkg/reactive"
)

var refSwapSteps = []Step{
	click("move the ref", "swap"),
	click("inspect the refs", "check"),
}

// buildRefSwap moves one input between two refs. The input is never
// re-created, so both refs observe the same host node in turn.
func buildRefSwap(rt *reactive.Runtime) any {
	refs := [2]*core.Ref{core.NewRef(), core.NewRef()}
	names := [2]string{"A", "B"}
	state := rt.NewStore(map[string]any{"slot": 0, "report": ""})
	var origin dom.Node

	field := func() any {
		slot := reactive.Get[int](state, "slot")
		return core.E("input", core.Attrs{"id": "field", "type": "text", "ref": refs[slot]}).
			OnMount(func() { origin = refs[slot].Current() })
	}
	status := func(r *core.Ref) string {
		if r.Bound() {
			return "bound"
		}
		return "unbound"
	}
	check := func() {
		slot := reactive.Get[int](state, "slot")
		same := "no"
		if origin != nil && refs[slot].Current() == origin {
			same = "yes"
		}
		state.Set("report", fmt.Sprintf("A: %s, B: %s, same node: %s", status(refs[0]), status(refs[1]), same))
	}

	return demoPage("Ref Swap",
		field,
		core.E("p", core.Attrs{"id": "bound"}, "Bound to ", func() any {
			return names[reactive.Get[int](state, "slot")]
		}),
		core.E("p", core.Attrs{"id": "report"}, func() any { return state.Get("report") }),
		core.E("button", core.Attrs{
			"id":      "swap",
			"onclick": func() { state.Set("slot", 1-reactive.Get[int](state, "slot")) },
		}, "Swap ref"),
		core.E("button", core.Attrs{"id": "check", "onclick": check}, "Check refs"),
	)
}
