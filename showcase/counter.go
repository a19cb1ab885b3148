package showcase

import (
	"github.com/go-drift/filament/pkg/core"
	"github.com/go-drift/filament/pkg/reactive"
)

var counterSteps = []Step{
	click("increment", "increment"),
	click("increment again", "increment"),
	click("increment a third time", "increment"),
	click("reset", "reset"),
	click("increment after reset", "increment"),
}

// buildCounter shows a count, a memo derived from it and a button whose
// disabled attribute follows the count.
func buildCounter(rt *reactive.Runtime) any {
	state := rt.NewStore(map[string]any{"count": 0})
	doubled := reactive.NewMemo(rt, func() int {
		return reactive.Get[int](state, "count") * 2
	})

	return demoPage("Counter",
		core.E("p", core.Attrs{"id": "count"}, "Count: ", func() any { return state.Get("count") }),
		core.E("p", core.Attrs{"id": "doubled"}, "Doubled: ", func() any { return doubled.Get() }),
		core.E("button", core.Attrs{
			"id": "increment",
			"onclick": func() {
				state.Set("count", reactive.Get[int](state, "count")+1)
			},
		}, "Increment"),
		core.E("button", core.Attrs{
			"id":       "reset",
			"disabled": func() any { return state.Get("count") == 0 },
			"onclick":  func() { state.Set("count", 0) },
		}, "Reset"),
	)
}
