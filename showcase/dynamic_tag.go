package showcase

import (
	"github.com/go-drift/filament/pkg/core"
	"github.com/go-drift/filament/pkg/reactive"
)

var dynamicTagSteps = []Step{
	click("switch to span", "swap-tag"),
}

// buildDynamicTag renders an element whose tag comes from the store. A tag
// change replaces the element and rebinds its ref.
func buildDynamicTag(rt *reactive.Runtime) any {
	state := rt.NewStore(map[string]any{"tag": "div"})
	ref := core.NewRef()

	return demoPage("Dynamic Tag",
		core.E(core.DynamicTag(func() string { return reactive.Get[string](state, "tag") }),
			core.Attrs{"id": "target", "class": "box", "ref": ref},
			"Rendered as ", func() any { return state.Get("tag") },
		),
		core.E("button", core.Attrs{
			"id": "swap-tag",
			"onclick": func() {
				if state.Get("tag") == "div" {
					state.Set("tag", "span")
				} else {
					state.Set("tag", "div")
				}
			},
		}, "Swap tag"),
	)
}
