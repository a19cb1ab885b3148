package showcase

import (
	"github.com/go-drift/filament/pkg/core"
	"github.com/go-drift/filament/pkg/reactive"
)

var lifecycleSteps = []Step{
	click("hide the panel", "toggle"),
	click("show the panel", "toggle"),
}

// buildLifecycle toggles a panel with nested hooks and lists every firing.
func buildLifecycle(rt *reactive.Runtime) any {
	state := rt.NewStore(map[string]any{"visible": true, "log": []any{}})
	log := state.Get("log").(*reactive.Store)
	note := func(msg string) func() {
		return func() { log.Append(msg) }
	}

	panel := core.Component(func() any {
		child := core.Lifecycle(core.E("p", nil, "child"), note("child mounted"), note("child unmounted"))
		return core.Lifecycle(core.E("div", core.Attrs{"class": "panel"}, child),
			note("parent mounted"), note("parent unmounted"))
	})

	return demoPage("Lifecycle",
		core.E("button", core.Attrs{
			"id":      "toggle",
			"onclick": func() { state.Set("visible", state.Get("visible") != true) },
		}, "Toggle panel"),
		core.Show(func() bool { return state.Get("visible") == true }, core.E(panel, nil), nil),
		core.E("ol", core.Attrs{"id": "log"}, core.For(
			func() []any { return log.Items() },
			nil,
			func(entry any) *core.Descriptor { return core.E("li", nil, entry) },
		)),
	)
}
