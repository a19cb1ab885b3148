// Package testbed provides internal test components for the testing framework.
package testbed

import (
	"github.com/go-drift/filament/pkg/core"
	"github.com/go-drift/filament/pkg/dom"
	"github.com/go-drift/filament/pkg/reactive"
)

// Counter renders a button showing a count that increments on click.
// OnClick, when set, receives the new count.
func Counter(rt *reactive.Runtime, initial int, onClick func(count int)) *core.Descriptor {
	state := rt.NewStore(map[string]any{"count": initial})
	return core.E("button", core.Attrs{
		"id": "counter",
		"onclick": func() {
			n := state.Get("count").(int) + 1
			state.Set("count", n)
			if onClick != nil {
				onClick(n)
			}
		},
	}, func() any { return state.Get("count") })
}

// Field renders a text input mirrored into a paragraph.
func Field(rt *reactive.Runtime) *core.Descriptor {
	state := rt.NewStore(map[string]any{"text": ""})
	return core.E("label", nil,
		core.E("input", core.Attrs{
			"name":  "field",
			"value": func() any { return state.Get("text") },
			"oninput": func(ev dom.Event) {
				v, _ := ev.Target().Property("value")
				state.Set("text", v)
			},
		}),
		core.E("p", nil, func() any { return state.Get("text") }),
	)
}
