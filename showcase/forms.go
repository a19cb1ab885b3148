package showcase

import (
	"github.com/go-drift/filament/pkg/core"
	"github.com/go-drift/filament/pkg/dom"
	"github.com/go-drift/filament/pkg/reactive"
)

var formSteps = []Step{
	typeInto("type a name", "name", "Ada"),
	toggle("accept the terms", "agree"),
	click("submit", "submit"),
}

// buildForm binds text and checkbox inputs through their live properties.
func buildForm(rt *reactive.Runtime) any {
	state := rt.NewStore(map[string]any{"name": "", "agree": false, "submitted": ""})

	return demoPage("Form",
		core.E("input", core.Attrs{
			"id":    "name",
			"type":  "text",
			"value": func() any { return state.Get("name") },
			"oninput": func(ev dom.Event) {
				v, _ := ev.Target().Property("value")
				state.Set("name", v)
			},
		}),
		core.E("input", core.Attrs{
			"id":      "agree",
			"type":    "checkbox",
			"checked": func() any { return state.Get("agree") },
			"onchange": func(ev dom.Event) {
				v, _ := ev.Target().Property("checked")
				state.Set("agree", v == true)
			},
		}),
		core.E("p", core.Attrs{"id": "greeting"}, func() any {
			if name := reactive.Get[string](state, "name"); name != "" {
				return "Hello, " + name
			}
			return "Hello, stranger"
		}),
		core.E("button", core.Attrs{
			"id":       "submit",
			"disabled": func() any { return state.Get("agree") != true },
			"onclick": func() {
				state.Set("submitted", state.Get("name"))
			},
		}, "Submit"),
		core.E("p", core.Attrs{"id": "status"}, func() any {
			if who := reactive.Get[string](state, "submitted"); who != "" {
				return "Submitted " + who
			}
			return ""
		}),
	)
}
