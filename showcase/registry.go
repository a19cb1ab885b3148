// Package showcase contains demo scenarios that exercise every part of the
// filament runtime: reactive stores and memos, keyed lists, dynamic tags,
// ref swaps, lifecycle hooks, error boundaries and form inputs.
//
// Each Demo builds its tree on a fresh runtime and carries a scripted list of
// interactions, so the same scenario can be rendered by the command line tool
// and checked by tests.
package showcase

import "github.com/go-drift/filament/pkg/reactive"

// Demo represents a showcase scenario.
type Demo struct {
	Name     string
	Title    string
	Subtitle string
	Category string
	// Build creates the demo's state on rt and returns its root content.
	Build func(rt *reactive.Runtime) any
	// Steps are the scripted interactions, run in order.
	Steps []Step
}

// Category constants for demo organization.
const (
	CategoryState     = "state"
	CategoryLifecycle = "lifecycle"
	CategoryErrors    = "errors"
)

// demos is the registry of all showcase scenarios.
// Add new demos here to make them available to the CLI and the golden tests.
var demos = []Demo{
	{"counter", "Counter", "Store writes, memos and dynamic attributes", CategoryState, buildCounter, counterSteps},
	{"todos", "Todos", "A keyed list of 500 items", CategoryState, buildTodos, todosSteps},
	{"form", "Form", "Live value and checked properties", CategoryState, buildForm, formSteps},
	{"dynamic-tag", "Dynamic Tag", "Tag changes replace the element", CategoryLifecycle, buildDynamicTag, dynamicTagSteps},
	{"ref-swap", "Ref Swap", "Moving a ref keeps the node", CategoryLifecycle, buildRefSwap, refSwapSteps},
	{"lifecycle", "Lifecycle", "Mount and unmount hook ordering", CategoryLifecycle, buildLifecycle, lifecycleSteps},
	{"boundaries", "Error Boundaries", "Render failures stay inside their boundary", CategoryErrors, buildBoundaries, boundariesSteps},
}

// Demos returns every registered demo in registry order.
func Demos() []Demo {
	out := make([]Demo, len(demos))
	copy(out, demos)
	return out
}

// Lookup returns the demo with the given name.
func Lookup(name string) (Demo, bool) {
	for _, d := range demos {
		if d.Name == name {
			return d, true
		}
	}
	return Demo{}, false
}

// Names returns the registered demo names in registry order.
func Names() []string {
	names := make([]string, len(demos))
	for i, d := range demos {
		names[i] = d.Name
	}
	return names
}
