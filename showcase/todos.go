package showcase

import (
	"fmt"

	"github.com/go-drift/filament/pkg/core"
	"github.com/go-drift/filament/pkg/reactive"
)

// TodoCount is the number of items the todos demo starts with.
const TodoCount = 500

var todosSteps = []Step{
	toggle("complete the first task", "todo-1"),
	toggle("complete the last task", fmt.Sprintf("todo-%d", TodoCount)),
	click("add a task", "add"),
	click("clear completed tasks", "clear"),
}

func todoItems(n int) []any {
	items := make([]any, n)
	for i := range items {
		items[i] = map[string]any{
			"id":    i + 1,
			"title": fmt.Sprintf("Task %d", i+1),
			"done":  false,
		}
	}
	return items
}

// buildTodos renders a keyed list. Completing an item re-runs only that
// item's checked and class scopes plus the remaining-count memo.
func buildTodos(rt *reactive.Runtime) any {
	state := rt.NewStore(map[string]any{"items": todoItems(TodoCount), "next": TodoCount + 1})
	list := state.Get("items").(*reactive.Store)
	remaining := reactive.NewMemo(rt, func() int {
		n := 0
		for _, item := range list.Items() {
			if item.(*reactive.Store).Get("done") != true {
				n++
			}
		}
		return n
	})

	add := func() {
		id := reactive.Get[int](state, "next")
		state.Set("next", id+1)
		list.Append(map[string]any{"id": id, "title": fmt.Sprintf("Task %d", id), "done": false})
	}
	clearDone := func() {
		for i := list.Len() - 1; i >= 0; i-- {
			if list.Index(i).(*reactive.Store).Get("done") == true {
				list.Splice(i, 1)
			}
		}
	}

	return demoPage("Todos",
		core.E("p", core.Attrs{"id": "remaining"},
			func() any { return remaining.Get() }, " of ", func() any { return list.Len() }, " remaining"),
		core.E("button", core.Attrs{"id": "add", "onclick": add}, "Add"),
		core.E("button", core.Attrs{"id": "clear", "onclick": clearDone}, "Clear completed"),
		core.E("ul", core.Attrs{"id": "todos"}, core.For(
			func() []any { return list.Items() },
			func(item any) any { return item.(*reactive.Store).Get("id") },
			func(item any) *core.Descriptor { return todoItem(item.(*reactive.Store)) },
		)),
	)
}

func todoItem(todo *reactive.Store) *core.Descriptor {
	id := todo.Get("id")
	return core.E("li", core.Attrs{
		"class": func() any {
			if todo.Get("done") == true {
				return "done"
			}
			return nil
		},
	},
		core.E("input", core.Attrs{
			"id":       fmt.Sprintf("todo-%v", id),
			"type":     "checkbox",
			"checked":  func() any { return todo.Get("done") },
			"onchange": func() { todo.Set("done", todo.Get("done") != true) },
		}),
		" ",
		func() any { return todo.Get("title") },
	)
}
