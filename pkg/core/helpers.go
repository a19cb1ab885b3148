package core

// Show renders then while when reports true and otherwise when it reports
// false. Only the condition is tracked by the returned producer, so toggling
// swaps the branch and writes inside a branch leave the other untouched.
//
// Example:
//
//	core.E("div", nil, core.Show(
//	    func() bool { return state.Get("open") == true },
//	    core.E("p", nil, "open"),
//	    nil,
//	))
func Show(when func() bool, then, otherwise any) func() any {
	return func() any {
		if when() {
			return then
		}
		return otherwise
	}
}

// For renders one child per item, keyed by key so reordering the items moves
// the existing nodes instead of re-creating them. A nil key falls back to
// positional matching.
//
// Example:
//
//	core.E("ul", nil, core.For(
//	    func() []any { return todos.Items() },
//	    func(item any) any { return item.(*reactive.Store).Get("id") },
//	    func(item any) *core.Descriptor { return core.E("li", nil, item.(*reactive.Store).Get("title")) },
//	))
func For[T any](items func() []T, key func(T) any, render func(T) *Descriptor) func() any {
	return func() any {
		list := items()
		out := make([]*Descriptor, 0, len(list))
		for _, item := range list {
			d := render(item)
			if d == nil {
				continue
			}
			if key != nil {
				d = d.WithKey(key(item))
			}
			out = append(out, d)
		}
		return out
	}
}

// Fragment groups children without a host element.
func Fragment(children ...any) Component {
	return func() any { return children }
}
