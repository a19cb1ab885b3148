package core

import (
	stderrors "errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/go-drift/filament/pkg/dom"
	"github.com/go-drift/filament/pkg/dom/memdom"
	"github.com/go-drift/filament/pkg/errors"
	"github.com/go-drift/filament/pkg/reactive"
)

func TestAttrs_LiteralFormatting(t *testing.T) {
	root := E("input", Attrs{
		"disabled":    true,
		"hidden":      false,
		"placeholder": nil,
		"maxlength":   12,
		"step":        0.5,
		"data-id":     "x",
	})
	_, c, _ := mountTest(t, root)
	want := `<input data-id="x" disabled="" maxlength="12" step="0.5"/>`
	if got := memdom.InnerHTML(c); got != want {
		t.Errorf("InnerHTML = %s, want %s", got, want)
	}
}

func TestAttrs_DynamicAttributeRunsAlone(t *testing.T) {
	rt := reactive.NewRuntime()
	s := rt.NewStore(map[string]any{"cls": "a", "text": "t"})
	classRuns, textRuns := 0, 0
	root := E("div", Attrs{"class": func() string { classRuns++; return s.Get("cls").(string) }},
		func() any { textRuns++; return s.Get("text") })
	c := memdom.NewDocument().Container("div")
	r, err := Mount(root, c, WithRuntime(rt))
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer r.Unmount()

	batch(t, rt, func() { s.Set("cls", "b") })
	if classRuns != 2 || textRuns != 1 {
		t.Errorf("got class runs %d text runs %d, want 2 and 1", classRuns, textRuns)
	}
	if got, want := memdom.InnerHTML(c), `<div class="b">t</div>`; got != want {
		t.Errorf("InnerHTML = %s, want %s", got, want)
	}
}

func TestAttrs_WholeAttrsFunc(t *testing.T) {
	rt := reactive.NewRuntime()
	s := rt.NewStore(map[string]any{"on": true})
	root := E("div", func() Attrs {
		if s.Get("on") == true {
			return Attrs{"class": "a", "title": "t"}
		}
		return Attrs{"class": "b"}
	})
	c := memdom.NewDocument().Container("div")
	r, err := Mount(root, c, WithRuntime(rt))
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer r.Unmount()

	if got, want := memdom.InnerHTML(c), `<div class="a" title="t"></div>`; got != want {
		t.Errorf("InnerHTML = %s, want %s", got, want)
	}
	batch(t, rt, func() { s.Set("on", false) })
	if got, want := memdom.InnerHTML(c), `<div class="b"></div>`; got != want {
		t.Errorf("InnerHTML = %s, want %s", got, want)
	}
}

func TestAttrs_RemovedOnPatch(t *testing.T) {
	rt := reactive.NewRuntime()
	s := rt.NewStore(map[string]any{"full": true})
	view := Component(func() any {
		if s.Get("full") == true {
			return E("a", Attrs{"href": "/x", "title": "x"}, "link")
		}
		return E("a", Attrs{"href": "/y"}, "link")
	})
	c := memdom.NewDocument().Container("div")
	r, err := Mount(E(view, nil), c, WithRuntime(rt))
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer r.Unmount()

	a := find(t, c, "a")
	batch(t, rt, func() { s.Set("full", false) })
	if find(t, c, "a") != a {
		t.Error("element was replaced instead of patched")
	}
	if got, want := memdom.InnerHTML(c), `<a href="/y">link</a>`; got != want {
		t.Errorf("InnerHTML = %s, want %s", got, want)
	}
}

func TestEvents_HandlerSwapKeepsOneListener(t *testing.T) {
	rt := reactive.NewRuntime()
	mode := rt.NewStore(map[string]any{"mode": "a"})
	var got []string
	view := Component(func() any {
		var h any
		switch mode.Get("mode") {
		case "a":
			h = func() { got = append(got, "a") }
		case "b":
			h = func(ev dom.Event) { got = append(got, "b:"+ev.Type()) }
		}
		return E("button", Attrs{"onClick": h}, "go")
	})
	c := memdom.NewDocument().Container("div")
	r, err := Mount(E(view, nil), c, WithRuntime(rt))
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer r.Unmount()

	btn := find(t, c, "button")
	click := func() {
		t.Helper()
		if err := memdom.Click(btn); err != nil {
			t.Fatalf("Click: %v", err)
		}
	}
	click()
	batch(t, rt, func() { mode.Set("mode", "b") })
	if n := btn.ListenerCount("click"); n != 1 {
		t.Errorf("expected 1 click listener after swap, got %d", n)
	}
	click()
	batch(t, rt, func() { mode.Set("mode", "none") })
	if n := btn.ListenerCount("click"); n != 0 {
		t.Errorf("expected the listener removed, got %d", n)
	}
	click()

	if diff := cmp.Diff([]string{"a", "b:click"}, got); diff != "" {
		t.Errorf("handler calls (-want +got):\n%s", diff)
	}
}

func TestEvents_HandlerWritesFlushOnReturn(t *testing.T) {
	rt := reactive.NewRuntime()
	s := rt.NewStore(map[string]any{"n": 0})
	root := E("button", Attrs{"onclick": func() {
		s.Set("n", s.Get("n").(int)+1)
		s.Set("n", s.Get("n").(int)+1)
	}}, func() any { return s.Get("n") })
	c := memdom.NewDocument().Container("div")
	r, err := Mount(root, c, WithRuntime(rt))
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer r.Unmount()

	btn := find(t, c, "button")
	if err := memdom.Click(btn); err != nil {
		t.Fatalf("Click: %v", err)
	}
	if got := memdom.TextContent(btn); got != "2" {
		t.Errorf("text = %q, want 2", got)
	}
	if rt.Pending() != 0 {
		t.Errorf("expected nothing pending, got %d", rt.Pending())
	}
}

func TestEvents_HandlerPanicFlushesThenPropagates(t *testing.T) {
	recordErrors(t)
	rt := reactive.NewRuntime()
	s := rt.NewStore(map[string]any{"n": 0})
	boom := stderrors.New("handler boom")
	root := Errb(E("button", Attrs{"onclick": func() {
		s.Set("n", 1)
		panic(boom)
	}}, func() any { return s.Get("n") }), func(error) any { return "caught" })
	c := memdom.NewDocument().Container("div")
	r, err := Mount(root, c, WithRuntime(rt))
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer r.Unmount()

	err = memdom.Click(find(t, c, "button"))
	var herr *errors.EventHandlerError
	if !stderrors.As(err, &herr) {
		t.Fatalf("expected *EventHandlerError, got %v", err)
	}
	if !stderrors.Is(err, boom) || herr.Event != "click" {
		t.Errorf("unexpected handler error %v", herr)
	}
	// Boundaries do not catch handler failures; the write still flushed.
	if got, want := memdom.InnerHTML(c), "<button>1</button>"; got != want {
		t.Errorf("InnerHTML = %s, want %s", got, want)
	}
}

func TestProps_LiveValue(t *testing.T) {
	rt := reactive.NewRuntime()
	s := rt.NewStore(map[string]any{"text": "hello", "done": false})
	var typed []string
	root := E("form", nil,
		E("input", Attrs{
			"value":   func() any { return s.Get("text") },
			"oninput": func(ev dom.Event) { v, _ := ev.Target().Property("value"); typed = append(typed, v.(string)) },
		}),
		E("input", Attrs{"type": "checkbox", "checked": func() bool { return s.Get("done") == true }}),
	)
	c := memdom.NewDocument().Container("div")
	r, err := Mount(root, c, WithRuntime(rt))
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer r.Unmount()

	inputs := memdom.QueryAll(c, memdom.ByTag("input"))
	text, box := inputs[0], inputs[1]
	if v, _ := text.Property("value"); v != "hello" {
		t.Errorf("value = %v, want hello", v)
	}
	if _, ok := text.Attribute("value"); ok {
		t.Error("value should be a property, not an attribute")
	}
	if v, _ := box.Property("type"); v != "checkbox" {
		t.Errorf("type = %v, want checkbox", v)
	}

	if err := memdom.SetValue(text, "typed"); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if diff := cmp.Diff([]string{"typed"}, typed); diff != "" {
		t.Errorf("input events (-want +got):\n%s", diff)
	}
	batch(t, rt, func() { s.Set("text", "world") })
	if v, _ := text.Property("value"); v != "world" {
		t.Errorf("value = %v, want world", v)
	}

	batch(t, rt, func() { s.Set("done", true) })
	if v, _ := box.Property("checked"); v != true {
		t.Errorf("checked = %v, want true", v)
	}
}

func TestAttrs_UnusableValueWarns(t *testing.T) {
	h := recordErrors(t)
	_, c, _ := mountTest(t, E("div", Attrs{"title": make(chan int)}))
	if got := memdom.InnerHTML(c); got != "<div></div>" {
		t.Errorf("InnerHTML = %s", got)
	}
	if len(h.warnings) != 1 || h.warnings[0].Op != "core attrs" {
		t.Errorf("expected one core attrs warning, got %v", h.warnings)
	}
}
