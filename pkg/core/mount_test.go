package core

import (
	stderrors "errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/go-drift/filament/pkg/dom"
	"github.com/go-drift/filament/pkg/dom/memdom"
	"github.com/go-drift/filament/pkg/errors"
	"github.com/go-drift/filament/pkg/reactive"
)

// recordingHandler captures everything reported to the global error handler.
type recordingHandler struct {
	errors.LogHandler
	mu       sync.Mutex
	renders  []*errors.RenderError
	panics   []*errors.PanicError
	warnings []*errors.CoercionWarning
}

func (h *recordingHandler) HandleRenderError(err *errors.RenderError) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.renders = append(h.renders, err)
}

func (h *recordingHandler) HandlePanic(err *errors.PanicError) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.panics = append(h.panics, err)
}

func (h *recordingHandler) HandleWarning(w *errors.CoercionWarning) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.warnings = append(h.warnings, w)
}

func (h *recordingHandler) HandleEventError(*errors.EventHandlerError) {}

func recordErrors(t *testing.T) *recordingHandler {
	t.Helper()
	h := &recordingHandler{}
	errors.SetHandler(h)
	t.Cleanup(func() { errors.SetHandler(nil) })
	return h
}

// mountTest mounts root on a fresh runtime and document.
func mountTest(t *testing.T, root any, opts ...MountOption) (*Root, *memdom.Element, *reactive.Runtime) {
	t.Helper()
	rt := reactive.NewRuntime()
	c := memdom.NewDocument().Container("div")
	r, err := Mount(root, c, append([]MountOption{WithRuntime(rt)}, opts...)...)
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	t.Cleanup(r.Unmount)
	return r, c, rt
}

func batch(t *testing.T, rt *reactive.Runtime, fn func()) {
	t.Helper()
	if err := rt.Batch(fn); err != nil {
		t.Fatalf("Batch: %v", err)
	}
}

func find(t *testing.T, c dom.Element, tag string) *memdom.Element {
	t.Helper()
	el := memdom.Query(c, memdom.ByTag(tag))
	if el == nil {
		t.Fatalf("no <%s> under %s", tag, memdom.OuterHTML(c))
	}
	return el.(*memdom.Element)
}

func TestMount_StaticTree(t *testing.T) {
	root := E("div", Attrs{"id": "app", "class": "shell"},
		E("h1", nil, "Title"),
		"text ", 42,
		[]any{E("i", nil, "a"), E("b", nil, "b")},
	)
	r, c, _ := mountTest(t, root)

	want := `<div class="shell" id="app"><h1>Title</h1>text 42<i>a</i><b>b</b></div>`
	if got := memdom.InnerHTML(c); got != want {
		t.Errorf("InnerHTML = %s, want %s", got, want)
	}
	// div, h1, "Title", "text ", "42", i, "a", b, "b"
	if got := r.NodeCount(); got != 9 {
		t.Errorf("NodeCount = %d, want 9", got)
	}
}

func TestMount_NilContainer(t *testing.T) {
	if _, err := Mount(E("div", nil), nil); err == nil {
		t.Fatal("expected an error for a nil container")
	}
}

func TestMount_InvalidType(t *testing.T) {
	h := recordErrors(t)
	c := memdom.NewDocument().Container("div")
	r, err := Mount(E("div", nil, E(42, nil), E("span", nil, "ok")), c, WithRuntime(reactive.NewRuntime()))
	if err == nil {
		t.Fatal("expected Mount to report the invalid descriptor")
	}
	defer r.Unmount()
	if !stderrors.Is(err, errors.ErrInvalidType) {
		t.Errorf("errors.Is(err, ErrInvalidType) = false for %v", err)
	}
	var rerr *errors.RenderError
	if !stderrors.As(err, &rerr) {
		t.Fatalf("expected a *RenderError, got %T", err)
	}
	if rerr.Phase != errors.PhaseMount || rerr.Captured {
		t.Errorf("got phase %q captured %v, want mount uncaptured", rerr.Phase, rerr.Captured)
	}
	if got, want := memdom.InnerHTML(c), "<div><span>ok</span></div>"; got != want {
		t.Errorf("InnerHTML = %s, want %s", got, want)
	}
	if len(h.renders) != 1 {
		t.Errorf("expected 1 reported render error, got %d", len(h.renders))
	}
}

func TestMount_InvalidDynamicTag(t *testing.T) {
	recordErrors(t)
	c := memdom.NewDocument().Container("div")
	r, err := Mount(E(DynamicTag(func() string { return "not a tag" }), nil), c, WithRuntime(reactive.NewRuntime()))
	defer r.Unmount()
	if !stderrors.Is(err, errors.ErrInvalidType) {
		t.Errorf("expected ErrInvalidType, got %v", err)
	}
	if got := memdom.InnerHTML(c); got != "" {
		t.Errorf("InnerHTML = %q, want empty", got)
	}
}

func TestRerun_ExactlyOncePerFlush(t *testing.T) {
	runs := 0
	var state *reactive.Store
	root := func(rt *reactive.Runtime) any {
		state = rt.NewStore(map[string]any{"count": 0, "other": "x"})
		return E("p", nil, func() any {
			runs++
			return state.Get("count")
		}, " ", func() any { return state.Get("other") })
	}
	rt := reactive.NewRuntime()
	c := memdom.NewDocument().Container("div")
	r, err := Mount(root(rt), c, WithRuntime(rt))
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer r.Unmount()
	if runs != 1 {
		t.Fatalf("expected 1 initial run, got %d", runs)
	}

	batch(t, rt, func() {
		state.Set("count", 1)
		state.Set("count", 2)
		state.Set("count", 3)
	})
	if runs != 2 {
		t.Errorf("expected 2 runs after one batch, got %d", runs)
	}
	batch(t, rt, func() { state.Set("other", "y") })
	if runs != 2 {
		t.Errorf("unrelated write re-ran the count slot: %d runs", runs)
	}
	if got, want := memdom.InnerHTML(c), "<p>3 y</p>"; got != want {
		t.Errorf("InnerHTML = %s, want %s", got, want)
	}
}

func TestRerun_TextNodeIdentityKept(t *testing.T) {
	rt := reactive.NewRuntime()
	s := rt.NewStore(map[string]any{"n": 0})
	c := memdom.NewDocument().Container("div")
	r, err := Mount(E("p", nil, E(TextMarker, nil, "Count: ", func() any { return s.Get("n") })), c, WithRuntime(rt))
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer r.Unmount()

	p := find(t, c, "p")
	before := p.FirstChild()
	batch(t, rt, func() { s.Set("n", 7) })
	if p.FirstChild() != before {
		t.Error("text marker node was replaced")
	}
	if got := memdom.TextContent(p); got != "Count: 7" {
		t.Errorf("text = %q, want %q", got, "Count: 7")
	}
}

func TestUnmount_StaleWriteIsNoop(t *testing.T) {
	rt := reactive.NewRuntime()
	s := rt.NewStore(map[string]any{"n": 1})
	runs := 0
	c := memdom.NewDocument().Container("div")
	r, err := Mount(E("p", nil, func() any { runs++; return s.Get("n") }), c, WithRuntime(rt))
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}

	r.Unmount()
	if r.Mounted() {
		t.Error("expected Mounted() = false after Unmount")
	}
	if got := memdom.InnerHTML(c); got != "" {
		t.Errorf("container not emptied: %s", got)
	}
	batch(t, rt, func() { s.Set("n", 2) })
	if runs != 1 {
		t.Errorf("disposed slot re-ran: %d runs", runs)
	}
	if rt.Pending() != 0 {
		t.Errorf("expected no pending work, got %d", rt.Pending())
	}
	r.Unmount()
	if r.NodeCount() != 0 {
		t.Errorf("NodeCount after Unmount = %d, want 0", r.NodeCount())
	}
}

func TestComponent_NestedOutputShapes(t *testing.T) {
	rt := reactive.NewRuntime()
	s := rt.NewStore(map[string]any{"mode": "text"})
	view := Component(func() any {
		switch s.Get("mode") {
		case "text":
			return "plain"
		case "list":
			return []any{E("li", nil, "1"), E("li", nil, "2")}
		case "nothing":
			return nil
		}
		return E("em", nil, "desc")
	})
	c := memdom.NewDocument().Container("div")
	r, err := Mount(E("ul", nil, E(view, nil), E("li", nil, "tail")), c, WithRuntime(rt))
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer r.Unmount()

	steps := []struct {
		mode string
		want string
	}{
		{"text", "<ul>plain<li>tail</li></ul>"},
		{"list", "<ul><li>1</li><li>2</li><li>tail</li></ul>"},
		{"nothing", "<ul><li>tail</li></ul>"},
		{"desc", "<ul><em>desc</em><li>tail</li></ul>"},
		{"text", "<ul>plain<li>tail</li></ul>"},
	}
	for _, step := range steps {
		batch(t, rt, func() { s.Set("mode", step.mode) })
		if got := memdom.InnerHTML(c); got != step.want {
			t.Errorf("mode %s: InnerHTML = %s, want %s", step.mode, got, step.want)
		}
	}
}

func TestMount_ObserverCounts(t *testing.T) {
	obs := &countingObserver{}
	rt := reactive.NewRuntime()
	s := rt.NewStore(map[string]any{"on": true})
	c := memdom.NewDocument().Container("div")
	r, err := Mount(E("div", nil, Show(func() bool { return s.Get("on") == true }, E("span", nil, "x"), nil)), c,
		WithRuntime(rt), WithObserver(obs))
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	// div, dynamic slot, span, "x"
	if obs.mounted != 4 {
		t.Errorf("expected 4 mounted nodes, got %d", obs.mounted)
	}
	batch(t, rt, func() { s.Set("on", false) })
	if obs.unmounted != 2 {
		t.Errorf("expected 2 unmounted nodes, got %d", obs.unmounted)
	}
	r.Unmount()
	if obs.mounted != obs.unmounted {
		t.Errorf("mounted %d != unmounted %d after Unmount", obs.mounted, obs.unmounted)
	}
}

type countingObserver struct {
	mounted, unmounted int
	failures           []string
}

func (o *countingObserver) NodeMounted()   { o.mounted++ }
func (o *countingObserver) NodeUnmounted() { o.unmounted++ }
func (o *countingObserver) RenderFailed(phase errors.Phase, captured bool) {
	outcome := "uncaptured"
	if captured {
		outcome = "captured"
	}
	o.failures = append(o.failures, string(phase)+"/"+outcome)
}

func TestMount_WarningsForUnusableChildren(t *testing.T) {
	h := recordErrors(t)
	d := E("div", Attrs{"bad name": 1, "ok": "1"}, nil, false, true, struct{}{}, func(int) {})
	if d.ChildCount() != 0 {
		t.Errorf("expected no usable children, got %d", d.ChildCount())
	}
	var ops []string
	for _, w := range h.warnings {
		ops = append(ops, w.Op)
	}
	want := []string{"core.E attrs", "core.E children", "core.E children", "core.E children"}
	if diff := cmp.Diff(want, ops); diff != "" {
		t.Errorf("warnings mismatch (-want +got):\n%s", diff)
	}
	for _, w := range h.warnings {
		if !strings.Contains(w.Error(), "ignored") {
			t.Errorf("unexpected warning text %q", w.Error())
		}
	}
}
