package core

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/go-drift/filament/pkg/dom/memdom"
	"github.com/go-drift/filament/pkg/errors"
	"github.com/go-drift/filament/pkg/reactive"
)

func brokenComponent(flag *reactive.Store) Component {
	return func() any {
		if flag.Get("fail") == true {
			panic(stderrors.New("Intentional error in component"))
		}
		return E("span", nil, "ok")
	}
}

func TestBoundary_CapturesAndReverts(t *testing.T) {
	h := recordErrors(t)
	rt := reactive.NewRuntime()
	flag := rt.NewStore(map[string]any{"fail": false})
	onError := func(err error) any {
		return E("p", Attrs{"class": "fallback"}, "Caught: ", err.(*errors.RenderError).Message())
	}
	root := E("div", nil,
		Errb(E(brokenComponent(flag), nil), onError),
		Errb(E("span", nil, "sibling"), nil),
	)
	c := memdom.NewDocument().Container("div")
	r, err := Mount(root, c, WithRuntime(rt))
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer r.Unmount()

	healthy := "<div><span>ok</span><span>sibling</span></div>"
	if got := memdom.InnerHTML(c); got != healthy {
		t.Fatalf("InnerHTML = %s, want %s", got, healthy)
	}

	batch(t, rt, func() { flag.Set("fail", true) })
	broken := `<div><p class="fallback">Caught: Intentional error in component</p><span>sibling</span></div>`
	if got := memdom.InnerHTML(c); got != broken {
		t.Errorf("InnerHTML = %s, want %s", got, broken)
	}
	if len(h.renders) != 1 {
		t.Fatalf("expected 1 render error, got %d", len(h.renders))
	}
	if rerr := h.renders[0]; !rerr.Captured || rerr.Phase != errors.PhaseUpdate {
		t.Errorf("got captured=%v phase=%q, want captured update", rerr.Captured, rerr.Phase)
	}

	batch(t, rt, func() { flag.Set("fail", false) })
	if got := memdom.InnerHTML(c); got != healthy {
		t.Errorf("InnerHTML after recovery = %s, want %s", got, healthy)
	}

	// The boundary keeps working after a recovery.
	batch(t, rt, func() { flag.Set("fail", true) })
	if got := memdom.InnerHTML(c); got != broken {
		t.Errorf("InnerHTML on second failure = %s, want %s", got, broken)
	}
}

func TestBoundary_CapturesMountFailure(t *testing.T) {
	recordErrors(t)
	rt := reactive.NewRuntime()
	flag := rt.NewStore(map[string]any{"fail": true})
	root := Errb(E("section", nil, E("h2", nil, "Title"), E(brokenComponent(flag), nil)), func(err error) any {
		return "fallback: " + err.(*errors.RenderError).Message()
	})
	c := memdom.NewDocument().Container("div")
	r, err := Mount(root, c, WithRuntime(rt))
	if err != nil {
		t.Fatalf("a captured failure must not fail Mount: %v", err)
	}
	defer r.Unmount()

	if got, want := memdom.InnerHTML(c), "fallback: Intentional error in component"; got != want {
		t.Errorf("InnerHTML = %q, want %q", got, want)
	}
	batch(t, rt, func() { flag.Set("fail", false) })
	if got, want := memdom.InnerHTML(c), "<section><h2>Title</h2><span>ok</span></section>"; got != want {
		t.Errorf("InnerHTML = %s, want %s", got, want)
	}
}

func TestBoundary_FallbackFailureGoesOutward(t *testing.T) {
	h := recordErrors(t)
	rt := reactive.NewRuntime()
	flag := rt.NewStore(map[string]any{"fail": false})
	inner := Errb(E(brokenComponent(flag), nil), func(error) any { panic("fallback broke") })
	outer := Errb(E("div", nil, inner), func(error) any { return E("p", nil, "outer caught") })
	c := memdom.NewDocument().Container("div")
	r, err := Mount(outer, c, WithRuntime(rt))
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer r.Unmount()

	batch(t, rt, func() { flag.Set("fail", true) })
	if got, want := memdom.InnerHTML(c), "<p>outer caught</p>"; got != want {
		t.Errorf("InnerHTML = %s, want %s", got, want)
	}
	var phases []errors.Phase
	for _, e := range h.renders {
		phases = append(phases, e.Phase)
	}
	if diff := cmp.Diff([]errors.Phase{errors.PhaseUpdate, errors.PhaseFallback}, phases); diff != "" {
		t.Errorf("reported phases (-want +got):\n%s", diff)
	}

	batch(t, rt, func() { flag.Set("fail", false) })
	if got, want := memdom.InnerHTML(c), "<div><span>ok</span></div>"; got != want {
		t.Errorf("InnerHTML after recovery = %s, want %s", got, want)
	}
}

func TestBoundary_DefaultFallback(t *testing.T) {
	recordErrors(t)
	rt := reactive.NewRuntime()
	flag := rt.NewStore(map[string]any{"fail": true})
	c := memdom.NewDocument().Container("div")
	r, err := Mount(Errb(E(brokenComponent(flag), nil), nil), c, WithRuntime(rt))
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer r.Unmount()

	want := `<p class="filament-error" role="alert">Intentional error in component</p>`
	if got := memdom.InnerHTML(c); got != want {
		t.Errorf("InnerHTML = %s, want %s", got, want)
	}
}

func TestBoundary_CustomFallbackBuilder(t *testing.T) {
	recordErrors(t)
	SetFallbackBuilder(func(err *errors.RenderError) any {
		return E("pre", nil, string(err.Phase))
	})
	defer SetFallbackBuilder(nil)

	rt := reactive.NewRuntime()
	flag := rt.NewStore(map[string]any{"fail": true})
	c := memdom.NewDocument().Container("div")
	r, err := Mount(Errb(E(brokenComponent(flag), nil), nil), c, WithRuntime(rt))
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer r.Unmount()
	if got := memdom.InnerHTML(c); got != "<pre>mount</pre>" {
		t.Errorf("InnerHTML = %s", got)
	}
}

func TestBoundary_DynamicContentRetries(t *testing.T) {
	recordErrors(t)
	rt := reactive.NewRuntime()
	state := rt.NewStore(map[string]any{"n": 1})
	content := func() any {
		n := state.Get("n").(int)
		if n%2 == 0 {
			panic("even")
		}
		return E("b", nil, n)
	}
	c := memdom.NewDocument().Container("div")
	r, err := Mount(Errb(content, func(error) any { return E("i", nil, "even") }), c, WithRuntime(rt))
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer r.Unmount()

	for n, want := range []string{"<b>1</b>", "<i>even</i>", "<b>3</b>", "<i>even</i>"} {
		if n > 0 {
			batch(t, rt, func() { state.Set("n", n+1) })
		}
		if got := memdom.InnerHTML(c); got != want {
			t.Errorf("n=%d: InnerHTML = %s, want %s", n+1, got, want)
		}
	}
}

func TestNoBoundary_UpdateFailureKeepsContent(t *testing.T) {
	h := recordErrors(t)
	rt := reactive.NewRuntime()
	flag := rt.NewStore(map[string]any{"fail": false})
	c := memdom.NewDocument().Container("div")
	r, err := Mount(E("div", nil, E(brokenComponent(flag), nil), E("i", nil, "sib")), c, WithRuntime(rt))
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer r.Unmount()

	want := "<div><span>ok</span><i>sib</i></div>"
	batch(t, rt, func() { flag.Set("fail", true) })
	if got := memdom.InnerHTML(c); got != want {
		t.Errorf("InnerHTML = %s, want %s", got, want)
	}
	if len(h.renders) != 1 || h.renders[0].Captured {
		t.Fatalf("expected 1 uncaptured render error, got %v", h.renders)
	}
	if !strings.Contains(h.renders[0].Error(), "Intentional error in component") {
		t.Errorf("unexpected message %q", h.renders[0].Error())
	}
	batch(t, rt, func() { flag.Set("fail", false) })
	if got := memdom.InnerHTML(c); got != want {
		t.Errorf("InnerHTML = %s, want %s", got, want)
	}
}

func TestNoBoundary_MountFailureRendersNothing(t *testing.T) {
	recordErrors(t)
	rt := reactive.NewRuntime()
	flag := rt.NewStore(map[string]any{"fail": true})
	mounted := 0
	comp := E(brokenComponent(flag), nil).OnMount(func() { mounted++ })
	c := memdom.NewDocument().Container("div")
	r, err := Mount(E("div", nil, comp, E("i", nil, "sib")), c, WithRuntime(rt))
	if err == nil {
		t.Fatal("expected Mount to return the uncaptured failure")
	}
	defer r.Unmount()

	if got, want := memdom.InnerHTML(c), "<div><i>sib</i></div>"; got != want {
		t.Errorf("InnerHTML = %s, want %s", got, want)
	}
	if mounted != 0 {
		t.Errorf("OnMount fired for a failed node")
	}

	batch(t, rt, func() { flag.Set("fail", false) })
	if got, want := memdom.InnerHTML(c), "<div><span>ok</span><i>sib</i></div>"; got != want {
		t.Errorf("InnerHTML after retry = %s, want %s", got, want)
	}
	if mounted != 1 {
		t.Errorf("expected OnMount once after retry, got %d", mounted)
	}
}

func TestBoundary_ObserverSeesOutcome(t *testing.T) {
	recordErrors(t)
	obs := &countingObserver{}
	rt := reactive.NewRuntime()
	flag := rt.NewStore(map[string]any{"fail": true})
	c := memdom.NewDocument().Container("div")
	r, _ := Mount(E("div", nil,
		Errb(E(brokenComponent(flag), nil), func(error) any { return "x" }),
		E(brokenComponent(flag), nil),
	), c, WithRuntime(rt), WithObserver(obs))
	defer r.Unmount()

	if diff := cmp.Diff([]string{"mount/captured", "mount/uncaptured"}, obs.failures); diff != "" {
		t.Errorf("failures (-want +got):\n%s", diff)
	}
}

func TestNoBoundary_UpdateFailureAbortsWholePass(t *testing.T) {
	h := recordErrors(t)
	rt := reactive.NewRuntime()
	state := rt.NewStore(map[string]any{"v": "v1", "broken": false})

	oldUnmounted, newMounted := 0, 0
	comp := Component(func() any {
		v := state.Get("v")
		if state.Get("broken") == true {
			return []any{
				E("p", nil, v),
				E("i", nil, "new").OnMount(func() { newMounted++ }),
				E(42, nil),
			}
		}
		return []any{E("p", nil, v), E("b", nil, "old").OnUnmount(func() { oldUnmounted++ })}
	})
	c := memdom.NewDocument().Container("div")
	r, err := Mount(E("div", nil, E(comp, nil)), c, WithRuntime(rt))
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer r.Unmount()

	before := memdom.InnerHTML(c)
	if want := "<div><p>v1</p><b>old</b></div>"; before != want {
		t.Fatalf("InnerHTML = %s, want %s", before, want)
	}
	liveBefore := r.NodeCount()

	batch(t, rt, func() {
		state.Set("v", "v2")
		state.Set("broken", true)
	})
	if got := memdom.InnerHTML(c); got != before {
		t.Errorf("InnerHTML after failed pass = %s, want %s", got, before)
	}
	if oldUnmounted != 0 || newMounted != 0 {
		t.Errorf("hooks fired for an aborted pass: unmounted %d, mounted %d", oldUnmounted, newMounted)
	}
	if got := r.NodeCount(); got != liveBefore {
		t.Errorf("NodeCount = %d, want %d", got, liveBefore)
	}
	if len(h.renders) != 1 || h.renders[0].Captured {
		t.Fatalf("expected 1 uncaptured render error, got %v", h.renders)
	}
	if !stderrors.Is(h.renders[0], errors.ErrInvalidType) {
		t.Errorf("expected ErrInvalidType, got %v", h.renders[0])
	}

	batch(t, rt, func() { state.Set("broken", false) })
	if got, want := memdom.InnerHTML(c), "<div><p>v2</p><b>old</b></div>"; got != want {
		t.Errorf("InnerHTML after recovery = %s, want %s", got, want)
	}
}

func TestNoBoundary_AbortedPassRestoresOrder(t *testing.T) {
	recordErrors(t)
	rt := reactive.NewRuntime()
	state := rt.NewStore(map[string]any{"broken": false})

	item := func(k string) *Descriptor { return E("li", Attrs{"key": k}, k) }
	c := memdom.NewDocument().Container("div")
	r, err := Mount(E("ul", nil, func() any {
		if state.Get("broken") == true {
			return []any{item("c"), item("b"), item("a"), E(brokenComponent(rt.NewStore(map[string]any{"fail": true})), nil)}
		}
		return []any{item("a"), item("b"), item("c")}
	}), c, WithRuntime(rt))
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer r.Unmount()
	first := find(t, c, "li")

	batch(t, rt, func() { state.Set("broken", true) })
	if got, want := memdom.InnerHTML(c), "<ul><li>a</li><li>b</li><li>c</li></ul>"; got != want {
		t.Errorf("InnerHTML = %s, want %s", got, want)
	}
	if find(t, c, "li") != first {
		t.Error("aborted pass replaced a surviving node")
	}
}

func TestNoBoundary_NestedFailureAbortsOuterPass(t *testing.T) {
	recordErrors(t)
	rt := reactive.NewRuntime()
	state := rt.NewStore(map[string]any{"n": 1})
	flag := rt.NewStore(map[string]any{"fail": false})

	c := memdom.NewDocument().Container("div")
	r, err := Mount(E("div", nil, func() any {
		n := state.Get("n").(int)
		if n == 1 {
			return E("p", nil, "one")
		}
		return []any{E("p", nil, "many"), E("section", nil, E(brokenComponent(flag), nil))}
	}), c, WithRuntime(rt))
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer r.Unmount()

	batch(t, rt, func() {
		state.Set("n", 2)
		flag.Set("fail", true)
	})
	if got, want := memdom.InnerHTML(c), "<div><p>one</p></div>"; got != want {
		t.Errorf("InnerHTML = %s, want %s", got, want)
	}
}
