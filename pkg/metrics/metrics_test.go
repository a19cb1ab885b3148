package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/go-drift/filament/pkg/core"
	"github.com/go-drift/filament/pkg/dom/memdom"
	"github.com/go-drift/filament/pkg/errors"
	"github.com/go-drift/filament/pkg/reactive"
)

func TestCollector_ObservesRuntimeAndTree(t *testing.T) {
	errors.SetHandler(&errors.LogHandler{Writer: &strings.Builder{}})
	defer errors.SetHandler(nil)

	reg := prometheus.NewRegistry()
	m := NewCollector(reg)
	rt := reactive.NewRuntime(reactive.WithObserver(m))
	s := rt.NewStore(map[string]any{"n": 0, "fail": false})

	broken := core.Component(func() any {
		if s.Get("fail") == true {
			panic("broken")
		}
		return "fine"
	})
	app := core.E("div", nil,
		core.E("p", nil, func() any { return s.Get("n") }),
		core.Errb(core.E(broken, nil), func(error) any { return "fallback" }),
	)
	c := memdom.NewDocument().Container("div")
	root, err := core.Mount(app, c, core.WithRuntime(rt), core.WithObserver(m))
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}

	live := testutil.ToFloat64(m.LiveNodes)
	if live == 0 || live != testutil.ToFloat64(m.NodesMountedTotal) {
		t.Errorf("live nodes = %v, mounted total = %v", live, testutil.ToFloat64(m.NodesMountedTotal))
	}
	if got := float64(root.NodeCount()); got != live {
		t.Errorf("live nodes gauge = %v, want NodeCount %v", live, got)
	}

	runs := testutil.ToFloat64(m.ScopeRunsTotal)
	if err := rt.Batch(func() { s.Set("n", 1) }); err != nil {
		t.Fatal(err)
	}
	if got := testutil.ToFloat64(m.ScopeRunsTotal) - runs; got != 1 {
		t.Errorf("scope runs for one write = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.FlushesTotal); got < 1 {
		t.Errorf("flushes = %v, want at least 1", got)
	}

	if err := rt.Batch(func() { s.Set("fail", true) }); err != nil {
		t.Fatal(err)
	}
	if got := testutil.ToFloat64(m.RenderErrorsTotal.WithLabelValues("update", OutcomeCaptured)); got != 1 {
		t.Errorf("captured update errors = %v, want 1", got)
	}

	root.Unmount()
	if got := testutil.ToFloat64(m.LiveNodes); got != 0 {
		t.Errorf("live nodes after Unmount = %v, want 0", got)
	}
}

func TestCollector_Registration(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)
	// The error vector has no series until a label set is used.
	if n, err := testutil.GatherAndCount(reg); err != nil || n != 6 {
		t.Errorf("GatherAndCount() = %d, %v; want 6 metrics", n, err)
	}

	defer func() {
		if recover() == nil {
			t.Error("expected duplicate registration to panic")
		}
	}()
	NewCollector(reg)
}

func TestCollector_Unregistered(t *testing.T) {
	m := NewCollector(nil)
	m.RenderFailed(errors.PhaseMount, false)
	if got := testutil.ToFloat64(m.RenderErrorsTotal.WithLabelValues("mount", OutcomeUncaptured)); got != 1 {
		t.Errorf("uncaptured mount errors = %v, want 1", got)
	}
}
