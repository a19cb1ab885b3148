package core

import (
	"time"

	"github.com/go-drift/filament/pkg/errors"
	"github.com/go-drift/filament/pkg/reactive"
)

type outcome uint8

const (
	outcomeOK outcome = iota
	outcomeFailed
	outcomeCaptured
)

// frame is one guarded evaluation on the tree's stack: the realization of a
// node or a run of one of its scopes.
type frame struct {
	id      nodeID
	phase   errors.Phase
	realize bool
	scope   *reactive.Scope
}

// escalation carries a render failure up through the frames that lie inside
// the boundary that will handle it.
type escalation struct {
	err      *errors.RenderError
	boundary nodeID
	bgen     uint32
}

// guard runs fn as frame f. A panic inside it becomes a RenderError handled
// by the outermost frame still inside the nearest boundary. Without a
// boundary it is handled by the outermost update frame, so the update pass
// is abandoned as a whole, or by f itself when no update is running.
func (t *tree) guard(f frame, fn func()) (out outcome) {
	t.frames = append(t.frames, f)
	depth := len(t.frames)
	defer func() {
		r := recover()
		t.frames = t.frames[:depth-1]
		if r == nil {
			return
		}
		esc, ok := r.(*escalation)
		if !ok {
			esc = t.escalate(f, r)
		}
		if s := f.scope; s != nil {
			t.failing = append(t.failing, s)
		} else if f.realize {
			if s := t.nodes[f.id].scope; s != nil {
				t.failing = append(t.failing, s)
			}
		}
		if esc.boundary != noNode && depth >= 2 && t.insideOf(t.frames[depth-2].id, esc.boundary) {
			panic(esc)
		}
		if esc.boundary == noNode && t.updating() {
			panic(esc)
		}
		out = t.handle(f, esc)
	}()
	fn()
	return outcomeOK
}

// updating reports whether an update frame is still on the stack.
func (t *tree) updating() bool {
	for _, f := range t.frames {
		if f.phase == errors.PhaseUpdate {
			return true
		}
	}
	return false
}

func (t *tree) escalate(f frame, r any) *escalation {
	rerr, ok := r.(*errors.RenderError)
	if !ok {
		rerr = &errors.RenderError{
			Node:       t.describe(f.id),
			Phase:      f.phase,
			Recovered:  r,
			StackTrace: errors.CaptureStack(),
			Timestamp:  time.Now(),
		}
		if err, isErr := r.(error); isErr {
			rerr.Err = err
		}
	}
	b, inFallback := t.boundaryFor(f.id)
	if inFallback {
		rerr.Phase = errors.PhaseFallback
	}
	esc := &escalation{err: rerr, boundary: b}
	if b != noNode {
		esc.bgen = t.nodes[b].gen
	}
	return esc
}

// boundaryFor returns the nearest boundary at or above id that is not busy
// mounting its own fallback. inFallback reports whether one was skipped.
func (t *tree) boundaryFor(id nodeID) (b nodeID, inFallback bool) {
	for cur := id; cur != noNode; cur = t.nodes[cur].parent {
		n := t.nodes[cur]
		if n.kind != nodeBoundary {
			continue
		}
		if n.mountingFallback {
			inFallback = true
			continue
		}
		return cur, inFallback
	}
	return noNode, inFallback
}

func (t *tree) handle(f frame, esc *escalation) outcome {
	failing := t.failing
	t.failing = nil
	if esc.boundary == noNode || !t.alive(esc.boundary, esc.bgen) {
		t.report(esc.err)
		if f.realize {
			t.discard(f.id)
		}
		return outcomeFailed
	}
	esc.err.Captured = true
	t.report(esc.err)
	t.capture(esc.boundary, esc.err, failing)
	return outcomeCaptured
}

// discard drops whatever a failed realization built, leaving id in place
// rendering nothing. Its scope survives so a later change can retry.
func (t *tree) discard(id nodeID) {
	n := t.nodes[id]
	t.clearChildren(id)
	if n.kind == nodeElement && n.host != nil {
		if n.attrs != nil {
			n.attrs.dispose()
			n.attrs = nil
		}
		detach(n.host)
		n.host = nil
	}
}

func (t *tree) report(err *errors.RenderError) {
	errors.ReportRenderError(err)
	if t.collecting && !err.Captured {
		t.errs = append(t.errs, err)
	}
	if t.observer != nil {
		t.observer.RenderFailed(err.Phase, err.Captured)
	}
}

// capture replaces the boundary's content with its fallback. The boundary
// scope adopts what the failed scopes read so it re-runs the producer as soon
// as one of those values changes.
func (t *tree) capture(b nodeID, err *errors.RenderError, failing []*reactive.Scope) {
	n := t.nodes[b]
	gen := n.gen
	for _, s := range failing {
		if s != n.scope {
			n.scope.Adopt(s)
		}
	}
	t.clearChildren(b)
	n.showingFallback = true
	n.mountingFallback = true
	defer func() {
		if t.alive(b, gen) {
			n.mountingFallback = false
		}
	}()

	// If the fallback fails, the next boundary out inherits what this one
	// was waiting on.
	t.failing = []*reactive.Scope{n.scope}
	var content any
	out := t.guard(frame{id: b, phase: errors.PhaseFallback}, func() {
		t.rt.Untracked(func() {
			if onError := n.desc.onError; onError != nil {
				content = onError(err)
			} else {
				content = GetFallbackBuilder()(err)
			}
		})
	})
	if out != outcomeOK || !t.alive(b, gen) {
		return
	}
	kids := normalizeChildren("core.ErrorBoundary fallback", []any{content})
	t.rt.Untracked(func() {
		t.reconcileChildren(b, kids)
	})
	t.failing = nil
}

// renderBoundary is the boundary scope body: it evaluates the producer and
// reconciles its output, replacing the fallback when one is showing.
func (t *tree) renderBoundary(id nodeID) {
	n := t.nodes[id]
	content := n.desc.content
	if len(content) == 1 && content[0].kind == childDynamic {
		content = normalizeChildren("core.ErrorBoundary content", []any{content[0].fn()})
	}
	t.rt.Untracked(func() {
		if n.showingFallback {
			t.clearChildren(id)
			n.showingFallback = false
		}
		t.reconcileChildren(id, content)
	})
}
