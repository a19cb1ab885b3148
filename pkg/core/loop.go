package core

import (
	"context"
	"sync"

	"github.com/go-drift/filament/pkg/errors"
	"github.com/go-drift/filament/pkg/reactive"
)

// Loop serializes work onto the goroutine that owns a runtime. Other
// goroutines hand callbacks to Dispatch; the owner drains them with
// RunPending or Run. Each callback is one task: its writes flush once when
// it returns.
type Loop struct {
	rt    *reactive.Runtime
	mu    sync.Mutex
	tasks []func()
	wake  chan struct{}

	// OnNeedsFrame is called when work arrives while the loop is idle,
	// signalling a host that drives RunPending itself that it should do so.
	// It may be called from any goroutine.
	OnNeedsFrame func()
}

// NewLoop creates a loop for rt and takes over its OnSchedule hook.
func NewLoop(rt *reactive.Runtime) *Loop {
	if rt == nil {
		rt = reactive.Default()
	}
	l := &Loop{rt: rt, wake: make(chan struct{}, 1)}
	rt.OnSchedule = l.signal
	return l
}

// Runtime returns the runtime the loop drives.
func (l *Loop) Runtime() *reactive.Runtime {
	return l.rt
}

// Dispatch queues fn to run on the loop goroutine. It is safe to call from
// any goroutine. Returns false if fn is nil.
func (l *Loop) Dispatch(fn func()) bool {
	if fn == nil {
		return false
	}
	l.mu.Lock()
	l.tasks = append(l.tasks, fn)
	first := len(l.tasks) == 1
	l.mu.Unlock()
	if first {
		l.signal()
	}
	return true
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
	if l.OnNeedsFrame != nil {
		l.OnNeedsFrame()
	}
}

// NeedsWork reports whether tasks are queued or the runtime has pending
// scopes.
func (l *Loop) NeedsWork() bool {
	l.mu.Lock()
	n := len(l.tasks)
	l.mu.Unlock()
	return n > 0 || l.rt.Pending() > 0
}

// RunPending runs every queued task, including tasks queued while it runs,
// then flushes. It must be called from the loop goroutine. A panicking task
// is reported and does not stop the others. The first flush error is
// returned.
func (l *Loop) RunPending() error {
	var first error
	for {
		l.mu.Lock()
		tasks := l.tasks
		l.tasks = nil
		l.mu.Unlock()
		if len(tasks) == 0 {
			break
		}
		for _, task := range tasks {
			if err := l.run(task); err != nil && first == nil {
				first = err
			}
		}
	}
	if err := l.rt.Flush(); err != nil && first == nil {
		first = err
	}
	return first
}

func (l *Loop) run(task func()) (err error) {
	defer errors.Recover("core.Loop")
	return l.rt.Batch(task)
}

// Run drives the loop on the calling goroutine until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	for {
		// Flush errors are already reported to the global handler.
		_ = l.RunPending()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}
