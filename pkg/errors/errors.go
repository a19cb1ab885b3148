// Package errors provides structured error reporting for the filament runtime.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindRender indicates a failure while evaluating a component or dynamic value.
	KindRender
	// KindEvent indicates a failure inside a user event callback.
	KindEvent
	// KindCoercion indicates an unusable value that was normalized away.
	KindCoercion
	// KindScheduler indicates a flush that could not settle.
	KindScheduler
	// KindConfig indicates an invalid runtime configuration.
	KindConfig
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindRender:
		return "render"
	case KindEvent:
		return "event"
	case KindCoercion:
		return "coercion"
	case KindScheduler:
		return "scheduler"
	case KindConfig:
		return "config"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

var (
	// ErrFlushLimit is reported when scopes keep dirtying each other past the
	// configured number of flush passes.
	ErrFlushLimit = errors.New("flush did not settle")
	// ErrInvalidType is the cause of a RenderError raised for a descriptor
	// whose type is neither a tag, a dynamic tag, a component, nor the text marker.
	ErrInvalidType = errors.New("unusable descriptor type")
)

// RuntimeError represents a structured error raised by the runtime itself.
type RuntimeError struct {
	// Op is the operation that failed (e.g., "reactive.Flush").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "core.onMount").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// Phase names the reconciler step during which a render failed.
type Phase string

const (
	// PhaseMount is the first realization of a node.
	PhaseMount Phase = "mount"
	// PhaseUpdate is a reactive re-run of an existing node.
	PhaseUpdate Phase = "update"
	// PhaseFallback is the mount of an error boundary's replacement content.
	PhaseFallback Phase = "fallback"
)

// RenderError represents a failure while evaluating a component function or
// a dynamic value function.
type RenderError struct {
	// Node describes what was being rendered (e.g., "<div>", "component main.Counter").
	Node string
	// Phase is the reconciler step that failed.
	Phase Phase
	// Recovered is the panic value (nil for regular errors).
	Recovered any
	// Err is the underlying error. Panics with an error value set both fields.
	Err error
	// Captured reports whether an error boundary handled the failure.
	Captured bool
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *RenderError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("render %s of %s: %v", e.Phase, e.Node, e.Err)
	case e.Recovered != nil:
		return fmt.Sprintf("render %s of %s: %v", e.Phase, e.Node, e.Recovered)
	default:
		return fmt.Sprintf("render %s of %s: unknown error", e.Phase, e.Node)
	}
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Message returns the bare failure message without node or phase context.
// Fallback content usually displays this.
func (e *RenderError) Message() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Recovered != nil {
		return fmt.Sprint(e.Recovered)
	}
	return "unknown error"
}

// EventHandlerError represents a panic inside a user event callback.
type EventHandlerError struct {
	// Event is the event type being dispatched (e.g., "click").
	Event string
	// Target describes the node the event was dispatched to.
	Target string
	// Recovered is the panic value.
	Recovered any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *EventHandlerError) Error() string {
	return fmt.Sprintf("%s handler on %s: %v", e.Event, e.Target, e.Recovered)
}

func (e *EventHandlerError) Unwrap() error {
	if err, ok := e.Recovered.(error); ok {
		return err
	}
	return nil
}

// CoercionWarning records a value that could not be used and was normalized
// to an empty or ignored result. It never halts rendering.
type CoercionWarning struct {
	// Op is where the value was encountered (e.g., "core.E children").
	Op string
	// Value is the offending value.
	Value any
	// Reason explains why the value was ignored.
	Reason string
}

func (w *CoercionWarning) Error() string {
	return fmt.Sprintf("%s: ignored %T: %s", w.Op, w.Value, w.Reason)
}

// ErrorHandler is where failures go once no caller can receive them. The
// runtime calls it synchronously on the goroutine that drives the reactive
// runtime, so an implementation must not block.
type ErrorHandler interface {
	// HandleError gets failures outside rendering, such as flush errors.
	HandleError(err *RuntimeError)
	// HandlePanic gets panics recovered from hooks, effects and loop tasks.
	HandlePanic(err *PanicError)
	// HandleRenderError is called when a render fails, whether or not a
	// boundary captured it.
	HandleRenderError(err *RenderError)
	// HandleEventError is called when an event handler panics.
	HandleEventError(err *EventHandlerError)
	// HandleWarning is called for non-fatal coercions.
	HandleWarning(w *CoercionWarning)
}
