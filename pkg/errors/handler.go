package errors

import (
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	// DefaultHandler receives every failure the runtime cannot return to a
	// caller: uncaptured renders, hook and effect panics, event handler panics
	// and coercion warnings. Out of the box it logs errors and drops warnings.
	DefaultHandler ErrorHandler = &LogHandler{}

	handlerMu sync.RWMutex
)

// SetHandler installs h for every mounted root in the process. Tests use it
// to record reports; nil puts a quiet LogHandler back.
func SetHandler(h ErrorHandler) {
	handlerMu.Lock()
	defer handlerMu.Unlock()
	if h == nil {
		DefaultHandler = &LogHandler{}
	} else {
		DefaultHandler = h
	}
}

// Handler returns the installed handler.
func Handler() ErrorHandler {
	handlerMu.RLock()
	defer handlerMu.RUnlock()
	return DefaultHandler
}

// Report hands a failure outside rendering, such as a flush error, to the
// installed handler. A zero Timestamp is filled in.
func Report(err *RuntimeError) {
	if err == nil {
		return
	}
	stamp(&err.Timestamp)
	if h := Handler(); h != nil {
		h.HandleError(err)
	}
}

// ReportPanic hands a recovered panic from a lifecycle hook, effect or task
// to the installed handler.
func ReportPanic(err *PanicError) {
	if err == nil {
		return
	}
	stamp(&err.Timestamp)
	if h := Handler(); h != nil {
		h.HandlePanic(err)
	}
}

// ReportRenderError records a failed mount, update or fallback render. It is
// called for captured failures too, so the handler sees what a boundary hid.
func ReportRenderError(err *RenderError) {
	if err == nil {
		return
	}
	stamp(&err.Timestamp)
	if h := Handler(); h != nil {
		h.HandleRenderError(err)
	}
}

// ReportEventError records a panic raised by a DOM event listener.
func ReportEventError(err *EventHandlerError) {
	if err == nil {
		return
	}
	stamp(&err.Timestamp)
	if h := Handler(); h != nil {
		h.HandleEventError(err)
	}
}

// Warn reports a value the runtime dropped or coerced instead of failing,
// such as an unusable child or a ref it cannot bind. op names the call site.
func Warn(op string, value any, reason string) {
	if h := Handler(); h != nil {
		h.HandleWarning(&CoercionWarning{Op: op, Value: value, Reason: reason})
	}
}

func stamp(t *time.Time) {
	if t.IsZero() {
		*t = time.Now()
	}
}

// Recover must be deferred directly. It turns a panic into a PanicError for
// op and lets the caller carry on:
//
//	defer errors.Recover("core.Loop")
func Recover(op string) {
	if r := recover(); r != nil {
		ReportPanic(&PanicError{
			Op:         op,
			Value:      r,
			StackTrace: CaptureStack(),
			Timestamp:  time.Now(),
		})
	}
}

// RecoverWithCallback reports like Recover, then passes the panic value to
// callback so the caller can turn it into a return value.
func RecoverWithCallback(op string, callback func(r any)) {
	if r := recover(); r != nil {
		ReportPanic(&PanicError{
			Op:         op,
			Value:      r,
			StackTrace: CaptureStack(),
			Timestamp:  time.Now(),
		})
		if callback != nil {
			callback(r)
		}
	}
}

// CaptureStack formats the stack of its caller's caller, one function and
// file:line pair per frame, up to 32 frames.
func CaptureStack() string {
	const maxDepth = 32
	var pcs [maxDepth]uintptr
	n := runtime.Callers(3, pcs[:])
	if n == 0 {
		return ""
	}

	frames := runtime.CallersFrames(pcs[:n])
	var sb strings.Builder
	for frame, more := frames.Next(); ; frame, more = frames.Next() {
		sb.WriteString(frame.Function + "\n\t" + frame.File + ":" + strconv.Itoa(frame.Line) + "\n")
		if !more {
			break
		}
	}
	return sb.String()
}
