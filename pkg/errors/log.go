package errors

import (
	"fmt"
	"io"
	"os"
)

// LogHandler is an ErrorHandler that logs errors to stderr.
type LogHandler struct {
	// Verbose enables stack traces and coercion warnings.
	Verbose bool
	// Writer overrides the destination. Nil means os.Stderr.
	Writer io.Writer
}

func (h *LogHandler) out() io.Writer {
	if h.Writer != nil {
		return h.Writer
	}
	return os.Stderr
}

// HandleError logs a RuntimeError.
func (h *LogHandler) HandleError(err *RuntimeError) {
	if err == nil {
		return
	}
	w := h.out()
	fmt.Fprintf(w, "[filament error] %s [%s]: %v\n", err.Op, err.Kind, err.Err)
	if h.Verbose && err.StackTrace != "" {
		fmt.Fprintf(w, "Stack trace:\n%s\n", err.StackTrace)
	}
}

// HandlePanic logs a PanicError.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	w := h.out()
	if err.Op != "" {
		fmt.Fprintf(w, "[filament panic] %s: %v\n", err.Op, err.Value)
	} else {
		fmt.Fprintf(w, "[filament panic] %v\n", err.Value)
	}
	if h.Verbose && err.StackTrace != "" {
		fmt.Fprintf(w, "Stack trace:\n%s\n", err.StackTrace)
	}
}

// HandleRenderError logs a RenderError. Captured errors are tagged so they
// can be told apart from failures that aborted a pass.
func (h *LogHandler) HandleRenderError(err *RenderError) {
	if err == nil {
		return
	}
	w := h.out()
	if err.Captured {
		fmt.Fprintf(w, "[filament render error] (captured) %s\n", err.Error())
	} else {
		fmt.Fprintf(w, "[filament render error] %s\n", err.Error())
	}
	if h.Verbose && err.StackTrace != "" {
		fmt.Fprintf(w, "Stack trace:\n%s\n", err.StackTrace)
	}
}

// HandleEventError logs an EventHandlerError.
func (h *LogHandler) HandleEventError(err *EventHandlerError) {
	if err == nil {
		return
	}
	w := h.out()
	fmt.Fprintf(w, "[filament event error] %s\n", err.Error())
	if h.Verbose && err.StackTrace != "" {
		fmt.Fprintf(w, "Stack trace:\n%s\n", err.StackTrace)
	}
}

// HandleWarning logs a CoercionWarning in verbose mode only.
func (h *LogHandler) HandleWarning(warn *CoercionWarning) {
	if warn == nil || !h.Verbose {
		return
	}
	fmt.Fprintf(h.out(), "[filament warning] %s\n", warn.Error())
}
