package core

import (
	"sync"

	"github.com/go-drift/filament/pkg/errors"
)

// FallbackBuilder creates the content an error boundary shows when it has no
// onError callback of its own. It receives the captured render error and may
// return anything a component can.
type FallbackBuilder func(err *errors.RenderError) any

var (
	fallbackBuilder FallbackBuilder = DefaultFallbackBuilder
	fallbackMu      sync.RWMutex
)

// DebugMode controls how much the default fallback reveals. When true it
// names the failed node and phase; otherwise it shows the bare message.
var DebugMode = false

// SetDebugMode enables or disables detailed default fallbacks.
func SetDebugMode(debug bool) {
	DebugMode = debug
}

// SetFallbackBuilder configures the global fallback builder.
// Pass nil to restore the default builder.
func SetFallbackBuilder(builder FallbackBuilder) {
	fallbackMu.Lock()
	defer fallbackMu.Unlock()
	if builder == nil {
		fallbackBuilder = DefaultFallbackBuilder
	} else {
		fallbackBuilder = builder
	}
}

// GetFallbackBuilder returns the current fallback builder.
func GetFallbackBuilder() FallbackBuilder {
	fallbackMu.RLock()
	defer fallbackMu.RUnlock()
	return fallbackBuilder
}

// DefaultFallbackBuilder renders the error as an alert paragraph.
func DefaultFallbackBuilder(err *errors.RenderError) any {
	msg := err.Message()
	if DebugMode {
		msg = err.Error()
	}
	return E("p", Attrs{"class": "filament-error", "role": "alert"}, msg)
}
