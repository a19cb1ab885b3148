package core

import "github.com/go-drift/filament/pkg/errors"

// Observer receives reconciler events for instrumentation. Calls happen on
// the goroutine driving the runtime.
type Observer interface {
	// NodeMounted is called when a node is realized.
	NodeMounted()
	// NodeUnmounted is called when a realized node is released.
	NodeUnmounted()
	// RenderFailed is called for every reported render error. captured is
	// true when a boundary handled it.
	RenderFailed(phase errors.Phase, captured bool)
}
