package vbind

import (
	"log/slog"

	"github.com/vango-dev/vbind/pkg/dom"
	"github.com/vango-dev/vbind/pkg/metrics"
)

// Method is an event handler registered under a name that v-on directives
// refer to.
type Method func(vm *VM, e dom.Event)

// Options configures a VM.
type Options struct {
	// El is the root element to compile: a dom.Node, or a selector string
	// resolved against Document. Required.
	El any

	// Data is the initial model. Every nested map[string]any becomes
	// observable. Required.
	Data map[string]any

	// Document resolves a selector El. Ignored when El is a node.
	Document *dom.Document

	// Methods is the handler table for v-on directives.
	Methods map[string]Method

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Metrics receives binding and event activity. Defaults to a no-op.
	Metrics metrics.Recorder

	// MaxNotifyDepth bounds nested notifications.
	// 0 uses the default of 100; a negative value disables the guard.
	MaxNotifyDepth int

	// OnError receives recovered runtime failures: missing or panicking
	// handlers, panicking subscribers and tripped cycle guards.
	OnError func(error)
}
