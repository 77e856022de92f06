// Package vbind binds a plain data model to an HTML subtree.
//
// New wraps Options.Data into an observable model, compiles the directives
// and {{ }} interpolations below Options.El, and keeps the DOM in sync with
// every later write:
//
//	doc, _ := dom.ParseString(`<div id="app"><p>Hello {{ name }}!</p></div>`)
//	vm, err := vbind.New(vbind.Options{
//	    El:       "#app",
//	    Document: doc,
//	    Data:     map[string]any{"name": "Ann"},
//	})
//	vm.Set("name", "Bo") // <p>Hello Bo!</p>
//
// Supported directives are v-text, v-html, v-model and v-on:<event>.
// Listeners of v-on are registered once the document is marked ready.
package vbind

import (
	"log/slog"

	"github.com/vango-dev/vbind/internal/errors"
	"github.com/vango-dev/vbind/pkg/compiler"
	"github.com/vango-dev/vbind/pkg/dom"
	"github.com/vango-dev/vbind/pkg/metrics"
	"github.com/vango-dev/vbind/pkg/reactive"
)

// VM owns one observable model and the bindings compiled against it.
// A VM is not safe for concurrent use.
type VM struct {
	el       dom.Node
	doc      *dom.Document
	data     *reactive.Object
	tracker  *reactive.Tracker
	compiler *compiler.Compiler
	logger   *slog.Logger
}

// New validates opts, makes the data observable and compiles the root
// element's descendants.
func New(opts Options) (*VM, error) {
	if opts.El == nil {
		return nil, errors.New("E001")
	}
	if opts.Data == nil {
		return nil, errors.New("E002")
	}

	el, err := resolveEl(opts.El, opts.Document)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rec := metrics.OrNop(opts.Metrics)

	vm := &VM{
		el:     el,
		doc:    el.OwnerDocument(),
		logger: logger.With("component", "vm"),
	}
	vm.tracker = reactive.NewTracker(
		reactive.WithLogger(logger.With("component", "reactive")),
		reactive.WithMaxNotifyDepth(opts.MaxNotifyDepth),
		reactive.WithErrorHandler(opts.OnError),
	)
	vm.data = reactive.NewObject(opts.Data, vm.tracker)

	handlers := make(map[string]compiler.Handler, len(opts.Methods))
	for name, m := range opts.Methods {
		if m == nil {
			continue
		}
		handlers[name] = func(e dom.Event) { m(vm, e) }
	}

	vm.compiler = compiler.New(vm.data,
		compiler.WithHandlers(handlers),
		compiler.WithLogger(logger.With("component", "compiler")),
		compiler.WithMetrics(rec),
		compiler.WithErrorHandler(opts.OnError),
	)
	vm.compiler.Compile(el)

	vm.logger.Debug("vm mounted",
		"keys", len(vm.data.Keys()),
		"bindings", len(vm.compiler.Watchers()))
	return vm, nil
}

func resolveEl(el any, doc *dom.Document) (dom.Node, error) {
	switch v := el.(type) {
	case dom.Node:
		return v, nil
	case string:
		if doc == nil {
			return nil, errors.New("E005").WithDetailf("cannot resolve %q", v)
		}
		n, err := doc.Query(v)
		if err != nil {
			return nil, errors.New("E003").Wrap(err)
		}
		if n == nil {
			return nil, errors.New("E003").WithDetailf("no element matches %q", v)
		}
		return n, nil
	default:
		return nil, errors.New("E004").WithDetailf("got %T", el)
	}
}

// Get reads a top-level property, subscribing the active subscriber.
func (vm *VM) Get(key string) any {
	return vm.data.Get(key)
}

// Peek reads a top-level property without subscribing.
func (vm *VM) Peek(key string) any {
	return vm.data.Peek(key)
}

// Set writes a top-level property and reports whether it changed.
// Bound DOM nodes are updated before Set returns.
func (vm *VM) Set(key string, value any) bool {
	return vm.data.Set(key, value)
}

// Data returns the observable root object. Nested objects are reached
// through it and keep their own slots.
func (vm *VM) Data() *reactive.Object {
	return vm.data
}

// Tracker returns the tracker shared by the model and its watchers.
func (vm *VM) Tracker() *reactive.Tracker {
	return vm.tracker
}

// El returns the compiled root element.
func (vm *VM) El() dom.Node {
	return vm.el
}

// Document returns the document owning the root element.
func (vm *VM) Document() *dom.Document {
	return vm.doc
}

// Watchers returns the bindings in creation order.
func (vm *VM) Watchers() []*reactive.Watcher {
	return vm.compiler.Watchers()
}
