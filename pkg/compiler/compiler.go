package compiler

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/vango-dev/vbind/internal/errors"
	"github.com/vango-dev/vbind/pkg/dom"
	"github.com/vango-dev/vbind/pkg/metrics"
	"github.com/vango-dev/vbind/pkg/reactive"
)

// Model is the observable model a template binds to.
type Model interface {
	reactive.Source

	// Set writes key and reports whether the value changed.
	Set(key string, value any) bool
}

// Handler handles an event bound with v-on.
type Handler func(dom.Event)

// Compiler walks a DOM subtree and binds its directives and interpolations
// to a model.
type Compiler struct {
	model    Model
	handlers map[string]Handler
	logger   *slog.Logger
	metrics  metrics.Recorder
	onError  func(error)
	watchers []*reactive.Watcher
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithHandlers sets the handler table v-on directives look methods up in.
func WithHandlers(handlers map[string]Handler) Option {
	return func(c *Compiler) {
		for name, h := range handlers {
			c.handlers[name] = h
		}
	}
}

// WithLogger sets the compiler logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Compiler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics sets the recorder for binding and event activity.
func WithMetrics(r metrics.Recorder) Option {
	return func(c *Compiler) {
		c.metrics = metrics.OrNop(r)
	}
}

// WithErrorHandler sets a callback receiving handler failures.
func WithErrorHandler(fn func(error)) Option {
	return func(c *Compiler) {
		c.onError = fn
	}
}

// New creates a compiler bound to model.
func New(model Model, opts ...Option) *Compiler {
	c := &Compiler{
		model:    model,
		handlers: make(map[string]Handler),
		logger:   slog.Default().With("component", "compiler"),
		metrics:  metrics.Nop{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Watchers returns the watchers created so far, in creation order.
func (c *Compiler) Watchers() []*reactive.Watcher {
	out := make([]*reactive.Watcher, len(c.watchers))
	copy(out, c.watchers)
	return out
}

// Compile binds every descendant of root. The root itself is not
// processed. Children are visited from a snapshot, and a child is descended
// into after its own bindings ran, so content written by v-text and v-html
// is compiled as well.
func (c *Compiler) Compile(root dom.Node) {
	for _, node := range root.Children() {
		switch node.Kind() {
		case dom.KindText:
			c.compileText(node)
		case dom.KindElement:
			c.compileElement(node)
		}

		if len(node.Children()) > 0 {
			c.Compile(node)
		}
	}
}

func (c *Compiler) compileText(node dom.Node) {
	interp, ok := FindInterpolation(node.TextContent())
	if !ok {
		return
	}
	node.SetTextContent(interp.Render(c.model.Peek(interp.Key)))
	c.watch(interp.Key, "interpolation", func(v any) {
		node.SetTextContent(interp.Render(v))
	})
}

func (c *Compiler) compileElement(node dom.Node) {
	for _, attr := range node.Attributes() {
		d, ok := ParseDirective(attr.Name)
		if !ok {
			if IsDirective(attr.Name) {
				c.logger.Debug("ignoring unknown directive", "attr", attr.Name)
			}
			continue
		}
		key := strings.TrimSpace(attr.Value)

		switch d.Kind {
		case KindText:
			c.bindText(node, key)
		case KindModel:
			c.bindModel(node, key)
		case KindHTML:
			c.bindHTML(node, key)
		case KindOn:
			c.bindOn(node, d.Event, key)
		}
	}
}

func (c *Compiler) bindText(node dom.Node, key string) {
	node.SetTextContent(Text(c.model.Peek(key)))
	c.watch(key, KindText.String(), func(v any) {
		node.SetTextContent(Text(v))
	})
}

func (c *Compiler) bindModel(node dom.Node, key string) {
	node.SetValue(Text(c.model.Peek(key)))
	c.watch(key, KindModel.String(), func(v any) {
		node.SetValue(Text(v))
	})
	node.AddEventListener("input", func(e dom.Event) {
		c.model.Set(key, node.Value())
	})
}

func (c *Compiler) bindHTML(node dom.Node, key string) {
	c.setInnerHTML(node, key, c.model.Peek(key))
	c.watch(key, KindHTML.String(), func(v any) {
		c.setInnerHTML(node, key, v)
	})
}

func (c *Compiler) setInnerHTML(node dom.Node, key string, v any) {
	if err := node.SetInnerHTML(Text(v)); err != nil {
		c.logger.Warn("v-html value is not valid markup", "key", key, "error", err)
		c.report(err)
	}
}

// bindOn registers the listener once the document is ready. The attribute
// value names a handler, optionally followed by "()".
func (c *Compiler) bindOn(node dom.Node, event, expr string) {
	method := strings.TrimSpace(strings.TrimSuffix(expr, "()"))
	c.metrics.BindingCreated(KindOn.String())

	register := func() {
		node.AddEventListener(event, func(e dom.Event) {
			c.invoke(method, e)
		})
	}
	if doc := node.OwnerDocument(); doc != nil {
		doc.OnReady(register)
	} else {
		register()
	}
}

func (c *Compiler) invoke(method string, e dom.Event) {
	start := time.Now()
	handler, ok := c.handlers[method]
	if !ok {
		err := errors.New("E010").WithDetailf("method %q for %q event", method, e.Type)
		c.logger.Warn("handler not found", "method", method, "event", e.Type)
		c.metrics.EventHandled(e.Type, time.Since(start), err)
		c.report(err)
		return
	}

	err := c.safeCall(handler, method, e)
	c.metrics.EventHandled(e.Type, time.Since(start), err)
	if err != nil {
		c.report(err)
	}
}

func (c *Compiler) safeCall(handler Handler, method string, e dom.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("handler panic",
				"panic", r,
				"method", method,
				"event", e.Type,
				"stack", string(debug.Stack()))
			err = errors.New("E011").WithDetail(fmt.Sprintf("%s: %v", method, r))
		}
	}()
	handler(e)
	return nil
}

// watch creates a watcher for key whose callback also records the update.
func (c *Compiler) watch(key, directive string, cb func(any)) {
	w := reactive.NewWatcher(c.model, key, func(v any) {
		cb(v)
		c.metrics.BindingUpdated(directive)
		c.logger.Debug("binding updated", "key", key, "directive", directive)
	})
	c.watchers = append(c.watchers, w)
	c.metrics.BindingCreated(directive)
	c.logger.Debug("binding created", "key", key, "directive", directive)
}

func (c *Compiler) report(err error) {
	if c.onError != nil {
		c.onError(err)
	}
}
