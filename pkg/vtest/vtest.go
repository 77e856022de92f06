package vtest

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/vango-dev/vbind"
	"github.com/vango-dev/vbind/internal/errors"
	"github.com/vango-dev/vbind/pkg/dom"
)

// App is a mounted template under test.
type App struct {
	t    testing.TB
	VM   *vbind.VM
	Doc  *dom.Document
	errs []error
}

// Option configures Mount.
type Option func(*vbind.Options)

// WithMethod registers an event handler.
func WithMethod(name string, fn vbind.Method) Option {
	return func(o *vbind.Options) {
		if o.Methods == nil {
			o.Methods = make(map[string]vbind.Method)
		}
		o.Methods[name] = fn
	}
}

// WithRoot overrides the root selector (default "#app").
func WithRoot(selector string) Option {
	return func(o *vbind.Options) { o.El = selector }
}

// WithLogger sets the VM logger. Mount discards logs by default.
func WithLogger(l *slog.Logger) Option {
	return func(o *vbind.Options) { o.Logger = l }
}

// WithMaxNotifyDepth sets the notification depth limit.
func WithMaxNotifyDepth(n int) Option {
	return func(o *vbind.Options) { o.MaxNotifyDepth = n }
}

// Mount parses markup, compiles it against data and marks the document
// ready. Markup without an <html> element is wrapped by the parser.
// Any setup failure stops the test.
//
// Example:
//
//	app := vtest.Mount(t, `<div id="app">{{msg}}</div>`, map[string]any{"msg": "hi"})
func Mount(t testing.TB, markup string, data map[string]any, opts ...Option) *App {
	t.Helper()
	doc, err := dom.ParseString(markup)
	if err != nil {
		t.Fatalf("parse template: %v", err)
	}
	if data == nil {
		data = map[string]any{}
	}

	app := &App{t: t, Doc: doc}
	o := vbind.Options{
		El:       "#app",
		Document: doc,
		Data:     data,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}
	userOnError := o.OnError
	o.OnError = func(err error) {
		app.errs = append(app.errs, err)
		if userOnError != nil {
			userOnError(err)
		}
	}

	vm, err := vbind.New(o)
	if err != nil {
		t.Fatalf("mount: %v", err)
	}
	app.VM = vm
	doc.MarkReady()
	return app
}

// Find returns the first node matching selector, or fails the test.
func (a *App) Find(selector string) dom.Node {
	a.t.Helper()
	n, err := a.Doc.Query(selector)
	if err != nil {
		a.t.Fatalf("query %q: %v", selector, err)
	}
	if n == nil {
		a.t.Fatalf("no element matches %q in:\n%s", selector, truncate(a.HTML(), 500))
	}
	return n
}

// Input simulates a user edit of the matched control.
func (a *App) Input(selector, value string) {
	a.t.Helper()
	a.Doc.Input(a.Find(selector), value)
}

// Dispatch fires eventType on the matched node and returns the number of
// listeners that ran.
func (a *App) Dispatch(selector, eventType string) int {
	a.t.Helper()
	return a.Doc.Dispatch(a.Find(selector), eventType)
}

// Click fires a click and fails the test if nothing listened.
func (a *App) Click(selector string) {
	a.t.Helper()
	if a.Dispatch(selector, "click") == 0 {
		a.t.Errorf("no click listener on %q", selector)
	}
}

// Set writes a model key.
func (a *App) Set(key string, value any) {
	a.VM.Set(key, value)
}

// HTML returns the markup of the root element.
func (a *App) HTML() string {
	return dom.OuterHTML(a.VM.El())
}

// Errors returns the runtime errors reported so far.
func (a *App) Errors() []error {
	return a.errs
}

// ExpectContains asserts that the root markup contains expected.
func (a *App) ExpectContains(expected string) {
	a.t.Helper()
	html := a.HTML()
	if !strings.Contains(html, expected) {
		a.t.Errorf("expected rendered output to contain %q, got:\n%s", expected, truncate(html, 500))
	}
}

// ExpectNotContains asserts that the root markup does not contain unexpected.
func (a *App) ExpectNotContains(unexpected string) {
	a.t.Helper()
	html := a.HTML()
	if strings.Contains(html, unexpected) {
		a.t.Errorf("expected rendered output to NOT contain %q, got:\n%s", unexpected, truncate(html, 500))
	}
}

// ExpectText asserts the text content of the matched node.
func (a *App) ExpectText(selector, want string) {
	a.t.Helper()
	if got := a.Find(selector).TextContent(); got != want {
		a.t.Errorf("text of %q = %q, want %q", selector, got, want)
	}
}

// ExpectValue asserts the current value of the matched control.
func (a *App) ExpectValue(selector, want string) {
	a.t.Helper()
	if got := a.Find(selector).Value(); got != want {
		a.t.Errorf("value of %q = %q, want %q", selector, got, want)
	}
}

// ExpectAttribute asserts an attribute value of the matched node.
func (a *App) ExpectAttribute(selector, attr, want string) {
	a.t.Helper()
	got, ok := a.Find(selector).Attr(attr)
	if !ok {
		a.t.Errorf("%q has no attribute %s", selector, attr)
		return
	}
	if got != want {
		a.t.Errorf("attribute %s of %q = %q, want %q", attr, selector, got, want)
	}
}

// ExpectNoErrors fails the test if any runtime error was reported.
func (a *App) ExpectNoErrors() {
	a.t.Helper()
	for _, err := range a.errs {
		a.t.Errorf("unexpected runtime error: %v", err)
	}
}

// ExpectError asserts that a runtime error with code was reported.
func (a *App) ExpectError(code string) {
	a.t.Helper()
	for _, err := range a.errs {
		if errors.HasCode(err, code) {
			return
		}
	}
	a.t.Errorf("expected runtime error %s, got %v", code, a.errs)
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
