package compiler

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/vbind/internal/errors"
	"github.com/vango-dev/vbind/pkg/dom"
	"github.com/vango-dev/vbind/pkg/reactive"
)

// spyRecorder records metric calls in order.
type spyRecorder struct {
	mu      sync.Mutex
	created []string
	updated []string
	events  []string
}

func (s *spyRecorder) BindingCreated(d string) {
	s.mu.Lock()
	s.created = append(s.created, d)
	s.mu.Unlock()
}
func (s *spyRecorder) BindingUpdated(d string) {
	s.mu.Lock()
	s.updated = append(s.updated, d)
	s.mu.Unlock()
}
func (s *spyRecorder) EventHandled(e string, _ time.Duration, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	status := "ok"
	if err != nil {
		status = "error"
	}
	s.events = append(s.events, e+":"+status)
}
func (s *spyRecorder) SessionOpened() {}
func (s *spyRecorder) SessionClosed() {}

type fixture struct {
	doc   *dom.Document
	app   dom.Node
	model *reactive.Object
	c     *Compiler
	spy   *spyRecorder
	errs  []error
}

func compile(t *testing.T, markup string, data map[string]any, opts ...Option) *fixture {
	t.Helper()
	doc, err := dom.ParseString(`<div id="app">` + markup + `</div>`)
	require.NoError(t, err)
	app, err := doc.Query("#app")
	require.NoError(t, err)
	require.NotNil(t, app)

	f := &fixture{
		doc:   doc,
		app:   app,
		model: reactive.NewObject(data, reactive.NewTracker()),
		spy:   &spyRecorder{},
	}
	opts = append([]Option{
		WithMetrics(f.spy),
		WithErrorHandler(func(err error) { f.errs = append(f.errs, err) }),
	}, opts...)
	f.c = New(f.model, opts...)
	f.c.Compile(app)
	return f
}

func (f *fixture) query(t *testing.T, selector string) dom.Node {
	t.Helper()
	n, err := f.doc.Query(selector)
	require.NoError(t, err)
	require.NotNil(t, n)
	return n
}

func TestInterpolationBinding(t *testing.T) {
	f := compile(t, `<p id="p">Hello {{ name }}!</p>`, map[string]any{"name": "Ann"})
	p := f.query(t, "#p")
	assert.Equal(t, "Hello Ann!", p.TextContent())

	f.model.Set("name", "Bo")
	assert.Equal(t, "Hello Bo!", p.TextContent())

	f.model.Set("name", "Cy")
	assert.Equal(t, "Hello Cy!", p.TextContent(), "replacement always starts from the original template")
	assert.Equal(t, []string{"interpolation"}, f.spy.created)
	assert.Equal(t, []string{"interpolation", "interpolation"}, f.spy.updated)
}

func TestSecondPlaceholderStaysLiteral(t *testing.T) {
	f := compile(t, `<p id="p">{{ a }} and {{ b }}</p>`, map[string]any{"a": 1, "b": 2})
	p := f.query(t, "#p")
	assert.Equal(t, "1 and {{ b }}", p.TextContent())

	f.model.Set("b", 3)
	assert.Equal(t, "1 and {{ b }}", p.TextContent())
	f.model.Set("a", 5)
	assert.Equal(t, "5 and {{ b }}", p.TextContent())
	assert.Len(t, f.c.Watchers(), 1)
}

func TestTextDirective(t *testing.T) {
	f := compile(t, `<span id="s" v-text=" msg ">placeholder</span>`, map[string]any{"msg": "hi"})
	s := f.query(t, "#s")
	assert.Equal(t, "hi", s.TextContent())

	f.model.Set("msg", "<b>safe</b>")
	assert.Equal(t, "<b>safe</b>", s.TextContent())
	assert.Equal(t, `<span id="s" v-text=" msg ">&lt;b&gt;safe&lt;/b&gt;</span>`, dom.OuterHTML(s))
}

func TestHTMLDirective(t *testing.T) {
	f := compile(t, `<div id="h" v-html="markup"></div>`, map[string]any{
		"markup": `<em>{{ who }}</em>`,
		"who":    "Ann",
	})
	h := f.query(t, "#h")
	assert.Equal(t, "<em>Ann</em>", h.InnerHTML(), "injected markup is compiled")

	f.model.Set("who", "Bo")
	assert.Equal(t, "<em>Bo</em>", h.InnerHTML())

	f.model.Set("markup", `<strong>x</strong>`)
	assert.Equal(t, "<strong>x</strong>", h.InnerHTML())
}

func TestModelDirectiveTwoWay(t *testing.T) {
	f := compile(t, `<input id="in" v-model="name"><p id="echo" v-text="name"></p>`,
		map[string]any{"name": "Ann"})
	in := f.query(t, "#in")
	echo := f.query(t, "#echo")
	assert.Equal(t, "Ann", in.Value())

	inputs := 0
	in.AddEventListener("input", func(dom.Event) { inputs++ })

	// User edit flows into the model and onward to other bindings.
	f.doc.Input(in, "Cy")
	assert.Equal(t, "Cy", f.model.Peek("name"))
	assert.Equal(t, "Cy", echo.TextContent())
	assert.Equal(t, 1, inputs)

	// Model write flows into the input without firing its listeners.
	f.model.Set("name", "Dee")
	assert.Equal(t, "Dee", in.Value())
	assert.Equal(t, "Dee", echo.TextContent())
	assert.Equal(t, 1, inputs)
}

func TestModelDirectiveTextarea(t *testing.T) {
	f := compile(t, `<textarea id="ta" v-model="body"></textarea>`, map[string]any{"body": "x"})
	ta := f.query(t, "#ta")
	assert.Equal(t, "x", ta.Value())

	f.doc.Input(ta, "y")
	assert.Equal(t, "y", f.model.Peek("body"))
}

func TestOnDirective(t *testing.T) {
	var f *fixture
	handlers := map[string]Handler{
		"inc": func(e dom.Event) {
			f.model.Set("count", f.model.Peek("count").(int)+1)
		},
	}
	f = compile(t, `
		<button id="a" v-on:click="inc">+</button>
		<button id="b" v-on:click="inc()">+</button>
		<span id="n">{{ count }}</span>`,
		map[string]any{"count": 0}, WithHandlers(handlers))

	a := f.query(t, "#a")
	b := f.query(t, "#b")
	assert.Equal(t, 0, f.doc.Dispatch(a, "click"), "listeners wait for the document to be ready")

	f.doc.MarkReady()
	assert.Equal(t, 1, f.doc.Dispatch(a, "click"))
	assert.Equal(t, 1, f.doc.Dispatch(b, "click"))
	assert.Equal(t, "2", f.query(t, "#n").TextContent())
	assert.Equal(t, []string{"click:ok", "click:ok"}, f.spy.events)
	assert.Empty(t, f.errs)
}

func TestOnDirectiveUnknownMethod(t *testing.T) {
	f := compile(t, `<button id="a" v-on:click="alert('hi')">x</button>`, map[string]any{})
	f.doc.MarkReady()

	a := f.query(t, "#a")
	require.NotPanics(t, func() { f.doc.Dispatch(a, "click") })
	require.Len(t, f.errs, 1)
	assert.True(t, errors.HasCode(f.errs[0], "E010"))
	assert.Equal(t, []string{"click:error"}, f.spy.events)
}

func TestOnDirectiveHandlerPanic(t *testing.T) {
	handlers := map[string]Handler{
		"boom": func(dom.Event) { panic("kaput") },
	}
	f := compile(t, `<button id="a" v-on:dblclick="boom">x</button>`, map[string]any{}, WithHandlers(handlers))
	f.doc.MarkReady()

	require.NotPanics(t, func() { f.doc.Dispatch(f.query(t, "#a"), "dblclick") })
	require.Len(t, f.errs, 1)
	assert.True(t, errors.HasCode(f.errs[0], "E011"))
	assert.Contains(t, f.errs[0].Error(), "kaput")
}

func TestUnknownDirectiveIgnored(t *testing.T) {
	var f *fixture
	require.NotPanics(t, func() {
		f = compile(t, `<p id="p" v-show="x" v-bind:title="y" v-on:="z" class="c">static</p>`,
			map[string]any{"x": true})
	})
	p := f.query(t, "#p")
	assert.Empty(t, f.c.Watchers())
	assert.Empty(t, f.spy.created)
	assert.Equal(t, "static", p.TextContent())
	v, ok := p.Attr("v-show")
	assert.True(t, ok)
	assert.Equal(t, "x", v)
}

func TestMultipleBindingsSameProperty(t *testing.T) {
	f := compile(t, `
		<span id="a" v-text="n"></span>
		<input id="b" v-model="n">
		<span id="c">{{ n }}</span>`,
		map[string]any{"n": 1})

	watchers := f.c.Watchers()
	require.Len(t, watchers, 3)

	slot, ok := f.model.Slot("n")
	require.True(t, ok)
	subs := slot.Dep().Subscribers()
	require.Len(t, subs, 3)
	for i, w := range watchers {
		assert.Same(t, w, subs[i], "registration order")
	}

	f.model.Set("n", 2)
	assert.Equal(t, []string{"text", "model", "interpolation"}, f.spy.updated)
	assert.Equal(t, "2", f.query(t, "#a").TextContent())
	assert.Equal(t, "2", f.query(t, "#b").Value())
	assert.Equal(t, "2", f.query(t, "#c").TextContent())
}

func TestDeepNesting(t *testing.T) {
	f := compile(t, `<div><section><article><p><b id="deep">{{ x }}</b></p></article></section></div>`,
		map[string]any{"x": "in"})
	deep := f.query(t, "#deep")
	assert.Equal(t, "in", deep.TextContent())
	f.model.Set("x", "out")
	assert.Equal(t, "out", deep.TextContent())
}

func TestRootNotProcessed(t *testing.T) {
	doc, err := dom.ParseString(`<div id="app" v-text="x"><i>keep</i></div>`)
	require.NoError(t, err)
	app, _ := doc.Query("#app")
	model := reactive.NewObject(map[string]any{"x": "replaced"}, nil)

	c := New(model)
	c.Compile(app)
	assert.Equal(t, "<i>keep</i>", app.InnerHTML())
	assert.Empty(t, c.Watchers())
}

func TestMissingKeyRendersEmpty(t *testing.T) {
	f := compile(t, `<p id="p">[{{ nope }}]</p><input id="i" v-model="nope">`, map[string]any{})
	assert.Equal(t, "[]", f.query(t, "#p").TextContent())
	assert.Equal(t, "", f.query(t, "#i").Value())
}

func TestNestedObjectRendersAsJSON(t *testing.T) {
	f := compile(t, `<p id="p">{{ user }}</p>`, map[string]any{
		"user": map[string]any{"name": "Ann"},
	})
	p := f.query(t, "#p")
	assert.Equal(t, `{"name":"Ann"}`, p.TextContent())

	user, _ := f.model.Object("user")
	user.Set("name", "Bo")
	assert.Equal(t, `{"name":"Ann"}`, p.TextContent(), "nested writes do not notify the parent binding")

	f.model.Set("user", map[string]any{"name": "Cy"})
	assert.Equal(t, `{"name":"Cy"}`, p.TextContent())
}
