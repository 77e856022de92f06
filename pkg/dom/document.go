package dom

import (
	"bytes"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/vango-dev/vbind/internal/errors"
)

// IDAttr is the attribute that makes listener-carrying elements addressable.
const IDAttr = "data-vb-id"

// Event is delivered to listeners.
type Event struct {
	// Type is the event name, e.g. "input" or "click".
	Type string

	// Target is the node the event was dispatched on.
	Target Node

	// Value is the target's form value at dispatch time.
	Value string
}

// Listener handles a dispatched event.
type Listener func(Event)

// Document is a parsed HTML document with listener and ready-state support.
type Document struct {
	root      *html.Node
	wrappers  map[*html.Node]*node
	listeners map[*html.Node]map[string][]Listener
	ids       map[string]*html.Node
	nextID    int

	ready    bool
	readyFns []func()
}

// Parse parses a complete HTML document. Missing html, head and body
// elements are added the way browsers do.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, errors.New("E020").Wrap(err)
	}
	return NewDocument(root), nil
}

// ParseString parses a complete HTML document from a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// NewDocument wraps an existing parse tree.
func NewDocument(root *html.Node) *Document {
	d := &Document{
		root:      root,
		wrappers:  make(map[*html.Node]*node),
		listeners: make(map[*html.Node]map[string][]Listener),
		ids:       make(map[string]*html.Node),
	}
	// Pick up ids from a previously rendered tree so new ones never collide.
	walk(root, func(n *html.Node) bool {
		if v, ok := attrValue(n, IDAttr); ok && strings.HasPrefix(v, "vb") {
			if num, err := strconv.Atoi(v[2:]); err == nil && num > d.nextID {
				d.nextID = num
			}
		}
		return true
	})
	return d
}

func (d *Document) wrap(n *html.Node) *node {
	if n == nil {
		return nil
	}
	if w, ok := d.wrappers[n]; ok {
		return w
	}
	w := &node{doc: d, n: n}
	d.wrappers[n] = w
	return w
}

// Root returns the document node.
func (d *Document) Root() Node {
	return d.wrap(d.root)
}

// Body returns the body element, or nil.
func (d *Document) Body() Node {
	var body *html.Node
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.Body {
			body = n
			return false
		}
		return true
	})
	if body == nil {
		return nil
	}
	return d.wrap(body)
}

// Query returns the first element in document order matching selector, or
// nil when nothing matches.
func (d *Document) Query(selector string) (Node, error) {
	sel, err := ParseSelector(selector)
	if err != nil {
		return nil, err
	}
	var found *html.Node
	walk(d.root, func(n *html.Node) bool {
		if sel.match(n) {
			found = n
			return false
		}
		return true
	})
	if found == nil {
		return nil, nil
	}
	return d.wrap(found), nil
}

// QueryAll returns every element matching selector in document order.
func (d *Document) QueryAll(selector string) ([]Node, error) {
	sel, err := ParseSelector(selector)
	if err != nil {
		return nil, err
	}
	var out []Node
	walk(d.root, func(n *html.Node) bool {
		if sel.match(n) {
			out = append(out, d.wrap(n))
		}
		return true
	})
	return out, nil
}

// NodeByID returns the attached element carrying the given data-vb-id.
func (d *Document) NodeByID(id string) (Node, bool) {
	n, ok := d.ids[id]
	if !ok || !d.attached(n) {
		return nil, false
	}
	return d.wrap(n), true
}

// ID returns the data-vb-id of n, assigning one if needed.
func (d *Document) ID(n Node) string {
	x, ok := n.(*node)
	if !ok || x.doc != d || x.n.Type != html.ElementNode {
		return ""
	}
	if v, ok := attrValue(x.n, IDAttr); ok {
		d.ids[v] = x.n
		return v
	}
	d.nextID++
	id := "vb" + strconv.Itoa(d.nextID)
	x.SetAttr(IDAttr, id)
	d.ids[id] = x.n
	return id
}

func (d *Document) attached(n *html.Node) bool {
	for ; n != nil; n = n.Parent {
		if n == d.root {
			return true
		}
	}
	return false
}

func (d *Document) addListener(x *node, event string, fn Listener) {
	if fn == nil || event == "" {
		return
	}
	d.ID(x)
	byEvent, ok := d.listeners[x.n]
	if !ok {
		byEvent = make(map[string][]Listener)
		d.listeners[x.n] = byEvent
	}
	byEvent[event] = append(byEvent[event], fn)
}

// Listeners returns the number of listeners registered for event on n.
func (d *Document) Listeners(n Node, event string) int {
	x, ok := n.(*node)
	if !ok {
		return 0
	}
	return len(d.listeners[x.n][event])
}

// Dispatch runs the listeners of target for eventType in registration order
// and returns how many ran.
func (d *Document) Dispatch(target Node, eventType string) int {
	x, ok := target.(*node)
	if !ok || x.doc != d {
		return 0
	}
	fns := d.listeners[x.n][eventType]
	if len(fns) == 0 {
		return 0
	}
	snapshot := make([]Listener, len(fns))
	copy(snapshot, fns)

	ev := Event{Type: eventType, Target: target, Value: target.Value()}
	for _, fn := range snapshot {
		fn(ev)
	}
	return len(snapshot)
}

// Input simulates a user edit: it sets the value of target, then fires
// "input" on it.
func (d *Document) Input(target Node, value string) int {
	target.SetValue(value)
	return d.Dispatch(target, "input")
}

// OnReady runs fn once the document is ready, immediately if it already is.
func (d *Document) OnReady(fn func()) {
	if d.ready {
		fn()
		return
	}
	d.readyFns = append(d.readyFns, fn)
}

// MarkReady fires the ready signal. Callbacks run once, in order.
func (d *Document) MarkReady() {
	if d.ready {
		return
	}
	d.ready = true
	fns := d.readyFns
	d.readyFns = nil
	for _, fn := range fns {
		fn()
	}
}

// Ready reports whether MarkReady has been called.
func (d *Document) Ready() bool {
	return d.ready
}

// Render writes the whole document as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// String renders the whole document.
func (d *Document) String() string {
	var buf bytes.Buffer
	_ = d.Render(&buf)
	return buf.String()
}

// OuterHTML renders n including its own tag.
func OuterHTML(n Node) string {
	x, ok := n.(*node)
	if !ok {
		return ""
	}
	var buf bytes.Buffer
	_ = html.Render(&buf, x.n)
	return buf.String()
}

func attrValue(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == name && a.Namespace == "" {
			return a.Val, true
		}
	}
	return "", false
}
