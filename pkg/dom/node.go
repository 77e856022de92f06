package dom

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/vango-dev/vbind/internal/errors"
)

// NodeKind is the node type discriminator.
type NodeKind uint8

const (
	KindOther NodeKind = iota
	KindText
	KindElement
	KindDocument
	KindComment
)

// String returns the string representation of the NodeKind.
func (k NodeKind) String() string {
	switch k {
	case KindText:
		return "Text"
	case KindElement:
		return "Element"
	case KindDocument:
		return "Document"
	case KindComment:
		return "Comment"
	default:
		return "Other"
	}
}

// Attribute is one element attribute.
type Attribute struct {
	Name  string
	Value string
}

// Node is one node of a host document.
type Node interface {
	Kind() NodeKind
	Tag() string
	Parent() Node
	Children() []Node

	Attributes() []Attribute
	Attr(name string) (string, bool)
	SetAttr(name, value string)
	RemoveAttr(name string)

	TextContent() string
	SetTextContent(text string)
	Value() string
	SetValue(value string)
	InnerHTML() string
	SetInnerHTML(markup string) error

	AddEventListener(event string, fn Listener)
	OwnerDocument() *Document
}

// node implements Node over an *html.Node.
type node struct {
	doc *Document
	n   *html.Node
}

func (x *node) Kind() NodeKind {
	switch x.n.Type {
	case html.TextNode:
		return KindText
	case html.ElementNode:
		return KindElement
	case html.DocumentNode:
		return KindDocument
	case html.CommentNode:
		return KindComment
	default:
		return KindOther
	}
}

func (x *node) Tag() string {
	if x.n.Type != html.ElementNode {
		return ""
	}
	return x.n.Data
}

func (x *node) Parent() Node {
	if x.n.Parent == nil {
		return nil
	}
	return x.doc.wrap(x.n.Parent)
}

func (x *node) Children() []Node {
	var out []Node
	for c := x.n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, x.doc.wrap(c))
	}
	return out
}

func (x *node) Attributes() []Attribute {
	out := make([]Attribute, 0, len(x.n.Attr))
	for _, a := range x.n.Attr {
		name := a.Key
		if a.Namespace != "" {
			name = a.Namespace + ":" + a.Key
		}
		out = append(out, Attribute{Name: name, Value: a.Val})
	}
	return out
}

func (x *node) Attr(name string) (string, bool) {
	for _, a := range x.n.Attr {
		if a.Key == name && a.Namespace == "" {
			return a.Val, true
		}
	}
	return "", false
}

func (x *node) SetAttr(name, value string) {
	for i, a := range x.n.Attr {
		if a.Key == name && a.Namespace == "" {
			x.n.Attr[i].Val = value
			return
		}
	}
	x.n.Attr = append(x.n.Attr, html.Attribute{Key: name, Val: value})
}

func (x *node) RemoveAttr(name string) {
	attrs := x.n.Attr[:0]
	for _, a := range x.n.Attr {
		if a.Key == name && a.Namespace == "" {
			continue
		}
		attrs = append(attrs, a)
	}
	x.n.Attr = attrs
}

// TextContent returns the text of a text or comment node, or the
// concatenated descendant text of an element.
func (x *node) TextContent() string {
	switch x.n.Type {
	case html.TextNode, html.CommentNode:
		return x.n.Data
	}
	var b strings.Builder
	collectText(x.n, &b)
	return b.String()
}

func collectText(n *html.Node, b *strings.Builder) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			b.WriteString(c.Data)
		case html.ElementNode:
			collectText(c, b)
		}
	}
}

// SetTextContent replaces the data of a text node, or all children of an
// element with a single text node.
func (x *node) SetTextContent(text string) {
	switch x.n.Type {
	case html.TextNode, html.CommentNode:
		x.n.Data = text
		return
	}
	x.doc.removeChildren(x.n)
	if text != "" {
		x.n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
}

// Value returns the form value of the element: the value attribute for
// inputs, the text for textareas, the selected option for selects.
func (x *node) Value() string {
	if x.n.Type != html.ElementNode {
		return ""
	}
	switch x.n.DataAtom {
	case atom.Textarea:
		return x.TextContent()
	case atom.Select:
		var first *html.Node
		var selected *html.Node
		walk(x.n, func(n *html.Node) bool {
			if n.Type == html.ElementNode && n.DataAtom == atom.Option {
				if first == nil {
					first = n
				}
				if hasAttr(n, "selected") && selected == nil {
					selected = n
				}
			}
			return true
		})
		if selected == nil {
			selected = first
		}
		if selected == nil {
			return ""
		}
		return optionValue(x.doc.wrap(selected))
	case atom.Option:
		return optionValue(x)
	}
	v, _ := x.Attr("value")
	return v
}

func optionValue(n Node) string {
	if v, ok := n.Attr("value"); ok {
		return v
	}
	return strings.TrimSpace(n.TextContent())
}

// SetValue sets the form value of the element without firing events.
func (x *node) SetValue(value string) {
	if x.n.Type != html.ElementNode {
		return
	}
	switch x.n.DataAtom {
	case atom.Textarea:
		x.SetTextContent(value)
	case atom.Select:
		matched := false
		walk(x.n, func(n *html.Node) bool {
			if n.Type == html.ElementNode && n.DataAtom == atom.Option {
				opt := x.doc.wrap(n)
				if !matched && optionValue(opt) == value {
					opt.SetAttr("selected", "")
					matched = true
				} else {
					opt.RemoveAttr("selected")
				}
			}
			return true
		})
	default:
		x.SetAttr("value", value)
	}
}

// InnerHTML renders the children of the node.
func (x *node) InnerHTML() string {
	var buf bytes.Buffer
	for c := x.n.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&buf, c)
	}
	return buf.String()
}

// SetInnerHTML replaces the children of an element with parsed markup.
// The markup is not sanitized.
func (x *node) SetInnerHTML(markup string) error {
	if x.n.Type != html.ElementNode {
		x.SetTextContent(markup)
		return nil
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), x.n)
	if err != nil {
		return errors.New("E022").Wrap(err)
	}
	x.doc.removeChildren(x.n)
	for _, c := range nodes {
		x.n.AppendChild(c)
	}
	return nil
}

func (x *node) AddEventListener(event string, fn Listener) {
	x.doc.addListener(x, event, fn)
}

func (x *node) OwnerDocument() *Document {
	return x.doc
}

// removeChildren detaches the children of n and forgets the wrappers,
// listeners and ids of the detached subtrees. Node values still held for
// a detached node keep working, but lose their listeners.
func (d *Document) removeChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		d.forget(c)
		walk(c, func(desc *html.Node) bool {
			d.forget(desc)
			return true
		})
		c = next
	}
}

func (d *Document) forget(n *html.Node) {
	delete(d.wrappers, n)
	delete(d.listeners, n)
	if v, ok := attrValue(n, IDAttr); ok && d.ids[v] == n {
		delete(d.ids, v)
	}
}

func hasAttr(n *html.Node, name string) bool {
	_, ok := attrValue(n, name)
	return ok
}

// walk visits n's descendants in document order until fn returns false.
func walk(n *html.Node, fn func(*html.Node) bool) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !fn(c) {
			return false
		}
		if !walk(c, fn) {
			return false
		}
	}
	return true
}
