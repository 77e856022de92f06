package dom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Selector is a compound simple selector: an optional tag followed by any
// number of #id, .class, [attr] and [attr=value] parts. Combinators and
// pseudo-classes are not supported.
type Selector struct {
	tag     string
	id      string
	classes []string
	attrs   []attrMatch
}

type attrMatch struct {
	name     string
	value    string
	hasValue bool
}

// ParseSelector parses a compound simple selector.
func ParseSelector(s string) (Selector, error) {
	var sel Selector
	src := strings.TrimSpace(s)
	if src == "" {
		return sel, fmt.Errorf("dom: empty selector")
	}

	i := 0
	readName := func() string {
		start := i
		for i < len(src) && isNameByte(src[i]) {
			i++
		}
		return src[start:i]
	}

	if i < len(src) && isNameByte(src[i]) {
		sel.tag = strings.ToLower(readName())
	} else if i < len(src) && src[i] == '*' {
		i++
	}

	for i < len(src) {
		switch src[i] {
		case '#':
			i++
			name := readName()
			if name == "" {
				return sel, fmt.Errorf("dom: empty id in selector %q", s)
			}
			sel.id = name
		case '.':
			i++
			name := readName()
			if name == "" {
				return sel, fmt.Errorf("dom: empty class in selector %q", s)
			}
			sel.classes = append(sel.classes, name)
		case '[':
			end := strings.IndexByte(src[i:], ']')
			if end < 0 {
				return sel, fmt.Errorf("dom: unterminated attribute in selector %q", s)
			}
			m, err := parseAttrMatch(src[i+1 : i+end])
			if err != nil {
				return sel, fmt.Errorf("dom: %w in selector %q", err, s)
			}
			sel.attrs = append(sel.attrs, m)
			i += end + 1
		default:
			return sel, fmt.Errorf("dom: unexpected %q in selector %q", src[i], s)
		}
	}
	return sel, nil
}

func parseAttrMatch(body string) (attrMatch, error) {
	name, value, hasValue := strings.Cut(body, "=")
	name = strings.TrimSpace(name)
	if name == "" {
		return attrMatch{}, fmt.Errorf("empty attribute name")
	}
	value = strings.TrimSpace(value)
	if len(value) >= 2 && (value[0] == '"' || value[0] == '\'') && value[len(value)-1] == value[0] {
		value = value[1 : len(value)-1]
	}
	return attrMatch{name: name, value: value, hasValue: hasValue}, nil
}

func isNameByte(c byte) bool {
	return c == '-' || c == '_' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// Match reports whether n is an element matching the selector.
func (s Selector) Match(n Node) bool {
	x, ok := n.(*node)
	if !ok {
		return false
	}
	return s.match(x.n)
}

func (s Selector) match(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if s.tag != "" && n.Data != s.tag {
		return false
	}
	if s.id != "" {
		if v, ok := attrValue(n, "id"); !ok || v != s.id {
			return false
		}
	}
	if len(s.classes) > 0 {
		v, _ := attrValue(n, "class")
		have := strings.Fields(v)
		for _, want := range s.classes {
			if !contains(have, want) {
				return false
			}
		}
	}
	for _, m := range s.attrs {
		v, ok := attrValue(n, m.name)
		if !ok || (m.hasValue && v != m.value) {
			return false
		}
	}
	return true
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
