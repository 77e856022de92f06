package compiler

import "strings"

// Prefix marks an attribute as a directive.
const Prefix = "v-"

// onPrefix introduces the event name of an event directive.
const onPrefix = "on:"

// Kind is the directive discriminator.
type Kind uint8

const (
	KindText  Kind = iota + 1 // v-text
	KindModel                 // v-model
	KindHTML                  // v-html
	KindOn                    // v-on:<event>
)

// String returns the directive keyword.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindModel:
		return "model"
	case KindHTML:
		return "html"
	case KindOn:
		return "on"
	default:
		return "unknown"
	}
}

// Directive is a parsed directive attribute name.
type Directive struct {
	Kind Kind

	// Event is the event name for KindOn.
	Event string
}

// String returns the attribute name the directive was parsed from.
func (d Directive) String() string {
	if d.Kind == KindOn {
		return Prefix + onPrefix + d.Event
	}
	return Prefix + d.Kind.String()
}

// IsDirective reports whether an attribute name carries the directive prefix.
func IsDirective(attr string) bool {
	return strings.HasPrefix(attr, Prefix)
}

// ParseDirective parses an attribute name. It returns false for attributes
// without the prefix and for unknown keywords.
func ParseDirective(attr string) (Directive, bool) {
	if !IsDirective(attr) {
		return Directive{}, false
	}
	name := attr[len(Prefix):]

	if event, ok := strings.CutPrefix(name, onPrefix); ok {
		if event == "" {
			return Directive{}, false
		}
		return Directive{Kind: KindOn, Event: event}, true
	}

	switch name {
	case "text":
		return Directive{Kind: KindText}, true
	case "model":
		return Directive{Kind: KindModel}, true
	case "html":
		return Directive{Kind: KindHTML}, true
	default:
		return Directive{}, false
	}
}
