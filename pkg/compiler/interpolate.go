package compiler

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/vango-dev/vbind/pkg/reactive"
)

// placeholder matches the first {{ key }} of a text.
var placeholder = regexp.MustCompile(`\{\{(.+?)\}\}`)

// Interpolation is the first placeholder found in a text template.
type Interpolation struct {
	// Template is the original text, placeholder included.
	Template string

	// Key is the trimmed property name between the braces.
	Key string

	start, end int
}

// FindInterpolation returns the first placeholder of text. Only one
// placeholder per text node is bound; later ones stay literal.
func FindInterpolation(text string) (Interpolation, bool) {
	loc := placeholder.FindStringSubmatchIndex(text)
	if loc == nil {
		return Interpolation{}, false
	}
	return Interpolation{
		Template: text,
		Key:      strings.TrimSpace(text[loc[2]:loc[3]]),
		start:    loc[0],
		end:      loc[1],
	}, true
}

// Render replaces the placeholder in the original template with value.
func (i Interpolation) Render(value any) string {
	return i.Template[:i.start] + Text(value) + i.Template[i.end:]
}

// Text converts a model value to the text written into the DOM. Nil is
// empty, objects render as JSON, and slices join their elements' text with
// commas.
func Text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case *reactive.Object:
		out, err := json.Marshal(x.Raw())
		if err != nil {
			return ""
		}
		return string(out)
	case fmt.Stringer:
		return x.String()
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = Text(rv.Index(i).Interface())
		}
		return strings.Join(parts, ",")
	}
	return fmt.Sprint(v)
}
