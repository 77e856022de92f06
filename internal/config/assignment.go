package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Assignment is one model write: "key=value" stores value, "key+=n" adds n
// to a numeric property.
type Assignment struct {
	Key   string
	Value any
	Add   bool
}

// Model is the write surface an Assignment applies to.
type Model interface {
	Peek(key string) any
	Set(key string, value any) bool
}

// ParseAssignment parses "key=value" or "key+=number". The value is decoded
// as a YAML scalar, so 3 is an int, true a bool, and Bo a string.
// Quote it to force a string: name="42".
func ParseAssignment(s string) (Assignment, error) {
	i := strings.IndexByte(s, '=')
	if i < 0 {
		return Assignment{}, fmt.Errorf("assignment %q: missing '='", s)
	}
	key, raw := s[:i], s[i+1:]

	var a Assignment
	if strings.HasSuffix(key, "+") {
		a.Add = true
		key = key[:len(key)-1]
	}
	a.Key = strings.TrimSpace(key)
	if a.Key == "" {
		return Assignment{}, fmt.Errorf("assignment %q: empty key", s)
	}

	value, err := decodeScalar(raw)
	if err != nil {
		return Assignment{}, fmt.Errorf("assignment %q: %w", s, err)
	}
	if a.Add {
		if _, ok := toFloat(value); !ok {
			return Assignment{}, fmt.Errorf("assignment %q: += needs a number", s)
		}
	}
	a.Value = value
	return a, nil
}

func decodeScalar(raw string) (any, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	var v any
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
		return nil, err
	}
	if v == nil {
		// "null" and "~" clear the property.
		return nil, nil
	}
	return v, nil
}

// Apply writes the assignment to m and reports whether the model changed.
func (a Assignment) Apply(m Model) (bool, error) {
	if !a.Add {
		return m.Set(a.Key, a.Value), nil
	}

	cur := m.Peek(a.Key)
	if cur == nil {
		cur = 0
	}
	ci, curInt := cur.(int)
	ai, addInt := a.Value.(int)
	if curInt && addInt {
		return m.Set(a.Key, ci+ai), nil
	}

	cf, ok := toFloat(cur)
	if !ok {
		return false, fmt.Errorf("%s is %T, not a number", a.Key, cur)
	}
	af, _ := toFloat(a.Value)
	return m.Set(a.Key, cf+af), nil
}

// String renders the assignment back into its source form.
func (a Assignment) String() string {
	op := "="
	if a.Add {
		op = "+="
	}
	return fmt.Sprintf("%s%s%v", a.Key, op, a.Value)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// Action is a named list of assignments.
type Action struct {
	Name        string
	Assignments []Assignment
}

// Run applies the assignments in order, stopping at the first failure.
func (a Action) Run(m Model) error {
	for _, as := range a.Assignments {
		if _, err := as.Apply(m); err != nil {
			return fmt.Errorf("action %s: %w", a.Name, err)
		}
	}
	return nil
}

// ParsedActions parses every configured action.
func (c *Config) ParsedActions() ([]Action, error) {
	out := make([]Action, 0, len(c.Actions))
	for _, ac := range c.Actions {
		act := Action{Name: ac.Name}
		for _, s := range ac.Set {
			as, err := ParseAssignment(s)
			if err != nil {
				return nil, err
			}
			act.Assignments = append(act.Assignments, as)
		}
		out = append(out, act)
	}
	return out, nil
}
