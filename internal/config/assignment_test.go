package config

import (
	"reflect"
	"testing"
)

// mapModel is a Model over a plain map.
type mapModel map[string]any

func (m mapModel) Peek(key string) any { return m[key] }

func (m mapModel) Set(key string, value any) bool {
	if old, ok := m[key]; ok && reflect.DeepEqual(old, value) {
		return false
	}
	m[key] = value
	return true
}

func TestParseAssignment(t *testing.T) {
	tests := []struct {
		in    string
		key   string
		value any
		add   bool
	}{
		{"name=Bo", "name", "Bo", false},
		{"count=3", "count", 3, false},
		{"ratio=0.5", "ratio", 0.5, false},
		{"ok=true", "ok", true, false},
		{`id="42"`, "id", "42", false},
		{"empty=", "empty", "", false},
		{"gone=null", "gone", nil, false},
		{" spaced =x", "spaced", "x", false},
		{"expr=a=b", "expr", "a=b", false},
		{"count+=1", "count", 1, true},
		{"count+=-2.5", "count", -2.5, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			a, err := ParseAssignment(tt.in)
			if err != nil {
				t.Fatalf("ParseAssignment(%q) error: %v", tt.in, err)
			}
			if a.Key != tt.key || a.Add != tt.add || !reflect.DeepEqual(a.Value, tt.value) {
				t.Errorf("ParseAssignment(%q) = %+v, want key=%q value=%#v add=%v",
					tt.in, a, tt.key, tt.value, tt.add)
			}
		})
	}
}

func TestParseAssignmentErrors(t *testing.T) {
	for _, in := range []string{"novalue", "=1", "+=1", "count+=x", "bad=[1"} {
		if _, err := ParseAssignment(in); err == nil {
			t.Errorf("ParseAssignment(%q) should fail", in)
		}
	}
}

func TestAssignmentApply(t *testing.T) {
	m := mapModel{"count": 1, "price": 1.5, "name": "Ann"}

	apply := func(s string) bool {
		t.Helper()
		a, err := ParseAssignment(s)
		if err != nil {
			t.Fatal(err)
		}
		changed, err := a.Apply(m)
		if err != nil {
			t.Fatalf("Apply(%q) error: %v", s, err)
		}
		return changed
	}

	if !apply("count+=2") || m["count"] != 3 {
		t.Errorf("count = %#v, want 3", m["count"])
	}
	if !apply("price+=1") || m["price"] != 2.5 {
		t.Errorf("price = %#v, want 2.5", m["price"])
	}
	if !apply("fresh+=4") || m["fresh"] != 4 {
		t.Errorf("missing keys count from zero, got %#v", m["fresh"])
	}
	if apply("name=Ann") {
		t.Error("identical write should report no change")
	}

	a, _ := ParseAssignment("name+=1")
	if _, err := a.Apply(m); err == nil {
		t.Error("adding to a string should fail")
	}
}

func TestActionRun(t *testing.T) {
	cfg := New()
	cfg.Actions = []ActionConfig{{Name: "reset", Set: []string{"count=0", "name=Ann"}}}
	actions, err := cfg.ParsedActions()
	if err != nil {
		t.Fatal(err)
	}

	m := mapModel{"count": 7, "name": "Bo"}
	if err := actions[0].Run(m); err != nil {
		t.Fatal(err)
	}
	if m["count"] != 0 || m["name"] != "Ann" {
		t.Errorf("model = %v", m)
	}

	if got := actions[0].Assignments[0].String(); got != "count=0" {
		t.Errorf("String() = %q", got)
	}
}
