package reactive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type point struct{ X, Y int }

type holder struct{ V any }

func TestIdentical(t *testing.T) {
	m := map[string]any{"a": 1}
	s := []int{1, 2, 3}
	p := &point{1, 2}
	f := func() {}
	obj := NewObject(map[string]any{}, nil)

	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"both nil", nil, nil, true},
		{"nil vs value", nil, 0, false},
		{"same int", 1, 1, true},
		{"different int", 1, 2, false},
		{"int vs float", 1, 1.0, false},
		{"same string", "a", "a", true},
		{"same bool", true, true, true},
		{"struct value", point{1, 2}, point{1, 2}, true},
		{"same pointer", p, p, true},
		{"equal pointee", p, &point{1, 2}, false},
		{"same map", m, m, true},
		{"equal map", m, map[string]any{"a": 1}, false},
		{"same slice", s, s, true},
		{"subslice", s, s[:2], false},
		{"same func", f, f, true},
		{"same object", obj, obj, true},
		{"fresh object", obj, NewObject(map[string]any{}, nil), false},
		{"uncomparable dynamic field", holder{[]int{1}}, holder{[]int{1}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Identical(tt.a, tt.b))
		})
	}
}
