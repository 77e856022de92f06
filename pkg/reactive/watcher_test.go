package reactive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWatcherInitialRead(t *testing.T) {
	tr := NewTracker()
	obj := NewObject(map[string]any{"name": "Ann"}, tr)

	w := NewWatcher(obj, "name", func(any) {})
	assert.Equal(t, "Ann", w.Value())
	assert.Equal(t, "name", w.Key())
	assert.NotZero(t, w.ID())
	assert.Nil(t, tr.Active(), "tracker cleared after construction")

	slot, _ := obj.Slot("name")
	assert.Equal(t, 1, slot.Dep().Len())
}

func TestWatcherCallback(t *testing.T) {
	tr := NewTracker()
	obj := NewObject(map[string]any{"name": "Ann"}, tr)

	var got []any
	w := NewWatcher(obj, "name", func(v any) { got = append(got, v) })

	obj.Set("name", "Bo")
	obj.Set("name", "Bo")
	obj.Set("name", "Cy")

	assert.Equal(t, []any{"Bo", "Cy"}, got)
	assert.Equal(t, "Cy", w.Value())
}

func TestWatcherUpdateWithoutChange(t *testing.T) {
	tr := NewTracker()
	obj := NewObject(map[string]any{"n": 1}, tr)

	calls := 0
	w := NewWatcher(obj, "n", func(any) { calls++ })

	w.Update()
	assert.Equal(t, 0, calls)
}

func TestMultipleWatchersOrder(t *testing.T) {
	tr := NewTracker()
	obj := NewObject(map[string]any{"n": 0}, tr)

	var order []string
	NewWatcher(obj, "n", func(any) { order = append(order, "first") })
	NewWatcher(obj, "n", func(any) { order = append(order, "second") })
	NewWatcher(obj, "n", func(any) { order = append(order, "third") })

	obj.Set("n", 1)
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestWatcherOnObjectReference(t *testing.T) {
	tr := NewTracker()
	obj := NewObject(map[string]any{"user": map[string]any{"name": "Ann"}}, tr)

	calls := 0
	NewWatcher(obj, "user", func(any) { calls++ })

	user, _ := obj.Object("user")
	user.Set("name", "Bo")
	assert.Equal(t, 0, calls, "nested write does not touch the parent slot")

	obj.Set("user", map[string]any{"name": "Cy"})
	assert.Equal(t, 1, calls)
}

func TestWatcherCallbackWritesOtherProperty(t *testing.T) {
	tr := NewTracker()
	obj := NewObject(map[string]any{"celsius": 0, "label": ""}, tr)

	NewWatcher(obj, "celsius", func(v any) {
		obj.Set("label", "warm")
	})
	var labels []any
	NewWatcher(obj, "label", func(v any) { labels = append(labels, v) })

	obj.Set("celsius", 25)
	assert.Equal(t, []any{"warm"}, labels)
}
