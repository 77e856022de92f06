package reactive

// Source is a keyed model a Watcher can read from.
type Source interface {
	// Get reads key, subscribing the tracker's active subscriber.
	Get(key string) any

	// Peek reads key without subscribing.
	Peek(key string) any

	// Tracker returns the tracker the source's slots subscribe through.
	Tracker() *Tracker
}

// Watcher binds one property of a Source to a change callback.
// It performs no DOM work itself; the callback does.
type Watcher struct {
	id    uint64
	src   Source
	key   string
	value any
	cb    func(any)
}

// NewWatcher creates a watcher on src[key]. Construction performs exactly
// one tracked read, which registers the watcher with the slot of key.
func NewWatcher(src Source, key string, cb func(any)) *Watcher {
	w := &Watcher{
		id:  nextID(),
		src: src,
		key: key,
		cb:  cb,
	}
	src.Tracker().Track(w, func() {
		w.value = src.Get(key)
	})
	return w
}

// ID returns the unique identifier of this watcher.
func (w *Watcher) ID() uint64 {
	return w.id
}

// Key returns the watched property name.
func (w *Watcher) Key() string {
	return w.key
}

// Value returns the last observed value.
func (w *Watcher) Value() any {
	return w.value
}

// Update re-reads the property and invokes the callback if the value is no
// longer identical to the last observed one.
func (w *Watcher) Update() {
	next := w.src.Peek(w.key)
	if Identical(next, w.value) {
		return
	}
	w.value = next
	if w.cb != nil {
		w.cb(next)
	}
}
