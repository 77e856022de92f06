package reactive

// Dep is the registry of subscribers for one observable property slot.
type Dep struct {
	id      uint64
	subs    []Subscriber
	tracker *Tracker
}

// NewDep creates an empty registry. A nil tracker uses a default one, which
// only matters for panic and cycle reporting.
func NewDep(t *Tracker) *Dep {
	if t == nil {
		t = NewTracker()
	}
	return &Dep{id: nextID(), tracker: t}
}

// ID returns the unique identifier of this registry.
func (d *Dep) ID() uint64 {
	return d.id
}

// AddSub appends s to the subscriber list. Nil subscribers are ignored.
// Duplicates are not filtered; one watcher per binding keeps the list unique.
func (d *Dep) AddSub(s Subscriber) {
	if isNil(s) {
		return
	}
	d.subs = append(d.subs, s)
}

// Notify calls Update on every subscriber in registration order.
// Subscribers added while notifying are not called until the next Notify.
func (d *Dep) Notify() {
	if len(d.subs) == 0 {
		return
	}
	if !d.tracker.enterNotify(d) {
		return
	}
	defer d.tracker.leaveNotify()

	subs := make([]Subscriber, len(d.subs))
	copy(subs, d.subs)

	for _, sub := range subs {
		d.tracker.safeUpdate(sub)
	}
}

// Len returns the number of registered subscribers.
func (d *Dep) Len() int {
	return len(d.subs)
}

// Subscribers returns a copy of the subscriber list in registration order.
func (d *Dep) Subscribers() []Subscriber {
	out := make([]Subscriber, len(d.subs))
	copy(out, d.subs)
	return out
}
