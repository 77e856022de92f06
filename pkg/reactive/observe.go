package reactive

import "sort"

// Value is one observable property slot. It owns the raw value and the Dep
// of the subscribers interested in it.
type Value struct {
	key     string
	raw     any
	dep     *Dep
	tracker *Tracker
}

func newValue(key string, raw any, t *Tracker) *Value {
	return &Value{
		key:     key,
		raw:     Observe(raw, t),
		dep:     NewDep(t),
		tracker: t,
	}
}

// Key returns the property name of this slot.
func (v *Value) Key() string {
	return v.key
}

// Get returns the value and subscribes the tracker's active subscriber.
func (v *Value) Get() any {
	if active := v.tracker.Active(); active != nil {
		v.dep.AddSub(active)
	}
	return v.raw
}

// Peek returns the value without subscribing.
func (v *Value) Peek() any {
	return v.raw
}

// Set replaces the value and notifies subscribers. Writing a value
// identical to the current one does nothing and returns false; for an
// observed mapping that includes the map it was built from. Nested
// map[string]any values are made observable before they are stored.
func (v *Value) Set(x any) bool {
	if Identical(x, v.raw) || wraps(v.raw, x) {
		return false
	}
	v.raw = Observe(x, v.tracker)
	v.dep.Notify()
	return true
}

// Dep returns the registry of this slot.
func (v *Value) Dep() *Dep {
	return v.dep
}

// Object is an observable keyed mapping. Keys present at construction are
// tracked; keys added later are stored untracked.
type Object struct {
	src     map[string]any
	keys    []string
	slots   map[string]*Value
	extra   map[string]any
	tracker *Tracker
}

// Observe makes data observable. A map[string]any becomes an *Object,
// recursively; an *Object is returned as is; anything else, slices
// included, is returned unchanged.
func Observe(data any, t *Tracker) any {
	switch d := data.(type) {
	case map[string]any:
		return NewObject(d, t)
	default:
		return data
	}
}

// NewObject wraps every key of data into a tracked slot. Nested mappings are
// wrapped before the slot holding them is installed. Keys are kept in sorted
// order since Go maps carry none.
func NewObject(data map[string]any, t *Tracker) *Object {
	if t == nil {
		t = NewTracker()
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	o := &Object{
		src:     data,
		keys:    keys,
		slots:   make(map[string]*Value, len(data)),
		tracker: t,
	}
	for _, k := range keys {
		o.slots[k] = newValue(k, data[k], t)
	}
	return o
}

// wraps reports whether stored is the observed form of the map x.
func wraps(stored, x any) bool {
	obj, ok := stored.(*Object)
	if !ok || obj.src == nil {
		return false
	}
	m, ok := x.(map[string]any)
	return ok && Identical(m, obj.src)
}

// Tracker returns the tracker shared by all slots of this object.
func (o *Object) Tracker() *Tracker {
	return o.tracker
}

// Get returns the value of key, subscribing the active subscriber when key
// is tracked. Missing keys read as nil.
func (o *Object) Get(key string) any {
	if slot, ok := o.slots[key]; ok {
		return slot.Get()
	}
	return o.extra[key]
}

// Peek returns the value of key without subscribing.
func (o *Object) Peek(key string) any {
	if slot, ok := o.slots[key]; ok {
		return slot.Peek()
	}
	return o.extra[key]
}

// Set writes key. For tracked keys it reports whether the value changed and
// notifies on change. Untracked keys are stored without notification and
// the result reports whether the stored value changed.
func (o *Object) Set(key string, value any) bool {
	if slot, ok := o.slots[key]; ok {
		return slot.Set(value)
	}
	if old, ok := o.extra[key]; ok && Identical(old, value) {
		return false
	}
	if o.extra == nil {
		o.extra = make(map[string]any)
	}
	o.extra[key] = value
	return true
}

// Has reports whether key is present, tracked or not.
func (o *Object) Has(key string) bool {
	if _, ok := o.slots[key]; ok {
		return true
	}
	_, ok := o.extra[key]
	return ok
}

// Tracked reports whether key has an observable slot.
func (o *Object) Tracked(key string) bool {
	_, ok := o.slots[key]
	return ok
}

// Slot returns the observable slot of key.
func (o *Object) Slot(key string) (*Value, bool) {
	slot, ok := o.slots[key]
	return slot, ok
}

// Object returns the nested object stored under key, without subscribing.
func (o *Object) Object(key string) (*Object, bool) {
	nested, ok := o.Peek(key).(*Object)
	return nested, ok
}

// Keys returns the tracked keys in sorted order.
func (o *Object) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Raw returns a plain deep copy of the object, untracked keys included.
func (o *Object) Raw() map[string]any {
	out := make(map[string]any, len(o.slots)+len(o.extra))
	for k, slot := range o.slots {
		out[k] = raw(slot.raw)
	}
	for k, v := range o.extra {
		out[k] = raw(v)
	}
	return out
}

func raw(v any) any {
	if obj, ok := v.(*Object); ok {
		return obj.Raw()
	}
	return v
}
