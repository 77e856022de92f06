package reactive

import "reflect"

// Subscriber is anything a Dep can notify when its property changes.
type Subscriber interface {
	// Update is called synchronously after the property was written.
	Update()
}

// SubscriberFunc adapts a plain function to the Subscriber interface.
type SubscriberFunc func()

// Update implements Subscriber.
func (f SubscriberFunc) Update() { f() }

// isNil reports whether s is nil or a typed nil pointer/func.
func isNil(s Subscriber) bool {
	if s == nil {
		return true
	}
	v := reflect.ValueOf(s)
	switch v.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Slice, reflect.Interface, reflect.Chan:
		return v.IsNil()
	}
	return false
}
