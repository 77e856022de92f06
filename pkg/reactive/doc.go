// Package reactive provides the dependency tracking core of vbind.
//
// A plain map[string]any is converted into an observable *Object whose
// properties are *Value slots. Each slot owns a Dep, the ordered list of
// subscribers interested in that property:
//
//	tr := NewTracker()
//	obj := NewObject(map[string]any{"name": "Ann"}, tr)
//
//	w := NewWatcher(obj, "name", func(v any) {
//	    fmt.Println("name is now", v)
//	})
//
//	obj.Set("name", "Bo") // prints "name is now Bo"
//	obj.Set("name", "Bo") // identical write, nothing happens
//
// # Tracking
//
// Subscription happens by reading. A Tracker holds a stack of active
// subscribers; Tracker.Track pushes one, runs a function and pops it again.
// Any Value read while a subscriber is active adds that subscriber to the
// Value's Dep. Watchers use this on construction to register themselves with
// exactly the slot they read.
//
// # Thread Safety
//
// The package is single-threaded by design and holds no locks. Callers that
// share a model between goroutines must serialize all access, as the live
// host in pkg/server does with one event loop per session.
package reactive
