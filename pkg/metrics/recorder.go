package metrics

import "time"

// Recorder receives binding and event activity.
type Recorder interface {
	// BindingCreated is called once per binding the compiler creates.
	BindingCreated(directive string)

	// BindingUpdated is called each time a binding writes the DOM after a change.
	BindingUpdated(directive string)

	// EventHandled is called after an event listener ran.
	EventHandled(event string, duration time.Duration, err error)

	// SessionOpened and SessionClosed track live host sessions.
	SessionOpened()
	SessionClosed()
}

// Nop is a Recorder that discards everything.
type Nop struct{}

func (Nop) BindingCreated(string)                     {}
func (Nop) BindingUpdated(string)                     {}
func (Nop) EventHandled(string, time.Duration, error) {}
func (Nop) SessionOpened()                            {}
func (Nop) SessionClosed()                            {}

// OrNop returns r, or Nop when r is nil.
func OrNop(r Recorder) Recorder {
	if r == nil {
		return Nop{}
	}
	return r
}
