package reactive

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/vango-dev/vbind/internal/errors"
)

// DefaultMaxNotifyDepth bounds how deeply change callbacks may trigger
// further notifications before the chain is cut.
const DefaultMaxNotifyDepth = 100

// Tracker holds the tracking state of one model: the stack of subscribers
// currently performing a dependency-registering read, and the nesting depth
// of notifications in flight.
type Tracker struct {
	// stack of active subscribers. The top entry is subscribed by reads.
	stack []Subscriber

	// depth is the number of Notify calls currently on the call stack.
	depth int

	// maxDepth is the notify nesting limit. Negative disables the guard.
	maxDepth int

	logger  *slog.Logger
	onError func(error)
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithLogger sets the logger used for recovered panics and guard trips.
func WithLogger(logger *slog.Logger) TrackerOption {
	return func(t *Tracker) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithMaxNotifyDepth sets the notification nesting limit.
// Zero keeps the default; a negative value disables the guard.
func WithMaxNotifyDepth(n int) TrackerOption {
	return func(t *Tracker) {
		if n != 0 {
			t.maxDepth = n
		}
	}
}

// WithErrorHandler sets a callback receiving runtime errors (E012, E013).
func WithErrorHandler(fn func(error)) TrackerOption {
	return func(t *Tracker) {
		t.onError = fn
	}
}

// NewTracker creates a tracker with no active subscriber.
func NewTracker(opts ...TrackerOption) *Tracker {
	t := &Tracker{
		maxDepth: DefaultMaxNotifyDepth,
		logger:   slog.Default().With("component", "reactive"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Active returns the subscriber that reads currently register, or nil.
func (t *Tracker) Active() Subscriber {
	if t == nil || len(t.stack) == 0 {
		return nil
	}
	return t.stack[len(t.stack)-1]
}

// Track runs fn with s as the active subscriber and restores the previous
// one afterwards, even if fn panics. Tracking calls may nest.
func (t *Tracker) Track(s Subscriber, fn func()) {
	t.stack = append(t.stack, s)
	defer func() {
		t.stack[len(t.stack)-1] = nil
		t.stack = t.stack[:len(t.stack)-1]
	}()
	fn()
}

// Untracked runs fn with no active subscriber, so reads inside fn do not
// subscribe anything.
func (t *Tracker) Untracked(fn func()) {
	t.Track(nil, fn)
}

// Depth returns the current notification nesting depth.
func (t *Tracker) Depth() int {
	return t.depth
}

// enterNotify reports whether a notification may proceed.
func (t *Tracker) enterNotify(d *Dep) bool {
	if t.maxDepth >= 0 && t.depth >= t.maxDepth {
		err := errors.New("E013").WithDetailf("depth %d reached while notifying dep %d", t.depth, d.id)
		t.logger.Error("notification depth exceeded",
			"code", "E013",
			"depth", t.depth,
			"max_depth", t.maxDepth,
			"dep", d.id)
		t.report(err)
		return false
	}
	t.depth++
	return true
}

func (t *Tracker) leaveNotify() {
	t.depth--
}

// safeUpdate calls s.Update with panic recovery.
func (t *Tracker) safeUpdate(s Subscriber) {
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			t.logger.Error("subscriber panic",
				"code", "E012",
				"panic", r,
				"stack", string(stack))
			t.report(errors.New("E012").WithDetail(fmt.Sprint(r)))
		}
	}()
	s.Update()
}

func (t *Tracker) report(err error) {
	if t.onError != nil {
		t.onError(err)
	}
}
