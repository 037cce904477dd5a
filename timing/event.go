package timing

import (
	"time"

	"github.com/rs/xid"
)

// VTime is a point in simulated time, measured from the moment the engine was created
type VTime = time.Duration

// An Event is something going to happen in the future.
type Event interface {
	// ID uniquely identifies the event. Trace records use it to correlate entries.
	ID() string
	// Time returns the time that the event should happen
	Time() VTime
	// Handler returns the handler that should handle the event
	Handler() Handler
}

// HookPosBeforeEvent is a hook position that triggers before handling an event.
var HookPosBeforeEvent = &HookPos{Name: "BeforeEvent"}

// HookPosAfterEvent is a hook position that triggers after handling an event.
var HookPosAfterEvent = &HookPos{Name: "AfterEvent"}

// EventBase provides the basic fields and getters for other events
type EventBase struct {
	id      string
	time    VTime
	handler Handler
}

// NewEventBase creates a new EventBase
func NewEventBase(t VTime, handler Handler) EventBase {
	return EventBase{
		id:      xid.New().String(),
		time:    t,
		handler: handler,
	}
}

// ID returns the unique id of the event
func (e EventBase) ID() string {
	return e.id
}

// Time return the time that the event is going to happen
func (e EventBase) Time() VTime {
	return e.time
}

// Handler returns the handler to handle the event.
func (e EventBase) Handler() Handler {
	return e.handler
}

// A Handler defines a domain for the events.
//
// One event is always constrained to one Handler, which means the event can
// only be scheduled by one handler and can only directly modify that handler.
type Handler interface {
	Handle(e Event) error
}

// HandlerFunc adapts an ordinary function to the Handler interface. Events scheduled with a
// HandlerFunc cannot be cancelled by handler, because functions are not comparable.
type HandlerFunc func(e Event) error

func (f HandlerFunc) Handle(e Event) error {
	return f(e)
}
