package timing

import (
	"errors"
	"reflect"
	"sync"
	"time"

	cerrors "github.com/cockroachdb/errors"
)

// TimeTeller can be used to get the current time.
type TimeTeller interface {
	Now() VTime
}

// EventScheduler can be used to schedule future events.
type EventScheduler interface {
	TimeTeller

	Schedule(e Event)
}

// An Engine is a unit that keeps the discrete event simulation run.
type Engine interface {
	Hookable
	EventScheduler

	// Cancel drops every pending event whose handler is handler and returns how many were dropped
	Cancel(handler Handler) int
	// Pending returns the number of events that have not run yet
	Pending() int

	// Run will process all the events until the queue is empty
	Run() error
	// RunUntil processes every event scheduled at or before t and then moves the clock to t
	RunUntil(t VTime) error
	// Advance is RunUntil(Now() + d)
	Advance(d time.Duration) error
}

// A SerialEngine is an Engine that always runs events one after another. Events scheduled for
// the same time run in the order they were scheduled.
//
// Handlers are called without any engine lock held, so they may schedule or cancel events.
// They must not call Run, RunUntil or Advance.
type SerialEngine struct {
	HookableBase

	lock  sync.Mutex
	time  VTime
	queue EventQueue

	runLock sync.Mutex
}

var _ Engine = &SerialEngine{}

// NewSerialEngine creates a SerialEngine
func NewSerialEngine() *SerialEngine {
	return &SerialEngine{}
}

// Now returns the current time at which the engine is at.
// Specifically, the run time of the current event.
func (e *SerialEngine) Now() VTime {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.time
}

// Schedule registers an event to happen in the future
func (e *SerialEngine) Schedule(evt Event) {
	e.lock.Lock()
	defer e.lock.Unlock()

	if evt.Time() < e.time {
		panic(cerrors.AssertionFailedf("scheduling an event at %s, earlier than current time %s", evt.Time(), e.time))
	}

	e.queue.Push(evt)
}

func (e *SerialEngine) Cancel(handler Handler) int {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.queue.RemoveFunc(func(evt Event) bool {
		return sameHandler(evt.Handler(), handler)
	})
}

func sameHandler(a, b Handler) bool {
	typeA := reflect.TypeOf(a)
	if typeA == nil || typeA != reflect.TypeOf(b) || !typeA.Comparable() {
		return false
	}

	return a == b
}

func (e *SerialEngine) Pending() int {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.queue.Len()
}

// Run processes all the events scheduled in the SerialEngine, including those scheduled by
// handlers while it runs. Handler errors do not stop the run; they are joined and returned.
func (e *SerialEngine) Run() error {
	return e.run(0, false)
}

func (e *SerialEngine) RunUntil(t VTime) error {
	return e.run(t, true)
}

func (e *SerialEngine) Advance(d time.Duration) error {
	return e.RunUntil(e.Now() + d)
}

func (e *SerialEngine) run(limit VTime, bounded bool) error {
	e.runLock.Lock()
	defer e.runLock.Unlock()

	var allErrors []error

	for {
		evt, ok := e.nextEvent(limit, bounded)
		if !ok {
			break
		}

		hookCtx := HookCtx{
			Domain: e,
			Now:    evt.Time(),
			Pos:    HookPosBeforeEvent,
			Item:   evt,
		}
		e.InvokeHook(hookCtx)

		err := evt.Handler().Handle(evt)
		if err != nil {
			allErrors = append(allErrors, err)
		}

		hookCtx.Pos = HookPosAfterEvent
		e.InvokeHook(hookCtx)
	}

	if bounded {
		e.lock.Lock()
		if e.time < limit {
			e.time = limit
		}
		e.lock.Unlock()
	}

	return errors.Join(allErrors...)
}

func (e *SerialEngine) nextEvent(limit VTime, bounded bool) (Event, bool) {
	e.lock.Lock()
	defer e.lock.Unlock()

	if e.queue.Len() == 0 {
		return nil, false
	}

	if bounded && e.queue.Peek().Time() > limit {
		return nil, false
	}

	evt := e.queue.Pop()
	e.time = evt.Time()
	return evt, true
}
