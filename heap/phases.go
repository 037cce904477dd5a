package heap

import (
	"github.com/vkngwrapper/heapsim/memutils/metadata"
	"github.com/vkngwrapper/heapsim/timing"
)

type phase uint32

const (
	phaseSplit phase = iota
	phaseInPlace
	phaseSettle
	phaseCoalesceBegin
	phaseCoalesceStep
	phaseCoalesceEnd
)

var phaseMapping = map[phase]string{
	phaseSplit:         "Split",
	phaseInPlace:       "InPlace",
	phaseSettle:        "Settle",
	phaseCoalesceBegin: "CoalesceBegin",
	phaseCoalesceStep:  "CoalesceStep",
	phaseCoalesceEnd:   "CoalesceEnd",
}

func (p phase) String() string {
	return phaseMapping[p]
}

// phaseEvent is a pending step of the operation in progress. Events from before the most
// recent reset carry an old generation and are ignored.
type phaseEvent struct {
	timing.EventBase

	phase      phase
	generation uint64
	request    metadata.AllocationRequest
	block      metadata.BlockID
}

var _ timing.Event = phaseEvent{}

func (s *Simulator) schedulePhase(delay timing.VTime, evt phaseEvent) {
	evt.EventBase = timing.NewEventBase(s.engine.Now()+delay, s)
	evt.generation = s.generation
	s.engine.Schedule(evt)
}
