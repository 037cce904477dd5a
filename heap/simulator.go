package heap

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/heapsim/heap/internal/utils"
	"github.com/vkngwrapper/heapsim/memutils"
	"github.com/vkngwrapper/heapsim/memutils/coalesce"
	"github.com/vkngwrapper/heapsim/memutils/metadata"
	"github.com/vkngwrapper/heapsim/timing"
)

const (
	MessageOutOfMemory    = "Out of memory! No free block large enough."
	MessageSplitCompleted = "Block split completed"
	MessageFreeing        = "Freeing block"
)

func messageSplitting(strategy metadata.AllocationStrategy) string {
	return fmt.Sprintf("Splitting free block (%s)", strategy)
}

func messageInPlace(strategy metadata.AllocationStrategy) string {
	return fmt.Sprintf("Allocating in existing block (%s)", strategy)
}

// Simulator is an animated heap allocator. See the package documentation for an overview.
type Simulator struct {
	timing.HookableBase

	logger      *slog.Logger
	engine      timing.Engine
	mutex       utils.OptionalMutex
	createFlags CreateFlags
	delays      Delays

	metadata  *metadata.HeapMetadata
	coalescer coalesce.Context

	operationsDisabled bool
	coalescing         bool
	status             string
	animating          []metadata.BlockID
	transitions        map[metadata.BlockID]Transition
	generation         uint64
}

var _ timing.Handler = &Simulator{}
var _ timing.Hookable = &Simulator{}

// AllocationResult describes what Allocate decided to do. The allocation itself completes
// once the engine reaches the end of the allocation's phases.
type AllocationResult struct {
	// OutOfMemory is true if no free block could hold the request. The heap is unchanged.
	OutOfMemory bool
	// Request is the placement chosen for the allocation when OutOfMemory is false
	Request metadata.AllocationRequest
}

// Allocate begins allocating requestedSize bytes with the given strategy. It returns
// ErrOperationsDisabled while another operation is running. Running out of memory is not an
// error: it is reported through AllocationResult.OutOfMemory and a transient status message.
//
// requestedSize is not clamped; presentation layers clamp with SizeLimits before calling.
func (s *Simulator) Allocate(requestedSize int, strategy metadata.AllocationStrategy) (AllocationResult, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.logger.Debug("Simulator::Allocate")

	if s.operationsDisabled {
		return AllocationResult{}, ErrOperationsDisabled
	}

	found, request, err := s.metadata.CreateAllocationRequest(requestedSize, strategy)
	if err != nil {
		s.logger.LogAttrs(context.Background(), slog.LevelWarn, "rejected allocation",
			slog.Int("size", requestedSize),
			slog.String("strategy", strategy.String()),
			slog.Any("error", err),
		)
		return AllocationResult{}, err
	}

	s.operationsDisabled = true

	if !found {
		s.status = MessageOutOfMemory
		s.logger.LogAttrs(context.Background(), slog.LevelDebug, "out of memory",
			slog.Int("size", requestedSize),
			slog.String("strategy", strategy.String()),
		)
		s.invokeHook(HookPosOutOfMemory, Event{Strategy: strategy, RequestedSize: requestedSize})
		s.schedulePhase(s.delays.OutOfMemory, phaseEvent{phase: phaseSettle})
		return AllocationResult{OutOfMemory: true}, nil
	}

	s.animating = []metadata.BlockID{request.BlockID}

	if request.Type == metadata.AllocationRequestSplit {
		s.status = messageSplitting(strategy)
		s.schedulePhase(s.delays.Split, phaseEvent{phase: phaseSplit, request: request})
	} else {
		s.status = messageInPlace(strategy)
		s.schedulePhase(s.delays.InPlace, phaseEvent{phase: phaseInPlace, request: request})
	}

	s.logger.LogAttrs(context.Background(), slog.LevelDebug, "allocation selected block",
		slog.Int("block", int(request.BlockID)),
		slog.Int("size", requestedSize),
		slog.String("strategy", strategy.String()),
		slog.String("type", request.Type.String()),
	)

	return AllocationResult{Request: request}, nil
}

// Free begins freeing a block. It returns ErrOperationsDisabled while another operation is
// running, ErrBlockNotFound for an unknown id and ErrBlockNotAllocated for a free block.
// Once the block has been marked free for a moment, it is merged with any free neighbours.
func (s *Simulator) Free(id metadata.BlockID) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.logger.Debug("Simulator::Free")

	if s.operationsDisabled || s.coalescing {
		return ErrOperationsDisabled
	}

	err := s.metadata.MarkFree(id)
	if err != nil {
		s.logger.LogAttrs(context.Background(), slog.LevelWarn, "rejected free",
			slog.Int("block", int(id)),
			slog.Any("error", err),
		)
		return err
	}

	s.operationsDisabled = true
	s.animating = []metadata.BlockID{id}
	s.status = MessageFreeing

	s.invokeHook(HookPosFree, Event{Blocks: []metadata.BlockID{id}})
	s.schedulePhase(s.delays.FreeSettle, phaseEvent{phase: phaseCoalesceBegin, block: id})

	return nil
}

// Reset returns the heap to a single free block spanning the whole heap and drops any
// operation in progress. It is allowed at any time.
func (s *Simulator) Reset() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.logger.Debug("Simulator::Reset")

	s.generation++
	cancelled := s.engine.Cancel(s)

	s.metadata.Clear()
	s.clearTransientState()
	s.coalescing = false
	s.operationsDisabled = false

	if cancelled > 0 {
		s.logger.LogAttrs(context.Background(), slog.LevelDebug, "reset cancelled pending phases",
			slog.Int("count", cancelled),
		)
	}

	memutils.DebugValidate(s.metadata)
	s.invokeHook(HookPosReset, Event{})
}

// Handle runs one phase of the operation in progress. It is called by the engine.
func (s *Simulator) Handle(e timing.Event) error {
	evt, ok := e.(phaseEvent)
	if !ok {
		return errors.AssertionFailedf("simulator received an unexpected event of type %T", e)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if evt.generation != s.generation {
		return nil
	}

	s.logger.LogAttrs(context.Background(), slog.LevelDebug, "phase",
		slog.String("phase", evt.phase.String()),
		slog.Duration("time", evt.Time()),
	)

	var err error
	switch evt.phase {
	case phaseSplit:
		err = s.split(evt.request)
	case phaseInPlace:
		err = s.allocateInPlace(evt.request)
	case phaseSettle:
		s.settle()
	case phaseCoalesceBegin:
		err = s.beginCoalescing(evt.block)
	case phaseCoalesceStep:
		err = s.coalesceStep()
	case phaseCoalesceEnd:
		s.coalescing = false
		s.settle()
	default:
		err = errors.AssertionFailedf("unknown phase %d", evt.phase)
	}

	if err != nil {
		return s.fail(err)
	}

	memutils.DebugValidate(s.metadata)
	return nil
}

func (s *Simulator) split(request metadata.AllocationRequest) error {
	newBlockID, err := s.metadata.Alloc(request)
	if err != nil {
		return err
	}

	s.transitions[request.BlockID] = TransitionSplitting
	s.transitions[newBlockID] = TransitionSplitting
	s.animating = []metadata.BlockID{request.BlockID, newBlockID}
	s.status = MessageSplitCompleted

	s.invokeHook(HookPosSplit, Event{
		Blocks:        []metadata.BlockID{request.BlockID, newBlockID},
		Strategy:      request.Strategy,
		RequestedSize: request.RequestedSize,
	})
	s.schedulePhase(s.delays.SplitSettle, phaseEvent{phase: phaseSettle})
	return nil
}

func (s *Simulator) allocateInPlace(request metadata.AllocationRequest) error {
	_, err := s.metadata.Alloc(request)
	if err != nil {
		return err
	}

	s.invokeHook(HookPosAllocate, Event{
		Blocks:        []metadata.BlockID{request.BlockID},
		Strategy:      request.Strategy,
		RequestedSize: request.RequestedSize,
	})
	s.settle()
	return nil
}

func (s *Simulator) beginCoalescing(freed metadata.BlockID) error {
	s.animating = nil

	err := s.coalescer.Init(freed)
	if err != nil {
		return err
	}

	if !s.coalescer.NeedsCoalescing() {
		s.settle()
		return nil
	}

	s.coalescing = true
	return s.coalesceStep()
}

func (s *Simulator) coalesceStep() error {
	result, err := s.coalescer.ExecuteNext()
	if err != nil {
		return err
	}

	step := result.Step
	switch step.Kind {
	case coalesce.StepHighlight:
		s.status = step.Message
		s.animating = step.BlockIDs()
		s.invokeHook(HookPosHighlight, Event{Blocks: step.BlockIDs()})
		s.schedulePhase(s.delays.Highlight, phaseEvent{phase: phaseCoalesceStep})
	case coalesce.StepMerge:
		s.transitions[step.Target] = TransitionCoalescing
		s.transitions[step.Source] = TransitionCoalescing
		s.status = step.Message
		s.animating = step.BlockIDs()
		s.invokeHook(HookPosMergeStep, Event{Blocks: step.BlockIDs()})
		s.schedulePhase(s.delays.Merge, phaseEvent{phase: phaseCoalesceStep})
	case coalesce.StepFinalize:
		s.clearTransientState()
		s.invokeHook(HookPosFinalize, Event{Blocks: result.Removed})
		s.schedulePhase(s.delays.Finalize, phaseEvent{phase: phaseCoalesceEnd})

		s.logger.LogAttrs(context.Background(), slog.LevelDebug, "coalescing finalized",
			slog.Int("freed", int(s.coalescer.Freed())),
			slog.Int("merges", s.coalescer.Stats.Merges),
			slog.Int("headerBytesReclaimed", s.coalescer.Stats.HeaderBytesReclaimed),
			slog.Int("blocksRemoved", s.coalescer.Stats.BlocksRemoved),
		)
	}

	return nil
}

// settle ends the operation in progress
func (s *Simulator) settle() {
	s.clearTransientState()
	s.operationsDisabled = false
	s.invokeHook(HookPosIdle, Event{})
}

// fail logs an internal failure and puts the simulator back into a usable state
func (s *Simulator) fail(err error) error {
	s.logger.LogAttrs(context.Background(), slog.LevelError, "heap operation failed",
		slog.Any("error", err),
	)

	s.metadata.Finalize()
	s.coalescing = false
	s.settle()

	return err
}

func (s *Simulator) clearTransientState() {
	s.status = ""
	s.animating = nil
	clear(s.transitions)
}

// Blocks returns the live blocks in address order
func (s *Simulator) Blocks() []metadata.Block {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.metadata.Blocks()
}

// Block returns the live block with the given id
func (s *Simulator) Block(id metadata.BlockID) (metadata.Block, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.metadata.Block(id)
}

func (s *Simulator) Status() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.status
}

// AnimatingBlocks returns the ids of the blocks the current phase is showing
func (s *Simulator) AnimatingBlocks() []metadata.BlockID {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return slices.Clone(s.animating)
}

// Transition returns the animation a block is taking part in
func (s *Simulator) Transition(id metadata.BlockID) Transition {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.transitions[id]
}

func (s *Simulator) OperationsDisabled() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.operationsDisabled
}

func (s *Simulator) IsCoalescing() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.coalescing
}

// Statistics returns block counts and byte totals for the live blocks
func (s *Simulator) Statistics() memutils.Statistics {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var stats memutils.Statistics
	s.metadata.AddStatistics(&stats)
	return stats
}

// DetailedStatistics returns Statistics plus block size extremes and requested bytes
func (s *Simulator) DetailedStatistics() memutils.DetailedStatistics {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var stats memutils.DetailedStatistics
	stats.Clear()
	s.metadata.AddDetailedStatistics(&stats)
	return stats
}

// Validate checks the heap invariants
func (s *Simulator) Validate() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.metadata.Validate()
}

// HeapSize returns the total size of the heap in bytes
func (s *Simulator) HeapSize() int {
	return s.metadata.Size()
}

// Engine returns the engine the simulator schedules its phases on
func (s *Simulator) Engine() timing.Engine {
	return s.engine
}

// BlockState is a block together with its presentation state
type BlockState struct {
	metadata.Block
	Transition Transition
	Animating  bool
}

// Snapshot is a consistent view of the whole simulator at one instant
type Snapshot struct {
	Time               timing.VTime
	Blocks             []BlockState
	Status             string
	OperationsDisabled bool
	Coalescing         bool
	Statistics         memutils.DetailedStatistics
}

// Snapshot captures every output of the simulator under a single lock
func (s *Simulator) Snapshot() Snapshot {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	snapshot := Snapshot{
		Time:               s.engine.Now(),
		Status:             s.status,
		OperationsDisabled: s.operationsDisabled,
		Coalescing:         s.coalescing,
	}

	for _, block := range s.metadata.Blocks() {
		snapshot.Blocks = append(snapshot.Blocks, BlockState{
			Block:      block,
			Transition: s.transitions[block.ID],
			Animating:  slices.Contains(s.animating, block.ID),
		})
	}

	snapshot.Statistics.Clear()
	s.metadata.AddDetailedStatistics(&snapshot.Statistics)

	return snapshot
}
