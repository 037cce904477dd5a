package heap

import (
	"github.com/vkngwrapper/heapsim/memutils"
	"github.com/vkngwrapper/heapsim/memutils/metadata"
	"github.com/vkngwrapper/heapsim/timing"
)

var (
	// HookPosAllocate fires when a block is allocated whole
	HookPosAllocate = &timing.HookPos{Name: "Allocate"}
	// HookPosSplit fires when a free block has been split and its front allocated
	HookPosSplit = &timing.HookPos{Name: "Split"}
	// HookPosOutOfMemory fires when no free block can hold a request
	HookPosOutOfMemory = &timing.HookPos{Name: "OutOfMemory"}
	// HookPosFree fires when a block is marked free
	HookPosFree = &timing.HookPos{Name: "Free"}
	// HookPosHighlight fires when a coalescing run highlights a pair of free blocks
	HookPosHighlight = &timing.HookPos{Name: "Highlight"}
	// HookPosMergeStep fires after each merge of a coalescing run
	HookPosMergeStep = &timing.HookPos{Name: "MergeStep"}
	// HookPosFinalize fires when a coalescing run removes the merged blocks
	HookPosFinalize = &timing.HookPos{Name: "Finalize"}
	// HookPosReset fires when the heap is returned to a single free block
	HookPosReset = &timing.HookPos{Name: "Reset"}
	// HookPosIdle fires when an operation has finished and operations are enabled again
	HookPosIdle = &timing.HookPos{Name: "Idle"}
)

// Event is the HookCtx.Item passed to hooks registered on a Simulator. It is a copy: hooks may
// keep it, but must not call back into the Simulator that produced it.
type Event struct {
	// Time is the engine time at which the event happened
	Time timing.VTime
	// Blocks are the ids of the blocks involved, in the order the status message names them
	Blocks []metadata.BlockID
	// Strategy is the strategy of the allocation that produced the event, if any
	Strategy metadata.AllocationStrategy
	// RequestedSize is the size of the allocation that produced the event, if any
	RequestedSize int
	// Message is the status message at the time of the event
	Message string
	// Stats are the heap statistics after the event
	Stats memutils.Statistics
}

func (s *Simulator) invokeHook(pos *timing.HookPos, evt Event) {
	if s.NumHooks() == 0 {
		return
	}

	evt.Time = s.engine.Now()
	evt.Message = s.status
	s.metadata.AddStatistics(&evt.Stats)

	s.InvokeHook(timing.HookCtx{
		Domain: s,
		Now:    evt.Time,
		Pos:    pos,
		Item:   evt,
	})
}
