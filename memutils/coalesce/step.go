package coalesce

import (
	"github.com/vkngwrapper/heapsim/memutils/metadata"
)

// StepKind identifies what a single Step does to the heap
type StepKind uint32

const (
	// StepHighlight draws attention to a pair of adjacent free blocks. It does not change the heap.
	StepHighlight StepKind = iota
	// StepMerge folds the source block into the target block
	StepMerge
	// StepFinalize physically removes every block that was merged away
	StepFinalize
)

var stepKindMapping = map[StepKind]string{
	StepHighlight: "Highlight",
	StepMerge:     "Merge",
	StepFinalize:  "Finalize",
}

func (k StepKind) String() string {
	return stepKindMapping[k]
}

// Direction identifies which neighbour of the freed block a step concerns
type Direction uint32

const (
	DirectionNone Direction = iota
	DirectionNext
	DirectionPrevious
)

var directionMapping = map[Direction]string{
	DirectionNone:     "None",
	DirectionNext:     "Next",
	DirectionPrevious: "Previous",
}

func (d Direction) String() string {
	return directionMapping[d]
}

const (
	MessageFoundNext      = "Found adjacent free block (next)"
	MessageMergeNext      = "Coalescing with next block"
	MessageFoundPrevious  = "Found adjacent free block (previous)"
	MessageMergePrevious  = "Coalescing with previous block"
	MessageFinalizeLayout = "Finalizing memory layout"
)

// Step is one stage of a coalescing run
type Step struct {
	Kind      StepKind
	Direction Direction
	// Source is the block being absorbed. It is NoBlock for finalize steps.
	Source metadata.BlockID
	// Target is the block that survives. It is NoBlock for finalize steps.
	Target metadata.BlockID
	// Message is the status line that describes this step
	Message string
}

// BlockIDs returns the blocks this step concerns, in address order
func (s Step) BlockIDs() []metadata.BlockID {
	if s.Kind == StepFinalize {
		return nil
	}

	return []metadata.BlockID{s.Target, s.Source}
}

func highlightStep(direction Direction, source, target metadata.BlockID) Step {
	message := MessageFoundNext
	if direction == DirectionPrevious {
		message = MessageFoundPrevious
	}

	return Step{Kind: StepHighlight, Direction: direction, Source: source, Target: target, Message: message}
}

func mergeStep(direction Direction, source, target metadata.BlockID) Step {
	message := MessageMergeNext
	if direction == DirectionPrevious {
		message = MessageMergePrevious
	}

	return Step{Kind: StepMerge, Direction: direction, Source: source, Target: target, Message: message}
}
