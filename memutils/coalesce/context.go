package coalesce

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/heapsim/memutils/metadata"
)

// Stats contains basic metrics for a coalescing run
type Stats struct {
	// Merges is the number of merge steps that have completed
	Merges int
	// HeaderBytesReclaimed is the header overhead returned to usable data by merges
	HeaderBytesReclaimed int
	// BlocksRemoved is the number of blocks that finalize physically removed
	BlocksRemoved int
}

// StepResult reports what ExecuteNext did
type StepResult struct {
	Step Step
	// Removed lists the blocks removed by a finalize step
	Removed []metadata.BlockID
	// Done is true once the final step of the run has executed
	Done bool
}

// Context is the core of the coalescing logic. One is initialized each time a block is freed, and
// then driven one step at a time so that the consumer can pause between steps.
//
// Steps are decided once, from the heap as it looks when the run begins. A freed block whose
// successor and predecessor are both free first absorbs its successor and is then absorbed into
// its predecessor, so the predecessor ends up holding all three regions.
type Context struct {
	// Heap is the heap this context exists to coalesce
	Heap Heap
	// Stats contains statistics for the current run
	Stats Stats

	freed metadata.BlockID
	steps []Step
	next  int
}

// Init sets up this Context for a fresh run over the block that was just freed. Context can be
// reused for multiple runs, as long as this method is called prior to beginning each run.
// It returns an error if freed does not name a live, free block.
func (c *Context) Init(freed metadata.BlockID) error {
	if c.Heap == nil {
		panic("attempted to init coalescing context without a heap")
	}

	c.Stats = Stats{}
	c.freed = freed
	c.steps = c.steps[:0]
	c.next = 0

	block, ok := c.Heap.Block(freed)
	if !ok {
		return errors.Wrapf(metadata.ErrBlockNotFound, "freed block #%d", freed)
	}
	if !block.Free {
		return errors.Wrapf(metadata.ErrBlockNotFree, "freed block #%d", freed)
	}

	successor, hasSuccessor := c.Heap.Successor(freed)
	if hasSuccessor && successor.Free {
		c.steps = append(c.steps,
			highlightStep(DirectionNext, successor.ID, freed),
			mergeStep(DirectionNext, successor.ID, freed),
		)
	}

	predecessor, hasPredecessor := c.Heap.Predecessor(freed)
	if hasPredecessor && predecessor.Free {
		c.steps = append(c.steps,
			highlightStep(DirectionPrevious, freed, predecessor.ID),
			mergeStep(DirectionPrevious, freed, predecessor.ID),
		)
	}

	if len(c.steps) > 0 {
		c.steps = append(c.steps, Step{Kind: StepFinalize, Message: MessageFinalizeLayout})
	}

	return nil
}

// NeedsCoalescing returns true if Init found at least one free neighbour
func (c *Context) NeedsCoalescing() bool {
	return len(c.steps) > 0
}

// Freed returns the block this run was initialized for
func (c *Context) Freed() metadata.BlockID {
	return c.freed
}

// Steps returns every step in the run, including the ones already executed
func (c *Context) Steps() []Step {
	return c.steps
}

// Done returns true once every step has executed
func (c *Context) Done() bool {
	return c.next >= len(c.steps)
}

// Peek returns the step ExecuteNext will run, if any
func (c *Context) Peek() (Step, bool) {
	if c.Done() {
		return Step{}, false
	}

	return c.steps[c.next], true
}

// ExecuteNext runs the next step against the latest state of the heap. A merge step whose blocks
// are no longer where the run expects them produces an assertion failure and ends the run.
func (c *Context) ExecuteNext() (StepResult, error) {
	step, ok := c.Peek()
	if !ok {
		return StepResult{Done: true}, errors.AssertionFailedf("coalescing run for block #%d has no steps left", c.freed)
	}
	c.next++

	result := StepResult{Step: step}

	switch step.Kind {
	case StepHighlight:
	case StepMerge:
		source, ok := c.Heap.Block(step.Source)
		if !ok {
			c.abort()
			return result, errors.AssertionFailedf("merge source block #%d disappeared during coalescing", step.Source)
		}

		err := c.Heap.Merge(step.Source, step.Target)
		if err != nil {
			c.abort()
			return result, errors.NewAssertionErrorWithWrappedErrf(err, "merge of block #%d into block #%d failed", step.Source, step.Target)
		}

		c.Stats.Merges++
		c.Stats.HeaderBytesReclaimed += source.HeaderSize
	case StepFinalize:
		result.Removed = c.Heap.Finalize()
		c.Stats.BlocksRemoved += len(result.Removed)
	default:
		c.abort()
		return result, errors.AssertionFailedf("unknown coalescing step %d", step.Kind)
	}

	result.Done = c.Done()
	return result, nil
}

// abort skips to the end of the run and removes anything that was already merged
func (c *Context) abort() {
	c.next = len(c.steps)
	c.Stats.BlocksRemoved += len(c.Heap.Finalize())
}
