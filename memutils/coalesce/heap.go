package coalesce

import "github.com/vkngwrapper/heapsim/memutils/metadata"

//go:generate mockgen -destination mocks/heap.go -package mock_coalesce github.com/vkngwrapper/heapsim/memutils/coalesce Heap

// Heap is the subset of metadata.BlockMetadata that a coalescing run needs. The run reads the
// latest state through it before every step, so it is safe for the heap to be inspected by
// other code between steps.
type Heap interface {
	Block(id metadata.BlockID) (metadata.Block, bool)
	Successor(id metadata.BlockID) (metadata.Block, bool)
	Predecessor(id metadata.BlockID) (metadata.Block, bool)
	Merge(source metadata.BlockID, target metadata.BlockID) error
	Finalize() []metadata.BlockID
}

var _ Heap = (metadata.BlockMetadata)(nil)
