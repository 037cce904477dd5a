package metadata

import (
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/heapsim/memutils"
)

// BlockMetadata represents a single simulated heap. It manages the chain of blocks that partition
// the heap, allowing allocations to be requested and freed, adjacent free blocks to be merged, and
// the chain to be enumerated and queried.
type BlockMetadata interface {
	// Init must be called before the BlockMetadata is used. It discards every block and replaces
	// them with a single free block of size bytes starting at initialAddress.
	Init(size int, initialAddress Address)
	// Clear is equivalent to calling Init again with the values last passed to it
	Clear()
	// Size retrieves the size in bytes that the heap was initialized with
	Size() int
	// InitialAddress retrieves the address of the first block in the heap
	InitialAddress() Address

	// Validate performs internal consistency checks on the metadata: every live block is aligned,
	// the chain is contiguous from InitialAddress, and the block sizes add up to Size. When the
	// implementation is functioning correctly it should not be possible for this method to return
	// an error.
	Validate() error
	// BlockCount returns the number of live blocks, free or allocated
	BlockCount() int

	// Blocks returns a snapshot of every live block in address order. Blocks marked for removal
	// are not included.
	Blocks() []Block
	// Block retrieves a live block by id
	Block(id BlockID) (Block, bool)
	// BlockAt retrieves the live block that starts at address
	BlockAt(address Address) (Block, bool)
	// Successor retrieves the live block that id's Next link points at
	Successor(id BlockID) (Block, bool)
	// Predecessor retrieves the live block whose Next link points at id
	Predecessor(id BlockID) (Block, bool)
	// VisitAllBlocks will call the provided callback once for each live block in address order,
	// stopping at the first error.
	VisitAllBlocks(handleBlock func(block Block) error) error

	// CreateAllocationRequest retrieves an AllocationRequest indicating which free block the
	// strategy would carve size bytes from and whether it would be split. The boolean is false
	// when no free block has at least size bytes of data, which is not an error.
	CreateAllocationRequest(size int, strategy AllocationStrategy) (bool, AllocationRequest, error)
	// Alloc commits an AllocationRequest. It returns the id of the free block produced by a split,
	// or NoBlock. The implementation must return an error if the request is no longer valid.
	Alloc(request AllocationRequest) (BlockID, error)
	// MarkFree turns an allocated block back into a free block without merging it with its
	// neighbours.
	MarkFree(id BlockID) error
	// Merge folds source into target. target must directly precede source and both must be free.
	// source is marked for removal and disappears from every query until Finalize.
	Merge(source BlockID, target BlockID) error
	// Finalize physically removes every block marked for removal and returns their ids
	Finalize() []BlockID

	// AddDetailedStatistics sums this heap's statistics into the provided memutils.DetailedStatistics
	AddDetailedStatistics(stats *memutils.DetailedStatistics)
	// AddStatistics sums this heap's statistics into the provided memutils.Statistics
	AddStatistics(stats *memutils.Statistics)

	// BlockJsonData populates a json object with information about this heap
	BlockJsonData(json jwriter.ObjectState)
}
