package metadata

// AllocationRequestType is an enum that indicates how an allocation will be placed in its block.
// It is returned in AllocationRequest from CreateAllocationRequest
type AllocationRequestType uint32

const (
	// AllocationRequestSplit indicates that the chosen free block is large enough to be divided: the
	// front becomes the allocation and the remainder becomes a new free block. A block is split only
	// when the unaligned remainder (DataSize - size + HeaderSize) is at least MinBlockSize and the
	// remainder left after aligning the front is still at least HeaderSize. Remainders of 48 to 55
	// bytes can fail the second check, and those blocks are allocated in place.
	AllocationRequestSplit AllocationRequestType = iota
	// AllocationRequestInPlace indicates that the remainder would be too small to stand alone, so the
	// whole free block is handed to the allocation
	AllocationRequestInPlace
)

var allocationRequestMapping = map[AllocationRequestType]string{
	AllocationRequestSplit:   "Split",
	AllocationRequestInPlace: "InPlace",
}

func (t AllocationRequestType) String() string {
	return allocationRequestMapping[t]
}

// AllocationRequest is a type returned from BlockMetadata.CreateAllocationRequest which indicates where and how
// the metadata intends to place a new allocation. Nothing changes in the heap until it is committed with
// BlockMetadata.Alloc, which allows the consumer to present the choice before acting on it.
type AllocationRequest struct {
	// BlockID is the free block selected by the strategy
	BlockID BlockID
	// Address is the address of the selected block when the request was created
	Address Address
	// RequestedSize is the number of bytes the caller asked for
	RequestedSize int
	// Strategy is the strategy that selected BlockID
	Strategy AllocationStrategy
	// Type identifies whether the block will be split or used whole
	Type AllocationRequestType

	// FirstTotalSize is the total size of the allocated block after the allocation is committed
	FirstTotalSize int
	// SecondTotalSize is the total size of the new free block produced by a split, or 0
	SecondTotalSize int
}
