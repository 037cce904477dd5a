package metadata

import "github.com/cockroachdb/errors"

var (
	// ErrBlockNotFound is returned when a BlockID does not name a live block
	ErrBlockNotFound = errors.New("block not found")
	// ErrBlockNotAllocated is returned when freeing a block that is already free
	ErrBlockNotAllocated = errors.New("block is not allocated")
	// ErrBlockNotFree is returned when merging a block that is still allocated
	ErrBlockNotFree = errors.New("block is not free")
	// ErrInvalidSize is returned when an allocation of less than one byte is requested
	ErrInvalidSize = errors.New("allocation size must be at least one byte")
	// ErrUnknownStrategy is returned for an AllocationStrategy outside the known set
	ErrUnknownStrategy = errors.New("unknown allocation strategy")
	// ErrStaleRequest is returned from Alloc when the heap changed since the request was created
	ErrStaleRequest = errors.New("allocation request no longer matches the heap")
)
