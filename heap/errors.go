package heap

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/heapsim/memutils/metadata"
)

var (
	// ErrOperationsDisabled is returned when an operation is requested while another is still animating
	ErrOperationsDisabled = errors.New("another heap operation is in progress")
	// ErrBlockNotFound is returned when freeing a block id that does not name a live block
	ErrBlockNotFound = metadata.ErrBlockNotFound
	// ErrBlockNotAllocated is returned when freeing a block that is already free
	ErrBlockNotAllocated = metadata.ErrBlockNotAllocated
	// ErrInvalidSize is returned when allocating less than one byte
	ErrInvalidSize = metadata.ErrInvalidSize
	// ErrUnknownStrategy is returned when allocating with an unknown strategy
	ErrUnknownStrategy = metadata.ErrUnknownStrategy
)
