package metadata

import (
	"math"
	"strconv"
)

const (
	// HeaderSize is the number of bookkeeping bytes that precede the payload of every block
	HeaderSize = 24
	// Alignment is the granularity every block's total size is rounded up to
	Alignment = 16
	// MinBlockSize is the smallest total size a free block may have after a split. Remainders
	// smaller than this stay attached to the allocation that produced them.
	MinBlockSize = 48
)

// BlockID identifies a block for as long as it lives. IDs are never reused within one heap generation.
type BlockID int

const (
	// NoBlock is returned from methods that produce a BlockID when no block was produced
	NoBlock BlockID = 0
)

// Address is a simulated byte offset. It never refers to real memory.
type Address int

const (
	// NoAddress is the Next link of the last block in the chain
	NoAddress Address = math.MinInt
)

// String formats the address as lowercase hex with a 0x prefix, or NULL for NoAddress
func (a Address) String() string {
	if a == NoAddress {
		return "NULL"
	}

	return "0x" + strconv.FormatInt(int64(a), 16)
}

// Block is a snapshot of a single contiguous region of the simulated heap
type Block struct {
	ID            BlockID
	Address       Address
	HeaderSize    int
	DataSize      int
	TotalSize     int
	RequestedSize int
	Free          bool
	// Next is the address of the following block, or NoAddress for the last block in the chain
	Next Address
}

// HasNext returns true if this block is not the last one in the chain
func (b Block) HasNext() bool {
	return b.Next != NoAddress
}

// End returns the first address past this block
func (b Block) End() Address {
	return b.Address + Address(b.TotalSize)
}
