package memutils

import "math"

// Statistics holds the four headline numbers for a heap. Blocks that are waiting to be
// removed by a coalescing pass are never counted.
type Statistics struct {
	BlockCount     int
	UsedBlockCount int
	HeapBytes      int
	UsedBytes      int
}

func (s *Statistics) Clear() {
	s.BlockCount = 0
	s.UsedBlockCount = 0
	s.HeapBytes = 0
	s.UsedBytes = 0
}

func (s *Statistics) AddStatistics(other *Statistics) {
	s.BlockCount += other.BlockCount
	s.UsedBlockCount += other.UsedBlockCount
	s.HeapBytes += other.HeapBytes
	s.UsedBytes += other.UsedBytes
}

// FreeBytes is the sum of the total size of every free block
func (s *Statistics) FreeBytes() int {
	return s.HeapBytes - s.UsedBytes
}

// FreeBlockCount is the number of free blocks
func (s *Statistics) FreeBlockCount() int {
	return s.BlockCount - s.UsedBlockCount
}

type DetailedStatistics struct {
	Statistics
	// RequestedBytes is the sum of the sizes callers asked for. The difference between this and
	// UsedBytes is header and alignment overhead.
	RequestedBytes    int
	AllocationSizeMin int
	AllocationSizeMax int
	FreeBlockSizeMin  int
	FreeBlockSizeMax  int
}

func (s *DetailedStatistics) Clear() {
	s.Statistics.Clear()
	s.RequestedBytes = 0
	s.AllocationSizeMin = math.MaxInt
	s.AllocationSizeMax = 0
	s.FreeBlockSizeMin = math.MaxInt
	s.FreeBlockSizeMax = 0
}

func (s *DetailedStatistics) AddFreeBlock(size int) {
	s.BlockCount++
	s.HeapBytes += size

	if size < s.FreeBlockSizeMin {
		s.FreeBlockSizeMin = size
	}

	if size > s.FreeBlockSizeMax {
		s.FreeBlockSizeMax = size
	}
}

func (s *DetailedStatistics) AddAllocation(size int, requestedSize int) {
	s.BlockCount++
	s.UsedBlockCount++
	s.HeapBytes += size
	s.UsedBytes += size
	s.RequestedBytes += requestedSize

	if size < s.AllocationSizeMin {
		s.AllocationSizeMin = size
	}

	if size > s.AllocationSizeMax {
		s.AllocationSizeMax = size
	}
}

func (s *DetailedStatistics) AddDetailedStatistics(other *DetailedStatistics) {
	s.Statistics.AddStatistics(&other.Statistics)
	s.RequestedBytes += other.RequestedBytes

	if other.FreeBlockSizeMin < s.FreeBlockSizeMin {
		s.FreeBlockSizeMin = other.FreeBlockSizeMin
	}

	if other.FreeBlockSizeMax > s.FreeBlockSizeMax {
		s.FreeBlockSizeMax = other.FreeBlockSizeMax
	}

	if other.AllocationSizeMin < s.AllocationSizeMin {
		s.AllocationSizeMin = other.AllocationSizeMin
	}

	if other.AllocationSizeMax > s.AllocationSizeMax {
		s.AllocationSizeMax = other.AllocationSizeMax
	}
}

// ExternalFragmentation returns 1 - (largest free block / free bytes): 0 when all free memory
// sits in one block, approaching 1 as it is scattered across many small ones.
func (s *DetailedStatistics) ExternalFragmentation() float64 {
	free := s.FreeBytes()
	if free == 0 {
		return 0
	}

	return 1 - float64(s.FreeBlockSizeMax)/float64(free)
}
