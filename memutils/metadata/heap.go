package metadata

import (
	"cmp"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/heapsim/memutils"
)

type heapBlock struct {
	Block
	markedForRemoval bool
}

// HeapMetadata is the BlockMetadata implementation for a simulated heap. Blocks are kept in a
// slice sorted by address alongside an id index, so neighbour lookups are a binary search and
// id lookups are a single map read.
type HeapMetadata struct {
	size           int
	initialAddress Address

	lastBlockID  BlockID
	blocks       []*heapBlock
	blockKey     *swiss.Map[BlockID, *heapBlock]
	pendingCount int
}

var _ BlockMetadata = &HeapMetadata{}

func NewHeapMetadata() *HeapMetadata {
	return &HeapMetadata{}
}

func (m *HeapMetadata) Init(size int, initialAddress Address) {
	memutils.DebugCheckPow2(Alignment, "Alignment")

	m.size = size
	m.initialAddress = initialAddress
	m.lastBlockID = NoBlock
	m.blocks = m.blocks[:0]
	m.blockKey = swiss.NewMap[BlockID, *heapBlock](42)
	m.pendingCount = 0

	m.insertBlock(0, Block{
		ID:         m.nextBlockID(),
		Address:    initialAddress,
		HeaderSize: HeaderSize,
		DataSize:   size - HeaderSize,
		TotalSize:  size,
		Free:       true,
		Next:       NoAddress,
	})
}

// InitLayout replaces the heap with an explicit chain of blocks. The layout must be contiguous,
// aligned and start at its first block's address; the heap size becomes the sum of the block sizes.
// Block ids must be unique and non-zero; new ids continue after the largest one in the layout.
// The heap is left untouched if the layout is rejected.
func (m *HeapMetadata) InitLayout(layout []Block) error {
	if len(layout) == 0 {
		return errors.New("a heap layout must contain at least one block")
	}

	staged := &HeapMetadata{
		initialAddress: layout[0].Address,
		blockKey:       swiss.NewMap[BlockID, *heapBlock](uint32(len(layout))),
	}

	for index, block := range layout {
		if block.ID == NoBlock {
			return errors.Newf("block at address %d has no id", block.Address)
		}
		if staged.blockKey.Has(block.ID) {
			return errors.Newf("block id %d appears more than once in the layout", block.ID)
		}

		block.HeaderSize = HeaderSize
		staged.insertBlock(index, block)
		staged.size += block.TotalSize
		staged.lastBlockID = max(staged.lastBlockID, block.ID)
	}

	err := staged.Validate()
	if err != nil {
		return errors.Wrap(err, "invalid heap layout")
	}

	*m = *staged
	return nil
}

func (m *HeapMetadata) Clear() {
	m.Init(m.size, m.initialAddress)
}

func (m *HeapMetadata) Size() int { return m.size }

func (m *HeapMetadata) InitialAddress() Address { return m.initialAddress }

func (m *HeapMetadata) BlockCount() int {
	return len(m.blocks) - m.pendingCount
}

func (m *HeapMetadata) nextBlockID() BlockID {
	m.lastBlockID++
	return m.lastBlockID
}

func (m *HeapMetadata) insertBlock(index int, block Block) *heapBlock {
	b := &heapBlock{Block: block}
	m.blocks = slices.Insert(m.blocks, index, b)
	m.blockKey.Put(b.ID, b)
	return b
}

func (m *HeapMetadata) getBlock(id BlockID) (*heapBlock, error) {
	block, ok := m.blockKey.Get(id)
	if !ok || block.markedForRemoval {
		return nil, errors.Wrapf(ErrBlockNotFound, "block #%d", id)
	}
	return block, nil
}

func (m *HeapMetadata) indexOf(address Address) (int, bool) {
	return slices.BinarySearchFunc(m.blocks, address, func(b *heapBlock, target Address) int {
		return cmp.Compare(b.Address, target)
	})
}

func (m *HeapMetadata) liveBlockAt(address Address) *heapBlock {
	if address == NoAddress {
		return nil
	}

	index, found := m.indexOf(address)
	if !found || m.blocks[index].markedForRemoval {
		return nil
	}

	return m.blocks[index]
}

func (m *HeapMetadata) Blocks() []Block {
	blocks := make([]Block, 0, m.BlockCount())
	for _, block := range m.blocks {
		if !block.markedForRemoval {
			blocks = append(blocks, block.Block)
		}
	}

	return blocks
}

func (m *HeapMetadata) Block(id BlockID) (Block, bool) {
	block, err := m.getBlock(id)
	if err != nil {
		return Block{}, false
	}
	return block.Block, true
}

func (m *HeapMetadata) BlockAt(address Address) (Block, bool) {
	block := m.liveBlockAt(address)
	if block == nil {
		return Block{}, false
	}
	return block.Block, true
}

func (m *HeapMetadata) Successor(id BlockID) (Block, bool) {
	block, err := m.getBlock(id)
	if err != nil {
		return Block{}, false
	}

	return m.BlockAt(block.Next)
}

func (m *HeapMetadata) Predecessor(id BlockID) (Block, bool) {
	block, err := m.getBlock(id)
	if err != nil {
		return Block{}, false
	}

	index, _ := m.indexOf(block.Address)
	for i := index - 1; i >= 0; i-- {
		candidate := m.blocks[i]
		if candidate.markedForRemoval {
			continue
		}

		if candidate.Next == block.Address {
			return candidate.Block, true
		}
		break
	}

	return Block{}, false
}

func (m *HeapMetadata) VisitAllBlocks(handleBlock func(block Block) error) error {
	for _, block := range m.blocks {
		if block.markedForRemoval {
			continue
		}

		err := handleBlock(block.Block)
		if err != nil {
			return err
		}
	}

	return nil
}

func (m *HeapMetadata) selectBlock(size int, strategy AllocationStrategy) *heapBlock {
	var selected *heapBlock

	// Blocks are already in address order, so keeping the first block that wins a strict
	// comparison breaks every tie toward the lowest address.
	for _, block := range m.blocks {
		if block.markedForRemoval || !block.Free || block.DataSize < size {
			continue
		}

		if selected == nil {
			selected = block
			if strategy == AllocationStrategyFirstFit {
				break
			}
			continue
		}

		switch strategy {
		case AllocationStrategyBestFit:
			if block.DataSize < selected.DataSize {
				selected = block
			}
		case AllocationStrategyWorstFit:
			if block.DataSize > selected.DataSize {
				selected = block
			}
		}
	}

	return selected
}

func (m *HeapMetadata) CreateAllocationRequest(size int, strategy AllocationStrategy) (bool, AllocationRequest, error) {
	if size < 1 {
		return false, AllocationRequest{}, errors.Wrapf(ErrInvalidSize, "requested %d bytes", size)
	}
	if !strategy.IsValid() {
		return false, AllocationRequest{}, errors.Wrapf(ErrUnknownStrategy, "%d", uint32(strategy))
	}

	block := m.selectBlock(size, strategy)
	if block == nil {
		return false, AllocationRequest{}, nil
	}

	request := AllocationRequest{
		BlockID:        block.ID,
		Address:        block.Address,
		RequestedSize:  size,
		Strategy:       strategy,
		Type:           AllocationRequestInPlace,
		FirstTotalSize: block.TotalSize,
	}

	remainingTotalSize := (block.DataSize - size) + HeaderSize
	firstTotalSize := memutils.AlignUp(HeaderSize+size, Alignment)
	secondTotalSize := block.TotalSize - firstTotalSize

	// Alignment can eat into the remainder, so the second block must also be able to hold its own header
	if remainingTotalSize >= MinBlockSize && secondTotalSize >= HeaderSize {
		request.Type = AllocationRequestSplit
		request.FirstTotalSize = firstTotalSize
		request.SecondTotalSize = secondTotalSize
	}

	return true, request, nil
}

func (m *HeapMetadata) Alloc(request AllocationRequest) (BlockID, error) {
	block, err := m.getBlock(request.BlockID)
	if err != nil {
		return NoBlock, errors.Mark(err, ErrStaleRequest)
	}

	if !block.Free {
		return NoBlock, errors.Wrapf(ErrStaleRequest, "block #%d is no longer free", block.ID)
	}
	if block.Address != request.Address {
		return NoBlock, errors.Wrapf(ErrStaleRequest, "block #%d moved from %d to %d", block.ID, request.Address, block.Address)
	}
	if block.DataSize < request.RequestedSize {
		return NoBlock, errors.Wrapf(ErrStaleRequest, "block #%d holds %d bytes but %d were requested", block.ID, block.DataSize, request.RequestedSize)
	}

	if request.Type == AllocationRequestInPlace {
		block.Free = false
		block.RequestedSize = request.RequestedSize
		return NoBlock, nil
	}

	if request.FirstTotalSize+request.SecondTotalSize != block.TotalSize {
		return NoBlock, errors.AssertionFailedf(
			"split of block #%d does not conserve size: %d + %d != %d",
			block.ID, request.FirstTotalSize, request.SecondTotalSize, block.TotalSize,
		)
	}

	index, _ := m.indexOf(block.Address)
	newBlock := m.insertBlock(index+1, Block{
		ID:         m.nextBlockID(),
		Address:    block.Address + Address(request.FirstTotalSize),
		HeaderSize: HeaderSize,
		DataSize:   request.SecondTotalSize - HeaderSize,
		TotalSize:  request.SecondTotalSize,
		Free:       true,
		Next:       block.Next,
	})

	block.TotalSize = request.FirstTotalSize
	block.DataSize = request.FirstTotalSize - HeaderSize
	block.Free = false
	block.RequestedSize = request.RequestedSize
	block.Next = newBlock.Address

	return newBlock.ID, nil
}

func (m *HeapMetadata) MarkFree(id BlockID) error {
	block, err := m.getBlock(id)
	if err != nil {
		return err
	}

	if block.Free {
		return errors.Wrapf(ErrBlockNotAllocated, "block #%d", id)
	}

	block.Free = true
	block.RequestedSize = 0
	return nil
}

func (m *HeapMetadata) Merge(source BlockID, target BlockID) error {
	sourceBlock, err := m.getBlock(source)
	if err != nil {
		return errors.Wrap(err, "merge source")
	}

	targetBlock, err := m.getBlock(target)
	if err != nil {
		return errors.Wrap(err, "merge target")
	}

	if !sourceBlock.Free {
		return errors.Wrapf(ErrBlockNotFree, "merge source block #%d", source)
	}
	if !targetBlock.Free {
		return errors.Wrapf(ErrBlockNotFree, "merge target block #%d", target)
	}
	if targetBlock.End() != sourceBlock.Address || targetBlock.Next != sourceBlock.Address {
		return errors.Newf("block #%d at %d does not directly precede block #%d at %d", target, targetBlock.Address, source, sourceBlock.Address)
	}

	targetBlock.TotalSize += sourceBlock.TotalSize
	targetBlock.DataSize += sourceBlock.DataSize + sourceBlock.HeaderSize
	targetBlock.Next = sourceBlock.Next

	sourceBlock.markedForRemoval = true
	m.pendingCount++

	return nil
}

func (m *HeapMetadata) Finalize() []BlockID {
	if m.pendingCount == 0 {
		return nil
	}

	removed := make([]BlockID, 0, m.pendingCount)
	removedAddresses := make(map[Address]struct{}, m.pendingCount)

	m.blocks = slices.DeleteFunc(m.blocks, func(block *heapBlock) bool {
		if !block.markedForRemoval {
			return false
		}

		removed = append(removed, block.ID)
		removedAddresses[block.Address] = struct{}{}
		m.blockKey.Delete(block.ID)
		return true
	})
	m.pendingCount = 0

	for _, block := range m.blocks {
		if _, pointsAtRemoved := removedAddresses[block.Next]; pointsAtRemoved && m.liveBlockAt(block.Next) == nil {
			block.Next = NoAddress
		}
	}

	return removed
}

func (m *HeapMetadata) Validate() error {
	if m.blockKey == nil || len(m.blocks) == 0 {
		return errors.New("heap metadata has not been initialized")
	}

	if m.blockKey.Count() != len(m.blocks) {
		return errors.Errorf("heap has %d blocks but %d are indexed by id", len(m.blocks), m.blockKey.Count())
	}

	var previous *heapBlock
	expectedAddress := m.initialAddress
	sumSize := 0
	pendingCount := 0

	for _, block := range m.blocks {
		indexed, ok := m.blockKey.Get(block.ID)
		if !ok || indexed != block {
			return errors.Errorf("block #%d at address %d is not indexed by its id", block.ID, block.Address)
		}

		if block.markedForRemoval {
			pendingCount++
			continue
		}

		if block.Address != expectedAddress {
			return errors.Wrapf(memutils.ContiguityError, "block #%d is at address %d but the chain expects %d", block.ID, block.Address, expectedAddress)
		}

		if previous != nil && previous.Next != block.Address {
			return errors.Wrapf(memutils.ContiguityError, "block #%d links to %d but the next block is at %d", previous.ID, previous.Next, block.Address)
		}

		if !memutils.IsAligned(block.TotalSize, Alignment) || block.TotalSize <= 0 {
			return errors.Wrapf(memutils.AlignmentError, "block #%d has total size %d", block.ID, block.TotalSize)
		}

		if block.HeaderSize != HeaderSize || block.DataSize != block.TotalSize-block.HeaderSize || block.DataSize < 0 {
			return errors.Errorf("block #%d has header %d and data %d which do not make up its total size %d", block.ID, block.HeaderSize, block.DataSize, block.TotalSize)
		}

		if block.Free && block.RequestedSize != 0 {
			return errors.Errorf("free block #%d still records a requested size of %d", block.ID, block.RequestedSize)
		}

		if !block.Free && (block.RequestedSize <= 0 || block.RequestedSize > block.DataSize) {
			return errors.Errorf("allocated block #%d records a requested size of %d but holds %d bytes", block.ID, block.RequestedSize, block.DataSize)
		}

		sumSize += block.TotalSize
		expectedAddress = block.End()
		previous = block
	}

	if previous == nil {
		return errors.New("heap has no live blocks")
	}

	if previous.Next != NoAddress {
		return errors.Wrapf(memutils.ContiguityError, "last block #%d links to %d", previous.ID, previous.Next)
	}

	if sumSize != m.size {
		return errors.Wrapf(memutils.ConservationError, "blocks add up to %d bytes but the heap is %d bytes", sumSize, m.size)
	}

	if pendingCount != m.pendingCount {
		return errors.Errorf("found %d blocks marked for removal but %d were recorded", pendingCount, m.pendingCount)
	}

	return nil
}

func (m *HeapMetadata) AddDetailedStatistics(stats *memutils.DetailedStatistics) {
	for _, block := range m.blocks {
		if block.markedForRemoval {
			continue
		}

		if block.Free {
			stats.AddFreeBlock(block.TotalSize)
		} else {
			stats.AddAllocation(block.TotalSize, block.RequestedSize)
		}
	}
}

func (m *HeapMetadata) AddStatistics(stats *memutils.Statistics) {
	for _, block := range m.blocks {
		if block.markedForRemoval {
			continue
		}

		stats.BlockCount++
		stats.HeapBytes += block.TotalSize
		if !block.Free {
			stats.UsedBlockCount++
			stats.UsedBytes += block.TotalSize
		}
	}
}

func (m *HeapMetadata) BlockJsonData(json jwriter.ObjectState) {
	var stats memutils.Statistics
	m.AddStatistics(&stats)

	json.Name("TotalBytes").Int(m.size)
	json.Name("InitialAddress").Int(int(m.initialAddress))
	json.Name("UsedBytes").Int(stats.UsedBytes)
	json.Name("FreeBytes").Int(stats.FreeBytes())
	json.Name("UsedBlocks").Int(stats.UsedBlockCount)
	json.Name("FreeBlocks").Int(stats.FreeBlockCount())

	arrayState := json.Name("Blocks").Array()
	defer arrayState.End()

	_ = m.VisitAllBlocks(func(block Block) error {
		obj := arrayState.Object()
		defer obj.End()

		WriteBlockJson(&obj, block)
		return nil
	})
}

// WriteBlockJson writes the fields of a single block into a json object
func WriteBlockJson(obj *jwriter.ObjectState, block Block) {
	obj.Name("Id").Int(int(block.ID))
	obj.Name("Address").Int(int(block.Address))
	obj.Name("HeaderSize").Int(block.HeaderSize)
	obj.Name("DataSize").Int(block.DataSize)
	obj.Name("TotalSize").Int(block.TotalSize)
	obj.Name("RequestedSize").Int(block.RequestedSize)
	obj.Name("Free").Bool(block.Free)
	if block.HasNext() {
		obj.Name("Next").Int(int(block.Next))
	} else {
		obj.Name("Next").Null()
	}
}
