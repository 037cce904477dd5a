package coalesce_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/heapsim/memutils/coalesce"
	mock_coalesce "github.com/vkngwrapper/heapsim/memutils/coalesce/mocks"
	"github.com/vkngwrapper/heapsim/memutils/metadata"
	"go.uber.org/mock/gomock"
)

func block(id metadata.BlockID, address metadata.Address, totalSize int, free bool, next metadata.Address) metadata.Block {
	requested := 0
	if !free {
		requested = 16
	}

	return metadata.Block{
		ID:            id,
		Address:       address,
		HeaderSize:    metadata.HeaderSize,
		DataSize:      totalSize - metadata.HeaderSize,
		TotalSize:     totalSize,
		RequestedSize: requested,
		Free:          free,
		Next:          next,
	}
}

func TestCoalesceSuccessorOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	freed := block(5, 1064, 64, true, 1128)
	successor := block(6, 1128, 96, true, metadata.NoAddress)

	heap := mock_coalesce.NewMockHeap(ctrl)
	heap.EXPECT().Block(metadata.BlockID(5)).Return(freed, true)
	heap.EXPECT().Successor(metadata.BlockID(5)).Return(successor, true)
	heap.EXPECT().Predecessor(metadata.BlockID(5)).Return(block(4, 1000, 64, false, 1064), true)

	context := coalesce.Context{Heap: heap}
	require.NoError(t, context.Init(5))
	require.True(t, context.NeedsCoalescing())
	require.Equal(t, []coalesce.Step{
		{Kind: coalesce.StepHighlight, Direction: coalesce.DirectionNext, Source: 6, Target: 5, Message: coalesce.MessageFoundNext},
		{Kind: coalesce.StepMerge, Direction: coalesce.DirectionNext, Source: 6, Target: 5, Message: coalesce.MessageMergeNext},
		{Kind: coalesce.StepFinalize, Message: coalesce.MessageFinalizeLayout},
	}, context.Steps())

	result, err := context.ExecuteNext()
	require.NoError(t, err)
	require.Equal(t, coalesce.StepHighlight, result.Step.Kind)
	require.Equal(t, []metadata.BlockID{5, 6}, result.Step.BlockIDs())
	require.False(t, result.Done)

	gomock.InOrder(
		heap.EXPECT().Block(metadata.BlockID(6)).Return(successor, true),
		heap.EXPECT().Merge(metadata.BlockID(6), metadata.BlockID(5)).Return(nil),
		heap.EXPECT().Finalize().Return([]metadata.BlockID{6}),
	)

	result, err = context.ExecuteNext()
	require.NoError(t, err)
	require.Equal(t, coalesce.StepMerge, result.Step.Kind)
	require.False(t, result.Done)

	result, err = context.ExecuteNext()
	require.NoError(t, err)
	require.Equal(t, coalesce.StepFinalize, result.Step.Kind)
	require.Equal(t, []metadata.BlockID{6}, result.Removed)
	require.True(t, result.Done)
	require.True(t, context.Done())

	require.Equal(t, coalesce.Stats{
		Merges:               1,
		HeaderBytesReclaimed: 24,
		BlocksRemoved:        1,
	}, context.Stats)

	_, err = context.ExecuteNext()
	require.True(t, errors.HasAssertionFailure(err))
}

func TestCoalesceNoFreeNeighbours(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	heap := mock_coalesce.NewMockHeap(ctrl)
	heap.EXPECT().Block(metadata.BlockID(2)).Return(block(2, 1064, 64, true, 1128), true)
	heap.EXPECT().Successor(metadata.BlockID(2)).Return(block(3, 1128, 48, false, metadata.NoAddress), true)
	heap.EXPECT().Predecessor(metadata.BlockID(2)).Return(metadata.Block{}, false)

	context := coalesce.Context{Heap: heap}
	require.NoError(t, context.Init(2))
	require.False(t, context.NeedsCoalescing())
	require.True(t, context.Done())

	_, ok := context.Peek()
	require.False(t, ok)
}

func TestCoalesceInitRejectsAllocatedBlock(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	heap := mock_coalesce.NewMockHeap(ctrl)
	heap.EXPECT().Block(metadata.BlockID(2)).Return(block(2, 1064, 64, false, 1128), true)
	heap.EXPECT().Block(metadata.BlockID(9)).Return(metadata.Block{}, false)

	context := coalesce.Context{Heap: heap}
	require.True(t, errors.Is(context.Init(2), metadata.ErrBlockNotFree))
	require.True(t, errors.Is(context.Init(9), metadata.ErrBlockNotFound))
}

func TestCoalesceMergeFailureAborts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	freed := block(2, 1064, 64, true, 1128)
	predecessor := block(1, 1000, 64, true, 1064)

	heap := mock_coalesce.NewMockHeap(ctrl)
	heap.EXPECT().Block(metadata.BlockID(2)).Return(freed, true).Times(2)
	heap.EXPECT().Successor(metadata.BlockID(2)).Return(metadata.Block{}, false)
	heap.EXPECT().Predecessor(metadata.BlockID(2)).Return(predecessor, true)
	heap.EXPECT().Merge(metadata.BlockID(2), metadata.BlockID(1)).Return(metadata.ErrBlockNotFree)
	heap.EXPECT().Finalize().Return(nil)

	context := coalesce.Context{Heap: heap}
	require.NoError(t, context.Init(2))

	_, err := context.ExecuteNext()
	require.NoError(t, err)

	_, err = context.ExecuteNext()
	require.Error(t, err)
	require.True(t, errors.HasAssertionFailure(err))
	require.Contains(t, err.Error(), "merge of block #2 into block #1 failed")
	require.True(t, context.Done())
}

func TestCoalesceBothNeighbours(t *testing.T) {
	heap := metadata.NewHeapMetadata()
	require.NoError(t, heap.InitLayout([]metadata.Block{
		block(1, 1000, 64, true, 1064),
		block(2, 1064, 96, true, 1160),
		block(3, 1160, 128, true, 1288),
		block(4, 1288, 48, false, metadata.NoAddress),
	}))

	context := coalesce.Context{Heap: heap}
	require.NoError(t, context.Init(2))

	var kinds []coalesce.StepKind
	var messages []string
	for !context.Done() {
		result, err := context.ExecuteNext()
		require.NoError(t, err)
		require.NoError(t, heap.Validate())

		kinds = append(kinds, result.Step.Kind)
		messages = append(messages, result.Step.Message)
	}

	require.Equal(t, []coalesce.StepKind{
		coalesce.StepHighlight,
		coalesce.StepMerge,
		coalesce.StepHighlight,
		coalesce.StepMerge,
		coalesce.StepFinalize,
	}, kinds)
	require.Equal(t, []string{
		"Found adjacent free block (next)",
		"Coalescing with next block",
		"Found adjacent free block (previous)",
		"Coalescing with previous block",
		"Finalizing memory layout",
	}, messages)

	blocks := heap.Blocks()
	require.Len(t, blocks, 2)
	require.Equal(t, metadata.BlockID(1), blocks[0].ID)
	require.Equal(t, 288, blocks[0].TotalSize)
	require.Equal(t, 264, blocks[0].DataSize)
	require.Equal(t, metadata.Address(1288), blocks[0].Next)

	require.Equal(t, coalesce.Stats{
		Merges:               2,
		HeaderBytesReclaimed: 48,
		BlocksRemoved:        2,
	}, context.Stats)
}
