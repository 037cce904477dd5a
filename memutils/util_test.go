package memutils_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/heapsim/memutils"
)

func TestAlignUp(t *testing.T) {
	testCases := map[string]struct {
		value    int
		expected int
	}{
		"Zero":           {value: 0, expected: 0},
		"AlreadyAligned": {value: 64, expected: 64},
		"OneOver":        {value: 65, expected: 80},
		"HeaderPlusMin":  {value: 24 + 16, expected: 48},
		"HeaderPlusMax":  {value: 24 + 512, expected: 544},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, testCase.expected, memutils.AlignUp(testCase.value, 16))
			require.True(t, memutils.IsAligned(memutils.AlignUp(testCase.value, 16), 16))
		})
	}
}

func TestCheckPow2(t *testing.T) {
	require.NoError(t, memutils.CheckPow2(16, "alignment"))
	require.NoError(t, memutils.CheckPow2(uint(1), "alignment"))

	err := memutils.CheckPow2(24, "alignment")
	require.Error(t, err)
	require.True(t, errors.Is(err, memutils.PowerOfTwoError))
	require.Contains(t, err.Error(), "alignment is 24")

	require.Error(t, memutils.CheckPow2(0, "alignment"))
}

func TestClamp(t *testing.T) {
	require.Equal(t, 16, memutils.Clamp(1, 16, 512))
	require.Equal(t, 512, memutils.Clamp(100000, 16, 512))
	require.Equal(t, 64, memutils.Clamp(64, 16, 512))
}

func TestDetailedStatistics(t *testing.T) {
	var stats memutils.DetailedStatistics
	stats.Clear()

	stats.AddAllocation(64, 40)
	stats.AddAllocation(128, 100)
	stats.AddFreeBlock(256)
	stats.AddFreeBlock(64)

	require.Equal(t, 4, stats.BlockCount)
	require.Equal(t, 2, stats.UsedBlockCount)
	require.Equal(t, 2, stats.FreeBlockCount())
	require.Equal(t, 512, stats.HeapBytes)
	require.Equal(t, 192, stats.UsedBytes)
	require.Equal(t, 320, stats.FreeBytes())
	require.Equal(t, 140, stats.RequestedBytes)
	require.Equal(t, 64, stats.AllocationSizeMin)
	require.Equal(t, 128, stats.AllocationSizeMax)
	require.Equal(t, 64, stats.FreeBlockSizeMin)
	require.Equal(t, 256, stats.FreeBlockSizeMax)
	require.InDelta(t, 0.2, stats.ExternalFragmentation(), 0.0001)

	var total memutils.DetailedStatistics
	total.Clear()
	total.AddDetailedStatistics(&stats)
	require.Equal(t, stats, total)
}
