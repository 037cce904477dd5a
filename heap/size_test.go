package heap_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/heapsim/heap"
)

func TestSizeLimitsParse(t *testing.T) {
	testCases := map[string]struct {
		input    string
		expected int
		invalid  bool
	}{
		"Empty":      {input: "", expected: 16},
		"Whitespace": {input: "  ", expected: 16},
		"InRange":    {input: "100", expected: 100},
		"TooSmall":   {input: "3", expected: 16},
		"Negative":   {input: "-40", expected: 16},
		"TooLarge":   {input: "9000", expected: 512},
		"Padded":     {input: " 64 ", expected: 64},
		"Letters":    {input: "abc", invalid: true},
		"Fraction":   {input: "12.5", invalid: true},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			size, err := heap.DefaultSizeLimits.Parse(testCase.input)
			if testCase.invalid {
				require.True(t, errors.Is(err, heap.ErrInvalidSize))
				return
			}

			require.NoError(t, err)
			require.Equal(t, testCase.expected, size)
		})
	}
}

func TestClampAllocationSize(t *testing.T) {
	require.Equal(t, heap.MinAllocationSize, heap.ClampAllocationSize(0))
	require.Equal(t, heap.DefaultAllocationSize, heap.ClampAllocationSize(64))
	require.Equal(t, heap.MaxAllocationSize, heap.ClampAllocationSize(1000000))

	limits := heap.SizeLimits{Min: 32, Max: 128}
	require.Equal(t, 32, limits.Clamp(16))
	require.Equal(t, 128, limits.Clamp(129))
}
