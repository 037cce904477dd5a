package heap

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/heapsim/memutils"
)

const (
	// MinAllocationSize is the smallest size the presentation layers will request
	MinAllocationSize = 16
	// MaxAllocationSize is the largest size the presentation layers will request
	MaxAllocationSize = 512
	// DefaultAllocationSize is the size presentation layers start with
	DefaultAllocationSize = 64
)

// SizeLimits bounds the allocation sizes a user can request through a presentation layer.
// The Simulator itself does not clamp.
type SizeLimits struct {
	Min int
	Max int
}

// DefaultSizeLimits are the limits used when no configuration overrides them
var DefaultSizeLimits = SizeLimits{Min: MinAllocationSize, Max: MaxAllocationSize}

// Clamp limits size to [Min, Max]
func (l SizeLimits) Clamp(size int) int {
	return memutils.Clamp(size, l.Min, l.Max)
}

// Parse converts user input into an allocation size. Empty input means Min, input that is
// not a whole number is rejected, and anything else is clamped.
func (l SizeLimits) Parse(text string) (int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return l.Min, nil
	}

	value, err := strconv.Atoi(text)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidSize, "%q is not a number", text)
	}

	return l.Clamp(value), nil
}

// ClampAllocationSize limits size to the default limits
func ClampAllocationSize(size int) int {
	return DefaultSizeLimits.Clamp(size)
}
