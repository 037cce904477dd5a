package metadata

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// AllocationStrategy decides which free block a new allocation is carved from when more than
// one is large enough.
type AllocationStrategy uint32

const (
	// AllocationStrategyFirstFit selects the candidate with the lowest address. It is the cheapest
	// strategy to evaluate and tends to leave small fragments at the start of the heap.
	AllocationStrategyFirstFit AllocationStrategy = iota + 1
	// AllocationStrategyBestFit selects the candidate with the smallest data size, leaving the largest
	// free blocks intact for future large requests. Ties go to the lowest address.
	AllocationStrategyBestFit
	// AllocationStrategyWorstFit selects the candidate with the largest data size, so the remainder
	// left by a split is as large as possible. Ties go to the lowest address.
	AllocationStrategyWorstFit
)

var allocationStrategyMapping = map[AllocationStrategy]string{
	AllocationStrategyFirstFit: "first-fit",
	AllocationStrategyBestFit:  "best-fit",
	AllocationStrategyWorstFit: "worst-fit",
}

// AllocationStrategies lists every strategy in display order
var AllocationStrategies = []AllocationStrategy{
	AllocationStrategyFirstFit,
	AllocationStrategyBestFit,
	AllocationStrategyWorstFit,
}

func (s AllocationStrategy) String() string {
	return allocationStrategyMapping[s]
}

// IsValid returns true if s is one of the known strategies
func (s AllocationStrategy) IsValid() bool {
	_, ok := allocationStrategyMapping[s]
	return ok
}

// ParseAllocationStrategy accepts the String form of a strategy, case-insensitively. The
// short forms "first", "best" and "worst" are also accepted.
func ParseAllocationStrategy(text string) (AllocationStrategy, error) {
	normalized := strings.ToLower(strings.TrimSpace(text))
	for _, strategy := range AllocationStrategies {
		name := strategy.String()
		if normalized == name || normalized == strings.TrimSuffix(name, "-fit") {
			return strategy, nil
		}
	}

	return 0, errors.Wrapf(ErrUnknownStrategy, "%q", text)
}

// MarshalText implements encoding.TextMarshaler
func (s AllocationStrategy) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, errors.Wrapf(ErrUnknownStrategy, "%d", uint32(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *AllocationStrategy) UnmarshalText(text []byte) error {
	strategy, err := ParseAllocationStrategy(string(text))
	if err != nil {
		return err
	}

	*s = strategy
	return nil
}
