// Package scenario replays scripted allocate, free and reset sequences against a simulator.
package scenario

import (
	"bytes"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/heapsim/config"
	"github.com/vkngwrapper/heapsim/memutils/metadata"
)

// Op is the operation a step performs
type Op string

const (
	OpAlloc Op = "alloc"
	OpFree  Op = "free"
	OpReset Op = "reset"
)

// Expectation is the outcome a step must have
type Expectation string

const (
	// ExpectOK means the operation must be accepted. It is the default.
	ExpectOK Expectation = "ok"
	// ExpectOutOfMemory means an allocation must find no block large enough
	ExpectOutOfMemory Expectation = "oom"
	// ExpectError means the simulator must reject the operation
	ExpectError Expectation = "error"
)

// Step is one operation of a scenario. Allocation sizes are passed to the simulator unclamped.
type Step struct {
	Op       Op                          `toml:"op"`
	Size     int                         `toml:"size"`
	Strategy metadata.AllocationStrategy `toml:"strategy"`
	Block    int                         `toml:"block"`
	Expect   Expectation                 `toml:"expect"`
}

func (s Step) String() string {
	switch s.Op {
	case OpAlloc:
		return string(s.Op) + " " + strconv.Itoa(s.Size) + " " + s.Strategy.String()
	case OpFree:
		return string(s.Op) + " #" + strconv.Itoa(s.Block)
	}

	return string(s.Op)
}

// Scenario is a named list of steps and the settings of the heap they run against. The
// [heap], [allocation] and [timing] tables override the base config the scenario is parsed with.
type Scenario struct {
	Name        string            `toml:"name"`
	Description string            `toml:"description"`
	Heap        config.Heap       `toml:"heap"`
	Allocation  config.Allocation `toml:"allocation"`
	Timing      config.Timing     `toml:"timing"`
	Steps       []Step            `toml:"step"`
}

// Config returns the settings the scenario runs with
func (s *Scenario) Config() config.Config {
	return config.Config{
		Heap:       s.Heap,
		Allocation: s.Allocation,
		Timing:     s.Timing,
	}
}

// Load reads and validates a scenario file
func Load(path string, base config.Config) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read scenario %s", path)
	}

	scenario, err := Parse(data, base)
	if err != nil {
		return nil, errors.Wrapf(err, "scenario %s", path)
	}

	return scenario, nil
}

// Parse decodes and validates a scenario on top of base
func Parse(data []byte, base config.Config) (*Scenario, error) {
	scenario := &Scenario{
		Heap:       base.Heap,
		Allocation: base.Allocation,
		Timing:     base.Timing,
	}

	metaData, err := toml.NewDecoder(bytes.NewReader(data)).Decode(scenario)
	if err != nil {
		return nil, errors.Wrap(err, "decode toml")
	}

	undecoded := metaData.Undecoded()
	if len(undecoded) > 0 {
		return nil, errors.Newf("unknown setting %q", undecoded[0].String())
	}

	err = scenario.Validate()
	if err != nil {
		return nil, err
	}

	return scenario, nil
}

// Validate checks the settings and fills in step defaults
func (s *Scenario) Validate() error {
	err := s.Config().Validate()
	if err != nil {
		return err
	}

	for i := range s.Steps {
		step := &s.Steps[i]

		if step.Expect == "" {
			step.Expect = ExpectOK
		}
		if step.Expect != ExpectOK && step.Expect != ExpectOutOfMemory && step.Expect != ExpectError {
			return errors.Newf("step %d: unknown expectation %q", i+1, step.Expect)
		}

		switch step.Op {
		case OpAlloc:
			if step.Strategy == 0 {
				step.Strategy = s.Allocation.DefaultStrategy
			}
		case OpFree:
			if step.Expect == ExpectOutOfMemory {
				return errors.Newf("step %d: free cannot run out of memory", i+1)
			}
		case OpReset:
			if step.Expect != ExpectOK {
				return errors.Newf("step %d: reset always succeeds", i+1)
			}
		default:
			return errors.Newf("step %d: unknown op %q", i+1, step.Op)
		}
	}

	return nil
}
