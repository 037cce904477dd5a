// Package config loads simulator settings from TOML.
package config

import (
	"bytes"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/heapsim/heap"
	"github.com/vkngwrapper/heapsim/memutils"
	"github.com/vkngwrapper/heapsim/memutils/metadata"
)

// Config is the full set of simulator settings
type Config struct {
	Heap       Heap       `toml:"heap"`
	Allocation Allocation `toml:"allocation"`
	Timing     Timing     `toml:"timing"`
}

type Heap struct {
	Size           int `toml:"size"`
	InitialAddress int `toml:"initial_address"`
}

// Allocation holds the limits presentation layers apply to user input
type Allocation struct {
	MinSize         int                         `toml:"min_size"`
	MaxSize         int                         `toml:"max_size"`
	DefaultSize     int                         `toml:"default_size"`
	DefaultStrategy metadata.AllocationStrategy `toml:"default_strategy"`
}

// Timing holds the pause before each phase of an operation
type Timing struct {
	Split       Duration `toml:"split"`
	SplitSettle Duration `toml:"split_settle"`
	InPlace     Duration `toml:"in_place"`
	OutOfMemory Duration `toml:"out_of_memory"`
	FreeSettle  Duration `toml:"free_settle"`
	Highlight   Duration `toml:"highlight"`
	Merge       Duration `toml:"merge"`
	Finalize    Duration `toml:"finalize"`
}

// Default returns the settings used when no file is given
func Default() Config {
	delays := heap.DefaultDelays

	return Config{
		Heap: Heap{
			Size:           heap.DefaultHeapSize,
			InitialAddress: int(heap.DefaultInitialAddress),
		},
		Allocation: Allocation{
			MinSize:         heap.MinAllocationSize,
			MaxSize:         heap.MaxAllocationSize,
			DefaultSize:     heap.DefaultAllocationSize,
			DefaultStrategy: metadata.AllocationStrategyFirstFit,
		},
		Timing: Timing{
			Split:       Duration{delays.Split},
			SplitSettle: Duration{delays.SplitSettle},
			InPlace:     Duration{delays.InPlace},
			OutOfMemory: Duration{delays.OutOfMemory},
			FreeSettle:  Duration{delays.FreeSettle},
			Highlight:   Duration{delays.Highlight},
			Merge:       Duration{delays.Merge},
			Finalize:    Duration{delays.Finalize},
		},
	}
}

// Load reads and validates a TOML file. Settings missing from the file keep their defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "read config %s", path)
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config %s", path)
	}

	return cfg, nil
}

// Parse decodes and validates TOML settings on top of Default
func Parse(data []byte) (Config, error) {
	cfg := Default()

	err := cfg.Decode(data)
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Decode overlays TOML settings on cfg and validates the result. Unknown keys are rejected.
func (c *Config) Decode(data []byte) error {
	metaData, err := toml.NewDecoder(bytes.NewReader(data)).Decode(c)
	if err != nil {
		return errors.Wrap(err, "decode toml")
	}

	undecoded := metaData.Undecoded()
	if len(undecoded) > 0 {
		return errors.Newf("unknown setting %q", undecoded[0].String())
	}

	return c.Validate()
}

// Validate checks that the settings describe a usable simulator
func (c Config) Validate() error {
	if c.Heap.Size < metadata.MinBlockSize || !memutils.IsAligned(c.Heap.Size, metadata.Alignment) {
		return errors.Newf("heap.size must be a multiple of %d of at least %d, but is %d", metadata.Alignment, metadata.MinBlockSize, c.Heap.Size)
	}
	if c.Heap.InitialAddress < 0 {
		return errors.Newf("heap.initial_address must not be negative, but is %d", c.Heap.InitialAddress)
	}

	allocation := c.Allocation
	if allocation.MinSize < 1 {
		return errors.Newf("allocation.min_size must be positive, but is %d", allocation.MinSize)
	}
	if allocation.MinSize > allocation.DefaultSize || allocation.DefaultSize > allocation.MaxSize {
		return errors.Newf("allocation sizes must satisfy min_size <= default_size <= max_size, but are %d, %d and %d",
			allocation.MinSize, allocation.DefaultSize, allocation.MaxSize)
	}
	if !allocation.DefaultStrategy.IsValid() {
		return errors.Wrapf(metadata.ErrUnknownStrategy, "allocation.default_strategy")
	}

	for name, value := range map[string]Duration{
		"split":         c.Timing.Split,
		"split_settle":  c.Timing.SplitSettle,
		"in_place":      c.Timing.InPlace,
		"out_of_memory": c.Timing.OutOfMemory,
		"free_settle":   c.Timing.FreeSettle,
		"highlight":     c.Timing.Highlight,
		"merge":         c.Timing.Merge,
		"finalize":      c.Timing.Finalize,
	} {
		if value.Duration < 0 {
			return errors.Newf("timing.%s must not be negative, but is %s", name, value)
		}
	}

	return nil
}

// HeapOptions converts the settings into simulator create options
func (c Config) HeapOptions() heap.CreateOptions {
	return heap.CreateOptions{
		HeapSize:           c.Heap.Size,
		InitialAddress:     metadata.Address(c.Heap.InitialAddress),
		ZeroInitialAddress: c.Heap.InitialAddress == 0,
		Delays: heap.Delays{
			Split:       c.Timing.Split.Duration,
			SplitSettle: c.Timing.SplitSettle.Duration,
			InPlace:     c.Timing.InPlace.Duration,
			OutOfMemory: c.Timing.OutOfMemory.Duration,
			FreeSettle:  c.Timing.FreeSettle.Duration,
			Highlight:   c.Timing.Highlight.Duration,
			Merge:       c.Timing.Merge.Duration,
			Finalize:    c.Timing.Finalize.Duration,
		},
	}
}

// SizeLimits returns the allocation size limits for presentation layers
func (c Config) SizeLimits() heap.SizeLimits {
	return heap.SizeLimits{Min: c.Allocation.MinSize, Max: c.Allocation.MaxSize}
}

// Encode writes the settings as TOML
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
