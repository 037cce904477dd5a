package heap

import (
	"log/slog"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/heapsim/heap/internal/utils"
	"github.com/vkngwrapper/heapsim/memutils"
	"github.com/vkngwrapper/heapsim/memutils/coalesce"
	"github.com/vkngwrapper/heapsim/memutils/metadata"
	"github.com/vkngwrapper/heapsim/timing"
)

// CreateFlags indicate specific simulator behaviors to activate or deactivate
type CreateFlags int32

const (
	// CreateExternallySynchronized ensures that the simulator will not be synchronized internally.
	// The consumer must guarantee it is used from only one goroutine at a time, including the
	// goroutine that drives its engine.
	CreateExternallySynchronized CreateFlags = 1 << iota
)

var createFlagsMapping = map[CreateFlags]string{
	CreateExternallySynchronized: "CreateExternallySynchronized",
}

func (f CreateFlags) String() string {
	var names []string
	for flag, name := range createFlagsMapping {
		if f&flag != 0 {
			names = append(names, name)
		}
	}

	return strings.Join(names, "|")
}

const (
	// DefaultHeapSize is the value that is used as the HeapSize when none is provided via CreateOptions
	DefaultHeapSize int = 640000
	// DefaultInitialAddress is the address of the first block when none is provided via CreateOptions
	DefaultInitialAddress metadata.Address = 1000
)

// Delays are the pauses between the phases of each operation, in engine time
type Delays struct {
	// Split is the time between choosing a block to split and splitting it
	Split time.Duration
	// SplitSettle is how long both halves of a split stay marked before operations resume
	SplitSettle time.Duration
	// InPlace is the time between choosing a block that will not be split and allocating it
	InPlace time.Duration
	// OutOfMemory is how long the out of memory message is shown
	OutOfMemory time.Duration
	// FreeSettle is the time between freeing a block and looking for free neighbours
	FreeSettle time.Duration
	// Highlight is how long each pair of adjacent free blocks is highlighted before merging
	Highlight time.Duration
	// Merge is how long each merged pair is shown before the next step
	Merge time.Duration
	// Finalize is the pause after the final coalescing step before operations resume
	Finalize time.Duration
}

// DefaultDelays are used for every Delays field left at zero in CreateOptions
var DefaultDelays = Delays{
	Split:       800 * time.Millisecond,
	SplitSettle: 1000 * time.Millisecond,
	InPlace:     800 * time.Millisecond,
	OutOfMemory: 2000 * time.Millisecond,
	FreeSettle:  800 * time.Millisecond,
	Highlight:   1000 * time.Millisecond,
	Merge:       1500 * time.Millisecond,
	Finalize:    800 * time.Millisecond,
}

func (d Delays) withDefaults() Delays {
	fill := func(value *time.Duration, fallback time.Duration) {
		if *value == 0 {
			*value = fallback
		}
	}

	fill(&d.Split, DefaultDelays.Split)
	fill(&d.SplitSettle, DefaultDelays.SplitSettle)
	fill(&d.InPlace, DefaultDelays.InPlace)
	fill(&d.OutOfMemory, DefaultDelays.OutOfMemory)
	fill(&d.FreeSettle, DefaultDelays.FreeSettle)
	fill(&d.Highlight, DefaultDelays.Highlight)
	fill(&d.Merge, DefaultDelays.Merge)
	fill(&d.Finalize, DefaultDelays.Finalize)
	return d
}

func (d Delays) validate() error {
	for name, value := range map[string]time.Duration{
		"Split":       d.Split,
		"SplitSettle": d.SplitSettle,
		"InPlace":     d.InPlace,
		"OutOfMemory": d.OutOfMemory,
		"FreeSettle":  d.FreeSettle,
		"Highlight":   d.Highlight,
		"Merge":       d.Merge,
		"Finalize":    d.Finalize,
	} {
		if value < 0 {
			return errors.Newf("heap.CreateOptions.Delays.%s is negative: %s", name, value)
		}
	}

	return nil
}

// CreateOptions contains optional settings when creating a simulator
type CreateOptions struct {
	// Flags indicates specific simulator behaviors to activate or deactivate
	Flags CreateFlags
	// HeapSize is the size of the simulated heap in bytes. It must be a multiple of
	// metadata.Alignment and at least metadata.MinBlockSize.
	HeapSize int
	// InitialAddress is the address of the first block. Zero selects DefaultInitialAddress unless
	// ZeroInitialAddress is set.
	InitialAddress metadata.Address
	// ZeroInitialAddress starts the heap at address 0 instead of DefaultInitialAddress
	ZeroInitialAddress bool
	// Delays are the pauses between phases. Zero fields use DefaultDelays.
	Delays Delays
}

// New creates a new Simulator that schedules its phases on engine
//
// logger - receives debug logs for every phase and errors for internal inconsistencies
//
// engine - the clock that plays operations out. The simulator only ever cancels its own events,
// so the engine may be shared.
//
// options - Optional parameters: it is valid to leave all the fields blank
func New(logger *slog.Logger, engine timing.Engine, options CreateOptions) (*Simulator, error) {
	if logger == nil {
		return nil, errors.New("attempted to create a simulator without a logger")
	}
	if engine == nil {
		return nil, errors.New("attempted to create a simulator without an engine")
	}

	heapSize := options.HeapSize
	if heapSize == 0 {
		heapSize = DefaultHeapSize
	}
	if heapSize < metadata.MinBlockSize || !memutils.IsAligned(heapSize, metadata.Alignment) {
		return nil, errors.Newf("heap.CreateOptions.HeapSize must be a multiple of %d of at least %d bytes, but is %d", metadata.Alignment, metadata.MinBlockSize, heapSize)
	}

	initialAddress := options.InitialAddress
	if initialAddress == 0 && !options.ZeroInitialAddress {
		initialAddress = DefaultInitialAddress
	}
	if initialAddress < 0 {
		return nil, errors.Newf("heap.CreateOptions.InitialAddress must not be negative, but is %d", initialAddress)
	}

	delays := options.Delays.withDefaults()
	err := delays.validate()
	if err != nil {
		return nil, err
	}

	heapMetadata := metadata.NewHeapMetadata()
	heapMetadata.Init(heapSize, initialAddress)

	simulator := &Simulator{
		logger:      logger,
		engine:      engine,
		mutex:       utils.OptionalMutex{UseMutex: options.Flags&CreateExternallySynchronized == 0},
		createFlags: options.Flags,
		delays:      delays,
		metadata:    heapMetadata,
		coalescer:   coalesce.Context{Heap: heapMetadata},
		transitions: make(map[metadata.BlockID]Transition),
	}

	memutils.DebugValidate(simulator.metadata)
	return simulator, nil
}
