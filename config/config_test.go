package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/heapsim/config"
	"github.com/vkngwrapper/heapsim/heap"
	"github.com/vkngwrapper/heapsim/memutils/metadata"
)

func TestDefaultMatchesSimulatorDefaults(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())

	options := cfg.HeapOptions()
	require.Equal(t, heap.DefaultHeapSize, options.HeapSize)
	require.Equal(t, heap.DefaultInitialAddress, options.InitialAddress)
	require.Equal(t, heap.DefaultDelays, options.Delays)
	require.Equal(t, heap.DefaultSizeLimits, cfg.SizeLimits())
	require.Equal(t, metadata.AllocationStrategyFirstFit, cfg.Allocation.DefaultStrategy)
}

func TestParseOverlaysDefaults(t *testing.T) {
	cfg, err := config.Parse([]byte(`
[heap]
size = 4096
initial_address = 0

[allocation]
default_strategy = "best-fit"

[timing]
merge = "2s"
highlight = "250ms"
`))
	require.NoError(t, err)

	require.Equal(t, 4096, cfg.Heap.Size)
	require.Equal(t, metadata.AllocationStrategyBestFit, cfg.Allocation.DefaultStrategy)
	require.Equal(t, 512, cfg.Allocation.MaxSize)
	require.Equal(t, 2*time.Second, cfg.Timing.Merge.Duration)
	require.Equal(t, 250*time.Millisecond, cfg.Timing.Highlight.Duration)
	require.Equal(t, 800*time.Millisecond, cfg.Timing.Split.Duration)

	options := cfg.HeapOptions()
	require.True(t, options.ZeroInitialAddress)
	require.Equal(t, metadata.Address(0), options.InitialAddress)
}

func TestParseRejectsInvalidSettings(t *testing.T) {
	testCases := map[string]string{
		"UnalignedHeap":   "[heap]\nsize = 1000",
		"TinyHeap":        "[heap]\nsize = 32",
		"DefaultTooLarge": "[allocation]\ndefault_size = 1024",
		"MinAboveDefault": "[allocation]\nmin_size = 128",
		"NegativeDelay":   "[timing]\nsplit = \"-1s\"",
		"BadDuration":     "[timing]\nsplit = \"soon\"",
		"UnknownKey":      "[heap]\ncolour = \"blue\"",
		"NotToml":         "[heap",
	}

	for name, data := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := config.Parse([]byte(data))
			require.Error(t, err)
		})
	}

	_, err := config.Parse([]byte("[allocation]\ndefault_strategy = \"next-fit\""))
	require.True(t, errors.Is(err, metadata.ErrUnknownStrategy))
}

func TestLoadAndEncodeRoundTrip(t *testing.T) {
	cfg := config.Default()
	cfg.Heap.Size = 8192
	cfg.Timing.Finalize = config.Duration{Duration: 1200 * time.Millisecond}

	var buffer bytes.Buffer
	require.NoError(t, cfg.Encode(&buffer))
	require.Contains(t, buffer.String(), `finalize = "1.2s"`)
	require.Contains(t, buffer.String(), `default_strategy = "first-fit"`)

	path := filepath.Join(t.TempDir(), "heapsim.toml")
	require.NoError(t, os.WriteFile(path, buffer.Bytes(), 0o644))

	loaded, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}
