package tui

import (
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/heapsim/heap"
	"github.com/vkngwrapper/heapsim/memutils/metadata"
	"github.com/vkngwrapper/heapsim/timing"
)

type testClipboard struct {
	text string
}

func (c *testClipboard) WriteAll(text string) error {
	c.text = text
	return nil
}

func newTestModel(t *testing.T) (Model, *heap.Simulator, *timing.SerialEngine, *testClipboard) {
	engine := timing.NewSerialEngine()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	sim, err := heap.New(logger, engine, heap.CreateOptions{HeapSize: 4096})
	require.NoError(t, err)

	clip := &testClipboard{}
	model := NewModel(sim, engine, Options{Clipboard: clip.WriteAll})

	return model, sim, engine, clip
}

func sendRunes(m Model, keys string) Model {
	for _, r := range keys {
		updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = updated.(Model)
	}

	return m
}

func sendKey(m Model, keyType tea.KeyType) (Model, tea.Cmd) {
	updated, cmd := m.Update(tea.KeyMsg{Type: keyType})
	return updated.(Model), cmd
}

func TestSizeKeysClamp(t *testing.T) {
	m, _, _, _ := newTestModel(t)
	require.Equal(t, heap.DefaultAllocationSize, m.size)

	m = sendRunes(m, "+")
	require.Equal(t, 80, m.size)

	m = sendRunes(m, "------")
	require.Equal(t, heap.MinAllocationSize, m.size)

	m = sendRunes(m, strings.Repeat("=", 40))
	require.Equal(t, heap.MaxAllocationSize, m.size)
}

func TestStrategyKeys(t *testing.T) {
	m, _, _, _ := newTestModel(t)
	require.Equal(t, metadata.AllocationStrategyFirstFit, m.strategy)

	m, _ = sendKey(m, tea.KeyTab)
	require.Equal(t, metadata.AllocationStrategyBestFit, m.strategy)
	m, _ = sendKey(m, tea.KeyTab)
	require.Equal(t, metadata.AllocationStrategyWorstFit, m.strategy)
	m, _ = sendKey(m, tea.KeyTab)
	require.Equal(t, metadata.AllocationStrategyFirstFit, m.strategy)

	m = sendRunes(m, "3")
	require.Equal(t, metadata.AllocationStrategyWorstFit, m.strategy)
	m = sendRunes(m, "2")
	require.Equal(t, metadata.AllocationStrategyBestFit, m.strategy)
	m = sendRunes(m, "1")
	require.Equal(t, metadata.AllocationStrategyFirstFit, m.strategy)
}

func TestAllocateSelectAndFree(t *testing.T) {
	m, sim, engine, _ := newTestModel(t)

	m = sendRunes(m, "a")
	require.True(t, sim.OperationsDisabled())
	require.Equal(t, metadata.BlockID(1), m.selected)

	m = sendRunes(m, "a")
	require.NotEmpty(t, m.notice)

	require.NoError(t, engine.Run())
	m, _ = sendKey(m, tea.KeyEnter)
	require.Empty(t, m.notice)
	require.NoError(t, engine.Run())
	require.Equal(t, metadata.BlockID(2), m.selected)
	require.Len(t, sim.Blocks(), 3)

	m = sendRunes(m, "kk")
	require.Equal(t, metadata.BlockID(1), m.selected)
	m = sendRunes(m, "jjj")
	require.Equal(t, metadata.BlockID(3), m.selected)

	m = sendRunes(m, "f")
	require.NotEmpty(t, m.notice)

	m = sendRunes(m, "k")
	m = sendRunes(m, "f")
	require.Empty(t, m.notice)
	require.NoError(t, engine.Run())

	// block 2 merged with the free block after it
	block, ok := sim.Block(2)
	require.True(t, ok)
	require.True(t, block.Free)
	require.Len(t, sim.Blocks(), 2)

	m = sendRunes(m, "r")
	require.Len(t, sim.Blocks(), 1)
	require.Equal(t, metadata.BlockID(1), m.selected)
}

func TestTicksAdvanceEngine(t *testing.T) {
	m, sim, engine, _ := newTestModel(t)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	updated, cmd := m.Update(tickMsg(start))
	m = updated.(Model)
	require.NotNil(t, cmd)
	require.Zero(t, engine.Now())

	m = sendRunes(m, "a")
	updated, _ = m.Update(tickMsg(start.Add(time.Second)))
	m = updated.(Model)
	require.Equal(t, time.Second, engine.Now())
	require.Len(t, sim.Blocks(), 2)
	require.True(t, sim.OperationsDisabled())

	updated, _ = m.Update(tickMsg(start.Add(2 * time.Second)))
	m = updated.(Model)
	require.False(t, sim.OperationsDisabled())
	require.Empty(t, m.notice)
}

func TestCopyHeapJson(t *testing.T) {
	m, _, _, clip := newTestModel(t)

	m = sendRunes(m, "c")
	require.Contains(t, clip.text, `"Heap"`)
	require.Contains(t, clip.text, `"Statistics"`)
	require.Equal(t, "Copied heap json to clipboard", m.notice)
}

func TestQuit(t *testing.T) {
	m, _, _, _ := newTestModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}

func TestView(t *testing.T) {
	m, _, engine, _ := newTestModel(t)

	view := m.View()
	require.Contains(t, view, "Heap Simulator")
	require.Contains(t, view, "Block #1 - 4,096B total")
	require.Contains(t, view, "0x3e8")
	require.Contains(t, view, "next NULL")
	require.Contains(t, view, "first-fit")

	m = sendRunes(m, "a")
	require.Contains(t, m.View(), "busy")
	require.NoError(t, engine.Run())

	view = m.View()
	require.Contains(t, view, "Block #2")
	require.Contains(t, view, "requested 64B")
	require.NotContains(t, view, "busy")
}

func TestBarWidth(t *testing.T) {
	require.Equal(t, minBarWidth, barWidth(48, 640000))
	require.Equal(t, maxBarWidth, barWidth(640000, 640000))
	require.Equal(t, minBarWidth, barWidth(48, 0))

	mid := barWidth(64000, 640000)
	require.Greater(t, mid, minBarWidth)
	require.LessOrEqual(t, mid, maxBarWidth)
}
