// Package tui is an interactive terminal front end for a heap simulator.
package tui

import (
	"slices"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/heapsim/heap"
	"github.com/vkngwrapper/heapsim/memutils/metadata"
	"github.com/vkngwrapper/heapsim/timing"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	defaultTickInterval = 50 * time.Millisecond
	sizeStep            = metadata.Alignment
)

// Options contains optional settings for the model
type Options struct {
	// Limits bounds the allocation size. The zero value uses heap.DefaultSizeLimits.
	Limits heap.SizeLimits
	// DefaultSize is the starting allocation size. Zero uses heap.DefaultAllocationSize.
	DefaultSize int
	// DefaultStrategy is the starting strategy. Zero uses first fit.
	DefaultStrategy metadata.AllocationStrategy
	// TickInterval is how often the engine is advanced. Zero uses 50ms.
	TickInterval time.Duration
	// Clipboard receives the heap json when copying. Nil uses the system clipboard.
	Clipboard func(text string) error
}

type tickMsg time.Time

// Model is the bubbletea model for the simulator
type Model struct {
	sim    *heap.Simulator
	engine timing.Engine
	keys   KeyMap
	help   help.Model

	limits       heap.SizeLimits
	size         int
	strategy     metadata.AllocationStrategy
	selected     metadata.BlockID
	notice       string
	lastTick     time.Time
	tickInterval time.Duration
	width        int

	printer   *message.Printer
	clipboard func(text string) error
}

// NewModel creates a model that drives sim by advancing engine in real time
func NewModel(sim *heap.Simulator, engine timing.Engine, options Options) Model {
	if options.Limits == (heap.SizeLimits{}) {
		options.Limits = heap.DefaultSizeLimits
	}
	if options.DefaultSize == 0 {
		options.DefaultSize = heap.DefaultAllocationSize
	}
	if options.DefaultStrategy == 0 {
		options.DefaultStrategy = metadata.AllocationStrategyFirstFit
	}
	if options.TickInterval == 0 {
		options.TickInterval = defaultTickInterval
	}
	if options.Clipboard == nil {
		options.Clipboard = clipboard.WriteAll
	}

	model := Model{
		sim:          sim,
		engine:       engine,
		keys:         DefaultKeyMap(),
		help:         help.New(),
		limits:       options.Limits,
		size:         options.Limits.Clamp(options.DefaultSize),
		strategy:     options.DefaultStrategy,
		tickInterval: options.TickInterval,
		printer:      message.NewPrinter(language.English),
		clipboard:    options.Clipboard,
	}

	blocks := sim.Blocks()
	if len(blocks) > 0 {
		model.selected = blocks[0].ID
	}

	return model
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles all messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		now := time.Time(msg)
		if !m.lastTick.IsZero() {
			err := m.engine.Advance(now.Sub(m.lastTick))
			if err != nil {
				m.notice = err.Error()
			}
		}
		m.lastTick = now
		m.fixSelection()
		return m, m.tick()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.SizeUp):
		m.size = m.limits.Clamp(m.size + sizeStep)
	case key.Matches(msg, m.keys.SizeDown):
		m.size = m.limits.Clamp(m.size - sizeStep)

	case key.Matches(msg, m.keys.NextStrategy):
		index := slices.Index(metadata.AllocationStrategies, m.strategy)
		m.strategy = metadata.AllocationStrategies[(index+1)%len(metadata.AllocationStrategies)]
	case key.Matches(msg, m.keys.FirstFit):
		m.strategy = metadata.AllocationStrategyFirstFit
	case key.Matches(msg, m.keys.BestFit):
		m.strategy = metadata.AllocationStrategyBestFit
	case key.Matches(msg, m.keys.WorstFit):
		m.strategy = metadata.AllocationStrategyWorstFit

	case key.Matches(msg, m.keys.Allocate):
		m.notice = ""
		result, err := m.sim.Allocate(m.size, m.strategy)
		if err != nil {
			m.notice = err.Error()
		} else if !result.OutOfMemory {
			m.selected = result.Request.BlockID
		}

	case key.Matches(msg, m.keys.Free):
		m.notice = ""
		err := m.sim.Free(m.selected)
		if err != nil {
			m.notice = err.Error()
		}

	case key.Matches(msg, m.keys.Reset):
		m.sim.Reset()
		m.notice = ""
		m.fixSelection()

	case key.Matches(msg, m.keys.Next):
		m.moveSelection(1)
	case key.Matches(msg, m.keys.Prev):
		m.moveSelection(-1)

	case key.Matches(msg, m.keys.Copy):
		writer := jwriter.NewWriter()
		m.sim.PrintDetailedMap(&writer)

		err := m.clipboard(string(writer.Bytes()))
		if err != nil {
			m.notice = "Copy failed: " + err.Error()
		} else {
			m.notice = "Copied heap json to clipboard"
		}
	}

	return m, nil
}

func (m *Model) moveSelection(delta int) {
	blocks := m.sim.Blocks()
	if len(blocks) == 0 {
		return
	}

	index := slices.IndexFunc(blocks, func(block metadata.Block) bool {
		return block.ID == m.selected
	})
	if index < 0 {
		index = 0
	} else {
		index = max(0, min(len(blocks)-1, index+delta))
	}

	m.selected = blocks[index].ID
}

// fixSelection moves the selection to the first block if the selected block was merged away
func (m *Model) fixSelection() {
	_, ok := m.sim.Block(m.selected)
	if ok {
		return
	}

	blocks := m.sim.Blocks()
	if len(blocks) > 0 {
		m.selected = blocks[0].ID
	}
}
