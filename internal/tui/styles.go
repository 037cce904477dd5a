package tui

import (
	"math"

	"github.com/charmbracelet/lipgloss"
	"github.com/vkngwrapper/heapsim/heap"
)

var (
	splittingColor  = lipgloss.Color("#A855F7")
	coalescingColor = lipgloss.Color("#F97316")
	freeColor       = lipgloss.Color("#15803D")
	freeActiveColor = lipgloss.Color("#22C55E")
	allocatedColor  = lipgloss.Color("#B91C1C")
	accentColor     = lipgloss.Color("#60A5FA")
	mutedColor      = lipgloss.Color("#666666")
	warningColor    = lipgloss.Color("#FFA500")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor).
			MarginBottom(1)

	labelStyle   = lipgloss.NewStyle().Foreground(mutedColor)
	valueStyle   = lipgloss.NewStyle().Bold(true)
	statusStyle  = lipgloss.NewStyle().Foreground(warningColor).Bold(true)
	noticeStyle  = lipgloss.NewStyle().Foreground(mutedColor).Italic(true)
	cursorStyle  = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	addressStyle = lipgloss.NewStyle().Foreground(accentColor)

	statsStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(0, 1)
)

// blockColor picks the color of a block: transitions first, then free or allocated
func blockColor(block heap.BlockState) lipgloss.Color {
	switch {
	case block.Transition == heap.TransitionSplitting:
		return splittingColor
	case block.Transition == heap.TransitionCoalescing:
		return coalescingColor
	case block.Free && block.Animating:
		return freeActiveColor
	case block.Free:
		return freeColor
	}

	return allocatedColor
}

const (
	minBarWidth = 8
	maxBarWidth = 30
)

// barWidth scales a block's size logarithmically against the heap so that small blocks stay
// visible next to very large ones
func barWidth(totalSize int, heapSize int) int {
	if heapSize <= 0 {
		return minBarWidth
	}

	ratio := float64(totalSize) / float64(heapSize)
	scale := math.Log(ratio*100+1) / math.Log(1.15)

	return int(math.Max(minBarWidth, math.Min(maxBarWidth, scale*2)))
}
