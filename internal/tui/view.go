package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/vkngwrapper/heapsim/heap"
)

func (m Model) bytes(value int) string {
	return m.printer.Sprintf("%dB", value)
}

// View renders the whole screen
func (m Model) View() string {
	snapshot := m.sim.Snapshot()

	var b strings.Builder
	b.WriteString(titleStyle.Render("Heap Simulator"))
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("Size ") + valueStyle.Render(m.bytes(m.size)))
	b.WriteString("   ")
	b.WriteString(labelStyle.Render("Strategy ") + valueStyle.Render(m.strategy.String()))
	if snapshot.OperationsDisabled {
		b.WriteString("   " + noticeStyle.Render("busy"))
	}
	b.WriteString("\n")

	switch {
	case snapshot.Status != "":
		b.WriteString(statusStyle.Render(snapshot.Status))
	case m.notice != "":
		b.WriteString(noticeStyle.Render(m.notice))
	}
	b.WriteString("\n\n")

	heapSize := m.sim.HeapSize()
	for index, block := range snapshot.Blocks {
		b.WriteString(m.renderBlock(index, block, heapSize))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	stats := snapshot.Statistics
	b.WriteString(statsStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top,
		labelStyle.Render("Used ")+valueStyle.Render(m.bytes(stats.UsedBytes)),
		"   ",
		labelStyle.Render("Free ")+valueStyle.Render(m.bytes(stats.FreeBytes())),
		"   ",
		labelStyle.Render("Used blocks ")+valueStyle.Render(m.printer.Sprintf("%d", stats.UsedBlockCount)),
		"   ",
		labelStyle.Render("Free blocks ")+valueStyle.Render(m.printer.Sprintf("%d", stats.FreeBlockCount())),
	)))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

func (m Model) renderBlock(index int, block heap.BlockState, heapSize int) string {
	cursor := "  "
	if block.ID == m.selected {
		cursor = cursorStyle.Render("> ")
	}

	state := "allocated"
	if block.Free {
		state = "free"
	}

	bar := lipgloss.NewStyle().
		Background(blockColor(block)).
		Width(barWidth(block.TotalSize, heapSize)).
		Render(state)

	details := m.printer.Sprintf("Block #%d - %s total  header %s  data %s",
		index+1, m.bytes(block.TotalSize), m.bytes(block.HeaderSize), m.bytes(block.DataSize))
	if !block.Free {
		details += m.printer.Sprintf("  requested %s", m.bytes(block.RequestedSize))
	}

	return cursor +
		addressStyle.Render(block.Address.String()) + " " +
		bar + " " +
		details + "  " +
		labelStyle.Render("next ") + block.Next.String()
}
