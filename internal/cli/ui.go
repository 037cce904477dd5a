package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/vkngwrapper/heapsim/memutils"
	"github.com/vkngwrapper/heapsim/memutils/metadata"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	colorCyan  = lipgloss.Color("36")
	colorGreen = lipgloss.Color("35")
	colorRed   = lipgloss.Color("167")
	colorWhite = lipgloss.Color("255")
	colorGray  = lipgloss.Color("245")
	colorDim   = lipgloss.Color("240")
)

var (
	styleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleDim   = lipgloss.NewStyle().Foreground(colorDim)
	styleValue = lipgloss.NewStyle().Foreground(colorWhite)
	styleKey   = lipgloss.NewStyle().Foreground(colorGray).Width(14)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleFree        = lipgloss.NewStyle().Foreground(colorGreen)
	styleAllocated   = lipgloss.NewStyle().Foreground(colorRed)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
)

var printer = message.NewPrinter(language.English)

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printError(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconError.Render(iconError)+" "+fmt.Sprintf(format, args...))
}

func printKeyValue(w io.Writer, key, value string) {
	fmt.Fprintln(w, styleKey.Render(key)+" "+styleValue.Render(value))
}

func formatBytes(value int) string {
	return printer.Sprintf("%dB", value)
}

// printBlocks prints one line per block in address order
func printBlocks(w io.Writer, blocks []metadata.Block) {
	fmt.Fprintln(w, styleTitle.Render("Heap"))

	for index, block := range blocks {
		state := styleAllocated.Render("allocated")
		if block.Free {
			state = styleFree.Render("free     ")
		}

		line := printer.Sprintf("  Block #%-4d %-9s %s %10s total %10s data",
			index+1, block.Address.String(), state, formatBytes(block.TotalSize), formatBytes(block.DataSize))
		if !block.Free {
			line += printer.Sprintf(" %8s requested", formatBytes(block.RequestedSize))
		}
		line += styleDim.Render("  next " + block.Next.String())

		fmt.Fprintln(w, line)
	}
}

// printStatistics prints the headline numbers and the fragmentation of a heap
func printStatistics(w io.Writer, stats memutils.DetailedStatistics) {
	fmt.Fprintln(w, styleTitle.Render("Statistics"))
	printKeyValue(w, "Used", formatBytes(stats.UsedBytes))
	printKeyValue(w, "Free", formatBytes(stats.FreeBytes()))
	printKeyValue(w, "Used blocks", printer.Sprintf("%d", stats.UsedBlockCount))
	printKeyValue(w, "Free blocks", printer.Sprintf("%d", stats.FreeBlockCount()))
	printKeyValue(w, "Requested", formatBytes(stats.RequestedBytes))
	printKeyValue(w, "Fragmentation", printer.Sprintf("%.1f%%", stats.ExternalFragmentation()*100))
}
