package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// BarWidth is the fixed cell count of every progress bar.
const BarWidth = 25

const barGlyph = "█"

var barRestStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))

// Bar renders percent (0-100) as a BarWidth-cell bar: the leading fillCells
// cells in the bundle color, the remainder in a neutral tone, solid block
// glyph for both. Deterministic given (percent, color).
func Bar(percent int, color Color) string {
	filled := fillCells(percent)
	return color.Style().Render(strings.Repeat(barGlyph, filled)) +
		barRestStyle.Render(strings.Repeat(barGlyph, BarWidth-filled))
}

// fillCells floors percent*BarWidth/100, so the count is monotonic in
// percent, zero at 0 and BarWidth at 100.
func fillCells(percent int) int {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	return percent * BarWidth / 100
}
