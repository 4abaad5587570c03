package formatter

import (
	"fmt"
	"strings"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderProgress renders a bar like [████░░░░]  45.00% for a 0-100 figure.
func RenderProgress(pct float64, width int) string {
	return fmt.Sprintf("[%s] %s", RenderCompactBar(pct, width), FormatPercent(pct))
}

// RenderCompactBar renders only the blocks of a 0-100 figure, colored by
// PercentStyle.
func RenderCompactBar(pct float64, width int) string {
	pct = min(max(pct, 0), 100)
	width = max(width, 2)

	filled := min(int(pct/100*float64(width)+0.5), width)
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)
	return PercentStyle(pct).Render(bar)
}

// FormatPercent renders a proportion with two decimals.
func FormatPercent(pct float64) string {
	return fmt.Sprintf("%6.2f%%", pct)
}
