package formatter

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Alignment of a table column.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
)

// RenderTable renders a simple aligned table with a header separator line.
// Columns are padded to the widest visible cell. align may be shorter than
// headers; missing entries align left.
func RenderTable(headers []string, rows [][]string, align ...Alignment) string {
	if len(headers) == 0 {
		return ""
	}
	cols := len(headers)

	widths := make([]int, cols)
	for i, h := range headers {
		widths[i] = max(widths[i], lipgloss.Width(h))
	}
	for _, row := range rows {
		for i := 0; i < cols && i < len(row); i++ {
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
	}

	const colGap = 2
	alignOf := func(i int) Alignment {
		if i < len(align) {
			return align[i]
		}
		return AlignLeft
	}
	writeCell := func(b *strings.Builder, i int, visible int, rendered string) {
		pad := max(widths[i]-visible, 0)
		if alignOf(i) == AlignRight {
			b.WriteString(strings.Repeat(" ", pad) + rendered)
			if i < cols-1 {
				b.WriteString(strings.Repeat(" ", colGap))
			}
			return
		}
		b.WriteString(rendered)
		if i < cols-1 {
			b.WriteString(strings.Repeat(" ", pad+colGap))
		}
	}

	var b strings.Builder
	for i, h := range headers {
		writeCell(&b, i, lipgloss.Width(h), StyleHeader.Render(h))
	}
	b.WriteString("\n")

	for i, w := range widths {
		b.WriteString(StyleDim.Render(strings.Repeat("─", w)))
		if i < cols-1 {
			b.WriteString(strings.Repeat(" ", colGap))
		}
	}
	b.WriteString("\n")

	for _, row := range rows {
		for i := 0; i < cols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			writeCell(&b, i, lipgloss.Width(cell), cell)
		}
		b.WriteString("\n")
	}
	return b.String()
}
