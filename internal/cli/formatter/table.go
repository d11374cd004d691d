package formatter

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table is an aligned text table with a header separator and an optional
// footer row set off by a second separator.
type Table struct {
	Headers []string
	Rows    [][]string
	Footer  []string

	// RightAlign lists column indexes whose cells are right-aligned.
	RightAlign []int
}

// RenderTable renders headers and rows with default alignment.
func RenderTable(headers []string, rows [][]string) string {
	return Table{Headers: headers, Rows: rows}.Render()
}

// Render lays out the table. Widths are measured on visible characters so
// styled cells line up.
func (t Table) Render() string {
	if len(t.Headers) == 0 {
		return ""
	}
	cols := len(t.Headers)

	widths := make([]int, cols)
	measure := func(row []string) {
		for i := 0; i < cols && i < len(row); i++ {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}
	measure(t.Headers)
	for _, row := range t.Rows {
		measure(row)
	}
	measure(t.Footer)

	right := make(map[int]bool, len(t.RightAlign))
	for _, i := range t.RightAlign {
		right[i] = true
	}

	const colGap = 2
	var b strings.Builder

	writeRow := func(row []string, style func(string) string) {
		for i := 0; i < cols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			pad := widths[i] - lipgloss.Width(cell)
			if pad < 0 {
				pad = 0
			}
			if style != nil {
				cell = style(cell)
			}
			if right[i] {
				b.WriteString(strings.Repeat(" ", pad) + cell)
			} else {
				b.WriteString(cell)
				if i < cols-1 {
					b.WriteString(strings.Repeat(" ", pad))
				}
			}
			if i < cols-1 {
				b.WriteString(strings.Repeat(" ", colGap))
			}
		}
		b.WriteString("\n")
	}
	separator := func() {
		for i, w := range widths {
			b.WriteString(StyleDim.Render(strings.Repeat("─", w)))
			if i < cols-1 {
				b.WriteString(strings.Repeat(" ", colGap))
			}
		}
		b.WriteString("\n")
	}

	writeRow(t.Headers, func(s string) string { return StyleHeader.Render(s) })
	separator()
	for _, row := range t.Rows {
		writeRow(row, nil)
	}
	if len(t.Footer) > 0 {
		separator()
		writeRow(t.Footer, func(s string) string { return StyleBold.Render(s) })
	}
	return b.String()
}
