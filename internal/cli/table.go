package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// table renders rows of already styled cells under a header line.
type table struct {
	headers []string
	rows    [][]string
}

func newTable(headers ...string) *table {
	return &table{headers: headers}
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) render(s Styles) string {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}

	header := s.Bold.PaddingRight(2)
	cell := lipgloss.NewStyle().PaddingRight(2)

	var sb strings.Builder
	for i, h := range t.headers {
		sb.WriteString(header.Width(widths[i] + 2).Render(h))
	}
	sb.WriteString("\n")

	total := 0
	for _, w := range widths {
		total += w + 2
	}
	sb.WriteString(s.Muted.Render(strings.Repeat("─", total)))
	sb.WriteString("\n")

	for _, row := range t.rows {
		for i := range t.headers {
			value := ""
			if i < len(row) {
				value = row[i]
			}
			sb.WriteString(cell.Width(widths[i] + 2).Render(value))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
