// Package formatter renders batch results as aligned markdown tables.
package formatter

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// minColumnWidth keeps separator cells valid markdown ("---").
const minColumnWidth = 3

// Table renders header and rows as a markdown table whose columns are padded
// to the same display width, so names with wide or accented characters stay
// aligned in a terminal. Short rows are padded with empty cells.
func Table(header []string, rows [][]string) string {
	colCount := len(header)
	for _, row := range rows {
		colCount = max(colCount, len(row))
	}

	if colCount == 0 {
		return ""
	}

	widths := make([]int, colCount)
	for i := range widths {
		widths[i] = minColumnWidth
	}

	measure := func(row []string) {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cleanCell(cell)))
		}
	}

	measure(header)

	for _, row := range rows {
		measure(row)
	}

	lines := make([]string, 0, len(rows)+2)
	lines = append(lines, renderRow(header, widths))
	lines = append(lines, renderSeparator(widths))

	for _, row := range rows {
		lines = append(lines, renderRow(row, widths))
	}

	return strings.Join(lines, "\n")
}

func renderRow(row []string, widths []int) string {
	var sb strings.Builder

	sb.WriteString("|")

	for i, width := range widths {
		content := ""
		if i < len(row) {
			content = cleanCell(row[i])
		}

		sb.WriteString(" ")
		sb.WriteString(content)

		if padding := width - runewidth.StringWidth(content); padding > 0 {
			sb.WriteString(strings.Repeat(" ", padding))
		}

		sb.WriteString(" |")
	}

	return sb.String()
}

func renderSeparator(widths []int) string {
	var sb strings.Builder

	sb.WriteString("|")

	for _, width := range widths {
		sb.WriteString(" ")
		sb.WriteString(strings.Repeat("-", width))
		sb.WriteString(" |")
	}

	return sb.String()
}

// cleanCell keeps a cell on one line and escapes pipes so it cannot split the row.
func cleanCell(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
