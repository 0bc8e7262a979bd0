// Package formatter renders run reports as aligned markdown.
package formatter

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Table renders a header and rows as a markdown table whose columns are
// padded by display width, so wide runes line up in a terminal.
func Table(header []string, rows [][]string) []string {
	table := make([][]string, 0, len(rows)+2)
	table = append(table, header, nil)
	table = append(table, rows...)

	const separatorRowIdx = 1

	colCount := 0
	for _, row := range table {
		if len(row) > colCount {
			colCount = len(row)
		}
	}

	colWidths := make([]int, colCount)

	for _, row := range table {
		for i, cell := range row {
			if width := runewidth.StringWidth(cell); width > colWidths[i] {
				colWidths[i] = width
			}
		}
	}

	// Separators need at least "---".
	for i := range colWidths {
		if colWidths[i] < 3 {
			colWidths[i] = 3
		}
	}

	result := make([]string, 0, len(table))

	for i, row := range table {
		var sb strings.Builder

		sb.WriteString("|")

		for j := 0; j < colCount; j++ {
			sb.WriteString(" ")

			if i == separatorRowIdx {
				sb.WriteString(strings.Repeat("-", colWidths[j]))
				sb.WriteString(" |")

				continue
			}

			content := ""
			if j < len(row) {
				content = row[j]
			}

			sb.WriteString(content)

			if padding := colWidths[j] - runewidth.StringWidth(content); padding > 0 {
				sb.WriteString(strings.Repeat(" ", padding))
			}

			sb.WriteString(" |")
		}

		result = append(result, sb.String())
	}

	return result
}
