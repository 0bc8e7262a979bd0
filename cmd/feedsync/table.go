package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// renderTable draws rows with a rounded border. Columns listed in right are
// right aligned.
func renderTable(headers []string, rows [][]string, right ...int) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i, h := range headers {
		header[i] = h
	}

	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}

		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, len(right))
	for _, col := range right {
		configs = append(configs, table.ColumnConfig{
			Number:      col,
			Align:       text.AlignRight,
			AlignHeader: text.AlignLeft,
		})
	}

	tw.SetColumnConfigs(configs)

	return tw.Render()
}
