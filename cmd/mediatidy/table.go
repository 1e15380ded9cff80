package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// tableView is a rendered table: headers, rows, optional per-column
// alignment and a footer line under the rows.
type tableView struct {
	headers []string
	rows    [][]string
	aligns  []columnAlignment
	footer  []string
}

// maxCellWidth wraps long paths instead of widening the table.
const maxCellWidth = 60

func (v tableView) render() string {
	if len(v.headers) == 0 {
		return ""
	}
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(toRow(v.headers, len(v.headers)))
	for _, row := range v.rows {
		tw.AppendRow(toRow(row, len(v.headers)))
	}
	if len(v.footer) > 0 {
		tw.AppendFooter(toRow(v.footer, len(v.headers)))
	}

	configs := make([]table.ColumnConfig, len(v.headers))
	for i := range v.headers {
		align := text.AlignLeft
		if i < len(v.aligns) && v.aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
			WidthMax:    maxCellWidth,
		}
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

// toRow pads or truncates cells to width columns.
func toRow(cells []string, width int) table.Row {
	row := make(table.Row, width)
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		} else {
			row[i] = ""
		}
	}
	return row
}
