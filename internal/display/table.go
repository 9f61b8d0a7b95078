package display

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/backmassage/dvstamp/internal/term"
)

// RenderTable writes a rounded table with one header row. Color styling is
// applied only when term colors are enabled.
func RenderTable(w io.Writer, headers []string, rows [][]string) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	if term.Enabled() {
		t.SetStyle(table.StyleColoredBright)
	} else {
		t.SetStyle(table.StyleRounded)
	}

	t.AppendHeader(toRow(headers))
	for _, r := range rows {
		t.AppendRow(toRow(r))
	}
	t.Render()
}

func toRow(cells []string) table.Row {
	row := make(table.Row, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return row
}
