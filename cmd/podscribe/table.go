package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"
)

// writeTable renders rows as a pretty table on a terminal and as plain
// tab-separated text everywhere else, so output stays pipe-friendly.
func writeTable(out io.Writer, headers []string, rows [][]string) {
	if file, ok := out.(*os.File); ok && isatty.IsTerminal(file.Fd()) {
		tw := table.NewWriter()
		tw.SetOutputMirror(out)
		tw.SetStyle(table.StyleRounded)

		header := make(table.Row, len(headers))
		for i, h := range headers {
			header[i] = h
		}
		tw.AppendHeader(header)
		for _, row := range rows {
			r := make(table.Row, len(headers))
			for i := range headers {
				if i < len(row) {
					r[i] = row[i]
				}
			}
			tw.AppendRow(r)
		}
		tw.Render()
		return
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(headers, "\t"))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	_ = w.Flush()
}
