package main

import (
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// table writes left-aligned columns sized by display width, so accented
// and wide characters line up.
type table struct {
	headers []string
	rows    [][]string
}

func newTable(headers ...string) *table {
	return &table{headers: headers}
}

func (t *table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) Render(w io.Writer) {
	widths := make([]int, len(t.headers))
	measure := func(cells []string) {
		for i, cell := range cells {
			if i < len(widths) {
				widths[i] = max(widths[i], runewidth.StringWidth(cell))
			}
		}
	}
	measure(t.headers)
	for _, row := range t.rows {
		measure(row)
	}

	t.writeLine(w, t.headers, widths)
	rule := make([]string, len(widths))
	for i, width := range widths {
		rule[i] = strings.Repeat("-", width)
	}
	t.writeLine(w, rule, widths)
	for _, row := range t.rows {
		t.writeLine(w, row, widths)
	}
}

func (t *table) writeLine(w io.Writer, cells []string, widths []int) {
	var b strings.Builder
	for i, width := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		if i == len(widths)-1 {
			b.WriteString(cell)
			break
		}
		b.WriteString(runewidth.FillRight(cell, width))
		b.WriteString("  ")
	}
	_, _ = io.WriteString(w, strings.TrimRight(b.String(), " ")+"\n")
}
