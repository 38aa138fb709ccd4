package clifmt

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

// Table prints left-aligned columns. Cells are not wrapped; the last column
// is left unpadded.
type Table struct {
	Headers []string
	Rows    [][]string
	// Style, when set, decorates a whole row after padding.
	Style func(row int, line string) string
}

func (t Table) Print(out io.Writer) {
	if out == nil {
		out = os.Stdout
	}
	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range t.Rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if w := utf8.RuneCountInString(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	fmt.Fprintln(out, Key(t.line(t.Headers, widths)))
	rule := make([]string, len(widths))
	for i, w := range widths {
		rule[i] = strings.Repeat("-", w)
	}
	fmt.Fprintln(out, Dim(t.line(rule, widths)))
	for i, row := range t.Rows {
		line := t.line(row, widths)
		if t.Style != nil {
			line = t.Style(i, line)
		}
		fmt.Fprintln(out, line)
	}
}

func (t Table) line(cells []string, widths []int) string {
	parts := make([]string, len(widths))
	for i := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		if i == len(widths)-1 {
			parts[i] = cell
			continue
		}
		parts[i] = padRight(cell, widths[i])
	}
	return strings.TrimRight(strings.Join(parts, "  "), " ")
}
