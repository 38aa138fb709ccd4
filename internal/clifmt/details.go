package clifmt

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"
)

const (
	fallbackWidth      = 100
	fallbackDetailCols = 36
	columnGap          = "  "
)

type DetailRow struct {
	Name   string
	Detail string
}

// Details prints a two-column listing whose second column is word-wrapped to
// the terminal width (Width when out is not a terminal).
type Details struct {
	Title        string
	NameHeader   string
	DetailHeader string
	Rows         []DetailRow
	// Empty is printed instead of the table when there are no rows.
	Empty string
	// Blank replaces an empty detail cell.
	Blank          string
	Width          int
	MinDetailWidth int
}

func (d Details) Print(out io.Writer) {
	if out == nil {
		out = os.Stdout
	}
	if t := strings.TrimSpace(d.Title); t != "" {
		fmt.Fprintln(out, Headerf("%s (%d)", t, len(d.Rows)))
	}
	if len(d.Rows) == 0 {
		fmt.Fprintln(out, Warn(orDefault(d.Empty, "No entries.")))
		return
	}

	nameHeader := orDefault(d.NameHeader, "NAME")
	nameCols := utf8.RuneCountInString(nameHeader)
	for _, row := range d.Rows {
		nameCols = max(nameCols, utf8.RuneCountInString(row.Name))
	}
	detailCols := d.detailColumns(out, nameCols)

	fmt.Fprintln(out, Key(padRight(nameHeader, nameCols))+columnGap+Key(orDefault(d.DetailHeader, "DETAILS")))
	fmt.Fprintln(out, Dim(strings.Repeat("-", nameCols))+columnGap+Dim(strings.Repeat("-", detailCols)))
	indent := strings.Repeat(" ", nameCols)
	for _, row := range d.Rows {
		for i, line := range wrapWords(orDefault(row.Detail, orDefault(d.Blank, "No details provided.")), detailCols) {
			lead := indent
			if i == 0 {
				lead = Success(padRight(row.Name, nameCols))
			}
			fmt.Fprintln(out, lead+columnGap+line)
		}
	}
}

func (d Details) detailColumns(out io.Writer, nameCols int) int {
	width := d.Width
	if width <= 0 {
		width = fallbackWidth
	}
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if cols, _, err := term.GetSize(int(f.Fd())); err == nil && cols > 0 {
			width = cols
		}
	}
	minCols := d.MinDetailWidth
	if minCols <= 0 {
		minCols = fallbackDetailCols
	}
	return max(minCols, width-nameCols-len(columnGap))
}

func orDefault(s, fallback string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return fallback
}

func padRight(s string, cols int) string {
	if n := cols - utf8.RuneCountInString(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}

// wrapWords breaks text on whitespace into lines of at most cols runes.
// Words longer than cols are split.
func wrapWords(text string, cols int) []string {
	words := strings.Fields(text)
	if len(words) == 0 || cols <= 0 {
		return []string{strings.Join(words, " ")}
	}
	var lines []string
	var cur []rune
	for _, w := range words {
		word := []rune(w)
		for len(word) > cols {
			if len(cur) > 0 {
				lines = append(lines, string(cur))
				cur = nil
			}
			lines = append(lines, string(word[:cols]))
			word = word[cols:]
		}
		switch {
		case len(word) == 0:
		case len(cur) == 0:
			cur = word
		case len(cur)+1+len(word) <= cols:
			cur = append(append(cur, ' '), word...)
		default:
			lines = append(lines, string(cur))
			cur = word
		}
	}
	if len(cur) > 0 {
		lines = append(lines, string(cur))
	}
	return lines
}
