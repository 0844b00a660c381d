// Package render turns query results into display text.
package render

import (
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
)

// Tabular is anything with a header and rows of cell text.
type Tabular interface {
	Header() []string
	Cells() [][]string
}

// Table renders t as left-aligned columns separated by two spaces, header
// first. The result has no trailing newline.
func Table(t Tabular) string {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	writeRow(tw, t.Header())
	for _, row := range t.Cells() {
		writeRow(tw, row)
	}
	tw.Flush()
	return strings.TrimRight(sb.String(), "\n")
}

func writeRow(tw *tabwriter.Writer, cells []string) {
	for i, c := range cells {
		if i > 0 {
			tw.Write([]byte{'\t'})
		}
		tw.Write([]byte(strings.ReplaceAll(c, "\t", " ")))
	}
	tw.Write([]byte{'\n'})
}

// Amount formats v with thousands separators and two decimals, e.g.
// 1234567.891 → "1,234,567.89".
func Amount(v float64) string {
	return humanize.FormatFloat("#,###.##", v)
}

// Lines joins a header line and values, one per line.
func Lines(header string, values []string) string {
	if len(values) == 0 {
		return header
	}
	return header + "\n" + strings.Join(values, "\n")
}
