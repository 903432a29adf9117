// Package render draws command output: tabwriter tables with a metadata
// title line, JSON debug dumps, and the small value formatters the tables
// share.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"
)

// metaOrder fixes the title metadata order for consistency across
// commands.
var metaOrder = []string{"service", "env", "cluster", "from", "to", "date"}

// Title composes "Base  •  key=value  •  key=value" from the metadata,
// skipping empty entries. Keys outside metaOrder are ignored.
func Title(base string, metadata map[string]string) string {
	if len(metadata) == 0 {
		return base
	}
	parts := []string{base}
	for _, k := range metaOrder {
		if v := strings.TrimSpace(metadata[k]); v != "" {
			parts = append(parts, k+"="+v)
		}
	}
	return strings.Join(parts, "  •  ")
}

// Table accumulates rows and prints them aligned. The last column is
// truncated to the terminal width when the destination is a tty.
type Table struct {
	w       io.Writer
	title   string
	columns []string
	rows    [][]string
}

// NewTable creates a table with a composed title.
func NewTable(w io.Writer, base string, metadata map[string]string) *Table {
	return &Table{w: w, title: Title(base, metadata)}
}

// AddColumn appends a column header.
func (t *Table) AddColumn(name string) {
	t.columns = append(t.columns, name)
}

// AddRow appends a row. Missing cells render empty; extra cells are
// dropped.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.columns))
	for i := range row {
		if i < len(cells) {
			row[i] = sanitizeCell(cells[i])
		}
	}
	t.rows = append(t.rows, row)
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Print writes the title, a header line, and all rows.
func (t *Table) Print() {
	fmt.Fprintln(t.w, t.title)
	tw := tabwriter.NewWriter(t.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.columns, "\t"))
	limit := t.lastColumnLimit()
	last := len(t.columns) - 1
	for _, row := range t.rows {
		if limit > 0 && last >= 0 {
			row[last] = Truncate(row[last], limit)
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()
}

// lastColumnLimit budgets the final column against the terminal width so
// long messages do not wrap every row. Zero means no limit.
func (t *Table) lastColumnLimit() int {
	f, ok := t.w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return 0
	}
	used := 0
	for i, col := range t.columns {
		if i == len(t.columns)-1 {
			break
		}
		w := len(col)
		for _, row := range t.rows {
			if len(row[i]) > w {
				w = len(row[i])
			}
		}
		used += w + 2
	}
	limit := width - used
	if limit < 16 {
		limit = 16
	}
	return limit
}

// Truncate caps s at limit runes.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func sanitizeCell(s string) string {
	s = strings.ReplaceAll(s, "\t", " ")
	return strings.ReplaceAll(s, "\n", " ")
}

// Rule prints a labelled separator, the debug framing around raw
// payload/response dumps.
func Rule(w io.Writer, label string) {
	fmt.Fprintf(w, "── %s ──\n", label)
}

// JSON pretty-prints v. Values that fail to marshal print via fmt.
func JSON(w io.Writer, v any) {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintln(w, v)
		return
	}
	fmt.Fprintln(w, string(encoded))
}

// Panel prints a titled block of lines.
func Panel(w io.Writer, title string, lines ...string) {
	fmt.Fprintf(w, "%s\n", title)
	for _, line := range lines {
		fmt.Fprintf(w, "  %s\n", line)
	}
}
