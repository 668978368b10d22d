package util

import (
	"fmt"
	"strings"
	"text/tabwriter"
)

// TabbedStringBuilder builds tab-aligned text in memory. Writing to a strings.Builder never
// fails, so none of its methods return an error.
type TabbedStringBuilder struct {
	sb     *strings.Builder
	writer *tabwriter.Writer
}

// NewTabbedStringBuilder takes the same parameters as tabwriter.NewWriter.
func NewTabbedStringBuilder(minwidth, tabwidth, padding int, padchar byte, flags uint) *TabbedStringBuilder {
	sb := &strings.Builder{}
	return &TabbedStringBuilder{
		sb:     sb,
		writer: tabwriter.NewWriter(sb, minwidth, tabwidth, padding, padchar, flags),
	}
}

func (t *TabbedStringBuilder) Writef(format string, a ...any) {
	_, _ = fmt.Fprintf(t.writer, format, a...)
}

func (t *TabbedStringBuilder) Write(a ...any) {
	_, _ = fmt.Fprint(t.writer, a...)
}

// WriteRow writes one line with a cell per column.
func (t *TabbedStringBuilder) WriteRow(columns ...any) {
	cells := make([]string, len(columns))
	for i, column := range columns {
		cells[i] = fmt.Sprint(column)
	}
	_, _ = fmt.Fprintln(t.writer, strings.Join(cells, "\t"))
}

// String flushes the aligned text written so far and returns it.
func (t *TabbedStringBuilder) String() string {
	_ = t.writer.Flush()
	return t.sb.String()
}
