package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Table renders rows under a bold header.
type Table struct {
	writer  io.Writer
	headers []string
	rows    [][]string
	colors  map[int]func(cell string) *color.Color
	noColor bool
}

// NewTable creates a table with the given headers.
func NewTable(w io.Writer, headers []string, noColor bool) *Table {
	return &Table{
		writer:  w,
		headers: headers,
		noColor: noColor,
	}
}

// AddRow appends a row.
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// ColorColumn colors the cells of column index with the color colorFor
// picks for each cell's text. Headers are not affected.
func (t *Table) ColorColumn(index int, colorFor func(cell string) *color.Color) {
	if t.colors == nil {
		t.colors = make(map[int]func(string) *color.Color)
	}
	t.colors[index] = colorFor
}

// Render writes the table. A table without headers renders nothing.
func (t *Table) Render() {
	if len(t.headers) == 0 {
		return
	}

	widths := make([]int, len(t.headers))
	for i, header := range t.headers {
		widths[i] = len(header)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	bold := newColor(t.noColor, color.Bold, color.FgCyan)
	for i, header := range t.headers {
		bold.Fprint(t.writer, padRight(header, widths[i]))
		if i < len(t.headers)-1 {
			fmt.Fprint(t.writer, "  ")
		}
	}
	fmt.Fprintln(t.writer)

	gray := newColor(t.noColor, color.FgHiBlack)
	for i, width := range widths {
		gray.Fprint(t.writer, strings.Repeat("─", width))
		if i < len(widths)-1 {
			gray.Fprint(t.writer, "  ")
		}
	}
	fmt.Fprintln(t.writer)

	for _, row := range t.rows {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			last := i == len(row)-1 || i == len(widths)-1
			text := cell
			if !last {
				text = padRight(cell, widths[i])
			}
			if colorFor, ok := t.colors[i]; ok && !t.noColor {
				colorFor(cell).Fprint(t.writer, text)
			} else {
				fmt.Fprint(t.writer, text)
			}
			if last {
				break
			}
			fmt.Fprint(t.writer, "  ")
		}
		fmt.Fprintln(t.writer)
	}
}

// KeyValue renders aligned "key: value" lines.
type KeyValue struct {
	writer  io.Writer
	keys    []string
	values  []string
	noColor bool
}

// NewKeyValue creates an empty key-value block.
func NewKeyValue(w io.Writer, noColor bool) *KeyValue {
	return &KeyValue{writer: w, noColor: noColor}
}

// Add appends a row.
func (kv *KeyValue) Add(key string, value any) {
	kv.keys = append(kv.keys, key)
	kv.values = append(kv.values, fmt.Sprint(value))
}

// Render writes the block.
func (kv *KeyValue) Render() {
	width := 0
	for _, k := range kv.keys {
		if len(k) > width {
			width = len(k)
		}
	}

	cyan := newColor(kv.noColor, color.FgCyan)
	for i, k := range kv.keys {
		cyan.Fprint(kv.writer, padRight(k+":", width+1))
		fmt.Fprintf(kv.writer, " %s\n", kv.values[i])
	}
}

// Status prints a one-line message prefixed with a colored marker.
type Status struct {
	writer  io.Writer
	noColor bool
}

// NewStatus creates a status printer.
func NewStatus(w io.Writer, noColor bool) *Status {
	return &Status{writer: w, noColor: noColor}
}

// Success prints a green check line.
func (s *Status) Success(format string, args ...any) {
	s.print(color.FgGreen, "✓", format, args...)
}

// Warn prints a yellow warning line.
func (s *Status) Warn(format string, args ...any) {
	s.print(color.FgYellow, "!", format, args...)
}

// Error prints a red failure line.
func (s *Status) Error(format string, args ...any) {
	s.print(color.FgRed, "✗", format, args...)
}

func (s *Status) print(attr color.Attribute, marker, format string, args ...any) {
	newColor(s.noColor, attr, color.Bold).Fprint(s.writer, marker)
	fmt.Fprintf(s.writer, " "+format+"\n", args...)
}

// SeverityColor returns the color used for a severity label.
func SeverityColor(severity string, noColor bool) *color.Color {
	switch strings.ToLower(severity) {
	case "critical":
		return newColor(noColor, color.FgHiRed, color.Bold)
	case "high":
		return newColor(noColor, color.FgRed)
	case "medium":
		return newColor(noColor, color.FgYellow)
	case "low":
		return newColor(noColor, color.FgGreen)
	default:
		return newColor(noColor, color.FgHiBlack)
	}
}

func newColor(noColor bool, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if noColor {
		c.DisableColor()
	}
	return c
}

// padRight pads a string with spaces on the right to reach the target width.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
