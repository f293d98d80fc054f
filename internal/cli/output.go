package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table renders aligned columns with a header row.
type Table struct {
	headers []string
	rows    [][]string
	widths  []int
}

// NewTable creates a new table with the given headers.
func NewTable(headers ...string) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	return &Table{headers: headers, widths: widths}
}

// AddRow adds a row. Missing cells are left blank and extra cells dropped.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.headers))
	copy(row, cells)
	for i, cell := range row {
		if w := lipgloss.Width(cell); w > t.widths[i] {
			t.widths[i] = w
		}
	}
	t.rows = append(t.rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// String renders the table.
func (t *Table) String() string {
	if len(t.headers) == 0 {
		return ""
	}

	var b strings.Builder
	writeRow := func(cells []string, style func(string) string) {
		for i, cell := range cells {
			if i > 0 {
				b.WriteString("  ")
			}
			if i == len(cells)-1 {
				b.WriteString(style(cell))
				continue
			}
			b.WriteString(style(padRight(cell, t.widths[i])))
		}
		b.WriteString("\n")
	}

	writeRow(t.headers, Bold)
	rule := make([]string, len(t.widths))
	for i, w := range t.widths {
		rule[i] = strings.Repeat("─", w)
	}
	writeRow(rule, Dim)
	for _, row := range t.rows {
		writeRow(row, func(s string) string { return s })
	}
	return b.String()
}

func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// List renders marked lines, one per item.
type List struct {
	items []string
}

// NewList creates an empty list.
func NewList() *List {
	return &List{}
}

// Add adds a plain item.
func (l *List) Add(content string) { l.add("•", content) }

// AddSuccess adds an item marked as passing.
func (l *List) AddSuccess(content string) { l.add(Success("✓"), content) }

// AddError adds an item marked as failing.
func (l *List) AddError(content string) { l.add(Error("✗"), content) }

// AddWarning adds an item marked as needing attention.
func (l *List) AddWarning(content string) { l.add(Warning("!"), content) }

func (l *List) add(marker, content string) {
	l.items = append(l.items, "  "+marker+" "+content)
}

// String renders the list.
func (l *List) String() string {
	if len(l.items) == 0 {
		return ""
	}
	return strings.Join(l.items, "\n") + "\n"
}

// Indent indents every non-empty line of content.
func Indent(content string, spaces int) string {
	prefix := strings.Repeat(" ", spaces)
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}

// FormatKeyValue formats a key-value pair.
func FormatKeyValue(key, value string) string {
	return fmt.Sprintf("%s %s", Dim(key+":"), value)
}

// FormatCount formats a count with singular/plural form.
func FormatCount(count int, singular, plural string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, singular)
	}
	return fmt.Sprintf("%d %s", count, plural)
}
