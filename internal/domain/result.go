package domain

import (
	"fmt"
	"strings"
)

// ResultKind tags the variant carried by a Result.
type ResultKind string

const (
	ResultKindText    ResultKind = "text"
	ResultKindTable   ResultKind = "table"
	ResultKindRecords ResultKind = "records"
)

// Result is what a processed turn returns to the caller: plain text, a
// tabular result, or a list of structured records. Exactly one variant
// is set, selected by Kind.
type Result struct {
	Kind    ResultKind       `json:"kind"`
	Text    string           `json:"text,omitempty"`
	Table   *Table           `json:"table,omitempty"`
	Records []map[string]any `json:"records,omitempty"`
}

// TextResult wraps plain text.
func TextResult(text string) Result {
	return Result{Kind: ResultKindText, Text: text}
}

// TableResult wraps a tabular result.
func TableResult(table *Table) Result {
	return Result{Kind: ResultKindTable, Table: table}
}

// RecordsResult wraps a list of structured records.
func RecordsResult(records []map[string]any) Result {
	return Result{Kind: ResultKindRecords, Records: records}
}

// Table is a tabular result with named columns.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Render returns the table as column-aligned text.
func (t *Table) Render() string {
	if t == nil || len(t.Columns) == 0 {
		return ""
	}
	widths := make([]int, len(t.Columns))
	for i, col := range t.Columns {
		widths[i] = len(col)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i >= len(widths) {
				break
			}
			if i > 0 {
				b.WriteString("  ")
			}
			fmt.Fprintf(&b, "%-*s", widths[i], cell)
		}
		b.WriteString("\n")
	}
	writeRow(t.Columns)
	for _, row := range t.Rows {
		writeRow(row)
	}
	return strings.TrimRight(b.String(), "\n")
}
