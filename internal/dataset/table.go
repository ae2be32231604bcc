// Package dataset holds the in-memory headline table and its file codecs.
//
// A Table is an ordered set of named columns over ordered rows of string
// cells. Tables are immutable once built: every projection (Head, Select,
// Filter) returns a new Table that shares no mutable state with its source.
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Well-known column names.
const (
	ColumnDate      = "date"
	ColumnSentiment = "sentiment"
	ColumnHeadline  = "headline"
	ColumnSource    = "source"
	ColumnURL       = "url"
)

// ErrEmptyFile is returned when an input has no header row.
var ErrEmptyFile = errors.New("dataset: file is empty")

// Table is an ordered row/column table of string cells.
type Table struct {
	columns []string
	rows    [][]string
	index   map[string]int
}

// New builds a table. Short rows are padded with blank cells; rows wider
// than the header and duplicate column names are rejected.
func New(columns []string, rows [][]string) (*Table, error) {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := index[c]; dup {
			return nil, fmt.Errorf("dataset: duplicate column %q", c)
		}
		index[c] = i
	}

	out := make([][]string, len(rows))
	for i, r := range rows {
		if len(r) > len(columns) {
			return nil, &ParseError{Line: i + 2, Err: fmt.Errorf("expected %d fields, saw %d", len(columns), len(r))}
		}
		row := make([]string, len(columns))
		copy(row, r)
		out[i] = row
	}

	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{columns: cols, rows: out, index: index}, nil
}

// MustNew is New for literals in tests and fixtures.
func MustNew(columns []string, rows [][]string) *Table {
	t, err := New(columns, rows)
	if err != nil {
		panic(err)
	}
	return t
}

// Columns returns the column names in file order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Has reports whether the table has the named column.
func (t *Table) Has(column string) bool {
	_, ok := t.index[column]
	return ok
}

// Row returns a copy of row i.
func (t *Table) Row(i int) []string {
	out := make([]string, len(t.rows[i]))
	copy(out, t.rows[i])
	return out
}

// Rows returns a copy of all rows.
func (t *Table) Rows() [][]string {
	out := make([][]string, len(t.rows))
	for i := range t.rows {
		out[i] = t.Row(i)
	}
	return out
}

// Value returns the cell at row i in the named column, or "" when the
// column does not exist.
func (t *Table) Value(i int, column string) string {
	c, ok := t.index[column]
	if !ok {
		return ""
	}
	return t.rows[i][c]
}

// Column returns every value of the named column, or nil when absent.
func (t *Table) Column(column string) []string {
	c, ok := t.index[column]
	if !ok {
		return nil
	}
	out := make([]string, len(t.rows))
	for i, r := range t.rows {
		out[i] = r[c]
	}
	return out
}

// Distinct returns the non-blank values of a column in first-occurrence order.
func (t *Table) Distinct(column string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, v := range t.Column(column) {
		if strings.TrimSpace(v) == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Head returns the first n rows.
func (t *Table) Head(n int) *Table {
	if n < 0 {
		n = 0
	}
	if n > len(t.rows) {
		n = len(t.rows)
	}
	return t.derive(t.columns, t.rows[:n])
}

// Select projects the table onto the given columns, skipping names the
// table does not have. Column order follows the arguments.
func (t *Table) Select(columns ...string) *Table {
	var keep []string
	var idx []int
	for _, c := range columns {
		if i, ok := t.index[c]; ok {
			keep = append(keep, c)
			idx = append(idx, i)
		}
	}
	rows := make([][]string, len(t.rows))
	for r, row := range t.rows {
		out := make([]string, len(idx))
		for j, i := range idx {
			out[j] = row[i]
		}
		rows[r] = out
	}
	return t.derive(keep, rows)
}

// Filter returns the rows for which keep returns true, in original order.
func (t *Table) Filter(keep func(i int) bool) *Table {
	var rows [][]string
	for i, row := range t.rows {
		if keep(i) {
			rows = append(rows, row)
		}
	}
	return t.derive(t.columns, rows)
}

func (t *Table) derive(columns []string, rows [][]string) *Table {
	// Inputs are already validated, so New cannot fail here.
	out, _ := New(columns, rows)
	return out
}

type tableJSON struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// MarshalJSON encodes the table as {"columns": [...], "rows": [[...]]}.
func (t *Table) MarshalJSON() ([]byte, error) {
	rows := t.rows
	if rows == nil {
		rows = [][]string{}
	}
	return json.Marshal(tableJSON{Columns: t.columns, Rows: rows})
}

// UnmarshalJSON decodes the form produced by MarshalJSON.
func (t *Table) UnmarshalJSON(data []byte) error {
	var raw tableJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	built, err := New(raw.Columns, raw.Rows)
	if err != nil {
		return err
	}
	*t = *built
	return nil
}
