package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Format identifies an input/output encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatFromName picks a format from a file name's extension. Anything
// that is not a workbook is treated as delimited text.
func FormatFromName(name string) Format {
	if strings.EqualFold(filepath.Ext(name), ".xlsx") {
		return FormatXLSX
	}
	return FormatCSV
}

// Load reads a table in the given format and validates it against schema.
func Load(r io.Reader, format Format, schema Schema) (*Table, error) {
	var (
		t   *Table
		err error
	)
	switch format {
	case FormatXLSX:
		t, err = ReadXLSX(r)
	default:
		t, err = ReadCSV(r)
	}
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(t); err != nil {
		return nil, err
	}
	return t, nil
}

// ReadCSV parses comma-separated text with a header row.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, csvError(err)
	}
	header = normalizeHeader(header)

	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvError(err)
		}
		if len(rec) > len(header) {
			line, _ := cr.FieldPos(0)
			return nil, &ParseError{Line: line, Err: fmt.Errorf("expected %d fields, saw %d", len(header), len(rec))}
		}
		rows = append(rows, rec)
	}

	return New(header, rows)
}

// WriteCSV serializes the table with a header row and no index column.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(t.rows); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}

func csvError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &ParseError{Line: pe.StartLine, Err: pe.Err}
	}
	return &ParseError{Err: err}
}

// normalizeHeader strips a UTF-8 byte order mark and surrounding spaces.
func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		out[i] = strings.TrimSpace(h)
	}
	return out
}
