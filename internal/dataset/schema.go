package dataset

import (
	"fmt"
	"strings"
)

// Schema declares which columns a table must and may carry. Validation is
// done once, when a file is loaded, so later stages can rely on required
// columns being present and only branch on optional ones.
type Schema struct {
	Required []string
	Optional []string
}

// HeadlineSchema is the schema of a sentiment-labelled headline file.
// The date column is optional: without it the trend view is skipped.
var HeadlineSchema = Schema{
	Required: []string{ColumnSentiment, ColumnHeadline},
	Optional: []string{ColumnDate},
}

// MissingColumnError reports required columns absent from a table.
type MissingColumnError struct {
	Columns []string
}

func (e *MissingColumnError) Error() string {
	noun := "column"
	if len(e.Columns) > 1 {
		noun = "columns"
	}
	return fmt.Sprintf("missing required %s: %s", noun, strings.Join(e.Columns, ", "))
}

// Validate returns a *MissingColumnError listing every required column the
// table lacks, or nil.
func (s Schema) Validate(t *Table) error {
	var missing []string
	for _, c := range s.Required {
		if !t.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnError{Columns: missing}
	}
	return nil
}

// ParseError reports a malformed input line.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error on line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("parse error: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
