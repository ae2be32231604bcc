package dashboard

import (
	"io"
	"strings"

	"github.com/seenimoa/sentidash/internal/dataset"
)

// Export writes the filtered subset as CSV: the date and headline columns
// (whichever exist), no index column.
func Export(w io.Writer, v *View) error {
	if v == nil || v.Empty || v.Filtered == nil {
		return ErrNoData
	}
	return dataset.WriteCSV(w, v.Filtered)
}

// ExportXLSX writes the filtered subset as a workbook.
func ExportXLSX(w io.Writer, v *View) error {
	if v == nil || v.Empty || v.Filtered == nil {
		return ErrNoData
	}
	return dataset.WriteXLSX(w, v.Filtered)
}

// CSVName is the download name, or "headlines.csv" when the table has no
// sentiment to name it after.
func CSVName(v *View) string {
	if v.DownloadName == "" {
		return "headlines.csv"
	}
	return v.DownloadName
}

// WorkbookName swaps the .csv suffix of the download name for .xlsx.
func WorkbookName(v *View) string {
	return strings.TrimSuffix(CSVName(v), ".csv") + ".xlsx"
}
