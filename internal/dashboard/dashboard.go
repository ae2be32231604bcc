// Package dashboard computes everything the sentiment dashboard shows.
//
// Render is a pure function of the uploaded table and the selected
// sentiment: the same State always yields the same View. Sessions,
// HTTP and chart drawing live elsewhere and only consume a View.
package dashboard

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/seenimoa/sentidash/internal/dataset"
)

// NotAvailable is shown in place of a metric whose column is absent.
const NotAvailable = "N/A"

var (
	// ErrUnknownSentiment is returned when a selection is not one of the
	// labels present in the table.
	ErrUnknownSentiment = errors.New("unknown sentiment")

	// ErrNoData is returned when an operation needs an uploaded table.
	ErrNoData = errors.New("no dataset uploaded")
)

// State is the input of a render: an optional table plus the selected label.
type State struct {
	Table     *dataset.Table
	FileName  string
	Selection string
}

// Options tunes rendering.
type Options struct {
	PreviewRows int
}

// DefaultOptions returns the standard rendering options.
func DefaultOptions() Options {
	return Options{PreviewRows: 5}
}

// Metric is one of the three summary figures.
type Metric struct {
	Label     string `json:"label"`
	Value     int    `json:"value"`
	Available bool   `json:"available"`
}

// Display returns the metric as shown on the page.
func (m Metric) Display() string {
	if !m.Available {
		return NotAvailable
	}
	return strconv.Itoa(m.Value)
}

// SentimentCount is one pie slice: a label and how many rows carry it.
type SentimentCount struct {
	Sentiment string `json:"sentiment"`
	Count     int    `json:"count"`
}

// TrendRow is the number of headlines for one (date, sentiment) pair.
type TrendRow struct {
	Date      string `json:"date"`
	Sentiment string `json:"sentiment"`
	Count     int    `json:"count"`
}

// View is the fully computed dashboard.
type View struct {
	Empty        bool             `json:"empty"`
	FileName     string           `json:"file_name,omitempty"`
	Columns      []string         `json:"columns,omitempty"`
	Preview      *dataset.Table   `json:"preview,omitempty"`
	Metrics      []Metric         `json:"metrics,omitempty"`
	Distribution []SentimentCount `json:"distribution,omitempty"`
	HasTrend     bool             `json:"has_trend"`
	Trend        []TrendRow       `json:"trend,omitempty"`
	Options      []string         `json:"options,omitempty"`
	Selected     string           `json:"selected,omitempty"`
	Filtered     *dataset.Table   `json:"filtered,omitempty"`
	DownloadName string           `json:"download_name,omitempty"`
}

// Render computes the dashboard for a state. A nil table yields an empty
// view that only carries the upload prompt.
func Render(st State, opts Options) (*View, error) {
	if st.Table == nil {
		return &View{Empty: true}, nil
	}
	if err := dataset.HeadlineSchema.Validate(st.Table); err != nil {
		return nil, err
	}
	if opts.PreviewRows <= 0 {
		opts.PreviewRows = DefaultOptions().PreviewRows
	}

	t := st.Table
	options := SentimentOptions(t)
	selected, err := resolveSelection(options, st.Selection)
	if err != nil {
		return nil, err
	}

	v := &View{
		FileName:     st.FileName,
		Columns:      t.Columns(),
		Preview:      t.Head(opts.PreviewRows),
		Metrics:      Summarize(t),
		Distribution: Distribution(t),
		HasTrend:     t.Has(dataset.ColumnDate),
		Options:      options,
		Selected:     selected,
		Filtered:     Filter(t, selected).Select(dataset.ColumnDate, dataset.ColumnHeadline),
		DownloadName: DownloadName(selected),
	}
	if v.HasTrend {
		v.Trend = Trend(t)
	}
	return v, nil
}

// SelectSentiment checks that label is a valid choice for t.
func SelectSentiment(t *dataset.Table, label string) error {
	if t == nil {
		return ErrNoData
	}
	if !slices.Contains(SentimentOptions(t), label) {
		return fmt.Errorf("%w: %q", ErrUnknownSentiment, label)
	}
	return nil
}

// SentimentOptions lists the selectable labels in first-occurrence order.
func SentimentOptions(t *dataset.Table) []string {
	return t.Distinct(dataset.ColumnSentiment)
}

// Filter returns the rows whose sentiment equals label exactly, all columns.
func Filter(t *dataset.Table, label string) *dataset.Table {
	return t.Filter(func(i int) bool {
		return label != "" && t.Value(i, dataset.ColumnSentiment) == label
	})
}

// DownloadName is the file name offered for a filtered download.
func DownloadName(label string) string {
	if label == "" {
		return ""
	}
	return strings.ToLower(label) + "_headlines.csv"
}

func resolveSelection(options []string, selection string) (string, error) {
	if selection == "" {
		if len(options) == 0 {
			return "", nil
		}
		return options[0], nil
	}
	if !slices.Contains(options, selection) {
		return "", fmt.Errorf("%w: %q", ErrUnknownSentiment, selection)
	}
	return selection, nil
}
