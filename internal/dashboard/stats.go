package dashboard

import (
	"sort"
	"strings"

	"github.com/seenimoa/sentidash/internal/dataset"
	"github.com/seenimoa/sentidash/pkg/utils"
)

// Summarize returns Total Records, Unique Dates and Unique Sentiments.
// A metric whose column is missing is marked unavailable rather than failing.
func Summarize(t *dataset.Table) []Metric {
	return []Metric{
		{Label: "Total Records", Value: t.Len(), Available: true},
		distinctMetric(t, "Unique Dates", dataset.ColumnDate),
		distinctMetric(t, "Unique Sentiments", dataset.ColumnSentiment),
	}
}

func distinctMetric(t *dataset.Table, label, column string) Metric {
	if !t.Has(column) {
		return Metric{Label: label}
	}
	return Metric{Label: label, Value: len(t.Distinct(column)), Available: true}
}

// Distribution counts rows per sentiment label, most frequent first; equal
// counts keep first-occurrence order. Blank labels are not counted.
func Distribution(t *dataset.Table) []SentimentCount {
	counts := make(map[string]int)
	for _, v := range t.Column(dataset.ColumnSentiment) {
		if strings.TrimSpace(v) != "" {
			counts[v]++
		}
	}

	out := make([]SentimentCount, 0, len(counts))
	for _, label := range t.Distinct(dataset.ColumnSentiment) {
		out = append(out, SentimentCount{Sentiment: label, Count: counts[label]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// Trend groups rows by (date, sentiment). Rows are ordered by date in
// natural date order, then by sentiment. Rows with a blank date or
// sentiment are skipped.
func Trend(t *dataset.Table) []TrendRow {
	type key struct{ date, sentiment string }
	counts := make(map[key]int)
	var order []key

	dates := t.Column(dataset.ColumnDate)
	labels := t.Column(dataset.ColumnSentiment)
	for i := range dates {
		d, s := dates[i], labels[i]
		if strings.TrimSpace(d) == "" || strings.TrimSpace(s) == "" {
			continue
		}
		k := key{d, s}
		if _, ok := counts[k]; !ok {
			order = append(order, k)
		}
		counts[k]++
	}

	out := make([]TrendRow, len(order))
	for i, k := range order {
		out[i] = TrendRow{Date: k.date, Sentiment: k.sentiment, Count: counts[k]}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := utils.CompareDates(out[i].Date, out[j].Date); c != 0 {
			return c < 0
		}
		return out[i].Sentiment < out[j].Sentiment
	})
	return out
}

// TrendSeries is one line of the trend chart: the dates on which a label
// appears and its count on each.
type TrendSeries struct {
	Sentiment string
	Dates     []string
	Counts    []int
}

// SeriesByDate reshapes trend rows into the ordered x-axis dates and one
// series per sentiment, in order of first appearance.
func SeriesByDate(rows []TrendRow) (dates []string, series []TrendSeries) {
	seenDate := make(map[string]bool)
	index := make(map[string]int)
	for _, r := range rows {
		if !seenDate[r.Date] {
			seenDate[r.Date] = true
			dates = append(dates, r.Date)
		}
		i, ok := index[r.Sentiment]
		if !ok {
			i = len(series)
			index[r.Sentiment] = i
			series = append(series, TrendSeries{Sentiment: r.Sentiment})
		}
		series[i].Dates = append(series[i].Dates, r.Date)
		series[i].Counts = append(series[i].Counts, r.Count)
	}
	return dates, series
}
