package dashboard

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/seenimoa/sentidash/internal/dataset"
)

// ════════════════════════════════════════════════════════════════════
// Test Helpers
// ════════════════════════════════════════════════════════════════════

func scenarioTable() *dataset.Table {
	return dataset.MustNew([]string{"date", "sentiment", "headline"}, [][]string{
		{"2024-01-01", "Positive", "A"},
		{"2024-01-01", "Negative", "B"},
		{"2024-01-02", "Positive", "C"},
	})
}

func largeTable(n int) *dataset.Table {
	labels := []string{"Neutral", "Positive", "Negative", "Positive"}
	rows := make([][]string, n)
	for i := range rows {
		rows[i] = []string{
			fmt.Sprintf("2024-01-%02d", i%7+1),
			labels[i%len(labels)],
			fmt.Sprintf("headline %d", i),
			fmt.Sprintf("src%d", i%3),
		}
	}
	return dataset.MustNew([]string{"date", "sentiment", "headline", "source"}, rows)
}

func mustRender(t *testing.T, st State) *View {
	t.Helper()
	v, err := Render(st, DefaultOptions())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return v
}

// ════════════════════════════════════════════════════════════════════
// Scenario
// ════════════════════════════════════════════════════════════════════

func TestRenderScenario(t *testing.T) {
	v := mustRender(t, State{Table: scenarioTable(), Selection: "Positive"})

	wantMetrics := []Metric{
		{Label: "Total Records", Value: 3, Available: true},
		{Label: "Unique Dates", Value: 2, Available: true},
		{Label: "Unique Sentiments", Value: 2, Available: true},
	}
	if diff := cmp.Diff(wantMetrics, v.Metrics); diff != "" {
		t.Errorf("metrics (-want +got):\n%s", diff)
	}

	wantPie := []SentimentCount{{"Positive", 2}, {"Negative", 1}}
	if diff := cmp.Diff(wantPie, v.Distribution); diff != "" {
		t.Errorf("distribution (-want +got):\n%s", diff)
	}

	wantTrend := []TrendRow{
		{"2024-01-01", "Negative", 1},
		{"2024-01-01", "Positive", 1},
		{"2024-01-02", "Positive", 1},
	}
	if diff := cmp.Diff(wantTrend, v.Trend); diff != "" {
		t.Errorf("trend (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{"date", "headline"}, v.Filtered.Columns()); diff != "" {
		t.Errorf("filtered columns (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"A", "C"}, v.Filtered.Column("headline")); diff != "" {
		t.Errorf("filtered headlines (-want +got):\n%s", diff)
	}
	if v.DownloadName != "positive_headlines.csv" {
		t.Errorf("DownloadName: got %q", v.DownloadName)
	}
}

func TestRenderEmptyState(t *testing.T) {
	v := mustRender(t, State{})
	if !v.Empty {
		t.Fatal("expected empty view without a table")
	}
	if v.Metrics != nil || v.Preview != nil {
		t.Error("empty view must not compute anything")
	}
}

func TestRenderDefaultsToFirstOption(t *testing.T) {
	tbl := dataset.MustNew([]string{"sentiment", "headline"}, [][]string{
		{"Neutral", "x"}, {"Positive", "y"}, {"Neutral", "z"},
	})
	v := mustRender(t, State{Table: tbl})
	if v.Selected != "Neutral" {
		t.Errorf("Selected: got %q, want Neutral", v.Selected)
	}
	if diff := cmp.Diff([]string{"Neutral", "Positive"}, v.Options); diff != "" {
		t.Errorf("options keep first-occurrence order (-want +got):\n%s", diff)
	}
}

func TestRenderWithoutDateColumn(t *testing.T) {
	tbl := dataset.MustNew([]string{"sentiment", "headline"}, [][]string{
		{"Positive", "x"}, {"Negative", "y"},
	})
	v := mustRender(t, State{Table: tbl})

	if v.HasTrend || v.Trend != nil {
		t.Error("trend must be omitted without a date column")
	}
	if got := v.Metrics[1].Display(); got != NotAvailable {
		t.Errorf("Unique Dates: got %q, want %q", got, NotAvailable)
	}
	if diff := cmp.Diff([]string{"headline"}, v.Filtered.Columns()); diff != "" {
		t.Errorf("filtered columns (-want +got):\n%s", diff)
	}
}

func TestRenderErrors(t *testing.T) {
	t.Run("unknown selection", func(t *testing.T) {
		_, err := Render(State{Table: scenarioTable(), Selection: "Bullish"}, DefaultOptions())
		if !errors.Is(err, ErrUnknownSentiment) {
			t.Errorf("got %v, want ErrUnknownSentiment", err)
		}
	})

	t.Run("missing required column", func(t *testing.T) {
		tbl := dataset.MustNew([]string{"date", "sentiment"}, [][]string{{"2024-01-01", "Positive"}})
		_, err := Render(State{Table: tbl}, DefaultOptions())
		var mce *dataset.MissingColumnError
		if !errors.As(err, &mce) {
			t.Errorf("got %v, want MissingColumnError", err)
		}
	})
}

func TestRenderHeaderOnlyTable(t *testing.T) {
	tbl := dataset.MustNew([]string{"date", "sentiment", "headline"}, nil)
	v := mustRender(t, State{Table: tbl})
	if v.Selected != "" || v.DownloadName != "" {
		t.Errorf("no options expected, got selected=%q download=%q", v.Selected, v.DownloadName)
	}
	if v.Filtered.Len() != 0 {
		t.Errorf("filtered rows: got %d", v.Filtered.Len())
	}
	if v.Metrics[0].Value != 0 {
		t.Errorf("Total Records: got %d", v.Metrics[0].Value)
	}
}

// ════════════════════════════════════════════════════════════════════
// Properties
// ════════════════════════════════════════════════════════════════════

func TestPreviewShowsAtMostFiveRowsInOrder(t *testing.T) {
	for _, n := range []int{0, 1, 4, 5, 6, 40} {
		tbl := largeTable(n)
		v := mustRender(t, State{Table: tbl})

		want := min(5, n)
		if v.Preview.Len() != want {
			t.Errorf("n=%d: preview rows got %d, want %d", n, v.Preview.Len(), want)
		}
		for i := 0; i < v.Preview.Len(); i++ {
			if diff := cmp.Diff(tbl.Row(i), v.Preview.Row(i)); diff != "" {
				t.Errorf("n=%d row %d (-want +got):\n%s", n, i, diff)
			}
		}
	}
}

func TestDistributionAndTrendSumToTotal(t *testing.T) {
	tbl := largeTable(57)
	v := mustRender(t, State{Table: tbl})

	pie := 0
	for _, s := range v.Distribution {
		pie += s.Count
	}
	if pie != tbl.Len() {
		t.Errorf("pie sum: got %d, want %d", pie, tbl.Len())
	}

	trend := 0
	for _, r := range v.Trend {
		trend += r.Count
	}
	if trend != tbl.Len() {
		t.Errorf("trend sum: got %d, want %d", trend, tbl.Len())
	}
}

func TestDistributionOrdersByCountThenFirstSeen(t *testing.T) {
	tbl := dataset.MustNew([]string{"sentiment", "headline"}, [][]string{
		{"Neutral", "a"}, {"Negative", "b"}, {"Positive", "c"}, {"Positive", "d"}, {"", "e"},
	})
	want := []SentimentCount{{"Positive", 2}, {"Neutral", 1}, {"Negative", 1}}
	if diff := cmp.Diff(want, Distribution(tbl)); diff != "" {
		t.Errorf("distribution (-want +got):\n%s", diff)
	}
}

func TestTrendOrdersDatesNaturally(t *testing.T) {
	tbl := dataset.MustNew([]string{"date", "sentiment", "headline"}, [][]string{
		{"2024-02-01", "Positive", "a"},
		{"2024/01/15", "Positive", "b"},
		{"", "Positive", "c"},
		{"2023-12-31", "Negative", "d"},
	})
	var dates []string
	for _, r := range Trend(tbl) {
		dates = append(dates, r.Date)
	}
	if diff := cmp.Diff([]string{"2023-12-31", "2024/01/15", "2024-02-01"}, dates); diff != "" {
		t.Errorf("trend dates (-want +got):\n%s", diff)
	}
}

func TestRenderIsIdempotent(t *testing.T) {
	st := State{Table: largeTable(30), Selection: "Negative"}
	a := mustRender(t, st)
	b := mustRender(t, st)
	if diff := cmp.Diff(a, b, cmp.Comparer(func(x, y *dataset.Table) bool {
		return cmp.Equal(x.Columns(), y.Columns()) && cmp.Equal(x.Rows(), y.Rows())
	})); diff != "" {
		t.Errorf("renders differ (-first +second):\n%s", diff)
	}
}

func TestFilterMatchesExactlyTheSelectedRows(t *testing.T) {
	tbl := largeTable(33)
	for _, label := range SentimentOptions(tbl) {
		v := mustRender(t, State{Table: tbl, Selection: label})

		var want []string
		for i := 0; i < tbl.Len(); i++ {
			if tbl.Value(i, "sentiment") == label {
				want = append(want, tbl.Value(i, "headline"))
			}
		}
		if diff := cmp.Diff(want, v.Filtered.Column("headline")); diff != "" {
			t.Errorf("%s: filtered (-want +got):\n%s", label, diff)
		}
	}
}

func TestExportRoundTrip(t *testing.T) {
	tbl := largeTable(12)
	v := mustRender(t, State{Table: tbl, Selection: "Positive"})

	var buf bytes.Buffer
	if err := Export(&buf, v); err != nil {
		t.Fatalf("Export: %v", err)
	}
	back, err := dataset.ReadCSV(&buf)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if diff := cmp.Diff([]string{"date", "headline"}, back.Columns()); diff != "" {
		t.Errorf("columns (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(v.Filtered.Rows(), back.Rows()); diff != "" {
		t.Errorf("rows (-want +got):\n%s", diff)
	}
}

func TestExportWithoutData(t *testing.T) {
	for _, export := range []func(io.Writer, *View) error{Export, ExportXLSX} {
		var buf bytes.Buffer
		if err := export(&buf, &View{Empty: true}); !errors.Is(err, ErrNoData) {
			t.Errorf("got %v, want ErrNoData", err)
		}
		if buf.Len() != 0 {
			t.Errorf("wrote %d bytes without data", buf.Len())
		}
	}
}

func TestSelectSentiment(t *testing.T) {
	tbl := scenarioTable()
	if err := SelectSentiment(tbl, "Negative"); err != nil {
		t.Errorf("Negative should be valid: %v", err)
	}
	if err := SelectSentiment(tbl, "negative"); !errors.Is(err, ErrUnknownSentiment) {
		t.Errorf("matching is exact, got %v", err)
	}
	if err := SelectSentiment(nil, "Negative"); !errors.Is(err, ErrNoData) {
		t.Errorf("got %v, want ErrNoData", err)
	}
}

func TestSeriesByDate(t *testing.T) {
	dates, series := SeriesByDate([]TrendRow{
		{"d1", "Negative", 1},
		{"d1", "Positive", 2},
		{"d2", "Positive", 3},
	})
	if diff := cmp.Diff([]string{"d1", "d2"}, dates); diff != "" {
		t.Errorf("dates (-want +got):\n%s", diff)
	}
	want := []TrendSeries{
		{Sentiment: "Negative", Dates: []string{"d1"}, Counts: []int{1}},
		{Sentiment: "Positive", Dates: []string{"d1", "d2"}, Counts: []int{2, 3}},
	}
	if diff := cmp.Diff(want, series); diff != "" {
		t.Errorf("series (-want +got):\n%s", diff)
	}
}

func TestWorkbookName(t *testing.T) {
	v := &View{DownloadName: "neutral_headlines.csv"}
	if got := WorkbookName(v); got != "neutral_headlines.xlsx" {
		t.Errorf("WorkbookName: got %q", got)
	}

	empty := &View{}
	if got := CSVName(empty); got != "headlines.csv" {
		t.Errorf("CSVName without selection: got %q", got)
	}
	if got := WorkbookName(empty); got != "headlines.xlsx" {
		t.Errorf("WorkbookName without selection: got %q", got)
	}
}
