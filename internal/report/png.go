package report

import (
	"errors"
	"fmt"
	"io"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/seenimoa/sentidash/internal/dashboard"
)

// ════════════════════════════════════════════════════════════════════
// PNG Charts
// ════════════════════════════════════════════════════════════════════

// ErrNoChartData is returned when a PNG chart has nothing to draw.
var ErrNoChartData = errors.New("no data to chart")

// PiePNG renders the sentiment distribution as a PNG pie chart.
func PiePNG(w io.Writer, counts []dashboard.SentimentCount, cfg ChartConfig) error {
	if cfg.Width == 0 {
		cfg = DefaultChartConfig()
	}
	if cfg.Title == "" {
		cfg.Title = "Overall Sentiment Distribution"
	}

	values := make([]chart.Value, 0, len(counts))
	for i, c := range counts {
		if c.Count == 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s (%d)", c.Sentiment, c.Count),
			Value: float64(c.Count),
			Style: chart.Style{
				FillColor:   drawing.ColorFromHex(SentimentColor(c.Sentiment, i)),
				StrokeColor: drawing.ColorWhite,
				StrokeWidth: 2,
			},
		})
	}
	if len(values) == 0 {
		return ErrNoChartData
	}

	pie := chart.PieChart{
		Title:  cfg.Title,
		Width:  cfg.Width,
		Height: cfg.Height,
		Values: values,
	}
	if err := pie.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render pie chart: %w", err)
	}
	return nil
}

// TrendPNG renders the daily trend as a PNG line chart with point markers.
// X values are positions on the shared date axis and the tick labels carry
// the dates themselves.
func TrendPNG(w io.Writer, rows []dashboard.TrendRow, cfg ChartConfig) error {
	if len(rows) == 0 {
		return ErrNoChartData
	}
	if cfg.Width == 0 {
		cfg = DefaultChartConfig()
	}
	if cfg.Title == "" {
		cfg.Title = "Daily Sentiment Trend"
	}

	dates, grouped := dashboard.SeriesByDate(rows)
	pos := make(map[string]float64, len(dates))
	ticks := make([]chart.Tick, len(dates))
	for i, d := range dates {
		pos[d] = float64(i)
		ticks[i] = chart.Tick{Value: float64(i), Label: d}
	}

	series := make([]chart.Series, 0, len(grouped))
	maxCount := 0
	for si, g := range grouped {
		col := drawing.ColorFromHex(SentimentColor(g.Sentiment, si))
		xs := make([]float64, len(g.Dates))
		ys := make([]float64, len(g.Counts))
		for i, d := range g.Dates {
			xs[i] = pos[d]
			ys[i] = float64(g.Counts[i])
			maxCount = max(maxCount, g.Counts[i])
		}
		series = append(series, chart.ContinuousSeries{
			Name:    g.Sentiment,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: col,
				StrokeWidth: 2,
				DotColor:    col,
				DotWidth:    4,
			},
		})
	}

	// A single date would otherwise collapse the x range to zero width.
	xMax := float64(len(dates) - 1)
	if xMax < 1 {
		xMax = 1
	}

	ch := chart.Chart{
		Title:      cfg.Title,
		Width:      cfg.Width,
		Height:     cfg.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:  "Date",
			Ticks: ticks,
			Range: &chart.ContinuousRange{Min: -0.25, Max: xMax + 0.25},
		},
		YAxis: chart.YAxis{
			Name:  "Count",
			Range: &chart.ContinuousRange{Min: 0, Max: float64(maxCount) + 1},
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render trend chart: %w", err)
	}
	return nil
}
