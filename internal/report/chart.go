// Package report draws the dashboard: SVG and PNG charts and the HTML page
// that is served interactively or written out as a static report.
package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/seenimoa/sentidash/internal/dashboard"
	"github.com/seenimoa/sentidash/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// SVG Chart Generator
// ════════════════════════════════════════════════════════════════════

// ChartConfig holds rendering parameters for charts.
type ChartConfig struct {
	Width        int    // SVG width in pixels (default: 800)
	Height       int    // SVG height in pixels (default: 400)
	MarginTop    int    // top margin (default: 40)
	MarginRight  int    // right margin (default: 120)
	MarginBottom int    // bottom margin (default: 60)
	MarginLeft   int    // left margin (default: 60)
	BgColor      string // background color (default: "#ffffff")
	GridColor    string // grid line color (default: "#e8e8e8")
	TextColor    string // axis label color (default: "#333333")
	FontSize     int    // axis label font size (default: 11)
	Title        string // chart title
}

// DefaultChartConfig returns sensible defaults for chart rendering.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:        800,
		Height:       400,
		MarginTop:    40,
		MarginRight:  120,
		MarginBottom: 60,
		MarginLeft:   60,
		BgColor:      "#ffffff",
		GridColor:    "#e8e8e8",
		TextColor:    "#333333",
		FontSize:     11,
	}
}

// Sized returns a copy with the given dimensions; zero keeps the current value.
func (c ChartConfig) Sized(width, height int) ChartConfig {
	if width > 0 {
		c.Width = width
	}
	if height > 0 {
		c.Height = height
	}
	return c
}

func (c ChartConfig) plotArea() (x, y, w, h int) {
	return c.MarginLeft, c.MarginTop,
		c.Width - c.MarginLeft - c.MarginRight,
		c.Height - c.MarginTop - c.MarginBottom
}

// ════════════════════════════════════════════════════════════════════
// Colors
// ════════════════════════════════════════════════════════════════════

var palette = []string{"#2196f3", "#ff9800", "#9c27b0", "#00bcd4", "#795548", "#e91e63"}

// sentimentColors keys on the exact label; "positive" is a different
// category from "Positive" and takes a palette color.
var sentimentColors = map[models.Sentiment]string{
	models.SentimentPositive: "#4caf50",
	models.SentimentNegative: "#ef5350",
	models.SentimentNeutral:  "#9e9e9e",
}

// SentimentColor returns the color used for a label everywhere on the page.
// The three standard labels have fixed colors; anything else takes the
// palette color of its position among the labels.
func SentimentColor(label string, index int) string {
	if c, ok := sentimentColors[models.Sentiment(label)]; ok {
		return c
	}
	return palette[index%len(palette)]
}

// ════════════════════════════════════════════════════════════════════
// Pie Chart
// ════════════════════════════════════════════════════════════════════

// PieChart draws one slice per sentiment with its share in the legend.
func PieChart(counts []dashboard.SentimentCount, cfg ChartConfig) string {
	if cfg.Width == 0 {
		cfg = DefaultChartConfig()
	}
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	if total == 0 {
		return emptySVG(cfg, "No sentiment data")
	}
	if cfg.Title == "" {
		cfg.Title = "Overall Sentiment Distribution"
	}

	px, py, pw, ph := cfg.plotArea()
	radius := math.Min(float64(pw), float64(ph)) / 2
	cx := float64(px) + radius
	cy := float64(py) + float64(ph)/2

	var sb strings.Builder
	sb.WriteString(svgHeader(cfg))
	sb.WriteString(fmt.Sprintf(`<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`,
		cfg.Width, cfg.Height, cfg.BgColor))
	sb.WriteString(fmt.Sprintf(`<text x="%d" y="20" font-size="14" font-weight="bold" fill="%s" text-anchor="middle">%s</text>`,
		cfg.Width/2, cfg.TextColor, escapeXML(cfg.Title)))

	// Slices start at twelve o'clock and run clockwise.
	angle := -math.Pi / 2
	for i, c := range counts {
		if c.Count == 0 {
			continue
		}
		color := SentimentColor(c.Sentiment, i)
		share := float64(c.Count) / float64(total)
		if c.Count == total {
			sb.WriteString(fmt.Sprintf(`<circle class="slice" cx="%.1f" cy="%.1f" r="%.1f" fill="%s" stroke="#fff"/>`,
				cx, cy, radius, color))
		} else {
			end := angle + share*2*math.Pi
			largeArc := 0
			if share > 0.5 {
				largeArc = 1
			}
			sb.WriteString(fmt.Sprintf(`<path class="slice" d="M%.1f,%.1f L%.1f,%.1f A%.1f,%.1f 0 %d,1 %.1f,%.1f Z" fill="%s" stroke="#fff"/>`,
				cx, cy,
				cx+radius*math.Cos(angle), cy+radius*math.Sin(angle),
				radius, radius, largeArc,
				cx+radius*math.Cos(end), cy+radius*math.Sin(end),
				color))
			angle = end
		}

		// Legend
		lx := int(cx+radius) + 30
		ly := py + 10 + i*20
		sb.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="12" height="12" fill="%s"/>`, lx, ly-10, color))
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" font-size="%d" fill="%s">%s: %d (%.1f%%)</text>`,
			lx+18, ly, cfg.FontSize+1, cfg.TextColor, escapeXML(c.Sentiment), c.Count, share*100))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// ════════════════════════════════════════════════════════════════════
// Line Chart
// ════════════════════════════════════════════════════════════════════

// LineChartSeries represents a named data series for line charts.
type LineChartSeries struct {
	Name   string
	Values []float64 // NaN marks a missing point
	Color  string    // hex color (optional, auto-assigned if empty)
}

// LineChart generates an SVG line chart with one or more series. Every
// point carries a marker so that single-date series stay visible. Labels
// are the X-axis labels, one per point.
func LineChart(series []LineChartSeries, labels []string, cfg ChartConfig) string {
	if len(series) == 0 {
		return emptySVG(cfg, "No data")
	}

	if cfg.Width == 0 {
		cfg = DefaultChartConfig()
	}

	px, py, pw, ph := cfg.plotArea()

	minVal, maxVal := math.MaxFloat64, -math.MaxFloat64
	maxLen := 0
	for _, s := range series {
		if len(s.Values) > maxLen {
			maxLen = len(s.Values)
		}
		for _, v := range s.Values {
			if !math.IsNaN(v) && v < minVal {
				minVal = v
			}
			if !math.IsNaN(v) && v > maxVal {
				maxVal = v
			}
		}
	}
	if maxLen == 0 || minVal > maxVal {
		return emptySVG(cfg, "No data points")
	}

	// Counts start at zero.
	minVal = math.Min(minVal, 0)
	vRange := maxVal - minVal
	if vRange < 0.001 {
		vRange = 1
	}
	maxVal += vRange * 0.05
	vRange = maxVal - minVal

	xAt := func(i int) float64 {
		if maxLen == 1 {
			return float64(px) + float64(pw)/2
		}
		return float64(px) + float64(i)*float64(pw)/float64(maxLen-1)
	}
	yAt := func(v float64) float64 {
		return float64(py+ph) - (v-minVal)/vRange*float64(ph)
	}

	var sb strings.Builder
	sb.WriteString(svgHeader(cfg))
	sb.WriteString(fmt.Sprintf(`<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`,
		cfg.Width, cfg.Height, cfg.BgColor))
	if cfg.Title != "" {
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="20" font-size="14" font-weight="bold" fill="%s" text-anchor="middle">%s</text>`,
			cfg.Width/2, cfg.TextColor, escapeXML(cfg.Title)))
	}

	// Y-axis grid
	gridLines := 5
	for i := 0; i <= gridLines; i++ {
		val := minVal + vRange*float64(i)/float64(gridLines)
		y := yAt(val)
		sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="%s" stroke-dasharray="3,3"/>`,
			px, y, px+pw, y, cfg.GridColor))
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%.1f" font-size="%d" fill="%s" text-anchor="end">%.1f</text>`,
			px-5, y+4, cfg.FontSize, cfg.TextColor, val))
	}

	for si, s := range series {
		color := s.Color
		if color == "" {
			color = palette[si%len(palette)]
		}

		var pathParts []string
		var markers strings.Builder
		for i, v := range s.Values {
			if math.IsNaN(v) {
				continue
			}
			cx, cy := xAt(i), yAt(v)
			cmd := "L"
			if len(pathParts) == 0 {
				cmd = "M"
			}
			pathParts = append(pathParts, fmt.Sprintf("%s%.1f,%.1f", cmd, cx, cy))
			markers.WriteString(fmt.Sprintf(`<circle class="marker" cx="%.1f" cy="%.1f" r="4" fill="%s"/>`, cx, cy, color))
		}
		if len(pathParts) > 1 {
			sb.WriteString(fmt.Sprintf(`<path d="%s" fill="none" stroke="%s" stroke-width="2"/>`,
				strings.Join(pathParts, " "), color))
		}
		sb.WriteString(markers.String())

		// Legend
		lx := px + pw + 15
		ly := py + 10 + si*16
		sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="2"/>`,
			lx, ly, lx+20, ly, color))
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" font-size="10" fill="%s">%s</text>`,
			lx+25, ly+4, cfg.TextColor, escapeXML(s.Name)))
	}

	// X-axis labels
	if len(labels) > 0 {
		interval := maxLen / 8
		if interval < 1 {
			interval = 1
		}
		for i := 0; i < len(labels) && i < maxLen; i += interval {
			cx := xAt(i)
			sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%d" font-size="%d" fill="%s" text-anchor="end" transform="rotate(-30,%.1f,%d)">%s</text>`,
				cx, py+ph+16, cfg.FontSize-1, cfg.TextColor, cx, py+ph+16, escapeXML(labels[i])))
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// TrendChart draws the per-sentiment daily counts as a line chart.
func TrendChart(rows []dashboard.TrendRow, cfg ChartConfig) string {
	if len(rows) == 0 {
		return emptySVG(cfg, "No dated headlines")
	}
	if cfg.Width == 0 {
		cfg = DefaultChartConfig()
	}
	if cfg.Title == "" {
		cfg.Title = "Daily Sentiment Trend"
	}
	dates, series := trendSeries(rows)
	return LineChart(series, dates, cfg)
}

// trendSeries aligns every sentiment to the shared date axis. Dates on
// which a sentiment has no headlines are NaN so no point is drawn there.
func trendSeries(rows []dashboard.TrendRow) ([]string, []LineChartSeries) {
	dates, grouped := dashboard.SeriesByDate(rows)
	pos := make(map[string]int, len(dates))
	for i, d := range dates {
		pos[d] = i
	}

	out := make([]LineChartSeries, len(grouped))
	for si, g := range grouped {
		values := make([]float64, len(dates))
		for i := range values {
			values[i] = math.NaN()
		}
		for i, d := range g.Dates {
			values[pos[d]] = float64(g.Counts[i])
		}
		out[si] = LineChartSeries{Name: g.Sentiment, Values: values, Color: SentimentColor(g.Sentiment, si)}
	}
	return dates, out
}

// ════════════════════════════════════════════════════════════════════
// SVG Helpers
// ════════════════════════════════════════════════════════════════════

func svgHeader(cfg ChartConfig) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif">`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height)
}

func emptySVG(cfg ChartConfig, msg string) string {
	if cfg.Width == 0 {
		cfg.Width = 400
	}
	if cfg.Height == 0 {
		cfg.Height = 200
	}
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d"><rect width="%d" height="%d" fill="#f5f5f5"/><text x="%d" y="%d" text-anchor="middle" fill="#999" font-size="14">%s</text></svg>`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height, cfg.Width/2, cfg.Height/2, escapeXML(msg))
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	return s
}
