package report

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/seenimoa/sentidash/internal/dashboard"
)

// ════════════════════════════════════════════════════════════════════
// Page Renderer
// ════════════════════════════════════════════════════════════════════

// ReportFormat specifies the output format of a static report.
type ReportFormat string

const (
	FormatHTML ReportFormat = "html"
	FormatText ReportFormat = "text"
	FormatPDF  ReportFormat = "pdf"
)

// ParseFormat maps a CLI flag value to a ReportFormat.
func ParseFormat(s string) (ReportFormat, error) {
	switch ReportFormat(strings.ToLower(s)) {
	case "", FormatHTML:
		return FormatHTML, nil
	case FormatText, "txt":
		return FormatText, nil
	case FormatPDF:
		return FormatPDF, nil
	}
	return "", fmt.Errorf("unknown report format %q", s)
}

const (
	DefaultTitle  = "💹 Financial Sentiment Analysis Dashboard"
	DefaultFooter = "Built with ❤️ using Go | © 2025 Financial Sentiment Dashboard"
)

// ReportConfig controls page rendering.
type ReportConfig struct {
	Title    string      // page title (default: DefaultTitle)
	Footer   string      // footer caption (default: DefaultFooter)
	ChartCfg ChartConfig // chart rendering config
}

// DefaultReportConfig returns sensible defaults.
func DefaultReportConfig() ReportConfig {
	return ReportConfig{
		Title:    DefaultTitle,
		Footer:   DefaultFooter,
		ChartCfg: DefaultChartConfig(),
	}
}

// PageData is the template model.
type PageData struct {
	Title       string
	Footer      string
	GeneratedAt string
	Interactive bool
	Error       string
	Notice      string
	View        *dashboard.View
	PieSVG      template.HTML
	TrendSVG    template.HTML
}

// PageOptions carries the per-request parts of a page.
type PageOptions struct {
	Interactive bool
	Error       string
	Notice      string
	GeneratedAt time.Time
}

// Renderer renders dashboard views into HTML pages. It is safe for
// concurrent use.
type Renderer struct {
	cfg  ReportConfig
	tmpl *template.Template
}

// NewRenderer parses the page template once.
func NewRenderer(cfg ReportConfig) (*Renderer, error) {
	def := DefaultReportConfig()
	if cfg.Title == "" {
		cfg.Title = def.Title
	}
	if cfg.Footer == "" {
		cfg.Footer = def.Footer
	}
	if cfg.ChartCfg.Width == 0 {
		cfg.ChartCfg = def.ChartCfg
	}

	tmpl, err := template.New("page").Funcs(template.FuncMap{
		"inc": func(i int) int { return i + 1 },
	}).Parse(PageTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing template: %w", err)
	}
	return &Renderer{cfg: cfg, tmpl: tmpl}, nil
}

// Page writes the HTML page for v.
func (r *Renderer) Page(w io.Writer, v *dashboard.View, opts PageOptions) error {
	if v == nil {
		v = &dashboard.View{Empty: true}
	}
	data := r.buildPageData(v, opts)

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("executing template: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}

func (r *Renderer) buildPageData(v *dashboard.View, opts PageOptions) PageData {
	data := PageData{
		Title:       r.cfg.Title,
		Footer:      r.cfg.Footer,
		Interactive: opts.Interactive,
		Error:       opts.Error,
		Notice:      opts.Notice,
		View:        v,
	}
	if !opts.GeneratedAt.IsZero() {
		data.GeneratedAt = opts.GeneratedAt.Format("02 Jan 2006, 15:04 MST")
	}
	if v.Empty {
		return data
	}

	data.PieSVG = template.HTML(PieChart(v.Distribution, r.cfg.ChartCfg))
	if v.HasTrend {
		data.TrendSVG = template.HTML(TrendChart(v.Trend, r.cfg.ChartCfg))
	}
	return data
}

// ════════════════════════════════════════════════════════════════════
// Static Reports
// ════════════════════════════════════════════════════════════════════

// GenerateHTML renders a standalone report: the dashboard without forms or
// scripts, charts inlined.
func GenerateHTML(v *dashboard.View, cfg ReportConfig, at time.Time) (string, error) {
	if v == nil || v.Empty {
		return "", dashboard.ErrNoData
	}
	r, err := NewRenderer(cfg)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := r.Page(&buf, v, PageOptions{GeneratedAt: at}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// GenerateText renders a plain-text summary (terminal / CLI friendly).
func GenerateText(v *dashboard.View) (string, error) {
	if v == nil || v.Empty {
		return "", dashboard.ErrNoData
	}
	return renderTextReport(v), nil
}

// Generate dispatches on format. PDF output starts from the HTML report;
// converting it is GeneratePDF's job.
func Generate(v *dashboard.View, format ReportFormat, cfg ReportConfig, at time.Time) (string, error) {
	switch format {
	case FormatHTML, FormatPDF:
		return GenerateHTML(v, cfg, at)
	case FormatText:
		return GenerateText(v)
	}
	return "", errors.New("unsupported report format")
}

// ════════════════════════════════════════════════════════════════════
// Plain-text renderer
// ════════════════════════════════════════════════════════════════════

func renderTextReport(v *dashboard.View) string {
	var sb strings.Builder
	line := strings.Repeat("═", 60)
	thinLine := strings.Repeat("─", 60)

	sb.WriteString(line + "\n")
	sb.WriteString("  FINANCIAL SENTIMENT SUMMARY\n")
	if v.FileName != "" {
		sb.WriteString(fmt.Sprintf("  Source: %s\n", v.FileName))
	}
	sb.WriteString(line + "\n")

	for _, m := range v.Metrics {
		sb.WriteString(fmt.Sprintf("  %-20s %s\n", m.Label, m.Display()))
	}
	sb.WriteString(thinLine + "\n")

	total := 0
	for _, c := range v.Distribution {
		total += c.Count
	}
	sb.WriteString("  ■ DISTRIBUTION\n")
	for _, c := range v.Distribution {
		pct := 0.0
		if total > 0 {
			pct = float64(c.Count) / float64(total) * 100
		}
		sb.WriteString(fmt.Sprintf("    %-16s %6d  %5.1f%%\n", c.Sentiment, c.Count, pct))
	}

	if v.HasTrend {
		sb.WriteString(thinLine + "\n")
		sb.WriteString("  ■ TREND\n")
		for _, t := range v.Trend {
			sb.WriteString(fmt.Sprintf("    %-12s %-16s %6d\n", t.Date, t.Sentiment, t.Count))
		}
	}

	if v.Selected != "" {
		sb.WriteString(thinLine + "\n")
		sb.WriteString(fmt.Sprintf("  ■ %s HEADLINES (%d)\n", strings.ToUpper(v.Selected), v.Filtered.Len()))
		for i := 0; i < v.Filtered.Len(); i++ {
			sb.WriteString(fmt.Sprintf("    %3d. %s\n", i+1, strings.Join(v.Filtered.Row(i), "  ")))
		}
	}

	sb.WriteString(line + "\n")
	return sb.String()
}
