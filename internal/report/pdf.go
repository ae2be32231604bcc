package report

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ════════════════════════════════════════════════════════════════════
// PDF Export: HTML report → PDF via wkhtmltopdf or headless chromium
// ════════════════════════════════════════════════════════════════════

// PDFEngine specifies which engine to use for HTML→PDF conversion.
type PDFEngine string

const (
	EngineAuto     PDFEngine = ""
	EngineWKHTML   PDFEngine = "wkhtmltopdf"
	EngineChromium PDFEngine = "chromium"
	EngineNone     PDFEngine = "none" // write the HTML next to the requested path
)

var chromiumBinaries = []string{"chromium-browser", "chromium", "google-chrome", "google-chrome-stable"}

// PDFConfig holds configuration for PDF export.
type PDFConfig struct {
	Engine      PDFEngine // default: auto-detect
	PageSize    string    // default: "A4"
	Orientation string    // "portrait" (default) or "landscape"
	OutputPath  string    // required
}

// DefaultPDFConfig returns sensible defaults for PDF export.
func DefaultPDFConfig() PDFConfig {
	return PDFConfig{
		Engine:      EngineAuto,
		PageSize:    "A4",
		Orientation: "portrait",
	}
}

// DetectPDFEngine checks which PDF engine is available on the system.
func DetectPDFEngine() PDFEngine {
	if _, err := exec.LookPath("wkhtmltopdf"); err == nil {
		return EngineWKHTML
	}
	if findChromium() != "" {
		return EngineChromium
	}
	return EngineNone
}

// GeneratePDF converts an HTML report to a PDF file and returns the path
// actually written. Without a conversion engine the HTML is written with
// an .html extension instead.
func GeneratePDF(ctx context.Context, html string, cfg PDFConfig) (string, error) {
	if cfg.OutputPath == "" {
		return "", fmt.Errorf("output path is required")
	}
	if cfg.PageSize == "" {
		cfg.PageSize = "A4"
	}

	engine := cfg.Engine
	if engine == EngineAuto {
		engine = DetectPDFEngine()
	}

	switch engine {
	case EngineWKHTML:
		return cfg.OutputPath, withTempHTML(html, func(src string) error {
			return runWKHTML(ctx, src, cfg)
		})
	case EngineChromium:
		return cfg.OutputPath, withTempHTML(html, func(src string) error {
			return runChromium(ctx, src, cfg)
		})
	case EngineNone:
		return writeHTMLFallback(html, cfg.OutputPath)
	default:
		return "", fmt.Errorf("unsupported PDF engine: %s", engine)
	}
}

func runWKHTML(ctx context.Context, src string, cfg PDFConfig) error {
	args := []string{
		"--page-size", cfg.PageSize,
		"--encoding", "UTF-8",
		"--enable-local-file-access",
		"--quiet",
	}
	if cfg.Orientation != "" {
		args = append(args, "--orientation", cfg.Orientation)
	}
	args = append(args, src, cfg.OutputPath)

	if output, err := exec.CommandContext(ctx, "wkhtmltopdf", args...).CombinedOutput(); err != nil {
		return fmt.Errorf("wkhtmltopdf failed: %w\nOutput: %s", err, string(output))
	}
	return nil
}

func runChromium(ctx context.Context, src string, cfg PDFConfig) error {
	bin := findChromium()
	if bin == "" {
		return fmt.Errorf("chromium not found in PATH")
	}
	absOutput, err := filepath.Abs(cfg.OutputPath)
	if err != nil {
		return fmt.Errorf("resolving output path: %w", err)
	}

	args := []string{
		"--headless",
		"--disable-gpu",
		"--no-sandbox",
		"--print-to-pdf=" + absOutput,
		"--print-to-pdf-no-header",
	}
	if strings.EqualFold(cfg.Orientation, "landscape") {
		args = append(args, "--landscape")
	}
	args = append(args, "file://"+src)

	if output, err := exec.CommandContext(ctx, bin, args...).CombinedOutput(); err != nil {
		return fmt.Errorf("chromium PDF export failed: %w\nOutput: %s", err, string(output))
	}
	return nil
}

func findChromium() string {
	for _, name := range chromiumBinaries {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}

func withTempHTML(html string, fn func(path string) error) error {
	f, err := os.CreateTemp("", "sentidash-report-*.html")
	if err != nil {
		return fmt.Errorf("creating temp HTML: %w", err)
	}
	defer os.Remove(f.Name())

	if _, err := f.WriteString(html); err != nil {
		f.Close()
		return fmt.Errorf("writing temp HTML: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing temp HTML: %w", err)
	}
	return fn(f.Name())
}

func writeHTMLFallback(html string, outputPath string) (string, error) {
	if strings.HasSuffix(strings.ToLower(outputPath), ".pdf") {
		outputPath = outputPath[:len(outputPath)-4] + ".html"
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(outputPath, []byte(html), 0o644); err != nil {
		return "", fmt.Errorf("writing HTML fallback: %w", err)
	}
	return outputPath, nil
}
