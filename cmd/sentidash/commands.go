package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seenimoa/sentidash/api"
	"github.com/seenimoa/sentidash/internal/dashboard"
	"github.com/seenimoa/sentidash/internal/dataset"
	"github.com/seenimoa/sentidash/internal/report"
)

// loadView reads a CSV or XLSX file and renders it with the given selection.
func loadView(path, selection string) (*dashboard.View, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tbl, err := dataset.Load(f, dataset.FormatFromName(path), dataset.HeadlineSchema)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.Debug("dataset loaded", zap.String("file", path), zap.Int("rows", tbl.Len()))

	return dashboard.Render(dashboard.State{
		Table:     tbl,
		FileName:  path,
		Selection: selection,
	}, dashboard.Options{PreviewRows: cfg.Dashboard.PreviewRows})
}

func reportConfig() report.ReportConfig {
	return report.ReportConfig{
		Title:    cfg.Dashboard.Title,
		Footer:   report.DefaultFooter,
		ChartCfg: report.DefaultChartConfig().Sized(cfg.Dashboard.ChartWidth, cfg.Dashboard.ChartHeight),
	}
}

// writeOutput opens path for writing; "-" is stdout.
func writeOutput(cmd *cobra.Command, path string, write func(io.Writer) error) error {
	if path == "-" {
		return write(cmd.OutOrStdout())
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// --- Summary Command ---

var summaryCmd = &cobra.Command{
	Use:   "summary [file]",
	Short: "Print the dashboard summary of a CSV or XLSX file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sentiment, _ := cmd.Flags().GetString("sentiment")
		v, err := loadView(args[0], sentiment)
		if err != nil {
			return err
		}
		text, err := report.GenerateText(v)
		if err != nil {
			return err
		}
		_, err = io.WriteString(cmd.OutOrStdout(), text)
		return err
	},
}

func init() {
	summaryCmd.Flags().StringP("sentiment", "s", "", "sentiment to list (default: first in file)")
}

// --- Export Command ---

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the headlines of one sentiment to CSV or XLSX",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sentiment, _ := cmd.Flags().GetString("sentiment")
		out, _ := cmd.Flags().GetString("output")
		format, _ := cmd.Flags().GetString("format")

		v, err := loadView(args[0], sentiment)
		if err != nil {
			return err
		}

		export := dashboard.Export
		switch strings.ToLower(format) {
		case "", "csv":
			if out == "" {
				out = dashboard.CSVName(v)
			}
		case "xlsx":
			export = dashboard.ExportXLSX
			if out == "" {
				out = dashboard.WorkbookName(v)
			}
		default:
			return fmt.Errorf("unsupported export format %q (use csv or xlsx)", format)
		}

		if err := writeOutput(cmd, out, func(w io.Writer) error { return export(w, v) }); err != nil {
			return err
		}
		if out != "-" {
			fmt.Fprintf(cmd.ErrOrStderr(), "📥 %d %s headlines written to %s\n", v.Filtered.Len(), v.Selected, out)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("sentiment", "s", "", "sentiment to export (default: first in file)")
	exportCmd.Flags().StringP("output", "o", "", `output path, "-" for stdout (default: <sentiment>_headlines.csv)`)
	exportCmd.Flags().String("format", "csv", "csv or xlsx")
}

// --- Report Command ---

var reportCmd = &cobra.Command{
	Use:   "report [file]",
	Short: "Render a standalone dashboard report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sentiment, _ := cmd.Flags().GetString("sentiment")
		out, _ := cmd.Flags().GetString("output")
		formatFlag, _ := cmd.Flags().GetString("format")

		format, err := report.ParseFormat(formatFlag)
		if err != nil {
			return err
		}
		v, err := loadView(args[0], sentiment)
		if err != nil {
			return err
		}
		body, err := report.Generate(v, format, reportConfig(), time.Now())
		if err != nil {
			return err
		}

		if format == report.FormatPDF {
			if out == "-" {
				return fmt.Errorf("pdf output needs a file path")
			}
			path, err := report.GeneratePDF(cmd.Context(), body, report.PDFConfig{OutputPath: out})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "📄 Report written to %s\n", path)
			return nil
		}

		if err := writeOutput(cmd, out, func(w io.Writer) error {
			_, err := io.WriteString(w, body)
			return err
		}); err != nil {
			return err
		}
		if out != "-" {
			fmt.Fprintf(cmd.ErrOrStderr(), "📄 Report written to %s\n", out)
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().StringP("sentiment", "s", "", "sentiment to list (default: first in file)")
	reportCmd.Flags().StringP("output", "o", "", `output path, "-" for stdout`)
	reportCmd.Flags().String("format", "html", "html, text or pdf")
	_ = reportCmd.MarkFlagRequired("output")
}

// --- Fetch Command ---

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch and label headlines from the configured RSS feeds",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("output")
		limit, _ := cmd.Flags().GetInt("limit")
		if limit <= 0 {
			limit = cfg.Feed.Limit
		}

		tbl, err := api.NewFeedFetcher(cfg.Feed, logger).FetchTable(cmd.Context(), limit)
		if err != nil {
			return err
		}

		write := dataset.WriteCSV
		if dataset.FormatFromName(out) == dataset.FormatXLSX {
			write = dataset.WriteXLSX
		}
		if err := writeOutput(cmd, out, func(w io.Writer) error { return write(w, tbl) }); err != nil {
			return err
		}
		if out != "-" {
			fmt.Fprintf(cmd.ErrOrStderr(), "📰 %d headlines written to %s\n", tbl.Len(), out)
		}
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringP("output", "o", "-", `output path (.csv or .xlsx), "-" for stdout`)
	fetchCmd.Flags().Int("limit", 0, "maximum headlines (default: feed.limit)")
}
