package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/seenimoa/sentidash/internal/dataset"
)

const scenarioCSV = "date,sentiment,headline\n" +
	"2024-01-01,Positive,A\n" +
	"2024-01-01,Negative,B\n" +
	"2024-01-02,Positive,C\n"

// run executes the root command with args and returns stdout and stderr.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("SENTIDASH_FEED_URLS", "")
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append(args, "--log-level", "error"))
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeScenario(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "news.csv")
	if err := os.WriteFile(path, []byte(scenarioCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestVersionCommand(t *testing.T) {
	out, _, err := run(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "sentidash dev") {
		t.Errorf("version output: got %q", out)
	}
}

func TestSummaryCommand(t *testing.T) {
	out, _, err := run(t, "summary", writeScenario(t), "--sentiment", "Positive")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	for _, want := range []string{"POSITIVE HEADLINES (2)", "66.7%"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestSummaryMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	os.WriteFile(path, []byte("date,headline\n2024-01-01,A\n"), 0o644)

	_, _, err := run(t, "summary", path, "--sentiment", "")
	if err == nil || !strings.Contains(err.Error(), "missing required column: sentiment") {
		t.Errorf("expected missing column error, got %v", err)
	}
}

func TestExportCommand(t *testing.T) {
	src := writeScenario(t)
	out := filepath.Join(t.TempDir(), "neg.csv")

	_, stderr, err := run(t, "export", src, "--sentiment", "Negative", "-o", out, "--format", "csv")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if want := "date,headline\n2024-01-01,B\n"; string(got) != want {
		t.Errorf("export: got %q, want %q", got, want)
	}
	if !strings.Contains(stderr, "1 Negative headlines") {
		t.Errorf("stderr: got %q", stderr)
	}
}

func TestExportXLSXToStdout(t *testing.T) {
	stdout, _, err := run(t, "export", writeScenario(t), "--sentiment", "Positive", "-o", "-", "--format", "xlsx")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	tbl, err := dataset.ReadXLSX(strings.NewReader(stdout))
	if err != nil {
		t.Fatalf("ReadXLSX: %v", err)
	}
	if tbl.Len() != 2 {
		t.Errorf("rows: got %d, want 2", tbl.Len())
	}
}

func TestExportUnknownSentiment(t *testing.T) {
	_, _, err := run(t, "export", writeScenario(t), "--sentiment", "Bullish", "-o", "-", "--format", "csv")
	if err == nil {
		t.Error("expected error for unknown sentiment")
	}
}

func TestReportCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "report.html")
	_, _, err := run(t, "report", writeScenario(t), "--sentiment", "Positive", "-o", out, "--format", "html")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	html, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(html), "📊 Dataset Summary") || strings.Contains(string(html), "<form") {
		t.Error("report should be a static dashboard page")
	}
}

func TestReportBadFormat(t *testing.T) {
	_, _, err := run(t, "report", writeScenario(t), "--sentiment", "", "-o", "-", "--format", "docx")
	if err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestStatusCommand(t *testing.T) {
	out, _, err := run(t, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	for _, want := range []string{"System Status", "Moneycontrol:", "Session TTL:"} {
		if !strings.Contains(out, want) {
			t.Errorf("status missing %q:\n%s", want, out)
		}
	}
}

func TestInvalidConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("server:\n  port: 99999\n"), 0o644)

	_, _, err := run(t, "status", "--config", path)
	rootCmd.PersistentFlags().Set("config", "")
	if err == nil || !strings.Contains(err.Error(), "server.port") {
		t.Errorf("expected invalid port error, got %v", err)
	}
}
