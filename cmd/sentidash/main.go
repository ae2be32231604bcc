// sentidash: financial headline sentiment dashboard.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seenimoa/sentidash/api"
	"github.com/seenimoa/sentidash/internal/config"
	"github.com/seenimoa/sentidash/internal/logging"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config and logger, set by the root command's pre-run hook.
var (
	cfg    *config.Config
	logger = zap.NewNop()
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "sentidash",
	Short: "sentidash — Financial Sentiment Analysis Dashboard",
	Long: `sentidash analyses a table of financial headlines labelled with
sentiments. Run "sentidash serve" for the web dashboard, or use the
summary, export, report and fetch commands from the terminal.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load .env: %w", err)
		}

		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			cfg.Logging.Level = level
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		logger, err = logging.New(cfg.Logging)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(fetchCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "sentidash %s\n", version)
		fmt.Fprintf(out, "  commit:  %s\n", commit)
		fmt.Fprintf(out, "  built:   %s\n", date)
	},
}

// --- Serve Command ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if port, _ := cmd.Flags().GetInt("port"); port > 0 {
			cfg.Server.Port = port
		}

		srv, err := api.NewServer(cfg, api.WithLogger(logger), api.WithVersion(version))
		if err != nil {
			return err
		}
		defer srv.Close()

		fmt.Fprintf(cmd.OutOrStdout(), "🌐 Dashboard on http://%s\n", cfg.Addr())
		return srv.ListenAndServe(cfg.Addr())
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port (overrides config)")
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		red := cfg.Redacted()
		cfgFile := red.File
		if cfgFile == "" {
			cfgFile = "(defaults + environment)"
		}

		fmt.Fprintln(out, "═══════════════════════════════════════")
		fmt.Fprintln(out, "  sentidash — System Status")
		fmt.Fprintln(out, "═══════════════════════════════════════")
		fmt.Fprintf(out, "  Version:       %s (%s)\n", version, commit)
		fmt.Fprintf(out, "  Config file:   %s\n", cfgFile)
		fmt.Fprintln(out)

		fmt.Fprintln(out, "  Configuration:")
		fmt.Fprintf(out, "    Server:        %s\n", red.Addr())
		fmt.Fprintf(out, "    Upload limit:  %d MB\n", red.Server.MaxUploadMB)
		fmt.Fprintf(out, "    Session TTL:   %s\n", red.SessionTTL())
		fmt.Fprintf(out, "    Preview rows:  %d\n", red.Dashboard.PreviewRows)
		fmt.Fprintf(out, "    Logging:       %s (%s)\n", red.Logging.Level, red.Logging.Format)
		fmt.Fprintln(out)

		fmt.Fprintln(out, "  Feeds:")
		for _, src := range red.Feed.Sources {
			fmt.Fprintf(out, "    %-27s %s\n", src.Name+":", src.URL)
		}
		fmt.Fprintln(out, "═══════════════════════════════════════")
		return nil
	},
}
