// Package config handles configuration loading for sentidash.
// It supports YAML config files with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/seenimoa/sentidash/internal/feed"
	"github.com/seenimoa/sentidash/internal/report"
	"github.com/seenimoa/sentidash/internal/sentiment"
	"github.com/seenimoa/sentidash/pkg/utils"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SENTIDASH"

// Config represents the complete application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    yaml:"server"    json:"server"`
	Dashboard DashboardConfig `mapstructure:"dashboard" yaml:"dashboard" json:"dashboard"`
	Session   SessionConfig   `mapstructure:"session"   yaml:"session"   json:"session"`
	Feed      FeedConfig      `mapstructure:"feed"      yaml:"feed"      json:"feed"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"   json:"logging"`

	// File is the config file that was read, empty when running on
	// defaults and environment only.
	File string `mapstructure:"-" yaml:"-" json:"-"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string   `mapstructure:"host"              yaml:"host"              json:"host"`
	Port            int      `mapstructure:"port"              yaml:"port"              json:"port"`
	CORSOrigins     []string `mapstructure:"cors_origins"      yaml:"cors_origins"      json:"cors_origins"`
	MaxUploadMB     int      `mapstructure:"max_upload_mb"     yaml:"max_upload_mb"     json:"max_upload_mb"`
	ReadTimeoutSec  int      `mapstructure:"read_timeout_sec"  yaml:"read_timeout_sec"  json:"read_timeout_sec"`
	WriteTimeoutSec int      `mapstructure:"write_timeout_sec" yaml:"write_timeout_sec" json:"write_timeout_sec"`
}

// DashboardConfig holds rendering settings.
type DashboardConfig struct {
	Title       string `mapstructure:"title"        yaml:"title"        json:"title"`
	PreviewRows int    `mapstructure:"preview_rows" yaml:"preview_rows" json:"preview_rows"`
	ChartWidth  int    `mapstructure:"chart_width"  yaml:"chart_width"  json:"chart_width"`
	ChartHeight int    `mapstructure:"chart_height" yaml:"chart_height" json:"chart_height"`
}

// SessionConfig holds per-browser session settings.
type SessionConfig struct {
	TTLMinutes       int    `mapstructure:"ttl_minutes"        yaml:"ttl_minutes"        json:"ttl_minutes"`
	CookieName       string `mapstructure:"cookie_name"        yaml:"cookie_name"        json:"cookie_name"`
	SweepIntervalSec int    `mapstructure:"sweep_interval_sec" yaml:"sweep_interval_sec" json:"sweep_interval_sec"`
}

// FeedSource is one configured RSS feed.
type FeedSource struct {
	Name string `mapstructure:"name" yaml:"name" json:"name"`
	URL  string `mapstructure:"url"  yaml:"url"  json:"url"`
}

// FeedConfig holds RSS ingestion settings.
type FeedConfig struct {
	Sources     []FeedSource `mapstructure:"sources"       yaml:"sources"       json:"sources"`
	TimeoutSec  int          `mapstructure:"timeout_sec"   yaml:"timeout_sec"   json:"timeout_sec"`
	RatePerSec  int          `mapstructure:"rate_per_sec"  yaml:"rate_per_sec"  json:"rate_per_sec"`
	Limit       int          `mapstructure:"limit"         yaml:"limit"         json:"limit"`
	CacheTTLSec int          `mapstructure:"cache_ttl_sec" yaml:"cache_ttl_sec" json:"cache_ttl_sec"`
	Timezone    string       `mapstructure:"timezone"      yaml:"timezone"      json:"timezone"` // zone headline dates are reported in

	// SentimentThreshold is the absolute keyword score a fetched headline
	// needs to be labelled Positive or Negative instead of Neutral.
	SentimentThreshold float64 `mapstructure:"sentiment_threshold" yaml:"sentiment_threshold" json:"sentiment_threshold"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"  json:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format" json:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.sentidash/config.yaml (home directory)
//  3. /etc/sentidash/config.yaml (system)
//
// Environment variables override config file values.
// Format: SENTIDASH_<SECTION>_<KEY>, e.g., SENTIDASH_SERVER_PORT
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".sentidash"))
	v.AddConfigPath("/etc/sentidash")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := overrideFromEnv(&cfg); err != nil {
		return nil, err
	}
	cfg.File = v.ConfigFileUsed()
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8501)
	v.SetDefault("server.cors_origins", []string{"http://localhost:8501"})
	v.SetDefault("server.max_upload_mb", 32)
	v.SetDefault("server.read_timeout_sec", 30)
	v.SetDefault("server.write_timeout_sec", 60)

	// Dashboard defaults
	v.SetDefault("dashboard.title", report.DefaultTitle)
	v.SetDefault("dashboard.preview_rows", 5)
	v.SetDefault("dashboard.chart_width", 800)
	v.SetDefault("dashboard.chart_height", 400)

	// Session defaults
	v.SetDefault("session.ttl_minutes", 60)
	v.SetDefault("session.cookie_name", "sentidash_session")
	v.SetDefault("session.sweep_interval_sec", 60)

	// Feed defaults
	sources := make([]map[string]any, len(feed.DefaultSources))
	for i, src := range feed.DefaultSources {
		sources[i] = map[string]any{"name": src.Name, "url": src.URL}
	}
	v.SetDefault("feed.sources", sources)
	v.SetDefault("feed.timeout_sec", 20)
	v.SetDefault("feed.rate_per_sec", 2)
	v.SetDefault("feed.limit", 200)
	v.SetDefault("feed.cache_ttl_sec", 600)
	v.SetDefault("feed.timezone", "Asia/Kolkata")
	v.SetDefault("feed.sentiment_threshold", sentiment.DefaultThreshold)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv reads values that viper cannot map from a flat variable.
// SENTIDASH_FEED_URLS replaces the feed list with comma-separated
// "name=url" pairs; a bare URL is named after its host.
func overrideFromEnv(cfg *Config) error {
	raw := os.Getenv(EnvPrefix + "_FEED_URLS")
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var sources []FeedSource
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, rawURL, ok := strings.Cut(part, "=")
		if !ok || strings.Contains(name, "://") {
			name, rawURL = "", part
		}
		u, err := url.Parse(rawURL)
		if err != nil || u.Host == "" {
			return fmt.Errorf("%s_FEED_URLS: invalid url %q", EnvPrefix, rawURL)
		}
		if name == "" {
			name = u.Host
		}
		sources = append(sources, FeedSource{Name: strings.TrimSpace(name), URL: rawURL})
	}
	cfg.Feed.Sources = sources
	return nil
}

// Validate rejects values the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port: %d out of range", c.Server.Port))
	}
	if c.Server.MaxUploadMB <= 0 {
		errs = append(errs, fmt.Errorf("server.max_upload_mb: must be positive"))
	}
	if c.Dashboard.PreviewRows <= 0 {
		errs = append(errs, fmt.Errorf("dashboard.preview_rows: must be positive"))
	}
	if c.Dashboard.ChartWidth < 200 || c.Dashboard.ChartHeight < 150 {
		errs = append(errs, fmt.Errorf("dashboard chart size %dx%d: too small", c.Dashboard.ChartWidth, c.Dashboard.ChartHeight))
	}
	if c.Session.TTLMinutes <= 0 {
		errs = append(errs, fmt.Errorf("session.ttl_minutes: must be positive"))
	}
	if c.Session.CookieName == "" {
		errs = append(errs, fmt.Errorf("session.cookie_name: required"))
	}
	for i, s := range c.Feed.Sources {
		if u, err := url.Parse(s.URL); err != nil || u.Host == "" {
			errs = append(errs, fmt.Errorf("feed.sources[%d]: invalid url %q", i, s.URL))
		}
	}
	if _, err := utils.LoadLocation(c.Feed.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("feed.timezone: %w", err))
	}
	if c.Feed.SentimentThreshold < 0 || c.Feed.SentimentThreshold >= 1 {
		errs = append(errs, fmt.Errorf("feed.sentiment_threshold: %v not in [0, 1)", c.Feed.SentimentThreshold))
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format: %q is not text or json", c.Logging.Format))
	}
	return errors.Join(errs...)
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// UploadLimit is the maximum upload size in bytes.
func (c *Config) UploadLimit() int64 {
	return int64(c.Server.MaxUploadMB) << 20
}

// SessionTTL is the idle lifetime of a session.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Session.TTLMinutes) * time.Minute
}

// SweepInterval is how often expired sessions are dropped.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.Session.SweepIntervalSec) * time.Second
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
