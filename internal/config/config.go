package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for the crawler.
type Config struct {
	Crawl   CrawlConfig   `mapstructure:"crawl"   yaml:"crawl"`
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Export  ExportConfig  `mapstructure:"export"  yaml:"export"`
	Media   MediaConfig   `mapstructure:"media"   yaml:"media"`
	API     APIConfig     `mapstructure:"api"     yaml:"api"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// CrawlConfig tunes the capture loop.
type CrawlConfig struct {
	CycleInterval     time.Duration `mapstructure:"cycle_interval"      yaml:"cycle_interval"`
	SettleDelay       time.Duration `mapstructure:"settle_delay"        yaml:"settle_delay"`
	WatchInterval     time.Duration `mapstructure:"watch_interval"      yaml:"watch_interval"`
	DebounceDelay     time.Duration `mapstructure:"debounce_delay"      yaml:"debounce_delay"`
	PositionWindow    time.Duration `mapstructure:"position_window"     yaml:"position_window"`
	MaxPositionHits   int           `mapstructure:"max_position_hits"   yaml:"max_position_hits"`
	PositionTolerance float64       `mapstructure:"position_tolerance"  yaml:"position_tolerance"`
	StuckThreshold    int           `mapstructure:"stuck_threshold"     yaml:"stuck_threshold"`
	MinScroll         float64       `mapstructure:"min_scroll"          yaml:"min_scroll"`
	MaxScroll         float64       `mapstructure:"max_scroll"          yaml:"max_scroll"`
	SafeScroll        float64       `mapstructure:"safe_scroll"         yaml:"safe_scroll"`
	ViewportFraction  float64       `mapstructure:"viewport_fraction"   yaml:"viewport_fraction"`
	MinVisibility     float64       `mapstructure:"min_visibility"      yaml:"min_visibility"`
}

// BrowserConfig controls how the crawler reaches Chromium. When ControlURL
// is set the crawler attaches to an already-running browser (the normal mode
// for logged-in feeds); otherwise it launches its own instance.
type BrowserConfig struct {
	ControlURL  string        `mapstructure:"control_url"   yaml:"control_url"`
	Headless    bool          `mapstructure:"headless"      yaml:"headless"`
	Stealth     bool          `mapstructure:"stealth"       yaml:"stealth"`
	NavTimeout  time.Duration `mapstructure:"nav_timeout"   yaml:"nav_timeout"`
	UserDataDir string        `mapstructure:"user_data_dir" yaml:"user_data_dir"`
}

// StorageConfig selects the persistence gateway.
type StorageConfig struct {
	Type       string        `mapstructure:"type"       yaml:"type"` // memory, mongo
	URI        string        `mapstructure:"uri"        yaml:"uri"`
	Database   string        `mapstructure:"database"   yaml:"database"`
	Collection string        `mapstructure:"collection" yaml:"collection"`
	Timeout    time.Duration `mapstructure:"timeout"    yaml:"timeout"`
}

// ExportConfig controls file export.
type ExportConfig struct {
	Dir    string `mapstructure:"dir"    yaml:"dir"`
	Format string `mapstructure:"format" yaml:"format"` // json, csv
}

// MediaConfig controls best-effort archiving of post attachments.
type MediaConfig struct {
	Enabled    bool   `mapstructure:"enabled"     yaml:"enabled"`
	Dir        string `mapstructure:"dir"         yaml:"dir"`
	MaxSizeMB  int64  `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	Concurrent int    `mapstructure:"concurrent"  yaml:"concurrent"`
}

// APIConfig controls the local control server.
type APIConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Addr    string `mapstructure:"addr"    yaml:"addr"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	Output string `mapstructure:"output" yaml:"output"`
}

// MetricsConfig controls Prometheus metrics exposition on the control
// server.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path"    yaml:"path"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Crawl: CrawlConfig{
			CycleInterval:     1 * time.Second,
			SettleDelay:       1200 * time.Millisecond,
			WatchInterval:     500 * time.Millisecond,
			DebounceDelay:     300 * time.Millisecond,
			PositionWindow:    15 * time.Second,
			MaxPositionHits:   3,
			PositionTolerance: 40,
			StuckThreshold:    5,
			MinScroll:         100,
			MaxScroll:         800,
			SafeScroll:        200,
			ViewportFraction:  0.8,
			MinVisibility:     0.3,
		},
		Browser: BrowserConfig{
			Headless:   false,
			Stealth:    true,
			NavTimeout: 45 * time.Second,
		},
		Storage: StorageConfig{
			Type:       "mongo",
			URI:        "mongodb://localhost:27017",
			Database:   "smcrawl",
			Collection: "posts",
			Timeout:    10 * time.Second,
		},
		Export: ExportConfig{
			Dir:    "./exports",
			Format: "json",
		},
		Media: MediaConfig{
			Enabled:    false,
			Dir:        "./media",
			MaxSizeMB:  50,
			Concurrent: 3,
		},
		API: APIConfig{
			Enabled: true,
			Addr:    "127.0.0.1:8787",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}
