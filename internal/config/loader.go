package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from file, environment, and CLI flags.
// Priority (highest to lowest): CLI flags > env vars > config file > defaults.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	// Set defaults from struct
	setDefaults(v, cfg)

	// Environment variable support
	v.SetEnvPrefix("SMCRAWL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Load config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Search default locations
		v.SetConfigName("smcrawl")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".smcrawl"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay if not explicitly specified
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers default values in viper.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("crawl.cycle_interval", cfg.Crawl.CycleInterval)
	v.SetDefault("crawl.settle_delay", cfg.Crawl.SettleDelay)
	v.SetDefault("crawl.watch_interval", cfg.Crawl.WatchInterval)
	v.SetDefault("crawl.debounce_delay", cfg.Crawl.DebounceDelay)
	v.SetDefault("crawl.position_window", cfg.Crawl.PositionWindow)
	v.SetDefault("crawl.max_position_hits", cfg.Crawl.MaxPositionHits)
	v.SetDefault("crawl.position_tolerance", cfg.Crawl.PositionTolerance)
	v.SetDefault("crawl.stuck_threshold", cfg.Crawl.StuckThreshold)
	v.SetDefault("crawl.min_scroll", cfg.Crawl.MinScroll)
	v.SetDefault("crawl.max_scroll", cfg.Crawl.MaxScroll)
	v.SetDefault("crawl.safe_scroll", cfg.Crawl.SafeScroll)
	v.SetDefault("crawl.viewport_fraction", cfg.Crawl.ViewportFraction)
	v.SetDefault("crawl.min_visibility", cfg.Crawl.MinVisibility)

	v.SetDefault("browser.control_url", cfg.Browser.ControlURL)
	v.SetDefault("browser.headless", cfg.Browser.Headless)
	v.SetDefault("browser.stealth", cfg.Browser.Stealth)
	v.SetDefault("browser.nav_timeout", cfg.Browser.NavTimeout)
	v.SetDefault("browser.user_data_dir", cfg.Browser.UserDataDir)

	v.SetDefault("storage.type", cfg.Storage.Type)
	v.SetDefault("storage.uri", cfg.Storage.URI)
	v.SetDefault("storage.database", cfg.Storage.Database)
	v.SetDefault("storage.collection", cfg.Storage.Collection)
	v.SetDefault("storage.timeout", cfg.Storage.Timeout)

	v.SetDefault("export.dir", cfg.Export.Dir)
	v.SetDefault("export.format", cfg.Export.Format)

	v.SetDefault("media.enabled", cfg.Media.Enabled)
	v.SetDefault("media.dir", cfg.Media.Dir)
	v.SetDefault("media.max_size_mb", cfg.Media.MaxSizeMB)
	v.SetDefault("media.concurrent", cfg.Media.Concurrent)

	v.SetDefault("api.enabled", cfg.API.Enabled)
	v.SetDefault("api.addr", cfg.API.Addr)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.output", cfg.Logging.Output)

	v.SetDefault("metrics.enabled", cfg.Metrics.Enabled)
	v.SetDefault("metrics.path", cfg.Metrics.Path)
}
