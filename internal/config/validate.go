package config

import (
	"fmt"
	"net/url"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if cfg.Crawl.CycleInterval <= 0 {
		return fmt.Errorf("crawl.cycle_interval must be > 0")
	}
	if cfg.Crawl.SettleDelay < 0 {
		return fmt.Errorf("crawl.settle_delay must be >= 0")
	}
	if cfg.Crawl.MaxPositionHits < 1 {
		return fmt.Errorf("crawl.max_position_hits must be >= 1, got %d", cfg.Crawl.MaxPositionHits)
	}
	if cfg.Crawl.StuckThreshold < 1 {
		return fmt.Errorf("crawl.stuck_threshold must be >= 1, got %d", cfg.Crawl.StuckThreshold)
	}
	if cfg.Crawl.MinScroll <= 0 || cfg.Crawl.MaxScroll <= 0 {
		return fmt.Errorf("crawl.min_scroll and crawl.max_scroll must be > 0")
	}
	if cfg.Crawl.MinScroll > cfg.Crawl.MaxScroll {
		return fmt.Errorf("crawl.min_scroll %v exceeds crawl.max_scroll %v", cfg.Crawl.MinScroll, cfg.Crawl.MaxScroll)
	}
	if cfg.Crawl.ViewportFraction <= 0 || cfg.Crawl.ViewportFraction > 1 {
		return fmt.Errorf("crawl.viewport_fraction must be in (0, 1], got %v", cfg.Crawl.ViewportFraction)
	}
	if cfg.Crawl.MinVisibility < 0 || cfg.Crawl.MinVisibility > 1 {
		return fmt.Errorf("crawl.min_visibility must be in [0, 1], got %v", cfg.Crawl.MinVisibility)
	}

	if cfg.Browser.ControlURL != "" {
		if _, err := url.Parse(cfg.Browser.ControlURL); err != nil {
			return fmt.Errorf("invalid browser.control_url %q: %w", cfg.Browser.ControlURL, err)
		}
	}
	if cfg.Browser.NavTimeout <= 0 {
		return fmt.Errorf("browser.nav_timeout must be > 0")
	}

	if cfg.Storage.Type != "memory" && cfg.Storage.Type != "mongo" {
		return fmt.Errorf("storage.type must be 'memory' or 'mongo', got %q", cfg.Storage.Type)
	}
	if cfg.Storage.Type == "mongo" {
		if cfg.Storage.URI == "" {
			return fmt.Errorf("storage.uri is required for mongo storage")
		}
		if cfg.Storage.Database == "" || cfg.Storage.Collection == "" {
			return fmt.Errorf("storage.database and storage.collection are required for mongo storage")
		}
	}

	if cfg.Export.Format != "json" && cfg.Export.Format != "csv" {
		return fmt.Errorf("export.format must be 'json' or 'csv', got %q", cfg.Export.Format)
	}

	if cfg.Media.Enabled {
		if cfg.Media.Dir == "" {
			return fmt.Errorf("media.dir is required when archiving is enabled")
		}
		if cfg.Media.MaxSizeMB <= 0 {
			return fmt.Errorf("media.max_size_mb must be > 0, got %d", cfg.Media.MaxSizeMB)
		}
	}

	if cfg.API.Enabled && cfg.API.Addr == "" {
		return fmt.Errorf("api.addr is required when the API is enabled")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	return nil
}

// ValidateURL checks if a URL string points at a crawlable feed page.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}
