package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/atmaxmoj/socialmediascrawler/internal/adapter"
	"github.com/atmaxmoj/socialmediascrawler/internal/api"
	"github.com/atmaxmoj/socialmediascrawler/internal/config"
	"github.com/atmaxmoj/socialmediascrawler/internal/crawler"
	"github.com/atmaxmoj/socialmediascrawler/internal/media"
	"github.com/atmaxmoj/socialmediascrawler/internal/observability"
	"github.com/atmaxmoj/socialmediascrawler/internal/page"
	"github.com/atmaxmoj/socialmediascrawler/internal/storage"
	"github.com/atmaxmoj/socialmediascrawler/internal/types"
	"github.com/atmaxmoj/socialmediascrawler/internal/viewport"
)

var (
	cfgFile      string
	verbose      bool
	platformName string
	controlURL   string
	headless     bool
	storageType  string
	archiveMedia bool
	exportDir    string
	exportFormat string
	apiAddr      string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "smcrawl",
		Short: "smcrawl is a viewport-anchored social feed crawler",
		Long: `smcrawl attaches to a logged-in browser session and records the posts you
scroll past on social feeds.

Features:
  • Viewport-anchored capture: the post you are looking at is the post recorded
  • Platform adapters for Twitter/X, LinkedIn, Instagram, Facebook and TikTok
  • Stable identity and dedup across sessions
  • Autoscroll with lazy-load recovery and per-position rate limiting
  • MongoDB persistence, JSON and CSV export
  • Local REST control API and Prometheus metrics`,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(crawlCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(platformsCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// crawlCmd creates the "crawl" subcommand.
func crawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [feed-url]",
		Short: "Crawl a social feed page",
		Long:  "Attach to a browser, open the feed URL and record posts while autoscrolling.",
		Args:  cobra.ExactArgs(1),
		RunE:  runCrawl,
	}

	cmd.Flags().StringVarP(&platformName, "platform", "p", "", "platform adapter: twitter, linkedin, instagram, facebook, tiktok (default: detect from URL)")
	cmd.Flags().StringVar(&controlURL, "control-url", "", "DevTools endpoint of a running browser (default: launch a new one)")
	cmd.Flags().BoolVar(&headless, "headless", false, "run the launched browser headless")
	cmd.Flags().StringVar(&storageType, "storage", "", "storage backend: memory, mongo")
	cmd.Flags().BoolVar(&archiveMedia, "archive-media", false, "download post attachments to the media directory")
	cmd.Flags().StringVar(&apiAddr, "api", "", "control API listen address")

	return cmd
}

// runCrawl executes the crawl command.
func runCrawl(cmd *cobra.Command, args []string) error {
	feedURL := args[0]

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyCLIOverrides(cfg)
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := config.ValidateURL(feedURL); err != nil {
		return fmt.Errorf("invalid feed URL: %w", err)
	}

	logger := setupLogger(cfg)

	ad, err := pickAdapter(feedURL)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close(context.Background())

	logger.Info("attaching to feed",
		"url", feedURL,
		"platform", ad.Platform(),
		"storage", cfg.Storage.Type,
	)

	sess, err := page.NewRodSession(ctx, feedURL, page.Options{
		ControlURL:      cfg.Browser.ControlURL,
		Headless:        cfg.Browser.Headless,
		Stealth:         cfg.Browser.Stealth,
		NavigateTimeout: cfg.Browser.NavTimeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("open browser session: %w", err)
	}
	defer sess.Close()

	metrics := observability.NewMetrics()
	cr := crawler.New(sess, ad, store, crawlPolicy(cfg), logger, metrics)
	if cfg.Media.Enabled {
		cr.SetArchiver(media.NewArchiver(cfg.Media.Dir, cfg.Media.MaxSizeMB, cfg.Media.Concurrent, logger))
	}

	if cfg.API.Enabled {
		var mh *observability.Metrics
		if cfg.Metrics.Enabled {
			mh = metrics
		}
		srv := api.NewServer(cfg.API.Addr, cfg.Export.Dir, cr, store, mh, logger)
		if err := srv.Start(); err != nil {
			logger.Warn("control server failed to start", "error", err)
		} else {
			defer func() {
				shutCtx, shutCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer shutCancel()
				_ = srv.Shutdown(shutCtx)
			}()
		}
	}

	if err := cr.Start(ctx); err != nil {
		return fmt.Errorf("start crawl: %w", err)
	}

	// Crawl until interrupted.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	start := time.Now()
	sig := <-sigCh
	logger.Info("received signal, shutting down...", "signal", sig)

	_ = cr.Stop()
	elapsed := time.Since(start)
	stats := metrics.Snapshot()

	fmt.Printf("\nCrawl stopped after %s\n", elapsed.Round(time.Second))
	fmt.Printf("   Cycles:     %v (%v rate-limited)\n", stats["cycles"], stats["rate_limited"])
	fmt.Printf("   Posts:      %v recorded, %v duplicates\n", stats["posts_recorded"], stats["duplicates"])
	fmt.Printf("   Scrolls:    %v (%v stuck recoveries)\n", stats["scrolls"], stats["stuck_recoveries"])
	fmt.Printf("   Errors:     %v snapshot, %v persist\n", stats["snapshot_errors"], stats["persist_errors"])

	return nil
}

// exportCmd creates the "export" subcommand.
func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored posts to a file",
		RunE:  runExport,
	}

	cmd.Flags().StringVarP(&exportFormat, "format", "f", "", "export format: json, csv")
	cmd.Flags().StringVarP(&exportDir, "output", "o", "", "output directory")
	cmd.Flags().StringVarP(&platformName, "platform", "p", "", "export only this platform")
	cmd.Flags().StringVar(&storageType, "storage", "", "storage backend: memory, mongo")

	return cmd
}

// runExport executes the export command.
func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyCLIOverrides(cfg)
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := setupLogger(cfg)
	ctx := context.Background()

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close(ctx)

	var records []*types.PostRecord
	if platformName != "" {
		records, err = store.GetAllByPlatform(ctx, types.Platform(platformName))
	} else {
		records, err = store.GetAll(ctx)
	}
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}
	if len(records) == 0 {
		fmt.Println("No records to export.")
		return nil
	}

	res, err := storage.Export(records, storage.Format(cfg.Export.Format))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.Export.Dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(cfg.Export.Dir, res.Filename)
	if err := os.WriteFile(path, []byte(res.Data), 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}

	fmt.Printf("Exported %d posts to %s\n", len(records), path)
	return nil
}

// statusCmd creates the "status" subcommand, which queries the control API
// of a running crawl.
func statusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the status of a running crawl",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			addr := cfg.API.Addr
			if apiAddr != "" {
				addr = apiAddr
			}

			resp, err := http.Get("http://" + addr + "/api/status")
			if err != nil {
				return fmt.Errorf("no crawl reachable at %s: %w", addr, err)
			}
			defer resp.Body.Close()

			var st crawler.Status
			if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
				return fmt.Errorf("decode status: %w", err)
			}

			state := "stopped"
			if st.Running {
				state = "running"
			}
			fmt.Printf("State:     %s\n", state)
			fmt.Printf("Platform:  %s\n", st.Platform)
			fmt.Printf("Records:   %d\n", st.RecordCount)
			if st.Viewing != nil {
				fmt.Printf("Viewing:   %s by %s\n", st.Viewing.ID, st.Viewing.Author)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&apiAddr, "api", "", "control API address to query")
	return cmd
}

// platformsCmd creates the "platforms" subcommand.
func platformsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "platforms",
		Short: "List supported platforms",
		Run: func(cmd *cobra.Command, args []string) {
			for _, a := range adapter.All() {
				fmt.Printf("%-10s scroll=%s\n", a.Platform(), a.ScrollMode())
			}
		},
	}
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("smcrawl %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			fmt.Printf("Crawl:\n")
			fmt.Printf("  Cycle Interval:     %s\n", cfg.Crawl.CycleInterval)
			fmt.Printf("  Settle Delay:       %s\n", cfg.Crawl.SettleDelay)
			fmt.Printf("  Position Window:    %s (max %d hits)\n", cfg.Crawl.PositionWindow, cfg.Crawl.MaxPositionHits)
			fmt.Printf("  Stuck Threshold:    %d\n", cfg.Crawl.StuckThreshold)
			fmt.Printf("  Scroll Range:       %.0f-%.0f px\n", cfg.Crawl.MinScroll, cfg.Crawl.MaxScroll)
			fmt.Printf("\nBrowser:\n")
			fmt.Printf("  Control URL:        %s\n", orDefault(cfg.Browser.ControlURL, "(launch new)"))
			fmt.Printf("  Headless:           %v\n", cfg.Browser.Headless)
			fmt.Printf("  Stealth:            %v\n", cfg.Browser.Stealth)
			fmt.Printf("\nStorage:\n")
			fmt.Printf("  Type:               %s\n", cfg.Storage.Type)
			fmt.Printf("  URI:                %s\n", cfg.Storage.URI)
			fmt.Printf("  Database:           %s/%s\n", cfg.Storage.Database, cfg.Storage.Collection)
			fmt.Printf("\nExport:\n")
			fmt.Printf("  Dir:                %s\n", cfg.Export.Dir)
			fmt.Printf("  Format:             %s\n", cfg.Export.Format)
			fmt.Printf("\nAPI:\n")
			fmt.Printf("  Enabled:            %v\n", cfg.API.Enabled)
			fmt.Printf("  Addr:               %s\n", cfg.API.Addr)
			return nil
		},
	}
}

// pickAdapter resolves the adapter from the --platform flag or the URL host.
func pickAdapter(feedURL string) (adapter.Adapter, error) {
	if platformName != "" {
		p := types.Platform(strings.ToLower(platformName))
		if ad := adapter.ForPlatform(p); ad != nil {
			return ad, nil
		}
		return nil, fmt.Errorf("%w: %q is not one of %v", types.ErrNoPlatform, platformName, types.Platforms())
	}
	if ad := adapter.Detect(feedURL); ad != nil {
		return ad, nil
	}
	return nil, fmt.Errorf("%w: cannot pick an adapter for %q (use --platform)", types.ErrNoPlatform, feedURL)
}

// openStorage builds the configured gateway.
func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Gateway, error) {
	switch cfg.Storage.Type {
	case "memory":
		return storage.NewMemoryGateway(), nil
	default:
		connectCtx, cancel := context.WithTimeout(ctx, cfg.Storage.Timeout)
		defer cancel()
		return storage.NewMongoGateway(connectCtx, cfg.Storage.URI, cfg.Storage.Database, cfg.Storage.Collection, logger)
	}
}

// crawlPolicy maps config onto the loop policy.
func crawlPolicy(cfg *config.Config) crawler.Policy {
	pol := crawler.DefaultPolicy()
	pol.CycleInterval = cfg.Crawl.CycleInterval
	pol.SettleDelay = cfg.Crawl.SettleDelay
	pol.WatchInterval = cfg.Crawl.WatchInterval
	pol.DebounceDelay = cfg.Crawl.DebounceDelay
	pol.PositionWindow = cfg.Crawl.PositionWindow
	pol.MaxPositionHits = cfg.Crawl.MaxPositionHits
	pol.PositionTolerance = cfg.Crawl.PositionTolerance
	pol.StuckThreshold = cfg.Crawl.StuckThreshold
	pol.MinScroll = cfg.Crawl.MinScroll
	pol.MaxScroll = cfg.Crawl.MaxScroll
	pol.SafeScroll = cfg.Crawl.SafeScroll
	pol.ViewportFraction = cfg.Crawl.ViewportFraction
	pol.Scoring = viewport.DefaultScoring()
	pol.Scoring.MinVisibility = cfg.Crawl.MinVisibility
	return pol
}

// setupLogger creates a structured logger per the logging config.
func setupLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	} else {
		switch cfg.Logging.Level {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}

	out := os.Stderr
	if cfg.Logging.Output == "stdout" {
		out = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	return slog.New(handler)
}

// applyCLIOverrides applies command-line flag values to the config.
func applyCLIOverrides(cfg *config.Config) {
	if controlURL != "" {
		cfg.Browser.ControlURL = controlURL
	}
	if headless {
		cfg.Browser.Headless = true
	}
	if storageType != "" {
		cfg.Storage.Type = strings.ToLower(storageType)
	}
	if archiveMedia {
		cfg.Media.Enabled = true
	}
	if exportDir != "" {
		cfg.Export.Dir = exportDir
	}
	if exportFormat != "" {
		cfg.Export.Format = strings.ToLower(exportFormat)
	}
	if apiAddr != "" {
		cfg.API.Addr = apiAddr
		cfg.API.Enabled = true
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
