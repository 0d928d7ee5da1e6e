// Package smcrawl provides a high-level API for embedding the feed crawler
// as a library.
//
// Example usage:
//
//	client := smcrawl.New(
//	    smcrawl.WithControlURL("ws://127.0.0.1:9222/devtools/browser/..."),
//	    smcrawl.WithMemoryStorage(),
//	)
//
//	crawl, err := client.Crawl(ctx, "https://x.com/home")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer crawl.Stop()
//
//	<-time.After(2 * time.Minute)
//	fmt.Println(crawl.Status().RecordCount, "posts recorded")
package smcrawl

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/atmaxmoj/socialmediascrawler/internal/adapter"
	"github.com/atmaxmoj/socialmediascrawler/internal/config"
	"github.com/atmaxmoj/socialmediascrawler/internal/crawler"
	"github.com/atmaxmoj/socialmediascrawler/internal/media"
	"github.com/atmaxmoj/socialmediascrawler/internal/observability"
	"github.com/atmaxmoj/socialmediascrawler/internal/page"
	"github.com/atmaxmoj/socialmediascrawler/internal/storage"
	"github.com/atmaxmoj/socialmediascrawler/internal/types"
)

// Export formats, re-exported so embedders never import internal packages.
type Format = storage.Format

const (
	FormatJSON = storage.FormatJSON
	FormatCSV  = storage.FormatCSV
)

// ExportResult is a rendered export file.
type ExportResult = storage.ExportResult

// Client bundles the collaborators needed to run crawls.
type Client struct {
	cfg    *config.Config
	logger *slog.Logger
	store  storage.Gateway
}

// Option configures a Client.
type Option func(*Client)

// WithControlURL attaches to a running browser instead of launching one.
func WithControlURL(u string) Option {
	return func(c *Client) { c.cfg.Browser.ControlURL = u }
}

// WithHeadless launches the browser headless.
func WithHeadless() Option {
	return func(c *Client) { c.cfg.Browser.Headless = true }
}

// WithMemoryStorage keeps records in process memory.
func WithMemoryStorage() Option {
	return func(c *Client) { c.cfg.Storage.Type = "memory" }
}

// WithMongo persists records to the given MongoDB collection.
func WithMongo(uri, database, collection string) Option {
	return func(c *Client) {
		c.cfg.Storage.Type = "mongo"
		c.cfg.Storage.URI = uri
		c.cfg.Storage.Database = database
		c.cfg.Storage.Collection = collection
	}
}

// WithMediaArchive downloads post attachments under dir.
func WithMediaArchive(dir string) Option {
	return func(c *Client) {
		c.cfg.Media.Enabled = true
		c.cfg.Media.Dir = dir
	}
}

// WithLogger replaces the default stderr logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithConfig replaces the whole default configuration.
func WithConfig(cfg *config.Config) Option {
	return func(c *Client) { c.cfg = cfg }
}

// New creates a Client with defaults plus the given options.
func New(opts ...Option) *Client {
	c := &Client{
		cfg:    config.DefaultConfig(),
		logger: slog.New(slog.NewTextHandler(os.Stderr, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Crawl opens the feed URL in a browser session, picks the platform adapter
// from the URL host and starts the capture loop. The returned Crawler is
// already running; call Stop when done.
func (c *Client) Crawl(ctx context.Context, feedURL string) (*crawler.Crawler, error) {
	if err := config.Validate(c.cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := config.ValidateURL(feedURL); err != nil {
		return nil, err
	}

	ad := adapter.Detect(feedURL)
	if ad == nil {
		return nil, fmt.Errorf("%w: no adapter for %q", types.ErrNoPlatform, feedURL)
	}

	store, err := c.gateway(ctx)
	if err != nil {
		return nil, err
	}

	sess, err := page.NewRodSession(ctx, feedURL, page.Options{
		ControlURL:      c.cfg.Browser.ControlURL,
		Headless:        c.cfg.Browser.Headless,
		Stealth:         c.cfg.Browser.Stealth,
		NavigateTimeout: c.cfg.Browser.NavTimeout,
	}, c.logger)
	if err != nil {
		return nil, err
	}

	pol := crawler.DefaultPolicy()
	pol.CycleInterval = c.cfg.Crawl.CycleInterval
	pol.SettleDelay = c.cfg.Crawl.SettleDelay

	cr := crawler.New(sess, ad, store, pol, c.logger, observability.NewMetrics())
	if c.cfg.Media.Enabled {
		cr.SetArchiver(media.NewArchiver(c.cfg.Media.Dir, c.cfg.Media.MaxSizeMB, c.cfg.Media.Concurrent, c.logger))
	}

	if err := cr.Start(ctx); err != nil {
		sess.Close()
		return nil, err
	}
	return cr, nil
}

// Records returns all stored posts, optionally filtered by platform
// (empty means all).
func (c *Client) Records(ctx context.Context, platform types.Platform) ([]*types.PostRecord, error) {
	store, err := c.gateway(ctx)
	if err != nil {
		return nil, err
	}
	if platform != "" {
		return store.GetAllByPlatform(ctx, platform)
	}
	return store.GetAll(ctx)
}

// Export renders all stored posts in the given format.
func (c *Client) Export(ctx context.Context, format Format) (*ExportResult, error) {
	records, err := c.Records(ctx, "")
	if err != nil {
		return nil, err
	}
	return storage.Export(records, format)
}

// gateway lazily opens the configured storage backend and reuses it across
// calls.
func (c *Client) gateway(ctx context.Context) (storage.Gateway, error) {
	if c.store != nil {
		return c.store, nil
	}
	switch c.cfg.Storage.Type {
	case "memory":
		c.store = storage.NewMemoryGateway()
	default:
		connectCtx, cancel := context.WithTimeout(ctx, c.cfg.Storage.Timeout)
		defer cancel()
		g, err := storage.NewMongoGateway(connectCtx, c.cfg.Storage.URI, c.cfg.Storage.Database, c.cfg.Storage.Collection, c.logger)
		if err != nil {
			return nil, fmt.Errorf("open storage: %w", err)
		}
		c.store = g
	}
	return c.store, nil
}

// Close releases the storage connection.
func (c *Client) Close(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	return c.store.Close(ctx)
}
