// Package crawler runs the autoscroll-driven capture loop against one feed
// page: locate the anchor post, extract, deduplicate, persist, decide how to
// scroll, repeat. One Crawler drives one platform adapter on one page.
package crawler

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/atmaxmoj/socialmediascrawler/internal/adapter"
	"github.com/atmaxmoj/socialmediascrawler/internal/media"
	"github.com/atmaxmoj/socialmediascrawler/internal/observability"
	"github.com/atmaxmoj/socialmediascrawler/internal/page"
	"github.com/atmaxmoj/socialmediascrawler/internal/storage"
	"github.com/atmaxmoj/socialmediascrawler/internal/types"
	"github.com/atmaxmoj/socialmediascrawler/internal/viewport"
)

// State is the crawler's lifecycle state. There is no paused state: stop
// always tears everything down.
type State int32

const (
	StateStopped State = 0
	StateRunning State = 1
)

func (s State) String() string {
	if s == StateRunning {
		return "running"
	}
	return "stopped"
}

// Policy holds the crawl-loop tuning knobs. Defaults come from
// DefaultPolicy; the config layer overrides per platform.
type Policy struct {
	// CycleInterval is the recurring timer driving scroll-advancement
	// cycles.
	CycleInterval time.Duration
	// SettleDelay is the wait after any scroll before the next cycle
	// examines the anchor; smooth scrolling and async rendering need it.
	SettleDelay time.Duration
	// WatchInterval is how often the content-mutation watcher probes the
	// document height (or the page URL, in passive mode).
	WatchInterval time.Duration
	// DebounceDelay collapses rapid growth events into one cycle.
	DebounceDelay time.Duration

	// PositionWindow/MaxPositionHits/PositionTolerance rate-limit
	// re-processing of one anchor position.
	PositionWindow    time.Duration
	MaxPositionHits   int
	PositionTolerance float64

	// StuckThreshold is how many consecutive no-growth advancement attempts
	// trigger recovery.
	StuckThreshold int

	// MinScroll/MaxScroll clamp the position-mode advancement delta;
	// SafeScroll is the fallback for degenerate geometry.
	MinScroll  float64
	MaxScroll  float64
	SafeScroll float64
	// NextTopMargin keeps the next container slightly below the viewport
	// top in DOM-order mode.
	NextTopMargin float64
	// ViewportFraction sizes the lazy-load nudge at the end of loaded
	// content.
	ViewportFraction float64

	// Scoring is the anchor-selection policy.
	Scoring viewport.Scoring
}

// DefaultPolicy returns the standard tuning.
func DefaultPolicy() Policy {
	return Policy{
		CycleInterval:     time.Second,
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
		NextTopMargin:     50,
		ViewportFraction:  0.8,
		Scoring:           viewport.DefaultScoring(),
	}
}

// Status is the externally visible crawl state.
type Status struct {
	Running     bool           `json:"running"`
	Platform    types.Platform `json:"platform"`
	RecordCount int64          `json:"record_count"`
	// Viewing mirrors the post currently anchored in the viewport,
	// regardless of dedup state.
	Viewing *types.Preview `json:"viewing,omitempty"`
}

// Crawler is the crawl-loop state machine.
type Crawler struct {
	pol     Policy
	sess    page.Session
	adapter adapter.Adapter
	store   storage.Gateway
	logger  *slog.Logger
	metrics *observability.Metrics

	// lifecycleMu serializes Start and Stop so a Start can never slip in
	// while Stop is mid-teardown. The state flag alone orders neither the
	// cancel/trigger writes nor wg.Add against wg.Wait.
	lifecycleMu sync.Mutex
	state       atomic.Int32
	cancel      context.CancelFunc
	wg          sync.WaitGroup

	// trigger is the single-slot pending-cycle queue: overlapping growth
	// events collapse into one scheduled cycle.
	trigger chan struct{}

	mu          sync.RWMutex
	viewing     *types.Preview
	recordCount atomic.Int64

	archiver MediaArchiver
}

// MediaArchiver saves a recorded post's attachments to disk.
type MediaArchiver interface {
	ArchivePost(ctx context.Context, rec *types.PostRecord) []*media.ArchiveResult
}

// New wires a crawler. All collaborators are injected; the crawler owns no
// globals.
func New(sess page.Session, a adapter.Adapter, store storage.Gateway, pol Policy, logger *slog.Logger, metrics *observability.Metrics) *Crawler {
	if metrics == nil {
		metrics = observability.NewMetrics()
	}
	return &Crawler{
		pol:     pol,
		sess:    sess,
		adapter: a,
		store:   store,
		logger:  logger.With("component", "crawler", "platform", a.Platform()),
		metrics: metrics,
	}
}

// SetArchiver enables best-effort media archiving for recorded posts.
// Must be called before Start.
func (c *Crawler) SetArchiver(a MediaArchiver) {
	c.archiver = a
}

// Start transitions Stopped -> Running: bootstrap the seen set from the
// store, run one immediate cycle, then start the cycle producers. No-op
// when already running.
func (c *Crawler) Start(ctx context.Context) error {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()
	if !c.state.CompareAndSwap(int32(StateStopped), int32(StateRunning)) {
		return types.ErrAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.trigger = make(chan struct{}, 1)

	cs := newCrawlSession()

	// Bootstrap: everything already stored for this platform counts as
	// seen, so re-opening a feed after a break never re-saves old posts.
	existing, err := c.store.GetAllByPlatform(runCtx, c.adapter.Platform())
	if err != nil {
		c.logger.Warn("seen-set bootstrap failed, starting empty", "error", err)
	}
	for _, rec := range existing {
		cs.seen[rec.ID] = struct{}{}
	}
	c.recordCount.Store(int64(len(existing)))

	// Baseline for stuck detection.
	if h, err := c.sess.DocHeight(runCtx); err == nil {
		cs.lastDocHeight = h
	}

	c.logger.Info("crawl started",
		"seen", len(cs.seen),
		"scroll_mode", c.adapter.ScrollMode().String(),
	)

	// One immediate cycle before any producer fires.
	c.cycle(runCtx, cs)

	c.wg.Add(2)
	go c.runLoop(runCtx, cs)
	go c.watchContent(runCtx)

	return nil
}

// Stop transitions Running -> Stopped, cancelling all timers and watchers.
// In-flight work observes the state flag at its next suspension point and
// discards its result. Idempotent.
func (c *Crawler) Stop() error {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()
	if !c.state.CompareAndSwap(int32(StateRunning), int32(StateStopped)) {
		return types.ErrNotRunning
	}
	c.cancel()
	c.wg.Wait()
	c.setViewing(nil)
	c.logger.Info("crawl stopped")
	return nil
}

// Status implements the external control surface.
func (c *Crawler) Status() Status {
	c.mu.RLock()
	viewing := c.viewing
	c.mu.RUnlock()
	return Status{
		Running:     c.running(),
		Platform:    c.adapter.Platform(),
		RecordCount: c.recordCount.Load(),
		Viewing:     viewing,
	}
}

func (c *Crawler) running() bool {
	return State(c.state.Load()) == StateRunning
}

func (c *Crawler) setViewing(p *types.Preview) {
	c.mu.Lock()
	c.viewing = p
	c.mu.Unlock()
}

// runLoop owns the crawl session and drains the trigger queue. The recurring
// timer lives here too, so timer cycles and growth cycles are serialized by
// construction; dedup stays the real safety net against back-to-back cycles.
func (c *Crawler) runLoop(ctx context.Context, cs *crawlSession) {
	defer c.wg.Done()
	ticker := time.NewTicker(c.pol.CycleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			newPost := c.cycle(ctx, cs)
			c.advance(ctx, cs, newPost)
		case <-c.trigger:
			c.cycle(ctx, cs)
		}
	}
}

// watchContent is the content-mutation watcher. It probes document height
// and schedules a debounced cycle whenever the page grew; in passive scroll
// mode it watches the page URL instead, since the host page advances itself.
func (c *Crawler) watchContent(ctx context.Context) {
	defer c.wg.Done()
	ticker := time.NewTicker(c.pol.WatchInterval)
	defer ticker.Stop()

	passive := c.adapter.ScrollMode() == adapter.ScrollPassive
	// The debounce timer can fire after this run's teardown; sending on this
	// run's channel keeps a late fire away from a restarted crawler's queue.
	trigger := c.trigger
	var lastHeight float64
	var lastURL string
	var pending *time.Timer
	defer func() {
		if pending != nil {
			pending.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		changed := false
		if passive {
			u, err := c.sess.URL(ctx)
			if err != nil {
				continue
			}
			changed = lastURL != "" && u != lastURL
			lastURL = u
		} else {
			h, err := c.sess.DocHeight(ctx)
			if err != nil {
				continue
			}
			changed = h > lastHeight && lastHeight > 0
			if h > lastHeight {
				lastHeight = h
			}
		}
		if !changed {
			continue
		}

		// Debounce: rapid growth bursts collapse into one cycle.
		if pending != nil {
			pending.Stop()
		}
		pending = time.AfterFunc(c.pol.DebounceDelay, func() {
			select {
			case trigger <- struct{}{}:
			default: // a cycle is already pending
			}
		})
	}
}

// cycle is one pass of the state machine: snapshot, anchor, rate-limit,
// preview, extract, dedup, persist. Returns whether a new post was recorded.
// Every failure is contained here; nothing propagates past a cycle.
func (c *Crawler) cycle(ctx context.Context, cs *crawlSession) bool {
	c.metrics.Cycles.Add(1)

	snap, err := c.sess.Snapshot(ctx, c.adapter.ContainerSelector())
	if err != nil {
		c.metrics.SnapshotErrors.Add(1)
		c.logger.Warn("snapshot failed", "error", err)
		cs.lastSnap = nil
		cs.anchorIdx = -1
		return false
	}
	cs.lastSnap = snap
	cs.observeHeight(snap.DocHeight)

	rects := make([]viewport.Rect, len(snap.Candidates))
	for i, cand := range snap.Candidates {
		rects[i] = cand.Rect
	}
	idx := viewport.SelectAnchor(rects, snap.Viewport, c.pol.Scoring)
	cs.anchorIdx = idx
	if idx < 0 {
		c.logger.Debug("no anchor in viewport", "candidates", len(snap.Candidates))
		return false
	}
	cand := snap.Candidate(idx)

	// Rate limit by position, not id: a stuck viewport keeps serving the
	// same offset even as content reflows under it. Skipping extraction
	// still leaves the advancement step free to fire.
	hits := cs.positions.hit(cand.Rect.Top, c.pol.PositionTolerance, time.Now(), c.pol.PositionWindow)
	if hits > c.pol.MaxPositionHits {
		c.metrics.RateLimited.Add(1)
		c.logger.Debug("anchor position rate-limited", "top", cand.Rect.Top, "hits", hits)
		return false
	}

	// The viewing affordance always mirrors the literal anchor, recorded or
	// not.
	c.setViewing(c.adapter.ExtractPreview(cand))

	rec := c.adapter.Extract(snap, cand)
	if rec == nil {
		c.logger.Debug("anchor not extractable", "index", idx)
		return false
	}

	if _, dup := cs.seen[rec.ID]; dup {
		c.metrics.Duplicates.Add(1)
		c.logger.Debug("already recorded", "id", rec.ID)
		return false
	}

	// Only a record that will be persisted is worth a network round trip.
	c.fetchCaption(ctx, cand, rec)
	if !c.running() {
		return false
	}

	if err := c.store.Put(ctx, rec); err != nil {
		// Retryable: the id is deliberately not marked seen.
		c.metrics.PersistErrors.Add(1)
		c.logger.Error("persist failed, will retry", "id", rec.ID, "error", err)
		return false
	}
	// The put was a suspension point; if we were stopped while it was in
	// flight, discard the in-memory effect. The write itself is harmless:
	// the next start re-reads the store, so no duplicate can follow.
	if !c.running() {
		return false
	}

	cs.seen[rec.ID] = struct{}{}
	c.recordCount.Add(1)
	c.metrics.PostsRecorded.Add(1)
	c.logger.Info("post recorded",
		"id", rec.ID,
		"author", rec.Author.Name,
		"group", rec.GroupLabel,
	)

	// Archiving runs off the loop; downloads are slow and must not delay
	// the next cycle. ctx cancellation on stop abandons them.
	if c.archiver != nil {
		go c.archiver.ArchivePost(ctx, rec)
		c.triggerNativeDownload(ctx, cand, rec.ID)
	}
	return true
}

// triggerNativeDownload drives the host page's own download affordance for
// platforms that render media only as blob streams. The browser writes the
// file to its download directory.
func (c *Crawler) triggerNativeDownload(ctx context.Context, cand *page.Candidate, id string) {
	dl, ok := c.adapter.(adapter.NativeDownloader)
	if !ok {
		return
	}
	ptr, ok := c.sess.(page.PointerAutomator)
	if !ok {
		return
	}
	if err := dl.TriggerDownload(ctx, ptr, cand); err != nil {
		c.logger.Debug("native download failed", "id", id, "error", err)
	}
}

// fetchCaption resolves the remote caption track for adapters that have the
// capability. Strictly additive: failure leaves the record as extracted.
func (c *Crawler) fetchCaption(ctx context.Context, cand *page.Candidate, rec *types.PostRecord) {
	cf, ok := c.adapter.(adapter.CaptionFetcher)
	if !ok {
		return
	}
	trackURL := cf.CaptionTrackURL(cand)
	if trackURL == "" {
		return
	}
	caption, err := cf.FetchCaption(ctx, trackURL)
	if err != nil {
		c.logger.Debug("caption fetch failed", "url", trackURL, "error", err)
		return
	}
	if caption != "" {
		rec.Text = strings.TrimSpace(rec.Text + "\n\n" + caption)
	}
}

// advance applies the scroll policy after a timer tick. A tick that recorded
// a new post never scrolls: adjacent content may have shifted and the same
// anchor deserves a re-examination.
func (c *Crawler) advance(ctx context.Context, cs *crawlSession, newPost bool) {
	if newPost {
		return
	}
	if c.adapter.ScrollMode() == adapter.ScrollPassive {
		return
	}

	// Stuck recovery: repeated advancement without document growth means
	// the lazy loader stalled. Jump to the bottom to shake it loose.
	cs.stuck++
	if cs.stuck >= c.pol.StuckThreshold {
		c.metrics.StuckRecoveries.Add(1)
		c.logger.Info("no document growth, jumping to bottom", "attempts", cs.stuck)
		if err := c.sess.ScrollToBottom(ctx); err != nil {
			c.logger.Warn("recovery scroll failed", "error", err)
		}
		cs.stuck = 0
		c.settle(ctx)
		return
	}

	dec := decideScroll(c.adapter, c.pol, cs.lastSnap, cs.anchorIdx)
	var err error
	switch dec.Kind {
	case scrollNone:
		return
	case scrollBy:
		err = c.sess.ScrollBy(ctx, dec.Amount)
	case scrollTo:
		err = c.sess.ScrollTo(ctx, dec.Amount)
	case scrollBottom:
		err = c.sess.ScrollToBottom(ctx)
	}
	if err != nil {
		c.logger.Warn("scroll failed", "error", err)
		return
	}
	c.metrics.Scrolls.Add(1)
	c.settle(ctx)
}

// settle waits out smooth-scroll animation and async rendering before the
// next cycle measures the page again.
func (c *Crawler) settle(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(c.pol.SettleDelay):
	}
}
