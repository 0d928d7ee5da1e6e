package crawler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/atmaxmoj/socialmediascrawler/internal/adapter"
	"github.com/atmaxmoj/socialmediascrawler/internal/page"
	"github.com/atmaxmoj/socialmediascrawler/internal/storage"
	"github.com/atmaxmoj/socialmediascrawler/internal/types"
	"github.com/atmaxmoj/socialmediascrawler/internal/viewport"
)

// fakeSession scripts page behavior without a browser.
type fakeSession struct {
	mu        sync.Mutex
	snap      *page.Snapshot
	snapErr   error
	docHeight float64
	url       string

	scrollBys     []float64
	scrollTos     []float64
	bottomScrolls int
}

func (f *fakeSession) Snapshot(ctx context.Context, selector string) (*page.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.snapErr != nil {
		return nil, f.snapErr
	}
	return f.snap, nil
}

func (f *fakeSession) ScrollBy(ctx context.Context, dy float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scrollBys = append(f.scrollBys, dy)
	return nil
}

func (f *fakeSession) ScrollTo(ctx context.Context, y float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scrollTos = append(f.scrollTos, y)
	return nil
}

func (f *fakeSession) ScrollToBottom(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bottomScrolls++
	return nil
}

func (f *fakeSession) DocHeight(ctx context.Context) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.docHeight, nil
}

func (f *fakeSession) URL(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.url, nil
}

func (f *fakeSession) Close() error { return nil }

func (f *fakeSession) setDocHeight(h float64) {
	f.mu.Lock()
	f.docHeight = h
	f.mu.Unlock()
}

func (f *fakeSession) setURL(u string) {
	f.mu.Lock()
	f.url = u
	f.mu.Unlock()
}

// fakeAdapter serves a fixed record for whatever anchor it is handed.
type fakeAdapter struct {
	platform types.Platform
	mode     adapter.ScrollMode
	record   *types.PostRecord
	next     int

	mu       sync.Mutex
	extracts int
}

func (a *fakeAdapter) Platform() types.Platform  { return a.platform }
func (a *fakeAdapter) ContainerSelector() string { return "article" }

func (a *fakeAdapter) Extract(snap *page.Snapshot, c *page.Candidate) *types.PostRecord {
	a.mu.Lock()
	a.extracts++
	a.mu.Unlock()
	if a.record == nil {
		return nil
	}
	cp := *a.record
	return &cp
}

func (a *fakeAdapter) ExtractPreview(c *page.Candidate) *types.Preview {
	if a.record == nil {
		return nil
	}
	return &types.Preview{ID: a.record.ID, Text: a.record.Text, Author: a.record.Author.Name}
}

func (a *fakeAdapter) NextContainer(current int, cands []page.Candidate) int { return a.next }
func (a *fakeAdapter) GroupLabel(snap *page.Snapshot) string                 { return "" }
func (a *fakeAdapter) ScrollMode() adapter.ScrollMode                        { return a.mode }

func (a *fakeAdapter) extractCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.extracts
}

// captionAdapter layers a remote caption track onto fakeAdapter.
type captionAdapter struct {
	fakeAdapter
	trackURL string
	fetches  atomic.Int32
}

func (a *captionAdapter) CaptionTrackURL(c *page.Candidate) string { return a.trackURL }

func (a *captionAdapter) FetchCaption(ctx context.Context, trackURL string) (string, error) {
	a.fetches.Add(1)
	return "transcribed caption", nil
}

// failingGateway fails the first n Put calls, then delegates to memory.
type failingGateway struct {
	*storage.MemoryGateway
	mu      sync.Mutex
	failing int
}

func (g *failingGateway) Put(ctx context.Context, rec *types.PostRecord) error {
	g.mu.Lock()
	fail := g.failing > 0
	if fail {
		g.failing--
	}
	g.mu.Unlock()
	if fail {
		return errors.New("connection reset")
	}
	return g.MemoryGateway.Put(ctx, rec)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRecord(id string) *types.PostRecord {
	rec := types.NewPostRecord(types.PlatformTwitter, "https://x.com/home")
	rec.ID = id
	rec.Text = "hello"
	rec.Author.Name = "Jane"
	return rec
}

func singlePostSnapshot() *page.Snapshot {
	return &page.Snapshot{
		Candidates: []page.Candidate{
			{Index: 0, Rect: viewport.Rect{Top: 120, Bottom: 520}},
		},
		Viewport:  viewport.Viewport{Top: 100, Height: 900},
		DocHeight: 3000,
		URL:       "https://x.com/home",
	}
}

func testPolicy() Policy {
	pol := DefaultPolicy()
	pol.CycleInterval = time.Hour // cycles driven by hand in tests
	pol.WatchInterval = time.Hour
	pol.SettleDelay = 0
	return pol
}

func newTestCrawler(sess page.Session, a adapter.Adapter, store storage.Gateway) *Crawler {
	return New(sess, a, store, testPolicy(), testLogger(), nil)
}

func TestCycleRecordsOnce(t *testing.T) {
	sess := &fakeSession{snap: singlePostSnapshot(), docHeight: 3000}
	ad := &fakeAdapter{platform: types.PlatformTwitter, record: testRecord("twitter:1")}
	store := storage.NewMemoryGateway()
	c := newTestCrawler(sess, ad, store)
	c.state.Store(int32(StateRunning))
	cs := newCrawlSession()

	if !c.cycle(context.Background(), cs) {
		t.Fatal("first cycle should record the post")
	}
	// Same anchor again: dedup, not a second write.
	for i := 0; i < 2; i++ {
		if c.cycle(context.Background(), cs) {
			t.Fatalf("cycle %d re-recorded a seen post", i)
		}
	}

	n, err := store.Count(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("stored %d records, want 1", n)
	}
	if got := c.metrics.Duplicates.Load(); got != 2 {
		t.Fatalf("duplicates = %d, want 2", got)
	}
}

func TestCyclePersistFailureIsRetryable(t *testing.T) {
	sess := &fakeSession{snap: singlePostSnapshot(), docHeight: 3000}
	ad := &fakeAdapter{platform: types.PlatformTwitter, record: testRecord("twitter:1")}
	store := &failingGateway{MemoryGateway: storage.NewMemoryGateway(), failing: 1}
	c := newTestCrawler(sess, ad, store)
	c.state.Store(int32(StateRunning))
	cs := newCrawlSession()

	if c.cycle(context.Background(), cs) {
		t.Fatal("cycle should report no record when persistence fails")
	}
	if _, seen := cs.seen["twitter:1"]; seen {
		t.Fatal("failed persist must not mark the id seen")
	}

	// Next encounter retries and succeeds.
	if !c.cycle(context.Background(), cs) {
		t.Fatal("retry cycle should record the post")
	}
	if _, err := store.Get(context.Background(), "twitter:1"); err != nil {
		t.Fatalf("record not stored after retry: %v", err)
	}
}

func TestCycleStoppedDuringPersist(t *testing.T) {
	sess := &fakeSession{snap: singlePostSnapshot(), docHeight: 3000}
	ad := &fakeAdapter{platform: types.PlatformTwitter, record: testRecord("twitter:1")}
	store := storage.NewMemoryGateway()
	c := newTestCrawler(sess, ad, store)
	// Stopped while a cycle is in flight: the running re-checks discard
	// the work before the seen set grows.
	c.state.Store(int32(StateStopped))
	cs := newCrawlSession()

	if c.cycle(context.Background(), cs) {
		t.Fatal("stopped crawler must not report a recorded post")
	}
	if _, seen := cs.seen["twitter:1"]; seen {
		t.Fatal("stopped crawler must not grow the seen set")
	}
}

func TestStartBootstrapsSeenFromStore(t *testing.T) {
	sess := &fakeSession{snap: singlePostSnapshot(), docHeight: 3000}
	ad := &fakeAdapter{platform: types.PlatformTwitter, record: testRecord("twitter:1")}
	store := storage.NewMemoryGateway()
	if err := store.Put(context.Background(), testRecord("twitter:1")); err != nil {
		t.Fatal(err)
	}

	c := newTestCrawler(sess, ad, store)
	if err := c.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer c.Stop()

	// The immediate first cycle saw a post already in the store.
	n, err := store.Count(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("stored %d records, want 1 (no duplicate across restarts)", n)
	}
	if got := c.Status().RecordCount; got != 1 {
		t.Fatalf("RecordCount = %d, want 1", got)
	}
}

func TestStartStopLifecycle(t *testing.T) {
	sess := &fakeSession{snap: singlePostSnapshot(), docHeight: 3000}
	ad := &fakeAdapter{platform: types.PlatformTwitter, record: testRecord("twitter:1")}
	c := newTestCrawler(sess, ad, storage.NewMemoryGateway())

	if err := c.Stop(); !errors.Is(err, types.ErrNotRunning) {
		t.Fatalf("stop while stopped = %v, want ErrNotRunning", err)
	}
	if err := c.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := c.Start(context.Background()); !errors.Is(err, types.ErrAlreadyRunning) {
		t.Fatalf("second start = %v, want ErrAlreadyRunning", err)
	}
	if !c.Status().Running {
		t.Fatal("status should report running")
	}
	if err := c.Stop(); err != nil {
		t.Fatal(err)
	}
	if c.Status().Running {
		t.Fatal("status should report stopped")
	}
	if c.Status().Viewing != nil {
		t.Fatal("stop must clear the viewing preview")
	}

	// A stopped crawler can start again.
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	if err := c.Stop(); err != nil {
		t.Fatal(err)
	}
}

func TestConcurrentStartStop(t *testing.T) {
	sess := &fakeSession{snap: singlePostSnapshot(), docHeight: 3000}
	ad := &fakeAdapter{platform: types.PlatformTwitter, record: testRecord("twitter:1")}
	c := newTestCrawler(sess, ad, storage.NewMemoryGateway())

	for i := 0; i < 100; i++ {
		if err := c.Start(context.Background()); err != nil {
			t.Fatalf("iteration %d: start: %v", i, err)
		}
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.Stop()
		}()
		go func() {
			defer wg.Done()
			c.Start(context.Background())
		}()
		wg.Wait()

		// Whichever order the pair ran in, the crawler must land coherent:
		// stoppable if it reports running, restartable either way. A start
		// slipping into a half-torn-down crawler wedges it here.
		if err := c.Stop(); err != nil && !errors.Is(err, types.ErrNotRunning) {
			t.Fatalf("iteration %d: stop: %v", i, err)
		}
		if err := c.Start(context.Background()); err != nil {
			t.Fatalf("iteration %d: restart: %v", i, err)
		}
		if err := c.Stop(); err != nil {
			t.Fatalf("iteration %d: final stop: %v", i, err)
		}
	}
}

func waitForCycles(t *testing.T, c *Crawler, want int64) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.metrics.Cycles.Load() >= want {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("cycles = %d, want %d", c.metrics.Cycles.Load(), want)
}

func TestWatcherCollapsesGrowthBurst(t *testing.T) {
	sess := &fakeSession{snap: singlePostSnapshot(), docHeight: 3000}
	ad := &fakeAdapter{platform: types.PlatformTwitter, record: testRecord("twitter:1"), mode: adapter.ScrollPosition}
	pol := testPolicy()
	pol.WatchInterval = 5 * time.Millisecond
	pol.DebounceDelay = 80 * time.Millisecond
	c := New(sess, ad, storage.NewMemoryGateway(), pol, testLogger(), nil)
	if err := c.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer c.Stop()

	// Give the watcher a tick to take its height baseline.
	time.Sleep(25 * time.Millisecond)
	before := c.metrics.Cycles.Load()

	// A burst of growth events inside one debounce window.
	for i := 1; i <= 3; i++ {
		sess.setDocHeight(3000 + float64(i)*500)
		time.Sleep(5 * time.Millisecond)
	}
	waitForCycles(t, c, before+1)
	time.Sleep(2 * pol.DebounceDelay)
	if got := c.metrics.Cycles.Load(); got != before+1 {
		t.Fatalf("cycles = %d after burst, want %d (rapid growth must collapse into one cycle)", got, before+1)
	}
}

func TestWatcherPassiveURLChange(t *testing.T) {
	sess := &fakeSession{snap: singlePostSnapshot(), docHeight: 3000, url: "https://www.tiktok.com/foryou"}
	ad := &fakeAdapter{platform: types.PlatformTikTok, record: testRecord("tiktok:1"), mode: adapter.ScrollPassive}
	pol := testPolicy()
	pol.WatchInterval = 5 * time.Millisecond
	pol.DebounceDelay = 20 * time.Millisecond
	c := New(sess, ad, storage.NewMemoryGateway(), pol, testLogger(), nil)
	if err := c.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer c.Stop()

	// Give the watcher a tick to take its URL baseline.
	time.Sleep(25 * time.Millisecond)
	before := c.metrics.Cycles.Load()

	// The host page advanced itself to the next video.
	sess.setURL("https://www.tiktok.com/@user/video/2")
	waitForCycles(t, c, before+1)

	// Passive mode watches the URL; height growth alone schedules nothing.
	quiet := c.metrics.Cycles.Load()
	sess.setDocHeight(9000)
	time.Sleep(10 * pol.WatchInterval)
	if got := c.metrics.Cycles.Load(); got != quiet {
		t.Fatalf("cycles = %d after height growth in passive mode, want %d", got, quiet)
	}
}

func TestCycleSkipsCaptionFetchForSeenPost(t *testing.T) {
	sess := &fakeSession{snap: singlePostSnapshot(), docHeight: 3000}
	ad := &captionAdapter{
		fakeAdapter: fakeAdapter{platform: types.PlatformTikTok, record: testRecord("tiktok:1")},
		trackURL:    "https://cdn.example.com/track.vtt",
	}
	store := storage.NewMemoryGateway()
	c := newTestCrawler(sess, ad, store)
	c.state.Store(int32(StateRunning))
	cs := newCrawlSession()

	if !c.cycle(context.Background(), cs) {
		t.Fatal("first cycle should record the post")
	}
	if got := ad.fetches.Load(); got != 1 {
		t.Fatalf("caption fetched %d times for a new post, want 1", got)
	}
	rec, err := store.Get(context.Background(), "tiktok:1")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(rec.Text, "transcribed caption") {
		t.Fatalf("caption not appended: %q", rec.Text)
	}

	// Re-encountering a recorded post must not hit the track CDN again.
	c.cycle(context.Background(), cs)
	if got := ad.fetches.Load(); got != 1 {
		t.Fatalf("caption fetched %d times after dedup, want 1", got)
	}
}

func TestCyclePositionRateLimit(t *testing.T) {
	sess := &fakeSession{snap: singlePostSnapshot(), docHeight: 3000}
	ad := &fakeAdapter{platform: types.PlatformTwitter, record: testRecord("twitter:1")}
	c := newTestCrawler(sess, ad, storage.NewMemoryGateway())
	c.state.Store(int32(StateRunning))
	cs := newCrawlSession()

	for i := 0; i < c.pol.MaxPositionHits+2; i++ {
		c.cycle(context.Background(), cs)
	}
	// Extraction ran for the allowed hits only.
	if got := ad.extractCount(); got != c.pol.MaxPositionHits {
		t.Fatalf("extract ran %d times, want %d", got, c.pol.MaxPositionHits)
	}
	if c.metrics.RateLimited.Load() != 2 {
		t.Fatalf("rate-limited = %d, want 2", c.metrics.RateLimited.Load())
	}
}

func TestAdvanceSkipsAfterNewPost(t *testing.T) {
	sess := &fakeSession{snap: singlePostSnapshot(), docHeight: 3000}
	ad := &fakeAdapter{platform: types.PlatformTwitter, mode: adapter.ScrollPosition}
	c := newTestCrawler(sess, ad, storage.NewMemoryGateway())
	cs := newCrawlSession()
	cs.lastSnap = singlePostSnapshot()
	cs.anchorIdx = 0

	c.advance(context.Background(), cs, true)
	if len(sess.scrollBys) != 0 || sess.bottomScrolls != 0 {
		t.Fatal("a tick that recorded a post must not scroll")
	}
}

func TestAdvancePositionScrollsByAnchorHeight(t *testing.T) {
	sess := &fakeSession{snap: singlePostSnapshot(), docHeight: 3000}
	ad := &fakeAdapter{platform: types.PlatformLinkedIn, mode: adapter.ScrollPosition}
	c := newTestCrawler(sess, ad, storage.NewMemoryGateway())
	cs := newCrawlSession()
	cs.lastSnap = singlePostSnapshot()
	cs.anchorIdx = 0

	c.advance(context.Background(), cs, false)
	if len(sess.scrollBys) != 1 || sess.scrollBys[0] != 400 {
		t.Fatalf("scrollBys = %v, want one scroll of 400 (anchor height)", sess.scrollBys)
	}
}

func TestAdvanceStuckRecovery(t *testing.T) {
	sess := &fakeSession{snap: singlePostSnapshot(), docHeight: 3000}
	ad := &fakeAdapter{platform: types.PlatformTwitter, mode: adapter.ScrollPosition}
	c := newTestCrawler(sess, ad, storage.NewMemoryGateway())
	cs := newCrawlSession()
	cs.lastSnap = singlePostSnapshot()
	cs.anchorIdx = 0
	cs.stuck = c.pol.StuckThreshold - 1

	c.advance(context.Background(), cs, false)
	if sess.bottomScrolls != 1 {
		t.Fatal("threshold reached, expected a jump to bottom")
	}
	if cs.stuck != 0 {
		t.Fatalf("stuck = %d after recovery, want 0", cs.stuck)
	}
	if len(sess.scrollBys) != 0 {
		t.Fatal("recovery tick must not also scroll incrementally")
	}
}

func TestObserveHeightResetsStuck(t *testing.T) {
	cs := newCrawlSession()
	cs.stuck = 3
	cs.lastDocHeight = 1000

	cs.observeHeight(1000)
	if cs.stuck != 3 {
		t.Fatal("unchanged height must not reset the stuck counter")
	}
	cs.observeHeight(1400)
	if cs.stuck != 0 {
		t.Fatal("document growth must reset the stuck counter")
	}
	if cs.lastDocHeight != 1400 {
		t.Fatalf("lastDocHeight = %v, want 1400", cs.lastDocHeight)
	}
}

func TestDecideScroll(t *testing.T) {
	pol := DefaultPolicy()

	snapWith := func(rects ...viewport.Rect) *page.Snapshot {
		s := &page.Snapshot{Viewport: viewport.Viewport{Top: 100, Height: 900}}
		for i, r := range rects {
			s.Candidates = append(s.Candidates, page.Candidate{Index: i, Rect: r})
		}
		return s
	}

	t.Run("passive never scrolls", func(t *testing.T) {
		a := &fakeAdapter{mode: adapter.ScrollPassive}
		dec := decideScroll(a, pol, snapWith(viewport.Rect{Top: 0, Bottom: 400}), 0)
		if dec.Kind != scrollNone {
			t.Fatalf("kind = %v, want none", dec.Kind)
		}
	})

	t.Run("position clamps to max", func(t *testing.T) {
		a := &fakeAdapter{mode: adapter.ScrollPosition}
		dec := decideScroll(a, pol, snapWith(viewport.Rect{Top: 100, Bottom: 2100}), 0)
		if dec.Kind != scrollBy || dec.Amount != pol.MaxScroll {
			t.Fatalf("got %+v, want scrollBy %v", dec, pol.MaxScroll)
		}
	})

	t.Run("position clamps to min", func(t *testing.T) {
		a := &fakeAdapter{mode: adapter.ScrollPosition}
		dec := decideScroll(a, pol, snapWith(viewport.Rect{Top: 100, Bottom: 130}), 0)
		if dec.Kind != scrollBy || dec.Amount != pol.MinScroll {
			t.Fatalf("got %+v, want scrollBy %v", dec, pol.MinScroll)
		}
	})

	t.Run("degenerate rect falls back to safe increment", func(t *testing.T) {
		a := &fakeAdapter{mode: adapter.ScrollPosition}
		dec := decideScroll(a, pol, snapWith(viewport.Rect{Top: 300, Bottom: 300}), 0)
		if dec.Kind != scrollBy || dec.Amount != pol.SafeScroll {
			t.Fatalf("got %+v, want scrollBy %v", dec, pol.SafeScroll)
		}
	})

	t.Run("nil snapshot falls back to safe increment", func(t *testing.T) {
		a := &fakeAdapter{mode: adapter.ScrollPosition}
		dec := decideScroll(a, pol, nil, -1)
		if dec.Kind != scrollBy || dec.Amount != pol.SafeScroll {
			t.Fatalf("got %+v, want scrollBy %v", dec, pol.SafeScroll)
		}
	})

	t.Run("dom order aligns next container", func(t *testing.T) {
		a := &fakeAdapter{mode: adapter.ScrollDOMOrder, next: 1}
		snap := snapWith(
			viewport.Rect{Top: 120, Bottom: 520},
			viewport.Rect{Top: 560, Bottom: 980},
		)
		dec := decideScroll(a, pol, snap, 0)
		want := 560 - pol.NextTopMargin
		if dec.Kind != scrollTo || dec.Amount != want {
			t.Fatalf("got %+v, want scrollTo %v", dec, want)
		}
	})

	t.Run("dom order never scrolls backward", func(t *testing.T) {
		a := &fakeAdapter{mode: adapter.ScrollDOMOrder, next: 1}
		// Next container measured above the current offset.
		snap := snapWith(
			viewport.Rect{Top: 120, Bottom: 520},
			viewport.Rect{Top: 60, Bottom: 110},
		)
		dec := decideScroll(a, pol, snap, 0)
		if dec.Kind != scrollBy || dec.Amount != pol.SafeScroll {
			t.Fatalf("got %+v, want forward scrollBy %v", dec, pol.SafeScroll)
		}
	})

	t.Run("dom order at end of content sweeps by viewport fraction", func(t *testing.T) {
		a := &fakeAdapter{mode: adapter.ScrollDOMOrder, next: -1}
		snap := snapWith(viewport.Rect{Top: 120, Bottom: 520})
		dec := decideScroll(a, pol, snap, 0)
		want := 900 * pol.ViewportFraction
		if dec.Kind != scrollBy || dec.Amount != want {
			t.Fatalf("got %+v, want scrollBy %v", dec, want)
		}
	})
}

func TestPositionTrackerWindow(t *testing.T) {
	pt := newPositionTracker()
	base := time.Now()

	for i := 1; i <= 3; i++ {
		if got := pt.hit(500, 40, base.Add(time.Duration(i)*time.Second), 15*time.Second); got != i {
			t.Fatalf("hit %d returned %d", i, got)
		}
	}
	// Nearby position lands in the same bucket.
	if got := pt.hit(510, 40, base.Add(4*time.Second), 15*time.Second); got != 4 {
		t.Fatalf("nearby position counted %d, want 4", got)
	}
	// Outside the window everything has expired.
	if got := pt.hit(500, 40, base.Add(30*time.Second), 15*time.Second); got != 1 {
		t.Fatalf("post-window hit counted %d, want 1", got)
	}
	// A distant position is independent.
	if got := pt.hit(5000, 40, base.Add(31*time.Second), 15*time.Second); got != 1 {
		t.Fatalf("distant position counted %d, want 1", got)
	}
}
