package page

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/atmaxmoj/socialmediascrawler/internal/types"
	"github.com/atmaxmoj/socialmediascrawler/internal/viewport"
)

// snapshotJS collects geometry for all elements matching a selector plus the
// window scroll state, in one evaluation so the rects and the scroll offset
// are mutually consistent. Rects come back in document coordinates.
const snapshotJS = `(sel) => {
	const sy = window.scrollY;
	const rects = Array.from(document.querySelectorAll(sel)).map(el => {
		const r = el.getBoundingClientRect();
		return { top: r.top + sy, bottom: r.bottom + sy, left: r.left, right: r.right };
	});
	return JSON.stringify({
		rects: rects,
		scrollY: sy,
		viewportHeight: window.innerHeight,
		docHeight: Math.max(document.body.scrollHeight, document.documentElement.scrollHeight),
		url: location.href,
		title: document.title,
	});
}`

type snapshotGeometry struct {
	Rects []struct {
		Top    float64 `json:"top"`
		Bottom float64 `json:"bottom"`
		Left   float64 `json:"left"`
		Right  float64 `json:"right"`
	} `json:"rects"`
	ScrollY        float64 `json:"scrollY"`
	ViewportHeight float64 `json:"viewportHeight"`
	DocHeight      float64 `json:"docHeight"`
	URL            string  `json:"url"`
	Title          string  `json:"title"`
}

// RodSession drives a live feed page through a Chromium instance via Rod.
type RodSession struct {
	browser *rod.Browser
	page    *rod.Page
	logger  *slog.Logger
	owned   bool // whether we launched the browser and should close it
}

// Options configures how the session reaches a browser.
type Options struct {
	// ControlURL attaches to an already-running Chromium DevTools endpoint.
	// Empty means launch a fresh instance.
	ControlURL string
	// Headless applies only when launching.
	Headless bool
	// Stealth patches the page to mask automation fingerprints. Social
	// platforms aggressively detect headless browsers, so this defaults on.
	Stealth bool
	// UserAgent overrides the browser UA when non-empty.
	UserAgent string
	// NavigateTimeout bounds initial navigation.
	NavigateTimeout time.Duration
}

// NewRodSession connects to (or launches) a browser and opens the feed URL.
func NewRodSession(ctx context.Context, feedURL string, opts Options, logger *slog.Logger) (*RodSession, error) {
	s := &RodSession{logger: logger.With("component", "rod_session")}

	controlURL := opts.ControlURL
	if controlURL == "" {
		l := launcher.New().
			Headless(opts.Headless).
			Set("disable-blink-features", "AutomationControlled")
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch browser: %w", err)
		}
		controlURL = u
		s.owned = true
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	s.browser = browser

	var pg *rod.Page
	var err error
	if opts.Stealth {
		pg, err = stealth.Page(browser)
	} else {
		pg, err = browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	}
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("open page: %w", err)
	}
	s.page = pg

	if opts.UserAgent != "" {
		if err := pg.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: opts.UserAgent}); err != nil {
			s.logger.Warn("failed to set user agent", "error", err)
		}
	}

	timeout := opts.NavigateTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if err := pg.Timeout(timeout).Navigate(feedURL); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("navigate %s: %w", feedURL, err)
	}
	if err := pg.Timeout(timeout).WaitStable(500 * time.Millisecond); err != nil {
		s.logger.Warn("page stability timeout, continuing", "url", feedURL, "error", err)
	}

	s.logger.Info("session ready", "url", feedURL, "owned_browser", s.owned)
	return s, nil
}

// Snapshot implements Session.
func (s *RodSession) Snapshot(ctx context.Context, selector string) (*Snapshot, error) {
	res, err := s.page.Context(ctx).Eval(snapshotJS, selector)
	if err != nil {
		return nil, &types.SessionError{Op: "snapshot geometry", Err: err}
	}

	var geo snapshotGeometry
	if err := json.Unmarshal([]byte(res.Value.Str()), &geo); err != nil {
		return nil, &types.SessionError{Op: "snapshot decode", Err: err}
	}

	html, err := s.page.Context(ctx).HTML()
	if err != nil {
		return nil, &types.SessionError{Op: "snapshot html", Err: err}
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &types.SessionError{Op: "snapshot parse", Err: err}
	}

	snap := &Snapshot{
		Doc: doc,
		Viewport: viewport.Viewport{
			Top:    geo.ScrollY,
			Height: geo.ViewportHeight,
		},
		DocHeight: geo.DocHeight,
		URL:       geo.URL,
		Title:     geo.Title,
	}

	// Pair rects with goquery matches by document order. Virtualized feeds
	// can mutate between the eval and the HTML read; when the counts drift,
	// pair the shared prefix and drop the tail.
	sels := doc.Find(selector)
	n := sels.Length()
	if len(geo.Rects) < n {
		n = len(geo.Rects)
	}
	for i := 0; i < n; i++ {
		r := geo.Rects[i]
		snap.Candidates = append(snap.Candidates, Candidate{
			Index:     i,
			Selection: sels.Eq(i),
			Rect:      viewport.Rect{Top: r.Top, Bottom: r.Bottom, Left: r.Left, Right: r.Right},
		})
	}
	return snap, nil
}

// ScrollBy implements Session using a smooth window scroll.
func (s *RodSession) ScrollBy(ctx context.Context, dy float64) error {
	_, err := s.page.Context(ctx).Eval(`(dy) => window.scrollBy({ top: dy, behavior: "smooth" })`, dy)
	if err != nil {
		return &types.SessionError{Op: "scroll by", Err: err}
	}
	return nil
}

// ScrollTo implements Session.
func (s *RodSession) ScrollTo(ctx context.Context, y float64) error {
	_, err := s.page.Context(ctx).Eval(`(y) => window.scrollTo({ top: y, behavior: "smooth" })`, y)
	if err != nil {
		return &types.SessionError{Op: "scroll to", Err: err}
	}
	return nil
}

// ScrollToBottom implements Session with an instant jump, deliberately not
// smooth: stuck recovery wants the lazy loader tripped immediately.
func (s *RodSession) ScrollToBottom(ctx context.Context) error {
	_, err := s.page.Context(ctx).Eval(`() => window.scrollTo(0, Math.max(document.body.scrollHeight, document.documentElement.scrollHeight))`)
	if err != nil {
		return &types.SessionError{Op: "scroll to bottom", Err: err}
	}
	return nil
}

// DocHeight implements Session.
func (s *RodSession) DocHeight(ctx context.Context) (float64, error) {
	res, err := s.page.Context(ctx).Eval(`() => Math.max(document.body.scrollHeight, document.documentElement.scrollHeight)`)
	if err != nil {
		return 0, &types.SessionError{Op: "doc height", Err: err}
	}
	return res.Value.Num(), nil
}

// URL implements Session.
func (s *RodSession) URL(ctx context.Context) (string, error) {
	info, err := s.page.Context(ctx).Info()
	if err != nil {
		return "", &types.SessionError{Op: "page info", Err: err}
	}
	return info.URL, nil
}

// RightClick implements PointerAutomator by dispatching a contextmenu click
// at a document-coordinate point.
func (s *RodSession) RightClick(ctx context.Context, x, y float64) error {
	return s.clickAt(ctx, x, y, proto.InputMouseButtonRight)
}

// Click implements PointerAutomator. Coordinates are document coordinates.
func (s *RodSession) Click(ctx context.Context, x, y float64) error {
	return s.clickAt(ctx, x, y, proto.InputMouseButtonLeft)
}

func (s *RodSession) clickAt(ctx context.Context, x, y float64, button proto.InputMouseButton) error {
	// Callers pass document coordinates; the mouse wants viewport ones.
	res, err := s.page.Context(ctx).Eval(`() => window.scrollY`)
	if err != nil {
		return &types.SessionError{Op: "scroll offset", Err: err}
	}
	vy := y - res.Value.Num()
	if err := s.page.Context(ctx).Mouse.MoveTo(proto.NewPoint(x, vy)); err != nil {
		return &types.SessionError{Op: "mouse move", Err: err}
	}
	if err := s.page.Context(ctx).Mouse.Click(button, 1); err != nil {
		return &types.SessionError{Op: "click", Err: err}
	}
	return nil
}

// Close implements Session. Only browsers we launched ourselves are closed;
// an attached user browser is left alone.
func (s *RodSession) Close() error {
	if s.page != nil {
		_ = s.page.Close()
	}
	if s.owned && s.browser != nil {
		return s.browser.Close()
	}
	return nil
}
