package adapter

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/atmaxmoj/socialmediascrawler/internal/page"
	"github.com/atmaxmoj/socialmediascrawler/internal/types"
	"github.com/atmaxmoj/socialmediascrawler/internal/viewport"
)

// snapFromHTML builds a snapshot the way the rod session would, with
// synthetic stacked rects standing in for rendered geometry.
func snapFromHTML(t *testing.T, html, selector, url, title string) *page.Snapshot {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	snap := &page.Snapshot{
		Doc:      doc,
		Viewport: viewport.Viewport{Top: 0, Height: 900},
		URL:      url,
		Title:    title,
	}
	doc.Find(selector).Each(func(i int, sel *goquery.Selection) {
		top := float64(i) * 600
		snap.Candidates = append(snap.Candidates, page.Candidate{
			Index:     i,
			Selection: sel,
			Rect:      viewport.Rect{Top: top, Bottom: top + 580, Left: 0, Right: 600},
		})
	})
	snap.DocHeight = float64(len(snap.Candidates)) * 600
	return snap
}

const tweetFixture = `<html><head><title>Jane Doe (@janedoe) / X</title></head><body>
<article data-testid="tweet">
  <div data-testid="Tweet-User-Avatar"><img src="https://pbs.example.com/avatar.jpg"></div>
  <div data-testid="User-Name">
    <a href="/janedoe"><span><span>Jane Doe</span></span></a>
    <span>@janedoe</span>
  </div>
  <a href="/janedoe/status/1790000000000000001"><time datetime="2024-05-13T09:30:00.000Z">May 13</time></a>
  <div data-testid="tweetText">Shipping the new release today! #golang @bob https://t.co/abc</div>
  <div data-testid="tweetPhoto"><img src="https://pbs.example.com/media1.jpg"></div>
  <button data-testid="reply"><span data-testid="app-text-transition-container">12</span></button>
  <button data-testid="retweet"><span data-testid="app-text-transition-container">34</span></button>
  <button data-testid="like"><span data-testid="app-text-transition-container">1.2K</span></button>
  <a href="/janedoe/status/1790000000000000001/analytics"><span data-testid="app-text-transition-container">56K</span></a>
</article>
<article data-testid="tweet">
  <div data-testid="User-Name"><a href="/other"><span><span>Other User</span></span></a></div>
  <a href="/other/status/1790000000000000002"><time datetime="2024-05-13T09:31:00.000Z">May 13</time></a>
  <div data-testid="tweetText">Second tweet, no media.</div>
</article>
</body></html>`

func TestTwitterExtract(t *testing.T) {
	tw := NewTwitter()
	snap := snapFromHTML(t, tweetFixture, tw.ContainerSelector(), "https://x.com/janedoe", "Jane Doe (@janedoe) / X")
	if len(snap.Candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(snap.Candidates))
	}

	rec := tw.Extract(snap, snap.Candidate(0))
	if rec == nil {
		t.Fatal("extract returned nil for a full tweet")
	}
	if rec.ID != "twitter:1790000000000000001" {
		t.Errorf("native id not used: %q", rec.ID)
	}
	if rec.Platform != types.PlatformTwitter {
		t.Errorf("platform = %q", rec.Platform)
	}
	if rec.Author.Name != "Jane Doe" {
		t.Errorf("author name = %q", rec.Author.Name)
	}
	if rec.Author.Handle != "@janedoe" {
		t.Errorf("handle = %q", rec.Author.Handle)
	}
	if rec.Timestamp != "2024-05-13T09:30:00.000Z" {
		t.Errorf("timestamp should prefer the datetime attribute: %q", rec.Timestamp)
	}
	if rec.Metric(types.MetricLikes) != 1200 {
		t.Errorf("likes = %d", rec.Metric(types.MetricLikes))
	}
	if rec.Metric(types.MetricViews) != 56000 {
		t.Errorf("views = %d", rec.Metric(types.MetricViews))
	}
	if len(rec.Media.Images) != 1 || rec.Media.Images[0] != "https://pbs.example.com/media1.jpg" {
		t.Errorf("images = %v", rec.Media.Images)
	}
	if len(rec.Hashtags) != 1 || rec.Hashtags[0] != "#golang" {
		t.Errorf("hashtags = %v", rec.Hashtags)
	}
	if rec.GroupLabel != "janedoe" {
		t.Errorf("group label = %q", rec.GroupLabel)
	}
}

// A tweet stripped of every optional locator still yields a record with
// defaults, not an error.
func TestTwitterGracefulDegradation(t *testing.T) {
	tw := NewTwitter()
	snap := snapFromHTML(t, tweetFixture, tw.ContainerSelector(), "https://x.com/home", "Home / X")

	rec := tw.Extract(snap, snap.Candidate(1))
	if rec == nil {
		t.Fatal("extract returned nil for a text-and-author-only tweet")
	}
	if rec.Metric(types.MetricLikes) != 0 || rec.Metric(types.MetricViews) != 0 {
		t.Errorf("missing metrics should default to 0: %v", rec.Metrics)
	}
	if rec.Author.Avatar != "" {
		t.Errorf("avatar should default empty, got %q", rec.Author.Avatar)
	}
	if len(rec.Media.Images) != 0 || len(rec.Media.Videos) != 0 || len(rec.Media.GIFs) != 0 {
		t.Errorf("media should default empty: %+v", rec.Media)
	}
	if rec.Links == nil || rec.Hashtags == nil || rec.Mentions == nil || rec.Replies == nil {
		t.Error("collections must be empty slices, not nil")
	}
}

func TestTwitterExtractNothingUsable(t *testing.T) {
	tw := NewTwitter()
	html := `<html><body><article data-testid="tweet"><div class="promo"></div></article></body></html>`
	snap := snapFromHTML(t, html, tw.ContainerSelector(), "https://x.com/home", "X")
	if rec := tw.Extract(snap, snap.Candidate(0)); rec != nil {
		t.Errorf("empty container should yield nil, got %+v", rec)
	}
	if p := tw.ExtractPreview(snap.Candidate(0)); p != nil {
		t.Errorf("empty container preview should be nil, got %+v", p)
	}
}

func TestTwitterPreviewAgreesWithExtract(t *testing.T) {
	tw := NewTwitter()
	snap := snapFromHTML(t, tweetFixture, tw.ContainerSelector(), "https://x.com/janedoe", "X")

	rec := tw.Extract(snap, snap.Candidate(0))
	prev := tw.ExtractPreview(snap.Candidate(0))
	if prev == nil {
		t.Fatal("preview is nil")
	}
	if prev.ID != rec.ID {
		t.Errorf("preview and extract disagree on identity: %q vs %q", prev.ID, rec.ID)
	}
	if prev.Author != rec.Author.Name {
		t.Errorf("preview author = %q", prev.Author)
	}
}

// Identity schemes with and without the native id locator must differ but
// each stay self-consistent.
func TestTwitterIDSchemes(t *testing.T) {
	tw := NewTwitter()
	withID := snapFromHTML(t, tweetFixture, tw.ContainerSelector(), "https://x.com/janedoe", "X")
	stripped := strings.ReplaceAll(tweetFixture, `href="/janedoe/status/1790000000000000001"`, `href="#"`)
	withoutID := snapFromHTML(t, stripped, tw.ContainerSelector(), "https://x.com/janedoe", "X")

	a1 := tw.Extract(withID, withID.Candidate(0))
	a2 := tw.Extract(withID, withID.Candidate(0))
	b1 := tw.Extract(withoutID, withoutID.Candidate(0))
	b2 := tw.Extract(withoutID, withoutID.Candidate(0))

	if a1.ID != a2.ID || b1.ID != b2.ID {
		t.Error("ids not stable across repeated extraction")
	}
	if a1.ID == b1.ID {
		t.Error("native and hashed schemes should produce different ids")
	}
	if !strings.HasPrefix(b1.ID, "twitter:h") {
		t.Errorf("hashed id missing scheme marker: %q", b1.ID)
	}
}

func TestTwitterNextContainerDOMOrder(t *testing.T) {
	tw := NewTwitter()
	snap := snapFromHTML(t, tweetFixture, tw.ContainerSelector(), "https://x.com/home", "X")
	if next := tw.NextContainer(0, snap.Candidates); next != 1 {
		t.Errorf("next = %d, want 1", next)
	}
	if next := tw.NextContainer(1, snap.Candidates); next != -1 {
		t.Errorf("next past end = %d, want -1", next)
	}
}

const linkedinFixture = `<html><head><title>Acme Corp | LinkedIn</title></head><body>
<div class="feed-shared-update-v2" data-urn="urn:li:activity:7195000000000000001">
  <img class="update-components-actor__avatar-image" src="https://media.example.com/ceo.jpg">
  <a class="update-components-actor__meta-link" href="https://www.linkedin.com/in/ceo"></a>
  <span class="update-components-actor__name"><span aria-hidden="true">Pat CEO</span></span>
  <span class="update-components-actor__sub-description"><span aria-hidden="true">2d • Edited</span></span>
  <div class="update-components-text"><span class="break-words">We are hiring! #jobs</span></div>
  <div class="update-components-image"><img src="https://media.example.com/post.jpg"></div>
  <span class="social-details-social-counts__reactions-count">87</span>
  <li class="social-details-social-counts__comments"><button><span>14 comments</span></button></li>
  <article class="comments-comment-entity">
    <span class="comments-comment-meta__description-title">Sam Dev</span>
    <span class="comments-comment-item__main-content">Congrats!</span>
  </article>
</div>
</body></html>`

func TestLinkedInExtract(t *testing.T) {
	li := NewLinkedIn()
	snap := snapFromHTML(t, linkedinFixture, li.ContainerSelector(), "https://www.linkedin.com/company/acme/posts/", "Acme Corp | LinkedIn")
	if len(snap.Candidates) == 0 {
		t.Fatal("no candidates matched")
	}

	rec := li.Extract(snap, snap.Candidate(0))
	if rec == nil {
		t.Fatal("extract returned nil")
	}
	if rec.ID != "linkedin:urn:li:activity:7195000000000000001" {
		t.Errorf("urn id = %q", rec.ID)
	}
	if rec.Author.Name != "Pat CEO" {
		t.Errorf("author = %q", rec.Author.Name)
	}
	if rec.Metric(types.MetricLikes) != 87 {
		t.Errorf("likes = %d", rec.Metric(types.MetricLikes))
	}
	if rec.Metric(types.MetricComments) != 14 {
		t.Errorf("comments = %d", rec.Metric(types.MetricComments))
	}
	if rec.Metric(types.MetricViews) != types.MetricNA {
		t.Errorf("views should be the NA sentinel, got %d", rec.Metric(types.MetricViews))
	}
	if len(rec.Replies) != 1 || rec.Replies[0].Author != "Sam Dev" {
		t.Errorf("replies = %+v", rec.Replies)
	}
	if rec.GroupLabel != "acme" {
		t.Errorf("group label = %q", rec.GroupLabel)
	}
}

func TestLinkedInNextContainerByPosition(t *testing.T) {
	li := NewLinkedIn()
	// Candidates deliberately out of DOM order positionally: the virtualized
	// feed reshuffles children.
	cands := []page.Candidate{
		{Index: 0, Rect: viewport.Rect{Top: 1200, Bottom: 1700}},
		{Index: 1, Rect: viewport.Rect{Top: 0, Bottom: 500}},
		{Index: 2, Rect: viewport.Rect{Top: 600, Bottom: 1100}},
	}
	if next := li.NextContainer(1, cands); next != 2 {
		t.Errorf("nearest below should win regardless of index: got %d, want 2", next)
	}
	if next := li.NextContainer(0, cands); next != -1 {
		t.Errorf("bottom-most has no successor: got %d", next)
	}
}

const facebookFixture = `<html><head><title>Facebook</title></head><body>
<div role="article" aria-posinset="1">
  <h3><strong><a role="link" href="https://facebook.com/acme">Acme Page</a></strong></h3>
  <div data-ad-preview="message">Big announcement coming Friday.</div>
  <span>241 comments</span><span>58 shares</span>
</div>
</body></html>`

func TestFacebookContentHashIdentity(t *testing.T) {
	fb := NewFacebook()
	snap := snapFromHTML(t, facebookFixture, fb.ContainerSelector(), "https://www.facebook.com/acme", "Facebook")

	r1 := fb.Extract(snap, snap.Candidate(0))
	r2 := fb.Extract(snap, snap.Candidate(0))
	if r1 == nil || r2 == nil {
		t.Fatal("extract returned nil")
	}
	if !strings.HasPrefix(r1.ID, "facebook:h") {
		t.Errorf("no permalink in markup should force the hash scheme: %q", r1.ID)
	}
	if r1.ID != r2.ID {
		t.Error("hash identity not reproducible")
	}
	if r1.Metric(types.MetricComments) != 241 || r1.Metric(types.MetricReposts) != 58 {
		t.Errorf("metrics = %v", r1.Metrics)
	}
}

const tiktokFixture = `<html><head><title>TikTok</title></head><body>
<div data-e2e="feed-item">
  <a data-e2e="video-author-uniqueid" href="/@dancer">dancer</a>
  <a data-e2e="video-author-nickname">Dana Dancer</a>
  <div data-e2e="video-desc">new routine #dance</div>
  <video src="https://v.example.com/clip.mp4"><track kind="captions" src="https://v.example.com/cap.vtt"></video>
  <strong data-e2e="like-count">103.4K</strong>
  <strong data-e2e="comment-count">892</strong>
</div>
</body></html>`

func TestTikTokExtractUsesPageURLIdentity(t *testing.T) {
	tk := NewTikTok()
	snap := snapFromHTML(t, tiktokFixture, tk.ContainerSelector(), "https://www.tiktok.com/@dancer/video/7300000000000000001", "TikTok")

	rec := tk.Extract(snap, snap.Candidate(0))
	if rec == nil {
		t.Fatal("extract returned nil")
	}
	if rec.ID != "tiktok:7300000000000000001" {
		t.Errorf("video id from page URL should win: %q", rec.ID)
	}
	if rec.Metric(types.MetricLikes) != 103400 {
		t.Errorf("likes = %d", rec.Metric(types.MetricLikes))
	}
	if tk.ScrollMode() != ScrollPassive {
		t.Error("tiktok must run in passive scroll mode")
	}
	if got := tk.CaptionTrackURL(snap.Candidate(0)); got != "https://v.example.com/cap.vtt" {
		t.Errorf("caption track = %q", got)
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		url  string
		want types.Platform
	}{
		{"https://x.com/home", types.PlatformTwitter},
		{"https://twitter.com/jane", types.PlatformTwitter},
		{"https://www.linkedin.com/feed/", types.PlatformLinkedIn},
		{"https://www.instagram.com/", types.PlatformInstagram},
		{"https://www.facebook.com/groups/gophers", types.PlatformFacebook},
		{"https://www.tiktok.com/foryou", types.PlatformTikTok},
	}
	for _, tt := range tests {
		a := Detect(tt.url)
		if a == nil {
			t.Errorf("Detect(%q) = nil", tt.url)
			continue
		}
		if a.Platform() != tt.want {
			t.Errorf("Detect(%q) = %s, want %s", tt.url, a.Platform(), tt.want)
		}
	}
	if a := Detect("https://example.com/feed"); a != nil {
		t.Errorf("unknown host should not match, got %s", a.Platform())
	}
}

func TestFieldSpecFallbackOrder(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<div><span class="new">primary</span><span class="old">fallback</span></div>`))
	if err != nil {
		t.Fatal(err)
	}
	sel := doc.Find("div")

	spec := FieldSpec{CSS(".new"), CSS(".old")}
	if got := spec.First(sel); got != "primary" {
		t.Errorf("first strategy should win: %q", got)
	}

	spec = FieldSpec{CSS(".missing"), CSS(".old")}
	if got := spec.First(sel); got != "fallback" {
		t.Errorf("fallback should fire when primary misses: %q", got)
	}

	spec = FieldSpec{CSS(".missing"), CSS(".gone")}
	if got := spec.First(sel); got != "" {
		t.Errorf("all misses should degrade to empty: %q", got)
	}
}

func TestFieldSpecXPathAndRegex(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<div data-urn="urn:li:activity:99"><p>posted by @sam, 1,234 likes</p></div>`))
	if err != nil {
		t.Fatal(err)
	}
	sel := doc.Find("div")

	urn := FieldSpec{{Kind: KindXPath, Query: `self::*`, Attr: "data-urn"}}
	if got := urn.First(sel); got != "urn:li:activity:99" {
		t.Errorf("xpath self attr = %q", got)
	}

	likes := FieldSpec{Regex(`([\d,]+)\s+likes`)}
	if got := likes.First(sel); got != "1,234" {
		t.Errorf("regex capture = %q", got)
	}
}

func TestStripVTT(t *testing.T) {
	vtt := "WEBVTT\n\n1\n00:00:00.000 --> 00:00:02.000\nhello there\n\n2\n00:00:02.000 --> 00:00:04.000\ngeneral kenobi\n"
	got := stripVTT(vtt)
	if got != "hello there general kenobi" {
		t.Errorf("stripVTT = %q", got)
	}
}
