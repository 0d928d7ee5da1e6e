package adapter

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/atmaxmoj/socialmediascrawler/internal/identity"
	"github.com/atmaxmoj/socialmediascrawler/internal/page"
	"github.com/atmaxmoj/socialmediascrawler/internal/types"
)

var tiktokVideoID = regexp.MustCompile(`/video/(\d+)`)

// TikTok extracts from the fullscreen For You feed. The host page advances
// itself between videos, so the adapter runs in passive scroll mode: the
// crawl loop never scrolls and re-extracts when the page URL changes. The
// video id lives in the URL, not the container.
//
// TikTok also carries the two platform-idiosyncratic capabilities: fetching
// the remote caption track over HTTP, and triggering the player's native
// download entry through synthetic pointer events.
type TikTok struct {
	table  fieldTable
	client *http.Client
}

// NewTikTok returns the tiktok.com adapter.
func NewTikTok() *TikTok {
	return &TikTok{
		client: &http.Client{Timeout: 15 * time.Second},
		table: fieldTable{
			AuthorName: FieldSpec{
				CSS(`a[data-e2e="video-author-nickname"]`),
				CSS(`span[data-e2e="browse-username"]`),
				CSS(`h3[data-e2e="browse-user-nickname"]`),
			},
			Handle: FieldSpec{
				CSS(`a[data-e2e="video-author-uniqueid"]`),
				CSS(`span[data-e2e="browse-uniqueid"]`),
			},
			Avatar: FieldSpec{
				CSSAttr(`span[data-e2e="video-avatar"] img`, "src"),
				CSSAttr(`a[data-e2e="video-author-avatar"] img`, "src"),
			},
			ProfileURL: FieldSpec{
				CSSAttr(`a[data-e2e="video-author-avatar"]`, "href"),
				CSSAttr(`a[href^="/@"]`, "href"),
			},
			Text: FieldSpec{
				CSS(`div[data-e2e="video-desc"]`),
				CSS(`h1[data-e2e="video-desc"]`),
				CSS(`span[data-e2e="new-desc-span"]`),
			},
			Timestamp: FieldSpec{
				CSS(`span[data-e2e="browser-nickname"] span:last-child`),
				CSSAttr(`time`, "datetime"),
			},
			Videos: FieldSpec{
				CSSAttr(`video`, "src"),
				CSSAttr(`video source`, "src"),
			},
			Links: FieldSpec{
				CSSAttr(`a[data-e2e="video-music"]`, "href"),
			},
			Metrics: []metricSpec{
				{Name: types.MetricLikes, Spec: FieldSpec{
					CSS(`strong[data-e2e="like-count"]`),
					CSS(`strong[data-e2e="browse-like-count"]`),
				}},
				{Name: types.MetricComments, Spec: FieldSpec{
					CSS(`strong[data-e2e="comment-count"]`),
					CSS(`strong[data-e2e="browse-comment-count"]`),
				}},
				{Name: types.MetricReposts, Spec: FieldSpec{
					CSS(`strong[data-e2e="share-count"]`),
				}},
			},
			// The For You player shows no view counter in place.
			NAMetrics: []string{types.MetricViews},
			Replies: replySpec{
				Container: `div[data-e2e="comment-item"]`,
				Author: FieldSpec{
					CSS(`span[data-e2e="comment-username-1"]`),
					CSS(`a[data-e2e^="comment-username"]`),
				},
				Text: FieldSpec{
					CSS(`p[data-e2e="comment-text"]`),
					CSS(`span[data-e2e^="comment-level"]`),
				},
				Timestamp: FieldSpec{
					CSS(`div[data-e2e="comment-time"]`),
				},
			},
		},
	}
}

func (tk *TikTok) Platform() types.Platform { return types.PlatformTikTok }

func (tk *TikTok) ContainerSelector() string {
	return `div[data-e2e="feed-item"], div[data-e2e="recommend-list-item-container"]`
}

func (tk *TikTok) Extract(snap *page.Snapshot, c *page.Candidate) *types.PostRecord {
	rec := tk.table.extract(types.PlatformTikTok, snap, c)
	if rec == nil {
		return nil
	}
	// The durable id sits in the page URL while a video is active, not in
	// the container markup. Recompute identity with it when present.
	if native := tk.nativeFromURL(snap.URL); native != "" {
		rec.ID = identity.ComputeID(types.PlatformTikTok, native, rec.Author.Name, rec.Text, rec.Timestamp)
	}
	if label := tk.GroupLabel(snap); label != "" {
		rec.GroupLabel = label
	}
	return rec
}

func (tk *TikTok) ExtractPreview(c *page.Candidate) *types.Preview {
	return tk.table.preview(types.PlatformTikTok, c)
}

func (tk *TikTok) NextContainer(current int, cands []page.Candidate) int {
	// Passive mode: the host page decides what plays next.
	return -1
}

func (tk *TikTok) GroupLabel(snap *page.Snapshot) string {
	if label := groupFromPath(snap.URL, "foryou", "following", "explore", "video"); label != "" {
		return label
	}
	return groupFromTitle(snap.Title, "TikTok")
}

func (tk *TikTok) ScrollMode() ScrollMode { return ScrollPassive }

func (tk *TikTok) nativeFromURL(pageURL string) string {
	m := tiktokVideoID.FindStringSubmatch(pageURL)
	if m == nil {
		return ""
	}
	return m[1]
}

// CaptionTrackURL returns the caption track source rendered in the player,
// empty when the video has none.
func (tk *TikTok) CaptionTrackURL(c *page.Candidate) string {
	if c == nil || c.Selection == nil {
		return ""
	}
	spec := FieldSpec{
		CSSAttr(`video track[kind="captions"]`, "src"),
		CSSAttr(`video track`, "src"),
	}
	return spec.First(c.Selection)
}

// FetchCaption downloads and decodes a caption track. The CDN serves
// brotli- or gzip-compressed WebVTT; both are handled, and the raw body is
// passed through untouched otherwise. Best-effort: callers treat failure as
// "no caption", never as a cycle failure.
func (tk *TikTok) FetchCaption(ctx context.Context, trackURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, trackURL, nil)
	if err != nil {
		return "", fmt.Errorf("caption request: %w", err)
	}
	req.Header.Set("Accept-Encoding", "br, gzip")

	resp, err := tk.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("caption fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("caption fetch: unexpected status %d", resp.StatusCode)
	}

	var body io.Reader = resp.Body
	switch resp.Header.Get("Content-Encoding") {
	case "br":
		body = brotli.NewReader(resp.Body)
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return "", fmt.Errorf("caption gzip: %w", err)
		}
		defer gz.Close()
		body = gz
	}

	data, err := io.ReadAll(io.LimitReader(body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("caption read: %w", err)
	}
	return stripVTT(string(data)), nil
}

var vttCueMeta = regexp.MustCompile(`(?m)^(WEBVTT.*|NOTE.*|\d+|[\d:.]+\s+-->\s+[\d:.]+.*)$`)

// stripVTT reduces a WebVTT payload to its cue text.
func stripVTT(vtt string) string {
	return identity.CleanText(vttCueMeta.ReplaceAllString(vtt, " "))
}

// TriggerDownload drives the player's own "Download video" context-menu
// entry: right-click on the video, click where the menu entry renders, then
// a dismissal click. Pure UI automation against markup we don't control,
// so failures are expected and reported, never fatal.
func (tk *TikTok) TriggerDownload(ctx context.Context, ptr page.PointerAutomator, c *page.Candidate) error {
	if ptr == nil || c == nil {
		return fmt.Errorf("download: no pointer automation available")
	}
	r := c.Rect
	cx := (r.Left + r.Right) / 2
	cy := (r.Top + r.Bottom) / 2

	if err := ptr.RightClick(ctx, cx, cy); err != nil {
		return fmt.Errorf("download: context menu: %w", err)
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(400 * time.Millisecond):
	}
	// First entry of the context menu sits just below and right of the
	// pointer.
	if err := ptr.Click(ctx, cx+40, cy+24); err != nil {
		return fmt.Errorf("download: menu item: %w", err)
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(200 * time.Millisecond):
	}
	// Dismiss whatever is left open.
	if err := ptr.Click(ctx, r.Left+4, r.Top+4); err != nil {
		return fmt.Errorf("download: dismiss: %w", err)
	}
	return nil
}
