// Package adapter holds the per-platform extraction logic: how to find post
// containers in a feed page, how to pull a normalized record out of one, and
// how to advance to the next post. The crawl loop only ever sees the Adapter
// interface, never a concrete platform.
package adapter

import (
	"context"
	"net/url"
	"strings"

	"github.com/atmaxmoj/socialmediascrawler/internal/page"
	"github.com/atmaxmoj/socialmediascrawler/internal/types"
)

// ScrollMode selects the crawl loop's advancement strategy for a platform.
type ScrollMode int

const (
	// ScrollPosition advances by the anchor's rendered height. Used where
	// virtualization reshuffles DOM order and sibling walks are unreliable.
	ScrollPosition ScrollMode = iota
	// ScrollDOMOrder advances to the next container in document order.
	ScrollDOMOrder
	// ScrollPassive never scrolls programmatically: the host page advances
	// itself (autoplay feeds) and the loop just re-extracts on URL changes.
	ScrollPassive
)

func (m ScrollMode) String() string {
	switch m {
	case ScrollPosition:
		return "position"
	case ScrollDOMOrder:
		return "dom-order"
	case ScrollPassive:
		return "passive"
	default:
		return "unknown"
	}
}

// Adapter is the platform-specific capability set the crawl loop drives.
//
// A field whose locators stop matching degrades to its default, and only an
// element with no usable content at all yields a nil record. Host markup
// drift is expected, not exceptional.
type Adapter interface {
	// Platform identifies the adapter.
	Platform() types.Platform

	// ContainerSelector is the CSS selector (possibly comma-joined
	// alternatives) matching "this looks like a post" containers. Zero
	// matches on a page is normal, not an error.
	ContainerSelector() string

	// Extract pulls a full record from one container. Returns nil when the
	// element holds no extractable content.
	Extract(snap *page.Snapshot, c *page.Candidate) *types.PostRecord

	// ExtractPreview cheaply extracts id/text/author for the "currently
	// viewing" affordance. No side effects, never fails: a container with
	// nothing usable yields nil.
	ExtractPreview(c *page.Candidate) *types.Preview

	// NextContainer returns the index of the candidate that should become
	// the anchor after the current one, or -1 at the end of loaded content.
	NextContainer(current int, cands []page.Candidate) int

	// GroupLabel derives the best-effort account/company label from page
	// context. Advisory only; empty means unknown.
	GroupLabel(snap *page.Snapshot) string

	// ScrollMode selects the advancement strategy for this platform.
	ScrollMode() ScrollMode
}

// CaptionFetcher is the optional capability of resolving a post's remote
// caption/subtitle track over the network. The crawl loop treats the fetch
// as a suspension point: failure degrades to "no caption", never to a cycle
// error.
type CaptionFetcher interface {
	// CaptionTrackURL returns the track source for a candidate, empty when
	// none is rendered.
	CaptionTrackURL(c *page.Candidate) string
	// FetchCaption downloads and decodes the track to plain text.
	FetchCaption(ctx context.Context, trackURL string) (string, error)
}

// NativeDownloader is the optional capability of triggering the host page's
// own download affordance through synthetic pointer events. Best-effort;
// adapters without the trick simply don't implement it.
type NativeDownloader interface {
	TriggerDownload(ctx context.Context, ptr page.PointerAutomator, c *page.Candidate) error
}

// nextInDOMOrder is the shared DOM-order advance: the following candidate in
// document order, or -1 past the end.
func nextInDOMOrder(current int, cands []page.Candidate) int {
	if current < 0 || current+1 >= len(cands) {
		return -1
	}
	return current + 1
}

// nextBelowByPosition is the shared position-based advance: the candidate
// whose top edge sits nearest below the current one's top, regardless of DOM
// order. Virtualized feeds reshuffle children, so index order means nothing.
func nextBelowByPosition(current int, cands []page.Candidate) int {
	if current < 0 || current >= len(cands) {
		return -1
	}
	curTop := cands[current].Rect.Top
	best := -1
	bestTop := 0.0
	for i, c := range cands {
		if i == current || c.Rect.Top <= curTop {
			continue
		}
		if best == -1 || c.Rect.Top < bestTop {
			best = i
			bestTop = c.Rect.Top
		}
	}
	return best
}

// All returns one instance of every registered adapter.
func All() []Adapter {
	return []Adapter{
		NewTwitter(),
		NewLinkedIn(),
		NewInstagram(),
		NewFacebook(),
		NewTikTok(),
	}
}

// ForPlatform returns the adapter for a platform, or nil when unknown.
func ForPlatform(p types.Platform) Adapter {
	for _, a := range All() {
		if a.Platform() == p {
			return a
		}
	}
	return nil
}

// Detect picks the adapter for a feed URL by host, or nil when no platform
// matches.
func Detect(rawURL string) Adapter {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	switch {
	case host == "twitter.com" || host == "x.com" || strings.HasSuffix(host, ".twitter.com") || strings.HasSuffix(host, ".x.com"):
		return NewTwitter()
	case host == "linkedin.com" || strings.HasSuffix(host, ".linkedin.com"):
		return NewLinkedIn()
	case host == "instagram.com" || strings.HasSuffix(host, ".instagram.com"):
		return NewInstagram()
	case host == "facebook.com" || strings.HasSuffix(host, ".facebook.com"):
		return NewFacebook()
	case host == "tiktok.com" || strings.HasSuffix(host, ".tiktok.com"):
		return NewTikTok()
	}
	return nil
}
