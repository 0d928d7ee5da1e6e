// Package page abstracts the live feed page the crawler is attached to.
// A Session produces point-in-time snapshots of the rendered document plus
// geometry, and accepts scroll commands. The crawl loop and the adapters
// only ever see snapshots, which keeps them testable against fixtures.
package page

import (
	"context"

	"github.com/PuerkitoBio/goquery"

	"github.com/atmaxmoj/socialmediascrawler/internal/viewport"
)

// Candidate pairs one post-container match with its rendered geometry.
// Selections and rects are collected in document order, so index i in the
// snapshot's candidate slice refers to the same element in both worlds.
type Candidate struct {
	Index     int
	Selection *goquery.Selection
	Rect      viewport.Rect
}

// Snapshot is one consistent capture of the page: parsed document, the
// candidate containers matching the adapter's selector, and scroll state.
type Snapshot struct {
	Doc        *goquery.Document
	Candidates []Candidate
	Viewport   viewport.Viewport
	DocHeight  float64
	URL        string
	Title      string
}

// Candidate returns the candidate at index i, or nil when out of range.
func (s *Snapshot) Candidate(i int) *Candidate {
	if i < 0 || i >= len(s.Candidates) {
		return nil
	}
	return &s.Candidates[i]
}

// Session is the crawl loop's view of the live page.
type Session interface {
	// Snapshot captures the document, the containers matching selector and
	// the current geometry in one pass.
	Snapshot(ctx context.Context, selector string) (*Snapshot, error)

	// ScrollBy scrolls the window down by dy document pixels.
	ScrollBy(ctx context.Context, dy float64) error

	// ScrollTo scrolls the window so the document offset y is at the top.
	ScrollTo(ctx context.Context, y float64) error

	// ScrollToBottom jump-scrolls to the absolute document bottom. Used by
	// stuck recovery to force the host page to lazy-load.
	ScrollToBottom(ctx context.Context) error

	// DocHeight returns the document's current scrollable height. Cheap
	// probe for the content-mutation watcher; a full Snapshot is not needed
	// just to notice growth.
	DocHeight(ctx context.Context) (float64, error)

	// URL returns the page's current location.
	URL(ctx context.Context) (string, error)

	// Close releases the underlying browser resources.
	Close() error
}

// PointerAutomator is the optional capability of dispatching synthetic
// pointer events at a document point. Only the adapters that drive a native
// download affordance need it; it is best-effort by contract.
type PointerAutomator interface {
	// RightClick dispatches a contextmenu event at the given point.
	RightClick(ctx context.Context, x, y float64) error
	// Click dispatches a primary-button click at the given point.
	Click(ctx context.Context, x, y float64) error
}
