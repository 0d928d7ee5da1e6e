package crawler

import (
	"github.com/atmaxmoj/socialmediascrawler/internal/adapter"
	"github.com/atmaxmoj/socialmediascrawler/internal/page"
)

// scrollKind is the advancement action chosen for one tick.
type scrollKind int

const (
	scrollNone scrollKind = iota
	scrollBy              // relative scroll by Amount pixels
	scrollTo              // absolute scroll to document offset Amount
	scrollBottom
)

// scrollDecision is the outcome of the advancement policy for one tick.
type scrollDecision struct {
	Kind   scrollKind
	Amount float64
}

// decideScroll computes the advancement for a tick on which no new post was
// recorded. snap is the cycle's snapshot (may be nil when the snapshot
// itself failed) and anchorIdx the selected anchor (-1 when none).
//
// Every path that scrolls moves strictly forward: relative deltas are
// clamped positive and absolute targets behind the current offset fall back
// to the safe increment instead.
func decideScroll(a adapter.Adapter, pol Policy, snap *page.Snapshot, anchorIdx int) scrollDecision {
	switch a.ScrollMode() {
	case adapter.ScrollPassive:
		// The host page advances itself.
		return scrollDecision{Kind: scrollNone}
	case adapter.ScrollDOMOrder:
		return decideDOMOrderScroll(a, pol, snap, anchorIdx)
	default:
		return decidePositionScroll(pol, snap, anchorIdx)
	}
}

// decidePositionScroll advances by the anchor's own rendered height so the
// next post lands near the viewport top even when DOM order is meaningless.
func decidePositionScroll(pol Policy, snap *page.Snapshot, anchorIdx int) scrollDecision {
	if snap == nil {
		return scrollDecision{Kind: scrollBy, Amount: pol.SafeScroll}
	}
	c := snap.Candidate(anchorIdx)
	if c == nil {
		return scrollDecision{Kind: scrollBy, Amount: pol.SafeScroll}
	}
	h := c.Rect.Height()
	if h <= 0 {
		// Degenerate geometry from a mid-reflow measurement.
		return scrollDecision{Kind: scrollBy, Amount: pol.SafeScroll}
	}
	if h < pol.MinScroll {
		h = pol.MinScroll
	}
	if h > pol.MaxScroll {
		h = pol.MaxScroll
	}
	return scrollDecision{Kind: scrollBy, Amount: h}
}

// decideDOMOrderScroll aligns the adapter's next container near the viewport
// top, or nudges the host page's lazy loader when loaded content is
// exhausted.
func decideDOMOrderScroll(a adapter.Adapter, pol Policy, snap *page.Snapshot, anchorIdx int) scrollDecision {
	if snap == nil {
		return scrollDecision{Kind: scrollBy, Amount: pol.SafeScroll}
	}
	if anchorIdx >= 0 {
		if next := a.NextContainer(anchorIdx, snap.Candidates); next >= 0 {
			if c := snap.Candidate(next); c != nil {
				target := c.Rect.Top - pol.NextTopMargin
				if target > snap.Viewport.Top {
					return scrollDecision{Kind: scrollTo, Amount: target}
				}
				// The next container sits at or above the current offset;
				// reflow artifact. Keep moving forward regardless.
				return scrollDecision{Kind: scrollBy, Amount: pol.SafeScroll}
			}
		}
	}
	// End of loaded content: reveal more by a viewport fraction.
	amount := snap.Viewport.Height * pol.ViewportFraction
	if amount <= 0 {
		amount = pol.SafeScroll
	}
	return scrollDecision{Kind: scrollBy, Amount: amount}
}
