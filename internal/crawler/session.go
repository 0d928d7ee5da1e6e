package crawler

import (
	"math"
	"time"

	"github.com/atmaxmoj/socialmediascrawler/internal/page"
)

// crawlSession is the per-run mutable state. It is owned exclusively by the
// run-loop goroutine; nothing else touches it, so no locking is needed.
// Created on start, thrown away on stop.
type crawlSession struct {
	seen      map[string]struct{}
	positions *positionTracker

	// stuck counts consecutive advancement attempts without document
	// growth; lastDocHeight is the growth baseline.
	stuck         int
	lastDocHeight float64

	// lastSnap/anchorIdx carry the most recent cycle's geometry into the
	// scroll-advancement step.
	lastSnap  *page.Snapshot
	anchorIdx int
}

func newCrawlSession() *crawlSession {
	return &crawlSession{
		seen:      make(map[string]struct{}),
		positions: newPositionTracker(),
		anchorIdx: -1,
	}
}

// observeHeight folds a newly observed document height into stuck tracking.
// Growth resets the counter.
func (cs *crawlSession) observeHeight(h float64) {
	if h > cs.lastDocHeight {
		cs.lastDocHeight = h
		cs.stuck = 0
	}
}

// positionTracker rate-limits re-processing of the same anchor position.
// Positions, not ids: a stuck viewport keeps presenting the same pixel
// offset even when content reflows underneath it.
type positionTracker struct {
	hits map[int64][]time.Time
}

func newPositionTracker() *positionTracker {
	return &positionTracker{hits: make(map[int64][]time.Time)}
}

// hit records an occurrence of an anchor at position pos and returns how
// many occurrences the same position bucket has seen within the window,
// including this one.
func (pt *positionTracker) hit(pos, tolerance float64, now time.Time, window time.Duration) int {
	if tolerance <= 0 {
		tolerance = 1
	}
	bucket := int64(math.Round(pos / tolerance))

	kept := pt.hits[bucket][:0]
	for _, t := range pt.hits[bucket] {
		if now.Sub(t) <= window {
			kept = append(kept, t)
		}
	}
	kept = append(kept, now)
	pt.hits[bucket] = kept

	// Stale buckets accumulate while scrolling a long feed; sweep them
	// opportunistically so the map stays bounded.
	if len(pt.hits) > 256 {
		for b, ts := range pt.hits {
			if b == bucket {
				continue
			}
			if len(ts) == 0 || now.Sub(ts[len(ts)-1]) > window {
				delete(pt.hits, b)
			}
		}
	}
	return len(kept)
}
