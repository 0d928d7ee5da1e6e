// Package viewport selects the post element the user is currently reading
// from the candidates rendered on the page. It works on plain rectangles so
// it has no dependency on any adapter or browser type.
package viewport

// Rect is an element's bounding box in document coordinates.
type Rect struct {
	Top    float64
	Bottom float64
	Left   float64
	Right  float64
}

// Height returns the rect's height, never negative.
func (r Rect) Height() float64 {
	if r.Bottom < r.Top {
		return 0
	}
	return r.Bottom - r.Top
}

// Viewport is the visible window in document coordinates.
type Viewport struct {
	Top    float64 // scroll offset
	Height float64
}

func (v Viewport) Bottom() float64 { return v.Top + v.Height }

// Scoring holds the anchor-scoring policy knobs. Zero value is unusable;
// call DefaultScoring.
type Scoring struct {
	// MinVisibility is the fraction of an element that must be on screen
	// before it can be "being read" at all. Keeps a post peeking in at the
	// bottom edge from stealing the anchor.
	MinVisibility float64
	// TopTolerance is how far above the viewport top an element's own top
	// may sit and still earn the near-top bonus, in pixels.
	TopTolerance float64
	// NearTopBonus rewards elements whose top edge has not scrolled past.
	NearTopBonus float64
	// NearTopDistance is how far below the viewport top an element's top may
	// sit and still count as "close to top" for the readable bonus, in pixels.
	NearTopDistance float64
	// ReadableBonus further rewards elements that are near the top and more
	// than half visible: the post whose author line is still readable.
	ReadableBonus float64
}

// DefaultScoring returns the standard policy values.
func DefaultScoring() Scoring {
	return Scoring{
		MinVisibility:   0.3,
		TopTolerance:    50,
		NearTopBonus:    20,
		NearTopDistance: 150,
		ReadableBonus:   30,
	}
}

// Score computes the anchor score for one rect, or ok=false when the rect is
// below the visibility threshold or outside the viewport entirely.
func (s Scoring) Score(r Rect, vp Viewport) (float64, bool) {
	h := r.Height()
	if h <= 0 || vp.Height <= 0 {
		return 0, false
	}
	overlapTop := max(r.Top, vp.Top)
	overlapBottom := min(r.Bottom, vp.Bottom())
	overlap := overlapBottom - overlapTop
	if overlap <= 0 {
		return 0, false
	}
	ratio := overlap / h
	if ratio < s.MinVisibility {
		return 0, false
	}

	// Distance of the element's top from the viewport top, in viewport
	// coordinates. Negative means the top has scrolled past.
	relTop := r.Top - vp.Top

	score := ratio*100 - abs(relTop)/10
	if relTop >= -s.TopTolerance {
		score += s.NearTopBonus
		if relTop <= s.NearTopDistance && ratio > 0.5 {
			score += s.ReadableBonus
		}
	}
	return score, true
}

// SelectAnchor returns the index of the rect that should be treated as the
// current reading position, or -1 when no candidate clears the visibility
// threshold. Ties break toward document order (lower index wins), so the
// comparison is strictly greater-than.
func SelectAnchor(rects []Rect, vp Viewport, scoring Scoring) int {
	best := -1
	bestScore := 0.0
	for i, r := range rects {
		score, ok := scoring.Score(r, vp)
		if !ok {
			continue
		}
		if best == -1 || score > bestScore {
			best = i
			bestScore = score
		}
	}
	return best
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
