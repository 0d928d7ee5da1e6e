package adapter

import (
	"github.com/atmaxmoj/socialmediascrawler/internal/page"
	"github.com/atmaxmoj/socialmediascrawler/internal/types"
)

// Facebook extracts feed posts. The feed exposes no reliably durable post id
// in-place, so most records fall back to content-hash identity; a /posts/
// permalink is used when the markup happens to carry one. Containers are
// recycled by the virtualized feed, so advancement is position based.
type Facebook struct {
	table fieldTable
}

// NewFacebook returns the facebook.com adapter.
func NewFacebook() *Facebook {
	return &Facebook{table: fieldTable{
		Permalink: FieldSpec{
			CSSAttr(`a[href*="/posts/"]`, "href"),
			CSSAttr(`a[href*="story_fbid="]`, "href"),
		},
		AuthorName: FieldSpec{
			CSS(`h3 strong a`),
			CSS(`h3 a[role="link"]`),
			CSS(`strong a[role="link"]`),
			XPath(`.//h3//a[1]`),
		},
		Avatar: FieldSpec{
			CSSAttr(`svg image`, "xlink:href"),
			CSSAttr(`a[role="link"] img`, "src"),
		},
		ProfileURL: FieldSpec{
			CSSAttr(`h3 a[role="link"]`, "href"),
			CSSAttr(`strong a[role="link"]`, "href"),
		},
		Text: FieldSpec{
			CSS(`div[data-ad-preview="message"]`),
			CSS(`div[data-ad-comet-preview="message"]`),
			CSS(`div[dir="auto"][style*="text-align"]`),
		},
		Timestamp: FieldSpec{
			CSSAttr(`abbr[data-utime]`, "data-utime"),
			CSSAttr(`a[role="link"] span[title]`, "title"),
			CSS(`span[id^="jsc"] a[role="link"]`),
		},
		Images: FieldSpec{
			CSSAttr(`a[role="link"] img[src*="scontent"]`, "src"),
			CSSAttr(`img[data-visualcompletion="media-vc-image"]`, "src"),
		},
		Videos: FieldSpec{
			CSSAttr(`video`, "src"),
		},
		Links: FieldSpec{
			CSSAttr(`a[href*="l.facebook.com/l.php"]`, "href"),
			CSSAttr(`a[href^="https://"][rel="nofollow"]`, "href"),
		},
		Metrics: []metricSpec{
			{Name: types.MetricLikes, Spec: FieldSpec{
				CSSAttr(`span[aria-label*="reaction"]`, "aria-label"),
				Regex(`([\d,.]+[KkMm]?)\s+(?:reactions?|likes?)`),
			}},
			{Name: types.MetricComments, Spec: FieldSpec{
				Regex(`([\d,.]+[KkMm]?)\s+comments?`),
			}},
			{Name: types.MetricReposts, Spec: FieldSpec{
				Regex(`([\d,.]+[KkMm]?)\s+shares?`),
			}},
		},
		NAMetrics: []string{types.MetricViews},
		Replies: replySpec{
			Container: `div[aria-label^="Comment by"]`,
			Author: FieldSpec{
				CSS(`span[dir="auto"] a span`),
				CSS(`a[role="link"] span`),
			},
			Text: FieldSpec{
				CSS(`div[dir="auto"]`),
			},
			Timestamp: FieldSpec{
				CSS(`a[role="link"][href*="comment_id"]`),
			},
		},
	}}
}

func (f *Facebook) Platform() types.Platform { return types.PlatformFacebook }

func (f *Facebook) ContainerSelector() string {
	return `div[role="article"][aria-posinset], div[data-pagelet^="FeedUnit"]`
}

func (f *Facebook) Extract(snap *page.Snapshot, c *page.Candidate) *types.PostRecord {
	rec := f.table.extract(types.PlatformFacebook, snap, c)
	if rec == nil {
		return nil
	}
	if label := f.GroupLabel(snap); label != "" {
		rec.GroupLabel = label
	}
	return rec
}

func (f *Facebook) ExtractPreview(c *page.Candidate) *types.Preview {
	return f.table.preview(types.PlatformFacebook, c)
}

func (f *Facebook) NextContainer(current int, cands []page.Candidate) int {
	return nextBelowByPosition(current, cands)
}

func (f *Facebook) GroupLabel(snap *page.Snapshot) string {
	if label := groupFromPath(snap.URL, "groups", "pages", "watch", "marketplace", "profile.php"); label != "" {
		return label
	}
	return groupFromTitle(snap.Title, "Facebook")
}

func (f *Facebook) ScrollMode() ScrollMode { return ScrollPosition }
