package adapter

import (
	"github.com/atmaxmoj/socialmediascrawler/internal/page"
	"github.com/atmaxmoj/socialmediascrawler/internal/types"
)

// Instagram extracts feed posts. Post shortcodes from /p/ and /reel/ links
// serve as the native id. The feed recycles article elements while
// scrolling, so advancement is position based.
type Instagram struct {
	table fieldTable
}

// NewInstagram returns the instagram.com adapter.
func NewInstagram() *Instagram {
	return &Instagram{table: fieldTable{
		Permalink: FieldSpec{
			CSSAttr(`a[href^="/p/"]`, "href"),
			CSSAttr(`a[href^="/reel/"]`, "href"),
			CSSAttr(`a[href*="/p/"]`, "href"),
		},
		AuthorName: FieldSpec{
			CSS(`header a[role="link"] span`),
			CSS(`header a[role="link"]`),
			XPath(`.//header//a[1]`),
		},
		Handle: FieldSpec{
			CSS(`header a[role="link"]`),
		},
		Avatar: FieldSpec{
			CSSAttr(`header img[alt*="profile picture"]`, "src"),
			CSSAttr(`header img`, "src"),
		},
		ProfileURL: FieldSpec{
			CSSAttr(`header a[role="link"]`, "href"),
		},
		Text: FieldSpec{
			CSS(`div[data-testid="post-comment-root"] > span`),
			CSS(`h1[dir="auto"]`),
			CSS(`ul li span[dir="auto"]`),
		},
		Timestamp: FieldSpec{
			CSSAttr(`time`, "datetime"),
			CSSAttr(`time`, "title"),
			CSS(`time`),
		},
		Images: FieldSpec{
			CSSAttr(`div[role="button"] img[srcset]`, "src"),
			CSSAttr(`article img[style*="object-fit"]`, "src"),
			CSSAttr(`img[decoding="auto"]`, "src"),
		},
		Videos: FieldSpec{
			CSSAttr(`video`, "src"),
		},
		Links: FieldSpec{
			CSSAttr(`a[href^="https://"]`, "href"),
		},
		Metrics: []metricSpec{
			{Name: types.MetricLikes, Spec: FieldSpec{
				CSS(`section a[href$="/liked_by/"] span`),
				Regex(`([\d,.]+[KkMm]?)\s+likes?`),
			}},
			{Name: types.MetricComments, Spec: FieldSpec{
				Regex(`View all ([\d,.]+[KkMm]?) comments`),
				Regex(`([\d,.]+[KkMm]?)\s+comments?`),
			}},
		},
		// Neither a repost nor a view counter is rendered in the feed.
		NAMetrics: []string{types.MetricReposts, types.MetricViews},
		Replies: replySpec{
			Container: `ul ul div[role="button"]`,
			Author: FieldSpec{
				CSS(`a[role="link"] span`),
				CSS(`h3 a`),
			},
			Text: FieldSpec{
				CSS(`span[dir="auto"]`),
			},
			Timestamp: FieldSpec{
				CSSAttr(`time`, "datetime"),
			},
		},
	}}
}

func (ig *Instagram) Platform() types.Platform { return types.PlatformInstagram }

func (ig *Instagram) ContainerSelector() string {
	return `article[role="presentation"], main article`
}

func (ig *Instagram) Extract(snap *page.Snapshot, c *page.Candidate) *types.PostRecord {
	rec := ig.table.extract(types.PlatformInstagram, snap, c)
	if rec == nil {
		return nil
	}
	if label := ig.GroupLabel(snap); label != "" {
		rec.GroupLabel = label
	}
	return rec
}

func (ig *Instagram) ExtractPreview(c *page.Candidate) *types.Preview {
	return ig.table.preview(types.PlatformInstagram, c)
}

func (ig *Instagram) NextContainer(current int, cands []page.Candidate) int {
	return nextBelowByPosition(current, cands)
}

func (ig *Instagram) GroupLabel(snap *page.Snapshot) string {
	if label := groupFromPath(snap.URL, "p", "reel", "reels", "explore", "stories", "accounts"); label != "" {
		return label
	}
	return groupFromTitle(snap.Title, "Instagram")
}

func (ig *Instagram) ScrollMode() ScrollMode { return ScrollPosition }
