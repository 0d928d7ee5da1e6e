package adapter

import (
	"github.com/atmaxmoj/socialmediascrawler/internal/page"
	"github.com/atmaxmoj/socialmediascrawler/internal/types"
)

// Twitter extracts tweets from the x.com timeline. Tweets render in stable
// DOM order inside the timeline column, so advancement walks siblings, and
// every tweet carries a /status/ permalink with a durable numeric id.
type Twitter struct {
	table fieldTable
}

// NewTwitter returns the x.com adapter.
func NewTwitter() *Twitter {
	return &Twitter{table: fieldTable{
		// The anchor wrapping the timestamp is the tweet's own permalink;
		// other /status/ links may point at a quoted tweet.
		Permalink: FieldSpec{
			CSSAttr(`a[href*="/status/"]:has(time)`, "href"),
			CSSAttr(`a[href*="/status/"]:not([href$="/analytics"])`, "href"),
		},
		AuthorName: FieldSpec{
			CSS(`div[data-testid="User-Name"] a span span`),
			CSS(`div[data-testid="User-Name"] span`),
			XPath(`.//div[@data-testid="User-Name"]//span[1]`),
		},
		Handle: FieldSpec{
			Regex(`@[A-Za-z0-9_]+`),
		},
		Avatar: FieldSpec{
			CSSAttr(`div[data-testid="Tweet-User-Avatar"] img`, "src"),
			CSSAttr(`div[data-testid="UserAvatar-Container-unknown"] img`, "src"),
		},
		ProfileURL: FieldSpec{
			CSSAttr(`div[data-testid="User-Name"] a`, "href"),
		},
		Text: FieldSpec{
			CSS(`div[data-testid="tweetText"]`),
			CSS(`div[lang]`),
		},
		Timestamp: FieldSpec{
			CSSAttr(`time`, "datetime"),
			CSS(`time`),
		},
		Images: FieldSpec{
			CSSAttr(`div[data-testid="tweetPhoto"] img`, "src"),
			CSSAttr(`img[alt="Image"]`, "src"),
		},
		Videos: FieldSpec{
			CSSAttr(`div[data-testid="videoPlayer"] video`, "src"),
			CSSAttr(`video`, "src"),
		},
		GIFs: FieldSpec{
			CSSAttr(`video[poster*="tweet_video_thumb"]`, "poster"),
		},
		Links: FieldSpec{
			CSSAttr(`div[data-testid="card.wrapper"] a`, "href"),
			CSSAttr(`a[href^="https://t.co/"]`, "href"),
		},
		Metrics: []metricSpec{
			{Name: types.MetricLikes, Spec: FieldSpec{
				CSS(`button[data-testid="like"] span[data-testid="app-text-transition-container"]`),
				CSSAttr(`button[data-testid="like"]`, "aria-label"),
			}},
			{Name: types.MetricReposts, Spec: FieldSpec{
				CSS(`button[data-testid="retweet"] span[data-testid="app-text-transition-container"]`),
				CSSAttr(`button[data-testid="retweet"]`, "aria-label"),
			}},
			{Name: types.MetricComments, Spec: FieldSpec{
				CSS(`button[data-testid="reply"] span[data-testid="app-text-transition-container"]`),
				CSSAttr(`button[data-testid="reply"]`, "aria-label"),
			}},
			{Name: types.MetricViews, Spec: FieldSpec{
				CSS(`a[href$="/analytics"] span[data-testid="app-text-transition-container"]`),
				CSSAttr(`a[href$="/analytics"]`, "aria-label"),
			}},
		},
	}}
}

func (t *Twitter) Platform() types.Platform { return types.PlatformTwitter }

func (t *Twitter) ContainerSelector() string {
	return `article[data-testid="tweet"], article[role="article"]`
}

func (t *Twitter) Extract(snap *page.Snapshot, c *page.Candidate) *types.PostRecord {
	rec := t.table.extract(types.PlatformTwitter, snap, c)
	if rec == nil {
		return nil
	}
	if label := t.GroupLabel(snap); label != "" {
		rec.GroupLabel = label
	}
	return rec
}

func (t *Twitter) ExtractPreview(c *page.Candidate) *types.Preview {
	return t.table.preview(types.PlatformTwitter, c)
}

func (t *Twitter) NextContainer(current int, cands []page.Candidate) int {
	return nextInDOMOrder(current, cands)
}

func (t *Twitter) GroupLabel(snap *page.Snapshot) string {
	if label := groupFromPath(snap.URL, "home", "search", "explore", "i", "notifications"); label != "" {
		return label
	}
	return groupFromTitle(snap.Title, "X", "Twitter", "Home")
}

func (t *Twitter) ScrollMode() ScrollMode { return ScrollDOMOrder }
