package adapter

import (
	"github.com/atmaxmoj/socialmediascrawler/internal/identity"
	"github.com/atmaxmoj/socialmediascrawler/internal/page"
	"github.com/atmaxmoj/socialmediascrawler/internal/types"
)

// LinkedIn extracts feed updates. The feed virtualizes aggressively and
// recycles containers out of document order, so advancement is position
// based. Every update carries an activity URN on its container, which serves
// as the native id.
type LinkedIn struct {
	table fieldTable
}

// NewLinkedIn returns the linkedin.com adapter.
func NewLinkedIn() *LinkedIn {
	return &LinkedIn{table: fieldTable{
		// The URN lives on the container itself, not a descendant.
		Permalink: FieldSpec{
			{Kind: KindXPath, Query: `self::*`, Attr: "data-urn"},
			{Kind: KindXPath, Query: `self::*`, Attr: "data-id"},
			CSSAttr(`div[data-urn]`, "data-urn"),
		},
		AuthorName: FieldSpec{
			CSS(`span.update-components-actor__name span[aria-hidden="true"]`),
			CSS(`span.update-components-actor__name`),
			CSS(`span.feed-shared-actor__name`),
		},
		Avatar: FieldSpec{
			CSSAttr(`img.update-components-actor__avatar-image`, "src"),
			CSSAttr(`div.update-components-actor__avatar img`, "src"),
		},
		ProfileURL: FieldSpec{
			CSSAttr(`a.update-components-actor__meta-link`, "href"),
			CSSAttr(`a.app-aware-link[href*="/in/"]`, "href"),
			CSSAttr(`a.app-aware-link[href*="/company/"]`, "href"),
		},
		Text: FieldSpec{
			CSS(`div.update-components-text span.break-words`),
			CSS(`div.update-components-text`),
			CSS(`div.feed-shared-text`),
		},
		Timestamp: FieldSpec{
			CSSAttr(`time`, "datetime"),
			CSS(`span.update-components-actor__sub-description span[aria-hidden="true"]`),
			CSS(`span.update-components-actor__sub-description`),
		},
		Images: FieldSpec{
			CSSAttr(`div.update-components-image img`, "src"),
			CSSAttr(`img.ivm-view-attr__img--centered`, "src"),
		},
		Videos: FieldSpec{
			CSSAttr(`video.vjs-tech`, "src"),
			CSSAttr(`video`, "src"),
		},
		Documents: FieldSpec{
			CSSAttr(`iframe.document-s-container__document-element`, "src"),
			CSSAttr(`div.update-components-document__container iframe`, "src"),
		},
		Articles: FieldSpec{
			CSSAttr(`a.update-components-article__meta`, "href"),
			CSSAttr(`div.update-components-article a`, "href"),
		},
		Links: FieldSpec{
			CSSAttr(`div.update-components-text a[href^="https://"]`, "href"),
		},
		Metrics: []metricSpec{
			{Name: types.MetricLikes, Spec: FieldSpec{
				CSS(`span.social-details-social-counts__reactions-count`),
				CSSAttr(`button[aria-label*="reaction"]`, "aria-label"),
			}},
			{Name: types.MetricComments, Spec: FieldSpec{
				CSS(`li.social-details-social-counts__comments button span`),
				Regex(`([\d,.]+[KkMm]?)\s+comments?`),
			}},
			{Name: types.MetricReposts, Spec: FieldSpec{
				Regex(`([\d,.]+[KkMm]?)\s+reposts?`),
			}},
		},
		// The feed exposes no view counter at all, unlike a present-but-zero
		// count.
		NAMetrics: []string{types.MetricViews},
		Replies: replySpec{
			Container: `article.comments-comment-entity, article.comments-comment-item`,
			Author: FieldSpec{
				CSS(`span.comments-comment-meta__description-title`),
				CSS(`span.comments-post-meta__name-text`),
			},
			Text: FieldSpec{
				CSS(`span.comments-comment-item__main-content`),
				CSS(`div.comments-comment-item-content-body`),
			},
			Timestamp: FieldSpec{
				CSS(`time.comments-comment-meta__data`),
				CSS(`time`),
			},
		},
	}}
}

func (l *LinkedIn) Platform() types.Platform { return types.PlatformLinkedIn }

func (l *LinkedIn) ContainerSelector() string {
	return `div.feed-shared-update-v2, div[data-urn*="urn:li:activity"]`
}

func (l *LinkedIn) Extract(snap *page.Snapshot, c *page.Candidate) *types.PostRecord {
	rec := l.table.extract(types.PlatformLinkedIn, snap, c)
	if rec == nil {
		return nil
	}
	if label := l.GroupLabel(snap); label != "" {
		rec.GroupLabel = label
	}
	return rec
}

func (l *LinkedIn) ExtractPreview(c *page.Candidate) *types.Preview {
	return l.table.preview(types.PlatformLinkedIn, c)
}

func (l *LinkedIn) NextContainer(current int, cands []page.Candidate) int {
	return nextBelowByPosition(current, cands)
}

func (l *LinkedIn) GroupLabel(snap *page.Snapshot) string {
	// Company and school pages put the org slug right after the kind
	// segment; the member feed has no account context in the path.
	if label := groupFromPath(snap.URL, "feed", "company", "school", "showcase", "in", "posts"); label != "" {
		return label
	}
	if snap.Doc != nil {
		h := identity.CleanText(snap.Doc.Find(`h1.org-top-card-summary__title, h1.top-card-layout__title`).First().Text())
		if h != "" {
			return h
		}
	}
	return groupFromTitle(snap.Title, "LinkedIn", "Feed")
}

func (l *LinkedIn) ScrollMode() ScrollMode { return ScrollPosition }
