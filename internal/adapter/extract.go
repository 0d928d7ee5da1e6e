package adapter

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/atmaxmoj/socialmediascrawler/internal/identity"
	"github.com/atmaxmoj/socialmediascrawler/internal/page"
	"github.com/atmaxmoj/socialmediascrawler/internal/types"
)

// metricSpec binds one canonical metric name to its fallback locators.
// Order matters: it is the CSV column order rationale, not extraction order.
type metricSpec struct {
	Name string
	Spec FieldSpec
}

// replySpec locates the visible nested comments inside a post container.
type replySpec struct {
	Container string // CSS selector for one reply block
	Author    FieldSpec
	Text      FieldSpec
	Timestamp FieldSpec
}

// fieldTable is the declarative field → locator mapping for one platform.
// Every lookup is an ordered fallback list; a drifted platform markup is
// fixed by adding a strategy here, not by touching extraction code.
type fieldTable struct {
	// Permalink yields the href whose trailing segment is the platform's
	// durable native post id. Empty spec (or no match) falls back to
	// content hashing.
	Permalink FieldSpec

	AuthorName FieldSpec
	Handle     FieldSpec
	Avatar     FieldSpec
	ProfileURL FieldSpec

	Text      FieldSpec
	Timestamp FieldSpec

	Images    FieldSpec
	Videos    FieldSpec
	GIFs      FieldSpec
	Documents FieldSpec
	Articles  FieldSpec
	Links     FieldSpec

	Metrics []metricSpec
	// NAMetrics names canonical metrics the platform structurally lacks.
	// They are recorded as the NA sentinel, distinct from a present zero.
	NAMetrics []string

	Replies replySpec
}

// extract runs the table against one candidate subtree. Each field is pulled
// independently so one failed locator degrades that field alone. Returns nil
// only when the element has neither text nor an author name.
func (t *fieldTable) extract(platform types.Platform, snap *page.Snapshot, c *page.Candidate) *types.PostRecord {
	if c == nil || c.Selection == nil {
		return nil
	}
	sel := c.Selection

	rec := types.NewPostRecord(platform, snap.URL)
	rec.Author = types.Author{
		Name:       t.AuthorName.First(sel),
		Handle:     t.Handle.First(sel),
		Avatar:     t.Avatar.First(sel),
		ProfileURL: t.ProfileURL.First(sel),
	}
	rec.Text = t.Text.First(sel)
	if !rec.Valid() {
		return nil
	}
	rec.Timestamp = t.Timestamp.First(sel)

	for _, m := range t.Metrics {
		rec.Metrics[m.Name] = identity.ParseCount(m.Spec.First(sel))
	}
	for _, name := range t.NAMetrics {
		rec.Metrics[name] = types.MetricNA
	}

	rec.Media.Images = absoluteLinks(t.Images.All(sel))
	rec.Media.Videos = absoluteLinks(t.Videos.All(sel))
	rec.Media.GIFs = absoluteLinks(t.GIFs.All(sel))
	if len(t.Documents) > 0 {
		rec.Media.Documents = absoluteLinks(t.Documents.All(sel))
	}
	if len(t.Articles) > 0 {
		rec.Media.Articles = absoluteLinks(t.Articles.All(sel))
	}
	rec.Links = absoluteLinks(t.Links.All(sel))
	rec.Hashtags = identity.Hashtags(rec.Text)
	rec.Mentions = identity.Mentions(rec.Text)
	rec.Replies = t.extractReplies(sel)

	native := identity.NativeFromPermalink(t.Permalink.First(sel))
	rec.ID = identity.ComputeID(platform, native, rec.Author.Name, rec.Text, rec.Timestamp)
	return rec
}

// preview is the cheap side-effect-free variant feeding the "currently
// viewing" display. It recomputes the id the same way extract does so the
// affordance and the dedup check agree on identity.
func (t *fieldTable) preview(platform types.Platform, c *page.Candidate) *types.Preview {
	if c == nil || c.Selection == nil {
		return nil
	}
	sel := c.Selection
	author := t.AuthorName.First(sel)
	text := t.Text.First(sel)
	if author == "" && text == "" {
		return nil
	}
	native := identity.NativeFromPermalink(t.Permalink.First(sel))
	return &types.Preview{
		ID:     identity.ComputeID(platform, native, author, text, t.Timestamp.First(sel)),
		Text:   text,
		Author: author,
	}
}

func (t *fieldTable) extractReplies(sel *goquery.Selection) []types.Reply {
	replies := []types.Reply{}
	if t.Replies.Container == "" {
		return replies
	}
	sel.Find(t.Replies.Container).EachWithBreak(func(_ int, rs *goquery.Selection) bool {
		r := types.Reply{
			Author:    t.Replies.Author.First(rs),
			Text:      t.Replies.Text.First(rs),
			Timestamp: t.Replies.Timestamp.First(rs),
		}
		if r.Author == "" && r.Text == "" {
			return true
		}
		replies = append(replies, r)
		return len(replies) < types.MaxReplies
	})
	return replies
}
