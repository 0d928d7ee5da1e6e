package types

import (
	"encoding/json"
	"time"
)

// Platform identifies which feed adapter produced a record.
type Platform string

const (
	PlatformTwitter   Platform = "twitter"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformInstagram Platform = "instagram"
	PlatformFacebook  Platform = "facebook"
	PlatformTikTok    Platform = "tiktok"
)

// Platforms lists all supported platforms in a stable order.
func Platforms() []Platform {
	return []Platform{
		PlatformTwitter,
		PlatformLinkedIn,
		PlatformInstagram,
		PlatformFacebook,
		PlatformTikTok,
	}
}

// Valid reports whether p is a known platform.
func (p Platform) Valid() bool {
	switch p {
	case PlatformTwitter, PlatformLinkedIn, PlatformInstagram, PlatformFacebook, PlatformTikTok:
		return true
	}
	return false
}

func (p Platform) String() string { return string(p) }

// GroupUnknown is the sentinel group label when no account/company context
// could be derived from the page.
const GroupUnknown = "unknown"

// MetricNA marks a metric the platform structurally has no concept of,
// as opposed to a metric that is present but currently zero.
const MetricNA = -1

// Metric is a single engagement count. A value of MetricNA means the
// platform has no such concept; zero means "present but zero".
type Metric int64

// MarshalJSON renders MetricNA as the string "NA" so exports distinguish
// "no such concept" from an actual zero.
func (m Metric) MarshalJSON() ([]byte, error) {
	if m == MetricNA {
		return json.Marshal("NA")
	}
	return json.Marshal(int64(m))
}

// UnmarshalJSON accepts either a number or the "NA" sentinel string.
func (m *Metric) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "NA" {
			*m = MetricNA
			return nil
		}
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*m = Metric(n)
	return nil
}

// Int returns the metric as an int64, mapping NA to 0 for tabular export.
func (m Metric) Int() int64 {
	if m == MetricNA {
		return 0
	}
	return int64(m)
}

// Canonical metric names shared across adapters. Each platform fills the
// subset it actually has; the rest default to 0 or MetricNA.
const (
	MetricLikes    = "likes"
	MetricReposts  = "reposts"
	MetricComments = "comments"
	MetricViews    = "views"
)

// Author is the best-effort author block of a post. Only Name is required,
// and even Name may be empty when the markup gave us nothing.
type Author struct {
	Name       string `json:"name" bson:"name"`
	Handle     string `json:"handle,omitempty" bson:"handle,omitempty"`
	Avatar     string `json:"avatar,omitempty" bson:"avatar,omitempty"`
	ProfileURL string `json:"profile_url,omitempty" bson:"profile_url,omitempty"`
}

// Media groups extracted media references by kind. Slices are empty, never nil,
// on records produced by adapters.
type Media struct {
	Images    []string `json:"images" bson:"images"`
	Videos    []string `json:"videos" bson:"videos"`
	GIFs      []string `json:"gifs" bson:"gifs"`
	Documents []string `json:"documents,omitempty" bson:"documents,omitempty"`
	Articles  []string `json:"articles,omitempty" bson:"articles,omitempty"`
}

// Reply is one visible nested comment captured alongside a post. The capture
// is a snapshot of what was rendered, never the full thread.
type Reply struct {
	Author    string `json:"author" bson:"author"`
	Text      string `json:"text" bson:"text"`
	Timestamp string `json:"timestamp,omitempty" bson:"timestamp,omitempty"`
}

// MaxReplies caps how many visible replies are captured per post.
const MaxReplies = 15

// PostRecord is the canonical unit of output: one extracted post,
// normalized into the shared schema.
type PostRecord struct {
	ID         string            `json:"id" bson:"_id"`
	Platform   Platform          `json:"platform" bson:"platform"`
	GroupLabel string            `json:"group_label" bson:"group_label"`
	Author     Author            `json:"author" bson:"author"`
	Text       string            `json:"text" bson:"text"`
	Timestamp  string            `json:"timestamp" bson:"timestamp"`
	URL        string            `json:"url" bson:"url"`
	CrawledAt  string            `json:"crawled_at" bson:"crawled_at"`
	Metrics    map[string]Metric `json:"metrics" bson:"metrics"`
	Media      Media             `json:"media" bson:"media"`
	Links      []string          `json:"links" bson:"links"`
	Hashtags   []string          `json:"hashtags" bson:"hashtags"`
	Mentions   []string          `json:"mentions" bson:"mentions"`
	Replies    []Reply           `json:"replies" bson:"replies"`
}

// NewPostRecord returns a record with all collections initialized and the
// capture time stamped. The caller fills content fields and then ID.
func NewPostRecord(platform Platform, pageURL string) *PostRecord {
	return &PostRecord{
		Platform:   platform,
		GroupLabel: GroupUnknown,
		URL:        pageURL,
		CrawledAt:  time.Now().UTC().Format(time.RFC3339),
		Metrics:    make(map[string]Metric),
		Media: Media{
			Images: []string{},
			Videos: []string{},
			GIFs:   []string{},
		},
		Links:    []string{},
		Hashtags: []string{},
		Mentions: []string{},
		Replies:  []Reply{},
	}
}

// Valid reports whether the record is persistable. A record with no text and
// no author name carries no content and must never reach storage.
func (r *PostRecord) Valid() bool {
	return r != nil && (r.Text != "" || r.Author.Name != "")
}

// Metric returns the named metric, defaulting to 0 when unset.
func (r *PostRecord) Metric(name string) Metric {
	if r.Metrics == nil {
		return 0
	}
	return r.Metrics[name]
}

// Preview is the cheap extraction used purely for the "currently viewing"
// affordance. It carries no side effects and no media payloads.
type Preview struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Author string `json:"author"`
}
