package identity

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/atmaxmoj/socialmediascrawler/internal/types"
)

var (
	spaceRun   = regexp.MustCompile(`\s+`)
	countToken = regexp.MustCompile(`([0-9][0-9.,]*)\s*([KkMmBb]?)`)
	hashtagRe  = regexp.MustCompile(`#[\p{L}\p{N}_]+`)
	mentionRe  = regexp.MustCompile(`@[\p{L}\p{N}_.]+`)
)

// CleanText collapses whitespace runs and trims the result. All extracted
// text fields pass through here so ids stay stable across render variations.
func CleanText(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

// ParseCount converts a displayed engagement count ("1.2K", "3,456", "12 likes")
// into a metric. Unparseable input degrades to 0, never an error.
func ParseCount(s string) types.Metric {
	m := countToken.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	numStr := strings.ReplaceAll(m[1], ",", "")
	f, err := strconv.ParseFloat(numStr, 64)
	if err != nil {
		return 0
	}
	switch strings.ToUpper(m[2]) {
	case "K":
		f *= 1_000
	case "M":
		f *= 1_000_000
	case "B":
		f *= 1_000_000_000
	}
	return types.Metric(int64(f))
}

// Hashtags pulls all #tags out of a text body, deduplicated in order.
func Hashtags(text string) []string {
	return uniq(hashtagRe.FindAllString(text, -1))
}

// Mentions pulls all @handles out of a text body, deduplicated in order.
func Mentions(text string) []string {
	out := uniq(mentionRe.FindAllString(text, -1))
	for i, m := range out {
		out[i] = strings.TrimRight(m, ".")
	}
	return out
}

func uniq(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
