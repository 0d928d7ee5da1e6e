// Package identity computes stable post identifiers and normalizes the raw
// field bags adapters pull out of feed markup.
package identity

import (
	"strconv"
	"strings"

	"github.com/atmaxmoj/socialmediascrawler/internal/types"
)

// textPrefixLen bounds how much leading text feeds the content hash. Posts by
// the same author at nearly the same time with the same leading text still
// differ through the timestamp-digit suffix.
const textPrefixLen = 100

// ComputeID returns the stable identifier for a raw extraction. A durable
// native id (permalink id, URN, shortcode) is always preferred because it
// survives re-crawls and text edits; without one the id is a content hash
// over author, leading text and the raw timestamp.
func ComputeID(platform types.Platform, nativeID, authorName, text, timestamp string) string {
	if nativeID != "" {
		return string(platform) + ":" + nativeID
	}
	return string(platform) + ":h" + contentHash(authorName, text, timestamp)
}

// contentHash derives a compact deterministic hash. Same content twice must
// yield the same string; accidental-collision resistance is the goal, not
// cryptographic strength.
func contentHash(authorName, text, timestamp string) string {
	prefix := text
	if len(prefix) > textPrefixLen {
		prefix = prefix[:textPrefixLen]
	}
	h := rollingHash(authorName + "\x1f" + prefix + "\x1f" + timestamp)
	s := strconv.FormatUint(uint64(h), 36)
	if digits := timestampDigits(timestamp, 6); digits != "" {
		s += "-" + digits
	}
	return s
}

// rollingHash is a base-31 polynomial hash over the input bytes.
func rollingHash(s string) uint32 {
	var h uint32
	for i := 0; i < len(s); i++ {
		h = h*31 + uint32(s[i])
	}
	return h
}

// timestampDigits pulls up to n trailing digits out of a raw timestamp
// string, tolerating both ISO strings and displayed text like "3h ago".
func timestampDigits(ts string, n int) string {
	var b strings.Builder
	for i := 0; i < len(ts); i++ {
		if ts[i] >= '0' && ts[i] <= '9' {
			b.WriteByte(ts[i])
		}
	}
	digits := b.String()
	if len(digits) > n {
		digits = digits[len(digits)-n:]
	}
	return digits
}

// NativeFromPermalink extracts the trailing path segment of a permalink URL,
// the usual home of a platform's numeric post id. Query and fragment parts
// are dropped first.
func NativeFromPermalink(href string) string {
	if href == "" {
		return ""
	}
	if i := strings.IndexAny(href, "?#"); i >= 0 {
		href = href[:i]
	}
	href = strings.TrimRight(href, "/")
	if i := strings.LastIndex(href, "/"); i >= 0 {
		href = href[i+1:]
	}
	return href
}
