package adapter

import (
	"net/url"
	"strings"

	"github.com/atmaxmoj/socialmediascrawler/internal/identity"
)

// Group labels are heuristic text scraped from page context. Each adapter
// tries its sources in priority order (URL path segment, then page title,
// then a profile heading) and the first hit wins. The result is advisory
// metadata only: never unique, never validated, possibly wrong.

// groupFromPath returns the first path segment not in the skip set.
// feedPaths like "home" or "feed" name the generic timeline and carry no
// account context.
func groupFromPath(rawURL string, skip ...string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	skipSet := make(map[string]struct{}, len(skip))
	for _, s := range skip {
		skipSet[strings.ToLower(s)] = struct{}{}
	}
	for _, seg := range strings.Split(u.Path, "/") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		if _, ok := skipSet[strings.ToLower(seg)]; ok {
			continue
		}
		if unescaped, err := url.PathUnescape(seg); err == nil {
			seg = unescaped
		}
		return strings.TrimPrefix(seg, "@")
	}
	return ""
}

// groupFromTitle returns the title text before the first separator, dropping
// the platform's own name suffix ("Acme Corp | LinkedIn" -> "Acme Corp").
func groupFromTitle(title string, platformNames ...string) string {
	title = identity.CleanText(title)
	for _, sep := range []string{" | ", " - ", " / ", " · ", " • "} {
		if i := strings.Index(title, sep); i > 0 {
			title = title[:i]
			break
		}
	}
	for _, name := range platformNames {
		if strings.EqualFold(title, name) {
			return ""
		}
	}
	return title
}
