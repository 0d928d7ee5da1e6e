package adapter

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"

	"github.com/atmaxmoj/socialmediascrawler/internal/identity"
)

// Kind selects how a Strategy locates its value within a post subtree.
type Kind string

const (
	// KindCSS matches with a CSS selector via goquery.
	KindCSS Kind = "css"
	// KindXPath matches with an XPath expression via htmlquery, evaluated
	// against the subtree's underlying html node.
	KindXPath Kind = "xpath"
	// KindRegex matches a pattern against the subtree's text. The first
	// capture group wins when present, else the whole match.
	KindRegex Kind = "regex"
)

// Strategy is one locator attempt for a field. Attr empty means "take the
// element text"; otherwise the named attribute is read.
type Strategy struct {
	Kind  Kind
	Query string
	Attr  string
}

// FieldSpec is an ordered fallback list of strategies for one canonical
// field. Strategies are tried in order and the first that yields a value
// wins; feed markup drifts constantly, so adding a fallback here is a data
// change, not a code change.
type FieldSpec []Strategy

// CSS is shorthand for a text-bearing CSS strategy.
func CSS(query string) Strategy { return Strategy{Kind: KindCSS, Query: query} }

// CSSAttr is shorthand for an attribute-bearing CSS strategy.
func CSSAttr(query, attr string) Strategy { return Strategy{Kind: KindCSS, Query: query, Attr: attr} }

// XPath is shorthand for a text-bearing XPath strategy.
func XPath(query string) Strategy { return Strategy{Kind: KindXPath, Query: query} }

// Regex is shorthand for a regex strategy over the subtree text.
func Regex(pattern string) Strategy { return Strategy{Kind: KindRegex, Query: pattern} }

// First tries each strategy in order and returns the first non-empty value,
// cleaned. A strategy that panics (malformed expression against mutated
// markup) degrades to "no match" rather than aborting the extraction.
func (f FieldSpec) First(sel *goquery.Selection) string {
	for _, st := range f {
		if v := st.first(sel); v != "" {
			return v
		}
	}
	return ""
}

// All returns every value from the first strategy that matches anything,
// deduplicated in document order. Later strategies are fallbacks, not
// accumulators: mixing values across strategies would double-count the same
// media under drifted markup.
func (f FieldSpec) All(sel *goquery.Selection) []string {
	for _, st := range f {
		if vals := st.all(sel); len(vals) > 0 {
			return vals
		}
	}
	return []string{}
}

func (st Strategy) first(sel *goquery.Selection) (out string) {
	defer func() {
		if recover() != nil {
			out = ""
		}
	}()
	vals := st.all(sel)
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}

func (st Strategy) all(sel *goquery.Selection) (out []string) {
	defer func() {
		if recover() != nil {
			out = nil
		}
	}()
	if sel == nil {
		return nil
	}
	switch st.Kind {
	case KindCSS, "":
		return st.allCSS(sel)
	case KindXPath:
		return st.allXPath(sel)
	case KindRegex:
		return st.allRegex(sel)
	}
	return nil
}

func (st Strategy) allCSS(sel *goquery.Selection) []string {
	var vals []string
	sel.Find(st.Query).Each(func(_ int, m *goquery.Selection) {
		if v := valueOf(m, st.Attr); v != "" {
			vals = append(vals, v)
		}
	})
	return dedupe(vals)
}

func (st Strategy) allXPath(sel *goquery.Selection) []string {
	if len(sel.Nodes) == 0 {
		return nil
	}
	nodes, err := htmlquery.QueryAll(sel.Nodes[0], st.Query)
	if err != nil {
		return nil
	}
	var vals []string
	for _, n := range nodes {
		var v string
		if st.Attr != "" {
			v = htmlquery.SelectAttr(n, st.Attr)
		} else {
			v = htmlquery.InnerText(n)
		}
		if v = identity.CleanText(v); v != "" {
			vals = append(vals, v)
		}
	}
	return dedupe(vals)
}

func (st Strategy) allRegex(sel *goquery.Selection) []string {
	re, err := regexp.Compile(st.Query)
	if err != nil {
		return nil
	}
	matches := re.FindAllStringSubmatch(sel.Text(), -1)
	var vals []string
	for _, m := range matches {
		v := m[0]
		if len(m) > 1 && m[1] != "" {
			v = m[1]
		}
		if v = identity.CleanText(v); v != "" {
			vals = append(vals, v)
		}
	}
	return dedupe(vals)
}

// valueOf reads a selection's text or one of its attributes, cleaned.
func valueOf(sel *goquery.Selection, attr string) string {
	var v string
	switch attr {
	case "":
		v = sel.Text()
	case "html":
		v, _ = sel.Html()
	default:
		v, _ = sel.Attr(attr)
	}
	return identity.CleanText(v)
}

func dedupe(vals []string) []string {
	if len(vals) < 2 {
		return vals
	}
	seen := make(map[string]struct{}, len(vals))
	out := vals[:0]
	for _, v := range vals {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// absoluteLinks filters values down to things that look like resolvable
// references: absolute URLs or root-relative paths.
func absoluteLinks(vals []string) []string {
	out := []string{}
	for _, v := range vals {
		if strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://") || strings.HasPrefix(v, "/") {
			out = append(out, v)
		}
	}
	return out
}
