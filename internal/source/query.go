package source

import (
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/rs/zerolog/log"
)

// DefaultAttr is read when a selector carries no @attr suffix
const DefaultAttr = "href"

var matchers sync.Map // selector string -> cascadia.Selector, or nil when invalid

// compile returns a matcher for selector, or nil if it does not parse.
// Results are memoized because source selectors are reused for every page.
func compile(selector string) goquery.Matcher {
	if cached, ok := matchers.Load(selector); ok {
		if cached == nil {
			return nil
		}
		return cached.(cascadia.Selector)
	}

	m, err := cascadia.Compile(selector)
	if err != nil {
		log.Debug().Err(err).Str("selector", selector).Msg("invalid selector")
		matchers.Store(selector, nil)
		return nil
	}
	matchers.Store(selector, m)
	return m
}

// find runs selector below s. Empty or invalid selectors select nothing.
func find(s *goquery.Selection, selector string) *goquery.Selection {
	selector = strings.TrimSpace(selector)
	if s == nil {
		return &goquery.Selection{}
	}
	if selector == "" {
		return s.Slice(0, 0)
	}
	m := compile(selector)
	if m == nil {
		return s.Slice(0, 0)
	}
	return s.FindMatcher(m)
}

// splitAttr splits "selector@attr". The suffix is only recognised when it
// looks like an attribute name, so "a[href*='@']" stays intact.
func splitAttr(expr string) (selector, attr string) {
	expr = strings.TrimSpace(expr)
	i := strings.LastIndex(expr, "@")
	if i < 0 || !isAttrName(expr[i+1:]) {
		return expr, DefaultAttr
	}
	return strings.TrimSpace(expr[:i]), expr[i+1:]
}

func isAttrName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == ':':
		default:
			return false
		}
	}
	return true
}

// text returns the trimmed text of the first element in s. Meta elements
// carry their value in the content attribute.
func text(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	first := s.First()
	if goquery.NodeName(first) == "meta" {
		return strings.TrimSpace(first.AttrOr("content", ""))
	}
	return strings.TrimSpace(first.Text())
}

// firstText is text(find(s, selector))
func firstText(s *goquery.Selection, selector string) string {
	return text(find(s, selector))
}

// firstAttr evaluates a "selector@attr" expression below s
func firstAttr(s *goquery.Selection, expr string) string {
	selector, attr := splitAttr(expr)
	found := find(s, selector)
	if found.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(found.First().AttrOr(attr, ""))
}
