package source

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/unalkalkan/NovelReader/pkg/types"
)

// Candidates are the ranked selector lists and fixed values used by AutoDetect
type Candidates struct {
	Content         []string
	DefaultContent  string
	Chapters        []string
	DefaultChapters string
	Title           []string
	DefaultTitle    string

	SearchPathPattern string
	AuthorSelector    string
	BookURLSelector   string
	BookItemSelector  string
	Name              string
}

// DefaultCandidates returns the built-in heuristics for common novel sites
func DefaultCandidates() Candidates {
	return Candidates{
		Content: []string{
			"div.content", "div.chapter-content", "div.text", "div#content",
			"#content", "div.main-content", "div.book-content", ".content",
		},
		DefaultContent: "div",
		Chapters: []string{
			"div.chapter-list a", ".chapter-item a", "#chapter-list a",
			"ul.chapters a", "ol.chapters a", "div.chapters a",
		},
		DefaultChapters: "a",
		Title:           []string{"h1", "h2", ".title", ".book-title", "h3"},
		DefaultTitle:    "h1",

		SearchPathPattern: "/search?q={keyword}",
		AuthorSelector:    "meta[name=author], .author, span.author",
		BookURLSelector:   "a@href",
		BookItemSelector:  ".book-item, .search-result, .list-item, tr",
		Name:              "auto-detected",
	}
}

// AutoDetect guesses a source configuration from a sample page. For each
// selector family the first candidate that matches at least one element wins.
// The result is never enabled and has no id; callers review it before saving.
func AutoDetect(doc *goquery.Document, baseURL string, c Candidates) types.SourceConfig {
	var root *goquery.Selection
	if doc != nil {
		root = doc.Selection
	}

	return types.SourceConfig{
		ID:                  "",
		Name:                c.Name,
		BaseURL:             baseURL,
		SearchPathPattern:   c.SearchPathPattern,
		ChapterListSelector: firstMatching(root, c.Chapters, c.DefaultChapters),
		ContentSelector:     firstMatching(root, c.Content, c.DefaultContent),
		TitleSelector:       firstMatching(root, c.Title, c.DefaultTitle),
		AuthorSelector:      c.AuthorSelector,
		BookURLSelector:     c.BookURLSelector,
		BookItemSelector:    c.BookItemSelector,
		Enabled:             false,
	}
}

func firstMatching(root *goquery.Selection, candidates []string, fallback string) string {
	for _, selector := range candidates {
		if find(root, selector).Length() > 0 {
			return selector
		}
	}
	return fallback
}
