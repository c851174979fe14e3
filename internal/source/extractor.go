// Package source turns web pages into search results, book metadata, chapter
// lists and chapter text, driven entirely by the selector strings of a
// types.SourceConfig. Nothing in here performs I/O: callers pass documents
// that were already fetched.
package source

import (
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/unalkalkan/NovelReader/internal/textutil"
	"github.com/unalkalkan/NovelReader/pkg/types"
)

// UnknownAuthor is reported when a page has no author
const UnknownAuthor = "unknown"

// UnknownTitle is reported by ExtractBookInfo when a page has no title
const UnknownTitle = "unknown"

func root(doc *goquery.Document) *goquery.Selection {
	if doc == nil {
		return nil
	}
	return doc.Selection
}

// ExtractSearchResults reads one result per BookItemSelector element, in
// document order. Items without a title or a resolvable book URL are skipped.
func ExtractSearchResults(doc *goquery.Document, src types.SourceConfig) []types.SearchResult {
	results := make([]types.SearchResult, 0)

	find(root(doc), src.BookItemSelector).Each(func(i int, item *goquery.Selection) {
		title := firstText(item, src.TitleSelector)
		if title == "" {
			log.Debug().Str("source", src.Name).Int("item", i).Msg("skipping search item without title")
			return
		}

		bookURL, ok := ResolveURL(src.BaseURL, firstAttr(item, src.BookURLSelector))
		if !ok {
			log.Debug().Str("source", src.Name).Int("item", i).Msg("skipping search item without book url")
			return
		}

		author := firstText(item, src.AuthorSelector)
		if author == "" {
			author = UnknownAuthor
		}

		result := types.SearchResult{
			BookID:      BookID(bookURL),
			Title:       title,
			Author:      author,
			Description: firstText(item, "p"),
			SourceID:    src.ID,
			SourceName:  src.Name,
			BookURL:     bookURL,
		}
		if cover, ok := ResolveURL(src.BaseURL, firstAttr(item, "img[src]@src")); ok {
			result.CoverURL = cover
		}
		results = append(results, result)
	})

	return results
}

// ExtractBookInfo reads title and author with the source selectors and the
// description from the page's meta description.
func ExtractBookInfo(doc *goquery.Document, src types.SourceConfig) types.BookInfo {
	r := root(doc)

	info := types.BookInfo{
		Title:       firstText(r, src.TitleSelector),
		Author:      firstText(r, src.AuthorSelector),
		Description: firstAttr(r, "meta[name=description]@content"),
	}
	if info.Title == "" {
		info.Title = UnknownTitle
	}
	if info.Author == "" {
		info.Author = UnknownAuthor
	}
	return info
}

// ExtractChapterList returns every ChapterListSelector element in document
// order. Links are resolved against the page URL, or the source base URL
// when the document has none; a href that cannot be resolved is kept verbatim.
func ExtractChapterList(doc *goquery.Document, src types.SourceConfig) []types.ChapterInfo {
	selector, attr := splitAttr(src.ChapterListSelector)
	elements := find(root(doc), selector)

	base := src.BaseURL
	if doc != nil && doc.Url != nil {
		base = doc.Url.String()
	}

	chapters := make([]types.ChapterInfo, 0, elements.Length())
	elements.Each(func(i int, el *goquery.Selection) {
		href := strings.TrimSpace(el.AttrOr(attr, ""))
		if resolved, ok := ResolveURL(base, href); ok {
			href = resolved
		}
		chapters = append(chapters, types.ChapterInfo{
			Index: i,
			Title: strings.TrimSpace(el.Text()),
			URL:   href,
		})
	})
	return chapters
}

// ExtractChapterContent returns the text of the first ContentSelector element
// with one paragraph per line. If that renders empty the element's markup is
// run through the HTML cleaner instead. No match yields "".
func ExtractChapterContent(doc *goquery.Document, src types.SourceConfig) string {
	content := find(root(doc), src.ContentSelector)
	if content.Length() == 0 {
		return ""
	}
	content = content.First()

	if text := textutil.BlockText(content.Get(0)); text != "" {
		return text
	}

	inner, err := content.Html()
	if err != nil {
		return ""
	}
	return textutil.CleanHTML(inner)
}

// ExtractChapterMarkdown renders the first ContentSelector element as Markdown
func ExtractChapterMarkdown(doc *goquery.Document, src types.SourceConfig) (string, error) {
	content := find(root(doc), src.ContentSelector)
	if content.Length() == 0 {
		return "", nil
	}

	fragment, err := goquery.OuterHtml(content.First())
	if err != nil {
		return "", err
	}
	md, err := htmltomarkdown.ConvertString(fragment)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(md), nil
}
