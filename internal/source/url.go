package source

import (
	"fmt"
	"hash/fnv"
	"net/url"
	"strings"

	"github.com/unalkalkan/NovelReader/pkg/types"
)

// BookIDPrefix marks identifiers derived from an online book URL
const BookIDPrefix = "online_"

// BookID derives a stable identifier from an absolute book URL
func BookID(bookURL string) string {
	h := fnv.New32a()
	h.Write([]byte(bookURL))
	return fmt.Sprintf("%s%08x", BookIDPrefix, h.Sum32())
}

// ResolveURL makes href absolute against baseURL. Hrefs that already carry an
// http or https scheme are returned as is. The second result is false when no
// absolute web URL can be produced, including javascript: and mailto: links.
func ResolveURL(baseURL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", false
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	if ref.Scheme != "" {
		if !webScheme(ref.Scheme) || ref.Host == "" {
			return "", false
		}
		return href, true
	}

	base, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || !webScheme(base.Scheme) || base.Host == "" {
		return "", false
	}
	return base.ResolveReference(ref).String(), true
}

func webScheme(scheme string) bool {
	scheme = strings.ToLower(scheme)
	return scheme == "http" || scheme == "https"
}

// BuildSearchURL fills the keyword into the source's search path pattern and
// resolves the result against the source base URL. Both {keyword} and {name}
// are recognised as placeholders. The keyword is path escaped before the
// first '?' and query escaped after it.
func BuildSearchURL(src types.SourceConfig, keyword string) (string, error) {
	keyword = strings.TrimSpace(keyword)
	pathPart, queryPart, hasQuery := strings.Cut(src.SearchPathPattern, "?")

	path := fillKeyword(pathPart, url.PathEscape(keyword))
	if hasQuery {
		path += "?" + fillKeyword(queryPart, url.QueryEscape(keyword))
	}

	resolved, ok := ResolveURL(src.BaseURL, path)
	if !ok {
		return "", fmt.Errorf("cannot build search url from base %q and pattern %q", src.BaseURL, src.SearchPathPattern)
	}
	return resolved, nil
}

func fillKeyword(pattern, escaped string) string {
	return strings.NewReplacer("{keyword}", escaped, "{name}", escaped).Replace(pattern)
}
