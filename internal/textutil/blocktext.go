package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

var skippedElements = map[string]bool{
	"script": true, "style": true, "noscript": true,
	"head": true, "template": true, "iframe": true,
}

var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "hr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"li": true, "ul": true, "ol": true, "tr": true, "table": true,
	"section": true, "article": true, "blockquote": true, "pre": true,
	"header": true, "footer": true, "dd": true, "dt": true,
}

// BlockText renders a node as plain text, one line per block element.
// Lines are trimmed, inner whitespace is collapsed and empty lines are
// dropped, so paragraphs come out newline-delimited.
func BlockText(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	writeBlockText(&b, n)
	return normalizeLines(b.String())
}

// HTMLBlockText parses an HTML document or fragment and renders it with BlockText.
func HTMLBlockText(s string) string {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return CleanHTML(s)
	}
	return BlockText(doc)
}

func writeBlockText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(strings.Map(flattenSpace, n.Data))
		return
	case html.ElementNode:
		name := strings.ToLower(n.Data)
		if skippedElements[name] {
			return
		}
		if blockElements[name] {
			b.WriteByte('\n')
			defer b.WriteByte('\n')
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeBlockText(b, c)
	}
}

func flattenSpace(r rune) rune {
	if unicode.IsSpace(r) {
		return ' '
	}
	return r
}

func normalizeLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
